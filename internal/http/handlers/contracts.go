package handlers

import (
	"context"

	"service-delivery-engine/internal/domain"
	"service-delivery-engine/internal/service/availability"
)

type availabilityUsecase interface {
	CheckCoordinates(ctx context.Context, target domain.Point) (availability.Result, error)
	CheckAddress(ctx context.Context, address string) (availability.Result, domain.Point, error)
}

type candidateUsecase interface {
	Get(ctx context.Context, id int64) (*domain.DeliveryCandidate, error)
	List(ctx context.Context, limit, offset *int) ([]domain.DeliveryCandidate, error)
	Create(ctx context.Context, c *domain.DeliveryCandidate) (int64, error)
	UpdatePartial(ctx context.Context, u domain.PartialCandidateUpdate) error
}

type orderUsecase interface {
	Create(ctx context.Context, in domain.NewOrder) (*domain.DeliveryOrder, error)
	Get(ctx context.Context, id string) (*domain.DeliveryOrder, error)
	UpdateStatus(ctx context.Context, id string, next domain.OrderStatus) (*domain.DeliveryOrder, error)
}

type countdownUsecase interface {
	Get(ctx context.Context, orderID string) (domain.CountdownView, error)
}
