package availability

import (
	"context"

	"service-delivery-engine/internal/domain"
)

// candidateRepository defines storage operations required by the availability service.
type candidateRepository interface {
	ListActive(ctx context.Context) ([]domain.DeliveryCandidate, error)
	Get(ctx context.Context, id int64) (*domain.DeliveryCandidate, error)
	List(ctx context.Context, limit, offset *int) ([]domain.DeliveryCandidate, error)
	Create(ctx context.Context, c *domain.DeliveryCandidate) (int64, error)
	UpdatePartial(ctx context.Context, u domain.PartialCandidateUpdate) (bool, error)
}

// geocoder turns a free-text address into coordinates.
type geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Point, error)
}
