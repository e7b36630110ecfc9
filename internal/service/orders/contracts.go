//go:generate mockgen -source=contracts.go -destination=orders_mocks_test.go -package=orders_test

package orders

import (
	"context"
	"time"

	"service-delivery-engine/internal/domain"
)

// OrderRepository abstracts order persistence used by the orders Service.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.DeliveryOrder) error
	Get(ctx context.Context, id string) (*domain.DeliveryOrder, error)
	// UpdateStatus sets status to "to" only if it is still "from"; false means the row changed underneath.
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) (bool, error)
}

// TransitionNotifier builds notification events for a status change.
type TransitionNotifier interface {
	NotifyOnTransition(order domain.DeliveryOrder, previous, next domain.OrderStatus) ([]domain.NotificationEvent, error)
}

// EventPublisher delivers notification events.
type EventPublisher interface {
	Publish(ctx context.Context, events []domain.NotificationEvent) error
}

// StatusUpdater is the subset of Service used by Processor.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id string, next domain.OrderStatus) (*domain.DeliveryOrder, error)
}
