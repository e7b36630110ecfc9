package notification

import (
	"context"

	"service-delivery-engine/internal/domain"
)

// Publisher delivers notification events to the outbound channel
type Publisher interface {
	Publish(ctx context.Context, events []domain.NotificationEvent) error
}

// MarkStore remembers which countdown buckets were already announced for an order
type MarkStore interface {
	// MarkOnce records (orderID, bucket) and reports whether this call was the first.
	MarkOnce(ctx context.Context, orderID string, bucket domain.CountdownStatus) (bool, error)
}
