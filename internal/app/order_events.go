package app

import (
	"context"
	"errors"

	"service-delivery-engine/internal/service/orders"
	"service-delivery-engine/internal/transport/kafka"
)

type orderEventHandler interface {
	Handle(ctx context.Context, e orders.Event) error
}

// makeOrderEventHandler adapts the processor to the consumer: skipped events are
// committed, anything else is redelivered.
func makeOrderEventHandler(p orderEventHandler) kafka.HandleFunc {
	return func(ctx context.Context, event orders.Event) error {
		err := p.Handle(ctx, event)
		if errors.Is(err, orders.ErrSkipped) {
			return kafka.Permanent(err)
		}
		return err
	}
}
