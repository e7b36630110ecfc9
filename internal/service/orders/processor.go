package orders

import (
	"context"
	"errors"
	"fmt"

	"service-delivery-engine/internal/apperr"
	"service-delivery-engine/internal/domain"
	"service-delivery-engine/internal/logx"
)

// ErrSkipped marks events that can never be applied; redelivery would not help.
var ErrSkipped = errors.New("order event skipped")

// Processor applies upstream order status events
type Processor struct {
	orders StatusUpdater
	logger logx.Logger
}

// NewProcessor creates a new orders.Processor
func NewProcessor(orders StatusUpdater, logger logx.Logger) *Processor {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Processor{orders: orders, logger: logger}
}

// Handle processes a single orders.Event.
// Errors wrapping ErrSkipped are permanent; any other error is worth a retry.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	status, err := domain.ParseOrderStatus(e.Status)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSkipped, err)
	}

	_, err = p.orders.UpdateStatus(ctx, e.OrderID, status)
	switch {
	case err == nil:
		p.logger.Debug("order event applied",
			logx.String("order_id", e.OrderID),
			logx.String("status", string(status)),
		)
		return nil
	case errors.Is(err, ErrConcurrentUpdate):
		return err
	case errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrInvalid),
		errors.Is(err, apperr.ErrConflict):
		return fmt.Errorf("%w: %w", ErrSkipped, err)
	default:
		return err
	}
}
