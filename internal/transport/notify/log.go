package notify

import (
	"context"

	"service-delivery-engine/internal/domain"
	"service-delivery-engine/internal/logx"
)

// LogPublisher only writes notifications to the log.
type LogPublisher struct {
	logger logx.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger logx.Logger) *LogPublisher {
	if logger == nil {
		logger = logx.Nop()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs each event and never fails.
func (p *LogPublisher) Publish(_ context.Context, events []domain.NotificationEvent) error {
	for _, ev := range events {
		fields := []logx.Field{
			logx.String("id", ev.ID),
			logx.String("order_id", ev.OrderID),
			logx.String("kind", string(ev.Kind)),
			logx.String("recipient", string(ev.Recipient)),
			logx.String("recipient_id", ev.RecipientID),
			logx.String("new_status", string(ev.NewStatus)),
		}
		if ev.Countdown != nil {
			fields = append(fields,
				logx.String("countdown", string(ev.Countdown.Status)),
				logx.Int("remaining_minutes", ev.Countdown.RemainingMinutes),
			)
		}
		p.logger.Info("notification", fields...)
	}
	return nil
}
