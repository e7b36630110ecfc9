package countdown

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"service-delivery-engine/internal/domain"
	"service-delivery-engine/internal/logx"
	"service-delivery-engine/internal/ports/notification"
)

type activeOrderLister interface {
	ListActive(ctx context.Context, after domain.OrderCursor, limit int) ([]domain.DeliveryOrder, error)
}

type alertBuilder interface {
	CountdownAlerts(order domain.DeliveryOrder, state domain.CountdownState) []domain.NotificationEvent
}

// WatcherConfig tunes the periodic countdown scan.
type WatcherConfig struct {
	Interval  time.Duration
	BatchSize int
}

// Watcher periodically classifies open orders and announces every alerting bucket once.
type Watcher struct {
	orders     activeOrderLister
	classifier *Classifier
	marks      notification.MarkStore
	alerts     alertBuilder
	publisher  notification.Publisher
	logger     logx.Logger
	emitted    prometheus.Counter
	cfg        WatcherConfig
	now        func() time.Time
}

// NewWatcher creates a Watcher.
func NewWatcher(
	orders activeOrderLister,
	classifier *Classifier,
	marks notification.MarkStore,
	alerts alertBuilder,
	publisher notification.Publisher,
	logger logx.Logger,
	emitted prometheus.Counter,
	cfg WatcherConfig,
) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if logger == nil {
		logger = logx.Nop()
	}
	if classifier == nil {
		classifier = NewClassifier(Thresholds{})
	}
	return &Watcher{
		orders:     orders,
		classifier: classifier,
		marks:      marks,
		alerts:     alerts,
		publisher:  publisher,
		logger:     logger,
		emitted:    emitted,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run scans on every tick until ctx is cancelled. Scan errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.logger.Info("countdown watcher started", logx.Duration("interval", w.cfg.Interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("countdown watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Scan(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("countdown scan failed", logx.Err(err))
			}
		}
	}
}

// Scan walks every open order page by page and returns how many orders had an alert published.
func (w *Watcher) Scan(ctx context.Context) (int, error) {
	now := w.now()
	alerted := 0
	cursor := domain.OrderCursor{}
	for {
		page, err := w.orders.ListActive(ctx, cursor, w.cfg.BatchSize)
		if err != nil {
			return alerted, fmt.Errorf("list active orders: %w", err)
		}
		for _, o := range page {
			if w.visit(ctx, o, now) {
				alerted++
			}
		}
		if len(page) < w.cfg.BatchSize {
			return alerted, nil
		}
		if err := ctx.Err(); err != nil {
			return alerted, err
		}
		last := page[len(page)-1]
		if cursor != (domain.OrderCursor{}) && !cursor.Before(last) {
			return alerted, fmt.Errorf("list active orders: page did not advance past %s", cursor.ID)
		}
		cursor = last.Cursor()
	}
}

// visit classifies one order and publishes its alert when the bucket is new.
func (w *Watcher) visit(ctx context.Context, o domain.DeliveryOrder, now time.Time) bool {
	state := w.classifier.Classify(o.Deadline, now)
	if !state.Status.Alerting() {
		return false
	}

	first, err := w.marks.MarkOnce(ctx, o.ID, state.Status)
	if err != nil {
		// skip this order; the next tick retries
		w.logger.Warn("countdown mark failed",
			logx.String("order_id", o.ID),
			logx.String("bucket", string(state.Status)),
			logx.Err(err),
		)
		return false
	}
	if !first {
		return false
	}

	events := w.alerts.CountdownAlerts(o, state)
	if len(events) == 0 {
		return false
	}
	if err := w.publisher.Publish(ctx, events); err != nil {
		w.logger.Error("countdown alert publish failed",
			logx.String("order_id", o.ID),
			logx.String("bucket", string(state.Status)),
			logx.Err(err),
		)
		return false
	}

	if w.emitted != nil {
		w.emitted.Add(float64(len(events)))
	}
	w.logger.Info("countdown alert published",
		logx.String("event", "countdown_alert"),
		logx.String("order_id", o.ID),
		logx.String("bucket", string(state.Status)),
		logx.Int("remaining_minutes", state.RemainingMinutes),
	)
	return true
}
