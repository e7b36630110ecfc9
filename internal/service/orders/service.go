package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"service-delivery-engine/internal/apperr"
	"service-delivery-engine/internal/domain"
	"service-delivery-engine/internal/logx"
)

// ErrConcurrentUpdate is returned when the order status changed between read and write.
var ErrConcurrentUpdate = fmt.Errorf("%w: order status changed concurrently", apperr.ErrConflict)

const maxServiceLevelMinutes = 7 * 24 * 60

// Config holds orders Service settings.
type Config struct {
	DefaultServiceLevelMinutes int
	OperationTimeout           time.Duration
	PublishTimeout             time.Duration
}

// Service manages delivery orders and their status lifecycle.
type Service struct {
	repo      OrderRepository
	notifier  TransitionNotifier
	publisher EventPublisher
	cfg       Config
	logger    logx.Logger
	failures  prometheus.Counter
	now       func() time.Time
	newID     func() string
}

// NewService creates an orders Service. failures counts notification publish errors and may be nil.
func NewService(
	repo OrderRepository,
	notifier TransitionNotifier,
	publisher EventPublisher,
	cfg Config,
	logger logx.Logger,
	failures prometheus.Counter,
) *Service {
	if cfg.DefaultServiceLevelMinutes <= 0 {
		cfg.DefaultServiceLevelMinutes = 60
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 3 * time.Second
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 2 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		repo:      repo,
		notifier:  notifier,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		failures:  failures,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.OperationTimeout)
}

// Create validates input, computes the deadline and stores a pending order.
func (s *Service) Create(ctx context.Context, in domain.NewOrder) (*domain.DeliveryOrder, error) {
	in.BuyerID = strings.TrimSpace(in.BuyerID)
	in.SellerID = strings.TrimSpace(in.SellerID)
	in.CourierID = strings.TrimSpace(in.CourierID)
	if in.BuyerID == "" || in.SellerID == "" || !in.Destination.Valid() {
		return nil, apperr.ErrInvalid
	}
	sla := in.ServiceLevelMinutes
	if sla == 0 {
		sla = s.cfg.DefaultServiceLevelMinutes
	}
	if sla < 0 || sla > maxServiceLevelMinutes {
		return nil, apperr.ErrInvalid
	}

	now := s.now()
	o := &domain.DeliveryOrder{
		ID:          s.newID(),
		BuyerID:     in.BuyerID,
		SellerID:    in.SellerID,
		CourierID:   in.CourierID,
		Destination: in.Destination,
		Status:      domain.OrderPending,
		CreatedAt:   now,
		Deadline:    domain.DeadlineFor(now, sla),
		UpdatedAt:   now,
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		logx.String("event", "order_created"),
		logx.String("order_id", o.ID),
		logx.Time("deadline", o.Deadline),
	)
	return o, nil
}

// Get returns an order by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.DeliveryOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.ErrNotFound
	}
	return o, nil
}

// UpdateStatus moves an order to next and notifies the interested parties.
//
// Unknown statuses and leaving a terminal status are invalid requests; moving backwards is a conflict.
// Setting the current status again is a no-op without notifications.
// Notification failures are logged and never fail the update.
func (s *Service) UpdateStatus(ctx context.Context, id string, next domain.OrderStatus) (*domain.DeliveryOrder, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalid, domain.ErrUnknownStatus)
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := o.Status

	if err := domain.ValidateTransition(prev, next); err != nil {
		if errors.Is(err, domain.ErrUnknownStatus) || errors.Is(err, domain.ErrTerminalState) {
			return nil, fmt.Errorf("%w: %w", apperr.ErrInvalid, err)
		}
		return nil, fmt.Errorf("%w: %w", apperr.ErrConflict, err)
	}
	if prev == next {
		return o, nil
	}

	now := s.now()
	uctx, cancel := s.withTimeout(ctx)
	ok, err := s.repo.UpdateStatus(uctx, o.ID, prev, next, now)
	cancel()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrentUpdate
	}
	o.Status = next
	o.UpdatedAt = now

	s.logger.Info("order status changed",
		logx.String("event", "order_status_changed"),
		logx.String("order_id", o.ID),
		logx.String("from", string(prev)),
		logx.String("to", string(next)),
	)

	s.notify(ctx, *o, prev, next)
	return o, nil
}

func (s *Service) notify(ctx context.Context, o domain.DeliveryOrder, prev, next domain.OrderStatus) {
	events, err := s.notifier.NotifyOnTransition(o, prev, next)
	if err != nil {
		s.logger.Warn("notification build failed", logx.String("order_id", o.ID), logx.Err(err))
		return
	}
	if len(events) == 0 {
		return
	}

	// the status change is committed; a cancelled request must not drop its notifications
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PublishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pctx, events); err != nil {
		if s.failures != nil {
			s.failures.Inc()
		}
		s.logger.Error("notification publish failed",
			logx.String("order_id", o.ID),
			logx.Int("events", len(events)),
			logx.Err(err),
		)
	}
}
