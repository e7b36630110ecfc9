package countdown

import (
	"context"
	"strings"
	"time"

	"service-delivery-engine/internal/apperr"
	"service-delivery-engine/internal/domain"
)

type orderReader interface {
	Get(ctx context.Context, id string) (*domain.DeliveryOrder, error)
}

// Service serves countdown views for polling clients.
type Service struct {
	orders           orderReader
	classifier       *Classifier
	operationTimeout time.Duration
	now              func() time.Time
}

// NewService creates a countdown Service.
func NewService(orders orderReader, classifier *Classifier, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if classifier == nil {
		classifier = NewClassifier(Thresholds{})
	}
	return &Service{
		orders:           orders,
		classifier:       classifier,
		operationTimeout: timeout,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the current countdown for an order.
func (s *Service) Get(ctx context.Context, orderID string) (domain.CountdownView, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.CountdownView{}, apperr.ErrInvalid
	}

	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.CountdownView{}, err
	}
	if o == nil {
		return domain.CountdownView{}, apperr.ErrNotFound
	}

	return domain.CountdownView{
		OrderID:     o.ID,
		OrderStatus: o.Status,
		Deadline:    o.Deadline,
		State:       s.classifier.Classify(o.Deadline, s.now()),
	}, nil
}
