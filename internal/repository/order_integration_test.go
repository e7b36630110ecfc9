//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"service-delivery-engine/internal/apperr"
	"service-delivery-engine/internal/domain"
	"service-delivery-engine/internal/repository"
)

type OrderRepositorySuite struct {
	suite.Suite
	pool *pgxpool.Pool
	repo *repository.OrderRepo
	now  time.Time
}

func (s *OrderRepositorySuite) SetupSuite() {
	s.Require().NotNil(tcPool, "tcPool must be initialized in TestMain")

	s.pool = tcPool
	s.repo = repository.NewOrderRepo(tcPool)
	s.now = time.Date(2024, time.May, 13, 12, 0, 0, 0, time.UTC)
}

func (s *OrderRepositorySuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), `TRUNCATE delivery_orders`)
	s.Require().NoError(err)
}

func (s *OrderRepositorySuite) order(id string, status domain.OrderStatus, deadlineIn time.Duration) *domain.DeliveryOrder {
	return &domain.DeliveryOrder{
		ID:          id,
		BuyerID:     "buyer",
		SellerID:    "seller",
		Destination: domain.Point{Lat: 52.37, Lng: 4.895},
		Status:      status,
		CreatedAt:   s.now,
		Deadline:    s.now.Add(deadlineIn),
		UpdatedAt:   s.now,
	}
}

func (s *OrderRepositorySuite) TestCreateAndGet() {
	ctx := context.Background()

	in := s.order("o-1", domain.OrderPending, time.Hour)
	in.CourierID = "courier-7"
	s.Require().NoError(s.repo.Create(ctx, in))

	got, err := s.repo.Get(ctx, "o-1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(*in, *got)

	s.ErrorIs(s.repo.Create(ctx, in), apperr.ErrConflict)
}

func (s *OrderRepositorySuite) TestGet_NoCourier() {
	ctx := context.Background()

	s.Require().NoError(s.repo.Create(ctx, s.order("o-1", domain.OrderPending, time.Hour)))
	got, err := s.repo.Get(ctx, "o-1")
	s.Require().NoError(err)
	s.False(got.HasCourier())

	missing, err := s.repo.Get(ctx, "nope")
	s.Require().NoError(err)
	s.Nil(missing)
}

func (s *OrderRepositorySuite) TestUpdateStatus_Conditional() {
	ctx := context.Background()

	s.Require().NoError(s.repo.Create(ctx, s.order("o-1", domain.OrderPending, time.Hour)))
	at := s.now.Add(time.Minute)

	ok, err := s.repo.UpdateStatus(ctx, "o-1", domain.OrderPending, domain.OrderConfirmed, at)
	s.Require().NoError(err)
	s.True(ok)

	// stale "from" loses
	ok, err = s.repo.UpdateStatus(ctx, "o-1", domain.OrderPending, domain.OrderCancelled, at)
	s.Require().NoError(err)
	s.False(ok)

	got, err := s.repo.Get(ctx, "o-1")
	s.Require().NoError(err)
	s.Equal(domain.OrderConfirmed, got.Status)
	s.Equal(at, got.UpdatedAt)
}

func (s *OrderRepositorySuite) TestListActive_SkipsTerminalAndSortsByDeadline() {
	ctx := context.Background()

	s.Require().NoError(s.repo.Create(ctx, s.order("late", domain.OrderShipped, 2*time.Hour)))
	s.Require().NoError(s.repo.Create(ctx, s.order("soon", domain.OrderPending, 10*time.Minute)))
	s.Require().NoError(s.repo.Create(ctx, s.order("done", domain.OrderDelivered, time.Minute)))
	s.Require().NoError(s.repo.Create(ctx, s.order("gone", domain.OrderCancelled, time.Minute)))

	got, err := s.repo.ListActive(ctx, domain.OrderCursor{}, 10)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("soon", got[0].ID)
	s.Equal("late", got[1].ID)

	got, err = s.repo.ListActive(ctx, domain.OrderCursor{}, 1)
	s.Require().NoError(err)
	s.Len(got, 1)
}

func (s *OrderRepositorySuite) TestListActive_PagesPastSharedDeadlines() {
	ctx := context.Background()

	for _, id := range []string{"page-c", "page-a", "page-b"} {
		s.Require().NoError(s.repo.Create(ctx, s.order(id, domain.OrderShipped, -time.Hour)))
	}
	s.Require().NoError(s.repo.Create(ctx, s.order("page-d", domain.OrderPending, 45*time.Minute)))

	var seen []string
	cursor := domain.OrderCursor{}
	for {
		page, err := s.repo.ListActive(ctx, cursor, 2)
		s.Require().NoError(err)
		for _, o := range page {
			seen = append(seen, o.ID)
		}
		if len(page) < 2 {
			break
		}
		cursor = page[len(page)-1].Cursor()
	}

	s.Equal([]string{"page-a", "page-b", "page-c", "page-d"}, seen)
}

func TestOrderRepositorySuite(t *testing.T) {
	suite.Run(t, new(OrderRepositorySuite))
}
