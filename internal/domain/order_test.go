package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"service-delivery-engine/internal/domain"
)

func TestDeadlineFor(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 3, 11, 0, 15, 0, 0, time.UTC), domain.DeadlineFor(created, 45))
	require.Equal(t, created, domain.DeadlineFor(created, 0))
}

func TestDeliveryOrder_HasCourier(t *testing.T) {
	t.Parallel()

	require.False(t, domain.DeliveryOrder{}.HasCourier())
	require.True(t, domain.DeliveryOrder{CourierID: "c-1"}.HasCourier())
}
