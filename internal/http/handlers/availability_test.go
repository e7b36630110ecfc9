package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"service-delivery-engine/internal/apperr"
	"service-delivery-engine/internal/domain"
	"service-delivery-engine/internal/http/handlers"
	"service-delivery-engine/internal/service/availability"
)

type stubAvailability struct {
	coordsFn  func(ctx context.Context, p domain.Point) (availability.Result, error)
	addressFn func(ctx context.Context, address string) (availability.Result, domain.Point, error)
}

func (s *stubAvailability) CheckCoordinates(ctx context.Context, p domain.Point) (availability.Result, error) {
	return s.coordsFn(ctx, p)
}

func (s *stubAvailability) CheckAddress(ctx context.Context, a string) (availability.Result, domain.Point, error) {
	return s.addressFn(ctx, a)
}

func intPtr(v int) *int { return &v }

func TestAvailabilityHandler_Check_OK(t *testing.T) {
	t.Parallel()

	uc := &stubAvailability{
		coordsFn: func(_ context.Context, p domain.Point) (availability.Result, error) {
			require.Equal(t, domain.Point{Lat: 52.37, Lng: 4.895}, p)
			return availability.Result{IsAvailable: true, EstimatedMinutes: intPtr(16)}, nil
		},
	}
	h := handlers.NewAvailabilityHandler(testLogger(), uc)

	rr := httptest.NewRecorder()
	h.Check(rr, httptest.NewRequest(http.MethodGet, "/availability?lat=52.37&lng=4.895", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"isAvailable":true,"estimatedMinutes":16}`, rr.Body.String())
}

func TestAvailabilityHandler_Check_MissingCoordinatesIsUnavailable(t *testing.T) {
	t.Parallel()

	uc := &stubAvailability{
		coordsFn: func(_ context.Context, p domain.Point) (availability.Result, error) {
			require.True(t, math.IsNaN(p.Lat))
			require.False(t, p.Valid())
			return availability.Result{}, nil
		},
	}
	h := handlers.NewAvailabilityHandler(testLogger(), uc)

	rr := httptest.NewRecorder()
	h.Check(rr, httptest.NewRequest(http.MethodGet, "/availability?lat=abc&lng=4.9", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"isAvailable":false,"estimatedMinutes":null}`, rr.Body.String())
}

func TestAvailabilityHandler_CheckAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    string
		result   availability.Result
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "found",
			query:    "?address=Dam+1+Amsterdam",
			result:   availability.Result{IsAvailable: true, EstimatedMinutes: intPtr(18)},
			wantCode: http.StatusOK,
			wantBody: `{"isAvailable":true,"estimatedMinutes":18,"location":{"lat":52.373,"lng":4.893}}`,
		},
		{
			name:     "geocoding failed",
			query:    "?address=nowhere",
			err:      fmt.Errorf("geocode: %w", apperr.ErrGeocoding),
			wantCode: http.StatusUnprocessableEntity,
			wantBody: `{"error":"geocoding failed"}`,
		},
		{
			name:     "empty address",
			query:    "?address=%20",
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"address is required"}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc := &stubAvailability{
				addressFn: func(_ context.Context, a string) (availability.Result, domain.Point, error) {
					if tt.err != nil {
						return availability.Result{}, domain.Point{}, tt.err
					}
					return tt.result, domain.Point{Lat: 52.373, Lng: 4.893}, nil
				},
			}
			h := handlers.NewAvailabilityHandler(testLogger(), uc)

			rr := httptest.NewRecorder()
			h.CheckAddress(rr, httptest.NewRequest(http.MethodGet, "/availability/address"+tt.query, nil))

			require.Equal(t, tt.wantCode, rr.Code)
			require.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestAvailabilityResponse_NullEstimateIsExplicit(t *testing.T) {
	t.Parallel()

	h := handlers.NewAvailabilityHandler(nil, &stubAvailability{
		coordsFn: func(context.Context, domain.Point) (availability.Result, error) {
			return availability.Result{}, nil
		},
	})
	rr := httptest.NewRecorder()
	h.Check(rr, httptest.NewRequest(http.MethodGet, "/availability?lat=1&lng=1", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	v, ok := body["estimatedMinutes"]
	require.True(t, ok)
	require.Nil(t, v)
}
