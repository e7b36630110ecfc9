package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-delivery-engine/internal/apperr"
)

func newServer(t *testing.T, h http.HandlerFunc) *HTTPGeocoder {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPGeocoder(srv.URL+"/maps/api/geocode/json", "secret", time.Second)
}

func TestHTTPGeocoder_OK(t *testing.T) {
	t.Parallel()

	g := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/geocode/json", r.URL.Path)
		assert.Equal(t, "Dam 1, Amsterdam", r.URL.Query().Get("address"))
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":52.373,"lng":4.8932}}}]}`))
	})

	p, err := g.Geocode(context.Background(), "Dam 1, Amsterdam")
	require.NoError(t, err)
	assert.InDelta(t, 52.373, p.Lat, 1e-9)
	assert.InDelta(t, 4.8932, p.Lng, 1e-9)
}

func TestHTTPGeocoder_ZeroResults(t *testing.T) {
	t.Parallel()

	g := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	})

	_, err := g.Geocode(context.Background(), "nowhere")
	require.ErrorIs(t, err, apperr.ErrGeocoding)
	assert.False(t, isRetryable(err))
}

func TestHTTPGeocoder_ProviderStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		code      int
		body      string
		retryable bool
	}{
		{name: "rate limited", code: http.StatusTooManyRequests, body: "slow down", retryable: true},
		{name: "server error", code: http.StatusBadGateway, body: "bad gateway", retryable: true},
		{name: "forbidden", code: http.StatusForbidden, body: "no key", retryable: false},
		{name: "over query limit", code: http.StatusOK, body: `{"status":"OVER_QUERY_LIMIT"}`, retryable: true},
		{name: "request denied", code: http.StatusOK, body: `{"status":"REQUEST_DENIED","error_message":"bad key"}`, retryable: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := g.Geocode(context.Background(), "x")
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.retryable, isRetryable(err))
		})
	}
}

func TestHTTPGeocoder_BadPayload(t *testing.T) {
	t.Parallel()

	g := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	_, err := g.Geocode(context.Background(), "x")
	require.ErrorIs(t, err, apperr.ErrGeocoding)

	g = newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":123,"lng":4}}}]}`))
	})
	_, err = g.Geocode(context.Background(), "x")
	require.ErrorIs(t, err, apperr.ErrGeocoding)
}

func TestHTTPGeocoder_TransportErrorIsRetryable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPGeocoder(url, "", 200*time.Millisecond).Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, isRetryable(err))
}
