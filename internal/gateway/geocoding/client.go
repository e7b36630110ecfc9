package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"service-delivery-engine/internal/apperr"
	"service-delivery-engine/internal/domain"
)

// StatusError is a non-success answer from the geocoding provider.
type StatusError struct {
	HTTPStatus int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("geocoder status %s (http %d): %s", e.Status, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("geocoder http %d: %s", e.HTTPStatus, e.Message)
}

// Retryable reports whether the provider asked us to slow down or failed on its side.
func (e *StatusError) Retryable() bool {
	return e.HTTPStatus == http.StatusTooManyRequests ||
		e.HTTPStatus >= http.StatusInternalServerError ||
		e.Status == "OVER_QUERY_LIMIT" ||
		e.Status == "UNKNOWN_ERROR"
}

// HTTPGeocoder calls a Google-Geocoding-compatible JSON endpoint.
type HTTPGeocoder struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPGeocoder creates an HTTPGeocoder. A zero timeout means 5s.
func NewHTTPGeocoder(baseURL, apiKey string, timeout time.Duration) *HTTPGeocoder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPGeocoder{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves address to the coordinates of the best match.
func (g *HTTPGeocoder) Geocode(ctx context.Context, address string) (domain.Point, error) {
	q := url.Values{}
	q.Set("address", address)
	if g.apiKey != "" {
		q.Set("key", g.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return domain.Point{}, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.Point{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.Point{}, fmt.Errorf("read geocode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Point{}, &StatusError{HTTPStatus: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var out geocodeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return domain.Point{}, fmt.Errorf("%w: decode response: %v", apperr.ErrGeocoding, err)
	}

	switch out.Status {
	case "OK":
	case "ZERO_RESULTS":
		return domain.Point{}, fmt.Errorf("%w: no results for address", apperr.ErrGeocoding)
	default:
		return domain.Point{}, &StatusError{HTTPStatus: resp.StatusCode, Status: out.Status, Message: out.ErrorMessage}
	}
	if len(out.Results) == 0 {
		return domain.Point{}, fmt.Errorf("%w: no results for address", apperr.ErrGeocoding)
	}

	loc := out.Results[0].Geometry.Location
	p := domain.Point{Lat: loc.Lat, Lng: loc.Lng}
	if !p.Valid() {
		return domain.Point{}, fmt.Errorf("%w: provider returned invalid coordinates", apperr.ErrGeocoding)
	}
	return p, nil
}
