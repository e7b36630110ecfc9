package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"service-delivery-engine/internal/domain"
	"service-delivery-engine/internal/logx"
)

// AvailabilityHandler serves delivery availability checks.
type AvailabilityHandler struct {
	logger logx.Logger
	uc     availabilityUsecase
}

// NewAvailabilityHandler wires an availability usecase into HTTP handlers.
func NewAvailabilityHandler(logger logx.Logger, uc availabilityUsecase) *AvailabilityHandler {
	return &AvailabilityHandler{logger: orNop(logger), uc: uc}
}

// Check handles GET /availability?lat=&lng=.
// Missing or malformed coordinates answer "not available" with 200.
func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := domain.Point{Lat: parseCoord(q.Get("lat")), Lng: parseCoord(q.Get("lng"))}

	res, err := h.uc.CheckCoordinates(r.Context(), target)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, availabilityToDTO(res))
}

// CheckAddress handles GET /availability/address?address=.
func (h *AvailabilityHandler) CheckAddress(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		writeError(h.logger, w, r, http.StatusBadRequest, "address is required")
		return
	}

	res, at, err := h.uc.CheckAddress(r.Context(), address)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	resp := availabilityToDTO(res)
	loc := pointToDTO(at)
	resp.Location = &loc
	writeJSON(h.logger, w, r, http.StatusOK, resp)
}

func parseCoord(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
