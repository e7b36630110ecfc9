package handlers

import (
	"net/http"

	"service-delivery-engine/internal/domain"
	"service-delivery-engine/internal/logx"
)

// OrderHandler serves delivery order endpoints.
type OrderHandler struct {
	logger    logx.Logger
	orders    orderUsecase
	countdown countdownUsecase
}

// NewOrderHandler wires the order and countdown usecases into HTTP handlers.
func NewOrderHandler(logger logx.Logger, orders orderUsecase, countdown countdownUsecase) *OrderHandler {
	return &OrderHandler{logger: orNop(logger), orders: orders, countdown: countdown}
}

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	o, err := h.orders.Create(r.Context(), req.toModel())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/orders/"+o.ID)
	writeJSON(h.logger, w, r, http.StatusCreated, orderToDTO(*o))
}

// GetByID handles GET /orders/{id}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(r)
	if !ok {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToDTO(*o))
}

// UpdateStatus handles POST /orders/{id}/status with {"status": "..."}.
// Any spelling ParseOrderStatus understands is accepted.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(r)
	if !ok {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	next, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), id, next)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToDTO(*o))
}

// Countdown handles GET /orders/{id}/countdown, polled by clients.
func (h *OrderHandler) Countdown(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(r)
	if !ok {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	view, err := h.countdown.Get(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(h.logger, w, r, http.StatusOK, countdownToDTO(view))
}
