package handlers

import (
	"net/http"
	"strconv"

	"service-delivery-engine/internal/logx"
)

// CandidateHandler serves HTTP endpoints for delivery candidates.
type CandidateHandler struct {
	logger logx.Logger
	uc     candidateUsecase
}

// NewCandidateHandler wires a candidate usecase into HTTP handlers.
func NewCandidateHandler(logger logx.Logger, uc candidateUsecase) *CandidateHandler {
	return &CandidateHandler{logger: orNop(logger), uc: uc}
}

// GetByID handles GET /candidates/{id}.
func (h *CandidateHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	c, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, candidateToDTO(*c))
}

// List handles GET /candidates?limit=&offset=.
func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := optionalNonNegative(q.Get("limit"))
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, err := optionalNonNegative(q.Get("offset"))
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid offset")
		return
	}

	list, err := h.uc.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, candidatesToDTO(list))
}

// Create handles POST /candidates.
func (h *CandidateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCandidateRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	id, err := h.uc.Create(r.Context(), req.toModel())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/candidates/"+strconv.FormatInt(id, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, map[string]any{"id": id})
}

// Update handles PATCH /candidates/{id}; absent fields are left unchanged.
func (h *CandidateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateCandidateRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	if err := h.uc.UpdatePartial(r.Context(), req.toModel(id)); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "ok"})
}
