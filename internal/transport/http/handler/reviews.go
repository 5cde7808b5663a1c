package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-confirm-api/internal/application/review"
	"github.com/go-confirm-api/internal/domain"
)

// ReviewHandler serves product reviews.
type ReviewHandler struct {
	svc review.Service
}

func NewReviewHandler(svc review.Service) *ReviewHandler { return &ReviewHandler{svc: svc} }

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	reviews, err := h.svc.List(r.Context(), chi.URLParam(r, "productID"), limit)
	if err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusOK, ReviewsData{Reviews: reviews})
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	creds, ok := credentials(w, r)
	if !ok {
		return
	}
	var req domain.CreateReviewRequest
	if !decode(w, r, &req) {
		return
	}
	rv, err := h.svc.Create(r.Context(), creds, chi.URLParam(r, "productID"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, rv)
}
