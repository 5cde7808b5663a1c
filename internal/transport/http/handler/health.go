package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HealthHandler handles the welcome and health-check endpoints.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) Welcome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"hello": "welcome to the api"})
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	if action == "ping" {
		writeOK(w, http.StatusOK, "pong")
		return
	}
	writeError(w, http.StatusBadRequest, "unknown action")
}
