package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"fs3m/internal/service"
)

// FrameworkHandler exposes the framework taxonomy read endpoints.
type FrameworkHandler struct {
	frameworks *service.FrameworkService
}

// NewFrameworkHandler creates a new framework handler.
func NewFrameworkHandler(frameworks *service.FrameworkService) *FrameworkHandler {
	return &FrameworkHandler{frameworks: frameworks}
}

// List handles GET /v1/frameworks
func (h *FrameworkHandler) List(w http.ResponseWriter, r *http.Request) {
	frameworks, err := h.frameworks.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frameworks)
}

// GetStructure handles GET /v1/frameworks/{slug}
func (h *FrameworkHandler) GetStructure(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	structure, err := h.frameworks.GetStructure(r.Context(), slug)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, structure)
}
