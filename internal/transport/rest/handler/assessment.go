package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"fs3m/internal/service"
)

// AssessmentHandler exposes the maturity calculation endpoints.
type AssessmentHandler struct {
	assessments *service.AssessmentService
}

// NewAssessmentHandler creates a new assessment handler.
func NewAssessmentHandler(assessments *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

// Run handles POST /v1/submissions/{id}/assessment/run. The optional ?type=
// query selects a non-default calculator config.
func (h *AssessmentHandler) Run(w http.ResponseWriter, r *http.Request) {
	view, err := h.assessments.Run(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("type"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Get handles GET /v1/submissions/{id}/assessment
func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.assessments.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
