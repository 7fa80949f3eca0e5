package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"fs3m/internal/model"
	"fs3m/internal/service"
	"fs3m/internal/transport/rest/middleware"
)

// RecommendationHandler exposes the gap-analysis endpoints.
type RecommendationHandler struct {
	recommendations *service.RecommendationService
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(recommendations *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recommendations}
}

type generateRequest struct {
	OnlyNew bool `json:"onlyNew"`
	Force   bool `json:"force"`
}

// Generate handles POST /v1/submissions/{id}/recommendations/generate
func (h *RecommendationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	// body is optional; default is a refresh-on-conflict run
	_ = json.NewDecoder(r.Body).Decode(&req)

	result, err := h.recommendations.Generate(r.Context(), mux.Vars(r)["id"], service.GenerateOptions{
		OnlyNew:   req.OnlyNew,
		Force:     req.Force,
		AnalystID: middleware.GetUserID(r.Context()),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// List handles GET /v1/submissions/{id}/recommendations
func (h *RecommendationHandler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.recommendations.ListBySubmission(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// VerifyMissing handles GET /v1/submissions/{id}/recommendations/missing
func (h *RecommendationHandler) VerifyMissing(w http.ResponseWriter, r *http.Request) {
	report, err := h.recommendations.VerifyMissing(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Update handles PUT /v1/recommendations/{id}
func (h *RecommendationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var rec model.Recommendation
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec.ID = mux.Vars(r)["id"]
	if err := h.recommendations.Update(r.Context(), &rec); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
