package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"fs3m/internal/model"
	"fs3m/internal/service"
	"fs3m/internal/transport/rest/middleware"
)

// ActionPlanHandler exposes the remediation plan and kanban endpoints.
type ActionPlanHandler struct {
	plans *service.ActionPlanService
}

// NewActionPlanHandler creates a new action plan handler.
func NewActionPlanHandler(plans *service.ActionPlanService) *ActionPlanHandler {
	return &ActionPlanHandler{plans: plans}
}

type buildPlanRequest struct {
	Force bool `json:"force"`
}

// Build handles POST /v1/customers/{customerId}/submissions/{submissionId}/plan
func (h *ActionPlanHandler) Build(w http.ResponseWriter, r *http.Request) {
	var req buildPlanRequest
	// body is optional; force discards the existing plan first
	_ = json.NewDecoder(r.Body).Decode(&req)

	vars := mux.Vars(r)
	view, err := h.plans.BuildOrRefresh(r.Context(), vars["customerId"], vars["submissionId"], service.BuildOptions{
		Force:     req.Force,
		CreatedBy: middleware.GetUserID(r.Context()),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Get handles GET /v1/customers/{customerId}/submissions/{submissionId}/plan
func (h *ActionPlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	view, err := h.plans.GetView(r.Context(), vars["customerId"], vars["submissionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Delete handles DELETE /v1/customers/{customerId}/submissions/{submissionId}/plan
func (h *ActionPlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.plans.Delete(r.Context(), vars["customerId"], vars["submissionId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type kanbanRequest struct {
	Updates []model.KanbanUpdate `json:"updates" validate:"required,min=1"`
}

// UpdateKanban handles PUT /v1/plans/{planId}/kanban. Moves referencing
// recommendations no longer on the plan are skipped; the response reports the
// applied count.
func (h *ActionPlanHandler) UpdateKanban(w http.ResponseWriter, r *http.Request) {
	var req kanbanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	applied, err := h.plans.UpdateKanban(r.Context(), mux.Vars(r)["planId"], req.Updates)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"applied": applied})
}
