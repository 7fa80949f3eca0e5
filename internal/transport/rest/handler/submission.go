package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"fs3m/internal/model"
	"fs3m/internal/service"
	"fs3m/internal/transport/rest/middleware"
)

// SubmissionHandler exposes the questionnaire lifecycle endpoints.
type SubmissionHandler struct {
	submissions *service.SubmissionService
}

// NewSubmissionHandler creates a new submission handler.
func NewSubmissionHandler(submissions *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

type openSubmissionRequest struct {
	FrameworkSlug string `json:"frameworkSlug" validate:"required"`
}

// Open handles POST /v1/submissions. Returns the caller's open submission for
// the framework, creating a draft when none exists.
func (h *SubmissionHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	submission, err := h.submissions.GetOrCreateForCustomer(r.Context(), middleware.GetUserID(r.Context()), req.FrameworkSlug)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}

// Get handles GET /v1/submissions/{id}
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	submission, err := h.submissions.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}

// List handles GET /v1/submissions. Customers see their own; analysts can
// filter any status with ?status=.
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := r.URL.Query().Get("status")
	if status != "" && middleware.GetRole(ctx) != model.RoleCustomer {
		if !model.ValidStatus(status) {
			writeError(w, http.StatusBadRequest, "unknown status")
			return
		}
		submissions, err := h.submissions.ListByStatus(ctx, status)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, submissions)
		return
	}

	submissions, err := h.submissions.ListByCustomer(ctx, middleware.GetUserID(ctx))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submissions)
}

type answerRequest struct {
	QuestionID string      `json:"questionId" validate:"required"`
	Value      interface{} `json:"value"`
	Evidence   string      `json:"evidence"`
	Score      *float64    `json:"score"`
}

// UpsertAnswer handles PUT /v1/submissions/{id}/answers
func (h *SubmissionHandler) UpsertAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	submission, err := h.submissions.UpsertAnswer(r.Context(), mux.Vars(r)["id"], &model.Answer{
		QuestionID: req.QuestionID,
		Value:      req.Value,
		Evidence:   req.Evidence,
		Score:      req.Score,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}

// ListAnswers handles GET /v1/submissions/{id}/answers
func (h *SubmissionHandler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := h.submissions.ListAnswers(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answers)
}

type transitionRequest struct {
	Status string `json:"status" validate:"required"`
}

// Transition handles POST /v1/submissions/{id}/status
func (h *SubmissionHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	submission, err := h.submissions.Transition(r.Context(), mux.Vars(r)["id"], req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}

// SendForReview handles POST /v1/submissions/{id}/send-for-review
func (h *SubmissionHandler) SendForReview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AnalystID string `json:"analystId"`
	}
	// body is optional
	_ = json.NewDecoder(r.Body).Decode(&body)

	submission, err := h.submissions.SendForReview(r.Context(), mux.Vars(r)["id"], body.AnalystID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}

type finishReviewRequest struct {
	Approve bool `json:"approve"`
}

// FinishReview handles POST /v1/submissions/{id}/finish-review
func (h *SubmissionHandler) FinishReview(w http.ResponseWriter, r *http.Request) {
	var req finishReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	submission, err := h.submissions.FinishReview(r.Context(), mux.Vars(r)["id"], req.Approve)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}

// Archive handles POST /v1/submissions/{id}/archive
func (h *SubmissionHandler) Archive(w http.ResponseWriter, r *http.Request) {
	submission, err := h.submissions.Archive(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}
