package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fs3m/internal/model"
	"fs3m/internal/repository"
	"fs3m/internal/scoring"
)

// AssessmentRunner recomputes the assessment of a submission. Implemented by
// AssessmentService; injected after construction to break the service cycle.
type AssessmentRunner interface {
	Run(ctx context.Context, submissionID, typeSlug string) (*model.AssessmentView, error)
}

// RecommendationGenerator produces and audits recommendations for a
// submission.
type RecommendationGenerator interface {
	Generate(ctx context.Context, submissionID string, opts GenerateOptions) (*GenerateResult, error)
	VerifyMissing(ctx context.Context, submissionID string) (*model.MissingReport, error)
}

// SubmissionService owns the questionnaire lifecycle: one submission per
// (customer, framework), answer upserts while editable, and the review state
// machine.
type SubmissionService struct {
	submissions repository.SubmissionRepo
	answers     repository.AnswerRepo
	taxonomy    repository.TaxonomyRepo
	logger      *zap.Logger

	assessments     AssessmentRunner
	recommendations RecommendationGenerator
}

// NewSubmissionService creates a new submission service.
func NewSubmissionService(
	submissions repository.SubmissionRepo,
	answers repository.AnswerRepo,
	taxonomy repository.TaxonomyRepo,
	logger *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		answers:     answers,
		taxonomy:    taxonomy,
		logger:      logger,
	}
}

// SetAssessmentRunner injects the assessment trigger fired on review entry.
func (s *SubmissionService) SetAssessmentRunner(runner AssessmentRunner) {
	s.assessments = runner
}

// SetRecommendationGenerator injects the recommendation trigger fired on
// review entry and the pre-approval coverage check.
func (s *SubmissionService) SetRecommendationGenerator(gen RecommendationGenerator) {
	s.recommendations = gen
}

// GetOrCreateForCustomer returns the customer's open submission for the
// framework, creating a draft when none exists.
func (s *SubmissionService) GetOrCreateForCustomer(ctx context.Context, customerID, frameworkSlug string) (*model.Submission, error) {
	framework, err := s.taxonomy.GetFrameworkBySlug(ctx, frameworkSlug)
	if err != nil {
		return nil, err
	}
	if framework == nil {
		return nil, ErrFrameworkNotFound
	}
	existing, err := s.submissions.GetByCustomerAndFramework(ctx, customerID, framework.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	submission := &model.Submission{
		CustomerID:  customerID,
		FrameworkID: framework.ID,
		Status:      model.StatusDraft,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, err
	}
	s.logger.Info("submission created",
		zap.String("submissionId", submission.ID),
		zap.String("customerId", customerID),
		zap.String("framework", frameworkSlug))
	return submission, nil
}

// GetByID loads one submission.
func (s *SubmissionService) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}
	return submission, nil
}

// ListByCustomer returns the customer's submissions, newest first.
func (s *SubmissionService) ListByCustomer(ctx context.Context, customerID string) ([]*model.Submission, error) {
	return s.submissions.ListByCustomer(ctx, customerID)
}

// ListByStatus returns submissions in one lifecycle state (analyst queues).
func (s *SubmissionService) ListByStatus(ctx context.Context, status string) ([]*model.Submission, error) {
	return s.submissions.ListByStatus(ctx, status)
}

// UpsertAnswer stores or replaces the answer of one question and refreshes
// the completeness percentage. Rejected once the submission left the editable
// states.
func (s *SubmissionService) UpsertAnswer(ctx context.Context, submissionID string, answer *model.Answer) (*model.Submission, error) {
	submission, err := s.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if !submission.IsEditable() {
		return nil, ErrSubmissionNotEditable
	}

	answer.SubmissionID = submissionID
	if err := s.answers.Upsert(ctx, answer); err != nil {
		return nil, err
	}

	progress, err := s.computeProgress(ctx, submission)
	if err != nil {
		return nil, err
	}
	if err := s.submissions.UpdateProgress(ctx, submissionID, progress); err != nil {
		return nil, err
	}
	submission.Progress = progress
	return submission, nil
}

// ListAnswers returns all stored answers of a submission.
func (s *SubmissionService) ListAnswers(ctx context.Context, submissionID string) ([]*model.Answer, error) {
	if _, err := s.GetByID(ctx, submissionID); err != nil {
		return nil, err
	}
	return s.answers.ListBySubmission(ctx, submissionID)
}

// Transition moves the submission along the state graph with no side
// effects. SendForReview and FinishReview wrap the transitions that have
// them.
func (s *SubmissionService) Transition(ctx context.Context, submissionID, newStatus string) (*model.Submission, error) {
	submission, err := s.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if err := submission.Transition(newStatus); err != nil {
		return nil, err
	}
	if err := s.submissions.Update(ctx, submission); err != nil {
		return nil, err
	}
	s.logger.Info("submission transitioned",
		zap.String("submissionId", submissionID),
		zap.String("status", newStatus))
	return submission, nil
}

// SendForReview moves the submission into review and fires the automatic
// pipeline: assessment recomputation and recommendation generation. Pipeline
// failures are logged, not rolled back; analysts can rerun both on demand.
func (s *SubmissionService) SendForReview(ctx context.Context, submissionID, analystID string) (*model.Submission, error) {
	submission, err := s.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if err := submission.Transition(model.StatusInReview); err != nil {
		return nil, err
	}
	if analystID != "" {
		submission.AssignedTo = analystID
	}
	if err := s.submissions.Update(ctx, submission); err != nil {
		return nil, err
	}

	if s.assessments != nil {
		if _, err := s.assessments.Run(ctx, submissionID, ""); err != nil {
			s.logger.Error("assessment run on review entry failed",
				zap.String("submissionId", submissionID), zap.Error(err))
		}
	}
	if s.recommendations != nil {
		if _, err := s.recommendations.Generate(ctx, submissionID, GenerateOptions{AnalystID: analystID}); err != nil {
			s.logger.Error("recommendation generation on review entry failed",
				zap.String("submissionId", submissionID), zap.Error(err))
		}
	}
	return submission, nil
}

// FinishReview closes the review. Approval requires full recommendation
// coverage of the below-goal controls; a gap fails with
// IncompleteSubmissionError listing them.
func (s *SubmissionService) FinishReview(ctx context.Context, submissionID string, approve bool) (*model.Submission, error) {
	submission, err := s.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if !approve {
		return s.Transition(ctx, submissionID, model.StatusPending)
	}

	if s.recommendations != nil {
		report, err := s.recommendations.VerifyMissing(ctx, submissionID)
		if err != nil {
			return nil, err
		}
		if !report.CanSubmit {
			return nil, &IncompleteSubmissionError{Missing: report.Missing}
		}
	}

	if err := submission.Transition(model.StatusSubmitted); err != nil {
		return nil, err
	}
	now := time.Now()
	submission.Approved = true
	submission.ApprovedAt = &now
	submission.FinishedAt = &now
	if err := s.submissions.Update(ctx, submission); err != nil {
		return nil, err
	}
	s.logger.Info("submission approved", zap.String("submissionId", submissionID))
	return submission, nil
}

// Archive retires a closed submission so the customer can start a new cycle.
// Only submitted submissions can be archived; archival bypasses the edit
// graph since archived is terminal.
func (s *SubmissionService) Archive(ctx context.Context, submissionID string) (*model.Submission, error) {
	submission, err := s.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.Status != model.StatusSubmitted {
		return nil, model.ErrInvalidTransition
	}
	submission.Status = model.StatusArchived
	if err := s.submissions.Update(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

// computeProgress is the share of required questions answered, in percent
// with one decimal.
func (s *SubmissionService) computeProgress(ctx context.Context, submission *model.Submission) (float64, error) {
	required, err := s.taxonomy.ListQuestionIDs(ctx, submission.FrameworkID, true)
	if err != nil {
		return 0, err
	}
	if len(required) == 0 {
		return 0, nil
	}
	answered, err := s.answers.ListAnsweredQuestionIDs(ctx, submission.ID)
	if err != nil {
		return 0, err
	}
	answeredSet := make(map[string]struct{}, len(answered))
	for _, id := range answered {
		answeredSet[id] = struct{}{}
	}
	count := 0
	for _, id := range required {
		if _, ok := answeredSet[id]; ok {
			count++
		}
	}
	ratio := decimal.NewFromInt(int64(count)).
		Div(decimal.NewFromInt(int64(len(required)))).
		Mul(decimal.NewFromInt(100))
	f, _ := scoring.Round1(ratio).Float64()
	return f, nil
}
