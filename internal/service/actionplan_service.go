package service

import (
	"context"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fs3m/internal/model"
	"fs3m/internal/repository"
	"fs3m/internal/scoring"
)

// ActionPlanService assembles the remediation plan of a (customer,
// submission) pair from its recommendations and maintains the kanban board.
type ActionPlanService struct {
	recommendations repository.RecommendationRepo
	plans           repository.ActionPlanRepo
	logger          *zap.Logger
}

// NewActionPlanService creates a new action plan service.
func NewActionPlanService(
	recommendations repository.RecommendationRepo,
	plans repository.ActionPlanRepo,
	logger *zap.Logger,
) *ActionPlanService {
	return &ActionPlanService{
		recommendations: recommendations,
		plans:           plans,
		logger:          logger,
	}
}

// priorityRank orders plan entries: high before medium before low. Unknown
// priorities sink to the end.
func priorityRank(priority string) int {
	switch priority {
	case model.PriorityHigh:
		return 0
	case model.PriorityMedium:
		return 1
	case model.PriorityLow:
		return 2
	default:
		return 9
	}
}

// BuildOptions controls a plan build. Force discards any existing plan,
// including its creator and notes, before rebuilding from scratch.
type BuildOptions struct {
	Force     bool
	CreatedBy string
}

// BuildOrRefresh (re)assembles the plan from the submission's current
// recommendations. Links are recreated wholesale and every link starts back
// on the "To Do" column. Rebuilds are deterministic: same recommendations,
// same order.
func (s *ActionPlanService) BuildOrRefresh(ctx context.Context, customerID, submissionID string, opts BuildOptions) (*model.PlanView, error) {
	recs, err := s.recommendations.ListByCustomerAndSubmission(ctx, customerID, submissionID)
	if err != nil {
		return nil, err
	}

	if opts.Force {
		if err := s.plans.DeleteByPair(ctx, customerID, submissionID); err != nil {
			return nil, err
		}
	}

	plan, err := s.plans.GetOrCreate(ctx, customerID, submissionID, opts.CreatedBy)
	if err != nil {
		return nil, err
	}

	sortForPlan(recs)

	links := make([]model.PlanRecommendation, 0, len(recs))
	for i, rec := range recs {
		links = append(links, model.PlanRecommendation{
			RecommendationID: rec.ID,
			Order:            i,
			Status:           model.KanbanToDo,
		})
	}
	if err := s.plans.ReplaceLinks(ctx, plan.ID, links); err != nil {
		return nil, err
	}

	plan.Duration, plan.Urgency, plan.Severity = planAggregates(recs)
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, err
	}

	stored, err := s.plans.ListLinks(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("action plan built",
		zap.String("submissionId", submissionID),
		zap.String("planId", plan.ID),
		zap.Int("items", len(stored)))
	return &model.PlanView{Plan: *plan, Items: stored}, nil
}

// GetView returns the plan with its ordered links.
func (s *ActionPlanService) GetView(ctx context.Context, customerID, submissionID string) (*model.PlanView, error) {
	plan, err := s.plans.GetByPair(ctx, customerID, submissionID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	links, err := s.plans.ListLinks(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	return &model.PlanView{Plan: *plan, Items: links}, nil
}

// UpdateKanban applies a batch of board moves. Updates referencing
// recommendations no longer linked to the plan are skipped, not failed, so a
// stale board client cannot abort the whole batch. Returns the applied count.
func (s *ActionPlanService) UpdateKanban(ctx context.Context, planID string, updates []model.KanbanUpdate) (int, error) {
	applied := 0
	for _, u := range updates {
		status := u.Status
		switch status {
		case model.KanbanToDo, model.KanbanInProgress, model.KanbanDone:
		default:
			s.logger.Warn("kanban update with unknown status skipped",
				zap.String("planId", planID), zap.String("status", status))
			continue
		}
		matched, err := s.plans.UpdateLink(ctx, planID, u.RecommendationID, status, u.Order)
		if err != nil {
			return applied, err
		}
		if !matched {
			s.logger.Debug("kanban update for unlinked recommendation skipped",
				zap.String("planId", planID),
				zap.String("recommendationId", u.RecommendationID))
			continue
		}
		applied++
	}
	return applied, nil
}

// Delete removes the plan and its links.
func (s *ActionPlanService) Delete(ctx context.Context, customerID, submissionID string) error {
	return s.plans.DeleteByPair(ctx, customerID, submissionID)
}

// sortForPlan orders recommendations by priority rank, then target date
// (end date, falling back to start date), then id for determinism.
func sortForPlan(recs []*model.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if priorityRank(a.Priority) != priorityRank(b.Priority) {
			return priorityRank(a.Priority) < priorityRank(b.Priority)
		}
		ad, bd := a.EndDate, b.EndDate
		if ad.IsZero() {
			ad = a.StartDate
		}
		if bd.IsZero() {
			bd = b.StartDate
		}
		if !ad.Equal(bd) {
			return ad.Before(bd)
		}
		return a.ID < b.ID
	})
}

// planAggregates derives the plan-level duration (longest recommendation
// horizon) and the mean urgency/severity grades, rendered to one decimal.
// Each aggregate stays empty when no recommendation carries a value for it.
func planAggregates(recs []*model.Recommendation) (duration, urgency, severity string) {
	maxMonths := 0
	var urgencies, severities []decimal.Decimal
	for _, rec := range recs {
		if rec.Months > maxMonths {
			maxMonths = rec.Months
		}
		if v, err := decimal.NewFromString(rec.Urgency); err == nil {
			urgencies = append(urgencies, v)
		}
		if v, err := decimal.NewFromString(rec.Severity); err == nil {
			severities = append(severities, v)
		}
	}
	if maxMonths > 0 {
		duration = strconv.Itoa(maxMonths) + " months"
	}
	if len(urgencies) > 0 {
		urgency = scoring.Round1(scoring.Mean(urgencies)).StringFixed(1)
	}
	if len(severities) > 0 {
		severity = scoring.Round1(scoring.Mean(severities)).StringFixed(1)
	}
	return duration, urgency, severity
}
