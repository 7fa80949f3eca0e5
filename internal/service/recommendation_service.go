package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fs3m/internal/catalog"
	"fs3m/internal/model"
	"fs3m/internal/repository"
	"fs3m/internal/scoring"
)

// GenerateOptions controls a recommendation generation run. The default run
// refreshes on conflict: an existing (control, applicability) duplicate is
// deleted and recreated. OnlyNew skips duplicates instead, preserving analyst
// edits. Force wipes every recommendation of the submission up front, so
// targets that no longer exist disappear too.
type GenerateOptions struct {
	OnlyNew   bool
	Force     bool
	AnalystID string
}

// GenerateResult reports what one generation run did.
type GenerateResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// RecommendationService derives remediation recommendations for controls
// scoring below the framework goal.
type RecommendationService struct {
	submissions     repository.SubmissionRepo
	answers         repository.AnswerRepo
	configs         repository.ConfigRepo
	recommendations repository.RecommendationRepo
	logger          *zap.Logger
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(
	submissions repository.SubmissionRepo,
	answers repository.AnswerRepo,
	configs repository.ConfigRepo,
	recommendations repository.RecommendationRepo,
	logger *zap.Logger,
) *RecommendationService {
	return &RecommendationService{
		submissions:     submissions,
		answers:         answers,
		configs:         configs,
		recommendations: recommendations,
		logger:          logger,
	}
}

// controlRollup holds the per-control dimension means the gap analysis needs.
type controlRollup struct {
	code        string
	domainCode  string
	policy      *decimal.Decimal
	practice    *decimal.Decimal
	score       *decimal.Decimal
	questionIDs map[string]string // applicability -> anchoring question id
}

// target is one recommendation the submission should have.
type target struct {
	control       *controlRollup
	applicability string
	value         decimal.Decimal
	goal          decimal.Decimal
}

// Generate creates recommendations for every control dimension below goal.
// Duplicate (control, applicability) pairs are deleted and recreated unless
// OnlyNew is set, in which case they are skipped and analyst edits survive.
// Force clears the whole submission first so obsolete recommendations are
// removed as well.
func (s *RecommendationService) Generate(ctx context.Context, submissionID string, opts GenerateOptions) (*GenerateResult, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}

	targets, err := s.collectTargets(ctx, submission)
	if err != nil {
		return nil, err
	}

	if opts.Force {
		if err := s.recommendations.DeleteBySubmission(ctx, submissionID); err != nil {
			return nil, err
		}
	}

	result := &GenerateResult{}
	now := time.Now()
	for _, t := range targets {
		if !opts.Force {
			exists, err := s.recommendations.ExistsByIdentity(ctx, submissionID, t.control.code, t.applicability)
			if err != nil {
				return nil, err
			}
			if exists {
				if opts.OnlyNew {
					result.Skipped++
					continue
				}
				if err := s.recommendations.DeleteByIdentity(ctx, submissionID, t.control.code, t.applicability); err != nil {
					return nil, err
				}
			}
		}

		rec := s.buildRecommendation(submission, t, opts.AnalystID, now)
		if err := s.recommendations.Create(ctx, rec); err != nil {
			return nil, err
		}
		result.Created++
	}

	s.logger.Info("recommendations generated",
		zap.String("submissionId", submissionID),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Bool("onlyNew", opts.OnlyNew),
		zap.Bool("force", opts.Force))
	return result, nil
}

// VerifyMissing reports the controls below goal still lacking a
// recommendation. Submissions cannot be approved while any remain.
func (s *RecommendationService) VerifyMissing(ctx context.Context, submissionID string) (*model.MissingReport, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}

	targets, err := s.collectTargets(ctx, submission)
	if err != nil {
		return nil, err
	}

	missingByControl := map[string]*model.MissingRecommendation{}
	var order []string
	for _, t := range targets {
		exists, err := s.recommendations.ExistsByIdentity(ctx, submissionID, t.control.code, t.applicability)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		m, ok := missingByControl[t.control.code]
		if !ok {
			m = &model.MissingRecommendation{
				ControlCode: t.control.code,
				Domain:      t.control.domainCode,
			}
			missingByControl[t.control.code] = m
			order = append(order, t.control.code)
		}
		if qid := t.control.questionIDs[t.applicability]; qid != "" {
			m.QuestionIDs = append(m.QuestionIDs, qid)
		}
	}
	sort.Strings(order)

	report := &model.MissingReport{Missing: []model.MissingRecommendation{}}
	for _, code := range order {
		report.Missing = append(report.Missing, *missingByControl[code])
	}
	report.TotalMissing = len(report.Missing)
	report.CanSubmit = report.TotalMissing == 0
	return report, nil
}

// ListBySubmission returns all recommendations of a submission.
func (s *RecommendationService) ListBySubmission(ctx context.Context, submissionID string) ([]*model.Recommendation, error) {
	return s.recommendations.ListBySubmission(ctx, submissionID)
}

// Update persists analyst edits to a recommendation.
func (s *RecommendationService) Update(ctx context.Context, rec *model.Recommendation) error {
	return s.recommendations.Update(ctx, rec)
}

func (s *RecommendationService) collectTargets(ctx context.Context, submission *model.Submission) ([]target, error) {
	cfg, err := s.configs.GetDefaultConfig(ctx, submission.FrameworkID)
	if err != nil {
		return nil, err
	}
	mapping := model.MappingConfig{}.WithDefaults()
	if cfg != nil {
		mapping = cfg.Mapping.WithDefaults()
	}

	facts, err := s.answers.ListFacts(ctx, submission.ID)
	if err != nil {
		return nil, err
	}
	rollups := rollupControls(facts, mapping)
	return gapTargets(rollups, mapping), nil
}

// localCodeSet builds the set of accepted spellings for one dimension code.
// Exports of the same framework vary between Portuguese and English labels,
// so the configured code is joined by its known aliases.
func localCodeSet(configured string, aliases ...string) map[string]bool {
	set := map[string]bool{strings.ToLower(strings.TrimSpace(configured)): true}
	for _, alias := range aliases {
		set[alias] = true
	}
	return set
}

// rollupControls buckets answer facts into per-control dimension means.
func rollupControls(facts []model.AnswerFact, mapping model.MappingConfig) []*controlRollup {
	type agg struct {
		rollup   *controlRollup
		policy   []decimal.Decimal
		practice []decimal.Decimal
		score    []decimal.Decimal
	}
	byControl := map[string]*agg{}
	var order []string

	policyCodes := localCodeSet(mapping.PolicyCode, "politica", "política", "policy")
	practiceCodes := localCodeSet(mapping.PracticeCode, "pratica", "prática", "practice")
	scoreCodes := localCodeSet(mapping.ScoreCode, "score", "nota")

	for _, fact := range facts {
		if fact.ControlCode == "" {
			continue
		}
		a, ok := byControl[fact.ControlCode]
		if !ok {
			a = &agg{rollup: &controlRollup{
				code:        fact.ControlCode,
				domainCode:  fact.DomainCode,
				questionIDs: map[string]string{},
			}}
			byControl[fact.ControlCode] = a
			order = append(order, fact.ControlCode)
		}
		if a.rollup.domainCode == "" {
			a.rollup.domainCode = fact.DomainCode
		}

		value := scoring.Normalize(fact.Value)
		if fact.Score != nil {
			value = decimal.NewFromFloat(*fact.Score)
		}
		local := strings.ToLower(strings.TrimSpace(fact.LocalCode))
		switch {
		case policyCodes[local]:
			a.policy = append(a.policy, value)
			a.rollup.questionIDs[model.ApplicabilityPolicy] = fact.QuestionID
		case practiceCodes[local]:
			a.practice = append(a.practice, value)
			a.rollup.questionIDs[model.ApplicabilityPractice] = fact.QuestionID
		case scoreCodes[local]:
			a.score = append(a.score, value)
			a.rollup.questionIDs[model.ApplicabilityBoth] = fact.QuestionID
		}
	}

	sort.Strings(order)
	out := make([]*controlRollup, 0, len(order))
	for _, code := range order {
		a := byControl[code]
		if len(a.policy) > 0 {
			m := scoring.Mean(a.policy)
			a.rollup.policy = &m
		}
		if len(a.practice) > 0 {
			m := scoring.Mean(a.practice)
			a.rollup.practice = &m
		}
		if len(a.score) > 0 {
			m := scoring.Mean(a.score)
			a.rollup.score = &m
		}
		out = append(out, a.rollup)
	}
	return out
}

// gapTargets derives the (control, applicability) pairs below goal. When
// neither policy nor practice was answered, a below-goal score produces a
// single Both recommendation.
func gapTargets(rollups []*controlRollup, mapping model.MappingConfig) []target {
	goal := decimal.NewFromFloat(mapping.Goal)
	var out []target
	for _, r := range rollups {
		if r.policy != nil && r.policy.LessThan(goal) {
			out = append(out, target{control: r, applicability: model.ApplicabilityPolicy, value: *r.policy, goal: goal})
		}
		if r.practice != nil && r.practice.LessThan(goal) {
			out = append(out, target{control: r, applicability: model.ApplicabilityPractice, value: *r.practice, goal: goal})
		}
		if r.policy == nil && r.practice == nil && r.score != nil && r.score.LessThan(goal) {
			out = append(out, target{control: r, applicability: model.ApplicabilityBoth, value: *r.score, goal: goal})
		}
	}
	return out
}

func (s *RecommendationService) buildRecommendation(submission *model.Submission, t target, analystID string, now time.Time) *model.Recommendation {
	entry := catalog.Resolve(t.control.code)
	priority := entry.Priority
	urgency := "3"
	severity := "3"
	// deep gaps escalate: two or more levels below the goal
	if t.value.LessThanOrEqual(decimal.NewFromInt(2)) {
		priority = model.PriorityHigh
		urgency = "4"
		severity = "4"
	}

	start := now
	end := scoring.AddMonths(start, entry.Months)

	// anchor to the triggering question; fall back to the control itself
	// when the export carried no question id
	questionRef := t.control.questionIDs[t.applicability]
	if questionRef == "" {
		questionRef = t.control.code
	}

	return &model.Recommendation{
		CustomerID:    submission.CustomerID,
		SubmissionID:  submission.ID,
		AnalystID:     analystID,
		Name:          entry.Name,
		Category:      catalog.CategoryForFunction(scoring.FunctionCode(t.control.code)),
		Applicability: t.applicability,
		ControlCode:   t.control.code,
		Priority:      priority,
		StartDate:     start,
		EndDate:       end,
		Months:        entry.Months,
		Details:       entry.Details,
		Investments:   entry.Investments,
		Risks:         entry.Risks,
		Justification: entry.Justification + " Current level: " + t.value.StringFixed(1) + " of " + t.goal.StringFixed(1) + ".",
		Urgency:       urgency,
		Severity:      severity,
		Technology:    "Agnostic",
		Responsible:   "Not defined",
		Notes:         "Generated from the maturity assessment of control " + t.control.code + " (" + t.applicability + ").",
		QuestionRef:   questionRef,
	}
}
