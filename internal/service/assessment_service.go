package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"fs3m/internal/cache"
	"fs3m/internal/maturity"
	"fs3m/internal/model"
	"fs3m/internal/repository"
)

// AssessmentService orchestrates maturity calculation runs: it resolves the
// framework's calculator config, feeds the joined answer facts through the
// registered calculator and persists the result atomically.
type AssessmentService struct {
	submissions repository.SubmissionRepo
	answers     repository.AnswerRepo
	configs     repository.ConfigRepo
	assessments repository.AssessmentRepo
	registry    *maturity.Registry
	cache       cache.AssessmentCache
	tx          repository.TxRunner
	logger      *zap.Logger

	// one in-flight run per submission
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAssessmentService creates a new assessment service.
func NewAssessmentService(
	submissions repository.SubmissionRepo,
	answers repository.AnswerRepo,
	configs repository.ConfigRepo,
	assessments repository.AssessmentRepo,
	registry *maturity.Registry,
	assessmentCache cache.AssessmentCache,
	tx repository.TxRunner,
	logger *zap.Logger,
) *AssessmentService {
	return &AssessmentService{
		submissions: submissions,
		answers:     answers,
		configs:     configs,
		assessments: assessments,
		registry:    registry,
		cache:       assessmentCache,
		tx:          tx,
		logger:      logger,
		locks:       map[string]*sync.Mutex{},
	}
}

func (s *AssessmentService) lockFor(submissionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[submissionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[submissionID] = l
	}
	return l
}

// Run recomputes the assessment of a submission. typeSlug selects an explicit
// config; empty picks the framework's default. Reruns replace all derived
// buckets, so the operation is idempotent for unchanged answers.
func (s *AssessmentService) Run(ctx context.Context, submissionID, typeSlug string) (*model.AssessmentView, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}

	cfg, err := s.resolveConfig(ctx, submission.FrameworkID, typeSlug)
	if err != nil {
		return nil, err
	}
	calculate, ok := s.registry.Lookup(cfg.TypeSlug)
	if !ok {
		return nil, ErrCalculatorNotRegistered
	}

	lock := s.lockFor(submissionID)
	lock.Lock()
	defer lock.Unlock()

	facts, err := s.answers.ListFacts(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	result, err := calculate(facts, cfg.Mapping)
	if err != nil {
		return nil, err
	}

	assessment := &model.Assessment{
		SubmissionID: submissionID,
		TypeSlug:     cfg.TypeSlug,
		FrameworkID:  submission.FrameworkID,
		Summary:      result.Summary,
	}
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.assessments.UpsertForSubmission(txCtx, assessment); err != nil {
			return err
		}
		if err := s.assessments.UpdateSummary(txCtx, assessment.ID, result.Summary); err != nil {
			return err
		}
		return s.assessments.ReplaceBuckets(txCtx, assessment.ID, result.Buckets)
	})
	if err != nil {
		return nil, err
	}

	buckets, err := s.assessments.ListBuckets(ctx, assessment.ID)
	if err != nil {
		return nil, err
	}
	assessment.Summary = result.Summary
	view := &model.AssessmentView{Assessment: *assessment, Buckets: buckets}

	if err := s.cache.Set(ctx, submissionID, view); err != nil {
		s.logger.Warn("assessment cache refresh failed",
			zap.String("submissionId", submissionID), zap.Error(err))
	}

	s.logger.Info("assessment computed",
		zap.String("submissionId", submissionID),
		zap.String("type", cfg.TypeSlug),
		zap.Float64("overall", result.Summary.OverallAverage),
		zap.String("status", result.Summary.Status))
	return view, nil
}

// Get returns the stored assessment view, cache first.
func (s *AssessmentService) Get(ctx context.Context, submissionID string) (*model.AssessmentView, error) {
	if view, err := s.cache.Get(ctx, submissionID); err != nil {
		s.logger.Warn("assessment cache read failed",
			zap.String("submissionId", submissionID), zap.Error(err))
	} else if view != nil {
		return view, nil
	}

	assessment, err := s.assessments.GetBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if assessment == nil {
		return nil, ErrAssessmentNotFound
	}
	buckets, err := s.assessments.ListBuckets(ctx, assessment.ID)
	if err != nil {
		return nil, err
	}
	view := &model.AssessmentView{Assessment: *assessment, Buckets: buckets}
	if err := s.cache.Set(ctx, submissionID, view); err != nil {
		s.logger.Warn("assessment cache refresh failed",
			zap.String("submissionId", submissionID), zap.Error(err))
	}
	return view, nil
}

func (s *AssessmentService) resolveConfig(ctx context.Context, frameworkID, typeSlug string) (*model.FrameworkAssessmentConfig, error) {
	if typeSlug != "" {
		cfg, err := s.configs.GetConfig(ctx, frameworkID, typeSlug)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			return nil, ErrConfigNotFound
		}
		return cfg, nil
	}
	cfg, err := s.configs.GetDefaultConfig(ctx, frameworkID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, ErrNoDefaultConfigured
	}
	return cfg, nil
}
