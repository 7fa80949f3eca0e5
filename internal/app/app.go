// Package app wires repositories, caches and services into one container.
package app

import (
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"fs3m/internal/cache"
	"fs3m/internal/maturity"
	"fs3m/internal/repository"
	"fs3m/internal/service"
)

// App is the assembled dependency graph of the platform.
type App struct {
	TaxonomyRepo       repository.TaxonomyRepo
	SubmissionRepo     repository.SubmissionRepo
	AnswerRepo         repository.AnswerRepo
	AssessmentRepo     repository.AssessmentRepo
	ConfigRepo         repository.ConfigRepo
	RecommendationRepo repository.RecommendationRepo
	ActionPlanRepo     repository.ActionPlanRepo
	UserRepo           repository.UserRepo

	Registry *maturity.Registry

	AuthService           *service.AuthService
	FrameworkService      *service.FrameworkService
	SubmissionService     *service.SubmissionService
	AssessmentService     *service.AssessmentService
	RecommendationService *service.RecommendationService
	ActionPlanService     *service.ActionPlanService
}

// Options controls the wiring.
type Options struct {
	JWTSecret       string
	UseTransactions bool
}

// New builds the full application graph on top of the given backends.
func New(db *mongo.Database, rdb *redis.Client, logger *zap.Logger, opts Options) *App {
	a := &App{
		TaxonomyRepo:       repository.NewTaxonomyRepo(db),
		SubmissionRepo:     repository.NewSubmissionRepo(db),
		AnswerRepo:         repository.NewAnswerRepo(db),
		AssessmentRepo:     repository.NewAssessmentRepo(db),
		ConfigRepo:         repository.NewConfigRepo(db),
		RecommendationRepo: repository.NewRecommendationRepo(db),
		ActionPlanRepo:     repository.NewActionPlanRepo(db),
		UserRepo:           repository.NewUserRepo(db),
	}

	a.Registry = maturity.NewRegistry()
	maturity.RegisterBuiltins(a.Registry)

	var tx repository.TxRunner = repository.NopTxRunner{}
	if opts.UseTransactions {
		tx = repository.NewTxRunner(db.Client())
	}
	assessmentCache := cache.NewAssessmentCache(rdb)

	a.AuthService = service.NewAuthService(a.UserRepo, opts.JWTSecret)
	a.FrameworkService = service.NewFrameworkService(a.TaxonomyRepo)
	a.SubmissionService = service.NewSubmissionService(a.SubmissionRepo, a.AnswerRepo, a.TaxonomyRepo, logger)
	a.AssessmentService = service.NewAssessmentService(
		a.SubmissionRepo, a.AnswerRepo, a.ConfigRepo, a.AssessmentRepo,
		a.Registry, assessmentCache, tx, logger)
	a.RecommendationService = service.NewRecommendationService(
		a.SubmissionRepo, a.AnswerRepo, a.ConfigRepo, a.RecommendationRepo, logger)
	a.ActionPlanService = service.NewActionPlanService(a.RecommendationRepo, a.ActionPlanRepo, logger)

	// review entry triggers the calculation pipeline
	a.SubmissionService.SetAssessmentRunner(a.AssessmentService)
	a.SubmissionService.SetRecommendationGenerator(a.RecommendationService)

	return a
}
