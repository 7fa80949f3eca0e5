package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"fs3m/internal/model"
	"fs3m/internal/service"
	"fs3m/internal/transport/rest/handler"
	"fs3m/internal/transport/rest/middleware"
)

// Container holds all dependencies for the router.
type Container struct {
	AuthService           *service.AuthService
	FrameworkService      *service.FrameworkService
	SubmissionService     *service.SubmissionService
	AssessmentService     *service.AssessmentService
	RecommendationService *service.RecommendationService
	ActionPlanService     *service.ActionPlanService
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	frameworkHandler := handler.NewFrameworkHandler(c.FrameworkService)
	submissionHandler := handler.NewSubmissionHandler(c.SubmissionService)
	assessmentHandler := handler.NewAssessmentHandler(c.AssessmentService)
	recommendationHandler := handler.NewRecommendationHandler(c.RecommendationService)
	planHandler := handler.NewActionPlanHandler(c.ActionPlanService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Authenticated routes (any role)
	authed := v1.NewRoute().Subrouter()
	authed.Use(authMW.RequireAuth)

	authed.HandleFunc("/frameworks", frameworkHandler.List).Methods("GET", "OPTIONS")
	authed.HandleFunc("/frameworks/{slug}", frameworkHandler.GetStructure).Methods("GET", "OPTIONS")

	authed.HandleFunc("/submissions", submissionHandler.Open).Methods("POST", "OPTIONS")
	authed.HandleFunc("/submissions", submissionHandler.List).Methods("GET", "OPTIONS")
	authed.HandleFunc("/submissions/{id}", submissionHandler.Get).Methods("GET", "OPTIONS")
	authed.HandleFunc("/submissions/{id}/answers", submissionHandler.UpsertAnswer).Methods("PUT", "OPTIONS")
	authed.HandleFunc("/submissions/{id}/answers", submissionHandler.ListAnswers).Methods("GET", "OPTIONS")
	authed.HandleFunc("/submissions/{id}/send-for-review", submissionHandler.SendForReview).Methods("POST", "OPTIONS")

	authed.HandleFunc("/submissions/{id}/assessment", assessmentHandler.Get).Methods("GET", "OPTIONS")
	authed.HandleFunc("/submissions/{id}/recommendations", recommendationHandler.List).Methods("GET", "OPTIONS")
	authed.HandleFunc("/customers/{customerId}/submissions/{submissionId}/plan", planHandler.Get).Methods("GET", "OPTIONS")

	// Review routes (analysts and admins)
	review := v1.NewRoute().Subrouter()
	review.Use(authMW.RequireAuth)
	review.Use(authMW.RequireRole(model.RoleAnalyst, model.RoleAdmin))

	review.HandleFunc("/submissions/{id}/status", submissionHandler.Transition).Methods("POST", "OPTIONS")
	review.HandleFunc("/submissions/{id}/finish-review", submissionHandler.FinishReview).Methods("POST", "OPTIONS")
	review.HandleFunc("/submissions/{id}/archive", submissionHandler.Archive).Methods("POST", "OPTIONS")

	review.HandleFunc("/submissions/{id}/assessment/run", assessmentHandler.Run).Methods("POST", "OPTIONS")
	review.HandleFunc("/submissions/{id}/recommendations/generate", recommendationHandler.Generate).Methods("POST", "OPTIONS")
	review.HandleFunc("/submissions/{id}/recommendations/missing", recommendationHandler.VerifyMissing).Methods("GET", "OPTIONS")
	review.HandleFunc("/recommendations/{id}", recommendationHandler.Update).Methods("PUT", "OPTIONS")

	review.HandleFunc("/customers/{customerId}/submissions/{submissionId}/plan", planHandler.Build).Methods("POST", "OPTIONS")
	review.HandleFunc("/customers/{customerId}/submissions/{submissionId}/plan", planHandler.Delete).Methods("DELETE", "OPTIONS")
	review.HandleFunc("/plans/{planId}/kanban", planHandler.UpdateKanban).Methods("PUT", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
