package routes

import (
	"net/http"

	"github.com/liflo-ai/liflo/internal/app"
	"github.com/liflo-ai/liflo/internal/handler"
	"github.com/liflo-ai/liflo/internal/metrics"
	"github.com/liflo-ai/liflo/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	cfg := app.Cfg

	// Handlers
	health := handler.NewHealthHandler(cfg.AppEnv, cfg.DBProvider, app.AIProvider.Name(), app.SinkName)
	auth := handler.NewAuthHandler(app.AuthService, app.AuditLog, cfg.TrustProxy)
	goal := handler.NewGoalHandler(app.GoalService, app.AuditLog, cfg.TrustProxy)
	record := handler.NewRecordHandler(app.RecordService, app.AuditLog, cfg.TrustProxy)
	review := handler.NewReviewHandler(app.ReviewService, app.AuditLog, cfg.TrustProxy)
	flow := handler.NewFlowHandler(app.FlowService)

	requireAuth := middleware.RequireAuth(app.AuthService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Operations
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.Handle("GET /metrics", metrics.Handler())

	// Auth
	mux.HandleFunc("POST /api/auth/signup", auth.Signup)
	mux.HandleFunc("POST /api/auth/login", auth.Login)

	// Flow guide
	mux.HandleFunc("GET /api/flow/tips", flow.Tips)

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	mux.HandleFunc("GET /api/auth/me", requireAuth(auth.Me))

	// Goals
	mux.HandleFunc("GET /api/goals", requireAuth(goal.List))
	mux.HandleFunc("POST /api/goals", requireAuth(goal.Create))
	mux.HandleFunc("GET /api/goals/{id}", requireAuth(goal.Get))
	mux.HandleFunc("PATCH /api/goals/{id}", requireAuth(goal.Update))
	mux.HandleFunc("PUT /api/goals/{id}", requireAuth(goal.Update))

	// Records
	mux.HandleFunc("GET /api/records", requireAuth(record.List))
	mux.HandleFunc("POST /api/records", requireAuth(record.Create))
	mux.HandleFunc("GET /api/records/{id}", requireAuth(record.Get))

	// Review
	mux.HandleFunc("GET /api/review", requireAuth(review.Summary))
	mux.HandleFunc("GET /api/review/stats", requireAuth(review.Stats))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	// 404
	mux.HandleFunc("/{path...}", health.NotFound)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestID, // Request id must be first (used by logging and audit events)
		middleware.RequestLogging,
		middleware.Metrics,
		middleware.CORS(cfg.CORSOrigin), // CORS answers preflight before rate limiting
		middleware.SecurityHeaders(cfg.IsProduction()),
		middleware.RateLimit(app.RateLimiter, cfg.TrustProxy),
	)

	return handler
}
