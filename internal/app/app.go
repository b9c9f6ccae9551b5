package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"

	liflo "github.com/liflo-ai/liflo"
	"github.com/liflo-ai/liflo/internal/audit"
	"github.com/liflo-ai/liflo/internal/config"
	"github.com/liflo-ai/liflo/internal/db"
	"github.com/liflo-ai/liflo/internal/middleware"
	"github.com/liflo-ai/liflo/internal/repository"
	"github.com/liflo-ai/liflo/internal/repository/docstore"
	"github.com/liflo-ai/liflo/internal/repository/memory"
	"github.com/liflo-ai/liflo/internal/service"
	"github.com/liflo-ai/liflo/internal/service/ai"
)

type App struct {
	Cfg          *config.Config
	DB           *sqlx.DB
	Repositories *repository.Repositories
	AIProvider   ai.Provider
	AuditLog     *audit.Queue
	SinkName     string
	RateLimiter  *middleware.RateLimiter

	AuthService   *service.AuthService
	GoalService   *service.GoalService
	RecordService *service.RecordService
	ReviewService *service.ReviewService
	FlowService   *service.FlowService

	closers []io.Closer
}

// New wires every collaborator selected by cfg. Any provider that cannot
// be initialized is an error; nothing falls back silently.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Cfg: cfg}

	// Persistence
	repos, err := a.openRepositories(ctx)
	if err != nil {
		a.closeAll()
		return nil, err
	}
	a.Repositories = repos

	// AI evaluator
	a.AIProvider, err = ai.NewProvider(cfg)
	if err != nil {
		a.closeAll()
		return nil, fmt.Errorf("failed to initialize ai provider: %w", err)
	}

	// Audit log
	sink, err := audit.NewSink(ctx, cfg)
	if err != nil {
		a.closeAll()
		return nil, fmt.Errorf("failed to initialize audit sink: %w", err)
	}
	if c, ok := sink.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	a.SinkName = audit.SinkName(sink)

	a.AuditLog, err = audit.NewQueueFromConfig(sink, cfg)
	if err != nil {
		a.closeAll()
		return nil, fmt.Errorf("failed to initialize audit queue: %w", err)
	}

	// Flow guide
	a.FlowService, err = service.NewFlowService(liflo.ContentFS, service.FlowGuidePath)
	if err != nil {
		a.closeAll()
		return nil, fmt.Errorf("failed to load flow guide: %w", err)
	}

	// Services
	a.AuthService = service.NewAuthService(repos.Users, cfg.AuthMode, cfg.JWTSecret, cfg.JWTExpiry, cfg.DevUserID)
	a.GoalService = service.NewGoalService(repos.Goals)
	a.RecordService = service.NewRecordService(repos.Records, repos.Goals, a.AIProvider, cfg.AITimeout)
	a.ReviewService = service.NewReviewService(repos.Records)

	a.RateLimiter = middleware.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)

	return a, nil
}

func (a *App) openRepositories(ctx context.Context) (*repository.Repositories, error) {
	cfg := a.Cfg

	switch cfg.DBProvider {
	case "", "memory":
		slog.Warn("using in-memory persistence, data is lost on restart")
		return memory.New().Repositories(), nil

	case "firestore":
		store, err := docstore.New(ctx, cfg.FirestoreProjectID, cfg.GoogleCredentials)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize firestore: %w", err)
		}
		a.closers = append(a.closers, store)
		return store.Repositories(), nil

	default:
		driver, err := db.Driver(cfg.DBProvider)
		if err != nil {
			return nil, err
		}

		database, err := db.Init(ctx, driver, cfg.DBConnection)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = database
		a.closers = append(a.closers, database)

		if err := db.RunMigrations(ctx, database.DB, driver); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return repository.NewSQL(database), nil
	}
}

// Close drains the audit queue, then releases the database and sinks.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.AuditLog != nil {
		if err := a.AuditLog.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to drain audit queue: %w", err))
		}
	}
	if a.RateLimiter != nil {
		a.RateLimiter.Stop()
	}
	if err := a.closeAll(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (a *App) closeAll() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
