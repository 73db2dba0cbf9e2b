package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/recall-api/internal/api"
	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/platform/clock"
	"github.com/phrazzld/recall-api/internal/platform/lock"
	"github.com/phrazzld/recall-api/internal/platform/postgres"
	"github.com/phrazzld/recall-api/internal/service/adaptation"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/phrazzld/recall-api/internal/service/profile"
	"github.com/phrazzld/recall-api/internal/service/review"
	"github.com/phrazzld/recall-api/internal/store"
	"github.com/phrazzld/recall-api/internal/task"
)

// application holds the shared dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	clock  clock.Clock
	db     *sql.DB

	stores     *store.Stores
	transactor store.Transactor
	locker     lock.Locker
	// closeLocker releases the Redis client when one was dialled.
	closeLocker func() error

	jwtService     auth.JWTService
	srsService     srs.Service
	reviewService  review.Service
	profileService profile.Service
	runner         *adaptation.Runner
	scheduler      *task.DailyScheduler
}

// newApplication wires the PostgreSQL stores and the batch lock, then the
// services on top of them. The caller keeps ownership of db until Run.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:     cfg,
		logger:     logger,
		clock:      clock.Real{},
		db:         db,
		stores:     postgres.NewStores(db, logger),
		transactor: postgres.NewTransactor(db, logger),
	}

	if cfg.Redis.URL != "" {
		rl, err := lock.DialRedis(ctx, cfg.Redis.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.locker = rl
		app.closeLocker = rl.Close
		logger.Info("using redis lock for daily adaptation")
	} else {
		app.locker = lock.NewMemory()
		logger.Info("using in-process lock for daily adaptation")
	}

	if err := app.initServices(); err != nil {
		if app.closeLocker != nil {
			_ = app.closeLocker()
		}
		return nil, err
	}
	return app, nil
}

// initServices builds everything above the store layer. It expects stores,
// transactor, locker and clock to be set.
func (app *application) initServices() error {
	var err error
	app.jwtService, err = auth.NewJWTService(app.config.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.srsService = srs.NewDefaultService()
	app.reviewService = review.NewService(app.stores, app.transactor, app.srsService, app.clock, app.logger)
	app.profileService = profile.NewService(app.stores, app.transactor, app.clock, app.logger)
	app.runner = adaptation.NewRunner(app.stores, app.transactor, app.locker, app.clock, adaptation.Config{
		WorkerCount: app.config.Adaptation.WorkerCount,
		LockTTL:     app.config.Adaptation.LockTTL,
	}, app.logger)

	if app.config.Adaptation.Schedule {
		app.scheduler, err = task.NewDailyScheduler(app.runner, app.config.Adaptation.RunAt, app.clock, app.logger)
		if err != nil {
			return fmt.Errorf("failed to create adaptation scheduler: %w", err)
		}
		app.scheduler.SetErrorHandler(app.handleJobError)
	}

	app.logger.Info("application initialized")
	return nil
}

// handleJobError logs a failed scheduled run. Another replica holding the
// batch lock is expected and not an error.
func (app *application) handleJobError(job task.Job, err error) {
	if errors.Is(err, adaptation.ErrBatchInProgress) {
		app.logger.Info("daily adaptation already running elsewhere", slog.String("job", job.Name()))
		return
	}
	app.logger.Error("scheduled job failed", slog.String("job", job.Name()), slog.String("error", err.Error()))
}

func apiRouter(app *application) http.Handler {
	return api.NewRouter(api.RouterConfig{
		JWTService:     app.jwtService,
		ReviewService:  app.reviewService,
		ProfileService: app.profileService,
		Logger:         app.logger,
		RequestTimeout: app.config.Server.RequestTimeout,
	})
}

// Run serves HTTP until ctx is cancelled, then shuts everything down.
func (app *application) Run(ctx context.Context) error {
	if app.scheduler != nil {
		app.scheduler.Start()
	}
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, apiRouter(app)); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops background work and closes connections.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.closeLocker != nil {
		if err := app.closeLocker(); err != nil {
			app.logger.Error("error closing redis client", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
