// Package server initializes and runs the main application server. It
// wires the configuration, database, risk model, and services together,
// runs schema migrations, and starts the HTTP endpoint with graceful
// shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sara-git-hub/diabcare/internal/logging"
	"github.com/sara-git-hub/diabcare/internal/server/config"
	"github.com/sara-git-hub/diabcare/internal/server/httpapi"
	"github.com/sara-git-hub/diabcare/internal/server/predictor"
	"github.com/sara-git-hub/diabcare/internal/server/repositories/repomanager"
	"github.com/sara-git-hub/diabcare/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	httpServer  *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	// A missing model artifact is an operational failure, not a startup
	// failure: the server keeps running and every assessment reports
	// ModelUnavailable until the artifact is fixed and the server
	// restarted.
	var scorer predictor.Scorer
	if model, err := predictor.LoadScorer(context.Background(), cfg); err != nil {
		logger.Error(context.Background(), "risk model failed to load",
			"source", cfg.ModelSource, "error", err.Error())
	} else {
		scorer = model
	}
	pred := predictor.New(scorer, logger)

	us := services.NewUserService(db, rm, cfg, logger)
	ss := services.NewSessionService(db, rm, cfg, logger)
	ps := services.NewPatientService(db, rm, pred, logger)

	httpServer := httpapi.NewServer(cfg.EndpointAddrHTTP, logger, db, pred, us, ss, ps)

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		repomanager: rm,
		httpServer:  httpServer,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		app.logger.Error(ctx, "migration error", "error", err.Error())
		return
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	_ = app.db.Close()
}
