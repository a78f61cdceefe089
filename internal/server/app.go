// Package server wires the Character Studio server together: storage, the
// model client, the background runner and the gRPC transport. It also owns
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/charstudio/internal/logging"
	"github.com/dmitrijs2005/charstudio/internal/server/config"
	"github.com/dmitrijs2005/charstudio/internal/server/gemini"
	"github.com/dmitrijs2005/charstudio/internal/server/objectstore"
	"github.com/dmitrijs2005/charstudio/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/charstudio/internal/server/services"
	"github.com/dmitrijs2005/charstudio/internal/server/tasks"
	"github.com/dmitrijs2005/charstudio/internal/server/watch"
	"github.com/dmitrijs2005/charstudio/internal/telemetry"

	gs "github.com/dmitrijs2005/charstudio/internal/server/grpc"
)

const serviceName = "charstudio-server"

var (
	openDB = func(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) }

	setupTelemetry = telemetry.Setup
)

type App struct {
	config            *config.Config
	logger            logging.Logger
	db                *sql.DB
	runner            *tasks.Runner
	server            *gs.GRPCServer
	shutdownTelemetry func(context.Context) error
}

// NewApp builds every dependency of the server. Nothing is served until Run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	model, err := gemini.New(ctx, gemini.Config{
		Backend:       c.GenAIBackend,
		APIKey:        c.GenAIAPIKey,
		Project:       c.GenAIProject,
		Location:      c.GenAILocation,
		AnalysisModel: c.AnalysisModel,
		ImageModel:    c.ImageModel,
	})
	if err != nil {
		return nil, fmt.Errorf("model client init error: %w", err)
	}

	store, err := objectstore.New(ctx, objectstore.Config{
		Region:     c.S3Region,
		AccessKey:  c.S3RootUser,
		SecretKey:  c.S3RootPassword,
		Endpoint:   c.S3BaseEndpoint,
		Bucket:     c.S3Bucket,
		PresignTTL: c.PresignTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	shutdownTelemetry, err := setupTelemetry(ctx, serviceName, c.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("telemetry init error: %w", err)
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		_ = shutdownTelemetry(ctx)
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		_ = shutdownTelemetry(ctx)
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	runner := tasks.NewRunner(logger, c.MaxConcurrentAnalyses)
	hub := watch.NewHub()

	cs := services.NewCharacterService(db, rm, store, model, runner, hub, logger,
		services.Options{TrainingDelay: c.TrainingDelay})

	srv := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, cs, hub, c.SecretKey, c.WatchPollInterval)

	return &App{
		config:            c,
		logger:            logger,
		db:                db,
		runner:            runner,
		server:            srv,
		shutdownTelemetry: shutdownTelemetry,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	app.logger.Info(ctx, "gRPC server listening", "address", app.config.EndpointAddrGRPC)
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// stops accepting calls, cancels in-flight analyses and releases resources.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.shutdown()
}

func (app *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()

	app.logger.Info(ctx, "Shutting down...")

	if err := app.runner.Shutdown(ctx); err != nil {
		app.logger.Warn(ctx, "background jobs did not finish in time", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	if err := app.shutdownTelemetry(ctx); err != nil {
		app.logger.Error(ctx, "flushing traces", "error", err)
	}

	app.logger.Info(ctx, "Stopped")
}
