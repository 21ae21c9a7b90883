package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "SentiPulse/internal/domain/repository"
	"SentiPulse/internal/usecase"
	pkgch "SentiPulse/pkg/clickhouse"
	"SentiPulse/pkg/config"
	xhttp "SentiPulse/pkg/http"
	applogger "SentiPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle: the collection
// scheduler, the HTTP API, and the storage backends behind them.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	scheduler   *usecase.Scheduler
	store       domrepo.Store
	sink        domrepo.AlertSink
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies. sink and chClient
// may be nil when their features are disabled.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	scheduler *usecase.Scheduler,
	store domrepo.Store,
	sink domrepo.AlertSink,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:         cfg,
		logger:      logger,
		scheduler:   scheduler,
		store:       store,
		sink:        sink,
		chClient:    chClient,
		httpHandler: handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		if err := a.scheduler.Start(ctx); err != nil {
			a.logger.Error("scheduler error", applogger.Error(err))
		}
	}()
	a.logger.Info("collection scheduler started",
		applogger.Duration("interval", a.cfg.Scheduler.Interval),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	<-schedulerDone

	return a.shutdown(context.Background())
}

// shutdown gracefully stops all services and closes backends.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			a.logger.Warn("alert sink close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("store close error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
