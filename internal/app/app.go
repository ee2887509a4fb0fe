package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"ordermacro/internal/config"
	apperrors "ordermacro/internal/errors"
	"ordermacro/internal/files"
	"ordermacro/internal/middleware"
	"ordermacro/internal/services"
	transport "ordermacro/internal/transport/http"
	ws "ordermacro/internal/websocket"
	"ordermacro/pkg/contracts"
)

const (
	Version = contracts.Version
	AppName = "ordermacro"
)

const (
	// finished runs stay queryable this long
	runRetention  = 24 * time.Hour
	janitorPeriod = 10 * time.Minute
)

// Application is the HTTP service around a Container
type Application struct {
	*Container
	Router chi.Router
	Server *http.Server

	listener net.Listener
	serveErr chan error
	stopOnce sync.Once
	janitor  chan struct{}
}

// New builds the service for cfg. Relative paths are resolved against base.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, base string) (*Application, error) {
	container, err := NewContainer(ctx, cfg, logger, base)
	if err != nil {
		return nil, err
	}
	return NewWithContainer(container)
}

// NewWithContainer builds the router and the server on top of an existing container
func NewWithContainer(c *Container) (*Application, error) {
	otelMiddleware, err := middleware.NewOTelMiddleware(c.OTel)
	if err != nil {
		return nil, err
	}

	cfg := c.Config
	errorHandler := apperrors.NewErrorHandler(c.Logger, cfg.Logging.Level == "debug")
	uploads := files.NewManager(c.Paths.UploadDir, cfg.Server.MaxUploadBytes, c.Logger)
	health := services.NewHealthService(Version, c.Paths, c.Hub, c.Logger)

	router := transport.NewRouter(transport.RouterDeps{
		Macros: transport.NewMacroHandler(c.Macros, uploads, errorHandler, c.Logger),
		Health: transport.NewHealthHandler(health, c.Logger),
		Server: cfg.Server,
		Errors: errorHandler,
		Logger: c.Logger,
		OTel:   otelMiddleware,
		WS: ws.HandlerWithSettings(c.Hub, ws.Settings{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			PingPeriod:      cfg.WebSocket.PingPeriod,
			PongWait:        cfg.WebSocket.PongWait,
		}),
		Metrics: c.OTel.PrometheusHTTP,
		CORS:    corsConfig(cfg),
	})

	return &Application{
		Container: c,
		Router:    router,
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		serveErr: make(chan error, 1),
		janitor:  make(chan struct{}),
	}, nil
}

// corsConfig opens the API to any origin outside production
func corsConfig(cfg *config.Config) *middleware.CORSConfig {
	if cfg.Telemetry.Environment == "production" {
		return nil
	}
	return &middleware.CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		MaxAge:         300,
	}
}

// Addr returns the listening address once Start succeeded
func (a *Application) Addr() string {
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// Start binds the listener and serves in the background
func (a *Application) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	a.Hub.Start()
	go a.evictOldRuns()
	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.serveErr <- err
		}
		close(a.serveErr)
	}()

	a.Logger.InfoContext(ctx, "server_started",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.String("address", a.Addr()),
		slog.String("output_dir", a.Paths.OutputDir))
	return nil
}

func (a *Application) evictOldRuns() {
	ticker := time.NewTicker(janitorPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ctx := context.Background()
			runs := a.Runs.Cleanup(runRetention)
			snapshots := a.Manager.GetBroadcaster().CleanupOldOperations(ctx, runRetention)
			if runs+snapshots > 0 {
				a.Logger.DebugContext(ctx, "runs_evicted",
					slog.Int("runs", runs),
					slog.Int("snapshots", snapshots))
			}
		case <-a.janitor:
			return
		}
	}
}

// Stop drains in-flight requests and closes the container
func (a *Application) Stop(ctx context.Context) error {
	var err error
	a.stopOnce.Do(func() {
		a.Logger.InfoContext(ctx, "server_stopping")

		shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
		defer cancel()

		close(a.janitor)
		if shutdownErr := a.Server.Shutdown(shutdownCtx); shutdownErr != nil {
			err = fmt.Errorf("server shutdown error: %w", shutdownErr)
		}
		if closeErr := a.Container.Close(shutdownCtx); closeErr != nil {
			a.Logger.ErrorContext(ctx, "telemetry_shutdown_failed", slog.String("error", closeErr.Error()))
		}
		a.Logger.InfoContext(ctx, "server_stopped")
	})
	return err
}

// Run serves until ctx ends, SIGINT/SIGTERM arrives or the server fails
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		a.Container.Close(context.Background())
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("shutdown_signal_received")
	case err, ok := <-a.serveErr:
		if ok {
			serveErr = err
		}
	}

	if err := a.Stop(context.Background()); err != nil {
		return err
	}
	return serveErr
}
