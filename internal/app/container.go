package app

import (
	"context"
	"fmt"
	"log/slog"

	"ordermacro/internal/config"
	"ordermacro/internal/exporter"
	"ordermacro/internal/infrastructure"
	"ordermacro/internal/lookup"
	"ordermacro/internal/operations"
	"ordermacro/internal/services"
	ws "ordermacro/internal/websocket"
)

// Container holds the services shared by the CLI commands and the server
type Container struct {
	Config  *config.Config
	Paths   *config.Paths
	Logger  *slog.Logger
	OTel    *infrastructure.OTelProviders
	Hub     *ws.Hub
	Manager *operations.Manager
	Runs    *operations.MemoryRunStore
	Macros  *services.MacroService
}

// NewContainer builds the services for cfg. Relative paths are resolved against base.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, base string) (*Container, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	paths := config.ResolvePaths(cfg.Paths, base)
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	overrides, err := config.LoadChannels(paths.ChannelsFile)
	if err != nil {
		return nil, err
	}

	source, err := lookup.FromConfig(ctx, cfg.Lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup source: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	tracer, err := operations.NewOperationTracer(providers)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize operation tracer: %w", err)
	}

	hub := ws.NewHub(logger)
	for _, c := range hub.Collectors() {
		if err := providers.Registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register websocket metrics: %w", err)
		}
	}

	manager := operations.NewManager(hub,
		operations.NewConfigBuilder().WithDefaultTimeout(cfg.Server.RunTimeout).Build(),
		operations.WithTracer(tracer),
		operations.WithLogger(logger))

	runs := operations.NewMemoryRunStore()
	macroService := services.NewMacroService(manager, runs,
		services.WithPaths(paths),
		services.WithOverrides(overrides),
		services.WithLookupSource(source),
		services.WithExporter(exporter.NewSheetExporter(logger)),
		services.WithLogger(logger))

	return &Container{
		Config:  cfg,
		Paths:   paths,
		Logger:  logger,
		OTel:    providers,
		Hub:     hub,
		Manager: manager,
		Runs:    runs,
		Macros:  macroService,
	}, nil
}

// Batch returns a runner sized by the batch configuration
func (c *Container) Batch() *services.BatchRunner {
	return services.NewBatchRunner(c.Macros, c.Config.Batch.Workers, c.Logger)
}

// Close stops the manager and flushes telemetry
func (c *Container) Close(ctx context.Context) error {
	c.Hub.Stop()
	c.Manager.Close()
	return c.OTel.Shutdown(ctx)
}
