package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ordermacro/internal/app"
	"ordermacro/internal/config"
	"ordermacro/internal/infrastructure"
)

// cli carries the persistent flags shared by every command
type cli struct {
	configFile string
	workDir    string
	logLevel   string
	exportCSV  bool
	jsonOutput bool

	// logger replaces the process logger, tests only
	logger *slog.Logger
}

func newRootCommand(logger *slog.Logger) *cobra.Command {
	c := &cli{logger: logger}

	root := &cobra.Command{
		Use:           "macro",
		Short:         "Order spreadsheet macros for ERP registration and merge packaging",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (default config.yaml or configs/config.yaml)")
	flags.StringVar(&c.workDir, "workdir", "", "base directory for relative output paths (default current directory)")
	flags.StringVar(&c.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	flags.BoolVar(&c.exportCSV, "csv", false, "also write every output sheet as CSV")
	flags.BoolVar(&c.jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(
		newModeCommand(c, modeERP),
		newModeCommand(c, modeBundle),
		newReformCommand(c),
		newBatchCommand(c),
		newChannelsCommand(c),
		newServeCommand(c),
		newVersionCommand(c),
	)
	return root
}

// loadConfig reads the configuration and applies flag overrides
func (c *cli) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if c.configFile != "" {
		cfg, err = config.LoadFrom(c.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	return cfg, nil
}

func (c *cli) loggerFor(cfg *config.Config) (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	return infrastructure.InitializeLogger(cfg.Logging)
}

func (c *cli) baseDir() (string, error) {
	if c.workDir != "" {
		return c.workDir, nil
	}
	return os.Getwd()
}

// withContainer builds the services, runs fn and closes them again.
// SIGINT cancels the context handed to fn.
func (c *cli) withContainer(cmd *cobra.Command, fn func(ctx context.Context, ctr *app.Container) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	logger, err := c.loggerFor(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	base, err := c.baseDir()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctr, err := app.NewContainer(ctx, cfg, logger, base)
	if err != nil {
		return err
	}
	defer func() {
		if err := ctr.Close(context.Background()); err != nil {
			logger.Warn("shutdown_failed", slog.String("error", err.Error()))
		}
		infrastructure.CloseLogFile()
	}()

	return fn(ctx, ctr)
}
