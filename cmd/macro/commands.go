package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ordermacro/internal/app"
	"ordermacro/internal/config"
	"ordermacro/internal/files"
	"ordermacro/internal/infrastructure"
	"ordermacro/internal/services"
	"ordermacro/internal/validation"
	"ordermacro/pkg/contracts"
	"ordermacro/pkg/contracts/domain"
)

const (
	modeERP    = domain.ModeERP
	modeBundle = domain.ModeBundle
)

// newModeCommand builds "macro erp <channel> <file>" and "macro bundle <channel> <file>"
func newModeCommand(c *cli, mode domain.Mode) *cobra.Command {
	var sheet string

	short := "Run the ERP registration macro for a channel"
	if mode == modeBundle {
		short = "Run the merge-packaging (합포장) macro for a channel"
	}

	cmd := &cobra.Command{
		Use:   string(mode) + " <channel> <file>",
		Short: short,
		Long: short + `.

Channels: etc, zigzag, ali, brandi, gmarket. Korean mall names are accepted too.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			channel, err := domain.ParseChannel(args[0])
			if err != nil {
				return err
			}
			input, err := filepath.Abs(args[1])
			if err != nil {
				return err
			}
			return c.withContainer(cmd, func(ctx context.Context, ctr *app.Container) error {
				if err := validation.NewFileValidator(ctr.Logger).ValidateOrderFile(input); err != nil {
					return err
				}
				res, err := ctr.Macros.Run(ctx, services.RunRequest{
					Mode:      mode,
					Channel:   channel,
					InputPath: input,
					Sheet:     sheet,
					ExportCSV: c.exportCSV,
				})
				if err != nil {
					return fmt.Errorf("%s %s macro failed: %w", mode, channel.DisplayName(), err)
				}
				return c.printResult(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "data sheet name (default first sheet)")
	return cmd
}

func newReformCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reform <file>",
		Short: "Convert a raw AliExpress export into the layout the ali macros expect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			return c.withContainer(cmd, func(ctx context.Context, ctr *app.Container) error {
				if err := validation.NewFileValidator(ctr.Logger).ValidateOrderFile(input); err != nil {
					return err
				}
				out, err := ctr.Macros.Reform(ctx, input)
				if err != nil {
					return fmt.Errorf("reform failed: %w", err)
				}
				if c.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), map[string]string{"output_path": out})
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newBatchCommand(c *cli) *cobra.Command {
	var (
		dir     string
		mode    string
		channel string
		pattern string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run one macro over every order file in a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := domain.ParseMode(mode)
			if err != nil {
				return err
			}
			ch, err := domain.ParseChannel(channel)
			if err != nil {
				return err
			}
			return c.withContainer(cmd, func(ctx context.Context, ctr *app.Container) error {
				root := dir
				if root == "" {
					root = ctr.Paths.InputDir
				}
				if !filepath.IsAbs(root) {
					root = filepath.Join(ctr.Paths.BaseDir, root)
				}
				validator := validation.NewFileValidator(ctr.Logger)
				if _, err := validator.ValidateInputDirectory(root); err != nil {
					return err
				}
				out := ctr.Paths.OutputDir
				if m == modeBundle {
					out = ctr.Paths.HappojangDir
				}
				if err := validator.ValidateOutputDirectory(out); err != nil {
					return err
				}

				discovery := files.NewDiscovery(ctr.Paths.BaseDir)
				var (
					found []files.FileInfo
					err   error
				)
				if pattern != "" {
					found, err = discovery.FindFilesByPattern(root, pattern)
					found = orderFilesOnly(validator, found)
				} else {
					found, err = discovery.FindOrderFiles(root)
				}
				if err != nil {
					return err
				}

				runner := ctr.Batch()
				if workers > 0 {
					runner = services.NewBatchRunner(ctr.Macros, workers, ctr.Logger)
				}
				summary, err := runner.Run(ctx, m, ch, files.Paths(found), c.exportCSV)
				if summary != nil {
					if perr := c.printSummary(cmd.OutOrStdout(), summary); perr != nil {
						return perr
					}
				}
				if err != nil {
					return err
				}
				if summary.Failed > 0 {
					return fmt.Errorf("%d of %d files failed", summary.Failed, len(summary.Items))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory holding the order exports (default paths.input_dir)")
	cmd.Flags().StringVar(&mode, "mode", string(modeERP), "macro mode: erp or bundle")
	cmd.Flags().StringVar(&channel, "channel", "", "channel: etc, zigzag, ali, brandi, gmarket")
	cmd.Flags().StringVar(&pattern, "pattern", "", "glob selecting the files, e.g. \"*지그재그*.xlsx\"")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (default batch.workers)")
	_ = cmd.MarkFlagRequired("channel")
	return cmd
}

// orderFilesOnly drops glob matches that are not loadable order exports
func orderFilesOnly(v *validation.FileValidator, found []files.FileInfo) []files.FileInfo {
	out := found[:0]
	for _, f := range found {
		if v.ValidateOrderFile(f.Path) == nil {
			out = append(out, f)
		}
	}
	return out
}

func newChannelsCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "channels",
		Short: "List the available macros and their output sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			base, err := c.baseDir()
			if err != nil {
				return err
			}
			paths := config.ResolvePaths(cfg.Paths, base)
			overrides, err := config.LoadChannels(paths.ChannelsFile)
			if err != nil {
				return err
			}

			infos := services.NewMacroService(nil, nil, services.WithOverrides(overrides)).Macros()
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), infos)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODE\tCHANNEL\tNAME\tSHEETS\tLOOKUP")
			for _, m := range infos {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%v\t%t\n", m.Mode, m.Channel, m.DisplayName, m.Sheets, m.Lookup)
			}
			return tw.Flush()
		},
	}
}

func newServeCommand(c *cli) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the macros over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			logger, err := c.loggerFor(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer infrastructure.CloseLogFile()

			base, err := c.baseDir()
			if err != nil {
				return err
			}
			application, err := app.New(cmd.Context(), cfg, logger, base)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default server.port)")
	return cmd
}

func newVersionCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), contracts.GetVersionInfo())
			}
			fmt.Fprintln(cmd.OutOrStdout(), contracts.GetVersionString())
			return nil
		},
	}
}

func (c *cli) printResult(w io.Writer, res *domain.RunResult) error {
	if c.jsonOutput {
		return writeJSON(w, res)
	}
	fmt.Fprintf(w, "%s\n", res.OutputPath)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range res.Sheets {
		fmt.Fprintf(tw, "  %s\t%d rows\n", s.Name, s.Rows)
	}
	if res.Warnings > 0 {
		fmt.Fprintf(tw, "  warnings\t%d\n", res.Warnings)
	}
	return tw.Flush()
}

func (c *cli) printSummary(w io.Writer, summary *services.BatchSummary) error {
	if c.jsonOutput {
		return writeJSON(w, summary)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, item := range summary.Items {
		switch {
		case item.Error != "":
			fmt.Fprintf(tw, "FAIL\t%s\t%s\n", filepath.Base(item.Input), item.Error)
		case item.Result != nil:
			fmt.Fprintf(tw, "OK\t%s\t%s\n", filepath.Base(item.Input), item.Result.OutputPath)
		}
	}
	fmt.Fprintf(tw, "\n%d succeeded, %d failed in %s\n", summary.Succeeded, summary.Failed, summary.Duration.Round(1e6))
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
