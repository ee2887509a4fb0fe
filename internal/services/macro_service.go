package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ordermacro/internal/config"
	apperrors "ordermacro/internal/errors"
	"ordermacro/internal/infrastructure"
	"ordermacro/internal/lookup"
	"ordermacro/internal/macros"
	"ordermacro/internal/operations"
	"ordermacro/pkg/contracts/domain"
)

// RunRequest describes one macro run
type RunRequest struct {
	RunID     string         `json:"run_id,omitempty"`
	Mode      domain.Mode    `json:"mode" validate:"required,oneof=erp bundle"`
	Channel   domain.Channel `json:"channel" validate:"required,oneof=etc zigzag ali brandi gmarket"`
	InputPath string         `json:"input_path" validate:"required,order_file"`
	// Sheet names the data sheet. Empty means the first sheet.
	Sheet string `json:"sheet,omitempty"`
	// ExportCSV additionally writes every output sheet as CSV
	ExportCSV bool `json:"export_csv,omitempty"`
}

// MacroInfo describes an available macro
type MacroInfo struct {
	Mode        domain.Mode    `json:"mode"`
	Channel     domain.Channel `json:"channel"`
	DisplayName string         `json:"display_name"`
	Sheets      []string       `json:"sheets,omitempty"`
	Lookup      bool           `json:"lookup"`
}

// RunRecorder keeps finished run results
type RunRecorder interface {
	Create(run *domain.RunResult) error
	Get(id string) (*domain.RunResult, error)
	List(filter operations.RunFilter) []*domain.RunResult
}

// MacroService runs macros and records their results
type MacroService struct {
	manager   *operations.Manager
	runs      RunRecorder
	paths     *config.Paths
	overrides config.ChannelOverrides
	lookup    lookup.Source
	store     macros.Store
	exporter  macros.SheetExporter
	logger    *slog.Logger
}

// ServiceOption configures a MacroService
type ServiceOption func(*MacroService)

// WithPaths sets the output directories
func WithPaths(p *config.Paths) ServiceOption {
	return func(s *MacroService) { s.paths = p }
}

// WithOverrides applies channels.yaml overrides to every run
func WithOverrides(o config.ChannelOverrides) ServiceOption {
	return func(s *MacroService) { s.overrides = o }
}

// WithLookupSource replaces the in-workbook lookup table
func WithLookupSource(src lookup.Source) ServiceOption {
	return func(s *MacroService) { s.lookup = src }
}

// WithStore replaces the filesystem store
func WithStore(st macros.Store) ServiceOption {
	return func(s *MacroService) { s.store = st }
}

// WithExporter sets the writer used for runs asking for CSV copies
func WithExporter(e macros.SheetExporter) ServiceOption {
	return func(s *MacroService) { s.exporter = e }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *MacroService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewMacroService creates a service executing runs on manager.
// runs may be nil when results need not be kept.
func NewMacroService(manager *operations.Manager, runs RunRecorder, opts ...ServiceOption) *MacroService {
	s := &MacroService{
		manager: manager,
		runs:    runs,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = infrastructure.WithComponent(s.logger, "macro")
	return s
}

// Macros lists every available macro
func (s *MacroService) Macros() []MacroInfo {
	all := macros.All()
	out := make([]MacroInfo, 0, len(all))
	for _, m := range all {
		p := macros.NewPipeline(m, macros.WithOverrides(s.overrides)).Profile()
		out = append(out, MacroInfo{
			Mode:        p.Mode,
			Channel:     p.Channel,
			DisplayName: p.Channel.DisplayName(),
			Sheets:      p.Sheets,
			Lookup:      p.Lookup != nil,
		})
	}
	return out
}

func (s *MacroService) pipeline(m macros.Macro, exportCSV bool, logger *slog.Logger) *macros.Pipeline {
	opts := []macros.Option{
		macros.WithPaths(s.paths),
		macros.WithOverrides(s.overrides),
		macros.WithLogger(logger),
	}
	if s.lookup != nil {
		opts = append(opts, macros.WithLookupSource(s.lookup))
	}
	if s.store != nil {
		opts = append(opts, macros.WithStore(s.store))
	}
	if exportCSV && s.exporter != nil {
		opts = append(opts, macros.WithExporter(s.exporter))
	}
	return macros.NewPipeline(m, opts...)
}

// Run executes one macro run. A result is returned whenever the run started,
// also when it failed; err then carries the failing stage's cause.
func (s *MacroService) Run(ctx context.Context, req RunRequest) (*domain.RunResult, error) {
	m, err := macros.Lookup(req.Mode, req.Channel)
	if err != nil {
		return nil, err
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	ctx = infrastructure.EnsureTraceID(ctx)

	logger := s.logger.With(slog.String("run_id", req.RunID))
	p := s.pipeline(m, req.ExportCSV, logger)

	opReq := p.Request(req.RunID, req.InputPath)
	if req.Sheet != "" {
		opReq.Parameters[macros.ParamSheet] = req.Sheet
	}

	started := time.Now()
	state, runErr := s.manager.Execute(ctx, opReq, p.Registry())

	result := &domain.RunResult{
		RunID:     req.RunID,
		Mode:      req.Mode,
		Channel:   req.Channel,
		InputPath: req.InputPath,
		StartedAt: started,
		Duration:  time.Since(started),
		Status:    string(operations.OperationStatusFailed),
	}
	if state != nil {
		out := macros.OutcomeOf(state)
		result.OutputPath = out.OutputPath
		result.Rows = out.Rows
		result.Sheets = out.Sheets
		result.Warnings = len(state.Warnings())
		result.Status = string(state.GetStatus())
		result.Duration = state.Duration()
	}
	if runErr != nil {
		result.Error = rootCause(runErr).Error()
	}

	if s.runs != nil {
		if err := s.runs.Create(result); err != nil {
			logger.WarnContext(ctx, "run_record_failed", slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		infrastructure.WithError(logger, runErr).ErrorContext(ctx, "macro_run_failed",
			slog.String("mode", string(req.Mode)),
			slog.String("channel", string(req.Channel)),
			slog.String("input", req.InputPath))
		return result, runErr
	}

	logger.InfoContext(ctx, "macro_run_completed",
		slog.String("mode", string(req.Mode)),
		slog.String("channel", string(req.Channel)),
		slog.String("output", result.OutputPath),
		slog.Int("rows", result.Rows),
		slog.Int("warnings", result.Warnings))
	return result, nil
}

// Reform rewrites an AliExpress export into the layout the ali macros expect
// and returns the path of the reformed copy
func (s *MacroService) Reform(ctx context.Context, input string) (string, error) {
	return macros.NewReformer(s.store, s.logger).Run(ctx, input)
}

// GetRun returns a recorded run
func (s *MacroService) GetRun(id string) (*domain.RunResult, error) {
	if s.runs == nil {
		return nil, ErrRunNotFound
	}
	run, err := s.runs.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, nil
}

// ListRuns returns recorded runs, newest first
func (s *MacroService) ListRuns(filter operations.RunFilter) []*domain.RunResult {
	if s.runs == nil {
		return nil
	}
	return s.runs.List(filter)
}

// rootCause prefers the first AppError in the chain, whose message names the
// offending cell, row or file.
func rootCause(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return err
}
