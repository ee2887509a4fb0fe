package macros

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"ordermacro/internal/config"
	"ordermacro/internal/engine"
	"ordermacro/internal/lookup"
	"ordermacro/internal/operations"
	"ordermacro/internal/workbook"
	"ordermacro/pkg/contracts/domain"
)

// Context keys set by the pipeline besides the operations ones
const (
	ContextKeySheets  = "sheets"
	ContextKeyExports = "exports"

	contextKeyJob = "macro_job"
	// ParamSheet selects the data sheet by name
	ParamSheet = "sheet"
)

// Store loads and saves order documents
type Store interface {
	workbook.Loader
	workbook.Sink
}

// SheetExporter writes extra per-sheet copies of a saved workbook
type SheetExporter interface {
	Export(ctx context.Context, doc *workbook.Document, outputPath string) ([]string, error)
}

// Pipeline adapts one Macro to the operations stage sequence
type Pipeline struct {
	macro     Macro
	store     Store
	lookup    lookup.Source
	paths     *config.Paths
	overrides config.ChannelOverrides
	exporter  SheetExporter
	logger    *slog.Logger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithStore replaces the filesystem store
func WithStore(s Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithLookupSource replaces the in-workbook lookup table
func WithLookupSource(src lookup.Source) Option {
	return func(p *Pipeline) { p.lookup = src }
}

// WithPaths sets where outputs are written. Without it outputs land next to the input.
func WithPaths(paths *config.Paths) Option {
	return func(p *Pipeline) {
		if paths != nil {
			p.paths = paths
		}
	}
}

// WithOverrides applies account and lookup default overrides from channels.yaml
func WithOverrides(o config.ChannelOverrides) Option {
	return func(p *Pipeline) { p.overrides = o }
}

// WithExporter writes each output sheet through e after saving
func WithExporter(e SheetExporter) Option {
	return func(p *Pipeline) { p.exporter = e }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a pipeline for m
func NewPipeline(m Macro, opts ...Option) *Pipeline {
	p := &Pipeline{
		macro:  m,
		store:  workbook.FileStore{},
		lookup: lookup.SheetSource{},
		paths:  &config.Paths{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(slog.String("macro", m.Profile().Key()))
	return p
}

// Profile returns the macro profile with channel overrides applied
func (p *Pipeline) Profile() Profile {
	profile := p.macro.Profile()
	o, ok := p.overrides.For(string(profile.Channel))
	if !ok {
		return profile
	}
	profile = profile.withAccounts(o.Accounts)
	if o.LookupDefault != nil && profile.Lookup != nil {
		rule := *profile.Lookup
		rule.Default = o.LookupDefault
		profile.Lookup = &rule
	}
	return profile
}

// Request builds the operation request for one input file
func (p *Pipeline) Request(runID, input string) operations.OperationRequest {
	profile := p.macro.Profile()
	return operations.OperationRequest{
		ID:         runID,
		Mode:       string(profile.Mode),
		Channel:    string(profile.Channel),
		InputPath:  input,
		Parameters: map[string]interface{}{},
	}
}

// Registry returns the stage sequence of a run
func (p *Pipeline) Registry() *operations.Registry {
	return operations.NewRegistry().MustRegister(
		operations.NewStep(operations.StageLoad, "Load workbook", p.load),
		operations.NewStep(operations.StageNormalize, "Normalize values", p.stage(p.macro.Normalize)),
		operations.NewStep(operations.StageSortGroup, "Sort and group", p.stage(p.macro.SortGroup)),
		operations.NewStep(operations.StagePartition, "Partition accounts", p.partition),
		operations.NewStep(operations.StageCompute, "Compute values", p.compute),
		operations.NewStep(operations.StageStyle, "Style sheets", p.style),
		operations.NewStep(operations.StageSave, "Save workbook", p.save),
	)
}

func jobOf(state *operations.OperationState) (*Job, error) {
	v, ok := state.GetContext(contextKeyJob)
	if !ok {
		return nil, operations.NewFatalError("workbook not loaded", nil)
	}
	return v.(*Job), nil
}

func (p *Pipeline) stage(fn func(*Job) error) operations.StepFunc {
	return func(ctx context.Context, state *operations.OperationState) error {
		job, err := jobOf(state)
		if err != nil {
			return err
		}
		return fn(job)
	}
}

func (p *Pipeline) load(ctx context.Context, state *operations.OperationState) error {
	input := state.GetConfigString(operations.ContextKeyInputPath)
	if input == "" {
		return operations.NewValidationError(operations.StageLoad, "no input file")
	}

	doc, err := p.store.Load(ctx, input)
	if err != nil {
		return err
	}
	sheet, err := doc.DataSheet(state.GetConfigString(ParamSheet))
	if err != nil {
		return err
	}
	if existing, ok := doc.Sheet(AutomationSheet); ok && existing != sheet {
		doc.RemoveSheet(AutomationSheet)
	}
	if err := doc.RenameSheet(sheet.Name, AutomationSheet); err != nil {
		return err
	}

	profile := p.Profile()
	job := newJob(profile, input, doc, sheet, state, p.logger.With(slog.String("run_id", state.ID)))
	if profile.Lookup != nil {
		table, ok, err := p.lookup.Table(ctx, doc)
		if err != nil {
			return err
		}
		job.Lookup, job.HasLookup = table, ok
	} else {
		doc.RemoveSheet(engine.LookupSheetName)
	}

	state.SetContext(contextKeyJob, job)
	state.SetContext(operations.ContextKeyRows, sheet.Len())
	if step := state.GetStage(operations.StageLoad); step != nil {
		step.SetMetadata("rows", sheet.Len())
		step.SetMetadata("lookup", job.HasLookup)
	}
	return nil
}

func (p *Pipeline) partition(ctx context.Context, state *operations.OperationState) error {
	job, err := jobOf(state)
	if err != nil {
		return err
	}
	profile := job.Profile
	if len(profile.Sheets) == 0 {
		return nil
	}

	counts, err := engine.Partition{
		Classify:        profile.classifier(),
		Sheets:          profile.Sheets,
		CreateEmpty:     profile.CreateEmpty,
		RowNumberColumn: -1,
	}.Apply(job.Doc, job.Sheet)
	if err != nil {
		return err
	}
	job.Counts = counts

	if len(profile.SheetSort) > 0 {
		for _, s := range job.OutputSheets()[1:] {
			if err := engine.SortRows(s, profile.SheetSort); err != nil {
				return fmt.Errorf("sheet %s: %w", s.Name, err)
			}
		}
	}
	if step := state.GetStage(operations.StagePartition); step != nil {
		step.SetMetadata("sheets", counts)
	}
	return nil
}

func (p *Pipeline) compute(ctx context.Context, state *operations.OperationState) error {
	job, err := jobOf(state)
	if err != nil {
		return err
	}
	numberRows(job.Sheet, job.Profile.AutomationNumbers)
	for _, s := range job.OutputSheets()[1:] {
		numberRows(s, job.Profile.SheetNumbers)
	}
	if err := p.macro.Compute(job); err != nil {
		return err
	}
	if step := state.GetStage(operations.StageCompute); step != nil {
		step.SetMetadata("warnings", job.Warnings())
	}
	return nil
}

func (p *Pipeline) style(ctx context.Context, state *operations.OperationState) error {
	job, err := jobOf(state)
	if err != nil {
		return err
	}
	styleHeaders(job.Doc)
	return p.macro.Style(job)
}

func (p *Pipeline) save(ctx context.Context, state *operations.OperationState) error {
	job, err := jobOf(state)
	if err != nil {
		return err
	}

	target := p.paths.OutputFor(job.Input, job.Profile.Mode == domain.ModeBundle)

	// the workbook save is the commit point; exports precede it
	var exports []string
	if p.exporter != nil {
		exports, err = p.exporter.Export(ctx, job.Doc, target)
		if err != nil {
			removeFiles(exports)
			return err
		}
	}

	path, err := p.store.Save(ctx, job.Doc, target)
	if err != nil {
		removeFiles(exports)
		return err
	}

	summaries := make([]domain.SheetSummary, 0, len(job.Doc.Sheets()))
	for _, s := range job.Doc.Sheets() {
		summaries = append(summaries, domain.SheetSummary{Name: s.Name, Rows: s.Len()})
	}
	state.SetContext(operations.ContextKeyOutputPath, path)
	state.SetContext(operations.ContextKeyRows, job.Sheet.Len())
	state.SetContext(ContextKeySheets, summaries)
	if exports != nil {
		state.SetContext(ContextKeyExports, exports)
	}
	return nil
}

func removeFiles(paths []string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}

// Outcome is what a finished run produced
type Outcome struct {
	OutputPath string
	Rows       int
	Sheets     []domain.SheetSummary
	Exports    []string
}

// OutcomeOf reads the outcome recorded on a run state
func OutcomeOf(state *operations.OperationState) Outcome {
	var out Outcome
	if v, ok := state.GetContext(operations.ContextKeyOutputPath); ok {
		out.OutputPath, _ = v.(string)
	}
	if v, ok := state.GetContext(operations.ContextKeyRows); ok {
		out.Rows, _ = v.(int)
	}
	if v, ok := state.GetContext(ContextKeySheets); ok {
		out.Sheets, _ = v.([]domain.SheetSummary)
	}
	if v, ok := state.GetContext(ContextKeyExports); ok {
		out.Exports, _ = v.([]string)
	}
	return out
}
