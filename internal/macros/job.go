package macros

import (
	"log/slog"

	"ordermacro/internal/engine"
	apperrors "ordermacro/internal/errors"
	"ordermacro/internal/operations"
	"ordermacro/internal/rules"
	"ordermacro/internal/workbook"
)

// Job is the state of one macro run
type Job struct {
	Profile Profile
	Input   string
	Doc     *workbook.Document
	// Sheet is the automation sheet
	Sheet *workbook.Sheet

	Lookup    engine.LookupTable
	HasLookup bool

	// Baskets carries gmarket shipping fees from before the sort to after it
	Baskets *engine.BasketLedger
	// Counts is the row count of each partition sheet
	Counts map[string]int

	state    *operations.OperationState
	logger   *slog.Logger
	warnings int
}

func newJob(profile Profile, input string, doc *workbook.Document, sheet *workbook.Sheet,
	state *operations.OperationState, logger *slog.Logger) *Job {
	return &Job{
		Profile: profile,
		Input:   input,
		Doc:     doc,
		Sheet:   sheet,
		Baskets: engine.NewBasketLedger(),
		Counts:  make(map[string]int),
		state:   state,
		logger:  logger,
	}
}

// OutputSheets returns the automation sheet followed by the partition sheets
func (j *Job) OutputSheets() []*workbook.Sheet {
	out := []*workbook.Sheet{j.Sheet}
	for _, name := range j.Profile.Sheets {
		if s, ok := j.Doc.Sheet(name); ok && s != j.Sheet {
			out = append(out, s)
		}
	}
	return out
}

// Warnings is the number of soft errors recorded so far
func (j *Job) Warnings() int { return j.warnings }

// Warn records a soft error. The run continues.
func (j *Job) Warn(err *apperrors.AppError) {
	j.warnings++
	if j.state != nil {
		j.state.AddWarning(err)
	}
	if j.logger != nil {
		j.logger.Warn("value_coercion_failed",
			slog.String("error_type", string(err.Type)),
			slog.Any("cell", err.Context["cell"]),
			slog.Any("value", err.Context["value"]))
	}
}

// Numeric converts numeric-looking text in cols to numbers. Text that looks
// numeric but cannot be converted is kept and reported.
func (j *Job) Numeric(sheet *workbook.Sheet, cols ...int) {
	for i, row := range sheet.Rows {
		for _, col := range cols {
			c := row.Get(col)
			out, format, ok := rules.CoerceNumeric(c)
			if ok {
				row.Set(col, out)
				row.Annotate(col, workbook.Style{NumFmt: format})
				continue
			}
			if c.IsText() && c.Str() != "" && rules.IsNumericText(c.Str()) {
				j.Warn(apperrors.NewValueCoercionError(workbook.CellRef(col, i+2), c.Str(), nil))
			}
		}
	}
}

// Total coerces the sources of d to numbers, then writes d into sheet
func (j *Job) Total(sheet *workbook.Sheet, d engine.Derivation) {
	j.Numeric(sheet, d.Sources...)
	d.Apply(sheet)
}

// Enrich applies the profile lookup rule to sheet. Without a table only an
// Always rule writes its default.
func (j *Job) Enrich(sheet *workbook.Sheet) {
	rule := j.Profile.Lookup
	if rule == nil || (!j.HasLookup && !rule.Always) {
		return
	}
	e := engine.Enrichment{Key: rule.Key, Target: rule.Target}
	if rule.Default != nil {
		e.OnMiss = engine.MissDefault
		e.Default = workbook.ParseScalar(*rule.Default)
	}
	misses := e.Apply(sheet, j.Lookup)
	if len(misses) > 0 && j.logger != nil {
		j.logger.Debug("lookup_misses",
			slog.String("sheet", sheet.Name),
			slog.Int("count", len(misses)),
			slog.String("first", apperrors.NewLookupMiss(misses[0]).Error()))
	}
}
