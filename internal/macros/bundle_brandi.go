package macros

import (
	"log/slog"
	"strings"

	"ordermacro/internal/engine"
	"ordermacro/internal/rules"
	"ordermacro/internal/workbook"
	"ordermacro/pkg/contracts/domain"
)

type bundleBrandi struct{}

func (bundleBrandi) Profile() Profile {
	return Profile{
		Mode:              domain.ModeBundle,
		Channel:           domain.ChannelBrandi,
		AutomationNumbers: NumberFormulas,
	}
}

var brandiTotal = engine.SumOf("D", "O", "P", "V")

func (bundleBrandi) Normalize(j *Job) error {
	for _, row := range j.Sheet.Rows {
		if sum, ok := rules.SlashSum(row.Get(colP)); ok {
			row.Set(colP, sum)
		}
		if v := row.Get(colV); strings.Contains(v.String(), "/") {
			if sum, ok := rules.SlashSum(v); ok {
				row.Set(colV, sum)
			}
		}
	}
	j.Total(j.Sheet, brandiTotal)
	return nil
}

// SortGroup orders by total and merges rows of the same product shipped to
// the same address into one line
func (bundleBrandi) SortGroup(j *Job) error {
	if err := engine.SortRows(j.Sheet, engine.SortSpec{engine.Numeric("D")}); err != nil {
		return err
	}
	result, err := engine.Merge(j.Sheet, engine.MergeSpec{
		Key: engine.ColumnsKey(colC, colJ),
		Columns: []engine.ColumnPolicy{
			{Column: colD, Agg: engine.Sum},
			{Column: colF, Agg: engine.Concat},
		},
		Resolve: map[int]engine.Derivation{colD: brandiTotal},
		Clean:   rules.StripSingleQuantity,
	})
	if err != nil {
		return err
	}
	for _, row := range j.Sheet.Rows {
		if label := row.Get(colF); label.IsText() {
			row.Set(colF, workbook.Text(strings.TrimSpace(rules.StripSingleQuantity(label.Str()))))
		}
	}
	if j.logger != nil && result.Groups > 0 {
		j.logger.Info("rows_merged",
			slog.Int("groups", result.Groups),
			slog.Int("deleted", len(result.Deleted)))
	}
	return nil
}

func (bundleBrandi) Compute(j *Job) error {
	for _, row := range j.Sheet.Rows {
		formatPhones(row, colH, colI)
		addRemoteMarker(row, inJeju)
	}
	j.Numeric(j.Sheet, colD, colO, colP, colU, colV)
	return nil
}

func (bundleBrandi) Style(j *Job) error {
	sheet := j.Sheet
	for _, row := range sheet.Rows {
		flagRemote(row, inJeju, fillJeju)
	}
	alignColumns(sheet, leftAligned, colF, colH, colI, colQ)
	alignStandard(sheet)
	return nil
}
