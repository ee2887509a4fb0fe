package macros

import (
	"strings"

	"github.com/shopspring/decimal"

	"ordermacro/internal/engine"
	apperrors "ordermacro/internal/errors"
	"ordermacro/internal/rules"
	"ordermacro/internal/workbook"
	"ordermacro/pkg/contracts/domain"
)

type bundleZigzag struct{}

func (bundleZigzag) Profile() Profile {
	return Profile{
		Mode:    domain.ModeBundle,
		Channel: domain.ChannelZigzag,
		Sheets:  []string{"OK", "IY"},
		Accounts: []Account{
			{Tag: "오케이마트", Sheet: "OK"},
			{Tag: "아이예스", Sheet: "IY"},
		},
		Match:             MatchBracketSubstring,
		CreateEmpty:       true,
		SheetSort:         engine.SortSpec{engine.Asc("B"), engine.Asc("C")},
		AutomationNumbers: NumberFormulas,
		SheetNumbers:      NumberFormulas,
		Lookup:            &LookupRule{Key: colM, Target: colV, Default: strPtr("")},
	}
}

// Normalize keys the shipping fee lookup on the integer product code in M
func (bundleZigzag) Normalize(j *Job) error {
	for i, row := range j.Sheet.Rows {
		row.Set(colM, truncatedInteger(j, row.Get(colM), workbook.CellRef(colM, i+2)))
	}
	j.Enrich(j.Sheet)

	j.Total(j.Sheet, engine.SumOf("D", "U", "V"))
	for _, row := range j.Sheet.Rows {
		label := row.Get(colF)
		if label.IsBlank() {
			continue
		}
		cleaned := strings.TrimSpace(rules.StripSingleQuantity(label.String()))
		row.Set(colF, workbook.Text(cleaned))
		if strings.Count(cleaned, "개") >= 2 {
			row.Annotate(colF, workbook.Style{Fill: fillCounted})
		}
	}
	return nil
}

// truncatedInteger reads c as a number and drops the fraction. Blank and
// unreadable values become 0.
func truncatedInteger(j *Job, c workbook.Cell, ref string) workbook.Cell {
	if c.IsBlank() {
		return workbook.Int(0)
	}
	if d, ok := c.Decimal(); ok {
		return workbook.Number(d.Truncate(0))
	}
	d, err := decimal.NewFromString(strings.TrimSpace(c.String()))
	if err != nil {
		j.Warn(apperrors.NewValueCoercionError(ref, c.String(), err))
		return workbook.Int(0)
	}
	return workbook.Number(d.Truncate(0))
}

func (bundleZigzag) SortGroup(j *Job) error {
	return engine.SortRows(j.Sheet, engine.SortSpec{engine.Asc("B"), engine.Asc("C")})
}

func (bundleZigzag) Compute(j *Job) error { return nil }

func (bundleZigzag) Style(j *Job) error {
	for _, sheet := range j.OutputSheets() {
		alignStandard(sheet)
	}
	return nil
}
