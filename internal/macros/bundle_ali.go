package macros

import (
	"ordermacro/internal/engine"
	"ordermacro/internal/rules"
	"ordermacro/internal/workbook"
	"ordermacro/pkg/contracts/domain"
)

const aliOrderNumberLength = 16

type bundleAli struct{}

func (bundleAli) Profile() Profile {
	return Profile{
		Mode:    domain.ModeBundle,
		Channel: domain.ChannelAli,
		Sheets:  []string{"OK", "IY"},
		Accounts: []Account{
			{Tag: "오케이마트", Sheet: "OK"},
			{Tag: "아이예스", Sheet: "IY"},
		},
		Match:             MatchSubstring,
		SheetSort:         engine.SortSpec{engine.Asc("B"), engine.Asc("C")},
		AutomationNumbers: NumberFormulas,
		SheetNumbers:      NumberFormulas,
		Lookup:            &LookupRule{Key: colM, Target: colS, Default: strPtr("S")},
	}
}

func (bundleAli) Normalize(j *Job) error {
	for _, row := range j.Sheet.Rows {
		if sum, ok := rules.SlashSum(row.Get(colP)); ok {
			row.Set(colP, sum)
		}

		label := rules.QuantityLabel(row.Get(colZ).String())
		row.Set(colF, workbook.Text(label))
		if rules.CountedParts(label) >= 2 {
			row.Annotate(colF, workbook.Style{Fill: fillCounted})
		}

		phone := workbook.Text(rules.RestoreLeadingZero(row.Get(colI).String()))
		row.Set(colI, phone)
		row.Set(colH, phone)

		if order := row.Get(colE); !order.IsEmpty() {
			row.Set(colE, workbook.Text(rules.Truncate(order.String(), aliOrderNumberLength)))
		}
		markRemote(row, inJejuOrSeogwipo, fillCounted)
	}
	j.Total(j.Sheet, engine.SumOf("D", "U", "V"))
	j.Numeric(j.Sheet, colE, colM, colP, colQ, colW)
	j.Enrich(j.Sheet)
	return nil
}

func (bundleAli) SortGroup(j *Job) error {
	return engine.SortRows(j.Sheet, engine.SortSpec{engine.Asc("B"), engine.Asc("C")})
}

func (bundleAli) Compute(j *Job) error { return nil }

func (bundleAli) Style(j *Job) error {
	for _, sheet := range j.OutputSheets() {
		alignStandard(sheet)
		if w, ok := sheet.ColumnWidths[colI]; ok {
			sheet.ColumnWidths[colH] = w
		}
	}
	return nil
}
