package macros

import (
	"ordermacro/internal/engine"
	"ordermacro/internal/rules"
	"ordermacro/internal/workbook"
	"ordermacro/pkg/contracts/domain"
)

const gmarketOrderNumberLength = 10

type bundleGmarket struct{}

func (bundleGmarket) Profile() Profile {
	return Profile{
		Mode:              domain.ModeBundle,
		Channel:           domain.ChannelGmarket,
		Sheets:            []string{"OK,CL,BB", "IY"},
		Accounts:          gmarketAccounts(),
		Match:             MatchAnyTag,
		CreateEmpty:       true,
		SheetSort:         engine.SortSpec{engine.Asc("B"), engine.Asc("C")},
		AutomationNumbers: NumberFormulas,
		SheetNumbers:      NumberFormulas,
	}
}

func (bundleGmarket) Normalize(j *Job) error {
	for _, row := range j.Sheet.Rows {
		if sum, ok := rules.SlashSum(row.Get(colP)); ok {
			row.Set(colP, sum)
		}
		if first, ok := rules.FirstSlashPart(row.Get(colV)); ok {
			row.Set(colV, first)
		}
		if label := row.Get(colF); !label.IsBlank() {
			row.Set(colF, workbook.Text(rules.JoinLabels(label.String())))
		}
		if order := row.Get(colE); !order.IsBlank() {
			row.Set(colE, workbook.Text(rules.Truncate(order.String(), gmarketOrderNumberLength)))
			row.Annotate(colE, workbook.Style{NumFmt: workbook.FormatGeneral})
		}
		row.Set(colL, workbook.Empty())
	}
	j.Numeric(j.Sheet, colE, colF, colM, colQ, colW)
	return nil
}

func (bundleGmarket) SortGroup(j *Job) error {
	return engine.SortRows(j.Sheet, engine.SortSpec{engine.Asc("B"), engine.Asc("C")})
}

func (bundleGmarket) Compute(j *Job) error {
	total := engine.SumOf("D", "O", "P", "V")
	for _, sheet := range j.OutputSheets() {
		j.Total(sheet, total)
	}
	return nil
}

func (bundleGmarket) Style(j *Job) error {
	for _, sheet := range j.OutputSheets() {
		alignStandard(sheet)
		alignColumns(sheet, leftAligned, colF)
	}
	return nil
}
