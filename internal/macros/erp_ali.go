package macros

import (
	"strings"

	"ordermacro/internal/engine"
	"ordermacro/internal/rules"
	"ordermacro/internal/workbook"
	"ordermacro/pkg/contracts/domain"
)

type erpAli struct{}

func (erpAli) Profile() Profile {
	return Profile{
		Mode:    domain.ModeERP,
		Channel: domain.ChannelAli,
		Sheets:  []string{"OK", "IY"},
		Accounts: []Account{
			{Tag: "오케이마트", Sheet: "OK"},
			{Tag: "아이예스", Sheet: "IY"},
		},
		Match:             MatchLeadingTag,
		CreateEmpty:       true,
		AutomationNumbers: NumberFormulas,
		SheetNumbers:      NumberValues,
		Lookup:            &LookupRule{Key: colF, Target: colS, Default: strPtr("S"), Always: true},
	}
}

// Normalize copies the product label from Z and the buyer phone from I
func (erpAli) Normalize(j *Job) error {
	for _, row := range j.Sheet.Rows {
		label := row.Get(colZ)
		if label.IsText() {
			label = workbook.Text(rules.SplitQuantitySuffix(strings.TrimSpace(label.Str())))
		}
		row.Set(colF, label)

		if phone := row.Get(colI); !phone.IsBlank() {
			row.Set(colI, aliPhone(phone))
			row.Set(colH, row.Get(colI))
		}
	}
	total := engine.SumOf("D", "U", "V")
	total.KeepEmpty = true
	j.Total(j.Sheet, total)
	return nil
}

// aliPhone rebuilds mobile numbers exported without their leading zero or
// with a foreign prefix
func aliPhone(c workbook.Cell) workbook.Cell {
	digits := strings.TrimSpace(strings.ReplaceAll(c.String(), "-", ""))
	if !rules.IsDigits(digits) {
		return c
	}
	switch len(digits) {
	case 9, 10, 11:
		return workbook.Text(rules.NormalizeMobile(digits))
	}
	return c
}

func (erpAli) SortGroup(j *Job) error {
	return engine.SortRows(j.Sheet, engine.SortSpec{engine.Asc("B"), engine.Asc("C"), engine.AsText("E")})
}

// Compute looks sizes up by product label, then marks remote addresses
func (erpAli) Compute(j *Job) error {
	for _, sheet := range j.OutputSheets() {
		j.Enrich(sheet)
		for _, row := range sheet.Rows {
			addRemoteMarker(row, inJeju)
		}
		j.Numeric(sheet, colP, colQ)
	}
	return nil
}

func (erpAli) Style(j *Job) error {
	for _, sheet := range j.OutputSheets() {
		for _, row := range sheet.Rows {
			flagRemote(row, inJeju, fillJeju)
		}
	}
	return nil
}
