package macros

import (
	"ordermacro/internal/engine"
	"ordermacro/pkg/contracts/domain"
)

type erpZigzag struct{}

func (erpZigzag) Profile() Profile {
	return Profile{
		Mode:    domain.ModeERP,
		Channel: domain.ChannelZigzag,
		Sheets:  []string{"OK", "IY"},
		Accounts: []Account{
			{Tag: "오케이마트", Sheet: "OK"},
			{Tag: "아이예스", Sheet: "IY"},
		},
		Match:             MatchLeadingTag,
		CreateEmpty:       true,
		AutomationNumbers: NumberFormulas,
		SheetNumbers:      NumberValues,
		Lookup:            &LookupRule{Key: colM, Target: colV},
	}
}

func (erpZigzag) Normalize(j *Job) error { return nil }

func (erpZigzag) SortGroup(j *Job) error {
	return engine.SortRows(j.Sheet, engine.SortSpec{engine.Asc("B"), engine.Asc("C"), engine.AsText("E")})
}

// Compute fills the shipping fee from the lookup table before totalling D
func (erpZigzag) Compute(j *Job) error {
	total := engine.SumOf("D", "U", "V")
	total.KeepEmpty = true
	for _, sheet := range j.OutputSheets() {
		j.Enrich(sheet)
		j.Total(sheet, total)
		for _, row := range sheet.Rows {
			orderNumberText(row)
			stripLabel(row, colF)
		}
	}
	return nil
}

func (erpZigzag) Style(j *Job) error {
	for _, sheet := range j.OutputSheets() {
		for _, row := range sheet.Rows {
			alignOrderNumber(row)
			highlightLabel(row, colF, fillLabel)
		}
	}
	return nil
}
