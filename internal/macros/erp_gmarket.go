package macros

import (
	"ordermacro/internal/engine"
	"ordermacro/pkg/contracts/domain"
)

// gmarketAccounts is shared by the erp and bundle gmarket macros
func gmarketAccounts() []Account {
	return []Account{
		{Tag: "오케이마트", Sheet: "OK,CL,BB"},
		{Tag: "클로버프", Sheet: "OK,CL,BB"},
		{Tag: "베이지베이글", Sheet: "OK,CL,BB"},
		{Tag: "아이예스", Sheet: "IY"},
	}
}

type erpGmarket struct{}

func (erpGmarket) Profile() Profile {
	return Profile{
		Mode:              domain.ModeERP,
		Channel:           domain.ChannelGmarket,
		Sheets:            []string{"OK,CL,BB", "IY"},
		Accounts:          gmarketAccounts(),
		Match:             MatchLeadingTag,
		CreateEmpty:       true,
		AutomationNumbers: NumberFormulas,
		SheetNumbers:      NumberValues,
	}
}

// Normalize takes the shipping fee of every basket into the ledger, leaving 0 behind
func (erpGmarket) Normalize(j *Job) error {
	for _, row := range j.Sheet.Rows {
		row.Set(colV, j.Baskets.Record(row.Get(colQ), row.Get(colV)))
	}
	return nil
}

// SortGroup sorts, then puts each basket fee back on the first row of its basket
func (erpGmarket) SortGroup(j *Job) error {
	err := engine.SortRows(j.Sheet, engine.SortSpec{
		engine.Asc("B"), engine.Asc("C"), engine.AsText("E").Reversed(),
	})
	if err != nil {
		return err
	}
	for _, row := range j.Sheet.Rows {
		if fee, ok := j.Baskets.Claim(row.Get(colQ)); ok {
			row.Set(colV, fee)
		}
	}
	return nil
}

func (erpGmarket) Compute(j *Job) error {
	total := engine.SumOf("D", "O", "P", "V")
	total.KeepEmpty = true
	for _, sheet := range j.OutputSheets() {
		j.Numeric(sheet, colR, colS)
		j.Total(sheet, total)
		for _, row := range sheet.Rows {
			orderNumberText(row)
			stripLabel(row, colF)
			settlePayment(row)
		}
	}
	return nil
}

func (erpGmarket) Style(j *Job) error {
	for _, sheet := range j.OutputSheets() {
		for _, row := range sheet.Rows {
			alignOrderNumber(row)
			highlightLabel(row, colF, fillLabel)
			flagCashOnDelivery(row)
		}
	}
	return nil
}
