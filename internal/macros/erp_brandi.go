package macros

import (
	"ordermacro/internal/engine"
	"ordermacro/pkg/contracts/domain"
)

type erpBrandi struct{}

// Profile has no account sheets: brandi orders all belong to one account
func (erpBrandi) Profile() Profile {
	return Profile{
		Mode:              domain.ModeERP,
		Channel:           domain.ChannelBrandi,
		AutomationNumbers: NumberFormulas,
	}
}

func (erpBrandi) Normalize(j *Job) error { return nil }

func (erpBrandi) SortGroup(j *Job) error {
	return engine.SortRows(j.Sheet, engine.SortSpec{engine.AsText("C")})
}

func (erpBrandi) Compute(j *Job) error {
	total := engine.SumOf("D", "O", "P", "V")
	total.KeepEmpty = true
	j.Total(j.Sheet, total)
	for _, row := range j.Sheet.Rows {
		stripLabel(row, colF)
		formatPhones(row, colH, colI)
		addRemoteMarker(row, inJeju)
		orderNumberText(row)
	}
	return nil
}

func (erpBrandi) Style(j *Job) error {
	for _, row := range j.Sheet.Rows {
		highlightLabel(row, colF, fillLabel)
		flagRemote(row, inJeju, fillJeju)
		alignOrderNumber(row)
	}
	return nil
}
