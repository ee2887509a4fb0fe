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

var (
	// sites charging one shipping fee per delivery address
	feePerAddressSites = []string{"롯데온", "보리보리", "스마트스토어"}
	// sites whose order numbers are plain integers
	numericOrderSites = []string{"에이블리", "오늘의집", "쿠팡", "텐바이텐", "NS홈쇼핑", "그립", "보리보리", "카카오선물하기", "톡스토어", "토스"}

	tossFreeShippingLimit = decimal.NewFromInt(30000)
)

const shippingFee = 3000

type erpEtc struct{}

func (erpEtc) Profile() Profile {
	return Profile{
		Mode:    domain.ModeERP,
		Channel: domain.ChannelEtc,
		Sheets:  []string{"OK", "IY", "BB"},
		Accounts: []Account{
			{Tag: "오케이마트", Sheet: "OK"},
			{Tag: "아이예스", Sheet: "IY"},
			{Tag: "베이지베이글", Sheet: "BB"},
		},
		Match:             MatchLeadingTag,
		CreateEmpty:       true,
		AutomationNumbers: NumberValues,
		SheetNumbers:      NumberValues,
	}
}

func containsSite(s string, sites []string) bool {
	_, ok := rules.FirstSite(s, sites)
	return ok
}

// Normalize zeroes repeated shipping fees, settles toss shipping per order and
// formats phones and order numbers
func (erpEtc) Normalize(j *Job) error {
	seen := engine.SeenSet{}
	toss := engine.NewOrderTotals()

	for i, row := range j.Sheet.Rows {
		b := site(row)
		switch {
		case strings.Contains(b, "오늘의집"):
			row.Set(colV, workbook.Int(0))
		case strings.Contains(b, "톡스토어"):
			chargeOnce(row, seen, row.Get(colB))
		case containsSite(b, feePerAddressSites):
			chargeOnce(row, seen, row.Get(colJ))
		}

		if strings.Contains(b, "토스") {
			if key := strings.TrimSpace(row.Get(colE).String()); key != "" {
				toss.Add(key, rules.LooseNumber(row.Get(colU)), i)
				row.Set(colV, workbook.Int(0))
			}
		}
		if containsSite(b, numericOrderSites) {
			integerOrderNumber(j, row, i)
		}
		if strings.Contains(b, "카카오") {
			markRemote(row, inJeju, fillJeju)
		}
		formatPhones(row, colH, colI)
	}

	toss.Each(func(_ string, total decimal.Decimal, first int) {
		if total.LessThanOrEqual(tossFreeShippingLimit) {
			j.Sheet.Row(first).Set(colV, workbook.Int(shippingFee))
		}
	})
	return nil
}

// chargeOnce zeroes the shipping fee of every row after the first one sharing key
func chargeOnce(row *workbook.Row, seen engine.SeenSet, key workbook.Cell) {
	k := strings.TrimSpace(key.String())
	if k == "" {
		return
	}
	if !seen.FirstSeen(k) {
		row.Set(colV, workbook.Int(0))
	}
}

// integerOrderNumber turns "12345" or "12345.0" in E into an integer
func integerOrderNumber(j *Job, row *workbook.Row, index int) {
	c := row.Get(colE)
	s := strings.TrimSpace(c.String())
	if s == "" || !rules.IsDigits(strings.ReplaceAll(s, ".", "")) {
		return
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		j.Warn(apperrors.NewValueCoercionError(workbook.CellRef(colE, index+2), s, err))
		return
	}
	row.Set(colE, workbook.Number(d.Truncate(0)))
}

func (erpEtc) SortGroup(j *Job) error {
	return engine.SortRows(j.Sheet, engine.SortSpec{
		engine.Asc("B"), engine.Asc("C"), engine.Desc("D"), engine.AsText("E"), engine.AsText("F"),
	})
}

func (erpEtc) Compute(j *Job) error {
	total := engine.SumOf("D", "U", "V")
	total.KeepEmpty = true
	for _, sheet := range j.OutputSheets() {
		j.Total(sheet, total)
		for _, row := range sheet.Rows {
			orderNumberText(row)
			stripLabel(row, colF)
			settlePayment(row)
		}
		j.Numeric(sheet, colP)
	}
	return nil
}

func (erpEtc) Style(j *Job) error {
	for _, sheet := range j.OutputSheets() {
		for _, row := range sheet.Rows {
			alignOrderNumber(row)
			highlightLabel(row, colF, fillLabel)
			flagCashOnDelivery(row)
			flagZeroFee(row, colV)
		}
	}
	return nil
}
