package macros

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"ordermacro/internal/engine"
	"ordermacro/internal/rules"
	"ordermacro/internal/workbook"
	"ordermacro/pkg/contracts/domain"
)

var (
	// sites that split one shipping fee over the orders of a shipment
	deliverySplitSites = []string{"롯데온", "보리보리", "스마트스토어", "톡스토어"}
	freeDeliverySites  = []string{"오늘의집"}

	// order number lengths per site, first match wins
	orderNumberLengths = []struct {
		site   string
		length int
	}{
		{"YES24", 11},
		{"CJ온스타일", 26},
		{"GSSHOP", 21},
		{"스마트스토어", 16},
		{"에이블리", 13},
		{"올웨이즈", 36},
		{"카카오선물하기", 10},
		{"카카오톡스토어", 10},
		{"위메프", 13},
		{"인터파크", 12},
		{"쿠팡", 13},
		{"티몬", 12},
		{"하이마트", 12},
	}

	shippingFeeAmount = decimal.NewFromInt(shippingFee)
)

type bundleEtc struct{}

func (bundleEtc) Profile() Profile {
	return Profile{
		Mode:    domain.ModeBundle,
		Channel: domain.ChannelEtc,
		Sheets:  []string{"OK", "BB", "IY"},
		Accounts: []Account{
			{Tag: "오케이마트", Sheet: "OK"},
			{Tag: "클로버프", Sheet: "OK"},
			{Tag: "베이지베이글", Sheet: "BB"},
			{Tag: "아이예스", Sheet: "IY"},
		},
		Match:             MatchAnyTag,
		CreateEmpty:       true,
		SheetSort:         engine.SortSpec{engine.Asc("B"), engine.Asc("C")},
		AutomationNumbers: NumberFormulas,
		SheetNumbers:      NumberFormulas,
	}
}

func (bundleEtc) Normalize(j *Job) error {
	for _, row := range j.Sheet.Rows {
		bundleDeliveryFee(row)
		truncateOrderNumber(row)
		formatPhones(row, colH, colI)
		if strings.Contains(site(row), "카카오") {
			markRemote(row, inJeju, fillJeju)
		}
		paymentLabel(row)
		if label := row.Get(colF); label.IsText() {
			cleaned := strings.TrimSpace(rules.StripSingleQuantity(label.Str()))
			row.Set(colF, workbook.Text(strings.ReplaceAll(cleaned, "/", " + ")))
		}
		row.Set(colD, workbook.Number(rules.LooseNumber(row.Get(colU)).Add(slashTotal(row.Get(colV)))))
		row.Annotate(colD, workbook.Style{NumFmt: workbook.FormatGeneral})
	}
	j.Numeric(j.Sheet, colF, colM, colW, colAA)
	return nil
}

// bundleDeliveryFee rewrites V for sites with their own shipping terms
func bundleDeliveryFee(row *workbook.Row) {
	b := site(row)
	fee := row.Get(colV)
	var out workbook.Cell
	switch {
	case containsSite(b, deliverySplitSites) && strings.Contains(row.Get(colX).String(), "/"):
		count := int64(len(strings.Split(row.Get(colX).String(), "/")))
		switch {
		case fee.IsBlank():
			out = workbook.Number(shippingFeeAmount.Div(decimal.NewFromInt(count)).RoundBank(0))
		case firstAmount(fee).GreaterThan(shippingFeeAmount):
			out = workbook.Number(firstAmount(fee).Div(decimal.NewFromInt(count)).RoundBank(0))
		default:
			return
		}
	case containsSite(b, freeDeliverySites):
		out = workbook.Int(0)
	case strings.Contains(b, "토스"):
		out = workbook.Int(shippingFee)
		if firstAmount(row.Get(colU)).GreaterThan(tossFreeShippingLimit) {
			out = workbook.Int(0)
		}
	default:
		return
	}
	row.Set(colV, out)
	row.Annotate(colV, alertStyle)
}

// firstAmount reads a number or the first part of a slash list, 0 when unreadable
func firstAmount(c workbook.Cell) decimal.Decimal {
	if d, ok := c.Decimal(); ok {
		return d
	}
	part, _, _ := strings.Cut(c.Str(), "/")
	d, err := decimal.NewFromString(strings.TrimSpace(part))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// slashTotal sums a slash list, or returns a plain number
func slashTotal(c workbook.Cell) decimal.Decimal {
	if summed, ok := rules.SlashSum(c); ok {
		return summed.DecimalOrZero()
	}
	return c.DecimalOrZero()
}

// truncateOrderNumber cuts site specific suffixes off the order number in E
func truncateOrderNumber(row *workbook.Row) {
	raw := row.Get(colE).String()
	if raw == "" {
		return
	}
	b := site(row)
	for _, o := range orderNumberLengths {
		if strings.Contains(b, o.site) {
			row.Set(colE, workbook.Text(rules.Truncate(raw, o.length)))
			break
		}
	}
	// coupang joins several order numbers of equal length with "/"
	if strings.Contains(b, "쿠팡") && strings.Contains(raw, "/") {
		parts := strings.Count(raw, "/") + 1
		each := utf8.RuneCountInString(strings.ReplaceAll(raw, "/", "")) / parts
		row.Set(colE, workbook.Text(rules.Truncate(raw, each)))
	}
}

func (bundleEtc) SortGroup(j *Job) error {
	return engine.SortRows(j.Sheet, engine.SortSpec{engine.Asc("B"), engine.Asc("C")})
}

func (bundleEtc) Compute(j *Job) error { return nil }

func (bundleEtc) Style(j *Job) error {
	for _, sheet := range j.OutputSheets() {
		alignStandard(sheet)
		alignColumns(sheet, leftAligned, colF)
	}
	return nil
}
