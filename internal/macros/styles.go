package macros

import (
	"regexp"
	"strings"

	"ordermacro/internal/rules"
	"ordermacro/internal/workbook"
)

const (
	colorRed   = "FF0000"
	colorWhite = "FFFFFF"

	fillHeader  = "008000"
	fillLabel   = "ADD8E6"
	fillJeju    = "CCFFFF"
	fillCounted = "CCE8FF"

	headerFont = "맑은 고딕"
)

var (
	headerStyle = workbook.Style{
		FontName:  headerFont,
		FontSize:  9,
		FontColor: colorWhite,
		Bold:      true,
		Fill:      fillHeader,
		Align:     workbook.AlignCenter,
	}
	alertStyle   = workbook.Style{FontColor: colorRed, Bold: true}
	redFont      = workbook.Style{FontColor: colorRed}
	rightAligned = workbook.Style{Align: workbook.AlignRight}
	leftAligned  = workbook.Style{Align: workbook.AlignLeft}
	centered     = workbook.Style{Align: workbook.AlignCenter}
)

func styleHeaders(doc *workbook.Document) {
	for _, s := range doc.Sheets() {
		s.HeaderStyle = headerStyle
	}
}

// addressMatcher decides whether an address is a remote area that pays the surcharge
type addressMatcher func(address string) bool

var jejuOrSeogwipo = regexp.MustCompile(`제주|서귀포`)

func inJeju(address string) bool {
	return rules.ContainsSite(address, "제주")
}

func inJejuOrSeogwipo(address string) bool {
	return jejuOrSeogwipo.MatchString(rules.Normalize(address))
}

// addRemoteMarker appends the surcharge marker to F when the address in J is
// in a remote area
func addRemoteMarker(row *workbook.Row, match addressMatcher) bool {
	if !match(row.Get(colJ).String()) {
		return false
	}
	if label := row.Get(colF); label.IsText() {
		row.Set(colF, workbook.Text(rules.AddJejuMarker(label.Str())))
	}
	return true
}

// flagRemote highlights F and J of rows shipping to a remote area
func flagRemote(row *workbook.Row, match addressMatcher, fill string) bool {
	if !match(row.Get(colJ).String()) {
		return false
	}
	row.Annotate(colF, workbook.Style{Fill: fill})
	row.Annotate(colJ, alertStyle)
	return true
}

// markRemote is addRemoteMarker followed by flagRemote
func markRemote(row *workbook.Row, match addressMatcher, fill string) bool {
	if !addRemoteMarker(row, match) {
		return false
	}
	return flagRemote(row, match, fill)
}

// orderNumberText stores digit-only order numbers as text so long ids keep
// every digit
func orderNumberText(row *workbook.Row) {
	c := row.Get(colE)
	s := strings.TrimSpace(c.String())
	if s != "" && rules.IsDigits(strings.ReplaceAll(s, ".", "")) {
		row.Set(colE, workbook.Text(s))
		row.Annotate(colE, workbook.Style{NumFmt: workbook.FormatText})
	}
}

func alignOrderNumber(row *workbook.Row) {
	row.Annotate(colE, rightAligned)
}

// stripLabel removes " 1개" from a product label
func stripLabel(row *workbook.Row, col int) {
	if c := row.Get(col); c.IsText() {
		row.Set(col, workbook.Text(rules.StripSingleQuantity(c.Str())))
	}
}

// highlightLabel fills suspicious product labels
func highlightLabel(row *workbook.Row, col int, fill string) {
	if rules.HighlightCell(row.Get(col)) {
		row.Annotate(col, workbook.Style{Fill: fill})
	}
}

// settlePayment blanks credit payments
func settlePayment(row *workbook.Row) {
	c := row.Get(colL)
	if !c.IsText() {
		return
	}
	out, _ := rules.PaymentRule(c.Str())
	if out == "" {
		row.Set(colL, workbook.Empty())
	} else if out != c.Str() {
		row.Set(colL, workbook.Text(out))
	}
}

// flagCashOnDelivery colors cash-on-delivery payments
func flagCashOnDelivery(row *workbook.Row) {
	c := row.Get(colL)
	if !c.IsText() {
		return
	}
	if _, alert := rules.PaymentRule(c.Str()); alert {
		row.Annotate(colL, redFont)
	}
}

// paymentLabel is settlePayment followed by flagCashOnDelivery
func paymentLabel(row *workbook.Row) {
	settlePayment(row)
	flagCashOnDelivery(row)
}

func formatPhones(row *workbook.Row, cols ...int) {
	for _, col := range cols {
		row.Set(col, rules.FormatPhoneCell(row.Get(col)))
	}
}

// flagZeroFee marks an explicit zero shipping fee
func flagZeroFee(row *workbook.Row, col int) {
	c := row.Get(col)
	if c.IsNumeric() && c.DecimalOrZero().IsZero() {
		row.Annotate(col, alertStyle.Merge(rightAligned))
	}
}

func alignColumns(sheet *workbook.Sheet, style workbook.Style, cols ...int) {
	for _, row := range sheet.Rows {
		for _, col := range cols {
			row.Annotate(col, style)
		}
	}
}

// alignStandard centers A and B and right aligns D, E and G
func alignStandard(sheet *workbook.Sheet) {
	alignColumns(sheet, centered, colA, colB)
	alignColumns(sheet, rightAligned, colD, colE, colG)
}

// site returns the normalized site label of column B
func site(row *workbook.Row) string {
	return rules.Normalize(row.Get(colB).String())
}
