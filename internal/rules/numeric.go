package rules

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"ordermacro/internal/workbook"
)

var numericText = regexp.MustCompile(`^[0-9,.]+$`)

// maxIntegerDigits is the longest digit run converted to a number. Longer
// values (order numbers, tracking ids) would lose precision as spreadsheet numbers.
const maxIntegerDigits = workbook.MaxExactDigits

// CoerceNumeric converts numeric-looking text into an integer cell. Commas and
// dots are separators and are dropped. Digit runs longer than 15 are kept as
// text with the text number format. ok is false when the cell was left as is.
func CoerceNumeric(c workbook.Cell) (out workbook.Cell, format string, ok bool) {
	if !c.IsText() {
		if d, isNum := c.Decimal(); isNum && c.Kind() == workbook.KindDecimal && d.IsInteger() {
			return workbook.Number(d), workbook.FormatInteger, true
		}
		return c, "", false
	}

	raw := strings.TrimSpace(c.Str())
	if !numericText.MatchString(raw) {
		return c, "", false
	}
	digits := DigitsOnly(raw)
	if digits == "" {
		return c, "", false
	}
	if len(digits) > maxIntegerDigits {
		return c, workbook.FormatText, true
	}
	n, err := decimal.NewFromString(digits)
	if err != nil {
		return c, "", false
	}
	return workbook.Int(n.IntPart()), workbook.FormatInteger, true
}

// IsNumericText reports text made only of digits and separators, the values
// CoerceNumeric attempts to convert
func IsNumericText(s string) bool {
	return numericText.MatchString(strings.TrimSpace(s))
}

// DigitsOnly drops every non-digit rune
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsDigits reports a non-empty ASCII digit string
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var moneyJunk = regexp.MustCompile(`[^\d.\-]`)

// ParseMoney reads values such as "12,345원" or "-56". ok is false when nothing numeric remains.
func ParseMoney(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d, true
	}
	cleaned := moneyJunk.ReplaceAllString(s, "")
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// SlashSum rewrites "216/-56" into 160. A single money-like value is converted
// directly. Cells with nothing numeric, and numbers, come back unchanged.
func SlashSum(c workbook.Cell) (workbook.Cell, bool) {
	if !c.IsText() {
		return c, false
	}
	raw := strings.TrimSpace(c.Str())
	if raw == "" || raw == "0" {
		return c, false
	}

	if !strings.Contains(raw, "/") {
		d, ok := ParseMoney(raw)
		if !ok || d.IsZero() {
			return c, false
		}
		return workbook.Number(d), true
	}

	sum, found := decimal.Zero, false
	for _, part := range strings.Split(raw, "/") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if d, ok := ParseMoney(part); ok {
			sum = sum.Add(d)
			found = true
		}
	}
	if !found {
		return c, false
	}
	return workbook.Number(sum), true
}

// FirstSlashPart keeps the first non-zero integer of a slash list, or 0 when
// there is none. Values without a slash are returned unchanged.
func FirstSlashPart(c workbook.Cell) (workbook.Cell, bool) {
	raw := strings.TrimSpace(c.String())
	if !strings.Contains(raw, "/") {
		return c, false
	}
	for _, part := range strings.Split(raw, "/") {
		part = strings.TrimSpace(part)
		if !IsDigits(part) {
			continue
		}
		d, _ := decimal.NewFromString(part)
		if !d.IsZero() {
			return workbook.Int(d.IntPart()), true
		}
	}
	return workbook.Int(0), true
}

// LooseNumber parses numbers and numeric text, defaulting to 0
func LooseNumber(c workbook.Cell) decimal.Decimal {
	if d, ok := c.Decimal(); ok {
		return d
	}
	if d, err := decimal.NewFromString(strings.TrimSpace(c.Str())); err == nil {
		return d
	}
	return decimal.Zero
}
