package rules

import (
	"strings"

	"ordermacro/internal/workbook"
)

var mobilePrefixes = map[string]bool{
	"010": true, "011": true, "016": true, "017": true, "018": true, "019": true,
}

var virtualPrefixes = map[string]bool{"050": true, "070": true}

// FormatPhone formats Korean phone numbers by length and prefix. Input that
// does not match a known shape comes back unchanged.
func FormatPhone(s string) string {
	if s == "" {
		return ""
	}
	v := strings.TrimSpace(strings.NewReplacer("-", "", " ", "").Replace(s))
	if !IsDigits(v) {
		return s
	}

	switch {
	case len(v) == 12 && virtualPrefixes[v[:3]]:
		return v[:4] + "-" + v[4:8] + "-" + v[8:]
	case len(v) == 11 && mobilePrefixes[v[:3]]:
		return v[:3] + "-" + v[3:7] + "-" + v[7:]
	case len(v) == 10 && strings.HasPrefix(v, "02"):
		return v[:2] + "-" + v[2:6] + "-" + v[6:]
	case len(v) == 10 && isAreaCode(v[:3]):
		return v[:3] + "-" + v[3:6] + "-" + v[6:]
	case len(v) == 9 && strings.HasPrefix(v, "02"):
		return v[:2] + "-" + v[2:5] + "-" + v[5:]
	}
	return s
}

// isAreaCode matches 031 through 064
func isAreaCode(p string) bool {
	return p[0] == '0' && p >= "031" && p <= "064"
}

// FormatPhoneCell applies FormatPhone to a cell. Blank cells stay as they are.
func FormatPhoneCell(c workbook.Cell) workbook.Cell {
	if c.IsBlank() {
		return c
	}
	formatted := FormatPhone(c.String())
	if formatted == c.String() {
		return c
	}
	return workbook.Text(formatted)
}

// NormalizeMobile rebuilds foreign-formatted mobile numbers: 11 digits are
// formatted, 9 or 10 digits become 010 plus the last 8 digits.
func NormalizeMobile(s string) string {
	digits := DigitsOnly(s)
	switch {
	case len(digits) == 11:
		return FormatPhone(digits)
	case len(digits) == 9 || len(digits) == 10:
		return FormatPhone("010" + digits[len(digits)-8:])
	}
	return digits
}

// RestoreLeadingZero formats numbers that lost their leading zero, e.g.
// "1012345678" as exported from a numeric column.
func RestoreLeadingZero(s string) string {
	digits := DigitsOnly(s)
	if strings.HasPrefix(digits, "10") {
		digits = "0" + digits
	}
	if len(digits) == 11 {
		return digits[:3] + "-" + digits[3:7] + "-" + digits[7:]
	}
	return digits
}
