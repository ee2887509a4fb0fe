package rules

import (
	"regexp"
	"strings"

	"ordermacro/internal/workbook"
)

// JejuMarker is appended to the product label of remote-area orders
const JejuMarker = " [3000원 연락해야함]"

const singleQuantity = " 1개"

var (
	labelSeparators = regexp.MustCompile(`[/;]`)
	quantityMarker  = regexp.MustCompile(`\* ?(\d+)`)
	countedPart     = regexp.MustCompile(`\d+개`)
)

// StripSingleQuantity removes the " 1개" suffix that marketplaces add to single items
func StripSingleQuantity(s string) string {
	return strings.ReplaceAll(s, singleQuantity, "")
}

// JoinLabels turns "/" or ";" separated product names into "a + b" and strips " 1개"
func JoinLabels(s string) string {
	s = labelSeparators.ReplaceAllString(s, " + ")
	return strings.TrimSpace(StripSingleQuantity(s))
}

// QuantityLabel joins separated labels and rewrites "* n" markers into
// " n개", dropping them when n is 1.
func QuantityLabel(s string) string {
	s = labelSeparators.ReplaceAllString(s, " + ")
	s = quantityMarker.ReplaceAllStringFunc(s, func(m string) string {
		n := quantityMarker.FindStringSubmatch(m)[1]
		if n == "1" {
			return ""
		}
		return " " + n + "개"
	})
	return strings.TrimSpace(StripSingleQuantity(s))
}

// SplitQuantitySuffix handles labels such as "상품 * 3": a trailing " * 1" is
// removed and any other count becomes " n개".
func SplitQuantitySuffix(s string) string {
	if strings.HasSuffix(s, " * 1") {
		return strings.TrimSuffix(s, " * 1")
	}
	parts := strings.Split(s, " * ")
	if len(parts) < 2 {
		return s
	}
	last := strings.TrimSpace(parts[len(parts)-1])
	if !IsDigits(last) || last == "1" {
		return s
	}
	return strings.Join(parts[:len(parts)-1], " * ") + " " + last + "개"
}

// CountedParts counts " + " separated parts carrying an "n개" quantity
func CountedParts(s string) int {
	n := 0
	for _, part := range strings.Split(s, "+") {
		if countedPart.MatchString(part) {
			n++
		}
	}
	return n
}

// ShouldHighlight flags product labels that are empty, "none", all '#',
// a bare number or a bare "n개".
func ShouldHighlight(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return true
	}
	if strings.Trim(s, "#") == "" {
		return true
	}
	if IsDigits(s) {
		return true
	}
	if rest, found := strings.CutSuffix(s, "개"); found && IsDigits(rest) {
		return true
	}
	return false
}

// HighlightCell applies ShouldHighlight to a present cell. Absent cells are never flagged.
func HighlightCell(c workbook.Cell) bool {
	return !c.IsEmpty() && ShouldHighlight(c.String())
}

// AddJejuMarker appends JejuMarker once. Blank labels are left alone.
func AddJejuMarker(s string) string {
	if s == "" || strings.Contains(s, JejuMarker) {
		return s
	}
	return s + JejuMarker
}

// Payment labels in column L
const (
	PaymentCredit    = "신용"
	PaymentOnArrival = "착불"
)

// PaymentRule returns the rewritten payment label and whether it must be highlighted
func PaymentRule(s string) (string, bool) {
	switch strings.TrimSpace(s) {
	case PaymentCredit:
		return "", false
	case PaymentOnArrival:
		return s, true
	}
	return s, false
}

// Truncate keeps the first n runes
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
