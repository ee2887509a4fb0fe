package workbook

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind is the runtime type of a Cell
type Kind uint8

const (
	KindEmpty Kind = iota
	KindInt
	KindDecimal
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	}
	return "empty"
}

// Cell is a single typed spreadsheet value. The zero value is an empty cell.
type Cell struct {
	kind Kind
	i    int64
	d    decimal.Decimal
	s    string
}

// Empty returns an absent value
func Empty() Cell { return Cell{} }

// Int returns an integer cell
func Int(n int64) Cell { return Cell{kind: KindInt, i: n} }

// Dec returns a decimal cell. Integral decimals stay decimals.
func Dec(d decimal.Decimal) Cell { return Cell{kind: KindDecimal, d: d} }

// Text returns a string cell. An empty string is still a string, not an absent value.
func Text(s string) Cell { return Cell{kind: KindString, s: s} }

// Formula returns a string cell holding a spreadsheet formula
func Formula(expr string) Cell {
	if !strings.HasPrefix(expr, "=") {
		expr = "=" + expr
	}
	return Text(expr)
}

// Number returns a numeric cell, preferring the integer representation
func Number(d decimal.Decimal) Cell {
	if d.IsInteger() && d.Abs().LessThan(maxExactInt) {
		return Int(d.IntPart())
	}
	return Dec(d)
}

var maxExactInt = decimal.New(1, 15)

func (c Cell) Kind() Kind      { return c.kind }
func (c Cell) IsEmpty() bool   { return c.kind == KindEmpty }
func (c Cell) IsText() bool    { return c.kind == KindString }
func (c Cell) IsNumeric() bool { return c.kind == KindInt || c.kind == KindDecimal }

// IsBlank reports an absent value or an empty string
func (c Cell) IsBlank() bool {
	return c.kind == KindEmpty || (c.kind == KindString && c.s == "")
}

// IsFormula reports a string value starting with "="
func (c Cell) IsFormula() bool {
	return c.kind == KindString && strings.HasPrefix(c.s, "=")
}

// Decimal returns the numeric value. ok is false for strings and absent values.
func (c Cell) Decimal() (d decimal.Decimal, ok bool) {
	switch c.kind {
	case KindInt:
		return decimal.NewFromInt(c.i), true
	case KindDecimal:
		return c.d, true
	}
	return decimal.Zero, false
}

// DecimalOrZero returns the numeric value or zero
func (c Cell) DecimalOrZero() decimal.Decimal {
	d, _ := c.Decimal()
	return d
}

// Int64 returns the integer value, truncating decimals
func (c Cell) Int64() (int64, bool) {
	switch c.kind {
	case KindInt:
		return c.i, true
	case KindDecimal:
		return c.d.IntPart(), true
	}
	return 0, false
}

// Str returns the raw string for string cells and "" otherwise
func (c Cell) Str() string {
	if c.kind == KindString {
		return c.s
	}
	return ""
}

// String renders the value as spreadsheet text. Absent values render as "".
func (c Cell) String() string {
	switch c.kind {
	case KindInt:
		return strconv.FormatInt(c.i, 10)
	case KindDecimal:
		return c.d.String()
	case KindString:
		return c.s
	}
	return ""
}

// Equal compares kind and value
func (c Cell) Equal(o Cell) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindInt:
		return c.i == o.i
	case KindDecimal:
		return c.d.Equal(o.d)
	case KindString:
		return c.s == o.s
	}
	return true
}

// Value returns the Go value handed to the xlsx writer
func (c Cell) Value() interface{} {
	switch c.kind {
	case KindInt:
		return c.i
	case KindDecimal:
		return c.d.InexactFloat64()
	case KindString:
		return c.s
	}
	return nil
}

// MaxExactDigits is the longest integer a spreadsheet number holds without
// losing digits
const MaxExactDigits = 15

// ParseScalar types a raw text value the way a spreadsheet would store it.
// Integers with a leading zero (phone numbers, zip codes) and integers longer
// than MaxExactDigits (order and basket ids) stay strings.
func ParseScalar(raw string) Cell {
	if raw == "" {
		return Empty()
	}
	if looksNumeric(raw) {
		if len(strings.TrimPrefix(raw, "-")) > MaxExactDigits && isDigitRun(strings.TrimPrefix(raw, "-")) {
			return Text(raw)
		}
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return Int(n)
		}
		if d, err := decimal.NewFromString(raw); err == nil {
			return Dec(d)
		}
	}
	return Text(raw)
}

func isDigitRun(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func looksNumeric(s string) bool {
	body := strings.TrimPrefix(s, "-")
	if body == "" {
		return false
	}
	if len(body) > 1 && body[0] == '0' && body[1] != '.' {
		return false
	}
	dot := false
	for i, r := range body {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !dot && i > 0 && i < len(body)-1:
			dot = true
		case (r == 'E' || r == 'e') && i > 0:
			// scientific notation from raw xlsx values
			return true
		default:
			return false
		}
	}
	return true
}
