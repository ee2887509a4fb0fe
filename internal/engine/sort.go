package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "ordermacro/internal/errors"
	"ordermacro/internal/workbook"
)

// SortDirection selects ascending or descending order for one key
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

func (d SortDirection) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// KeyMode controls how cells become comparable keys
type KeyMode int

const (
	// KeyAuto infers number or text per column; mixing both is a SortKeyError
	KeyAuto KeyMode = iota
	// KeyNumeric reads every cell as a number, with text and blanks as 0
	KeyNumeric
	// KeyText compares the string form of every cell, blanks as ""
	KeyText
)

// SortKey is one (column, direction) pair
type SortKey struct {
	Column    int
	Direction SortDirection
	Mode      KeyMode
}

// SortSpec is an ordered list of keys
type SortSpec []SortKey

// Asc builds an ascending key for a column letter
func Asc(col string) SortKey { return SortKey{Column: workbook.MustCol(col)} }

// Desc builds a descending key for a column letter
func Desc(col string) SortKey {
	return SortKey{Column: workbook.MustCol(col), Direction: Descending}
}

// Numeric builds an ascending key that reads the column as numbers
func Numeric(col string) SortKey {
	return SortKey{Column: workbook.MustCol(col), Mode: KeyNumeric}
}

// AsText builds an ascending key over the string form of the column. Order
// numbers arrive as numbers from some sites and as text from others.
func AsText(col string) SortKey {
	return SortKey{Column: workbook.MustCol(col), Mode: KeyText}
}

// Reversed flips the direction of k
func (k SortKey) Reversed() SortKey {
	if k.Direction == Descending {
		k.Direction = Ascending
	} else {
		k.Direction = Descending
	}
	return k
}

func (s SortSpec) String() string {
	parts := make([]string, len(s))
	for i, k := range s {
		parts[i] = workbook.Letter(k.Column) + " " + k.Direction.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type elemKind uint8

const (
	elemMissing elemKind = iota
	elemNumber
	elemText
)

type keyElem struct {
	kind elemKind
	num  decimal.Decimal
	text string
}

// SortRows stably reorders the data rows of sheet by spec. The sheet is left
// untouched when a key cannot be built.
func SortRows(sheet *workbook.Sheet, spec SortSpec) error {
	keys, err := buildKeys(sheet, spec)
	if err != nil {
		return err
	}

	order := make([]int, sheet.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return lessKeys(keys[order[a]], keys[order[b]], spec) < 0
	})
	sheet.Reorder(order)
	return nil
}

func buildKeys(sheet *workbook.Sheet, spec SortSpec) ([][]keyElem, error) {
	for _, k := range spec {
		if k.Column < 0 || k.Column >= sheet.Width() {
			return nil, apperrors.NewSortKeyError(1, workbook.Letter(k.Column),
				fmt.Errorf("column outside header width %d", sheet.Width()))
		}
	}

	// column types are fixed by the first non-blank value of each key column
	kinds := make([]elemKind, len(spec))
	keys := make([][]keyElem, sheet.Len())
	for i, row := range sheet.Rows {
		key := make([]keyElem, len(spec))
		for j, k := range spec {
			elem := toElem(row.Get(k.Column), k.Mode)
			if elem.kind != elemMissing {
				if kinds[j] == elemMissing {
					kinds[j] = elem.kind
				} else if kinds[j] != elem.kind {
					return nil, apperrors.NewSortKeyError(i+2, workbook.Letter(k.Column),
						fmt.Errorf("%s value %q in a %s column", kindName(elem.kind), row.Get(k.Column).String(), kindName(kinds[j])))
				}
			}
			key[j] = elem
		}
		keys[i] = key
	}

	// absent text keys compare as ""
	for i := range keys {
		for j := range spec {
			if keys[i][j].kind == elemMissing && kinds[j] == elemText {
				keys[i][j] = keyElem{kind: elemText}
			}
		}
	}
	return keys, nil
}

func toElem(c workbook.Cell, mode KeyMode) keyElem {
	if mode == KeyNumeric {
		d, ok := c.Decimal()
		if !ok {
			if parsed, err := decimal.NewFromString(strings.TrimSpace(c.Str())); err == nil {
				d = parsed
			}
		}
		return keyElem{kind: elemNumber, num: d}
	}
	if mode == KeyText {
		return keyElem{kind: elemText, text: strings.TrimSpace(c.String())}
	}
	if c.IsBlank() {
		return keyElem{kind: elemMissing}
	}
	if d, ok := c.Decimal(); ok {
		return keyElem{kind: elemNumber, num: d}
	}
	return keyElem{kind: elemText, text: c.Str()}
}

func kindName(k elemKind) string {
	switch k {
	case elemNumber:
		return "number"
	case elemText:
		return "text"
	}
	return "missing"
}

// lessKeys compares two composite keys. Missing numbers sort last in both directions.
func lessKeys(a, b []keyElem, spec SortSpec) int {
	for i, k := range spec {
		x, y := a[i], b[i]
		switch {
		case x.kind == elemMissing && y.kind == elemMissing:
			continue
		case x.kind == elemMissing:
			return 1
		case y.kind == elemMissing:
			return -1
		}

		var c int
		if x.kind == elemNumber {
			c = x.num.Cmp(y.num)
		} else {
			c = strings.Compare(x.text, y.text)
		}
		if k.Direction == Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}
