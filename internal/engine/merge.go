package engine

import (
	"strings"

	"github.com/shopspring/decimal"

	"ordermacro/internal/workbook"
)

// Aggregation is the reduction applied to a column of a merged group
type Aggregation int

const (
	KeepFirst Aggregation = iota
	Sum
	Concat
)

// ColumnPolicy assigns an aggregation to one column
type ColumnPolicy struct {
	Column int
	Agg    Aggregation
}

// GroupKeyFunc returns the group key of a row. Rows returning ok=false are never merged.
type GroupKeyFunc func(row *workbook.Row) (key string, ok bool)

// ColumnsKey groups rows by the string form of the given columns
func ColumnsKey(cols ...int) GroupKeyFunc {
	return func(row *workbook.Row) (string, bool) {
		parts := make([]string, len(cols))
		blank := true
		for i, c := range cols {
			parts[i] = strings.TrimSpace(row.Get(c).String())
			if parts[i] != "" {
				blank = false
			}
		}
		return strings.Join(parts, "|"), !blank
	}
}

// MergeSpec configures a group-by merge
type MergeSpec struct {
	Key       GroupKeyFunc
	Columns   []ColumnPolicy
	Separator string
	// Resolve computes the numeric value of formula cells in Sum columns
	Resolve map[int]Derivation
	// Clean normalizes label fragments before concatenation
	Clean func(string) string
}

// MergeResult reports what a merge changed
type MergeResult struct {
	Groups  int
	Deleted []int
}

// Merge collapses rows sharing a group key into the first member, the
// survivor. Sum columns are totalled, Concat columns joined with Separator,
// and the other members are deleted highest index first.
func Merge(sheet *workbook.Sheet, spec MergeSpec) (MergeResult, error) {
	sep := spec.Separator
	if sep == "" {
		sep = " + "
	}

	var order []string
	groups := make(map[string][]int)
	for i, row := range sheet.Rows {
		key, ok := spec.Key(row)
		if !ok {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	var result MergeResult
	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		result.Groups++
		survivor := sheet.Row(members[0])

		for _, policy := range spec.Columns {
			switch policy.Agg {
			case Sum:
				total := decimal.Zero
				for _, idx := range members {
					total = total.Add(spec.numeric(sheet.Row(idx), policy.Column))
				}
				survivor.Set(policy.Column, workbook.Number(total))
			case Concat:
				survivor.Set(policy.Column, workbook.Text(spec.concat(sheet, members, policy.Column, sep)))
			}
		}
		result.Deleted = append(result.Deleted, members[1:]...)
	}

	if err := sheet.DeleteRows(result.Deleted); err != nil {
		return result, err
	}
	return result, nil
}

func (spec MergeSpec) numeric(row *workbook.Row, col int) decimal.Decimal {
	c := row.Get(col)
	if c.IsFormula() {
		if d, ok := spec.Resolve[col]; ok {
			return d.Value(row)
		}
		return decimal.Zero
	}
	return c.DecimalOrZero()
}

func (spec MergeSpec) concat(sheet *workbook.Sheet, members []int, col int, sep string) string {
	var parts []string
	seen := make(map[string]bool)
	for _, idx := range members {
		text := strings.TrimSpace(sheet.Row(idx).Get(col).String())
		if spec.Clean != nil {
			text = strings.TrimSpace(spec.Clean(text))
		}
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		parts = append(parts, text)
	}
	return strings.Join(parts, sep)
}
