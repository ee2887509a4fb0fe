package engine

import (
	"github.com/shopspring/decimal"

	"ordermacro/internal/workbook"
)

// Derivation computes Target as the sum of Sources. Non-numeric sources count
// as 0; text is never parsed here.
type Derivation struct {
	Target  int
	Sources []int
	// KeepEmpty leaves rows whose target cell is absent untouched
	KeepEmpty bool
}

// SumOf builds a Derivation from column letters, e.g. SumOf("D", "O", "P", "V")
func SumOf(target string, sources ...string) Derivation {
	d := Derivation{Target: workbook.MustCol(target)}
	for _, s := range sources {
		d.Sources = append(d.Sources, workbook.MustCol(s))
	}
	return d
}

// Value returns the derived sum for one row
func (d Derivation) Value(row *workbook.Row) decimal.Decimal {
	sum := decimal.Zero
	for _, col := range d.Sources {
		sum = sum.Add(row.Get(col).DecimalOrZero())
	}
	return sum
}

// ApplyRow writes the derived value as a plain number with the General format
func (d Derivation) ApplyRow(row *workbook.Row) {
	if d.KeepEmpty && row.Get(d.Target).IsEmpty() {
		return
	}
	row.Set(d.Target, workbook.Number(d.Value(row)))
	row.Annotate(d.Target, workbook.Style{NumFmt: workbook.FormatGeneral})
}

// Apply runs ApplyRow over every data row of sheet
func (d Derivation) Apply(sheet *workbook.Sheet) {
	for _, row := range sheet.Rows {
		d.ApplyRow(row)
	}
}
