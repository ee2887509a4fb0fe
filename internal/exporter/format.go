package exporter

import (
	"strconv"
	"strings"

	"ordermacro/internal/workbook"
)

const rowNumberFormula = "=ROW()-1"

// formatCell renders a cell for CSV output. Row number formulas are written as
// the number they evaluate to; other formulas keep their text.
func formatCell(c workbook.Cell, rowNumber int) string {
	if c.IsFormula() && strings.EqualFold(strings.ReplaceAll(c.Str(), " ", ""), rowNumberFormula) {
		return strconv.Itoa(rowNumber)
	}
	return c.String()
}

func formatRow(row *workbook.Row, rowNumber int) []string {
	out := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		out[i] = formatCell(c, rowNumber)
	}
	return out
}

// sheetFileName builds "<base>_<sheet>.csv" with path separators in the sheet
// name replaced
func sheetFileName(base, sheet string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(sheet)
	return base + "_" + safe + ".csv"
}
