package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Col converts a column letter such as "D" or "AA" into a 0-based index
func Col(letter string) (int, error) {
	n, err := excelize.ColumnNameToNumber(letter)
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}

// MustCol is Col for compile-time column constants
func MustCol(letter string) int {
	idx, err := Col(letter)
	if err != nil {
		panic(fmt.Sprintf("workbook: bad column %q: %v", letter, err))
	}
	return idx
}

// Letter converts a 0-based column index back into its letter
func Letter(idx int) string {
	name, err := excelize.ColumnNumberToName(idx + 1)
	if err != nil {
		return ""
	}
	return name
}

// CellRef returns the A1 reference of a 0-based column and a 1-based sheet row
func CellRef(col, row int) string {
	ref, _ := excelize.CoordinatesToCellName(col+1, row)
	return ref
}
