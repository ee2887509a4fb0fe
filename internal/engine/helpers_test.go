package engine

import (
	"ordermacro/internal/workbook"
)

var testHeaders = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}

// newSheet builds a sheet from rows of raw values: nil, int, string or workbook.Cell
func newSheet(rows ...[]interface{}) *workbook.Sheet {
	s := workbook.NewSheet("자동화", testHeaders)
	for _, r := range rows {
		cells := make([]workbook.Cell, len(r))
		for i, v := range r {
			switch x := v.(type) {
			case nil:
				cells[i] = workbook.Empty()
			case int:
				cells[i] = workbook.Int(int64(x))
			case string:
				cells[i] = workbook.Text(x)
			case workbook.Cell:
				cells[i] = x
			}
		}
		s.AppendRow(cells)
	}
	return s
}

func column(s *workbook.Sheet, col string) []string {
	idx := workbook.MustCol(col)
	out := make([]string, 0, s.Len())
	for _, r := range s.Rows {
		out = append(out, r.Get(idx).String())
	}
	return out
}
