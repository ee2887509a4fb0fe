package workbook

import (
	"sort"

	apperrors "ordermacro/internal/errors"
)

// Row is one data row. Cells always match the sheet header width.
type Row struct {
	Cells  []Cell
	Styles map[int]Style
}

// Get returns the cell at col, or an empty cell when col is out of range
func (r *Row) Get(col int) Cell {
	if col < 0 || col >= len(r.Cells) {
		return Empty()
	}
	return r.Cells[col]
}

// Set writes the cell at col. Writes outside the header width are ignored.
func (r *Row) Set(col int, c Cell) {
	if col < 0 || col >= len(r.Cells) {
		return
	}
	r.Cells[col] = c
}

// Annotate merges s into the style annotation of col
func (r *Row) Annotate(col int, s Style) {
	if col < 0 || col >= len(r.Cells) || s.IsZero() {
		return
	}
	if r.Styles == nil {
		r.Styles = make(map[int]Style)
	}
	r.Styles[col] = r.Styles[col].Merge(s)
}

// StyleAt returns the annotation for col
func (r *Row) StyleAt(col int) Style {
	return r.Styles[col]
}

// Clone deep copies the row
func (r *Row) Clone() *Row {
	out := &Row{Cells: make([]Cell, len(r.Cells))}
	copy(out.Cells, r.Cells)
	if len(r.Styles) > 0 {
		out.Styles = make(map[int]Style, len(r.Styles))
		for k, v := range r.Styles {
			out.Styles[k] = v
		}
	}
	return out
}

// Sheet is a named table with an immutable header
type Sheet struct {
	Name         string
	headers      []string
	Rows         []*Row
	ColumnWidths map[int]float64
	HeaderStyle  Style
}

// NewSheet creates an empty sheet with the given headers
func NewSheet(name string, headers []string) *Sheet {
	h := make([]string, len(headers))
	copy(h, headers)
	return &Sheet{
		Name:         name,
		headers:      h,
		ColumnWidths: make(map[int]float64),
	}
}

// Headers returns a copy of the header row
func (s *Sheet) Headers() []string {
	out := make([]string, len(s.headers))
	copy(out, s.headers)
	return out
}

// Width is the number of columns
func (s *Sheet) Width() int { return len(s.headers) }

// Len is the number of data rows
func (s *Sheet) Len() int { return len(s.Rows) }

// Row returns the data row at a 0-based index
func (s *Sheet) Row(i int) *Row { return s.Rows[i] }

// AppendRow adds a row, padding or truncating cells to the header width
func (s *Sheet) AppendRow(cells []Cell) *Row {
	row := &Row{Cells: make([]Cell, len(s.headers))}
	copy(row.Cells, cells)
	s.Rows = append(s.Rows, row)
	return row
}

// AppendClone adds a deep copy of r
func (s *Sheet) AppendClone(r *Row) *Row {
	row := r.Clone()
	if len(row.Cells) != len(s.headers) {
		cells := make([]Cell, len(s.headers))
		copy(cells, row.Cells)
		row.Cells = cells
	}
	s.Rows = append(s.Rows, row)
	return row
}

// Reorder replaces the row order. order[i] is the old index of the new row i.
func (s *Sheet) Reorder(order []int) {
	rows := make([]*Row, len(order))
	for i, old := range order {
		rows[i] = s.Rows[old]
	}
	s.Rows = rows
}

// DeleteRows removes the rows at the given 0-based indices. Indices are applied
// highest first so that earlier deletions never shift later ones.
func (s *Sheet) DeleteRows(indices []int) error {
	ordered := make([]int, len(indices))
	copy(ordered, indices)
	sort.Sort(sort.Reverse(sort.IntSlice(ordered)))
	return s.deleteDescending(ordered)
}

// deleteDescending requires strictly descending, in-range indices
func (s *Sheet) deleteDescending(indices []int) error {
	prev := len(s.Rows)
	for _, idx := range indices {
		if idx < 0 || idx >= prev {
			return apperrors.NewDeletionIndexError(idx, prev)
		}
		prev = idx
	}
	for _, idx := range indices {
		s.Rows = append(s.Rows[:idx], s.Rows[idx+1:]...)
	}
	return nil
}

// CloneEmpty creates a sheet with the same headers, widths and header style
func (s *Sheet) CloneEmpty(name string) *Sheet {
	out := NewSheet(name, s.headers)
	for k, v := range s.ColumnWidths {
		out.ColumnWidths[k] = v
	}
	out.HeaderStyle = s.HeaderStyle
	return out
}

// Clone deep copies the sheet under a new name
func (s *Sheet) Clone(name string) *Sheet {
	out := s.CloneEmpty(name)
	out.Rows = make([]*Row, 0, len(s.Rows))
	for _, r := range s.Rows {
		out.Rows = append(out.Rows, r.Clone())
	}
	return out
}
