package workbook

import (
	"fmt"

	apperrors "ordermacro/internal/errors"
)

// Document is an in-memory workbook. Sheet order is preserved on save.
type Document struct {
	Path   string
	sheets []*Sheet
}

// NewDocument creates an empty document remembering its source path
func NewDocument(path string) *Document {
	return &Document{Path: path}
}

// Sheets returns the sheets in workbook order
func (d *Document) Sheets() []*Sheet {
	out := make([]*Sheet, len(d.sheets))
	copy(out, d.sheets)
	return out
}

// SheetNames returns the sheet names in workbook order
func (d *Document) SheetNames() []string {
	names := make([]string, len(d.sheets))
	for i, s := range d.sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet looks a sheet up by name
func (d *Document) Sheet(name string) (*Sheet, bool) {
	for _, s := range d.sheets {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// DataSheet returns the named sheet, or the first sheet when name is empty
func (d *Document) DataSheet(name string) (*Sheet, error) {
	if name == "" {
		if len(d.sheets) == 0 {
			return nil, apperrors.NewSourceNotFoundError(fmt.Sprintf("data sheet in %s", d.Path), nil)
		}
		return d.sheets[0], nil
	}
	if s, ok := d.Sheet(name); ok {
		return s, nil
	}
	return nil, apperrors.NewSourceNotFoundError(fmt.Sprintf("sheet %q", name), nil)
}

// AddSheet appends a sheet. Names must be unique.
func (d *Document) AddSheet(s *Sheet) error {
	return d.InsertSheet(len(d.sheets), s)
}

// InsertSheet places a sheet at index, clamped to the valid range
func (d *Document) InsertSheet(index int, s *Sheet) error {
	if _, exists := d.Sheet(s.Name); exists {
		return fmt.Errorf("sheet %q already exists", s.Name)
	}
	if index < 0 {
		index = 0
	}
	if index > len(d.sheets) {
		index = len(d.sheets)
	}
	d.sheets = append(d.sheets, nil)
	copy(d.sheets[index+1:], d.sheets[index:])
	d.sheets[index] = s
	return nil
}

// EnsureSheet returns the named sheet, creating it from template's layout if absent
func (d *Document) EnsureSheet(name string, template *Sheet) *Sheet {
	if s, ok := d.Sheet(name); ok {
		return s
	}
	s := template.CloneEmpty(name)
	d.sheets = append(d.sheets, s)
	return s
}

// RemoveSheet deletes the named sheet and reports whether it existed
func (d *Document) RemoveSheet(name string) bool {
	for i, s := range d.sheets {
		if s.Name == name {
			d.sheets = append(d.sheets[:i], d.sheets[i+1:]...)
			return true
		}
	}
	return false
}

// RenameSheet renames a sheet in place
func (d *Document) RenameSheet(from, to string) error {
	if from == to {
		return nil
	}
	s, ok := d.Sheet(from)
	if !ok {
		return apperrors.NewSourceNotFoundError(fmt.Sprintf("sheet %q", from), nil)
	}
	if _, exists := d.Sheet(to); exists {
		return fmt.Errorf("sheet %q already exists", to)
	}
	s.Name = to
	return nil
}
