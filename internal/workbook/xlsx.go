package workbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "ordermacro/internal/errors"
)

// LoadXLSX reads every sheet of an .xlsx/.xlsm file. Row 1 of each sheet is
// its header. Formula cells are loaded as "=..." strings.
func LoadXLSX(path string) (*Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewSourceNotFoundError(path, err)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("open %s", path), err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, apperrors.NewSourceNotFoundError(fmt.Sprintf("sheets in %s", path), nil)
	}

	doc := NewDocument(path)
	for _, name := range names {
		sheet, err := readSheet(f, name)
		if err != nil {
			return nil, err
		}
		if err := doc.AddSheet(sheet); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func readSheet(f *excelize.File, name string) (*Sheet, error) {
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("read sheet %q", name), err)
	}

	width := 0
	for _, r := range raw {
		if len(r) > width {
			width = len(r)
		}
	}
	var headers []string
	if len(raw) > 0 {
		headers = make([]string, width)
		copy(headers, raw[0])
	}

	sheet := NewSheet(name, headers)
	for col := 0; col < width; col++ {
		if w, err := f.GetColWidth(name, Letter(col)); err == nil {
			sheet.ColumnWidths[col] = w
		}
	}

	for i := 1; i < len(raw); i++ {
		cells := make([]Cell, width)
		for col := 0; col < width; col++ {
			v := ""
			if col < len(raw[i]) {
				v = raw[i][col]
			}
			cells[col] = readCell(f, name, CellRef(col, i+1), v)
		}
		sheet.AppendRow(cells)
	}
	return sheet, nil
}

func readCell(f *excelize.File, sheet, ref, raw string) Cell {
	if formula, err := f.GetCellFormula(sheet, ref); err == nil && formula != "" {
		return Formula(formula)
	}
	parsed := ParseScalar(raw)
	if !parsed.IsNumeric() {
		return parsed
	}
	// numbers typed in as text keep their string form
	typ, err := f.GetCellType(sheet, ref)
	if err == nil && (typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString) {
		return Text(raw)
	}
	return parsed
}

// Save writes doc to path as .xlsx. The file is written next to its final
// location and renamed into place, so a failed save leaves no partial output.
func Save(doc *Document, path string) error {
	sheets := doc.Sheets()
	if len(sheets) == 0 {
		return apperrors.NewStorageError("document has no sheets", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("create output directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	w := &xlsxWriter{file: f, styles: make(map[Style]int)}
	for i, sheet := range sheets {
		if i == 0 {
			if sheet.Name != "Sheet1" {
				if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
					return apperrors.NewStorageError(fmt.Sprintf("name sheet %q", sheet.Name), err)
				}
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("create sheet %q", sheet.Name), err)
		}
		if err := w.writeSheet(sheet); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	tmp := strings.TrimSuffix(path, filepath.Ext(path)) + ".partial.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		os.Remove(tmp)
		return apperrors.NewStorageError(fmt.Sprintf("save %s", path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return apperrors.NewStorageError(fmt.Sprintf("commit %s", path), err)
	}
	return nil
}

type xlsxWriter struct {
	file   *excelize.File
	styles map[Style]int
}

func (w *xlsxWriter) writeSheet(s *Sheet) error {
	name := s.Name
	headers := s.Headers()
	for col, h := range headers {
		ref := CellRef(col, 1)
		if err := w.file.SetCellStr(name, ref, h); err != nil {
			return apperrors.NewStorageError("write header", err)
		}
		if err := w.applyStyle(name, ref, s.HeaderStyle); err != nil {
			return err
		}
	}

	for i, row := range s.Rows {
		for col, cell := range row.Cells {
			ref := CellRef(col, i+2)
			if err := w.writeCell(name, ref, cell); err != nil {
				return apperrors.NewStorageError(fmt.Sprintf("write %s!%s", name, ref), err)
			}
			if err := w.applyStyle(name, ref, row.Styles[col]); err != nil {
				return err
			}
		}
	}

	for col, width := range s.ColumnWidths {
		letter := Letter(col)
		if err := w.file.SetColWidth(name, letter, letter, width); err != nil {
			return apperrors.NewStorageError("set column width", err)
		}
	}
	return nil
}

func (w *xlsxWriter) writeCell(sheet, ref string, c Cell) error {
	switch {
	case c.IsEmpty():
		return nil
	case c.IsFormula():
		return w.file.SetCellFormula(sheet, ref, strings.TrimPrefix(c.Str(), "="))
	case c.IsText():
		return w.file.SetCellStr(sheet, ref, c.Str())
	default:
		return w.file.SetCellValue(sheet, ref, c.Value())
	}
}

func (w *xlsxWriter) applyStyle(sheet, ref string, s Style) error {
	if s.IsZero() {
		return nil
	}
	id, ok := w.styles[s]
	if !ok {
		var err error
		id, err = w.file.NewStyle(toExcelizeStyle(s))
		if err != nil {
			return apperrors.NewStorageError("create style", err)
		}
		w.styles[s] = id
	}
	if err := w.file.SetCellStyle(sheet, ref, ref, id); err != nil {
		return apperrors.NewStorageError("apply style", err)
	}
	return nil
}

func toExcelizeStyle(s Style) *excelize.Style {
	out := &excelize.Style{}
	if s.FontName != "" || s.FontSize != 0 || s.FontColor != "" || s.Bold {
		out.Font = &excelize.Font{
			Family: s.FontName,
			Size:   s.FontSize,
			Bold:   s.Bold,
		}
		if s.FontColor != "" {
			out.Font.Color = "#" + s.FontColor
		}
	}
	if s.Fill != "" {
		out.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#" + s.Fill}}
	}
	if s.Align != "" {
		out.Alignment = &excelize.Alignment{Horizontal: s.Align}
	}
	switch s.NumFmt {
	case "", FormatGeneral:
	case FormatText:
		out.NumFmt = 49
	case FormatInteger:
		out.NumFmt = 1
	default:
		custom := s.NumFmt
		out.CustomNumFmt = &custom
	}
	return out
}
