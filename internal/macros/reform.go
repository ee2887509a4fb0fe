package macros

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"ordermacro/internal/workbook"
)

// ReformSuffix is appended to the base name of a reformed export
const ReformSuffix = "_reformed"

var (
	reformMoneyColumns = []int{colH, colI, colL, colN}
	addressReplacer    = strings.NewReplacer("대한민국、", "", "、", " ")
	currencyReplacer   = strings.NewReplacer("₩", "", ",", "")
)

// Reform rewrites a raw AliExpress export into the layout the ali macros
// expect: amounts become plain numbers, addresses lose the country prefix and
// every quantity in W is 1.
func Reform(sheet *workbook.Sheet) {
	for _, row := range sheet.Rows {
		for _, col := range reformMoneyColumns {
			row.Set(col, plainAmount(row.Get(col)))
			row.Annotate(col, workbook.Style{NumFmt: workbook.FormatGeneral})
		}
		if addr := row.Get(colU); !addr.IsEmpty() {
			row.Set(colU, workbook.Text(addressReplacer.Replace(addr.String())))
		}
		row.Set(colW, workbook.Int(1))
		row.Annotate(colW, workbook.Style{NumFmt: workbook.FormatGeneral})
	}
}

func plainAmount(c workbook.Cell) workbook.Cell {
	if !c.IsText() {
		return c
	}
	s := currencyReplacer.Replace(c.Str())
	parsed := workbook.ParseScalar(strings.TrimSpace(s))
	if parsed.IsNumeric() {
		return parsed
	}
	return workbook.Text(s)
}

// ReformedPath returns where the reformed copy of input is written. CSV
// inputs are saved as xlsx.
func ReformedPath(input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	if !strings.EqualFold(ext, ".xlsx") && !strings.EqualFold(ext, ".xlsm") {
		ext = ".xlsx"
	}
	return base + ReformSuffix + ext
}

// Reformer runs Reform against files
type Reformer struct {
	store  Store
	logger *slog.Logger
}

// NewReformer creates a Reformer. A nil store reads and writes the filesystem.
func NewReformer(store Store, logger *slog.Logger) *Reformer {
	if store == nil {
		store = workbook.FileStore{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reformer{store: store, logger: logger}
}

// Run reforms the data sheet of input and returns the saved path
func (r *Reformer) Run(ctx context.Context, input string) (string, error) {
	doc, err := r.store.Load(ctx, input)
	if err != nil {
		return "", err
	}
	sheet, err := doc.DataSheet("")
	if err != nil {
		return "", err
	}
	Reform(sheet)

	path, err := r.store.Save(ctx, doc, ReformedPath(input))
	if err != nil {
		return "", err
	}
	r.logger.Info("reform_completed",
		slog.String("input", input),
		slog.String("output", path),
		slog.Int("rows", sheet.Len()))
	return path, nil
}
