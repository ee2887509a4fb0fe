package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "ordermacro/internal/errors"
	"ordermacro/internal/workbook"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to filePath, replacing any existing file
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	w.logger.Debug("csv_write",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), ".export-*.csv")
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeRecords(tmp, options); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return os.Rename(tmp.Name(), filePath)
}

func writeRecords(f *os.File, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := f.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(f)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// SheetExporter writes each sheet of a document as its own CSV file
type SheetExporter struct {
	writer *CSVWriter
}

// NewSheetExporter creates a SheetExporter
func NewSheetExporter(logger *slog.Logger) *SheetExporter {
	return &SheetExporter{writer: NewCSVWriter(logger)}
}

// Export writes "<base>_<sheet>.csv" next to outputPath for every sheet and
// returns the written paths in sheet order
func (e *SheetExporter) Export(ctx context.Context, doc *workbook.Document, outputPath string) ([]string, error) {
	base := strings.TrimSuffix(outputPath, filepath.Ext(outputPath))
	files := make([]string, 0, len(doc.Sheets()))

	for _, sheet := range doc.Sheets() {
		if err := ctx.Err(); err != nil {
			return files, err
		}
		records := make([][]string, 0, sheet.Len())
		for i, row := range sheet.Rows {
			records = append(records, formatRow(row, i+1))
		}
		path := sheetFileName(base, sheet.Name)
		err := e.writer.WriteCSV(path, WriteOptions{
			Headers:   sheet.Headers(),
			Records:   records,
			BOMPrefix: true,
		})
		if err != nil {
			return files, apperrors.NewStorageError("export sheet "+sheet.Name, err)
		}
		files = append(files, path)
	}

	e.writer.logger.Info("csv_export_completed",
		slog.String("output", outputPath),
		slog.Int("files", len(files)))
	return files, nil
}
