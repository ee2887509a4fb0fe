package workbook

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	apperrors "ordermacro/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadCSV reads a marketplace CSV export into a single-sheet document.
// UTF-8 (with or without BOM) is detected first; anything else is decoded as EUC-KR.
func LoadCSV(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewSourceNotFoundError(path, err)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("read %s", path), err)
	}

	var reader io.Reader
	switch {
	case bytes.HasPrefix(data, utf8BOM):
		reader = bytes.NewReader(data[len(utf8BOM):])
	case utf8.Valid(data):
		reader = bytes.NewReader(data)
	default:
		reader = transform.NewReader(bytes.NewReader(data), korean.EUCKR.NewDecoder())
	}

	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("parse %s", path), err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewSourceNotFoundError(fmt.Sprintf("header row in %s", path), nil)
	}

	width := 0
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}
	headers := make([]string, width)
	copy(headers, records[0])

	sheet := NewSheet(csvSheetName(path), headers)
	for _, rec := range records[1:] {
		cells := make([]Cell, width)
		for i, v := range rec {
			cells[i] = ParseScalar(v)
		}
		sheet.AppendRow(cells)
	}

	doc := NewDocument(path)
	if err := doc.AddSheet(sheet); err != nil {
		return nil, err
	}
	return doc, nil
}

// csvSheetName derives a sheet name from the file stem, within the 31 character limit
func csvSheetName(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if stem == "" || stem == "Sheet1" {
		return "orders"
	}
	runes := []rune(stem)
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}
