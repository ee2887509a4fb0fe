// Package lookup supplies the key/value table used to enrich order rows.
// The table normally travels inside the order workbook as "Sheet1"; it can also
// be read from a shared Google spreadsheet.
package lookup

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"ordermacro/internal/config"
	"ordermacro/internal/engine"
	apperrors "ordermacro/internal/errors"
	"ordermacro/internal/workbook"
)

// Source returns the lookup table for a loaded order document. ok is false
// when no table is available; the run then skips enrichment.
type Source interface {
	Table(ctx context.Context, doc *workbook.Document) (table engine.LookupTable, ok bool, err error)
}

// SheetSource reads the auxiliary sheet of the document itself
type SheetSource struct{}

// Table implements Source. The auxiliary sheet is removed from doc.
func (SheetSource) Table(ctx context.Context, doc *workbook.Document) (engine.LookupTable, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	table, ok := engine.TakeLookupTable(doc)
	return table, ok, nil
}

// GoogleSheetsSource reads a two column range (key, value) of a spreadsheet
type GoogleSheetsSource struct {
	service       *sheets.Service
	spreadsheetID string
	readRange     string
}

// NewGoogleSheetsSource creates the Sheets client. Extra client options are
// appended after the credentials option.
func NewGoogleSheetsSource(ctx context.Context, cfg config.LookupConfig, opts ...option.ClientOption) (*GoogleSheetsSource, error) {
	if cfg.SpreadsheetID == "" {
		return nil, apperrors.NewConfigError("lookup.spreadsheet_id is required for the google source", nil)
	}
	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	readRange := cfg.Range
	if readRange == "" {
		readRange = engine.LookupSheetName + "!A:B"
	}
	return &GoogleSheetsSource{service: service, spreadsheetID: cfg.SpreadsheetID, readRange: readRange}, nil
}

// Table implements Source. A stale auxiliary sheet in doc is dropped so it never reaches the output.
func (g *GoogleSheetsSource) Table(ctx context.Context, doc *workbook.Document) (engine.LookupTable, bool, error) {
	doc.RemoveSheet(engine.LookupSheetName)

	resp, err := g.service.Spreadsheets.Values.Get(g.spreadsheetID, g.readRange).Context(ctx).Do()
	if err != nil {
		return nil, false, apperrors.NewSourceNotFoundError(
			fmt.Sprintf("lookup range %s of spreadsheet %s", g.readRange, g.spreadsheetID), err)
	}
	table := tableFromValues(resp.Values)
	return table, true, nil
}

// tableFromValues mirrors engine.BuildLookupTable: the first row is the header,
// blank keys are skipped and later duplicates win.
func tableFromValues(values [][]interface{}) engine.LookupTable {
	table := make(engine.LookupTable, len(values))
	for i, row := range values {
		if i == 0 || len(row) == 0 {
			continue
		}
		key := workbook.ParseScalar(strings.TrimSpace(fmt.Sprint(row[0])))
		if key.IsBlank() {
			continue
		}
		value := ""
		if len(row) > 1 {
			value = strings.TrimSpace(fmt.Sprint(row[1]))
		}
		table[key.String()] = value
	}
	return table
}

// FromConfig picks the source named by cfg.Source
func FromConfig(ctx context.Context, cfg config.LookupConfig) (Source, error) {
	switch cfg.Source {
	case "", "sheet":
		return SheetSource{}, nil
	case "google":
		return NewGoogleSheetsSource(ctx, cfg)
	}
	return nil, apperrors.NewConfigError(fmt.Sprintf("unknown lookup source %q", cfg.Source), nil)
}
