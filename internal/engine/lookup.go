package engine

import (
	"strings"

	"ordermacro/internal/workbook"
)

// LookupSheetName is the auxiliary sheet marketplaces attach for lookups
const LookupSheetName = "Sheet1"

// LookupTable maps the string form of a key to the string form of its value
type LookupTable map[string]string

// BuildLookupTable reads column A as keys and column B as values. Rows with a
// blank key are skipped; later duplicates win.
func BuildLookupTable(sheet *workbook.Sheet) LookupTable {
	table := make(LookupTable, sheet.Len())
	for _, row := range sheet.Rows {
		key := row.Get(0)
		if key.IsBlank() {
			continue
		}
		table[key.String()] = row.Get(1).String()
	}
	return table
}

// TakeLookupTable builds the table from the auxiliary sheet and removes that
// sheet from the document. ok is false when the document has no such sheet.
func TakeLookupTable(doc *workbook.Document) (LookupTable, bool) {
	sheet, found := doc.Sheet(LookupSheetName)
	if !found {
		return nil, false
	}
	table := BuildLookupTable(sheet)
	doc.RemoveSheet(LookupSheetName)
	return table, true
}

// MissPolicy decides what a missing key writes
type MissPolicy int

const (
	// MissKeep leaves the target unchanged
	MissKeep MissPolicy = iota
	// MissDefault writes Enrichment.Default
	MissDefault
)

// Enrichment writes table[key] into Target for every row as text. Numeric
// targets are coerced by the caller afterwards.
type Enrichment struct {
	Key     int
	Target  int
	OnMiss  MissPolicy
	Default workbook.Cell
}

// Apply enriches sheet and returns the keys that were not found
func (e Enrichment) Apply(sheet *workbook.Sheet, table LookupTable) []string {
	var misses []string
	for _, row := range sheet.Rows {
		key := row.Get(e.Key).String()
		if v, ok := table[key]; ok && strings.TrimSpace(v) != "" {
			row.Set(e.Target, workbook.Text(v))
			continue
		}
		misses = append(misses, key)
		if e.OnMiss == MissDefault {
			row.Set(e.Target, e.Default)
		}
	}
	return misses
}
