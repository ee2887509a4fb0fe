package engine

import (
	"strings"

	"ordermacro/internal/rules"
	"ordermacro/internal/workbook"
)

// Classifier picks the destination sheet of a row, if any
type Classifier func(row *workbook.Row) (sheet string, ok bool)

// ByAccountTag maps the leading "[tag]" of col through accounts (tag -> sheet)
func ByAccountTag(col int, accounts map[string]string) Classifier {
	return byTag(col, accounts, rules.AccountTag)
}

// ByBracketTag maps the first "[tag]" anywhere in col through accounts
func ByBracketTag(col int, accounts map[string]string) Classifier {
	return byTag(col, accounts, rules.BracketTag)
}

func byTag(col int, accounts map[string]string, extract func(string) string) Classifier {
	return func(row *workbook.Row) (string, bool) {
		tag := extract(row.Get(col).String())
		if tag == "" {
			return "", false
		}
		sheet, ok := accounts[tag]
		return sheet, ok
	}
}

// SubstringRule sends rows whose column text contains Needle to Sheet
type SubstringRule struct {
	Needle string
	Sheet  string
}

// BySubstring applies the first matching rule
func BySubstring(col int, rulesInOrder ...SubstringRule) Classifier {
	return func(row *workbook.Row) (string, bool) {
		text := rules.Normalize(row.Get(col).String())
		for _, r := range rulesInOrder {
			if strings.Contains(text, rules.Normalize(r.Needle)) {
				return r.Sheet, true
			}
		}
		return "", false
	}
}

// Partition copies rows of a source sheet into per-account sheets
type Partition struct {
	Classify Classifier
	// Sheets lists destinations in output order
	Sheets []string
	// CreateEmpty creates every destination even when no row maps to it
	CreateEmpty bool
	// RowNumberColumn is renumbered 1..n in each destination, -1 to skip
	RowNumberColumn int
}

// Apply distributes source rows and returns the row count per created sheet.
// Existing sheets with a destination name are replaced.
func (p Partition) Apply(doc *workbook.Document, source *workbook.Sheet) (map[string]int, error) {
	buckets := make(map[string][]*workbook.Row, len(p.Sheets))
	wanted := make(map[string]bool, len(p.Sheets))
	for _, name := range p.Sheets {
		wanted[name] = true
	}

	for _, row := range source.Rows {
		name, ok := p.Classify(row)
		if !ok || !wanted[name] {
			continue
		}
		buckets[name] = append(buckets[name], row)
	}

	counts := make(map[string]int)
	for _, name := range p.Sheets {
		rows := buckets[name]
		if len(rows) == 0 && !p.CreateEmpty {
			continue
		}
		if name == source.Name {
			continue
		}
		doc.RemoveSheet(name)
		dest := source.CloneEmpty(name)
		for i, r := range rows {
			copied := dest.AppendClone(r)
			if p.RowNumberColumn >= 0 {
				copied.Set(p.RowNumberColumn, workbook.Int(int64(i+1)))
			}
		}
		if err := doc.AddSheet(dest); err != nil {
			return counts, err
		}
		counts[name] = len(rows)
	}
	return counts, nil
}

// RowNumbers writes 1..n into col
func RowNumbers(sheet *workbook.Sheet, col int) {
	for i, row := range sheet.Rows {
		row.Set(col, workbook.Int(int64(i+1)))
	}
}

// RowFormulas writes =ROW()-1 into col
func RowFormulas(sheet *workbook.Sheet, col int) {
	for _, row := range sheet.Rows {
		row.Set(col, workbook.Formula("ROW()-1"))
	}
}
