package macros

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"ordermacro/internal/operations"
	"ordermacro/internal/workbook"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func orderHeaders() []string {
	headers := make([]string, colAA+1)
	for i := range headers {
		headers[i] = workbook.Letter(i)
	}
	return headers
}

func cellOf(v interface{}) workbook.Cell {
	switch x := v.(type) {
	case nil:
		return workbook.Empty()
	case int:
		return workbook.Int(int64(x))
	case string:
		return workbook.Text(x)
	case workbook.Cell:
		return x
	}
	panic("unsupported fixture value")
}

// orderSheet builds a data sheet from rows keyed by column letter
func orderSheet(name string, rows ...map[string]interface{}) *workbook.Sheet {
	s := workbook.NewSheet(name, orderHeaders())
	for _, r := range rows {
		cells := make([]workbook.Cell, s.Width())
		for letter, v := range r {
			cells[workbook.MustCol(letter)] = cellOf(v)
		}
		s.AppendRow(cells)
	}
	return s
}

func lookupSheet(pairs ...[2]interface{}) *workbook.Sheet {
	s := workbook.NewSheet("Sheet1", []string{"key", "value"})
	for _, p := range pairs {
		s.AppendRow([]workbook.Cell{cellOf(p[0]), cellOf(p[1])})
	}
	return s
}

// newTestJob wraps sheet in a document named as an automation run would see it
func newTestJob(m Macro, sheet *workbook.Sheet) *Job {
	doc := workbook.NewDocument("orders.xlsx")
	sheet.Name = AutomationSheet
	_ = doc.AddSheet(sheet)
	return newJob(m.Profile(), "orders.xlsx", doc, sheet, operations.NewOperationState("test"), discardLogger)
}

func values(s *workbook.Sheet, col int) []string {
	out := make([]string, 0, s.Len())
	for _, r := range s.Rows {
		out = append(out, r.Get(col).String())
	}
	return out
}

// memStore keeps documents in memory keyed by path
type memStore struct {
	mu    sync.Mutex
	docs  map[string]*workbook.Document
	saved map[string]*workbook.Document
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]*workbook.Document), saved: make(map[string]*workbook.Document)}
}

func (m *memStore) put(path string, sheets ...*workbook.Sheet) {
	doc := workbook.NewDocument(path)
	for _, s := range sheets {
		_ = doc.AddSheet(s)
	}
	m.mu.Lock()
	m.docs[path] = doc
	m.mu.Unlock()
}

func (m *memStore) Load(ctx context.Context, path string) (*workbook.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[path]
	if !ok {
		return workbook.Load(path)
	}
	return doc, nil
}

func (m *memStore) Save(ctx context.Context, doc *workbook.Document, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[path] = doc
	return path, nil
}

func (m *memStore) get(path string) *workbook.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[path]
}
