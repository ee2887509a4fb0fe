package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"ordermacro/internal/config"
	"ordermacro/internal/operations"
	"ordermacro/internal/workbook"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// writeOrders saves a zigzag export with a lookup sheet to dir/name
func writeOrders(t *testing.T, dir, name string) string {
	t.Helper()
	headers := make([]string, 27)
	for i := range headers {
		headers[i] = workbook.Letter(i)
	}
	orders := workbook.NewSheet("주문", headers)
	add := func(vals map[string]workbook.Cell) {
		cells := make([]workbook.Cell, len(headers))
		for letter, c := range vals {
			cells[workbook.MustCol(letter)] = c
		}
		orders.AppendRow(cells)
	}
	add(map[string]workbook.Cell{"B": workbook.Text("[오케이마트] 지그재그"), "C": workbook.Text("상품B"), "E": workbook.Int(2), "M": workbook.Text("P1"), "U": workbook.Int(10000)})
	add(map[string]workbook.Cell{"B": workbook.Text("[아이예스] 지그재그"), "C": workbook.Text("상품A"), "E": workbook.Int(1), "M": workbook.Text("P2"), "U": workbook.Int(5000)})
	add(map[string]workbook.Cell{"B": workbook.Text("[오케이마트] 지그재그"), "C": workbook.Text("상품A"), "E": workbook.Int(3), "M": workbook.Text("P1"), "U": workbook.Int(7000)})

	table := workbook.NewSheet("Sheet1", []string{"key", "value"})
	table.AppendRow([]workbook.Cell{workbook.Text("P1"), workbook.Int(3000)})
	table.AppendRow([]workbook.Cell{workbook.Text("P2"), workbook.Int(2500)})

	path := filepath.Join(dir, name)
	doc := workbook.NewDocument(path)
	require.NoError(t, doc.AddSheet(orders))
	require.NoError(t, doc.AddSheet(table))
	require.NoError(t, workbook.Save(doc, path))
	return path
}

func newTestService(t *testing.T, opts ...ServiceOption) (*MacroService, *operations.MemoryRunStore, *config.Paths) {
	t.Helper()
	root := t.TempDir()
	paths := config.ResolvePaths(config.PathsConfig{
		OutputDir:    "out",
		HappojangDir: "happojang",
		UploadDir:    "uploads",
	}, root)
	require.NoError(t, paths.EnsureDirectories())

	manager := operations.NewManager(nil, nil, operations.WithLogger(discardLogger))
	t.Cleanup(manager.Close)

	runs := operations.NewMemoryRunStore()
	opts = append([]ServiceOption{WithPaths(paths), WithLogger(discardLogger)}, opts...)
	return NewMacroService(manager, runs, opts...), runs, paths
}

// countingExporter records which outputs were exported
type countingExporter struct {
	mu    sync.Mutex
	paths []string
}

func (e *countingExporter) Export(ctx context.Context, doc *workbook.Document, outputPath string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paths = append(e.paths, outputPath)
	return []string{outputPath + ".csv"}, nil
}
