package macros

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermacro/internal/config"
	apperrors "ordermacro/internal/errors"
	"ordermacro/internal/exporter"
	"ordermacro/internal/operations"
	"ordermacro/internal/workbook"
	"ordermacro/pkg/contracts/domain"
)

func zigzagOrders() *workbook.Sheet {
	return orderSheet("주문",
		map[string]interface{}{"B": "[오케이마트] 지그재그", "C": "상품B", "D": 0, "E": 2, "M": "P1", "U": 10000},
		map[string]interface{}{"B": "[아이예스] 지그재그", "C": "상품A", "D": 0, "E": "1", "M": "P2", "U": 5000},
		map[string]interface{}{"B": "[오케이마트] 지그재그", "C": "상품A", "D": 0, "E": "3", "M": "P1", "U": 7000},
	)
}

func runPipeline(t *testing.T, p *Pipeline, input string) (*operations.OperationState, error) {
	t.Helper()
	m := operations.NewManager(nil, nil, operations.WithLogger(discardLogger))
	t.Cleanup(m.Close)
	return m.Execute(context.Background(), p.Request("", input), p.Registry())
}

func TestPipeline_ErpZigzagEndToEnd(t *testing.T) {
	store := newMemStore()
	store.put("in/orders.xlsx", zigzagOrders(), lookupSheet([2]interface{}{"P1", 3000}, [2]interface{}{"P2", 2500}))

	m, err := Lookup(domain.ModeERP, domain.ChannelZigzag)
	require.NoError(t, err)
	p := NewPipeline(m, WithStore(store), WithLogger(discardLogger))

	state, err := runPipeline(t, p, "in/orders.xlsx")
	require.NoError(t, err)
	assert.Equal(t, operations.OperationStatusCompleted, state.GetStatus())

	out := OutcomeOf(state)
	assert.Equal(t, "in/orders_매크로_완료.xlsx", out.OutputPath)
	assert.Equal(t, 3, out.Rows)
	assert.Equal(t, []domain.SheetSummary{
		{Name: AutomationSheet, Rows: 3},
		{Name: "OK", Rows: 2},
		{Name: "IY", Rows: 1},
	}, out.Sheets)

	doc := store.get(out.OutputPath)
	require.NotNil(t, doc)
	_, hasLookup := doc.Sheet("Sheet1")
	assert.False(t, hasLookup)

	auto, _ := doc.Sheet(AutomationSheet)
	assert.Equal(t, []string{"1", "3", "2"}, values(auto, colE))
	assert.Equal(t, []string{"7500", "10000", "13000"}, values(auto, colD))
	assert.True(t, auto.Row(0).Get(colA).IsFormula())
	assert.Equal(t, fillHeader, auto.HeaderStyle.Fill)

	ok, _ := doc.Sheet("OK")
	assert.Equal(t, []string{"3", "2"}, values(ok, colE))
	assert.Equal(t, []string{"10000", "13000"}, values(ok, colD))
	assert.Equal(t, []string{"1", "2"}, values(ok, colA))
}

func TestPipeline_BundleBrandiWritesToHappojangDir(t *testing.T) {
	store := newMemStore()
	store.put("in/brandi.xlsx", orderSheet("주문",
		map[string]interface{}{"C": "A", "J": "X", "O": 100},
		map[string]interface{}{"C": "A", "J": "X", "O": 200},
	))

	m, err := Lookup(domain.ModeBundle, domain.ChannelBrandi)
	require.NoError(t, err)
	paths := &config.Paths{OutputDir: "out", HappojangDir: "out/happojang"}
	p := NewPipeline(m, WithStore(store), WithPaths(paths), WithLogger(discardLogger))

	state, err := runPipeline(t, p, "in/brandi.xlsx")
	require.NoError(t, err)

	out := OutcomeOf(state)
	assert.Equal(t, "out/happojang/brandi_매크로_완료.xlsx", out.OutputPath)
	assert.Equal(t, 1, out.Rows)
	assert.Equal(t, []domain.SheetSummary{{Name: AutomationSheet, Rows: 1}}, out.Sheets)
}

func TestPipeline_MissingInputSkipsLaterStages(t *testing.T) {
	m, err := Lookup(domain.ModeERP, domain.ChannelEtc)
	require.NoError(t, err)
	p := NewPipeline(m, WithStore(newMemStore()), WithLogger(discardLogger))

	state, err := runPipeline(t, p, t.TempDir()+"/missing.xlsx")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeSourceNotFound))
	assert.Equal(t, operations.OperationStatusFailed, state.GetStatus())
	assert.Equal(t, operations.StepStatusFailed, state.GetStage(operations.StageLoad).GetStatus())
	for _, id := range []string{operations.StageNormalize, operations.StageSortGroup, operations.StagePartition, operations.StageCompute, operations.StageStyle, operations.StageSave} {
		assert.Equal(t, operations.StepStatusSkipped, state.GetStage(id).GetStatus(), id)
	}
}

func TestPipeline_SortKeyErrorAbortsRun(t *testing.T) {
	store := newMemStore()
	store.put("in/orders.xlsx", orderSheet("주문",
		map[string]interface{}{"B": "[오케이마트] 쿠팡", "C": 1},
		map[string]interface{}{"B": "[오케이마트] 쿠팡", "C": "상품"},
	))
	m, err := Lookup(domain.ModeERP, domain.ChannelEtc)
	require.NoError(t, err)
	p := NewPipeline(m, WithStore(store), WithLogger(discardLogger))

	state, err := runPipeline(t, p, "in/orders.xlsx")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeSortKey))
	assert.Equal(t, operations.StepStatusSkipped, state.GetStage(operations.StageSave).GetStatus())
	assert.Nil(t, store.get("in/orders_매크로_완료.xlsx"))
}

func TestPipeline_ChannelOverrides(t *testing.T) {
	store := newMemStore()
	store.put("in/orders.xlsx", orderSheet("주문",
		map[string]interface{}{"B": "[새계정] 지그재그", "C": "A", "M": "P1"},
		map[string]interface{}{"B": "[오케이마트] 지그재그", "C": "B", "M": "P2"},
	))
	m, err := Lookup(domain.ModeBundle, domain.ChannelZigzag)
	require.NoError(t, err)

	fallback := "3500"
	overrides := config.ChannelOverrides{
		"zigzag": {Accounts: map[string]string{"새계정": "NEW"}, LookupDefault: &fallback},
	}
	p := NewPipeline(m, WithStore(store), WithOverrides(overrides), WithLogger(discardLogger))
	assert.Equal(t, []string{"OK", "IY", "NEW"}, p.Profile().Sheets)

	// bundle zigzag matches "[tag]" anywhere in B
	state, err := runPipeline(t, p, "in/orders.xlsx")
	require.NoError(t, err)
	out := OutcomeOf(state)
	assert.Contains(t, out.Sheets, domain.SheetSummary{Name: "NEW", Rows: 1})

	// no lookup sheet: the rule is skipped and the fallback is not written
	doc := store.get(out.OutputPath)
	auto, _ := doc.Sheet(AutomationSheet)
	assert.True(t, auto.Row(0).Get(colV).IsEmpty())
}

func TestPipeline_DataSheetParameter(t *testing.T) {
	store := newMemStore()
	store.put("in/orders.xlsx",
		workbook.NewSheet("안내", []string{"memo"}),
		orderSheet("주문", map[string]interface{}{"C": "A", "O": 100}),
	)
	m, err := Lookup(domain.ModeERP, domain.ChannelBrandi)
	require.NoError(t, err)
	p := NewPipeline(m, WithStore(store), WithLogger(discardLogger))

	req := p.Request("run-1", "in/orders.xlsx")
	req.Parameters[ParamSheet] = "주문"
	mgr := operations.NewManager(nil, nil, operations.WithLogger(discardLogger))
	defer mgr.Close()

	state, err := mgr.Execute(context.Background(), req, p.Registry())
	require.NoError(t, err)
	assert.Equal(t, "run-1", state.ID)

	doc := store.get(OutcomeOf(state).OutputPath)
	assert.Equal(t, []string{"안내", AutomationSheet}, doc.SheetNames())
}

type failingExporter struct{}

func (failingExporter) Export(ctx context.Context, doc *workbook.Document, outputPath string) ([]string, error) {
	return nil, apperrors.NewStorageError("export sheet OK", errors.New("disk full"))
}

// failingStore loads from memory and refuses every save
type failingStore struct{ *memStore }

func (failingStore) Save(ctx context.Context, doc *workbook.Document, path string) (string, error) {
	return "", apperrors.NewStorageError("save "+path, errors.New("read-only file system"))
}

func TestPipeline_ExportFailureCommitsNothing(t *testing.T) {
	store := newMemStore()
	store.put("in/orders.xlsx", zigzagOrders())

	m, err := Lookup(domain.ModeERP, domain.ChannelZigzag)
	require.NoError(t, err)
	p := NewPipeline(m, WithStore(store), WithExporter(failingExporter{}), WithLogger(discardLogger))

	state, err := runPipeline(t, p, "in/orders.xlsx")
	require.Error(t, err)
	assert.Equal(t, operations.StepStatusFailed, state.GetStage(operations.StageSave).GetStatus())
	assert.Nil(t, store.get("in/orders_매크로_완료.xlsx"))
	assert.Empty(t, OutcomeOf(state).OutputPath)
}

func TestPipeline_SaveFailureRemovesExports(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "orders.xlsx")
	store := failingStore{newMemStore()}
	store.put(input, zigzagOrders())

	m, err := Lookup(domain.ModeERP, domain.ChannelZigzag)
	require.NoError(t, err)
	p := NewPipeline(m, WithStore(store), WithExporter(exporter.NewSheetExporter(discardLogger)), WithLogger(discardLogger))

	_, err = runPipeline(t, p, input)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPipeline_ExportsNextToOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "orders.xlsx")
	store := newMemStore()
	store.put(input, zigzagOrders())

	m, err := Lookup(domain.ModeERP, domain.ChannelZigzag)
	require.NoError(t, err)
	p := NewPipeline(m, WithStore(store), WithExporter(exporter.NewSheetExporter(discardLogger)), WithLogger(discardLogger))

	state, err := runPipeline(t, p, input)
	require.NoError(t, err)

	out := OutcomeOf(state)
	require.Len(t, out.Exports, 3)
	for _, path := range out.Exports {
		assert.FileExists(t, path)
	}
	assert.NotNil(t, store.get(out.OutputPath))
}
