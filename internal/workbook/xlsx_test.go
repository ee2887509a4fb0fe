package workbook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "ordermacro/internal/errors"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "주문"))
	require.NoError(t, f.SetSheetRow("주문", "A1", &[]string{"번호", "사이트", "금액", "주문번호", "합계"}))
	require.NoError(t, f.SetCellValue("주문", "A2", 1))
	require.NoError(t, f.SetCellStr("주문", "B2", "[오케이마트] 스마트스토어"))
	require.NoError(t, f.SetCellValue("주문", "C2", 12.5))
	require.NoError(t, f.SetCellStr("주문", "D2", "20240101"))
	require.NoError(t, f.SetCellFormula("주문", "E2", "C2*2"))
	require.NoError(t, f.SetCellStr("주문", "B3", "[아이예스] 쿠팡"))
	require.NoError(t, f.SetColWidth("주문", "B", "B", 32))

	_, err := f.NewSheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]string{"key", "value"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"P100", "S"}))

	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadXLSX(t *testing.T) {
	doc, err := Load(writeFixture(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"주문", "Sheet1"}, doc.SheetNames())

	sheet, err := doc.DataSheet("")
	require.NoError(t, err)
	assert.Equal(t, []string{"번호", "사이트", "금액", "주문번호", "합계"}, sheet.Headers())
	require.Equal(t, 2, sheet.Len())

	row := sheet.Row(0)
	assert.Equal(t, Int(1), row.Get(0))
	assert.Equal(t, "[오케이마트] 스마트스토어", row.Get(1).Str())
	assert.Equal(t, KindDecimal, row.Get(2).Kind())
	assert.Equal(t, Text("20240101"), row.Get(3), "numeric text keeps its string type")
	assert.Equal(t, "=C2*2", row.Get(4).Str())

	second := sheet.Row(1)
	assert.Len(t, second.Cells, 5)
	assert.True(t, second.Get(0).IsEmpty())

	assert.InDelta(t, 32.0, sheet.ColumnWidths[1], 0.01)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.xlsx"))
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeSourceNotFound))

	legacy := filepath.Join(dir, "orders.xls")
	require.NoError(t, os.WriteFile(legacy, []byte("x"), 0644))
	_, err = Load(legacy)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeUnsupported))

	_, err = Load(dir)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeSourceNotFound))
}

func TestSave_WritesValuesStylesAndWidths(t *testing.T) {
	sheet := NewSheet("자동화", []string{"번호", "주문번호", "합계", "배송비"})
	sheet.HeaderStyle = Style{FontName: "맑은 고딕", FontSize: 9, FontColor: "FFFFFF", Bold: true, Fill: "008000", Align: AlignCenter}
	sheet.ColumnWidths[1] = 25
	row := sheet.AppendRow([]Cell{Formula("ROW()-1"), Text("1234567890123456"), Int(15000), Int(0)})
	row.Annotate(1, Style{NumFmt: FormatText, Align: AlignRight})
	row.Annotate(3, Style{FontColor: "FF0000", Bold: true})

	doc := NewDocument("in.xlsx")
	require.NoError(t, doc.AddSheet(sheet))
	require.NoError(t, doc.AddSheet(sheet.CloneEmpty("OK")))

	out := filepath.Join(t.TempDir(), "nested", "out.xlsx")
	require.NoError(t, Save(doc, out))

	_, err := os.Stat(filepath.Join(filepath.Dir(out), "out.partial.xlsx"))
	assert.True(t, os.IsNotExist(err))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"자동화", "OK"}, f.GetSheetList())

	formula, err := f.GetCellFormula("자동화", "A2")
	require.NoError(t, err)
	assert.Equal(t, "ROW()-1", formula)

	v, err := f.GetCellValue("자동화", "B2")
	require.NoError(t, err)
	assert.Equal(t, "1234567890123456", v)

	v, err = f.GetCellValue("자동화", "C2")
	require.NoError(t, err)
	assert.Equal(t, "15000", v)

	styleID, err := f.GetCellStyle("자동화", "D2")
	require.NoError(t, err)
	assert.NotZero(t, styleID)

	headerStyle, err := f.GetCellStyle("OK", "A1")
	require.NoError(t, err)
	assert.NotZero(t, headerStyle)

	width, err := f.GetColWidth("OK", "B")
	require.NoError(t, err)
	assert.InDelta(t, 25.0, width, 0.01)

	rows, err := f.GetRows("OK")
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

func TestSave_EmptyDocument(t *testing.T) {
	err := Save(NewDocument("x.xlsx"), filepath.Join(t.TempDir(), "x.xlsx"))
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeStorage))
}
