package macros

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermacro/internal/engine"
	"ordermacro/internal/workbook"
)

func TestErpGmarket_BasketFeeLandsOnFirstSortedRow(t *testing.T) {
	sheet := orderSheet("orders",
		map[string]interface{}{"B": "[오케이마트] G마켓", "C": "상품A", "E": "100", "Q": "B1", "V": 3000},
		map[string]interface{}{"B": "[오케이마트] G마켓", "C": "상품A", "E": "200", "Q": "B1", "V": 3000},
		map[string]interface{}{"B": "[아이예스] 옥션", "C": "상품B", "E": "300", "Q": "B2", "V": 0},
	)
	m := erpGmarket{}
	j := newTestJob(m, sheet)

	require.NoError(t, m.Normalize(j))
	assert.Equal(t, []string{"0", "0", "0"}, values(sheet, colV))
	assert.Equal(t, 1, j.Baskets.Len())

	require.NoError(t, m.SortGroup(j))
	assert.Equal(t, []string{"300", "200", "100"}, values(sheet, colE))
	assert.Equal(t, []string{"0", "3000", "0"}, values(sheet, colV))
	assert.Equal(t, 0, j.Baskets.Len())
}

func TestErpGmarket_FeeTotalIsConservedPerBasket(t *testing.T) {
	sheet := orderSheet("orders",
		map[string]interface{}{"B": "[오케이마트] G마켓", "C": "A", "E": "1", "Q": "K", "V": 2500},
		map[string]interface{}{"B": "[오케이마트] G마켓", "C": "A", "E": "2", "Q": "K", "V": 2500},
		map[string]interface{}{"B": "[오케이마트] G마켓", "C": "A", "E": "3", "Q": "K", "V": 2500},
	)
	m := erpGmarket{}
	j := newTestJob(m, sheet)
	require.NoError(t, m.Normalize(j))
	require.NoError(t, m.SortGroup(j))

	total := int64(0)
	for _, r := range sheet.Rows {
		n, _ := r.Get(colV).Int64()
		total += n
	}
	assert.Equal(t, int64(2500), total)
}

func TestErpEtc_NormalizeShippingFees(t *testing.T) {
	sheet := orderSheet("orders",
		map[string]interface{}{"B": "[오케이마트] 오늘의집", "E": "1", "V": 3000},
		map[string]interface{}{"B": "[오케이마트] 톡스토어", "E": "2", "V": 3000},
		map[string]interface{}{"B": "[오케이마트] 톡스토어", "E": "3", "V": 3000},
		map[string]interface{}{"B": "[아이예스] 스마트스토어", "E": "4", "J": "서울시 1", "V": 3000},
		map[string]interface{}{"B": "[아이예스] 스마트스토어", "E": "5", "J": "서울시 1", "V": 3000},
		map[string]interface{}{"B": "[아이예스] 스마트스토어", "E": "6", "J": "부산시 2", "V": 3000},
	)
	m := erpEtc{}
	j := newTestJob(m, sheet)

	require.NoError(t, m.Normalize(j))
	assert.Equal(t, []string{"0", "3000", "0", "3000", "0", "3000"}, values(sheet, colV))
}

func TestErpEtc_TossShippingPerOrder(t *testing.T) {
	sheet := orderSheet("orders",
		map[string]interface{}{"B": "[오케이마트] 토스", "E": "T1", "U": 10000, "V": 3000},
		map[string]interface{}{"B": "[오케이마트] 토스", "E": "T1", "U": "15000", "V": 3000},
		map[string]interface{}{"B": "[오케이마트] 토스", "E": "T2", "U": 40000, "V": 3000},
	)
	m := erpEtc{}
	j := newTestJob(m, sheet)

	require.NoError(t, m.Normalize(j))
	assert.Equal(t, []string{"3000", "0", "0"}, values(sheet, colV))
}

func TestErpEtc_NumericOrderNumbersAndPhones(t *testing.T) {
	sheet := orderSheet("orders",
		map[string]interface{}{"B": "[오케이마트] 쿠팡", "E": "12345.0", "H": "01012345678"},
		map[string]interface{}{"B": "[오케이마트] 11번가", "E": "0012", "I": "0212345678"},
	)
	m := erpEtc{}
	j := newTestJob(m, sheet)

	require.NoError(t, m.Normalize(j))
	assert.Equal(t, workbook.KindInt, sheet.Row(0).Get(colE).Kind())
	assert.Equal(t, "12345", sheet.Row(0).Get(colE).String())
	assert.Equal(t, "0012", sheet.Row(1).Get(colE).String())
	assert.Equal(t, "010-1234-5678", sheet.Row(0).Get(colH).String())
	assert.Equal(t, "02-1234-5678", sheet.Row(1).Get(colI).String())
}

func TestErpEtc_ComputeAndStyle(t *testing.T) {
	sheet := orderSheet("orders",
		map[string]interface{}{"B": "[오케이마트] 쿠팡", "D": 0, "E": "1234567890123456789", "F": "티셔츠 1개", "L": "신용", "P": "1,000", "U": 12000, "V": 0},
		map[string]interface{}{"B": "[오케이마트] 쿠팡", "D": 0, "E": "2", "F": "3", "L": "착불", "U": 5000, "V": 3000},
	)
	m := erpEtc{}
	j := newTestJob(m, sheet)

	require.NoError(t, m.Compute(j))
	require.NoError(t, m.Style(j))
	first, second := sheet.Row(0), sheet.Row(1)

	assert.Equal(t, "12000", first.Get(colD).String())
	assert.Equal(t, "8000", second.Get(colD).String())
	assert.Equal(t, workbook.Text("1234567890123456789"), first.Get(colE))
	assert.Equal(t, workbook.FormatText, first.StyleAt(colE).NumFmt)
	assert.Equal(t, "티셔츠", first.Get(colF).String())
	assert.Equal(t, fillLabel, second.StyleAt(colF).Fill)
	assert.True(t, first.Get(colL).IsEmpty())
	assert.Equal(t, colorRed, second.StyleAt(colL).FontColor)
	assert.True(t, first.StyleAt(colV).Bold)
	assert.False(t, second.StyleAt(colV).Bold)
	assert.Equal(t, workbook.Int(1000), first.Get(colP))
}

func TestErpZigzag_LookupFillsShippingBeforeTotal(t *testing.T) {
	sheet := orderSheet("orders",
		map[string]interface{}{"B": "[오케이마트] 지그재그", "D": 0, "M": "P1", "U": 10000},
		map[string]interface{}{"B": "[오케이마트] 지그재그", "D": 0, "M": "P9", "U": 20000, "V": 500},
	)
	m := erpZigzag{}
	j := newTestJob(m, sheet)
	j.Lookup = engine.LookupTable{"P1": "3000"}
	j.HasLookup = true

	require.NoError(t, m.Compute(j))
	assert.Equal(t, []string{"3000", "500"}, values(sheet, colV))
	assert.Equal(t, []string{"13000", "20500"}, values(sheet, colD))
}

func TestErpAli_Normalize(t *testing.T) {
	sheet := orderSheet("orders",
		map[string]interface{}{"D": 0, "Z": "티셔츠 * 3", "I": "1012345678", "U": 9000, "V": 1000},
		map[string]interface{}{"Z": "양말 * 1", "I": "01098765432"},
	)
	m := erpAli{}
	j := newTestJob(m, sheet)

	require.NoError(t, m.Normalize(j))
	assert.Equal(t, []string{"티셔츠 3개", "양말"}, values(sheet, colF))
	assert.Equal(t, []string{"010-1234-5678", "010-9876-5432"}, values(sheet, colI))
	assert.Equal(t, values(sheet, colI), values(sheet, colH))
	assert.Equal(t, "10000", sheet.Row(0).Get(colD).String())
	assert.True(t, sheet.Row(1).Get(colD).IsEmpty())
}

func TestErpAli_SizeDefaultsWithoutLookupSheet(t *testing.T) {
	sheet := orderSheet("orders",
		map[string]interface{}{"F": "티셔츠", "J": "제주특별자치도 제주시"},
		map[string]interface{}{"F": "양말", "J": "서울시"},
	)
	m := erpAli{}
	j := newTestJob(m, sheet)

	require.NoError(t, m.Compute(j))
	require.NoError(t, m.Style(j))
	assert.Equal(t, []string{"S", "S"}, values(sheet, colS))
	assert.Equal(t, "티셔츠 [3000원 연락해야함]", sheet.Row(0).Get(colF).String())
	assert.Equal(t, fillJeju, sheet.Row(0).StyleAt(colF).Fill)
	assert.True(t, sheet.Row(0).StyleAt(colJ).Bold)
	assert.Equal(t, "양말", sheet.Row(1).Get(colF).String())
}

func TestErpBrandi_SortsByProductAndTotals(t *testing.T) {
	sheet := orderSheet("orders",
		map[string]interface{}{"C": "B상품", "D": 0, "O": 1000, "P": 200, "V": 3000},
		map[string]interface{}{"C": "A상품", "D": 0, "O": 500, "P": "x", "V": 0},
	)
	m := erpBrandi{}
	j := newTestJob(m, sheet)

	require.NoError(t, m.SortGroup(j))
	require.NoError(t, m.Compute(j))
	assert.Equal(t, []string{"A상품", "B상품"}, values(sheet, colC))
	assert.Equal(t, []string{"500", "4200"}, values(sheet, colD))
}

func TestErpTotals_ReadAmountsStoredAsText(t *testing.T) {
	tests := []struct {
		name   string
		macro  Macro
		rows   []map[string]interface{}
		lookup engine.LookupTable
		run    func(m Macro, j *Job) error
		want   []string
	}{
		{
			name:  "zigzag U text and looked up V",
			macro: erpZigzag{},
			rows: []map[string]interface{}{
				{"D": 0, "M": "P1", "U": "10000"},
				{"D": 0, "M": "P9", "U": 20000, "V": "500"},
			},
			lookup: engine.LookupTable{"P1": "3000"},
			run:    func(m Macro, j *Job) error { return m.Compute(j) },
			want:   []string{"13000", "20500"},
		},
		{
			name:  "gmarket O text",
			macro: erpGmarket{},
			rows:  []map[string]interface{}{{"D": 0, "O": "12000", "V": 2500}},
			run:   func(m Macro, j *Job) error { return m.Compute(j) },
			want:  []string{"14500"},
		},
		{
			name:  "etc U and V text",
			macro: erpEtc{},
			rows:  []map[string]interface{}{{"D": 0, "U": "12,000", "V": "3000"}},
			run:   func(m Macro, j *Job) error { return m.Compute(j) },
			want:  []string{"15000"},
		},
		{
			name:  "brandi O and P text",
			macro: erpBrandi{},
			rows:  []map[string]interface{}{{"D": 0, "O": "1000", "P": "200", "V": 3000}},
			run:   func(m Macro, j *Job) error { return m.Compute(j) },
			want:  []string{"4200"},
		},
		{
			name:  "ali U and V text",
			macro: erpAli{},
			rows:  []map[string]interface{}{{"D": 0, "U": "9000", "V": "1,000"}},
			run:   func(m Macro, j *Job) error { return m.Normalize(j) },
			want:  []string{"10000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := orderSheet("orders", tt.rows...)
			j := newTestJob(tt.macro, sheet)
			if tt.lookup != nil {
				j.Lookup, j.HasLookup = tt.lookup, true
			}

			require.NoError(t, tt.run(tt.macro, j))
			assert.Equal(t, tt.want, values(sheet, colD))
			for _, row := range sheet.Rows {
				assert.True(t, row.Get(colD).IsNumeric())
			}
			assert.Zero(t, j.Warnings())
		})
	}
}

func cellSnapshot(s *workbook.Sheet) []string {
	var out []string
	for _, row := range s.Rows {
		for col := 0; col < s.Width(); col++ {
			c := row.Get(col)
			out = append(out, fmt.Sprintf("%d:%s", c.Kind(), c.String()))
		}
	}
	return out
}

func TestMacros_StyleLeavesValuesUnchanged(t *testing.T) {
	for _, m := range All() {
		t.Run(m.Profile().Key(), func(t *testing.T) {
			sheet := orderSheet("orders",
				map[string]interface{}{
					"B": "[오케이마트] 카카오톡스토어", "C": "A", "D": 0, "E": "1234567890123456",
					"F": "티셔츠 1개", "H": "01012345678", "J": "제주시 연동", "L": "신용",
					"O": "1000", "P": "1,000", "U": "12000", "V": "0",
				},
				map[string]interface{}{
					"B": "[아이예스] 쿠팡", "C": "B", "D": 0, "E": "2", "F": "3",
					"J": "서울시", "L": "착불", "O": 500, "U": 5000, "V": 3000,
				},
			)
			j := newTestJob(m, sheet)
			require.NoError(t, m.Compute(j))

			before := cellSnapshot(sheet)
			require.NoError(t, m.Style(j))
			assert.Equal(t, before, cellSnapshot(sheet))
		})
	}
}
