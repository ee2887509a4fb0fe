package macros

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermacro/internal/engine"
	"ordermacro/internal/rules"
	"ordermacro/internal/workbook"
)

func TestBundleBrandi_MergesSameProductAndAddress(t *testing.T) {
	sheet := orderSheet("orders",
		map[string]interface{}{"C": "P100", "J": "서울 1", "O": 10000, "P": "1000/500", "V": 0, "F": "티셔츠 1개"},
		map[string]interface{}{"C": "P200", "J": "서울 1", "O": 3000, "P": 0, "V": "2500/500", "F": "모자"},
		map[string]interface{}{"C": "P100", "J": "서울 1", "O": 5000, "V": 0, "F": "바지 2개"},
		map[string]interface{}{"C": "P300", "J": "제주시 애월", "O": 1000, "F": "양말", "H": "01011112222"},
	)
	m := bundleBrandi{}
	j := newTestJob(m, sheet)

	require.NoError(t, m.Normalize(j))
	assert.Equal(t, []string{"11500", "6000", "5000", "1000"}, values(sheet, colD))

	require.NoError(t, m.SortGroup(j))
	require.Equal(t, 3, sheet.Len())
	assert.Equal(t, []string{"P300", "P100", "P200"}, values(sheet, colC))
	assert.Equal(t, []string{"1000", "16500", "6000"}, values(sheet, colD))
	assert.Equal(t, "바지 2개 + 티셔츠", sheet.Row(1).Get(colF).String())

	require.NoError(t, m.Compute(j))
	require.NoError(t, m.Style(j))
	assert.Equal(t, "양말"+rules.JejuMarker, sheet.Row(0).Get(colF).String())
	assert.Equal(t, "010-1111-2222", sheet.Row(0).Get(colH).String())
	assert.Equal(t, workbook.AlignLeft, sheet.Row(0).StyleAt(colF).Align)
}

func TestBundleBrandi_MergeConservesTotal(t *testing.T) {
	sheet := orderSheet("orders",
		map[string]interface{}{"C": "A", "J": "X", "O": 100},
		map[string]interface{}{"C": "A", "J": "X", "O": 200},
		map[string]interface{}{"C": "B", "J": "X", "O": 300},
		map[string]interface{}{"C": "A", "J": "Y", "O": 400},
		map[string]interface{}{"C": "A", "J": "X", "O": 500},
	)
	m := bundleBrandi{}
	j := newTestJob(m, sheet)
	require.NoError(t, m.Normalize(j))
	require.NoError(t, m.SortGroup(j))

	total := int64(0)
	for _, r := range sheet.Rows {
		n, _ := r.Get(colD).Int64()
		total += n
	}
	assert.Equal(t, int64(1500), total)
	assert.Equal(t, 3, sheet.Len())
}

func TestBundleAli_Normalize(t *testing.T) {
	sheet := orderSheet("orders",
		map[string]interface{}{
			"B": "알리 오케이마트", "C": "A", "E": "12345678901234567890", "Z": "티셔츠*2/바지*3",
			"I": "1012345678", "J": "서귀포시 중문", "M": "100", "U": 10000, "V": 2500,
		},
		map[string]interface{}{"B": "알리 아이예스", "C": "B", "Z": "양말 * 1", "M": "200", "U": 500},
	)
	m := bundleAli{}
	j := newTestJob(m, sheet)
	j.Lookup = engine.LookupTable{"100": "L"}
	j.HasLookup = true

	require.NoError(t, m.Normalize(j))
	first, second := sheet.Row(0), sheet.Row(1)

	assert.Equal(t, "티셔츠 2개 + 바지 3개"+rules.JejuMarker, first.Get(colF).String())
	assert.Equal(t, fillCounted, first.StyleAt(colF).Fill)
	assert.Equal(t, "양말", second.Get(colF).String())
	assert.Empty(t, second.StyleAt(colF).Fill)

	assert.Equal(t, "1234567890123456", first.Get(colE).String())
	assert.True(t, first.Get(colE).IsText())
	assert.Equal(t, "010-1234-5678", first.Get(colI).String())
	assert.Equal(t, first.Get(colI), first.Get(colH))
	assert.Equal(t, "12500", first.Get(colD).String())
	assert.Equal(t, workbook.Int(100), first.Get(colM))
	assert.True(t, first.StyleAt(colJ).Bold)

	assert.Equal(t, []string{"L", "S"}, values(sheet, colS))
}

func TestBundleZigzag_Normalize(t *testing.T) {
	sheet := orderSheet("orders",
		map[string]interface{}{"B": "지그재그[오케이마트]", "M": "123.7", "U": 10000, "F": "티셔츠 1개 + 바지 2개 + 모자 3개"},
		map[string]interface{}{"B": "지그재그[아이예스]", "U": 500, "F": "양말 1개"},
		map[string]interface{}{"B": "지그재그[아이예스]", "M": "abc", "U": 700},
	)
	m := bundleZigzag{}
	j := newTestJob(m, sheet)
	j.Lookup = engine.LookupTable{"123": "3000"}
	j.HasLookup = true

	require.NoError(t, m.Normalize(j))
	assert.Equal(t, []string{"123", "0", "0"}, values(sheet, colM))
	assert.Equal(t, 1, j.Warnings())
	assert.Equal(t, "3000", sheet.Row(0).Get(colV).String())
	assert.Equal(t, []string{"13000", "500", "700"}, values(sheet, colD))
	assert.Equal(t, "티셔츠 + 바지 2개 + 모자 3개", sheet.Row(0).Get(colF).String())
	assert.Equal(t, fillCounted, sheet.Row(0).StyleAt(colF).Fill)
	assert.Equal(t, "양말", sheet.Row(1).Get(colF).String())
	assert.Empty(t, sheet.Row(1).StyleAt(colF).Fill)
}

func TestBundleEtc_DeliveryFees(t *testing.T) {
	tests := []struct {
		name string
		row  map[string]interface{}
		want string
	}{
		{"split empty fee", map[string]interface{}{"B": "[오케이마트] 스마트스토어", "X": "a/b/c"}, "1000"},
		{"split large fee", map[string]interface{}{"B": "[오케이마트] 롯데온", "X": "a/b", "V": 5000}, "2500"},
		{"split base fee kept", map[string]interface{}{"B": "[오케이마트] 톡스토어", "X": "a/b", "V": 3000}, "3000"},
		{"split needs several orders", map[string]interface{}{"B": "[오케이마트] 보리보리", "X": "a", "V": 5000}, "5000"},
		{"free delivery", map[string]interface{}{"B": "[아이예스] 오늘의집", "V": 3000}, "0"},
		{"toss over limit", map[string]interface{}{"B": "[아이예스] 토스", "U": 40000, "V": 3000}, "0"},
		{"toss under limit", map[string]interface{}{"B": "[아이예스] 토스", "U": 20000}, "3000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := orderSheet("s", tt.row).Row(0)
			bundleDeliveryFee(row)
			assert.Equal(t, tt.want, row.Get(colV).String())
		})
	}
}

func TestBundleEtc_Normalize(t *testing.T) {
	sheet := orderSheet("orders",
		map[string]interface{}{"B": "[오케이마트] 쿠팡", "E": "1234567890123456", "F": "티셔츠 1개/바지 2개", "U": 10000, "V": "1000/2000"},
		map[string]interface{}{"B": "[오케이마트] 쿠팡", "E": "123456/654321", "F": "모자", "U": "500", "L": "신용"},
		map[string]interface{}{"B": "[베이지베이글] 11번가", "E": "A-1", "M": "1,234", "W": "2"},
	)
	m := bundleEtc{}
	j := newTestJob(m, sheet)

	require.NoError(t, m.Normalize(j))
	assert.Equal(t, []string{"1234567890123", "123456", "A-1"}, values(sheet, colE))
	assert.Equal(t, "티셔츠 + 바지 2개", sheet.Row(0).Get(colF).String())
	assert.Equal(t, []string{"13000", "500", "0"}, values(sheet, colD))
	assert.True(t, sheet.Row(1).Get(colL).IsEmpty())
	assert.Equal(t, workbook.Int(1234), sheet.Row(2).Get(colM))
	assert.Equal(t, workbook.Int(2), sheet.Row(2).Get(colW))
}

func TestBundleGmarket_Normalize(t *testing.T) {
	sheet := orderSheet("orders",
		map[string]interface{}{
			"B": "[오케이마트] G마켓", "E": "1234567890123", "F": "A/B 1개",
			"L": "신용", "P": "1000/2000", "V": "0/2500", "O": 10000,
		},
	)
	m := bundleGmarket{}
	j := newTestJob(m, sheet)

	require.NoError(t, m.Normalize(j))
	require.NoError(t, m.Compute(j))
	require.NoError(t, m.Style(j))
	row := sheet.Row(0)
	assert.Equal(t, workbook.Int(1234567890), row.Get(colE))
	assert.Equal(t, "A + B", row.Get(colF).String())
	assert.True(t, row.Get(colL).IsEmpty())
	assert.Equal(t, "3000", row.Get(colP).String())
	assert.Equal(t, "2500", row.Get(colV).String())
	assert.Equal(t, "15500", row.Get(colD).String())
}

func TestMarkRemote_Idempotent(t *testing.T) {
	row := orderSheet("s", map[string]interface{}{"F": "티셔츠", "J": "제주시 연동"}).Row(0)

	assert.True(t, markRemote(row, inJeju, fillJeju))
	assert.True(t, markRemote(row, inJeju, fillJeju))
	assert.Equal(t, 1, strings.Count(row.Get(colF).String(), rules.JejuMarker))

	other := orderSheet("s", map[string]interface{}{"F": "티셔츠", "J": "서울시"}).Row(0)
	assert.False(t, markRemote(other, inJejuOrSeogwipo, fillCounted))
	assert.Equal(t, "티셔츠", other.Get(colF).String())
}
