package workbook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

func TestLoadCSV_Encodings(t *testing.T) {
	content := "번호,사이트,연락처\n1,[아이예스] 쿠팡,010-1234-5678\n2,[오케이마트] 톡스토어,01098765432\n"

	eucKR, err := korean.EUCKR.NewEncoder().String(content)
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"utf8 with bom", append([]byte{0xEF, 0xBB, 0xBF}, content...)},
		{"plain utf8", []byte(content)},
		{"euc-kr", []byte(eucKR)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "주문내역.csv")
			require.NoError(t, os.WriteFile(path, tt.data, 0644))

			doc, err := Load(path)
			require.NoError(t, err)

			sheet, err := doc.DataSheet("")
			require.NoError(t, err)
			assert.Equal(t, "주문내역", sheet.Name)
			assert.Equal(t, []string{"번호", "사이트", "연락처"}, sheet.Headers())
			require.Equal(t, 2, sheet.Len())
			assert.Equal(t, Int(1), sheet.Row(0).Get(0))
			assert.Equal(t, "[아이예스] 쿠팡", sheet.Row(0).Get(1).Str())
			assert.Equal(t, Text("01098765432"), sheet.Row(1).Get(2))
		})
	}
}

func TestLoadCSV_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("a.XLSX"))
	assert.True(t, IsSupported("a.csv"))
	assert.False(t, IsSupported("a.xls"))
}

func TestLoadCSV_LongIdsStayText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gmarket.csv")
	content := "장바구니번호,주문번호,금액\n1234567890123456,123456789012345,3000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	doc, err := Load(path)
	require.NoError(t, err)
	sheet, err := doc.DataSheet("")
	require.NoError(t, err)

	row := sheet.Row(0)
	assert.Equal(t, Text("1234567890123456"), row.Get(0))
	assert.Equal(t, Int(123456789012345), row.Get(1))
	assert.Equal(t, Int(3000), row.Get(2))

	out := filepath.Join(dir, "gmarket.xlsx")
	require.NoError(t, Save(doc, out))
	reloaded, err := LoadXLSX(out)
	require.NoError(t, err)
	again, err := reloaded.DataSheet("")
	require.NoError(t, err)
	assert.Equal(t, Text("1234567890123456"), again.Row(0).Get(0))
	assert.Equal(t, Int(123456789012345), again.Row(0).Get(1))
}
