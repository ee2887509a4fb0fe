package macros

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermacro/internal/workbook"
)

func TestReform(t *testing.T) {
	sheet := orderSheet("orders",
		map[string]interface{}{"H": "₩12,000", "I": "3,000", "L": "무료", "N": 500, "U": "대한민국、서울특별시、강남구", "W": "2"},
	)

	Reform(sheet)
	row := sheet.Row(0)
	assert.Equal(t, workbook.Int(12000), row.Get(colH))
	assert.Equal(t, workbook.Int(3000), row.Get(colI))
	assert.Equal(t, workbook.Text("무료"), row.Get(colL))
	assert.Equal(t, workbook.Int(500), row.Get(colN))
	assert.Equal(t, "서울특별시 강남구", row.Get(colU).String())
	assert.Equal(t, workbook.Int(1), row.Get(colW))
	assert.Equal(t, workbook.FormatGeneral, row.StyleAt(colH).NumFmt)
}

func TestReformedPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/data/ali.xlsx", "/data/ali_reformed.xlsx"},
		{"ali.XLSM", "ali_reformed.XLSM"},
		{"ali.csv", "ali_reformed.xlsx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReformedPath(tt.in))
	}
}

func TestReformer_Run(t *testing.T) {
	store := newMemStore()
	store.put("in/ali.xlsx", orderSheet("orders", map[string]interface{}{"H": "₩1,500"}))

	path, err := NewReformer(store, discardLogger).Run(context.Background(), "in/ali.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "in/ali_reformed.xlsx", path)

	saved := store.get(path)
	require.NotNil(t, saved)
	sheet, err := saved.DataSheet("")
	require.NoError(t, err)
	assert.Equal(t, workbook.Int(1500), sheet.Row(0).Get(colH))
}
