package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Proton-105/storefront-bot/internal/catalog"
)

func TestSpreadsheet_Render(t *testing.T) {
	snapshot := catalog.NewSnapshot([]catalog.Item{
		{ID: 1, Category: "Часы", Brand: "Apple", Model: "S9", Name: "Apple Watch S9", Price: decimal.RequireFromString("39990")},
		{ID: 2, Category: "Часы", Brand: "Samsung", Model: "W6", Name: "Galaxy Watch 6", Price: decimal.RequireFromString("24990.50")},
		{ID: 3, Category: "Наушники", Brand: "Sony", Model: "XM5", Name: "Sony WH-1000XM5", Price: decimal.RequireFromString("29990")},
	})

	data, err := NewSpreadsheet().Render(snapshot)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 6)

	assert.Equal(t, []string{"Категория", "Бренд", "Модель", "Товар", "Цена"}, rows[0])
	assert.Equal(t, "Часы", rows[1][0])
	assert.Equal(t, "Apple Watch S9", rows[2][3])
	assert.Equal(t, "Наушники", rows[4][0])
	assert.Equal(t, "Sony WH-1000XM5", rows[5][3])

	raw, err := f.GetCellValue(sheetName, "E4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "24990.5", raw)
}

func TestSpreadsheet_RenderEmpty(t *testing.T) {
	data, err := NewSpreadsheet().Render(catalog.NewSnapshot(nil))
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
