// Package export renders the catalog into an xlsx workbook.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Proton-105/storefront-bot/internal/catalog"
)

const sheetName = "Товары"

var header = []any{"Категория", "Бренд", "Модель", "Товар", "Цена"}

// Spreadsheet renders snapshots as xlsx documents.
type Spreadsheet struct{}

// NewSpreadsheet returns a Spreadsheet exporter.
func NewSpreadsheet() *Spreadsheet {
	return &Spreadsheet{}
}

// Render writes every group as a bold category row followed by its items.
func (s *Spreadsheet) Render(snapshot *catalog.Snapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F4E79"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	categoryStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("category style: %w", err)
	}
	priceStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("price style: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "E1", headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	row := 2
	for _, group := range snapshot.Groups() {
		cell := fmt.Sprintf("A%d", row)
		if err := f.SetCellValue(sheetName, cell, group.Category); err != nil {
			return nil, fmt.Errorf("write category: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, categoryStyle); err != nil {
			return nil, fmt.Errorf("style category: %w", err)
		}
		row++

		for _, item := range group.Items {
			price, _ := item.Price.Float64()
			values := []any{item.Category, item.Brand, item.Model, item.Name, price}
			if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &values); err != nil {
				return nil, fmt.Errorf("write item %d: %w", item.ID, err)
			}
			priceCell := fmt.Sprintf("E%d", row)
			if err := f.SetCellStyle(sheetName, priceCell, priceCell, priceStyle); err != nil {
				return nil, fmt.Errorf("style price: %w", err)
			}
			row++
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 28); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "B", "C", 16); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "D", "D", 48); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}

	if err := f.AutoFilter(sheetName, fmt.Sprintf("A1:E%d", max(row-1, 1)), nil); err != nil {
		return nil, fmt.Errorf("autofilter: %w", err)
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
