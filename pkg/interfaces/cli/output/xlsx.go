package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/bomengine/pkg/domain/entities"
)

const (
	explosionSheet = "Explosion"
	rawSheet       = "Raw Materials"
	scaleSheet     = "Scaling"
)

// ExplosionWorkbook builds a workbook with one sheet per explosion view:
// every emitted node, and the raw material totals
func ExplosionWorkbook(res *entities.ExplosionResult) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), explosionSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	if err := writeSheet(f, explosionSheet, explosionColumns, explosionRows(res)); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(rawSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	raw := make([][]string, 0, len(res.RawMaterialsSummary))
	for _, s := range res.RawMaterialsSummary {
		raw = append(raw, []string{string(s.ComponentID), s.ComponentCode, s.ComponentName, s.TotalQty.String(), s.UOM})
	}
	if err := writeSheet(f, rawSheet, []string{"component_id", "component_code", "component_name", "total_qty", "uom"}, raw); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// ScaleWorkbook builds a single-sheet workbook of scaled lines, with the
// warnings listed below the table
func ScaleWorkbook(res *entities.ScaleResult) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), scaleSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	rows := scaleRows(res)
	if err := writeSheet(f, scaleSheet, scaleColumns, rows); err != nil {
		f.Close()
		return nil, err
	}

	row := len(rows) + 3
	for _, warning := range res.Warnings {
		if err := f.SetCellValue(scaleSheet, fmt.Sprintf("A%d", row), warning); err != nil {
			f.Close()
			return nil, err
		}
		row++
	}
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, h := range header {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		cell := col + "1"
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, 16); err != nil {
			return err
		}
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for i, v := range row {
			values[i] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
