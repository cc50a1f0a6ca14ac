package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
)

// WriteScenario writes a scenario directory that LoadScenario reads back
func WriteScenario(dir string, scenario *Scenario) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	components := make([][]string, 0, len(scenario.Components))
	for _, c := range scenario.Components {
		components = append(components, []string{string(c.ID), c.Code, c.Name, c.Type.String()})
	}
	if err := writeCSV(filepath.Join(dir, ComponentsFile), componentsHeader, components); err != nil {
		return err
	}

	boms := make([][]string, 0, len(scenario.BOMs))
	var items [][]string
	for _, bom := range scenario.BOMs {
		boms = append(boms, []string{
			bom.ID.String(),
			string(bom.ProductID),
			bom.Version,
			string(bom.Status),
			bom.OutputQty.String(),
			bom.OutputUOM,
			nullString(bom.ExpectedYieldPercent),
		})
		for _, item := range bom.Items {
			items = append(items, []string{
				item.ID.String(),
				bom.ID.String(),
				string(item.Component.ID),
				item.Quantity.String(),
				item.UOM,
				nullString(item.ScrapPercent),
				strconv.FormatBool(item.IsOutput()),
				strconv.FormatBool(item.IsByProduct()),
				nullString(item.YieldPercentage),
				strconv.Itoa(item.Sequence),
			})
		}
	}
	if err := writeCSV(filepath.Join(dir, BOMsFile), bomsHeader, boms); err != nil {
		return err
	}
	return writeCSV(filepath.Join(dir, BOMItemsFile), bomItemsHeader, items)
}

func writeCSV(filename string, header []string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
