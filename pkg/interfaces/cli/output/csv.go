package output

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/vsinha/bomengine/pkg/domain/entities"
)

var explosionColumns = []string{
	"level", "component_id", "component_code", "component_name", "component_type",
	"quantity", "cumulative_qty", "uom", "scrap_percent", "has_sub_bom", "path",
}

var scaleColumns = []string{
	"item_id", "component_code", "component_name", "original_quantity", "new_quantity", "uom", "scrap_percent", "rounded",
}

func explosionRows(res *entities.ExplosionResult) [][]string {
	rows := make([][]string, 0, res.TotalItems)
	for _, level := range res.Levels {
		for _, node := range level.Items {
			path := make([]string, len(node.Path))
			for i, id := range node.Path {
				path[i] = string(id)
			}
			rows = append(rows, []string{
				strconv.Itoa(node.Level),
				string(node.ComponentID),
				node.ComponentCode,
				node.ComponentName,
				node.ComponentType.String(),
				node.Quantity.String(),
				node.CumulativeQty.String(),
				node.UOM,
				node.ScrapPercent.String(),
				strconv.FormatBool(node.HasSubBOM),
				strings.Join(path, "/"),
			})
		}
	}
	return rows
}

func scaleRows(res *entities.ScaleResult) [][]string {
	rows := make([][]string, 0, len(res.Items))
	for _, item := range res.Items {
		rows = append(rows, []string{
			item.ID.String(),
			item.ComponentCode,
			item.ComponentName,
			item.OriginalQuantity.String(),
			item.NewQuantity.String(),
			item.UOM,
			item.ScrapPercent.String(),
			strconv.FormatBool(item.Rounded),
		})
	}
	return rows
}

func explosionCSV(w io.Writer, res *entities.ExplosionResult) error {
	return writeCSV(w, explosionColumns, explosionRows(res))
}

func scaleCSV(w io.Writer, res *entities.ScaleResult) error {
	return writeCSV(w, scaleColumns, scaleRows(res))
}

func byProductsCSV(w io.Writer, exps []entities.ByProductExpectation) error {
	rows := make([][]string, 0, len(exps))
	for _, exp := range exps {
		actual := ""
		if exp.ActualQuantity.Valid {
			actual = exp.ActualQuantity.Decimal.String()
		}
		rows = append(rows, []string{
			exp.ItemID.String(),
			exp.ComponentCode,
			exp.YieldPercentage.String(),
			exp.ExpectedQuantity.String(),
			actual,
			exp.UOM,
			string(exp.Status),
		})
	}
	return writeCSV(w, []string{"item_id", "component_code", "yield_percentage", "expected_quantity", "actual_quantity", "uom", "status"}, rows)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	return cw.WriteAll(rows)
}

func bomsCSV(w io.Writer, boms []*entities.BOM) error {
	rows := make([][]string, 0, len(boms))
	for _, bom := range boms {
		yield := ""
		if bom.ExpectedYieldPercent.Valid {
			yield = bom.ExpectedYieldPercent.Decimal.String()
		}
		rows = append(rows, []string{
			bom.ID.String(),
			string(bom.ProductID),
			bom.Version,
			string(bom.Status),
			bom.OutputQty.String(),
			bom.OutputUOM,
			yield,
			strconv.Itoa(len(bom.Items)),
		})
	}
	return writeCSV(w, []string{"id", "product_id", "version", "status", "output_qty", "output_uom", "expected_yield_percent", "items"}, rows)
}
