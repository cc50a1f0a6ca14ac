package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/vsinha/bomengine/pkg/domain/entities"
	"github.com/vsinha/bomengine/pkg/domain/services"
)

func explosionText(w io.Writer, res *entities.ExplosionResult, cfg Config) error {
	fmt.Fprintf(w, "📊 BOM Explosion: %s (%s)\n", res.ProductName, res.ProductCode)
	fmt.Fprintf(w, "======================\n\n")
	fmt.Fprintf(w, "Output: %s %s\n", res.OutputQty, res.OutputUOM)
	fmt.Fprintf(w, "Levels: %d\n", res.TotalLevels)
	fmt.Fprintf(w, "Items: %d\n", res.TotalItems)
	if cfg.Verbose {
		fmt.Fprintf(w, "Explosion Time: %v\n", cfg.Elapsed)
	}
	fmt.Fprintln(w)

	for _, level := range res.Levels {
		fmt.Fprintf(w, "🔽 Level %d:\n", level.Level)
		fmt.Fprintf(w, "%-20s %-14s %-14s %-6s %-8s %-4s\n",
			"Component", "Quantity", "Cumulative", "UOM", "Scrap%", "Sub")
		fmt.Fprintf(w, "%-20s %-14s %-14s %-6s %-8s %-4s\n",
			"--------------------", "--------------", "--------------", "------", "--------", "----")

		for _, node := range level.Items {
			sub := ""
			if node.HasSubBOM {
				sub = "yes"
			}
			fmt.Fprintf(w, "%-20s %-14s %-14s %-6s %-8s %-4s\n",
				strings.Repeat("  ", node.Level-1)+node.ComponentCode,
				node.Quantity.String(),
				node.CumulativeQty.String(),
				node.UOM,
				node.ScrapPercent.String(),
				sub)
		}
		fmt.Fprintln(w)
	}

	if len(res.RawMaterialsSummary) > 0 {
		fmt.Fprintf(w, "📦 Raw Materials:\n")
		fmt.Fprintf(w, "%-20s %-30s %-14s %-6s\n", "Code", "Name", "Total", "UOM")
		fmt.Fprintf(w, "%-20s %-30s %-14s %-6s\n",
			"--------------------", "------------------------------", "--------------", "------")
		for _, raw := range res.RawMaterialsSummary {
			fmt.Fprintf(w, "%-20s %-30s %-14s %-6s\n", raw.ComponentCode, raw.ComponentName, raw.TotalQty.String(), raw.UOM)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func scaleText(w io.Writer, res *entities.ScaleResult) error {
	status := "preview"
	if res.Applied {
		status = "applied"
	}

	fmt.Fprintf(w, "📐 BOM Scaling (%s)\n", status)
	fmt.Fprintf(w, "======================\n\n")
	fmt.Fprintf(w, "Batch Size: %s -> %s\n", res.OriginalBatchSize, res.NewBatchSize)
	fmt.Fprintf(w, "Scale Factor: %s\n\n", res.ScaleFactor)

	fmt.Fprintf(w, "%-20s %-14s %-14s %-6s %-8s\n", "Component", "Original", "New", "UOM", "Rounded")
	fmt.Fprintf(w, "%-20s %-14s %-14s %-6s %-8s\n",
		"--------------------", "--------------", "--------------", "------", "--------")
	for _, item := range res.Items {
		fmt.Fprintf(w, "%-20s %-14s %-14s %-6s %-8t\n",
			item.ComponentCode, item.OriginalQuantity.String(), item.NewQuantity.String(), item.UOM, item.Rounded)
	}
	fmt.Fprintln(w)

	if len(res.Warnings) > 0 {
		fmt.Fprintf(w, "⚠️  Warnings:\n")
		for _, warning := range res.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func byProductsText(w io.Writer, exps []entities.ByProductExpectation) error {
	if len(exps) == 0 {
		fmt.Fprintln(w, "No by-products defined")
		return nil
	}

	fmt.Fprintf(w, "♻️  By-products:\n")
	fmt.Fprintf(w, "%-20s %-8s %-14s %-14s %-6s %-10s\n", "Component", "Yield%", "Expected", "Actual", "UOM", "Status")
	fmt.Fprintf(w, "%-20s %-8s %-14s %-14s %-6s %-10s\n",
		"--------------------", "--------", "--------------", "--------------", "------", "----------")
	for _, exp := range exps {
		actual := "-"
		if exp.ActualQuantity.Valid {
			actual = exp.ActualQuantity.Decimal.String()
		}
		fmt.Fprintf(w, "%-20s %-8s %-14s %-14s %-6s %-10s\n",
			exp.ComponentCode, exp.YieldPercentage.String(), exp.ExpectedQuantity.String(), actual, exp.UOM, exp.Status)
	}
	fmt.Fprintln(w)
	return nil
}

func yieldText(w io.Writer, res *entities.YieldAnalysis) error {
	fmt.Fprintf(w, "🧪 Yield Analysis\n")
	fmt.Fprintf(w, "======================\n\n")
	fmt.Fprintf(w, "Inputs: %s\n", res.InputTotal)
	fmt.Fprintf(w, "Outputs: %s\n", res.OutputTotal)
	fmt.Fprintf(w, "Theoretical Yield: %s%%\n", res.TheoreticalYieldPercent)
	if res.ExpectedYieldPercent.Valid {
		fmt.Fprintf(w, "Expected Yield: %s%%\n", res.ExpectedYieldPercent.Decimal)
	}
	if res.VarianceFromExpected.Valid {
		fmt.Fprintf(w, "Variance: %s\n", res.VarianceFromExpected.Decimal)
	}
	if res.VarianceWarning {
		fmt.Fprintf(w, "⚠️  Theoretical yield differs from the expected yield by more than 5 points\n")
	}
	return nil
}

func comparisonText(w io.Writer, res *entities.BOMComparison) error {
	fmt.Fprintf(w, "🔍 BOM Comparison: %s -> %s\n", res.VersionA, res.VersionB)
	fmt.Fprintf(w, "======================\n\n")
	fmt.Fprintf(w, "Items: %d -> %d\n", res.Summary.TotalItemsA, res.Summary.TotalItemsB)
	fmt.Fprintf(w, "Added: %d  Removed: %d  Modified: %d\n", res.Summary.Added, res.Summary.Removed, res.Summary.Modified)
	fmt.Fprintf(w, "Weight Change: %s (%s%%)\n\n", res.Summary.WeightChange, res.Summary.WeightChangePercent)

	for _, item := range res.Added {
		fmt.Fprintf(w, "+ %-20s %s %s\n", item.Component.Code, item.Quantity, item.UOM)
	}
	for _, item := range res.Removed {
		fmt.Fprintf(w, "- %-20s %s %s\n", item.Component.Code, item.Quantity, item.UOM)
	}
	for _, change := range res.Modified {
		pct := ""
		if change.ChangePercent.Valid {
			pct = fmt.Sprintf(" (%s%%)", change.ChangePercent.Decimal)
		}
		fmt.Fprintf(w, "~ %-20s %s: %s -> %s%s\n", change.ComponentCode, change.Field, change.OldValue, change.NewValue, pct)
	}
	return nil
}

func bomsText(w io.Writer, boms []*entities.BOM) error {
	fmt.Fprintf(w, "📋 BOMs: %d\n\n", len(boms))
	fmt.Fprintf(w, "%-36s %-16s %-8s %-9s %-12s %-6s %-6s\n",
		"ID", "Product", "Version", "Status", "Output", "UOM", "Items")
	fmt.Fprintf(w, "%-36s %-16s %-8s %-9s %-12s %-6s %-6s\n",
		"------------------------------------", "----------------", "--------", "---------", "------------", "------", "------")
	for _, bom := range boms {
		product := bom.ProductCode
		if product == "" {
			product = string(bom.ProductID)
		}
		fmt.Fprintf(w, "%-36s %-16s %-8s %-9s %-12s %-6s %-6d\n",
			bom.ID, product, bom.Version, bom.Status, bom.OutputQty.String(), bom.OutputUOM, len(bom.Items))
	}
	return nil
}

func historyText(w io.Writer, records []entities.ByProductRecord) error {
	fmt.Fprintf(w, "🧾 By-Product Records: %d\n\n", len(records))
	if len(records) == 0 {
		return nil
	}
	fmt.Fprintf(w, "%-20s %-20s %-12s %-12s %-6s\n", "Recorded", "Batch", "Expected", "Actual", "UOM")
	fmt.Fprintf(w, "%-20s %-20s %-12s %-12s %-6s\n",
		"--------------------", "--------------------", "------------", "------------", "------")
	for _, rec := range records {
		fmt.Fprintf(w, "%-20s %-20s %-12s %-12s %-6s\n",
			rec.RecordedAt.Format("2006-01-02 15:04:05"), rec.BatchNumber,
			rec.ExpectedQuantity.String(), rec.ActualQuantity.String(), rec.UOM)
	}
	return nil
}

func validationText(w io.Writer, res *services.ValidationResult) error {
	if res.Valid() {
		fmt.Fprintf(w, "✅ Catalog is valid\n")
	} else {
		fmt.Fprintf(w, "❌ Catalog has %d error(s)\n", len(res.Errors))
		for _, msg := range res.Errors {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintf(w, "⚠️  %d warning(s)\n", len(res.Warnings))
		for _, msg := range res.Warnings {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
	}
	return nil
}
