package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomengine/pkg/bom"
)

func main() {
	ctx := context.Background()

	engine := bom.NewEngine()

	// Set up a two-level bakery recipe
	bread, err := setupBakery(ctx, engine)
	if err != nil {
		fmt.Printf("❌ Setup failed: %v\n", err)
		return
	}

	fmt.Println("🍞 Exploding bread recipe...")
	explosion, err := engine.Explode(ctx, bread.ID, 0)
	if err != nil {
		fmt.Printf("❌ Explosion failed: %v\n", err)
		return
	}

	for _, level := range explosion.Levels {
		fmt.Printf("🔽 Level %d:\n", level.Level)
		for _, node := range level.Items {
			fmt.Printf("  %-8s %10s %s\n", node.ComponentCode, node.CumulativeQty.StringFixed(3), node.UOM)
		}
	}
	fmt.Println()

	fmt.Println("📦 Raw Materials:")
	for _, raw := range explosion.RawMaterialsSummary {
		fmt.Printf("  %-8s %10s %s\n", raw.ComponentCode, raw.TotalQty.StringFixed(3), raw.UOM)
	}
	fmt.Println()

	// Preview a larger batch
	target := decimal.NewFromInt(250)
	scaled, err := engine.Scale(ctx, bread.ID, bom.ScaleParams{TargetBatchSize: &target})
	if err != nil {
		fmt.Printf("❌ Scaling failed: %v\n", err)
		return
	}
	fmt.Printf("📐 Scaled %s -> %s (factor %s):\n",
		scaled.OriginalBatchSize, scaled.NewBatchSize, scaled.ScaleFactor)
	for _, item := range scaled.Items {
		fmt.Printf("  %-8s %10s -> %10s %s\n",
			item.ComponentCode, item.OriginalQuantity, item.NewQuantity, item.UOM)
	}
	fmt.Println()

	// Report a bran output for a 100 kg batch
	byProducts, err := engine.ExpectedByProducts(ctx, bread.ID, decimal.NewFromInt(100))
	if err != nil {
		fmt.Printf("❌ By-product lookup failed: %v\n", err)
		return
	}
	for _, exp := range byProducts {
		outcome, err := engine.RecordByProductActual(ctx, bread.ID, exp.ItemID, bom.RecordActualRequest{
			RealizedMainOutputQty: decimal.NewFromInt(100),
			ActualQuantity:        decimal.NewFromInt(13),
			MainBatch:             "BATCH-001",
		})
		if err != nil {
			fmt.Printf("❌ Recording failed: %v\n", err)
			return
		}
		fmt.Printf("🌾 %s: expected %s, actual %s, yield %s%% (%s), batch %s\n",
			exp.ComponentCode, exp.ExpectedQuantity, outcome.Record.ActualQuantity,
			outcome.YieldPercent, outcome.Indicator, outcome.Record.BatchNumber)
	}

	yield, err := engine.Yield(ctx, bread.ID)
	if err != nil {
		fmt.Printf("❌ Yield analysis failed: %v\n", err)
		return
	}
	fmt.Printf("📈 Theoretical yield: %s%%\n\n", yield.TheoreticalYieldPercent)

	fmt.Println("✅ BOM analysis complete!")
}

func setupBakery(ctx context.Context, engine *bom.Engine) (*bom.BOM, error) {
	components := map[string]bom.ComponentType{
		"BREAD": bom.Finished,
		"DOUGH": bom.SemiFinished,
		"FLOUR": bom.Raw,
		"WATER": bom.Raw,
		"YEAST": bom.Raw,
		"SALT":  bom.Raw,
		"BAG":   bom.Packaging,
		"BRAN":  bom.Raw,
	}
	registered := make(map[string]*bom.Component, len(components))
	for id, ct := range components {
		c, err := bom.NewComponent(bom.ComponentID(id), id, id, ct)
		if err != nil {
			return nil, err
		}
		registered[id] = c
		if err := engine.AddComponents(c); err != nil {
			return nil, err
		}
	}

	material := func(id, qty, uom string, seq int) bom.BOMItemSpec {
		return bom.BOMItemSpec{
			Component: *registered[id],
			Quantity:  decimal.RequireFromString(qty),
			UOM:       uom,
			Sequence:  seq,
		}
	}

	dough, err := newActiveBOM("DOUGH", "1", []bom.BOMItemSpec{
		material("FLOUR", "0.6", "kg", 1),
		material("WATER", "0.38", "kg", 2),
		material("YEAST", "0.02", "kg", 3),
	})
	if err != nil {
		return nil, err
	}

	bran := bom.BOMItemSpec{
		Component:       *registered["BRAN"],
		UOM:             "kg",
		IsByProduct:     true,
		YieldPercentage: decimal.NewNullDecimal(decimal.NewFromInt(15)),
		Sequence:        4,
	}
	bread, err := newActiveBOM("BREAD", "100", []bom.BOMItemSpec{
		material("DOUGH", "85", "kg", 1),
		material("SALT", "1.5", "kg", 2),
		material("BAG", "100", "ea", 3),
		bran,
	})
	if err != nil {
		return nil, err
	}

	for _, b := range []*bom.BOM{dough, bread} {
		if err := engine.AddBOM(ctx, b); err != nil {
			return nil, err
		}
	}
	return bread, nil
}

func newActiveBOM(product, outputQty string, specs []bom.BOMItemSpec) (*bom.BOM, error) {
	items := make([]bom.BOMItem, 0, len(specs))
	for _, spec := range specs {
		item, err := bom.NewBOMItem(spec)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	b, err := bom.NewBOM(bom.ComponentID(product), decimal.RequireFromString(outputQty), "kg", items)
	if err != nil {
		return nil, err
	}
	b.Status = bom.StatusActive
	return b, nil
}
