package comparison

import (
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomengine/pkg/domain/entities"
)

var hundred = decimal.NewFromInt(100)

// Compare diffs two versions of the same product's BOM. Lines are matched
// by component over every non-output line; a is the older version.
func Compare(a, b *entities.BOM) (*entities.BOMComparison, error) {
	const op = "comparison.Compare"

	if a.ID == b.ID {
		return nil, fmt.Errorf("%s: %w", op, entities.ErrSameVersion)
	}
	if a.ProductID != b.ProductID {
		return nil, fmt.Errorf("%s: %w: %s vs %s", op, entities.ErrDifferentProducts, a.ProductID, b.ProductID)
	}

	itemsA := comparedItems(a)
	itemsB := comparedItems(b)
	byComponentA := lo.KeyBy(itemsA, func(i entities.BOMItem) entities.ComponentID { return i.Component.ID })
	byComponentB := lo.KeyBy(itemsB, func(i entities.BOMItem) entities.ComponentID { return i.Component.ID })

	res := &entities.BOMComparison{
		BOMA:     a.ID,
		BOMB:     b.ID,
		VersionA: a.Version,
		VersionB: b.Version,
		Added:    []entities.BOMItem{},
		Removed:  []entities.BOMItem{},
		Modified: []entities.ItemChange{},
	}

	for _, item := range itemsB {
		if _, ok := byComponentA[item.Component.ID]; !ok {
			res.Added = append(res.Added, item)
		}
	}
	for _, item := range itemsA {
		other, ok := byComponentB[item.Component.ID]
		if !ok {
			res.Removed = append(res.Removed, item)
			continue
		}
		res.Modified = append(res.Modified, diffItem(item, other)...)
	}

	weightA := totalQuantity(itemsA)
	weightB := totalQuantity(itemsB)
	change := weightB.Sub(weightA)
	changePct := decimal.Zero
	if !weightA.IsZero() {
		changePct = change.Div(weightA).Mul(hundred).Round(2)
	}

	res.Summary = entities.ComparisonSummary{
		TotalItemsA:         len(itemsA),
		TotalItemsB:         len(itemsB),
		Added:               len(res.Added),
		Removed:             len(res.Removed),
		Modified:            len(res.Modified),
		WeightChange:        change,
		WeightChangePercent: changePct,
	}
	return res, nil
}

func comparedItems(bom *entities.BOM) []entities.BOMItem {
	return lo.Filter(bom.Items, func(i entities.BOMItem, _ int) bool { return !i.IsOutput() })
}

func totalQuantity(items []entities.BOMItem) decimal.Decimal {
	return lo.Reduce(items, func(sum decimal.Decimal, i entities.BOMItem, _ int) decimal.Decimal {
		return sum.Add(i.Quantity)
	}, decimal.Zero)
}

func diffItem(a, b entities.BOMItem) []entities.ItemChange {
	var changes []entities.ItemChange
	change := func(field, oldValue, newValue string, pct decimal.NullDecimal) {
		changes = append(changes, entities.ItemChange{
			ItemID:        a.ID,
			ComponentID:   a.Component.ID,
			ComponentCode: a.Component.Code,
			Field:         field,
			OldValue:      oldValue,
			NewValue:      newValue,
			ChangePercent: pct,
		})
	}

	if !a.Quantity.Equal(b.Quantity) {
		change("quantity", a.Quantity.String(), b.Quantity.String(), percentChange(a.Quantity, b.Quantity))
	}
	if a.UOM != b.UOM {
		change("uom", a.UOM, b.UOM, decimal.NullDecimal{})
	}
	if !a.Scrap().Equal(b.Scrap()) {
		change("scrap_percent", a.Scrap().String(), b.Scrap().String(), percentChange(a.Scrap(), b.Scrap()))
	}
	if a.Sequence != b.Sequence {
		change("sequence", strconv.Itoa(a.Sequence), strconv.Itoa(b.Sequence), decimal.NullDecimal{})
	}
	return changes
}

func percentChange(from, to decimal.Decimal) decimal.NullDecimal {
	if from.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(to.Sub(from).Div(from).Mul(hundred).Round(2))
}
