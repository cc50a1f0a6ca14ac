package scaling

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomengine/pkg/domain/entities"
)

// warnThreshold flags quantities that rounding pushes near or to zero
var warnThreshold = decimal.New(1, -3)

// Engine rescales BOM quantities to a new batch size. It never writes.
type Engine struct{}

// NewEngine creates a scaling engine
func NewEngine() *Engine {
	return &Engine{}
}

// Scale computes a scaled copy of the BOM's material lines. The result is
// always returned with Applied false; committing it is the caller's job.
func (e *Engine) Scale(bom *entities.BOM, params entities.ScaleParams) (*entities.ScaleResult, error) {
	const op = "scaling.Scale"

	factor, newBatch, err := resolveFactor(bom, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	places := params.Decimals()
	if places < 0 || places > entities.MaxRoundDecimals {
		return nil, fmt.Errorf("%s: %w: round decimals must be in [0,%d], got %d",
			op, entities.ErrInvalidParameter, entities.MaxRoundDecimals, places)
	}

	materials := bom.MaterialItems()
	result := &entities.ScaleResult{
		BOMID:             bom.ID,
		OriginalBatchSize: bom.OutputQty,
		NewBatchSize:      newBatch,
		ScaleFactor:       factor,
		Items:             make([]entities.ScaledItem, 0, len(materials)),
		Warnings:          []string{},
	}

	for _, item := range materials {
		unrounded := item.Quantity.Mul(factor)
		rounded := unrounded.Round(places)

		result.Items = append(result.Items, entities.ScaledItem{
			ID:               item.ID,
			ComponentID:      item.Component.ID,
			ComponentCode:    item.Component.Code,
			ComponentName:    item.Component.Name,
			OriginalQuantity: item.Quantity,
			NewQuantity:      rounded,
			UOM:              item.UOM,
			ScrapPercent:     item.Scrap(),
			Rounded:          !rounded.Equal(unrounded),
		})

		if needsWarning(unrounded, rounded) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s (%s) rounded from %s to %s",
				item.Component.DisplayName(), item.Component.Code, unrounded.String(), rounded.StringFixed(places)))
		}
	}

	return result, nil
}

func resolveFactor(bom *entities.BOM, params entities.ScaleParams) (factor, newBatch decimal.Decimal, err error) {
	switch {
	case params.TargetBatchSize == nil && params.ScaleFactor == nil:
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: target batch size or scale factor is required", entities.ErrMissingScaleParam)
	case params.TargetBatchSize != nil && params.ScaleFactor != nil:
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: give either target batch size or scale factor, not both", entities.ErrInvalidParameter)
	case params.TargetBatchSize != nil:
		target := *params.TargetBatchSize
		if !target.IsPositive() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: target batch size must be positive, got %s", entities.ErrInvalidScale, target)
		}
		if !bom.OutputQty.IsPositive() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: bom output quantity must be positive", entities.ErrValidation)
		}
		return target.Div(bom.OutputQty), target, nil
	default:
		f := *params.ScaleFactor
		if !f.IsPositive() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: scale factor must be positive, got %s", entities.ErrInvalidScale, f)
		}
		return f, bom.OutputQty.Mul(f), nil
	}
}

// needsWarning reports a nonzero quantity changed by rounding that ends up,
// or started, below the warning threshold
func needsWarning(unrounded, rounded decimal.Decimal) bool {
	if unrounded.IsZero() || rounded.Equal(unrounded) {
		return false
	}
	return rounded.Abs().LessThan(warnThreshold) || unrounded.Abs().LessThan(warnThreshold)
}
