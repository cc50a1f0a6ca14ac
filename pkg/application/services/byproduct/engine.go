package byproduct

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomengine/pkg/domain/entities"
)

var (
	hundred        = decimal.NewFromInt(100)
	greenThreshold = decimal.NewFromInt(80)
	amberThreshold = decimal.NewFromInt(70)

	unsafeBatchChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

const (
	batchSeparator      = "-BP-"
	maxBatchNumberChars = 50
)

// Engine derives expected by-product outputs and reconciles actuals
type Engine struct{}

// NewEngine creates a by-product yield engine
func NewEngine() *Engine {
	return &Engine{}
}

// ExpectedQuantities returns one pending expectation per by-product line,
// in item order. Yields are re-validated rather than trusted.
func (e *Engine) ExpectedQuantities(bom *entities.BOM, realizedMainOutputQty decimal.Decimal) ([]entities.ByProductExpectation, error) {
	const op = "byproduct.ExpectedQuantities"

	if realizedMainOutputQty.IsNegative() {
		return nil, fmt.Errorf("%s: %w: realized output cannot be negative, got %s",
			op, entities.ErrInvalidQuantity, realizedMainOutputQty)
	}

	byProducts := bom.ByProducts()
	expectations := make([]entities.ByProductExpectation, 0, len(byProducts))
	for _, item := range byProducts {
		if !item.YieldPercentage.Valid {
			return nil, fmt.Errorf("%s: %w: by-product %s has no yield percentage",
				op, entities.ErrInvalidYield, item.Component.Code)
		}
		yield := item.YieldPercentage.Decimal
		if err := entities.ValidateYieldPercentage(yield); err != nil {
			return nil, fmt.Errorf("%s: by-product %s: %w", op, item.Component.Code, err)
		}

		expectations = append(expectations, entities.ByProductExpectation{
			BOMID:            bom.ID,
			ItemID:           item.ID,
			ComponentID:      item.Component.ID,
			ComponentCode:    item.Component.Code,
			ComponentName:    item.Component.Name,
			YieldPercentage:  yield,
			ExpectedQuantity: realizedMainOutputQty.Mul(yield).Div(hundred),
			UOM:              item.UOM,
			Status:           entities.ByProductPending,
		})
	}
	return expectations, nil
}

// RecordActual returns a copy of exp with the operator's actual output.
// Over- and under-yield are both accepted.
func (e *Engine) RecordActual(exp entities.ByProductExpectation, actualQuantity decimal.Decimal) (entities.ByProductExpectation, error) {
	const op = "byproduct.RecordActual"

	if actualQuantity.IsNegative() {
		return exp, fmt.Errorf("%s: %w: actual quantity cannot be negative, got %s",
			op, entities.ErrInvalidQuantity, actualQuantity)
	}

	recorded := exp
	recorded.ActualQuantity = decimal.NewNullDecimal(actualQuantity)
	recorded.Status = entities.ByProductRecorded
	return recorded, nil
}

// YieldPercent returns actual as a percentage of expected, to one decimal
// place. An expected quantity of zero yields zero.
func YieldPercent(actual, expected decimal.Decimal) decimal.Decimal {
	if expected.IsZero() {
		return decimal.Zero
	}
	return actual.Div(expected).Mul(hundred).Round(1)
}

// Indicator grades a yield percentage
func Indicator(pct decimal.Decimal) entities.YieldIndicator {
	switch {
	case pct.GreaterThanOrEqual(greenThreshold):
		return entities.YieldGreen
	case pct.GreaterThanOrEqual(amberThreshold):
		return entities.YieldYellow
	default:
		return entities.YieldRed
	}
}

// BatchNumber derives the by-product batch number "<main>-BP-<code>". Both
// parts are reduced to letters, digits, '_' and '-', and the main batch part
// is cut so the whole number fits in 50 characters.
func BatchNumber(mainBatch, componentCode string) (string, error) {
	const op = "byproduct.BatchNumber"

	mainBatch = unsafeBatchChars.ReplaceAllString(mainBatch, "")
	code := unsafeBatchChars.ReplaceAllString(componentCode, "")
	if mainBatch == "" || code == "" {
		return "", fmt.Errorf("%s: %w: main batch and component code are required", op, entities.ErrValidation)
	}

	suffix := batchSeparator + code
	if len(suffix) >= maxBatchNumberChars {
		suffix = suffix[:maxBatchNumberChars-1]
	}
	room := maxBatchNumberChars - len(suffix)
	if len(mainBatch) > room {
		mainBatch = mainBatch[:room]
	}
	return mainBatch + suffix, nil
}
