package yieldanalysis

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomengine/pkg/application/services/byproduct"
	"github.com/vsinha/bomengine/pkg/domain/entities"
)

var (
	hundred = decimal.NewFromInt(100)

	// VarianceThreshold is the allowed gap, in percentage points, between
	// theoretical and expected yield before a warning is raised
	VarianceThreshold = decimal.NewFromInt(5)
)

// Analyzer computes theoretical yields of BOMs
type Analyzer struct {
	byProducts *byproduct.Engine
}

func NewAnalyzer(byProducts *byproduct.Engine) *Analyzer {
	return &Analyzer{byProducts: byProducts}
}

// Analyze compares everything a batch produces with everything it consumes.
// Inputs include scrap; outputs are the main output plus the by-products
// expected at that output.
func (a *Analyzer) Analyze(bom *entities.BOM) (*entities.YieldAnalysis, error) {
	const op = "yieldanalysis.Analyze"

	inputs := decimal.Zero
	for _, item := range bom.MaterialItems() {
		scrapFactor := decimal.NewFromInt(1).Add(item.Scrap().Div(hundred))
		inputs = inputs.Add(item.Quantity.Mul(scrapFactor))
	}

	expectations, err := a.byProducts.ExpectedQuantities(bom, bom.OutputQty)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	outputs := bom.OutputQty
	for _, exp := range expectations {
		outputs = outputs.Add(exp.ExpectedQuantity)
	}

	theoretical := decimal.Zero
	if inputs.IsPositive() {
		theoretical = outputs.Div(inputs).Mul(hundred).Round(2)
	}

	res := &entities.YieldAnalysis{
		BOMID:                   bom.ID,
		TheoreticalYieldPercent: theoretical,
		ExpectedYieldPercent:    bom.ExpectedYieldPercent,
		InputTotal:              inputs.Round(3),
		OutputTotal:             outputs.Round(3),
	}
	if bom.ExpectedYieldPercent.Valid {
		variance := theoretical.Sub(bom.ExpectedYieldPercent.Decimal).Round(2)
		res.VarianceFromExpected = decimal.NewNullDecimal(variance)
		res.VarianceWarning = variance.Abs().GreaterThan(VarianceThreshold)
	}
	return res, nil
}

// ValidateExpectedYield checks a configured BOM yield, which may be anywhere
// in [0,100]
func ValidateExpectedYield(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return fmt.Errorf("%w: expected yield must be in [0,100], got %s", entities.ErrInvalidYield, pct)
	}
	return nil
}
