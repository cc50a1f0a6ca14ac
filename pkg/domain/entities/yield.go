package entities

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// YieldAnalysis compares a BOM's theoretical yield with the configured one
type YieldAnalysis struct {
	BOMID                   uuid.UUID           `json:"bom_id"`
	TheoreticalYieldPercent decimal.Decimal     `json:"theoretical_yield_percent"`
	ExpectedYieldPercent    decimal.NullDecimal `json:"expected_yield_percent"`
	InputTotal              decimal.Decimal     `json:"input_total"`
	OutputTotal             decimal.Decimal     `json:"output_total"`
	VarianceFromExpected    decimal.NullDecimal `json:"variance_from_expected"`
	VarianceWarning         bool                `json:"variance_warning"`
}
