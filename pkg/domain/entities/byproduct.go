package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ByProductStatus tracks whether an operator has recorded the actual output
type ByProductStatus string

const (
	ByProductPending  ByProductStatus = "pending"
	ByProductRecorded ByProductStatus = "recorded"
)

// YieldIndicator grades a realized yield
type YieldIndicator string

const (
	YieldGreen  YieldIndicator = "green"
	YieldYellow YieldIndicator = "yellow"
	YieldRed    YieldIndicator = "red"
)

// ByProductExpectation is the expected output of one by-product line
type ByProductExpectation struct {
	BOMID            uuid.UUID           `json:"bom_id"`
	ItemID           uuid.UUID           `json:"item_id"`
	ComponentID      ComponentID         `json:"component_id"`
	ComponentCode    string              `json:"component_code"`
	ComponentName    string              `json:"component_name"`
	YieldPercentage  decimal.Decimal     `json:"yield_percentage"`
	ExpectedQuantity decimal.Decimal     `json:"expected_quantity"`
	ActualQuantity   decimal.NullDecimal `json:"actual_quantity"`
	UOM              string              `json:"uom"`
	Status           ByProductStatus     `json:"status"`
}

// Variance returns actual minus expected, or false while pending
func (e ByProductExpectation) Variance() (decimal.Decimal, bool) {
	if !e.ActualQuantity.Valid {
		return decimal.Zero, false
	}
	return e.ActualQuantity.Decimal.Sub(e.ExpectedQuantity), true
}

// ByProductRecord is a persisted actual by-product output
type ByProductRecord struct {
	ID               uuid.UUID       `json:"id"`
	BOMID            uuid.UUID       `json:"bom_id"`
	ItemID           uuid.UUID       `json:"item_id"`
	BatchNumber      string          `json:"batch_number,omitempty"`
	ExpectedQuantity decimal.Decimal `json:"expected_quantity"`
	ActualQuantity   decimal.Decimal `json:"actual_quantity"`
	UOM              string          `json:"uom"`
	RecordedAt       time.Time       `json:"recorded_at"`
}

// NewByProductRecord captures a recorded expectation for persistence
func NewByProductRecord(exp ByProductExpectation, batchNumber string, at time.Time) (*ByProductRecord, error) {
	if !exp.ActualQuantity.Valid {
		return nil, fmt.Errorf("%w: by-product %s has no actual quantity", ErrInvalidQuantity, exp.ComponentCode)
	}
	return &ByProductRecord{
		ID:               uuid.New(),
		BOMID:            exp.BOMID,
		ItemID:           exp.ItemID,
		BatchNumber:      batchNumber,
		ExpectedQuantity: exp.ExpectedQuantity,
		ActualQuantity:   exp.ActualQuantity.Decimal,
		UOM:              exp.UOM,
		RecordedAt:       at.UTC(),
	}, nil
}
