package entities

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultRoundDecimals int32 = 3
	MaxRoundDecimals     int32 = 6
)

// ScaleParams selects either a target batch size or a direct factor
type ScaleParams struct {
	TargetBatchSize *decimal.Decimal `json:"target_batch_size,omitempty"`
	ScaleFactor     *decimal.Decimal `json:"scale_factor,omitempty"`
	// RoundDecimals defaults to 3 when nil
	RoundDecimals *int32 `json:"round_decimals,omitempty"`
	// PreviewOnly defaults to true when nil
	PreviewOnly *bool `json:"preview_only,omitempty"`
}

// IsPreview resolves the PreviewOnly default
func (p ScaleParams) IsPreview() bool {
	return p.PreviewOnly == nil || *p.PreviewOnly
}

// Decimals resolves the RoundDecimals default
func (p ScaleParams) Decimals() int32 {
	if p.RoundDecimals == nil {
		return DefaultRoundDecimals
	}
	return *p.RoundDecimals
}

// ScaledItem is one rescaled material line
type ScaledItem struct {
	ID               uuid.UUID       `json:"id"`
	ComponentID      ComponentID     `json:"component_id"`
	ComponentCode    string          `json:"component_code"`
	ComponentName    string          `json:"component_name"`
	OriginalQuantity decimal.Decimal `json:"original_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	UOM              string          `json:"uom"`
	ScrapPercent     decimal.Decimal `json:"scrap_percent"`
	Rounded          bool            `json:"rounded"`
}

// ScaleResult is the outcome of rescaling a BOM
type ScaleResult struct {
	BOMID             uuid.UUID       `json:"bom_id"`
	OriginalBatchSize decimal.Decimal `json:"original_batch_size"`
	NewBatchSize      decimal.Decimal `json:"new_batch_size"`
	ScaleFactor       decimal.Decimal `json:"scale_factor"`
	Items             []ScaledItem    `json:"items"`
	Warnings          []string        `json:"warnings"`
	Applied           bool            `json:"applied"`
}

// ScaleCommit is the all-or-nothing write of an applied scale result.
// ExpectedRowVersion is the version the result was computed from.
type ScaleCommit struct {
	BOMID              uuid.UUID
	ExpectedRowVersion int64
	NewOutputQty       decimal.Decimal
	Items              map[uuid.UUID]decimal.Decimal
}

// NewScaleCommit builds the commit for a computed result
func NewScaleCommit(bom *BOM, result *ScaleResult) ScaleCommit {
	items := make(map[uuid.UUID]decimal.Decimal, len(result.Items))
	for _, item := range result.Items {
		items[item.ID] = item.NewQuantity
	}
	return ScaleCommit{
		BOMID:              bom.ID,
		ExpectedRowVersion: bom.RowVersion,
		NewOutputQty:       result.NewBatchSize,
		Items:              items,
	}
}
