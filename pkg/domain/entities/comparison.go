package entities

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemChange describes one field that differs between two versions
type ItemChange struct {
	ItemID        uuid.UUID           `json:"item_id"`
	ComponentID   ComponentID         `json:"component_id"`
	ComponentCode string              `json:"component_code"`
	Field         string              `json:"field"`
	OldValue      string              `json:"old_value"`
	NewValue      string              `json:"new_value"`
	ChangePercent decimal.NullDecimal `json:"change_percent"`
}

// ComparisonSummary holds the counts of a version comparison
type ComparisonSummary struct {
	TotalItemsA         int             `json:"total_items_a"`
	TotalItemsB         int             `json:"total_items_b"`
	Added               int             `json:"added"`
	Removed             int             `json:"removed"`
	Modified            int             `json:"modified"`
	WeightChange        decimal.Decimal `json:"weight_change"`
	WeightChangePercent decimal.Decimal `json:"weight_change_percent"`
}

// BOMComparison is the diff between two versions of one product's BOM
type BOMComparison struct {
	BOMA     uuid.UUID         `json:"bom_a"`
	BOMB     uuid.UUID         `json:"bom_b"`
	VersionA string            `json:"version_a"`
	VersionB string            `json:"version_b"`
	Added    []BOMItem         `json:"added"`
	Removed  []BOMItem         `json:"removed"`
	Modified []ItemChange      `json:"modified"`
	Summary  ComparisonSummary `json:"summary"`
}
