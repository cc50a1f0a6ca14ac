package entities

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// DefaultMaxDepth is used when an explosion does not name a depth
	DefaultMaxDepth = 10
	// MaxExplosionDepth is the deepest level an explosion may request
	MaxExplosionDepth = 10
)

// ExplosionNode is one component occurrence in an exploded BOM tree
type ExplosionNode struct {
	Level         int             `json:"level"`
	ItemID        uuid.UUID       `json:"item_id"`
	ComponentID   ComponentID     `json:"component_id"`
	ComponentCode string          `json:"component_code"`
	ComponentName string          `json:"component_name"`
	ComponentType ComponentType   `json:"component_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	CumulativeQty decimal.Decimal `json:"cumulative_qty"`
	UOM           string          `json:"uom"`
	ScrapPercent  decimal.Decimal `json:"scrap_percent"`
	HasSubBOM     bool            `json:"has_sub_bom"`
	// Path runs from the root product down to this node's component
	Path []ComponentID `json:"path"`
}

// ExplosionLevel groups the nodes emitted at one depth
type ExplosionLevel struct {
	Level int             `json:"level"`
	Items []ExplosionNode `json:"items"`
}

// RawMaterialSummary aggregates a raw material across all branches
type RawMaterialSummary struct {
	ComponentID   ComponentID     `json:"component_id"`
	ComponentCode string          `json:"component_code"`
	ComponentName string          `json:"component_name"`
	TotalQty      decimal.Decimal `json:"total_qty"`
	UOM           string          `json:"uom"`
}

// ExplosionResult is the flattened multi-level view of a BOM
type ExplosionResult struct {
	BOMID               uuid.UUID            `json:"bom_id"`
	ProductID           ComponentID          `json:"product_id"`
	ProductCode         string               `json:"product_code"`
	ProductName         string               `json:"product_name"`
	OutputQty           decimal.Decimal      `json:"output_qty"`
	OutputUOM           string               `json:"output_uom"`
	Levels              []ExplosionLevel     `json:"levels"`
	TotalLevels         int                  `json:"total_levels"`
	TotalItems          int                  `json:"total_items"`
	RawMaterialsSummary []RawMaterialSummary `json:"raw_materials_summary"`
}
