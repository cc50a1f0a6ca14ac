package events

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomengine/pkg/domain/entities"
)

const (
	BOMScaledEvent            = "bom.scaled"
	ByProductRecordedEvent    = "byproduct.recorded"
	ExpectedYieldUpdatedEvent = "bom.yield.updated"
)

// BOMScaled is emitted after a scale result is committed
type BOMScaled struct {
	BOMID             uuid.UUID       `json:"bom_id"`
	OriginalBatchSize decimal.Decimal `json:"original_batch_size"`
	NewBatchSize      decimal.Decimal `json:"new_batch_size"`
	ScaleFactor       decimal.Decimal `json:"scale_factor"`
	ItemCount         int             `json:"item_count"`
	Warnings          []string        `json:"warnings,omitempty"`
}

// ByProductRecorded is emitted after an actual by-product output is stored
type ByProductRecorded struct {
	Record    entities.ByProductRecord `json:"record"`
	YieldPct  decimal.Decimal          `json:"yield_percent"`
	Indicator entities.YieldIndicator  `json:"indicator"`
}

// ExpectedYieldUpdated is emitted after a BOM's configured yield changes
type ExpectedYieldUpdated struct {
	BOMID         uuid.UUID       `json:"bom_id"`
	ExpectedYield decimal.Decimal `json:"expected_yield_percent"`
}

// StreamForBOM returns the stream id holding a BOM's events
func StreamForBOM(id uuid.UUID) string {
	return "bom-" + id.String()
}
