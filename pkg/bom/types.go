package bom

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomengine/pkg/application/services/orchestration"
	"github.com/vsinha/bomengine/pkg/domain/entities"
	"github.com/vsinha/bomengine/pkg/domain/services"
)

// Master data
type (
	Component     = entities.Component
	ComponentID   = entities.ComponentID
	ComponentType = entities.ComponentType
	BOM           = entities.BOM
	BOMItem       = entities.BOMItem
	BOMItemSpec   = entities.BOMItemSpec
	BOMStatus     = entities.BOMStatus
)

const (
	Raw          = entities.Raw
	WIP          = entities.WIP
	SemiFinished = entities.SemiFinished
	Finished     = entities.Finished
	Packaging    = entities.Packaging

	StatusDraft    = entities.StatusDraft
	StatusActive   = entities.StatusActive
	StatusArchived = entities.StatusArchived
)

// Engine results
type (
	ExplosionResult      = entities.ExplosionResult
	ScaleParams          = entities.ScaleParams
	ScaleResult          = entities.ScaleResult
	ByProductExpectation = entities.ByProductExpectation
	ByProductRecord      = entities.ByProductRecord
	YieldAnalysis        = entities.YieldAnalysis
	BOMComparison        = entities.BOMComparison
	ValidationResult     = services.ValidationResult
	RecordActualRequest  = orchestration.RecordActualRequest
	ByProductOutcome     = orchestration.ByProductOutcome
)

// Errors callers can match with errors.Is
var (
	ErrValidation             = entities.ErrValidation
	ErrBOMNotFound            = entities.ErrBOMNotFound
	ErrCircularReference      = entities.ErrCircularReference
	ErrConcurrentModification = entities.ErrConcurrentModification
	ErrInvalidYield           = entities.ErrInvalidYield
)

// NewComponent creates a validated component
func NewComponent(id ComponentID, code, name string, componentType ComponentType) (*Component, error) {
	return entities.NewComponent(id, code, name, componentType)
}

// NewBOMItem creates a validated BOM line from its row shape
func NewBOMItem(spec BOMItemSpec) (*BOMItem, error) {
	return entities.NewBOMItem(spec)
}

// NewBOM creates a validated draft BOM at version 1.0
func NewBOM(product ComponentID, outputQty decimal.Decimal, outputUOM string, items []BOMItem) (*BOM, error) {
	return entities.NewBOM(product, "1.0", outputQty, outputUOM, items)
}
