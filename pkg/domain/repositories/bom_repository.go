package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vsinha/bomengine/pkg/domain/entities"
)

// BOMRepository provides read access to Bill of Materials data
type BOMRepository interface {
	// GetBOM returns a copy of the BOM with its items in sequence order,
	// or ErrBOMNotFound.
	GetBOM(ctx context.Context, id uuid.UUID) (*entities.BOM, error)

	// GetActiveBOM returns the single active BOM producing the given
	// component, or ErrNoActiveBOM.
	GetActiveBOM(ctx context.Context, productID entities.ComponentID) (*entities.BOM, error)

	ListBOMs(ctx context.Context) ([]*entities.BOM, error)

	// ListByProductRecords returns the recorded actuals of a BOM, oldest first
	ListByProductRecords(ctx context.Context, bomID uuid.UUID) ([]entities.ByProductRecord, error)
}

// BOMWriter persists changes to BOMs. Every method is atomic: a failed call
// leaves the stored BOM untouched.
type BOMWriter interface {
	SaveBOM(ctx context.Context, bom *entities.BOM) error

	// ApplyScale commits a scale result. A stored row version that differs
	// from commit.ExpectedRowVersion fails with ErrConcurrentModification.
	ApplyScale(ctx context.Context, commit entities.ScaleCommit) error

	// RecordByProductActual stores an operator-entered by-product output.
	// The BOM and by-product line must exist.
	RecordByProductActual(ctx context.Context, record entities.ByProductRecord) error
	UpdateExpectedYield(ctx context.Context, bomID uuid.UUID, pct decimal.Decimal) error
}
