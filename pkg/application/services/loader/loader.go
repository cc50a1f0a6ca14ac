package loader

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vsinha/bomengine/pkg/domain/entities"
	"github.com/vsinha/bomengine/pkg/domain/repositories"
)

// Loader fetches BOMs from the store and hands engines validated copies
type Loader struct {
	repo repositories.BOMRepository
}

// New creates a loader over a BOM repository
func New(repo repositories.BOMRepository) *Loader {
	return &Loader{repo: repo}
}

// Load returns the BOM with the given id or ErrBOMNotFound
func (l *Loader) Load(ctx context.Context, id uuid.UUID) (*entities.BOM, error) {
	const op = "loader.Load"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bom, err := l.repo.GetBOM(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := bom.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return bom, nil
}

// LoadActiveForProduct returns the active BOM producing the component or
// ErrNoActiveBOM
func (l *Loader) LoadActiveForProduct(ctx context.Context, productID entities.ComponentID) (*entities.BOM, error) {
	const op = "loader.LoadActiveForProduct"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bom, err := l.repo.GetActiveBOM(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := bom.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return bom, nil
}

// Session returns a memoizing view of the loader for a single engine call
func (l *Loader) Session() *Session {
	return &Session{
		loader: l,
		boms:   make(map[entities.ComponentID]*entities.BOM),
		misses: make(map[entities.ComponentID]error),
	}
}
