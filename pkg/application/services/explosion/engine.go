package explosion

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomengine/pkg/application/services/loader"
	"github.com/vsinha/bomengine/pkg/domain/entities"
)

// cumulativePrecision is the number of decimal places kept when dividing a
// cumulative quantity by a sub-BOM output quantity
const cumulativePrecision = 16

// Options controls a single explosion
type Options struct {
	// MaxDepth bounds the emitted levels. Zero selects the default.
	MaxDepth int
}

func (o Options) maxDepth() (int, error) {
	if o.MaxDepth == 0 {
		return entities.DefaultMaxDepth, nil
	}
	if o.MaxDepth < 1 || o.MaxDepth > entities.MaxExplosionDepth {
		return 0, fmt.Errorf("%w: max depth must be in [1,%d], got %d",
			entities.ErrInvalidParameter, entities.MaxExplosionDepth, o.MaxDepth)
	}
	return o.MaxDepth, nil
}

// Engine expands a BOM into a level-by-level tree of components
type Engine struct {
	loader *loader.Loader
}

// NewEngine creates an explosion engine resolving sub-BOMs through l
func NewEngine(l *loader.Loader) *Engine {
	return &Engine{loader: l}
}

// Explode walks root and every active sub-BOM reachable through wip and
// semi-finished components. The whole reachable graph is checked for cycles
// before any node is emitted, so a cycle fails the call even when it lies
// below MaxDepth. Sub-BOMs are loaded once per product.
func (e *Engine) Explode(ctx context.Context, root *entities.BOM, opts Options) (*entities.ExplosionResult, error) {
	const op = "explosion.Explode"

	maxDepth, err := opts.maxDepth()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := root.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	session := e.loader.Session()
	if err := checkCycles(ctx, session, root); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	em := &emitter{
		ctx:      ctx,
		session:  session,
		maxDepth: maxDepth,
		levels:   make([][]entities.ExplosionNode, 0, maxDepth),
	}
	if err := em.emit(1, root, decimal.Zero, []entities.ComponentID{root.ProductID}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return em.result(root), nil
}
