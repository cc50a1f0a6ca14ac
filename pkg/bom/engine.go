// Package bom embeds the BOM engine in another program: components and BOMs
// are held in memory and every engine operation is available on Engine.
package bom

import (
	"context"
	"fmt"

	"github.com/vsinha/bomengine/pkg/application/services/orchestration"
	"github.com/vsinha/bomengine/pkg/domain/services"
	"github.com/vsinha/bomengine/pkg/infrastructure/events"
	"github.com/vsinha/bomengine/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/bomengine/pkg/infrastructure/repositories/memory"
)

// Engine runs explosion, scaling and by-product tracking over an in-memory
// BOM catalogue
type Engine struct {
	*orchestration.BOMService

	components *memory.ComponentRepository
	boms       *memory.BOMRepository
	events     *events.InMemoryEventStore
	validator  *services.BOMValidator
}

// NewEngine creates an engine with an empty catalogue
func NewEngine() *Engine {
	components := memory.NewComponentRepository(64)
	boms := memory.NewBOMRepository(16)
	eventStore := events.NewInMemoryEventStore()

	return &Engine{
		BOMService: orchestration.NewBOMService(boms, boms, eventStore),
		components: components,
		boms:       boms,
		events:     eventStore,
		validator:  services.NewBOMValidator(),
	}
}

// LoadScenario creates an engine holding a CSV scenario directory
func LoadScenario(ctx context.Context, dir string) (*Engine, error) {
	scenario, err := csv.NewLoader().LoadScenario(dir)
	if err != nil {
		return nil, err
	}

	e := NewEngine()
	if err := e.AddComponents(scenario.Components...); err != nil {
		return nil, err
	}
	for _, b := range scenario.BOMs {
		if err := e.AddBOM(ctx, b); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// AddComponents registers components, replacing any with the same id
func (e *Engine) AddComponents(components ...*Component) error {
	return e.components.LoadComponents(components)
}

// AddBOM stores a BOM. Every component it references must be registered.
func (e *Engine) AddBOM(ctx context.Context, b *BOM) error {
	if _, err := e.components.GetComponent(ctx, b.ProductID); err != nil {
		return fmt.Errorf("bom %s: %w", b.ID, err)
	}
	for _, item := range b.Items {
		if _, err := e.components.GetComponent(ctx, item.Component.ID); err != nil {
			return fmt.Errorf("bom %s: %w", b.ID, err)
		}
	}
	return e.boms.SaveBOM(ctx, b)
}

// Validate checks the whole catalogue for cycles and structural problems
func (e *Engine) Validate(ctx context.Context) (*ValidationResult, error) {
	components, err := e.components.GetAllComponents(ctx)
	if err != nil {
		return nil, err
	}
	boms, err := e.boms.ListBOMs(ctx)
	if err != nil {
		return nil, err
	}
	return e.validator.ValidateCatalog(components, boms), nil
}

// Save writes the catalogue as a CSV scenario directory
func (e *Engine) Save(ctx context.Context, dir string) error {
	components, err := e.components.GetAllComponents(ctx)
	if err != nil {
		return err
	}
	boms, err := e.boms.ListBOMs(ctx)
	if err != nil {
		return err
	}
	return csv.WriteScenario(dir, &csv.Scenario{Components: components, BOMs: boms})
}

// History returns the types of all changes applied so far, oldest first
func (e *Engine) History() ([]string, error) {
	e.events.Wait()
	all, err := e.events.ReadAllEvents(0)
	if err != nil {
		return nil, err
	}
	types := make([]string, 0, len(all))
	for _, ev := range all {
		types = append(types, ev.Type())
	}
	return types, nil
}
