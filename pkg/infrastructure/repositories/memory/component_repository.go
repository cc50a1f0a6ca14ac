package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsinha/bomengine/pkg/domain/entities"
	"github.com/vsinha/bomengine/pkg/domain/repositories"
)

// ComponentRepository provides in-memory component master data
type ComponentRepository struct {
	mu            sync.RWMutex
	components    []entities.Component
	componentsMap map[entities.ComponentID]int
}

// NewComponentRepository creates a new in-memory component repository
func NewComponentRepository(expectedComponents int) *ComponentRepository {
	return &ComponentRepository{
		components:    make([]entities.Component, 0, expectedComponents),
		componentsMap: make(map[entities.ComponentID]int, expectedComponents),
	}
}

// Verify interface compliance
var _ repositories.ComponentRepository = (*ComponentRepository)(nil)

// LoadComponents loads components into the repository, replacing any
// component with the same id
func (r *ComponentRepository) LoadComponents(components []*entities.Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range components {
		if c.ID == "" {
			return fmt.Errorf("%w: component id cannot be empty", entities.ErrValidation)
		}
		if index, exists := r.componentsMap[c.ID]; exists {
			r.components[index] = *c
			continue
		}
		r.componentsMap[c.ID] = len(r.components)
		r.components = append(r.components, *c)
	}
	return nil
}

// GetComponent returns master data for a component id
func (r *ComponentRepository) GetComponent(_ context.Context, id entities.ComponentID) (*entities.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.componentsMap[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrComponentNotFound, id)
	}
	c := r.components[index]
	return &c, nil
}

// GetAllComponents returns all components in load order
func (r *ComponentRepository) GetAllComponents(_ context.Context) ([]*entities.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	components := make([]*entities.Component, 0, len(r.components))
	for i := range r.components {
		c := r.components[i]
		components = append(components, &c)
	}
	return components, nil
}
