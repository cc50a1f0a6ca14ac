package repositories

import (
	"context"

	"github.com/vsinha/bomengine/pkg/domain/entities"
)

// ComponentRepository provides access to component master data
type ComponentRepository interface {
	GetComponent(ctx context.Context, id entities.ComponentID) (*entities.Component, error)
	GetAllComponents(ctx context.Context) ([]*entities.Component, error)
}
