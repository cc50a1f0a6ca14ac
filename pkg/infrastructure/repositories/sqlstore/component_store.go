package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/vsinha/bomengine/pkg/domain/entities"
)

// SaveComponents upserts component master data
func (s *Store) SaveComponents(ctx context.Context, components []*entities.Component) error {
	const op = "sqlstore.SaveComponents"

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range components {
			if c.ID == "" {
				return fmt.Errorf("%w: component id cannot be empty", entities.ErrValidation)
			}
			_, err := exec(ctx, tx, s.sb.
				Insert("components").
				Columns("id", "code", "name", "type").
				Values(string(c.ID), c.Code, c.Name, c.Type.String()).
				Suffix("ON CONFLICT (id) DO UPDATE SET code = excluded.code, name = excluded.name, type = excluded.type"))
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetComponent returns master data for a component id
func (s *Store) GetComponent(ctx context.Context, id entities.ComponentID) (*entities.Component, error) {
	const op = "sqlstore.GetComponent"

	row, err := queryRow(ctx, s.db, s.sb.
		Select("id", "code", "name", "type").
		From("components").
		Where(sq.Eq{"id": string(id)}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c, err := scanComponent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: %s", op, entities.ErrComponentNotFound, id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// GetAllComponents returns all components ordered by id
func (s *Store) GetAllComponents(ctx context.Context) ([]*entities.Component, error) {
	const op = "sqlstore.GetAllComponents"

	rows, err := query(ctx, s.db, s.sb.
		Select("id", "code", "name", "type").
		From("components").
		OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var components []*entities.Component
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		components = append(components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return components, nil
}

func scanComponent(row scanner) (*entities.Component, error) {
	var id, code, name, componentType string
	if err := row.Scan(&id, &code, &name, &componentType); err != nil {
		return nil, err
	}

	ct, err := entities.ParseComponentType(componentType)
	if err != nil {
		return nil, err
	}
	return &entities.Component{
		ID:   entities.ComponentID(id),
		Code: code,
		Name: name,
		Type: ct,
	}, nil
}

// Import saves components first and then every BOM, the order the foreign
// keys require
func (s *Store) Import(ctx context.Context, components []*entities.Component, boms []*entities.BOM) error {
	if err := s.SaveComponents(ctx, components); err != nil {
		return err
	}
	for _, bom := range boms {
		if err := s.SaveBOM(ctx, bom); err != nil {
			return err
		}
	}
	return nil
}
