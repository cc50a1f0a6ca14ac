package entities

import (
	"fmt"
	"strings"
)

// ComponentID represents a unique product/material identifier
type ComponentID string

// ComponentType classifies a component for explosion purposes
type ComponentType int

const (
	Raw ComponentType = iota
	WIP
	SemiFinished
	Finished
	Packaging
)

// String method for ComponentType enum
func (t ComponentType) String() string {
	switch t {
	case Raw:
		return "raw"
	case WIP:
		return "wip"
	case SemiFinished:
		return "semi_finished"
	case Finished:
		return "finished"
	case Packaging:
		return "packaging"
	default:
		return "unknown"
	}
}

// IsExplodable reports whether a component of this type may own a BOM that
// gets exploded further. Raw and packaging components are always leaves.
func (t ComponentType) IsExplodable() bool {
	return t == WIP || t == SemiFinished
}

// ParseComponentType parses the lower-case wire name of a component type
func ParseComponentType(s string) (ComponentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raw":
		return Raw, nil
	case "wip":
		return WIP, nil
	case "semi_finished", "semi-finished":
		return SemiFinished, nil
	case "finished":
		return Finished, nil
	case "packaging":
		return Packaging, nil
	default:
		return Raw, fmt.Errorf("%w: unknown component type %q", ErrValidation, s)
	}
}

// MarshalText encodes the type by its wire name
func (t ComponentType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes the type from its wire name
func (t *ComponentType) UnmarshalText(text []byte) error {
	parsed, err := ParseComponentType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Component represents a product or material that can appear in a BOM
type Component struct {
	ID   ComponentID   `json:"id"`
	Code string        `json:"code"`
	Name string        `json:"name"`
	Type ComponentType `json:"type"`
}

// NewComponent creates a validated Component
func NewComponent(id ComponentID, code, name string, componentType ComponentType) (*Component, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: component id cannot be empty", ErrValidation)
	}
	if code == "" {
		return nil, fmt.Errorf("%w: component code cannot be empty", ErrValidation)
	}

	return &Component{
		ID:   id,
		Code: code,
		Name: name,
		Type: componentType,
	}, nil
}

// DisplayName returns the name, falling back to the code
func (c Component) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Code
}
