package entities

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation             = errors.New("validation error")          // 400
	ErrInvalidParameter       = errors.New("invalid parameter")         // 400
	ErrMissingScaleParam      = errors.New("missing scale parameter")   // 400
	ErrInvalidScale           = errors.New("invalid scale")             // 400
	ErrInvalidYield           = errors.New("invalid yield percentage")  // 422
	ErrInvalidQuantity        = errors.New("invalid quantity")          // 422
	ErrBOMNotFound            = errors.New("bom not found")             // 404
	ErrNoActiveBOM            = errors.New("no active bom for product") // 404
	ErrCircularReference      = errors.New("circular bom reference")    // 422
	ErrConcurrentModification = errors.New("concurrent modification")   // 409
	ErrItemNotFound           = errors.New("bom item not found")        // 404
	ErrComponentNotFound      = errors.New("component not found")       // 404
	ErrSameVersion            = errors.New("cannot compare a bom with itself")
	ErrDifferentProducts      = errors.New("boms belong to different products")
)

// CircularReferenceError carries the branch on which a cycle was found.
// The last element of Path is the component that closes the cycle.
type CircularReferenceError struct {
	Path []ComponentID
}

func (e *CircularReferenceError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = string(id)
	}
	return fmt.Sprintf("%s: %s", ErrCircularReference, strings.Join(parts, " -> "))
}

func (e *CircularReferenceError) Unwrap() error {
	return ErrCircularReference
}
