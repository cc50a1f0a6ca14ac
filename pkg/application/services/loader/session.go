package loader

import (
	"context"
	"errors"

	"github.com/vsinha/bomengine/pkg/domain/entities"
)

// Session caches active-BOM lookups by product id. A product whose lookup
// failed with ErrNoActiveBOM is remembered as a leaf. Other errors are not
// cached. A Session is not safe for concurrent use.
type Session struct {
	loader *Loader
	boms   map[entities.ComponentID]*entities.BOM
	misses map[entities.ComponentID]error
	loads  int
}

// ActiveBOM returns the active BOM for productID. found is false when the
// product has no active BOM.
func (s *Session) ActiveBOM(ctx context.Context, productID entities.ComponentID) (bom *entities.BOM, found bool, err error) {
	if bom, ok := s.boms[productID]; ok {
		return bom, true, nil
	}
	if _, ok := s.misses[productID]; ok {
		return nil, false, nil
	}

	s.loads++
	bom, err = s.loader.LoadActiveForProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, entities.ErrNoActiveBOM) {
			s.misses[productID] = err
			return nil, false, nil
		}
		return nil, false, err
	}

	s.boms[productID] = bom
	return bom, true, nil
}

// Loads returns how many store round trips the session has made
func (s *Session) Loads() int {
	return s.loads
}
