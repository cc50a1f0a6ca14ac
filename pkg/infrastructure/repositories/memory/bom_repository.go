package memory

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomengine/pkg/domain/entities"
	"github.com/vsinha/bomengine/pkg/domain/repositories"
)

// BOMRepository keeps BOMs in a slice with id and active-product indexes.
// Reads return clones so callers never share state with the store.
type BOMRepository struct {
	mu          sync.RWMutex
	boms        []entities.BOM
	bomIndex    map[uuid.UUID]int
	activeIndex map[entities.ComponentID]int
	records     map[uuid.UUID][]entities.ByProductRecord
}

// NewBOMRepository creates an in-memory BOM repository
func NewBOMRepository(expectedBOMs int) *BOMRepository {
	return &BOMRepository{
		boms:        make([]entities.BOM, 0, expectedBOMs),
		bomIndex:    make(map[uuid.UUID]int, expectedBOMs),
		activeIndex: make(map[entities.ComponentID]int, expectedBOMs),
		records:     make(map[uuid.UUID][]entities.ByProductRecord),
	}
}

// Verify interface compliance
var _ repositories.BOMRepository = (*BOMRepository)(nil)
var _ repositories.BOMWriter = (*BOMRepository)(nil)

// LoadBOMs saves every BOM, stopping at the first invalid one
func (r *BOMRepository) LoadBOMs(ctx context.Context, boms []*entities.BOM) error {
	for _, bom := range boms {
		if err := r.SaveBOM(ctx, bom); err != nil {
			return err
		}
	}
	return nil
}

// SaveBOM inserts or replaces a BOM. Items are kept in sequence order and
// the row version is bumped on every save.
func (r *BOMRepository) SaveBOM(_ context.Context, bom *entities.BOM) error {
	if err := bom.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if bom.Status == entities.StatusActive {
		if index, exists := r.activeIndex[bom.ProductID]; exists && r.boms[index].ID != bom.ID {
			return fmt.Errorf("%w: product %s already has active bom %s",
				entities.ErrValidation, bom.ProductID, r.boms[index].ID)
		}
	}

	stored := *bom.Clone()
	sort.SliceStable(stored.Items, func(i, j int) bool {
		return stored.Items[i].Sequence < stored.Items[j].Sequence
	})

	if index, exists := r.bomIndex[bom.ID]; exists {
		previous := r.boms[index]
		stored.RowVersion = previous.RowVersion + 1
		if previous.Status == entities.StatusActive && stored.Status != entities.StatusActive {
			delete(r.activeIndex, previous.ProductID)
		}
		r.boms[index] = stored
	} else {
		stored.RowVersion = 1
		index = len(r.boms)
		r.bomIndex[bom.ID] = index
		r.boms = append(r.boms, stored)
	}

	if stored.Status == entities.StatusActive {
		r.activeIndex[stored.ProductID] = r.bomIndex[stored.ID]
	}
	bom.RowVersion = stored.RowVersion
	return nil
}

// GetBOM returns a copy of the BOM with the given id
func (r *BOMRepository) GetBOM(_ context.Context, id uuid.UUID) (*entities.BOM, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.bomIndex[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrBOMNotFound, id)
	}
	return r.boms[index].Clone(), nil
}

// GetActiveBOM returns a copy of the active BOM producing productID
func (r *BOMRepository) GetActiveBOM(_ context.Context, productID entities.ComponentID) (*entities.BOM, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.activeIndex[productID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrNoActiveBOM, productID)
	}
	return r.boms[index].Clone(), nil
}

// ListBOMs returns copies of all BOMs in insertion order
func (r *BOMRepository) ListBOMs(_ context.Context) ([]*entities.BOM, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	boms := make([]*entities.BOM, 0, len(r.boms))
	for i := range r.boms {
		boms = append(boms, r.boms[i].Clone())
	}
	return boms, nil
}

// ApplyScale writes a scale result. Every item is checked before anything
// is written, so a failed commit leaves the BOM untouched.
func (r *BOMRepository) ApplyScale(_ context.Context, commit entities.ScaleCommit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, exists := r.bomIndex[commit.BOMID]
	if !exists {
		return fmt.Errorf("%w: %s", entities.ErrBOMNotFound, commit.BOMID)
	}

	current := &r.boms[index]
	if current.RowVersion != commit.ExpectedRowVersion {
		return fmt.Errorf("%w: bom %s is at version %d, expected %d",
			entities.ErrConcurrentModification, commit.BOMID, current.RowVersion, commit.ExpectedRowVersion)
	}

	updated := current.Clone()
	matched := 0
	for i := range updated.Items {
		if qty, ok := commit.Items[updated.Items[i].ID]; ok {
			updated.Items[i].Quantity = qty
			matched++
		}
	}
	if matched != len(commit.Items) {
		return fmt.Errorf("%w: scale commit references items not on bom %s", entities.ErrItemNotFound, commit.BOMID)
	}

	updated.OutputQty = commit.NewOutputQty
	if err := updated.Validate(); err != nil {
		return err
	}

	updated.RowVersion++
	r.boms[index] = *updated
	return nil
}

// RecordByProductActual appends an actual by-product output
func (r *BOMRepository) RecordByProductActual(_ context.Context, record entities.ByProductRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, exists := r.bomIndex[record.BOMID]
	if !exists {
		return fmt.Errorf("%w: %s", entities.ErrBOMNotFound, record.BOMID)
	}
	item, err := r.boms[index].FindItem(record.ItemID)
	if err != nil {
		return err
	}
	if !item.IsByProduct() {
		return fmt.Errorf("%w: item %s is not a by-product", entities.ErrValidation, record.ItemID)
	}

	r.records[record.BOMID] = append(r.records[record.BOMID], record)
	return nil
}

// ListByProductRecords returns the recorded actuals of a BOM, oldest first
func (r *BOMRepository) ListByProductRecords(_ context.Context, bomID uuid.UUID) ([]entities.ByProductRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.bomIndex[bomID]; !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrBOMNotFound, bomID)
	}
	records := make([]entities.ByProductRecord, len(r.records[bomID]))
	copy(records, r.records[bomID])
	return records, nil
}

// UpdateExpectedYield sets the configured yield of a BOM
func (r *BOMRepository) UpdateExpectedYield(_ context.Context, bomID uuid.UUID, pct decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, exists := r.bomIndex[bomID]
	if !exists {
		return fmt.Errorf("%w: %s", entities.ErrBOMNotFound, bomID)
	}
	r.boms[index].ExpectedYieldPercent = decimal.NewNullDecimal(pct)
	r.boms[index].RowVersion++
	return nil
}

// MemoryStats provides memory usage statistics
type MemoryStats struct {
	AllocBytes      uint64
	TotalAllocBytes uint64
	Mallocs         uint64
	Frees           uint64
	HeapObjects     uint64
}

// GetMemoryStats returns current memory usage statistics
func GetMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemoryStats{
		AllocBytes:      m.Alloc,
		TotalAllocBytes: m.TotalAlloc,
		Mallocs:         m.Mallocs,
		Frees:           m.Frees,
		HeapObjects:     m.HeapObjects,
	}
}

// FormatBytes formats bytes in human readable format
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
