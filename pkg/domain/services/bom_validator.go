package services

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/vsinha/bomengine/pkg/domain/entities"
)

// BOMValidator checks a whole BOM catalogue for structural problems that
// single-BOM validation cannot see
type BOMValidator struct{}

// NewBOMValidator creates a new BOM validator
func NewBOMValidator() *BOMValidator {
	return &BOMValidator{}
}

// DuplicateLine is a component that appears more than once with the same
// role on one BOM
type DuplicateLine struct {
	BOMID       uuid.UUID            `json:"bom_id"`
	ComponentID entities.ComponentID `json:"component_id"`
	Kind        entities.ItemKind    `json:"kind"`
	Count       int                  `json:"count"`
}

// ValidationResult contains the results of catalogue validation. Errors
// make explosion fail; warnings only degrade it.
type ValidationResult struct {
	HasCycles         bool                     `json:"has_cycles"`
	CyclePaths        [][]entities.ComponentID `json:"cycle_paths,omitempty"`
	DuplicateLines    []DuplicateLine          `json:"duplicate_lines,omitempty"`
	UnknownComponents []entities.ComponentID   `json:"unknown_components,omitempty"`
	MissingBOMs       []entities.ComponentID   `json:"missing_boms,omitempty"`
	Errors            []string                 `json:"errors,omitempty"`
	Warnings          []string                 `json:"warnings,omitempty"`
}

// Valid reports whether no errors were found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateCatalog validates components and BOMs together: every BOM on its
// own, at most one active BOM per product, no unknown components, and no
// cycles through the active BOMs
func (v *BOMValidator) ValidateCatalog(components []*entities.Component, boms []*entities.BOM) *ValidationResult {
	result := &ValidationResult{}

	known := make(map[entities.ComponentID]entities.Component, len(components))
	for _, dup := range v.duplicateComponents(components) {
		result.Errors = append(result.Errors, fmt.Sprintf("duplicate component id %s", dup))
	}
	for _, c := range components {
		known[c.ID] = *c
	}

	active := make(map[entities.ComponentID]*entities.BOM, len(boms))
	for _, bom := range boms {
		if err := bom.Validate(); err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
		if _, ok := known[bom.ProductID]; !ok {
			result.UnknownComponents = append(result.UnknownComponents, bom.ProductID)
		}
		for _, item := range bom.Items {
			if _, ok := known[item.Component.ID]; !ok {
				result.UnknownComponents = append(result.UnknownComponents, item.Component.ID)
			}
		}

		if bom.Status != entities.StatusActive {
			continue
		}
		if other, exists := active[bom.ProductID]; exists {
			result.Errors = append(result.Errors,
				fmt.Sprintf("product %s has more than one active bom: %s, %s", bom.ProductID, other.ID, bom.ID))
			continue
		}
		active[bom.ProductID] = bom
	}
	result.UnknownComponents = uniqueSorted(result.UnknownComponents)
	for _, id := range result.UnknownComponents {
		result.Errors = append(result.Errors, fmt.Sprintf("unknown component %s", id))
	}

	adjacencyMap := v.buildAdjacencyMap(active)

	result.CyclePaths = v.detectCycles(adjacencyMap)
	result.HasCycles = len(result.CyclePaths) > 0
	for _, cycle := range result.CyclePaths {
		result.Errors = append(result.Errors, fmt.Sprintf("BOM cycle detected: %v", cycle))
	}

	result.DuplicateLines = v.detectDuplicateLines(boms)
	for _, dup := range result.DuplicateLines {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("bom %s lists %s %d times as %s", dup.BOMID, dup.ComponentID, dup.Count, dup.Kind))
	}

	result.MissingBOMs = v.detectMissingBOMs(adjacencyMap, active)
	for _, id := range result.MissingBOMs {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("explodable component %s has no active bom and is treated as a leaf", id))
	}

	return result
}

// buildAdjacencyMap creates a map of product -> explodable material
// relationships over the active BOMs
func (v *BOMValidator) buildAdjacencyMap(active map[entities.ComponentID]*entities.BOM) map[entities.ComponentID][]entities.ComponentID {
	adjacencyMap := make(map[entities.ComponentID][]entities.ComponentID, len(active))

	for product, bom := range active {
		children := make([]entities.ComponentID, 0, len(bom.Items))
		seen := make(map[entities.ComponentID]bool)
		for _, item := range bom.MaterialItems() {
			if !item.Component.Type.IsExplodable() || seen[item.Component.ID] {
				continue
			}
			seen[item.Component.ID] = true
			children = append(children, item.Component.ID)
		}
		adjacencyMap[product] = children
	}

	return adjacencyMap
}

// detectCycles uses DFS to find cycles in the BOM structure. Products are
// visited in sorted order so the reported paths are stable.
func (v *BOMValidator) detectCycles(adjacencyMap map[entities.ComponentID][]entities.ComponentID) [][]entities.ComponentID {
	visited := make(map[entities.ComponentID]bool)
	recursionStack := make(map[entities.ComponentID]bool)
	var cycles [][]entities.ComponentID

	products := make([]entities.ComponentID, 0, len(adjacencyMap))
	for product := range adjacencyMap {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i] < products[j] })

	for _, product := range products {
		if !visited[product] {
			v.dfsDetectCycle(product, adjacencyMap, visited, recursionStack, nil, &cycles)
		}
	}

	return cycles
}

// dfsDetectCycle performs depth-first search to detect cycles
func (v *BOMValidator) dfsDetectCycle(
	current entities.ComponentID,
	adjacencyMap map[entities.ComponentID][]entities.ComponentID,
	visited map[entities.ComponentID]bool,
	recursionStack map[entities.ComponentID]bool,
	path []entities.ComponentID,
	cycles *[][]entities.ComponentID,
) {
	visited[current] = true
	recursionStack[current] = true
	path = append(path, current)

	for _, child := range adjacencyMap[current] {
		if !visited[child] {
			v.dfsDetectCycle(child, adjacencyMap, visited, recursionStack, path, cycles)
			continue
		}
		if !recursionStack[child] {
			continue
		}

		// Found a cycle - extract the cycle path
		for i, part := range path {
			if part == child {
				cycle := make([]entities.ComponentID, 0, len(path)-i+1)
				cycle = append(cycle, path[i:]...)
				cycle = append(cycle, child) // Close the cycle
				*cycles = append(*cycles, cycle)
				break
			}
		}
	}

	recursionStack[current] = false
}

// detectDuplicateLines finds components listed more than once with the same
// kind on one BOM
func (v *BOMValidator) detectDuplicateLines(boms []*entities.BOM) []DuplicateLine {
	var duplicates []DuplicateLine

	for _, bom := range boms {
		type key struct {
			component entities.ComponentID
			kind      entities.ItemKind
		}
		counts := make(map[key]int)
		var order []key
		for _, item := range bom.Items {
			k := key{item.Component.ID, item.Kind}
			if counts[k] == 0 {
				order = append(order, k)
			}
			counts[k]++
		}
		for _, k := range order {
			if counts[k] > 1 {
				duplicates = append(duplicates, DuplicateLine{
					BOMID:       bom.ID,
					ComponentID: k.component,
					Kind:        k.kind,
					Count:       counts[k],
				})
			}
		}
	}

	return duplicates
}

// detectMissingBOMs finds explodable components consumed by an active BOM
// that have no active BOM of their own
func (v *BOMValidator) detectMissingBOMs(
	adjacencyMap map[entities.ComponentID][]entities.ComponentID,
	active map[entities.ComponentID]*entities.BOM,
) []entities.ComponentID {
	var missing []entities.ComponentID
	for _, children := range adjacencyMap {
		for _, child := range children {
			if _, ok := active[child]; !ok {
				missing = append(missing, child)
			}
		}
	}
	return uniqueSorted(missing)
}

// duplicateComponents returns component ids that appear more than once
func (v *BOMValidator) duplicateComponents(components []*entities.Component) []entities.ComponentID {
	seen := make(map[entities.ComponentID]bool, len(components))
	var duplicates []entities.ComponentID

	for _, c := range components {
		if seen[c.ID] {
			duplicates = append(duplicates, c.ID)
		} else {
			seen[c.ID] = true
		}
	}

	return uniqueSorted(duplicates)
}

func uniqueSorted(ids []entities.ComponentID) []entities.ComponentID {
	if len(ids) == 0 {
		return nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
