package explosion

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomengine/pkg/application/services/loader"
	"github.com/vsinha/bomengine/pkg/domain/entities"
)

// emitter collects nodes depth-first into per-level buckets, so each level
// lists children in their parents' item order
type emitter struct {
	ctx      context.Context
	session  *loader.Session
	maxDepth int
	levels   [][]entities.ExplosionNode
}

// emit expands bom at level. parentCum is ignored at level 1, where the
// cumulative quantity is the item quantity itself. Recursion depth is
// bounded by maxDepth and the graph is known to be acyclic.
func (em *emitter) emit(level int, bom *entities.BOM, parentCum decimal.Decimal, path []entities.ComponentID) error {
	if err := em.ctx.Err(); err != nil {
		return err
	}
	if len(em.levels) < level {
		em.levels = append(em.levels, nil)
	}

	for _, item := range bom.MaterialItems() {
		cumulative := item.Quantity
		if level > 1 {
			cumulative = parentCum.Mul(item.Quantity).DivRound(bom.OutputQty, cumulativePrecision)
		}

		var sub *entities.BOM
		if item.Component.Type.IsExplodable() {
			found, ok, err := em.session.ActiveBOM(em.ctx, item.Component.ID)
			if err != nil {
				return err
			}
			if ok {
				sub = found
			}
		}

		nodePath := make([]entities.ComponentID, len(path)+1)
		copy(nodePath, path)
		nodePath[len(path)] = item.Component.ID

		em.levels[level-1] = append(em.levels[level-1], entities.ExplosionNode{
			Level:         level,
			ItemID:        item.ID,
			ComponentID:   item.Component.ID,
			ComponentCode: item.Component.Code,
			ComponentName: item.Component.Name,
			ComponentType: item.Component.Type,
			Quantity:      item.Quantity,
			CumulativeQty: cumulative,
			UOM:           item.UOM,
			ScrapPercent:  item.Scrap(),
			HasSubBOM:     sub != nil,
			Path:          nodePath,
		})

		if sub != nil && level < em.maxDepth {
			if err := em.emit(level+1, sub, cumulative, nodePath); err != nil {
				return err
			}
		}
	}
	return nil
}

func (em *emitter) result(root *entities.BOM) *entities.ExplosionResult {
	res := &entities.ExplosionResult{
		BOMID:       root.ID,
		ProductID:   root.ProductID,
		ProductCode: root.ProductCode,
		ProductName: root.ProductName,
		OutputQty:   root.OutputQty,
		OutputUOM:   root.OutputUOM,
		Levels:      make([]entities.ExplosionLevel, 0, len(em.levels)),
	}

	summaryIndex := make(map[entities.ComponentID]int)
	for i, nodes := range em.levels {
		if len(nodes) == 0 {
			continue
		}
		res.Levels = append(res.Levels, entities.ExplosionLevel{Level: i + 1, Items: nodes})
		res.TotalLevels = i + 1
		res.TotalItems += len(nodes)

		for _, node := range nodes {
			if node.ComponentType != entities.Raw {
				continue
			}
			if idx, ok := summaryIndex[node.ComponentID]; ok {
				res.RawMaterialsSummary[idx].TotalQty = res.RawMaterialsSummary[idx].TotalQty.Add(node.CumulativeQty)
				continue
			}
			summaryIndex[node.ComponentID] = len(res.RawMaterialsSummary)
			res.RawMaterialsSummary = append(res.RawMaterialsSummary, entities.RawMaterialSummary{
				ComponentID:   node.ComponentID,
				ComponentCode: node.ComponentCode,
				ComponentName: node.ComponentName,
				TotalQty:      node.CumulativeQty,
				UOM:           node.UOM,
			})
		}
	}

	if res.RawMaterialsSummary == nil {
		res.RawMaterialsSummary = []entities.RawMaterialSummary{}
	}
	return res
}
