package explosion

import (
	"context"

	"github.com/vsinha/bomengine/pkg/application/services/loader"
	"github.com/vsinha/bomengine/pkg/domain/entities"
)

type mark uint8

const (
	unvisited mark = iota
	onPath
	done
)

type frame struct {
	product entities.ComponentID
	items   []entities.BOMItem
	next    int
}

// checkCycles runs an iterative depth-first search over every explodable
// component reachable from root. A component met again while still on the
// current branch closes a cycle. The explicit stack keeps arbitrarily deep
// graphs off the goroutine stack.
func checkCycles(ctx context.Context, session *loader.Session, root *entities.BOM) error {
	marks := map[entities.ComponentID]mark{root.ProductID: onPath}
	stack := []*frame{{product: root.ProductID, items: root.MaterialItems()}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next == len(top.items) {
			marks[top.product] = done
			stack = stack[:len(stack)-1]
			continue
		}

		component := top.items[top.next].Component
		top.next++

		switch marks[component.ID] {
		case onPath:
			return &entities.CircularReferenceError{Path: cyclePath(stack, component.ID)}
		case done:
			continue
		}

		if !component.Type.IsExplodable() {
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		sub, found, err := session.ActiveBOM(ctx, component.ID)
		if err != nil {
			return err
		}
		if !found {
			marks[component.ID] = done
			continue
		}

		marks[component.ID] = onPath
		stack = append(stack, &frame{product: component.ID, items: sub.MaterialItems()})
	}

	return nil
}

func cyclePath(stack []*frame, closing entities.ComponentID) []entities.ComponentID {
	path := make([]entities.ComponentID, 0, len(stack)+1)
	for _, f := range stack {
		path = append(path, f.product)
	}
	return append(path, closing)
}
