package graph

import (
	"fmt"

	"github.com/gammazero/toposort"
	"github.com/google/uuid"
)

// ExecutionOrder returns task ids ordered so that every task comes after the
// tasks it depends on. Tasks without any edge are appended in input order.
func ExecutionOrder(nodes []Node) ([]uuid.UUID, error) {
	known := make(map[uuid.UUID]struct{}, len(nodes))
	for _, n := range nodes {
		known[n.ID] = struct{}{}
	}

	linked := make(map[uuid.UUID]struct{})
	edges := make([]toposort.Edge, 0)
	for _, n := range nodes {
		for _, dep := range n.Dependencies {
			if _, ok := known[dep]; !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnresolvedDependency, dep)
			}
			if dep == n.ID {
				return nil, fmt.Errorf("%w: task %s depends on itself", ErrCycle, n.ID)
			}
			edges = append(edges, toposort.Edge{dep, n.ID})
			linked[dep] = struct{}{}
			linked[n.ID] = struct{}{}
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCycle, err)
	}

	order := make([]uuid.UUID, 0, len(nodes))
	for _, v := range sorted {
		order = append(order, v.(uuid.UUID))
	}
	// toposort only sees nodes that appear in an edge
	for _, n := range nodes {
		if _, ok := linked[n.ID]; !ok {
			order = append(order, n.ID)
		}
	}
	return order, nil
}
