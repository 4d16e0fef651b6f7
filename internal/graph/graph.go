// Package graph detects dependency cycles over a single user's task set.
//
// Edges point from a task to the tasks it depends on. The engine never
// touches storage: callers hand it a snapshot through a Lookup.
package graph

import (
	"fmt"

	"github.com/google/uuid"
)

// Node is a task reduced to what the traversal needs.
type Node struct {
	ID           uuid.UUID
	Dependencies []uuid.UUID
}

// Lookup resolves a dependency id to its node within the same user's scope.
type Lookup func(id uuid.UUID) (Node, bool)

// IsCircular reports whether a depth-first walk from start returns to start.
//
// Revisiting any other node is a re-convergence (two branches sharing a
// downstream dependency) and does not count as a cycle.
func IsCircular(start Node, lookup Lookup) (bool, error) {
	if len(start.Dependencies) == 0 {
		return false, nil
	}

	visited := make(map[uuid.UUID]struct{})
	stack := []uuid.UUID{start.ID}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[id]; seen {
			if id == start.ID {
				return true, nil
			}
			continue
		}
		visited[id] = struct{}{}

		node := start
		if id != start.ID {
			var ok bool
			node, ok = lookup(id)
			if !ok {
				return false, fmt.Errorf("%w: %s", ErrUnresolvedDependency, id)
			}
		}

		// Reverse push keeps the first dependency on top of the stack.
		for i := len(node.Dependencies) - 1; i >= 0; i-- {
			stack = append(stack, node.Dependencies[i])
		}
	}

	return false, nil
}

// MapLookup builds a Lookup over an in-memory snapshot.
func MapLookup(nodes []Node) Lookup {
	index := make(map[uuid.UUID]Node, len(nodes))
	for _, n := range nodes {
		index[n.ID] = n
	}
	return func(id uuid.UUID) (Node, bool) {
		n, ok := index[id]
		return n, ok
	}
}

// Flags evaluates IsCircular for every node of the snapshot.
func Flags(nodes []Node) (map[uuid.UUID]bool, error) {
	lookup := MapLookup(nodes)
	flags := make(map[uuid.UUID]bool, len(nodes))
	for _, n := range nodes {
		circular, err := IsCircular(n, lookup)
		if err != nil {
			return nil, fmt.Errorf("check task %s: %w", n.ID, err)
		}
		flags[n.ID] = circular
	}
	return flags, nil
}
