package graph

import "errors"

var (
	// ErrUnresolvedDependency is returned when a dependency id cannot be
	// resolved within the user's task set during traversal.
	ErrUnresolvedDependency = errors.New("unresolved dependency")

	// ErrCycle is returned when an execution order is requested for a graph
	// that contains a cycle.
	ErrCycle = errors.New("dependency cycle")
)
