package graph_test

import (
	"testing"

	"taskflow/internal/graph"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func position(order []uuid.UUID, id uuid.UUID) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}

func TestExecutionOrder_DependenciesFirst(t *testing.T) {
	v := ids(5)
	a, b, c, d, lone := v[0], v[1], v[2], v[3], v[4]
	nodes := []graph.Node{
		node(a, b, c),
		node(b, d),
		node(c, d),
		node(d),
		node(lone),
	}

	order, err := graph.ExecutionOrder(nodes)

	require.NoError(t, err)
	require.Len(t, order, 5)
	assert.Less(t, position(order, d), position(order, b))
	assert.Less(t, position(order, d), position(order, c))
	assert.Less(t, position(order, b), position(order, a))
	assert.Less(t, position(order, c), position(order, a))
	assert.Equal(t, lone, order[4])
}

func TestExecutionOrder_Cycle(t *testing.T) {
	v := ids(3)
	nodes := []graph.Node{
		node(v[0], v[1]),
		node(v[1], v[2]),
		node(v[2], v[0]),
	}

	_, err := graph.ExecutionOrder(nodes)

	assert.ErrorIs(t, err, graph.ErrCycle)
}

func TestExecutionOrder_SelfLoop(t *testing.T) {
	id := uuid.New()

	_, err := graph.ExecutionOrder([]graph.Node{node(id, id)})

	assert.ErrorIs(t, err, graph.ErrCycle)
}

func TestExecutionOrder_Unresolved(t *testing.T) {
	_, err := graph.ExecutionOrder([]graph.Node{node(uuid.New(), uuid.New())})

	assert.ErrorIs(t, err, graph.ErrUnresolvedDependency)
}

func TestExecutionOrder_Empty(t *testing.T) {
	order, err := graph.ExecutionOrder(nil)

	require.NoError(t, err)
	assert.Empty(t, order)
}
