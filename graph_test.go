package anyvrp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func graphObservation(n int, base float64) *Observation {
	nodes := mat.NewDense(n, NodeFeatures, nil)
	for i := 0; i < n; i++ {
		nodes.Set(i, 0, base+float64(i))
	}
	edges := mat.NewDense(n*n, EdgeFeatures, nil)
	for i := 0; i < n*n; i++ {
		edges.Set(i, 0, base+float64(i))
	}
	return &Observation{Nodes: nodes, Edges: edges}
}

func TestFullEdgeIndex(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, FullEdgeIndex(2))
	assert.Empty(t, FullEdgeIndex(0))
}

func TestMakeStaticBatch(t *testing.T) {
	obs := []*Observation{graphObservation(2, 100), graphObservation(3, 200)}
	batch, err := MakeStaticBatch(obs)
	require.NoError(t, err)

	assert.Equal(t, 2, batch.NumGraphs())
	assert.Equal(t, []int{0, 2, 5}, batch.Offsets)
	assert.Equal(t, []int{0, 0, 1, 1, 1}, batch.Batch)

	rows, cols := batch.Nodes.Dims()
	assert.Equal(t, 5, rows)
	assert.Equal(t, NodeFeatures, cols)
	rows, _ = batch.Edges.Dims()
	assert.Equal(t, 13, rows)
	require.Len(t, batch.EdgeIndex, 13)

	assert.Equal(t, [2]int{0, 1}, batch.EdgeIndex[1])
	assert.Equal(t, [2]int{2, 2}, batch.EdgeIndex[4])
	assert.Equal(t, [2]int{3, 4}, batch.EdgeIndex[4+5])
	assert.Equal(t, 205.0, batch.Edges.At(4+5, 0))

	assert.True(t, mat.Equal(obs[1].Nodes, batch.GraphNodes(1)))
	assert.Equal(t, 101.0, batch.GraphNodes(0).At(1, 0))

	// The batch does not alias its inputs.
	obs[0].Nodes.Set(0, 0, -1)
	assert.Equal(t, 100.0, batch.Nodes.At(0, 0))
}

func TestMakeStaticBatchErrors(t *testing.T) {
	_, err := MakeStaticBatch(nil)
	assert.True(t, errors.Is(err, ErrBatchMismatch))

	bad := graphObservation(3, 0)
	bad.Edges = mat.NewDense(4, EdgeFeatures, nil)
	_, err = MakeStaticBatch([]*Observation{graphObservation(2, 0), bad})
	assert.Error(t, err)
}
