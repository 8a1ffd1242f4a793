package anyvrp

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FullEdgeIndex returns the (source, target) pairs of a
// fully-connected graph with n nodes, in the row order
// of Observation.Edges.
func FullEdgeIndex(n int) [][2]int {
	res := make([][2]int, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			res = append(res, [2]int{i, j})
		}
	}
	return res
}

// A GraphBatch packs several Observations into one
// disjoint graph for inference.
type GraphBatch struct {
	// Nodes stacks every graph's node features.
	Nodes *mat.Dense

	// Edges stacks every graph's edge features.
	Edges *mat.Dense

	// EdgeIndex holds the (source, target) node rows of
	// every edge, offset into Nodes.
	EdgeIndex [][2]int

	// Batch maps each row of Nodes to its graph.
	Batch []int

	// Offsets[g] is the first row of graph g in Nodes.
	// It has one extra entry holding the total row count.
	Offsets []int
}

// NumGraphs returns the number of graphs in the batch.
func (g *GraphBatch) NumGraphs() int {
	return len(g.Offsets) - 1
}

// GraphNodes returns the node features of graph i.
func (g *GraphBatch) GraphNodes(i int) mat.Matrix {
	return g.Nodes.Slice(g.Offsets[i], g.Offsets[i+1], 0, NodeFeatures)
}

// MakeStaticBatch packs observations into a GraphBatch.
func MakeStaticBatch(obs []*Observation) (*GraphBatch, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("make static batch: %w: no observations", ErrBatchMismatch)
	}

	var numNodes, numEdges int
	for i, o := range obs {
		n := o.NumNodes()
		if r, _ := o.Edges.Dims(); r != n*n {
			return nil, fmt.Errorf("make static batch: observation %d has %d edges for %d nodes",
				i, r, n)
		}
		numNodes += n
		numEdges += n * n
	}

	res := &GraphBatch{
		Nodes:     mat.NewDense(numNodes, NodeFeatures, nil),
		Edges:     mat.NewDense(numEdges, EdgeFeatures, nil),
		EdgeIndex: make([][2]int, 0, numEdges),
		Batch:     make([]int, 0, numNodes),
		Offsets:   make([]int, 0, len(obs)+1),
	}

	var nodeOffset, edgeOffset int
	for g, o := range obs {
		n := o.NumNodes()
		res.Offsets = append(res.Offsets, nodeOffset)
		res.Nodes.Slice(nodeOffset, nodeOffset+n, 0, NodeFeatures).(*mat.Dense).Copy(o.Nodes)
		res.Edges.Slice(edgeOffset, edgeOffset+n*n, 0, EdgeFeatures).(*mat.Dense).Copy(o.Edges)
		for _, pair := range FullEdgeIndex(n) {
			res.EdgeIndex = append(res.EdgeIndex,
				[2]int{pair[0] + nodeOffset, pair[1] + nodeOffset})
		}
		for i := 0; i < n; i++ {
			res.Batch = append(res.Batch, g)
		}
		nodeOffset += n
		edgeOffset += n * n
	}
	res.Offsets = append(res.Offsets, nodeOffset)

	return res, nil
}
