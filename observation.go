package anyvrp

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

const (
	// NodeFeatures is the number of columns in
	// Observation.Nodes.
	NodeFeatures = 4

	// EdgeFeatures is the number of columns in
	// Observation.Edges.
	EdgeFeatures = 2
)

// An Observation is a graph view of a routing solution.
//
// Nodes has one row per location and NodeFeatures
// columns:
//
//	[demand/cap, load/cap, dist/maxDist, time/maxDist]
//
// where load, dist, and time are the running totals at
// the job's stop.
// Row 0 (the depot) and rows for absent jobs are zero.
//
// Edges has one row per ordered pair (i, j), at row
// i*NumNodes()+j, and EdgeFeatures columns: the
// normalized distance and a 0/1 flag marking arcs which
// are traversed by some tour.
type Observation struct {
	Nodes *mat.Dense
	Edges *mat.Dense
}

// NumNodes returns the number of nodes in the graph.
func (o *Observation) NumNodes() int {
	r, _ := o.Nodes.Dims()
	return r
}

// NumArcs counts the traversed arcs.
func (o *Observation) NumArcs() int {
	var count int
	r, _ := o.Edges.Dims()
	for i := 0; i < r; i++ {
		if o.Edges.At(i, 1) == 1 {
			count++
		}
	}
	return count
}

// Arc reports whether the arc from node i to node j is
// traversed.
func (o *Observation) Arc(i, j int) bool {
	return o.Edges.At(i*o.NumNodes()+j, 1) == 1
}

// TourPosition locates a job within a solution.
type TourPosition struct {
	Vehicle int
	Index   int
}

// StaticEdges computes the normalized distance of every
// ordered location pair, in Edges row order.
//
// If maxDist is 0, the largest entry in the matrix is
// used.
func StaticEdges(inst *ProblemInstance, maxDist float64) []float64 {
	n := inst.NumLocs()
	if maxDist == 0 {
		maxDist = largestDist(inst)
	}
	res := make([]float64, n*n)
	for i, row := range inst.DistTime {
		for j, dt := range row {
			res[i*n+j] = dt.Dist / maxDist
		}
	}
	return res
}

func largestDist(inst *ProblemInstance) float64 {
	var res float64
	for _, row := range inst.DistTime {
		for _, dt := range row {
			if dt.Dist > res {
				res = dt.Dist
			}
		}
	}
	if res == 0 {
		return 1
	}
	return res
}

// extractObservation converts raw solver output into an
// Observation.
func extractObservation(inst *ProblemInstance, static []float64, maxDist float64,
	tours [][]int, states [][]StopState) (*Observation, map[int]TourPosition, error) {
	if len(states) != len(tours) {
		return nil, nil, fmt.Errorf("solver returned %d tours but %d state lists",
			len(tours), len(states))
	}

	n := inst.NumLocs()
	capacity := inst.Capacity()
	nodes := mat.NewDense(n, NodeFeatures, nil)
	edges := mat.NewDense(n*n, EdgeFeatures, nil)
	edges.SetCol(0, static)
	positions := map[int]TourPosition{}

	for i, tour := range tours {
		if len(states[i]) < len(tour)+1 {
			return nil, nil, fmt.Errorf("vehicle %d: %d states for %d stops", i,
				len(states[i]), len(tour))
		}
		for j, jobIdx := range tour {
			if jobIdx < 0 || jobIdx >= len(inst.Jobs) {
				return nil, nil, fmt.Errorf("vehicle %d: job index %d out of range", i, jobIdx)
			}
			job := inst.Jobs[jobIdx]
			s := states[i][j+1]
			nodes.SetRow(job.Loc, []float64{
				job.Weight / capacity,
				s.Weight / capacity,
				s.Dist / maxDist,
				s.Time / maxDist,
			})
			positions[job.Loc] = TourPosition{Vehicle: i, Index: j}
		}
		if len(tour) == 0 {
			continue
		}
		prev := 0
		for _, jobIdx := range tour {
			loc := inst.Jobs[jobIdx].Loc
			edges.Set(prev*n+loc, 1, 1)
			prev = loc
		}
		edges.Set(prev*n, 1, 1)
	}

	return &Observation{Nodes: nodes, Edges: edges}, positions, nil
}
