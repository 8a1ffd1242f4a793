package anyvrp

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// PolicyOutput is the result of running a Policy on a
// GraphBatch.
// Every field has one entry per graph.
type PolicyOutput struct {
	Actions  []Action
	LogProbs []float64
	Values   []float64
	Entropy  []float64
}

// checkBatch makes sure every field has n entries.
func (p *PolicyOutput) checkBatch(n int) error {
	for _, l := range []int{len(p.Actions), len(p.LogProbs), len(p.Values), len(p.Entropy)} {
		if l != n {
			return fmt.Errorf("policy output: %w: field length %d for %d graphs",
				ErrBatchMismatch, l, n)
		}
	}
	return nil
}

// A Policy chooses actions and estimates values for a
// batch of graphs.
//
// Infer must not update the policy's parameters.
type Policy interface {
	Infer(batch *GraphBatch, beamWidth int, greedy bool) (*PolicyOutput, error)
}

// RandomPolicy is a Policy which picks jobs uniformly at
// random.
//
// Node row k of a graph is taken to hold job k-1, which is
// the layout produced by InstanceFromCoords.
type RandomPolicy struct {
	// Rand is the source of randomness.
	// If nil, the global source is used.
	Rand *rand.Rand

	// NumJobs is the number of jobs per action.
	//
	// If 0, 1 is used.
	NumJobs int

	// Value, if non-nil, computes the value estimate for a
	// graph's node features.
	// Otherwise, values are 0.
	Value func(batch *GraphBatch, graph int) float64
}

// Infer samples one action per graph.
//
// In greedy mode, jobs which are not on a tour are chosen
// first, in index order.
func (r *RandomPolicy) Infer(batch *GraphBatch, beamWidth int,
	greedy bool) (*PolicyOutput, error) {
	g := batch.NumGraphs()
	res := &PolicyOutput{
		Actions:  make([]Action, g),
		LogProbs: make([]float64, g),
		Values:   make([]float64, g),
		Entropy:  make([]float64, g),
	}
	for i := 0; i < g; i++ {
		numJobs := batch.Offsets[i+1] - batch.Offsets[i] - 1
		k := r.NumJobs
		if k == 0 {
			k = 1
		}
		if k > numJobs {
			return nil, fmt.Errorf("random policy: graph %d has %d jobs, need %d",
				i, numJobs, k)
		}

		var logProb float64
		for j := 0; j < k; j++ {
			logProb -= math.Log(float64(numJobs - j))
		}
		res.Entropy[i] = -logProb

		if greedy {
			res.Actions[i] = r.greedyAction(batch, i, k)
			res.LogProbs[i] = 0
		} else {
			res.Actions[i] = Action(r.perm(numJobs)[:k])
			res.LogProbs[i] = logProb
		}

		if r.Value != nil {
			res.Values[i] = r.Value(batch, i)
		}
	}
	return res, nil
}

func (r *RandomPolicy) greedyAction(batch *GraphBatch, graph, k int) Action {
	nodes := batch.GraphNodes(graph)
	rows, _ := nodes.Dims()
	jobs := make([]int, rows-1)
	for i := range jobs {
		jobs[i] = i
	}
	absent := func(job int) bool {
		return nodes.At(job+1, 1) == 0 && nodes.At(job+1, 2) == 0
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return absent(jobs[i]) && !absent(jobs[j])
	})
	return Action(jobs[:k])
}

func (r *RandomPolicy) perm(n int) []int {
	if r.Rand != nil {
		return r.Rand.Perm(n)
	}
	return rand.Perm(n)
}
