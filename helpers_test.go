package anyvrp

import (
	"errors"
	"math"
	"testing"
)

// testInstance is a two-job instance with the depot at the
// origin, d(depot, job0)=1, d(depot, job1)=2, and
// d(job0, job1)=1.5.
func testInstance() *ProblemInstance {
	dists := [][]float64{
		{0, 1, 2},
		{1, 0, 1.5},
		{2, 1.5, 0},
	}
	distTime := make([][]DistTime, len(dists))
	for i, row := range dists {
		for _, d := range row {
			distTime[i] = append(distTime[i], DistTime{Dist: d, Time: d})
		}
	}
	window := TimeWindow{Start: 0, End: 10000}
	return &ProblemInstance{
		Vehicles: []Vehicle{{Cap: 100, TW: window, FeePerDist: 1}},
		DistTime: distTime,
		Jobs: []Job{
			{ID: 0, Loc: 1, Weight: 10, TW: window},
			{ID: 1, Loc: 2, Weight: 20, TW: window},
		},
		CostPerAbsent: 1000,
	}
}

// toggleSolver routes everything on vehicle 0.
// Each job in an action is removed if it is routed and
// appended to the tour otherwise.
type toggleSolver struct {
	inst    *ProblemInstance
	tour    []int
	actions []Action
	fail    bool
}

func newToggleFactory(created *[]*toggleSolver) SolverFactory {
	return func(data []byte) (Solver, error) {
		inst, err := DecodeInstance(data)
		if err != nil {
			return nil, err
		}
		s := &toggleSolver{inst: inst}
		if created != nil {
			*created = append(*created, s)
		}
		return s, nil
	}
}

func (t *toggleSolver) Tours() [][]int {
	return [][]int{append([]int{}, t.tour...)}
}

func (t *toggleSolver) States() [][]StopState {
	states := []StopState{{}}
	var s StopState
	prev := 0
	for _, j := range t.tour {
		job := t.inst.Jobs[j]
		d := t.inst.DistTime[prev][job.Loc]
		s.Dist += d.Dist
		s.Time += d.Time
		s.Weight += job.Weight
		states = append(states, s)
		prev = job.Loc
	}
	return [][]StopState{states}
}

func (t *toggleSolver) Cost() float64 {
	cost := t.inst.CostPerAbsent * float64(len(t.inst.Jobs)-len(t.tour))
	if len(t.tour) == 0 {
		return cost
	}
	states := t.States()[0]
	last := t.inst.Jobs[t.tour[len(t.tour)-1]].Loc
	return cost + states[len(states)-1].Dist + t.inst.DistTime[last][0].Dist
}

func (t *toggleSolver) Step(action Action) error {
	if t.fail {
		return errors.New("solver failure")
	}
	t.actions = append(t.actions, action)
	for _, j := range action {
		if j < 0 || j >= len(t.inst.Jobs) {
			return errors.New("job out of range")
		}
		idx := -1
		for i, x := range t.tour {
			if x == j {
				idx = i
			}
		}
		if idx >= 0 {
			t.tour = append(t.tour[:idx], t.tour[idx+1:]...)
		} else {
			t.tour = append(t.tour, j)
		}
	}
	return nil
}

// scriptedPolicy returns fixed outputs and counts calls.
type scriptedPolicy struct {
	Actions []Action
	Values  []float64
	Calls   int
	Greedy  []bool
}

func (s *scriptedPolicy) Infer(batch *GraphBatch, beamWidth int,
	greedy bool) (*PolicyOutput, error) {
	s.Calls++
	s.Greedy = append(s.Greedy, greedy)
	n := batch.NumGraphs()
	out := &PolicyOutput{
		Actions:  s.Actions,
		LogProbs: make([]float64, n),
		Values:   s.Values,
		Entropy:  make([]float64, n),
	}
	for i := range out.LogProbs {
		out.LogProbs[i] = -float64(i + 1)
		out.Entropy[i] = 0.5
	}
	return out, nil
}

func testFloatsEquiv(t *testing.T, actual, expected []float64) {
	t.Helper()
	if len(actual) != len(expected) {
		t.Fatalf("expected %v but got %v", expected, actual)
	}
	for i, x := range expected {
		if math.Abs(x-actual[i]) > 1e-6 {
			t.Fatalf("expected %v but got %v", expected, actual)
		}
	}
}

func newTestEpisode(t *testing.T, created *[]*toggleSolver) *Episode {
	t.Helper()
	ep, err := NewEpisode(testInstance(), newToggleFactory(created), 2)
	if err != nil {
		t.Fatal(err)
	}
	return ep
}
