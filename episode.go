package anyvrp

import (
	"math"

	"github.com/unixpickle/essentials"
)

// An Episode is an Env backed by a single Solver.
//
// The reward for a step is the decrease in solver cost.
type Episode struct {
	instance     *ProblemInstance
	instanceJSON []byte
	factory      SolverFactory
	maxDist      float64
	static       []float64

	solver    Solver
	positions map[int]TourPosition
	cost      float64
	best      float64
}

// NewEpisode creates an Episode for the instance.
// The Episode must be reset before it is stepped.
//
// The maxDist argument normalizes distance and time
// features.
// If it is 0, the largest distance in the instance is
// used.
func NewEpisode(inst *ProblemInstance, factory SolverFactory,
	maxDist float64) (ep *Episode, err error) {
	defer essentials.AddCtxTo("create episode", &err)
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	data, err := inst.JSON()
	if err != nil {
		return nil, err
	}
	if maxDist == 0 {
		maxDist = largestDist(inst)
	}
	return &Episode{
		instance:     inst,
		instanceJSON: data,
		factory:      factory,
		maxDist:      maxDist,
		static:       StaticEdges(inst, maxDist),
		best:         math.Inf(1),
	}, nil
}

// Instance returns the instance the episode solves.
func (e *Episode) Instance() *ProblemInstance {
	return e.instance
}

// Reset creates a fresh solver and returns the initial
// observation.
func (e *Episode) Reset() (obs *Observation, err error) {
	defer essentials.AddCtxTo("reset episode", &err)
	solver, err := e.factory(e.instanceJSON)
	if err != nil {
		return nil, err
	}
	e.solver = solver
	e.positions = nil
	e.cost = 0
	e.best = math.Inf(1)
	return e.observe()
}

// Step applies the action and returns the new
// observation along with the decrease in cost.
func (e *Episode) Step(action Action) (obs *Observation, reward float64, err error) {
	if e.solver == nil {
		return nil, 0, ErrNotReset
	}
	defer essentials.AddCtxTo("step episode", &err)
	prevCost := e.cost
	if err := e.solver.Step(action); err != nil {
		return nil, 0, err
	}
	obs, err = e.observe()
	if err != nil {
		return nil, 0, err
	}
	return obs, prevCost - e.cost, nil
}

// Cost returns the cost as of the last observation.
func (e *Episode) Cost() float64 {
	return e.cost
}

// BestCost returns the lowest cost seen since the last
// reset, or +Inf if the episode was never reset.
func (e *Episode) BestCost() float64 {
	return e.best
}

// Position looks up where the job at a location sits in
// the current solution.
func (e *Episode) Position(loc int) (TourPosition, bool) {
	pos, ok := e.positions[loc]
	return pos, ok
}

// Observe extracts the current observation without
// stepping.
func (e *Episode) Observe() (*Observation, error) {
	if e.solver == nil {
		return nil, ErrNotReset
	}
	return e.observe()
}

func (e *Episode) observe() (*Observation, error) {
	obs, positions, err := extractObservation(e.instance, e.static, e.maxDist,
		e.solver.Tours(), e.solver.States())
	if err != nil {
		return nil, err
	}
	e.positions = positions
	e.cost = e.solver.Cost()
	if e.cost < e.best {
		e.best = e.cost
	}
	return obs, nil
}
