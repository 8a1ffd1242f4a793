// Package vrpsim implements a small in-process
// remove-and-reinsert routing solver.
//
// Every job starts out unrouted.
// Each step removes the listed jobs from their tours and
// then reinserts them, one at a time, at the cheapest
// feasible position.
// Jobs with no feasible position stay unrouted and cost
// the instance's absent penalty.
package vrpsim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/unixpickle/anyvrp"
	"github.com/unixpickle/essentials"
)

// ErrInvalidAction is wrapped by errors for actions the
// solver rejects.
var ErrInvalidAction = errors.New("invalid action")

// Solver is an anyvrp.Solver.
type Solver struct {
	inst *anyvrp.ProblemInstance

	tours       [][]int
	temperature float64
	rng         *rand.Rand
}

// New creates a Solver from an instance in its JSON wire
// format.
func New(instanceJSON []byte) (s *Solver, err error) {
	defer essentials.AddCtxTo("create solver", &err)
	inst, err := anyvrp.DecodeInstance(instanceJSON)
	if err != nil {
		return nil, err
	}
	return &Solver{
		inst:        inst,
		tours:       make([][]int, len(inst.Vehicles)),
		temperature: inst.Temperature,
		rng:         rand.New(rand.NewSource(inst.Seed)),
	}, nil
}

// Factory is an anyvrp.SolverFactory for Solvers.
func Factory(instanceJSON []byte) (anyvrp.Solver, error) {
	s, err := New(instanceJSON)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Tours returns a copy of every vehicle's tour, including
// empty ones.
func (s *Solver) Tours() [][]int {
	res := make([][]int, len(s.tours))
	for i, t := range s.tours {
		res[i] = append([]int{}, t...)
	}
	return res
}

// States returns the running state of every tour.
func (s *Solver) States() [][]anyvrp.StopState {
	res := make([][]anyvrp.StopState, len(s.tours))
	for i, t := range s.tours {
		res[i] = s.simulate(i, t).States
	}
	return res
}

// Cost returns the routing cost plus the absent penalty.
func (s *Solver) Cost() float64 {
	return s.cost(s.tours)
}

// Step removes and reinserts the jobs in the action.
//
// An action is rejected if it lists a job twice, lists
// a job that does not exist, or lists more jobs than the
// instance's LMax (when LMax is non-zero).
//
// If the new solution is worse, it is kept only when
// simulated annealing accepts it.
func (s *Solver) Step(action anyvrp.Action) error {
	if err := s.checkAction(action); err != nil {
		return err
	}

	oldCost := s.Cost()
	newTours := s.Tours()
	removeJobs(newTours, action)
	for _, job := range action {
		insertCheapest(s, newTours, job)
	}
	newCost := s.cost(newTours)

	if newCost <= oldCost || s.accept(newCost-oldCost) {
		s.tours = newTours
	}
	if s.inst.SA && s.inst.C2 > 0 {
		s.temperature *= s.inst.C2
	}
	return nil
}

func (s *Solver) checkAction(action anyvrp.Action) error {
	if s.inst.LMax > 0 && len(action) > s.inst.LMax {
		return fmt.Errorf("%w: %d jobs exceeds limit %d", ErrInvalidAction, len(action),
			s.inst.LMax)
	}
	seen := map[int]bool{}
	for _, job := range action {
		if job < 0 || job >= len(s.inst.Jobs) {
			return fmt.Errorf("%w: job %d out of range", ErrInvalidAction, job)
		}
		if seen[job] {
			return fmt.Errorf("%w: job %d listed twice", ErrInvalidAction, job)
		}
		seen[job] = true
	}
	return nil
}

func (s *Solver) accept(worsening float64) bool {
	if !s.inst.SA || s.temperature <= 0 {
		return false
	}
	return s.rng.Float64() < math.Exp(-worsening/s.temperature)
}

func (s *Solver) cost(tours [][]int) float64 {
	var total float64
	var routed int
	for i, t := range tours {
		if len(t) == 0 {
			continue
		}
		total += s.simulate(i, t).Cost
		routed += len(t)
	}
	return total + s.inst.CostPerAbsent*float64(len(s.inst.Jobs)-routed)
}

func removeJobs(tours [][]int, jobs []int) {
	remove := map[int]bool{}
	for _, j := range jobs {
		remove[j] = true
	}
	for i, t := range tours {
		var kept []int
		for _, j := range t {
			if !remove[j] {
				kept = append(kept, j)
			}
		}
		tours[i] = kept
	}
}

// insertCheapest puts the job wherever it increases the
// cost the least, or leaves it out if it fits nowhere.
func insertCheapest(s *Solver, tours [][]int, job int) {
	bestVehicle, bestIdx := -1, -1
	bestDelta := math.Inf(1)
	for v, t := range tours {
		var base float64
		if len(t) > 0 {
			base = s.simulate(v, t).Cost
		}
		for idx := 0; idx <= len(t); idx++ {
			candidate := insertAt(t, idx, job)
			route := s.simulate(v, candidate)
			if !route.Feasible {
				continue
			}
			if delta := route.Cost - base; delta < bestDelta {
				bestVehicle, bestIdx, bestDelta = v, idx, delta
			}
		}
	}
	if bestVehicle >= 0 {
		tours[bestVehicle] = insertAt(tours[bestVehicle], bestIdx, job)
	}
}

func insertAt(tour []int, idx, job int) []int {
	res := make([]int, 0, len(tour)+1)
	res = append(res, tour[:idx]...)
	res = append(res, job)
	return append(res, tour[idx:]...)
}
