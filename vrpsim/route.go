package vrpsim

import "github.com/unixpickle/anyvrp"

type routeResult struct {
	// States starts with the depot and has one entry per
	// stop.
	States   []anyvrp.StopState
	Cost     float64
	Feasible bool
}

// simulate drives vehicle v along the tour.
func (s *Solver) simulate(v int, tour []int) routeResult {
	vehicle := s.inst.Vehicles[v]
	state := anyvrp.StopState{Time: vehicle.TW.Start}
	res := routeResult{
		States:   []anyvrp.StopState{state},
		Feasible: true,
	}

	loc := vehicle.StartLoc
	for _, jobIdx := range tour {
		job := s.inst.Jobs[jobIdx]
		leg := s.inst.DistTime[loc][job.Loc]
		state.Dist += leg.Dist
		state.Time += leg.Time
		if state.Time < job.TW.Start {
			state.Time = job.TW.Start
		}
		if state.Time > job.TW.End {
			res.Feasible = false
		}
		state.Time += job.ServiceTime
		state.Weight += job.Weight
		res.States = append(res.States, state)
		loc = job.Loc
	}

	if len(tour) == 0 {
		return res
	}

	leg := s.inst.DistTime[loc][vehicle.EndLoc]
	totalDist := state.Dist + leg.Dist
	endTime := state.Time + leg.Time

	if state.Weight > vehicle.Cap ||
		(vehicle.MaxStops > 0 && len(tour) > vehicle.MaxStops) ||
		(vehicle.MaxDist > 0 && totalDist > vehicle.MaxDist) ||
		endTime > vehicle.TW.End {
		res.Feasible = false
	}

	res.Cost = vehicle.FixedCost + vehicle.FeePerDist*totalDist +
		vehicle.FeePerTime*(endTime-vehicle.TW.Start) +
		vehicle.HandlingCostPerWeight*state.Weight
	return res
}
