package anyvrp

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
)

// InstanceOptions configures InstanceFromCoords.
type InstanceOptions struct {
	// Cap is the vehicle capacity.
	Cap float64

	// CostPerAbsent is the penalty for each unrouted job.
	//
	// If 0, 1000 is used.
	CostPerAbsent float64

	// InitT and FinalT are the simulated annealing start
	// and end temperatures, and NumSteps is the number of
	// steps over which to cool.
	// If any is 0, annealing is disabled.
	InitT    float64
	FinalT   float64
	NumSteps int

	// Seed is passed to the solver.
	Seed int64
}

// InstanceFromCoords creates a single-vehicle CVRP
// instance.
//
// The first row of coords is the depot (its demand is
// ignored).
// Each other row is (x, y, demand) for one job.
// Job i is placed at location i+1.
func InstanceFromCoords(coords [][3]float64, opts InstanceOptions) (*ProblemInstance, error) {
	if len(coords) == 0 {
		return nil, fmt.Errorf("%w: no depot", ErrInvalidInstance)
	}

	window := TimeWindow{Start: 0, End: 10000}
	jobs := make([]Job, 0, len(coords)-1)
	for i, c := range coords[1:] {
		jobs = append(jobs, Job{
			ID:      i,
			Loc:     i + 1,
			Name:    strconv.Itoa(i),
			X:       c[0],
			Y:       c[1],
			Weight:  c[2],
			TW:      window,
			JobType: "Pickup",
		})
	}

	distTime := make([][]DistTime, len(coords))
	for i, c1 := range coords {
		distTime[i] = make([]DistTime, len(coords))
		for j, c2 := range coords {
			d := math.Hypot(c1[0]-c2[0], c1[1]-c2[1])
			distTime[i][j] = DistTime{Dist: d, Time: d}
		}
	}

	costPerAbsent := opts.CostPerAbsent
	if costPerAbsent == 0 {
		costPerAbsent = 1000
	}

	inst := &ProblemInstance{
		Vehicles: []Vehicle{{
			Cap:        opts.Cap,
			TW:         window,
			FeePerDist: 1,
		}},
		DistTime:      distTime,
		CostPerAbsent: costPerAbsent,
		Jobs:          jobs,
		Depot:         [2]float64{coords[0][0], coords[0][1]},
		LMax:          10,
		C1:            10,
		Adjs:          [][]int{},
		Seed:          opts.Seed,
	}
	if opts.InitT != 0 && opts.FinalT != 0 && opts.NumSteps != 0 {
		inst.SA = true
		inst.Temperature = opts.InitT
		inst.C2 = math.Pow(opts.FinalT/opts.InitT, 1/float64(opts.NumSteps))
	}

	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// RandomInstances generates n instances with numJobs
// jobs each.
//
// Coordinates are uniform in [0, maxCoord), and demands
// are uniform integers in [1, maxDemand].
func RandomInstances(rng *rand.Rand, n, numJobs int, maxCoord float64, maxDemand int,
	opts InstanceOptions) ([]*ProblemInstance, error) {
	res := make([]*ProblemInstance, n)
	for i := range res {
		coords := make([][3]float64, numJobs+1)
		for j := range coords {
			coords[j] = [3]float64{rng.Float64() * maxCoord, rng.Float64() * maxCoord, 0}
			if j > 0 {
				coords[j][2] = float64(rng.Intn(maxDemand) + 1)
			}
		}
		instOpts := opts
		instOpts.Seed = opts.Seed + int64(i)
		inst, err := InstanceFromCoords(coords, instOpts)
		if err != nil {
			return nil, err
		}
		res[i] = inst
	}
	return res, nil
}
