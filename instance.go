package anyvrp

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/unixpickle/essentials"
)

var instanceValidate = validator.New()

// TimeWindow is an interval of allowed service start
// times.
type TimeWindow struct {
	Start float64 `json:"start"`
	End   float64 `json:"end" validate:"gtefield=Start"`
}

// A Job is a single customer visit.
//
// Loc indexes into the distance matrix of the owning
// ProblemInstance.
// Location 0 is reserved for the depot.
type Job struct {
	ID          int        `json:"id" validate:"gte=0"`
	Loc         int        `json:"loc" validate:"min=1"`
	Name        string     `json:"name"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	Weight      float64    `json:"weight" validate:"gte=0"`
	TW          TimeWindow `json:"tw"`
	ServiceTime float64    `json:"service_time" validate:"gte=0"`
	JobType     string     `json:"job_type"`
}

// A Vehicle describes one route's constraints and fees.
//
// A MaxStops or MaxDist of 0 means unlimited.
type Vehicle struct {
	Cap                   float64    `json:"cap" validate:"gt=0"`
	TW                    TimeWindow `json:"tw"`
	StartLoc              int        `json:"start_loc" validate:"gte=0"`
	EndLoc                int        `json:"end_loc" validate:"gte=0"`
	FeePerDist            float64    `json:"fee_per_dist" validate:"gte=0"`
	FeePerTime            float64    `json:"fee_per_time" validate:"gte=0"`
	FixedCost             float64    `json:"fixed_cost" validate:"gte=0"`
	HandlingCostPerWeight float64    `json:"handling_cost_per_weight" validate:"gte=0"`
	MaxStops              int        `json:"max_stops" validate:"gte=0"`
	MaxDist               float64    `json:"max_dist" validate:"gte=0"`
}

// DistTime is one entry of the travel matrix.
type DistTime struct {
	Dist float64 `json:"dist" validate:"gte=0"`
	Time float64 `json:"time" validate:"gte=0"`
}

// A ProblemInstance is the full description of a routing
// problem, in the format consumed by a SolverFactory.
//
// Instances should not be modified once they are passed
// to an Episode.
type ProblemInstance struct {
	Vehicles      []Vehicle    `json:"vehicles" validate:"required,min=1,dive"`
	DistTime      [][]DistTime `json:"dist_time" validate:"required,dive,dive"`
	CostPerAbsent float64      `json:"cost_per_absent" validate:"gte=0"`
	Jobs          []Job        `json:"jobs" validate:"dive"`
	Depot         [2]float64   `json:"depot"`

	// Solver knobs. They are passed through untouched.
	LMax        int     `json:"l_max" validate:"gte=0"`
	C1          float64 `json:"c1"`
	Adjs        [][]int `json:"adjs"`
	Temperature float64 `json:"temperature" validate:"gte=0"`
	C2          float64 `json:"c2" validate:"gte=0"`
	SA          bool    `json:"sa"`
	Seed        int64   `json:"seed"`
}

// NumLocs returns the number of locations, including the
// depot.
func (p *ProblemInstance) NumLocs() int {
	return len(p.DistTime)
}

// Capacity returns the capacity used to normalize load
// features, which is the capacity of the first vehicle.
func (p *ProblemInstance) Capacity() float64 {
	return p.Vehicles[0].Cap
}

// Validate checks the structural constraints of the
// instance.
//
// Location 0 is the depot and every other location holds
// exactly one job, so there are len(Jobs)+1 locations.
// Observations have one node per location.
//
// Returned errors wrap ErrInvalidInstance.
func (p *ProblemInstance) Validate() error {
	if err := instanceValidate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInstance, err)
	}
	n := p.NumLocs()
	for i, row := range p.DistTime {
		if len(row) != n {
			return fmt.Errorf("%w: dist_time row %d has %d entries (expected %d)",
				ErrInvalidInstance, i, len(row), n)
		}
	}
	if n != len(p.Jobs)+1 {
		return fmt.Errorf("%w: %d locations for %d jobs (expected %d)", ErrInvalidInstance,
			n, len(p.Jobs), len(p.Jobs)+1)
	}
	locs := map[int]int{}
	for i, job := range p.Jobs {
		if job.Loc > len(p.Jobs) {
			return fmt.Errorf("%w: job %d location %d out of range", ErrInvalidInstance,
				i, job.Loc)
		}
		if other, ok := locs[job.Loc]; ok {
			return fmt.Errorf("%w: jobs %d and %d share location %d",
				ErrInvalidInstance, other, i, job.Loc)
		}
		locs[job.Loc] = i
	}
	for i, v := range p.Vehicles {
		if v.StartLoc >= n || v.EndLoc >= n {
			return fmt.Errorf("%w: vehicle %d endpoints out of range", ErrInvalidInstance, i)
		}
	}
	return nil
}

// JSON encodes the instance in the solver wire format.
func (p *ProblemInstance) JSON() (data []byte, err error) {
	defer essentials.AddCtxTo("encode instance", &err)
	c := *p
	if c.Adjs == nil {
		c.Adjs = [][]int{}
	}
	return json.Marshal(&c)
}

// DecodeInstance parses and validates an instance in the
// solver wire format.
func DecodeInstance(data []byte) (*ProblemInstance, error) {
	var res ProblemInstance
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstance, err)
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return &res, nil
}

// An InstanceMaker produces the ProblemInstance for the
// episode with the given index.
type InstanceMaker func(index int) (*ProblemInstance, error)

// InstanceMakerFromList creates an InstanceMaker which
// serves instances from a fixed list.
func InstanceMakerFromList(instances []*ProblemInstance) InstanceMaker {
	return func(index int) (*ProblemInstance, error) {
		if index < 0 || index >= len(instances) {
			return nil, fmt.Errorf("%w: no instance at index %d", ErrInvalidInstance, index)
		}
		return instances[index], nil
	}
}
