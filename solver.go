package anyvrp

// StopState is the running state of a vehicle after it
// finishes a stop.
type StopState struct {
	Weight float64 `json:"weight"`
	Dist   float64 `json:"dist"`
	Time   float64 `json:"time"`
}

// An Action lists the job indices handed to the solver
// for one improvement step.
//
// What the solver does with them (remove, reinsert, or
// both) is up to the solver.
type Action []int

// A Solver is a mutable routing solution which improves
// itself one Action at a time.
type Solver interface {
	// Tours returns one ordered list of job indices per
	// vehicle.
	Tours() [][]int

	// States returns per-stop running state aligned with
	// Tours.
	// The first entry of each vehicle's list is the depot.
	States() [][]StopState

	// Cost returns the objective of the current solution.
	Cost() float64

	// Step applies an action.
	// Invalid actions produce an error.
	Step(action Action) error
}

// A SolverFactory constructs a Solver from an instance in
// its JSON wire format.
type SolverFactory func(instanceJSON []byte) (Solver, error)
