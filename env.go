package anyvrp

// Env is an instance of a routing-improvement
// environment.
//
// Episodes never terminate on their own; the caller
// decides how many steps to take.
type Env interface {
	Reset() (obs *Observation, err error)
	Step(action Action) (obs *Observation, reward float64, err error)
}
