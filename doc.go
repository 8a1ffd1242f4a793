// Package anyvrp collects training data for learned
// vehicle-routing improvement policies.
//
// A BatchEnv drives many Episodes in lockstep, each
// wrapping a Solver and exposing its solution as a graph
// Observation.
// A Roller runs a Policy on a BatchEnv for a fixed window
// of steps, records the transitions in a Buffer, and
// turns them into Samples labeled with bootstrapped
// returns and normalized advantages.
package anyvrp
