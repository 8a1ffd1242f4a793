package anyvrp

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultEpsilon is the smallest standard deviation that
// NormalizeAdvantages will divide by.
const DefaultEpsilon = 1e-8

// A Sample is one (step, episode) transition, labeled for
// training.
type Sample struct {
	Nodes *mat.Dense
	Edges *mat.Dense

	Action  Action
	LogProb float64

	// Target is the bootstrapped return.
	Target float64

	// Advantage is the normalized advantage.
	Advantage float64

	// Step and Episode record where the sample came from.
	Step    int
	Episode int
}

// A Buffer records a window of batched transitions.
//
// Everything is stored time-major: the outer index is the
// step and the inner index is the episode.
type Buffer struct {
	// Rand, if non-nil, is used to shuffle the result of
	// Samples.
	Rand *rand.Rand

	// Epsilon is passed to NormalizeAdvantages.
	//
	// If 0, DefaultEpsilon is used.
	Epsilon float64

	batchSize int

	obs      [][]*Observation
	actions  [][]Action
	rewards  [][]float64
	logProbs [][]float64
	values   [][]float64
}

// Len returns the number of recorded steps.
func (b *Buffer) Len() int {
	return len(b.rewards)
}

// BatchSize returns the number of episodes per step, or 0
// if nothing has been recorded.
func (b *Buffer) BatchSize() int {
	return b.batchSize
}

// Observe records one step for every episode.
//
// All arguments must have the same length, and that
// length must match previous calls.
func (b *Buffer) Observe(obs []*Observation, actions []Action, rewards, logProbs,
	values []float64) error {
	n := len(obs)
	if b.Len() > 0 && n != b.batchSize {
		return fmt.Errorf("observe: %w: got %d episodes, expected %d", ErrBatchMismatch,
			n, b.batchSize)
	}
	for _, l := range []int{len(actions), len(rewards), len(logProbs), len(values)} {
		if l != n {
			return fmt.Errorf("observe: %w: field length %d, expected %d", ErrBatchMismatch,
				l, n)
		}
	}
	b.batchSize = n
	b.obs = append(b.obs, append([]*Observation{}, obs...))
	b.actions = append(b.actions, append([]Action{}, actions...))
	b.rewards = append(b.rewards, append([]float64{}, rewards...))
	b.logProbs = append(b.logProbs, append([]float64{}, logProbs...))
	b.values = append(b.values, append([]float64{}, values...))
	return nil
}

// ComputeReturns computes bootstrapped returns and raw
// advantages for every recorded step.
//
// Working backwards from v[H] = bootstrap, each step gets
//
//	v[t] = rewards[t] + decay*v[t+1]
//	advantage[t] = v[t] - values[t]
//
// A nil bootstrap is treated as all zeros, which is right
// when the window ends the episode.
func (b *Buffer) ComputeReturns(bootstrap []float64, decay float64) (targets,
	advantages [][]float64, err error) {
	if b.Len() == 0 {
		return nil, nil, ErrEmptyBuffer
	}
	if bootstrap == nil {
		bootstrap = make([]float64, b.batchSize)
	} else if len(bootstrap) != b.batchSize {
		return nil, nil, fmt.Errorf("compute returns: %w: %d bootstrap values for %d episodes",
			ErrBatchMismatch, len(bootstrap), b.batchSize)
	}

	targets = make([][]float64, b.Len())
	advantages = make([][]float64, b.Len())
	v := append([]float64{}, bootstrap...)
	for t := b.Len() - 1; t >= 0; t-- {
		targets[t] = make([]float64, b.batchSize)
		advantages[t] = make([]float64, b.batchSize)
		for i, r := range b.rewards[t] {
			v[i] = r + decay*v[i]
			targets[t][i] = v[i]
			advantages[t][i] = v[i] - b.values[t][i]
		}
	}
	return targets, advantages, nil
}

// Samples computes returns, normalizes the advantages,
// and flattens the buffer into one Sample per step and
// episode.
//
// Callers should not depend on the order of the result.
func (b *Buffer) Samples(bootstrap []float64, decay float64) ([]*Sample, error) {
	targets, advantages, err := b.ComputeReturns(bootstrap, decay)
	if err != nil {
		return nil, err
	}
	NormalizeAdvantages(advantages, b.Epsilon)

	res := make([]*Sample, 0, b.Len()*b.batchSize)
	for t := range targets {
		for i := range targets[t] {
			o := b.obs[t][i]
			res = append(res, &Sample{
				Nodes:     o.Nodes,
				Edges:     o.Edges,
				Action:    b.actions[t][i],
				LogProb:   b.logProbs[t][i],
				Target:    targets[t][i],
				Advantage: advantages[t][i],
				Step:      t,
				Episode:   i,
			})
		}
	}
	if b.Rand != nil {
		b.Rand.Shuffle(len(res), func(i, j int) {
			res[i], res[j] = res[j], res[i]
		})
	}
	return res, nil
}

// NormalizeAdvantages standardizes the advantages in place
// across every step and episode, using the population
// standard deviation.
//
// If every value is the same, or the standard deviation
// is below epsilon, everything is set to 0.
// If epsilon is 0, DefaultEpsilon is used.
func NormalizeAdvantages(advantages [][]float64, epsilon float64) {
	flat := flattenRewards(advantages)
	if len(flat) == 0 {
		return
	}
	if epsilon == 0 {
		epsilon = DefaultEpsilon
	}

	heterogeneous := false
	for _, x := range flat {
		if x != flat[0] {
			heterogeneous = true
			break
		}
	}

	mean, variance := stat.PopMeanVariance(flat, nil)
	std := math.Sqrt(variance)
	for _, seq := range advantages {
		for i, x := range seq {
			if !heterogeneous || std < epsilon {
				seq[i] = 0
			} else {
				seq[i] = (x - mean) / std
			}
		}
	}
}

func flattenRewards(r [][]float64) []float64 {
	var values []float64
	for _, seq := range r {
		values = append(values, seq...)
	}
	return values
}
