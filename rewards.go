package anyvrp

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// A RewardNormalizer rescales batches of rewards.
//
// Implementations may be stateful, in which case each call
// updates the state before normalizing.
type RewardNormalizer interface {
	Normalize(rewards []float64) []float64
}

// RunningMeanStd is a RewardNormalizer which tracks the
// running mean and variance of every reward it has seen,
// and standardizes rewards using those statistics.
//
// It is not safe to use from multiple goroutines.
type RunningMeanStd struct {
	Mean     float64
	Variance float64
	Count    float64

	// Epsilon is added to the variance before taking the
	// square root.
	//
	// If 0, DefaultEpsilon is used.
	Epsilon float64
}

// NewRunningMeanStd creates a RunningMeanStd with unit
// variance and a tiny prior count.
func NewRunningMeanStd() *RunningMeanStd {
	return &RunningMeanStd{Variance: 1, Count: 1e-4}
}

// Update merges a batch into the running statistics.
func (r *RunningMeanStd) Update(batch []float64) {
	if len(batch) == 0 {
		return
	}
	batchMean, batchVar := stat.PopMeanVariance(batch, nil)
	batchCount := float64(len(batch))

	delta := batchMean - r.Mean
	total := r.Count + batchCount
	m2 := r.Variance*r.Count + batchVar*batchCount +
		delta*delta*r.Count*batchCount/total

	r.Mean += delta * batchCount / total
	r.Variance = m2 / total
	r.Count = total
}

// Normalize updates the statistics with the rewards and
// returns standardized copies of them.
func (r *RunningMeanStd) Normalize(rewards []float64) []float64 {
	r.Update(rewards)
	eps := r.Epsilon
	if eps == 0 {
		eps = DefaultEpsilon
	}
	res := append([]float64{}, rewards...)
	floats.AddConst(-r.Mean, res)
	floats.Scale(1/math.Sqrt(r.Variance+eps), res)
	return res
}

// identityNormalizer leaves rewards untouched.
type identityNormalizer struct{}

func (identityNormalizer) Normalize(rewards []float64) []float64 {
	return append([]float64{}, rewards...)
}

// meanOf returns the mean of xs, or 0 if xs is empty.
func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}
