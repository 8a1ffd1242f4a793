package anyvrp

import (
	"math"
	"math/rand"
)

// Minibatches shuffles the samples and splits them into
// batches of the given size.
//
// The last batch may be smaller than size.
// If rng is nil, the global source is used.
func Minibatches(samples []*Sample, size int, rng *rand.Rand) [][]*Sample {
	if size <= 0 {
		panic("minibatch size must be positive")
	}
	var indices []int
	if rng == nil {
		indices = rand.Perm(len(samples))
	} else {
		indices = rng.Perm(len(samples))
	}

	var res [][]*Sample
	for len(indices) > 0 {
		n := size
		if n > len(indices) {
			n = len(indices)
		}
		batch := make([]*Sample, n)
		for i, idx := range indices[:n] {
			batch[i] = samples[idx]
		}
		res = append(res, batch)
		indices = indices[n:]
	}
	return res
}

// FracReducer reduces sample sets by randomly selecting a
// fraction of the samples.
type FracReducer struct {
	Frac float64

	// Rand is the source of randomness.
	// If nil, the global source is used.
	Rand *rand.Rand
}

// Reduce selects the samples.
//
// The number of samples is always rounded up to avoid
// selecting 0 samples.
func (f *FracReducer) Reduce(samples []*Sample) []*Sample {
	if len(samples) == 0 {
		return nil
	}
	numSelected := int(math.Ceil(f.Frac * float64(len(samples))))
	if numSelected < 1 {
		numSelected = 1
	} else if numSelected > len(samples) {
		numSelected = len(samples)
	}
	return Minibatches(samples, numSelected, f.Rand)[0]
}
