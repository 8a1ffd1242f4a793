package anyvrp

import (
	"fmt"

	"github.com/unixpickle/essentials"
	"golang.org/x/sync/errgroup"
)

// A BatchEnv runs a fixed list of Episodes in lockstep.
//
// Every batched input and output is ordered like the
// episode list.
type BatchEnv struct {
	// Parallel, if true, steps the episodes on separate
	// goroutines.
	// The Solvers must not share state for this to be
	// safe.
	Parallel bool

	episodes []*Episode
}

// NewBatchEnv creates a BatchEnv for the episodes.
func NewBatchEnv(episodes []*Episode) *BatchEnv {
	return &BatchEnv{episodes: append([]*Episode{}, episodes...)}
}

// MakeBatchEnv creates n Episodes from the instances for
// indices 0 through n-1 and batches them.
func MakeBatchEnv(maker InstanceMaker, factory SolverFactory, n int,
	maxDist float64) (b *BatchEnv, err error) {
	defer essentials.AddCtxTo("make batch env", &err)
	episodes := make([]*Episode, n)
	for i := range episodes {
		inst, err := maker(i)
		if err != nil {
			return nil, err
		}
		episodes[i], err = NewEpisode(inst, factory, maxDist)
		if err != nil {
			return nil, essentials.AddCtx(fmt.Sprintf("episode %d", i), err)
		}
	}
	return NewBatchEnv(episodes), nil
}

// Len returns the number of episodes.
func (b *BatchEnv) Len() int {
	return len(b.episodes)
}

// Episodes returns the underlying episodes.
func (b *BatchEnv) Episodes() []*Episode {
	return b.episodes
}

// Reset resets every episode.
func (b *BatchEnv) Reset() (obs []*Observation, err error) {
	defer essentials.AddCtxTo("reset batch", &err)
	obs = make([]*Observation, len(b.episodes))
	for i, e := range b.episodes {
		obs[i], err = e.Reset()
		if err != nil {
			return nil, essentials.AddCtx(fmt.Sprintf("episode %d", i), err)
		}
	}
	return obs, nil
}

// Step applies actions[i] to episode i.
//
// If any episode fails, the whole step fails.
func (b *BatchEnv) Step(actions []Action) (obs []*Observation, rewards []float64,
	err error) {
	if len(actions) != len(b.episodes) {
		return nil, nil, fmt.Errorf("step batch: %w: got %d actions for %d episodes",
			ErrBatchMismatch, len(actions), len(b.episodes))
	}
	defer essentials.AddCtxTo("step batch", &err)

	obs = make([]*Observation, len(b.episodes))
	rewards = make([]float64, len(b.episodes))
	stepOne := func(i int) error {
		var err error
		obs[i], rewards[i], err = b.episodes[i].Step(actions[i])
		if err != nil {
			return essentials.AddCtx(fmt.Sprintf("episode %d", i), err)
		}
		return nil
	}

	if b.Parallel {
		var g errgroup.Group
		for i := range b.episodes {
			i := i
			g.Go(func() error {
				return stepOne(i)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	} else {
		for i := range b.episodes {
			if err := stepOne(i); err != nil {
				return nil, nil, err
			}
		}
	}

	return obs, rewards, nil
}

// Costs returns the current cost of every episode.
func (b *BatchEnv) Costs() []float64 {
	res := make([]float64, len(b.episodes))
	for i, e := range b.episodes {
		res[i] = e.Cost()
	}
	return res
}

// BestCosts returns the best cost of every episode.
func (b *BatchEnv) BestCosts() []float64 {
	res := make([]float64, len(b.episodes))
	for i, e := range b.episodes {
		res[i] = e.BestCost()
	}
	return res
}
