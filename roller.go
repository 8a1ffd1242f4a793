package anyvrp

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/unixpickle/essentials"
)

// Default Roller settings.
const (
	DefaultNumSteps  = 10
	DefaultLambda    = 0.99
	DefaultBeamWidth = 10
)

// RolloutResult is the output of one rollout window.
type RolloutResult struct {
	// ID uniquely identifies the window in logs.
	ID uuid.UUID

	// Samples are the labeled transitions, in no
	// particular order.
	Samples []*Sample

	// Final holds the observations after the last step,
	// for starting the next window.
	Final []*Observation

	// History[t][i] is the cost of episode i after step t.
	History [][]float64

	// BestCosts holds each episode's best cost at the end
	// of the window.
	BestCosts []float64

	// MeanReward is the mean, over episodes, of the total
	// raw reward collected during the window.
	MeanReward float64

	// MeanEntropy is the mean policy entropy over every
	// step and episode.
	MeanEntropy float64
}

// MeanCost returns the mean episode cost after the last
// step, or 0 if there were no steps.
func (r *RolloutResult) MeanCost() float64 {
	if len(r.History) == 0 {
		return 0
	}
	return meanOf(r.History[len(r.History)-1])
}

// MeanBestCost returns the mean of BestCosts.
func (r *RolloutResult) MeanBestCost() float64 {
	return meanOf(r.BestCosts)
}

// A Roller runs a Policy on a BatchEnv for fixed-length
// windows and turns the results into training samples.
type Roller struct {
	Policy Policy

	// Normalizer rescales rewards before they are
	// recorded.
	// It is called once per step, so stateful normalizers
	// see every reward.
	//
	// If nil, raw rewards are recorded.
	Normalizer RewardNormalizer

	// Logger, if non-nil, receives per-step and
	// per-window information.
	Logger Logger

	// NumSteps is the number of steps per window.
	//
	// If 0, DefaultNumSteps is used.
	NumSteps int

	// Lambda is the decay used when computing returns.
	//
	// If 0, DefaultLambda is used.
	Lambda float64

	// BeamWidth is passed to the Policy.
	//
	// If 0, DefaultBeamWidth is used.
	BeamWidth int

	// Greedy is passed to the Policy.
	Greedy bool

	// Rand, if non-nil, shuffles the resulting samples.
	Rand *rand.Rand

	// Epsilon is the advantage normalization epsilon.
	//
	// If 0, DefaultEpsilon is used.
	Epsilon float64
}

// Rollout runs one window starting from obs, which should
// come from env.Reset or a previous RolloutResult.Final.
//
// If isLast is false, the Policy is queried once more on
// the final observations to bootstrap the returns.
// Otherwise, the window is treated as the end of the
// episodes.
func (r *Roller) Rollout(env *BatchEnv, obs []*Observation,
	isLast bool) (res *RolloutResult, err error) {
	defer essentials.AddCtxTo("rollout", &err)

	buffer := &Buffer{Rand: r.Rand, Epsilon: r.Epsilon}
	normalizer := r.Normalizer
	if normalizer == nil {
		normalizer = identityNormalizer{}
	}

	res = &RolloutResult{ID: uuid.New()}
	rewardSums := make([]float64, env.Len())
	var entropies []float64

	for t := 0; t < r.numSteps(); t++ {
		out, err := r.infer(obs)
		if err != nil {
			return nil, err
		}
		newObs, rewards, err := env.Step(out.Actions)
		if err != nil {
			return nil, err
		}
		for i, rew := range rewards {
			rewardSums[i] += rew
		}
		entropy := meanOf(out.Entropy)
		entropies = append(entropies, out.Entropy...)
		if r.Logger != nil {
			r.Logger.LogStep(t, rewards, entropy)
		}

		normRewards := normalizer.Normalize(rewards)
		err = buffer.Observe(obs, out.Actions, normRewards, out.LogProbs, out.Values)
		if err != nil {
			return nil, err
		}
		obs = newObs
		res.History = append(res.History, env.Costs())
	}

	var bootstrap []float64
	if !isLast {
		out, err := r.infer(obs)
		if err != nil {
			return nil, essentials.AddCtx("bootstrap", err)
		}
		bootstrap = out.Values
	}

	res.Samples, err = buffer.Samples(bootstrap, r.lambda())
	if err != nil {
		return nil, err
	}
	res.Final = obs
	res.BestCosts = env.BestCosts()
	res.MeanReward = meanOf(rewardSums)
	res.MeanEntropy = meanOf(entropies)

	if r.Logger != nil {
		r.Logger.LogWindow(res)
	}

	return res, nil
}

func (r *Roller) infer(obs []*Observation) (*PolicyOutput, error) {
	batch, err := MakeStaticBatch(obs)
	if err != nil {
		return nil, err
	}
	out, err := r.Policy.Infer(batch, r.beamWidth(), r.Greedy)
	if err != nil {
		return nil, err
	}
	if err := out.checkBatch(len(obs)); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Roller) numSteps() int {
	if r.NumSteps == 0 {
		return DefaultNumSteps
	}
	return r.NumSteps
}

func (r *Roller) lambda() float64 {
	if r.Lambda == 0 {
		return DefaultLambda
	}
	return r.Lambda
}

func (r *Roller) beamWidth() int {
	if r.BeamWidth == 0 {
		return DefaultBeamWidth
	}
	return r.BeamWidth
}
