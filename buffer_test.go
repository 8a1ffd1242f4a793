package anyvrp

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func testObservations(n int) []*Observation {
	res := make([]*Observation, n)
	for i := range res {
		res[i] = &Observation{
			Nodes: mat.NewDense(2, NodeFeatures, nil),
			Edges: mat.NewDense(4, EdgeFeatures, nil),
		}
		res[i].Nodes.Set(1, 0, float64(i))
	}
	return res
}

func TestBufferComputeReturns(t *testing.T) {
	var b Buffer
	obs := testObservations(2)
	require.NoError(t, b.Observe(obs, []Action{{0}, {1}}, []float64{1, 2},
		[]float64{-1, -2}, []float64{0.5, 0.25}))
	require.NoError(t, b.Observe(obs, []Action{{1}, {0}}, []float64{3, -1},
		[]float64{-3, -4}, []float64{1, 2}))

	bootstrap := []float64{10, -10}
	decay := 0.5
	targets, advs, err := b.ComputeReturns(bootstrap, decay)
	require.NoError(t, err)

	v1 := []float64{3 + decay*10, -1 + decay*-10}
	v0 := []float64{1 + decay*v1[0], 2 + decay*v1[1]}
	testFloatsEquiv(t, targets[1], v1)
	testFloatsEquiv(t, targets[0], v0)
	testFloatsEquiv(t, advs[1], []float64{v1[0] - 1, v1[1] - 2})
	testFloatsEquiv(t, advs[0], []float64{v0[0] - 0.5, v0[1] - 0.25})

	targets, _, err = b.ComputeReturns(nil, 1)
	require.NoError(t, err)
	testFloatsEquiv(t, targets[0], []float64{4, 1})
	testFloatsEquiv(t, targets[1], []float64{3, -1})

	_, _, err = b.ComputeReturns([]float64{1}, 1)
	assert.True(t, errors.Is(err, ErrBatchMismatch))
}

func TestBufferObserveMismatch(t *testing.T) {
	var b Buffer
	obs := testObservations(2)
	err := b.Observe(obs, []Action{{0}}, []float64{1, 2}, []float64{0, 0}, []float64{0, 0})
	assert.True(t, errors.Is(err, ErrBatchMismatch))
	assert.Equal(t, 0, b.Len())

	require.NoError(t, b.Observe(obs, []Action{{0}, {1}}, []float64{1, 2},
		[]float64{0, 0}, []float64{0, 0}))
	err = b.Observe(testObservations(3), []Action{{0}, {1}, {2}}, []float64{1, 2, 3},
		[]float64{0, 0, 0}, []float64{0, 0, 0})
	assert.True(t, errors.Is(err, ErrBatchMismatch))
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, 2, b.BatchSize())
}

func TestBufferEmpty(t *testing.T) {
	var b Buffer
	_, err := b.Samples(nil, 0.9)
	assert.True(t, errors.Is(err, ErrEmptyBuffer))
}

func TestNormalizeAdvantages(t *testing.T) {
	advs := [][]float64{
		{1, 2, 3},
		{-1, 5, 0.5},
	}
	NormalizeAdvantages(advs, 0)
	flat := flattenRewards(advs)
	mean, variance := stat.PopMeanVariance(flat, nil)
	assert.InDelta(t, 0, mean, 1e-8)
	assert.InDelta(t, 1, math.Sqrt(variance), 1e-8)

	// Order is preserved.
	assert.Less(t, advs[1][0], advs[0][0])
	assert.Greater(t, advs[1][1], advs[0][2])
}

func TestNormalizeAdvantagesDegenerate(t *testing.T) {
	advs := [][]float64{{3.5, 3.5}}
	NormalizeAdvantages(advs, 0)
	testFloatsEquiv(t, advs[0], []float64{0, 0})

	advs = [][]float64{{1, 1 + 1e-12}}
	NormalizeAdvantages(advs, 1e-6)
	testFloatsEquiv(t, advs[0], []float64{0, 0})

	for _, x := range flattenRewards(advs) {
		assert.False(t, math.IsNaN(x))
	}
}

func TestBufferSamples(t *testing.T) {
	const horizon, batch = 3, 4
	b := &Buffer{Rand: rand.New(rand.NewSource(1))}
	var expectedLogProbs []float64
	for step := 0; step < horizon; step++ {
		obs := testObservations(batch)
		actions := make([]Action, batch)
		rewards := make([]float64, batch)
		logProbs := make([]float64, batch)
		values := make([]float64, batch)
		for i := range actions {
			actions[i] = Action{step, i}
			rewards[i] = float64(step*batch + i)
			logProbs[i] = -float64(step*batch+i) / 10
			values[i] = 1
		}
		expectedLogProbs = append(expectedLogProbs, logProbs...)
		require.NoError(t, b.Observe(obs, actions, rewards, logProbs, values))
	}

	targets, advs, err := b.ComputeReturns(nil, 1)
	require.NoError(t, err)
	NormalizeAdvantages(advs, 0)

	samples, err := b.Samples(nil, 1)
	require.NoError(t, err)
	require.Len(t, samples, horizon*batch)

	seen := map[[2]int]bool{}
	var logProbs []float64
	for _, s := range samples {
		key := [2]int{s.Step, s.Episode}
		assert.False(t, seen[key], "duplicate origin %v", key)
		seen[key] = true

		assert.Equal(t, Action{s.Step, s.Episode}, s.Action)
		assert.Equal(t, float64(s.Episode), s.Nodes.At(1, 0))
		assert.InDelta(t, targets[s.Step][s.Episode], s.Target, 1e-8)
		assert.InDelta(t, advs[s.Step][s.Episode], s.Advantage, 1e-8)
		logProbs = append(logProbs, s.LogProb)
	}

	sort.Float64s(logProbs)
	sort.Float64s(expectedLogProbs)
	testFloatsEquiv(t, logProbs, expectedLogProbs)
}
