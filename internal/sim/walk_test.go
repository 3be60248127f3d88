package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWalk_DeterministicWithSeededRand(t *testing.T) {
	a := NewWalk(180, 180, 0.01, WithRand(rand.New(rand.NewSource(42))))
	b := NewWalk(180, 180, 0.01, WithRand(rand.New(rand.NewSource(42))))

	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Next(), b.Next(), "tick %d", i)
	}
}

func TestWalk_PricesAreRoundedToCents(t *testing.T) {
	w := NewWalk(99.999, 100, 0.02, WithRand(rand.New(rand.NewSource(7))))

	assert.Equal(t, 100.0, w.Last(), "entry is rounded")
	for i := 0; i < 200; i++ {
		price := w.Next()
		cents := price * 100
		assert.InDelta(t, math.Round(cents), cents, 1e-9, "tick %d price %v", i, price)
	}
}

func TestWalk_FloorsAtOne(t *testing.T) {
	w := NewWalk(1.01, 1.0, 0.5, WithRand(rand.New(rand.NewSource(1))), WithMeanReversion(0))

	for i := 0; i < 500; i++ {
		assert.GreaterOrEqual(t, w.Next(), 1.00)
	}
}

func TestWalk_MeanReversionPullsTowardBase(t *testing.T) {
	// no randomness band: start far below base and watch the pull
	w := NewWalk(100, 200, 0, WithRand(rand.New(rand.NewSource(3))))
	w.volatility = 0

	prev := w.Last()
	for i := 0; i < 20; i++ {
		next := w.Next()
		assert.Greater(t, next, prev, "tick %d should move toward base", i)
		prev = next
	}
}

func TestWalk_PredictionBiasesDirection(t *testing.T) {
	up := NewWalk(100, 100, 0,
		WithRand(rand.New(rand.NewSource(5))),
		WithMeanReversion(0),
		WithPrediction(Prediction{Direction: 1, Confidence: 1}),
		WithBiasScale(0.01))
	down := NewWalk(100, 100, 0,
		WithRand(rand.New(rand.NewSource(5))),
		WithMeanReversion(0),
		WithPrediction(Prediction{Direction: -1, Confidence: 1}),
		WithBiasScale(0.01))
	up.volatility = 0
	down.volatility = 0

	for i := 0; i < 10; i++ {
		up.Next()
		down.Next()
	}
	assert.Greater(t, up.Last(), 100.0)
	assert.Less(t, down.Last(), 100.0)
}

func TestRandomPrediction_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 100; i++ {
		p := RandomPrediction(rng)
		assert.Contains(t, []int{-1, 1}, p.Direction)
		assert.GreaterOrEqual(t, p.Confidence, 0.5)
		assert.LessOrEqual(t, p.Confidence, 0.95)
	}
}
