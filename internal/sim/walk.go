package sim

import (
	"math"
	"math/rand"
)

// Walk tuning defaults. The volatility band mirrors the ±1% per-tick movement
// of the live quote feed; mean reversion keeps long runs anchored near the
// catalog base price.
const (
	DefaultVolatility    = 0.01
	DefaultMeanReversion = 0.01
	DefaultBiasScale     = 0.002
	floorPrice           = 1.00
)

// Prediction is a mocked ML price-direction signal blended into the walk.
type Prediction struct {
	Direction  int     // +1 up, -1 down
	Confidence float64 // 0..1
}

// RandomPrediction produces a mock signal with moderate-to-high confidence.
func RandomPrediction(rng *rand.Rand) Prediction {
	dir := 1
	if rng.Float64() < 0.5 {
		dir = -1
	}
	return Prediction{Direction: dir, Confidence: 0.5 + rng.Float64()*0.45}
}

// Walk is a bounded random walk: a uniform step inside a symbol-specific
// volatility band, pulled toward a fixed base price, optionally nudged by a
// prediction bias. Prices are rounded to cents every step and floored at 1.00.
type Walk struct {
	rng           *rand.Rand
	base          float64
	volatility    float64
	meanReversion float64
	biasScale     float64
	pred          *Prediction
	last          float64
}

// WalkOption configures a Walk.
type WalkOption func(*Walk)

// WithRand sets the random source, letting tests run deterministically.
func WithRand(rng *rand.Rand) WalkOption {
	return func(w *Walk) { w.rng = rng }
}

// WithMeanReversion sets the pull factor toward the base price.
func WithMeanReversion(factor float64) WalkOption {
	return func(w *Walk) { w.meanReversion = factor }
}

// WithPrediction blends a mocked prediction signal into every step.
func WithPrediction(p Prediction) WalkOption {
	return func(w *Walk) { w.pred = &p }
}

// WithBiasScale sets how strongly the prediction signal moves the price.
func WithBiasScale(scale float64) WalkOption {
	return func(w *Walk) { w.biasScale = scale }
}

// NewWalk seeds a walk at entry, reverting toward base, with the given
// per-tick volatility fraction.
func NewWalk(entry, base, volatility float64, opts ...WalkOption) *Walk {
	if volatility <= 0 {
		volatility = DefaultVolatility
	}
	w := &Walk{
		rng:           rand.New(rand.NewSource(rand.Int63())),
		base:          base,
		volatility:    volatility,
		meanReversion: DefaultMeanReversion,
		biasScale:     DefaultBiasScale,
		last:          round2(entry),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Last returns the most recent price without advancing.
func (w *Walk) Last() float64 {
	return w.last
}

// Next advances the walk one tick and returns the new price.
func (w *Walk) Next() float64 {
	band := w.last * w.volatility
	step := (w.rng.Float64()*2 - 1) * band
	step += w.meanReversion * (w.base - w.last)
	if w.pred != nil {
		step += float64(w.pred.Direction) * w.pred.Confidence * w.last * w.biasScale
	}
	next := round2(w.last + step)
	if next < floorPrice {
		next = floorPrice
	}
	w.last = next
	return next
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
