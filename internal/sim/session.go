package sim

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a simulated position.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// HistoryLimit bounds the per-session price buffer to the newest samples.
const HistoryLimit = 100

// Sample is one point of the synthetic price stream.
type Sample struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// Session is one open simulated position plus the price walk driving it.
// Safe for concurrent use: the tick goroutine advances it while handlers
// read it.
type Session struct {
	Symbol     string
	Qty        decimal.Decimal
	Side       Side
	EntryPrice float64
	StartedAt  time.Time

	mu      sync.Mutex
	walk    *Walk
	history []Sample
}

// NewSession opens a position at the walk's seed price.
func NewSession(symbol string, qty decimal.Decimal, side Side, walk *Walk) *Session {
	now := time.Now()
	return &Session{
		Symbol:     symbol,
		Qty:        qty,
		Side:       side,
		EntryPrice: walk.Last(),
		StartedAt:  now,
		walk:       walk,
		history:    []Sample{{Time: now, Price: walk.Last()}},
	}
}

// Advance ticks the walk once and records the sample, dropping the oldest
// sample beyond HistoryLimit.
func (s *Session) Advance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	price := s.walk.Next()
	s.history = append(s.history, Sample{Time: time.Now(), Price: price})
	if len(s.history) > HistoryLimit {
		s.history = s.history[len(s.history)-HistoryLimit:]
	}
	return price
}

// CurrentPrice returns the latest synthetic price.
func (s *Session) CurrentPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.walk.Last()
}

// History returns a copy of the bounded sample buffer, oldest first.
func (s *Session) History() []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sample, len(s.history))
	copy(out, s.history)
	return out
}

// UnrealizedPnL marks the open position to the latest price:
// (current − entry) × qty for longs, sign flipped for shorts.
func (s *Session) UnrealizedPnL() decimal.Decimal {
	return PnL(s.Side, s.EntryPrice, s.CurrentPrice(), s.Qty)
}

// PnL books profit for a position entered at entry and exited at exit.
func PnL(side Side, entry, exit float64, qty decimal.Decimal) decimal.Decimal {
	diff := decimal.NewFromFloat(exit).Sub(decimal.NewFromFloat(entry))
	if side == SideSell {
		diff = diff.Neg()
	}
	return diff.Mul(qty).Round(2)
}
