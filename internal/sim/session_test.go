package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestSession(side Side) *Session {
	walk := NewWalk(178.42, 180, 0.01, WithRand(rand.New(rand.NewSource(11))))
	return NewSession("AAPL", d("10"), side, walk)
}

func TestSession_SeedsHistoryWithEntry(t *testing.T) {
	s := newTestSession(SideBuy)

	history := s.History()
	assert.Len(t, history, 1)
	assert.Equal(t, 178.42, history[0].Price)
	assert.Equal(t, 178.42, s.EntryPrice)
	assert.Equal(t, 178.42, s.CurrentPrice())
}

func TestSession_HistoryIsBounded(t *testing.T) {
	s := newTestSession(SideBuy)

	for i := 0; i < HistoryLimit*3; i++ {
		s.Advance()
	}

	history := s.History()
	assert.Len(t, history, HistoryLimit)
	// newest sample is the walk's latest price
	assert.Equal(t, s.CurrentPrice(), history[len(history)-1].Price)
}

func TestSession_HistoryReturnsCopy(t *testing.T) {
	s := newTestSession(SideBuy)
	s.Advance()

	history := s.History()
	history[0].Price = -1

	assert.NotEqual(t, -1.0, s.History()[0].Price)
}

func TestPnL_LongAndShort(t *testing.T) {
	tests := []struct {
		name  string
		side  Side
		entry float64
		exit  float64
		want  string
	}{
		{"long gain", SideBuy, 100, 110, "100.00"},
		{"long loss", SideBuy, 100, 95, "-50.00"},
		{"short gain", SideSell, 100, 90, "100.00"},
		{"short loss", SideSell, 100, 104, "-40.00"},
		{"flat", SideBuy, 178.42, 178.42, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PnL(tt.side, tt.entry, tt.exit, d("10"))
			assert.True(t, got.Equal(d(tt.want)), "pnl = %s", got)
		})
	}
}

func TestSession_UnrealizedPnLTracksWalk(t *testing.T) {
	s := newTestSession(SideBuy)
	assert.True(t, s.UnrealizedPnL().IsZero())

	s.Advance()
	want := PnL(SideBuy, s.EntryPrice, s.CurrentPrice(), s.Qty)
	assert.True(t, s.UnrealizedPnL().Equal(want))
}
