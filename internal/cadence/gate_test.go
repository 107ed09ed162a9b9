package cadence

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateCoalesce(t *testing.T) {
	g := NewGate(5)

	assert.Equal(t, 0, g.Advance(3))
	assert.InDelta(t, 3.0, g.Elapsed(), 1e-9)

	assert.Equal(t, 1, g.Advance(3))
	assert.Zero(t, g.Elapsed(), "overshoot is discarded")

	// A single large delta still runs one pass.
	assert.Equal(t, 1, g.Advance(17))
	assert.Zero(t, g.Elapsed())
}

func TestGateCatchUp(t *testing.T) {
	g := &Gate{Interval: 5, Mode: CatchUp}

	assert.Equal(t, 3, g.Advance(17))
	assert.InDelta(t, 2.0, g.Elapsed(), 1e-9)
	assert.Equal(t, 1, g.Advance(3))
	assert.InDelta(t, 0.0, g.Elapsed(), 1e-9)
}

func TestGateIgnoresBadInput(t *testing.T) {
	tests := []struct {
		name     string
		interval float64
		dt       float64
	}{
		{"zero interval", 0, 10},
		{"negative dt", 1, -4},
		{"nan dt", 1, math.NaN()},
		{"zero dt", 1, 0},
		{"infinite dt", 1, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate(tt.interval)
			assert.Equal(t, 0, g.Advance(tt.dt))
			assert.Zero(t, g.Elapsed())
		})
	}
}

func TestGateReset(t *testing.T) {
	g := NewGate(10)
	g.Advance(9)
	g.Reset()
	assert.Equal(t, 0, g.Advance(9))
}

func TestParseMode(t *testing.T) {
	m, ok := ParseMode("catchup")
	assert.True(t, ok)
	assert.Equal(t, CatchUp, m)

	m, ok = ParseMode("")
	assert.True(t, ok)
	assert.Equal(t, Coalesce, m)

	_, ok = ParseMode("sometimes")
	assert.False(t, ok)
}

func TestGateCatchUpRecoversFromHugeBacklog(t *testing.T) {
	tests := []struct {
		name string
		dt   float64
		want int
	}{
		{"infinite", math.Inf(1), 0},
		{"max float", math.MaxFloat64, MaxCatchUp},
		{"just over cap", 10*MaxCatchUp + 25, MaxCatchUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate(10)
			g.Mode = CatchUp
			assert.Equal(t, tt.want, g.Advance(tt.dt))
			assert.False(t, math.IsNaN(g.Elapsed()))
			assert.Less(t, g.Elapsed(), 10.0)

			// The gate keeps working afterwards.
			g.Reset()
			assert.Equal(t, 2, g.Advance(25))
			assert.InDelta(t, 5.0, g.Elapsed(), 1e-9)
		})
	}
}
