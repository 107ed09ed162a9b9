package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/adastrea-verse/internal/cadence"
)

type recordingBrain struct {
	BaseBrain
	elapsed []float64
	next    BehaviorMode
}

func (b *recordingBrain) Prepare(elapsed float64) { b.elapsed = append(b.elapsed, elapsed) }

func (b *recordingBrain) NextBehaviorMode(BehaviorMode) BehaviorMode { return b.next }

func TestTickCoalesces(t *testing.T) {
	b := &recordingBrain{}
	a := NewAgent("scout", b, 5)

	assert.Equal(t, 0, a.Tick(3))
	assert.Empty(t, b.elapsed)
	assert.Equal(t, 1, a.Tick(3))
	assert.Equal(t, []float64{6}, b.elapsed)
	assert.Zero(t, a.Pending(), "accumulator resets without carry-over")

	assert.Equal(t, 1, a.Tick(50), "a long stall runs one pass")
}

func TestTickCatchUp(t *testing.T) {
	b := &recordingBrain{}
	a := NewAgent("scout", b, 5)
	a.SetCadence(cadence.CatchUp)

	assert.Equal(t, 3, a.Tick(16))
	assert.Equal(t, []float64{5, 5, 5}, b.elapsed)
	assert.InDelta(t, 1.0, a.Pending(), 1e-9)
}

func TestInactiveAgentDoesNotAccumulate(t *testing.T) {
	a := NewAgent("sleeper", nil, 1)
	a.Deactivate()
	assert.Equal(t, 0, a.Tick(100))
	assert.Zero(t, a.Pending())
	assert.Equal(t, "Peaceful - Inactive", a.Describe())

	a.Activate()
	assert.Equal(t, 1, a.Tick(1))
}

func TestIntervalClamped(t *testing.T) {
	assert.Equal(t, MinInterval, NewAgent("a", nil, 0).Interval())
	assert.Equal(t, MaxInterval, NewAgent("b", nil, 60).Interval())
	assert.Equal(t, 2.5, NewAgent("c", nil, 2.5).Interval())
}

func TestModeChangeFromBrain(t *testing.T) {
	b := &recordingBrain{next: Aggressive}
	a := NewAgent("raider", b, 1)

	var changes [][2]BehaviorMode
	a.OnModeChange = func(old, new BehaviorMode) {
		changes = append(changes, [2]BehaviorMode{old, new})
	}

	a.Tick(1)
	assert.True(t, a.InMode(Aggressive))
	assert.True(t, a.IsAggressive())
	assert.False(t, a.IsPeaceful())
	assert.Equal(t, [][2]BehaviorMode{{Peaceful, Aggressive}}, changes)

	a.SetMode(Aggressive)
	assert.Len(t, changes, 1, "setting the same mode is silent")
}

func TestPeacefulModes(t *testing.T) {
	tests := []struct {
		mode       BehaviorMode
		peaceful   bool
		aggressive bool
	}{
		{Peaceful, true, false},
		{Trading, true, false},
		{Exploration, true, false},
		{Diplomatic, true, false},
		{Defensive, false, true},
		{Aggressive, false, true},
		{Resource, false, false},
		{Stealth, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			a := NewAgent("x", nil, 1)
			a.SetMode(tt.mode)
			assert.Equal(t, tt.peaceful, a.IsPeaceful())
			assert.Equal(t, tt.aggressive, a.IsAggressive())
		})
	}
}
