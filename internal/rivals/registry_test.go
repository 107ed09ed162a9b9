package rivals

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/adastrea-verse/internal/entropy"
	"github.com/talgya/adastrea-verse/internal/way"
)

func newTestRegistry() *Registry {
	return NewRegistry(entropy.NewSeeded(7))
}

func TestSpawnClampsHeatAndNames(t *testing.T) {
	r := newTestRegistry()
	feat := &way.Feat{ID: "pirate-king"}

	a := r.Spawn(feat, way.GoalRevenge, 150)
	assert.Equal(t, 100, a.Heat)
	assert.Equal(t, "pirate-king", a.FeatID)
	assert.True(t, a.Active)
	assert.NotEqual(t, uuid.Nil, a.ID)

	parts := strings.SplitN(a.Name, " ", 2)
	require.Len(t, parts, 2)
	assert.Contains(t, namePrefixes, parts[0])
	assert.Contains(t, surnames[way.GoalRevenge], parts[1])

	b := r.Spawn(nil, way.GoalGreed, -10)
	assert.Equal(t, 0, b.Heat)
	assert.Empty(t, b.FeatID)
}

func TestSpawnNeverMerges(t *testing.T) {
	r := newTestRegistry()
	feat := &way.Feat{ID: "duel"}

	a := r.Spawn(feat, way.GoalHonor, 30)
	b := r.Spawn(feat, way.GoalHonor, 30)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, r.Count())
}

func TestUnknownGoalUsesFallbackNames(t *testing.T) {
	r := newTestRegistry()
	a := r.Spawn(nil, way.RivalGoal(99), 10)
	parts := strings.SplitN(a.Name, " ", 2)
	require.Len(t, parts, 2)
	assert.Contains(t, fallbackSurnames, parts[1])
}

func TestOnFeatCompleted(t *testing.T) {
	trigger := &way.AntagonistTrigger{SpawnChance: 0.5, InitialHeat: 40, Goal: way.GoalJealousy}
	feat := &way.Feat{ID: "rich", Trigger: trigger}

	hit := NewRegistry(entropy.Fixed(0.2))
	a, ok := hit.OnFeatCompleted(feat)
	require.True(t, ok)
	assert.Equal(t, way.GoalJealousy, a.Goal)
	assert.Equal(t, 40, a.Heat)

	miss := NewRegistry(entropy.Fixed(0.5))
	_, ok = miss.OnFeatCompleted(feat)
	assert.False(t, ok)
	assert.Zero(t, miss.Count())

	_, ok = hit.OnFeatCompleted(&way.Feat{ID: "quiet"})
	assert.False(t, ok)
	_, ok = hit.OnFeatCompleted(nil)
	assert.False(t, ok)
}

func TestHeatChanges(t *testing.T) {
	r := newTestRegistry()
	a := r.Spawn(nil, way.GoalCompetition, 90)

	require.True(t, r.RecordEncounter(a.ID))
	got, _ := r.Get(a.ID)
	assert.Equal(t, 95, got.Heat)
	assert.Equal(t, 1, got.Encounters)

	r.RecordEncounter(a.ID)
	r.RecordEncounter(a.ID)
	got, _ = r.Get(a.ID)
	assert.Equal(t, 100, got.Heat, "encounter bump is clamped")

	require.True(t, r.ModifyHeat(a.ID, -250))
	got, _ = r.Get(a.ID)
	assert.Equal(t, 0, got.Heat)

	assert.False(t, r.ModifyHeat(uuid.New(), 5))
	assert.False(t, r.RecordEncounter(uuid.New()))
}

func TestModifyHeatSaturates(t *testing.T) {
	tests := []struct {
		name  string
		start int
		delta int
		want  int
	}{
		{"small rise", 50, 10, 60},
		{"small fall", 50, -10, 40},
		{"past ceiling", 50, 75, 100},
		{"past floor", 50, -75, 0},
		{"max int", 50, math.MaxInt, 100},
		{"min int", 50, math.MinInt, 0},
		{"max int at ceiling", 100, math.MaxInt, 100},
		{"min int at floor", 0, math.MinInt, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry()
			a := r.Spawn(nil, way.GoalCompetition, tt.start)
			require.True(t, r.ModifyHeat(a.ID, tt.delta))
			got, _ := r.Get(a.ID)
			assert.Equal(t, tt.want, got.Heat)
		})
	}
}

func TestDecayHugeDelta(t *testing.T) {
	r := newTestRegistry()
	a := r.Spawn(nil, way.GoalObsession, 50)
	r.Decay(math.MaxFloat64)
	got, _ := r.Get(a.ID)
	assert.Equal(t, 0, got.Heat)
}

func TestDecay(t *testing.T) {
	r := newTestRegistry()
	a := r.Spawn(nil, way.GoalObsession, 50)
	idle := r.Spawn(nil, way.GoalObsession, 50)
	r.Deactivate(idle.ID)

	r.Decay(DecayInterval)
	got, _ := r.Get(a.ID)
	assert.Equal(t, 20, got.Heat)

	prev := got.Heat
	for i := 0; i < 10; i++ {
		r.Decay(DecayInterval)
		got, _ = r.Get(a.ID)
		assert.LessOrEqual(t, got.Heat, prev)
		assert.GreaterOrEqual(t, got.Heat, 0)
		prev = got.Heat
	}
	assert.Equal(t, 0, got.Heat)

	inactive, _ := r.Get(idle.ID)
	assert.Equal(t, 50, inactive.Heat, "inactive rivals keep their heat")

	r.Decay(-30)
	r.Decay(0.5)
}

func TestQueriesFilterActive(t *testing.T) {
	r := newTestRegistry()
	hot := r.Spawn(nil, way.GoalGreed, 80)
	cold := r.Spawn(nil, way.GoalGreed, 20)
	gone := r.Spawn(nil, way.GoalGreed, 90)
	r.Deactivate(gone.ID)

	assert.Len(t, r.Active(), 2)
	assert.Len(t, r.All(), 3)
	assert.Len(t, r.ByGoal(way.GoalGreed), 2)
	assert.Empty(t, r.ByGoal(way.GoalJustice))

	high := r.HighHeat(DefaultHighHeat)
	require.Len(t, high, 1)
	assert.Equal(t, hot.ID, high[0].ID)

	r.Deactivate(hot.ID)
	r.Deactivate(cold.ID)
	assert.False(t, r.HasActive())
	require.True(t, r.Reactivate(cold.ID))
	assert.True(t, r.HasActive())

	r.Clear()
	assert.Zero(t, r.Count())
}

func TestQueriesReturnCopies(t *testing.T) {
	r := newTestRegistry()
	a := r.Spawn(nil, way.GoalHonor, 10)
	require.True(t, r.Affiliate(a.ID, "sol-union", "ruthless"))

	list := r.Active()
	list[0].Heat = 99
	list[0].Traits[0] = "kind"

	got, _ := r.Get(a.ID)
	assert.Equal(t, 10, got.Heat)
	assert.Equal(t, []string{"ruthless"}, got.Traits)
	assert.Equal(t, "sol-union", got.FactionID)
}

func TestDescribe(t *testing.T) {
	r := newTestRegistry()
	r.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	a := r.Spawn(&way.Feat{ID: "heist"}, way.GoalGreed, 40)

	d := a.Describe()
	assert.Contains(t, d, a.Name)
	assert.Contains(t, d, "heat=40")
	assert.Contains(t, d, "feat=heist")
	assert.Contains(t, d, "3 hours ago")
}
