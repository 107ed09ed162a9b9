package way

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrecept(t *testing.T) {
	p, ok := ParsePrecept("  honor ")
	require.True(t, ok)
	assert.Equal(t, Honor, p)

	_, ok = ParsePrecept("Greed")
	assert.False(t, ok)

	assert.Len(t, AllPrecepts(), 20)
	assert.Equal(t, "Harmony", Harmony.String())
	assert.Equal(t, "Unknown", Precept(200).String())
}

func TestPreceptListFirstMatch(t *testing.T) {
	list := PreceptList{
		{Precept: Honor, Importance: 80},
		{Precept: Cunning, Importance: 40},
		{Precept: Honor, Importance: 10},
	}

	assert.Equal(t, 80, list.Importance(Honor))
	assert.Equal(t, 0, list.Importance(Freedom))
	assert.Equal(t, []Precept{Honor}, list.Duplicates())
	assert.Len(t, list, 3, "duplicates are reported, not removed")

	primary, ok := list.Primary()
	require.True(t, ok)
	assert.Equal(t, Honor, primary)
	assert.Len(t, list.AboveThreshold(40), 2)
}

func TestAlignmentScore(t *testing.T) {
	precepts := PreceptList{{Precept: Honor, Importance: 80}}

	tests := []struct {
		name       string
		alignments []Alignment
		want       float64
	}{
		{"single match", []Alignment{{Precept: Honor, Strength: 50}}, 40},
		{"no match", []Alignment{{Precept: Prosperity, Strength: 90}}, 0},
		{"duplicate alignment counts twice", []Alignment{{Precept: Honor, Strength: 50}, {Precept: Honor, Strength: 50}}, 80},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AlignmentScore(tt.alignments, precepts), 1e-9)
		})
	}
}

func TestFeatReputationGain(t *testing.T) {
	f := &Feat{
		ID:                   "first-contact",
		BaseReputationGain:   10,
		ReputationMultiplier: 1.5,
		Alignments: []Alignment{
			{Precept: Discovery, Strength: 80},
			{Precept: Unity, Strength: 40},
		},
	}
	precepts := PreceptList{
		{Precept: Discovery, Importance: 100},
		{Precept: Unity, Importance: 50},
	}
	// 10*1.5*0.8 + 10*1.5*0.2 = 12 + 3
	assert.Equal(t, 15, f.ReputationGain(precepts))
	assert.Equal(t, 0, f.ReputationGain(nil))

	p, ok := f.PrimaryAlignment()
	require.True(t, ok)
	assert.Equal(t, Discovery, p)
	assert.Equal(t, 40, f.AlignmentStrength(Unity))
	assert.False(t, f.AlignsWith(Honor))
}

func TestFeatCanBeEarned(t *testing.T) {
	f := &Feat{ID: "admiral", Prerequisites: []string{"captain", ""}}
	done := map[string]bool{}
	has := func(id string) bool { return done[id] }

	assert.False(t, f.CanBeEarned(has))
	done["captain"] = true
	assert.True(t, f.CanBeEarned(has))
}

func TestNetwork(t *testing.T) {
	n := &Network{
		ID: "free-traders",
		Members: []NetworkMember{
			{WayID: "a", Influence: 30},
			{WayID: "b", Influence: 70},
		},
		SharedPrecepts:   PreceptList{{Precept: Prosperity, Importance: 60}},
		SpilloverPercent: 30,
		AlignmentBonus:   1.5,
		MinReputation:    25,
	}

	assert.True(t, n.IsMember("b"))
	assert.Equal(t, 0, n.MemberInfluence("c"))
	m, ok := n.MostInfluential()
	require.True(t, ok)
	assert.Equal(t, "b", m.WayID)

	assert.Equal(t, 30, n.Spillover(100))
	assert.Equal(t, 0, n.Spillover(-5))
	assert.True(t, n.Qualifies(25))
	assert.False(t, n.Qualifies(24))
	assert.InDelta(t, 30.0, n.Alignment([]Alignment{{Precept: Prosperity, Strength: 50}}), 1e-9)
	assert.Equal(t, "This network values: Prosperity", n.PhilosophySummary())
}

func TestEnumsEncodeByName(t *testing.T) {
	b, err := json.Marshal(Alignment{Precept: Cunning, Strength: 5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"precept":"Cunning","strength":5}`, string(b))

	var trig AntagonistTrigger
	require.NoError(t, json.Unmarshal([]byte(`{"spawn_chance":0.5,"initial_heat":20,"goal":"greed"}`), &trig))
	assert.Equal(t, GoalGreed, trig.Goal)

	var r Rarity
	assert.Error(t, r.UnmarshalText([]byte("shiny")))
}
