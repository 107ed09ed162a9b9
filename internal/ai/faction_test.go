package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/adastrea-verse/internal/way"
)

func testWay(mil, eco, dip float64, traits ...string) *way.Way {
	return &way.Way{
		ID:         "sol",
		Name:       "Sol Union",
		Military:   mil,
		Economic:   eco,
		Diplomatic: dip,
		Traits:     traits,
	}
}

func TestFactionPriority(t *testing.T) {
	tests := []struct {
		name     string
		mil      float64
		eco      float64
		dip      float64
		atWar    bool
		strategy Strategy
		want     Priority
	}{
		{"at war and weak", 20, 60, 60, true, StrategyBalanced, Critical},
		{"economic crisis", 60, 10, 60, false, StrategyBalanced, Critical},
		{"vulnerable", 60, 60, 20, false, StrategyBalanced, High},
		{"at war with adequate military", 40, 60, 60, true, StrategyBalanced, Low},
		{"expansion", 60, 60, 60, false, StrategyExpansion, Medium},
		{"military", 60, 60, 60, false, StrategyMilitary, Medium},
		{"calm", 60, 60, 60, false, StrategyDiplomatic, Low},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFactionLogic(testWay(tt.mil, tt.eco, tt.dip))
			if tt.atWar {
				f.Relations.AddEnemy("pirates")
			}
			f.Strategy = tt.strategy
			assert.Equal(t, tt.want, f.EvaluatePriority())
		})
	}
}

func TestShouldChangeStrategy(t *testing.T) {
	tests := []struct {
		name    string
		mil     float64
		eco     float64
		dip     float64
		atWar   bool
		want    Strategy
		changed bool
	}{
		{"survival", 45, 60, 60, true, StrategySurvival, true},
		{"crisis", 60, 10, 60, false, StrategyEconomic, true},
		{"strong", 60, 60, 60, false, StrategyExpansion, true},
		{"vulnerable", 40, 40, 20, false, StrategyConsolidation, true},
		{"no change", 40, 40, 40, false, StrategyBalanced, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFactionLogic(testWay(tt.mil, tt.eco, tt.dip))
			if tt.atWar {
				f.Relations.AddEnemy("pirates")
			}
			assert.Equal(t, tt.changed, f.ShouldChangeStrategy())
			assert.Equal(t, tt.want, f.Strategy)
			assert.False(t, f.ShouldChangeStrategy(), "stable on re-evaluation")
		})
	}
}

func TestEarlyGameExit(t *testing.T) {
	f := NewFactionLogic(testWay(40, 40, 40))
	f.ShouldChangeStrategy()
	assert.True(t, f.EarlyGame)

	f.Strengths.Military = 60
	f.ShouldChangeStrategy()
	assert.False(t, f.EarlyGame)
}

func TestStrategicReviewCadence(t *testing.T) {
	f := NewFactionLogic(testWay(60, 60, 60))
	var changes []Strategy
	f.OnStrategyChange = func(_, next Strategy) { changes = append(changes, next) }

	f.Tick(3600)
	assert.Equal(t, StrategyBalanced, f.Strategy)

	f.Tick(StrategyReviewSeconds - 3600)
	assert.Equal(t, StrategyExpansion, f.Strategy)
	assert.Equal(t, []Strategy{StrategyExpansion}, changes)
	assert.Equal(t, Exploration, f.Mode())
}

func TestCriticalMilitaryAction(t *testing.T) {
	f := NewFactionLogic(testWay(20, 50, 50))
	f.Relations.AddEnemy("pirates")

	require.True(t, f.DecideAction(f.EvaluatePriority()))
	assert.InDelta(t, 25.0, f.Strengths.Military, 1e-9)
	assert.InDelta(t, 48.0, f.Strengths.Economic, 1e-9)

	h := f.History()
	require.Len(t, h, 1)
	assert.Equal(t, "mobilize reserves", h[0].Action)
	assert.Equal(t, Critical, h[0].Priority)
}

func TestActionsScaleWithElapsedTime(t *testing.T) {
	f := NewFactionLogic(testWay(60, 10, 60))
	f.Prepare(1800)
	f.DecideAction(Critical)
	assert.InDelta(t, 12.0, f.Strengths.Economic, 1e-9)
}

func TestExpansionGainsTerritories(t *testing.T) {
	f := NewFactionLogic(testWay(60, 60, 60))
	f.Strategy = StrategyExpansion
	for i := 0; i < 10; i++ {
		f.DecideAction(Medium)
	}
	assert.InDelta(t, 20.0, f.Strengths.Territory, 1e-9)
	assert.Equal(t, 1, f.Territories)
}

func TestDecideDiplomaticAction(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *FactionLogic)
		traits   []string
		strategy Strategy
		relation float64
		want     DiplomaticAction
	}{
		{"ally", func(f *FactionLogic) { f.Relations.AddAlly("t") }, nil, StrategyBalanced, 10, StrengthenAlliance},
		{"soured ally", func(f *FactionLogic) { f.Relations.AddAlly("t") }, nil, StrategyBalanced, -5, RenegotiateAlliance},
		{"enemy when vulnerable", func(f *FactionLogic) { f.Relations.AddEnemy("t"); f.Strengths.Military = 10 }, nil, StrategyBalanced, -80, SeekPeace},
		{"enemy when surviving", func(f *FactionLogic) { f.Relations.AddEnemy("t") }, nil, StrategySurvival, -80, SeekPeace},
		{"enemy raided", func(f *FactionLogic) { f.Relations.AddEnemy("t") }, []string{"Aggressive"}, StrategyBalanced, -80, Raid},
		{"enemy held", func(f *FactionLogic) { f.Relations.AddEnemy("t") }, nil, StrategyBalanced, -80, HoldLine},
		{"truce", func(f *FactionLogic) { f.Relations.AddTruce("t") }, nil, StrategyMilitary, -90, HonorTruce},
		{"friendly trade", nil, nil, StrategyBalanced, 70, ProposeTrade},
		{"friendly alliance", nil, nil, StrategyDiplomatic, 70, ProposeAlliance},
		{"friendly economic alliance", nil, nil, StrategyEconomic, 61, ProposeAlliance},
		{"hostile war", nil, []string{"aggressive"}, StrategyMilitary, -70, DeclareWar},
		{"hostile expansion war", nil, []string{"Aggressive"}, StrategyExpansion, -70, DeclareWar},
		{"hostile consolidating", nil, nil, StrategyConsolidation, -70, SeekPeace},
		{"hostile denounce", nil, nil, StrategyBalanced, -70, Denounce},
		{"neutral trade", nil, nil, StrategyEconomic, 0, ProposeTrade},
		{"neutral posture", nil, []string{"Aggressive"}, StrategyMilitary, 0, Denounce},
		{"neutral", nil, nil, StrategyBalanced, 60, MaintainNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFactionLogic(testWay(60, 60, 60, tt.traits...))
			f.Strategy = tt.strategy
			if tt.setup != nil {
				tt.setup(f)
			}
			assert.Equal(t, tt.want, f.DecideDiplomaticAction("t", tt.relation))
		})
	}
}

func TestApplyDiplomaticActionKeepsGraphDisjoint(t *testing.T) {
	f := NewFactionLogic(testWay(60, 60, 60))

	f.ApplyDiplomaticAction("t", DeclareWar)
	assert.True(t, f.Relations.IsEnemyOf("t"))
	assert.True(t, f.AtWar())

	f.ApplyDiplomaticAction("t", SeekPeace)
	assert.False(t, f.Relations.IsEnemyOf("t"))
	assert.True(t, f.Relations.HasTruce("t"))

	f.ApplyDiplomaticAction("t", ProposeAlliance)
	assert.True(t, f.Relations.IsAlliedWith("t"))
	assert.False(t, f.Relations.IsEnemyOf("t"))
	assert.False(t, f.Relations.HasTruce("t"))

	f.ApplyDiplomaticAction("sol", DeclareWar)
	assert.False(t, f.Relations.IsEnemyOf("sol"), "a faction never targets itself")
}

func TestLowPriorityDiplomaticPass(t *testing.T) {
	f := NewFactionLogic(testWay(60, 60, 60))
	f.Relations.SetRelation("friend", 70)
	f.Relations.SetRelation("stranger", 0)

	require.True(t, f.DecideAction(Low))
	rel, _ := f.Relations.Relation("friend")
	assert.InDelta(t, 73.0, rel, 1e-9)

	h := f.History()
	require.Len(t, h, 1)
	assert.Equal(t, "ProposeTrade", h[0].Action)
	assert.Equal(t, "friend", h[0].Target)
}

func TestSeededFromWay(t *testing.T) {
	w := testWay(50, 50, 50)
	w.Allies = []string{"a"}
	w.Enemies = []string{"e"}
	w.Relations = map[string]float64{"a": 80, "e": -120}
	f := NewFactionLogic(w)

	assert.True(t, f.Relations.IsAlliedWith("a"))
	assert.True(t, f.Relations.IsEnemyOf("e"))
	rel, _ := f.Relations.Relation("e")
	assert.Equal(t, -100.0, rel)
	assert.Equal(t, "sol", f.ID())
}

func TestEarlyGameHelpers(t *testing.T) {
	f := NewFactionLogic(testWay(40, 40, 40))
	assert.Equal(t, FocusExploration, f.TopEarlyGamePriority())
	assert.True(t, f.IsExplorationFocused())
	assert.True(t, f.IsTradeFocused())
	assert.False(t, f.IsDiplomacyFocused())

	f.EarlyPriorities.Defense = 9
	assert.Equal(t, FocusDefense, f.TopEarlyGamePriority())

	assert.False(t, f.OnTerritoryDiscovered("dust belt", 30))
	assert.True(t, f.OnTerritoryDiscovered("garden world", 75))
	assert.Equal(t, 1, f.Territories)
	assert.Contains(t, f.Describe(), "Territories: 1")
	assert.Contains(t, f.Describe(), "Early Game")
}

func TestTradeAndPeacefulInteraction(t *testing.T) {
	f := NewFactionLogic(testWay(40, 40, 40))
	f.Relations.AddEnemy("e")
	f.Relations.AddAlly("a")
	f.Relations.SetRelation("cold", -10)

	assert.False(t, f.ShouldInitiateTrade("e"))
	assert.True(t, f.ShouldInitiateTrade("a"))
	assert.True(t, f.ShouldInitiateTrade("stranger"), "early game peaceful factions trade")

	assert.False(t, f.CanPeacefullyInteract("e"))
	assert.True(t, f.CanPeacefullyInteract("a"))
	assert.True(t, f.CanPeacefullyInteract("cold"))

	f.EarlyGame = false
	assert.False(t, f.CanPeacefullyInteract("cold"))
	assert.False(t, f.ShouldInitiateTrade("stranger"))

	f.RemoveTruce("nobody")
	assert.True(t, f.AddTruce("cold"))
	assert.True(t, f.CanPeacefullyInteract("cold"))

	f.SetMode(Aggressive)
	assert.False(t, f.CanPeacefullyInteract("a"))
}
