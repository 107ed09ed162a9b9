package ai

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/adastrea-verse/internal/cadence"
	"github.com/talgya/adastrea-verse/internal/social"
	"github.com/talgya/adastrea-verse/internal/way"
)

// Strategy is a faction's long-term stance.
type Strategy uint8

const (
	StrategyBalanced Strategy = iota
	StrategyExpansion
	StrategyMilitary
	StrategyEconomic
	StrategyDiplomatic
	StrategySurvival
	StrategyConsolidation
)

var strategyNames = [...]string{"Balanced", "Expansion", "Military", "Economic", "Diplomatic", "Survival", "Consolidation"}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return "Unknown"
}

// MarshalText encodes the strategy by name.
func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Focus is one area of the early-game priority table.
type Focus uint8

const (
	FocusExploration Focus = iota
	FocusTrade
	FocusDiplomacy
	FocusResearch
	FocusExpansion
	FocusDefense
)

var focusNames = [...]string{"Exploration", "Trade", "Diplomacy", "Research", "Expansion", "Defense"}

func (f Focus) String() string {
	if int(f) < len(focusNames) {
		return focusNames[f]
	}
	return "Unknown"
}

// EarlyGamePriorities weights each focus area (1–10) while a faction is
// still establishing itself.
type EarlyGamePriorities struct {
	Exploration int `json:"exploration"`
	Trade       int `json:"trade"`
	Diplomacy   int `json:"diplomacy"`
	Research    int `json:"research"`
	Expansion   int `json:"expansion"`
	Defense     int `json:"defense"`
}

// DefaultEarlyGamePriorities favors peaceful exploration and trade.
func DefaultEarlyGamePriorities() EarlyGamePriorities {
	return EarlyGamePriorities{Exploration: 7, Trade: 6, Diplomacy: 5, Research: 4, Expansion: 3, Defense: 2}
}

// Strengths are a faction's mutable organizational attributes, each 0–100.
type Strengths struct {
	Military   float64 `json:"military"`
	Economic   float64 `json:"economic"`
	Diplomatic float64 `json:"diplomatic"`
	Territory  float64 `json:"territory"`
}

func (s *Strengths) clamp() {
	s.Military = clamp100(s.Military)
	s.Economic = clamp100(s.Economic)
	s.Diplomatic = clamp100(s.Diplomatic)
	s.Territory = clamp100(s.Territory)
}

func clamp100(v float64) float64 { return math.Max(0, math.Min(100, v)) }

// Faction timing and thresholds.
const (
	FactionInterval       = 5.0
	StrategyReviewSeconds = 24 * 3600.0

	crisisEconomic     = 20.0
	vulnerableFloor    = 30.0
	strongFloor        = 50.0
	criticalMilitary   = 30.0
	survivalMilitary   = 50.0
	friendlyRelation   = 60.0
	hostileRelation    = -60.0
	claimableValue     = 50.0
	earlyGameTerritory = 5
	earlyGameEconomic  = 70.0
	earlyGameMilitary  = 60.0

	// Territory strength per claimed territory.
	territoryStep = 20.0

	historyLimit = 32
)

// ActionRecord is one decision a faction acted on.
type ActionRecord struct {
	Priority Priority `json:"priority"`
	Action   string   `json:"action"`
	Target   string   `json:"target,omitempty"`
}

// FactionLogic drives one faction. Strengths start from the Way definition
// and change as the faction acts; the Way itself is never modified.
type FactionLogic struct {
	*Agent
	BaseBrain

	Way       *way.Way
	Strengths Strengths
	Relations *social.Graph

	Strategy        Strategy
	EarlyGame       bool
	EarlyPriorities EarlyGamePriorities
	Territories     int

	review  cadence.Gate
	elapsed float64
	history []ActionRecord

	// OnStrategyChange is called after every strategy change.
	OnStrategyChange func(old, new Strategy)
	// OnAction is called for every action taken.
	OnAction func(ActionRecord)
}

// NewFactionLogic creates the AI for w, seeding strengths and relationships
// from its definition.
func NewFactionLogic(w *way.Way) *FactionLogic {
	f := &FactionLogic{
		Way: w,
		Strengths: Strengths{
			Military:   w.Military,
			Economic:   w.Economic,
			Diplomatic: w.Diplomatic,
			Territory:  w.Territory,
		},
		Relations:       social.NewGraph(),
		Strategy:        StrategyBalanced,
		EarlyGame:       true,
		EarlyPriorities: DefaultEarlyGamePriorities(),
		review:          cadence.Gate{Interval: StrategyReviewSeconds},
	}
	f.Strengths.clamp()
	for id, v := range w.Relations {
		f.Relations.SetRelation(id, v)
	}
	for _, id := range w.Allies {
		f.Relations.AddAlly(id)
	}
	for _, id := range w.Enemies {
		f.Relations.AddEnemy(id)
	}
	f.Agent = NewAgent(w.Name, f, FactionInterval)
	return f
}

// ID is the faction's Way ID.
func (f *FactionLogic) ID() string { return f.Way.ID }

// Tick advances the strategic review cycle, then the decision loop.
func (f *FactionLogic) Tick(dt float64) int {
	if !f.Active() {
		return 0
	}
	for n := f.review.Advance(dt); n > 0; n-- {
		f.ShouldChangeStrategy()
	}
	return f.Agent.Tick(dt)
}

// AtWar reports whether the faction has any enemy.
func (f *FactionLogic) AtWar() bool { return f.Relations.HasEnemies() }

// EconomicCrisis reports whether the economy has collapsed.
func (f *FactionLogic) EconomicCrisis() bool { return f.Strengths.Economic < crisisEconomic }

// Vulnerable reports whether any core strength is low.
func (f *FactionLogic) Vulnerable() bool {
	s := f.Strengths
	return s.Military < vulnerableFloor || s.Economic < vulnerableFloor || s.Diplomatic < vulnerableFloor
}

// StrongPosition reports whether every core strength is healthy.
func (f *FactionLogic) StrongPosition() bool {
	s := f.Strengths
	return s.Military > strongFloor && s.Economic > strongFloor && s.Diplomatic > strongFloor
}

// HasAggressiveTrait reports whether the Way carries the Aggressive trait.
func (f *FactionLogic) HasAggressiveTrait() bool { return f.Way.HasTrait("Aggressive") }

// Prepare implements Brain.
func (f *FactionLogic) Prepare(elapsed float64) { f.elapsed = elapsed }

// scale converts the time since the last pass into hours of effect. Passes
// driven without a Prepare apply one full hour.
func (f *FactionLogic) scale() float64 {
	if f.elapsed <= 0 {
		return 1
	}
	return f.elapsed / 3600
}

// EvaluatePriority implements Brain.
func (f *FactionLogic) EvaluatePriority() Priority {
	switch {
	case f.AtWar() && f.Strengths.Military < criticalMilitary:
		return Critical
	case f.EconomicCrisis():
		return Critical
	case f.Vulnerable():
		return High
	case f.Strategy == StrategyExpansion || f.Strategy == StrategyMilitary:
		return Medium
	default:
		return Low
	}
}

// ShouldChangeStrategy re-evaluates the strategy and reports whether it
// changed. It also ends the early-game phase once the faction is established.
func (f *FactionLogic) ShouldChangeStrategy() bool {
	f.checkEarlyGame()

	next := f.Strategy
	switch {
	case f.AtWar() && f.Strengths.Military < survivalMilitary:
		next = StrategySurvival
	case f.EconomicCrisis():
		next = StrategyEconomic
	case f.StrongPosition():
		next = StrategyExpansion
	case f.Vulnerable():
		next = StrategyConsolidation
	}
	if next == f.Strategy {
		return false
	}
	old := f.Strategy
	f.Strategy = next
	f.log.Info("faction strategy changed", "from", old, "to", next)
	if f.OnStrategyChange != nil {
		f.OnStrategyChange(old, next)
	}
	return true
}

func (f *FactionLogic) checkEarlyGame() {
	if !f.EarlyGame {
		return
	}
	if f.Territories >= earlyGameTerritory || f.Strengths.Economic >= earlyGameEconomic || f.Strengths.Military >= earlyGameMilitary {
		f.EarlyGame = false
		f.log.Info("faction left early game", "territories", f.Territories)
	}
}

// DecideAction implements Brain.
func (f *FactionLogic) DecideAction(p Priority) bool {
	switch p {
	case Critical:
		if f.AtWar() && f.Strengths.Military < criticalMilitary {
			return f.act(p, militaryTable[0], "")
		}
		return f.act(p, economicTable[0], "")
	case High:
		return f.act(p, f.weakestTable()[1], "")
	case Medium:
		if f.Strategy == StrategyMilitary {
			return f.act(p, militaryTable[2], "")
		}
		return f.act(p, expansionTable[0], "")
	case Low:
		return f.diplomaticPass(p)
	}
	return false
}

// strategicAction is one row of an action table. Effects are per hour.
type strategicAction struct {
	name   string
	effect Strengths
}

var militaryTable = []strategicAction{
	{"mobilize reserves", Strengths{Military: 5, Economic: -2}},
	{"recruit defenders", Strengths{Military: 3, Economic: -1}},
	{"drill fleets", Strengths{Military: 2, Economic: -1}},
}

var economicTable = []strategicAction{
	{"emergency austerity", Strengths{Economic: 4, Diplomatic: -1}},
	{"secure trade routes", Strengths{Economic: 3}},
}

var diplomaticTable = []strategicAction{
	{"recall envoys", Strengths{Diplomatic: 2}},
	{"send envoys", Strengths{Diplomatic: 3, Economic: -1}},
}

var expansionTable = []strategicAction{
	{"claim frontier", Strengths{Territory: 2, Economic: -1}},
}

func (f *FactionLogic) weakestTable() []strategicAction {
	s := f.Strengths
	switch {
	case s.Military <= s.Economic && s.Military <= s.Diplomatic:
		return militaryTable
	case s.Economic <= s.Diplomatic:
		return economicTable
	default:
		return diplomaticTable
	}
}

func (f *FactionLogic) act(p Priority, a strategicAction, target string) bool {
	f.adjust(a.effect, f.scale())
	f.record(ActionRecord{Priority: p, Action: a.name, Target: target})
	return true
}

// adjust applies a scaled strength change. Territory growth past each
// territoryStep counts as a newly held territory.
func (f *FactionLogic) adjust(d Strengths, scale float64) {
	before := int(f.Strengths.Territory / territoryStep)
	f.Strengths.Military += d.Military * scale
	f.Strengths.Economic += d.Economic * scale
	f.Strengths.Diplomatic += d.Diplomatic * scale
	f.Strengths.Territory += d.Territory * scale
	f.Strengths.clamp()
	if after := int(f.Strengths.Territory / territoryStep); after > before {
		f.Territories += after - before
	}
}

// Shift applies an unscaled strength change from outside the decision loop.
func (f *FactionLogic) Shift(d Strengths) { f.adjust(d, 1) }

func (f *FactionLogic) record(r ActionRecord) {
	f.history = append(f.history, r)
	if len(f.history) > historyLimit {
		f.history = f.history[len(f.history)-historyLimit:]
	}
	f.log.Debug("faction action", "priority", r.Priority, "action", r.Action, "target", r.Target)
	if f.OnAction != nil {
		f.OnAction(r)
	}
}

// History returns the most recent actions, oldest first.
func (f *FactionLogic) History() []ActionRecord {
	out := make([]ActionRecord, len(f.history))
	copy(out, f.history)
	return out
}

func (f *FactionLogic) diplomaticPass(p Priority) bool {
	acted := false
	for _, id := range f.Relations.Known() {
		if id == f.Way.ID {
			continue
		}
		rel, _ := f.Relations.Relation(id)
		action := f.DecideDiplomaticAction(id, rel)
		if action == MaintainNeutral {
			continue
		}
		f.ApplyDiplomaticAction(id, action)
		f.record(ActionRecord{Priority: p, Action: action.String(), Target: id})
		acted = true
	}
	return acted
}

// NextBehaviorMode implements Brain.
func (f *FactionLogic) NextBehaviorMode(current BehaviorMode) BehaviorMode {
	switch f.Strategy {
	case StrategySurvival, StrategyConsolidation:
		return Defensive
	case StrategyMilitary:
		if f.HasAggressiveTrait() {
			return Aggressive
		}
		return Defensive
	case StrategyEconomic:
		return Trading
	case StrategyDiplomatic:
		return Diplomatic
	case StrategyExpansion:
		if f.HasAggressiveTrait() && f.AtWar() {
			return Aggressive
		}
		return Exploration
	}
	if f.AtWar() {
		return Defensive
	}
	if f.EarlyGame {
		switch f.TopEarlyGamePriority() {
		case FocusExploration, FocusExpansion, FocusResearch:
			return Exploration
		case FocusTrade:
			return Trading
		case FocusDiplomacy:
			return Diplomatic
		case FocusDefense:
			return Defensive
		}
	}
	return Peaceful
}

// TopEarlyGamePriority returns the focus with the highest weight. Ties keep
// the earlier focus in table order.
func (f *FactionLogic) TopEarlyGamePriority() Focus {
	ep := f.EarlyPriorities
	weights := [...]int{ep.Exploration, ep.Trade, ep.Diplomacy, ep.Research, ep.Expansion, ep.Defense}
	top, best := FocusExploration, 0
	for i, w := range weights {
		if w > best {
			top, best = Focus(i), w
		}
	}
	return top
}

// IsExplorationFocused reports whether the faction is set on exploring.
func (f *FactionLogic) IsExplorationFocused() bool {
	return f.Strategy == StrategyExpansion || (f.EarlyGame && f.EarlyPriorities.Exploration >= 6)
}

// IsTradeFocused reports whether the faction is set on trade.
func (f *FactionLogic) IsTradeFocused() bool {
	return f.Strategy == StrategyEconomic || (f.EarlyGame && f.EarlyPriorities.Trade >= 6)
}

// IsDiplomacyFocused reports whether the faction is set on diplomacy.
func (f *FactionLogic) IsDiplomacyFocused() bool {
	return f.Strategy == StrategyDiplomatic || (f.EarlyGame && f.EarlyPriorities.Diplomacy >= 6)
}

// ShouldInitiateTrade reports whether the faction would open trade with other.
func (f *FactionLogic) ShouldInitiateTrade(other string) bool {
	if f.Relations.IsEnemyOf(other) {
		return false
	}
	if f.Relations.IsAlliedWith(other) {
		return true
	}
	if rel, ok := f.Relations.Relation(other); ok && f.IsTradeFocused() && rel > 0 {
		return true
	}
	return f.EarlyGame && f.IsPeaceful()
}

// CanPeacefullyInteract reports whether the faction would meet other without
// hostility.
func (f *FactionLogic) CanPeacefullyInteract(other string) bool {
	if !f.IsPeaceful() {
		return false
	}
	if f.Relations.HasTruce(other) {
		return true
	}
	if f.Relations.IsEnemyOf(other) {
		return false
	}
	if f.Relations.IsAlliedWith(other) {
		return true
	}
	if rel, ok := f.Relations.Relation(other); ok && rel >= 0 {
		return true
	}
	return f.EarlyGame
}

// OnTerritoryDiscovered claims valuable territory while the faction is still
// exploring. Reports whether it was claimed.
func (f *FactionLogic) OnTerritoryDiscovered(name string, value float64) bool {
	f.log.Info("territory discovered", "territory", name, "value", value)
	if !f.EarlyGame || !f.IsExplorationFocused() || value <= claimableValue {
		return false
	}
	f.Territories++
	f.Strengths.Territory = clamp100(f.Strengths.Territory + value/25)
	f.log.Info("territory claimed", "territory", name, "territories", f.Territories)
	return true
}

// AddTruce records a truce with other.
func (f *FactionLogic) AddTruce(other string) bool {
	if !f.Relations.AddTruce(other) {
		return false
	}
	f.log.Info("truce established", "with", other)
	return true
}

// RemoveTruce ends a truce with other.
func (f *FactionLogic) RemoveTruce(other string) bool {
	if !f.Relations.RemoveTruce(other) {
		return false
	}
	f.log.Info("truce ended", "with", other)
	return true
}

// Describe renders the faction's state for debugging.
func (f *FactionLogic) Describe() string {
	phase := "Mid/Late Game"
	if f.EarlyGame {
		phase = "Early Game"
	}
	return fmt.Sprintf("%s | %s | %s | %s | Territories: %d",
		f.Way.Name, f.Agent.Describe(), f.Strategy, phase, f.Territories)
}

// LogValue lets the faction be passed directly to slog.
func (f *FactionLogic) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", f.Way.ID),
		slog.String("strategy", f.Strategy.String()),
		slog.String("mode", f.Mode().String()),
	)
}
