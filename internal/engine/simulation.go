package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/adastrea-verse/internal/ai"
	"github.com/talgya/adastrea-verse/internal/cadence"
	"github.com/talgya/adastrea-verse/internal/content"
	"github.com/talgya/adastrea-verse/internal/entropy"
	"github.com/talgya/adastrea-verse/internal/metrics"
	"github.com/talgya/adastrea-verse/internal/rivals"
	"github.com/talgya/adastrea-verse/internal/verse"
	"github.com/talgya/adastrea-verse/internal/way"
)

var (
	// ErrUnknownFeat reports a feat ID missing from the catalog.
	ErrUnknownFeat = errors.New("unknown feat")
	// ErrUnknownPlayer reports a player with no Verse.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrUnknownWay reports a Way ID missing from the catalog.
	ErrUnknownWay = errors.New("unknown way")
	// ErrUnknownRival reports an antagonist ID not in the registry.
	ErrUnknownRival = errors.New("unknown antagonist")
	// ErrLocked reports a feat whose prerequisites are not all complete.
	ErrLocked = errors.New("feat prerequisites not met")
)

// Options configures a Simulation. Zero values select defaults.
type Options struct {
	Players     []string
	Seed        int64
	Cadence     cadence.Mode
	Entropy     entropy.Source
	EventBuffer int
	HighHeat    int
	Metrics     *metrics.Metrics
}

// SimStats are aggregate figures refreshed every sim-day.
type SimStats struct {
	Factions       int     `json:"factions"`
	FactionsAtWar  int     `json:"factions_at_war"`
	ActiveRivals   int     `json:"active_rivals"`
	HighHeatRivals int     `json:"high_heat_rivals"`
	FeatsCompleted int     `json:"feats_completed"`
	AvgMorale      float64 `json:"avg_morale"`
	AvgFatigue     float64 `json:"avg_fatigue"`
}

// Simulation holds the complete runtime state. All exported methods are safe
// for concurrent use; the engine goroutine mutates and API handlers read.
type Simulation struct {
	mu sync.RWMutex

	Catalog *content.Catalog

	players     map[string]*verse.Verse
	playerOrder []string

	rivals   *rivals.Registry
	highHeat int

	factions     []*ai.FactionLogic
	factionIndex map[string]*ai.FactionLogic
	crew         []*ai.PersonnelLogic
	councils     []*way.Council

	decay cadence.Gate
	drift opensimplex.Noise

	events     []Event
	eventLimit int
	nextSeq    uint64
	subs       map[int]chan Event
	nextSub    int

	metrics *metrics.Metrics

	LastTick   uint64
	SimSeconds float64
	Stats      SimStats
}

// NewSimulation builds the runtime state from a catalog.
func NewSimulation(cat *content.Catalog, opts Options) (*Simulation, error) {
	if cat == nil {
		return nil, errors.New("new simulation: nil catalog")
	}
	if len(opts.Players) == 0 {
		opts.Players = []string{"player"}
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 500
	}
	if opts.HighHeat <= 0 {
		opts.HighHeat = rivals.DefaultHighHeat
	}
	if opts.Entropy == nil {
		opts.Entropy = entropy.NewSeeded(uint64(opts.Seed))
	}

	s := &Simulation{
		Catalog:      cat,
		players:      make(map[string]*verse.Verse, len(opts.Players)),
		rivals:       rivals.NewRegistry(opts.Entropy),
		highHeat:     opts.HighHeat,
		factionIndex: make(map[string]*ai.FactionLogic, len(cat.Ways)),
		decay:        cadence.Gate{Interval: rivals.DecayInterval, Mode: opts.Cadence},
		drift:        opensimplex.New(opts.Seed),
		eventLimit:   opts.EventBuffer,
		subs:         make(map[int]chan Event),
		metrics:      opts.Metrics,
	}

	for _, p := range opts.Players {
		if _, dup := s.players[p]; dup {
			return nil, fmt.Errorf("new simulation: duplicate player %q", p)
		}
		v := verse.New(cat)
		for _, n := range cat.Networks {
			v.RegisterNetwork(n)
		}
		s.players[p] = v
		s.playerOrder = append(s.playerOrder, p)
	}

	for _, w := range cat.Ways {
		f := ai.NewFactionLogic(w)
		f.SetCadence(opts.Cadence)
		s.wireFaction(f)
		s.factions = append(s.factions, f)
		s.factionIndex[w.ID] = f
	}

	for _, cs := range cat.Crew {
		p := ai.NewPersonnelLogic(cs.Member, cs.Disposition)
		p.SetCadence(opts.Cadence)
		for _, id := range cs.Friends {
			p.MakeFriend(id)
		}
		for _, id := range cs.Conflicts {
			p.AddConflict(id)
		}
		s.wireCrew(p)
		s.crew = append(s.crew, p)
	}

	for _, c := range cat.Councils {
		s.councils = append(s.councils, c.Clone())
	}

	s.updateStats()
	slog.Info("simulation ready",
		"players", len(s.players),
		"factions", len(s.factions),
		"crew", len(s.crew),
		"feats", len(cat.Feats),
		"networks", len(cat.Networks),
		"councils", len(s.councils),
		"cadence", opts.Cadence,
	)
	return s, nil
}

// Diplomatic actions that change the relationship graph and are worth an event.
var notableDiplomacy = map[string]bool{
	ai.ProposeAlliance.String(): true,
	ai.SeekPeace.String():       true,
	ai.DeclareWar.String():      true,
}

func (s *Simulation) wireFaction(f *ai.FactionLogic) {
	id := f.ID()
	f.OnStrategyChange = func(old, next ai.Strategy) {
		s.metrics.RecordStrategy(next.String())
		s.emit(CategoryStrategy, id, fmt.Sprintf("%s shifts strategy from %s to %s", f.Name, old, next))
	}
	f.OnAction = func(r ai.ActionRecord) {
		if r.Target == "" {
			return
		}
		s.metrics.RecordDiplomacy(r.Action)
		if notableDiplomacy[r.Action] {
			s.emit(CategoryDiplomacy, id, fmt.Sprintf("%s: %s toward %s", f.Name, r.Action, s.wayName(r.Target)))
		}
	}
}

func (s *Simulation) wireCrew(p *ai.PersonnelLogic) {
	id := p.Crew.ID
	p.OnTaskChange = func(old, next ai.Task) {
		if next == ai.TaskEmergency {
			s.emit(CategoryCrew, id, fmt.Sprintf("%s responds to an emergency", p.Crew.Name))
		}
	}
}

func (s *Simulation) wayName(id string) string {
	if w, ok := s.Catalog.Way(id); ok {
		return w.Name
	}
	return id
}

// Advance runs one engine tick of dt simulated seconds.
func (s *Simulation) Advance(tick uint64, dt float64) {
	start := time.Now()
	s.mu.Lock()
	s.step(tick, dt)
	s.mu.Unlock()
	s.metrics.RecordTick(time.Since(start).Seconds())
}

// step runs rival decay, then factions, then crew. Callers hold s.mu.
func (s *Simulation) step(tick uint64, dt float64) {
	s.LastTick = tick
	if dt > 0 {
		s.SimSeconds += dt
	}

	acc := s.decay.Elapsed() + dt
	if n := s.decay.Advance(dt); n > 0 {
		elapsed := acc
		if s.decay.Mode == cadence.CatchUp {
			elapsed = float64(n) * s.decay.Interval
		}
		s.rivals.Decay(elapsed)
	}

	for _, f := range s.factions {
		f.Tick(dt)
	}
	for _, p := range s.crew {
		p.Tick(dt)
	}
}

// Players returns player names in configuration order.
func (s *Simulation) Players() []string {
	return append([]string(nil), s.playerOrder...)
}

// CompleteFeat records a feat for a player. It reports whether this was a
// new completion. A first completion applies network effects and may spawn
// an antagonist.
func (s *Simulation) CompleteFeat(player, featID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.players[player]
	if !ok {
		return false, fmt.Errorf("complete feat for %q: %w", player, ErrUnknownPlayer)
	}
	f, ok := s.Catalog.Feat(featID)
	if !ok {
		return false, fmt.Errorf("complete feat %q: %w", featID, ErrUnknownFeat)
	}
	if v.HasCompleted(f) {
		if f.UniquePerPlaythrough {
			slog.Debug("feat already completed", "player", player, "feat", featID)
		}
		return false, nil
	}
	if !f.CanBeEarned(v.Ledger().HasCompletedID) {
		return false, fmt.Errorf("complete feat %q: %w", featID, ErrLocked)
	}

	effects := v.RecordFeatWithNetworkEffects(f, true)
	s.metrics.RecordFeat(f.Rarity.String())
	s.emit(CategoryFeat, featID, fmt.Sprintf("%s earned %s (%s)", player, f.Title, f.Rarity))
	for _, e := range effects {
		name := e.NetworkID
		if n, ok := s.Catalog.Network(e.NetworkID); ok {
			name = n.Name
		}
		s.emit(CategoryNetwork, e.NetworkID, fmt.Sprintf("%s gains %.1f standing with the %s", player, e.Bonus, name))
	}

	if a, spawned := s.rivals.OnFeatCompleted(f); spawned {
		if w := s.rivalPatron(v, f); w != nil {
			s.rivals.Affiliate(a.ID, w.ID, w.Traits...)
			a, _ = s.rivals.Get(a.ID)
		}
		active := len(s.rivals.Active())
		s.metrics.RecordRival(a.Goal.String(), active)
		desc := fmt.Sprintf("%s swears %s against %s over %s", a.Name, a.Goal, player, f.Title)
		if a.FactionID != "" {
			desc += ", backed by the " + s.wayName(a.FactionID)
		}
		s.emit(CategoryRival, a.ID.String(), desc)
	}
	return true, nil
}

// rivalPatron picks the aggressive Way least impressed by the feat, or nil.
// Ties resolve by Way ID.
func (s *Simulation) rivalPatron(v *verse.Verse, f *way.Feat) *way.Way {
	var best *way.Way
	bestScore := 0.0
	for _, fl := range s.factions {
		if !fl.HasAggressiveTrait() {
			continue
		}
		score := verse.Score([]*way.Feat{f}, fl.Way)
		if best == nil || score < bestScore || (score == bestScore && fl.Way.ID < best.ID) {
			best, bestScore = fl.Way, score
		}
	}
	return best
}

// RecordEncounter marks an encounter with an antagonist.
func (s *Simulation) RecordEncounter(id uuid.UUID) (rivals.Antagonist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.rivals.RecordEncounter(id) {
		return rivals.Antagonist{}, fmt.Errorf("record encounter %s: %w", id, ErrUnknownRival)
	}
	a, _ := s.rivals.Get(id)
	if a.Heat >= s.highHeat {
		s.emit(CategoryRival, id.String(), fmt.Sprintf("%s is out for blood (heat %d)", a.Name, a.Heat))
	}
	return a, nil
}

// NetworkStanding is a player's position within one network.
type NetworkStanding struct {
	NetworkID string  `json:"network_id"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Qualifies bool    `json:"qualifies"`
	Bonus     float64 `json:"bonus"`
}

// Standing is a player's reputation with one Way.
type Standing struct {
	Player   string            `json:"player"`
	WayID    string            `json:"way_id"`
	WayName  string            `json:"way_name"`
	Score    float64           `json:"score"`
	Tier     verse.Tier        `json:"tier"`
	Networks []NetworkStanding `json:"networks,omitempty"`
}

// Standing reports how a Way regards a player.
func (s *Simulation) Standing(player, wayID string) (Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.players[player]
	if !ok {
		return Standing{}, fmt.Errorf("standing for %q: %w", player, ErrUnknownPlayer)
	}
	w, ok := s.Catalog.Way(wayID)
	if !ok {
		return Standing{}, fmt.Errorf("standing with %q: %w", wayID, ErrUnknownWay)
	}
	st := Standing{
		Player:  player,
		WayID:   w.ID,
		WayName: w.Name,
		Score:   v.Score(w),
		Tier:    v.Tier(w),
	}
	for _, n := range v.NetworksFor(w) {
		st.Networks = append(st.Networks, NetworkStanding{
			NetworkID: n.ID,
			Name:      n.Name,
			Score:     v.NetworkScore(n),
			Qualifies: v.QualifiesForNetworkBonuses(n),
			Bonus:     v.NetworkBonus(n.ID),
		})
	}
	return st, nil
}

// Standings reports a player's standing with every Way, by Way ID.
func (s *Simulation) Standings(player string) ([]Standing, error) {
	out := make([]Standing, 0, len(s.Catalog.Ways))
	for _, id := range s.Catalog.WayIDs() {
		st, err := s.Standing(player, id)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// CompletedFeats lists a player's completed feat IDs in sorted order.
func (s *Simulation) CompletedFeats(player string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.players[player]
	if !ok {
		return nil, fmt.Errorf("feats for %q: %w", player, ErrUnknownPlayer)
	}
	feats := v.Ledger().Feats()
	ids := make([]string, len(feats))
	for i, f := range feats {
		ids[i] = f.ID
	}
	return ids, nil
}

// FactionView is a read-only snapshot of one faction.
type FactionView struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Strategy    ai.Strategy        `json:"strategy"`
	Mode        ai.BehaviorMode    `json:"mode"`
	EarlyGame   bool               `json:"early_game"`
	Strengths   ai.Strengths       `json:"strengths"`
	Territories int                `json:"territories"`
	Allies      []string           `json:"allies"`
	Enemies     []string           `json:"enemies"`
	Truces      []string           `json:"truces"`
	Relations   map[string]float64 `json:"relations,omitempty"`
	History     []ai.ActionRecord  `json:"history,omitempty"`
	Summary     string             `json:"summary"`
}

func viewFaction(f *ai.FactionLogic, detail bool) FactionView {
	fv := FactionView{
		ID:          f.ID(),
		Name:        f.Name,
		Strategy:    f.Strategy,
		Mode:        f.Mode(),
		EarlyGame:   f.EarlyGame,
		Strengths:   f.Strengths,
		Territories: f.Territories,
		Allies:      f.Relations.Allies(),
		Enemies:     f.Relations.Enemies(),
		Truces:      f.Relations.Truces(),
		Summary:     f.Describe(),
	}
	if detail {
		fv.Relations = make(map[string]float64)
		for _, id := range f.Relations.Known() {
			if v, ok := f.Relations.Relation(id); ok {
				fv.Relations[id] = v
			}
		}
		fv.History = f.History()
	}
	return fv
}

// Factions returns a snapshot of every faction in catalog order.
func (s *Simulation) Factions() []FactionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FactionView, len(s.factions))
	for i, f := range s.factions {
		out[i] = viewFaction(f, false)
	}
	return out
}

// Faction returns a detailed snapshot of one faction.
func (s *Simulation) Faction(id string) (FactionView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.factionIndex[id]
	if !ok {
		return FactionView{}, false
	}
	return viewFaction(f, true), true
}

// CrewView is a read-only snapshot of one crew member.
type CrewView struct {
	Member      ai.CrewMember  `json:"member"`
	Disposition ai.Disposition `json:"disposition"`
	Task        ai.Task        `json:"task"`
	OnDuty      bool           `json:"on_duty"`
	Summary     string         `json:"summary"`
}

// Crew returns a snapshot of every crew member.
func (s *Simulation) Crew() []CrewView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CrewView, len(s.crew))
	for i, p := range s.crew {
		out[i] = CrewView{
			Member:      p.Crew,
			Disposition: p.Disposition,
			Task:        p.Task,
			OnDuty:      p.OnDuty,
			Summary:     p.Describe(),
		}
	}
	return out
}

// Antagonists returns copies of the antagonists. activeOnly limits the result
// to active ones; minHeat > 0 limits it to active ones at or above that heat.
func (s *Simulation) Antagonists(activeOnly bool, minHeat int) []rivals.Antagonist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case minHeat > 0:
		return s.rivals.HighHeat(minHeat)
	case activeOnly:
		return s.rivals.Active()
	}
	return s.rivals.All()
}

// Snapshot returns the tick, simulated time, and stats under one lock.
func (s *Simulation) Snapshot() (uint64, float64, SimStats) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastTick, s.SimSeconds, s.Stats
}

// Resume continues from a saved position: the tick counter, simulated time,
// and event sequence carry on from where a previous run stopped.
func (s *Simulation) Resume(tick uint64, simSeconds float64, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastTick = tick
	s.SimSeconds = simSeconds
	s.nextSeq = max(s.nextSeq, seq)
}

func (s *Simulation) updateStats() {
	st := SimStats{Factions: len(s.factions)}
	for _, f := range s.factions {
		if f.AtWar() {
			st.FactionsAtWar++
		}
	}
	st.ActiveRivals = len(s.rivals.Active())
	st.HighHeatRivals = len(s.rivals.HighHeat(s.highHeat))
	for _, v := range s.players {
		st.FeatsCompleted += v.Ledger().Len()
	}
	if n := len(s.crew); n > 0 {
		for _, p := range s.crew {
			st.AvgMorale += p.Crew.Morale
			st.AvgFatigue += p.Crew.Fatigue
		}
		st.AvgMorale /= float64(n)
		st.AvgFatigue /= float64(n)
	}
	s.Stats = st
	s.metrics.SetActiveRivals(st.ActiveRivals)
}
