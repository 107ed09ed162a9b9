package rivals

import (
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/adastrea-verse/internal/entropy"
	"github.com/talgya/adastrea-verse/internal/way"
)

const (
	// HeatDecayRate is heat lost per second of decay time.
	HeatDecayRate = 0.5
	// EncounterHeat is the heat gained on each encounter.
	EncounterHeat = 5
	// DefaultHighHeat is the usual threshold for HighHeat queries.
	DefaultHighHeat = 70
	// DecayInterval is how often, in simulated seconds, decay should run.
	DecayInterval = 60.0
)

// Registry owns every antagonist spawned in a session. Spawned rivals are
// appended and never merged. Not safe for concurrent use.
type Registry struct {
	rivals []*Antagonist
	src    entropy.Source
	now    func() time.Time
}

// NewRegistry creates an empty registry. A nil source uses crypto/rand.
func NewRegistry(src entropy.Source) *Registry {
	if src == nil {
		src = entropy.Default()
	}
	return &Registry{src: src, now: time.Now}
}

// Spawn creates a new active antagonist provoked by feat. feat may be nil.
func (r *Registry) Spawn(feat *way.Feat, goal way.RivalGoal, initialHeat int) Antagonist {
	a := &Antagonist{
		ID:        uuid.New(),
		Name:      r.name(goal),
		Goal:      goal,
		Heat:      way.Clamp100(initialHeat),
		CreatedAt: r.now(),
		Active:    true,
	}
	if feat != nil {
		a.FeatID = feat.ID
	}
	r.rivals = append(r.rivals, a)
	slog.Info("antagonist spawned", "name", a.Name, "goal", goal, "heat", a.Heat, "feat", a.FeatID)
	return a.clone()
}

// OnFeatCompleted rolls the feat's antagonist trigger and spawns on success.
func (r *Registry) OnFeatCompleted(feat *way.Feat) (Antagonist, bool) {
	if feat == nil || feat.Trigger == nil {
		return Antagonist{}, false
	}
	t := feat.Trigger
	if t.SpawnChance <= 0 || r.src.Float() >= t.SpawnChance {
		slog.Debug("antagonist trigger not rolled", "feat", feat.ID, "chance", t.SpawnChance)
		return Antagonist{}, false
	}
	return r.Spawn(feat, t.Goal, t.InitialHeat), true
}

func (r *Registry) name(goal way.RivalGoal) string {
	names, ok := surnames[goal]
	if !ok {
		slog.Warn("unknown antagonist goal, using default names", "goal", int(goal))
		names = fallbackSurnames
	}
	return namePrefixes[r.src.Intn(len(namePrefixes))] + " " + names[r.src.Intn(len(names))]
}

func (r *Registry) find(id uuid.UUID) *Antagonist {
	for _, a := range r.rivals {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// Get returns a copy of the antagonist with the given ID.
func (r *Registry) Get(id uuid.UUID) (Antagonist, bool) {
	a := r.find(id)
	if a == nil {
		return Antagonist{}, false
	}
	return a.clone(), true
}

// ModifyHeat adds delta to an antagonist's heat, clamped to [0,100].
func (r *Registry) ModifyHeat(id uuid.UUID, delta int) bool {
	a := r.find(id)
	if a == nil {
		return false
	}
	// Heat spans [0,100], so any larger step saturates without overflowing.
	a.Heat = way.Clamp100(a.Heat + max(-100, min(100, delta)))
	slog.Debug("antagonist heat modified", "name", a.Name, "delta", delta, "heat", a.Heat)
	return true
}

// RecordEncounter counts an encounter and bumps heat.
func (r *Registry) RecordEncounter(id uuid.UUID) bool {
	a := r.find(id)
	if a == nil {
		return false
	}
	a.Encounters++
	a.Heat = way.Clamp100(a.Heat + EncounterHeat)
	slog.Info("antagonist encounter", "name", a.Name, "encounters", a.Encounters, "heat", a.Heat)
	return true
}

// Affiliate ties an antagonist to a faction and adds traits.
func (r *Registry) Affiliate(id uuid.UUID, factionID string, traits ...string) bool {
	a := r.find(id)
	if a == nil {
		return false
	}
	a.FactionID = factionID
	a.Traits = append(a.Traits, traits...)
	return true
}

// Deactivate marks an antagonist inactive. It stays in the registry.
func (r *Registry) Deactivate(id uuid.UUID) bool {
	return r.setActive(id, false)
}

// Reactivate marks an antagonist active again.
func (r *Registry) Reactivate(id uuid.UUID) bool {
	return r.setActive(id, true)
}

func (r *Registry) setActive(id uuid.UUID, active bool) bool {
	a := r.find(id)
	if a == nil {
		return false
	}
	a.Active = active
	slog.Info("antagonist activity changed", "name", a.Name, "active", active)
	return true
}

// Decay cools every active antagonist by round(HeatDecayRate*dt), never
// below zero.
func (r *Registry) Decay(dt float64) {
	if !(dt > 0) {
		return
	}
	loss := int(math.Min(math.Floor(HeatDecayRate*dt+0.5), 100))
	if loss == 0 {
		return
	}
	for _, a := range r.rivals {
		if a.Active && a.Heat > 0 {
			a.Heat = max(0, a.Heat-loss)
		}
	}
}

// Active returns copies of the active antagonists in spawn order.
func (r *Registry) Active() []Antagonist {
	return r.filter(func(a *Antagonist) bool { return a.Active })
}

// All returns copies of every antagonist in spawn order.
func (r *Registry) All() []Antagonist {
	return r.filter(func(*Antagonist) bool { return true })
}

// ByGoal returns the active antagonists driven by goal.
func (r *Registry) ByGoal(goal way.RivalGoal) []Antagonist {
	return r.filter(func(a *Antagonist) bool { return a.Active && a.Goal == goal })
}

// HighHeat returns the active antagonists with heat at least minHeat.
func (r *Registry) HighHeat(minHeat int) []Antagonist {
	return r.filter(func(a *Antagonist) bool { return a.Active && a.Heat >= minHeat })
}

// HasActive reports whether any antagonist is active.
func (r *Registry) HasActive() bool {
	for _, a := range r.rivals {
		if a.Active {
			return true
		}
	}
	return false
}

// Count is the total number of antagonists, active or not.
func (r *Registry) Count() int { return len(r.rivals) }

// Clear removes every antagonist.
func (r *Registry) Clear() {
	r.rivals = nil
	slog.Info("antagonists cleared")
}

func (r *Registry) filter(keep func(*Antagonist) bool) []Antagonist {
	var out []Antagonist
	for _, a := range r.rivals {
		if keep(a) {
			out = append(out, a.clone())
		}
	}
	return out
}
