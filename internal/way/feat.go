// Feats: notable accomplishments an agent can complete.
package way

import (
	"fmt"
	"math"
	"strings"
)

// Rarity is how uncommon a feat is.
type Rarity uint8

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
	RarityMythic
)

var rarityNames = []string{"Common", "Uncommon", "Rare", "Epic", "Legendary", "Mythic"}

func (r Rarity) String() string {
	if int(r) < len(rarityNames) {
		return rarityNames[r]
	}
	return "Unknown"
}

// ParseRarity resolves a rarity by name, case-insensitively.
func ParseRarity(name string) (Rarity, bool) {
	for i, n := range rarityNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Rarity(i), true
		}
	}
	return RarityCommon, false
}

// MarshalText encodes the rarity by name.
func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a rarity name.
func (r *Rarity) UnmarshalText(b []byte) error {
	v, ok := ParseRarity(string(b))
	if !ok {
		return fmt.Errorf("unknown rarity %q", string(b))
	}
	*r = v
	return nil
}

// RivalGoal is the motivation that drives a spawned antagonist.
type RivalGoal uint8

const (
	GoalRevenge RivalGoal = iota
	GoalCompetition
	GoalObsession
	GoalJealousy
	GoalHonor
	GoalCuriosity
	GoalGreed
	GoalJustice
)

var goalNames = []string{"Revenge", "Competition", "Obsession", "Jealousy", "Honor", "Curiosity", "Greed", "Justice"}

func (g RivalGoal) String() string {
	if int(g) < len(goalNames) {
		return goalNames[g]
	}
	return "Unknown"
}

// ParseRivalGoal resolves a goal by name, case-insensitively.
func ParseRivalGoal(name string) (RivalGoal, bool) {
	for i, n := range goalNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return RivalGoal(i), true
		}
	}
	return GoalCompetition, false
}

// MarshalText encodes the goal by name.
func (g RivalGoal) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText decodes a goal name.
func (g *RivalGoal) UnmarshalText(b []byte) error {
	v, ok := ParseRivalGoal(string(b))
	if !ok {
		return fmt.Errorf("unknown rival goal %q", string(b))
	}
	*g = v
	return nil
}

// AllRivalGoals returns every goal in declaration order.
func AllRivalGoals() []RivalGoal {
	out := make([]RivalGoal, len(goalNames))
	for i := range goalNames {
		out[i] = RivalGoal(i)
	}
	return out
}

// Alignment is how strongly a feat embodies one precept.
type Alignment struct {
	Precept  Precept `json:"precept"`
	Strength int     `json:"strength"` // 0–100
	Reason   string  `json:"reason,omitempty"`
}

// AntagonistTrigger describes the rival a feat may provoke.
type AntagonistTrigger struct {
	SpawnChance float64   `json:"spawn_chance"` // 0–1
	InitialHeat int       `json:"initial_heat"` // 0–100
	Goal        RivalGoal `json:"goal"`
}

// Feat is an authored accomplishment. Feats are read-only at runtime.
type Feat struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Rarity      Rarity `json:"rarity"`

	Alignments []Alignment `json:"alignments"`

	BaseReputationGain   int     `json:"base_reputation_gain"`
	ReputationMultiplier float64 `json:"reputation_multiplier"`

	// Prerequisites are feat IDs; they must form a DAG.
	Prerequisites        []string `json:"prerequisites,omitempty"`
	UniquePerPlaythrough bool     `json:"unique_per_playthrough"`
	Hidden               bool     `json:"hidden"`

	Trigger *AntagonistTrigger `json:"trigger,omitempty"`
}

// AlignsWith reports whether the feat carries an alignment for p.
func (f *Feat) AlignsWith(p Precept) bool {
	for _, a := range f.Alignments {
		if a.Precept == p {
			return true
		}
	}
	return false
}

// AlignmentStrength returns the strength of the first alignment for p, or 0.
func (f *Feat) AlignmentStrength(p Precept) int {
	for _, a := range f.Alignments {
		if a.Precept == p {
			return a.Strength
		}
	}
	return 0
}

// PrimaryAlignment returns the precept this feat embodies most strongly.
func (f *Feat) PrimaryAlignment() (Precept, bool) {
	if len(f.Alignments) == 0 {
		return 0, false
	}
	best := f.Alignments[0]
	for _, a := range f.Alignments[1:] {
		if a.Strength > best.Strength {
			best = a
		}
	}
	return best.Precept, true
}

// ReputationGain is the one-off reputation this feat earns with a group that
// holds the given precepts.
func (f *Feat) ReputationGain(precepts PreceptList) int {
	if len(precepts) == 0 || len(f.Alignments) == 0 {
		return 0
	}
	total := 0.0
	for _, a := range f.Alignments {
		w, ok := precepts.Find(a.Precept)
		if !ok {
			continue
		}
		score := float64(w.Importance*a.Strength) / 10000.0
		total += float64(f.BaseReputationGain) * f.ReputationMultiplier * score
	}
	return int(math.Round(total))
}

// CanBeEarned reports whether every prerequisite has been completed.
func (f *Feat) CanBeEarned(completed func(id string) bool) bool {
	for _, id := range f.Prerequisites {
		if id == "" {
			continue
		}
		if !completed(id) {
			return false
		}
	}
	return true
}
