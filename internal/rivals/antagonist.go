// Package rivals manages antagonists: recurring adversaries spawned in
// reaction to an agent's feats, whose heat cools over time.
package rivals

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/adastrea-verse/internal/way"
)

// Antagonist is one spawned rival.
type Antagonist struct {
	ID     uuid.UUID     `json:"id"`
	Name   string        `json:"name"`
	FeatID string        `json:"feat_id,omitempty"`
	Goal   way.RivalGoal `json:"goal"`

	// Heat is how actively the rival pursues the agent, 0–100.
	Heat int `json:"heat"`

	FactionID string   `json:"faction_id,omitempty"`
	Traits    []string `json:"traits,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	Encounters int       `json:"encounters"`
	Active     bool      `json:"active"`
}

// Describe renders a one-line debug summary.
func (a Antagonist) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) heat=%d encounters=%d", a.Name, a.Goal, a.Heat, a.Encounters)
	if a.FeatID != "" {
		fmt.Fprintf(&b, " feat=%s", a.FeatID)
	}
	if a.FactionID != "" {
		fmt.Fprintf(&b, " faction=%s", a.FactionID)
	}
	if !a.Active {
		b.WriteString(" [inactive]")
	}
	if !a.CreatedAt.IsZero() {
		fmt.Fprintf(&b, ", appeared %s", humanize.Time(a.CreatedAt))
	}
	return b.String()
}

func (a *Antagonist) clone() Antagonist {
	c := *a
	if a.Traits != nil {
		c.Traits = append([]string(nil), a.Traits...)
	}
	return c
}

var namePrefixes = []string{
	"Captain", "Commander", "Admiral", "Lord", "Lady",
	"Baron", "Baroness", "Director", "Overseer", "Warlord",
}

var surnames = map[way.RivalGoal][]string{
	way.GoalRevenge:     {"Vex", "Rancor", "Vendetta", "Fury", "Wraith"},
	way.GoalCompetition: {"Challenger", "Rival", "Defiant", "Victor", "Ascendant"},
	way.GoalObsession:   {"Stalker", "Hunter", "Shadow", "Watcher", "Pursuer"},
	way.GoalJealousy:    {"Envious", "Covetous", "Desirous", "Grudge", "Spite"},
	way.GoalHonor:       {"Honorbound", "Duelist", "Oath", "Vanguard", "Sentinel"},
	way.GoalCuriosity:   {"Seeker", "Scholar", "Inquirer", "Delver", "Explorer"},
	way.GoalGreed:       {"Profiteer", "Hoarder", "Tycoon", "Mogul", "Raider"},
	way.GoalJustice:     {"Justicar", "Lawbringer", "Arbiter", "Judge", "Enforcer"},
}

var fallbackSurnames = []string{"Nemesis", "Adversary", "Rival", "Antagonist"}
