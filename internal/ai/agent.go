// Package ai implements the periodic decision loop shared by faction and crew
// AI. An Agent owns the cadence and behavior mode; a Brain supplies the
// domain-specific priority and action choices.
package ai

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/talgya/adastrea-verse/internal/cadence"
)

// Priority is the urgency an agent assigns to its current situation.
type Priority uint8

const (
	Critical Priority = iota
	High
	Medium
	Low
	Idle
)

var priorityNames = [...]string{"Critical", "High", "Medium", "Low", "Idle"}

func (p Priority) String() string {
	if int(p) < len(priorityNames) {
		return priorityNames[p]
	}
	return "Unknown"
}

// MarshalText encodes the priority by name.
func (p Priority) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// BehaviorMode is an agent's overall stance.
type BehaviorMode uint8

const (
	Peaceful BehaviorMode = iota
	Defensive
	Aggressive
	Trading
	Exploration
	Diplomatic
	Resource
	Stealth
)

var modeNames = [...]string{"Peaceful", "Defensive", "Aggressive", "Trading", "Exploration", "Diplomatic", "Resource", "Stealth"}

func (m BehaviorMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "Unknown"
}

// MarshalText encodes the mode by name.
func (m BehaviorMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// ParseBehaviorMode resolves a mode by name, case-insensitively.
func ParseBehaviorMode(s string) (BehaviorMode, bool) {
	for i, n := range modeNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return BehaviorMode(i), true
		}
	}
	return Peaceful, false
}

// Brain makes the decisions for one pass of an Agent.
type Brain interface {
	// Prepare runs first in every pass with the time since the last pass.
	Prepare(elapsed float64)
	EvaluatePriority() Priority
	// DecideAction acts on the priority and reports whether anything was done.
	DecideAction(p Priority) bool
	NextBehaviorMode(current BehaviorMode) BehaviorMode
}

// BaseBrain is a Brain that does nothing. Embed it and override the hooks a
// domain needs.
type BaseBrain struct{}

func (BaseBrain) Prepare(float64)                                   {}
func (BaseBrain) EvaluatePriority() Priority                        { return Idle }
func (BaseBrain) DecideAction(Priority) bool                        { return false }
func (BaseBrain) NextBehaviorMode(current BehaviorMode) BehaviorMode { return current }

// Update interval bounds, in seconds.
const (
	MinInterval     = 0.1
	MaxInterval     = 10.0
	DefaultInterval = 1.0
)

// Agent runs its Brain at most once per update interval.
type Agent struct {
	Name string

	mode   BehaviorMode
	active bool
	gate   cadence.Gate
	brain  Brain
	log    *slog.Logger

	// OnModeChange is called after every behavior mode change.
	OnModeChange func(old, new BehaviorMode)
}

// NewAgent creates an active, peaceful agent. The interval is clamped to
// [MinInterval, MaxInterval].
func NewAgent(name string, brain Brain, interval float64) *Agent {
	if brain == nil {
		brain = BaseBrain{}
	}
	return &Agent{
		Name:   name,
		mode:   Peaceful,
		active: true,
		gate:   cadence.Gate{Interval: clampInterval(interval)},
		brain:  brain,
		log:    slog.With("agent", name),
	}
}

func clampInterval(v float64) float64 {
	if !(v >= MinInterval) {
		return MinInterval
	}
	if v > MaxInterval {
		return MaxInterval
	}
	return v
}

// Interval is the clamped update interval.
func (a *Agent) Interval() float64 { return a.gate.Interval }

// SetInterval changes the update interval, clamping it.
func (a *Agent) SetInterval(v float64) { a.gate.Interval = clampInterval(v) }

// SetCadence switches between coalesced and catch-up ticking.
func (a *Agent) SetCadence(m cadence.Mode) { a.gate.Mode = m }

// Pending is the time accumulated toward the next pass.
func (a *Agent) Pending() float64 { return a.gate.Elapsed() }

// Tick feeds dt seconds to the agent and runs any due passes. Inactive agents
// do not accumulate time. Returns the number of passes run.
func (a *Agent) Tick(dt float64) int {
	if !a.active {
		return 0
	}
	acc := a.gate.Elapsed() + dt
	n := a.gate.Advance(dt)
	step := acc
	if a.gate.Mode == cadence.CatchUp {
		step = a.gate.Interval
	}
	for i := 0; i < n; i++ {
		a.pass(step)
	}
	return n
}

func (a *Agent) pass(elapsed float64) {
	a.brain.Prepare(elapsed)
	p := a.brain.EvaluatePriority()
	acted := a.brain.DecideAction(p)
	a.log.Debug("ai pass", "priority", p, "acted", acted, "elapsed", elapsed)
	if next := a.brain.NextBehaviorMode(a.mode); next != a.mode {
		a.SetMode(next)
	}
}

// Activate resumes ticking.
func (a *Agent) Activate() {
	if a.active {
		return
	}
	a.active = true
	a.log.Info("ai activated")
}

// Deactivate pauses ticking. Accumulated time is kept.
func (a *Agent) Deactivate() {
	if !a.active {
		return
	}
	a.active = false
	a.log.Info("ai deactivated")
}

// Active reports whether the agent is ticking.
func (a *Agent) Active() bool { return a.active }

// Mode is the current behavior mode.
func (a *Agent) Mode() BehaviorMode { return a.mode }

// SetMode changes the behavior mode and notifies OnModeChange.
func (a *Agent) SetMode(m BehaviorMode) {
	if m == a.mode {
		return
	}
	old := a.mode
	a.mode = m
	a.log.Info("ai mode changed", "from", old, "to", m)
	if a.OnModeChange != nil {
		a.OnModeChange(old, m)
	}
}

// InMode reports whether the agent is in mode m.
func (a *Agent) InMode(m BehaviorMode) bool { return a.mode == m }

// IsPeaceful reports whether the current mode is non-hostile.
func (a *Agent) IsPeaceful() bool {
	switch a.mode {
	case Peaceful, Trading, Exploration, Diplomatic:
		return true
	}
	return false
}

// IsAggressive reports whether the current mode is combat-ready.
func (a *Agent) IsAggressive() bool {
	return a.mode == Aggressive || a.mode == Defensive
}

// Describe renders the mode and activity for debugging.
func (a *Agent) Describe() string {
	state := "Active"
	if !a.active {
		state = "Inactive"
	}
	return fmt.Sprintf("%s - %s", a.mode, state)
}
