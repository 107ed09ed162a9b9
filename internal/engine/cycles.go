package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/adastrea-verse/internal/ai"
)

const (
	// driftAmplitude is the largest hourly strength change from drift.
	driftAmplitude = 0.5
	// driftFrequency scales simulated hours onto the noise field.
	driftFrequency = 0.05
	// relationDecay is the share of each relation lost per week.
	relationDecay = 0.05
)

// TickHour applies slow, coherent drift to faction strengths. Each faction
// and attribute samples its own row of a 2D noise field, so changes wander
// rather than jitter.
func (s *Simulation) TickHour(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hours := s.SimSeconds / SecondsPerHour
	for i, f := range s.factions {
		row := float64(i) * 16
		f.Shift(ai.Strengths{
			Military:   driftAmplitude * s.drift.Eval2(row, hours*driftFrequency),
			Economic:   driftAmplitude * s.drift.Eval2(row+4, hours*driftFrequency),
			Diplomatic: driftAmplitude * s.drift.Eval2(row+8, hours*driftFrequency),
		})
	}
}

// TickDay refreshes statistics and logs the daily report.
func (s *Simulation) TickDay(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updateStats()

	counts := make(map[string]int)
	for _, e := range s.events {
		counts[e.Category]++
	}

	slog.Info("daily report",
		"tick", tick,
		"time", SimTime(s.SimSeconds),
		"factions_at_war", s.Stats.FactionsAtWar,
		"active_rivals", s.Stats.ActiveRivals,
		"high_heat_rivals", s.Stats.HighHeatRivals,
		"feats_completed", s.Stats.FeatsCompleted,
		"avg_morale", fmt.Sprintf("%.1f", s.Stats.AvgMorale),
		"avg_fatigue", fmt.Sprintf("%.1f", s.Stats.AvgFatigue),
		"events_diplomacy", counts[CategoryDiplomacy],
		"events_rival", counts[CategoryRival],
		"events_feat", counts[CategoryFeat],
	)

	for _, f := range s.factions {
		slog.Debug("faction", "state", f)
	}
}

// TickWeek lets unattended relationships cool toward neutral and convenes
// the sector councils.
func (s *Simulation) TickWeek(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.factions {
		f.Relations.Drift(relationDecay)
	}
	s.convene()
	s.emit(CategoryWorld, "", fmt.Sprintf("A week passes in the Adastrea sector (%s)", SimTime(s.SimSeconds)))

	slog.Info("weekly summary",
		"tick", tick,
		"time", SimTime(s.SimSeconds),
		"events_buffered", len(s.events),
	)
}
