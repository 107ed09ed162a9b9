// Package metrics exposes simulation counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the simulation's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Ticks          prometheus.Counter
	TickDuration   prometheus.Histogram
	FeatsCompleted *prometheus.CounterVec
	RivalsSpawned  *prometheus.CounterVec
	ActiveRivals   prometheus.Gauge
	StrategyShifts *prometheus.CounterVec
	Diplomacy      *prometheus.CounterVec
	CouncilVotes   *prometheus.CounterVec
	StreamClients  prometheus.Gauge
	JournalErrors  prometheus.Counter
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Ticks: f.NewCounter(prometheus.CounterOpts{
			Name: "versesim_ticks_total",
			Help: "Engine ticks processed",
		}),
		TickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "versesim_tick_duration_seconds",
			Help:    "Wall-clock time spent per engine tick",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		FeatsCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "versesim_feats_completed_total",
			Help: "First-time feat completions by rarity",
		}, []string{"rarity"}),
		RivalsSpawned: f.NewCounterVec(prometheus.CounterOpts{
			Name: "versesim_rivals_spawned_total",
			Help: "Antagonists spawned by goal",
		}, []string{"goal"}),
		ActiveRivals: f.NewGauge(prometheus.GaugeOpts{
			Name: "versesim_rivals_active",
			Help: "Antagonists currently active",
		}),
		StrategyShifts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "versesim_strategy_changes_total",
			Help: "Faction strategy changes by new strategy",
		}, []string{"strategy"}),
		Diplomacy: f.NewCounterVec(prometheus.CounterOpts{
			Name: "versesim_diplomatic_actions_total",
			Help: "Diplomatic actions taken by kind",
		}, []string{"action"}),
		CouncilVotes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "versesim_council_votes_total",
			Help: "Sector council votes by result",
		}, []string{"result"}),
		StreamClients: f.NewGauge(prometheus.GaugeOpts{
			Name: "versesim_stream_clients",
			Help: "Connected event stream clients",
		}),
		JournalErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "versesim_journal_errors_total",
			Help: "Failed journal writes",
		}),
	}
}

// RecordTick records one engine tick and its duration.
func (m *Metrics) RecordTick(seconds float64) {
	if m == nil {
		return
	}
	m.Ticks.Inc()
	m.TickDuration.Observe(seconds)
}

// RecordFeat records a first-time feat completion.
func (m *Metrics) RecordFeat(rarity string) {
	if m == nil {
		return
	}
	m.FeatsCompleted.WithLabelValues(rarity).Inc()
}

// RecordRival records a spawn and the new active count.
func (m *Metrics) RecordRival(goal string, active int) {
	if m == nil {
		return
	}
	m.RivalsSpawned.WithLabelValues(goal).Inc()
	m.ActiveRivals.Set(float64(active))
}

// SetActiveRivals updates the active antagonist gauge.
func (m *Metrics) SetActiveRivals(n int) {
	if m == nil {
		return
	}
	m.ActiveRivals.Set(float64(n))
}

// RecordStrategy records a faction strategy change.
func (m *Metrics) RecordStrategy(strategy string) {
	if m == nil {
		return
	}
	m.StrategyShifts.WithLabelValues(strategy).Inc()
}

// RecordDiplomacy records a diplomatic action.
func (m *Metrics) RecordDiplomacy(action string) {
	if m == nil {
		return
	}
	m.Diplomacy.WithLabelValues(action).Inc()
}

// RecordCouncilVote records a council vote outcome.
func (m *Metrics) RecordCouncilVote(passed bool) {
	if m == nil {
		return
	}
	result := "failed"
	if passed {
		result = "passed"
	}
	m.CouncilVotes.WithLabelValues(result).Inc()
}

// StreamConnected and StreamDisconnected track live stream clients.
func (m *Metrics) StreamConnected() {
	if m != nil {
		m.StreamClients.Inc()
	}
}

func (m *Metrics) StreamDisconnected() {
	if m != nil {
		m.StreamClients.Dec()
	}
}

// RecordJournalError counts a failed journal write.
func (m *Metrics) RecordJournalError() {
	if m != nil {
		m.JournalErrors.Inc()
	}
}
