// Package verse tracks what an agent has accomplished and how each Way
// regards it.
package verse

import (
	"log/slog"

	"github.com/talgya/adastrea-verse/internal/way"
)

// WayResolver looks up Way definitions by ID.
type WayResolver interface {
	Way(id string) (*way.Way, bool)
}

// NetworkEffect is the alignment bonus a recorded feat earned with one network.
type NetworkEffect struct {
	NetworkID string  `json:"network_id"`
	Alignment float64 `json:"alignment"`
	Bonus     float64 `json:"bonus"`
}

// Verse is one agent's reputation state: its completed feats and the Way
// networks it is tracked against. Not safe for concurrent use.
type Verse struct {
	ledger   *Ledger
	networks []*way.Network
	bonus    map[string]float64
	resolver WayResolver
}

// New creates an empty Verse. resolver may be nil, in which case network
// scores only see registered networks and resolve no members.
func New(resolver WayResolver) *Verse {
	return &Verse{
		ledger:   NewLedger(),
		bonus:    make(map[string]float64),
		resolver: resolver,
	}
}

// Close drops all recorded state.
func (v *Verse) Close() {
	v.ledger.Clear()
	v.networks = nil
	clear(v.bonus)
}

// Ledger exposes the underlying feat ledger.
func (v *Verse) Ledger() *Ledger { return v.ledger }

// RecordFeat records f and reports whether it was new.
func (v *Verse) RecordFeat(f *way.Feat) bool {
	if !v.ledger.Record(f) {
		return false
	}
	slog.Debug("feat recorded", "feat", f.ID, "title", f.Title)
	return true
}

// HasCompleted reports whether f has been recorded.
func (v *Verse) HasCompleted(f *way.Feat) bool {
	return v.ledger.HasCompleted(f)
}

// Score is the agent's current score with w.
func (v *Verse) Score(w *way.Way) float64 {
	return Score(v.ledger.Feats(), w)
}

// Tier is the agent's current tier with w. A nil Way is Neutral.
func (v *Verse) Tier(w *way.Way) Tier {
	return TierFor(v.Score(w))
}

// RegisterNetwork starts tracking n. Nil and already-registered networks are
// ignored.
func (v *Verse) RegisterNetwork(n *way.Network) {
	if n == nil {
		slog.Warn("register called with nil network")
		return
	}
	for _, existing := range v.networks {
		if existing == n || existing.ID == n.ID {
			return
		}
	}
	v.networks = append(v.networks, n)
}

// UnregisterNetwork stops tracking n.
func (v *Verse) UnregisterNetwork(n *way.Network) {
	if n == nil {
		slog.Warn("unregister called with nil network")
		return
	}
	for i, existing := range v.networks {
		if existing.ID == n.ID {
			v.networks = append(v.networks[:i], v.networks[i+1:]...)
			delete(v.bonus, n.ID)
			return
		}
	}
}

// Networks returns the registered networks in registration order.
func (v *Verse) Networks() []*way.Network {
	out := make([]*way.Network, len(v.networks))
	copy(out, v.networks)
	return out
}

// NetworksFor returns the active registered networks that include w.
func (v *Verse) NetworksFor(w *way.Way) []*way.Network {
	if w == nil {
		return nil
	}
	var out []*way.Network
	for _, n := range v.networks {
		if n.Active && n.IsMember(w.ID) {
			out = append(out, n)
		}
	}
	return out
}

// NetworkScore is the influence-weighted mean score over the network's
// resolvable members.
func (v *Verse) NetworkScore(n *way.Network) float64 {
	if n == nil || v.resolver == nil {
		return 0
	}
	feats := v.ledger.Feats()
	total := 0.0
	count := 0
	for _, m := range n.Members {
		w, ok := v.resolver.Way(m.WayID)
		if !ok {
			continue
		}
		total += Score(feats, w) * float64(m.Influence) / 100.0
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// QualifiesForNetworkBonuses reports whether any member's score reaches the
// network's minimum reputation.
func (v *Verse) QualifiesForNetworkBonuses(n *way.Network) bool {
	if n == nil || v.resolver == nil {
		return false
	}
	feats := v.ledger.Feats()
	for _, m := range n.Members {
		w, ok := v.resolver.Way(m.WayID)
		if !ok {
			continue
		}
		if n.Qualifies(int(Score(feats, w))) {
			return true
		}
	}
	return false
}

// RecordFeatWithNetworkEffects records f and, when apply is set, reports the
// alignment bonus it earns with every active registered network it aligns
// with. Bonuses accumulate per network. A feat already in the ledger earns
// nothing.
func (v *Verse) RecordFeatWithNetworkEffects(f *way.Feat, apply bool) []NetworkEffect {
	if f == nil {
		slog.Warn("record with network effects called with nil feat")
		return nil
	}
	if !v.RecordFeat(f) || !apply {
		return nil
	}
	var effects []NetworkEffect
	for _, n := range v.networks {
		if !n.Active {
			continue
		}
		alignment := n.Alignment(f.Alignments)
		if alignment <= 0 {
			continue
		}
		bonus := alignment * n.AlignmentBonus
		v.bonus[n.ID] += bonus
		slog.Debug("network alignment", "feat", f.ID, "network", n.ID, "alignment", alignment, "bonus", bonus)
		effects = append(effects, NetworkEffect{NetworkID: n.ID, Alignment: alignment, Bonus: bonus})
	}
	return effects
}

// NetworkBonus is the bonus accumulated with a network so far.
func (v *Verse) NetworkBonus(networkID string) float64 {
	return v.bonus[networkID]
}
