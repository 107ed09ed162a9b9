package verse

import (
	"log/slog"
	"sort"

	"github.com/talgya/adastrea-verse/internal/way"
)

// Ledger is the set of feats one agent has completed. Each feat appears at
// most once; recording it again is a no-op.
type Ledger struct {
	feats map[string]*way.Feat
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{feats: make(map[string]*way.Feat)}
}

// Record adds f and reports whether it was newly inserted.
func (l *Ledger) Record(f *way.Feat) bool {
	if f == nil {
		slog.Warn("record called with nil feat")
		return false
	}
	if _, ok := l.feats[f.ID]; ok {
		return false
	}
	l.feats[f.ID] = f
	return true
}

// HasCompleted reports whether f is in the ledger.
func (l *Ledger) HasCompleted(f *way.Feat) bool {
	if f == nil {
		return false
	}
	return l.HasCompletedID(f.ID)
}

// HasCompletedID reports whether a feat with the given ID is in the ledger.
func (l *Ledger) HasCompletedID(id string) bool {
	_, ok := l.feats[id]
	return ok
}

// Clear empties the ledger.
func (l *Ledger) Clear() {
	clear(l.feats)
}

// Len is the number of completed feats.
func (l *Ledger) Len() int { return len(l.feats) }

// Feats returns the completed feats ordered by ID.
func (l *Ledger) Feats() []*way.Feat {
	out := make([]*way.Feat, 0, len(l.feats))
	for _, f := range l.feats {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
