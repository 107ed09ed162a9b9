// Package cadence turns variable frame deltas into fixed-interval passes.
package cadence

import "math"

// Mode selects how a Gate handles more than one interval of backlog.
type Mode uint8

const (
	// Coalesce runs at most one pass per Advance and discards overshoot.
	Coalesce Mode = iota
	// CatchUp runs one pass per whole interval accumulated and keeps the remainder.
	CatchUp
)

func (m Mode) String() string {
	switch m {
	case Coalesce:
		return "coalesce"
	case CatchUp:
		return "catchup"
	}
	return "unknown"
}

// ParseMode resolves a mode name. Empty selects Coalesce.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "coalesce":
		return Coalesce, true
	case "catchup", "catch-up":
		return CatchUp, true
	}
	return Coalesce, false
}

// MaxCatchUp caps the passes one CatchUp Advance reports. Backlog beyond it
// is dropped, keeping only the sub-interval remainder.
const MaxCatchUp = 1000

// Gate accumulates elapsed seconds and reports when an interval has passed.
// The zero value never fires; set Interval first.
type Gate struct {
	Interval float64
	Mode     Mode

	acc float64
}

// NewGate returns a coalescing gate firing every interval seconds.
func NewGate(interval float64) *Gate {
	return &Gate{Interval: interval}
}

// Advance adds dt seconds and returns how many passes are due. Negative,
// NaN, and infinite deltas are ignored.
func (g *Gate) Advance(dt float64) int {
	if g.Interval <= 0 || !(dt > 0) || math.IsInf(dt, 1) {
		return 0
	}
	g.acc += dt
	if g.acc < g.Interval {
		return 0
	}
	if g.Mode == CatchUp {
		n := math.Floor(g.acc / g.Interval)
		if n > MaxCatchUp {
			g.acc = math.Mod(g.acc, g.Interval)
			return MaxCatchUp
		}
		g.acc -= n * g.Interval
		return int(n)
	}
	g.acc = 0
	return 1
}

// Elapsed is the time accumulated since the last pass.
func (g *Gate) Elapsed() float64 { return g.acc }

// Reset drops any accumulated time.
func (g *Gate) Reset() { g.acc = 0 }
