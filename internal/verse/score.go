package verse

import (
	"log/slog"

	"github.com/talgya/adastrea-verse/internal/way"
)

// Tier is the qualitative standing derived from a score.
type Tier uint8

const (
	Distrusted Tier = iota
	Neutral
	Respected
	Trusted
)

// Tier thresholds. Respected and Trusted are inclusive; Neutral's lower
// bound is exclusive.
const (
	TrustedThreshold   = 75.0
	RespectedThreshold = 25.0
	NeutralFloor       = -25.0
)

var tierNames = [...]string{"Distrusted", "Neutral", "Respected", "Trusted"}

func (t Tier) String() string {
	if int(t) < len(tierNames) {
		return tierNames[t]
	}
	return "Unknown"
}

// MarshalText encodes the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// TierFor maps a score to its tier.
func TierFor(score float64) Tier {
	switch {
	case score >= TrustedThreshold:
		return Trusted
	case score >= RespectedThreshold:
		return Respected
	case score > NeutralFloor:
		return Neutral
	default:
		return Distrusted
	}
}

// Score sums each feat's alignment against the Way's core precepts. Only the
// first matching precept counts per alignment. The result is not normalized.
func Score(feats []*way.Feat, w *way.Way) float64 {
	if w == nil {
		slog.Warn("score requested for nil way")
		return 0
	}
	total := 0.0
	for _, f := range feats {
		if f == nil {
			continue
		}
		total += way.AlignmentScore(f.Alignments, w.CorePrecepts)
	}
	return total
}
