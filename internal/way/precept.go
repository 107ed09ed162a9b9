// Package way defines the read-only content model: precepts, Ways (factions),
// feats, and Way networks. Everything here is loaded once by the content
// layer and shared by reference afterwards.
package way

import (
	"fmt"
	"strings"
)

// Precept is a named value an organization or accomplishment can embody.
type Precept uint8

const (
	// Virtue and moral values
	Honor Precept = iota
	Justice
	Compassion
	Loyalty

	// Achievement and excellence
	Mastery
	Innovation
	Discovery
	Craftsmanship

	// Power and influence
	Strength
	Dominance
	Cunning
	Ambition

	// Community and relationships
	Unity
	Freedom
	Tradition
	Progress

	// Material and practical
	Prosperity
	Survival
	Efficiency
	Harmony

	preceptCount
)

var preceptNames = [preceptCount]string{
	"Honor", "Justice", "Compassion", "Loyalty",
	"Mastery", "Innovation", "Discovery", "Craftsmanship",
	"Strength", "Dominance", "Cunning", "Ambition",
	"Unity", "Freedom", "Tradition", "Progress",
	"Prosperity", "Survival", "Efficiency", "Harmony",
}

var preceptDescriptions = [preceptCount]string{
	"Upholding principles and keeping one's word",
	"Fairness and righteousness in actions",
	"Mercy and kindness toward others",
	"Dedication and steadfastness to causes",
	"Pursuit of skill perfection",
	"Creating new solutions and ideas",
	"Uncovering hidden knowledge and truths",
	"Excellence in creation and building",
	"Physical and military might",
	"Control and supremacy over others",
	"Strategic thinking and cleverness",
	"Drive to rise and succeed",
	"Togetherness and cooperation",
	"Liberty and independence",
	"Preserving heritage and customs",
	"Advancement and positive change",
	"Wealth and material abundance",
	"Endurance and resilience",
	"Optimal use of resources",
	"Balance and peaceful coexistence",
}

func (p Precept) String() string {
	if p < preceptCount {
		return preceptNames[p]
	}
	return "Unknown"
}

// Description returns a one-line meaning of the precept.
func (p Precept) Description() string {
	if p < preceptCount {
		return preceptDescriptions[p]
	}
	return "A core value of this group"
}

// Valid reports whether p is part of the fixed vocabulary.
func (p Precept) Valid() bool {
	return p < preceptCount
}

// ParsePrecept resolves a precept by name, case-insensitively.
func ParsePrecept(name string) (Precept, bool) {
	name = strings.TrimSpace(name)
	for i, n := range preceptNames {
		if strings.EqualFold(n, name) {
			return Precept(i), true
		}
	}
	return 0, false
}

// MarshalText encodes the precept by name.
func (p Precept) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a precept name.
func (p *Precept) UnmarshalText(b []byte) error {
	v, ok := ParsePrecept(string(b))
	if !ok {
		return fmt.Errorf("unknown precept %q", string(b))
	}
	*p = v
	return nil
}

// AllPrecepts returns the full vocabulary in declaration order.
func AllPrecepts() []Precept {
	out := make([]Precept, 0, preceptCount)
	for p := Precept(0); p < preceptCount; p++ {
		out = append(out, p)
	}
	return out
}

// PreceptWeight is one entry of an owner's weighted precept list.
type PreceptWeight struct {
	Precept     Precept `json:"precept"`
	Importance  int     `json:"importance"` // 0–100
	Description string  `json:"description,omitempty"`
}

// PreceptList is the weighted list of precepts a Way or network declares.
// Order matters only when a precept appears more than once: lookups use the
// first match.
type PreceptList []PreceptWeight

// Find returns the first entry for p.
func (l PreceptList) Find(p Precept) (PreceptWeight, bool) {
	for _, w := range l {
		if w.Precept == p {
			return w, true
		}
	}
	return PreceptWeight{}, false
}

// Importance returns the importance of the first entry for p, or 0.
func (l PreceptList) Importance(p Precept) int {
	if w, ok := l.Find(p); ok {
		return w.Importance
	}
	return 0
}

// Has reports whether p appears in the list.
func (l PreceptList) Has(p Precept) bool {
	_, ok := l.Find(p)
	return ok
}

// Primary returns the precept with the highest importance. Ties keep the
// earliest entry.
func (l PreceptList) Primary() (Precept, bool) {
	if len(l) == 0 {
		return 0, false
	}
	best := l[0]
	for _, w := range l[1:] {
		if w.Importance > best.Importance {
			best = w
		}
	}
	return best.Precept, true
}

// AboveThreshold returns the entries whose importance is at least n.
func (l PreceptList) AboveThreshold(n int) PreceptList {
	var out PreceptList
	for _, w := range l {
		if w.Importance >= n {
			out = append(out, w)
		}
	}
	return out
}

// Duplicates lists precepts that appear more than once. The list itself is
// never deduplicated.
func (l PreceptList) Duplicates() []Precept {
	seen := make(map[Precept]int, len(l))
	var dups []Precept
	for _, w := range l {
		seen[w.Precept]++
		if seen[w.Precept] == 2 {
			dups = append(dups, w.Precept)
		}
	}
	return dups
}

// AlignmentScore sums strength*importance/100 over the first matching entry
// in precepts for each alignment. Alignments with no match contribute 0.
func AlignmentScore(alignments []Alignment, precepts PreceptList) float64 {
	total := 0.0
	for _, a := range alignments {
		if w, ok := precepts.Find(a.Precept); ok {
			total += float64(a.Strength*w.Importance) / 100.0
		}
	}
	return total
}

// Clamp100 clamps v to [0,100].
func Clamp100(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
