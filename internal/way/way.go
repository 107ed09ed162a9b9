// Ways are factions defined by the precepts they value, their organizational
// strength, and their standing with other Ways.
package way

import "strings"

// Way is a faction definition. Strength attributes are starting values; the
// faction AI keeps its own mutable copy.
type Way struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	CorePrecepts PreceptList `json:"core_precepts"`

	// Organizational attributes, each 0–100.
	Military   float64 `json:"military"`
	Economic   float64 `json:"economic"`
	Diplomatic float64 `json:"diplomatic"`
	Territory  float64 `json:"territory"`

	Traits []string `json:"traits,omitempty"`

	// Starting relationship state.
	Allies    []string           `json:"allies,omitempty"`
	Enemies   []string           `json:"enemies,omitempty"`
	Relations map[string]float64 `json:"relations,omitempty"` // -100 to +100
}

// HasTrait reports whether the Way carries the named trait.
func (w *Way) HasTrait(name string) bool {
	for _, t := range w.Traits {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

// NetworkMember is a Way's seat in a network.
type NetworkMember struct {
	WayID     string `json:"way_id"`
	Influence int    `json:"influence"` // 0–100
}

// Network is a coalition of Ways that share precepts. Reputation with one
// member partially carries over to the others.
type Network struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Members        []NetworkMember `json:"members"`
	SharedPrecepts PreceptList     `json:"shared_precepts"`

	SpilloverPercent int     `json:"spillover_percent"`
	AlignmentBonus   float64 `json:"alignment_bonus"`
	MinReputation    int     `json:"min_reputation"`
	Active           bool    `json:"active"`
}

// IsMember reports whether wayID belongs to the network.
func (n *Network) IsMember(wayID string) bool {
	for _, m := range n.Members {
		if m.WayID == wayID {
			return true
		}
	}
	return false
}

// MemberInfluence returns a member's influence, or 0 for non-members.
func (n *Network) MemberInfluence(wayID string) int {
	for _, m := range n.Members {
		if m.WayID == wayID {
			return m.Influence
		}
	}
	return 0
}

// MostInfluential returns the member with the highest influence.
func (n *Network) MostInfluential() (NetworkMember, bool) {
	if len(n.Members) == 0 {
		return NetworkMember{}, false
	}
	best := n.Members[0]
	for _, m := range n.Members[1:] {
		if m.Influence > best.Influence {
			best = m
		}
	}
	return best, true
}

// Alignment scores feat alignments against the network's shared precepts.
func (n *Network) Alignment(alignments []Alignment) float64 {
	return AlignmentScore(alignments, n.SharedPrecepts)
}

// Spillover is the share of a reputation gain that carries across members.
func (n *Network) Spillover(base int) int {
	if base <= 0 || n.SpilloverPercent <= 0 {
		return 0
	}
	return base * n.SpilloverPercent / 100
}

// Qualifies reports whether a reputation clears the bonus threshold.
func (n *Network) Qualifies(reputation int) bool {
	return reputation >= n.MinReputation
}

// PhilosophySummary lists the shared precepts in a sentence.
func (n *Network) PhilosophySummary() string {
	if len(n.SharedPrecepts) == 0 {
		return "No shared philosophy defined"
	}
	names := make([]string, len(n.SharedPrecepts))
	for i, w := range n.SharedPrecepts {
		names[i] = w.Precept.String()
	}
	return "This network values: " + strings.Join(names, ", ")
}
