// Package content loads the read-only catalog of Ways, feats, networks,
// councils, and crew from YAML. Documents are checked against an embedded
// JSON Schema, numeric ranges are clamped with a warning, and broken
// references are rejected.
package content

import (
	"sort"

	"github.com/talgya/adastrea-verse/internal/ai"
	"github.com/talgya/adastrea-verse/internal/way"
)

// CrewSpec is the starting definition of one crew member.
type CrewSpec struct {
	Member      ai.CrewMember  `json:"member"`
	Disposition ai.Disposition `json:"disposition"`
	Friends     []string       `json:"friends,omitempty"`
	Conflicts   []string       `json:"conflicts,omitempty"`
}

// Catalog is a validated content set. Lookups are by stable ID.
type Catalog struct {
	Ways     []*way.Way
	Feats    []*way.Feat
	Networks []*way.Network
	Crew     []CrewSpec
	Councils []*way.Council

	// Warnings lists every value that was clamped or looked suspicious.
	Warnings []string

	ways     map[string]*way.Way
	feats    map[string]*way.Feat
	networks map[string]*way.Network
	councils map[string]*way.Council
}

func (c *Catalog) index() {
	c.ways = make(map[string]*way.Way, len(c.Ways))
	for _, w := range c.Ways {
		c.ways[w.ID] = w
	}
	c.feats = make(map[string]*way.Feat, len(c.Feats))
	for _, f := range c.Feats {
		c.feats[f.ID] = f
	}
	c.networks = make(map[string]*way.Network, len(c.Networks))
	for _, n := range c.Networks {
		c.networks[n.ID] = n
	}
	c.councils = make(map[string]*way.Council, len(c.Councils))
	for _, co := range c.Councils {
		c.councils[co.ID] = co
	}
}

// Way returns the Way with the given ID.
func (c *Catalog) Way(id string) (*way.Way, bool) {
	w, ok := c.ways[id]
	return w, ok
}

// Feat returns the feat with the given ID.
func (c *Catalog) Feat(id string) (*way.Feat, bool) {
	f, ok := c.feats[id]
	return f, ok
}

// Network returns the network with the given ID.
func (c *Catalog) Network(id string) (*way.Network, bool) {
	n, ok := c.networks[id]
	return n, ok
}

// Council returns the council with the given ID.
func (c *Catalog) Council(id string) (*way.Council, bool) {
	co, ok := c.councils[id]
	return co, ok
}

// WayIDs returns every Way ID in sorted order.
func (c *Catalog) WayIDs() []string {
	ids := make([]string, 0, len(c.ways))
	for id := range c.ways {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
