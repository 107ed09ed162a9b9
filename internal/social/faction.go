// Package social tracks how one party regards others: alliances, enmities,
// truces, and a signed relation score per counterpart.
package social

import (
	"math"
	"sort"
)

// RelationLimit bounds relation values to [-RelationLimit, RelationLimit].
const RelationLimit = 100.0

// Graph is one owner's view of other parties. Allies and enemies are always
// disjoint, and a party at war is never under truce. Not safe for concurrent
// use.
type Graph struct {
	allies    map[string]struct{}
	enemies   map[string]struct{}
	truces    map[string]struct{}
	relations map[string]float64
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		allies:    make(map[string]struct{}),
		enemies:   make(map[string]struct{}),
		truces:    make(map[string]struct{}),
		relations: make(map[string]float64),
	}
}

// AddAlly marks id as an ally, ending any enmity first. Returns false for an
// empty id.
func (g *Graph) AddAlly(id string) bool {
	if id == "" {
		return false
	}
	delete(g.enemies, id)
	g.allies[id] = struct{}{}
	return true
}

// AddEnemy marks id as an enemy, ending any alliance or truce first.
func (g *Graph) AddEnemy(id string) bool {
	if id == "" {
		return false
	}
	delete(g.allies, id)
	delete(g.truces, id)
	g.enemies[id] = struct{}{}
	return true
}

// RemoveAlly drops an alliance and reports whether one existed.
func (g *Graph) RemoveAlly(id string) bool {
	_, ok := g.allies[id]
	delete(g.allies, id)
	return ok
}

// RemoveEnemy drops an enmity and reports whether one existed.
func (g *Graph) RemoveEnemy(id string) bool {
	_, ok := g.enemies[id]
	delete(g.enemies, id)
	return ok
}

// IsAlliedWith reports whether id is an ally.
func (g *Graph) IsAlliedWith(id string) bool {
	_, ok := g.allies[id]
	return ok
}

// IsEnemyOf reports whether id is an enemy.
func (g *Graph) IsEnemyOf(id string) bool {
	_, ok := g.enemies[id]
	return ok
}

// Allies returns ally ids in sorted order.
func (g *Graph) Allies() []string { return sortedKeys(g.allies) }

// Enemies returns enemy ids in sorted order.
func (g *Graph) Enemies() []string { return sortedKeys(g.enemies) }

// Truces returns ids under truce in sorted order.
func (g *Graph) Truces() []string { return sortedKeys(g.truces) }

// HasEnemies reports whether the owner is at war with anyone.
func (g *Graph) HasEnemies() bool { return len(g.enemies) > 0 }

// AddTruce records a truce with id. Parties at war must make peace first.
func (g *Graph) AddTruce(id string) bool {
	if id == "" || g.IsEnemyOf(id) {
		return false
	}
	g.truces[id] = struct{}{}
	return true
}

// RemoveTruce ends a truce and reports whether one existed.
func (g *Graph) RemoveTruce(id string) bool {
	_, ok := g.truces[id]
	delete(g.truces, id)
	return ok
}

// HasTruce reports whether a truce with id is in force.
func (g *Graph) HasTruce(id string) bool {
	_, ok := g.truces[id]
	return ok
}

// SetRelation stores a relation value clamped to the relation range.
func (g *Graph) SetRelation(id string, v float64) {
	if id == "" {
		return
	}
	g.relations[id] = clampRelation(v)
}

// AdjustRelation adds delta to the current relation and returns the result.
func (g *Graph) AdjustRelation(id string, delta float64) float64 {
	if id == "" {
		return 0
	}
	v := clampRelation(g.relations[id] + delta)
	g.relations[id] = v
	return v
}

// Relation returns the stored relation value for id.
func (g *Graph) Relation(id string) (float64, bool) {
	v, ok := g.relations[id]
	return v, ok
}

// Known returns every id the owner holds any state about, sorted.
func (g *Graph) Known() []string {
	seen := make(map[string]struct{}, len(g.relations)+len(g.allies)+len(g.enemies))
	for _, m := range []map[string]struct{}{g.allies, g.enemies, g.truces} {
		for id := range m {
			seen[id] = struct{}{}
		}
	}
	for id := range g.relations {
		seen[id] = struct{}{}
	}
	return sortedKeys(seen)
}

// Drift pulls every relation toward zero by rate (0–1) of its value. Relations
// that reach near zero are kept at zero.
func (g *Graph) Drift(rate float64) {
	if rate <= 0 {
		return
	}
	rate = math.Min(rate, 1)
	for id, rel := range g.relations {
		rel -= rel * rate
		if math.Abs(rel) < 0.01 {
			rel = 0
		}
		g.relations[id] = rel
	}
}

// Clear drops all state.
func (g *Graph) Clear() {
	clear(g.allies)
	clear(g.enemies)
	clear(g.truces)
	clear(g.relations)
}

func clampRelation(v float64) float64 {
	return math.Max(-RelationLimit, math.Min(RelationLimit, v))
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
