package content

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/talgya/adastrea-verse/internal/ai"
	"github.com/talgya/adastrea-verse/internal/way"
)

var (
	// ErrSchema reports a document that does not match the catalog schema.
	ErrSchema = errors.New("content does not match schema")
	// ErrDuplicateID reports two entries of the same kind sharing an ID.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrUnknownReference reports an ID that names nothing in the catalog.
	ErrUnknownReference = errors.New("unknown reference")
	// ErrPrerequisiteCycle reports feat prerequisites that loop.
	ErrPrerequisiteCycle = errors.New("prerequisite cycle")
	// ErrConflictingRelations reports a Way that lists the same party as
	// both ally and enemy.
	ErrConflictingRelations = errors.New("ally is also an enemy")
)

//go:embed catalog.schema.json
var schemaJSON []byte

//go:embed default.yaml
var defaultYAML []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("catalog.schema.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile("catalog.schema.json")
	})
	return schema, schemaErr
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	c, err := Parse(defaultYAML)
	if err != nil {
		return nil, fmt.Errorf("default catalog: %w", err)
	}
	return c, nil
}

// DefaultYAML returns the embedded catalog source.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse validates and decodes a YAML catalog.
func Parse(raw []byte) (*Catalog, error) {
	if err := validate(raw); err != nil {
		return nil, err
	}
	var doc catalogDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	b := &builder{}
	c, err := b.build(doc)
	if err != nil {
		return nil, err
	}
	for _, w := range c.Warnings {
		slog.Warn("content normalized", "detail", w)
	}
	return c, nil
}

// validate checks the document shape. YAML is re-encoded as JSON so the
// schema sees plain JSON values.
func validate(raw []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("decode catalog: %w", err)
	}
	if generic == nil {
		generic = map[string]any{}
	}
	js, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}
	return nil
}

type catalogDoc struct {
	Ways     []wayDoc     `yaml:"ways"`
	Feats    []featDoc    `yaml:"feats"`
	Networks []networkDoc `yaml:"networks"`
	Crew     []crewDoc    `yaml:"crew"`
	Councils []councilDoc `yaml:"councils"`
}

type preceptDoc struct {
	Precept     string `yaml:"precept"`
	Importance  int    `yaml:"importance"`
	Description string `yaml:"description"`
}

type wayDoc struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Precepts    []preceptDoc       `yaml:"precepts"`
	Military    float64            `yaml:"military"`
	Economic    float64            `yaml:"economic"`
	Diplomatic  float64            `yaml:"diplomatic"`
	Territory   float64            `yaml:"territory"`
	Traits      []string           `yaml:"traits"`
	Allies      []string           `yaml:"allies"`
	Enemies     []string           `yaml:"enemies"`
	Relations   map[string]float64 `yaml:"relations"`
}

type alignmentDoc struct {
	Precept  string `yaml:"precept"`
	Strength int    `yaml:"strength"`
	Reason   string `yaml:"reason"`
}

type triggerDoc struct {
	SpawnChance float64 `yaml:"spawn_chance"`
	InitialHeat int     `yaml:"initial_heat"`
	Goal        string  `yaml:"goal"`
}

type featDoc struct {
	ID             string         `yaml:"id"`
	Title          string         `yaml:"title"`
	Description    string         `yaml:"description"`
	Rarity         string         `yaml:"rarity"`
	Alignments     []alignmentDoc `yaml:"alignments"`
	BaseReputation *int           `yaml:"base_reputation"`
	Multiplier     *float64       `yaml:"reputation_multiplier"`
	Prerequisites  []string       `yaml:"prerequisites"`
	Unique         *bool          `yaml:"unique"`
	Hidden         bool           `yaml:"hidden"`
	Trigger        *triggerDoc    `yaml:"trigger"`
}

type memberDoc struct {
	Way       string `yaml:"way"`
	Influence *int   `yaml:"influence"`
}

type networkDoc struct {
	ID             string       `yaml:"id"`
	Name           string       `yaml:"name"`
	Members        []memberDoc  `yaml:"members"`
	SharedPrecepts []preceptDoc `yaml:"shared_precepts"`
	Spillover      *int         `yaml:"spillover_percent"`
	Bonus          *float64     `yaml:"alignment_bonus"`
	MinReputation  *int         `yaml:"min_reputation"`
	Active         *bool        `yaml:"active"`
}

type crewDoc struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Disposition string   `yaml:"disposition"`
	Health      *float64 `yaml:"health"`
	Morale      *float64 `yaml:"morale"`
	Fatigue     *float64 `yaml:"fatigue"`
	SkillLevel  *int     `yaml:"skill_level"`
	Friends     []string `yaml:"friends"`
	Conflicts   []string `yaml:"conflicts"`
}

type representativeDoc struct {
	Way              string `yaml:"way"`
	Name             string `yaml:"name"`
	VotingWeight     *int   `yaml:"voting_weight"`
	YearsOfService   int    `yaml:"years_of_service"`
	PlayerControlled bool   `yaml:"player_controlled"`
}

type policyDoc struct {
	Type        string `yaml:"type"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Value       *int   `yaml:"value"`
	Active      *bool  `yaml:"active"`
}

type councilDoc struct {
	ID              string              `yaml:"id"`
	Name            string              `yaml:"name"`
	Description     string              `yaml:"description"`
	Representatives []representativeDoc `yaml:"representatives"`
	PassThreshold   *int                `yaml:"pass_threshold"`
	Taxes           struct {
		Security       *int `yaml:"security"`
		Infrastructure *int `yaml:"infrastructure"`
		Administration *int `yaml:"administration"`
	} `yaml:"taxes"`
	Budget struct {
		Security       *int `yaml:"security"`
		Infrastructure *int `yaml:"infrastructure"`
		Emergency      *int `yaml:"emergency"`
	} `yaml:"budget"`
	Treasury *int64      `yaml:"treasury"`
	Policies []policyDoc `yaml:"policies"`
}

// Defaults for optional fields.
const (
	DefaultBaseReputation = 10
	DefaultMultiplier     = 1.0
	DefaultSpillover      = 30
	DefaultAlignmentBonus = 1.5
	DefaultMinReputation  = 25
	DefaultInfluence      = 50
	DefaultCrewHealth     = 100.0
	DefaultCrewMorale     = 70.0
	DefaultCrewSkill      = 5

	DefaultVotingWeight      = 10
	DefaultPassThreshold     = 51
	DefaultSecurityTax       = 10
	DefaultInfrastructureTax = 5
	DefaultAdministrationTax = 3
	DefaultSecurityBudget    = 50
	DefaultInfraBudget       = 35
	DefaultEmergencyReserve  = 15
	DefaultTreasury          = 100000
	DefaultPolicyValue       = 50
)

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// builder turns decoded documents into domain values, collecting warnings.
type builder struct {
	warnings []string
}

func (b *builder) warnf(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

func (b *builder) clampInt(v, lo, hi int, what string) int {
	if v < lo || v > hi {
		c := max(lo, min(hi, v))
		b.warnf("%s %d clamped to %d", what, v, c)
		return c
	}
	return v
}

func (b *builder) clampFloat(v, lo, hi float64, what string) float64 {
	if v < lo || v > hi {
		c := max(lo, min(hi, v))
		b.warnf("%s %g clamped to %g", what, v, c)
		return c
	}
	return v
}

func (b *builder) precepts(docs []preceptDoc, owner string) way.PreceptList {
	list := make(way.PreceptList, 0, len(docs))
	for _, d := range docs {
		p, _ := way.ParsePrecept(d.Precept)
		list = append(list, way.PreceptWeight{
			Precept:     p,
			Importance:  b.clampInt(d.Importance, 0, 100, owner+" importance"),
			Description: d.Description,
		})
	}
	for _, p := range list.Duplicates() {
		b.warnf("%s lists precept %s more than once; the first entry is used", owner, p)
	}
	return list
}

func (b *builder) build(doc catalogDoc) (*Catalog, error) {
	c := &Catalog{}

	seen := map[string]bool{}
	for _, d := range doc.Ways {
		if seen[d.ID] {
			return nil, fmt.Errorf("way %q: %w", d.ID, ErrDuplicateID)
		}
		seen[d.ID] = true
		c.Ways = append(c.Ways, b.way(d))
	}

	seen = map[string]bool{}
	for _, d := range doc.Feats {
		if seen[d.ID] {
			return nil, fmt.Errorf("feat %q: %w", d.ID, ErrDuplicateID)
		}
		seen[d.ID] = true
		c.Feats = append(c.Feats, b.feat(d))
	}

	seen = map[string]bool{}
	for _, d := range doc.Networks {
		if seen[d.ID] {
			return nil, fmt.Errorf("network %q: %w", d.ID, ErrDuplicateID)
		}
		seen[d.ID] = true
		c.Networks = append(c.Networks, b.network(d))
	}

	seen = map[string]bool{}
	for _, d := range doc.Crew {
		if seen[d.ID] {
			return nil, fmt.Errorf("crew %q: %w", d.ID, ErrDuplicateID)
		}
		seen[d.ID] = true
		c.Crew = append(c.Crew, b.crew(d))
	}
	crewIDs := seen

	seen = map[string]bool{}
	for _, d := range doc.Councils {
		if seen[d.ID] {
			return nil, fmt.Errorf("council %q: %w", d.ID, ErrDuplicateID)
		}
		seen[d.ID] = true
		c.Councils = append(c.Councils, b.council(d))
	}

	c.index()
	if err := checkReferences(c, crewIDs); err != nil {
		return nil, err
	}
	if err := checkPrerequisites(c); err != nil {
		return nil, err
	}
	c.Warnings = b.warnings
	return c, nil
}

func (b *builder) way(d wayDoc) *way.Way {
	owner := "way " + d.ID
	w := &way.Way{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		CorePrecepts: b.precepts(d.Precepts, owner),
		Military:     b.clampFloat(d.Military, 0, 100, owner+" military"),
		Economic:     b.clampFloat(d.Economic, 0, 100, owner+" economic"),
		Diplomatic:   b.clampFloat(d.Diplomatic, 0, 100, owner+" diplomatic"),
		Territory:    b.clampFloat(d.Territory, 0, 100, owner+" territory"),
		Traits:       d.Traits,
		Allies:       d.Allies,
		Enemies:      d.Enemies,
	}
	if len(d.Relations) > 0 {
		w.Relations = make(map[string]float64, len(d.Relations))
		for id, v := range d.Relations {
			w.Relations[id] = b.clampFloat(v, -100, 100, owner+" relation with "+id)
		}
	}
	return w
}

func (b *builder) feat(d featDoc) *way.Feat {
	owner := "feat " + d.ID
	rarity, _ := way.ParseRarity(d.Rarity)
	f := &way.Feat{
		ID:                   d.ID,
		Title:                d.Title,
		Description:          d.Description,
		Rarity:               rarity,
		BaseReputationGain:   valueOr(d.BaseReputation, DefaultBaseReputation),
		ReputationMultiplier: valueOr(d.Multiplier, DefaultMultiplier),
		Prerequisites:        d.Prerequisites,
		UniquePerPlaythrough: valueOr(d.Unique, true),
		Hidden:               d.Hidden,
	}
	if f.ReputationMultiplier < 0 {
		b.warnf("%s reputation multiplier %g clamped to 0", owner, f.ReputationMultiplier)
		f.ReputationMultiplier = 0
	}
	seen := map[way.Precept]bool{}
	for _, a := range d.Alignments {
		p, _ := way.ParsePrecept(a.Precept)
		if seen[p] {
			b.warnf("%s aligns with %s more than once", owner, p)
		}
		seen[p] = true
		f.Alignments = append(f.Alignments, way.Alignment{
			Precept:  p,
			Strength: b.clampInt(a.Strength, 0, 100, owner+" alignment strength"),
			Reason:   a.Reason,
		})
	}
	if d.Trigger != nil {
		goal, _ := way.ParseRivalGoal(d.Trigger.Goal)
		f.Trigger = &way.AntagonistTrigger{
			SpawnChance: b.clampFloat(d.Trigger.SpawnChance, 0, 1, owner+" spawn chance"),
			InitialHeat: b.clampInt(d.Trigger.InitialHeat, 0, 100, owner+" initial heat"),
			Goal:        goal,
		}
	}
	return f
}

func (b *builder) network(d networkDoc) *way.Network {
	owner := "network " + d.ID
	n := &way.Network{
		ID:               d.ID,
		Name:             d.Name,
		SharedPrecepts:   b.precepts(d.SharedPrecepts, owner),
		SpilloverPercent: b.clampInt(valueOr(d.Spillover, DefaultSpillover), 0, 100, owner+" spillover"),
		AlignmentBonus:   b.clampFloat(valueOr(d.Bonus, DefaultAlignmentBonus), 0, 10, owner+" alignment bonus"),
		MinReputation:    valueOr(d.MinReputation, DefaultMinReputation),
		Active:           valueOr(d.Active, true),
	}
	for _, m := range d.Members {
		n.Members = append(n.Members, way.NetworkMember{
			WayID:     m.Way,
			Influence: b.clampInt(valueOr(m.Influence, DefaultInfluence), 0, 100, owner+" influence"),
		})
	}
	return n
}

func (b *builder) crew(d crewDoc) CrewSpec {
	owner := "crew " + d.ID
	disp, ok := ai.ParseDisposition(d.Disposition)
	if !ok && d.Disposition != "" {
		b.warnf("%s disposition %q unknown, using %s", owner, d.Disposition, disp)
	}
	return CrewSpec{
		Member: ai.CrewMember{
			ID:         d.ID,
			Name:       d.Name,
			Health:     b.clampFloat(valueOr(d.Health, DefaultCrewHealth), 0, 100, owner+" health"),
			Morale:     b.clampFloat(valueOr(d.Morale, DefaultCrewMorale), 0, 100, owner+" morale"),
			Fatigue:    b.clampFloat(valueOr(d.Fatigue, 0), 0, 100, owner+" fatigue"),
			SkillLevel: b.clampInt(valueOr(d.SkillLevel, DefaultCrewSkill), 1, 10, owner+" skill level"),
		},
		Disposition: disp,
		Friends:     d.Friends,
		Conflicts:   d.Conflicts,
	}
}

func (b *builder) council(d councilDoc) *way.Council {
	owner := "council " + d.ID
	pct := func(p *int, def int, what string) int {
		return b.clampInt(valueOr(p, def), 0, 100, owner+" "+what)
	}
	c := &way.Council{
		ID:                          d.ID,
		Name:                        d.Name,
		Description:                 d.Description,
		PassThreshold:               pct(d.PassThreshold, DefaultPassThreshold, "pass threshold"),
		SecurityTaxRate:             pct(d.Taxes.Security, DefaultSecurityTax, "security tax"),
		InfrastructureTaxRate:       pct(d.Taxes.Infrastructure, DefaultInfrastructureTax, "infrastructure tax"),
		AdministrationTaxRate:       pct(d.Taxes.Administration, DefaultAdministrationTax, "administration tax"),
		SecurityBudgetPercent:       pct(d.Budget.Security, DefaultSecurityBudget, "security budget"),
		InfrastructureBudgetPercent: pct(d.Budget.Infrastructure, DefaultInfraBudget, "infrastructure budget"),
		EmergencyReservePercent:     pct(d.Budget.Emergency, DefaultEmergencyReserve, "emergency reserve"),
		Treasury:                    valueOr(d.Treasury, DefaultTreasury),
	}
	if !c.BudgetBalanced() {
		b.warnf("%s budget allocations do not total 100%%", owner)
	}
	seats := map[string]bool{}
	for _, r := range d.Representatives {
		if seats[r.Way] {
			b.warnf("%s seats %s more than once; the first seat is used", owner, r.Way)
			continue
		}
		seats[r.Way] = true
		c.Representatives = append(c.Representatives, way.Representative{
			WayID:            r.Way,
			Name:             r.Name,
			VotingWeight:     pct(r.VotingWeight, DefaultVotingWeight, "voting weight"),
			YearsOfService:   r.YearsOfService,
			PlayerControlled: r.PlayerControlled,
		})
	}
	for _, p := range d.Policies {
		t, _ := way.ParsePolicyType(p.Type)
		c.Policies = append(c.Policies, way.Policy{
			Type:        t,
			Name:        p.Name,
			Description: p.Description,
			Value:       pct(p.Value, DefaultPolicyValue, "policy value"),
			Active:      valueOr(p.Active, true),
		})
	}
	return c
}

func checkReferences(c *Catalog, crewIDs map[string]bool) error {
	for _, w := range c.Ways {
		enemies := map[string]bool{}
		for _, id := range w.Enemies {
			if _, ok := c.ways[id]; !ok {
				return fmt.Errorf("way %q enemy %q: %w", w.ID, id, ErrUnknownReference)
			}
			enemies[id] = true
		}
		for _, id := range w.Allies {
			if _, ok := c.ways[id]; !ok {
				return fmt.Errorf("way %q ally %q: %w", w.ID, id, ErrUnknownReference)
			}
			if enemies[id] {
				return fmt.Errorf("way %q and %q: %w", w.ID, id, ErrConflictingRelations)
			}
		}
		for id := range w.Relations {
			if _, ok := c.ways[id]; !ok {
				return fmt.Errorf("way %q relation %q: %w", w.ID, id, ErrUnknownReference)
			}
		}
	}
	for _, n := range c.Networks {
		for _, m := range n.Members {
			if _, ok := c.ways[m.WayID]; !ok {
				return fmt.Errorf("network %q member %q: %w", n.ID, m.WayID, ErrUnknownReference)
			}
		}
	}
	for _, co := range c.Councils {
		for _, r := range co.Representatives {
			if _, ok := c.ways[r.WayID]; !ok {
				return fmt.Errorf("council %q representative %q: %w", co.ID, r.WayID, ErrUnknownReference)
			}
		}
	}
	for _, f := range c.Feats {
		for _, id := range f.Prerequisites {
			if _, ok := c.feats[id]; !ok {
				return fmt.Errorf("feat %q prerequisite %q: %w", f.ID, id, ErrUnknownReference)
			}
		}
	}
	for _, s := range c.Crew {
		for _, id := range append(append([]string(nil), s.Friends...), s.Conflicts...) {
			if !crewIDs[id] {
				return fmt.Errorf("crew %q peer %q: %w", s.Member.ID, id, ErrUnknownReference)
			}
		}
	}
	return nil
}

// checkPrerequisites walks the prerequisite graph depth-first and rejects
// any back edge.
func checkPrerequisites(c *Catalog) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(c.Feats))
	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		switch state[id] {
		case visiting:
			return fmt.Errorf("%v -> %s: %w", path, id, ErrPrerequisiteCycle)
		case done:
			return nil
		}
		state[id] = visiting
		f := c.feats[id]
		for _, pre := range f.Prerequisites {
			if err := visit(pre, append(slices.Clone(path), id)); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}
	for _, f := range c.Feats {
		if err := visit(f.ID, nil); err != nil {
			return err
		}
	}
	return nil
}
