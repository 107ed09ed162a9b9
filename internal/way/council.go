// Sector councils: Ways with a presence in a sector sit on its council and
// vote, weighted, on taxes, budget, and policy.
package way

import (
	"fmt"
	"math"
	"strings"
)

// PolicyType is the area a sector policy governs.
type PolicyType uint8

const (
	PolicySecurityBudget PolicyType = iota
	PolicyTradeRegulation
	PolicyResourceAllocation
	PolicyInfrastructureFund
	PolicyEmergencyReserve
	PolicyPatrolFrequency
)

var policyNames = []string{
	"SecurityBudget", "TradeRegulation", "ResourceAllocation",
	"InfrastructureFund", "EmergencyReserve", "PatrolFrequency",
}

func (p PolicyType) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return "Unknown"
}

// ParsePolicyType resolves a policy type by name, case-insensitively.
func ParsePolicyType(name string) (PolicyType, bool) {
	for i, n := range policyNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return PolicyType(i), true
		}
	}
	return PolicySecurityBudget, false
}

// MarshalText encodes the policy type by name.
func (p PolicyType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a policy type name.
func (p *PolicyType) UnmarshalText(b []byte) error {
	v, ok := ParsePolicyType(string(b))
	if !ok {
		return fmt.Errorf("unknown policy type %q", string(b))
	}
	*p = v
	return nil
}

// Policy is one sector rule. Value is a rate or budget share, 0–100.
type Policy struct {
	Type        PolicyType `json:"type"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Value       int        `json:"value"`
	Active      bool       `json:"active"`
}

// Representative is a Way's seat on a council.
type Representative struct {
	WayID            string `json:"way_id"`
	Name             string `json:"name"`
	VotingWeight     int    `json:"voting_weight"` // 0–100
	YearsOfService   int    `json:"years_of_service"`
	PlayerControlled bool   `json:"player_controlled,omitempty"`
}

// Vote is the weighted outcome of a council vote.
type Vote struct {
	Issue   string `json:"issue"`
	Policy  Policy `json:"policy"`
	For     int    `json:"for"`
	Against int    `json:"against"`
	Abstain int    `json:"abstain"`
	Passed  bool   `json:"passed"`
}

// Council governs one sector.
type Council struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Representatives []Representative `json:"representatives"`
	// PassThreshold is the percentage of cast weight needed to pass.
	PassThreshold int `json:"pass_threshold"`

	SecurityTaxRate       int `json:"security_tax_rate"`
	InfrastructureTaxRate int `json:"infrastructure_tax_rate"`
	AdministrationTaxRate int `json:"administration_tax_rate"`

	SecurityBudgetPercent       int `json:"security_budget_percent"`
	InfrastructureBudgetPercent int `json:"infrastructure_budget_percent"`
	EmergencyReservePercent     int `json:"emergency_reserve_percent"`

	Treasury int64    `json:"treasury"`
	Policies []Policy `json:"policies,omitempty"`
}

// Clone returns a deep copy, so a running simulation can enact policies
// without touching the catalog.
func (c *Council) Clone() *Council {
	cp := *c
	cp.Representatives = append([]Representative(nil), c.Representatives...)
	cp.Policies = append([]Policy(nil), c.Policies...)
	return &cp
}

// Representative returns the first seat held by wayID.
func (c *Council) Representative(wayID string) (Representative, bool) {
	for _, r := range c.Representatives {
		if r.WayID == wayID {
			return r, true
		}
	}
	return Representative{}, false
}

// HasRepresentative reports whether wayID holds a seat.
func (c *Council) HasRepresentative(wayID string) bool {
	_, ok := c.Representative(wayID)
	return ok
}

// TotalVotingWeight sums every seat's weight.
func (c *Council) TotalVotingWeight() int {
	total := 0
	for _, r := range c.Representatives {
		total += r.VotingWeight
	}
	return total
}

// TotalTaxRate is the combined tax percentage.
func (c *Council) TotalTaxRate() int {
	return c.SecurityTaxRate + c.InfrastructureTaxRate + c.AdministrationTaxRate
}

// TaxOwed is the total tax on a transaction, rounded to the nearest credit.
func (c *Council) TaxOwed(value int64) int64 {
	return percentOf(value, c.TotalTaxRate())
}

// SecurityTax is the security share of the tax on a transaction.
func (c *Council) SecurityTax(value int64) int64 {
	return percentOf(value, c.SecurityTaxRate)
}

// SecurityBudget is the treasury share allocated to security.
func (c *Council) SecurityBudget() int64 {
	return percentOf(c.Treasury, c.SecurityBudgetPercent)
}

// InfrastructureBudget is the treasury share allocated to infrastructure.
func (c *Council) InfrastructureBudget() int64 {
	return percentOf(c.Treasury, c.InfrastructureBudgetPercent)
}

// EmergencyReserve is the treasury share held back for emergencies.
func (c *Council) EmergencyReserve() int64 {
	return percentOf(c.Treasury, c.EmergencyReservePercent)
}

// BudgetBalanced reports whether the allocations add up to 100%.
func (c *Council) BudgetBalanced() bool {
	return c.SecurityBudgetPercent+c.InfrastructureBudgetPercent+c.EmergencyReservePercent == 100
}

// ActivePolicies returns the policies in force.
func (c *Council) ActivePolicies() []Policy {
	var out []Policy
	for _, p := range c.Policies {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

// ActivePolicy returns the policy in force for t, if any.
func (c *Council) ActivePolicy(t PolicyType) (Policy, bool) {
	for _, p := range c.Policies {
		if p.Type == t && p.Active {
			return p, true
		}
	}
	return Policy{}, false
}

// Enact puts p in force, retiring any active policy of the same type.
func (c *Council) Enact(p Policy) {
	for i := range c.Policies {
		if c.Policies[i].Type == p.Type {
			c.Policies[i].Active = false
		}
	}
	p.Active = true
	c.Policies = append(c.Policies, p)
}

// SimulateVote tallies a vote on p. Each seated Way votes once: a Way named
// in both lists counts in favor. Ways without a seat are ignored, and
// seats that vote neither way abstain.
func (c *Council) SimulateVote(p Policy, inFavor, against []string) Vote {
	v := Vote{Issue: "Vote on: " + p.Name, Policy: p}
	voted := make(map[string]bool, len(inFavor)+len(against))
	tally := func(ids []string, into *int) {
		for _, id := range ids {
			if voted[id] {
				continue
			}
			if r, ok := c.Representative(id); ok {
				*into += r.VotingWeight
				voted[id] = true
			}
		}
	}
	tally(inFavor, &v.For)
	tally(against, &v.Against)
	v.Abstain = c.TotalVotingWeight() - v.For - v.Against
	v.Passed = c.WouldPass(v.For, v.Against)
	return v
}

// WouldPass reports whether the share of cast weight in favor meets the
// threshold. A vote with nothing cast fails.
func (c *Council) WouldPass(votesFor, votesAgainst int) bool {
	cast := votesFor + votesAgainst
	if cast <= 0 {
		return false
	}
	return float64(votesFor)*100/float64(cast) >= float64(c.PassThreshold)
}

func percentOf(value int64, pct int) int64 {
	if value <= 0 || pct <= 0 {
		return 0
	}
	return int64(math.Round(float64(value) * float64(pct) / 100))
}
