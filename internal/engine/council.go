package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/adastrea-verse/internal/ai"
	"github.com/talgya/adastrea-verse/internal/way"
)

// securityStep is how far one weekly motion raises the security budget share.
const securityStep = 10

// councilStance is how a seated faction votes on more security spending:
// 1 in favor, -1 against, 0 abstain.
func councilStance(f *ai.FactionLogic) int {
	switch {
	case f.AtWar():
		return 1
	case f.Strategy == ai.StrategyMilitary, f.Strategy == ai.StrategySurvival, f.Strategy == ai.StrategyExpansion:
		return 1
	case f.Strategy == ai.StrategyEconomic:
		return -1
	}
	return 0
}

// convene puts a security budget motion before every council with at least
// one seat in favor. Callers hold s.mu.
func (s *Simulation) convene() {
	for _, c := range s.councils {
		var favor, against []string
		for _, r := range c.Representatives {
			f, ok := s.factionIndex[r.WayID]
			if !ok {
				continue
			}
			switch councilStance(f) {
			case 1:
				favor = append(favor, r.WayID)
			case -1:
				against = append(against, r.WayID)
			}
		}
		if len(favor) == 0 {
			continue
		}

		value := min(100-c.EmergencyReservePercent, c.SecurityBudgetPercent+securityStep)
		if value <= c.SecurityBudgetPercent {
			continue
		}
		motion := way.Policy{
			Type:        way.PolicySecurityBudget,
			Name:        fmt.Sprintf("Security budget %d%%", value),
			Description: "Raise patrol funding at the expense of infrastructure",
			Value:       value,
		}
		v := c.SimulateVote(motion, favor, against)
		s.metrics.RecordCouncilVote(v.Passed)
		slog.Debug("council vote", "council", c.ID, "issue", v.Issue, "for", v.For, "against", v.Against, "passed", v.Passed)

		if !v.Passed {
			s.emit(CategoryCouncil, c.ID, fmt.Sprintf("%s rejects %s (%d for, %d against)", c.Name, motion.Name, v.For, v.Against))
			continue
		}
		c.Enact(motion)
		c.SecurityBudgetPercent = value
		c.InfrastructureBudgetPercent = 100 - value - c.EmergencyReservePercent
		s.emit(CategoryCouncil, c.ID, fmt.Sprintf("%s adopts %s (%d for, %d against)", c.Name, motion.Name, v.For, v.Against))
	}
}

// Councils returns copies of the sector councils in catalog order.
func (s *Simulation) Councils() []*way.Council {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*way.Council, len(s.councils))
	for i, c := range s.councils {
		out[i] = c.Clone()
	}
	return out
}
