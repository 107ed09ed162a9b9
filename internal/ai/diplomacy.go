package ai

// DiplomaticAction is what a faction does toward one counterpart.
type DiplomaticAction uint8

const (
	MaintainNeutral DiplomaticAction = iota
	StrengthenAlliance
	RenegotiateAlliance
	ProposeAlliance
	ProposeTrade
	HonorTruce
	SeekPeace
	HoldLine
	Raid
	Denounce
	DeclareWar
)

var diplomaticNames = [...]string{
	"MaintainNeutral", "StrengthenAlliance", "RenegotiateAlliance", "ProposeAlliance",
	"ProposeTrade", "HonorTruce", "SeekPeace", "HoldLine", "Raid", "Denounce", "DeclareWar",
}

func (d DiplomaticAction) String() string {
	if int(d) < len(diplomaticNames) {
		return diplomaticNames[d]
	}
	return "Unknown"
}

// MarshalText encodes the action by name.
func (d DiplomaticAction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// DecideDiplomaticAction picks an action toward target. Existing alliances
// and wars are considered first, then truces, then the relation value
// combined with the current strategy and the Aggressive trait.
func (f *FactionLogic) DecideDiplomaticAction(target string, relation float64) DiplomaticAction {
	aggressive := f.HasAggressiveTrait()

	if f.Relations.IsAlliedWith(target) {
		if relation < 0 {
			return RenegotiateAlliance
		}
		return StrengthenAlliance
	}
	if f.Relations.IsEnemyOf(target) {
		switch {
		case f.Vulnerable() || f.Strategy == StrategySurvival:
			return SeekPeace
		case aggressive:
			return Raid
		default:
			return HoldLine
		}
	}
	if f.Relations.HasTruce(target) {
		return HonorTruce
	}

	switch {
	case relation > friendlyRelation:
		if f.Strategy == StrategyDiplomatic || f.Strategy == StrategyEconomic {
			return ProposeAlliance
		}
		return ProposeTrade
	case relation < hostileRelation:
		if aggressive && (f.Strategy == StrategyMilitary || f.Strategy == StrategyExpansion) {
			return DeclareWar
		}
		if f.Strategy == StrategySurvival || f.Strategy == StrategyConsolidation {
			return SeekPeace
		}
		return Denounce
	}

	switch {
	case f.Strategy == StrategyEconomic:
		return ProposeTrade
	case aggressive && f.Strategy == StrategyMilitary:
		return Denounce
	}
	return MaintainNeutral
}

// Relation nudges and strength effects per hour of diplomatic activity.
var diplomaticEffects = map[DiplomaticAction]struct {
	relation float64
	strength Strengths
}{
	StrengthenAlliance:  {relation: 5, strength: Strengths{Diplomatic: 1}},
	RenegotiateAlliance: {relation: 10},
	ProposeAlliance:     {relation: 10, strength: Strengths{Diplomatic: 2}},
	ProposeTrade:        {relation: 3, strength: Strengths{Economic: 1}},
	HonorTruce:          {relation: 2},
	SeekPeace:           {relation: 10, strength: Strengths{Diplomatic: -1}},
	Raid:                {relation: -5, strength: Strengths{Economic: 1, Military: -1}},
	Denounce:            {relation: -5, strength: Strengths{Diplomatic: -1}},
	DeclareWar:          {relation: -10, strength: Strengths{Diplomatic: -2}},
}

// ApplyDiplomaticAction carries out action toward target, updating the
// relationship graph and strengths.
func (f *FactionLogic) ApplyDiplomaticAction(target string, action DiplomaticAction) {
	if target == "" || target == f.Way.ID {
		return
	}
	switch action {
	case ProposeAlliance:
		f.Relations.AddAlly(target)
		f.Relations.RemoveTruce(target)
		f.log.Info("alliance formed", "with", target)
	case SeekPeace:
		if f.Relations.RemoveEnemy(target) {
			f.log.Info("peace made", "with", target)
		}
		f.AddTruce(target)
	case DeclareWar:
		f.Relations.AddEnemy(target)
		f.log.Warn("war declared", "on", target)
	}
	e, ok := diplomaticEffects[action]
	if !ok {
		return
	}
	scale := f.scale()
	f.Relations.AdjustRelation(target, e.relation*scale)
	f.adjust(e.strength, scale)
}
