package ai

import (
	"fmt"
	"strings"

	"github.com/talgya/adastrea-verse/internal/social"
)

// Task is what a crew member is currently doing.
type Task uint8

const (
	TaskEmergency Task = iota
	TaskDutyStation
	TaskMaintenance
	TaskSocial
	TaskPersonal
	TaskTraining
	TaskExploration
)

var taskNames = [...]string{"Emergency", "DutyStation", "Maintenance", "Social", "Personal", "Training", "Exploration"}

func (t Task) String() string {
	if int(t) < len(taskNames) {
		return taskNames[t]
	}
	return "Unknown"
}

// MarshalText encodes the task by name.
func (t Task) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Disposition is a crew member's temperament.
type Disposition uint8

const (
	Cautious Disposition = iota
	Bold
	Analytical
	Empathetic
	Pragmatic
	Curious
	Disciplined
	Creative
)

var dispositionNames = [...]string{"Cautious", "Bold", "Analytical", "Empathetic", "Pragmatic", "Curious", "Disciplined", "Creative"}

func (d Disposition) String() string {
	if int(d) < len(dispositionNames) {
		return dispositionNames[d]
	}
	return "Unknown"
}

// MarshalText encodes the disposition by name.
func (d Disposition) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// ParseDisposition resolves a disposition by name, case-insensitively.
func ParseDisposition(s string) (Disposition, bool) {
	for i, n := range dispositionNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return Disposition(i), true
		}
	}
	return Pragmatic, false
}

// CrewMember is the runtime condition of one crew member. Health, Morale and
// Fatigue are 0–100; SkillLevel is 1–10.
type CrewMember struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Health     float64 `json:"health"`
	Morale     float64 `json:"morale"`
	Fatigue    float64 `json:"fatigue"`
	SkillLevel int     `json:"skill_level"`
}

func (c *CrewMember) clamp() {
	c.Health = clamp100(c.Health)
	c.Morale = clamp100(c.Morale)
	c.Fatigue = clamp100(c.Fatigue)
	c.SkillLevel = max(1, min(10, c.SkillLevel))
}

// Crew timing and thresholds.
const (
	PersonnelInterval = 1.0
	ShiftHours        = 8.0
	OffShiftHours     = 16.0

	emergencyHealth  = 30.0
	trainingPerLevel = 40.0
	maxSkillLevel    = 10
	expertSkillLevel = 7
	friendBond       = 50.0
	rivalBond        = -50.0
	socialStress     = 5.0
)

// taskEffect is the hourly change a task makes to the crew member.
type taskEffect struct {
	health, morale, fatigue, training float64
}

var taskEffects = map[Task]taskEffect{
	TaskEmergency:   {health: 5, fatigue: 8, morale: -2},
	TaskDutyStation: {fatigue: 6, morale: -0.5},
	TaskMaintenance: {fatigue: 4, morale: 0.5},
	TaskTraining:    {fatigue: 3, training: 10},
	TaskSocial:      {morale: 4, fatigue: 1},
	TaskExploration: {morale: 3, fatigue: 2},
	TaskPersonal:    {fatigue: -5, morale: 1},
}

var restEffect = taskEffect{health: 1, fatigue: -12, morale: 2}

// PersonnelLogic drives one crew member.
type PersonnelLogic struct {
	*Agent
	BaseBrain

	Crew        CrewMember
	Disposition Disposition
	Task        Task
	OnDuty      bool
	Resting     bool

	// Friends are allies in the graph and conflicts are enemies.
	Social *social.Graph

	hoursUntilShift float64
	training        float64
	elapsed         float64

	// OnTaskChange is called after every task change.
	OnTaskChange func(old, new Task)
}

// NewPersonnelLogic creates the AI for a crew member. The member starts off
// duty with a full off-shift before their first watch.
func NewPersonnelLogic(crew CrewMember, d Disposition) *PersonnelLogic {
	crew.clamp()
	p := &PersonnelLogic{
		Crew:            crew,
		Disposition:     d,
		Task:            TaskPersonal,
		Social:          social.NewGraph(),
		hoursUntilShift: ShiftHours,
	}
	p.Agent = NewAgent(crew.Name, p, PersonnelInterval)
	p.Task = p.EvaluateTask()
	return p
}

// Prepare implements Brain: it advances the shift routine and re-evaluates
// the current task.
func (p *PersonnelLogic) Prepare(elapsed float64) {
	p.elapsed = elapsed
	p.updateRoutine(elapsed / 3600)
	if next := p.EvaluateTask(); next != p.Task {
		old := p.Task
		p.Task = next
		p.log.Debug("crew task changed", "from", old, "to", next)
		if p.OnTaskChange != nil {
			p.OnTaskChange(old, next)
		}
	}
}

func (p *PersonnelLogic) updateRoutine(hours float64) {
	p.hoursUntilShift -= hours
	if p.hoursUntilShift <= 0 {
		p.OnDuty = !p.OnDuty
		if p.OnDuty {
			p.hoursUntilShift = ShiftHours
			p.log.Info("duty shift started")
		} else {
			p.hoursUntilShift = OffShiftHours
			p.log.Info("duty shift ended")
		}
	}
	switch {
	case !p.OnDuty && p.NeedsRest():
		p.Resting = true
	case p.Crew.Fatigue < 30:
		p.Resting = false
	}
}

// EvaluateTask picks the task the crew member should be doing now.
func (p *PersonnelLogic) EvaluateTask() Task {
	c := p.Crew
	if c.Health < emergencyHealth {
		return TaskEmergency
	}
	if p.NeedsRest() && !p.OnDuty {
		return TaskPersonal
	}
	if p.OnDuty {
		return TaskDutyStation
	}
	switch p.Disposition {
	case Curious:
		if c.Morale > 60 {
			return TaskExploration
		}
	case Empathetic:
		if c.Morale > 50 && len(p.Social.Allies()) > 0 {
			return TaskSocial
		}
	case Analytical, Creative:
		if p.ShouldPursueTraining() {
			return TaskTraining
		}
	case Disciplined:
		return TaskMaintenance
	}
	return TaskPersonal
}

// EvaluatePriority implements Brain.
func (p *PersonnelLogic) EvaluatePriority() Priority {
	switch p.Task {
	case TaskEmergency:
		return Critical
	case TaskDutyStation:
		return High
	case TaskMaintenance, TaskTraining:
		return Medium
	case TaskSocial, TaskExploration:
		return Low
	}
	return Idle
}

// DecideAction implements Brain: the current task changes the crew member's
// condition in proportion to the time since the last pass.
func (p *PersonnelLogic) DecideAction(Priority) bool {
	hours := p.elapsed / 3600
	if p.elapsed <= 0 {
		hours = 1
	}
	e := taskEffects[p.Task]
	if p.Task == TaskPersonal && p.Resting {
		e = restEffect
	}
	if e.morale > 0 {
		e.morale = p.PersonalityModifier(e.morale)
	}
	p.Crew.Health += e.health * hours
	p.Crew.Morale += e.morale * hours
	p.Crew.Fatigue += e.fatigue * hours
	if e.training > 0 {
		p.training += p.PersonalityModifier(e.training) * hours
		for p.training >= trainingPerLevel {
			p.training -= trainingPerLevel
			if p.Crew.SkillLevel < maxSkillLevel {
				p.Crew.SkillLevel++
				p.log.Info("crew skill improved", "level", p.Crew.SkillLevel)
			}
		}
	}
	p.Crew.clamp()
	return p.Task != TaskPersonal || p.Resting
}

// NextBehaviorMode implements Brain.
func (p *PersonnelLogic) NextBehaviorMode(current BehaviorMode) BehaviorMode {
	switch p.Task {
	case TaskEmergency:
		return Defensive
	case TaskExploration:
		return Exploration
	}
	if current == Defensive || current == Exploration {
		return Peaceful
	}
	return current
}

var stressMultiplier = map[Disposition]float64{
	Cautious:    1.2,
	Bold:        0.8,
	Disciplined: 0.9,
	Empathetic:  1.1,
}

// HandleStress applies a stress change scaled by disposition. Positive stress
// lowers morale. Returns the scaled amount.
func (p *PersonnelLogic) HandleStress(amount float64) float64 {
	if m, ok := stressMultiplier[p.Disposition]; ok {
		amount *= m
	}
	p.Crew.Morale -= amount
	p.Crew.clamp()
	p.log.Debug("crew stress", "amount", amount, "morale", p.Crew.Morale)
	return amount
}

var personalityModifier = map[Disposition]float64{
	Cautious:    0.9,
	Bold:        1.2,
	Analytical:  1.0,
	Empathetic:  0.95,
	Pragmatic:   1.1,
	Curious:     1.15,
	Disciplined: 1.05,
	Creative:    1.1,
}

// PersonalityModifier scales base by the disposition's modifier.
func (p *PersonnelLogic) PersonalityModifier(base float64) float64 {
	if m, ok := personalityModifier[p.Disposition]; ok {
		return base * m
	}
	return base
}

// ChooseOption picks one of options the way the crew member's temperament
// leans. Returns -1 when there are no options.
func (p *PersonnelLogic) ChooseOption(context string, options []string) int {
	if len(options) == 0 {
		return -1
	}
	find := func(fallback int, words ...string) int {
		for i, o := range options {
			lo := strings.ToLower(o)
			for _, w := range words {
				if strings.Contains(lo, w) {
					return i
				}
			}
		}
		return fallback
	}
	var choice int
	switch p.Disposition {
	case Cautious:
		choice = 0
	case Bold:
		choice = len(options) - 1
	case Analytical:
		choice = len(options) / 2
	case Empathetic:
		choice = find(0, "crew", "people")
	case Pragmatic:
		choice = find(0, "efficient", "quick")
	case Curious:
		choice = find(len(options)-1, "new", "explore")
	case Disciplined:
		choice = find(0, "protocol", "regulation")
	case Creative:
		choice = min(1, len(options)-1)
	}
	p.log.Debug("crew decision", "context", context, "choice", options[choice])
	return choice
}

// HandleSocialInteraction reacts to an interaction with another crew member.
func (p *PersonnelLogic) HandleSocialInteraction(other, kind string) {
	bond, known := p.Social.Relation(other)
	switch {
	case p.Social.IsAlliedWith(other) || (known && bond > friendBond):
		p.Crew.Morale += p.PersonalityModifier(2)
		p.Social.AdjustRelation(other, 2)
	case p.Social.IsEnemyOf(other) || (known && bond < rivalBond):
		p.HandleStress(socialStress)
		p.Social.AdjustRelation(other, -2)
	default:
		p.Social.AdjustRelation(other, 1)
	}
	if p.Disposition == Empathetic {
		p.Crew.Morale++
	}
	p.Crew.clamp()
	p.log.Debug("crew interaction", "with", other, "kind", kind)
}

// ShouldPursueTraining reports whether the crew member would spend free time
// training.
func (p *PersonnelLogic) ShouldPursueTraining() bool {
	if p.NeedsRest() || p.Crew.Morale < 50 {
		return false
	}
	switch p.Disposition {
	case Curious, Analytical, Creative:
		return true
	}
	return p.Crew.SkillLevel < expertSkillLevel
}

// NeedsRest reports whether the crew member is worn out.
func (p *PersonnelLogic) NeedsRest() bool {
	return p.Crew.Fatigue > 70 || p.Crew.Morale < 30
}

// IsFitForDuty reports whether the crew member can stand a watch.
func (p *PersonnelLogic) IsFitForDuty() bool {
	c := p.Crew
	return c.Health > 50 && c.Morale > 40 && c.Fatigue < 80
}

// IsSuitedFor reports whether the task fits the crew member's temperament.
func (p *PersonnelLogic) IsSuitedFor(t Task) bool {
	d := p.Disposition
	switch t {
	case TaskExploration:
		return d == Curious || d == Bold
	case TaskSocial:
		return d == Empathetic || d == Creative
	case TaskMaintenance, TaskDutyStation:
		return d == Disciplined || d == Pragmatic
	case TaskTraining:
		return d == Analytical || d == Curious
	}
	return true
}

// MakeFriend befriends other, ending any conflict.
func (p *PersonnelLogic) MakeFriend(other string) bool {
	if p.Social.IsAlliedWith(other) || !p.Social.AddAlly(other) {
		return false
	}
	p.log.Info("crew friendship", "with", other)
	return true
}

// RemoveFriend ends a friendship.
func (p *PersonnelLogic) RemoveFriend(other string) bool {
	return p.Social.RemoveAlly(other)
}

// AddConflict records a conflict with other, ending any friendship.
func (p *PersonnelLogic) AddConflict(other string) bool {
	if p.Social.IsEnemyOf(other) || !p.Social.AddEnemy(other) {
		return false
	}
	p.log.Info("crew conflict", "with", other)
	return true
}

// ResolveConflict ends a conflict with other.
func (p *PersonnelLogic) ResolveConflict(other string) bool {
	if !p.Social.RemoveEnemy(other) {
		return false
	}
	p.log.Info("crew conflict resolved", "with", other)
	return true
}

// HoursUntilShiftChange is the time left until the next duty change.
func (p *PersonnelLogic) HoursUntilShiftChange() float64 { return p.hoursUntilShift }

// Describe renders the crew member's state for debugging.
func (p *PersonnelLogic) Describe() string {
	duty := "Off Duty"
	if p.OnDuty {
		duty = "On Duty"
	}
	return fmt.Sprintf("%s | %s | %s | %s", p.Crew.Name, p.Agent.Describe(), p.Task, duty)
}
