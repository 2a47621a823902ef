package flowdef

import (
	"strings"
	"time"

	"caseflow/bizerror"

	"github.com/fundwit/go-commons/types"
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
	StatusOnHold     Status = "on_hold"
)

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

type Stage struct {
	ID       string `json:"id" binding:"required"`
	Label    string `json:"label"`
	SlaHours int    `json:"slaHours" binding:"min=0"`

	AssignToRoles  []string `json:"assignToRoles,omitempty"`
	RequiredFields []string `json:"requiredFields,omitempty"`
}

type Transition struct {
	ID    string `json:"id"`
	From  string `json:"from" binding:"required"`
	To    string `json:"to" binding:"required"`
	Label string `json:"label" binding:"required"`

	// Condition is a free-text expression carried through unevaluated.
	Condition string   `json:"condition,omitempty"`
	Roles     []string `json:"roles"`
	Actions   []string `json:"actions,omitempty"`

	RequiresApproval bool `json:"requiresApproval,omitempty"`
}

type AutoRule struct {
	ID      string `json:"id"`
	Trigger string `json:"trigger"` // on_enter:<stageId>
	Action  string `json:"action"`

	Condition string `json:"condition,omitempty"`
}

// Definition is a stateless value object parsed once from a workflow
// config row, just used for transition computing.
type Definition struct {
	Stages      []Stage      `json:"stages" binding:"dive"`
	Transitions []Transition `json:"transitions" binding:"dive"`
	AutoRules   []AutoRule   `json:"autoRules,omitempty" binding:"dive"`
}

func NewDefinition(stages []Stage, transitions []Transition) *Definition {
	return &Definition{Stages: stages, Transitions: transitions}
}

// NormalizeAction lower-cases a label and replaces spaces with underscores,
// so "Submit Application" matches the requested action "submit_application".
func NormalizeAction(label string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "_")
}

func (d *Definition) FindStage(stageID string) (Stage, bool) {
	for _, s := range d.Stages {
		if s.ID == stageID {
			return s, true
		}
	}
	return Stage{}, false
}

// ResolveTransition selects at most one transition for the triple: the
// first transition in stored order whose from-stage, normalized label and
// role set all match. First match wins; later duplicates are unreachable
// and that is the workflow author's responsibility, not the resolver's.
func (d *Definition) ResolveTransition(currentStage, action, actorRole string) (Transition, error) {
	for _, t := range d.Transitions {
		if t.From != currentStage {
			continue
		}
		if !actionMatches(t, action) {
			continue
		}
		if !roleAllowed(t.Roles, actorRole) {
			continue
		}
		return t, nil
	}
	return Transition{}, &bizerror.ErrInvalidTransition{CurrentStage: currentStage, Action: action, Role: actorRole}
}

// actionMatches compares the normalized transition label with the
// requested action. Actions entries are descriptive only and never match.
func actionMatches(t Transition, action string) bool {
	return NormalizeAction(t.Label) == action
}

func roleAllowed(roles []string, actorRole string) bool {
	for _, r := range roles {
		if r == actorRole {
			return true
		}
	}
	return false
}

// DeriveStatus is a pure function of the target stage id.
func DeriveStatus(toStage string) Status {
	switch toStage {
	case "completed":
		return StatusCompleted
	case "rejected":
		return StatusRejected
	case "draft":
		return StatusDraft
	}
	return StatusInProgress
}

// StageDeadline computes now + slaHours for the given stage. Stages with
// no positive slaHours carry no deadline.
func (d *Definition) StageDeadline(stageID string, now time.Time) types.Timestamp {
	stage, found := d.FindStage(stageID)
	if !found || stage.SlaHours <= 0 {
		return types.Timestamp{}
	}
	return types.Timestamp(now.Add(time.Duration(stage.SlaHours) * time.Hour))
}

// MatchingAutoRules returns the auto rules triggered by entering a stage.
func (d *Definition) MatchingAutoRules(enteredStage string) []AutoRule {
	matched := []AutoRule{}
	for _, r := range d.AutoRules {
		if r.Trigger == "on_enter:"+enteredStage {
			matched = append(matched, r)
		}
	}
	return matched
}

func (d *Definition) Validate() error {
	if len(d.Stages) == 0 {
		return bizerror.ErrStageInvalid
	}
	known := map[string]bool{}
	for _, s := range d.Stages {
		if s.ID == "" || s.SlaHours < 0 {
			return bizerror.ErrStageInvalid
		}
		if known[s.ID] {
			return bizerror.ErrStageExisted
		}
		known[s.ID] = true
	}
	for _, t := range d.Transitions {
		if !known[t.From] || !known[t.To] {
			return bizerror.ErrUnknownStage
		}
	}
	return nil
}
