package bizerror

import (
	"errors"
	"net/http"
)

var ErrUnauthenticated = errors.New("unauthenticated")
var ErrNotFound = errors.New("not found")
var ErrForbidden = errors.New("forbidden")
var ErrInvalidPassword = errors.New("invalid password")

var ErrUnknownStage = errors.New("unknown stage")
var ErrStageExisted = errors.New("stage existed")
var ErrStageInvalid = errors.New("stage invalid")
var ErrWorkflowIsReferenced = errors.New("workflow is referenced")

var ErrRateLimited = errors.New("too many requests")

var ErrCaseTerminal = errors.New("case is in a terminal status")
var ErrConflict = errors.New("case was modified concurrently")

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

// ErrInvalidWorkflow is raised when a case references a workflow config
// which is missing, inactive, or owned by another tenant.
type ErrInvalidWorkflow struct {
	WorkflowID string
	Reason     string
}

func (e *ErrInvalidWorkflow) Error() string {
	return "invalid workflow " + e.WorkflowID + ": " + e.Reason
}
func (e *ErrInvalidWorkflow) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "workflow.invalid",
		Message: e.Error(), Data: nil}
}

// ErrInvalidTransition carries the rejected triple for the client response.
type ErrInvalidTransition struct {
	CurrentStage string
	Action       string
	Role         string
}

func (e *ErrInvalidTransition) Error() string {
	return "no transition for action '" + e.Action + "' from stage '" + e.CurrentStage + "' with role '" + e.Role + "'"
}
func (e *ErrInvalidTransition) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "case.invalid_transition",
		Message: e.Error(),
		Data:    map[string]string{"currentStage": e.CurrentStage, "action": e.Action, "role": e.Role}}
}
