package flow

import (
	"caseflow/domain/flowdef"

	"github.com/fundwit/go-commons/types"
)

type WorkflowConfigCreation struct {
	Name     string   `json:"name" binding:"required"`
	TenantID types.ID `json:"tenantId" binding:"required"`

	Stages      flowdef.StageList      `json:"stages" binding:"required,dive"`
	Transitions flowdef.TransitionList `json:"transitions" binding:"dive"`
	AutoRules   flowdef.AutoRuleList   `json:"autoRules" binding:"dive"`
}

func (c *WorkflowConfigCreation) Definition() *flowdef.Definition {
	return &flowdef.Definition{Stages: c.Stages, Transitions: c.Transitions, AutoRules: c.AutoRules}
}

type WorkflowActiveUpdating struct {
	IsActive *bool `json:"isActive" binding:"required"`
}
