package domain

import (
	"caseflow/domain/flowdef"

	"github.com/fundwit/go-commons/types"
)

// WorkflowConfig is immutable per version: reconfiguring a workflow means
// writing a new row with a bumped version. In-flight cases stay bound to
// the row they were created against.
type WorkflowConfig struct {
	ID       types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	TenantID types.ID `json:"tenantId"`
	Name     string   `json:"name"`
	Version  int      `json:"version"`
	IsActive bool     `json:"isActive"`

	Stages      flowdef.StageList      `json:"stages" sql:"type:TEXT"`
	Transitions flowdef.TransitionList `json:"transitions" sql:"type:TEXT"`
	AutoRules   flowdef.AutoRuleList   `json:"autoRules" sql:"type:TEXT"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (c *WorkflowConfig) TableName() string {
	return "workflow_configs"
}

func (c *WorkflowConfig) Definition() *flowdef.Definition {
	return &flowdef.Definition{Stages: c.Stages, Transitions: c.Transitions, AutoRules: c.AutoRules}
}

func (c *WorkflowConfig) FindStage(stageID string) (flowdef.Stage, bool) {
	return c.Definition().FindStage(stageID)
}
