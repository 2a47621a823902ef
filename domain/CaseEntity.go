package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"caseflow/domain/flowdef"

	"github.com/fundwit/go-commons/types"
)

type Case struct {
	ID         types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Identifier string   `json:"identifier"`
	TenantID   types.ID `json:"tenantId"`
	WorkflowID types.ID `json:"workflowId"`

	Title    string `json:"title"`
	Priority string `json:"priority"`

	CurrentStage string         `json:"currentStage"`
	Status       flowdef.Status `json:"status"`

	AssignedTo types.ID `json:"assignedTo"`
	CreatedBy  types.ID `json:"createdBy"`

	Data PropertyMap `json:"data" sql:"type:TEXT"`

	SlaDeadline types.Timestamp `json:"slaDeadline" sql:"type:DATETIME(6)"`
	SlaBreached bool            `json:"slaBreached"`

	// Version is checked and incremented on every update; a stale writer
	// affects zero rows and the action is rejected with a conflict.
	Version int `json:"version"`

	StageBeginTime types.Timestamp `json:"stageBeginTime" sql:"type:DATETIME(6)"`
	CreateTime     types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type CaseDetail struct {
	Case

	Stage    flowdef.Stage   `json:"stage" gorm:"-"`
	Workflow *WorkflowConfig `json:"workflow,omitempty" gorm:"-"`
}

// CaseRecord is the append-only history row written for every accepted
// action. Records are never updated or deleted.
type CaseRecord struct {
	ID     types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	CaseID types.ID `json:"caseId"`

	Action    string `json:"action"`
	FromStage string `json:"fromStage"`
	ToStage   string `json:"toStage"`

	PerformerID   types.ID `json:"performerId"`
	PerformerName string   `json:"performerName"`
	Comment       string   `json:"comment"`

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *CaseRecord) TableName() string {
	return "case_records"
}

type PropertyMap map[string]interface{}

func (t PropertyMap) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *PropertyMap) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), c)
}
