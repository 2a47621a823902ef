package scoring

import (
	"github.com/fundwit/go-commons/types"
)

type ModelRun struct {
	ID       types.ID `json:"id" gorm:"primary_key"`
	TenantID types.ID `json:"tenantId"`
	CaseID   types.ID `json:"caseId"`

	Model      string  `json:"model"`
	PdScore    float64 `json:"pdScore"`
	FraudScore float64 `json:"fraudScore"`

	RequestedBy types.ID        `json:"requestedBy"`
	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (r *ModelRun) TableName() string {
	return "model_runs"
}

type ScoreRequest struct {
	CaseID types.ID `json:"caseId" binding:"required"`
	Model  string   `json:"model" binding:"omitempty,oneof=pd fraud combined"`
}

type ModelRunQuery struct {
	TenantID types.ID `uri:"tenantId" json:"-"`
	CaseID   types.ID `form:"caseId"`
}
