package cases

import (
	"caseflow/domain"
	"caseflow/domain/flowdef"

	"github.com/fundwit/go-commons/types"
)

type CaseCreation struct {
	TenantID   types.ID `json:"tenantId" binding:"required"`
	WorkflowID types.ID `json:"workflowId" binding:"required"`

	Title    string `json:"title" binding:"required"`
	Priority string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`

	AssignedTo types.ID           `json:"assignedTo"`
	Data       domain.PropertyMap `json:"data"`
}

type CaseUpdating struct {
	Title      string   `json:"title" binding:"required"`
	Priority   string   `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssignedTo types.ID `json:"assignedTo"`
}

type CaseQuery struct {
	TenantID types.ID         `uri:"tenantId" form:"tenantId" json:"-"`
	Title    string           `form:"title"`
	Statuses []flowdef.Status `form:"status"`
}

type CaseActionRequest struct {
	Action  string             `json:"action" binding:"required"`
	Comment string             `json:"comment"`
	Data    domain.PropertyMap `json:"data"`
}

type CaseActionResult struct {
	NewStage    string          `json:"newStage"`
	NewStatus   flowdef.Status  `json:"newStatus"`
	SlaDeadline types.Timestamp `json:"slaDeadline"`
}

type DashboardSummary struct {
	TenantID types.ID `json:"tenantId"`

	TotalCases  int64                    `json:"totalCases"`
	ByStatus    map[flowdef.Status]int64 `json:"byStatus"`
	SlaBreached int64                    `json:"slaBreached"`
}
