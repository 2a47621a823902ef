package domain

import (
	"github.com/fundwit/go-commons/types"
)

const TenantRoleManager = "manager"
const TenantRoleMaker = "maker"
const TenantRoleChecker = "checker"
const TenantRoleViewer = "viewer"

type Tenant struct {
	ID         types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Name       string   `json:"name"`
	Identifier string   `json:"identifier" gorm:"unique_index"`

	NextCaseID int             `json:"nextCaseId"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	Creator    types.ID        `json:"creator"`
}

type TenantMember struct {
	TenantID types.ID `json:"tenantId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	UserID   types.ID `json:"userId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Role     string   `json:"role"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type TenantRole struct {
	TenantID   types.ID `json:"tenantId"`
	TenantName string   `json:"tenantName"`
	Role       string   `json:"role"`
}
