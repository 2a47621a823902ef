package authority

import (
	"strings"

	"caseflow/domain"

	"github.com/fundwit/go-commons/types"
)

// Permissions holds role strings in the form "<role>_<tenantId>",
// plus system-wide roles in the form "system:<role>".
type Permissions []string

func (c Permissions) HasRole(role string) bool {
	for _, v := range c {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (c Permissions) HasGlobalViewRole() bool {
	for _, v := range c {
		if strings.HasPrefix(strings.ToLower(v), "system:") {
			return true
		}
	}
	return false
}

func (c Permissions) HasRolePrefix(prefix string) bool {
	for _, v := range c {
		if strings.HasPrefix(strings.ToLower(v), strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

func (c Permissions) HasRoleSuffix(suffix string) bool {
	for _, v := range c {
		if strings.HasSuffix(strings.ToLower(v), strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

func (c Permissions) HasTenantViewPerm(tenantId types.ID) bool {
	return c.HasGlobalViewRole() || c.HasRoleSuffix("_"+tenantId.String())
}

// VisibleTenants parse visible tenant ids from the permission strings.
func (c Permissions) VisibleTenants() []types.ID {
	var tenantIds []types.ID
	for _, v := range c {
		pairs := strings.Split(v, "_")
		if len(pairs) == 2 {
			id, err := types.ParseID(pairs[1])
			if err != nil {
				continue
			}
			tenantIds = append(tenantIds, id)
		}
	}
	if tenantIds == nil {
		return []types.ID{}
	}
	return tenantIds
}

// TenantRoleValue returns the role the permission set carries for one
// tenant, or "" when the tenant is not visible.
func (c Permissions) TenantRoleValue(tenantId types.ID) string {
	suffix := "_" + tenantId.String()
	for _, v := range c {
		if strings.HasSuffix(strings.ToLower(v), suffix) {
			return v[:len(v)-len(suffix)]
		}
	}
	return ""
}

type TenantRoles []domain.TenantRole

func (c TenantRoles) HasTenant(tenantId types.ID) bool {
	for _, v := range c {
		if v.TenantID == tenantId {
			return true
		}
	}
	return false
}
