package session

import (
	"context"
	"time"

	"caseflow/authority"

	"github.com/fundwit/go-commons/types"
)

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

type Session struct {
	Token       string                `json:"token"`
	Identity    Identity              `json:"identity"`
	Perms       authority.Permissions `json:"perms"`
	TenantRoles authority.TenantRoles `json:"tenantRoles"`

	SigningTime time.Time `json:"-"`

	Context context.Context `json:"-" gorm:"-"`
}

func (s *Session) Clone() Session {
	c := *s
	return c
}

func (s *Session) VisibleTenants() []types.ID {
	return s.Perms.VisibleTenants()
}
