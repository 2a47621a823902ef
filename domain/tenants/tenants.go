package tenants

import (
	"errors"
	"fmt"

	"caseflow/account"
	"caseflow/bizerror"
	"caseflow/domain"
	"caseflow/idgen"
	"caseflow/persistence"
	"caseflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryTenantsFunc = QueryTenants
	CreateTenantFunc = CreateTenant
	UpdateTenantFunc = UpdateTenant
)

type TenantCreating struct {
	Name       string `json:"name" binding:"required"`
	Identifier string `json:"identifier" binding:"required,lte=8"`
}

type TenantUpdating struct {
	Name string `json:"name" binding:"required"`
}

type TenantMemberCreation struct {
	TenantID types.ID `json:"tenantId" binding:"required"`
	MemberID types.ID `json:"memberId" binding:"required"`
	Role     string   `json:"role" binding:"required"`
}

type TenantMemberDeletion struct {
	TenantID types.ID `json:"tenantId" binding:"required"`
	MemberID types.ID `json:"memberId" binding:"required"`
}

func QueryTenants(s *session.Session) (*[]domain.Tenant, error) {
	if !s.Perms.HasRole(account.SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	var tenants []domain.Tenant
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Find(&tenants).Error; err != nil {
		return nil, err
	}
	return &tenants, nil
}

func CreateTenant(c *TenantCreating, s *session.Session) (*domain.Tenant, error) {
	if !s.Perms.HasRole(account.SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	now := types.CurrentTimestamp()
	t := domain.Tenant{ID: idgen.NextID(idWorker), Name: c.Name, Identifier: c.Identifier,
		NextCaseID: 1, CreateTime: now, Creator: s.Identity.ID}
	m := domain.TenantMember{TenantID: t.ID, UserID: s.Identity.ID, Role: domain.TenantRoleManager, CreateTime: now}
	err := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&t).Error; err != nil {
			return err
		}
		return tx.Create(&m).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func UpdateTenant(id types.ID, d *TenantUpdating, s *session.Session) error {
	if !s.Perms.HasRole(account.SystemAdminPermission.ID) {
		return bizerror.ErrForbidden
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		var tenant domain.Tenant
		if err := tx.Where(domain.Tenant{ID: id}).First(&tenant).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Tenant{ID: id}).Where(domain.Tenant{ID: id}).
			Update(domain.Tenant{Name: d.Name}).Error
	})
}

// NextCaseIdentifier consumes the tenant's case sequence inside the
// caller's transaction.
func NextCaseIdentifier(tenantId types.ID, tx *gorm.DB) (string, error) {
	tenant := domain.Tenant{}
	if err := tx.Where(&domain.Tenant{ID: tenantId}).First(&tenant).Error; err != nil {
		return "", err
	}

	// consume current value
	nextCaseID := fmt.Sprintf("%s-%d", tenant.Identifier, tenant.NextCaseID)
	// generate next value
	db := tx.Model(&domain.Tenant{}).Where(&domain.Tenant{ID: tenantId, NextCaseID: tenant.NextCaseID}).
		Update("next_case_id", tenant.NextCaseID+1)
	if db.Error != nil {
		return "", db.Error
	}
	if db.RowsAffected != 1 {
		return "", errors.New("concurrent modification")
	}
	return nextCaseID, nil
}

func QueryTenantNames(ids []types.ID, s *session.Session) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var records []domain.Tenant
	if err := db.Model(&domain.Tenant{}).Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.Name
	}
	return result, nil
}
