package tenants

import (
	"fmt"

	"caseflow/account"
	"caseflow/bizerror"
	"caseflow/domain"
	"caseflow/persistence"
	"caseflow/session"

	"github.com/jinzhu/gorm"

	"github.com/fundwit/go-commons/types"
)

var (
	CreateTenantMemberFunc = CreateTenantMember
	DeleteTenantMemberFunc = DeleteTenantMember
	QueryTenantMembersFunc = QueryTenantMembers
)

func CreateTenantMember(d *TenantMemberCreation, s *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if !s.Perms.HasRole(account.SystemAdminPermission.ID) &&
			!s.Perms.HasRole(fmt.Sprintf("%s_%d", domain.TenantRoleManager, d.TenantID)) {
			return bizerror.ErrForbidden
		}

		tenant := domain.Tenant{ID: d.TenantID}
		if err := tx.Model(&domain.Tenant{}).Where(&tenant).First(&tenant).Error; err != nil {
			return err
		}
		user := account.User{ID: d.MemberID}
		if err := tx.Model(&account.User{}).Where(&user).First(&user).Error; err != nil {
			return err
		}

		// update when exist
		record := domain.TenantMember{TenantID: d.TenantID, UserID: d.MemberID, Role: d.Role, CreateTime: types.CurrentTimestamp()}
		return tx.Save(&record).Error
	})
}

func DeleteTenantMember(d *TenantMemberDeletion, s *session.Session) error {
	if !s.Perms.HasRole(account.SystemAdminPermission.ID) &&
		!s.Perms.HasRole(fmt.Sprintf("%s_%d", domain.TenantRoleManager, d.TenantID)) {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Where("tenant_id = ? AND user_id = ?", d.TenantID, d.MemberID).
		Delete(&domain.TenantMember{}).Error
}

func QueryTenantMembers(tenantId types.ID, s *session.Session) (*[]domain.TenantMember, error) {
	if !s.Perms.HasRole(account.SystemAdminPermission.ID) && !s.Perms.HasTenantViewPerm(tenantId) {
		return nil, bizerror.ErrForbidden
	}

	var result []domain.TenantMember
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(domain.TenantMember{TenantID: tenantId}).Find(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
