package account

import (
	"crypto/sha256"
	"encoding/hex"

	"caseflow/authority"
	"caseflow/bizerror"
	"caseflow/domain"
	"caseflow/idgen"
	"caseflow/persistence"
	"caseflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	LoadPermFunc   = LoadPerms
	QueryUsersFunc = QueryUsers
	CreateUserFunc = CreateUser
	UpdateUserFunc = UpdateUser
)

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// LoadPerms builds the permission strings and tenant roles of a user from
// tenant membership rows.
func LoadPerms(userId types.ID, s *session.Session) (authority.Permissions, authority.TenantRoles) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	var memberships []domain.TenantMember
	if err := db.Where(domain.TenantMember{UserID: userId}).Find(&memberships).Error; err != nil {
		logrus.Warnf("failed to load memberships of user %d: %v", userId, err)
		return authority.Permissions{}, authority.TenantRoles{}
	}

	perms := authority.Permissions{}
	tenantRoles := authority.TenantRoles{}
	for _, m := range memberships {
		tenant := domain.Tenant{}
		if err := db.Where(&domain.Tenant{ID: m.TenantID}).First(&tenant).Error; err != nil {
			logrus.Warnf("failed to load tenant %d: %v", m.TenantID, err)
			continue
		}
		perms = append(perms, m.Role+"_"+m.TenantID.String())
		tenantRoles = append(tenantRoles, domain.TenantRole{TenantID: m.TenantID, TenantName: tenant.Name, Role: m.Role})
	}
	return perms, tenantRoles
}

// RecordLastLogin is best effort: a write failure is logged, never raised.
func RecordLastLogin(userId types.ID, s *session.Session) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Model(&User{}).Where(&User{ID: userId}).
		Update("last_login_time", types.CurrentTimestamp()).Error; err != nil {
		logrus.Warnf("failed to record last login of user %d: %v", userId, err)
	}
}

func UpdateBasicAuthSecret(u *BasicAuthUpdating, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	user := User{}
	if err := db.Model(&User{}).Where(&User{ID: s.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).Scan(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return bizerror.ErrInvalidPassword
		}
		return err
	}

	return db.Model(&User{}).Where(&User{ID: s.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).
		Update(&User{Secret: HashSha256(u.NewSecret)}).Error
}

func QueryUsers(s *session.Session) (*[]UserInfo, error) {
	var users []UserInfo
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Model(&User{}).Scan(&users).Error; err != nil {
		return nil, err
	}
	return &users, nil
}

func CreateUser(c *UserCreation, s *session.Session) (*UserInfo, error) {
	if !s.Perms.HasRole(SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Nickname: c.Nickname,
		Secret: HashSha256(c.Secret), IsActive: true}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Save(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname}, nil
}

func UpdateUser(userId types.ID, c *UserUpdation, s *session.Session) error {
	if !s.Perms.HasRole(SystemAdminPermission.ID) && userId != s.Identity.ID {
		return bizerror.ErrForbidden
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		user := User{ID: userId}
		if err := tx.Where(&user).First(&user).Error; err != nil {
			return err
		}
		return tx.Model(&user).Update(&User{Nickname: c.Nickname}).Error
	})
}

func QueryAccountNames(ids []types.ID, s *session.Session) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var records []UserInfo
	if err := db.Model(&User{}).Where("id IN (?)", ids).Scan(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.DisplayName()
	}
	return result, nil
}
