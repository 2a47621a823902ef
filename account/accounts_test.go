package account_test

import (
	"context"
	"testing"

	"caseflow/account"
	"caseflow/bizerror"
	"caseflow/domain"
	"caseflow/persistence"
	"caseflow/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func beforeEachAccountsTest(t *testing.T) *testinfra.TestDatabase {
	testDatabase := testinfra.StartMysqlTestDatabase("caseflow")
	persistence.ActiveDataSourceManager = testDatabase.DS
	err := testDatabase.DS.GormDB(context.Background()).AutoMigrate(
		&account.User{}, &domain.Tenant{}, &domain.TenantMember{}).Error
	Expect(err).To(BeNil())
	return testDatabase
}

func TestCreateUser(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be allowed to admin only", func(t *testing.T) {
		testDatabase := beforeEachAccountsTest(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)

		_, err := account.CreateUser(&account.UserCreation{Name: "ann", Secret: "abc123"},
			testinfra.BuildSecCtx(1, "manager_100"))
		Expect(err).To(Equal(bizerror.ErrForbidden))

		admin := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
		info, err := account.CreateUser(&account.UserCreation{Name: "ann", Secret: "abc123", Nickname: "Ann"}, admin)
		Expect(err).To(BeNil())
		Expect(info.Name).To(Equal("ann"))
		Expect(info.Nickname).To(Equal("Ann"))

		user := account.User{}
		db := testDatabase.DS.GormDB(context.Background())
		Expect(db.Where(&account.User{ID: info.ID}).First(&user).Error).To(BeNil())
		Expect(user.Secret).To(Equal(account.HashSha256("abc123")))
		Expect(user.IsActive).To(BeTrue())

		users, err := account.QueryUsers(admin)
		Expect(err).To(BeNil())
		Expect(len(*users)).To(Equal(1))
		Expect((*users)[0]).To(Equal(account.UserInfo{ID: info.ID, Name: "ann", Nickname: "Ann"}))
	})
}

func TestUpdateUser(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be allowed to admin and the user itself", func(t *testing.T) {
		testDatabase := beforeEachAccountsTest(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB(context.Background())

		Expect(db.Save(&account.User{ID: 2, Name: "ann", Secret: "x", IsActive: true}).Error).To(BeNil())

		err := account.UpdateUser(2, &account.UserUpdation{Nickname: "Ann"}, testinfra.BuildSecCtx(3, "manager_100"))
		Expect(err).To(Equal(bizerror.ErrForbidden))

		Expect(account.UpdateUser(2, &account.UserUpdation{Nickname: "Ann"}, testinfra.BuildSecCtx(2))).To(BeNil())
		user := account.User{}
		Expect(db.Where(&account.User{ID: 2}).First(&user).Error).To(BeNil())
		Expect(user.Nickname).To(Equal("Ann"))

		Expect(account.UpdateUser(2, &account.UserUpdation{Nickname: "Annie"},
			testinfra.BuildSecCtx(3, account.SystemAdminPermission.ID))).To(BeNil())
		Expect(db.Where(&account.User{ID: 2}).First(&user).Error).To(BeNil())
		Expect(user.Nickname).To(Equal("Annie"))
	})
}

func TestUpdateBasicAuthSecret(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should verify the original secret before updating", func(t *testing.T) {
		testDatabase := beforeEachAccountsTest(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB(context.Background())

		Expect(db.Save(&account.User{ID: 2, Name: "ann", Secret: account.HashSha256("abc123"), IsActive: true}).Error).To(BeNil())
		s := testinfra.BuildSecCtx(2)

		err := account.UpdateBasicAuthSecret(&account.BasicAuthUpdating{OriginalSecret: "wrong", NewSecret: "newpass1"}, s)
		Expect(err).To(Equal(bizerror.ErrInvalidPassword))

		Expect(account.UpdateBasicAuthSecret(&account.BasicAuthUpdating{OriginalSecret: "abc123", NewSecret: "newpass1"}, s)).To(BeNil())
		user := account.User{}
		Expect(db.Where(&account.User{ID: 2}).First(&user).Error).To(BeNil())
		Expect(user.Secret).To(Equal(account.HashSha256("newpass1")))
	})
}

func TestLoadPerms(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should build permission strings from memberships", func(t *testing.T) {
		testDatabase := beforeEachAccountsTest(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB(context.Background())

		Expect(db.Save(&domain.Tenant{ID: 100, Name: "tenant one", Identifier: "T1", NextCaseID: 1}).Error).To(BeNil())
		Expect(db.Save(&domain.Tenant{ID: 200, Name: "tenant two", Identifier: "T2", NextCaseID: 1}).Error).To(BeNil())
		Expect(db.Save(&domain.TenantMember{TenantID: 100, UserID: 2, Role: domain.TenantRoleMaker}).Error).To(BeNil())
		Expect(db.Save(&domain.TenantMember{TenantID: 200, UserID: 2, Role: domain.TenantRoleViewer}).Error).To(BeNil())
		Expect(db.Save(&domain.TenantMember{TenantID: 100, UserID: 3, Role: domain.TenantRoleChecker}).Error).To(BeNil())

		perms, tenantRoles := account.LoadPerms(2, testinfra.BuildSecCtx(2))
		Expect(len(perms)).To(Equal(2))
		Expect(perms).To(ContainElement("maker_100"))
		Expect(perms).To(ContainElement("viewer_200"))
		Expect(len(tenantRoles)).To(Equal(2))
		Expect(tenantRoles).To(ContainElement(domain.TenantRole{TenantID: 100, TenantName: "tenant one", Role: "maker"}))
		Expect(tenantRoles).To(ContainElement(domain.TenantRole{TenantID: 200, TenantName: "tenant two", Role: "viewer"}))

		perms, tenantRoles = account.LoadPerms(9, testinfra.BuildSecCtx(9))
		Expect(len(perms)).To(BeZero())
		Expect(len(tenantRoles)).To(BeZero())
	})
}

func TestQueryAccountNames(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should prefer nicknames over names", func(t *testing.T) {
		testDatabase := beforeEachAccountsTest(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB(context.Background())

		Expect(db.Save(&account.User{ID: 2, Name: "ann", Nickname: "Ann", Secret: "x"}).Error).To(BeNil())
		Expect(db.Save(&account.User{ID: 3, Name: "bob", Secret: "x"}).Error).To(BeNil())

		names, err := account.QueryAccountNames([]types.ID{2, 3, 9}, testinfra.BuildSecCtx(2))
		Expect(err).To(BeNil())
		Expect(names).To(Equal(map[types.ID]string{2: "Ann", 3: "bob"}))

		names, err = account.QueryAccountNames(nil, testinfra.BuildSecCtx(2))
		Expect(err).To(BeNil())
		Expect(names).To(BeEmpty())
	})
}
