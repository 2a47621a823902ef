package tenants_test

import (
	"context"
	"testing"

	"caseflow/account"
	"caseflow/bizerror"
	"caseflow/domain"
	"caseflow/domain/tenants"
	"caseflow/persistence"
	"caseflow/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func beforeEachTenantsTest(t *testing.T) *testinfra.TestDatabase {
	testDatabase := testinfra.StartMysqlTestDatabase("caseflow")
	persistence.ActiveDataSourceManager = testDatabase.DS
	err := testDatabase.DS.GormDB(context.Background()).AutoMigrate(
		&domain.Tenant{}, &domain.TenantMember{}, &account.User{}).Error
	Expect(err).To(BeNil())
	return testDatabase
}

func afterEachTenantsTest(testDatabase *testinfra.TestDatabase) {
	testinfra.StopMysqlTestDatabase(testDatabase)
}

func TestCreateTenant(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be allowed to admin only", func(t *testing.T) {
		testDatabase := beforeEachTenantsTest(t)
		defer afterEachTenantsTest(testDatabase)

		_, err := tenants.CreateTenant(&tenants.TenantCreating{Name: "tenant one", Identifier: "T1"},
			testinfra.BuildSecCtx(1, "manager_100"))
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should seed the case sequence and a manager membership", func(t *testing.T) {
		testDatabase := beforeEachTenantsTest(t)
		defer afterEachTenantsTest(testDatabase)

		s := testinfra.BuildSecCtx(7, account.SystemAdminPermission.ID)
		tenant, err := tenants.CreateTenant(&tenants.TenantCreating{Name: "tenant one", Identifier: "T1"}, s)
		Expect(err).To(BeNil())
		Expect(tenant.Name).To(Equal("tenant one"))
		Expect(tenant.Identifier).To(Equal("T1"))
		Expect(tenant.NextCaseID).To(Equal(1))
		Expect(tenant.Creator).To(Equal(types.ID(7)))

		db := testDatabase.DS.GormDB(context.Background())
		var members []domain.TenantMember
		Expect(db.Where(domain.TenantMember{TenantID: tenant.ID}).Find(&members).Error).To(BeNil())
		Expect(len(members)).To(Equal(1))
		Expect(members[0].UserID).To(Equal(types.ID(7)))
		Expect(members[0].Role).To(Equal(domain.TenantRoleManager))

		list, err := tenants.QueryTenants(s)
		Expect(err).To(BeNil())
		Expect(len(*list)).To(Equal(1))
	})
}

func TestNextCaseIdentifier(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should hand out sequential identifiers prefixed with the tenant identifier", func(t *testing.T) {
		testDatabase := beforeEachTenantsTest(t)
		defer afterEachTenantsTest(testDatabase)
		db := testDatabase.DS.GormDB(context.Background())

		Expect(db.Create(&domain.Tenant{ID: 100, Name: "tenant one", Identifier: "T1",
			NextCaseID: 1, CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())

		id1, err := tenants.NextCaseIdentifier(100, db)
		Expect(err).To(BeNil())
		Expect(id1).To(Equal("T1-1"))
		id2, err := tenants.NextCaseIdentifier(100, db)
		Expect(err).To(BeNil())
		Expect(id2).To(Equal("T1-2"))

		tenant := domain.Tenant{}
		Expect(db.Where(&domain.Tenant{ID: 100}).First(&tenant).Error).To(BeNil())
		Expect(tenant.NextCaseID).To(Equal(3))

		_, err = tenants.NextCaseIdentifier(404404, db)
		Expect(err).ToNot(BeNil())
	})
}

func TestTenantMembers(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should manage memberships with manager or admin permissions", func(t *testing.T) {
		testDatabase := beforeEachTenantsTest(t)
		defer afterEachTenantsTest(testDatabase)
		db := testDatabase.DS.GormDB(context.Background())

		Expect(db.Create(&domain.Tenant{ID: 100, Name: "tenant one", Identifier: "T1",
			NextCaseID: 1, CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		Expect(db.Create(&account.User{ID: 20, Name: "ann", Secret: "x"}).Error).To(BeNil())

		creation := &tenants.TenantMemberCreation{TenantID: 100, MemberID: 20, Role: domain.TenantRoleMaker}

		err := tenants.CreateTenantMember(creation, testinfra.BuildSecCtx(1, "maker_100"))
		Expect(err).To(Equal(bizerror.ErrForbidden))

		manager := testinfra.BuildSecCtx(1, "manager_100")
		Expect(tenants.CreateTenantMember(creation, manager)).To(BeNil())

		// re-adding the same user updates the role in place
		creation.Role = domain.TenantRoleChecker
		Expect(tenants.CreateTenantMember(creation, manager)).To(BeNil())

		members, err := tenants.QueryTenantMembers(100, manager)
		Expect(err).To(BeNil())
		Expect(len(*members)).To(Equal(1))
		Expect((*members)[0].Role).To(Equal(domain.TenantRoleChecker))

		err = tenants.CreateTenantMember(&tenants.TenantMemberCreation{TenantID: 100, MemberID: 404404,
			Role: domain.TenantRoleMaker}, manager)
		Expect(err).ToNot(BeNil())

		err = tenants.DeleteTenantMember(&tenants.TenantMemberDeletion{TenantID: 100, MemberID: 20},
			testinfra.BuildSecCtx(2, "viewer_100"))
		Expect(err).To(Equal(bizerror.ErrForbidden))

		Expect(tenants.DeleteTenantMember(&tenants.TenantMemberDeletion{TenantID: 100, MemberID: 20},
			testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID))).To(BeNil())
		members, err = tenants.QueryTenantMembers(100, manager)
		Expect(err).To(BeNil())
		Expect(*members).To(BeEmpty())
	})
}
