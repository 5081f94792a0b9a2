package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tenantconsole-backend/shared/database/models"
	apperrors "tenantconsole-backend/shared/errors"
	"tenantconsole-backend/shared/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func seedTenant(t *testing.T, r *Repository, id string) {
	t.Helper()
	require.NoError(t, r.CreateTenant(context.Background(), &models.Tenant{ID: id, Name: id, Active: true}))
}

func TestNewRepository(t *testing.T) {
	r := NewRepository()
	require.NotNil(t, r)

	tenants, err := r.ListTenants(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tenants)
}

func TestRepository_Tenants(t *testing.T) {
	ctx := context.Background()

	t.Run("create assigns id and keeps insertion order", func(t *testing.T) {
		r := NewRepository()
		a := &models.Tenant{Name: "A"}
		require.NoError(t, r.CreateTenant(ctx, a))
		assert.NotEmpty(t, a.ID)
		require.NoError(t, r.CreateTenant(ctx, &models.Tenant{ID: "b", Name: "B"}))

		tenants, err := r.ListTenants(ctx)
		require.NoError(t, err)
		require.Len(t, tenants, 2)
		assert.Equal(t, "A", tenants[0].Name)
		assert.Equal(t, "B", tenants[1].Name)
	})

	t.Run("get returns a copy", func(t *testing.T) {
		r := NewRepository()
		seedTenant(t, r, "t1")

		got, err := r.GetTenant(ctx, "t1")
		require.NoError(t, err)
		got.Name = "changed"

		again, err := r.GetTenant(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "t1", again.Name)
	})

	t.Run("missing tenant", func(t *testing.T) {
		r := NewRepository()
		_, err := r.GetTenant(ctx, "nope")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.ErrorIs(t, r.UpdateTenant(ctx, &models.Tenant{ID: "nope"}), apperrors.ErrNotFound)
		assert.ErrorIs(t, r.DeleteTenant(ctx, "nope"), apperrors.ErrNotFound)
	})
}

func TestRepository_Organizations(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown tenant", func(t *testing.T) {
		r := NewRepository()
		err := r.CreateOrganization(ctx, &models.Organization{TenantID: "nope", Name: "X"})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("parent must belong to the same tenant", func(t *testing.T) {
		r := NewRepository()
		seedTenant(t, r, "t1")
		seedTenant(t, r, "t2")
		require.NoError(t, r.CreateOrganization(ctx, &models.Organization{ID: "o1", TenantID: "t1", Name: "Root"}))

		err := r.CreateOrganization(ctx, &models.Organization{TenantID: "t2", Name: "Child", ParentID: strPtr("o1")})
		assert.ErrorIs(t, err, apperrors.ErrInvalidParent)

		child := &models.Organization{TenantID: "t1", Name: "Child", ParentID: strPtr("o1")}
		require.NoError(t, r.CreateOrganization(ctx, child))

		child.ParentID = strPtr(child.ID)
		assert.ErrorIs(t, r.UpdateOrganization(ctx, child), apperrors.ErrInvalidParent)
	})

	t.Run("list is tenant scoped and filters by name", func(t *testing.T) {
		r := NewRepository()
		seedTenant(t, r, "t1")
		seedTenant(t, r, "t2")
		require.NoError(t, r.CreateOrganization(ctx, &models.Organization{TenantID: "t1", Name: "Engineering"}))
		require.NoError(t, r.CreateOrganization(ctx, &models.Organization{TenantID: "t1", Name: "Sales"}))
		require.NoError(t, r.CreateOrganization(ctx, &models.Organization{TenantID: "t2", Name: "Engineering"}))

		orgs, err := r.ListOrganizations(ctx, "t1", store.ListFilter{})
		require.NoError(t, err)
		assert.Len(t, orgs, 2)

		orgs, err = r.ListOrganizations(ctx, "t1", store.ListFilter{Name: "ENG"})
		require.NoError(t, err)
		require.Len(t, orgs, 1)
		assert.Equal(t, "t1", orgs[0].TenantID)
	})

	t.Run("user count is derived", func(t *testing.T) {
		r := NewRepository()
		seedTenant(t, r, "t1")
		require.NoError(t, r.CreateOrganization(ctx, &models.Organization{ID: "o1", TenantID: "t1", Name: "Eng"}))
		require.NoError(t, r.CreateUser(ctx, &models.User{TenantID: "t1", Email: "a@x.com", OrganizationID: strPtr("o1")}))
		require.NoError(t, r.CreateUser(ctx, &models.User{TenantID: "t1", Email: "b@x.com"}))

		org, err := r.GetOrganization(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, 1, org.UserCount)
	})

	t.Run("update rejects a descendant as parent", func(t *testing.T) {
		r := NewRepository()
		seedTenant(t, r, "t1")
		require.NoError(t, r.CreateOrganization(ctx, &models.Organization{ID: "a", TenantID: "t1", Name: "A"}))
		require.NoError(t, r.CreateOrganization(ctx, &models.Organization{ID: "b", TenantID: "t1", Name: "B", ParentID: strPtr("a")}))
		require.NoError(t, r.CreateOrganization(ctx, &models.Organization{ID: "c", TenantID: "t1", Name: "C", ParentID: strPtr("b")}))

		err := r.UpdateOrganization(ctx, &models.Organization{ID: "a", Name: "A", ParentID: strPtr("c")})
		assert.ErrorIs(t, err, apperrors.ErrInvalidParent)

		a, err := r.GetOrganization(ctx, "a")
		require.NoError(t, err)
		assert.Nil(t, a.ParentID)

		// Moving within the tree is fine.
		require.NoError(t, r.UpdateOrganization(ctx, &models.Organization{ID: "c", Name: "C", ParentID: strPtr("a")}))
	})

	t.Run("delete", func(t *testing.T) {
		r := NewRepository()
		seedTenant(t, r, "t1")
		require.NoError(t, r.CreateOrganization(ctx, &models.Organization{ID: "o1", TenantID: "t1", Name: "Eng"}))

		require.NoError(t, r.DeleteOrganization(ctx, "o1"))
		_, err := r.GetOrganization(ctx, "o1")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.ErrorIs(t, r.DeleteOrganization(ctx, "o1"), apperrors.ErrNotFound)
	})

	t.Run("delete detaches children and members", func(t *testing.T) {
		r := NewRepository()
		seedTenant(t, r, "t1")
		require.NoError(t, r.CreateOrganization(ctx, &models.Organization{ID: "parent", TenantID: "t1", Name: "Parent"}))
		require.NoError(t, r.CreateOrganization(ctx, &models.Organization{ID: "child", TenantID: "t1", Name: "Child", ParentID: strPtr("parent")}))
		member := &models.User{TenantID: "t1", Email: "a@x.com", OrganizationID: strPtr("parent")}
		require.NoError(t, r.CreateUser(ctx, member))

		require.NoError(t, r.DeleteOrganization(ctx, "parent"))

		child, err := r.GetOrganization(ctx, "child")
		require.NoError(t, err)
		assert.Nil(t, child.ParentID)

		got, err := r.GetUser(ctx, member.ID)
		require.NoError(t, err)
		assert.Nil(t, got.OrganizationID)
	})
}

func TestRepository_Users(t *testing.T) {
	ctx := context.Background()

	t.Run("email unique within tenant", func(t *testing.T) {
		r := NewRepository()
		seedTenant(t, r, "t1")
		seedTenant(t, r, "t2")
		require.NoError(t, r.CreateUser(ctx, &models.User{TenantID: "t1", Email: "jane@acme.com"}))

		err := r.CreateUser(ctx, &models.User{TenantID: "t1", Email: "JANE@acme.com"})
		assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
		assert.NoError(t, r.CreateUser(ctx, &models.User{TenantID: "t2", Email: "jane@acme.com"}))
	})

	t.Run("list never returns password hashes", func(t *testing.T) {
		r := NewRepository()
		seedTenant(t, r, "t1")
		require.NoError(t, r.CreateUser(ctx, &models.User{TenantID: "t1", Email: "jane@acme.com", Password: "hash"}))

		users, err := r.ListUsers(ctx, "t1", store.ListFilter{Email: "acme"})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Empty(t, users[0].Password)

		found, err := r.FindUserByEmail(ctx, "Jane@Acme.com")
		require.NoError(t, err)
		assert.Equal(t, "hash", found.Password)
	})

	t.Run("find by email spans tenants", func(t *testing.T) {
		r := NewRepository()
		seedTenant(t, r, "t1")
		seedTenant(t, r, "t2")
		require.NoError(t, r.CreateUser(ctx, &models.User{TenantID: "t1", Email: "jane@acme.com", Password: "h1"}))
		require.NoError(t, r.CreateUser(ctx, &models.User{TenantID: "t2", Email: "JANE@acme.com", Password: "h2"}))

		users, err := r.FindUsersByEmail(ctx, "jane@ACME.com")
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.ElementsMatch(t, []string{"h1", "h2"}, []string{users[0].Password, users[1].Password})

		none, err := r.FindUsersByEmail(ctx, "ghost@acme.com")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("update keeps the stored hash when none is given", func(t *testing.T) {
		r := NewRepository()
		seedTenant(t, r, "t1")
		u := &models.User{TenantID: "t1", Email: "jane@acme.com", Password: "hash"}
		require.NoError(t, r.CreateUser(ctx, u))

		update := *u
		update.Password = ""
		update.FirstName = "Jane"
		require.NoError(t, r.UpdateUser(ctx, &update))

		got, err := r.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jane", got.FirstName)
		assert.Equal(t, "hash", got.Password)
	})
}

func TestRepository_RolesAndLinks(t *testing.T) {
	ctx := context.Background()
	r := NewRepository()
	seedTenant(t, r, "t1")

	role := &models.Role{TenantID: "t1", Name: "Administrator", Permissions: []string{"user.read"}}
	require.NoError(t, r.CreateRole(ctx, role))
	user := &models.User{TenantID: "t1", Email: "a@x.com"}
	require.NoError(t, r.CreateUser(ctx, user))

	link := &models.UserRoleLink{UserID: user.ID, RoleID: role.ID}
	require.NoError(t, r.CreateUserRole(ctx, link))
	require.NoError(t, r.CreateUserRole(ctx, link))

	links, err := r.ListUserRoles(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, links, 1)

	got, err := r.GetRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UserCount)

	got.Permissions[0] = "mutated"
	again, err := r.GetRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"user.read"}, again.Permissions)

	assert.ErrorIs(t, r.CreateUserRole(ctx, &models.UserRoleLink{UserID: "nope", RoleID: role.ID}), apperrors.ErrNotFound)
}

func TestRepository_DeleteTenantCascades(t *testing.T) {
	ctx := context.Background()
	r := NewRepository()
	seedTenant(t, r, "t1")
	seedTenant(t, r, "t2")

	require.NoError(t, r.CreateOrganization(ctx, &models.Organization{TenantID: "t1", Name: "Eng"}))
	role := &models.Role{TenantID: "t1", Name: "User"}
	require.NoError(t, r.CreateRole(ctx, role))
	user := &models.User{TenantID: "t1", Email: "a@x.com"}
	require.NoError(t, r.CreateUser(ctx, user))
	require.NoError(t, r.CreateUserRole(ctx, &models.UserRoleLink{UserID: user.ID, RoleID: role.ID}))
	require.NoError(t, r.CreatePrivilege(ctx, &models.Privilege{TenantID: "t1", Name: "p"}))
	require.NoError(t, r.CreateLegalEntity(ctx, &models.LegalEntity{TenantID: "t1", Name: "LE"}))
	require.NoError(t, r.SaveSettings(ctx, &models.TenantSettings{TenantID: "t1"}))
	require.NoError(t, r.SaveProgress(ctx, &models.SetupProgress{TenantID: "t1"}))
	require.NoError(t, r.AppendAudit(ctx, &models.AuditLogEntry{TenantID: "t1", Action: "tenant_created"}))
	require.NoError(t, r.CreateOrganization(ctx, &models.Organization{TenantID: "t2", Name: "Other"}))

	require.NoError(t, r.DeleteTenant(ctx, "t1"))

	orgs, _ := r.ListOrganizations(ctx, "t1", store.ListFilter{})
	users, _ := r.ListUsers(ctx, "t1", store.ListFilter{})
	roles, _ := r.ListRoles(ctx, "t1", store.ListFilter{})
	privileges, _ := r.ListPrivileges(ctx, "t1", store.ListFilter{})
	entities, _ := r.ListLegalEntities(ctx, "t1", store.ListFilter{})
	links, _ := r.ListUserRoles(ctx, user.ID)
	assert.Empty(t, orgs)
	assert.Empty(t, users)
	assert.Empty(t, roles)
	assert.Empty(t, privileges)
	assert.Empty(t, entities)
	assert.Empty(t, links)

	_, err := r.GetSettings(ctx, "t1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = r.GetProgress(ctx, "t1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	audit, err := r.ListAudit(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, audit, 1)

	other, _ := r.ListOrganizations(ctx, "t2", store.ListFilter{})
	assert.Len(t, other, 1)
}

func TestRepository_SaveTenantBundle(t *testing.T) {
	ctx := context.Background()

	bundle := func() *store.TenantBundle {
		return &store.TenantBundle{
			Tenant: models.Tenant{ID: "t1", Name: "Acme"},
			Organizations: []models.Organization{
				{ID: "o1", Name: "HQ"},
				{ID: "o2", Name: "Eng", ParentID: strPtr("o1")},
			},
			Roles:     []models.Role{{ID: "r1", Name: "Administrator"}},
			Users:     []models.User{{ID: "u1", Email: "a@acme.com", OrganizationID: strPtr("o2")}},
			UserRoles: []models.UserRoleLink{{UserID: "u1", RoleID: "r1"}},
			Audit:     models.AuditLogEntry{Action: "tenant_created"},
		}
	}

	t.Run("commits every record", func(t *testing.T) {
		r := NewRepository()
		require.NoError(t, r.SaveTenantBundle(ctx, bundle()))

		orgs, _ := r.ListOrganizations(ctx, "t1", store.ListFilter{})
		users, _ := r.ListUsers(ctx, "t1", store.ListFilter{})
		roles, _ := r.ListRoles(ctx, "t1", store.ListFilter{})
		audit, _ := r.ListAudit(ctx, "t1")
		assert.Len(t, orgs, 2)
		assert.Len(t, users, 1)
		require.Len(t, roles, 1)
		assert.Equal(t, 1, roles[0].UserCount)
		require.Len(t, audit, 1)
		assert.Equal(t, "t1", audit[0].ResourceID)

		_, err := r.GetSettings(ctx, "t1")
		assert.NoError(t, err)
	})

	t.Run("invalid parent writes nothing", func(t *testing.T) {
		r := NewRepository()
		b := bundle()
		b.Organizations[1].ParentID = strPtr("missing")

		err := r.SaveTenantBundle(ctx, b)
		assert.ErrorIs(t, err, apperrors.ErrInvalidParent)

		tenants, _ := r.ListTenants(ctx)
		assert.Empty(t, tenants)
		audit, _ := r.ListAudit(ctx, "")
		assert.Empty(t, audit)
	})

	t.Run("parent loop writes nothing", func(t *testing.T) {
		r := NewRepository()
		b := bundle()
		b.Organizations[0].ParentID = strPtr("o2")

		err := r.SaveTenantBundle(ctx, b)
		assert.ErrorIs(t, err, apperrors.ErrInvalidParent)

		_, err = r.GetTenant(ctx, "t1")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("duplicate email writes nothing", func(t *testing.T) {
		r := NewRepository()
		b := bundle()
		b.Users = append(b.Users, models.User{ID: "u2", Email: "A@acme.com"})

		err := r.SaveTenantBundle(ctx, b)
		assert.True(t, errors.Is(err, apperrors.ErrDuplicateEmail))

		_, err = r.GetTenant(ctx, "t1")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestRepository_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	r := NewRepository()
	seedTenant(t, r, "t1")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.CreateOrganization(ctx, &models.Organization{TenantID: "t1", Name: "Org"})
		}()
		go func() {
			defer wg.Done()
			_, _ = r.ListOrganizations(ctx, "t1", store.ListFilter{})
		}()
	}
	wg.Wait()

	orgs, err := r.ListOrganizations(ctx, "t1", store.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, orgs, 20)
}
