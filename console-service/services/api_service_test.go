package services

import (
	"context"
	"testing"
	"time"

	"tenantconsole-backend/shared/database"
	"tenantconsole-backend/shared/database/models"
	apperrors "tenantconsole-backend/shared/errors"
	"tenantconsole-backend/shared/store"
	"tenantconsole-backend/shared/store/memory"
	"tenantconsole-backend/shared/utils/cache"
	utils "tenantconsole-backend/shared/utils/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const acmeTenant = "tenant-acme"

type apiFixture struct {
	repo     *memory.Repository
	tokens   *utils.TokenManager
	sessions *cache.MemorySessionCache
	api      *APIService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	repo := memory.NewRepository()
	require.NoError(t, database.SeedDemoData(ctx, repo, zap.NewNop()))

	tokens := utils.NewTokenManager("test-secret", time.Hour, 24*time.Hour)
	sessions := cache.NewMemorySessionCache()
	api := NewAPIService(repo, tokens, sessions, APIConfig{TenantRegionURL: "https://region.test"}, zap.NewNop(), nil)
	return &apiFixture{repo: repo, tokens: tokens, sessions: sessions, api: api}
}

func (f *apiFixture) login(t *testing.T, email string) *APIService {
	t.Helper()
	session := f.api.ForUser(nil)
	_, err := session.Authenticate(context.Background(), email, database.DemoPassword)
	require.NoError(t, err)
	return session
}

func TestAuthenticate(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		session := f.api.ForUser(nil)
		env, err := session.Authenticate(ctx, database.DemoTenantAdminEmail, database.DemoPassword)
		require.NoError(t, err)

		assert.True(t, env.Success)
		assert.Equal(t, "Login successful", env.Message)
		assert.NotEmpty(t, env.TraceID)
		assert.Equal(t, "bearer", env.Data.TokenType)
		assert.Equal(t, int64(3600), env.Data.ExpiresIn)
		assert.Equal(t, "tenant_admin", env.Data.UserRole)
		assert.Equal(t, acmeTenant, env.Data.TenantID)
		assert.Equal(t, "Alice Admin", env.Data.Name)
		assert.Equal(t, "https://region.test", env.Data.TenantRegionURL)
		require.NotNil(t, env.Data.OrganizationID)
		assert.Equal(t, "org-acme-hq", *env.Data.OrganizationID)

		claims, err := f.tokens.ValidateJWT(env.Data.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, env.Data.UserID, claims.UserID)

		_, err = f.sessions.Get(ctx, claims.ID)
		assert.NoError(t, err)
		assert.Equal(t, env.Data.UserID, session.CurrentUserID())

		stored, err := f.repo.GetUser(ctx, env.Data.UserID)
		require.NoError(t, err)
		assert.NotNil(t, stored.LastLogin)
	})

	t.Run("email is case insensitive", func(t *testing.T) {
		_, err := f.api.ForUser(nil).Authenticate(ctx, "ADMIN@acme.com", database.DemoPassword)
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		session := f.api.ForUser(nil)
		env, err := session.Authenticate(ctx, database.DemoTenantAdminEmail, "nope")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		assert.False(t, env.Success)
		assert.Empty(t, session.CurrentUserID())
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.api.ForUser(nil).Authenticate(ctx, "ghost@acme.com", database.DemoPassword)
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		user, err := f.repo.FindUserByEmail(ctx, database.DemoUserEmail)
		require.NoError(t, err)
		user.Active = false
		user.Password = ""
		require.NoError(t, f.repo.UpdateUser(ctx, user))

		_, err = f.api.ForUser(nil).Authenticate(ctx, database.DemoUserEmail, database.DemoPassword)
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestAuthenticate_EmailSharedAcrossTenants(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	hash, err := utils.HashPassword("other-secret")
	require.NoError(t, err)
	require.NoError(t, f.repo.CreateUser(ctx, &models.User{
		ID:        "user-globex-alice",
		TenantID:  "tenant-globex",
		FirstName: "Alice",
		LastName:  "Globex",
		Email:     database.DemoTenantAdminEmail,
		Password:  hash,
		UserRole:  "tenant_admin",
		Active:    true,
	}))

	env, err := f.api.ForUser(nil).Authenticate(ctx, database.DemoTenantAdminEmail, "other-secret")
	require.NoError(t, err)
	assert.Equal(t, "tenant-globex", env.Data.TenantID)
	assert.Equal(t, "user-globex-alice", env.Data.UserID)

	env, err = f.api.ForUser(nil).Authenticate(ctx, database.DemoTenantAdminEmail, database.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, acmeTenant, env.Data.TenantID)

	_, err = f.api.ForUser(nil).Authenticate(ctx, database.DemoTenantAdminEmail, "neither")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogout_RevokesSession(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	session := f.api.ForUser(nil)
	env, err := session.Authenticate(ctx, database.DemoTenantAdminEmail, database.DemoPassword)
	require.NoError(t, err)
	claims, err := f.tokens.ValidateJWT(env.Data.AccessToken)
	require.NoError(t, err)

	out, err := session.Logout(ctx, claims.ID)
	require.NoError(t, err)
	assert.Equal(t, "Logout successful", out.Message)

	_, err = f.sessions.Get(ctx, claims.ID)
	assert.ErrorIs(t, err, cache.ErrSessionNotFound)

	_, err = session.GetCurrentUser(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
}

func TestGetCurrentUser(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	_, err := f.api.ForUser(nil).GetCurrentUser(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

	session := f.login(t, database.DemoTenantAdminEmail)
	env, err := session.GetCurrentUser(ctx)
	require.NoError(t, err)

	assert.Equal(t, database.DemoTenantAdminEmail, env.Data.Email)
	assert.Empty(t, env.Data.Password)
	require.Len(t, env.Data.Roles, 1)
	assert.Equal(t, "Administrator", env.Data.Roles[0].Name)
	assert.NotNil(t, env.Data.Privileges)
	assert.Empty(t, env.Data.Privileges)
}

func TestUpdateCurrentUser(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()
	session := f.login(t, database.DemoUserEmail)

	title := "Staff Engineer"
	env, err := session.UpdateCurrentUser(ctx, models.UserProfilePatch{JobTitle: &title})
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", env.Data.JobTitle)
	assert.Equal(t, "John", env.Data.FirstName)

	current, err := session.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", current.Data.JobTitle)

	// password hash survives a profile update
	_, err = f.api.ForUser(nil).Authenticate(ctx, database.DemoUserEmail, database.DemoPassword)
	assert.NoError(t, err)
}

func TestOrganizations(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()
	api := f.login(t, database.DemoTenantAdminEmail)

	first, err := api.CreateOrganization(ctx, acmeTenant, models.Organization{Name: "Research", Email: "r@acme.com"})
	require.NoError(t, err)
	second, err := api.CreateOrganization(ctx, acmeTenant, models.Organization{Name: "Research"})
	require.NoError(t, err)

	assert.Equal(t, "Organization created successfully", first.Message)
	assert.NotEqual(t, first.Data.ID, second.Data.ID)
	assert.True(t, first.Data.Active)
	assert.Equal(t, 0, first.Data.UserCount)
	assert.Equal(t, acmeTenant, first.Data.TenantID)

	t.Run("list is tenant scoped and filtered", func(t *testing.T) {
		env, err := api.GetOrganizations(ctx, acmeTenant, store.ListFilter{Name: "research"})
		require.NoError(t, err)
		assert.Len(t, env.Data, 2)

		globex, err := api.GetOrganizations(ctx, "tenant-globex", store.ListFilter{Name: "research"})
		require.NoError(t, err)
		assert.Empty(t, globex.Data)
	})

	t.Run("update is idempotent", func(t *testing.T) {
		name := "Research & Development"
		patch := models.OrganizationPatch{Name: &name}

		once, err := api.UpdateOrganization(ctx, first.Data.ID, patch)
		require.NoError(t, err)
		twice, err := api.UpdateOrganization(ctx, first.Data.ID, patch)
		require.NoError(t, err)

		assert.Equal(t, once.Data.Name, twice.Data.Name)
		assert.Equal(t, "r@acme.com", twice.Data.Email)
		assert.Equal(t, first.Data.CreatedAt, twice.Data.CreatedAt)
	})

	t.Run("parent must belong to the tenant", func(t *testing.T) {
		foreign := "org-globex-hq"
		_, err := api.UpdateOrganization(ctx, first.Data.ID, models.OrganizationPatch{ParentID: &foreign})
		assert.ErrorIs(t, err, apperrors.ErrInvalidParent)
	})

	t.Run("parent cannot be a descendant", func(t *testing.T) {
		engineering := "org-acme-eng"
		_, err := api.UpdateOrganization(ctx, "org-acme-hq", models.OrganizationPatch{ParentID: &engineering})
		assert.ErrorIs(t, err, apperrors.ErrInvalidParent)

		hq, err := f.repo.GetOrganization(ctx, "org-acme-hq")
		require.NoError(t, err)
		assert.Nil(t, hq.ParentID)
	})

	t.Run("deleting a parent detaches children and members", func(t *testing.T) {
		_, err := api.DeleteOrganization(ctx, "org-acme-hq")
		require.NoError(t, err)

		eng, err := f.repo.GetOrganization(ctx, "org-acme-eng")
		require.NoError(t, err)
		assert.Nil(t, eng.ParentID)

		admin, err := f.repo.GetUser(ctx, "user-acme-admin")
		require.NoError(t, err)
		assert.Nil(t, admin.OrganizationID)
	})

	t.Run("delete", func(t *testing.T) {
		env, err := api.DeleteOrganization(ctx, second.Data.ID)
		require.NoError(t, err)
		assert.Nil(t, env.Data)

		_, err = api.DeleteOrganization(ctx, second.Data.ID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Equal(t, "Organization not found", err.Error())
	})
}

func TestGetUsers_NeverExposesPasswords(t *testing.T) {
	f := newAPIFixture(t)
	api := f.login(t, database.DemoTenantAdminEmail)

	env, err := api.GetUsers(context.Background(), acmeTenant, store.ListFilter{})
	require.NoError(t, err)
	require.Len(t, env.Data, 2)
	for _, u := range env.Data {
		assert.Empty(t, u.Password)
		assert.Equal(t, acmeTenant, u.TenantID)
	}

	filtered, err := api.GetUsers(context.Background(), acmeTenant, store.ListFilter{Email: "JOHN"})
	require.NoError(t, err)
	require.Len(t, filtered.Data, 1)
	assert.Equal(t, database.DemoUserEmail, filtered.Data[0].Email)
}

func TestRolesPrivilegesAndLegalEntities(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()
	api := f.login(t, database.DemoTenantAdminEmail)

	role, err := api.CreateRole(ctx, acmeTenant, models.Role{Name: "Manager", Custom: true})
	require.NoError(t, err)
	assert.NotEmpty(t, role.Data.Permissions)
	assert.True(t, role.Data.Active)

	roles, err := api.GetRoles(ctx, acmeTenant, store.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, roles.Data, 3)

	priv, err := api.CreatePrivilege(ctx, acmeTenant, models.Privilege{Name: "EXPORT_DATA"})
	require.NoError(t, err)
	assert.Equal(t, acmeTenant, priv.Data.TenantID)

	privs, err := api.GetPrivileges(ctx, acmeTenant, store.ListFilter{Name: "export"})
	require.NoError(t, err)
	assert.Len(t, privs.Data, 1)

	entity, err := api.CreateLegalEntity(ctx, acmeTenant, models.LegalEntity{Name: "Acme Asia Pte", EntityType: "LLC"})
	require.NoError(t, err)
	assert.Equal(t, models.LegalEntityStatusActive, entity.Data.Status)

	jurisdiction := "Singapore"
	updated, err := api.UpdateLegalEntity(ctx, entity.Data.ID, models.LegalEntityPatch{Jurisdiction: &jurisdiction})
	require.NoError(t, err)
	assert.Equal(t, "Singapore", updated.Data.Jurisdiction)
	assert.Equal(t, "Acme Asia Pte", updated.Data.Name)

	_, err = api.UpdateLegalEntity(ctx, "missing", models.LegalEntityPatch{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTenants(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()
	api := f.login(t, database.DemoSystemAdminEmail)

	created, err := api.CreateTenant(ctx, models.Tenant{Name: "Initech", Industry: "Software", Email: "info@initech.com"})
	require.NoError(t, err)
	assert.True(t, created.Data.Active)
	assert.Equal(t, models.TenantStatusActive, created.Data.Status)

	env, err := api.GetTenants(ctx)
	require.NoError(t, err)
	assert.Len(t, env.Data, 4)
}

func TestCancelledCallDoesNotMutate(t *testing.T) {
	f := newAPIFixture(t)
	slow := NewAPIService(f.repo, f.tokens, f.sessions, APIConfig{BaseDelay: time.Second}, zap.NewNop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := slow.CreateOrganization(ctx, acmeTenant, models.Organization{Name: "Ghost"})
	assert.ErrorIs(t, err, context.Canceled)

	orgs, err := f.repo.ListOrganizations(context.Background(), acmeTenant, store.ListFilter{Name: "ghost"})
	require.NoError(t, err)
	assert.Empty(t, orgs)
}

func TestBaseDelayIsApplied(t *testing.T) {
	f := newAPIFixture(t)
	slow := NewAPIService(f.repo, f.tokens, f.sessions, APIConfig{BaseDelay: 30 * time.Millisecond}, zap.NewNop(), nil)

	start := time.Now()
	_, err := slow.GetTenants(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}
