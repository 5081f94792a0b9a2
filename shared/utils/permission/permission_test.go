package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleSystemAdmin, ParseRole("system_admin"))
	assert.Equal(t, RoleTenantAdmin, ParseRole(" Tenant_Admin "))
	assert.Equal(t, RoleUser, ParseRole("user"))
	assert.Equal(t, RoleUnknown, ParseRole("superuser"))
	assert.Equal(t, RoleUnknown, ParseRole(""))
	assert.Equal(t, "unknown", RoleUnknown.String())
}

func TestDashboardFor(t *testing.T) {
	assert.Equal(t, ViewSystemAdminDashboard, DashboardFor(RoleSystemAdmin))
	assert.Equal(t, ViewTenantAdminDashboard, DashboardFor(RoleTenantAdmin))
	assert.Equal(t, ViewUserDashboard, DashboardFor(RoleUser))
	assert.Equal(t, ViewUserDashboard, DashboardFor(RoleUnknown))
}

func TestCanAccess(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		allowed []Role
		want    bool
	}{
		{"system admin anywhere", RoleSystemAdmin, []Role{RoleTenantAdmin}, true},
		{"system admin with empty list", RoleSystemAdmin, nil, true},
		{"tenant admin listed", RoleTenantAdmin, []Role{RoleTenantAdmin}, true},
		{"tenant admin not listed", RoleTenantAdmin, []Role{RoleSystemAdmin}, false},
		{"user listed", RoleUser, AllRoles, true},
		{"user not listed", RoleUser, []Role{RoleTenantAdmin}, false},
		{"unknown never", RoleUnknown, AllRoles, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.role, tt.allowed))
		})
	}
}

func TestResolve(t *testing.T) {
	t.Run("unauthenticated is sent to login", func(t *testing.T) {
		d := Resolve(false, RoleUnknown, "/organizations")
		assert.Equal(t, ActionRedirect, d.Action)
		assert.Equal(t, "/login", d.RedirectTo)
	})

	t.Run("login renders for anonymous callers", func(t *testing.T) {
		assert.Equal(t, ActionRender, Resolve(false, RoleUnknown, "/login").Action)
	})

	t.Run("authenticated on login goes to dashboard", func(t *testing.T) {
		d := Resolve(true, RoleUser, "/login")
		assert.Equal(t, ActionRedirect, d.Action)
		assert.Equal(t, "/dashboard", d.RedirectTo)
	})

	t.Run("root goes to dashboard", func(t *testing.T) {
		d := Resolve(true, RoleTenantAdmin, "/")
		assert.Equal(t, ActionRedirect, d.Action)
		assert.Equal(t, "/dashboard", d.RedirectTo)
	})

	t.Run("tenant admin on tenants is denied", func(t *testing.T) {
		d := Resolve(true, RoleTenantAdmin, "/tenants")
		assert.Equal(t, ActionAccessDenied, d.Action)
		assert.Equal(t, "/dashboard", d.RedirectTo)
	})

	t.Run("tenant admin on organizations renders", func(t *testing.T) {
		assert.Equal(t, ActionRender, Resolve(true, RoleTenantAdmin, "/organizations/").Action)
	})

	t.Run("system admin renders every route", func(t *testing.T) {
		for _, r := range Routes {
			assert.Equal(t, ActionRender, Resolve(true, RoleSystemAdmin, r.Path).Action, r.Path)
		}
	})

	t.Run("dashboard carries the role view", func(t *testing.T) {
		d := Resolve(true, RoleTenantAdmin, "/dashboard")
		require.Equal(t, ActionRender, d.Action)
		assert.Equal(t, ViewTenantAdminDashboard, d.View)
		assert.Empty(t, d.Section)
	})

	t.Run("user gets a portal section", func(t *testing.T) {
		d := Resolve(true, RoleUser, "/my-settings?tab=2")
		require.Equal(t, ActionRender, d.Action)
		assert.Equal(t, SectionPreferences, d.Section)
	})

	t.Run("unknown role is denied restricted routes", func(t *testing.T) {
		assert.Equal(t, ActionAccessDenied, Resolve(true, RoleUnknown, "/profile").Action)
	})

	t.Run("unlisted path", func(t *testing.T) {
		assert.Equal(t, ActionNotFound, Resolve(true, RoleUser, "/nowhere").Action)
	})
}

func TestTenantAdminRouting(t *testing.T) {
	role := ParseRole("tenant_admin")

	assert.Equal(t, ViewTenantAdminDashboard, DashboardFor(role))
	assert.False(t, CanAccess(role, []Role{RoleSystemAdmin}))
	assert.True(t, CanAccess(role, []Role{RoleTenantAdmin}))
}

func TestPortalSection(t *testing.T) {
	tests := map[string]string{
		"/dashboard":       SectionOverview,
		"/my-profile":      SectionProfile,
		"/profile":         SectionProfile,
		"/my-organization": SectionOrganization,
		"/legal-entities":  SectionLegalEntities,
		"/activity":        SectionActivity,
		"/security":        SectionSecurity,
		"/settings":        SectionPreferences,
		"/unknown":         SectionOverview,
	}
	for path, want := range tests {
		assert.Equal(t, want, PortalSection(path), path)
	}
}

func TestDefaultPermissions(t *testing.T) {
	admin := DefaultPermissions(RoleNameAdministrator)
	assert.Len(t, admin, 18)
	assert.Contains(t, admin, "tenant.update")

	assert.Equal(t, []string{"user.read", "organization.read", "api.read"}, DefaultPermissions(RoleNameDeveloper))
	assert.Equal(t, []string{"user.read", "organization.read"}, DefaultPermissions("Auditor"))

	perms := DefaultPermissions(RoleNameUser)
	perms[0] = "mutated"
	assert.Equal(t, "user.read", DefaultPermissions(RoleNameUser)[0])
}
