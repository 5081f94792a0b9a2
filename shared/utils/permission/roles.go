// Package permission holds the console's role model: typed roles, the
// allow-list check, the route table and the default permission sets.
package permission

import (
	"slices"
	"strings"
)

// Role is a console role. The set is closed; anything unrecognised parses to RoleUnknown.
type Role string

const (
	RoleSystemAdmin Role = "system_admin"
	RoleTenantAdmin Role = "tenant_admin"
	RoleUser        Role = "user"
	RoleUnknown     Role = ""
)

// AllRoles lists every known role.
var AllRoles = []Role{RoleSystemAdmin, RoleTenantAdmin, RoleUser}

// ParseRole converts a stored or claimed role string into a Role.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleSystemAdmin:
		return RoleSystemAdmin
	case RoleTenantAdmin:
		return RoleTenantAdmin
	case RoleUser:
		return RoleUser
	}
	return RoleUnknown
}

func (r Role) String() string {
	if r == RoleUnknown {
		return "unknown"
	}
	return string(r)
}

func (r Role) IsSystemAdmin() bool { return r == RoleSystemAdmin }
func (r Role) IsTenantAdmin() bool { return r == RoleTenantAdmin }
func (r Role) IsUser() bool        { return r == RoleUser }

// View identifies which dashboard a role lands on.
type View string

const (
	ViewSystemAdminDashboard View = "system_admin_dashboard"
	ViewTenantAdminDashboard View = "tenant_admin_dashboard"
	ViewUserDashboard        View = "user_dashboard"
)

// DashboardFor returns the dashboard view of role; unknown roles get the user view.
func DashboardFor(r Role) View {
	switch r {
	case RoleSystemAdmin:
		return ViewSystemAdminDashboard
	case RoleTenantAdmin:
		return ViewTenantAdminDashboard
	}
	return ViewUserDashboard
}

// CanAccess reports whether r may use something restricted to allowed.
// A system admin is allowed everywhere; an unknown role nowhere.
func CanAccess(r Role, allowed []Role) bool {
	switch r {
	case RoleSystemAdmin:
		return true
	case RoleUnknown:
		return false
	}
	return slices.Contains(allowed, r)
}
