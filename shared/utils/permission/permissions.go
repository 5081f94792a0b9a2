package permission

// Permission is a "resource.action" grant carried by a tenant role.
type Permission string

const (
	PermUserCreate         Permission = "user.create"
	PermUserRead           Permission = "user.read"
	PermUserUpdate         Permission = "user.update"
	PermUserDelete         Permission = "user.delete"
	PermRoleCreate         Permission = "role.create"
	PermRoleRead           Permission = "role.read"
	PermRoleUpdate         Permission = "role.update"
	PermRoleDelete         Permission = "role.delete"
	PermOrganizationCreate Permission = "organization.create"
	PermOrganizationRead   Permission = "organization.read"
	PermOrganizationUpdate Permission = "organization.update"
	PermOrganizationDelete Permission = "organization.delete"
	PermTenantRead         Permission = "tenant.read"
	PermTenantUpdate       Permission = "tenant.update"
	PermSettingsRead       Permission = "settings.read"
	PermSettingsUpdate     Permission = "settings.update"
	PermReportsRead        Permission = "reports.read"
	PermReportsCreate      Permission = "reports.create"
	PermAPIRead            Permission = "api.read"
)

// Role names with a predefined permission set.
const (
	RoleNameAdministrator = "Administrator"
	RoleNameManager       = "Manager"
	RoleNameUser          = "User"
	RoleNameHRSpecialist  = "HR Specialist"
	RoleNameDeveloper     = "Developer"
)

// RolePermissions maps tenant role names to their default grants.
var RolePermissions = map[string][]Permission{
	RoleNameAdministrator: {
		PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete,
		PermRoleCreate, PermRoleRead, PermRoleUpdate, PermRoleDelete,
		PermOrganizationCreate, PermOrganizationRead, PermOrganizationUpdate, PermOrganizationDelete,
		PermTenantRead, PermTenantUpdate,
		PermSettingsRead, PermSettingsUpdate,
		PermReportsRead, PermReportsCreate,
	},
	RoleNameManager: {
		PermUserRead, PermUserUpdate,
		PermRoleRead,
		PermOrganizationRead, PermOrganizationUpdate,
		PermReportsRead,
	},
	RoleNameUser: {
		PermUserRead,
		PermOrganizationRead,
	},
	RoleNameHRSpecialist: {
		PermUserCreate, PermUserRead, PermUserUpdate,
		PermRoleRead,
		PermOrganizationRead,
		PermReportsRead,
	},
	RoleNameDeveloper: {
		PermUserRead,
		PermOrganizationRead,
		PermAPIRead,
	},
}

// DefaultPermissions returns the grants of roleName as strings; unknown
// names get the User set. The result is a fresh slice.
func DefaultPermissions(roleName string) []string {
	perms, ok := RolePermissions[roleName]
	if !ok {
		perms = RolePermissions[RoleNameUser]
	}
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
