package permission

import "strings"

const (
	PathLogin     = "/login"
	PathRoot      = "/"
	PathDashboard = "/dashboard"
)

// Route is one entry of the console route table.
type Route struct {
	Path    string `json:"path"`
	Allowed []Role `json:"allowed_roles"`
}

// Routes is the console route table.
var Routes = []Route{
	{Path: PathDashboard, Allowed: AllRoles},
	{Path: "/tenants", Allowed: []Role{RoleSystemAdmin}},
	{Path: "/organizations", Allowed: []Role{RoleTenantAdmin}},
	{Path: "/users", Allowed: []Role{RoleTenantAdmin}},
	{Path: "/roles", Allowed: []Role{RoleTenantAdmin}},
	{Path: "/privileges", Allowed: []Role{RoleTenantAdmin}},
	{Path: "/legal-entities", Allowed: AllRoles},
	{Path: "/profile", Allowed: AllRoles},
	{Path: "/my-profile", Allowed: AllRoles},
	{Path: "/my-organization", Allowed: AllRoles},
	{Path: "/activity", Allowed: AllRoles},
	{Path: "/security", Allowed: AllRoles},
	{Path: "/settings", Allowed: AllRoles},
	{Path: "/my-settings", Allowed: AllRoles},
}

// Action is what the UI should do with a navigation.
type Action string

const (
	ActionRender       Action = "render"
	ActionRedirect     Action = "redirect"
	ActionAccessDenied Action = "access_denied"
	ActionNotFound     Action = "not_found"
)

// Decision is the outcome of resolving a path for a caller.
type Decision struct {
	Action     Action `json:"action"`
	Path       string `json:"path"`
	RedirectTo string `json:"redirect_to,omitempty"`
	View       View   `json:"view,omitempty"`
	Section    string `json:"section,omitempty"`
}

// normalizePath strips query, fragment and trailing slashes.
func normalizePath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return PathRoot
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = PathRoot
		}
	}
	return p
}

// FindRoute returns the route table entry for path.
func FindRoute(path string) (Route, bool) {
	path = normalizePath(path)
	for _, r := range Routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Resolve decides what to do when a caller navigates to path.
func Resolve(authenticated bool, role Role, path string) Decision {
	path = normalizePath(path)

	if path == PathLogin {
		if authenticated {
			return Decision{Action: ActionRedirect, Path: path, RedirectTo: PathDashboard}
		}
		return Decision{Action: ActionRender, Path: path}
	}
	if !authenticated {
		return Decision{Action: ActionRedirect, Path: path, RedirectTo: PathLogin}
	}
	if path == PathRoot {
		return Decision{Action: ActionRedirect, Path: path, RedirectTo: PathDashboard}
	}

	route, ok := FindRoute(path)
	if !ok {
		return Decision{Action: ActionNotFound, Path: path}
	}
	if !CanAccess(role, route.Allowed) {
		return Decision{Action: ActionAccessDenied, Path: path, RedirectTo: PathDashboard}
	}

	d := Decision{Action: ActionRender, Path: path}
	if path == PathDashboard {
		d.View = DashboardFor(role)
	}
	if !role.IsSystemAdmin() && !role.IsTenantAdmin() {
		d.Section = PortalSection(path)
	}
	return d
}

// Portal sections of the self-service user portal.
const (
	SectionOverview      = "overview"
	SectionProfile       = "profile"
	SectionOrganization  = "organization"
	SectionLegalEntities = "legal-entities"
	SectionActivity      = "activity"
	SectionSecurity      = "security"
	SectionPreferences   = "preferences"
)

var portalSections = map[string]string{
	"/dashboard":       SectionOverview,
	"/my-profile":      SectionProfile,
	"/profile":         SectionProfile,
	"/my-organization": SectionOrganization,
	"/legal-entities":  SectionLegalEntities,
	"/activity":        SectionActivity,
	"/security":        SectionSecurity,
	"/my-settings":     SectionPreferences,
	"/settings":        SectionPreferences,
}

// PortalSection maps a URL path to the user portal section it shows.
// Unmapped paths show the overview.
func PortalSection(path string) string {
	if s, ok := portalSections[normalizePath(path)]; ok {
		return s
	}
	return SectionOverview
}
