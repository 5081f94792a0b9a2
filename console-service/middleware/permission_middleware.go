package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "tenantconsole-backend/shared/errors"
	"tenantconsole-backend/shared/response"
	"tenantconsole-backend/shared/utils/permission"
)

// CurrentRole returns the role of the authenticated user, or RoleUnknown.
func CurrentRole(c *gin.Context) permission.Role {
	user, ok := CurrentUser(c)
	if !ok {
		return permission.RoleUnknown
	}
	return permission.ParseRole(user.UserRole)
}

// RequireRoles lets the request through when the user's role is in allowed.
// System admins always pass. Everybody else gets Access Denied with an offer
// to go back to the dashboard.
func RequireRoles(allowed ...permission.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			response.Error(c, apperrors.ErrNotAuthenticated)
			return
		}
		if !permission.CanAccess(CurrentRole(c), allowed) {
			response.Forbidden(c, permission.PathDashboard)
			return
		}
		c.Next()
	}
}

// RequireTenantScope restricts the tenant named by the route parameter param
// to its own members. System admins may address any tenant.
func RequireTenantScope(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Error(c, apperrors.ErrNotAuthenticated)
			return
		}
		if CurrentRole(c).IsSystemAdmin() {
			c.Next()
			return
		}
		if c.Param(param) != user.TenantID {
			response.Forbidden(c, permission.PathDashboard)
			return
		}
		c.Next()
	}
}
