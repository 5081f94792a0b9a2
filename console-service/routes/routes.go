package routes

import (
	"github.com/gin-gonic/gin"

	"tenantconsole-backend/console-service/handlers"
	"tenantconsole-backend/console-service/middleware"
	"tenantconsole-backend/shared/utils/permission"
)

// Guards are the middlewares the console routes are protected with.
type Guards struct {
	Auth         gin.HandlerFunc
	OptionalAuth gin.HandlerFunc
	LoginLimit   gin.HandlerFunc
}

// Register mounts the console API under /api.
func Register(router *gin.Engine, h *handlers.Handler, g Guards) {
	api := router.Group("/api")

	// Auth
	login := []gin.HandlerFunc{h.Login}
	if g.LoginLimit != nil {
		login = append([]gin.HandlerFunc{g.LoginLimit}, login...)
	}
	api.POST("/auth/login", login...)
	api.POST("/auth/logout", g.Auth, h.Logout)
	api.GET("/auth/me", g.Auth, h.GetMe)
	api.PUT("/auth/me", g.Auth, h.UpdateMe)

	api.GET("/navigation", g.OptionalAuth, h.Navigate)

	authed := api.Group("", g.Auth)
	authed.GET("/dashboard", h.GetDashboard)

	systemAdmin := middleware.RequireRoles()
	tenantAdmin := middleware.RequireRoles(permission.RoleTenantAdmin)
	anyRole := middleware.RequireRoles(permission.AllRoles...)
	ownTenant := middleware.RequireTenantScope("id")

	// Tenants (system admin)
	authed.GET("/tenants", systemAdmin, h.GetTenants)
	authed.POST("/tenants", systemAdmin, h.CreateTenant)
	authed.GET("/tenants/stats", systemAdmin, h.GetTenantStats)
	authed.POST("/tenants/onboard", systemAdmin, h.OnboardTenant)
	authed.POST("/tenants/validate", systemAdmin, h.ValidateTenant)
	authed.PUT("/tenants/:id", systemAdmin, h.UpdateTenant)
	authed.DELETE("/tenants/:id", systemAdmin, h.DeleteTenant)
	authed.PATCH("/tenants/:id/status", systemAdmin, h.ToggleTenantStatus)
	authed.GET("/tenants/:id/progress", systemAdmin, h.GetTenantProgress)
	authed.GET("/tenants/:id/report", systemAdmin, h.GetTenantReport)

	// Tenant administration
	authed.GET("/tenants/:id/organizations", tenantAdmin, ownTenant, h.GetOrganizations)
	authed.POST("/tenants/:id/organizations", tenantAdmin, ownTenant, h.CreateOrganization)
	authed.PUT("/organizations/:id", tenantAdmin, h.UpdateOrganization)
	authed.DELETE("/organizations/:id", tenantAdmin, h.DeleteOrganization)
	authed.GET("/tenants/:id/users", tenantAdmin, ownTenant, h.GetUsers)
	authed.GET("/tenants/:id/roles", tenantAdmin, ownTenant, h.GetRoles)
	authed.POST("/tenants/:id/roles", tenantAdmin, ownTenant, h.CreateRole)
	authed.GET("/tenants/:id/privileges", tenantAdmin, ownTenant, h.GetPrivileges)
	authed.POST("/tenants/:id/privileges", tenantAdmin, ownTenant, h.CreatePrivilege)

	// Legal entities are visible to every member of the tenant
	authed.GET("/tenants/:id/legal-entities", anyRole, ownTenant, h.GetLegalEntities)
	authed.POST("/tenants/:id/legal-entities", tenantAdmin, ownTenant, h.CreateLegalEntity)
	authed.PUT("/legal-entities/:id", tenantAdmin, h.UpdateLegalEntity)

	// Live audit stream
	authed.GET("/ws/audit", systemAdmin, h.AuditStream)
}
