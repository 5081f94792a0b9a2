// Package docs Tenant Console API documentation
package docs

// Swagger documentation info
// @title Tenant Console API
// @version 1.0
// @description Multi-tenant administrative console: authentication, tenant onboarding and tenant administration
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@tenantconsole.local

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

// @tag.name auth
// @tag.description Authentication and user session management
// @tag.name dashboard
// @tag.description Role dashboards and navigation decisions
// @tag.name tenants
// @tag.description Tenant onboarding and lifecycle
// @tag.name organizations
// @tag.description Organization management
// @tag.name users
// @tag.description User management
// @tag.name roles
// @tag.description Role and privilege management
// @tag.name legal-entities
// @tag.description Legal entity management
// @tag.name audit
// @tag.description Live audit stream
