// Package store defines the system of record used by the console services.
package store

import (
	"context"
	"strings"

	"tenantconsole-backend/shared/database/models"
)

// ListFilter narrows tenant-scoped list operations.
// Empty fields match everything; matching is case-insensitive substring.
type ListFilter struct {
	Name  string `form:"name"`
	Email string `form:"email"`
}

// MatchName reports whether name satisfies the filter's Name.
func (f ListFilter) MatchName(name string) bool {
	return containsFold(name, f.Name)
}

// MatchEmail reports whether email satisfies the filter's Email.
func (f ListFilter) MatchEmail(email string) bool {
	return containsFold(email, f.Email)
}

func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// TenantBundle is everything onboarding writes for a new tenant.
// SaveTenantBundle commits it all or nothing.
type TenantBundle struct {
	Tenant        models.Tenant
	Organizations []models.Organization
	Roles         []models.Role
	Users         []models.User
	UserRoles     []models.UserRoleLink
	Settings      models.TenantSettings
	Progress      models.SetupProgress
	Audit         models.AuditLogEntry
}

// Repository is the system of record. Implementations must be safe for
// concurrent use. Get/Update/Delete of a missing record return an error
// wrapping errors.ErrNotFound.
type Repository interface {
	ListTenants(ctx context.Context) ([]models.Tenant, error)
	GetTenant(ctx context.Context, id string) (*models.Tenant, error)
	CreateTenant(ctx context.Context, t *models.Tenant) error
	UpdateTenant(ctx context.Context, t *models.Tenant) error
	// DeleteTenant removes the tenant with all its organizations, users,
	// user-role links, roles, privileges, legal entities, settings and
	// setup progress. Audit entries are kept.
	DeleteTenant(ctx context.Context, id string) error

	ListOrganizations(ctx context.Context, tenantID string, f ListFilter) ([]models.Organization, error)
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
	CreateOrganization(ctx context.Context, o *models.Organization) error
	UpdateOrganization(ctx context.Context, o *models.Organization) error
	DeleteOrganization(ctx context.Context, id string) error

	ListUsers(ctx context.Context, tenantID string, f ListFilter) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// FindUsersByEmail returns every user, across tenants, whose email
	// matches case-insensitively, oldest first. Password hashes are included.
	FindUsersByEmail(ctx context.Context, email string) ([]models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error

	ListRoles(ctx context.Context, tenantID string, f ListFilter) ([]models.Role, error)
	GetRole(ctx context.Context, id string) (*models.Role, error)
	CreateRole(ctx context.Context, r *models.Role) error

	ListUserRoles(ctx context.Context, userID string) ([]models.UserRoleLink, error)
	CreateUserRole(ctx context.Context, link *models.UserRoleLink) error

	ListPrivileges(ctx context.Context, tenantID string, f ListFilter) ([]models.Privilege, error)
	CreatePrivilege(ctx context.Context, p *models.Privilege) error

	ListLegalEntities(ctx context.Context, tenantID string, f ListFilter) ([]models.LegalEntity, error)
	GetLegalEntity(ctx context.Context, id string) (*models.LegalEntity, error)
	CreateLegalEntity(ctx context.Context, e *models.LegalEntity) error
	UpdateLegalEntity(ctx context.Context, e *models.LegalEntity) error

	AppendAudit(ctx context.Context, e *models.AuditLogEntry) error
	ListAudit(ctx context.Context, tenantID string) ([]models.AuditLogEntry, error)

	GetSettings(ctx context.Context, tenantID string) (*models.TenantSettings, error)
	SaveSettings(ctx context.Context, s *models.TenantSettings) error

	GetProgress(ctx context.Context, tenantID string) (*models.SetupProgress, error)
	SaveProgress(ctx context.Context, p *models.SetupProgress) error

	SaveTenantBundle(ctx context.Context, b *TenantBundle) error
}
