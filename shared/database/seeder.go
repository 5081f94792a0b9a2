package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tenantconsole-backend/shared/database/models"
	"tenantconsole-backend/shared/store"
	utils "tenantconsole-backend/shared/utils/auth"
	"tenantconsole-backend/shared/utils/permission"
)

// Demo credentials created by SeedDemoData.
const (
	DemoSystemAdminEmail = "admin@system.com"
	DemoTenantAdminEmail = "admin@acme.com"
	DemoUserEmail        = "john@acme.com"
	DemoPassword         = "admin123"

	systemTenantID = "tenant-system"
	acmeTenantID   = "tenant-acme"
	globexTenantID = "tenant-globex"
)

type seedUser struct {
	id, tenantID, orgID, roleID string
	first, last, email, title   string
	userRole                    permission.Role
}

// SeedDemoData fills an empty repository with a system tenant, two customer
// tenants and their organizations, roles, users, privileges and legal
// entities. It is a no-op when the system admin already exists.
func SeedDemoData(ctx context.Context, repo store.Repository, log *zap.Logger) error {
	if _, err := repo.FindUserByEmail(ctx, DemoSystemAdminEmail); err == nil {
		log.Info("demo data already present")
		return nil
	}

	hash, err := utils.HashPassword(DemoPassword)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	now := time.Now().UTC()

	tenants := []models.Tenant{
		{ID: systemTenantID, Name: "System", Industry: "Technology", Email: "ops@system.com"},
		{ID: acmeTenantID, Name: "Acme Corporation", Industry: "Manufacturing", Email: "contact@acme.com", Website: "https://acme.example.com"},
		{ID: globexTenantID, Name: "Globex", Industry: "Finance", Email: "hello@globex.com"},
	}
	for i := range tenants {
		t := &tenants[i]
		t.Active = true
		t.Plan = "Enterprise"
		t.Status = models.TenantStatusActive
		t.OnboardingCompleted = true
		t.CreatedAt, t.UpdatedAt = now, now
		if err := repo.CreateTenant(ctx, t); err != nil {
			return fmt.Errorf("seed tenant %s: %w", t.Name, err)
		}
	}

	orgs := []models.Organization{
		{ID: "org-system", TenantID: systemTenantID, Name: "Platform Operations"},
		{ID: "org-acme-hq", TenantID: acmeTenantID, Name: "Acme Headquarters", Industry: "Manufacturing", Email: "hq@acme.com"},
		{ID: "org-acme-eng", TenantID: acmeTenantID, Name: "Engineering", Industry: "Manufacturing", Email: "eng@acme.com"},
		{ID: "org-globex-hq", TenantID: globexTenantID, Name: "Globex Head Office", Industry: "Finance"},
	}
	acmeHQ := "org-acme-hq"
	orgs[2].ParentID = &acmeHQ
	for i := range orgs {
		o := &orgs[i]
		o.Active = true
		o.CreatedAt, o.UpdatedAt = now, now
		if err := repo.CreateOrganization(ctx, o); err != nil {
			return fmt.Errorf("seed organization %s: %w", o.Name, err)
		}
	}

	roles := []models.Role{
		{ID: "role-system-admin", TenantID: systemTenantID, Name: permission.RoleNameAdministrator, Description: "Platform administrator"},
		{ID: "role-acme-admin", TenantID: acmeTenantID, Name: permission.RoleNameAdministrator, Description: "Full tenant access"},
		{ID: "role-acme-user", TenantID: acmeTenantID, Name: permission.RoleNameUser, Description: "Standard access"},
		{ID: "role-globex-admin", TenantID: globexTenantID, Name: permission.RoleNameAdministrator, Description: "Full tenant access"},
	}
	for i := range roles {
		r := &roles[i]
		r.Permissions = permission.DefaultPermissions(r.Name)
		r.Active = true
		r.CreatedAt, r.UpdatedAt = now, now
		if err := repo.CreateRole(ctx, r); err != nil {
			return fmt.Errorf("seed role %s: %w", r.Name, err)
		}
	}

	users := []seedUser{
		{"user-system-admin", systemTenantID, "org-system", "role-system-admin", "System", "Administrator", DemoSystemAdminEmail, "Platform Administrator", permission.RoleSystemAdmin},
		{"user-acme-admin", acmeTenantID, "org-acme-hq", "role-acme-admin", "Alice", "Admin", DemoTenantAdminEmail, "IT Director", permission.RoleTenantAdmin},
		{"user-acme-john", acmeTenantID, "org-acme-eng", "role-acme-user", "John", "Doe", DemoUserEmail, "Software Engineer", permission.RoleUser},
		{"user-globex-admin", globexTenantID, "org-globex-hq", "role-globex-admin", "Hank", "Scorpio", "admin@globex.com", "CEO", permission.RoleTenantAdmin},
	}
	for _, su := range users {
		orgID, roleID := su.orgID, su.roleID
		roleName := permission.RoleNameUser
		if su.userRole != permission.RoleUser {
			roleName = permission.RoleNameAdministrator
		}
		u := &models.User{
			ID:             su.id,
			TenantID:       su.tenantID,
			OrganizationID: &orgID,
			FirstName:      su.first,
			LastName:       su.last,
			Email:          su.email,
			Password:       hash,
			JobTitle:       su.title,
			RoleID:         &roleID,
			RoleName:       roleName,
			UserRole:       string(su.userRole),
			IsAdmin:        su.userRole != permission.RoleUser,
			Active:         true,
			EmailVerified:  true,
			PasswordSet:    true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := repo.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", su.email, err)
		}
		if err := repo.CreateUserRole(ctx, &models.UserRoleLink{UserID: su.id, RoleID: roleID, CreatedAt: now}); err != nil {
			return fmt.Errorf("seed user role %s: %w", su.email, err)
		}
	}

	privileges := []models.Privilege{
		{TenantID: acmeTenantID, Name: "VIEW_REPORTS", Description: "View analytics reports"},
		{TenantID: acmeTenantID, Name: "MANAGE_USERS", Description: "Create and update users"},
		{TenantID: globexTenantID, Name: "VIEW_REPORTS", Description: "View analytics reports"},
	}
	for i := range privileges {
		privileges[i].CreatedAt = now
		if err := repo.CreatePrivilege(ctx, &privileges[i]); err != nil {
			return fmt.Errorf("seed privilege %s: %w", privileges[i].Name, err)
		}
	}

	entities := []models.LegalEntity{
		{TenantID: acmeTenantID, Name: "Acme Corporation Inc.", EntityType: "Corporation", Jurisdiction: "Delaware", RegistrationNumber: "DE-1234567"},
		{TenantID: acmeTenantID, Name: "Acme Europe GmbH", EntityType: "LLC", Jurisdiction: "Germany", RegistrationNumber: "HRB-98765"},
		{TenantID: globexTenantID, Name: "Globex Holdings Ltd", EntityType: "Limited", Jurisdiction: "United Kingdom", RegistrationNumber: "UK-445566"},
	}
	for i := range entities {
		e := &entities[i]
		e.Status = models.LegalEntityStatusActive
		e.CreatedAt, e.UpdatedAt = now, now
		if err := repo.CreateLegalEntity(ctx, e); err != nil {
			return fmt.Errorf("seed legal entity %s: %w", e.Name, err)
		}
	}

	log.Info("demo data seeded",
		zap.Int("tenants", len(tenants)),
		zap.Int("organizations", len(orgs)),
		zap.Int("users", len(users)))
	return nil
}
