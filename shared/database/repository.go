package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tenantconsole-backend/shared/database/models"
	apperrors "tenantconsole-backend/shared/errors"
	"tenantconsole-backend/shared/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ store.Repository = (*Repository)(nil)

// Repository implements store.Repository on postgres through gorm.
type Repository struct {
	db *gorm.DB
}

// NewRepository wraps an open gorm connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// notFound translates gorm's missing-row error into the domain one.
func notFound(err error, kind, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(kind, id)
	}
	return err
}

func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

func nameFilter(q *gorm.DB, f store.ListFilter) *gorm.DB {
	if f.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(f.Name))
	}
	return q
}

// Tenants

func (r *Repository) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	var tenants []models.Tenant
	if err := r.db.WithContext(ctx).Order("created_at").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *Repository) GetTenant(ctx context.Context, id string) (*models.Tenant, error) {
	var t models.Tenant
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "tenant", id)
	}
	return &t, nil
}

func (r *Repository) CreateTenant(ctx context.Context, t *models.Tenant) error {
	ensureID(&t.ID)
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *Repository) UpdateTenant(ctx context.Context, t *models.Tenant) error {
	res := r.db.WithContext(ctx).Model(&models.Tenant{}).Where("id = ?", t.ID).Select("*").Omit("created_at").Updates(t)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("tenant", t.ID)
	}
	return nil
}

func (r *Repository) DeleteTenant(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Tenant{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("tenant", id)
		}

		userIDs := tx.Model(&models.User{}).Select("id").Where("tenant_id = ?", id)
		if err := tx.Where("user_id IN (?)", userIDs).Delete(&models.UserRoleLink{}).Error; err != nil {
			return err
		}

		for _, model := range []interface{}{
			&models.Organization{},
			&models.User{},
			&models.Role{},
			&models.Privilege{},
			&models.LegalEntity{},
			&models.TenantSettings{},
			&models.SetupProgress{},
		} {
			if err := tx.Where("tenant_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("delete %T: %w", model, err)
			}
		}
		return nil
	})
}

// Organizations

func (r *Repository) withOrganizationUserCounts(ctx context.Context, orgs []models.Organization) error {
	if len(orgs) == 0 {
		return nil
	}
	ids := make([]string, len(orgs))
	for i, o := range orgs {
		ids[i] = o.ID
	}

	var rows []struct {
		OrganizationID string
		Count          int
	}
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("organization_id, COUNT(*) AS count").
		Where("organization_id IN ?", ids).
		Group("organization_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.OrganizationID] = row.Count
	}
	for i := range orgs {
		orgs[i].UserCount = counts[orgs[i].ID]
	}
	return nil
}

func (r *Repository) ListOrganizations(ctx context.Context, tenantID string, f store.ListFilter) ([]models.Organization, error) {
	orgs := []models.Organization{}
	q := nameFilter(r.db.WithContext(ctx).Where("tenant_id = ?", tenantID), f)
	if err := q.Order("created_at").Find(&orgs).Error; err != nil {
		return nil, err
	}
	if err := r.withOrganizationUserCounts(ctx, orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *Repository) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	var o models.Organization
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "organization", id)
	}
	orgs := []models.Organization{o}
	if err := r.withOrganizationUserCounts(ctx, orgs); err != nil {
		return nil, err
	}
	return &orgs[0], nil
}

func checkParent(tx *gorm.DB, tenantID, self string, parentID *string) error {
	if parentID == nil {
		return nil
	}
	var count int64
	err := tx.Model(&models.Organization{}).
		Where("id = ? AND tenant_id = ? AND id <> ?", *parentID, tenantID, self).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("parent %s: %w", *parentID, apperrors.ErrInvalidParent)
	}

	var orgs []models.Organization
	if err := tx.Select("id", "parent_id").Where("tenant_id = ?", tenantID).Find(&orgs).Error; err != nil {
		return err
	}
	parents := make(map[string]string, len(orgs))
	for _, o := range orgs {
		if o.ParentID != nil {
			parents[o.ID] = *o.ParentID
		}
	}
	if store.ParentCycle(self, *parentID, func(id string) string { return parents[id] }) {
		return fmt.Errorf("organization hierarchy has a cycle: %w", apperrors.ErrInvalidParent)
	}
	return nil
}

func (r *Repository) CreateOrganization(ctx context.Context, o *models.Organization) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Tenant
		if err := tx.First(&t, "id = ?", o.TenantID).Error; err != nil {
			return notFound(err, "tenant", o.TenantID)
		}
		ensureID(&o.ID)
		if err := checkParent(tx, o.TenantID, o.ID, o.ParentID); err != nil {
			return err
		}
		return tx.Create(o).Error
	})
}

func (r *Repository) UpdateOrganization(ctx context.Context, o *models.Organization) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Organization
		if err := tx.First(&existing, "id = ?", o.ID).Error; err != nil {
			return notFound(err, "organization", o.ID)
		}
		if err := checkParent(tx, existing.TenantID, o.ID, o.ParentID); err != nil {
			return err
		}
		o.TenantID = existing.TenantID
		return tx.Model(&existing).Select("*").Omit("created_at").Updates(o).Error
	})
}

// DeleteOrganization removes the organization; its children become roots and
// its members are left without an organization.
func (r *Repository) DeleteOrganization(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Organization{}).Where("parent_id = ?", id).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("organization_id = ?", id).
			Update("organization_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Organization{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("organization", id)
		}
		return nil
	})
}

// Users

func (r *Repository) ListUsers(ctx context.Context, tenantID string, f store.ListFilter) ([]models.User, error) {
	users := []models.User{}
	q := r.db.WithContext(ctx).Omit("password").Where("tenant_id = ?", tenantID)
	if f.Email != "" {
		q = q.Where("LOWER(email) LIKE ?", likePattern(f.Email))
	}
	if err := q.Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user", id)
	}
	return &u, nil
}

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).Order("created_at").First(&u).Error
	if err != nil {
		return nil, notFound(err, "user", email)
	}
	return &u, nil
}

func (r *Repository) FindUsersByEmail(ctx context.Context, email string) ([]models.User, error) {
	users := []models.User{}
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).Order("created_at").Find(&users).Error
	return users, err
}

func emailTaken(tx *gorm.DB, tenantID, email, except string) (bool, error) {
	var count int64
	err := tx.Model(&models.User{}).
		Where("tenant_id = ? AND LOWER(email) = ? AND id <> ?", tenantID, strings.ToLower(email), except).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Tenant
		if err := tx.First(&t, "id = ?", u.TenantID).Error; err != nil {
			return notFound(err, "tenant", u.TenantID)
		}
		ensureID(&u.ID)
		taken, err := emailTaken(tx, u.TenantID, u.Email, u.ID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%s: %w", u.Email, apperrors.ErrDuplicateEmail)
		}
		return tx.Create(u).Error
	})
}

func (r *Repository) UpdateUser(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		if err := tx.First(&existing, "id = ?", u.ID).Error; err != nil {
			return notFound(err, "user", u.ID)
		}
		taken, err := emailTaken(tx, existing.TenantID, u.Email, u.ID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%s: %w", u.Email, apperrors.ErrDuplicateEmail)
		}
		u.TenantID = existing.TenantID
		if u.Password == "" {
			u.Password = existing.Password
		}
		return tx.Model(&existing).Select("*").Omit("created_at").Updates(u).Error
	})
}

// Roles

func (r *Repository) withRoleUserCounts(ctx context.Context, roles []models.Role) error {
	if len(roles) == 0 {
		return nil
	}
	ids := make([]string, len(roles))
	for i, ro := range roles {
		ids[i] = ro.ID
	}

	var rows []struct {
		RoleID string
		Count  int
	}
	err := r.db.WithContext(ctx).Model(&models.UserRoleLink{}).
		Select("role_id, COUNT(*) AS count").
		Where("role_id IN ?", ids).
		Group("role_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.RoleID] = row.Count
	}
	for i := range roles {
		roles[i].UserCount = counts[roles[i].ID]
	}
	return nil
}

func (r *Repository) ListRoles(ctx context.Context, tenantID string, f store.ListFilter) ([]models.Role, error) {
	roles := []models.Role{}
	q := nameFilter(r.db.WithContext(ctx).Where("tenant_id = ?", tenantID), f)
	if err := q.Order("created_at").Find(&roles).Error; err != nil {
		return nil, err
	}
	if err := r.withRoleUserCounts(ctx, roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *Repository) GetRole(ctx context.Context, id string) (*models.Role, error) {
	var ro models.Role
	if err := r.db.WithContext(ctx).First(&ro, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "role", id)
	}
	roles := []models.Role{ro}
	if err := r.withRoleUserCounts(ctx, roles); err != nil {
		return nil, err
	}
	return &roles[0], nil
}

func (r *Repository) CreateRole(ctx context.Context, ro *models.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Tenant
		if err := tx.First(&t, "id = ?", ro.TenantID).Error; err != nil {
			return notFound(err, "tenant", ro.TenantID)
		}
		ensureID(&ro.ID)
		return tx.Create(ro).Error
	})
}

func (r *Repository) ListUserRoles(ctx context.Context, userID string) ([]models.UserRoleLink, error) {
	links := []models.UserRoleLink{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *Repository) CreateUserRole(ctx context.Context, link *models.UserRoleLink) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.Select("id").First(&u, "id = ?", link.UserID).Error; err != nil {
			return notFound(err, "user", link.UserID)
		}
		var ro models.Role
		if err := tx.Select("id").First(&ro, "id = ?", link.RoleID).Error; err != nil {
			return notFound(err, "role", link.RoleID)
		}
		return tx.Where(models.UserRoleLink{UserID: link.UserID, RoleID: link.RoleID}).FirstOrCreate(link).Error
	})
}

// Privileges

func (r *Repository) ListPrivileges(ctx context.Context, tenantID string, f store.ListFilter) ([]models.Privilege, error) {
	privileges := []models.Privilege{}
	q := nameFilter(r.db.WithContext(ctx).Where("tenant_id = ?", tenantID), f)
	if err := q.Order("created_at").Find(&privileges).Error; err != nil {
		return nil, err
	}
	return privileges, nil
}

func (r *Repository) CreatePrivilege(ctx context.Context, p *models.Privilege) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Tenant
		if err := tx.First(&t, "id = ?", p.TenantID).Error; err != nil {
			return notFound(err, "tenant", p.TenantID)
		}
		ensureID(&p.ID)
		return tx.Create(p).Error
	})
}

// Legal entities

func (r *Repository) ListLegalEntities(ctx context.Context, tenantID string, f store.ListFilter) ([]models.LegalEntity, error) {
	entities := []models.LegalEntity{}
	q := nameFilter(r.db.WithContext(ctx).Where("tenant_id = ?", tenantID), f)
	if err := q.Order("created_at").Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *Repository) GetLegalEntity(ctx context.Context, id string) (*models.LegalEntity, error) {
	var e models.LegalEntity
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "legal entity", id)
	}
	return &e, nil
}

func (r *Repository) CreateLegalEntity(ctx context.Context, e *models.LegalEntity) error {
	ensureID(&e.ID)
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *Repository) UpdateLegalEntity(ctx context.Context, e *models.LegalEntity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.LegalEntity
		if err := tx.First(&existing, "id = ?", e.ID).Error; err != nil {
			return notFound(err, "legal entity", e.ID)
		}
		e.TenantID = existing.TenantID
		return tx.Model(&existing).Select("*").Omit("created_at").Updates(e).Error
	})
}

// Audit

func (r *Repository) AppendAudit(ctx context.Context, e *models.AuditLogEntry) error {
	ensureID(&e.ID)
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *Repository) ListAudit(ctx context.Context, tenantID string) ([]models.AuditLogEntry, error) {
	entries := []models.AuditLogEntry{}
	q := r.db.WithContext(ctx)
	if tenantID != "" {
		q = q.Where("tenant_id = ?", tenantID)
	}
	if err := q.Order("timestamp").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Settings and progress

func (r *Repository) GetSettings(ctx context.Context, tenantID string) (*models.TenantSettings, error) {
	var s models.TenantSettings
	if err := r.db.WithContext(ctx).First(&s, "tenant_id = ?", tenantID).Error; err != nil {
		return nil, notFound(err, "settings", tenantID)
	}
	return &s, nil
}

func (r *Repository) SaveSettings(ctx context.Context, s *models.TenantSettings) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *Repository) GetProgress(ctx context.Context, tenantID string) (*models.SetupProgress, error) {
	var p models.SetupProgress
	if err := r.db.WithContext(ctx).First(&p, "tenant_id = ?", tenantID).Error; err != nil {
		return nil, notFound(err, "setup progress", tenantID)
	}
	return &p, nil
}

func (r *Repository) SaveProgress(ctx context.Context, p *models.SetupProgress) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// SaveTenantBundle writes the bundle in one transaction; parents and
// emails are checked against the bundle itself before anything is written.
func (r *Repository) SaveTenantBundle(ctx context.Context, b *store.TenantBundle) error {
	ensureID(&b.Tenant.ID)

	orgIDs := make(map[string]struct{}, len(b.Organizations))
	for i := range b.Organizations {
		ensureID(&b.Organizations[i].ID)
		b.Organizations[i].TenantID = b.Tenant.ID
		orgIDs[b.Organizations[i].ID] = struct{}{}
	}
	for _, o := range b.Organizations {
		if o.ParentID == nil {
			continue
		}
		if _, ok := orgIDs[*o.ParentID]; !ok || *o.ParentID == o.ID {
			return fmt.Errorf("organization %q parent %s: %w", o.Name, *o.ParentID, apperrors.ErrInvalidParent)
		}
	}
	if store.HierarchyCycle(b.Organizations) {
		return fmt.Errorf("organization hierarchy has a cycle: %w", apperrors.ErrInvalidParent)
	}
	for i := range b.Roles {
		ensureID(&b.Roles[i].ID)
		b.Roles[i].TenantID = b.Tenant.ID
	}
	emails := make(map[string]struct{}, len(b.Users))
	for i := range b.Users {
		u := &b.Users[i]
		ensureID(&u.ID)
		u.TenantID = b.Tenant.ID
		key := strings.ToLower(u.Email)
		if _, dup := emails[key]; dup {
			return fmt.Errorf("%s: %w", u.Email, apperrors.ErrDuplicateEmail)
		}
		emails[key] = struct{}{}
	}
	b.Settings.TenantID = b.Tenant.ID
	b.Progress.TenantID = b.Tenant.ID
	b.Audit.TenantID = b.Tenant.ID
	b.Audit.ResourceID = b.Tenant.ID
	ensureID(&b.Audit.ID)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&b.Tenant).Error; err != nil {
			return err
		}
		// Parents first: insert in rounds until every organization whose
		// parent exists has been written.
		pending := b.Organizations
		written := make(map[string]struct{}, len(pending))
		for len(pending) > 0 {
			var next []models.Organization
			for i := range pending {
				o := pending[i]
				if o.ParentID != nil {
					if _, ok := written[*o.ParentID]; !ok {
						next = append(next, o)
						continue
					}
				}
				if err := tx.Create(&o).Error; err != nil {
					return err
				}
				written[o.ID] = struct{}{}
			}
			if len(next) == len(pending) {
				return fmt.Errorf("organization hierarchy has a cycle: %w", apperrors.ErrInvalidParent)
			}
			pending = next
		}
		if len(b.Roles) > 0 {
			if err := tx.Create(&b.Roles).Error; err != nil {
				return err
			}
		}
		if len(b.Users) > 0 {
			if err := tx.Create(&b.Users).Error; err != nil {
				return err
			}
		}
		if len(b.UserRoles) > 0 {
			if err := tx.Create(&b.UserRoles).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(&b.Settings).Error; err != nil {
			return err
		}
		if err := tx.Create(&b.Progress).Error; err != nil {
			return err
		}
		return tx.Create(&b.Audit).Error
	})
}
