package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"tenantconsole-backend/shared/database/models"
	apperrors "tenantconsole-backend/shared/errors"
	"tenantconsole-backend/shared/store"

	"github.com/google/uuid"
)

var _ store.Repository = (*Repository)(nil)

// Repository implements store.Repository in process memory.
// Records are cloned on the way in and out so callers never share state
// with the store. Concurrent writers to one record are last-writer-wins.
type Repository struct {
	mu sync.RWMutex

	tenants       *table[models.Tenant]
	organizations *table[models.Organization]
	users         *table[models.User]
	roles         *table[models.Role]
	userRoles     []models.UserRoleLink
	privileges    *table[models.Privilege]
	legalEntities *table[models.LegalEntity]
	audit         []models.AuditLogEntry
	settings      map[string]*models.TenantSettings
	progress      map[string]*models.SetupProgress
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		tenants:       newTable[models.Tenant](),
		organizations: newTable[models.Organization](),
		users:         newTable[models.User](),
		roles:         newTable[models.Role](),
		privileges:    newTable[models.Privilege](),
		legalEntities: newTable[models.LegalEntity](),
		settings:      make(map[string]*models.TenantSettings),
		progress:      make(map[string]*models.SetupProgress),
	}
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// Tenants

func (r *Repository) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Tenant, 0, len(r.tenants.order))
	r.tenants.each(func(t *models.Tenant) bool {
		result = append(result, *t)
		return true
	})
	return result, nil
}

func (r *Repository) GetTenant(ctx context.Context, id string) (*models.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tenants.get(id)
	if !ok {
		return nil, apperrors.NotFound("tenant", id)
	}
	return clonePlain(t), nil
}

func (r *Repository) CreateTenant(ctx context.Context, t *models.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ensureID(&t.ID)
	if _, exists := r.tenants.get(t.ID); exists {
		return fmt.Errorf("tenant %s already exists", t.ID)
	}
	r.tenants.put(t.ID, clonePlain(t))
	return nil
}

func (r *Repository) UpdateTenant(ctx context.Context, t *models.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tenants.get(t.ID); !exists {
		return apperrors.NotFound("tenant", t.ID)
	}
	r.tenants.put(t.ID, clonePlain(t))
	return nil
}

func (r *Repository) DeleteTenant(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tenants.get(id); !exists {
		return apperrors.NotFound("tenant", id)
	}

	inTenant := func(tenantID string) bool { return tenantID == id }
	r.organizations.removeWhere(func(o *models.Organization) bool { return inTenant(o.TenantID) })
	removedUsers := r.users.removeWhere(func(u *models.User) bool { return inTenant(u.TenantID) })
	removedRoles := r.roles.removeWhere(func(ro *models.Role) bool { return inTenant(ro.TenantID) })
	r.privileges.removeWhere(func(p *models.Privilege) bool { return inTenant(p.TenantID) })
	r.legalEntities.removeWhere(func(e *models.LegalEntity) bool { return inTenant(e.TenantID) })

	gone := make(map[string]struct{}, len(removedUsers)+len(removedRoles))
	for _, id := range removedUsers {
		gone[id] = struct{}{}
	}
	for _, id := range removedRoles {
		gone[id] = struct{}{}
	}
	links := r.userRoles[:0]
	for _, link := range r.userRoles {
		_, userGone := gone[link.UserID]
		_, roleGone := gone[link.RoleID]
		if userGone || roleGone {
			continue
		}
		links = append(links, link)
	}
	r.userRoles = links

	delete(r.settings, id)
	delete(r.progress, id)
	r.tenants.remove(id)
	return nil
}

// Organizations

func (r *Repository) organizationUserCount(orgID string) int {
	n := 0
	r.users.each(func(u *models.User) bool {
		if u.OrganizationID != nil && *u.OrganizationID == orgID {
			n++
		}
		return true
	})
	return n
}

func (r *Repository) ListOrganizations(ctx context.Context, tenantID string, f store.ListFilter) ([]models.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []models.Organization{}
	r.organizations.each(func(o *models.Organization) bool {
		if o.TenantID == tenantID && f.MatchName(o.Name) {
			c := cloneOrganization(o)
			c.UserCount = r.organizationUserCount(o.ID)
			result = append(result, *c)
		}
		return true
	})
	return result, nil
}

func (r *Repository) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.organizations.get(id)
	if !ok {
		return nil, apperrors.NotFound("organization", id)
	}
	c := cloneOrganization(o)
	c.UserCount = r.organizationUserCount(id)
	return c, nil
}

// checkParent requires parentID, when set, to name an organization of tenantID
// that is neither self nor one of its descendants.
func (r *Repository) checkParent(tenantID, self string, parentID *string) error {
	if parentID == nil {
		return nil
	}
	parent, ok := r.organizations.get(*parentID)
	if !ok || parent.TenantID != tenantID || parent.ID == self {
		return fmt.Errorf("parent %s: %w", *parentID, apperrors.ErrInvalidParent)
	}
	if store.ParentCycle(self, *parentID, r.parentOf) {
		return fmt.Errorf("organization hierarchy has a cycle: %w", apperrors.ErrInvalidParent)
	}
	return nil
}

func (r *Repository) parentOf(id string) string {
	if o, ok := r.organizations.get(id); ok && o.ParentID != nil {
		return *o.ParentID
	}
	return ""
}

func (r *Repository) CreateOrganization(ctx context.Context, o *models.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tenants.get(o.TenantID); !ok {
		return apperrors.NotFound("tenant", o.TenantID)
	}
	ensureID(&o.ID)
	if err := r.checkParent(o.TenantID, o.ID, o.ParentID); err != nil {
		return err
	}
	r.organizations.put(o.ID, cloneOrganization(o))
	return nil
}

func (r *Repository) UpdateOrganization(ctx context.Context, o *models.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.organizations.get(o.ID)
	if !ok {
		return apperrors.NotFound("organization", o.ID)
	}
	if err := r.checkParent(existing.TenantID, o.ID, o.ParentID); err != nil {
		return err
	}
	c := cloneOrganization(o)
	c.TenantID = existing.TenantID
	r.organizations.put(o.ID, c)
	return nil
}

func (r *Repository) DeleteOrganization(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.organizations.get(id); !ok {
		return apperrors.NotFound("organization", id)
	}
	r.organizations.remove(id)

	// Children become roots and members become unassigned.
	r.organizations.each(func(o *models.Organization) bool {
		if o.ParentID != nil && *o.ParentID == id {
			o.ParentID = nil
		}
		return true
	})
	r.users.each(func(u *models.User) bool {
		if u.OrganizationID != nil && *u.OrganizationID == id {
			u.OrganizationID = nil
		}
		return true
	})
	return nil
}

// Users

func (r *Repository) ListUsers(ctx context.Context, tenantID string, f store.ListFilter) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []models.User{}
	r.users.each(func(u *models.User) bool {
		if u.TenantID == tenantID && f.MatchEmail(u.Email) {
			result = append(result, cloneUser(u).Sanitized())
		}
		return true
	})
	return result, nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users.get(id)
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	return cloneUser(u), nil
}

// FindUserByEmail returns the first user, in creation order, whose email
// matches case-insensitively. The password hash is included.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *models.User
	r.users.each(func(u *models.User) bool {
		if strings.EqualFold(u.Email, email) {
			found = cloneUser(u)
			return false
		}
		return true
	})
	if found == nil {
		return nil, apperrors.NotFound("user", email)
	}
	return found, nil
}

func (r *Repository) FindUsersByEmail(ctx context.Context, email string) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []models.User{}
	r.users.each(func(u *models.User) bool {
		if strings.EqualFold(u.Email, email) {
			result = append(result, *cloneUser(u))
		}
		return true
	})
	return result, nil
}

func (r *Repository) emailTaken(tenantID, email, except string) bool {
	taken := false
	r.users.each(func(u *models.User) bool {
		if u.TenantID == tenantID && u.ID != except && strings.EqualFold(u.Email, email) {
			taken = true
			return false
		}
		return true
	})
	return taken
}

func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tenants.get(u.TenantID); !ok {
		return apperrors.NotFound("tenant", u.TenantID)
	}
	ensureID(&u.ID)
	if r.emailTaken(u.TenantID, u.Email, u.ID) {
		return fmt.Errorf("%s: %w", u.Email, apperrors.ErrDuplicateEmail)
	}
	r.users.put(u.ID, cloneUser(u))
	return nil
}

func (r *Repository) UpdateUser(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users.get(u.ID)
	if !ok {
		return apperrors.NotFound("user", u.ID)
	}
	if r.emailTaken(existing.TenantID, u.Email, u.ID) {
		return fmt.Errorf("%s: %w", u.Email, apperrors.ErrDuplicateEmail)
	}
	c := cloneUser(u)
	c.TenantID = existing.TenantID
	if c.Password == "" {
		c.Password = existing.Password
	}
	r.users.put(u.ID, c)
	return nil
}

// Roles

func (r *Repository) roleUserCount(roleID string) int {
	n := 0
	for _, link := range r.userRoles {
		if link.RoleID == roleID {
			n++
		}
	}
	return n
}

func (r *Repository) ListRoles(ctx context.Context, tenantID string, f store.ListFilter) ([]models.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []models.Role{}
	r.roles.each(func(ro *models.Role) bool {
		if ro.TenantID == tenantID && f.MatchName(ro.Name) {
			c := cloneRole(ro)
			c.UserCount = r.roleUserCount(ro.ID)
			result = append(result, *c)
		}
		return true
	})
	return result, nil
}

func (r *Repository) GetRole(ctx context.Context, id string) (*models.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ro, ok := r.roles.get(id)
	if !ok {
		return nil, apperrors.NotFound("role", id)
	}
	c := cloneRole(ro)
	c.UserCount = r.roleUserCount(id)
	return c, nil
}

func (r *Repository) CreateRole(ctx context.Context, ro *models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tenants.get(ro.TenantID); !ok {
		return apperrors.NotFound("tenant", ro.TenantID)
	}
	ensureID(&ro.ID)
	r.roles.put(ro.ID, cloneRole(ro))
	return nil
}

func (r *Repository) ListUserRoles(ctx context.Context, userID string) ([]models.UserRoleLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []models.UserRoleLink{}
	for _, link := range r.userRoles {
		if link.UserID == userID {
			result = append(result, link)
		}
	}
	return result, nil
}

func (r *Repository) CreateUserRole(ctx context.Context, link *models.UserRoleLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users.get(link.UserID); !ok {
		return apperrors.NotFound("user", link.UserID)
	}
	if _, ok := r.roles.get(link.RoleID); !ok {
		return apperrors.NotFound("role", link.RoleID)
	}
	for _, existing := range r.userRoles {
		if existing.UserID == link.UserID && existing.RoleID == link.RoleID {
			return nil
		}
	}
	r.userRoles = append(r.userRoles, *link)
	return nil
}

// Privileges

func (r *Repository) ListPrivileges(ctx context.Context, tenantID string, f store.ListFilter) ([]models.Privilege, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []models.Privilege{}
	r.privileges.each(func(p *models.Privilege) bool {
		if p.TenantID == tenantID && f.MatchName(p.Name) {
			result = append(result, *p)
		}
		return true
	})
	return result, nil
}

func (r *Repository) CreatePrivilege(ctx context.Context, p *models.Privilege) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tenants.get(p.TenantID); !ok {
		return apperrors.NotFound("tenant", p.TenantID)
	}
	ensureID(&p.ID)
	r.privileges.put(p.ID, clonePlain(p))
	return nil
}

// Legal entities

func (r *Repository) ListLegalEntities(ctx context.Context, tenantID string, f store.ListFilter) ([]models.LegalEntity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []models.LegalEntity{}
	r.legalEntities.each(func(e *models.LegalEntity) bool {
		if e.TenantID == tenantID && f.MatchName(e.Name) {
			result = append(result, *e)
		}
		return true
	})
	return result, nil
}

func (r *Repository) GetLegalEntity(ctx context.Context, id string) (*models.LegalEntity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.legalEntities.get(id)
	if !ok {
		return nil, apperrors.NotFound("legal entity", id)
	}
	return clonePlain(e), nil
}

func (r *Repository) CreateLegalEntity(ctx context.Context, e *models.LegalEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ensureID(&e.ID)
	r.legalEntities.put(e.ID, clonePlain(e))
	return nil
}

func (r *Repository) UpdateLegalEntity(ctx context.Context, e *models.LegalEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.legalEntities.get(e.ID)
	if !ok {
		return apperrors.NotFound("legal entity", e.ID)
	}
	c := clonePlain(e)
	c.TenantID = existing.TenantID
	r.legalEntities.put(e.ID, c)
	return nil
}

// Audit

func (r *Repository) AppendAudit(ctx context.Context, e *models.AuditLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ensureID(&e.ID)
	r.audit = append(r.audit, *cloneAudit(e))
	return nil
}

// ListAudit returns the entries of tenantID, or every entry when tenantID is empty.
func (r *Repository) ListAudit(ctx context.Context, tenantID string) ([]models.AuditLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []models.AuditLogEntry{}
	for i := range r.audit {
		if tenantID == "" || r.audit[i].TenantID == tenantID {
			result = append(result, *cloneAudit(&r.audit[i]))
		}
	}
	return result, nil
}

// Settings and progress

func (r *Repository) GetSettings(ctx context.Context, tenantID string) (*models.TenantSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.settings[tenantID]
	if !ok {
		return nil, apperrors.NotFound("settings", tenantID)
	}
	return clonePlain(s), nil
}

func (r *Repository) SaveSettings(ctx context.Context, s *models.TenantSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings[s.TenantID] = clonePlain(s)
	return nil
}

func (r *Repository) GetProgress(ctx context.Context, tenantID string) (*models.SetupProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.progress[tenantID]
	if !ok {
		return nil, apperrors.NotFound("setup progress", tenantID)
	}
	return cloneProgress(p), nil
}

func (r *Repository) SaveProgress(ctx context.Context, p *models.SetupProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress[p.TenantID] = cloneProgress(p)
	return nil
}

// SaveTenantBundle validates the whole bundle before writing any of it.
func (r *Repository) SaveTenantBundle(ctx context.Context, b *store.TenantBundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ensureID(&b.Tenant.ID)
	if _, exists := r.tenants.get(b.Tenant.ID); exists {
		return fmt.Errorf("tenant %s already exists", b.Tenant.ID)
	}

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

	roleIDs := make(map[string]struct{}, len(b.Roles))
	for i := range b.Roles {
		ensureID(&b.Roles[i].ID)
		b.Roles[i].TenantID = b.Tenant.ID
		roleIDs[b.Roles[i].ID] = struct{}{}
	}

	emails := make(map[string]struct{}, len(b.Users))
	userIDs := make(map[string]struct{}, len(b.Users))
	for i := range b.Users {
		u := &b.Users[i]
		ensureID(&u.ID)
		u.TenantID = b.Tenant.ID
		key := strings.ToLower(u.Email)
		if _, dup := emails[key]; dup {
			return fmt.Errorf("%s: %w", u.Email, apperrors.ErrDuplicateEmail)
		}
		emails[key] = struct{}{}
		userIDs[u.ID] = struct{}{}
	}

	for _, link := range b.UserRoles {
		if _, ok := userIDs[link.UserID]; !ok {
			return apperrors.NotFound("user", link.UserID)
		}
		if _, ok := roleIDs[link.RoleID]; !ok {
			return apperrors.NotFound("role", link.RoleID)
		}
	}

	r.tenants.put(b.Tenant.ID, clonePlain(&b.Tenant))
	for i := range b.Organizations {
		r.organizations.put(b.Organizations[i].ID, cloneOrganization(&b.Organizations[i]))
	}
	for i := range b.Roles {
		r.roles.put(b.Roles[i].ID, cloneRole(&b.Roles[i]))
	}
	for i := range b.Users {
		r.users.put(b.Users[i].ID, cloneUser(&b.Users[i]))
	}
	r.userRoles = append(r.userRoles, b.UserRoles...)

	b.Settings.TenantID = b.Tenant.ID
	r.settings[b.Tenant.ID] = clonePlain(&b.Settings)
	b.Progress.TenantID = b.Tenant.ID
	r.progress[b.Tenant.ID] = cloneProgress(&b.Progress)
	b.Audit.TenantID = b.Tenant.ID
	b.Audit.ResourceID = b.Tenant.ID
	ensureID(&b.Audit.ID)
	r.audit = append(r.audit, *cloneAudit(&b.Audit))
	return nil
}
