package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tenantconsole-backend/shared/database/models"
	apperrors "tenantconsole-backend/shared/errors"
	"tenantconsole-backend/shared/metrics"
	"tenantconsole-backend/shared/response"
	"tenantconsole-backend/shared/store"
	"tenantconsole-backend/shared/utils/cache"
	utils "tenantconsole-backend/shared/utils/auth"
	"tenantconsole-backend/shared/utils/permission"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// APIConfig holds the tunables of the mock API.
type APIConfig struct {
	// BaseDelay is the simulated round trip of every call but GetCurrentUser.
	BaseDelay time.Duration
	// ReadDelay is the simulated round trip of GetCurrentUser.
	ReadDelay       time.Duration
	TenantRegionURL string
}

// LoginPayload is returned by Authenticate.
type LoginPayload struct {
	AccessToken     string  `json:"access_token"`
	RefreshToken    string  `json:"refresh_token"`
	TokenType       string  `json:"token_type"`
	ExpiresIn       int64   `json:"expires_in"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	UserID          string  `json:"user_id"`
	TenantID        string  `json:"tenant_id"`
	OrganizationID  *string `json:"organization_id"`
	UserRole        string  `json:"user_role"`
	TenantRegionURL string  `json:"tenant_region_url"`
}

// CurrentUser is the session user with its resolved roles.
type CurrentUser struct {
	models.User
	Roles      []models.Role      `json:"roles"`
	Privileges []models.Privilege `json:"privileges"`
}

// APIService simulates the console REST backend. A value is one client
// session: Authenticate binds the session user, and ForUser derives a new
// session for an already authenticated caller.
type APIService struct {
	repo     store.Repository
	tokens   *utils.TokenManager
	sessions cache.SessionCache
	cfg      APIConfig
	log      *zap.Logger
	metrics  *metrics.Metrics

	mu          sync.RWMutex
	currentUser *models.User
}

func NewAPIService(repo store.Repository, tokens *utils.TokenManager, sessions cache.SessionCache, cfg APIConfig, log *zap.Logger, m *metrics.Metrics) *APIService {
	return &APIService{
		repo:     repo,
		tokens:   tokens,
		sessions: sessions,
		cfg:      cfg,
		log:      log.Named("api"),
		metrics:  m,
	}
}

// ForUser returns a session bound to user, sharing the store and config.
func (s *APIService) ForUser(user *models.User) *APIService {
	session := &APIService{
		repo:     s.repo,
		tokens:   s.tokens,
		sessions: s.sessions,
		cfg:      s.cfg,
		log:      s.log,
		metrics:  s.metrics,
	}
	if user != nil {
		u := *user
		session.currentUser = &u
	}
	return session
}

// CurrentUserID returns the id of the session user, or "".
func (s *APIService) CurrentUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return ""
	}
	return s.currentUser.ID
}

// wait sleeps d unless ctx ends first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// begin waits out the simulated latency. The returned context is detached
// from cancellation so a mutation that has started always completes.
func begin(ctx context.Context, d time.Duration) (context.Context, error) {
	if err := wait(ctx, d); err != nil {
		return ctx, err
	}
	return context.WithoutCancel(ctx), nil
}

// observe records the outcome of one operation.
func (s *APIService) observe(op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.RecordAPICall(op, time.Since(start), err)
	}
	if err != nil {
		s.log.Debug("api call failed", zap.String("operation", op), zap.Error(err))
	}
}

func now() time.Time {
	return time.Now().UTC()
}

// Authentication

// Authenticate checks the credentials and binds the user to the session.
func (s *APIService) Authenticate(ctx context.Context, email, password string) (env response.Envelope[LoginPayload], err error) {
	defer func(start time.Time) { s.observe("Authenticate", start, err) }(time.Now())
	if ctx, err = begin(ctx, s.cfg.BaseDelay); err != nil {
		return env, err
	}

	// Emails are unique per tenant only; the password picks the account.
	candidates, err := s.repo.FindUsersByEmail(ctx, email)
	if err != nil {
		return env, err
	}
	var user *models.User
	for i := range candidates {
		if candidates[i].Active && utils.CheckPassword(candidates[i].Password, password) {
			user = &candidates[i]
			break
		}
	}
	if user == nil {
		return env, apperrors.ErrInvalidCredentials
	}

	subject := utils.Subject{
		UserID:   user.ID,
		Email:    user.Email,
		TenantID: user.TenantID,
		UserRole: user.UserRole,
	}
	if user.OrganizationID != nil {
		subject.OrganizationID = *user.OrganizationID
	}
	access, claims, err := s.tokens.IssueAccessToken(subject)
	if err != nil {
		return env, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshJWT(subject)
	if err != nil {
		return env, fmt.Errorf("issue refresh token: %w", err)
	}

	if s.sessions != nil {
		session := &cache.Session{
			UserID:    user.ID,
			TenantID:  user.TenantID,
			Email:     user.Email,
			UserRole:  user.UserRole,
			IssuedAt:  claims.IssuedAt.Time,
			ExpiresAt: claims.ExpiresAt.Time,
		}
		if err = s.sessions.Set(ctx, claims.ID, session, s.tokens.AccessTTL()); err != nil {
			return env, fmt.Errorf("store session: %w", err)
		}
	}

	loginAt := now()
	user.LastLogin = &loginAt
	if err = s.repo.UpdateUser(ctx, user); err != nil {
		return env, err
	}

	s.mu.Lock()
	bound := *user
	s.currentUser = &bound
	s.mu.Unlock()

	s.log.Info("user authenticated", zap.String("user_id", user.ID), zap.String("tenant_id", user.TenantID))

	return response.Success(LoginPayload{
		AccessToken:     access,
		RefreshToken:    refresh,
		TokenType:       "bearer",
		ExpiresIn:       int64(s.tokens.AccessTTL().Seconds()),
		Name:            user.FullName(),
		Email:           user.Email,
		UserID:          user.ID,
		TenantID:        user.TenantID,
		OrganizationID:  user.OrganizationID,
		UserRole:        user.UserRole,
		TenantRegionURL: s.cfg.TenantRegionURL,
	}, "Login successful"), nil
}

// Logout revokes the session of the token with id tokenID and unbinds the user.
func (s *APIService) Logout(ctx context.Context, tokenID string) (env response.Envelope[any], err error) {
	defer func(start time.Time) { s.observe("Logout", start, err) }(time.Now())

	if s.sessions != nil && tokenID != "" {
		if err = s.sessions.Delete(ctx, tokenID); err != nil {
			return env, err
		}
	}
	s.mu.Lock()
	s.currentUser = nil
	s.mu.Unlock()
	return response.Success[any](nil, "Logout successful"), nil
}

func (s *APIService) sessionUser() (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return nil, apperrors.ErrNotAuthenticated
	}
	u := *s.currentUser
	return &u, nil
}

// GetCurrentUser returns the session user with roles resolved through user-role links.
func (s *APIService) GetCurrentUser(ctx context.Context) (env response.Envelope[CurrentUser], err error) {
	defer func(start time.Time) { s.observe("GetCurrentUser", start, err) }(time.Now())
	if ctx, err = begin(ctx, s.cfg.ReadDelay); err != nil {
		return env, err
	}

	user, err := s.sessionUser()
	if err != nil {
		return env, err
	}

	links, err := s.repo.ListUserRoles(ctx, user.ID)
	if err != nil {
		return env, err
	}
	roles := make([]models.Role, 0, len(links))
	for _, link := range links {
		role, err := s.repo.GetRole(ctx, link.RoleID)
		if errors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return env, err
		}
		roles = append(roles, *role)
	}

	return response.Success(CurrentUser{
		User:       user.Sanitized(),
		Roles:      roles,
		Privileges: []models.Privilege{},
	}, "User profile retrieved"), nil
}

// UpdateCurrentUser merges profile fields into the stored user and the session.
func (s *APIService) UpdateCurrentUser(ctx context.Context, patch models.UserProfilePatch) (env response.Envelope[models.User], err error) {
	defer func(start time.Time) { s.observe("UpdateCurrentUser", start, err) }(time.Now())
	if ctx, err = begin(ctx, s.cfg.BaseDelay); err != nil {
		return env, err
	}

	sessionUser, err := s.sessionUser()
	if err != nil {
		return env, err
	}

	user, err := s.repo.GetUser(ctx, sessionUser.ID)
	if err != nil {
		return env, err
	}
	patch.Apply(user)
	user.UpdatedAt = now()
	if err = s.repo.UpdateUser(ctx, user); err != nil {
		return env, err
	}

	s.mu.Lock()
	bound := *user
	s.currentUser = &bound
	s.mu.Unlock()

	return response.Success(user.Sanitized(), "Profile updated successfully"), nil
}

// Tenants

func (s *APIService) GetTenants(ctx context.Context) (env response.Envelope[[]models.Tenant], err error) {
	defer func(start time.Time) { s.observe("GetTenants", start, err) }(time.Now())
	if ctx, err = begin(ctx, s.cfg.BaseDelay); err != nil {
		return env, err
	}

	tenants, err := s.repo.ListTenants(ctx)
	if err != nil {
		return env, err
	}
	return response.Success(tenants, "Tenants retrieved successfully"), nil
}

func (s *APIService) CreateTenant(ctx context.Context, data models.Tenant) (env response.Envelope[models.Tenant], err error) {
	defer func(start time.Time) { s.observe("CreateTenant", start, err) }(time.Now())
	if ctx, err = begin(ctx, s.cfg.BaseDelay); err != nil {
		return env, err
	}

	ts := now()
	tenant := data
	tenant.ID = uuid.NewString()
	tenant.Active = true
	if tenant.Status == "" {
		tenant.Status = models.TenantStatusActive
	}
	tenant.CreatedAt, tenant.UpdatedAt = ts, ts
	if err = s.repo.CreateTenant(ctx, &tenant); err != nil {
		return env, err
	}
	return response.Success(tenant, "Tenant created successfully"), nil
}

// Organizations

func (s *APIService) GetOrganizations(ctx context.Context, tenantID string, filter store.ListFilter) (env response.Envelope[[]models.Organization], err error) {
	defer func(start time.Time) { s.observe("GetOrganizations", start, err) }(time.Now())
	if ctx, err = begin(ctx, s.cfg.BaseDelay); err != nil {
		return env, err
	}

	orgs, err := s.repo.ListOrganizations(ctx, tenantID, store.ListFilter{Name: filter.Name})
	if err != nil {
		return env, err
	}
	return response.Success(orgs, "Organizations retrieved successfully"), nil
}

func (s *APIService) CreateOrganization(ctx context.Context, tenantID string, data models.Organization) (env response.Envelope[models.Organization], err error) {
	defer func(start time.Time) { s.observe("CreateOrganization", start, err) }(time.Now())
	if ctx, err = begin(ctx, s.cfg.BaseDelay); err != nil {
		return env, err
	}

	ts := now()
	org := data
	org.ID = uuid.NewString()
	org.TenantID = tenantID
	org.Active = true
	org.UserCount = 0
	org.CreatedAt, org.UpdatedAt = ts, ts
	if err = s.repo.CreateOrganization(ctx, &org); err != nil {
		return env, err
	}
	return response.Success(org, "Organization created successfully"), nil
}

func (s *APIService) UpdateOrganization(ctx context.Context, id string, patch models.OrganizationPatch) (env response.Envelope[models.Organization], err error) {
	defer func(start time.Time) { s.observe("UpdateOrganization", start, err) }(time.Now())
	if ctx, err = begin(ctx, s.cfg.BaseDelay); err != nil {
		return env, err
	}

	org, err := s.repo.GetOrganization(ctx, id)
	if err != nil {
		return env, err
	}
	patch.Apply(org)
	org.UpdatedAt = now()
	if err = s.repo.UpdateOrganization(ctx, org); err != nil {
		return env, err
	}
	return response.Success(*org, "Organization updated successfully"), nil
}

func (s *APIService) DeleteOrganization(ctx context.Context, id string) (env response.Envelope[any], err error) {
	defer func(start time.Time) { s.observe("DeleteOrganization", start, err) }(time.Now())
	if ctx, err = begin(ctx, s.cfg.BaseDelay); err != nil {
		return env, err
	}

	if err = s.repo.DeleteOrganization(ctx, id); err != nil {
		return env, err
	}
	return response.Success[any](nil, "Organization deleted successfully"), nil
}

// Users

// GetUsers lists the users of a tenant. Password hashes are never returned.
func (s *APIService) GetUsers(ctx context.Context, tenantID string, filter store.ListFilter) (env response.Envelope[[]models.User], err error) {
	defer func(start time.Time) { s.observe("GetUsers", start, err) }(time.Now())
	if ctx, err = begin(ctx, s.cfg.BaseDelay); err != nil {
		return env, err
	}

	users, err := s.repo.ListUsers(ctx, tenantID, store.ListFilter{Email: filter.Email})
	if err != nil {
		return env, err
	}
	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return response.Success(users, "Users retrieved successfully"), nil
}

// Roles and privileges

func (s *APIService) GetRoles(ctx context.Context, tenantID string, filter store.ListFilter) (env response.Envelope[[]models.Role], err error) {
	defer func(start time.Time) { s.observe("GetRoles", start, err) }(time.Now())
	if ctx, err = begin(ctx, s.cfg.BaseDelay); err != nil {
		return env, err
	}

	roles, err := s.repo.ListRoles(ctx, tenantID, store.ListFilter{Name: filter.Name})
	if err != nil {
		return env, err
	}
	return response.Success(roles, "Roles retrieved successfully"), nil
}

// CreateRole creates a tenant role; without explicit permissions it gets the
// default set of its name.
func (s *APIService) CreateRole(ctx context.Context, tenantID string, data models.Role) (env response.Envelope[models.Role], err error) {
	defer func(start time.Time) { s.observe("CreateRole", start, err) }(time.Now())
	if ctx, err = begin(ctx, s.cfg.BaseDelay); err != nil {
		return env, err
	}

	ts := now()
	role := data
	role.ID = uuid.NewString()
	role.TenantID = tenantID
	role.Active = true
	role.UserCount = 0
	if len(role.Permissions) == 0 {
		role.Permissions = permission.DefaultPermissions(role.Name)
	}
	role.CreatedAt, role.UpdatedAt = ts, ts
	if err = s.repo.CreateRole(ctx, &role); err != nil {
		return env, err
	}
	return response.Success(role, "Role created successfully"), nil
}

func (s *APIService) GetPrivileges(ctx context.Context, tenantID string, filter store.ListFilter) (env response.Envelope[[]models.Privilege], err error) {
	defer func(start time.Time) { s.observe("GetPrivileges", start, err) }(time.Now())
	if ctx, err = begin(ctx, s.cfg.BaseDelay); err != nil {
		return env, err
	}

	privileges, err := s.repo.ListPrivileges(ctx, tenantID, store.ListFilter{Name: filter.Name})
	if err != nil {
		return env, err
	}
	return response.Success(privileges, "Privileges retrieved successfully"), nil
}

func (s *APIService) CreatePrivilege(ctx context.Context, tenantID string, data models.Privilege) (env response.Envelope[models.Privilege], err error) {
	defer func(start time.Time) { s.observe("CreatePrivilege", start, err) }(time.Now())
	if ctx, err = begin(ctx, s.cfg.BaseDelay); err != nil {
		return env, err
	}

	privilege := data
	privilege.ID = uuid.NewString()
	privilege.TenantID = tenantID
	privilege.CreatedAt = now()
	if err = s.repo.CreatePrivilege(ctx, &privilege); err != nil {
		return env, err
	}
	return response.Success(privilege, "Privilege created successfully"), nil
}

// Legal entities

func (s *APIService) GetLegalEntities(ctx context.Context, tenantID string, filter store.ListFilter) (env response.Envelope[[]models.LegalEntity], err error) {
	defer func(start time.Time) { s.observe("GetLegalEntities", start, err) }(time.Now())
	if ctx, err = begin(ctx, s.cfg.BaseDelay); err != nil {
		return env, err
	}

	entities, err := s.repo.ListLegalEntities(ctx, tenantID, store.ListFilter{Name: filter.Name})
	if err != nil {
		return env, err
	}
	return response.Success(entities, "Legal entities retrieved successfully"), nil
}

func (s *APIService) CreateLegalEntity(ctx context.Context, tenantID string, data models.LegalEntity) (env response.Envelope[models.LegalEntity], err error) {
	defer func(start time.Time) { s.observe("CreateLegalEntity", start, err) }(time.Now())
	if ctx, err = begin(ctx, s.cfg.BaseDelay); err != nil {
		return env, err
	}

	ts := now()
	entity := data
	entity.ID = uuid.NewString()
	entity.TenantID = tenantID
	entity.Status = models.LegalEntityStatusActive
	entity.CreatedAt, entity.UpdatedAt = ts, ts
	if err = s.repo.CreateLegalEntity(ctx, &entity); err != nil {
		return env, err
	}
	return response.Success(entity, "Legal entity created successfully"), nil
}

func (s *APIService) UpdateLegalEntity(ctx context.Context, id string, patch models.LegalEntityPatch) (env response.Envelope[models.LegalEntity], err error) {
	defer func(start time.Time) { s.observe("UpdateLegalEntity", start, err) }(time.Now())
	if ctx, err = begin(ctx, s.cfg.BaseDelay); err != nil {
		return env, err
	}

	entity, err := s.repo.GetLegalEntity(ctx, id)
	if err != nil {
		return env, err
	}
	patch.Apply(entity)
	entity.UpdatedAt = now()
	if err = s.repo.UpdateLegalEntity(ctx, entity); err != nil {
		return env, err
	}
	return response.Success(*entity, "Legal entity updated successfully"), nil
}
