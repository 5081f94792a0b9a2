package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"tenantconsole-backend/shared/database/models"
	apperrors "tenantconsole-backend/shared/errors"
	"tenantconsole-backend/shared/metrics"
	"tenantconsole-backend/shared/store"
	utils "tenantconsole-backend/shared/utils/auth"
	"tenantconsole-backend/shared/utils/permission"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Audit actions
const (
	AuditTenantCreated     = "tenant_created"
	AuditTenantUpdated     = "tenant_updated"
	AuditTenantActivated   = "tenant_activated"
	AuditTenantDeactivated = "tenant_deactivated"
	AuditTenantDeleted     = "tenant_deleted"
)

type TenantInput struct {
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	Description string `json:"description"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
}

// OrganizationInput describes an organization to create. ID is a client
// reference that ParentID and UserInput.OrganizationID may point at.
type OrganizationInput struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Industry    string  `json:"industry"`
	Description string  `json:"description"`
	Email       string  `json:"email"`
	ParentID    *string `json:"parent_id"`
}

type RoleInput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Custom      bool   `json:"custom"`
	Selected    bool   `json:"selected"`
}

type UserInput struct {
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	JobTitle       string  `json:"job_title"`
	Phone          string  `json:"phone"`
	OrganizationID *string `json:"organization_id"`
	IsAdmin        bool    `json:"is_admin"`
}

type SettingsInput struct {
	Theme         string                  `json:"theme"`
	Language      string                  `json:"language"`
	Timezone      string                  `json:"timezone"`
	Notifications bool                    `json:"notifications"`
	Security      models.SecuritySettings `json:"security"`
}

// TenantSetupRequest is the onboarding wizard payload.
type TenantSetupRequest struct {
	Tenant        TenantInput         `json:"tenant"`
	Organizations []OrganizationInput `json:"organizations"`
	Users         []UserInput         `json:"users"`
	Roles         []RoleInput         `json:"roles"`
	Settings      SettingsInput       `json:"settings"`
}

type SetupSummary struct {
	TenantID           string    `json:"tenant_id"`
	TenantName         string    `json:"tenant_name"`
	TotalOrganizations int       `json:"total_organizations"`
	TotalUsers         int       `json:"total_users"`
	TotalRoles         int       `json:"total_roles"`
	SetupCompletedAt   time.Time `json:"setup_completed_at"`
}

// TenantSetupResult is everything onboarding created. Roles holds only the
// selected roles.
type TenantSetupResult struct {
	Tenant        models.Tenant         `json:"tenant"`
	Organizations []models.Organization `json:"organizations"`
	Users         []models.User         `json:"users"`
	Roles         []models.Role         `json:"roles"`
	Settings      models.TenantSettings `json:"settings"`
	Summary       SetupSummary          `json:"summary"`
}

type ComponentsCreated struct {
	Organizations      int  `json:"organizations"`
	Users              int  `json:"users"`
	Roles              int  `json:"roles"`
	SettingsConfigured bool `json:"settings_configured"`
}

type SetupReportData struct {
	SetupDuration     string            `json:"setup_duration"`
	StepsCompleted    int               `json:"steps_completed"`
	TotalSteps        int               `json:"total_steps"`
	SuccessRate       string            `json:"success_rate"`
	ComponentsCreated ComponentsCreated `json:"components_created"`
}

type SetupReport struct {
	TenantID    string          `json:"tenant_id"`
	ReportType  string          `json:"report_type"`
	GeneratedAt time.Time       `json:"generated_at"`
	Data        SetupReportData `json:"data"`
	ArchiveKey  string          `json:"archive_key,omitempty"`
}

type TenantStatusChange struct {
	TenantID  string    `json:"tenant_id"`
	Active    bool      `json:"active"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TenantStats struct {
	TotalTenants        int        `json:"total_tenants"`
	ActiveTenants       int        `json:"active_tenants"`
	InactiveTenants     int        `json:"inactive_tenants"`
	TotalUsers          int        `json:"total_users"`
	TotalOrganizations  int        `json:"total_organizations"`
	TotalRoles          int        `json:"total_roles"`
	AvgUsersPerTenant   float64    `json:"avg_users_per_tenant"`
	LatestTenantCreated *time.Time `json:"latest_tenant_created"`
	GrowthRate          float64    `json:"growth_rate"`
}

// growthWindow is the period GetTenantStats measures growth over.
const growthWindow = 30 * 24 * time.Hour

// OnboardingService orchestrates tenant creation and the tenant lifecycle.
type OnboardingService struct {
	repo        store.Repository
	archive     ReportArchive
	publisher   AuditPublisher
	defaultPlan string
	log         *zap.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewOnboardingService creates the service. archive and publisher may be nil.
func NewOnboardingService(repo store.Repository, archive ReportArchive, publisher AuditPublisher, defaultPlan string, log *zap.Logger, m *metrics.Metrics) *OnboardingService {
	if defaultPlan == "" {
		defaultPlan = "Standard"
	}
	return &OnboardingService{
		repo:        repo,
		archive:     archive,
		publisher:   publisher,
		defaultPlan: defaultPlan,
		log:         log.Named("onboarding"),
		metrics:     m,
		now:         now,
	}
}

func (s *OnboardingService) newAuditEntry(ctx context.Context, tenantID, action string, details map[string]any) models.AuditLogEntry {
	actor := AuditActorFrom(ctx)
	return models.AuditLogEntry{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		Action:       action,
		Actor:        actor.Name,
		ActorType:    actor.Type,
		ResourceType: "tenant",
		ResourceID:   tenantID,
		Details:      details,
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
		Timestamp:    s.now(),
	}
}

// published announces a persisted audit entry.
func (s *OnboardingService) published(entry models.AuditLogEntry) {
	if s.metrics != nil {
		s.metrics.RecordAuditEntry(entry.Action)
	}
	if s.publisher != nil {
		s.publisher.Publish(entry)
	}
}

func (s *OnboardingService) audit(ctx context.Context, tenantID, action string, details map[string]any) error {
	entry := s.newAuditEntry(ctx, tenantID, action, details)
	if err := s.repo.AppendAudit(ctx, &entry); err != nil {
		return fmt.Errorf("append audit %s: %w", action, err)
	}
	s.published(entry)
	return nil
}

// CreateCompleteTenant runs the onboarding pipeline. Every record is
// assembled first and committed in one repository call, so a failure
// leaves nothing behind. All failures are *apperrors.TenantCreationFailedError.
func (s *OnboardingService) CreateCompleteTenant(ctx context.Context, req TenantSetupRequest) (*TenantSetupResult, error) {
	result, err := s.createCompleteTenant(ctx, req)
	if s.metrics != nil {
		s.metrics.RecordOnboarding(err)
	}
	if err != nil {
		s.log.Warn("tenant onboarding failed", zap.String("tenant_name", req.Tenant.Name), zap.Error(err))
		return nil, apperrors.NewTenantCreationFailed(err)
	}
	s.log.Info("tenant onboarded",
		zap.String("tenant_id", result.Tenant.ID),
		zap.Int("organizations", result.Summary.TotalOrganizations),
		zap.Int("users", result.Summary.TotalUsers),
		zap.Int("roles", result.Summary.TotalRoles))
	return result, nil
}

func (s *OnboardingService) createCompleteTenant(ctx context.Context, req TenantSetupRequest) (*TenantSetupResult, error) {
	startedAt := s.now()
	progress := models.SetupProgress{
		StartedAt: startedAt,
		Status:    models.SetupStatusInProgress,
	}

	// Step 1: tenant
	tenant := models.Tenant{
		ID:                  uuid.NewString(),
		Name:                req.Tenant.Name,
		Industry:            req.Tenant.Industry,
		Description:         req.Tenant.Description,
		Email:               req.Tenant.Email,
		Phone:               req.Tenant.Phone,
		Website:             req.Tenant.Website,
		Active:              true,
		Plan:                s.defaultPlan,
		Status:              models.TenantStatusActive,
		OnboardingCompleted: true,
		CreatedAt:           startedAt,
		UpdatedAt:           startedAt,
	}
	progress.TenantID = tenant.ID
	progress.Steps.TenantCreated = true

	// Step 2: organizations
	orgs, refs, err := buildOrganizations(tenant.ID, req.Organizations, startedAt)
	if err != nil {
		return nil, err
	}
	progress.Steps.OrganizationsCreated = true

	// Step 3: roles
	roles := buildRoles(tenant.ID, req.Roles, startedAt)
	progress.Steps.RolesAssigned = true

	// Step 4: users
	users, links, err := buildUsers(tenant.ID, req.Users, refs, roles, startedAt)
	if err != nil {
		return nil, err
	}
	progress.Steps.UsersCreated = true

	// Step 5: settings
	settings := models.TenantSettings{
		TenantID: tenant.ID,
		General: models.GeneralSettings{
			Theme:         req.Settings.Theme,
			Language:      req.Settings.Language,
			Timezone:      req.Settings.Timezone,
			Notifications: req.Settings.Notifications,
		},
		Security: req.Settings.Security,
		Features: models.FeatureFlags{
			AdvancedAnalytics:  true,
			BulkOperations:     true,
			APIAccess:          true,
			CustomIntegrations: false,
		},
		AppliedAt: s.now(),
	}
	progress.Steps.SettingsApplied = true

	// Step 6: audit
	audit := s.newAuditEntry(ctx, tenant.ID, AuditTenantCreated, map[string]any{
		"tenant_name":         tenant.Name,
		"organizations_count": len(orgs),
		"users_count":         len(users),
		"roles_count":         len(roles),
	})

	completedAt := s.now()
	progress.CompletedAt = &completedAt
	progress.Status = models.SetupStatusCompleted
	progress.Recompute()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bundle := &store.TenantBundle{
		Tenant:        tenant,
		Organizations: orgs,
		Roles:         roles,
		Users:         users,
		UserRoles:     links,
		Settings:      settings,
		Progress:      progress,
		Audit:         audit,
	}
	if err := s.repo.SaveTenantBundle(context.WithoutCancel(ctx), bundle); err != nil {
		return nil, err
	}
	s.published(bundle.Audit)

	sanitized := make([]models.User, len(bundle.Users))
	for i, u := range bundle.Users {
		sanitized[i] = u.Sanitized()
	}

	return &TenantSetupResult{
		Tenant:        bundle.Tenant,
		Organizations: bundle.Organizations,
		Users:         sanitized,
		Roles:         bundle.Roles,
		Settings:      bundle.Settings,
		Summary: SetupSummary{
			TenantID:           bundle.Tenant.ID,
			TenantName:         bundle.Tenant.Name,
			TotalOrganizations: len(bundle.Organizations),
			TotalUsers:         len(bundle.Users),
			TotalRoles:         len(bundle.Roles),
			SetupCompletedAt:   completedAt,
		},
	}, nil
}

// buildOrganizations assigns ids and rewrites client-reference parents to them.
// It returns the organizations and the reference-to-id map.
func buildOrganizations(tenantID string, inputs []OrganizationInput, ts time.Time) ([]models.Organization, map[string]string, error) {
	refs := make(map[string]string, len(inputs))
	orgs := make([]models.Organization, len(inputs))
	for i, in := range inputs {
		orgs[i] = models.Organization{
			ID:          uuid.NewString(),
			TenantID:    tenantID,
			Name:        in.Name,
			Industry:    in.Industry,
			Description: in.Description,
			Email:       in.Email,
			Active:      true,
			CreatedAt:   ts,
			UpdatedAt:   ts,
		}
		if in.ID != "" {
			if _, dup := refs[in.ID]; !dup {
				refs[in.ID] = orgs[i].ID
			}
		}
	}

	for i, in := range inputs {
		if in.ParentID == nil || *in.ParentID == "" {
			continue
		}
		parentID, ok := refs[*in.ParentID]
		if !ok || parentID == orgs[i].ID {
			return nil, nil, fmt.Errorf("organization %q parent %q: %w", in.Name, *in.ParentID, apperrors.ErrInvalidParent)
		}
		orgs[i].ParentID = &parentID
	}
	if store.HierarchyCycle(orgs) {
		return nil, nil, fmt.Errorf("organization hierarchy has a cycle: %w", apperrors.ErrInvalidParent)
	}
	return orgs, refs, nil
}

// buildRoles turns the selected descriptors into roles with their default permissions.
func buildRoles(tenantID string, inputs []RoleInput, ts time.Time) []models.Role {
	roles := []models.Role{}
	for _, in := range inputs {
		if !in.Selected {
			continue
		}
		roles = append(roles, models.Role{
			ID:          uuid.NewString(),
			TenantID:    tenantID,
			Name:        in.Name,
			Description: in.Description,
			Custom:      in.Custom,
			Permissions: permission.DefaultPermissions(in.Name),
			Active:      true,
			CreatedAt:   ts,
			UpdatedAt:   ts,
		})
	}
	return roles
}

// roleFor picks the role of a new user: admins get the first Administrator
// role, everybody else the first other role, falling back to the first role.
func roleFor(isAdmin bool, roles []models.Role) *models.Role {
	for i := range roles {
		isAdminRole := roles[i].Name == permission.RoleNameAdministrator
		if isAdmin == isAdminRole {
			return &roles[i]
		}
	}
	if len(roles) > 0 {
		return &roles[0]
	}
	return nil
}

func buildUsers(tenantID string, inputs []UserInput, orgRefs map[string]string, roles []models.Role, ts time.Time) ([]models.User, []models.UserRoleLink, error) {
	users := make([]models.User, 0, len(inputs))
	links := []models.UserRoleLink{}
	seen := make(map[string]struct{}, len(inputs))

	for _, in := range inputs {
		key := strings.ToLower(strings.TrimSpace(in.Email))
		if _, dup := seen[key]; dup {
			return nil, nil, fmt.Errorf("%s: %w", in.Email, apperrors.ErrDuplicateEmail)
		}
		seen[key] = struct{}{}

		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, nil, fmt.Errorf("hash password for %s: %w", in.Email, err)
		}

		userRole := permission.RoleUser
		if in.IsAdmin {
			userRole = permission.RoleTenantAdmin
		}

		user := models.User{
			ID:            uuid.NewString(),
			TenantID:      tenantID,
			FirstName:     in.FirstName,
			LastName:      in.LastName,
			Email:         in.Email,
			Password:      hash,
			JobTitle:      in.JobTitle,
			Phone:         in.Phone,
			RoleName:      permission.RoleNameUser,
			UserRole:      string(userRole),
			IsAdmin:       in.IsAdmin,
			Active:        true,
			EmailVerified: true,
			PasswordSet:   true,
			CreatedAt:     ts,
			UpdatedAt:     ts,
		}
		if in.OrganizationID != nil {
			if orgID, ok := orgRefs[*in.OrganizationID]; ok {
				user.OrganizationID = &orgID
			}
		}
		if role := roleFor(in.IsAdmin, roles); role != nil {
			roleID := role.ID
			user.RoleID = &roleID
			user.RoleName = role.Name
			links = append(links, models.UserRoleLink{UserID: user.ID, RoleID: role.ID, CreatedAt: ts})
		}
		users = append(users, user)
	}
	return users, links, nil
}

// ValidateTenantData checks an onboarding request without touching the store.
func (s *OnboardingService) ValidateTenantData(req TenantSetupRequest) apperrors.ValidationResult {
	result := apperrors.ValidationResult{IsValid: true, Errors: []string{}}

	required := func(value, fieldName string) {
		if err := utils.ValidateRequired(value, fieldName); err != nil {
			result.Add(err.Error())
		}
	}
	checkEmail := func(email, label string) {
		if utils.IsBlank(email) {
			result.Add(label + " email is required")
		} else if utils.ValidateEmail(email) != nil {
			result.Add(label + " email is invalid")
		}
	}

	required(req.Tenant.Name, "Tenant name")
	required(req.Tenant.Industry, "Tenant industry")
	checkEmail(req.Tenant.Email, "Tenant")

	if len(req.Organizations) == 0 {
		result.Add("At least one organization is required")
	}
	for i, org := range req.Organizations {
		label := fmt.Sprintf("Organization %d", i+1)
		required(org.Name, label+" name")
		checkEmail(org.Email, label)
	}

	if len(req.Users) == 0 {
		result.Add("At least one user is required")
	}
	seen := make(map[string]int, len(req.Users))
	for i, user := range req.Users {
		label := fmt.Sprintf("User %d", i+1)
		required(user.FirstName, label+" first name")
		required(user.LastName, label+" last name")
		checkEmail(user.Email, label)
		if user.Password == "" {
			result.Add(label + " password is required")
		}
		if key := strings.ToLower(strings.TrimSpace(user.Email)); key != "" {
			if first, dup := seen[key]; dup {
				result.Add(fmt.Sprintf("%s email duplicates user %d", label, first))
			} else {
				seen[key] = i + 1
			}
		}
	}

	selected := 0
	for _, role := range req.Roles {
		if role.Selected {
			selected++
		}
	}
	if selected == 0 {
		result.Add("At least one role must be selected")
	}

	return result
}

// GetTenantSetupProgress returns the recorded onboarding progress of a tenant.
func (s *OnboardingService) GetTenantSetupProgress(ctx context.Context, tenantID string) (*models.SetupProgress, error) {
	return s.repo.GetProgress(ctx, tenantID)
}

// GenerateSetupReport summarises how a tenant was set up. When an archive is
// configured the report is also stored there.
func (s *OnboardingService) GenerateSetupReport(ctx context.Context, tenantID string) (*SetupReport, error) {
	if _, err := s.repo.GetTenant(ctx, tenantID); err != nil {
		return nil, err
	}

	var components ComponentsCreated
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		orgs, err := s.repo.ListOrganizations(gctx, tenantID, store.ListFilter{})
		components.Organizations = len(orgs)
		return err
	})
	g.Go(func() error {
		users, err := s.repo.ListUsers(gctx, tenantID, store.ListFilter{})
		components.Users = len(users)
		return err
	})
	g.Go(func() error {
		roles, err := s.repo.ListRoles(gctx, tenantID, store.ListFilter{})
		components.Roles = len(roles)
		return err
	})
	g.Go(func() error {
		_, err := s.repo.GetSettings(gctx, tenantID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		components.SettingsConfigured = err == nil
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := SetupReportData{
		SetupDuration:     "unknown",
		TotalSteps:        models.SetupStepsTotal,
		ComponentsCreated: components,
	}

	progress, err := s.repo.GetProgress(ctx, tenantID)
	switch {
	case err == nil:
		data.StepsCompleted = progress.Steps.Completed()
		if progress.CompletedAt != nil {
			data.SetupDuration = progress.CompletedAt.Sub(progress.StartedAt).Round(time.Millisecond).String()
		}
	case errors.Is(err, apperrors.ErrNotFound):
		// Tenants created outside onboarding: infer the steps from the data.
		steps := models.SetupSteps{
			TenantCreated:        true,
			OrganizationsCreated: components.Organizations > 0,
			RolesAssigned:        components.Roles > 0,
			UsersCreated:         components.Users > 0,
			SettingsApplied:      components.SettingsConfigured,
		}
		data.StepsCompleted = steps.Completed()
	default:
		return nil, err
	}
	data.SuccessRate = fmt.Sprintf("%d%%", data.StepsCompleted*100/data.TotalSteps)

	report := &SetupReport{
		TenantID:    tenantID,
		ReportType:  "setup_summary",
		GeneratedAt: s.now(),
		Data:        data,
	}

	if s.archive != nil {
		payload, err := json.Marshal(report)
		if err != nil {
			return nil, fmt.Errorf("marshal report: %w", err)
		}
		key, err := s.archive.Store(ctx, tenantID, payload)
		if err != nil {
			return nil, err
		}
		report.ArchiveKey = key
	}
	return report, nil
}

// UpdateTenant merges patch into the tenant and records which fields changed.
func (s *OnboardingService) UpdateTenant(ctx context.Context, id string, patch models.TenantPatch) (*models.Tenant, error) {
	tenant, err := s.repo.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(tenant)
	if patch.Active != nil && patch.Status == nil {
		tenant.Status = statusFor(tenant.Active)
	}
	tenant.UpdatedAt = s.now()
	if err := s.repo.UpdateTenant(ctx, tenant); err != nil {
		return nil, err
	}

	fields := patch.Fields()
	if fields == nil {
		fields = []string{}
	}
	if err := s.audit(ctx, id, AuditTenantUpdated, map[string]any{
		"updated_fields": fields,
		"tenant_id":      id,
	}); err != nil {
		return nil, err
	}
	return tenant, nil
}

func statusFor(active bool) string {
	if active {
		return models.TenantStatusActive
	}
	return models.TenantStatusInactive
}

// ToggleTenantStatus activates or deactivates a tenant.
func (s *OnboardingService) ToggleTenantStatus(ctx context.Context, id string, active bool) (*TenantStatusChange, error) {
	tenant, err := s.repo.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}

	tenant.Active = active
	tenant.Status = statusFor(active)
	tenant.UpdatedAt = s.now()
	if err := s.repo.UpdateTenant(ctx, tenant); err != nil {
		return nil, err
	}

	action := AuditTenantDeactivated
	if active {
		action = AuditTenantActivated
	}
	if err := s.audit(ctx, id, action, map[string]any{
		"tenant_id":  id,
		"new_status": tenant.Status,
	}); err != nil {
		return nil, err
	}

	return &TenantStatusChange{
		TenantID:  id,
		Active:    active,
		Status:    tenant.Status,
		UpdatedAt: tenant.UpdatedAt,
	}, nil
}

// DeleteTenant removes the tenant and everything it owns. Its audit trail is kept.
func (s *OnboardingService) DeleteTenant(ctx context.Context, id string) error {
	tenant, err := s.repo.GetTenant(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTenant(ctx, id); err != nil {
		return err
	}
	s.log.Info("tenant deleted", zap.String("tenant_id", id))

	return s.audit(ctx, id, AuditTenantDeleted, map[string]any{
		"tenant_id":   id,
		"tenant_name": tenant.Name,
		"deleted_at":  s.now(),
	})
}

// GetTenantStats computes platform-wide tenant totals.
func (s *OnboardingService) GetTenantStats(ctx context.Context) (*TenantStats, error) {
	tenants, err := s.repo.ListTenants(ctx)
	if err != nil {
		return nil, err
	}

	stats := &TenantStats{TotalTenants: len(tenants)}
	cutoff := s.now().Add(-growthWindow)
	recent := 0
	for i := range tenants {
		t := tenants[i]
		if t.Active {
			stats.ActiveTenants++
		} else {
			stats.InactiveTenants++
		}
		if t.CreatedAt.After(cutoff) {
			recent++
		}
		if stats.LatestTenantCreated == nil || t.CreatedAt.After(*stats.LatestTenantCreated) {
			created := t.CreatedAt
			stats.LatestTenantCreated = &created
		}
	}

	type counts struct{ users, orgs, roles int }
	perTenant := make([]counts, len(tenants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range tenants {
		i := i
		g.Go(func() error {
			id := tenants[i].ID
			users, err := s.repo.ListUsers(gctx, id, store.ListFilter{})
			if err != nil {
				return err
			}
			orgs, err := s.repo.ListOrganizations(gctx, id, store.ListFilter{})
			if err != nil {
				return err
			}
			roles, err := s.repo.ListRoles(gctx, id, store.ListFilter{})
			if err != nil {
				return err
			}
			perTenant[i] = counts{users: len(users), orgs: len(orgs), roles: len(roles)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, c := range perTenant {
		stats.TotalUsers += c.users
		stats.TotalOrganizations += c.orgs
		stats.TotalRoles += c.roles
	}
	if stats.TotalTenants > 0 {
		stats.AvgUsersPerTenant = round2(float64(stats.TotalUsers) / float64(stats.TotalTenants))
	}
	if base := stats.TotalTenants - recent; base > 0 {
		stats.GrowthRate = round2(float64(recent) * 100 / float64(base))
	}
	return stats, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
