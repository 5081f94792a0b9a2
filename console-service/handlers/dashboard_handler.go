package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"tenantconsole-backend/console-service/middleware"
	"tenantconsole-backend/console-service/services"
	"tenantconsole-backend/shared/database/models"
	apperrors "tenantconsole-backend/shared/errors"
	"tenantconsole-backend/shared/response"
	"tenantconsole-backend/shared/store"
	"tenantconsole-backend/shared/utils/permission"
)

// TenantAdminSummary is the headline of the tenant admin dashboard.
type TenantAdminSummary struct {
	TenantID           string `json:"tenant_id"`
	TotalUsers         int    `json:"total_users"`
	ActiveUsers        int    `json:"active_users"`
	TotalOrganizations int    `json:"total_organizations"`
	TotalRoles         int    `json:"total_roles"`
}

// UserPortal is the self-service view of a regular user.
type UserPortal struct {
	Section       string               `json:"section"`
	Profile       services.CurrentUser `json:"profile"`
	Organization  *models.Organization `json:"organization"`
	LegalEntities []models.LegalEntity `json:"legal_entities"`
}

// DashboardResponse carries exactly one of the role specific payloads.
type DashboardResponse struct {
	View        permission.View       `json:"view"`
	TenantStats *services.TenantStats `json:"tenant_stats,omitempty"`
	TenantAdmin *TenantAdminSummary   `json:"tenant_admin,omitempty"`
	Portal      *UserPortal           `json:"portal,omitempty"`
}

// GetDashboard returns the dashboard of the caller's role
// @Summary Role dashboard
// @Description System admins get tenant statistics, tenant admins user/organization/role counts, users their portal
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param path query string false "Portal path selecting the user portal section (default /dashboard)"
// @Success 200 {object} response.Envelope[DashboardResponse]
// @Failure 401 {object} response.ErrorBody
// @Router /dashboard [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrNotAuthenticated)
		return
	}
	role := permission.ParseRole(user.UserRole)
	dashboard := DashboardResponse{View: permission.DashboardFor(role)}

	var err error
	switch dashboard.View {
	case permission.ViewSystemAdminDashboard:
		dashboard.TenantStats, err = h.onboarding.GetTenantStats(c.Request.Context())
	case permission.ViewTenantAdminDashboard:
		dashboard.TenantAdmin, err = h.tenantAdminSummary(c, user.TenantID)
	default:
		dashboard.Portal, err = h.userPortal(c, user, c.DefaultQuery("path", permission.PathDashboard))
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, dashboard, "Dashboard loaded")
}

// tenantAdminSummary loads users, organizations and roles in parallel.
func (h *Handler) tenantAdminSummary(c *gin.Context, tenantID string) (*TenantAdminSummary, error) {
	api := h.session(c)
	summary := &TenantAdminSummary{TenantID: tenantID}

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		env, err := api.GetUsers(ctx, tenantID, store.ListFilter{})
		if err != nil {
			return err
		}
		summary.TotalUsers = len(env.Data)
		for _, u := range env.Data {
			if u.Active {
				summary.ActiveUsers++
			}
		}
		return nil
	})
	g.Go(func() error {
		env, err := api.GetOrganizations(ctx, tenantID, store.ListFilter{})
		if err != nil {
			return err
		}
		summary.TotalOrganizations = len(env.Data)
		return nil
	})
	g.Go(func() error {
		env, err := api.GetRoles(ctx, tenantID, store.ListFilter{})
		if err != nil {
			return err
		}
		summary.TotalRoles = len(env.Data)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

func (h *Handler) userPortal(c *gin.Context, user *models.User, path string) (*UserPortal, error) {
	api := h.session(c)
	portal := &UserPortal{Section: permission.PortalSection(path)}

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		env, err := api.GetCurrentUser(ctx)
		if err != nil {
			return err
		}
		portal.Profile = env.Data
		return nil
	})
	g.Go(func() error {
		env, err := api.GetLegalEntities(ctx, user.TenantID, store.ListFilter{})
		if err != nil {
			return err
		}
		portal.LegalEntities = env.Data
		return nil
	})
	if user.OrganizationID != nil {
		g.Go(func() error {
			org, err := h.repo.GetOrganization(ctx, *user.OrganizationID)
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			portal.Organization = org
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return portal, nil
}

// Navigate resolves a console path for the caller
// @Summary Resolve navigation
// @Description Decide whether the caller may render a console path, must be redirected, or is denied
// @Tags dashboard
// @Produce json
// @Param path query string true "Console path, e.g. /organizations"
// @Success 200 {object} response.Envelope[permission.Decision]
// @Router /navigation [get]
func (h *Handler) Navigate(c *gin.Context) {
	_, authenticated := middleware.CurrentUser(c)
	decision := permission.Resolve(authenticated, middleware.CurrentRole(c), c.DefaultQuery("path", permission.PathRoot))
	response.OK(c, http.StatusOK, decision, "Navigation resolved")
}
