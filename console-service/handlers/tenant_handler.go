package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tenantconsole-backend/console-service/services"
	"tenantconsole-backend/shared/database/models"
	apperrors "tenantconsole-backend/shared/errors"
	"tenantconsole-backend/shared/response"
	"tenantconsole-backend/shared/utils/query"
)

// CreateTenantRequest represents request body for creating a bare tenant
type CreateTenantRequest struct {
	Name        string `json:"name" binding:"required"`
	Industry    string `json:"industry"`
	Description string `json:"description"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	Plan        string `json:"plan"`
}

// TenantStatusRequest represents request body for toggling a tenant
type TenantStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// GetTenants lists all tenants
// @Summary List tenants
// @Description List every tenant of the platform (system admin)
// @Tags tenants
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number; enables pagination headers"
// @Param limit query int false "Items per page (default 10, max 100)"
// @Success 200 {object} response.Envelope[[]models.Tenant]
// @Failure 403 {object} response.ErrorBody
// @Router /tenants [get]
func (h *Handler) GetTenants(c *gin.Context) {
	env, err := h.session(c).GetTenants(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	writeList(c, env, query.ParseListParams(c))
}

// CreateTenant creates a bare tenant
// @Summary Create tenant
// @Description Create a tenant without running the onboarding pipeline
// @Tags tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTenantRequest true "Tenant"
// @Success 201 {object} response.Envelope[models.Tenant]
// @Failure 422 {object} response.ErrorBody
// @Router /tenants [post]
func (h *Handler) CreateTenant(c *gin.Context) {
	var req CreateTenantRequest
	if !bindJSON(c, &req) {
		return
	}

	env, err := h.session(c).CreateTenant(c.Request.Context(), models.Tenant{
		Name:        req.Name,
		Industry:    req.Industry,
		Description: req.Description,
		Email:       req.Email,
		Phone:       req.Phone,
		Website:     req.Website,
		Plan:        req.Plan,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, env)
}

// GetTenantStats returns platform wide tenant statistics
// @Summary Tenant statistics
// @Tags tenants
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope[services.TenantStats]
// @Router /tenants/stats [get]
func (h *Handler) GetTenantStats(c *gin.Context) {
	stats, err := h.onboarding.GetTenantStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, *stats, "Tenant statistics retrieved successfully")
}

// OnboardTenant runs the complete tenant onboarding
// @Summary Onboard tenant
// @Description Validate the wizard payload and atomically create the tenant with its organizations, roles, users and settings
// @Tags tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.TenantSetupRequest true "Onboarding payload"
// @Success 201 {object} response.Envelope[services.TenantSetupResult]
// @Failure 422 {object} response.ErrorBody "Validation failed"
// @Failure 500 {object} response.ErrorBody "Failed to create tenant"
// @Router /tenants/onboard [post]
func (h *Handler) OnboardTenant(c *gin.Context) {
	var req services.TenantSetupRequest
	if !bindJSON(c, &req) {
		return
	}

	if result := h.onboarding.ValidateTenantData(req); !result.IsValid {
		response.Error(c, &apperrors.ValidationFailedError{Errors: result.Errors})
		return
	}

	result, err := h.onboarding.CreateCompleteTenant(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, *result, "Tenant created successfully")
}

// ValidateTenant checks an onboarding payload without creating anything
// @Summary Validate onboarding payload
// @Tags tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.TenantSetupRequest true "Onboarding payload"
// @Success 200 {object} response.Envelope[apperrors.ValidationResult]
// @Router /tenants/validate [post]
func (h *Handler) ValidateTenant(c *gin.Context) {
	var req services.TenantSetupRequest
	if !bindJSON(c, &req) {
		return
	}
	response.OK(c, http.StatusOK, h.onboarding.ValidateTenantData(req), "Validation completed")
}

// GetTenantProgress returns the onboarding progress of a tenant
// @Summary Onboarding progress
// @Tags tenants
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Success 200 {object} response.Envelope[models.SetupProgress]
// @Failure 404 {object} response.ErrorBody
// @Router /tenants/{id}/progress [get]
func (h *Handler) GetTenantProgress(c *gin.Context) {
	progress, err := h.onboarding.GetTenantSetupProgress(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, *progress, "Setup progress retrieved successfully")
}

// GetTenantReport generates the setup report of a tenant
// @Summary Setup report
// @Description Summarise how the tenant was set up; the report is archived when an archive is configured
// @Tags tenants
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Success 200 {object} response.Envelope[services.SetupReport]
// @Failure 404 {object} response.ErrorBody
// @Router /tenants/{id}/report [get]
func (h *Handler) GetTenantReport(c *gin.Context) {
	report, err := h.onboarding.GenerateSetupReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, *report, "Setup report generated successfully")
}

// UpdateTenant updates tenant fields
// @Summary Update tenant
// @Tags tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param request body models.TenantPatch true "Fields to change"
// @Success 200 {object} response.Envelope[models.Tenant]
// @Failure 404 {object} response.ErrorBody
// @Router /tenants/{id} [put]
func (h *Handler) UpdateTenant(c *gin.Context) {
	var patch models.TenantPatch
	if !bindJSON(c, &patch) {
		return
	}

	tenant, err := h.onboarding.UpdateTenant(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, *tenant, "Tenant updated successfully")
}

// ToggleTenantStatus activates or deactivates a tenant
// @Summary Toggle tenant status
// @Tags tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param request body TenantStatusRequest true "New status"
// @Success 200 {object} response.Envelope[services.TenantStatusChange]
// @Failure 404 {object} response.ErrorBody
// @Router /tenants/{id}/status [patch]
func (h *Handler) ToggleTenantStatus(c *gin.Context) {
	var req TenantStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	change, err := h.onboarding.ToggleTenantStatus(c.Request.Context(), c.Param("id"), *req.Active)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Tenant deactivated successfully"
	if change.Active {
		message = "Tenant activated successfully"
	}
	response.OK(c, http.StatusOK, *change, message)
}

// DeleteTenant deletes a tenant and everything it owns
// @Summary Delete tenant
// @Tags tenants
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Success 200 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /tenants/{id} [delete]
func (h *Handler) DeleteTenant(c *gin.Context) {
	if err := h.onboarding.DeleteTenant(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK[any](c, http.StatusOK, nil, "Tenant deleted successfully")
}
