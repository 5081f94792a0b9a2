package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tenantconsole-backend/shared/database/models"
	"tenantconsole-backend/shared/response"
	"tenantconsole-backend/shared/utils/query"
)

// CreateOrganizationRequest represents request body for creating organization
type CreateOrganizationRequest struct {
	Name        string  `json:"name" binding:"required"`
	Industry    string  `json:"industry"`
	Description string  `json:"description"`
	Email       string  `json:"email"`
	ParentID    *string `json:"parent_id"`
}

// GetOrganizations retrieves the organizations of a tenant
// @Summary Get organizations
// @Description Get the organizations of a tenant, filtered by name
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param name query string false "Case-insensitive name filter"
// @Param page query int false "Page number; enables pagination headers"
// @Param limit query int false "Items per page (default 10, max 100)"
// @Success 200 {object} response.Envelope[[]models.Organization]
// @Failure 403 {object} response.ErrorBody
// @Router /tenants/{id}/organizations [get]
func (h *Handler) GetOrganizations(c *gin.Context) {
	params := query.ParseListParams(c)

	env, err := h.session(c).GetOrganizations(c.Request.Context(), c.Param("id"), params.Filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeList(c, env, params)
}

// CreateOrganization creates an organization in a tenant
// @Summary Create organization
// @Tags organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param request body CreateOrganizationRequest true "Organization"
// @Success 201 {object} response.Envelope[models.Organization]
// @Failure 422 {object} response.ErrorBody "Invalid parent"
// @Router /tenants/{id}/organizations [post]
func (h *Handler) CreateOrganization(c *gin.Context) {
	var req CreateOrganizationRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	env, err := h.session(c).CreateOrganization(c.Request.Context(), c.Param("id"), models.Organization{
		Name:        req.Name,
		Industry:    req.Industry,
		Description: req.Description,
		Email:       req.Email,
		ParentID:    req.ParentID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, env)
}

// UpdateOrganization updates an organization
// @Summary Update organization
// @Description Merge the given fields into the organization; an empty parent_id clears the parent
// @Tags organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Organization ID"
// @Param request body models.OrganizationPatch true "Fields to change"
// @Success 200 {object} response.Envelope[models.Organization]
// @Failure 404 {object} response.ErrorBody
// @Router /organizations/{id} [put]
func (h *Handler) UpdateOrganization(c *gin.Context) {
	var patch models.OrganizationPatch
	if !bindJSON(c, &patch) {
		return
	}
	if !h.ownsOrganization(c, c.Param("id")) {
		return
	}

	env, err := h.session(c).UpdateOrganization(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, env)
}

// DeleteOrganization deletes an organization
// @Summary Delete organization
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Organization ID"
// @Success 200 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /organizations/{id} [delete]
func (h *Handler) DeleteOrganization(c *gin.Context) {
	if !h.ownsOrganization(c, c.Param("id")) {
		return
	}

	env, err := h.session(c).DeleteOrganization(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, env)
}

func (h *Handler) ownsOrganization(c *gin.Context, id string) bool {
	org, err := h.repo.GetOrganization(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return false
	}
	return ownsTenant(c, org.TenantID)
}
