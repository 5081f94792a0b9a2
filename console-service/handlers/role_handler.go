package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tenantconsole-backend/shared/database/models"
	"tenantconsole-backend/shared/response"
	"tenantconsole-backend/shared/utils/query"
)

// CreateRoleRequest represents request body for creating role
type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// CreatePrivilegeRequest represents request body for creating privilege
type CreatePrivilegeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// GetRoles retrieves the roles of a tenant
// @Summary Get roles
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param name query string false "Case-insensitive name filter"
// @Success 200 {object} response.Envelope[[]models.Role]
// @Router /tenants/{id}/roles [get]
func (h *Handler) GetRoles(c *gin.Context) {
	params := query.ParseListParams(c)

	env, err := h.session(c).GetRoles(c.Request.Context(), c.Param("id"), params.Filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeList(c, env, params)
}

// CreateRole creates a custom role
// @Summary Create role
// @Description Create a role; without permissions it gets the default set of its name
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param request body CreateRoleRequest true "Role"
// @Success 201 {object} response.Envelope[models.Role]
// @Router /tenants/{id}/roles [post]
func (h *Handler) CreateRole(c *gin.Context) {
	var req CreateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	env, err := h.session(c).CreateRole(c.Request.Context(), c.Param("id"), models.Role{
		Name:        req.Name,
		Description: req.Description,
		Custom:      true,
		Permissions: req.Permissions,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, env)
}

// GetPrivileges retrieves the privileges of a tenant
// @Summary Get privileges
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param name query string false "Case-insensitive name filter"
// @Success 200 {object} response.Envelope[[]models.Privilege]
// @Router /tenants/{id}/privileges [get]
func (h *Handler) GetPrivileges(c *gin.Context) {
	params := query.ParseListParams(c)

	env, err := h.session(c).GetPrivileges(c.Request.Context(), c.Param("id"), params.Filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeList(c, env, params)
}

// CreatePrivilege creates a privilege
// @Summary Create privilege
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param request body CreatePrivilegeRequest true "Privilege"
// @Success 201 {object} response.Envelope[models.Privilege]
// @Router /tenants/{id}/privileges [post]
func (h *Handler) CreatePrivilege(c *gin.Context) {
	var req CreatePrivilegeRequest
	if !bindJSON(c, &req) {
		return
	}

	env, err := h.session(c).CreatePrivilege(c.Request.Context(), c.Param("id"), models.Privilege{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, env)
}
