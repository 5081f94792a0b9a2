package handlers

import (
	"github.com/gin-gonic/gin"

	"tenantconsole-backend/shared/response"
	"tenantconsole-backend/shared/utils/query"
)

// GetUsers retrieves the users of a tenant
// @Summary Get users
// @Description Get the users of a tenant, filtered by email. Password hashes are never returned
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param email query string false "Case-insensitive email filter"
// @Param page query int false "Page number; enables pagination headers"
// @Param limit query int false "Items per page (default 10, max 100)"
// @Success 200 {object} response.Envelope[[]models.User]
// @Failure 403 {object} response.ErrorBody
// @Router /tenants/{id}/users [get]
func (h *Handler) GetUsers(c *gin.Context) {
	params := query.ParseListParams(c)

	env, err := h.session(c).GetUsers(c.Request.Context(), c.Param("id"), params.Filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeList(c, env, params)
}
