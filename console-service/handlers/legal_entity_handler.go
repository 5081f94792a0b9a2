package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tenantconsole-backend/shared/database/models"
	"tenantconsole-backend/shared/response"
	"tenantconsole-backend/shared/utils/query"
)

// CreateLegalEntityRequest represents request body for creating legal entity
type CreateLegalEntityRequest struct {
	Name               string `json:"name" binding:"required"`
	EntityType         string `json:"entity_type"`
	Jurisdiction       string `json:"jurisdiction"`
	RegistrationNumber string `json:"registration_number"`
}

// GetLegalEntities retrieves the legal entities of a tenant
// @Summary Get legal entities
// @Tags legal-entities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param name query string false "Case-insensitive name filter"
// @Success 200 {object} response.Envelope[[]models.LegalEntity]
// @Router /tenants/{id}/legal-entities [get]
func (h *Handler) GetLegalEntities(c *gin.Context) {
	params := query.ParseListParams(c)

	env, err := h.session(c).GetLegalEntities(c.Request.Context(), c.Param("id"), params.Filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeList(c, env, params)
}

// CreateLegalEntity creates a legal entity
// @Summary Create legal entity
// @Tags legal-entities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param request body CreateLegalEntityRequest true "Legal entity"
// @Success 201 {object} response.Envelope[models.LegalEntity]
// @Router /tenants/{id}/legal-entities [post]
func (h *Handler) CreateLegalEntity(c *gin.Context) {
	var req CreateLegalEntityRequest
	if !bindJSON(c, &req) {
		return
	}

	env, err := h.session(c).CreateLegalEntity(c.Request.Context(), c.Param("id"), models.LegalEntity{
		Name:               req.Name,
		EntityType:         req.EntityType,
		Jurisdiction:       req.Jurisdiction,
		RegistrationNumber: req.RegistrationNumber,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, env)
}

// UpdateLegalEntity updates a legal entity
// @Summary Update legal entity
// @Tags legal-entities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Legal entity ID"
// @Param request body models.LegalEntityPatch true "Fields to change"
// @Success 200 {object} response.Envelope[models.LegalEntity]
// @Failure 404 {object} response.ErrorBody
// @Router /legal-entities/{id} [put]
func (h *Handler) UpdateLegalEntity(c *gin.Context) {
	var patch models.LegalEntityPatch
	if !bindJSON(c, &patch) {
		return
	}

	entity, err := h.repo.GetLegalEntity(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !ownsTenant(c, entity.TenantID) {
		return
	}

	env, err := h.session(c).UpdateLegalEntity(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, env)
}
