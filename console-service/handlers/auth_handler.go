package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tenantconsole-backend/console-service/middleware"
	"tenantconsole-backend/shared/database/models"
	"tenantconsole-backend/shared/response"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"admin@acme.com"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// Login authenticates a user
// @Summary User login
// @Description Authenticate with email and password and receive access and refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} response.Envelope[services.LoginPayload]
// @Failure 401 {object} response.ErrorBody "Invalid credentials"
// @Failure 422 {object} response.ErrorBody "Malformed request"
// @Failure 429 {object} response.ErrorBody "Too many login attempts"
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	env, err := h.api.ForUser(nil).Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, env)
}

// Logout revokes the current access token
// @Summary User logout
// @Description Revoke the session of the presented access token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	tokenID := ""
	if claims, ok := middleware.CurrentClaims(c); ok {
		tokenID = claims.ID
	}

	env, err := h.session(c).Logout(c.Request.Context(), tokenID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, env)
}

// GetMe returns the current user
// @Summary Current user
// @Description Get the authenticated user with its roles
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope[services.CurrentUser]
// @Failure 401 {object} response.ErrorBody
// @Router /auth/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	env, err := h.session(c).GetCurrentUser(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, env)
}

// UpdateMe updates the current user's profile
// @Summary Update profile
// @Description Update first name, last name, job title or phone of the authenticated user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UserProfilePatch true "Profile fields"
// @Success 200 {object} response.Envelope[models.User]
// @Failure 401 {object} response.ErrorBody
// @Router /auth/me [put]
func (h *Handler) UpdateMe(c *gin.Context) {
	var patch models.UserProfilePatch
	if !bindJSON(c, &patch) {
		return
	}

	env, err := h.session(c).UpdateCurrentUser(c.Request.Context(), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, env)
}
