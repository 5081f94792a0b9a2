package handlers

import (
	"github.com/gin-gonic/gin"

	"tenantconsole-backend/console-service/middleware"
	apperrors "tenantconsole-backend/shared/errors"
	"tenantconsole-backend/shared/response"
	utils "tenantconsole-backend/shared/utils/auth"
)

// AuditStream upgrades to a websocket streaming audit entries as they are written
// @Summary Live audit stream
// @Description Websocket. Pass the access token in the Authorization header or the token query parameter. Send {"type":"ping"} to receive a pong
// @Tags audit
// @Security BearerAuth
// @Param token query string false "Access token for browser clients"
// @Router /ws/audit [get]
func (h *Handler) AuditStream(c *gin.Context) {
	if h.stream == nil {
		response.Error(c, apperrors.NotFound("audit stream", ""))
		return
	}

	clientID := ""
	if user, ok := middleware.CurrentUser(c); ok {
		clientID = user.ID + ":"
	}
	suffix, err := utils.GenerateSessionID()
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stream.HandleConnection(c, clientID+suffix)
}
