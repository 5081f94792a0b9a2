package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tenantconsole-backend/console-service/middleware"
	"tenantconsole-backend/console-service/services"
	apperrors "tenantconsole-backend/shared/errors"
	"tenantconsole-backend/shared/response"
	"tenantconsole-backend/shared/store"
	"tenantconsole-backend/shared/utils/permission"
	"tenantconsole-backend/shared/utils/query"
)

// Handler serves the console API.
type Handler struct {
	api        *services.APIService
	onboarding *services.OnboardingService
	stream     *services.AuditStream
	repo       store.Repository
	log        *zap.Logger
}

// NewHandler creates the console handlers. stream may be nil, in which case
// the live audit endpoint answers 404.
func NewHandler(api *services.APIService, onboarding *services.OnboardingService, stream *services.AuditStream, repo store.Repository, log *zap.Logger) *Handler {
	return &Handler{
		api:        api,
		onboarding: onboarding,
		stream:     stream,
		repo:       repo,
		log:        log.Named("handlers"),
	}
}

// session returns the API session of the request.
func (h *Handler) session(c *gin.Context) *services.APIService {
	return middleware.API(c, h.api.ForUser(nil))
}

// bindJSON decodes the body into obj, answering 422 on malformed input.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		response.Error(c, &apperrors.ValidationFailedError{Errors: []string{err.Error()}})
		return false
	}
	return true
}

// ownsTenant reports whether the caller may address tenantID, answering 403
// when not.
func ownsTenant(c *gin.Context, tenantID string) bool {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrNotAuthenticated)
		return false
	}
	if permission.ParseRole(user.UserRole).IsSystemAdmin() || user.TenantID == tenantID {
		return true
	}
	response.Forbidden(c, permission.PathDashboard)
	return false
}

// writeList writes items, paginated through headers when the caller asked for a page.
func writeList[T any](c *gin.Context, env response.Envelope[[]T], params query.ListParams) {
	if params.Paginate {
		page, meta := query.Paginate(env.Data, params.Page, params.Limit)
		query.SetPaginationHeaders(c, meta)
		env.Data = page
	}
	response.JSON(c, http.StatusOK, env)
}
