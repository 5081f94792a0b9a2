package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tenantconsole-backend/console-service/services"
	"tenantconsole-backend/shared/database/models"
	apperrors "tenantconsole-backend/shared/errors"
	"tenantconsole-backend/shared/response"
	"tenantconsole-backend/shared/store"
	utils "tenantconsole-backend/shared/utils/auth"
	"tenantconsole-backend/shared/utils/cache"
)

// Context keys set by AuthMiddleware
const (
	ContextUserKey   = "user"
	ContextClaimsKey = "claims"
	ContextAPIKey    = "api"
)

// AuthMiddleware validates the bearer token, checks that its session is still
// live and binds a per-request API session for the token's user.
func AuthMiddleware(tokens *utils.TokenManager, sessions cache.SessionCache, repo store.Repository, api *services.APIService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authenticate(c, tokens, sessions, repo, api, log); err != nil {
			response.Error(c, err)
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware authenticates the request when it carries a valid
// token and lets it through either way.
func OptionalAuthMiddleware(tokens *utils.TokenManager, sessions cache.SessionCache, repo store.Repository, api *services.APIService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = authenticate(c, tokens, sessions, repo, api, log)
		c.Next()
	}
}

func authenticate(c *gin.Context, tokens *utils.TokenManager, sessions cache.SessionCache, repo store.Repository, api *services.APIService, log *zap.Logger) error {
	tokenString := ExtractTokenFromHeader(c.Request)
	if tokenString == "" && websocket.IsWebSocketUpgrade(c.Request) {
		// browsers cannot set headers on websocket handshakes
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		return apperrors.ErrNotAuthenticated
	}

	claims, err := tokens.ValidateJWT(tokenString)
	if err != nil {
		return apperrors.ErrNotAuthenticated
	}

	ctx := c.Request.Context()
	if sessions != nil {
		if _, err := sessions.Get(ctx, claims.ID); err != nil {
			if !errors.Is(err, cache.ErrSessionNotFound) {
				log.Warn("session lookup failed", zap.String("token_id", claims.ID), zap.Error(err))
			}
			return apperrors.ErrNotAuthenticated
		}
	}

	user, err := repo.GetUser(ctx, claims.UserID)
	if err != nil || !user.Active {
		return apperrors.ErrNotAuthenticated
	}

	c.Request = c.Request.WithContext(services.WithAuditActor(ctx, services.AuditActor{
		Name:      user.FullName(),
		Type:      user.UserRole,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}))

	c.Set(ContextUserKey, user)
	c.Set(ContextClaimsKey, claims)
	c.Set(ContextAPIKey, api.ForUser(user))
	return nil
}

// ExtractTokenFromHeader extracts the token from the Authorization header
func ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
		return ""
	}

	return tokenParts[1]
}

// CurrentUser returns the authenticated user of the request.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// CurrentClaims returns the validated token claims of the request.
func CurrentClaims(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}

// API returns the API session bound to the request, falling back to fallback
// on routes that run without AuthMiddleware.
func API(c *gin.Context, fallback *services.APIService) *services.APIService {
	if v, ok := c.Get(ContextAPIKey); ok {
		if api, ok := v.(*services.APIService); ok {
			return api
		}
	}
	return fallback
}
