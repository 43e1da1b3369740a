package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"realty_messaging/internal/domain"
	"realty_messaging/internal/service"
	apperrors "realty_messaging/pkg/errors"
	"realty_messaging/pkg/logger"
)

const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
	ContextUser     = "user"
)

type AuthMiddleware struct {
	authService service.AuthService
	log         logger.Logger
}

func NewAuthMiddleware(authService service.AuthService, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		log:         log,
	}
}

// RequireAuth accepts a Bearer token in the Authorization header.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		m.authenticate(c, parts[1])
	}
}

// RequireQueryToken reads the token from ?token=, for websocket upgrades
// where browsers cannot set headers.
func (m *AuthMiddleware) RequireQueryToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token query parameter required"})
			return
		}
		m.authenticate(c, token)
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, token string) {
	user, err := m.authService.ValidateToken(c.Request.Context(), token)
	if err != nil {
		status := apperrors.HTTPStatusFromError(err)
		if status != http.StatusUnauthorized {
			m.log.Error("Token validation failed", "error", err)
			c.AbortWithStatusJSON(status, gin.H{"error": apperrors.PublicMessage(err)})
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	c.Set(ContextUserID, user.ID)
	c.Set(ContextUserRole, user.Role)
	c.Set(ContextUser, user)
	c.Next()
}

// CurrentUser returns the user RequireAuth stored on the context.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	value, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := value.(*domain.User)
	return user, ok && user != nil && user.ID != uuid.Nil
}
