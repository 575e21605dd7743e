// internal/middleware/auth_middleware.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"auth-service/internal/pkg/jwt"
	"auth-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionChecker is the revocation gate consulted on every request.
type SessionChecker interface {
	IsSessionValid(ctx context.Context, sid string) (bool, error)
}

// PermissionChecker answers capability checks for RequirePermission.
type PermissionChecker interface {
	UserHasPermission(ctx context.Context, userID, code string) (bool, error)
}

type AuthMiddleware struct {
	verifier    *jwt.Verifier
	sessions    SessionChecker
	permissions PermissionChecker
	logger      *zap.Logger
}

func NewAuthMiddleware(verifier *jwt.Verifier, sessions SessionChecker, permissions PermissionChecker, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:    verifier,
		sessions:    sessions,
		permissions: permissions,
		logger:      logger,
	}
}

// Auth validates the bearer token and the session behind it. The sid comes
// from the verified claims, or from a raw parse when the claims lack it. A
// token with no recoverable sid is rejected outright even when its signature
// and expiry check out: a cryptographically valid token must never outlive
// its revoked session.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.verifier.VerifyAccessToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		sid := claims.SessionID
		if sid == "" {
			sid = jwt.SessionIDFromToken(token)
		}
		if sid == "" {
			response.Error(c, http.StatusUnauthorized, "token is not bound to a session", nil)
			return
		}

		valid, err := m.sessions.IsSessionValid(c.Request.Context(), sid)
		if err != nil {
			m.logger.Error("session check failed", zap.String("sid", sid), zap.Error(err))
			response.Error(c, http.StatusUnauthorized, "session check failed", nil)
			return
		}
		if !valid {
			response.Error(c, http.StatusUnauthorized, "session is no longer valid", nil)
			return
		}

		// Set user context
		c.Set("user_id", claims.Subject)
		c.Set("username", claims.Username)
		c.Set("email", claims.Email)
		c.Set("account_type", claims.AccountType)
		c.Set("role_ids", claims.RoleIDs)
		c.Set("sid", sid)
		c.Set("raw_token", token)

		c.Next()
	}
}

// RequirePermission requires the user to hold one of the given permission
// codes. MUST be used after Auth().
func (m *AuthMiddleware) RequirePermission(codes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.Error(c, http.StatusForbidden, "authentication required", nil)
			return
		}

		for _, code := range codes {
			allowed, err := m.permissions.UserHasPermission(c.Request.Context(), userID, code)
			if err != nil {
				m.logger.Error("permission check failed",
					zap.String("user_id", userID),
					zap.String("code", code),
					zap.Error(err),
				)
				response.Error(c, http.StatusInternalServerError, "permission check failed", nil)
				return
			}
			if allowed {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "insufficient permissions")
	}
}

// extractToken extracts Bearer token from Authorization header
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}

	return ""
}
