package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"account-provisioner/internal/domain/principal"
	"account-provisioner/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

const (
	ctxSubjectKey = "subject"
	ctxRoleKey    = "role"
)

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(authHeader[len("Bearer "):])
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "Access token required"},
			})
			c.Abort()
			return
		}

		subject, role, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "Invalid or expired token"},
			})
			c.Abort()
			return
		}

		c.Set(ctxSubjectKey, subject)
		c.Set(ctxRoleKey, role)
		c.Set("jwt_claims", map[string]any{
			"subject": subject,
			"role":    string(role),
		})
		c.Next()
	}
}

// RequireRole admits callers holding any of the allowed roles. It must run
// after RequireAuth.
func (m *AuthMiddleware) RequireRole(allowed ...principal.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"message": "Internal server error"},
			})
			c.Abort()
			return
		}

		if !slices.Contains(allowed, role) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": gin.H{"message": "Insufficient permissions"},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetSubject returns the ledger account named in the caller's token.
func GetSubject(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxSubjectKey)
	if !exists {
		return "", false
	}
	subject, ok := v.(string)
	return subject, ok && subject != ""
}

func GetRole(c *gin.Context) (principal.Role, bool) {
	v, exists := c.Get(ctxRoleKey)
	if !exists {
		return "", false
	}
	role, ok := v.(principal.Role)
	return role, ok
}
