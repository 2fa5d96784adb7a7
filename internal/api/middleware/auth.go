// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates Bearer tokens on protected routes. Webhook routes
// authenticate with the shared service key; user-facing routes carry platform
// tokens that are forwarded downstream.
type AuthMiddleware struct {
	serviceKey string
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(serviceKey string) *AuthMiddleware {
	return &AuthMiddleware{
		serviceKey: serviceKey,
	}
}

// Authenticate returns a gin middleware that validates the Bearer token
// format and stores the token in the context for downstream handlers.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			return
		}
		c.Set("auth_token", token)
		c.Next()
	}
}

// AuthenticateService returns a gin middleware that requires the shared
// service key. Used on webhook routes called by sibling services.
func (m *AuthMiddleware) AuthenticateService() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(m.serviceKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "invalid service key",
			})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"code":    "UNAUTHORIZED",
			"message": "missing authorization header",
		})
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"code":    "UNAUTHORIZED",
			"message": "invalid authorization header format",
		})
		return "", false
	}

	if parts[1] == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"code":    "UNAUTHORIZED",
			"message": "empty token",
		})
		return "", false
	}
	return parts[1], true
}

// GetToken retrieves the auth token from the gin context.
func GetToken(c *gin.Context) string {
	if token, exists := c.Get("auth_token"); exists {
		return token.(string)
	}
	return ""
}
