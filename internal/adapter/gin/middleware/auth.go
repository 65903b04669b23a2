package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pmblueprints/pkg/logger"
	"pmblueprints/pkg/security"
)

const userIDContextKey = "auth_user_id"

// RequireAuth verifies the bearer token and stores the caller identity
// on the request context.
func RequireAuth(tokens *security.TokenManager, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "missing bearer token",
			})
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			log.Warn("rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "invalid or expired token",
			})
			return
		}

		c.Set(userIDContextKey, claims.UserID)
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// UserID returns the authenticated user ID set by RequireAuth, or 0
// for anonymous requests.
func UserID(c *gin.Context) int64 {
	if v, ok := c.Get(userIDContextKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// OptionalAuth resolves the caller identity when a bearer token is
// present but lets anonymous requests through.
func OptionalAuth(tokens *security.TokenManager, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			if claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer ")); err == nil {
				c.Set(userIDContextKey, claims.UserID)
				ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, claims.UserID)
				c.Request = c.Request.WithContext(ctx)
			} else {
				log.Debug("ignoring invalid optional token", zap.Error(err))
			}
		}
		c.Next()
	}
}
