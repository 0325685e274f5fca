package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-coursegen/internal/gateway"
)

// ForwardBearerToken attaches the caller's bearer token to the request
// context so gateway calls made on its behalf authenticate as the caller.
// Session validation stays with the backend; requests without a token fall
// back to the configured service token.
func ForwardBearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			c.Request = c.Request.WithContext(gateway.ContextWithToken(c.Request.Context(), token))
		}
		c.Next()
	}
}

// extractToken reads the Authorization header, then ?token= for
// EventSource clients that cannot set headers.
func extractToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return strings.TrimSpace(c.Query("token"))
}
