package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Headers the trusted upstream gateway sets after authenticating the caller.
// Token validation itself happens at the gateway; this service only consumes
// the resulting principal context.
const (
	userIDHeader  = "X-User-ID"
	tenantsHeader = "X-Authorized-Tenants"
)

// PrincipalMiddleware creates a Gin middleware handler that extracts the
// requesting principal (user id and authorized tenant set) from the gateway
// headers and stores it in the request context. Requests without a principal
// are rejected: every read path below this point depends on the authorized
// tenant set for isolation.
func PrincipalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		userID := strings.TrimSpace(c.GetHeader(userIDHeader))
		if userID == "" {
			logger.Warn("Principal user ID header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		rawTenants := c.GetHeader(tenantsHeader)
		tenants := make([]string, 0, 4)
		for _, t := range strings.Split(rawTenants, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tenants = append(tenants, t)
			}
		}
		if len(tenants) == 0 {
			logger.Warn("Principal has no authorized tenants")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "No authorized tenants"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, tenantsKey, tenants)

		// Enrich the request logger with the principal. Tenant IDs outside
		// the authorized set must never appear in logs; the principal's own
		// set is safe.
		enrichedLogger := GetLoggerFromCtx(ctx).With(slog.String("user_id", userID))
		ctx = context.WithValue(ctx, loggerCtxKey, enrichedLogger)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
