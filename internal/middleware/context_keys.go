package middleware

import "github.com/gin-gonic/gin"

// userIDKey is the key used to store the requesting principal's user ID in
// the request context.
const userIDKey = contextKey("userID")

// tenantsKey is the key used to store the principal's authorized tenant IDs
// in the request context.
const tenantsKey = contextKey("authorizedTenants")

// GetUserIDFromContext retrieves the principal's user ID from the Gin
// context. It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal := c.Request.Context().Value(userIDKey)
	if userIDVal == nil {
		return "", false
	}
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetAuthorizedTenantsFromContext retrieves the principal's authorized tenant
// IDs from the Gin context.
func GetAuthorizedTenantsFromContext(c *gin.Context) ([]string, bool) {
	tenantsVal := c.Request.Context().Value(tenantsKey)
	if tenantsVal == nil {
		return nil, false
	}
	tenants, ok := tenantsVal.([]string)
	if !ok || len(tenants) == 0 {
		return nil, false
	}
	return tenants, true
}
