package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// HeaderAPIKey carries the tenant's API key.
	HeaderAPIKey = "X-API-Key"

	tenantCtxKey = "tenant_id"
)

// APIKeyMiddleware maps X-API-Key to a tenant and rejects unknown keys.
// Every stored event and every moving average is scoped to that tenant.
func APIKeyMiddleware(keys map[string]string, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := strings.TrimSpace(c.GetHeader(HeaderAPIKey))
		tenantID, ok := keys[apiKey]
		if apiKey == "" || !ok {
			log.Debugw("Rejected request", "path", c.FullPath(), "has_key", apiKey != "")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(tenantCtxKey, tenantID)
		c.Next()
	}
}

// TenantID returns the authenticated tenant ID from the request context.
func TenantID(c *gin.Context) string {
	return c.GetString(tenantCtxKey)
}
