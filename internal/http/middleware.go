package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const orgContextKey = "organization_id"

// RequireOrganization resolves the tenant from the X-Organization-ID
// header. Every scoped route runs behind it; handlers read the parsed id
// from the request context.
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Organization-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"code": "organization_required", "message": "X-Organization-ID header is required"},
			})
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"code": "organization_invalid", "message": "X-Organization-ID must be a UUID"},
			})
			return
		}
		c.Set(orgContextKey, id)
		c.Next()
	}
}

func organizationID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(orgContextKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
