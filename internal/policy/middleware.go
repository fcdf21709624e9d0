package policy

import (
	"net/http"

	"tukangin-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireAnyRole allows an API request through if the caller holds any of
// the provided roles. Identity must already be in context (see
// auth.RequireSession); page-level gating is the request gate's job.
func RequireAnyRole(allowed ...Role) gin.HandlerFunc {
	allowedSet := make(map[Role]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, err := auth.Role(c.Request.Context())
		if err != nil || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "role required"})
			return
		}

		if _, ok := allowedSet[Role(role)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "forbidden"})
			return
		}
		c.Next()
	}
}
