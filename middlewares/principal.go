package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/dashboard_backend/dashboard"
	"github.com/mmdatafocus/dashboard_backend/utils"
)

// PrincipalFromContext builds the caller identity left by AuthMiddleware or SessionMiddleware.
func PrincipalFromContext(ctx context.Context) (dashboard.Principal, bool) {
	if !utils.IsAuthenticated(ctx) {
		return dashboard.Principal{}, false
	}
	tenantId, _ := utils.GetTenantIdFromContext(ctx)
	userId, _ := utils.GetUserIdFromContext(ctx)
	username, _ := utils.GetUsernameFromContext(ctx)
	return dashboard.Principal{TenantId: tenantId, UserId: userId, Username: username}, true
}

// RequirePrincipal rejects requests no credential middleware authenticated.
// With requireTenant set, principals without a tenant id are rejected too.
func RequirePrincipal(requireTenant bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFromContext(c.Request.Context())
		if !ok || (requireTenant && p.TenantId == "") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": dashboard.ErrAuthentication.Error()})
			return
		}
		c.Next()
	}
}
