package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/dashboard_backend/config"
	"github.com/mmdatafocus/dashboard_backend/utils"
)

// Session is stored in redis under "Token:<token>" by the login service.
type Session struct {
	UserId   int    `json:"user_id"`
	Username string `json:"username"`
	TenantId string `json:"tenant_id"`
}

type SessionLookup func(token string) (*Session, bool, error)

// RedisSessionLookup reads sessions from the shared redis client.
func RedisSessionLookup(token string) (*Session, bool, error) {
	var session Session
	exists, err := config.GetRedisObject("Token:"+token, &session)
	if err != nil || !exists {
		return nil, exists, err
	}
	return &session, true, nil
}

func SessionMiddleware(lookup SessionLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if utils.IsAuthenticated(c.Request.Context()) {
			c.Next()
			return
		}
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		session, exists, err := lookup(token)
		if err != nil || !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx := utils.SetAuthenticatedInContext(c.Request.Context())
		ctx = utils.SetTenantIdInContext(ctx, session.TenantId)
		ctx = utils.SetUserIdInContext(ctx, session.UserId)
		ctx = utils.SetUsernameInContext(ctx, session.Username)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
