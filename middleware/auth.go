package middleware

import (
	"net/http"
	"strings"

	"solarops/dao/model"
	"solarops/response"
	"solarops/util"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// TokenChecker validates a bearer token. Satisfied by util.TokenManager.
type TokenChecker interface {
	CheckToken(token string) (util.JWTMessage, error)
}

// Auth extracts and validates the bearer token, storing the actor
// identity in the gin context for handlers and the audit trail.
func Auth(checker TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.HTTPError(c, http.StatusUnauthorized, "missing bearer token", response.InvalidToken)
			c.Abort()
			return
		}

		msg, err := checker.CheckToken(token)
		if err != nil {
			response.HTTPError(c, http.StatusUnauthorized, err.Error(), response.InvalidToken)
			c.Abort()
			return
		}

		c.Set(actorKey, msg)
		c.Next()
	}
}

// RequireAdmin aborts the request unless the actor has the admin role.
// Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor.Role != model.RoleAdmin {
			response.HTTPError(c, http.StatusForbidden, "admin role required", response.PermissionDenied)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetActor returns the authenticated actor, or the zero value when the
// request was not authenticated.
func GetActor(c *gin.Context) util.JWTMessage {
	if v, exists := c.Get(actorKey); exists {
		if msg, ok := v.(util.JWTMessage); ok {
			return msg
		}
	}
	return util.JWTMessage{}
}
