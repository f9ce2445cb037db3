package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"marketplace/apperror"
	"marketplace/models"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const actorKey = "actor"

// AdminActorID identifies requests made with the static admin token.
const AdminActorID = "admin"

// Authenticate resolves the caller from a bearer token. The static admin
// token grants the admin role; anything else must be a signed JWT carrying
// sub and role claims.
func Authenticate(secret []byte, adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, apperror.KindNotAuthorized, "Missing or invalid Authorization header")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		if adminToken != "" && subtle.ConstantTimeCompare([]byte(tokenString), []byte(adminToken)) == 1 {
			c.Set(actorKey, models.Actor{ID: AdminActorID, Role: models.RoleAdmin})
			c.Next()
			return
		}

		actor, err := utils.ActorFromToken(secret, tokenString)
		if err != nil {
			zap.L().Debug("token rejected", zap.String("ip", clientIP(c)), zap.Error(err))
			utils.JSONError(c, http.StatusUnauthorized, apperror.KindNotAuthorized, "Invalid token")
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireRole rejects authenticated callers outside roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			utils.JSONError(c, http.StatusUnauthorized, apperror.KindNotAuthorized, "Authentication required")
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		utils.JSONError(c, http.StatusForbidden, apperror.KindNotAuthorized, "This action is not available to your role")
	}
}

// ActorFrom returns the caller set by Authenticate.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}
