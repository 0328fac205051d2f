package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/princinho/coursemarket/models"
	"github.com/princinho/coursemarket/services"
	"github.com/princinho/coursemarket/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

const userKey = "user"

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// AuthMiddleware resolves the bearer token to a user and stores it in the gin context.
func AuthMiddleware(auth Authenticator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			utils.RespondError(c, log, utils.Unauthenticated("Access token required"))
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.RespondError(c, log, err)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// RequireAction gates a route on the authorization policy. It must run after AuthMiddleware.
func RequireAction(action services.Action, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := services.Authorize(CurrentUser(c), action, bson.NilObjectID); err != nil {
			utils.RespondError(c, log, err)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil on public routes.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
