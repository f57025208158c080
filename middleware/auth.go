package middleware

import (
	"errors"
	"strings"

	"easybook/database/repository"
	userRepo "easybook/database/repository/user"
	"easybook/models"
	"easybook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by JWTAuthMiddleware.
const (
	ContextUserID = "userID"
	ContextRole   = "role"
	ContextUser   = "user"
)

// JWTAuthMiddleware validates the bearer token and loads the caller. The role is
// read from the stored user so a role change applies to tokens already issued.
func JWTAuthMiddleware(users userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, utils.NewUnauthorizedError("Not authorized, no token"))
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		claims, err := utils.ParseSessionToken(tokenString)
		if err != nil {
			abort(c, utils.NewUnauthorizedError("Not authorized, token failed"))
			return
		}

		usr, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				utils.GetLogger().Error("Failed to load authenticated user", zap.String("userId", claims.UserID), zap.Error(err))
			}
			abort(c, utils.NewUnauthorizedError("Not authorized, user not found"))
			return
		}
		if !usr.IsActive {
			abort(c, utils.NewForbiddenError("Account is deactivated"))
			return
		}

		c.Set(ContextUserID, usr.ID)
		c.Set(ContextRole, usr.Role)
		c.Set(ContextUser, usr)
		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		abort(c, utils.NewForbiddenError("Not authorized to access this route"))
	}
}

func abort(c *gin.Context, err error) {
	utils.RespondError(c, err)
	c.Abort()
}
