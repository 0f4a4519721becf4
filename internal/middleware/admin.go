package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/task-tracker/internal/errors"
	"github.com/yukikurage/task-tracker/internal/services"
)

// RequireAdmin lets only administrators through. It must run after one of
// the authentication middlewares.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetUser(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if err := services.RequireAdmin(user); err != nil {
			apierrors.FromService(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}
