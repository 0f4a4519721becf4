package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker/internal/auth"
	"github.com/yukikurage/task-tracker/internal/constants"
	apierrors "github.com/yukikurage/task-tracker/internal/errors"
	"github.com/yukikurage/task-tracker/internal/models"
)

// IdentityResolver turns a request into the user it is authenticated as.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, r *http.Request, source auth.TokenSource) (*models.User, error)
}

// RequireAuth authenticates API requests by their Authorization header
func RequireAuth(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolver.ResolveIdentity(c.Request.Context(), c.Request, auth.FromHeader)
		if err != nil {
			apierrors.FromServiceWithChallenge(c, err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// RequireCookieAuth authenticates browser requests by the token cookie
func RequireCookieAuth(resolver IdentityResolver, cookieName string) gin.HandlerFunc {
	source := auth.FromCookie(cookieName)
	return func(c *gin.Context) {
		user, err := resolver.ResolveIdentity(c.Request.Context(), c.Request, source)
		if err != nil {
			apierrors.FromService(c, err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// GetUser retrieves the authenticated user from context
func GetUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	user, ok := GetUser(c)
	if !ok {
		return 0, false
	}
	return user.ID, true
}
