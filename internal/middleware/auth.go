package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"talon/internal/models"
	"talon/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const userKey = "user"

// Gate authorizes a raw bearer token, optionally requiring one of the roles.
type Gate interface {
	Authorize(ctx context.Context, tokenString string, required ...models.Role) (*models.User, error)
}

// Authenticate creates a Gin middleware that resolves the bearer token into
// the current user. With roles given, any other role is answered with 403.
func Authenticate(gate Gate, logger *zap.Logger, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "Not authenticated")
			return
		}

		user, err := gate.Authorize(c.Request.Context(), token, roles...)
		if err != nil {
			var detailed *service.Error
			detail := err.Error()
			if errors.As(err, &detailed) {
				detail = detailed.Detail
			}
			switch {
			case errors.Is(err, service.ErrInvalidCredentials):
				unauthorized(c, detail)
			case errors.Is(err, service.ErrForbidden):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": detail})
			default:
				logger.Error("Failed to authorize request", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(userKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// bearerToken accepts "Bearer <token>" with any casing of the scheme.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": detail})
}
