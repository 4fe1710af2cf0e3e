package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"mercadito/internal/core/apperror"
	"mercadito/internal/core/appctx"
)

// TokenValidator validates a session token.
type TokenValidator interface {
	ValidateToken(tokenString string) (*appctx.SessionContext, error)
}

// Auth validates the bearer token and stores the session in context.
// The session user id feeds the self-delete guard on usuario.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		session, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := appctx.WithSession(c.Request.Context(), session)
		c.Request = c.Request.WithContext(ctx)
		c.Set("user_id", session.UserID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
