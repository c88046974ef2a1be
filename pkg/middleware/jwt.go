package middleware

import (
	"bitwise74/movie-api/internal/model"
	"bitwise74/movie-api/internal/service"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

type TokenParser interface {
	Parse(token string) (*service.Claims, error)
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if t, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(t)
	}

	if t, err := c.Cookie("auth_token"); err == nil {
		return t
	}

	return ""
}

// NewJWTMiddleware rejects requests without a valid access token. The
// token is read from the Authorization header first, then from the
// auth_token cookie. On success email and role are set on the context.
func NewJWTMiddleware(p TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := RequestID(c)

		tokenStr := bearer(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "No authorization token provided",
				"requestID": requestID,
			})
			return
		}

		claims, err := p.Parse(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		c.Set("email", claims.Subject)
		c.Set("role", string(claims.Role))
		c.Next()
	}
}

// RequireRole lets a request through only if NewJWTMiddleware stored one
// of roles on the context
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := model.Role(c.GetString("role"))

		if !slices.Contains(roles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     "You don't have permission to do this",
				"requestID": RequestID(c),
			})
			return
		}

		c.Next()
	}
}
