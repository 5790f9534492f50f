package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	jwtsvc "copyprocloud/internal/pkg/jwt"
	"copyprocloud/internal/pkg/response"
)

// Auth validates the bearer token and puts user_id and role into the
// request context.
func Auth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, jwt)
		if !ok {
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// OptionalAuth sets user_id/role when a valid token is present but lets
// anonymous requests through. Guest order submission depends on this.
func OptionalAuth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if strings.HasPrefix(h, "Bearer ") {
			tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			if claims, err := jwt.ValidateToken(tokenStr); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("role", claims.Role)
			}
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, jwt *jwtsvc.Service) (*jwtsvc.Claims, bool) {
	h := c.GetHeader("Authorization")
	if h == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing Authorization header")
		c.Abort()
		return nil, false
	}

	if !strings.HasPrefix(h, "Bearer ") {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid Authorization header")
		c.Abort()
		return nil, false
	}

	tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	if tokenStr == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Empty token")
		c.Abort()
		return nil, false
	}

	claims, err := jwt.ValidateToken(tokenStr)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
		c.Abort()
		return nil, false
	}
	return claims, true
}
