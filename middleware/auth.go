package middleware

import (
	"net/http"
	"strings"

	"promoshow/models"
	"promoshow/utils"

	"github.com/gin-gonic/gin"
)

const userKey = "user"

func bearerToken(c *gin.Context) (string, bool, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false, "Authorization header required"
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false, "Invalid authorization header format"
	}
	return parts[1], true, ""
}

func setIdentity(c *gin.Context, claims *utils.Claims) {
	c.Set(userKey, claims.Identity())
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok, msg := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the identity when a valid token is sent
// and lets anonymous requests through.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok, _ := bearerToken(c); ok {
			if claims, err := utils.ValidateToken(token); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentUser(c).IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the identity attached by the auth middlewares, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
