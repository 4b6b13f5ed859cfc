package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/peelojuice/backend/utils"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization header missing"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ParseToken(tokenString)
		if err != nil || claims == nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid or expired token"))
			c.Abort()
			return
		}

		if claims.UserID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid user id in token"))
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("is_staff", claims.IsStaff)

		c.Next()
	}
}

// CurrentUserID reads the authenticated user id the auth middleware stored.
func CurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// IsStaff reports whether the authenticated user has staff rights.
func IsStaff(c *gin.Context) bool {
	if v, ok := c.Get("is_staff"); ok {
		if staff, ok := v.(bool); ok {
			return staff
		}
	}
	return false
}
