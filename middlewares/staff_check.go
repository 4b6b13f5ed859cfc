package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/peelojuice/backend/utils"
)

// StaffOnly gates routes reserved for staff accounts. It must run after
// AuthMiddleware.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsStaff(c) {
			utils.RespondError(c, http.StatusForbidden, errors.New("staff access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
