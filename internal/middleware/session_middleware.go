package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"evolvers-admin/internal/session"
)

// SessionMiddleware rejects requests without an active admin session and
// treats each authenticated request as activity, pushing the inactivity
// deadline forward.
func SessionMiddleware(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !manager.Active() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired, please sign in again"})
			c.Abort()
			return
		}

		if err := manager.Touch(); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired, please sign in again"})
			c.Abort()
			return
		}

		c.Next()
	}
}
