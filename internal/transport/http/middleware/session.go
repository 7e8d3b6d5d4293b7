package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/dropfour/pkg/auth"
	"github.com/iamasit07/dropfour/pkg/httputil"
)

const SessionIDKey = "session_id"

// SessionAuth checks the session token and that it belongs to the :id in the
// route.
func SessionAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := httputil.GetTokenFromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := auth.ValidateSessionToken(jwtSecret, tokenString)
		if err != nil {
			httputil.ClearSessionCookie(c.Writer)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if id := c.Param("id"); id != "" && id != claims.SessionID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Token does not belong to this session"})
			return
		}

		c.Set(SessionIDKey, claims.SessionID)
		c.Next()
	}
}
