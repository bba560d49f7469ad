package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"leadcrm/internal/services"
)

// Context keys set by RequireSession.
const (
	ContextUser   = "user"
	ContextUserID = "user_id"
)

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": msg})
}

// RequireSession resolves the session cookie into a user. Missing cookie, bad
// or expired token and a user that no longer exists all answer 401.
func RequireSession(cookieName string, auth services.AuthService, users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// preflight never carries the cookie
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		tokenStr, err := c.Cookie(cookieName)
		tokenStr = strings.TrimSpace(tokenStr)
		if err != nil || tokenStr == "" {
			abortUnauthorized(c, "Unauthorized - No Token Provided")
			return
		}

		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			log.WithField("request_id", c.GetString(ContextRequestID)).WithError(err).Info("[auth][session] token rejected")
			abortUnauthorized(c, "Unauthorized - Invalid Token")
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			log.WithField("user_id", claims.UserID).WithError(err).Info("[auth][session] user lookup failed")
			abortUnauthorized(c, "Unauthorized - User not found")
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextUserID, user.ID)
		c.Next()
	}
}
