package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"leadcrm/internal/apperr"
	"leadcrm/internal/middleware"
	"leadcrm/internal/models"
)

const internalErrorText = "Internal server error."

var (
	errInvalidBody        = apperr.Validation("Invalid request body.")
	errMissingSessionUser = errors.New("session user missing from context")
)

// respondError writes the uniform {success:false, message} body. Untyped
// errors become 500; their detail is only exposed while gin runs in debug mode.
func respondError(c *gin.Context, scope string, err error) {
	status := apperr.HTTPStatus(err)
	entry := log.WithField("request_id", c.GetString(middleware.ContextRequestID))
	if uid := c.GetString(middleware.ContextUserID); uid != "" {
		entry = entry.WithField("user_id", uid)
	}

	if status == http.StatusInternalServerError {
		entry.WithError(err).Error(scope)
		body := gin.H{"success": false, "message": internalErrorText}
		if gin.IsDebugging() {
			body["error"] = err.Error()
		}
		c.JSON(status, body)
		return
	}

	entry.WithField("status", status).Info(scope + " " + apperr.Message(err))
	c.JSON(status, gin.H{"success": false, "message": apperr.Message(err)})
}

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(middleware.ContextUser)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// SessionCookie describes how the session token travels to the browser.
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Set stores token. Secure cookies go out as SameSite=None so allow-listed
// cross-origin clients can send them back; otherwise Lax.
func (s SessionCookie) Set(c *gin.Context, token string) {
	s.write(c, token, int(s.TTL.Seconds()))
}

// Clear overwrites the cookie with an empty, already expired value.
func (s SessionCookie) Clear(c *gin.Context) {
	s.write(c, "", -1)
}

func (s SessionCookie) write(c *gin.Context, value string, maxAge int) {
	if s.Secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(s.Name, value, maxAge, "/", "", s.Secure, true)
}
