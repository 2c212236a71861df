package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/session"
)

const (
	// CookieName is the session cookie label shared with the client.
	CookieName = "fintrack_sid"

	// HeaderName carries the session identifier when the cookie could not be
	// persisted across the authentication redirect (third-party iframe
	// contexts). The header is only consulted when no cookie arrived.
	HeaderName = "X-Session-ID"

	sessionKey = "sessionRecord"
)

// SessionResolver resolves the request's session from the cookie, falling
// back to the X-Session-ID header when no cookie arrived. The resolved record
// is stored in the Gin context; requests without an identity pass through
// untouched so each handler decides whether identity is required.
func SessionResolver(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(CookieName)
		if err != nil || id == "" {
			id = c.GetHeader(HeaderName)
		}

		rec, err := mgr.Resolve(id)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				logger.Get().Errorw("session resolution failed",
					"error", err.Error(),
					"path", c.Request.URL.Path,
				)
			}
			c.Next()
			return
		}

		c.Set(sessionKey, rec)
		c.Next()
	}
}

// RequireSession aborts with 401 when no session record was resolved.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetSession(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    apperrors.ErrUnauthorized.Code,
					"message": apperrors.ErrUnauthorized.Message,
				},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSession returns the resolved session record for the request, if any.
func GetSession(c *gin.Context) (*session.Record, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	rec, ok := v.(*session.Record)
	return rec, ok
}
