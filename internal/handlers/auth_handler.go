package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"fintrack/internal/config"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/session"
)

// AuthServicer is the identity-provider surface the auth handler relies on.
type AuthServicer interface {
	AuthCodeURL() (string, error)
	VerifyState(state string) error
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, token *oauth2.Token) (models.Profile, error)
}

// AuthHandler implements the login flow: authorization URL, OAuth callback,
// current-user lookup, and logout.
type AuthHandler struct {
	auth     AuthServicer
	sessions *session.Manager
	cfg      *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth AuthServicer, sessions *session.Manager, cfg *config.Config) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, cfg: cfg}
}

// GetAuthURL returns the provider authorization URL for the login popup.
func (h *AuthHandler) GetAuthURL(c *gin.Context) {
	url, err := h.auth.AuthCodeURL()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Callback completes the login: it verifies the state parameter, exchanges
// the authorization code for tokens, fetches the profile, creates the session
// and returns a page that delivers the session identifier to the opener
// window. The session cookie is set Secure and cross-site so it has a chance
// of surviving embedded contexts; the posted identifier is the fallback when
// it does not.
func (h *AuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.String(http.StatusBadRequest, "Missing authorization code")
		return
	}
	if err := h.auth.VerifyState(c.Query("state")); err != nil {
		logger.Get().Warnw("rejected auth callback", "reason", err.Error())
		c.String(http.StatusBadRequest, "Invalid authorization state")
		return
	}

	ctx := c.Request.Context()
	token, err := h.auth.Exchange(ctx, code)
	if err != nil {
		logger.Get().Errorw("token exchange failed", "error", err.Error())
		c.String(http.StatusInternalServerError, "Authentication failed")
		return
	}

	profile, err := h.auth.FetchProfile(ctx, token)
	if err != nil {
		logger.Get().Errorw("profile fetch failed", "error", err.Error())
		c.String(http.StatusInternalServerError, "Authentication failed")
		return
	}

	id, err := h.sessions.Create(token, profile)
	if err != nil {
		logger.Get().Errorw("session create failed", "error", err.Error())
		c.String(http.StatusInternalServerError, "Session save failed")
		return
	}
	logger.Get().Infow("login completed", "email", profile.Email)

	h.setSessionCookie(c, id, int(h.cfg.SessionTTL.Seconds()))
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, completionPage(h.cfg.AppURL, id))
}

// CurrentUser returns the resolved session's profile, or null.
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	rec, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": rec.Profile})
}

// Logout destroys the session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	id, err := c.Cookie(middleware.CookieName)
	if err != nil || id == "" {
		id = c.GetHeader(middleware.HeaderName)
	}
	if id != "" {
		if err := h.sessions.Destroy(id); err != nil {
			respondWithError(c, apperrors.Wrap(apperrors.ErrSessionStore, err))
			return
		}
	}
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.CookieName, value, maxAge, "/", "", true, true)
}

// completionPage is the HTML served at the end of the popup flow. It posts
// the session identifier to the opener, restricted to the application's own
// origin, then closes itself. Without an opener (the tab was opened directly,
// as the CLI login does) it reveals the identifier for manual entry instead.
func completionPage(appOrigin, sessionID string) string {
	return fmt.Sprintf(`<html>
  <body>
    <p id="auto">Authentication successful. This window should close automatically.</p>
    <div id="manual" style="display:none">
      <p>Authentication successful. Paste this session ID into the app:</p>
      <p><code id="sid"></code></p>
    </div>
    <script>
      if (window.opener) {
        window.opener.postMessage({
          type: 'OAUTH_AUTH_SUCCESS',
          sessionId: '%s'
        }, '%s');
        window.close();
      } else {
        document.getElementById('sid').textContent = '%s';
        document.getElementById('auto').style.display = 'none';
        document.getElementById('manual').style.display = 'block';
      }
    </script>
  </body>
</html>`, sessionID, appOrigin, sessionID)
}
