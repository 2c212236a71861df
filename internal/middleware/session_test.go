package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/session"
	"fintrack/internal/testutil"
)

func setupSessionRouter(t *testing.T) (*gin.Engine, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := session.NewMemoryStore(0)
	t.Cleanup(store.Close)
	mgr := session.NewManager(store, time.Hour)

	router := gin.New()
	router.Use(SessionResolver(mgr))
	router.GET("/open", func(c *gin.Context) {
		if rec, ok := GetSession(c); ok {
			c.JSON(http.StatusOK, gin.H{"email": rec.Profile.Email})
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": nil})
	})
	router.GET("/protected", RequireSession(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router, mgr
}

func TestSessionResolver(t *testing.T) {
	t.Run("resolves_from_cookie", func(t *testing.T) {
		router, mgr := setupSessionRouter(t)
		id, err := mgr.Create(testutil.TestToken(), testutil.TestProfile())
		testutil.AssertNoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: id})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("falls_back_to_header", func(t *testing.T) {
		router, mgr := setupSessionRouter(t)
		id, err := mgr.Create(testutil.TestToken(), testutil.TestProfile())
		testutil.AssertNoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(HeaderName, id)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("cookie_wins_over_header", func(t *testing.T) {
		router, mgr := setupSessionRouter(t)
		id, err := mgr.Create(testutil.TestToken(), testutil.TestProfile())
		testutil.AssertNoError(t, err)

		// A valid header must not rescue a request whose cookie is bogus.
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "bogus"})
		req.Header.Set(HeaderName, id)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("no_identity_passes_through", func(t *testing.T) {
		router, _ := setupSessionRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})
}

func TestRequireSession(t *testing.T) {
	t.Run("missing_session", func(t *testing.T) {
		router, _ := setupSessionRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("unknown_session_id", func(t *testing.T) {
		router, _ := setupSessionRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(HeaderName, "stale-or-forged")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})
}
