package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"fintrack/internal/config"
	"fintrack/internal/currency"
	"fintrack/internal/drive"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/handlers"
	"fintrack/internal/insights"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/server"
	"fintrack/internal/session"
	"fintrack/internal/testutil"
	"fintrack/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// fakeAuth stands in for the identity provider. Any state other than the one
// it hands out is rejected, mirroring the signed-state check.
type fakeAuth struct {
	profile models.Profile
}

func (f *fakeAuth) AuthCodeURL() (string, error) {
	return "https://provider/auth?state=good-state", nil
}

func (f *fakeAuth) VerifyState(state string) error {
	if state != "good-state" {
		return apperrors.ErrInvalidState
	}
	return nil
}

func (f *fakeAuth) Exchange(context.Context, string) (*oauth2.Token, error) {
	return testutil.TestToken(), nil
}

func (f *fakeAuth) FetchProfile(context.Context, *oauth2.Token) (models.Profile, error) {
	return f.profile, nil
}

// memoryDocs is an in-memory stand-in for the Drive document store.
type memoryDocs struct {
	mu      sync.Mutex
	content json.RawMessage
	fileID  string
}

func (m *memoryDocs) Load(_ context.Context, token *oauth2.Token) (*drive.Document, error) {
	if token == nil {
		return nil, apperrors.ErrUnauthorized
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.content == nil {
		return nil, nil
	}
	return &drive.Document{Content: m.content, FileID: m.fileID}, nil
}

func (m *memoryDocs) Save(_ context.Context, token *oauth2.Token, content json.RawMessage, fileID string) (string, error) {
	if token == nil {
		return "", apperrors.ErrUnauthorized
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if fileID == "" {
		fileID = "doc-1"
	}
	m.content = content
	m.fileID = fileID
	return fileID, nil
}

// testApp holds the full application stack for integration tests.
type testApp struct {
	Router   *gin.Engine
	Sessions *session.Manager
	Docs     *memoryDocs
	Profile  models.Profile
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	store := session.NewMemoryStore(0)
	t.Cleanup(store.Close)
	sessions := session.NewManager(store, time.Hour)

	cfg := &config.Config{
		AppURL:     "http://localhost:3000",
		SessionTTL: time.Hour,
	}

	profile := testutil.TestProfile()
	docs := &memoryDocs{}

	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"- advice"}]}}]}`)
	}))
	t.Cleanup(gemini.Close)

	frankfurter := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"base":"USD","date":"2026-08-28","rates":{"EUR":0.91}}`)
	}))
	t.Cleanup(frankfurter.Close)

	router := server.New(server.Deps{
		Sessions: sessions,
		Auth:     handlers.NewAuthHandler(&fakeAuth{profile: profile}, sessions, cfg),
		Drive:    handlers.NewDriveHandler(docs),
		Insights: handlers.NewInsightsHandler(insights.NewClientWithBaseURL(gemini.URL, "key", "gemini-2.0-flash")),
		Currency: handlers.NewCurrencyHandler(currency.NewClientWithBaseURL(frankfurter.URL)),
	})

	return &testApp{Router: router, Sessions: sessions, Docs: docs, Profile: profile}
}

// request performs an HTTP request against the router, optionally carrying a
// session identifier in the fallback header.
func (app *testApp) request(method, path, body, sessionID string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if sessionID != "" {
		req.Header.Set(middleware.HeaderName, sessionID)
	}
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

// login runs the callback leg of the popup flow and returns the session ID
// from the issued cookie.
func (app *testApp) login(t *testing.T) string {
	t.Helper()

	rec := app.request("GET", "/auth/callback?code=c&state=good-state", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("callback failed: %d %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.CookieName && c.Value != "" {
			return c.Value
		}
	}
	t.Fatal("expected a session cookie from the callback")
	return ""
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse response %q: %v", rec.Body.String(), err)
	}
	return out
}
