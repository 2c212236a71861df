package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"fintrack/internal/drive"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/middleware"
	"fintrack/internal/session"
	"fintrack/internal/testutil"
)

type fakeDocumentStore struct {
	doc     *drive.Document
	loadErr error
	saveErr error

	savedContent json.RawMessage
	savedFileID  string
	returnFileID string
}

func (f *fakeDocumentStore) Load(context.Context, *oauth2.Token) (*drive.Document, error) {
	return f.doc, f.loadErr
}

func (f *fakeDocumentStore) Save(_ context.Context, _ *oauth2.Token, content json.RawMessage, fileID string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.savedContent = content
	f.savedFileID = fileID
	return f.returnFileID, nil
}

func setupDriveRouter(t *testing.T, store DocumentStorer) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	memStore := session.NewMemoryStore(0)
	t.Cleanup(memStore.Close)
	sessions := session.NewManager(memStore, time.Hour)
	id, err := sessions.Create(testutil.TestToken(), testutil.TestProfile())
	testutil.AssertNoError(t, err)

	h := NewDriveHandler(store)
	router := gin.New()
	router.Use(middleware.SessionResolver(sessions))
	group := router.Group("/api/drive")
	group.Use(middleware.RequireSession())
	group.GET("/file", h.GetFile)
	group.POST("/save", h.SaveFile)
	return router, id
}

func TestGetFile(t *testing.T) {
	t.Run("requires_session", func(t *testing.T) {
		router, _ := setupDriveRouter(t, &fakeDocumentStore{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/drive/file", nil))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("missing_document_is_null_content", func(t *testing.T) {
		router, id := setupDriveRouter(t, &fakeDocumentStore{doc: nil})

		req := httptest.NewRequest(http.MethodGet, "/api/drive/file", nil)
		req.Header.Set(middleware.HeaderName, id)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"content":null`) {
			t.Errorf("expected null content, got %s", w.Body.String())
		}
	})

	t.Run("returns_content_and_file_id", func(t *testing.T) {
		router, id := setupDriveRouter(t, &fakeDocumentStore{
			doc: &drive.Document{Content: json.RawMessage(`{"transactions":[]}`), FileID: "f1"},
		})

		req := httptest.NewRequest(http.MethodGet, "/api/drive/file", nil)
		req.Header.Set(middleware.HeaderName, id)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		body := w.Body.String()
		if !strings.Contains(body, `"fileId":"f1"`) {
			t.Errorf("expected the file ID, got %s", body)
		}
		if !strings.Contains(body, `"transactions":[]`) {
			t.Errorf("expected the document content, got %s", body)
		}
	})

	t.Run("drive_failure", func(t *testing.T) {
		router, id := setupDriveRouter(t, &fakeDocumentStore{
			loadErr: apperrors.ErrDriveRead,
		})

		req := httptest.NewRequest(http.MethodGet, "/api/drive/file", nil)
		req.Header.Set(middleware.HeaderName, id)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "DRIVE_READ_FAILED") {
			t.Errorf("expected the error code, got %s", w.Body.String())
		}
	})
}

func TestSaveFile(t *testing.T) {
	t.Run("requires_session", func(t *testing.T) {
		router, _ := setupDriveRouter(t, &fakeDocumentStore{})

		req := httptest.NewRequest(http.MethodPost, "/api/drive/save", strings.NewReader(`{"content":{}}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("missing_content", func(t *testing.T) {
		router, id := setupDriveRouter(t, &fakeDocumentStore{})

		req := httptest.NewRequest(http.MethodPost, "/api/drive/save", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.HeaderName, id)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("first_save_creates", func(t *testing.T) {
		store := &fakeDocumentStore{returnFileID: "new-id"}
		router, id := setupDriveRouter(t, store)

		req := httptest.NewRequest(http.MethodPost, "/api/drive/save",
			strings.NewReader(`{"content":{"transactions":[]}}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.HeaderName, id)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if store.savedFileID != "" {
			t.Errorf("expected no file ID on first save, got %q", store.savedFileID)
		}
		if !strings.Contains(w.Body.String(), `"fileId":"new-id"`) {
			t.Errorf("expected the new file ID, got %s", w.Body.String())
		}
	})

	t.Run("later_saves_pass_file_id", func(t *testing.T) {
		store := &fakeDocumentStore{returnFileID: "f1"}
		router, id := setupDriveRouter(t, store)

		req := httptest.NewRequest(http.MethodPost, "/api/drive/save",
			strings.NewReader(`{"content":{"transactions":[]},"fileId":"f1"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.HeaderName, id)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if store.savedFileID != "f1" {
			t.Errorf("expected file ID f1 to be forwarded, got %q", store.savedFileID)
		}
	})
}
