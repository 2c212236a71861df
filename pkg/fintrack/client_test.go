package fintrack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySessions is an in-memory SessionIDStore for tests.
type memorySessions struct {
	id string
}

func (m *memorySessions) SessionID() string { return m.id }

func (m *memorySessions) SetSessionID(id string) error {
	m.id = id
	return nil
}

func (m *memorySessions) ClearSessionID() error {
	m.id = ""
	return nil
}

func testClient(t *testing.T, handler http.Handler, sessions SessionIDStore) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&ClientOptions{BaseURL: server.URL, Sessions: sessions})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(nil)
	assert.Error(t, err)

	_, err = NewClient(&ClientOptions{BaseURL: "http://localhost"})
	assert.Error(t, err, "expected an error without a session store")

	_, err = NewClient(&ClientOptions{Sessions: &memorySessions{}})
	assert.Error(t, err, "expected an error without a base URL")
}

func TestSessionTransport(t *testing.T) {
	t.Run("attaches_stored_id", func(t *testing.T) {
		var gotHeader string
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotHeader = r.Header.Get("X-Session-ID")
			fmt.Fprint(w, `{"user":null}`)
		}), &memorySessions{id: "stored-id"})

		_, err := client.CurrentUser(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "stored-id", gotHeader)
	})

	t.Run("no_header_without_stored_id", func(t *testing.T) {
		var hasHeader bool
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasHeader = r.Header["X-Session-Id"]
			fmt.Fprint(w, `{"user":null}`)
		}), &memorySessions{})

		_, err := client.CurrentUser(context.Background())
		require.NoError(t, err)
		assert.False(t, hasHeader)
	})
}

func TestCurrentUser(t *testing.T) {
	t.Run("null_user", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"user":null}`)
		}), &memorySessions{})

		profile, err := client.CurrentUser(context.Background())
		require.NoError(t, err)
		assert.Nil(t, profile)
	})

	t.Run("profile", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"user":{"name":"A","email":"a@test.com"}}`)
		}), &memorySessions{})

		profile, err := client.CurrentUser(context.Background())
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, "a@test.com", profile.Email)
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("null_content_means_no_document", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"content":null}`)
		}), &memorySessions{})

		file, err := client.LoadFile(context.Background())
		require.NoError(t, err)
		assert.Nil(t, file)
	})

	t.Run("content_and_file_id", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"content":{"transactions":[]},"fileId":"f1"}`)
		}), &memorySessions{})

		file, err := client.LoadFile(context.Background())
		require.NoError(t, err)
		require.NotNil(t, file)
		assert.Equal(t, "f1", file.FileID)
		assert.JSONEq(t, `{"transactions":[]}`, string(file.Content))
	})
}

func TestSaveFile(t *testing.T) {
	var gotBody map[string]json.RawMessage
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"success":true,"fileId":"f1"}`)
	}), &memorySessions{})

	id, err := client.SaveFile(context.Background(), json.RawMessage(`{"v":1}`), "f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", id)
	assert.JSONEq(t, `{"v":1}`, string(gotBody["content"]))
	assert.JSONEq(t, `"f1"`, string(gotBody["fileId"]))
}

func TestAPIErrorDecoding(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":"UNAUTHORIZED","message":"Authentication required"}}`)
	}), &memorySessions{})

	_, err := client.LoadFile(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNAUTHORIZED")
	assert.Contains(t, err.Error(), "Authentication required")
}

func TestNoAutomaticRetry(t *testing.T) {
	calls := 0
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}), &memorySessions{})

	_, err := client.SaveFile(context.Background(), json.RawMessage(`{}`), "")
	require.Error(t, err)
	assert.Equal(t, 1, calls, "a failed save must not be replayed")
}
