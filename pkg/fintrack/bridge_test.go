package fintrack

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePopup is a controllable popup window.
type fakePopup struct {
	mu       sync.Mutex
	isClosed bool
	closes   int
}

func (p *fakePopup) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isClosed
}

func (p *fakePopup) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isClosed = true
	p.closes++
}

// fakeWindow hands out a scripted popup and message channel.
type fakeWindow struct {
	popup     *fakePopup
	messages  chan Message
	openErr   error
	openedURL string
}

func (w *fakeWindow) Open(url string) (Popup, <-chan Message, error) {
	w.openedURL = url
	if w.openErr != nil {
		return nil, nil, w.openErr
	}
	return w.popup, w.messages, nil
}

func bridgeFixture(t *testing.T, window *fakeWindow) (*Bridge, *memorySessions, *int) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/url":
			fmt.Fprint(w, `{"url":"https://provider/auth?state=x"}`)
		case "/api/auth/logout":
			fmt.Fprint(w, `{"success":true}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	sessions := &memorySessions{}
	client, err := NewClient(&ClientOptions{BaseURL: server.URL, Sessions: sessions})
	require.NoError(t, err)

	reloads := 0
	b := NewBridge(client, window, "http://app.local", sessions, func() { reloads++ })
	b.pollInterval = 5 * time.Millisecond
	b.closeGrace = 5 * time.Millisecond
	return b, sessions, &reloads
}

func TestBeginLogin(t *testing.T) {
	t.Run("stores_id_on_success", func(t *testing.T) {
		window := &fakeWindow{popup: &fakePopup{}, messages: make(chan Message, 1)}
		b, sessions, reloads := bridgeFixture(t, window)

		window.messages <- Message{
			Origin:    "http://app.local",
			Type:      SuccessMessageType,
			SessionID: "fresh-id",
		}

		ok, err := b.BeginLogin(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "fresh-id", sessions.SessionID())
		assert.Equal(t, 1, *reloads, "expected resolution to re-run after login")
		assert.True(t, window.popup.Closed())
		assert.Equal(t, "https://provider/auth?state=x", window.openedURL)
	})

	t.Run("ignores_foreign_origin", func(t *testing.T) {
		window := &fakeWindow{popup: &fakePopup{}, messages: make(chan Message, 2)}
		b, sessions, _ := bridgeFixture(t, window)

		window.messages <- Message{
			Origin:    "http://evil.example",
			Type:      SuccessMessageType,
			SessionID: "forged-id",
		}
		// The attacker message is skipped; the popup then closes unfinished.
		go func() {
			time.Sleep(10 * time.Millisecond)
			window.popup.Close()
		}()

		ok, err := b.BeginLogin(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, sessions.SessionID(), "a foreign origin must not plant a session ID")
	})

	t.Run("ignores_wrong_type_and_empty_id", func(t *testing.T) {
		window := &fakeWindow{popup: &fakePopup{}, messages: make(chan Message, 3)}
		b, sessions, _ := bridgeFixture(t, window)

		window.messages <- Message{Origin: "http://app.local", Type: "SOMETHING_ELSE", SessionID: "x"}
		window.messages <- Message{Origin: "http://app.local", Type: SuccessMessageType, SessionID: ""}
		go func() {
			time.Sleep(10 * time.Millisecond)
			window.popup.Close()
		}()

		ok, err := b.BeginLogin(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, sessions.SessionID())
	})

	t.Run("blocked_popup_is_silent", func(t *testing.T) {
		window := &fakeWindow{openErr: fmt.Errorf("blocked")}
		b, sessions, reloads := bridgeFixture(t, window)

		ok, err := b.BeginLogin(context.Background())
		require.NoError(t, err, "a blocked popup must not surface an error")
		assert.False(t, ok)
		assert.Empty(t, sessions.SessionID())
		assert.Zero(t, *reloads)
	})

	t.Run("closed_popup_tears_down", func(t *testing.T) {
		popup := &fakePopup{}
		popup.Close()
		window := &fakeWindow{popup: popup, messages: make(chan Message)}
		b, _, reloads := bridgeFixture(t, window)

		done := make(chan struct{})
		var ok bool
		var err error
		go func() {
			ok, err = b.BeginLogin(context.Background())
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("expected BeginLogin to return after the popup closed")
		}
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, *reloads)
	})

	t.Run("context_cancellation", func(t *testing.T) {
		window := &fakeWindow{popup: &fakePopup{}, messages: make(chan Message)}
		b, _, _ := bridgeFixture(t, window)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		ok, err := b.BeginLogin(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, ok)
	})
}

func TestBridgeLogout(t *testing.T) {
	window := &fakeWindow{popup: &fakePopup{}, messages: make(chan Message)}
	b, sessions, reloads := bridgeFixture(t, window)
	require.NoError(t, sessions.SetSessionID("old-id"))

	require.NoError(t, b.Logout(context.Background()))
	assert.Empty(t, sessions.SessionID())
	assert.Equal(t, 1, *reloads, "expected resolution to re-run after logout")
}
