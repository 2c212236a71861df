package fintrack

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"fintrack/internal/logger"
)

// SuccessMessageType marks a completion message from the login popup.
const SuccessMessageType = "OAUTH_AUTH_SUCCESS"

const (
	defaultPollInterval = time.Second
	defaultCloseGrace   = time.Second
)

// Message is a cross-window message received from the authentication popup.
type Message struct {
	Origin    string
	Type      string
	SessionID string
}

// Popup is an open authentication window.
type Popup interface {
	Closed() bool
	Close()
}

// Window opens popups in whatever environment hosts the client, and delivers
// the messages they post back.
type Window interface {
	Open(url string) (Popup, <-chan Message, error)
}

// Bridge runs the popup login flow and propagates the resulting session
// identifier into durable client storage, so it can be attached to later
// requests even when cookies cannot flow.
type Bridge struct {
	api    *Client
	window Window
	origin string
	store  SessionIDStore

	// reload re-runs the application's startup resolution under the new
	// identity after login or logout.
	reload func()

	pollInterval time.Duration
	closeGrace   time.Duration
}

// NewBridge creates a bridge. origin is the hosting page's own origin; only
// messages from that origin are trusted.
func NewBridge(api *Client, window Window, origin string, store SessionIDStore, reload func()) *Bridge {
	return &Bridge{
		api:          api,
		window:       window,
		origin:       origin,
		store:        store,
		reload:       reload,
		pollInterval: defaultPollInterval,
		closeGrace:   defaultCloseGrace,
	}
}

// BeginLogin requests an authorization URL, opens it in a popup, and waits
// for a completion message. It returns true when login completed and the
// session identifier was stored. When the popup is blocked or closed before
// completing, the listener is torn down after a grace period and no state
// changes: the application stays unauthenticated and no error is surfaced.
//
// Only messages whose origin matches the hosting origin and that carry the
// success marker are honored; anything else is ignored so a foreign page
// cannot inject a counterfeit session identifier.
func (b *Bridge) BeginLogin(ctx context.Context) (bool, error) {
	url, err := b.api.AuthURL(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to fetch auth URL")
	}

	popup, messages, err := b.window.Open(url)
	if err != nil {
		logger.Get().Warnw("login popup blocked", "error", err.Error())
		return false, nil
	}

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	var closedAt time.Time
	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				return false, nil
			}
			if msg.Origin != b.origin {
				continue
			}
			if msg.Type != SuccessMessageType || msg.SessionID == "" {
				continue
			}
			if err := b.store.SetSessionID(msg.SessionID); err != nil {
				return false, errors.Wrap(err, "failed to persist session identifier")
			}
			popup.Close()
			b.reload()
			return true, nil

		case now := <-ticker.C:
			if !popup.Closed() {
				closedAt = time.Time{}
				continue
			}
			if closedAt.IsZero() {
				closedAt = now
				continue
			}
			if now.Sub(closedAt) >= b.closeGrace {
				return false, nil
			}

		case <-ctx.Done():
			popup.Close()
			return false, ctx.Err()
		}
	}
}

// Logout destroys the server session, clears the stored identifier and
// re-runs startup resolution.
func (b *Bridge) Logout(ctx context.Context) error {
	if err := b.api.Logout(ctx); err != nil {
		return errors.Wrap(err, "logout request failed")
	}
	if err := b.store.ClearSessionID(); err != nil {
		return errors.Wrap(err, "failed to clear session identifier")
	}
	b.reload()
	return nil
}
