package session

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// ErrNoSession means the identifier is unknown or the record has expired.
var ErrNoSession = errors.New("no session")

const idLength = 32

// Record is a resolved session: the token bundle and profile deserialized
// from storage. Handlers receive this, never the raw stored row.
type Record struct {
	ID      string
	Token   *oauth2.Token
	Profile models.Profile
}

// Manager creates, resolves and destroys sessions over a Store, applying the
// sliding expiry window.
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager creates a manager with the given sliding window.
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl}
}

// Create stores a new session for the token bundle and profile and returns
// its opaque identifier.
func (m *Manager) Create(token *oauth2.Token, profile models.Profile) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrSessionStore, err)
	}

	tokenJSON, err := json.Marshal(token)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrSessionStore, err)
	}
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrSessionStore, err)
	}

	now := time.Now()
	rec := &models.Session{
		ID:          id,
		TokenJSON:   tokenJSON,
		ProfileJSON: profileJSON,
		LastSeen:    now,
		ExpiresAt:   now.Add(m.ttl),
		CreatedAt:   now,
	}
	if err := m.store.Put(rec); err != nil {
		return "", err
	}
	return id, nil
}

// Resolve looks up the identifier and slides the expiry window on a hit.
// A miss or an expired record reports no identity via ErrNoSession.
func (m *Manager) Resolve(id string) (*Record, error) {
	if id == "" {
		return nil, ErrNoSession
	}

	rec, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := m.store.Touch(id, now, now.Add(m.ttl)); err != nil && !errors.Is(err, ErrNoSession) {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(rec.TokenJSON, &token); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSessionStore, fmt.Errorf("corrupt token bundle: %w", err))
	}
	var profile models.Profile
	if err := json.Unmarshal(rec.ProfileJSON, &profile); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSessionStore, fmt.Errorf("corrupt profile: %w", err))
	}

	return &Record{ID: id, Token: &token, Profile: profile}, nil
}

// Destroy removes the session entirely (logout).
func (m *Manager) Destroy(id string) error {
	return m.store.Delete(id)
}

// generateID returns a new opaque session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
