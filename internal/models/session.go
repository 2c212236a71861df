package models

import "time"

// Session is a server-side session record mapping an opaque identifier to the
// OAuth token bundle and profile of an authenticated user. Token and profile
// are stored as serialized JSON so the record round-trips through both the
// in-memory and the database-backed store.
//
// The tokens never leave the server; clients only ever hold the ID.
type Session struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	TokenJSON   []byte    `json:"-"`
	ProfileJSON []byte    `json:"-"`
	LastSeen    time.Time `json:"last_seen"`
	ExpiresAt   time.Time `gorm:"index" json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Expired reports whether the sliding window has lapsed at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
