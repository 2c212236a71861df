package session

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// GormStore persists sessions to a sqlite database so they survive server
// restarts. Enabled when SESSION_DB is configured.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over an already-migrated database.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Put inserts or replaces the record.
func (s *GormStore) Put(rec *models.Session) error {
	if err := s.db.Save(rec).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrSessionStore, err)
	}
	return nil
}

// Get returns the record, treating expired rows as missing and removing them.
func (s *GormStore) Get(id string) (*models.Session, error) {
	var rec models.Session
	if err := s.db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSession
		}
		return nil, apperrors.Wrap(apperrors.ErrSessionStore, err)
	}
	if rec.Expired(time.Now()) {
		_ = s.Delete(id)
		return nil, ErrNoSession
	}
	return &rec, nil
}

// Touch slides the expiry window of an existing record.
func (s *GormStore) Touch(id string, lastSeen, expiresAt time.Time) error {
	res := s.db.Model(&models.Session{}).Where("id = ?", id).
		Updates(map[string]interface{}{"last_seen": lastSeen, "expires_at": expiresAt})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrSessionStore, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoSession
	}
	return nil
}

// Delete removes the record, if present.
func (s *GormStore) Delete(id string) error {
	if err := s.db.Delete(&models.Session{}, "id = ?", id).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrSessionStore, err)
	}
	return nil
}
