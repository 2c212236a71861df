package fintrack

import (
	"encoding/json"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"fintrack/internal/models"
)

// Storage keys. Transactions and categories are independent entries, and the
// session identifier shares the same durable store, mirroring the browser's
// localStorage layout.
const (
	bucketName      = "fintrack"
	keyTransactions = "fintrack_transactions"
	keyCategories   = "fintrack_categories"
	keySessionID    = "fintrack_sid"
)

// Cache is the on-device key-value store used when no authenticated identity
// exists, and as the durable home of the session identifier.
type Cache struct {
	db *bolt.DB
}

// OpenCache opens (or creates) the cache file.
func OpenCache(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open cache")
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create cache bucket")
	}

	return &Cache{db: db}, nil
}

// Close closes the underlying file.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Transactions returns the cached transaction list. The second return value
// is false when no entry exists.
func (c *Cache) Transactions() ([]models.Transaction, bool, error) {
	raw, ok, err := c.get(keyTransactions)
	if err != nil || !ok {
		return nil, false, err
	}
	var out []models.Transaction
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, errors.Wrap(err, "corrupt cached transactions")
	}
	return out, true, nil
}

// SaveTransactions overwrites the cached transaction list.
func (c *Cache) SaveTransactions(transactions []models.Transaction) error {
	return c.putJSON(keyTransactions, transactions)
}

// Categories returns the cached category state. The second return value is
// false when no entry exists.
func (c *Cache) Categories() (models.CategoryState, bool, error) {
	raw, ok, err := c.get(keyCategories)
	if err != nil || !ok {
		return models.CategoryState{}, false, err
	}
	var out models.CategoryState
	if err := json.Unmarshal(raw, &out); err != nil {
		return models.CategoryState{}, false, errors.Wrap(err, "corrupt cached categories")
	}
	return out, true, nil
}

// SaveCategories overwrites the cached category state.
func (c *Cache) SaveCategories(categories models.CategoryState) error {
	return c.putJSON(keyCategories, categories)
}

// SessionID returns the stored session identifier, or "".
func (c *Cache) SessionID() string {
	raw, ok, err := c.get(keySessionID)
	if err != nil || !ok {
		return ""
	}
	return string(raw)
}

// SetSessionID persists the session identifier.
func (c *Cache) SetSessionID(id string) error {
	return c.put(keySessionID, []byte(id))
}

// ClearSessionID removes the stored session identifier.
func (c *Cache) ClearSessionID() error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(keySessionID))
	})
}

func (c *Cache) get(key string) ([]byte, bool, error) {
	var out []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get([]byte(key))
		if v != nil {
			out = make([]byte, len(v))
			copy(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, false, errors.Wrap(err, "cache read failed")
	}
	return out, out != nil, nil
}

func (c *Cache) put(key string, value []byte) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), value)
	})
	return errors.Wrap(err, "cache write failed")
}

func (c *Cache) putJSON(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "cache encode failed")
	}
	return c.put(key, raw)
}
