package fintrack

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCacheTransactions(t *testing.T) {
	cache := openTestCache(t)

	_, ok, err := cache.Transactions()
	require.NoError(t, err)
	assert.False(t, ok, "expected no entry in a fresh cache")

	want := []models.Transaction{
		testutil.TestTransaction(t, models.TypeExpense, "Food", "12.50"),
		testutil.TestTransaction(t, models.TypeIncome, "Salary", "3200"),
	}
	require.NoError(t, cache.SaveTransactions(want))

	got, ok, err := cache.Transactions()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, want[0].ID, got[0].ID)
	assert.True(t, want[0].Amount.Equal(got[0].Amount))
}

func TestCacheCategories(t *testing.T) {
	cache := openTestCache(t)

	_, ok, err := cache.Categories()
	require.NoError(t, err)
	assert.False(t, ok, "expected no entry in a fresh cache")

	want := models.DefaultCategories()
	require.NoError(t, cache.SaveCategories(want))

	got, ok, err := cache.Categories()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Expense, got.Expense)
	assert.Equal(t, want.Income, got.Income)
}

func TestCacheSessionID(t *testing.T) {
	cache := openTestCache(t)

	assert.Empty(t, cache.SessionID())

	require.NoError(t, cache.SetSessionID("opaque-id"))
	assert.Equal(t, "opaque-id", cache.SessionID())

	require.NoError(t, cache.ClearSessionID())
	assert.Empty(t, cache.SessionID())
}

func TestCacheSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	cache, err := OpenCache(path)
	require.NoError(t, err)
	require.NoError(t, cache.SetSessionID("sticky"))
	require.NoError(t, cache.Close())

	reopened, err := OpenCache(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, "sticky", reopened.SessionID())
}
