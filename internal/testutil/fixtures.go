package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"

	"fintrack/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// TestProfile returns a profile with a unique email.
func TestProfile() models.Profile {
	n := nextID()
	return models.Profile{
		Name:    fmt.Sprintf("User %d", n),
		Email:   fmt.Sprintf("user%d@test.com", n),
		Picture: "https://example.com/avatar.png",
	}
}

// TestToken returns a valid OAuth token expiring an hour from now.
func TestToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  fmt.Sprintf("access-%d", nextID()),
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}
}

// TestTransaction returns a valid transaction of the given type.
func TestTransaction(t *testing.T, typ models.TransactionType, category, amount string) models.Transaction {
	t.Helper()

	value, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("invalid fixture amount %q: %v", amount, err)
	}
	return models.Transaction{
		ID:       fmt.Sprintf("tx-%d", nextID()),
		Date:     "2026-08-15",
		Amount:   value,
		Type:     typ,
		Category: category,
		Note:     "fixture",
	}
}

// TestDataset returns a dataset with default categories and a few records.
func TestDataset(t *testing.T) models.Dataset {
	t.Helper()

	d := models.EmptyDataset()
	d = d.Add(TestTransaction(t, models.TypeIncome, "Salary", "3200"))
	d = d.Add(TestTransaction(t, models.TypeExpense, "Food", "12.50"))
	d = d.Add(TestTransaction(t, models.TypeExpense, "Rent", "900"))
	return d
}
