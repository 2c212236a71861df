package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType identifies whether a transaction adds to or subtracts from
// the user's balance. The upper-case values match the persisted document format.
type TransactionType string

const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

// Valid reports whether the type is one of the two known values.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// DateLayout is the calendar-day format used for transaction dates.
// Transactions carry no time component.
const DateLayout = "2006-01-02"

// Transaction is a single income or expense record. The ID is generated on the
// client at creation time and is the only handle used for edits and deletes.
// The category label is checked against the category set when the record is
// entered, but never re-validated afterwards: deleting a category leaves
// referencing transactions with an orphaned label.
type Transaction struct {
	ID       string          `json:"id"`
	Date     string          `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Type     TransactionType `json:"type"`
	Category string          `json:"category"`
	Note     string          `json:"note"`
}

// Validate checks the fields that the data model constrains: a parseable
// calendar date, a non-negative amount, and a known type.
func (t Transaction) Validate() error {
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", t.Date)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("amount must not be negative, got %s", t.Amount)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("invalid transaction type %q", t.Type)
	}
	return nil
}
