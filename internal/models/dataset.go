package models

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/uuid"
)

// Dataset is the full authoritative state for one user: the transaction list
// and the category set. It is also the exact shape of the remote document.
//
// All mutating operations are pure: they return a new Dataset and leave the
// receiver untouched, so replaying a sequence of operations against an empty
// dataset always yields the same result as applying them incrementally.
type Dataset struct {
	Transactions []Transaction `json:"transactions"`
	Categories   CategoryState `json:"categories"`
}

// EmptyDataset returns a dataset with no transactions and the default
// categories. This is the state adopted when no stored data exists.
func EmptyDataset() Dataset {
	return Dataset{
		Transactions: []Transaction{},
		Categories:   DefaultCategories(),
	}
}

// Add prepends a transaction (newest-first convention). A missing ID is
// generated here, on the client side of the system.
func (d Dataset) Add(t Transaction) Dataset {
	if t.ID == "" {
		t.ID = uuid.New()
	}
	out := d.cloneCategories()
	out.Transactions = make([]Transaction, 0, len(d.Transactions)+1)
	out.Transactions = append(out.Transactions, t)
	out.Transactions = append(out.Transactions, d.Transactions...)
	return out
}

// Delete removes the transaction with the given ID. An unknown ID is a no-op.
func (d Dataset) Delete(id string) Dataset {
	out := d.cloneCategories()
	out.Transactions = make([]Transaction, 0, len(d.Transactions))
	for _, t := range d.Transactions {
		if t.ID != id {
			out.Transactions = append(out.Transactions, t)
		}
	}
	return out
}

// Update replaces the transaction with a matching ID in place, preserving
// list order. An unknown ID is a no-op.
func (d Dataset) Update(updated Transaction) Dataset {
	out := d.cloneCategories()
	out.Transactions = make([]Transaction, len(d.Transactions))
	for i, t := range d.Transactions {
		if t.ID == updated.ID {
			out.Transactions[i] = updated
		} else {
			out.Transactions[i] = t
		}
	}
	return out
}

// WithCategories swaps the category set. Transactions referencing labels that
// no longer exist are left unchanged.
func (d Dataset) WithCategories(c CategoryState) Dataset {
	out := Dataset{Transactions: d.Transactions, Categories: c.clone()}
	return out
}

// Find returns the transaction with the given ID, if present.
func (d Dataset) Find(id string) (Transaction, bool) {
	for _, t := range d.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return Transaction{}, false
}

func (d Dataset) cloneCategories() Dataset {
	return Dataset{Transactions: d.Transactions, Categories: d.Categories.clone()}
}

// Summary aggregates a dataset for display: overall totals plus expense
// totals grouped by category.
type Summary struct {
	TotalIncome       decimal.Decimal
	TotalExpense      decimal.Decimal
	Balance           decimal.Decimal
	ExpenseByCategory map[string]decimal.Decimal
}

// Summarize computes totals across the whole transaction list.
func (d Dataset) Summarize() Summary {
	s := Summary{
		TotalIncome:       decimal.Zero,
		TotalExpense:      decimal.Zero,
		ExpenseByCategory: make(map[string]decimal.Decimal),
	}
	for _, t := range d.Transactions {
		switch t.Type {
		case TypeIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case TypeExpense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
			cur, ok := s.ExpenseByCategory[t.Category]
			if !ok {
				cur = decimal.Zero
			}
			s.ExpenseByCategory[t.Category] = cur.Add(t.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}
