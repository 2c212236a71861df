package models

// CategoryState holds the category labels available for each transaction type.
// Labels are unique within a list; the same label may appear in both lists
// independently. The JSON keys match the persisted document format.
type CategoryState struct {
	Expense []string `json:"EXPENSE"`
	Income  []string `json:"INCOME"`
}

// DefaultCategories returns the stock category lists used for a fresh dataset.
func DefaultCategories() CategoryState {
	return CategoryState{
		Expense: []string{
			"Food", "Rent", "Utilities", "Transport", "Entertainment",
			"Shopping", "Health", "Travel", "Other",
		},
		Income: []string{
			"Salary", "Freelance", "Investments", "Gifts", "Other",
		},
	}
}

// ListFor returns the label list for the given transaction type.
func (c CategoryState) ListFor(t TransactionType) []string {
	if t == TypeIncome {
		return c.Income
	}
	return c.Expense
}

// Contains reports whether the label exists in the list for the given type.
func (c CategoryState) Contains(t TransactionType, label string) bool {
	for _, l := range c.ListFor(t) {
		if l == label {
			return true
		}
	}
	return false
}

// clone returns a deep copy so reducer operations never alias shared slices.
func (c CategoryState) clone() CategoryState {
	out := CategoryState{
		Expense: make([]string, len(c.Expense)),
		Income:  make([]string, len(c.Income)),
	}
	copy(out.Expense, c.Expense)
	copy(out.Income, c.Income)
	return out
}
