package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one synced bank transaction.
// Sign convention: a positive Amount is an outflow (expense), a negative
// Amount is an inflow (income). Everything downstream depends on this.
type Transaction struct {
	ID        string
	UserID    string
	AccountID string

	Amount   decimal.Decimal // positive = expense, negative = income
	Date     time.Time       // when the transaction occurred
	Name     string          // merchant / free-text description
	Category *string         // optional category label
	Pending  bool

	CreatedAt time.Time // when the record was synced into our store
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsPositive()
}

// CategoryOrDefault returns the category label, or fallback when unset.
func (t Transaction) CategoryOrDefault(fallback string) string {
	if t.Category == nil || *t.Category == "" {
		return fallback
	}
	return *t.Category
}
