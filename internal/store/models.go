package store

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/domain"
)

// AccountRow is a linked bank account.
type AccountRow struct {
	ID          string `gorm:"primaryKey;size:36"`
	UserID      string `gorm:"index;size:36"`
	Name        string `gorm:"size:255"`
	Institution string `gorm:"size:255"`
	CreatedAt   time.Time
}

func (AccountRow) TableName() string { return "accounts" }

// TransactionRow is a synced bank transaction. Amount keeps the pipeline's
// sign convention: positive = expense, negative = income.
type TransactionRow struct {
	ID        string          `gorm:"primaryKey;size:36"`
	UserID    string          `gorm:"index;size:36"`
	AccountID string          `gorm:"index;size:36"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2)"`
	Date      time.Time       `gorm:"index"`
	Name      string          `gorm:"size:512"`
	Category  *string         `gorm:"size:128"`
	Pending   bool
	CreatedAt time.Time `gorm:"index"`
}

func (TransactionRow) TableName() string { return "transactions" }

// InsightRow stores one generated insight: the full record as an opaque JSON
// blob plus a denormalized type column for filtering.
type InsightRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"index;size:36"`
	Content   string `gorm:"type:json"`
	Type      string `gorm:"size:32"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (InsightRow) TableName() string { return "insights" }

func transactionFromRow(r TransactionRow) domain.Transaction {
	return domain.Transaction{
		ID:        r.ID,
		UserID:    r.UserID,
		AccountID: r.AccountID,
		Amount:    r.Amount,
		Date:      r.Date,
		Name:      r.Name,
		Category:  r.Category,
		Pending:   r.Pending,
		CreatedAt: r.CreatedAt,
	}
}
