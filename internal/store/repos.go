package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/spendlens/spendlens/internal/domain"
)

// AccountRepository reads linked accounts.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&AccountRow{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("store: count accounts: %w", err)
	}
	return count, nil
}

// TransactionRepository reads synced transactions.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// ListByUser returns the user's transactions occurring on or after since,
// newest first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string, since time.Time) ([]domain.Transaction, error) {
	var rows []TransactionRow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: list transactions: %w", err)
	}

	txs := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, transactionFromRow(row))
	}
	return txs, nil
}

// CountCreatedAfter counts transactions synced into the store after the
// given time, regardless of when they occurred.
func (r *TransactionRepository) CountCreatedAfter(ctx context.Context, userID string, after time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&TransactionRow{}).
		Where("user_id = ? AND created_at > ?", userID, after).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("store: count new transactions: %w", err)
	}
	return count, nil
}

// InsightRepository persists generated insight batches.
type InsightRepository struct {
	db *gorm.DB
}

func NewInsightRepository(db *gorm.DB) *InsightRepository {
	return &InsightRepository{db: db}
}

// ListByUser returns the user's stored insights, newest first.
func (r *InsightRepository) ListByUser(ctx context.Context, userID string) ([]domain.Insight, error) {
	var rows []InsightRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: list insights: %w", err)
	}

	insights := make([]domain.Insight, 0, len(rows))
	for _, row := range rows {
		var ins domain.Insight
		if err := json.Unmarshal([]byte(row.Content), &ins); err != nil {
			return nil, fmt.Errorf("store: decode insight %s: %w", row.ID, err)
		}
		ins.ID = row.ID
		ins.CreatedAt = row.CreatedAt
		insights = append(insights, ins)
	}
	return insights, nil
}

// ReplaceForUser atomically swaps the user's stored batch for the new one.
// Either the delete and all inserts commit together or none of them do.
func (r *InsightRepository) ReplaceForUser(ctx context.Context, userID string, insights []domain.Insight) error {
	rows := make([]InsightRow, 0, len(insights))
	for _, ins := range insights {
		content, err := json.Marshal(ins)
		if err != nil {
			return fmt.Errorf("store: encode insight: %w", err)
		}
		rows = append(rows, InsightRow{
			ID:        ins.ID,
			UserID:    userID,
			Content:   string(content),
			Type:      string(ins.Category),
			CreatedAt: ins.CreatedAt,
			UpdatedAt: ins.CreatedAt,
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&InsightRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("store: replace insights: %w", err)
	}
	return nil
}

// DeleteByID removes one insight owned by the user.
func (r *InsightRepository) DeleteByID(ctx context.Context, userID, insightID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, insightID).
		Delete(&InsightRow{}).Error
	if err != nil {
		return fmt.Errorf("store: delete insight: %w", err)
	}
	return nil
}

// DeleteByUser removes every insight owned by the user.
func (r *InsightRepository) DeleteByUser(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&InsightRow{}).Error
	if err != nil {
		return fmt.Errorf("store: delete insights: %w", err)
	}
	return nil
}

// Migrate creates or updates the tables the repositories use.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&AccountRow{}, &TransactionRow{}, &InsightRow{}); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}
