package insight

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/domain"
)

func tx(amount float64, daysAgo int, now time.Time) domain.Transaction {
	return domain.Transaction{
		Amount: decimal.NewFromFloat(amount),
		Date:   now.AddDate(0, 0, -daysAgo),
		Name:   fmt.Sprintf("merchant-%d", daysAgo),
	}
}

func TestFormatForPromptFiltersIncomeAndOldTransactions(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{
		tx(42.50, 1, now),   // expense, in window
		tx(-1200, 2, now),   // income, excluded
		tx(13.20, 45, now),  // expense, too old
		tx(0, 3, now),       // zero amount, not an expense
		tx(99.99, 29, now),  // expense, in window
	}

	got := FormatForPrompt(txs, now)
	if len(got) != 2 {
		t.Fatalf("FormatForPrompt returned %d transactions, want 2", len(got))
	}
	for _, p := range got {
		if p.Amount <= 0 {
			t.Errorf("formatted output contains non-expense amount %v", p.Amount)
		}
	}
	// Newest first.
	if got[0].Name != "merchant-1" || got[1].Name != "merchant-29" {
		t.Errorf("unexpected order: %q, %q", got[0].Name, got[1].Name)
	}
}

func TestFormatForPromptCapsAtFifty(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	var txs []domain.Transaction
	for i := 0; i < 80; i++ {
		d := now.Add(-time.Duration(i) * time.Hour)
		txs = append(txs, domain.Transaction{
			Amount: decimal.NewFromInt(10),
			Date:   d,
			Name:   fmt.Sprintf("tx-%d", i),
		})
	}

	got := FormatForPrompt(txs, now)
	if len(got) != 50 {
		t.Fatalf("FormatForPrompt returned %d transactions, want 50", len(got))
	}
	// The 50 most recent are tx-0 .. tx-49.
	if got[0].Name != "tx-0" || got[49].Name != "tx-49" {
		t.Errorf("unexpected boundary entries: first %q, last %q", got[0].Name, got[49].Name)
	}
}

func TestFormatForPromptEmptyInput(t *testing.T) {
	got := FormatForPrompt(nil, time.Now())
	if len(got) != 0 {
		t.Errorf("FormatForPrompt(nil) returned %d entries, want 0", len(got))
	}
}

func TestFormatForPromptUncategorizedFallback(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	cat := "dining"
	txs := []domain.Transaction{
		{Amount: decimal.NewFromInt(5), Date: now, Name: "a"},
		{Amount: decimal.NewFromInt(5), Date: now, Name: "b", Category: &cat},
	}
	got := FormatForPrompt(txs, now)
	if got[0].Category != "uncategorized" && got[1].Category != "uncategorized" {
		t.Error("missing category not projected as \"uncategorized\"")
	}
}

func TestSummarizeIncome(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{
		tx(-1000, 5, now),  // income, in window
		tx(-250.50, 10, now),
		tx(-500, 60, now),  // income, too old
		tx(75, 2, now),     // expense, ignored
	}

	got := SummarizeIncome(txs, now)
	if got.Count != 2 {
		t.Errorf("income count = %d, want 2", got.Count)
	}
	want := decimal.NewFromFloat(1250.50)
	if !got.Total.Equal(want) {
		t.Errorf("income total = %s, want %s", got.Total, want)
	}
}

func TestCategoryStats(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	dining := "dining"
	txs := []domain.Transaction{
		{Amount: decimal.NewFromInt(30), Date: now.AddDate(0, 0, -10), Category: &dining},
		{Amount: decimal.NewFromInt(60), Date: now.AddDate(0, 0, -80), Category: &dining},
		{Amount: decimal.NewFromInt(40), Date: now.AddDate(0, 0, -5)},
		{Amount: decimal.NewFromInt(-500), Date: now.AddDate(0, 0, -3)}, // income ignored
	}

	stats := CategoryStats(txs, now)
	if len(stats) != 2 {
		t.Fatalf("got %d categories, want 2", len(stats))
	}
	// Sorted by total descending: dining (90) first.
	if stats[0].Category != "dining" || !stats[0].Total.Equal(decimal.NewFromInt(90)) {
		t.Errorf("top stat = %s/%s, want dining/90", stats[0].Category, stats[0].Total)
	}
	if stats[1].Category != "uncategorized" {
		t.Errorf("second stat = %s, want uncategorized", stats[1].Category)
	}
}
