package insight

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/domain"
)

const (
	// expenseWindow bounds how far back the formatter looks.
	expenseWindow = 30 * 24 * time.Hour

	// maxPromptTransactions caps the number of expenses embedded in a prompt
	// to keep the token count bounded.
	maxPromptTransactions = 50

	uncategorized = "uncategorized"
)

// PromptTransaction is the projection of a transaction that gets embedded in
// a prompt payload.
type PromptTransaction struct {
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"` // calendar day, YYYY-MM-DD
	Name     string  `json:"name"`
}

// FormatForPrompt reduces a raw transaction history to the bounded payload
// the prompts embed: expenses only (amount > 0), trailing 30 days, newest
// first, at most 50 entries. Income and transfers are excluded so the model
// focuses on discretionary spending.
func FormatForPrompt(txs []domain.Transaction, now time.Time) []PromptTransaction {
	cutoff := now.Add(-expenseWindow)

	recent := make([]domain.Transaction, 0, len(txs))
	for _, t := range txs {
		if !t.IsExpense() {
			continue
		}
		if t.Date.Before(cutoff) {
			continue
		}
		recent = append(recent, t)
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})
	if len(recent) > maxPromptTransactions {
		recent = recent[:maxPromptTransactions]
	}

	out := make([]PromptTransaction, 0, len(recent))
	for _, t := range recent {
		out = append(out, PromptTransaction{
			Amount:   t.Amount.InexactFloat64(),
			Category: t.CategoryOrDefault(uncategorized),
			Date:     civil.DateOf(t.Date).String(),
			Name:     t.Name,
		})
	}
	return out
}

// IncomeSummary aggregates inflows over the trailing 30 days.
type IncomeSummary struct {
	Total decimal.Decimal
	Count int
}

// SummarizeIncome sums the absolute value of inflow transactions (amount < 0)
// within the trailing 30 days.
func SummarizeIncome(txs []domain.Transaction, now time.Time) IncomeSummary {
	cutoff := now.Add(-expenseWindow)

	var sum IncomeSummary
	sum.Total = decimal.Zero
	for _, t := range txs {
		if !t.Amount.IsNegative() || t.Date.Before(cutoff) {
			continue
		}
		sum.Total = sum.Total.Add(t.Amount.Abs())
		sum.Count++
	}
	return sum
}

// CategoryStat is a per-category spending aggregate used by the budget prompt.
type CategoryStat struct {
	Category       string
	Total          decimal.Decimal
	MonthlyAverage decimal.Decimal
}

// CategoryStats aggregates expense totals per category over the whole input
// (callers typically pass a trailing 90-day window) and derives a monthly
// average from the span of dates present.
func CategoryStats(txs []domain.Transaction, now time.Time) []CategoryStat {
	totals := make(map[string]decimal.Decimal)
	var oldest time.Time

	for _, t := range txs {
		if !t.IsExpense() {
			continue
		}
		key := t.CategoryOrDefault(uncategorized)
		totals[key] = totals[key].Add(t.Amount)
		if oldest.IsZero() || t.Date.Before(oldest) {
			oldest = t.Date
		}
	}
	if len(totals) == 0 {
		return nil
	}

	months := decimal.NewFromInt(1)
	if !oldest.IsZero() {
		if m := int64(now.Sub(oldest).Hours() / (24 * 30)); m > 1 {
			months = decimal.NewFromInt(m)
		}
	}

	stats := make([]CategoryStat, 0, len(totals))
	for cat, total := range totals {
		stats = append(stats, CategoryStat{
			Category:       cat,
			Total:          total,
			MonthlyAverage: total.DivRound(months, 2),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Total.GreaterThan(stats[j].Total)
	})
	return stats
}
