package insight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/domain"
	"github.com/spendlens/spendlens/internal/llm"
)

// Precondition failures, checked before any model call is made.
var (
	ErrNoAccounts     = errors.New("no connected accounts")
	ErrNoTransactions = errors.New("no transactions available")
)

// transactionLookback is how much history is read for a generation.
const transactionLookback = 90 * 24 * time.Hour

// AccountRepository exposes the account reads the service needs.
type AccountRepository interface {
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// TransactionRepository exposes the transaction reads the service needs.
type TransactionRepository interface {
	ListByUser(ctx context.Context, userID string, since time.Time) ([]domain.Transaction, error)
	CountCreatedAfter(ctx context.Context, userID string, after time.Time) (int64, error)
}

// InsightRepository persists generated insight batches. ReplaceForUser must
// be atomic: the old batch is deleted and the new one inserted in a single
// transaction, or neither happens.
type InsightRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Insight, error) // newest first
	ReplaceForUser(ctx context.Context, userID string, insights []domain.Insight) error
	DeleteByID(ctx context.Context, userID, insightID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// RawArchiver stores the raw model responses of a generation, best-effort.
type RawArchiver interface {
	ArchiveGeneration(ctx context.Context, generationID string, raw *RawResponses) error
}

// Result is what callers get back from GetInsights.
type Result struct {
	Insights    []domain.Insight `json:"insights"`
	FromCache   bool             `json:"fromCache"`
	GeneratedAt time.Time        `json:"generatedAt"`

	// Saved is false when generation succeeded but the batch could not be
	// persisted; the insights are still returned rather than discarded.
	Saved bool `json:"saved"`
}

// GetOptions tune a single GetInsights call.
type GetOptions struct {
	// MonthlyIncome is the user's declared monthly income, when known.
	// Absence is meaningful: the budget prompt falls back to observed
	// deposits.
	MonthlyIncome *decimal.Decimal

	// ForceRefresh bypasses the cache policy entirely.
	ForceRefresh bool
}

// Service orchestrates the insight pipeline: preconditions, cache decision,
// generation, archival, and persistence.
type Service struct {
	accounts     AccountRepository
	transactions TransactionRepository
	insights     InsightRepository
	generator    *Generator
	archiver     RawArchiver
	log          zerolog.Logger
	now          func() time.Time
}

// NewService wires the insight service. archiver may be nil.
func NewService(
	accounts AccountRepository,
	transactions TransactionRepository,
	insights InsightRepository,
	generator *Generator,
	archiver RawArchiver,
	log zerolog.Logger,
) *Service {
	return &Service{
		accounts:     accounts,
		transactions: transactions,
		insights:     insights,
		generator:    generator,
		archiver:     archiver,
		log:          log,
		now:          time.Now,
	}
}

// WithClock overrides the service time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetInsights returns the user's insights, serving the stored batch when the
// cache policy allows and running a full generation otherwise.
func (s *Service) GetInsights(ctx context.Context, userID string, opts GetOptions) (*Result, error) {
	now := s.now()

	accountCount, err := s.accounts.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("insights: count accounts: %w", err)
	}
	if accountCount == 0 {
		return nil, ErrNoAccounts
	}

	txs, err := s.transactions.ListByUser(ctx, userID, now.Add(-transactionLookback))
	if err != nil {
		return nil, fmt.Errorf("insights: list transactions: %w", err)
	}
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}

	if !opts.ForceRefresh {
		if result, ok, err := s.tryCache(ctx, userID, txs, now); err != nil {
			return nil, err
		} else if ok {
			return result, nil
		}
	}

	generated, raw, err := s.generator.Generate(ctx, txs, opts.MonthlyIncome)
	if err != nil {
		s.log.Error().Err(err).Str("operation", "generate_insights").Time("at", now).Msg("insight generation failed")
		return nil, err
	}

	generationID := uuid.NewString()
	for i := range generated {
		generated[i].ID = uuid.NewString()
		generated[i].CreatedAt = now
	}

	if s.archiver != nil {
		if err := s.archiver.ArchiveGeneration(ctx, generationID, raw); err != nil {
			s.log.Warn().Err(err).Str("operation", "archive_generation").Msg("raw response archival failed")
		}
	}

	result := &Result{Insights: generated, FromCache: false, GeneratedAt: now, Saved: true}

	if err := s.insights.ReplaceForUser(ctx, userID, generated); err != nil {
		// Generation work is not discarded on a storage hiccup; the caller
		// still gets the fresh insights, flagged as unsaved.
		s.log.Error().Err(err).Str("operation", "persist_insights").Time("at", now).Msg("insight persistence failed")
		result.Saved = false
	}
	return result, nil
}

func (s *Service) tryCache(ctx context.Context, userID string, txs []domain.Transaction, now time.Time) (*Result, bool, error) {
	stored, err := s.insights.ListByUser(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("insights: list stored insights: %w", err)
	}
	if len(stored) == 0 {
		return nil, false, nil
	}

	lastGenerated := stored[0].CreatedAt // newest first
	newCount, err := s.transactions.CountCreatedAfter(ctx, userID, lastGenerated)
	if err != nil {
		return nil, false, fmt.Errorf("insights: count new transactions: %w", err)
	}

	if !UseCache(len(stored), &lastGenerated, int(newCount), now) {
		return nil, false, nil
	}
	return &Result{
		Insights:    stored,
		FromCache:   true,
		GeneratedAt: lastGenerated,
		Saved:       true,
	}, true, nil
}

// RefreshInsights discards the stored batch and generates a fresh one.
func (s *Service) RefreshInsights(ctx context.Context, userID string, opts GetOptions) (*Result, error) {
	opts.ForceRefresh = true
	return s.GetInsights(ctx, userID, opts)
}

// DeleteInsight removes one stored insight.
func (s *Service) DeleteInsight(ctx context.Context, userID, insightID string) error {
	if err := s.insights.DeleteByID(ctx, userID, insightID); err != nil {
		return fmt.Errorf("insights: delete insight: %w", err)
	}
	return nil
}

// UserMessage maps a pipeline error to the message shown to the end user.
// Structured detail stays in the logs; the user gets a category.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoAccounts):
		return "Connect a bank account to see insights."
	case errors.Is(err, ErrNoTransactions):
		return "No transactions available yet. Insights will appear after your first sync."
	case errors.Is(err, llm.ErrRateLimited):
		return "The insights service is busy right now. Please try again in a few minutes."
	case errors.Is(err, llm.ErrQuotaExceeded):
		return "The insights service has reached its usage limit. Please try again later."
	case errors.Is(err, llm.ErrInvalidCredentials):
		return "The insights service is misconfigured. Please contact support."
	default:
		return "Something went wrong generating insights. Please try again."
	}
}
