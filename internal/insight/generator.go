package insight

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/spendlens/spendlens/internal/domain"
	"github.com/spendlens/spendlens/internal/llm"
)

// Fixed confidence assigned to insights mapped from the budget and savings
// flows, which carry no confidence of their own.
const (
	budgetConfidence  = 0.8
	savingsConfidence = 0.85
)

// Priority thresholds for savings opportunities, in monthly dollars.
var (
	savingsHighThreshold   = decimal.NewFromInt(50)
	savingsMediumThreshold = decimal.NewFromInt(20)
)

// RawResponses holds the unprocessed model text of one generation, kept for
// archival.
type RawResponses struct {
	Spending string
	Budget   string
	Savings  string
}

// Generator runs the three prompt flows concurrently and assembles their
// results into a single sorted insight list.
type Generator struct {
	client     llm.Client
	maxRetries int
	baseDelay  time.Duration

	// callTimeout, when non-zero, bounds each individual model call. The
	// default is no explicit deadline.
	callTimeout time.Duration

	onDrop DropObserver
	now    func() time.Time
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithRetryPolicy overrides the retry ceiling and backoff unit.
func WithRetryPolicy(maxRetries int, baseDelay time.Duration) GeneratorOption {
	return func(g *Generator) {
		g.maxRetries = maxRetries
		g.baseDelay = baseDelay
	}
}

// WithCallTimeout bounds each model call with a deadline.
func WithCallTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) { g.callTimeout = d }
}

// WithDropObserver registers a hook for silently dropped records.
func WithDropObserver(fn DropObserver) GeneratorOption {
	return func(g *Generator) { g.onDrop = fn }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a Generator around the given model client.
func NewGenerator(client llm.Client, opts ...GeneratorOption) *Generator {
	g := &Generator{
		client:     client,
		maxRetries: llm.DefaultMaxRetries,
		baseDelay:  llm.DefaultBaseDelay,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs the three flows over the user's transactions and returns the
// merged, sorted insight batch plus the raw model responses. All three flows
// must succeed; the first failure aborts the whole generation and no partial
// result is returned.
func (g *Generator) Generate(ctx context.Context, txs []domain.Transaction, monthlyIncome *decimal.Decimal) ([]domain.Insight, *RawResponses, error) {
	now := g.now()
	formatted := FormatForPrompt(txs, now)
	stats := CategoryStats(txs, now)
	income := SummarizeIncome(txs, now)

	var (
		spendingInsights []domain.Insight
		budgetRecs       []domain.BudgetRecommendation
		savingsOpps      []domain.SavingsOpportunity
		raw              RawResponses
	)

	// Each goroutine owns its own prompt, response, and result slot; no
	// state is shared between flows. The group waits for all three before
	// reporting the first error.
	var eg errgroup.Group

	eg.Go(func() error {
		prompt, err := buildSpendingPrompt(formatted)
		if err != nil {
			return fmt.Errorf("spending analysis: %w", err)
		}
		text, err := g.complete(ctx, prompt, spendingOptions)
		if err != nil {
			return fmt.Errorf("spending analysis: %w", err)
		}
		raw.Spending = text

		records, err := parseSpendingInsights(text)
		if err != nil {
			return fmt.Errorf("spending analysis: %w", err)
		}
		kept, dropped := validateInsightRecords(records)
		if dropped > 0 && g.onDrop != nil {
			g.onDrop("spending", dropped)
		}
		spendingInsights = kept
		return nil
	})

	eg.Go(func() error {
		prompt, err := buildBudgetPrompt(formatted, stats, income, monthlyIncome)
		if err != nil {
			return fmt.Errorf("budget recommendations: %w", err)
		}
		text, err := g.complete(ctx, prompt, budgetOptions)
		if err != nil {
			return fmt.Errorf("budget recommendations: %w", err)
		}
		raw.Budget = text

		records, err := parseBudgetRecommendations(text)
		if err != nil {
			return fmt.Errorf("budget recommendations: %w", err)
		}
		budgetRecs = budgetRecommendationsFromRecords(records)
		return nil
	})

	eg.Go(func() error {
		prompt, err := buildSavingsPrompt(formatted)
		if err != nil {
			return fmt.Errorf("savings opportunities: %w", err)
		}
		text, err := g.complete(ctx, prompt, savingsOptions)
		if err != nil {
			return fmt.Errorf("savings opportunities: %w", err)
		}
		raw.Savings = text

		records, err := parseSavingsOpportunities(text)
		if err != nil {
			return fmt.Errorf("savings opportunities: %w", err)
		}
		savingsOpps = savingsOpportunitiesFromRecords(records)
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, nil, fmt.Errorf("insight generation: %w", err)
	}

	merged := mergeInsights(spendingInsights, budgetRecs, savingsOpps)
	return merged, &raw, nil
}

func (g *Generator) complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	messages := []llm.Message{{Role: "user", Content: prompt}}
	return llm.Retry(ctx, g.maxRetries, g.baseDelay, func(ctx context.Context) (string, error) {
		if g.callTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, g.callTimeout)
			defer cancel()
		}
		return g.client.Complete(ctx, messages, opts)
	})
}

func budgetRecommendationsFromRecords(records []BudgetRecord) []domain.BudgetRecommendation {
	recs := make([]domain.BudgetRecommendation, 0, len(records))
	for _, r := range records {
		recs = append(recs, domain.BudgetRecommendation{
			Category:        r.Category,
			SuggestedAmount: decimal.NewFromFloat(r.SuggestedAmount),
			CurrentAverage:  decimal.NewFromFloat(r.CurrentAverage),
			Reasoning:       r.Reasoning,
			Priority:        domain.Priority(r.Priority),
		})
	}
	return recs
}

func savingsOpportunitiesFromRecords(records []SavingsRecord) []domain.SavingsOpportunity {
	opps := make([]domain.SavingsOpportunity, 0, len(records))
	for _, r := range records {
		opps = append(opps, domain.SavingsOpportunity{
			Title:                   r.Title,
			Description:             r.Description,
			PotentialMonthlySavings: decimal.NewFromFloat(r.PotentialMonthlySavings),
			PotentialYearlySavings:  decimal.NewFromFloat(r.PotentialYearlySavings),
			Difficulty:              domain.Difficulty(r.Difficulty),
			Category:                r.Category,
		})
	}
	return opps
}

// mergeInsights converts budget and savings results to the common insight
// shape, appends them after the native spending insights, and sorts the
// whole batch by priority then estimated impact. The sort is stable so that
// ties keep generation order.
func mergeInsights(spending []domain.Insight, budget []domain.BudgetRecommendation, savings []domain.SavingsOpportunity) []domain.Insight {
	merged := make([]domain.Insight, 0, len(spending)+len(budget)+len(savings))
	merged = append(merged, spending...)

	for _, rec := range budget {
		potential := rec.CurrentAverage.Sub(rec.SuggestedAmount)
		merged = append(merged, domain.Insight{
			Title:            fmt.Sprintf("Budget for %s", rec.Category),
			Description:      rec.Reasoning,
			Category:         domain.CategoryBudget,
			Priority:         rec.Priority,
			PotentialSavings: &potential,
			Confidence:       budgetConfidence,
		})
	}

	for _, opp := range savings {
		monthly := opp.PotentialMonthlySavings
		merged = append(merged, domain.Insight{
			Title:            opp.Title,
			Description:      opp.Description,
			Category:         domain.CategorySavings,
			Priority:         savingsPriority(monthly),
			PotentialSavings: &monthly,
			Confidence:       savingsConfidence,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		wi, wj := merged[i].Priority.Weight(), merged[j].Priority.Weight()
		if wi != wj {
			return wi > wj
		}
		return potentialOrZero(merged[i]).GreaterThan(potentialOrZero(merged[j]))
	})
	return merged
}

func savingsPriority(monthly decimal.Decimal) domain.Priority {
	switch {
	case monthly.GreaterThan(savingsHighThreshold):
		return domain.PriorityHigh
	case monthly.GreaterThan(savingsMediumThreshold):
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

func potentialOrZero(ins domain.Insight) decimal.Decimal {
	if ins.PotentialSavings == nil {
		return decimal.Zero
	}
	return *ins.PotentialSavings
}
