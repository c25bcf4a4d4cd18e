package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/aggregator"
	"github.com/spendlens/spendlens/internal/api/middleware"
	"github.com/spendlens/spendlens/internal/insight"
	"github.com/spendlens/spendlens/internal/llm"
)

// userIDHeader carries the authenticated user's ID, set by the auth layer
// in front of this service.
const userIDHeader = "X-User-ID"

func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(userIDHeader)
	if id == "" {
		middleware.WriteError(w, http.StatusUnauthorized, "Missing user identity")
		return "", false
	}
	return id, true
}

// InsightService is the slice of the insight service the handlers need.
type InsightService interface {
	GetInsights(ctx context.Context, userID string, opts insight.GetOptions) (*insight.Result, error)
	RefreshInsights(ctx context.Context, userID string, opts insight.GetOptions) (*insight.Result, error)
	DeleteInsight(ctx context.Context, userID, insightID string) error
}

// InsightsHandler serves the insight endpoints.
type InsightsHandler struct {
	svc InsightService
	log zerolog.Logger
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(svc InsightService, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{svc: svc, log: log}
}

// GetInsights handles GET /api/insights
func (h *InsightsHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	opts, ok := parseGetOptions(w, r)
	if !ok {
		return
	}

	result, err := h.svc.GetInsights(r.Context(), uid, opts)
	if err != nil {
		h.writeInsightError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, result)
}

// RefreshInsights handles POST /api/insights/refresh
func (h *InsightsHandler) RefreshInsights(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	opts, ok := parseGetOptions(w, r)
	if !ok {
		return
	}

	result, err := h.svc.RefreshInsights(r.Context(), uid, opts)
	if err != nil {
		h.writeInsightError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, result)
}

// DeleteInsight handles DELETE /api/insights/:id
func (h *InsightsHandler) DeleteInsight(w http.ResponseWriter, r *http.Request, insightID string) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteInsight(r.Context(), uid, insightID); err != nil {
		h.log.Error().Err(err).Str("operation", "delete_insight").Msg("Failed to delete insight")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete insight")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func parseGetOptions(w http.ResponseWriter, r *http.Request) (insight.GetOptions, bool) {
	var opts insight.GetOptions
	if raw := r.URL.Query().Get("monthly_income"); raw != "" {
		income, err := decimal.NewFromString(raw)
		if err != nil || income.IsNegative() {
			middleware.WriteError(w, http.StatusBadRequest, "monthly_income must be a non-negative number")
			return opts, false
		}
		opts.MonthlyIncome = &income
	}
	return opts, true
}

// writeInsightError maps pipeline errors to HTTP statuses. The structured
// error stays in the logs; the user sees only the categorized message.
func (h *InsightsHandler) writeInsightError(w http.ResponseWriter, err error) {
	h.log.Error().Err(err).Str("operation", "get_insights").Time("at", time.Now()).Msg("Insight request failed")

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, insight.ErrNoAccounts), errors.Is(err, insight.ErrNoTransactions):
		status = http.StatusBadRequest
	case errors.Is(err, llm.ErrRateLimited), errors.Is(err, llm.ErrQuotaExceeded):
		status = http.StatusServiceUnavailable
	}
	middleware.WriteError(w, status, insight.UserMessage(err))
}

// TransactionsHandler serves transaction reads.
type TransactionsHandler struct {
	repo insight.TransactionRepository
	log  zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(repo insight.TransactionRepository, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{repo: repo, log: log}
}

// ListTransactions handles GET /api/transactions?days=90
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	days := 90
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 365 {
			middleware.WriteError(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = n
	}

	since := time.Now().AddDate(0, 0, -days)
	txs, err := h.repo.ListByUser(r.Context(), uid, since)
	if err != nil {
		h.log.Error().Err(err).Str("operation", "list_transactions").Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// LinkHandler serves aggregator link tokens.
type LinkHandler struct {
	source aggregator.LinkTokenSource
	log    zerolog.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(source aggregator.LinkTokenSource, log zerolog.Logger) *LinkHandler {
	return &LinkHandler{source: source, log: log}
}

// CreateLinkToken handles POST /api/link/token
func (h *LinkHandler) CreateLinkToken(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	token, err := h.source.CreateLinkToken(r.Context(), uid)
	if err != nil {
		h.log.Error().Err(err).Str("operation", "create_link_token").Msg("Failed to create link token")
		middleware.WriteError(w, http.StatusBadGateway, "Could not start bank linking. Please try again.")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"link_token": token.Value})
}
