package insight

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParse marks a model response that could not be decoded into the
// expected JSON shape. A parse failure is fatal to its flow.
var ErrParse = errors.New("unparseable model response")

// InsightRecord is the wire shape of one spending-analysis insight as the
// model returns it, before validation.
type InsightRecord struct {
	Title            string   `json:"title" validate:"required"`
	Description      string   `json:"description" validate:"required"`
	Category         string   `json:"category" validate:"required,oneof=spending budget savings income general cost-reduction"`
	Priority         string   `json:"priority" validate:"required,oneof=high medium low"`
	PotentialSavings *float64 `json:"potentialSavings" validate:"omitempty,gte=0"`
	Confidence       *float64 `json:"confidence" validate:"omitempty,gte=0,lte=1"`
}

// BudgetRecord is the wire shape of one budget recommendation.
type BudgetRecord struct {
	Category        string  `json:"category"`
	SuggestedAmount float64 `json:"suggestedAmount"`
	CurrentAverage  float64 `json:"currentAverage"`
	Reasoning       string  `json:"reasoning"`
	Priority        string  `json:"priority"`
}

// SavingsRecord is the wire shape of one savings opportunity.
type SavingsRecord struct {
	Title                   string  `json:"title"`
	Description             string  `json:"description"`
	PotentialMonthlySavings float64 `json:"potentialMonthlySavings"`
	PotentialYearlySavings  float64 `json:"potentialYearlySavings"`
	Difficulty              string  `json:"difficulty"`
	Category                string  `json:"category"`
}

// stripFence removes a single leading/trailing triple-backtick fence, with
// or without a "json" language tag. Models add these despite being told not
// to.
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line (``` or ```json).
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:]
	} else {
		return s
	}

	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-3]
	}
	return strings.TrimSpace(s)
}

// decodeListKey parses raw model text as a JSON object and extracts the list
// under key. The key must exist and hold a list, otherwise the whole flow
// fails with ErrParse.
func decodeListKey(raw, key string, out interface{}) error {
	clean := stripFence(raw)

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(clean), &top); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}

	list, ok := top[key]
	if !ok {
		return fmt.Errorf("%w: missing %q key", ErrParse, key)
	}
	if err := json.Unmarshal(list, out); err != nil {
		return fmt.Errorf("%w: %q is not the expected list: %v", ErrParse, key, err)
	}
	return nil
}

// parseSpendingInsights decodes a spending-analysis response.
func parseSpendingInsights(raw string) ([]InsightRecord, error) {
	var records []InsightRecord
	if err := decodeListKey(raw, "insights", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// parseBudgetRecommendations decodes a budget-recommendation response.
func parseBudgetRecommendations(raw string) ([]BudgetRecord, error) {
	var records []BudgetRecord
	if err := decodeListKey(raw, "recommendations", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// parseSavingsOpportunities decodes a savings-opportunity response.
func parseSavingsOpportunities(raw string) ([]SavingsRecord, error) {
	var records []SavingsRecord
	if err := decodeListKey(raw, "opportunities", &records); err != nil {
		return nil, err
	}
	return records, nil
}
