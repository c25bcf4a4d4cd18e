package insight

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/llm"
)

// Per-flow model options. Low temperature keeps the JSON shapes stable;
// 1000 output tokens is enough for 3-5 entries per flow.
var (
	spendingOptions = llm.Options{Temperature: 0.3, MaxOutputTokens: 1000}
	budgetOptions   = llm.Options{Temperature: 0.3, MaxOutputTokens: 1000}
	savingsOptions  = llm.Options{Temperature: 0.4, MaxOutputTokens: 1000}
)

func payloadJSON(formatted []PromptTransaction) (string, error) {
	data, err := json.MarshalIndent(formatted, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal prompt payload: %w", err)
	}
	return string(data), nil
}

// buildSpendingPrompt asks for 3-5 spending-analysis insights.
func buildSpendingPrompt(formatted []PromptTransaction) (string, error) {
	payload, err := payloadJSON(formatted)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are a personal-finance analyst. Analyze the following recent expense transactions and produce concrete spending insights.\n\n")
	b.WriteString("Transactions (amounts are positive expenses, newest first):\n")
	b.WriteString(payload)
	b.WriteString("\n\n")
	b.WriteString("Respond with STRICT JSON only. No commentary, no markdown, no code fences.\n")
	b.WriteString("Use exactly this shape:\n")
	b.WriteString("{ \"insights\": [ { \"title\": string, \"description\": string, \"category\": string, \"priority\": string, \"potentialSavings\": number (optional), \"confidence\": number 0-1 (optional) } ] }\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Return 3 to 5 insights.\n")
	b.WriteString("- \"category\" must be one of: \"spending\", \"budget\", \"savings\", \"income\", \"general\", \"cost-reduction\".\n")
	b.WriteString("- \"priority\" must be one of: \"high\", \"medium\", \"low\".\n")
	b.WriteString("- Descriptions must cite concrete dollar figures from the data.\n")
	b.WriteString("- Do NOT wrap the response in ```json or any other fence.\n")
	return b.String(), nil
}

// buildBudgetPrompt asks for 3-5 budget recommendations, giving the model
// per-category spending stats and, when known, the user's monthly income.
func buildBudgetPrompt(formatted []PromptTransaction, stats []CategoryStat, income IncomeSummary, declaredIncome *decimal.Decimal) (string, error) {
	payload, err := payloadJSON(formatted)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are a personal-finance analyst. Recommend monthly category budgets based on the user's actual spending.\n\n")
	b.WriteString("Per-category spending (current monthly averages):\n")
	for _, s := range stats {
		b.WriteString(fmt.Sprintf("- %s: total %s, monthly average %s\n", s.Category, s.Total.StringFixed(2), s.MonthlyAverage.StringFixed(2)))
	}
	b.WriteString("\n")
	if declaredIncome != nil {
		b.WriteString(fmt.Sprintf("Declared monthly income: %s\n", declaredIncome.StringFixed(2)))
	} else if income.Count > 0 {
		b.WriteString(fmt.Sprintf("Observed income over the last 30 days: %s across %d deposits\n", income.Total.StringFixed(2), income.Count))
	}
	b.WriteString("\nRecent expense transactions:\n")
	b.WriteString(payload)
	b.WriteString("\n\n")
	b.WriteString("Respond with STRICT JSON only. No commentary, no markdown, no code fences.\n")
	b.WriteString("Use exactly this shape:\n")
	b.WriteString("{ \"recommendations\": [ { \"category\": string, \"suggestedAmount\": number, \"currentAverage\": number, \"reasoning\": string, \"priority\": string } ] }\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Return 3 to 5 recommendations for the categories with the most room for improvement.\n")
	b.WriteString("- \"priority\" must be one of: \"high\", \"medium\", \"low\".\n")
	b.WriteString("- \"currentAverage\" must echo the monthly average shown above for that category.\n")
	b.WriteString("- Do NOT wrap the response in ```json or any other fence.\n")
	return b.String(), nil
}

// buildSavingsPrompt asks for 3-5 savings opportunities.
func buildSavingsPrompt(formatted []PromptTransaction) (string, error) {
	payload, err := payloadJSON(formatted)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are a personal-finance analyst. Identify concrete opportunities for this user to save money.\n\n")
	b.WriteString("Recent expense transactions (amounts are positive expenses, newest first):\n")
	b.WriteString(payload)
	b.WriteString("\n\n")
	b.WriteString("Respond with STRICT JSON only. No commentary, no markdown, no code fences.\n")
	b.WriteString("Use exactly this shape:\n")
	b.WriteString("{ \"opportunities\": [ { \"title\": string, \"description\": string, \"potentialMonthlySavings\": number, \"potentialYearlySavings\": number, \"difficulty\": string, \"category\": string } ] }\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Return 3 to 5 opportunities.\n")
	b.WriteString("- \"difficulty\" must be one of: \"easy\", \"medium\", \"hard\".\n")
	b.WriteString("- Savings estimates must be grounded in the amounts shown above.\n")
	b.WriteString("- Do NOT wrap the response in ```json or any other fence.\n")
	return b.String(), nil
}
