package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies an insight.
type Category string

const (
	CategorySpending      Category = "spending"
	CategoryBudget        Category = "budget"
	CategorySavings       Category = "savings"
	CategoryIncome        Category = "income"
	CategoryGeneral       Category = "general"
	CategoryCostReduction Category = "cost-reduction"
)

// Valid reports whether c is one of the six known categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySpending, CategoryBudget, CategorySavings,
		CategoryIncome, CategoryGeneral, CategoryCostReduction:
		return true
	}
	return false
}

// Priority ranks an insight.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Weight maps the priority to a sortable rank (high=3, medium=2, low=1).
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Insight is a single AI-generated financial observation or recommendation.
// Created in a batch during generation and read-only afterward.
type Insight struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Priority    Priority `json:"priority"`

	// PotentialSavings is the estimated monthly dollar impact, when the
	// model supplied one. Never negative.
	PotentialSavings *decimal.Decimal `json:"potentialSavings,omitempty"`
	Confidence       float64          `json:"confidence"`

	CreatedAt time.Time `json:"createdAt"`
}

// BudgetRecommendation is a transient model output; it is converted into an
// Insight before anything is persisted.
type BudgetRecommendation struct {
	Category        string
	SuggestedAmount decimal.Decimal
	CurrentAverage  decimal.Decimal
	Reasoning       string
	Priority        Priority
}

// Difficulty grades how hard a savings opportunity is to act on.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// SavingsOpportunity is a transient model output; it is converted into an
// Insight before anything is persisted.
type SavingsOpportunity struct {
	Title                   string
	Description             string
	PotentialMonthlySavings decimal.Decimal
	PotentialYearlySavings  decimal.Decimal
	Difficulty              Difficulty
	Category                string
}
