package insight

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/domain"
)

var validate = validator.New()

// DropObserver is notified when validation silently discards records from a
// flow. The pipeline itself never surfaces drops as errors; this hook exists
// so callers can at least count them.
type DropObserver func(flow string, dropped int)

// validateInsightRecords checks each spending-analysis record structurally:
// non-empty title and description, category and priority within their enums,
// savings and confidence in range. Failing records are dropped without error;
// the dropped count is returned alongside the survivors.
func validateInsightRecords(records []InsightRecord) ([]domain.Insight, int) {
	kept := make([]domain.Insight, 0, len(records))
	dropped := 0

	for _, r := range records {
		if err := validate.Struct(r); err != nil {
			dropped++
			continue
		}
		kept = append(kept, insightFromRecord(r))
	}
	return kept, dropped
}

func insightFromRecord(r InsightRecord) domain.Insight {
	ins := domain.Insight{
		Title:       r.Title,
		Description: r.Description,
		Category:    domain.Category(r.Category),
		Priority:    domain.Priority(r.Priority),
	}
	if r.PotentialSavings != nil {
		d := decimal.NewFromFloat(*r.PotentialSavings)
		ins.PotentialSavings = &d
	}
	if r.Confidence != nil {
		ins.Confidence = *r.Confidence
	}
	return ins
}
