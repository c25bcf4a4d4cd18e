package insight

import (
	"testing"

	"github.com/spendlens/spendlens/internal/domain"
)

func validRecord() InsightRecord {
	savings := 30.0
	confidence := 0.75
	return InsightRecord{
		Title:            "Coffee habit",
		Description:      "You spent $84 on coffee shops.",
		Category:         "spending",
		Priority:         "medium",
		PotentialSavings: &savings,
		Confidence:       &confidence,
	}
}

func TestValidateInsightRecordsDropsOnlyInvalid(t *testing.T) {
	bad := validRecord()
	bad.Category = "foo"

	kept, dropped := validateInsightRecords([]InsightRecord{validRecord(), bad, validRecord()})
	if len(kept) != 2 {
		t.Errorf("kept %d records, want 2", len(kept))
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
}

func TestValidateInsightRecordsAllValid(t *testing.T) {
	kept, dropped := validateInsightRecords([]InsightRecord{validRecord(), validRecord()})
	if len(kept) != 2 || dropped != 0 {
		t.Errorf("kept %d, dropped %d; want 2, 0", len(kept), dropped)
	}
}

func TestValidateInsightRecordsRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*InsightRecord)
	}{
		{"empty title", func(r *InsightRecord) { r.Title = "" }},
		{"empty description", func(r *InsightRecord) { r.Description = "" }},
		{"unknown category", func(r *InsightRecord) { r.Category = "gambling" }},
		{"unknown priority", func(r *InsightRecord) { r.Priority = "urgent" }},
		{"negative savings", func(r *InsightRecord) { v := -5.0; r.PotentialSavings = &v }},
		{"confidence above one", func(r *InsightRecord) { v := 1.5; r.Confidence = &v }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)
			kept, dropped := validateInsightRecords([]InsightRecord{r})
			if len(kept) != 0 || dropped != 1 {
				t.Errorf("kept %d, dropped %d; want 0, 1", len(kept), dropped)
			}
		})
	}
}

func TestValidateInsightRecordsOptionalFieldsAbsent(t *testing.T) {
	r := validRecord()
	r.PotentialSavings = nil
	r.Confidence = nil

	kept, dropped := validateInsightRecords([]InsightRecord{r})
	if len(kept) != 1 || dropped != 0 {
		t.Fatalf("kept %d, dropped %d; want 1, 0", len(kept), dropped)
	}
	ins := kept[0]
	if ins.PotentialSavings != nil {
		t.Error("PotentialSavings should stay nil when absent")
	}
	if ins.Category != domain.CategorySpending || ins.Priority != domain.PriorityMedium {
		t.Errorf("unexpected conversion: %+v", ins)
	}
}
