package analysis

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAttachScorecardPreservesNarrative(t *testing.T) {
	ext := &Extraction{}
	ext.BidBrief.Recommendation = "Conditional Go"
	ext.BidBrief.Justification = "Strong technical fit, missing FedRAMP."

	AttachScorecard(ext, Scores{Overall: 72, Readiness: ReadinessMedium})

	if ext.BidBrief.Scorecard == nil {
		t.Fatal("scorecard not attached")
	}
	if ext.BidBrief.Scorecard.OverallMatchScore != 72 {
		t.Errorf("overall = %d, want 72", ext.BidBrief.Scorecard.OverallMatchScore)
	}
	if ext.BidBrief.Scorecard.ReadinessLevel != ReadinessMedium {
		t.Errorf("readiness = %q", ext.BidBrief.Scorecard.ReadinessLevel)
	}
	if ext.BidBrief.Recommendation != "Conditional Go" {
		t.Error("recommendation overwritten")
	}
}

func TestBuildRecordDefaultsAndParsing(t *testing.T) {
	ext := &Extraction{}
	ext.Opportunity.Title = "   "
	ext.Opportunity.DueDate = "2026-03-15"
	ext.Opportunity.EstimatedValue = "$1.5M - $2M"
	ext.Opportunity.SetAsides = []string{"small business", "8a", "SB"}
	Normalize(ext)

	rec := BuildRecord(ext, Scores{Overall: 80, Readiness: ReadinessHigh}, "raw text", "https://sam.gov/opp/123")

	if rec.Title != "Untitled Opportunity" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.DueDate == nil {
		t.Fatal("due date not parsed")
	}
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !rec.DueDate.Equal(want) {
		t.Errorf("due date = %v, want %v", rec.DueDate, want)
	}
	if rec.DueDateRaw != "2026-03-15" {
		t.Errorf("due date raw = %q", rec.DueDateRaw)
	}

	if rec.ValueMin == nil || rec.ValueMax == nil {
		t.Fatal("value range not parsed")
	}
	if rec.ValueMin.IntPart() != 1_500_000 || rec.ValueMax.IntPart() != 2_000_000 {
		t.Errorf("value range = %v - %v", rec.ValueMin, rec.ValueMax)
	}

	wantSetAsides := []string{"SB", "8(a)"}
	if len(rec.SetAsides) != len(wantSetAsides) {
		t.Fatalf("set asides = %v, want %v", rec.SetAsides, wantSetAsides)
	}
	for i, sa := range wantSetAsides {
		if rec.SetAsides[i] != sa {
			t.Errorf("set aside [%d] = %q, want %q", i, rec.SetAsides[i], sa)
		}
	}

	if rec.OverallMatchScore != 80 || rec.ReadinessLevel != ReadinessHigh {
		t.Errorf("scores not carried: %d %q", rec.OverallMatchScore, rec.ReadinessLevel)
	}
	if rec.RFPText != "raw text" || rec.SourceURL != "https://sam.gov/opp/123" {
		t.Error("provenance fields not carried")
	}
}

func TestBuildRecordUnparseableDueDate(t *testing.T) {
	ext := &Extraction{}
	ext.Opportunity.Title = "X"
	ext.Opportunity.DueDate = "30 days after award"
	Normalize(ext)

	rec := BuildRecord(ext, Scores{}, "", "")
	if rec.DueDate != nil {
		t.Errorf("due date = %v, want nil", rec.DueDate)
	}
	if rec.DueDateRaw != "30 days after award" {
		t.Errorf("raw due date = %q", rec.DueDateRaw)
	}
}

func TestBuildRecordJSONBlobsRoundTrip(t *testing.T) {
	ext := &Extraction{}
	ext.Requirements.Technical = []string{"shall provide widgets"}
	ext.MatchAnalysis.Gaps = []string{"no FedRAMP"}
	Normalize(ext)

	rec := BuildRecord(ext, Scores{}, "", "")

	var req Requirements
	if err := json.Unmarshal(rec.Requirements, &req); err != nil {
		t.Fatalf("requirements blob: %v", err)
	}
	if len(req.Technical) != 1 || req.Technical[0] != "shall provide widgets" {
		t.Errorf("requirements blob = %+v", req)
	}

	var ma MatchAnalysis
	if err := json.Unmarshal(rec.MatchAnalysis, &ma); err != nil {
		t.Fatalf("match analysis blob: %v", err)
	}
	if len(ma.Gaps) != 1 {
		t.Errorf("match analysis blob = %+v", ma)
	}
}
