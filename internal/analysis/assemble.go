package analysis

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sunahsooq/rfpsimplify-sub000/internal/models"
)

// dueDateLayouts are the formats models actually emit for due dates.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
}

// AttachScorecard merges the platform-authored headline numbers into the
// model-authored bid brief. Narrative fields stay untouched.
func AttachScorecard(ext *Extraction, scores Scores) {
	ext.BidBrief.Scorecard = &Scorecard{
		OverallMatchScore: scores.Overall,
		ReadinessLevel:    scores.Readiness,
	}
}

// BuildRecord flattens an extraction plus its scores into the insert record
// for the opportunities table. Field-level coalescing happens here so the
// store never sees nil slices.
func BuildRecord(ext *Extraction, scores Scores, rfpText, sourceURL string) models.Opportunity {
	opp := ext.Opportunity

	title := strings.TrimSpace(opp.Title)
	if title == "" {
		title = "Untitled Opportunity"
	}

	valueMin, valueMax := ParseEstimatedValue(opp.EstimatedValue)

	rec := models.Opportunity{
		Title:              title,
		SolicitationNumber: strings.TrimSpace(opp.SolicitationID),
		Agency:             strings.TrimSpace(opp.Agency),
		SubAgency:          strings.TrimSpace(opp.SubAgency),
		DueDate:            parseDueDate(opp.DueDate),
		DueDateRaw:         strings.TrimSpace(opp.DueDate),
		NAICSCodes:         ensureList(opp.NAICSCodes),
		SetAsides:          NormalizeSetAsides(opp.SetAsides),
		ContractType:       strings.TrimSpace(opp.ContractType),
		EstimatedValueRaw:  strings.TrimSpace(opp.EstimatedValue),
		ValueMin:           valueMin,
		ValueMax:           valueMax,
		PlaceOfPerformance: strings.TrimSpace(opp.PlaceOfPerformance),
		Summary:            ensureList(opp.Summary),

		Requirements:           mustJSON(ext.Requirements),
		EvaluationCriteria:     ensureList(ext.EvaluationCriteria),
		MatchAnalysis:          mustJSON(ext.MatchAnalysis),
		PartnerRecommendations: mustJSON(ext.PartnerRecommendations),
		BidBrief:               mustJSON(ext.BidBrief),

		NAICSScore:           scores.NAICS,
		CertificationScore:   scores.Certifications,
		CapabilityScore:      scores.Capabilities,
		PastPerformanceScore: scores.PastPerformance,
		OverallMatchScore:    scores.Overall,
		ReadinessLevel:       scores.Readiness,

		RFPText:   rfpText,
		SourceURL: sourceURL,
	}

	return rec
}

func parseDueDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// mustJSON marshals values that cannot fail (struct trees of strings/slices).
func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}
