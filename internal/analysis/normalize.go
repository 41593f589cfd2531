package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidExtraction means the model payload is missing a required
// top-level section and cannot be repaired.
var ErrInvalidExtraction = errors.New("extraction payload missing required sections")

// fallbackSeedLimit caps how many summary bullets are promoted into
// technical requirements when the model extracted none.
const fallbackSeedLimit = 6

// rawExtraction mirrors Extraction with pointer sections so that a missing
// object is distinguishable from an empty one.
type rawExtraction struct {
	Opportunity            *OpportunitySummary     `json:"opportunity"`
	Requirements           *Requirements           `json:"requirements"`
	EvaluationCriteria     []string                `json:"evaluation_criteria"`
	MatchAnalysis          *MatchAnalysis          `json:"match_analysis"`
	PartnerRecommendations []PartnerRecommendation `json:"partner_recommendations"`
	BidBrief               *BidBrief               `json:"bid_brief"`
}

// Decode parses the model's tool-call arguments into a normalized Extraction.
// The model is untrusted: sub-fields may be omitted despite the schema
// constraint, so everything list-typed is coerced to a real slice. Only a
// wholly absent opportunity or requirements section is fatal.
func Decode(payload []byte) (*Extraction, error) {
	var raw rawExtraction
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("parse extraction payload: %w", err)
	}

	if raw.Opportunity == nil || raw.Requirements == nil {
		return nil, ErrInvalidExtraction
	}

	ext := &Extraction{
		Opportunity:            *raw.Opportunity,
		Requirements:           *raw.Requirements,
		EvaluationCriteria:     raw.EvaluationCriteria,
		PartnerRecommendations: raw.PartnerRecommendations,
	}
	if raw.MatchAnalysis != nil {
		ext.MatchAnalysis = *raw.MatchAnalysis
	}
	if raw.BidBrief != nil {
		ext.BidBrief = *raw.BidBrief
	}

	Normalize(ext)
	return ext, nil
}

// Normalize repairs an extraction in place: every list field becomes non-nil
// and the sparse-requirements fallback is applied. Running it twice on the
// same extraction is a no-op the second time.
func Normalize(ext *Extraction) {
	ext.Opportunity.NAICSCodes = ensureList(ext.Opportunity.NAICSCodes)
	ext.Opportunity.SetAsides = ensureList(ext.Opportunity.SetAsides)
	ext.Opportunity.Summary = ensureList(ext.Opportunity.Summary)

	ext.Requirements.Technical = ensureList(ext.Requirements.Technical)
	ext.Requirements.Certifications = ensureList(ext.Requirements.Certifications)
	ext.Requirements.Experience = ensureList(ext.Requirements.Experience)
	ext.Requirements.Compliance = ensureList(ext.Requirements.Compliance)

	ext.EvaluationCriteria = ensureList(ext.EvaluationCriteria)

	ext.MatchAnalysis.Strengths = ensureList(ext.MatchAnalysis.Strengths)
	ext.MatchAnalysis.Gaps = ensureList(ext.MatchAnalysis.Gaps)
	ext.MatchAnalysis.RiskFlags = ensureList(ext.MatchAnalysis.RiskFlags)

	if ext.PartnerRecommendations == nil {
		ext.PartnerRecommendations = []PartnerRecommendation{}
	}

	ext.BidBrief.WinThemes = ensureList(ext.BidBrief.WinThemes)
	ext.BidBrief.WhyUs = ensureList(ext.BidBrief.WhyUs)

	seedRequirementsFromSummary(ext)
}

// seedRequirementsFromSummary promotes the first summary bullets into
// technical requirements when the model found no explicit requirements at
// all. A solicitation with a scope of work but no "shall" statements still
// needs something for the capability scorer to chew on.
func seedRequirementsFromSummary(ext *Extraction) {
	if len(ext.Requirements.Technical) > 0 ||
		len(ext.Requirements.Certifications) > 0 ||
		len(ext.Requirements.Experience) > 0 ||
		len(ext.Requirements.Compliance) > 0 {
		return
	}
	if len(ext.Opportunity.Summary) == 0 {
		return
	}

	limit := fallbackSeedLimit
	if len(ext.Opportunity.Summary) < limit {
		limit = len(ext.Opportunity.Summary)
	}
	seeded := make([]string, limit)
	copy(seeded, ext.Opportunity.Summary[:limit])
	ext.Requirements.Technical = seeded
}

func ensureList(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
