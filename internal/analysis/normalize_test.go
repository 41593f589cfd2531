package analysis

import (
	"errors"
	"reflect"
	"testing"
)

func TestDecodeRejectsMissingSections(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"empty object", `{}`},
		{"missing requirements", `{"opportunity": {"title": "X"}}`},
		{"missing opportunity", `{"requirements": {"technical": []}}`},
		{"null sections", `{"opportunity": null, "requirements": null}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.payload))
			if !errors.Is(err, ErrInvalidExtraction) {
				t.Errorf("Decode(%s) err = %v, want ErrInvalidExtraction", tc.payload, err)
			}
		})
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"opportunity": `))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if errors.Is(err, ErrInvalidExtraction) {
		t.Error("malformed JSON should not map to ErrInvalidExtraction")
	}
}

func TestDecodeCoercesNilLists(t *testing.T) {
	ext, err := Decode([]byte(`{
		"opportunity": {"title": "Janitorial Services"},
		"requirements": {"technical": ["clean floors"]}
	}`))
	if err != nil {
		t.Fatal(err)
	}

	for name, list := range map[string][]string{
		"naics_codes":         ext.Opportunity.NAICSCodes,
		"set_asides":          ext.Opportunity.SetAsides,
		"summary":             ext.Opportunity.Summary,
		"certifications":      ext.Requirements.Certifications,
		"experience":          ext.Requirements.Experience,
		"compliance":          ext.Requirements.Compliance,
		"evaluation_criteria": ext.EvaluationCriteria,
		"strengths":           ext.MatchAnalysis.Strengths,
		"gaps":                ext.MatchAnalysis.Gaps,
		"risk_flags":          ext.MatchAnalysis.RiskFlags,
		"win_themes":          ext.BidBrief.WinThemes,
		"why_us":              ext.BidBrief.WhyUs,
	} {
		if list == nil {
			t.Errorf("%s is nil after decode", name)
		}
	}
	if ext.PartnerRecommendations == nil {
		t.Error("partner_recommendations is nil after decode")
	}
}

func TestNormalizeSeedsTechnicalFromSummary(t *testing.T) {
	ext := &Extraction{}
	ext.Opportunity.Summary = []string{"b1", "b2", "b3", "b4", "b5", "b6", "b7"}

	Normalize(ext)

	want := []string{"b1", "b2", "b3", "b4", "b5", "b6"}
	if !reflect.DeepEqual(ext.Requirements.Technical, want) {
		t.Errorf("seeded technical = %v, want first 6 bullets", ext.Requirements.Technical)
	}
	// Summary itself is untouched.
	if len(ext.Opportunity.Summary) != 7 {
		t.Errorf("summary mutated: %v", ext.Opportunity.Summary)
	}
}

func TestNormalizeSkipsSeedingWhenAnyRequirementExists(t *testing.T) {
	ext := &Extraction{}
	ext.Opportunity.Summary = []string{"b1", "b2"}
	ext.Requirements.Compliance = []string{"FAR 52.204-21"}

	Normalize(ext)

	if len(ext.Requirements.Technical) != 0 {
		t.Errorf("technical should stay empty, got %v", ext.Requirements.Technical)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	ext := &Extraction{}
	ext.Opportunity.Summary = []string{"b1", "b2", "b3"}

	Normalize(ext)
	after := *ext
	afterTechnical := append([]string(nil), ext.Requirements.Technical...)

	Normalize(ext)

	if !reflect.DeepEqual(ext.Requirements.Technical, afterTechnical) {
		t.Errorf("second pass changed technical: %v vs %v", ext.Requirements.Technical, afterTechnical)
	}
	if !reflect.DeepEqual(ext.Opportunity, after.Opportunity) {
		t.Errorf("second pass changed opportunity section")
	}
}
