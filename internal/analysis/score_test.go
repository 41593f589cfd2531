package analysis

import (
	"reflect"
	"testing"

	"github.com/sunahsooq/rfpsimplify-sub000/internal/models"
)

func baseProfile() models.CompanyProfile {
	return models.CompanyProfile{
		CompanyName:         "Acme Federal",
		PrimaryNAICS:        "541511",
		SecondaryNAICS:      []string{"541512", "541519"},
		Certifications:      []string{"ISO 9001", "CMMC Level 2"},
		Capabilities:        []string{"cloud migration", "devsecops"},
		PastPerformanceTags: []string{"DoD", "cloud"},
	}
}

func TestScoreNAICS(t *testing.T) {
	profile := baseProfile()

	cases := []struct {
		name     string
		required []string
		want     int
	}{
		{"no codes stated", nil, 70},
		{"primary hit", []string{"541511"}, 100},
		{"secondary hit", []string{"541519"}, 75},
		{"miss", []string{"236220"}, 40},
		{"primary beats secondary", []string{"541512", "541511"}, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := scoreNAICS(profile, tc.required); got != tc.want {
				t.Errorf("scoreNAICS(%v) = %d, want %d", tc.required, got, tc.want)
			}
		})
	}
}

func TestScoreCertifications(t *testing.T) {
	profile := baseProfile()

	cases := []struct {
		name     string
		required []string
		want     int
	}{
		{"none required", nil, 70},
		{"all held", []string{"ISO 9001", "CMMC Level 2"}, 100},
		{"half held", []string{"ISO 9001", "FedRAMP High"}, 50},
		{"none held", []string{"FedRAMP High"}, 0},
		{"whitespace tolerated", []string{"  ISO 9001  "}, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := scoreCertifications(profile, tc.required); got != tc.want {
				t.Errorf("scoreCertifications(%v) = %d, want %d", tc.required, got, tc.want)
			}
		})
	}
}

func TestScoreCapabilities(t *testing.T) {
	profile := baseProfile()

	cases := []struct {
		name      string
		technical []string
		want      int
	}{
		{"no requirements", nil, 60},
		{
			"case-insensitive substring match",
			[]string{"The contractor shall perform Cloud Migration services."},
			100,
		},
		{
			"two of three matched",
			[]string{
				"Provide DevSecOps tooling",
				"Execute cloud migration waves",
				"Operate a 24/7 help desk",
			},
			67,
		},
		{"nothing matched", []string{"Provide custodial services"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := scoreCapabilities(profile, tc.technical); got != tc.want {
				t.Errorf("scoreCapabilities(%v) = %d, want %d", tc.technical, got, tc.want)
			}
		})
	}
}

func TestScorePastPerformance(t *testing.T) {
	cases := []struct {
		name       string
		tags       []string
		experience []string
		want       int
	}{
		{"no history on file", nil, []string{"5 years DoD experience"}, 50},
		{"tag hit", []string{"DoD"}, []string{"5 years DoD experience required"}, 75},
		{"tag miss", []string{"HHS"}, []string{"5 years DoD experience required"}, 55},
		{"history but no experience asks", []string{"DoD"}, nil, 55},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profile := models.CompanyProfile{PastPerformanceTags: tc.tags}
			if got := scorePastPerformance(profile, tc.experience); got != tc.want {
				t.Errorf("scorePastPerformance = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestScoreOverallAndReadiness(t *testing.T) {
	profile := baseProfile()

	// All dimensions neutral: 70*.2 + 70*.3 + 60*.2 + 50*.2 + 10 = 67.
	neutral := Score(models.CompanyProfile{CompanyName: "Unknown Co"}, &Extraction{})
	if neutral.Overall != 67 {
		t.Errorf("neutral overall = %d, want 67", neutral.Overall)
	}
	if neutral.Readiness != ReadinessMedium {
		t.Errorf("neutral readiness = %q, want Medium", neutral.Readiness)
	}

	// Strong profile: 100*.2 + 100*.3 + 100*.2 + 75*.2 + 10 = 95.
	ext := &Extraction{}
	ext.Opportunity.NAICSCodes = []string{"541511"}
	ext.Requirements.Technical = []string{"cloud migration and devsecops delivery"}
	ext.Requirements.Certifications = []string{"ISO 9001"}
	ext.Requirements.Experience = []string{"recent DoD contracts"}

	strong := Score(profile, ext)
	if strong.Overall != 95 {
		t.Errorf("strong overall = %d, want 95", strong.Overall)
	}
	if strong.Readiness != ReadinessHigh {
		t.Errorf("strong readiness = %q, want High", strong.Readiness)
	}

	// Weak fit: 40*.2 + 0*.3 + 0*.2 + 55*.2 + 10 = 29.
	weakExt := &Extraction{}
	weakExt.Opportunity.NAICSCodes = []string{"236220"}
	weakExt.Requirements.Technical = []string{"concrete pouring"}
	weakExt.Requirements.Certifications = []string{"OSHA 30"}
	weakExt.Requirements.Experience = []string{"vertical construction"}

	weak := Score(profile, weakExt)
	if weak.Overall != 29 {
		t.Errorf("weak overall = %d, want 29", weak.Overall)
	}
	if weak.Readiness != ReadinessLow {
		t.Errorf("weak readiness = %q, want Low", weak.Readiness)
	}
}

func TestReadinessBoundaries(t *testing.T) {
	cases := []struct {
		overall int
		want    string
	}{
		{100, ReadinessHigh},
		{75, ReadinessHigh},
		{74, ReadinessMedium},
		{55, ReadinessMedium},
		{54, ReadinessLow},
		{0, ReadinessLow},
	}
	for _, tc := range cases {
		if got := readinessFor(tc.overall); got != tc.want {
			t.Errorf("readinessFor(%d) = %q, want %q", tc.overall, got, tc.want)
		}
	}
}

func TestScoreBoundsInvariant(t *testing.T) {
	profiles := []models.CompanyProfile{
		{},
		baseProfile(),
		{Certifications: []string{"A", "B", "C"}, PastPerformanceTags: []string{"x"}},
	}
	exts := []*Extraction{
		{},
		{Requirements: Requirements{Certifications: []string{"A"}, Technical: []string{"z"}}},
	}

	for _, p := range profiles {
		for _, e := range exts {
			s := Score(p, e)
			for name, v := range map[string]int{
				"naics": s.NAICS, "certs": s.Certifications, "caps": s.Capabilities,
				"past": s.PastPerformance, "overall": s.Overall,
			} {
				if v < 0 || v > 100 {
					t.Errorf("%s score %d out of [0,100]", name, v)
				}
			}
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	profile := baseProfile()
	ext := &Extraction{}
	ext.Opportunity.NAICSCodes = []string{"541512"}
	ext.Requirements.Technical = []string{"devsecops pipeline hardening"}

	first := Score(profile, ext)
	second := Score(profile, ext)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated scoring diverged: %+v vs %+v", first, second)
	}
}
