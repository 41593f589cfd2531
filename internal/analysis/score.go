package analysis

import (
	"math"
	"strings"

	"github.com/sunahsooq/rfpsimplify-sub000/internal/models"
)

// Scoring weights and neutral defaults. Certifications carry the most weight
// because they gate eligibility on set-aside and compliance-driven federal
// work; capability text matches are softer evidence.
const (
	weightNAICS           = 0.20
	weightCertifications  = 0.30
	weightCapabilities    = 0.20
	weightPastPerformance = 0.20
	overallBias           = 10 // constant floor-raiser

	naicsNeutral      = 70 // no NAICS stated is not a capability gap
	naicsPrimaryHit   = 100
	naicsSecondaryHit = 75
	naicsMiss         = 40

	certNeutral = 70

	capabilityNeutral = 60 // slightly conservative: capability mismatch is costlier

	pastPerfUnknown = 50 // no history on file, true unknown
	pastPerfHit     = 75
	pastPerfMiss    = 55 // some history is still worth partial credit

	readinessHighMin   = 75
	readinessMediumMin = 55
)

// Score computes the deterministic alignment scores for a company profile
// against an extraction. Pure and total: the same inputs always produce the
// same output, including for empty lists. The model never influences these
// numbers directly.
func Score(profile models.CompanyProfile, ext *Extraction) Scores {
	naics := scoreNAICS(profile, ext.Opportunity.NAICSCodes)
	certs := scoreCertifications(profile, ext.Requirements.Certifications)
	caps := scoreCapabilities(profile, ext.Requirements.Technical)
	past := scorePastPerformance(profile, ext.Requirements.Experience)

	overall := clampScore(int(math.Round(
		float64(naics)*weightNAICS +
			float64(certs)*weightCertifications +
			float64(caps)*weightCapabilities +
			float64(past)*weightPastPerformance +
			overallBias)))

	return Scores{
		NAICS:           naics,
		Certifications:  certs,
		Capabilities:    caps,
		PastPerformance: past,
		Overall:         overall,
		Readiness:       readinessFor(overall),
	}
}

func scoreNAICS(profile models.CompanyProfile, required []string) int {
	if len(required) == 0 {
		return naicsNeutral
	}

	for _, code := range required {
		if code != "" && code == profile.PrimaryNAICS {
			return naicsPrimaryHit
		}
	}

	secondary := make(map[string]struct{}, len(profile.SecondaryNAICS))
	for _, code := range profile.SecondaryNAICS {
		secondary[code] = struct{}{}
	}
	for _, code := range required {
		if _, ok := secondary[code]; ok {
			return naicsSecondaryHit
		}
	}

	return naicsMiss
}

func scoreCertifications(profile models.CompanyProfile, required []string) int {
	if len(required) == 0 {
		return certNeutral
	}

	held := make(map[string]struct{}, len(profile.Certifications))
	for _, cert := range profile.Certifications {
		held[strings.TrimSpace(cert)] = struct{}{}
	}

	matched := 0
	for _, cert := range required {
		if _, ok := held[strings.TrimSpace(cert)]; ok {
			matched++
		}
	}

	return clampScore(int(math.Round(100 * float64(matched) / float64(len(required)))))
}

func scoreCapabilities(profile models.CompanyProfile, technical []string) int {
	if len(technical) == 0 {
		return capabilityNeutral
	}

	matched := 0
	for _, req := range technical {
		reqLower := strings.ToLower(req)
		for _, tag := range profile.Capabilities {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" && strings.Contains(reqLower, tag) {
				matched++
				break
			}
		}
	}

	score := 100 * float64(matched) / float64(len(technical))
	return clampScore(int(math.Round(math.Min(100, score))))
}

func scorePastPerformance(profile models.CompanyProfile, experience []string) int {
	if len(profile.PastPerformanceTags) == 0 {
		return pastPerfUnknown
	}

	haystack := strings.ToLower(strings.Join(experience, " "))
	for _, tag := range profile.PastPerformanceTags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" && strings.Contains(haystack, tag) {
			return pastPerfHit
		}
	}

	return pastPerfMiss
}

func readinessFor(overall int) string {
	switch {
	case overall >= readinessHighMin:
		return ReadinessHigh
	case overall >= readinessMediumMin:
		return ReadinessMedium
	default:
		return ReadinessLow
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
