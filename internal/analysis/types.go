package analysis

// Extraction is the schema-constrained output of the language model after
// normalization. Every list field is non-nil; downstream code may index into
// any of them without checking.
type Extraction struct {
	Opportunity            OpportunitySummary      `json:"opportunity"`
	Requirements           Requirements            `json:"requirements"`
	EvaluationCriteria     []string                `json:"evaluation_criteria"`
	MatchAnalysis          MatchAnalysis           `json:"match_analysis"`
	PartnerRecommendations []PartnerRecommendation `json:"partner_recommendations"`
	BidBrief               BidBrief                `json:"bid_brief"`
}

// OpportunitySummary is the solicitation metadata block.
type OpportunitySummary struct {
	Title              string   `json:"title"`
	SolicitationID     string   `json:"solicitation_id"`
	Agency             string   `json:"agency"`
	SubAgency          string   `json:"sub_agency"`
	DueDate            string   `json:"due_date"`
	NAICSCodes         []string `json:"naics_codes"`
	SetAsides          []string `json:"set_asides"`
	ContractType       string   `json:"contract_type"`
	EstimatedValue     string   `json:"estimated_value"`
	PlaceOfPerformance string   `json:"place_of_performance"`
	Summary            []string `json:"summary"`
}

// Requirements groups what the government asks for.
type Requirements struct {
	Technical      []string `json:"technical"`
	Certifications []string `json:"certifications"`
	Experience     []string `json:"experience"`
	Compliance     []string `json:"compliance"`
}

type MatchAnalysis struct {
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
	RiskFlags []string `json:"risk_flags"`
}

type PartnerRecommendation struct {
	PartnerType         string `json:"partner_type"` // Prime, Sub, or Prime|Sub
	GapFilled           string `json:"gap_filled"`
	IdealPartnerProfile string `json:"ideal_partner_profile"`
	Reason              string `json:"reason"`
}

type BidBrief struct {
	WinThemes         []string          `json:"win_themes"`
	WhyUs             []string          `json:"why_us"`
	TeamStrategy      string            `json:"team_strategy"`
	FinancialSnapshot FinancialSnapshot `json:"financial_snapshot"`
	Recommendation    string            `json:"recommendation"` // Go, Conditional Go, No-Go
	Justification     string            `json:"justification"`

	// Scorecard is platform-authored; the model never fills it.
	Scorecard *Scorecard `json:"scorecard,omitempty"`
}

// FinancialSnapshot is free-text by design: the model estimates, humans verify.
type FinancialSnapshot struct {
	EstimatedValue string `json:"estimated_value"`
	TargetMargin   string `json:"target_margin"`
	PWin           string `json:"p_win"`
}

// Scorecard carries the two headline numbers surfaced inside the bid brief.
type Scorecard struct {
	OverallMatchScore int    `json:"overall_match_score"`
	ReadinessLevel    string `json:"readiness_level"`
}

// Readiness tiers derived from the overall match score.
const (
	ReadinessHigh   = "High"
	ReadinessMedium = "Medium"
	ReadinessLow    = "Low"
)

// Scores holds the deterministic alignment scores. Each value is an integer
// in [0,100]; the tier is derived from the overall score.
type Scores struct {
	NAICS           int    `json:"naics_alignment_score"`
	Certifications  int    `json:"certification_alignment_score"`
	Capabilities    int    `json:"capability_alignment_score"`
	PastPerformance int    `json:"past_performance_alignment_score"`
	Overall         int    `json:"overall_match_score"`
	Readiness       string `json:"readiness_level"`
}
