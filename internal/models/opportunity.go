package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Opportunity is a persisted RFP analysis: the extracted solicitation facts
// plus the platform-computed scores.
type Opportunity struct {
	ID                 uuid.UUID        `json:"id"`
	Title              string           `json:"title"`
	SolicitationNumber string           `json:"solicitation_number"`
	Agency             string           `json:"agency"`
	SubAgency          string           `json:"sub_agency"`
	DueDate            *time.Time       `json:"due_date"`
	DueDateRaw         string           `json:"due_date_raw"`
	NAICSCodes         []string         `json:"naics_codes"`
	SetAsides          []string         `json:"set_asides"`
	ContractType       string           `json:"contract_type"`
	EstimatedValueRaw  string           `json:"estimated_value_raw"`
	ValueMin           *decimal.Decimal `json:"value_min"`
	ValueMax           *decimal.Decimal `json:"value_max"`
	PlaceOfPerformance string           `json:"place_of_performance"`
	Summary            []string         `json:"summary"`

	// JSON blobs carrying the rest of the extraction tree verbatim.
	Requirements           json.RawMessage `json:"requirements"`
	EvaluationCriteria     []string        `json:"evaluation_criteria"`
	MatchAnalysis          json.RawMessage `json:"match_analysis"`
	PartnerRecommendations json.RawMessage `json:"partner_recommendations"`
	BidBrief               json.RawMessage `json:"bid_brief"`

	// Platform-authored scores. The model never writes these.
	NAICSScore           int    `json:"naics_alignment_score"`
	CertificationScore   int    `json:"certification_alignment_score"`
	CapabilityScore      int    `json:"capability_alignment_score"`
	PastPerformanceScore int    `json:"past_performance_alignment_score"`
	OverallMatchScore    int    `json:"overall_match_score"`
	ReadinessLevel       string `json:"readiness_level"`

	RFPText   string    `json:"rfp_text,omitempty"`
	SourceURL string    `json:"source_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
