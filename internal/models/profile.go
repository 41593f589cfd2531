package models

import (
	"time"

	"github.com/google/uuid"
)

// CompanyProfile describes the bidding company. The analysis pipeline reads
// it, never mutates it.
type CompanyProfile struct {
	ID                  uuid.UUID `json:"id,omitempty"`
	UserID              uuid.UUID `json:"user_id,omitempty"`
	CompanyName         string    `json:"company_name"`
	PrimaryNAICS        string    `json:"primary_naics"`
	SecondaryNAICS      []string  `json:"secondary_naics"`
	Certifications      []string  `json:"certifications"`
	Capabilities        []string  `json:"capabilities"`
	PastPerformanceTags []string  `json:"past_performance_tags"`
	Location            string    `json:"location"`
	CreatedAt           time.Time `json:"created_at,omitempty"`
	UpdatedAt           time.Time `json:"updated_at,omitempty"`
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
