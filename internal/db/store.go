package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/shopspring/decimal"

	"github.com/sunahsooq/rfpsimplify-sub000/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// selectCols is the column list shared by every opportunity query.
const selectCols = `id, title, solicitation_number, agency, sub_agency,
	due_date, due_date_raw, naics_codes, set_asides, contract_type,
	estimated_value_raw, value_min, value_max, place_of_performance, summary,
	requirements, evaluation_criteria, match_analysis, partner_recommendations, bid_brief,
	naics_score, certification_score, capability_score, past_performance_score,
	overall_match_score, readiness_level, source_url, created_at, updated_at`

func scanOpportunity(scan func(dest ...interface{}) error) (models.Opportunity, error) {
	var o models.Opportunity
	var solNum, agency, subAgency, dueDateRaw, contractType, valueRaw, place, sourceURL *string
	var valueMin, valueMax decimal.NullDecimal

	err := scan(
		&o.ID, &o.Title, &solNum, &agency, &subAgency,
		&o.DueDate, &dueDateRaw, &o.NAICSCodes, &o.SetAsides, &contractType,
		&valueRaw, &valueMin, &valueMax, &place, &o.Summary,
		&o.Requirements, &o.EvaluationCriteria, &o.MatchAnalysis, &o.PartnerRecommendations, &o.BidBrief,
		&o.NAICSScore, &o.CertificationScore, &o.CapabilityScore, &o.PastPerformanceScore,
		&o.OverallMatchScore, &o.ReadinessLevel, &sourceURL, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}

	if solNum != nil {
		o.SolicitationNumber = *solNum
	}
	if agency != nil {
		o.Agency = *agency
	}
	if subAgency != nil {
		o.SubAgency = *subAgency
	}
	if dueDateRaw != nil {
		o.DueDateRaw = *dueDateRaw
	}
	if contractType != nil {
		o.ContractType = *contractType
	}
	if valueRaw != nil {
		o.EstimatedValueRaw = *valueRaw
	}
	if valueMin.Valid {
		o.ValueMin = &valueMin.Decimal
	}
	if valueMax.Valid {
		o.ValueMax = &valueMax.Decimal
	}
	if place != nil {
		o.PlaceOfPerformance = *place
	}
	if sourceURL != nil {
		o.SourceURL = *sourceURL
	}

	return o, nil
}

// InsertOpportunity writes one analyzed opportunity and returns the
// generated row id. The embedding is optional.
func (s *Store) InsertOpportunity(ctx context.Context, opp models.Opportunity, embedding []float32) (uuid.UUID, error) {
	var embeddingArg interface{}
	if len(embedding) > 0 {
		embeddingArg = pgvector.NewVector(embedding)
	}

	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO opportunities (
			title, solicitation_number, agency, sub_agency, due_date,
			due_date_raw, naics_codes, set_asides, contract_type, estimated_value_raw,
			value_min, value_max, place_of_performance, summary, requirements,
			evaluation_criteria, match_analysis, partner_recommendations, bid_brief, naics_score,
			certification_score, capability_score, past_performance_score, overall_match_score, readiness_level,
			rfp_text, source_url, embedding
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15::jsonb,
			$16, $17::jsonb, $18::jsonb, $19::jsonb, $20,
			$21, $22, $23, $24, $25,
			$26, $27, $28
		)
		RETURNING id
	`,
		opp.Title, nilIfEmpty(opp.SolicitationNumber), nilIfEmpty(opp.Agency), nilIfEmpty(opp.SubAgency), opp.DueDate,
		nilIfEmpty(opp.DueDateRaw), opp.NAICSCodes, opp.SetAsides, nilIfEmpty(opp.ContractType), nilIfEmpty(opp.EstimatedValueRaw),
		decimalArg(opp.ValueMin), decimalArg(opp.ValueMax), nilIfEmpty(opp.PlaceOfPerformance), opp.Summary, string(opp.Requirements),
		opp.EvaluationCriteria, string(opp.MatchAnalysis), string(opp.PartnerRecommendations), string(opp.BidBrief), opp.NAICSScore,
		opp.CertificationScore, opp.CapabilityScore, opp.PastPerformanceScore, opp.OverallMatchScore, opp.ReadinessLevel,
		nilIfEmpty(opp.RFPText), nilIfEmpty(opp.SourceURL), embeddingArg,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert opportunity: %w", err)
	}

	return id, nil
}

type ListParams struct {
	Query          string
	QueryEmbedding []float32
	Agency         []string
	SetAside       []string
	Readiness      string
	MinScore       int
	Limit          int
	Offset         int
}

type ListResult struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	Total         int                  `json:"total"`
	Limit         int                  `json:"limit"`
	Offset        int                  `json:"offset"`
}

// buildListWhere constructs the WHERE clause and positional args shared by
// the count and select queries.
func buildListWhere(params ListParams) (string, []interface{}) {
	where := "WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if params.Query != "" {
		where += fmt.Sprintf(" AND (search_vector @@ plainto_tsquery('english', $%d) OR title ILIKE '%%' || $%d || '%%')", argIdx, argIdx)
		args = append(args, params.Query)
		argIdx++
	}
	if len(params.Agency) > 0 {
		where += fmt.Sprintf(" AND agency = ANY($%d)", argIdx)
		args = append(args, params.Agency)
		argIdx++
	}
	if len(params.SetAside) > 0 {
		where += fmt.Sprintf(" AND set_asides && $%d", argIdx)
		args = append(args, params.SetAside)
		argIdx++
	}
	if params.Readiness != "" {
		where += fmt.Sprintf(" AND readiness_level = $%d", argIdx)
		args = append(args, params.Readiness)
		argIdx++
	}
	if params.MinScore > 0 {
		where += fmt.Sprintf(" AND overall_match_score >= $%d", argIdx)
		args = append(args, params.MinScore)
		argIdx++
	}

	return where, args
}

func (s *Store) ListOpportunities(ctx context.Context, params ListParams) (*ListResult, error) {
	where, args := buildListWhere(params)
	argIdx := len(args) + 1

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	selectSQL := fmt.Sprintf("SELECT %s FROM opportunities %s", selectCols, where)

	// Semantic ranking when an embedding is available, text rank otherwise.
	if len(params.QueryEmbedding) > 0 {
		selectSQL += fmt.Sprintf(`
			ORDER BY
				CASE WHEN embedding IS NULL THEN 1 ELSE 0 END ASC,
				COALESCE(1 - (embedding <=> $%d), -1) DESC,
				overall_match_score DESC,
				created_at DESC
		`, argIdx)
		args = append(args, pgvector.NewVector(params.QueryEmbedding))
		argIdx++
	} else if params.Query != "" {
		selectSQL += fmt.Sprintf(" ORDER BY ts_rank(search_vector, plainto_tsquery('english', $%d::text)) DESC, overall_match_score DESC, created_at DESC", argIdx)
		args = append(args, params.Query)
		argIdx++
	} else {
		selectSQL += " ORDER BY created_at DESC"
	}

	selectSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := s.pool.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var opps []models.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		opps = append(opps, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	if opps == nil {
		opps = []models.Opportunity{}
	}

	return &ListResult{
		Opportunities: opps,
		Total:         total,
		Limit:         params.Limit,
		Offset:        params.Offset,
	}, nil
}

func (s *Store) GetOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	sql := fmt.Sprintf("SELECT %s FROM opportunities WHERE id = $1", selectCols)
	row := s.pool.QueryRow(ctx, sql, id)

	o, err := scanOpportunity(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("not found: %w", err)
	}

	return &o, nil
}

func (s *Store) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities").Scan(&total)
	stats["total"] = total

	var agencies int
	s.pool.QueryRow(ctx, "SELECT COUNT(DISTINCT agency) FROM opportunities WHERE agency IS NOT NULL").Scan(&agencies)
	stats["agencies"] = agencies

	readinessCounts := map[string]int{}
	rows, err := s.pool.Query(ctx, "SELECT readiness_level, COUNT(*) FROM opportunities GROUP BY readiness_level")
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var level string
			var count int
			if scanErr := rows.Scan(&level, &count); scanErr == nil {
				readinessCounts[level] = count
			}
		}
	}
	stats["readiness_counts"] = readinessCounts

	var avgScore *float64
	s.pool.QueryRow(ctx, "SELECT AVG(overall_match_score) FROM opportunities").Scan(&avgScore)
	if avgScore != nil {
		stats["avg_overall_match_score"] = *avgScore
	}

	return stats, nil
}

// Company profiles

func (s *Store) UpsertProfile(ctx context.Context, profile models.CompanyProfile) (*models.CompanyProfile, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO company_profiles (
			user_id, company_name, primary_naics, secondary_naics, certifications,
			capabilities, past_performance_tags, location
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			updated_at = NOW(),
			company_name = EXCLUDED.company_name,
			primary_naics = EXCLUDED.primary_naics,
			secondary_naics = EXCLUDED.secondary_naics,
			certifications = EXCLUDED.certifications,
			capabilities = EXCLUDED.capabilities,
			past_performance_tags = EXCLUDED.past_performance_tags,
			location = EXCLUDED.location
		RETURNING id, user_id, company_name, primary_naics, secondary_naics,
			certifications, capabilities, past_performance_tags, location, created_at, updated_at
	`,
		profile.UserID, nilIfEmpty(profile.CompanyName), nilIfEmpty(profile.PrimaryNAICS),
		emptyIfNil(profile.SecondaryNAICS), emptyIfNil(profile.Certifications),
		emptyIfNil(profile.Capabilities), emptyIfNil(profile.PastPerformanceTags),
		nilIfEmpty(profile.Location),
	)

	return scanProfile(row.Scan)
}

func (s *Store) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.CompanyProfile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, company_name, primary_naics, secondary_naics,
			certifications, capabilities, past_performance_tags, location, created_at, updated_at
		FROM company_profiles
		WHERE user_id = $1
	`, userID)

	return scanProfile(row.Scan)
}

func (s *Store) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.CompanyProfile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, company_name, primary_naics, secondary_naics,
			certifications, capabilities, past_performance_tags, location, created_at, updated_at
		FROM company_profiles
		WHERE id = $1
	`, id)

	return scanProfile(row.Scan)
}

func scanProfile(scan func(dest ...interface{}) error) (*models.CompanyProfile, error) {
	var p models.CompanyProfile
	var companyName, primaryNAICS, location *string

	err := scan(
		&p.ID, &p.UserID, &companyName, &primaryNAICS, &p.SecondaryNAICS,
		&p.Certifications, &p.Capabilities, &p.PastPerformanceTags, &location,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if companyName != nil {
		p.CompanyName = *companyName
	}
	if primaryNAICS != nil {
		p.PrimaryNAICS = *primaryNAICS
	}
	if location != nil {
		p.Location = *location
	}

	return &p, nil
}

// Rescore support

// RescoreRow is the minimal slice of an opportunity the scorer needs.
type RescoreRow struct {
	ID           uuid.UUID
	NAICSCodes   []string
	Requirements []byte
}

// ListForRescore pages through opportunity rows for score recomputation.
func (s *Store) ListForRescore(ctx context.Context, afterID uuid.UUID, limit int) ([]RescoreRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, naics_codes, requirements
		FROM opportunities
		WHERE id > $1
		ORDER BY id
		LIMIT $2
	`, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RescoreRow
	for rows.Next() {
		var r RescoreRow
		if err := rows.Scan(&r.ID, &r.NAICSCodes, &r.Requirements); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpdateScores replaces the computed scores on one opportunity row.
func (s *Store) UpdateScores(ctx context.Context, id uuid.UUID, naics, certs, caps, past, overall int, readiness string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE opportunities SET
			updated_at = NOW(),
			naics_score = $2,
			certification_score = $3,
			capability_score = $4,
			past_performance_score = $5,
			overall_match_score = $6,
			readiness_level = $7
		WHERE id = $1
	`, id, naics, certs, caps, past, overall, readiness)
	return err
}

// nilIfEmpty stores NULL instead of empty strings.
func nilIfEmpty(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func decimalArg(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return *d
}
