package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sunahsooq/rfpsimplify-sub000/internal/models"
	"github.com/sunahsooq/rfpsimplify-sub000/internal/solicitation"
)

// ErrPersist means the analysis completed but the opportunity row could not
// be written. The computed analysis is discarded in that path.
var ErrPersist = errors.New("failed to save analysis")

// Extractor is the language-model dependency of the pipeline.
type Extractor interface {
	ExtractRFP(ctx context.Context, rfpText string, profile models.CompanyProfile) (json.RawMessage, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// OpportunityWriter persists assembled opportunity records.
type OpportunityWriter interface {
	InsertOpportunity(ctx context.Context, opp models.Opportunity, embedding []float32) (uuid.UUID, error)
}

// Pipeline runs one solicitation through extraction, normalization, scoring,
// and persistence. Stateless across invocations: everything lives on the
// call stack, so concurrent requests never share mutable state.
type Pipeline struct {
	AI      Extractor
	Store   OpportunityWriter
	Fetcher *solicitation.Fetcher
	Logger  *zap.Logger
}

func NewPipeline(ai Extractor, store OpportunityWriter, fetcher *solicitation.Fetcher, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{AI: ai, Store: store, Fetcher: fetcher, Logger: logger}
}

// Request is a validated analysis request. Exactly one of RFPText/RFPURL is
// expected to be set by the caller.
type Request struct {
	RFPText string
	RFPURL  string
	Profile models.CompanyProfile
}

// Result pairs the persisted row id with the scored analysis.
type Result struct {
	ID       uuid.UUID   `json:"id"`
	Analysis *Extraction `json:"analysis"`
}

// Analyze executes the pipeline stages in order: intake, extraction,
// normalization, deterministic scoring, assembly, persistence. No stage is
// retried internally; upstream failures surface to the caller as-is.
func (p *Pipeline) Analyze(ctx context.Context, req Request) (*Result, error) {
	text := solicitation.PrepareText(req.RFPText)
	if text == "" && req.RFPURL != "" && p.Fetcher != nil {
		fetched, err := p.Fetcher.Fetch(ctx, req.RFPURL)
		if err != nil {
			return nil, err
		}
		text = fetched
	}
	if text == "" {
		return nil, fmt.Errorf("solicitation text is empty")
	}

	payload, err := p.AI.ExtractRFP(ctx, text, req.Profile)
	if err != nil {
		return nil, err
	}

	ext, err := Decode(payload)
	if err != nil {
		return nil, err
	}

	scores := Score(req.Profile, ext)
	AttachScorecard(ext, scores)

	rec := BuildRecord(ext, scores, text, req.RFPURL)

	// Embedding is best-effort: search ranking degrades without it, the
	// analysis itself does not.
	var embedding []float32
	if embedText := embeddingInput(rec); embedText != "" {
		vec, embedErr := p.AI.GenerateEmbedding(ctx, embedText)
		if embedErr != nil {
			p.Logger.Warn("failed to generate opportunity embedding",
				zap.String("title", rec.Title), zap.Error(embedErr))
		} else {
			embedding = vec
		}
	}

	id, err := p.Store.InsertOpportunity(ctx, rec, embedding)
	if err != nil {
		p.Logger.Error("failed to persist analyzed opportunity",
			zap.String("title", rec.Title), zap.Error(err))
		return nil, ErrPersist
	}

	p.Logger.Info("rfp analysis complete",
		zap.String("id", id.String()),
		zap.String("title", rec.Title),
		zap.Int("overall_match_score", scores.Overall),
		zap.String("readiness", scores.Readiness),
	)

	return &Result{ID: id, Analysis: ext}, nil
}

func embeddingInput(rec models.Opportunity) string {
	text := strings.TrimSpace(rec.Title + "\n" + strings.Join(rec.Summary, "\n"))
	return solicitation.Truncate(text, 8000)
}
