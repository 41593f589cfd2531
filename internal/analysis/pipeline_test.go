package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/sunahsooq/rfpsimplify-sub000/internal/models"
)

type fakeExtractor struct {
	payload    json.RawMessage
	extractErr error
	embedErr   error
	gotText    string
}

func (f *fakeExtractor) ExtractRFP(ctx context.Context, rfpText string, profile models.CompanyProfile) (json.RawMessage, error) {
	f.gotText = rfpText
	return f.payload, f.extractErr
}

func (f *fakeExtractor) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return []float32{0.1, 0.2}, nil
}

type fakeWriter struct {
	insertErr error
	gotRecord *models.Opportunity
	gotEmbed  []float32
	id        uuid.UUID
}

func (f *fakeWriter) InsertOpportunity(ctx context.Context, opp models.Opportunity, embedding []float32) (uuid.UUID, error) {
	f.gotRecord = &opp
	f.gotEmbed = embedding
	if f.insertErr != nil {
		return uuid.Nil, f.insertErr
	}
	return f.id, nil
}

func validPayload() json.RawMessage {
	return json.RawMessage(`{
		"opportunity": {
			"title": "Cloud Support Services",
			"naics_codes": ["541511"],
			"summary": ["Migrate workloads to the cloud"]
		},
		"requirements": {
			"technical": ["cloud migration"],
			"certifications": ["ISO 9001"]
		}
	}`)
}

func TestPipelineAnalyzeSuccess(t *testing.T) {
	id := uuid.New()
	ext := &fakeExtractor{payload: validPayload()}
	store := &fakeWriter{id: id}
	p := NewPipeline(ext, store, nil, nil)

	profile := models.CompanyProfile{
		PrimaryNAICS:   "541511",
		Certifications: []string{"ISO 9001"},
		Capabilities:   []string{"cloud migration"},
	}

	result, err := p.Analyze(context.Background(), Request{
		RFPText: "The contractor shall migrate workloads.",
		Profile: profile,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.ID != id {
		t.Errorf("id = %v, want %v", result.ID, id)
	}
	if result.Analysis == nil {
		t.Fatal("nil analysis")
	}
	if result.Analysis.BidBrief.Scorecard == nil {
		t.Fatal("scorecard not attached")
	}

	if store.gotRecord == nil {
		t.Fatal("nothing persisted")
	}
	if store.gotRecord.OverallMatchScore != result.Analysis.BidBrief.Scorecard.OverallMatchScore {
		t.Error("scorecard and persisted record disagree on overall score")
	}
	if store.gotRecord.Title != "Cloud Support Services" {
		t.Errorf("persisted title = %q", store.gotRecord.Title)
	}
	if store.gotRecord.RFPText == "" {
		t.Error("raw text not persisted")
	}
	if len(store.gotEmbed) == 0 {
		t.Error("embedding not passed to store")
	}
	if ext.gotText == "" {
		t.Error("prepared text not sent to extractor")
	}
}

func TestPipelineAnalyzeEmbeddingFailureIsNotFatal(t *testing.T) {
	ext := &fakeExtractor{payload: validPayload(), embedErr: errors.New("embeddings down")}
	store := &fakeWriter{id: uuid.New()}
	p := NewPipeline(ext, store, nil, nil)

	result, err := p.Analyze(context.Background(), Request{RFPText: "shall migrate"})
	if err != nil {
		t.Fatalf("embedding failure became fatal: %v", err)
	}
	if result == nil || result.ID == uuid.Nil {
		t.Error("missing result")
	}
	if store.gotEmbed != nil {
		t.Errorf("embedding passed despite failure: %v", store.gotEmbed)
	}
}

func TestPipelineAnalyzePersistFailure(t *testing.T) {
	ext := &fakeExtractor{payload: validPayload()}
	store := &fakeWriter{insertErr: fmt.Errorf("connection refused")}
	p := NewPipeline(ext, store, nil, nil)

	_, err := p.Analyze(context.Background(), Request{RFPText: "shall migrate"})
	if !errors.Is(err, ErrPersist) {
		t.Errorf("err = %v, want ErrPersist", err)
	}
}

func TestPipelineAnalyzeExtractorErrorsPassThrough(t *testing.T) {
	sentinel := errors.New("upstream exploded")
	ext := &fakeExtractor{extractErr: sentinel}
	p := NewPipeline(ext, &fakeWriter{}, nil, nil)

	_, err := p.Analyze(context.Background(), Request{RFPText: "shall migrate"})
	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want the extractor's error unchanged", err)
	}
}

func TestPipelineAnalyzeBadShape(t *testing.T) {
	ext := &fakeExtractor{payload: json.RawMessage(`{"unexpected": true}`)}
	p := NewPipeline(ext, &fakeWriter{}, nil, nil)

	_, err := p.Analyze(context.Background(), Request{RFPText: "shall migrate"})
	if !errors.Is(err, ErrInvalidExtraction) {
		t.Errorf("err = %v, want ErrInvalidExtraction", err)
	}
}
