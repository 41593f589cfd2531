package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sunahsooq/rfpsimplify-sub000/internal/analysis"
	"github.com/sunahsooq/rfpsimplify-sub000/internal/models"
)

// handleRescore recomputes the deterministic scores of every stored
// opportunity against one company profile. Runs as a single detached
// background job; 202 with a poll URL.
func (s *Server) handleRescore(c echo.Context) error {
	profileID, err := uuid.Parse(strings.TrimSpace(c.QueryParam("profile_id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "profile_id query param required"})
	}
	profile, err := s.Store.GetProfileByID(c.Request().Context(), profileID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown profile_id"})
	}

	batchSize := 200
	if raw := strings.TrimSpace(c.QueryParam("batch_size")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 2000 {
			batchSize = parsed
		}
	}

	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Status == "running" {
		job := s.runningJob
		s.jobMu.Unlock()
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":  "A rescore job is already running",
			"job_id": job.ID,
		})
	}

	// context.WithoutCancel detaches from the HTTP lifecycle but keeps
	// trace values; a timeout bounds the job.
	jobCtx, jobCancel := context.WithTimeout(
		context.WithoutCancel(c.Request().Context()), 30*time.Minute,
	)

	jobID := uuid.New().String()[:8]
	job := &backgroundJob{
		ID:        jobID,
		Status:    "running",
		StartedAt: time.Now(),
		Cancel:    jobCancel,
	}
	s.runningJob = job
	s.jobMu.Unlock()

	go func() {
		defer jobCancel()

		updated, failed, err := s.rescoreAll(jobCtx, *profile, batchSize)

		s.jobMu.Lock()
		job.EndedAt = time.Now()
		if err != nil {
			job.Status = "failed"
			job.Error = err.Error()
		} else {
			job.Status = "completed"
			job.Result = map[string]interface{}{
				"profile_id":      profileID,
				"updated":         updated,
				"failed":          failed,
				"batch_size_used": batchSize,
			}
		}
		s.jobMu.Unlock()

		if err != nil {
			s.Logger.Error("rescore job failed", zap.String("job_id", jobID), zap.Error(err))
			return
		}
		s.Logger.Info("rescore job completed",
			zap.String("job_id", jobID),
			zap.Int("updated", updated),
			zap.Int("failed", failed),
		)
	}()

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message": "Rescore job started",
		"job_id":  jobID,
		"poll":    fmt.Sprintf("/api/v1/admin/job/%s", jobID),
	})
}

// rescoreAll pages through stored opportunities and rewrites their
// scores. Rows whose requirements blob does not decode are counted as
// failed and skipped.
func (s *Server) rescoreAll(ctx context.Context, profile models.CompanyProfile, batchSize int) (updated, failed int, err error) {
	var afterID uuid.UUID
	for {
		rows, err := s.Store.ListForRescore(ctx, afterID, batchSize)
		if err != nil {
			return updated, failed, fmt.Errorf("list for rescore: %w", err)
		}
		if len(rows) == 0 {
			return updated, failed, nil
		}

		for _, row := range rows {
			afterID = row.ID

			ext := analysis.Extraction{}
			ext.Opportunity.NAICSCodes = row.NAICSCodes
			if len(row.Requirements) > 0 {
				if jsonErr := json.Unmarshal(row.Requirements, &ext.Requirements); jsonErr != nil {
					failed++
					continue
				}
			}
			analysis.Normalize(&ext)

			scores := analysis.Score(profile, &ext)
			if err := s.Store.UpdateScores(ctx, row.ID,
				scores.NAICS, scores.Certifications, scores.Capabilities,
				scores.PastPerformance, scores.Overall, scores.Readiness,
			); err != nil {
				failed++
				continue
			}
			updated++
		}
	}
}

func (s *Server) handleJobStatus(c echo.Context) error {
	queried := c.Param("id")

	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	job := s.runningJob
	if job == nil || job.ID != queried {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	resp := map[string]interface{}{
		"id":         job.ID,
		"status":     job.Status,
		"started_at": job.StartedAt,
	}
	if !job.EndedAt.IsZero() {
		resp["ended_at"] = job.EndedAt
		resp["duration"] = job.EndedAt.Sub(job.StartedAt).String()
	}
	if job.Result != nil {
		resp["result"] = job.Result
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}

	return c.JSON(http.StatusOK, resp)
}
