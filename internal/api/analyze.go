package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sunahsooq/rfpsimplify-sub000/internal/ai"
	"github.com/sunahsooq/rfpsimplify-sub000/internal/analysis"
	"github.com/sunahsooq/rfpsimplify-sub000/internal/models"
)

// rfp_text is declared `any` so a non-string value fails validation
// instead of the bind.
type analyzeRequest struct {
	RFPText        any                    `json:"rfp_text"`
	RFPURL         string                 `json:"rfp_url"`
	CompanyProfile *models.CompanyProfile `json:"company_profile"`
	ProfileID      string                 `json:"profile_id"`
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	rfpText := ""
	if req.RFPText != nil {
		str, ok := req.RFPText.(string)
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "rfp_text must be a string"})
		}
		rfpText = strings.TrimSpace(str)
	}
	rfpURL := strings.TrimSpace(req.RFPURL)

	// Validated before any upstream call is made.
	if rfpText == "" && rfpURL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "rfp_text is required"})
	}

	var profile models.CompanyProfile
	switch {
	case req.CompanyProfile != nil:
		profile = *req.CompanyProfile
	case req.ProfileID != "":
		profileID, err := uuid.Parse(req.ProfileID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid profile_id"})
		}
		stored, err := s.Store.GetProfileByID(c.Request().Context(), profileID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown profile_id"})
		}
		profile = *stored
	}

	result, err := s.Analyzer.Analyze(c.Request().Context(), analysis.Request{
		RFPText: rfpText,
		RFPURL:  rfpURL,
		Profile: profile,
	})
	if err != nil {
		return s.analyzeError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// analyzeError maps pipeline sentinels onto HTTP statuses. The body is
// always {"error": msg}.
func (s *Server) analyzeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ai.ErrRateLimited):
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": err.Error()})
	case errors.Is(err, ai.ErrQuotaExhausted):
		return c.JSON(http.StatusPaymentRequired, map[string]string{"error": err.Error()})
	default:
		s.Logger.Error("analysis failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
