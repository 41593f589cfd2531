package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sunahsooq/rfpsimplify-sub000/internal/models"
)

// extractionTemperature keeps repeated extractions over the same
// solicitation near-deterministic.
const extractionTemperature = 0.1

const extractionToolName = "record_rfp_analysis"

const extractionSystemPrompt = `You are a senior capture manager and proposal analyst for a government contracting firm. You read federal solicitations (RFPs, RFQs, RFIs, sources sought) and produce a structured analysis for a bid/no-bid decision.

Rules:
- Record your analysis ONLY through the ` + extractionToolName + ` tool. No commentary.
- If a scalar field is unknown, use null. If a list field has no entries, use an empty list.
- Do NOT invent requirements, certifications, or evaluation criteria that the solicitation does not state.
- If the solicitation contains few or no explicit "shall" statements, infer capability-based requirements from the scope-of-work text instead of leaving the requirements empty.
- Match analysis and partner recommendations must be grounded in the company profile you are given.`

// ExtractRFP sends the solicitation text and company profile to the model
// and returns the raw tool-call arguments. The caller owns validation of the
// payload shape; upstream failures surface as the package error sentinels.
func (c *Client) ExtractRFP(ctx context.Context, rfpText string, profile models.CompanyProfile) (json.RawMessage, error) {
	messages := []ChatMessage{
		{Role: "system", Content: extractionSystemPrompt},
		{Role: "user", Content: buildExtractionPayload(rfpText, profile)},
	}

	tool := Tool{
		Type: "function",
		Function: ToolFunction{
			Name:        extractionToolName,
			Description: "Record the structured analysis of a federal solicitation.",
			Parameters:  extractionSchema(),
		},
	}

	return c.CallTool(ctx, messages, tool, extractionTemperature)
}

func buildExtractionPayload(rfpText string, profile models.CompanyProfile) string {
	var b strings.Builder
	b.WriteString("COMPANY PROFILE:\n")
	fmt.Fprintf(&b, "Company: %s\n", orUnknown(profile.CompanyName))
	fmt.Fprintf(&b, "Primary NAICS: %s\n", orUnknown(profile.PrimaryNAICS))
	fmt.Fprintf(&b, "Secondary NAICS: %s\n", joinOrNone(profile.SecondaryNAICS))
	fmt.Fprintf(&b, "Certifications: %s\n", joinOrNone(profile.Certifications))
	fmt.Fprintf(&b, "Capabilities: %s\n", joinOrNone(profile.Capabilities))
	fmt.Fprintf(&b, "Past performance: %s\n", joinOrNone(profile.PastPerformanceTags))
	if profile.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", profile.Location)
	}
	b.WriteString("\nSOLICITATION TEXT:\n")
	b.WriteString(rfpText)
	return b.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not provided)"
	}
	return s
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}

// extractionSchema is the tool-call parameter schema. It mirrors the
// analysis.Extraction tree; the model is constrained to this shape.
func extractionSchema() map[string]any {
	stringList := func(desc string) map[string]any {
		return map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": desc,
		}
	}
	nullableString := func(desc string) map[string]any {
		return map[string]any{
			"type":        []string{"string", "null"},
			"description": desc,
		}
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"opportunity": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":                nullableString("Opportunity title"),
					"solicitation_id":      nullableString("Solicitation or notice number"),
					"agency":               nullableString("Issuing agency"),
					"sub_agency":           nullableString("Sub-agency or office"),
					"due_date":             nullableString("Response due date, ISO 8601 if stated"),
					"naics_codes":          stringList("NAICS codes stated in the solicitation"),
					"set_asides":           stringList("Set-aside designations, e.g. 8(a), HUBZone, SDVOSB"),
					"contract_type":        nullableString("Contract vehicle/type, e.g. FFP, T&M, IDIQ"),
					"estimated_value":      nullableString("Estimated contract value as stated"),
					"place_of_performance": nullableString("Place of performance"),
					"summary":              stringList("3-8 bullet summary of the opportunity"),
				},
				"required": []string{"title", "naics_codes", "set_asides", "summary"},
			},
			"requirements": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"technical":      stringList("Technical requirements"),
					"certifications": stringList("Required certifications, e.g. FedRAMP High, CMMC L2"),
					"experience":     stringList("Required experience statements"),
					"compliance":     stringList("Compliance requirements, clauses, standards"),
				},
				"required": []string{"technical", "certifications", "experience", "compliance"},
			},
			"evaluation_criteria": stringList("Evaluation factors in order of importance"),
			"match_analysis": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"strengths":  stringList("Where the company profile aligns"),
					"gaps":       stringList("Where the company profile falls short"),
					"risk_flags": stringList("Bid risks worth surfacing"),
				},
				"required": []string{"strengths", "gaps", "risk_flags"},
			},
			"partner_recommendations": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"partner_type":          map[string]any{"type": "string", "enum": []string{"Prime", "Sub", "Prime|Sub"}},
						"gap_filled":            map[string]any{"type": "string"},
						"ideal_partner_profile": map[string]any{"type": "string"},
						"reason":                map[string]any{"type": "string"},
					},
					"required": []string{"partner_type", "gap_filled", "ideal_partner_profile", "reason"},
				},
			},
			"bid_brief": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"win_themes":    stringList("Proposed win themes"),
					"why_us":        stringList("Why-us bullets grounded in the profile"),
					"team_strategy": nullableString("Prime/sub teaming strategy"),
					"financial_snapshot": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"estimated_value": nullableString("Estimated value"),
							"target_margin":   nullableString("Target margin"),
							"p_win":           nullableString("Probability of win"),
						},
					},
					"recommendation": map[string]any{
						"type": "string",
						"enum": []string{"Go", "Conditional Go", "No-Go"},
					},
					"justification": nullableString("One-paragraph justification"),
				},
				"required": []string{"win_themes", "why_us", "recommendation"},
			},
		},
		"required": []string{"opportunity", "requirements", "evaluation_criteria", "match_analysis", "partner_recommendations", "bid_brief"},
	}
}
