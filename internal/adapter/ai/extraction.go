package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/internx/internx/internal/domain"
	"github.com/internx/internx/pkg/textx"
)

// rawExtraction mirrors the requested response schema with pointer fields so
// that absent keys can be told apart from zero values.
type rawExtraction struct {
	Summary              *string      `json:"summary"`
	SkillsExtracted      *[]string    `json:"skills_extracted"`
	MarketReadinessScore *json.Number `json:"market_readiness_score"`
}

// ParseExtraction decodes and validates a model reply against the resume
// schema. Every failure wraps domain.ErrSchemaInvalid.
func ParseExtraction(payload string) (domain.Extraction, error) {
	cleaned := CleanJSONResponse(payload)
	if cleaned == "" {
		return domain.Extraction{}, fmt.Errorf("%w: empty response", domain.ErrSchemaInvalid)
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	dec.UseNumber()
	var raw rawExtraction
	if err := dec.Decode(&raw); err != nil {
		return domain.Extraction{}, fmt.Errorf("%w: decode: %v", domain.ErrSchemaInvalid, err)
	}

	var missing []string
	if raw.Summary == nil {
		missing = append(missing, "summary")
	}
	if raw.SkillsExtracted == nil {
		missing = append(missing, "skills_extracted")
	}
	if raw.MarketReadinessScore == nil {
		missing = append(missing, "market_readiness_score")
	}
	if len(missing) > 0 {
		return domain.Extraction{}, fmt.Errorf("%w: missing fields %s", domain.ErrSchemaInvalid, strings.Join(missing, ","))
	}

	summary := strings.TrimSpace(*raw.Summary)
	if summary == "" {
		return domain.Extraction{}, fmt.Errorf("%w: summary is empty", domain.ErrSchemaInvalid)
	}
	score, err := parseScore(*raw.MarketReadinessScore)
	if err != nil {
		return domain.Extraction{}, err
	}
	return domain.Extraction{
		Summary:              summary,
		SkillsExtracted:      textx.NormalizeTerms(*raw.SkillsExtracted),
		MarketReadinessScore: score,
	}, nil
}

func parseScore(n json.Number) (int, error) {
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: market_readiness_score is not a number", domain.ErrSchemaInvalid)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: market_readiness_score %v is not an integer", domain.ErrSchemaInvalid, f)
	}
	if f < domain.MinReadinessScore || f > domain.MaxReadinessScore {
		return 0, fmt.Errorf("%w: market_readiness_score %v outside [%d,%d]", domain.ErrSchemaInvalid, f, domain.MinReadinessScore, domain.MaxReadinessScore)
	}
	return int(f), nil
}
