package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/internx/internx/internal/domain"
	obsctx "github.com/internx/internx/internal/observability"
)

// RateLimiter admits or rejects one request for a subject.
type RateLimiter interface {
	Allow(ctx context.Context, subject string) (allowed bool, retryAfter time.Duration, err error)
}

// ResumeChecker is implemented by extractors that can reject input locally,
// without calling the model.
type ResumeChecker interface {
	CheckResume(resumeText string) error
}

// AnalysisService runs resume analysis and stores the result.
type AnalysisService struct {
	Users     domain.UserRepository
	Analyses  domain.AnalysisRepository
	Extractor domain.Extractor
	Limiter   RateLimiter
	Now       func() time.Time
}

// NewAnalysisService constructs an AnalysisService. lim may be nil.
func NewAnalysisService(u domain.UserRepository, a domain.AnalysisRepository, x domain.Extractor, lim RateLimiter) AnalysisService {
	return AnalysisService{Users: u, Analyses: a, Extractor: x, Limiter: lim}
}

// Analyze extracts structured attributes from resumeText and replaces the
// user's stored analysis with them. The store is written only after the
// extraction fully validated; any extraction failure leaves it untouched.
func (s AnalysisService) Analyze(ctx domain.Context, userID, resumeText string) (domain.ResumeAnalysis, error) {
	userID, err := requireID(fieldUserID, userID)
	if err != nil {
		return domain.ResumeAnalysis{}, err
	}
	if strings.TrimSpace(resumeText) == "" {
		return domain.ResumeAnalysis{}, domain.NewFieldError(fieldResumeText, "is required")
	}
	if err := rejectNUL(fieldResumeText, resumeText); err != nil {
		return domain.ResumeAnalysis{}, err
	}
	lg := obsctx.Op(ctx, "resume.analyze", "user_id", userID)

	if _, err := s.Users.Get(ctx, userID); err != nil {
		return domain.ResumeAnalysis{}, notFoundAs(err, "user not found")
	}

	// Input the extractor would refuse must not spend a rate-limit token.
	if pc, ok := s.Extractor.(ResumeChecker); ok {
		if err := pc.CheckResume(resumeText); err != nil {
			return domain.ResumeAnalysis{}, err
		}
	}

	if s.Limiter != nil {
		allowed, retryAfter, err := s.Limiter.Allow(ctx, userID)
		if err != nil {
			lg.Warn("rate limiter unavailable, allowing request", "error", err)
		}
		if !allowed {
			secs := int(math.Ceil(retryAfter.Seconds()))
			return domain.ResumeAnalysis{}, &domain.Error{
				Kind:       domain.ErrRateLimited,
				Message:    fmt.Sprintf("too many analysis requests, retry in %ds", secs),
				RetryAfter: retryAfter,
			}
		}
	}

	ext, err := s.Extractor.ExtractResume(ctx, resumeText)
	if err != nil {
		return domain.ResumeAnalysis{}, err
	}
	if err := validateExtraction(ext); err != nil {
		return domain.ResumeAnalysis{}, err
	}

	stored, err := s.Analyses.Upsert(ctx, domain.ResumeAnalysis{
		UserID:               userID,
		RawText:              resumeText,
		Summary:              ext.Summary,
		SkillsExtracted:      ext.SkillsExtracted,
		MarketReadinessScore: ext.MarketReadinessScore,
		AnalysisDate:         utcNow(s.Now),
	})
	if err != nil {
		return domain.ResumeAnalysis{}, notFoundAs(err, "user not found")
	}
	lg.Info("resume analysis stored",
		"analysis_id", stored.ID,
		"skills", len(stored.SkillsExtracted),
		"market_readiness_score", stored.MarketReadinessScore)
	return stored, nil
}

// Get returns the stored analysis for userID.
func (s AnalysisService) Get(ctx domain.Context, userID string) (domain.ResumeAnalysis, error) {
	userID, err := requireID(fieldUserID, userID)
	if err != nil {
		return domain.ResumeAnalysis{}, err
	}
	a, err := s.Analyses.GetByUserID(ctx, userID)
	if err != nil {
		return domain.ResumeAnalysis{}, notFoundAs(err, "no resume analysis for this user")
	}
	return a, nil
}

// validateExtraction re-checks the schema invariants regardless of which
// extractor produced the value.
func validateExtraction(e domain.Extraction) error {
	switch {
	case strings.TrimSpace(e.Summary) == "":
		return fmt.Errorf("op=resume.analyze: %w: summary is empty", domain.ErrSchemaInvalid)
	case e.SkillsExtracted == nil:
		return fmt.Errorf("op=resume.analyze: %w: skills_extracted missing", domain.ErrSchemaInvalid)
	case e.MarketReadinessScore < domain.MinReadinessScore || e.MarketReadinessScore > domain.MaxReadinessScore:
		return fmt.Errorf("op=resume.analyze: %w: market_readiness_score %d out of range", domain.ErrSchemaInvalid, e.MarketReadinessScore)
	}
	return nil
}

// isNotFound reports whether err is a not-found of any shape.
func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }
