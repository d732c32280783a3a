package postgres

import (
	"time"

	"github.com/google/uuid"

	"github.com/internx/internx/internal/domain"
)

// AnalysisRepo stores the current resume analysis per user.
type AnalysisRepo struct{ Pool PgxPool }

// NewAnalysisRepo constructs an AnalysisRepo with the given pool.
func NewAnalysisRepo(p PgxPool) *AnalysisRepo { return &AnalysisRepo{Pool: p} }

const analysisColumns = `id::text, user_id::text, raw_text, summary, skills_extracted, market_readiness_score, analysis_date`

// Upsert creates or fully replaces the analysis for a.UserID. The record id
// is stable across replacements.
func (r *AnalysisRepo) Upsert(ctx domain.Context, a domain.ResumeAnalysis) (domain.ResumeAnalysis, error) {
	ctx, span := startSpan(ctx, "repo.analyses", "analyses.Upsert", "INSERT", "resume_analyses")
	defer span.End()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.AnalysisDate.IsZero() {
		a.AnalysisDate = time.Now().UTC()
	}
	q := `INSERT INTO resume_analyses (id, user_id, raw_text, summary, skills_extracted, market_readiness_score, analysis_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (user_id) DO UPDATE SET
			raw_text = EXCLUDED.raw_text,
			summary = EXCLUDED.summary,
			skills_extracted = EXCLUDED.skills_extracted,
			market_readiness_score = EXCLUDED.market_readiness_score,
			analysis_date = EXCLUDED.analysis_date
		RETURNING ` + analysisColumns
	out, err := scanAnalysis(r.Pool.QueryRow(ctx, q,
		a.ID, a.UserID, a.RawText, a.Summary, nonNil(a.SkillsExtracted), a.MarketReadinessScore, a.AnalysisDate.UTC()))
	if err != nil {
		span.RecordError(err)
		return domain.ResumeAnalysis{}, classify("analysis.upsert", err)
	}
	return out, nil
}

// GetByUserID loads the current analysis for userID.
func (r *AnalysisRepo) GetByUserID(ctx domain.Context, userID string) (domain.ResumeAnalysis, error) {
	ctx, span := startSpan(ctx, "repo.analyses", "analyses.GetByUserID", "SELECT", "resume_analyses")
	defer span.End()
	out, err := scanAnalysis(r.Pool.QueryRow(ctx,
		`SELECT `+analysisColumns+` FROM resume_analyses WHERE user_id=$1`, userID))
	if err != nil {
		return domain.ResumeAnalysis{}, classify("analysis.get", err)
	}
	return out, nil
}

func scanAnalysis(row scanner) (domain.ResumeAnalysis, error) {
	var a domain.ResumeAnalysis
	if err := row.Scan(&a.ID, &a.UserID, &a.RawText, &a.Summary, &a.SkillsExtracted, &a.MarketReadinessScore, &a.AnalysisDate); err != nil {
		return domain.ResumeAnalysis{}, err
	}
	a.SkillsExtracted = nonNil(a.SkillsExtracted)
	return a, nil
}
