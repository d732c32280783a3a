package postgres

import (
	"time"

	"github.com/internx/internx/internal/domain"
)

// AnalyticsRepo computes aggregate counters over the stored entities.
type AnalyticsRepo struct{ Pool PgxPool }

// NewAnalyticsRepo constructs an AnalyticsRepo with the given pool.
func NewAnalyticsRepo(p PgxPool) *AnalyticsRepo { return &AnalyticsRepo{Pool: p} }

// Overview returns totals and the topSkills most requested skills. Sector
// distribution is left to the caller, which knows how to infer sectors.
func (r *AnalyticsRepo) Overview(ctx domain.Context, topSkills int) (domain.Analytics, error) {
	ctx, span := startSpan(ctx, "repo.analytics", "analytics.Overview", "SELECT", "*")
	defer span.End()

	var a domain.Analytics
	err := r.Pool.QueryRow(ctx, `SELECT
		(SELECT count(*) FROM users),
		(SELECT count(*) FROM internships),
		(SELECT count(*) FROM resume_analyses),
		(SELECT COALESCE(sum(applicants_count), 0)::bigint FROM internships),
		(SELECT COALESCE(avg(market_readiness_score), 0)::float8 FROM resume_analyses)`).
		Scan(&a.TotalUsers, &a.TotalListings, &a.TotalAnalyses, &a.TotalApplicants, &a.AverageReadiness)
	if err != nil {
		return domain.Analytics{}, classify("analytics.overview", err)
	}

	rows, err := r.Pool.Query(ctx, `SELECT min(s), count(*) FROM internships, unnest(skills_required) AS s
		GROUP BY lower(s) ORDER BY count(*) DESC, min(s) LIMIT $1`, topSkills)
	if err != nil {
		return domain.Analytics{}, classify("analytics.top_skills", err)
	}
	defer rows.Close()
	a.TopSkillsRequired = []domain.SkillCount{}
	for rows.Next() {
		var sc domain.SkillCount
		if err := rows.Scan(&sc.Skill, &sc.Count); err != nil {
			return domain.Analytics{}, classify("analytics.top_skills", err)
		}
		a.TopSkillsRequired = append(a.TopSkillsRequired, sc)
	}
	if err := rows.Err(); err != nil {
		return domain.Analytics{}, classify("analytics.top_skills", err)
	}
	a.RetrievedAt = time.Now().UTC()
	return a, nil
}
