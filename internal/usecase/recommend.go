package usecase

import (
	"time"

	"github.com/internx/internx/internal/domain"
	obsctx "github.com/internx/internx/internal/observability"
)

// RecommendationService ranks the catalog for a user.
type RecommendationService struct {
	Prefs       domain.PreferencesRepository
	Analyses    domain.AnalysisRepository
	Internships domain.InternshipRepository
	Policy      Policy
	Now         func() time.Time
}

// NewRecommendationService constructs a RecommendationService.
func NewRecommendationService(p domain.PreferencesRepository, a domain.AnalysisRepository, i domain.InternshipRepository, pol Policy) RecommendationService {
	return RecommendationService{Prefs: p, Analyses: a, Internships: i, Policy: pol}
}

// Recommend scores every listing against the user's preferences and, when
// present, resume analysis. Without an analysis the result is marked degraded
// instead of failing. An empty catalog yields an empty list.
func (s RecommendationService) Recommend(ctx domain.Context, userID string) (domain.RecommendationSet, error) {
	userID, err := requireID(fieldUserID, userID)
	if err != nil {
		return domain.RecommendationSet{}, err
	}
	prefs, err := s.Prefs.GetByUserID(ctx, userID)
	if err != nil {
		return domain.RecommendationSet{}, notFoundAs(err, "user not found")
	}

	var analysis *domain.ResumeAnalysis
	a, err := s.Analyses.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		analysis = &a
	case isNotFound(err):
	default:
		return domain.RecommendationSet{}, err
	}

	catalog, err := s.Internships.ListAll(ctx)
	if err != nil {
		return domain.RecommendationSet{}, err
	}

	pol := s.Policy
	if pol.TopN <= 0 {
		pol.TopN = DefaultPolicy.TopN
	}
	pr := newProfile(prefs, analysis)
	items := make([]domain.Recommendation, 0, len(catalog))
	for _, in := range catalog {
		items = append(items, score(pol, pr, in))
	}
	rank(items)
	if len(items) > pol.TopN {
		items = items[:pol.TopN]
	}

	set := domain.RecommendationSet{
		UserID:      userID,
		Items:       items,
		Degraded:    analysis == nil,
		Basis:       domain.BasisPreferencesAndAnalysis,
		CatalogSize: len(catalog),
		GeneratedAt: utcNow(s.Now),
	}
	if analysis == nil {
		set.Basis = domain.BasisPreferencesOnly
	} else {
		set.ReadinessScore = pr.readiness
	}
	obsctx.Op(ctx, "allocation.recommend", "user_id", userID).Info("recommendations computed",
		"catalog_size", len(catalog), "returned", len(items), "degraded", set.Degraded)
	return set, nil
}
