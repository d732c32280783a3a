package usecase

import (
	"github.com/internx/internx/internal/domain"
)

// TopSkillsLimit bounds the top-skills aggregate.
const TopSkillsLimit = 10

// AnalyticsService builds the system overview.
type AnalyticsService struct {
	Analytics   domain.AnalyticsRepository
	Internships domain.InternshipRepository
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(a domain.AnalyticsRepository, i domain.InternshipRepository) AnalyticsService {
	return AnalyticsService{Analytics: a, Internships: i}
}

// Overview returns stored aggregates plus the sector distribution, which uses
// the same inference as the recommendation engine.
func (s AnalyticsService) Overview(ctx domain.Context) (domain.Analytics, error) {
	a, err := s.Analytics.Overview(ctx, TopSkillsLimit)
	if err != nil {
		return domain.Analytics{}, err
	}
	catalog, err := s.Internships.ListAll(ctx)
	if err != nil {
		return domain.Analytics{}, err
	}
	a.SectorDistribution = make(map[string]int64, len(sectorRules)+1)
	for _, in := range catalog {
		a.SectorDistribution[InferSector(in.Sector, in.Title, in.Company, in.SkillsRequired)]++
	}
	return a, nil
}
