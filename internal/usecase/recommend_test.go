package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internx/internx/internal/domain"
	"github.com/internx/internx/internal/usecase"
)

func catalogListing(id, title, company, location string, applicants int, posted time.Time, skills ...string) domain.Internship {
	return domain.Internship{ID: id, Title: title, Company: company, Location: location, SkillsRequired: skills, ApplicantsCount: applicants, PostedDate: posted}
}

func newRecommendationService(store *memStore, pol usecase.Policy) usecase.RecommendationService {
	svc := usecase.NewRecommendationService(prefsRepo{store}, analysesRepo{store}, internshipsRepo{memStore: store}, pol)
	svc.Now = fixedNow
	return svc
}

func seedCatalog(store *memStore) {
	day := fixedNow().AddDate(0, 0, -3)
	store.internships = []domain.Internship{
		catalogListing("frontend", "Frontend Development Internship", "Creative Web Agency", "San Francisco, CA", 40, day, "React", "JavaScript", "CSS"),
		catalogListing("backend", "Python Backend Developer Intern", "FinTech Innovations", "New York, NY", 120, day, "Python", "Django", "SQL"),
		catalogListing("data", "Data Analyst Intern", "Insight Corp", "Remote", 75, day, "Python", "Pandas", "SQL"),
		catalogListing("design", "UX/UI Design Intern", "Pixel Studio", "Austin, TX", 10, day, "Figma"),
	}
}

func TestRecommend_DegradedWithoutAnalysis(t *testing.T) {
	store := newMemStore()
	id := seedUser(t, store, []string{"Python", "MongoDB"}, []string{"FinTech"}, "Remote")
	seedCatalog(store)

	set, err := newRecommendationService(store, usecase.DefaultPolicy).Recommend(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, set.Degraded)
	assert.Equal(t, domain.BasisPreferencesOnly, set.Basis)
	assert.Nil(t, set.ReadinessScore)
	assert.Equal(t, 4, set.CatalogSize)
	require.Len(t, set.Items, 4)

	byID := map[string]domain.Recommendation{}
	for _, r := range set.Items {
		byID[r.Internship.ID] = r
	}
	backend, frontend := byID["backend"], byID["frontend"]
	assert.Greater(t, backend.SuitabilityScore, frontend.SuitabilityScore)
	assert.InDelta(t, 33.75, backend.SuitabilityScore, 0.001)
	assert.Zero(t, frontend.SuitabilityScore)
	assert.Equal(t, []string{"Python"}, backend.MatchedSkills)
	assert.Equal(t, []string{"Django", "SQL"}, backend.MissingSkills)
	assert.Equal(t, "FinTech", backend.Sector)
	assert.True(t, backend.Signals.InterestMatch)
	assert.False(t, backend.Signals.LocationMatch)
	assert.InDelta(t, 0.75, backend.Signals.Confidence, 0.0001)
	assert.Contains(t, backend.Rationale, "Matched 1 of 3 required skills (Python)")
	assert.Contains(t, backend.Rationale, "no resume analysis on file")

	for i := 1; i < len(set.Items); i++ {
		assert.GreaterOrEqual(t, set.Items[i-1].SuitabilityScore, set.Items[i].SuitabilityScore)
	}
}

func TestRecommend_UsesAnalysisSkillsAndReadiness(t *testing.T) {
	store := newMemStore()
	id := seedUser(t, store, []string{"Python"}, []string{"FinTech"}, "Remote")
	seedCatalog(store)
	store.analyses[id] = domain.ResumeAnalysis{ID: "a", UserID: id, SkillsExtracted: []string{"django", "SQL"}, MarketReadinessScore: 88}

	set, err := newRecommendationService(store, usecase.DefaultPolicy).Recommend(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, set.Degraded)
	assert.Equal(t, domain.BasisPreferencesAndAnalysis, set.Basis)
	require.NotNil(t, set.ReadinessScore)
	assert.Equal(t, 88, *set.ReadinessScore)

	top := set.Items[0]
	assert.Equal(t, "backend", top.Internship.ID)
	assert.Equal(t, []string{"Python", "Django", "SQL"}, top.MatchedSkills)
	assert.Empty(t, top.MissingSkills)
	// (0.6 + 0.25) * (0.75 + 0.25*0.88) * 100
	assert.InDelta(t, 82.45, top.SuitabilityScore, 0.01)
	assert.Contains(t, top.Rationale, "market readiness 88/100")
}

func TestRecommend_TieBreaksAndTruncates(t *testing.T) {
	store := newMemStore()
	id := seedUser(t, store, []string{"Go"}, nil, "Remote")
	older := fixedNow().AddDate(0, -1, 0)
	newer := fixedNow().AddDate(0, 0, -1)
	store.internships = []domain.Internship{
		catalogListing("c", "Go Intern", "Acme", "Remote", 5, older, "Go"),
		catalogListing("a", "Go Intern", "Acme", "Remote", 5, newer, "Go"),
		catalogListing("b", "Go Intern", "Acme", "Remote", 2, older, "Go"),
		catalogListing("d", "Go Intern", "Acme", "Remote", 5, newer, "Go"),
		catalogListing("z", "Cook", "Diner", "Paris", 0, newer, "Cooking"),
	}
	pol := usecase.DefaultPolicy
	pol.TopN = 4

	set, err := newRecommendationService(store, pol).Recommend(context.Background(), id)
	require.NoError(t, err)
	ids := make([]string, 0, len(set.Items))
	for _, r := range set.Items {
		ids = append(ids, r.Internship.ID)
	}
	assert.Equal(t, []string{"b", "a", "d", "c"}, ids)
	assert.Equal(t, 5, set.CatalogSize)
}

func TestRecommend_IsDeterministic(t *testing.T) {
	store := newMemStore()
	id := seedUser(t, store, []string{"Python"}, []string{"Data"}, "Remote")
	seedCatalog(store)
	svc := newRecommendationService(store, usecase.DefaultPolicy)

	first, err := svc.Recommend(context.Background(), id)
	require.NoError(t, err)
	second, err := svc.Recommend(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRecommend_EmptyCatalog(t *testing.T) {
	store := newMemStore()
	id := seedUser(t, store, []string{"Go"}, nil, "Remote")

	set, err := newRecommendationService(store, usecase.DefaultPolicy).Recommend(context.Background(), id)
	require.NoError(t, err)
	assert.NotNil(t, set.Items)
	assert.Empty(t, set.Items)
	assert.Zero(t, set.CatalogSize)
}

func TestRecommend_Errors(t *testing.T) {
	store := newMemStore()
	svc := newRecommendationService(store, usecase.DefaultPolicy)

	_, err := svc.Recommend(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Recommend(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	id := seedUser(t, store, nil, nil, "Remote")
	failing := svc
	failing.Internships = internshipsRepo{memStore: store, listErr: fmt.Errorf("op=internships.list_all: %w: %w", domain.ErrPersistence, errors.New("boom"))}
	_, err = failing.Recommend(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
