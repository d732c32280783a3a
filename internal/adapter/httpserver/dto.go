package httpserver

import (
	"time"

	"github.com/internx/internx/internal/domain"
)

// Request bodies. validate tags reject malformed input before any use case runs.

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type userIDRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

type analyzeRequest struct {
	UserID     string `json:"userId" validate:"required,uuid"`
	ResumeText string `json:"resumeText" validate:"required"`
}

type internshipRequest struct {
	Title           string     `json:"title" validate:"required,max=200"`
	Company         string     `json:"company" validate:"required,max=200"`
	Location        string     `json:"location" validate:"max=200"`
	Sector          string     `json:"sector" validate:"max=100"`
	SkillsRequired  []string   `json:"skills_required" validate:"max=50"`
	Link            string     `json:"link" validate:"omitempty,http_url"`
	ApplicantsCount int        `json:"applicants_count" validate:"gte=0"`
	PostedDate      *time.Time `json:"posted_date"`
}

// Response views.

type userView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserView(u domain.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

type preferencesView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Skills    []string  `json:"skills"`
	Interests []string  `json:"interests"`
	Location  string    `json:"location"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPreferencesView(p domain.Preferences) preferencesView {
	return preferencesView{ID: p.ID, UserID: p.UserID, Skills: nonNil(p.Skills), Interests: nonNil(p.Interests), Location: p.Location, UpdatedAt: p.UpdatedAt}
}

type analysisView struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"user_id"`
	Summary              string    `json:"summary"`
	SkillsExtracted      []string  `json:"skills_extracted"`
	MarketReadinessScore int       `json:"market_readiness_score"`
	AnalysisDate         time.Time `json:"analysis_date"`
}

func toAnalysisView(a domain.ResumeAnalysis) analysisView {
	return analysisView{ID: a.ID, UserID: a.UserID, Summary: a.Summary, SkillsExtracted: nonNil(a.SkillsExtracted), MarketReadinessScore: a.MarketReadinessScore, AnalysisDate: a.AnalysisDate}
}

type internshipView struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	Sector          string    `json:"sector,omitempty"`
	SkillsRequired  []string  `json:"skills_required"`
	Link            string    `json:"link"`
	ApplicantsCount int       `json:"applicants_count"`
	PostedDate      time.Time `json:"posted_date"`
}

func toInternshipView(in domain.Internship) internshipView {
	return internshipView{
		ID: in.ID, Title: in.Title, Company: in.Company, Location: in.Location, Sector: in.Sector,
		SkillsRequired: nonNil(in.SkillsRequired), Link: in.Link, ApplicantsCount: in.ApplicantsCount, PostedDate: in.PostedDate,
	}
}

type recommendationView struct {
	Internship       internshipView `json:"internship"`
	SuitabilityScore float64        `json:"suitability_score"`
	Rationale        string         `json:"rationale"`
	Sector           string         `json:"sector"`
	MatchedSkills    []string       `json:"matched_skills"`
	MissingSkills    []string       `json:"missing_skills"`
	Signals          domain.Signals `json:"signals"`
}

func toRecommendationViews(items []domain.Recommendation) []recommendationView {
	out := make([]recommendationView, 0, len(items))
	for _, r := range items {
		out = append(out, recommendationView{
			Internship:       toInternshipView(r.Internship),
			SuitabilityScore: r.SuitabilityScore,
			Rationale:        r.Rationale,
			Sector:           r.Sector,
			MatchedSkills:    nonNil(r.MatchedSkills),
			MissingSkills:    nonNil(r.MissingSkills),
			Signals:          r.Signals,
		})
	}
	return out
}

type analyticsView struct {
	SystemOverview struct {
		TotalUsers       int64   `json:"total_users"`
		TotalListings    int64   `json:"total_active_listings"`
		TotalAnalyses    int64   `json:"total_resume_analyses"`
		TotalApplicants  int64   `json:"total_applications_tracked"`
		AverageReadiness float64 `json:"average_market_readiness"`
	} `json:"system_overview"`
	TopSkillsRequired  []domain.SkillCount `json:"top_skills_required"`
	SectorDistribution map[string]int64    `json:"sector_distribution"`
	RetrievedAt        time.Time           `json:"data_retrieved_at"`
}

func toAnalyticsView(a domain.Analytics) analyticsView {
	var v analyticsView
	v.SystemOverview.TotalUsers = a.TotalUsers
	v.SystemOverview.TotalListings = a.TotalListings
	v.SystemOverview.TotalAnalyses = a.TotalAnalyses
	v.SystemOverview.TotalApplicants = a.TotalApplicants
	v.SystemOverview.AverageReadiness = a.AverageReadiness
	v.TopSkillsRequired = a.TopSkillsRequired
	if v.TopSkillsRequired == nil {
		v.TopSkillsRequired = []domain.SkillCount{}
	}
	v.SectorDistribution = a.SectorDistribution
	if v.SectorDistribution == nil {
		v.SectorDistribution = map[string]int64{}
	}
	v.RetrievedAt = a.RetrievedAt
	if v.RetrievedAt.IsZero() {
		v.RetrievedAt = time.Now().UTC()
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
