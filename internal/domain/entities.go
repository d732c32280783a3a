package domain

import (
	"context"
	"time"
)

// DefaultLocation is the location assigned to new preference records.
const DefaultLocation = "Remote"

// Score bounds for the AI-derived market readiness score.
const (
	MinReadinessScore = 1
	MaxReadinessScore = 100
)

// User is the identity record. PasswordHash never leaves the persistence and
// registration layers.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Preferences holds the matching inputs a user declared. Exactly one per user.
type Preferences struct {
	ID        string
	UserID    string
	Skills    []string
	Interests []string
	Location  string
	UpdatedAt time.Time
}

// PreferencesPatch is a partial update. Nil fields are left untouched; a
// non-nil empty slice clears the set.
type PreferencesPatch struct {
	Skills    []string
	Interests []string
	Location  *string
}

// Empty reports whether the patch names no field at all.
func (p PreferencesPatch) Empty() bool {
	return p.Skills == nil && p.Interests == nil && p.Location == nil
}

// Fields lists the names of the fields present in the patch, in a stable order.
func (p PreferencesPatch) Fields() []string {
	out := make([]string, 0, 3)
	if p.Skills != nil {
		out = append(out, "skills")
	}
	if p.Interests != nil {
		out = append(out, "interests")
	}
	if p.Location != nil {
		out = append(out, "location")
	}
	return out
}

// Internship is a catalog listing. Sector is optional; when empty the
// recommendation engine infers one.
type Internship struct {
	ID              string
	Title           string
	Company         string
	Location        string
	Sector          string
	SkillsRequired  []string
	Link            string
	ApplicantsCount int
	PostedDate      time.Time
}

// ResumeAnalysis is the current structured analysis for a user. It is replaced
// wholesale on every successful analysis call.
type ResumeAnalysis struct {
	ID                   string
	UserID               string
	RawText              string
	Summary              string
	SkillsExtracted      []string
	MarketReadinessScore int
	AnalysisDate         time.Time
}

// Extraction is the schema-conformant payload returned by the AI service.
// Invariants: Summary non-empty; Score within [MinReadinessScore, MaxReadinessScore].
type Extraction struct {
	Summary              string   `json:"summary"`
	SkillsExtracted      []string `json:"skills_extracted"`
	MarketReadinessScore int      `json:"market_readiness_score"`
}

// Recommendation is one ranked catalog entry with its explanation.
type Recommendation struct {
	Internship       Internship
	SuitabilityScore float64
	Rationale        string
	MatchedSkills    []string
	MissingSkills    []string
	Sector           string
	Signals          Signals
}

// Signals exposes the individual inputs that fed a suitability score.
type Signals struct {
	SkillOverlap  float64 `json:"skill_overlap"`
	InterestMatch bool    `json:"interest_match"`
	LocationMatch bool    `json:"location_match"`
	Confidence    float64 `json:"confidence"`
}

// RecommendationSet is the engine output for one user.
type RecommendationSet struct {
	UserID         string
	Items          []Recommendation
	Degraded       bool
	Basis          string
	CatalogSize    int
	ReadinessScore *int
	GeneratedAt    time.Time
}

// Basis values for RecommendationSet.
const (
	BasisPreferencesAndAnalysis = "preferences+analysis"
	BasisPreferencesOnly        = "preferences"
)

// SkillCount is one row of the top-skills aggregate.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int64  `json:"count"`
}

// Analytics is the aggregate system overview.
type Analytics struct {
	TotalUsers         int64
	TotalListings      int64
	TotalAnalyses      int64
	TotalApplicants    int64
	AverageReadiness   float64
	TopSkillsRequired  []SkillCount
	SectorDistribution map[string]int64
	RetrievedAt        time.Time
}

// Repositories (ports)

// UserRepository persists users. Create stores the user together with its
// default Preferences atomically. Delete removes the user, its preferences and
// its analysis atomically.
type UserRepository interface {
	Create(ctx Context, u User, p Preferences) (User, Preferences, error)
	Get(ctx Context, id string) (User, error)
	Delete(ctx Context, id string) error
	Count(ctx Context) (int64, error)
}

// PreferencesRepository reads and patches the per-user preference record.
type PreferencesRepository interface {
	GetByUserID(ctx Context, userID string) (Preferences, error)
	Patch(ctx Context, userID string, patch PreferencesPatch, at time.Time) (Preferences, error)
}

// AnalysisRepository stores one analysis per user, last write wins.
type AnalysisRepository interface {
	Upsert(ctx Context, a ResumeAnalysis) (ResumeAnalysis, error)
	GetByUserID(ctx Context, userID string) (ResumeAnalysis, error)
}

// InternshipRepository is the listing catalog.
type InternshipRepository interface {
	Create(ctx Context, in Internship) (Internship, error)
	List(ctx Context, limit, offset int) ([]Internship, error)
	ListAll(ctx Context) ([]Internship, error)
}

// AnalyticsRepository computes aggregates over the stored entities.
type AnalyticsRepository interface {
	Overview(ctx Context, topSkills int) (Analytics, error)
}

// Extractor turns free-text resumes into a schema-conformant Extraction.
type Extractor interface {
	ExtractResume(ctx Context, resumeText string) (Extraction, error)
}

// Context is an alias to allow decoupling from std context in domain.
type Context = context.Context
