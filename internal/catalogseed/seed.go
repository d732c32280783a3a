// Package catalogseed loads demo users, preferences, analyses and internship
// listings from YAML and stores them through the application services.
package catalogseed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/internx/internx/internal/domain"
	obsctx "github.com/internx/internx/internal/observability"
	"github.com/internx/internx/internal/usecase"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// Catalog is the YAML document.
type Catalog struct {
	Users       []UserSeed       `yaml:"users"`
	Internships []InternshipSeed `yaml:"internships"`
}

// UserSeed is one demo account with optional preferences and analysis.
type UserSeed struct {
	Name        string           `yaml:"name"`
	Email       string           `yaml:"email"`
	Password    string           `yaml:"password"`
	Preferences *PreferencesSeed `yaml:"preferences"`
	Analysis    *AnalysisSeed    `yaml:"analysis"`
}

// PreferencesSeed mirrors the preferences patch. Omitted fields stay at their
// registration defaults.
type PreferencesSeed struct {
	Skills    []string `yaml:"skills"`
	Interests []string `yaml:"interests"`
	Location  *string  `yaml:"location"`
}

// AnalysisSeed is a precomputed extraction, stored without calling the model.
type AnalysisSeed struct {
	Summary              string   `yaml:"summary"`
	SkillsExtracted      []string `yaml:"skills_extracted"`
	MarketReadinessScore int      `yaml:"market_readiness_score"`
}

// InternshipSeed is one listing.
type InternshipSeed struct {
	Title           string   `yaml:"title"`
	Company         string   `yaml:"company"`
	Location        string   `yaml:"location"`
	Sector          string   `yaml:"sector"`
	SkillsRequired  []string `yaml:"skills_required"`
	Link            string   `yaml:"link"`
	ApplicantsCount int      `yaml:"applicants_count"`
	// PostedDaysAgo offsets the posted date from the seeding time.
	PostedDaysAgo int `yaml:"posted_days_ago"`
}

// Parse decodes a catalog document. Unknown keys are rejected.
func Parse(b []byte) (Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("op=catalogseed.parse: yaml: %w", err)
	}
	if len(c.Users) == 0 && len(c.Internships) == 0 {
		return Catalog{}, errors.New("op=catalogseed.parse: catalog is empty")
	}
	return c, nil
}

// Default returns the built-in demo catalog.
func Default() Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFile reads a catalog from path. Paths outside the working directory are
// refused unless CATALOGSEED_ALLOW_ABSPATHS=1.
func LoadFile(path string) (Catalog, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Catalog{}, err
	}
	wd, err := os.Getwd()
	if err != nil {
		return Catalog{}, err
	}
	abs = filepath.Clean(abs)
	wd = filepath.Clean(wd)
	if os.Getenv("CATALOGSEED_ALLOW_ABSPATHS") != "1" {
		if !strings.HasPrefix(abs, wd+string(os.PathSeparator)) && abs != wd {
			return Catalog{}, fmt.Errorf("disallowed path: %s", abs)
		}
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Catalog{}, fmt.Errorf("seed file not found: %s", path)
		}
		return Catalog{}, err
	}
	return Parse(b)
}

// Seeder writes a catalog through the same services the API uses, so seeded
// records pass the same validation and normalization.
type Seeder struct {
	Users       usecase.UserService
	Preferences usecase.PreferencesService
	Analyses    domain.AnalysisRepository
	Internships usecase.InternshipService
	Now         func() time.Time
}

// Result counts what a run stored.
type Result struct {
	Users       int
	Skipped     int
	Analyses    int
	Internships int
}

// Run stores c. Users whose email is already registered are skipped together
// with their preferences and analysis. Listings are only inserted into an
// empty catalog so repeated runs do not duplicate them.
func (s Seeder) Run(ctx domain.Context, c Catalog) (Result, error) {
	lg := obsctx.Op(ctx, "catalogseed.run")
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	var res Result
	for _, u := range c.Users {
		user, _, err := s.Users.Register(ctx, usecase.RegisterInput{Name: u.Name, Email: u.Email, Password: u.Password})
		if errors.Is(err, domain.ErrConflict) {
			lg.Info("seed user exists, skipping", "email", u.Email)
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("op=catalogseed.user %s: %w", u.Email, err)
		}
		res.Users++
		if p := u.Preferences; p != nil {
			patch := domain.PreferencesPatch{Skills: p.Skills, Interests: p.Interests, Location: p.Location}
			if !patch.Empty() {
				if _, err := s.Preferences.Update(ctx, user.ID, patch); err != nil {
					return res, fmt.Errorf("op=catalogseed.preferences %s: %w", u.Email, err)
				}
			}
		}
		if a := u.Analysis; a != nil {
			if err := validAnalysis(*a); err != nil {
				return res, fmt.Errorf("op=catalogseed.analysis %s: %w", u.Email, err)
			}
			if _, err := s.Analyses.Upsert(ctx, domain.ResumeAnalysis{
				UserID:               user.ID,
				Summary:              strings.TrimSpace(a.Summary),
				SkillsExtracted:      a.SkillsExtracted,
				MarketReadinessScore: a.MarketReadinessScore,
				AnalysisDate:         now,
			}); err != nil {
				return res, fmt.Errorf("op=catalogseed.analysis %s: %w", u.Email, err)
			}
			res.Analyses++
		}
	}

	if len(c.Internships) == 0 {
		return res, nil
	}
	existing, err := s.Internships.List(ctx, 1, 0)
	if err != nil {
		return res, fmt.Errorf("op=catalogseed.internships: %w", err)
	}
	if len(existing) > 0 {
		lg.Info("catalog not empty, skipping listings", "listings", len(c.Internships))
		return res, nil
	}
	for _, in := range c.Internships {
		posted := now.AddDate(0, 0, -in.PostedDaysAgo)
		if _, err := s.Internships.Create(ctx, usecase.InternshipInput{
			Title:           in.Title,
			Company:         in.Company,
			Location:        in.Location,
			Sector:          in.Sector,
			SkillsRequired:  in.SkillsRequired,
			Link:            in.Link,
			ApplicantsCount: in.ApplicantsCount,
			PostedDate:      &posted,
		}); err != nil {
			return res, fmt.Errorf("op=catalogseed.internship %q: %w", in.Title, err)
		}
		res.Internships++
	}
	lg.Info("catalog seeded",
		"users", res.Users,
		"skipped", res.Skipped,
		"analyses", res.Analyses,
		"internships", res.Internships)
	return res, nil
}

func validAnalysis(a AnalysisSeed) error {
	if strings.TrimSpace(a.Summary) == "" {
		return domain.NewFieldError("summary", "is required")
	}
	if a.MarketReadinessScore < domain.MinReadinessScore || a.MarketReadinessScore > domain.MaxReadinessScore {
		return domain.NewFieldError("market_readiness_score",
			fmt.Sprintf("must be between %d and %d", domain.MinReadinessScore, domain.MaxReadinessScore))
	}
	return nil
}
