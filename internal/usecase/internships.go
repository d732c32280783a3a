package usecase

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/internx/internx/internal/domain"
	obsctx "github.com/internx/internx/internal/observability"
)

// Pagination bounds for listing the catalog.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// InternshipInput is an administrative create request after decoding.
type InternshipInput struct {
	Title           string
	Company         string
	Location        string
	Sector          string
	SkillsRequired  []string
	Link            string
	ApplicantsCount int
	PostedDate      *time.Time
}

// InternshipService manages the catalog.
type InternshipService struct {
	Internships domain.InternshipRepository
	Now         func() time.Time
}

// NewInternshipService constructs an InternshipService.
func NewInternshipService(r domain.InternshipRepository) InternshipService {
	return InternshipService{Internships: r}
}

// Create validates and stores a listing.
func (s InternshipService) Create(ctx domain.Context, in InternshipInput) (domain.Internship, error) {
	for _, f := range []struct{ name, value string }{
		{"title", in.Title}, {"company", in.Company}, {"location", in.Location}, {"sector", in.Sector}, {"link", in.Link},
	} {
		if err := rejectNUL(f.name, f.value); err != nil {
			return domain.Internship{}, err
		}
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Internship{}, domain.NewFieldError("title", "is required")
	}
	company := strings.TrimSpace(in.Company)
	if company == "" {
		return domain.Internship{}, domain.NewFieldError("company", "is required")
	}
	location := strings.TrimSpace(in.Location)
	if location == "" {
		location = domain.DefaultLocation
	}
	skills, err := normalizeTerms("skills_required", in.SkillsRequired)
	if err != nil {
		return domain.Internship{}, err
	}
	link := strings.TrimSpace(in.Link)
	if link != "" {
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return domain.Internship{}, domain.NewFieldError("link", "must be an http(s) URL")
		}
	}
	if in.ApplicantsCount < 0 {
		return domain.Internship{}, domain.NewFieldError("applicants_count", "must not be negative")
	}
	posted := utcNow(s.Now)
	if in.PostedDate != nil {
		posted = in.PostedDate.UTC()
	}
	out, err := s.Internships.Create(ctx, domain.Internship{
		Title:           title,
		Company:         company,
		Location:        location,
		Sector:          strings.TrimSpace(in.Sector),
		SkillsRequired:  skills,
		Link:            link,
		ApplicantsCount: in.ApplicantsCount,
		PostedDate:      posted,
	})
	if err != nil {
		return domain.Internship{}, err
	}
	obsctx.Op(ctx, "internship.create").Info("internship created", "internship_id", out.ID)
	return out, nil
}

// List returns one page of the catalog. limit 0 means DefaultPageSize.
func (s InternshipService) List(ctx domain.Context, limit, offset int) ([]domain.Internship, error) {
	if limit == 0 {
		limit = DefaultPageSize
	}
	if limit < 1 || limit > MaxPageSize {
		return nil, domain.NewFieldError("limit", fmt.Sprintf("must be between 1 and %d", MaxPageSize))
	}
	if offset < 0 {
		return nil, domain.NewFieldError("offset", "must not be negative")
	}
	return s.Internships.List(ctx, limit, offset)
}
