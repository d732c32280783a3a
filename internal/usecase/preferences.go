package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/internx/internx/internal/domain"
	obsctx "github.com/internx/internx/internal/observability"
	"github.com/internx/internx/pkg/textx"
)

// PreferencesService reads and partially updates preferences.
type PreferencesService struct {
	Prefs domain.PreferencesRepository
	Now   func() time.Time
}

// NewPreferencesService constructs a PreferencesService.
func NewPreferencesService(p domain.PreferencesRepository) PreferencesService {
	return PreferencesService{Prefs: p}
}

// Get returns the preferences of userID.
func (s PreferencesService) Get(ctx domain.Context, userID string) (domain.Preferences, error) {
	userID, err := requireID(fieldUserID, userID)
	if err != nil {
		return domain.Preferences{}, err
	}
	p, err := s.Prefs.GetByUserID(ctx, userID)
	if err != nil {
		return domain.Preferences{}, notFoundAs(err, "user not found")
	}
	return p, nil
}

// Update applies patch. Every present field is validated before anything is
// written; an empty patch returns the stored record without writing.
func (s PreferencesService) Update(ctx domain.Context, userID string, patch domain.PreferencesPatch) (domain.Preferences, error) {
	userID, err := requireID(fieldUserID, userID)
	if err != nil {
		return domain.Preferences{}, err
	}
	clean, err := normalizePatch(patch)
	if err != nil {
		return domain.Preferences{}, err
	}
	if clean.Empty() {
		return s.Get(ctx, userID)
	}
	p, err := s.Prefs.Patch(ctx, userID, clean, utcNow(s.Now))
	if err != nil {
		return domain.Preferences{}, notFoundAs(err, "user not found")
	}
	obsctx.Op(ctx, "preferences.update").Info("preferences updated",
		"user_id", userID, "fields", strings.Join(clean.Fields(), ","))
	return p, nil
}

func normalizePatch(in domain.PreferencesPatch) (domain.PreferencesPatch, error) {
	var out domain.PreferencesPatch
	if in.Skills != nil {
		terms, err := normalizeTerms(fieldSkills, in.Skills)
		if err != nil {
			return domain.PreferencesPatch{}, err
		}
		out.Skills = terms
	}
	if in.Interests != nil {
		terms, err := normalizeTerms(fieldInterests, in.Interests)
		if err != nil {
			return domain.PreferencesPatch{}, err
		}
		out.Interests = terms
	}
	if in.Location != nil {
		loc := strings.Join(strings.Fields(textx.SanitizeText(*in.Location)), " ")
		if loc == "" {
			return domain.PreferencesPatch{}, domain.NewFieldError(fieldLocation, "must not be empty")
		}
		if len(loc) > maxTermLength {
			return domain.PreferencesPatch{}, domain.NewFieldError(fieldLocation, fmt.Sprintf("must be at most %d characters", maxTermLength))
		}
		out.Location = &loc
	}
	return out, nil
}

func normalizeTerms(field string, in []string) ([]string, error) {
	terms := textx.NormalizeTerms(in)
	if len(terms) > maxTerms {
		return nil, domain.NewFieldError(field, fmt.Sprintf("must contain at most %d entries", maxTerms))
	}
	for _, t := range terms {
		if len(t) > maxTermLength {
			return nil, domain.NewFieldError(field, fmt.Sprintf("entries must be at most %d characters", maxTermLength))
		}
	}
	return terms, nil
}
