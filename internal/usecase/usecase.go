// Package usecase contains application business logic services.
package usecase

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/internx/internx/internal/domain"
)

// Field names as they appear in request bodies, used in field-level errors.
const (
	fieldUserID     = "userId"
	fieldName       = "name"
	fieldEmail      = "email"
	fieldPassword   = "password"
	fieldSkills     = "skills"
	fieldInterests  = "interests"
	fieldLocation   = "location"
	fieldResumeText = "resumeText"
)

// Limits on user-supplied collections.
const (
	maxTerms      = 50
	maxTermLength = 100
)

// rejectNUL fails for text Postgres cannot store.
func rejectNUL(field, s string) error {
	if strings.ContainsRune(s, 0) {
		return domain.NewFieldError(field, "must not contain NUL characters")
	}
	return nil
}

// requireID validates that id is a UUID. field names it in the error.
func requireID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", domain.NewFieldError(field, "is required")
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return "", domain.NewFieldError(field, "must be a valid id")
	}
	return u.String(), nil
}

func utcNow(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}
