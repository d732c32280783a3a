package postgres

import (
	"time"

	"github.com/internx/internx/internal/domain"
)

// PreferencesRepo reads and patches preference records.
type PreferencesRepo struct{ Pool PgxPool }

// NewPreferencesRepo constructs a PreferencesRepo with the given pool.
func NewPreferencesRepo(p PgxPool) *PreferencesRepo { return &PreferencesRepo{Pool: p} }

const preferencesColumns = `id::text, user_id::text, skills, interests, location, updated_at`

// GetByUserID loads the preference record owned by userID.
func (r *PreferencesRepo) GetByUserID(ctx domain.Context, userID string) (domain.Preferences, error) {
	ctx, span := startSpan(ctx, "repo.preferences", "preferences.GetByUserID", "SELECT", "preferences")
	defer span.End()
	p, err := scanPreferences(r.Pool.QueryRow(ctx,
		`SELECT `+preferencesColumns+` FROM preferences WHERE user_id=$1`, userID))
	if err != nil {
		return domain.Preferences{}, classify("preferences.get", err)
	}
	return p, nil
}

// Patch overwrites only the fields present in patch, in a single statement.
// NULL parameters keep the stored value.
func (r *PreferencesRepo) Patch(ctx domain.Context, userID string, patch domain.PreferencesPatch, at time.Time) (domain.Preferences, error) {
	ctx, span := startSpan(ctx, "repo.preferences", "preferences.Patch", "UPDATE", "preferences")
	defer span.End()
	q := `UPDATE preferences SET
		skills = COALESCE($2::text[], skills),
		interests = COALESCE($3::text[], interests),
		location = COALESCE($4::text, location),
		updated_at = $5
		WHERE user_id=$1
		RETURNING ` + preferencesColumns
	p, err := scanPreferences(r.Pool.QueryRow(ctx, q, userID, patch.Skills, patch.Interests, patch.Location, at.UTC()))
	if err != nil {
		return domain.Preferences{}, classify("preferences.patch", err)
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPreferences(row scanner) (domain.Preferences, error) {
	var p domain.Preferences
	if err := row.Scan(&p.ID, &p.UserID, &p.Skills, &p.Interests, &p.Location, &p.UpdatedAt); err != nil {
		return domain.Preferences{}, err
	}
	p.Skills = nonNil(p.Skills)
	p.Interests = nonNil(p.Interests)
	return p, nil
}
