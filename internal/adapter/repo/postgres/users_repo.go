package postgres

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/internx/internx/internal/domain"
)

// UserRepo persists users together with their preference record.
type UserRepo struct{ Pool PgxPool }

// NewUserRepo constructs a UserRepo with the given pool.
func NewUserRepo(p PgxPool) *UserRepo { return &UserRepo{Pool: p} }

// Create inserts the user and its default preferences in one transaction.
func (r *UserRepo) Create(ctx domain.Context, u domain.User, p domain.Preferences) (domain.User, domain.Preferences, error) {
	ctx, span := startSpan(ctx, "repo.users", "users.Create", "INSERT", "users")
	defer span.End()

	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Location == "" {
		p.Location = domain.DefaultLocation
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	p.UserID = u.ID
	p.Skills = nonNil(p.Skills)
	p.Interests = nonNil(p.Interests)

	err := inTx(ctx, r.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (id, name, email, password_hash, created_at) VALUES ($1,$2,$3,$4,$5)`,
			u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO preferences (id, user_id, skills, interests, location, updated_at) VALUES ($1,$2,$3,$4,$5,$6)`,
			p.ID, p.UserID, p.Skills, p.Interests, p.Location, p.UpdatedAt)
		return err
	})
	if err != nil {
		err = classify("user.create", err)
		if errors.Is(err, domain.ErrConflict) {
			return domain.User{}, domain.Preferences{}, domain.Errorf(domain.ErrConflict, "a user with this email already exists")
		}
		span.RecordError(err)
		return domain.User{}, domain.Preferences{}, err
	}
	return u, p, nil
}

// Get loads a user by id.
func (r *UserRepo) Get(ctx domain.Context, id string) (domain.User, error) {
	ctx, span := startSpan(ctx, "repo.users", "users.Get", "SELECT", "users")
	defer span.End()
	var u domain.User
	err := r.Pool.QueryRow(ctx,
		`SELECT id::text, name, email, password_hash, created_at FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return domain.User{}, classify("user.get", err)
	}
	return u, nil
}

// Delete removes the user, its preferences and its analysis in one
// transaction. The foreign keys cascade as well; the explicit deletes keep the
// behaviour independent of the schema.
func (r *UserRepo) Delete(ctx domain.Context, id string) error {
	ctx, span := startSpan(ctx, "repo.users", "users.Delete", "DELETE", "users")
	defer span.End()
	err := inTx(ctx, r.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM resume_analyses WHERE user_id=$1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM preferences WHERE user_id=$1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	return classify("user.delete", err)
}

// Count returns the number of registered users.
func (r *UserRepo) Count(ctx domain.Context) (int64, error) {
	ctx, span := startSpan(ctx, "repo.users", "users.Count", "SELECT", "users")
	defer span.End()
	var n int64
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, classify("user.count", err)
	}
	return n, nil
}
