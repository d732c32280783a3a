package usecase

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/internx/internx/internal/domain"
	obsctx "github.com/internx/internx/internal/observability"
)

// RegisterInput is the registration request after decoding.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// UserService registers, loads and deletes users.
type UserService struct {
	Users    domain.UserRepository
	HashCost int
	Now      func() time.Time
}

// NewUserService constructs a UserService using bcrypt.DefaultCost.
func NewUserService(u domain.UserRepository) UserService {
	return UserService{Users: u, HashCost: bcrypt.DefaultCost}
}

const minPasswordLength = 6

// Register creates a user and its default preferences (no skills, no
// interests, location Remote). A duplicate email fails with domain.ErrConflict.
func (s UserService) Register(ctx domain.Context, in RegisterInput) (domain.User, domain.Preferences, error) {
	if err := rejectNUL(fieldName, in.Name); err != nil {
		return domain.User{}, domain.Preferences{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.User{}, domain.Preferences{}, domain.NewFieldError(fieldName, "is required")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return domain.User{}, domain.Preferences{}, domain.NewFieldError(fieldEmail, "must be a valid email address")
	}
	if len(in.Password) < minPasswordLength {
		return domain.User{}, domain.Preferences{}, domain.NewFieldError(fieldPassword, fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	cost := s.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return domain.User{}, domain.Preferences{}, domain.NewFieldError(fieldPassword, "is too long")
		}
		return domain.User{}, domain.Preferences{}, fmt.Errorf("op=user.register: %w: %w", domain.ErrInternal, err)
	}

	now := utcNow(s.Now)
	u, p, err := s.Users.Create(ctx,
		domain.User{Name: name, Email: email, PasswordHash: string(hash), CreatedAt: now},
		domain.Preferences{Skills: []string{}, Interests: []string{}, Location: domain.DefaultLocation, UpdatedAt: now},
	)
	if err != nil {
		return domain.User{}, domain.Preferences{}, err
	}
	obsctx.Op(ctx, "user.register").Info("user registered", "user_id", u.ID)
	return u, p, nil
}

// Get loads a user.
func (s UserService) Get(ctx domain.Context, id string) (domain.User, error) {
	id, err := requireID(fieldUserID, id)
	if err != nil {
		return domain.User{}, err
	}
	u, err := s.Users.Get(ctx, id)
	if err != nil {
		return domain.User{}, notFoundAs(err, "user not found")
	}
	return u, nil
}

// Delete removes a user together with its preferences and analysis.
func (s UserService) Delete(ctx domain.Context, id string) error {
	id, err := requireID(fieldUserID, id)
	if err != nil {
		return err
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		return notFoundAs(err, "user not found")
	}
	obsctx.Op(ctx, "user.delete").Info("user deleted", "user_id", id)
	return nil
}

// notFoundAs gives a bare ErrNotFound a client-safe message.
func notFoundAs(err error, msg string) error {
	if _, ok := domain.PublicError(err); ok {
		return err
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Errorf(domain.ErrNotFound, "%s", msg)
	}
	return err
}
