package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/internx/internx/internal/domain"
	"github.com/internx/internx/internal/usecase"
)

func newUserService(store *memStore) usecase.UserService {
	svc := usecase.NewUserService(store)
	svc.HashCost = bcrypt.MinCost
	svc.Now = fixedNow
	return svc
}

func TestRegister_CreatesUserAndDefaultPreferences(t *testing.T) {
	store := newMemStore()
	svc := newUserService(store)

	u, p, err := svc.Register(context.Background(), usecase.RegisterInput{Name: " Alice ", Email: "Alice@InternX.com", Password: "password123"})
	require.NoError(t, err)

	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "alice@internx.com", u.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")))
	assert.NotContains(t, u.PasswordHash, "password123")

	assert.Equal(t, u.ID, p.UserID)
	assert.Empty(t, p.Skills)
	assert.Empty(t, p.Interests)
	assert.Equal(t, "Remote", p.Location)

	assert.Len(t, store.users, 1)
	assert.Len(t, store.prefs, 1)
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	store := newMemStore()
	svc := newUserService(store)

	_, _, err := svc.Register(context.Background(), usecase.RegisterInput{Name: "A", Email: "dup@x.io", Password: "secret1"})
	require.NoError(t, err)
	_, _, err = svc.Register(context.Background(), usecase.RegisterInput{Name: "B", Email: "DUP@x.io", Password: "secret2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Len(t, store.users, 1)
}

func TestRegister_Validation(t *testing.T) {
	svc := newUserService(newMemStore())
	cases := map[string]struct {
		in    usecase.RegisterInput
		field string
	}{
		"missing name":   {usecase.RegisterInput{Email: "a@b.co", Password: "secret1"}, "name"},
		"bad email":      {usecase.RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"}, "email"},
		"display email":  {usecase.RegisterInput{Name: "A", Email: "A <a@b.co>", Password: "secret1"}, "email"},
		"short password": {usecase.RegisterInput{Name: "A", Email: "a@b.co", Password: "123"}, "password"},
		"long password":  {usecase.RegisterInput{Name: "A", Email: "a@b.co", Password: strings.Repeat("x", 80)}, "password"},
		"nul in name":    {usecase.RegisterInput{Name: "A\x00B", Email: "a@b.co", Password: "secret1"}, "name"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tc.in)
			require.Error(t, err)
			de, ok := domain.PublicError(err)
			require.True(t, ok)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
			assert.Equal(t, tc.field, de.Field)
		})
	}
}

func TestUserGetAndDelete(t *testing.T) {
	store := newMemStore()
	svc := newUserService(store)
	u, _, err := svc.Register(context.Background(), usecase.RegisterInput{Name: "A", Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)
	store.analyses[u.ID] = domain.ResumeAnalysis{UserID: u.ID}

	got, err := svc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	require.NoError(t, svc.Delete(context.Background(), u.ID))
	assert.Empty(t, store.users)
	assert.Empty(t, store.prefs, "preferences cascade with the user")
	assert.Empty(t, store.analyses, "analysis cascades with the user")

	_, err = svc.Get(context.Background(), u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	err = svc.Delete(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	de, ok := domain.PublicError(err)
	require.True(t, ok)
	assert.Equal(t, "user not found", de.Message)

	_, err = svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
