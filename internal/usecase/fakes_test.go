package usecase_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/internx/internx/internal/domain"
)

// memStore is an in-memory stand-in for the Postgres repositories with the
// same uniqueness and cascade rules.
type memStore struct {
	mu          sync.Mutex
	users       map[string]domain.User
	prefs       map[string]domain.Preferences // by user id
	analyses    map[string]domain.ResumeAnalysis
	internships []domain.Internship

	upserts  int
	patches  int
	failNext error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]domain.User{},
		prefs:    map[string]domain.Preferences{},
		analyses: map[string]domain.ResumeAnalysis{},
	}
}

func (m *memStore) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

// UserRepository

func (m *memStore) Create(_ context.Context, u domain.User, p domain.Preferences) (domain.User, domain.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return domain.User{}, domain.Preferences{}, err
	}
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.User{}, domain.Preferences{}, domain.Errorf(domain.ErrConflict, "a user with this email already exists")
		}
	}
	u.ID = uuid.New().String()
	p.ID = uuid.New().String()
	p.UserID = u.ID
	m.users[u.ID] = u
	m.prefs[u.ID] = p
	return u, p, nil
}

func (m *memStore) Get(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.analyses, id)
	delete(m.prefs, id)
	delete(m.users, id)
	return nil
}

func (m *memStore) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

// PreferencesRepository

type prefsRepo struct{ *memStore }

func (r prefsRepo) GetByUserID(_ context.Context, userID string) (domain.Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prefs[userID]
	if !ok {
		return domain.Preferences{}, domain.ErrNotFound
	}
	return p, nil
}

func (r prefsRepo) Patch(_ context.Context, userID string, patch domain.PreferencesPatch, at time.Time) (domain.Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return domain.Preferences{}, err
	}
	p, ok := r.prefs[userID]
	if !ok {
		return domain.Preferences{}, domain.ErrNotFound
	}
	r.patches++
	if patch.Skills != nil {
		p.Skills = patch.Skills
	}
	if patch.Interests != nil {
		p.Interests = patch.Interests
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	p.UpdatedAt = at
	r.prefs[userID] = p
	return p, nil
}

// AnalysisRepository

type analysesRepo struct{ *memStore }

func (r analysesRepo) Upsert(_ context.Context, a domain.ResumeAnalysis) (domain.ResumeAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return domain.ResumeAnalysis{}, err
	}
	if _, ok := r.users[a.UserID]; !ok {
		return domain.ResumeAnalysis{}, domain.ErrNotFound
	}
	r.upserts++
	if prev, ok := r.analyses[a.UserID]; ok {
		a.ID = prev.ID
	} else {
		a.ID = uuid.New().String()
	}
	r.analyses[a.UserID] = a
	return a, nil
}

func (r analysesRepo) GetByUserID(_ context.Context, userID string) (domain.ResumeAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[userID]
	if !ok {
		return domain.ResumeAnalysis{}, domain.ErrNotFound
	}
	return a, nil
}

// InternshipRepository

type internshipsRepo struct {
	*memStore
	listErr error
}

func (r internshipsRepo) Create(_ context.Context, in domain.Internship) (domain.Internship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	r.internships = append(r.internships, in)
	return in, nil
}

func (r internshipsRepo) List(_ context.Context, limit, offset int) ([]domain.Internship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := append([]domain.Internship(nil), r.internships...)
	sort.Slice(all, func(i, j int) bool { return all[i].PostedDate.After(all[j].PostedDate) })
	if offset >= len(all) {
		return []domain.Internship{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r internshipsRepo) ListAll(_ context.Context) ([]domain.Internship, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Internship{}, r.internships...), nil
}

// stubExtractor returns canned results and counts calls.
type stubExtractor struct {
	out   domain.Extraction
	err   error
	calls int
	texts []string
}

func (s *stubExtractor) ExtractResume(_ context.Context, text string) (domain.Extraction, error) {
	s.calls++
	s.texts = append(s.texts, text)
	return s.out, s.err
}

// checkingExtractor also rejects input locally, like the Gemini client.
type checkingExtractor struct {
	stubExtractor
	checkErr error
	checks   int
}

func (c *checkingExtractor) CheckResume(_ string) error {
	c.checks++
	return c.checkErr
}

// stubLimiter admits the first n calls.
type stubLimiter struct {
	n     int
	calls int
	err   error
}

func (l *stubLimiter) Allow(_ context.Context, _ string) (bool, time.Duration, error) {
	l.calls++
	if l.err != nil {
		return true, 0, l.err
	}
	return l.calls <= l.n, 30 * time.Second, nil
}

var fixedNow = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }
