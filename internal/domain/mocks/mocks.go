// Package mocks provides testify mocks for the domain ports.
package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/internx/internx/internal/domain"
)

// MockUserRepository is a mock implementation of domain.UserRepository.
type MockUserRepository struct{ mock.Mock }

// Create provides a mock function.
func (m *MockUserRepository) Create(ctx domain.Context, u domain.User, p domain.Preferences) (domain.User, domain.Preferences, error) {
	args := m.Called(ctx, u, p)
	return args.Get(0).(domain.User), args.Get(1).(domain.Preferences), args.Error(2)
}

// Get provides a mock function.
func (m *MockUserRepository) Get(ctx domain.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

// Delete provides a mock function.
func (m *MockUserRepository) Delete(ctx domain.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// Count provides a mock function.
func (m *MockUserRepository) Count(ctx domain.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPreferencesRepository is a mock implementation of domain.PreferencesRepository.
type MockPreferencesRepository struct{ mock.Mock }

// GetByUserID provides a mock function.
func (m *MockPreferencesRepository) GetByUserID(ctx domain.Context, userID string) (domain.Preferences, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Preferences), args.Error(1)
}

// Patch provides a mock function.
func (m *MockPreferencesRepository) Patch(ctx domain.Context, userID string, patch domain.PreferencesPatch, at time.Time) (domain.Preferences, error) {
	args := m.Called(ctx, userID, patch, at)
	return args.Get(0).(domain.Preferences), args.Error(1)
}

// MockAnalysisRepository is a mock implementation of domain.AnalysisRepository.
type MockAnalysisRepository struct{ mock.Mock }

// Upsert provides a mock function.
func (m *MockAnalysisRepository) Upsert(ctx domain.Context, a domain.ResumeAnalysis) (domain.ResumeAnalysis, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(domain.ResumeAnalysis), args.Error(1)
}

// GetByUserID provides a mock function.
func (m *MockAnalysisRepository) GetByUserID(ctx domain.Context, userID string) (domain.ResumeAnalysis, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.ResumeAnalysis), args.Error(1)
}

// MockInternshipRepository is a mock implementation of domain.InternshipRepository.
type MockInternshipRepository struct{ mock.Mock }

// Create provides a mock function.
func (m *MockInternshipRepository) Create(ctx domain.Context, in domain.Internship) (domain.Internship, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.Internship), args.Error(1)
}

// List provides a mock function.
func (m *MockInternshipRepository) List(ctx domain.Context, limit, offset int) ([]domain.Internship, error) {
	args := m.Called(ctx, limit, offset)
	out, _ := args.Get(0).([]domain.Internship)
	return out, args.Error(1)
}

// ListAll provides a mock function.
func (m *MockInternshipRepository) ListAll(ctx domain.Context) ([]domain.Internship, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]domain.Internship)
	return out, args.Error(1)
}

// MockAnalyticsRepository is a mock implementation of domain.AnalyticsRepository.
type MockAnalyticsRepository struct{ mock.Mock }

// Overview provides a mock function.
func (m *MockAnalyticsRepository) Overview(ctx domain.Context, topSkills int) (domain.Analytics, error) {
	args := m.Called(ctx, topSkills)
	return args.Get(0).(domain.Analytics), args.Error(1)
}

// MockExtractor is a mock implementation of domain.Extractor.
type MockExtractor struct{ mock.Mock }

// ExtractResume provides a mock function.
func (m *MockExtractor) ExtractResume(ctx domain.Context, resumeText string) (domain.Extraction, error) {
	args := m.Called(ctx, resumeText)
	return args.Get(0).(domain.Extraction), args.Error(1)
}
