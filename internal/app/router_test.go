package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpserver "github.com/internx/internx/internal/adapter/httpserver"
	"github.com/internx/internx/internal/app"
	"github.com/internx/internx/internal/config"
	"github.com/internx/internx/internal/domain"
	"github.com/internx/internx/internal/domain/mocks"
	"github.com/internx/internx/internal/usecase"
)

func newRouter(t *testing.T, cfg config.Config, dbErr error) (http.Handler, *mocks.MockInternshipRepository) {
	t.Helper()
	internships := &mocks.MockInternshipRepository{}
	svc := httpserver.Services{Internships: usecase.NewInternshipService(internships)}
	srv := httpserver.NewServer(cfg, svc,
		func(context.Context) error { return dbErr },
		func(context.Context) error { return nil },
	)
	return app.BuildRouter(cfg, srv), internships
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestBuildRouter_HealthAndReadiness(t *testing.T) {
	h, _ := newRouter(t, config.Config{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(httpserver.RequestIDHeader))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h, _ = newRouter(t, config.Config{}, errors.New("pg down"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pg down")
}

func TestBuildRouter_RootAndPrefixes(t *testing.T) {
	h, internships := newRouter(t, config.Config{}, nil)
	internships.On("List", mock.Anything, usecase.DefaultPageSize, 0).Return([]domain.Internship{}, nil)

	for _, path := range []string{"/", "/api", "/api/"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "success", decode(t, rec)["status"], path)
	}

	for _, path := range []string{"/internships", "/api/internships", "/api/internships/"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
	internships.AssertNumberOfCalls(t, "List", 3)
}

func TestBuildRouter_UnknownRouteUsesEnvelope(t *testing.T) {
	h, _ := newRouter(t, config.Config{}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "NOT_FOUND", body["code"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/internships", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestBuildRouter_MetricsEndpoint(t *testing.T) {
	h, _ := newRouter(t, config.Config{}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildRouter_IPRateLimitOnMutations(t *testing.T) {
	h, _ := newRouter(t, config.Config{RateLimitPerMin: 1}, nil)
	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/users/register", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}
	assert.Equal(t, http.StatusBadRequest, post().Code)
	rec := post()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decode(t, rec)["code"])

	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.1:1234"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "the limit is shared across prefixes")
}
