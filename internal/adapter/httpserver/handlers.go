package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/internx/internx/internal/adapter/observability"
	"github.com/internx/internx/internal/config"
	"github.com/internx/internx/internal/domain"
	"github.com/internx/internx/internal/usecase"
)

// Services bundles the use cases the handlers call.
type Services struct {
	Users       usecase.UserService
	Preferences usecase.PreferencesService
	Analysis    usecase.AnalysisService
	Recommend   usecase.RecommendationService
	Internships usecase.InternshipService
	Analytics   usecase.AnalyticsService
}

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Svc        Services
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, svc Services, dbCheck, redisCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Svc: svc, DBCheck: dbCheck, RedisCheck: redisCheck}
}

// fail writes err unless it is a transport-level body error.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBodyTooLarge) {
		writeStatusError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body is too large.")
		return
	}
	writeError(w, r, err)
}

// RootHandler reports that the API is up.
func (s *Server) RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, http.StatusOK, "InternX Backend API is running!", map[string]any{"version": "1.0"})
	}
}

// RegisterHandler creates a user with default preferences.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			fail(w, r, err)
			return
		}
		u, p, err := s.Svc.Users.Register(r.Context(), usecase.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
		if err != nil {
			fail(w, r, err)
			return
		}
		writeSuccess(w, http.StatusCreated, "User registered and preferences initiated.", map[string]any{
			"user_id":     u.ID,
			"email":       u.Email,
			"user":        toUserView(u),
			"preferences": toPreferencesView(p),
		})
	}
}

// GetUserHandler returns one user.
func (s *Server) GetUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.Svc.Users.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			fail(w, r, err)
			return
		}
		writeSuccess(w, http.StatusOK, "", map[string]any{"user": toUserView(u)})
	}
}

// DeleteUserHandler removes a user with its preferences and analysis.
func (s *Server) DeleteUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := s.Svc.Users.Delete(r.Context(), id); err != nil {
			fail(w, r, err)
			return
		}
		writeSuccess(w, http.StatusOK, "User and related records deleted.", map[string]any{"user_id": id})
	}
}

// UpdatePreferencesHandler applies a partial preferences update. The body is
// decoded field by field so that a mistyped field is reported by name and no
// field is written.
func (s *Server) UpdatePreferencesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := readJSONBody(w, r)
		if err != nil {
			fail(w, r, err)
			return
		}
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(b, &raw); err != nil || raw == nil {
			fail(w, r, domain.Errorf(domain.ErrInvalidArgument, "request body must be a valid JSON object"))
			return
		}
		userID, err := requiredString(raw, "userId")
		if err != nil {
			fail(w, r, err)
			return
		}
		patch, err := decodePreferencesPatch(raw)
		if err != nil {
			fail(w, r, err)
			return
		}
		p, err := s.Svc.Preferences.Update(r.Context(), userID, patch)
		if err != nil {
			fail(w, r, err)
			return
		}
		msg := "Preferences updated successfully."
		if patch.Empty() {
			msg = "No preference fields provided; nothing changed."
		}
		writeSuccess(w, http.StatusOK, msg, map[string]any{
			"updated_fields": patch.Fields(),
			"preferences":    toPreferencesView(p),
		})
	}
}

// GetPreferencesHandler returns the stored preferences of a user.
func (s *Server) GetPreferencesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.Svc.Preferences.Get(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			fail(w, r, err)
			return
		}
		writeSuccess(w, http.StatusOK, "", map[string]any{"preferences": toPreferencesView(p)})
	}
}

// AnalyzeResumeHandler runs the AI analysis and stores its result.
func (s *Server) AnalyzeResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			observability.ObserveAnalysis("invalid", 0)
			fail(w, r, err)
			return
		}
		a, err := s.Svc.Analysis.Analyze(r.Context(), req.UserID, req.ResumeText)
		if err != nil {
			observability.ObserveAnalysis(analysisOutcome(err), 0)
			if errors.Is(err, domain.ErrRateLimited) {
				observability.RateLimited("analyze")
			}
			fail(w, r, err)
			return
		}
		observability.ObserveAnalysis("stored", a.MarketReadinessScore)
		writeSuccess(w, http.StatusCreated, "Resume analyzed and saved.", map[string]any{"analysis": toAnalysisView(a)})
	}
}

func analysisOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, domain.ErrSchemaInvalid):
		return "schema_invalid"
	case errors.Is(err, domain.ErrConfiguration):
		return "not_configured"
	}
	return "error"
}

// GetAnalysisHandler returns the stored analysis of a user.
func (s *Server) GetAnalysisHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := s.Svc.Analysis.Get(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			fail(w, r, err)
			return
		}
		writeSuccess(w, http.StatusOK, "", map[string]any{"analysis": toAnalysisView(a)})
	}
}

// RecommendHandler ranks the catalog for a user.
func (s *Server) RecommendHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req userIDRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			fail(w, r, err)
			return
		}
		set, err := s.Svc.Recommend.Recommend(r.Context(), req.UserID)
		if err != nil {
			fail(w, r, err)
			return
		}
		top := 0.0
		if len(set.Items) > 0 {
			top = set.Items[0].SuitabilityScore
		}
		observability.ObserveRecommendations(set.Basis, top, len(set.Items))

		msg := "Recommendations generated from preferences and resume analysis."
		if set.Degraded {
			msg = "No resume analysis on file; recommendations use preferences only."
		}
		writeSuccess(w, http.StatusOK, msg, map[string]any{
			"user_id":                set.UserID,
			"basis":                  set.Basis,
			"degraded":               set.Degraded,
			"catalog_size":           set.CatalogSize,
			"market_readiness_score": set.ReadinessScore,
			"generated_at":           set.GeneratedAt,
			"count":                  len(set.Items),
			"recommendations":        toRecommendationViews(set.Items),
		})
	}
}

// ListInternshipsHandler returns one page of the catalog.
func (s *Server) ListInternshipsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit")
		if err != nil {
			fail(w, r, err)
			return
		}
		offset, err := queryInt(r, "offset")
		if err != nil {
			fail(w, r, err)
			return
		}
		items, err := s.Svc.Internships.List(r.Context(), limit, offset)
		if err != nil {
			fail(w, r, err)
			return
		}
		if limit == 0 {
			limit = usecase.DefaultPageSize
		}
		views := make([]internshipView, 0, len(items))
		for _, in := range items {
			views = append(views, toInternshipView(in))
		}
		writeSuccess(w, http.StatusOK, "", map[string]any{
			"count":       len(views),
			"limit":       limit,
			"offset":      offset,
			"internships": views,
		})
	}
}

// CreateInternshipHandler adds a listing to the catalog.
func (s *Server) CreateInternshipHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req internshipRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			fail(w, r, err)
			return
		}
		in, err := s.Svc.Internships.Create(r.Context(), usecase.InternshipInput{
			Title:           req.Title,
			Company:         req.Company,
			Location:        req.Location,
			Sector:          req.Sector,
			SkillsRequired:  req.SkillsRequired,
			Link:            req.Link,
			ApplicantsCount: req.ApplicantsCount,
			PostedDate:      req.PostedDate,
		})
		if err != nil {
			fail(w, r, err)
			return
		}
		writeSuccess(w, http.StatusCreated, "Internship created.", map[string]any{"internship": toInternshipView(in)})
	}
}

// AnalyticsHandler returns aggregate system metrics.
func (s *Server) AnalyticsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := s.Svc.Analytics.Overview(r.Context())
		if err != nil {
			fail(w, r, err)
			return
		}
		writeSuccess(w, http.StatusOK, "", map[string]any{"data": toAnalyticsView(a)})
	}
}

// HealthzHandler is the liveness probe.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, http.StatusOK, "", nil)
	}
}

// ReadyzHandler probes Postgres and Redis.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		probes := []struct {
			name string
			fn   func(context.Context) error
		}{{"db", s.DBCheck}, {"redis", s.RedisCheck}}

		checks := make([]check, 0, len(probes))
		ok := true
		for _, p := range probes {
			if p.fn == nil {
				continue
			}
			c := check{Name: p.name, OK: true}
			if err := p.fn(ctx); err != nil {
				c.OK, c.Details = false, "unavailable"
				ok = false
				LoggerFrom(r).Warn("readiness check failed", "check", p.name, "error", err)
			}
			checks = append(checks, c)
		}
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": statusError, "message": "Service not ready.", "checks": checks})
			return
		}
		writeSuccess(w, http.StatusOK, "", map[string]any{"checks": checks})
	}
}

// NotFoundHandler answers unknown routes with the error envelope.
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeStatusError(w, r, http.StatusNotFound, "NOT_FOUND", "The requested URL "+r.URL.Path+" was not found.")
	}
}

// MethodNotAllowedHandler answers known routes called with the wrong method.
func (s *Server) MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeStatusError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method "+r.Method+" is not allowed on "+r.URL.Path+".")
	}
}
