package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/internx/internx/internal/adapter/httpserver"
	"github.com/internx/internx/internal/adapter/observability"
	"github.com/internx/internx/internal/config"
)

// APIPrefix is the legacy prefix every API route is also served under.
const APIPrefix = "/api"

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TimeoutMiddleware(requestTimeout(cfg)))
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)
	r.Use(middleware.StripSlashes)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{httpserver.RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.NotFound(srv.NotFoundHandler())
	r.MethodNotAllowed(srv.MethodNotAllowedHandler())

	r.Get("/", srv.RootHandler())
	r.Get("/healthz", srv.HealthzHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Handle("/metrics", promhttp.Handler())

	limit := mutationLimit(cfg)
	registerAPI(r, srv, limit)
	r.Route(APIPrefix, func(ar chi.Router) {
		ar.Get("/", srv.RootHandler())
		registerAPI(ar, srv, limit)
	})

	return httpserver.SecurityHeaders(r)
}

// mutationLimit is one IP rate limiter shared by every mutating route under
// both prefixes. Nil when disabled.
func mutationLimit(cfg config.Config) func(http.Handler) http.Handler {
	if cfg.RateLimitPerMin <= 0 {
		return nil
	}
	return httprate.Limit(cfg.RateLimitPerMin, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			observability.RateLimited("ip")
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"status":"error","code":"RATE_LIMITED","message":"Too many requests."}` + "\n"))
		}),
	)
}

// registerAPI adds every domain route to r.
func registerAPI(r chi.Router, srv *httpserver.Server, limit func(http.Handler) http.Handler) {
	r.Group(func(wr chi.Router) {
		if limit != nil {
			wr.Use(limit)
		}
		wr.Post("/users/register", srv.RegisterHandler())
		wr.Delete("/users/{id}", srv.DeleteUserHandler())
		wr.Post("/preferences", srv.UpdatePreferencesHandler())
		wr.Post("/internships/preferences", srv.UpdatePreferencesHandler())
		wr.Post("/resume/analyze", srv.AnalyzeResumeHandler())
		wr.Post("/allocation/recommend", srv.RecommendHandler())
		wr.Post("/internships", srv.CreateInternshipHandler())
	})

	r.Get("/users/{id}", srv.GetUserHandler())
	r.Get("/preferences/{userId}", srv.GetPreferencesHandler())
	r.Get("/resume/analysis/{userId}", srv.GetAnalysisHandler())
	r.Get("/internships", srv.ListInternshipsHandler())
	r.Get("/analytics", srv.AnalyticsHandler())
}

// requestTimeout leaves room for the AI call inside the write timeout.
func requestTimeout(cfg config.Config) time.Duration {
	d := cfg.GeminiTimeout + 15*time.Second
	if cfg.HTTPWriteTimeout > 0 && d > cfg.HTTPWriteTimeout {
		d = cfg.HTTPWriteTimeout
	}
	if d <= 15*time.Second {
		d = 30 * time.Second
	}
	return d
}
