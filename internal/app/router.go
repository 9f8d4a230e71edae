// Package app wires configuration, handlers, and middleware into the HTTP
// surface of the interview service.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devmeetai/interview-service/internal/adapter/httpserver"
	"github.com/devmeetai/interview-service/internal/config"
	"github.com/devmeetai/interview-service/internal/observability"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming
// spaces. An empty input allows every origin.
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
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TimeoutMiddleware(cfg.HTTPRequestTimeout))
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)
	r.Use(httpserver.Monitoring(srv.Monitor))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Mutating endpoints carry a per-IP rate limit.
	r.Group(func(wr chi.Router) {
		wr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute))
		wr.Post("/v1/candidates", srv.CreateCandidateHandler())
		wr.Post("/v1/interviews", srv.StartInterviewHandler())
		wr.Post("/v1/interviews/{id}/responses", srv.SubmitResponseHandler())
		wr.Post("/v1/questions/generate", srv.GenerateQuestionsHandler())
		wr.Post("/v1/analyses/github", srv.AnalyzeGitHubHandler())
	})

	r.Get("/v1/interviews/{id}", srv.GetInterviewHandler())
	r.Get("/v1/analyses/github/{username}", srv.GetAnalysisHandler())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { promhttp.Handler().ServeHTTP(w, r) })
	r.Get("/readyz", srv.ReadyzHandler())
	r.Get("/openapi.yaml", srv.OpenAPIServe())

	if cfg.AdminEnabled() {
		sm := httpserver.NewSessionManager(cfg)
		r.Post("/admin/login", srv.LoginHandler(sm))
		r.Post("/admin/logout", srv.LogoutHandler(sm))
		r.Route("/admin/api/monitoring", func(ar chi.Router) {
			ar.Use(sm.AuthRequired)
			ar.Get("/dashboard", srv.DashboardHandler())
			ar.Get("/events", srv.EventsHandler())
			ar.Get("/errors", srv.ErrorsHandler())
			ar.Get("/requests", srv.RequestsHandler())
			ar.Post("/reset", srv.ResetMonitoringHandler())
		})
	}

	return httpserver.SecurityHeaders(r)
}
