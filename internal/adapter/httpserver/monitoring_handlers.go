package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/devmeetai/interview-service/internal/monitoring"
)

// DashboardHandler returns the aggregated monitoring dashboard.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Monitor.Dashboard())
	}
}

func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// EventsHandler lists recent analytics events, optionally filtered by user
// or event name.
func (s *Server) EventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events := s.Monitor.RecentEvents(queryLimit(r), monitoring.EventFilter{
			UserID: r.URL.Query().Get("user"),
			Name:   r.URL.Query().Get("event"),
		})
		writeJSON(w, http.StatusOK, map[string]any{"events": events})
	}
}

// ErrorsHandler lists recent error events, optionally filtered by severity.
func (s *Server) ErrorsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		errs := s.Monitor.RecentErrors(queryLimit(r), r.URL.Query().Get("severity"))
		writeJSON(w, http.StatusOK, map[string]any{"errors": errs})
	}
}

// RequestsHandler lists recent request metrics, optionally filtered by
// route, status class, or minimum duration in milliseconds.
func (s *Server) RequestsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := monitoring.RequestFilter{Route: r.URL.Query().Get("route")}
		if v := r.URL.Query().Get("status_class"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				f.StatusClass = n
			}
		}
		if v := r.URL.Query().Get("min_ms"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				f.MinDuration = time.Duration(n) * time.Millisecond
			}
		}
		reqs := s.Monitor.RecentRequests(queryLimit(r), f)
		writeJSON(w, http.StatusOK, map[string]any{"requests": reqs})
	}
}

// ResetMonitoringHandler drops all collected diagnostics.
func (s *Server) ResetMonitoringHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Monitor.Reset()
		w.WriteHeader(http.StatusNoContent)
	}
}
