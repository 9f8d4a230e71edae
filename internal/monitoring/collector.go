// Package monitoring keeps process-local diagnostics: analytics events,
// per-request timings, and application errors. Everything lives in bounded
// in-memory ring buffers and is lost on restart; this is a development-time
// aid, not durable telemetry.
package monitoring

import (
	"sync"
	"time"
)

// AnalyticsEvent is a named application event with optional dimensions.
type AnalyticsEvent struct {
	Name       string            `json:"name"`
	UserID     string            `json:"user_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// RequestMetric records one handled HTTP request.
type RequestMetric struct {
	Method     string        `json:"method"`
	Route      string        `json:"route"`
	Status     int           `json:"status"`
	Duration   time.Duration `json:"duration"`
	RequestID  string        `json:"request_id,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// ErrorEvent records one application error with a coarse severity.
type ErrorEvent struct {
	Severity   string    `json:"severity"`
	Message    string    `json:"message"`
	Source     string    `json:"source,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Severity levels for ErrorEvent.
const (
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Caps bound each store. Zero or negative values fall back to defaults.
type Caps struct {
	Events   int
	Requests int
	Errors   int
}

const (
	defaultEventCap   = 1000
	defaultRequestCap = 1000
	defaultErrorCap   = 500
)

// Collector is an injectable, mutex-guarded set of three ring buffers.
// Inserts evict the oldest entry once a store reaches its cap.
type Collector struct {
	mu       sync.RWMutex
	events   *ring[AnalyticsEvent]
	requests *ring[RequestMetric]
	errors   *ring[ErrorEvent]
	now      func() time.Time
}

// NewCollector builds a Collector with the given caps.
func NewCollector(caps Caps) *Collector {
	if caps.Events <= 0 {
		caps.Events = defaultEventCap
	}
	if caps.Requests <= 0 {
		caps.Requests = defaultRequestCap
	}
	if caps.Errors <= 0 {
		caps.Errors = defaultErrorCap
	}
	return &Collector{
		events:   newRing[AnalyticsEvent](caps.Events),
		requests: newRing[RequestMetric](caps.Requests),
		errors:   newRing[ErrorEvent](caps.Errors),
		now:      time.Now,
	}
}

// TrackEvent appends an analytics event. The timestamp is stamped here when
// unset so callers don't need to.
func (c *Collector) TrackEvent(ev AnalyticsEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = c.now()
	}
	c.events.push(ev)
}

// TrackRequest appends a request metric.
func (c *Collector) TrackRequest(m RequestMetric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m.OccurredAt.IsZero() {
		m.OccurredAt = c.now()
	}
	c.requests.push(m)
}

// TrackError appends an error event. Unknown severities are coerced to
// SeverityError.
func (c *Collector) TrackError(ev ErrorEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch ev.Severity {
	case SeverityWarning, SeverityError, SeverityCritical:
	default:
		ev.Severity = SeverityError
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = c.now()
	}
	c.errors.push(ev)
}

// EventFilter narrows RecentEvents. Zero values match everything.
type EventFilter struct {
	UserID string
	Name   string
}

// RecentEvents returns up to limit most recent events, newest first.
// Repeated calls without intervening inserts return identical results.
func (c *Collector) RecentEvents(limit int, f EventFilter) []AnalyticsEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filterNewest(c.events, limit, func(ev AnalyticsEvent) bool {
		if f.UserID != "" && ev.UserID != f.UserID {
			return false
		}
		if f.Name != "" && ev.Name != f.Name {
			return false
		}
		return true
	})
}

// RequestFilter narrows RecentRequests. StatusClass is the hundreds digit
// (2 matches 2xx); MinDuration drops faster requests.
type RequestFilter struct {
	Route       string
	StatusClass int
	MinDuration time.Duration
}

// RecentRequests returns up to limit most recent request metrics, newest
// first.
func (c *Collector) RecentRequests(limit int, f RequestFilter) []RequestMetric {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filterNewest(c.requests, limit, func(m RequestMetric) bool {
		if f.Route != "" && m.Route != f.Route {
			return false
		}
		if f.StatusClass != 0 && m.Status/100 != f.StatusClass {
			return false
		}
		if f.MinDuration > 0 && m.Duration < f.MinDuration {
			return false
		}
		return true
	})
}

// RecentErrors returns up to limit most recent errors, newest first,
// optionally filtered by severity.
func (c *Collector) RecentErrors(limit int, severity string) []ErrorEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filterNewest(c.errors, limit, func(ev ErrorEvent) bool {
		return severity == "" || ev.Severity == severity
	})
}

// Reset drops all stored entries. Intended for tests and the admin API.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events.reset()
	c.requests.reset()
	c.errors.reset()
}

// ring is a fixed-capacity FIFO over a slice. Not safe for concurrent use;
// Collector holds the lock.
type ring[T any] struct {
	buf   []T
	head  int
	count int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) push(v T) {
	idx := (r.head + r.count) % len(r.buf)
	r.buf[idx] = v
	if r.count < len(r.buf) {
		r.count++
	} else {
		r.head = (r.head + 1) % len(r.buf)
	}
}

func (r *ring[T]) len() int { return r.count }

// at returns the i-th oldest element, 0-based.
func (r *ring[T]) at(i int) T {
	return r.buf[(r.head+i)%len(r.buf)]
}

func (r *ring[T]) reset() {
	r.head = 0
	r.count = 0
}

// filterNewest walks a ring newest-to-oldest collecting up to limit matches.
func filterNewest[T any](r *ring[T], limit int, keep func(T) bool) []T {
	if limit <= 0 {
		limit = r.len()
	}
	out := make([]T, 0, min(limit, r.len()))
	for i := r.len() - 1; i >= 0 && len(out) < limit; i-- {
		if v := r.at(i); keep(v) {
			out = append(out, v)
		}
	}
	return out
}
