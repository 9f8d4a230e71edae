package monitoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackEventStampsTime(t *testing.T) {
	c := NewCollector(Caps{})
	c.TrackEvent(AnalyticsEvent{Name: "interview.started"})

	got := c.RecentEvents(0, EventFilter{})
	require.Len(t, got, 1)
	assert.False(t, got[0].OccurredAt.IsZero())
}

func TestRecentEventsNewestFirst(t *testing.T) {
	c := NewCollector(Caps{})
	for i := 0; i < 5; i++ {
		c.TrackEvent(AnalyticsEvent{Name: fmt.Sprintf("ev-%d", i)})
	}

	got := c.RecentEvents(3, EventFilter{})
	require.Len(t, got, 3)
	assert.Equal(t, "ev-4", got[0].Name)
	assert.Equal(t, "ev-3", got[1].Name)
	assert.Equal(t, "ev-2", got[2].Name)
}

func TestRecentEventsIdempotent(t *testing.T) {
	c := NewCollector(Caps{})
	for i := 0; i < 10; i++ {
		c.TrackEvent(AnalyticsEvent{Name: fmt.Sprintf("ev-%d", i), UserID: "u1"})
	}

	first := c.RecentEvents(5, EventFilter{UserID: "u1"})
	second := c.RecentEvents(5, EventFilter{UserID: "u1"})
	assert.Equal(t, first, second)
}

func TestCapEvictsOldestFirst(t *testing.T) {
	c := NewCollector(Caps{Events: 3, Requests: 3, Errors: 3})
	for i := 0; i < 5; i++ {
		c.TrackEvent(AnalyticsEvent{Name: fmt.Sprintf("ev-%d", i)})
	}

	got := c.RecentEvents(0, EventFilter{})
	require.Len(t, got, 3)
	assert.Equal(t, "ev-4", got[0].Name)
	assert.Equal(t, "ev-2", got[2].Name)
}

func TestEventFilters(t *testing.T) {
	c := NewCollector(Caps{})
	c.TrackEvent(AnalyticsEvent{Name: "interview.started", UserID: "u1"})
	c.TrackEvent(AnalyticsEvent{Name: "response.accepted", UserID: "u1"})
	c.TrackEvent(AnalyticsEvent{Name: "interview.started", UserID: "u2"})

	byUser := c.RecentEvents(0, EventFilter{UserID: "u1"})
	assert.Len(t, byUser, 2)

	byName := c.RecentEvents(0, EventFilter{Name: "interview.started"})
	assert.Len(t, byName, 2)

	both := c.RecentEvents(0, EventFilter{UserID: "u2", Name: "interview.started"})
	require.Len(t, both, 1)
	assert.Equal(t, "u2", both[0].UserID)
}

func TestRequestFilters(t *testing.T) {
	c := NewCollector(Caps{})
	c.TrackRequest(RequestMetric{Route: "/v1/interviews", Status: 201, Duration: 30 * time.Millisecond})
	c.TrackRequest(RequestMetric{Route: "/v1/interviews", Status: 500, Duration: 900 * time.Millisecond})
	c.TrackRequest(RequestMetric{Route: "/healthz", Status: 200, Duration: time.Millisecond})

	slow := c.RecentRequests(0, RequestFilter{MinDuration: 100 * time.Millisecond})
	require.Len(t, slow, 1)
	assert.Equal(t, 500, slow[0].Status)

	srvErr := c.RecentRequests(0, RequestFilter{StatusClass: 5})
	assert.Len(t, srvErr, 1)

	byRoute := c.RecentRequests(0, RequestFilter{Route: "/v1/interviews"})
	assert.Len(t, byRoute, 2)
}

func TestTrackErrorCoercesSeverity(t *testing.T) {
	c := NewCollector(Caps{})
	c.TrackError(ErrorEvent{Severity: "nonsense", Message: "boom"})

	got := c.RecentErrors(0, "")
	require.Len(t, got, 1)
	assert.Equal(t, SeverityError, got[0].Severity)
}

func TestRecentErrorsBySeverity(t *testing.T) {
	c := NewCollector(Caps{})
	c.TrackError(ErrorEvent{Severity: SeverityWarning, Message: "w"})
	c.TrackError(ErrorEvent{Severity: SeverityCritical, Message: "c"})

	got := c.RecentErrors(0, SeverityCritical)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Message)
}

func TestReset(t *testing.T) {
	c := NewCollector(Caps{})
	c.TrackEvent(AnalyticsEvent{Name: "x"})
	c.TrackRequest(RequestMetric{Route: "/x", Status: 200})
	c.TrackError(ErrorEvent{Severity: SeverityError, Message: "x"})

	c.Reset()

	assert.Empty(t, c.RecentEvents(0, EventFilter{}))
	assert.Empty(t, c.RecentRequests(0, RequestFilter{}))
	assert.Empty(t, c.RecentErrors(0, ""))
}

func TestDashboard(t *testing.T) {
	c := NewCollector(Caps{})
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		c.TrackEvent(AnalyticsEvent{Name: "interview.started"})
	}
	c.TrackEvent(AnalyticsEvent{Name: "interview.completed"})

	c.TrackRequest(RequestMetric{Route: "/v1/interviews", Status: 201, Duration: 100 * time.Millisecond})
	c.TrackRequest(RequestMetric{Route: "/v1/interviews", Status: 200, Duration: 300 * time.Millisecond})
	c.TrackRequest(RequestMetric{Route: "/healthz", Status: 200, Duration: time.Millisecond})

	c.TrackError(ErrorEvent{Severity: SeverityError, Message: "recent", OccurredAt: now.Add(-time.Hour)})
	c.TrackError(ErrorEvent{Severity: SeverityWarning, Message: "stale", OccurredAt: now.Add(-48 * time.Hour)})

	d := c.Dashboard()

	assert.Equal(t, 4, d.TotalEvents)
	assert.Equal(t, 3, d.TotalRequests)
	assert.Equal(t, 2, d.TotalErrors)

	require.NotEmpty(t, d.TopEvents)
	assert.Equal(t, EventCount{Name: "interview.started", Count: 3}, d.TopEvents[0])

	require.NotEmpty(t, d.SlowestRoutes)
	assert.Equal(t, "/v1/interviews", d.SlowestRoutes[0].Route)
	assert.Equal(t, 200*time.Millisecond, d.SlowestRoutes[0].AvgDuration)

	assert.Equal(t, map[string]int{SeverityError: 1}, d.ErrorsLast24h)
}

func TestDashboardEmpty(t *testing.T) {
	c := NewCollector(Caps{})
	d := c.Dashboard()
	assert.Zero(t, d.TotalEvents)
	assert.Empty(t, d.TopEvents)
	assert.Empty(t, d.SlowestRoutes)
	assert.Empty(t, d.ErrorsLast24h)
}
