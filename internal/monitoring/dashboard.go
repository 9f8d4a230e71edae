package monitoring

import (
	"sort"
	"time"
)

// EventCount is one row of the top-events table.
type EventCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RouteTiming is one row of the slowest-routes table.
type RouteTiming struct {
	Route       string        `json:"route"`
	Requests    int           `json:"requests"`
	AvgDuration time.Duration `json:"avg_duration"`
}

// Dashboard is a point-in-time aggregate over the collector's contents.
type Dashboard struct {
	GeneratedAt    time.Time      `json:"generated_at"`
	TotalEvents    int            `json:"total_events"`
	TotalRequests  int            `json:"total_requests"`
	TotalErrors    int            `json:"total_errors"`
	TopEvents      []EventCount   `json:"top_events"`
	SlowestRoutes  []RouteTiming  `json:"slowest_routes"`
	ErrorsLast24h  map[string]int `json:"errors_last_24h"`
}

const dashboardTopN = 10

// Dashboard computes aggregates by linear scan over the current buffers.
func (c *Collector) Dashboard() Dashboard {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d := Dashboard{
		GeneratedAt:   c.now(),
		TotalEvents:   c.events.len(),
		TotalRequests: c.requests.len(),
		TotalErrors:   c.errors.len(),
		ErrorsLast24h: map[string]int{},
	}

	byName := map[string]int{}
	for i := 0; i < c.events.len(); i++ {
		byName[c.events.at(i).Name]++
	}
	for name, n := range byName {
		d.TopEvents = append(d.TopEvents, EventCount{Name: name, Count: n})
	}
	sort.Slice(d.TopEvents, func(i, j int) bool {
		if d.TopEvents[i].Count != d.TopEvents[j].Count {
			return d.TopEvents[i].Count > d.TopEvents[j].Count
		}
		return d.TopEvents[i].Name < d.TopEvents[j].Name
	})
	if len(d.TopEvents) > dashboardTopN {
		d.TopEvents = d.TopEvents[:dashboardTopN]
	}

	type acc struct {
		total time.Duration
		n     int
	}
	byRoute := map[string]*acc{}
	for i := 0; i < c.requests.len(); i++ {
		m := c.requests.at(i)
		a := byRoute[m.Route]
		if a == nil {
			a = &acc{}
			byRoute[m.Route] = a
		}
		a.total += m.Duration
		a.n++
	}
	for route, a := range byRoute {
		d.SlowestRoutes = append(d.SlowestRoutes, RouteTiming{
			Route:       route,
			Requests:    a.n,
			AvgDuration: a.total / time.Duration(a.n),
		})
	}
	sort.Slice(d.SlowestRoutes, func(i, j int) bool {
		if d.SlowestRoutes[i].AvgDuration != d.SlowestRoutes[j].AvgDuration {
			return d.SlowestRoutes[i].AvgDuration > d.SlowestRoutes[j].AvgDuration
		}
		return d.SlowestRoutes[i].Route < d.SlowestRoutes[j].Route
	})
	if len(d.SlowestRoutes) > dashboardTopN {
		d.SlowestRoutes = d.SlowestRoutes[:dashboardTopN]
	}

	cutoff := d.GeneratedAt.Add(-24 * time.Hour)
	for i := 0; i < c.errors.len(); i++ {
		ev := c.errors.at(i)
		if ev.OccurredAt.After(cutoff) {
			d.ErrorsLast24h[ev.Severity]++
		}
	}
	return d
}
