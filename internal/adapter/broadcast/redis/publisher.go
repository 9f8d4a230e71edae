// Package redis publishes session lifecycle events over Redis pub/sub so
// live dashboards can follow interviews in flight.
package redis

import (
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/devmeetai/interview-service/internal/domain"
)

// channelPrefix namespaces session channels; subscribers use
// PSUBSCRIBE interview.session.*.
const channelPrefix = "interview.session."

// Publisher implements domain.Broadcaster over Redis pub/sub.
// A nil Publisher (Redis unconfigured) publishes nothing and never errors.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher builds a Publisher, or nil when addr is empty.
func NewPublisher(addr, password string) *Publisher {
	if addr == "" {
		return nil
	}
	return &Publisher{rdb: redis.NewClient(&redis.Options{Addr: addr, Password: password})}
}

// PublishSessionEvent sends ev as JSON on the session's channel.
func (p *Publisher) PublishSessionEvent(ctx domain.Context, ev domain.SessionEvent) error {
	if p == nil || p.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("op=broadcast.publish: %w", err)
	}
	if err := p.rdb.Publish(ctx, channelPrefix+ev.SessionID, payload).Err(); err != nil {
		return fmt.Errorf("op=broadcast.publish: %w", err)
	}
	return nil
}

// Ping reports whether the Redis backend is reachable.
func (p *Publisher) Ping(ctx domain.Context) error {
	if p == nil || p.rdb == nil {
		return nil
	}
	return p.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection.
func (p *Publisher) Close() error {
	if p == nil || p.rdb == nil {
		return nil
	}
	return p.rdb.Close()
}
