package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmeetai/interview-service/internal/domain"
)

func TestPublishSessionEvent(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	sub := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = sub.Close() })

	ctx := context.Background()
	ps := sub.Subscribe(ctx, "interview.session.sess-1")
	t.Cleanup(func() { _ = ps.Close() })
	_, err = ps.Receive(ctx)
	require.NoError(t, err)

	p := NewPublisher(mr.Addr(), "")
	t.Cleanup(func() { _ = p.Close() })

	ev := domain.SessionEvent{
		Type:      domain.EventResponseAccepted,
		SessionID: "sess-1",
		Status:    domain.SessionInProgress,
		At:        time.Now().UTC(),
	}
	require.NoError(t, p.PublishSessionEvent(ctx, ev))

	select {
	case msg := <-ps.Channel():
		var got domain.SessionEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, domain.EventResponseAccepted, got.Type)
		assert.Equal(t, "sess-1", got.SessionID)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestNilPublisherIsNoop(t *testing.T) {
	var p *Publisher
	err := p.PublishSessionEvent(context.Background(), domain.SessionEvent{SessionID: "x"})
	assert.NoError(t, err)
	assert.NoError(t, p.Ping(context.Background()))
	assert.NoError(t, p.Close())
}

func TestNewPublisherEmptyAddr(t *testing.T) {
	assert.Nil(t, NewPublisher("", ""))
}

func TestPing(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	p := NewPublisher(mr.Addr(), "")
	t.Cleanup(func() { _ = p.Close() })
	assert.NoError(t, p.Ping(context.Background()))
}
