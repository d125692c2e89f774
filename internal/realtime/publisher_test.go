package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPublisher(t *testing.T) (*Publisher, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPublisher(client), mr
}

func TestTopicFor(t *testing.T) {
	assert.Equal(t, "collabo:workspace:ws-1", TopicFor("ws-1"))
}

func TestPublisher_SubscribeReceivesEnvelope(t *testing.T) {
	p, _ := setupPublisher(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub, err := p.Subscribe(ctx, "ws-1")
	require.NoError(t, err)
	defer sub.Close()

	other, err := p.Subscribe(ctx, "ws-2")
	require.NoError(t, err)
	defer other.Close()

	payload := map[string]string{"id": "m1", "content": "hello"}
	require.NoError(t, p.Publish(ctx, "ws-1", "collabo:message", payload))

	select {
	case env := <-sub.Events():
		assert.Equal(t, "collabo:message", env.Event)
		var got map[string]string
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, payload, got)
	case <-ctx.Done():
		t.Fatal("no event received")
	}

	select {
	case env := <-other.Events():
		t.Fatalf("unexpected event on other workspace: %v", env.Event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublisher_PublishWithoutSubscribers(t *testing.T) {
	p, _ := setupPublisher(t)
	require.NoError(t, p.Publish(context.Background(), "ws-1", "collabo:task_update", map[string]string{"id": "t1"}))
}

func TestPublisher_PublishFailsWhenRedisDown(t *testing.T) {
	p, mr := setupPublisher(t)
	mr.Close()

	err := p.Publish(context.Background(), "ws-1", "collabo:file_upload", map[string]string{})
	assert.Error(t, err)
}
