package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingScoper struct {
	reply string
	err   error
	calls int
}

func (s *countingScoper) ScopeProject(ctx context.Context, description string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func setupCache(t *testing.T, next Scoper) (*CachedScoper, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCachedScoper(next, client, time.Hour, nil), mr
}

func TestCachedScoper_HitsCacheOnSecondCall(t *testing.T) {
	next := &countingScoper{reply: `{"timeline":"4 weeks"}`}
	c, mr := setupCache(t, next)
	ctx := context.Background()

	out, err := c.ScopeProject(ctx, "Build  a Bike marketplace")
	require.NoError(t, err)
	assert.Equal(t, `{"timeline":"4 weeks"}`, out)

	out, err = c.ScopeProject(ctx, "build a bike   marketplace")
	require.NoError(t, err)
	assert.Equal(t, `{"timeline":"4 weeks"}`, out)
	assert.Equal(t, 1, next.calls, "whitespace and case differences share a cache entry")

	ttl := mr.TTL(cacheKey("build a bike marketplace"))
	assert.Equal(t, time.Hour, ttl)
}

func TestCachedScoper_DoesNotCacheUnparseableReplies(t *testing.T) {
	next := &countingScoper{reply: "sorry, no"}
	c, _ := setupCache(t, next)
	ctx := context.Background()

	_, err := c.ScopeProject(ctx, "idea")
	require.NoError(t, err)
	_, err = c.ScopeProject(ctx, "idea")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedScoper_PropagatesUpstreamError(t *testing.T) {
	next := &countingScoper{err: errors.New("timeout")}
	c, _ := setupCache(t, next)

	_, err := c.ScopeProject(context.Background(), "idea")
	assert.EqualError(t, err, "timeout")
}

func TestCachedScoper_RedisDownFallsThrough(t *testing.T) {
	next := &countingScoper{reply: `{}`}
	c, mr := setupCache(t, next)
	mr.Close()

	out, err := c.ScopeProject(context.Background(), "idea")
	require.NoError(t, err)
	assert.Equal(t, `{}`, out)
}
