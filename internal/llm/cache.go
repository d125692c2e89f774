package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const scopeCachePrefix = "collabo:scope:" // collabo:scope:{sha256(description)}

// Scoper returns the raw model reply for a project description.
type Scoper interface {
	ScopeProject(ctx context.Context, description string) (string, error)
}

// CachedScoper remembers replies that parse as a proposal so the same idea
// submitted twice does not cost a second model call. Cache errors are logged
// and otherwise ignored.
type CachedScoper struct {
	next   Scoper
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewCachedScoper(next Scoper, client *redis.Client, ttl time.Duration, log *zap.Logger) *CachedScoper {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedScoper{next: next, client: client, ttl: ttl, log: log}
}

func (c *CachedScoper) ScopeProject(ctx context.Context, description string) (string, error) {
	key := cacheKey(description)

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached, nil
	case err != redis.Nil:
		c.log.Warn("scope cache read failed", zap.Error(err))
	}

	raw, err := c.next.ScopeProject(ctx, description)
	if err != nil {
		return "", err
	}

	if _, perr := ParseProposal(raw); perr == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn("scope cache write failed", zap.Error(err))
		}
	}
	return raw, nil
}

func cacheKey(description string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(description), " "))
	sum := sha256.Sum256([]byte(normalized))
	return scopeCachePrefix + hex.EncodeToString(sum[:])
}
