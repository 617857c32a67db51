// Package cache memoizes folding results keyed by sequence, so repeated
// proposals of the same sequence across generations skip the remote fold.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/messiay/protein-refinary/internal/config"
	"github.com/messiay/protein-refinary/internal/infrastructure/monitoring/logging"
	"github.com/messiay/protein-refinary/pkg/types/protein"
)

// RedisFoldCache stores folded structures in Redis.  Errors are logged and
// swallowed; a broken cache degrades to always-miss, never to failure.
type RedisFoldCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    logging.Logger
}

func NewRedisFoldCache(cfg config.RedisConfig, log logging.Logger) *RedisFoldCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisFoldCache{
		client: client,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.TTL,
		log:    log.Named("foldcache"),
	}
}

// Ping verifies connectivity at startup.
func (c *RedisFoldCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *RedisFoldCache) Close() error {
	return c.client.Close()
}

func (c *RedisFoldCache) Get(ctx context.Context, seq protein.Sequence) (string, bool) {
	val, err := c.client.Get(ctx, c.key(seq)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("fold cache read failed", logging.Err(err))
		}
		return "", false
	}
	return val, true
}

func (c *RedisFoldCache) Put(ctx context.Context, seq protein.Sequence, pdbText string) {
	if err := c.client.Set(ctx, c.key(seq), pdbText, c.ttl).Err(); err != nil {
		c.log.Warn("fold cache write failed", logging.Err(err))
	}
}

// key hashes the sequence so arbitrarily long chains stay within sane key
// sizes.
func (c *RedisFoldCache) key(seq protein.Sequence) string {
	sum := sha256.Sum256([]byte(seq))
	return c.prefix + hex.EncodeToString(sum[:])
}

// NopFoldCache is the cache used when caching is disabled.
type NopFoldCache struct{}

func NewNopFoldCache() NopFoldCache { return NopFoldCache{} }

func (NopFoldCache) Get(context.Context, protein.Sequence) (string, bool) { return "", false }

func (NopFoldCache) Put(context.Context, protein.Sequence, string) {}
