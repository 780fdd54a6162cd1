package query

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/searchcore/fulltext/internal/store"
	"github.com/searchcore/fulltext/pkg/logger"
	pkgredis "github.com/searchcore/fulltext/pkg/redis"
)

const rankKeyPrefix = "fulltext:rank:"

// ResultCache fronts the store's ranking pass with Redis: a content hash
// maps to the unique id of a live result set. Concurrent identical queries
// are collapsed with singleflight so the store ranks each hash at most once
// at a time.
type ResultCache struct {
	client *pkgredis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64

	hitCounter  prometheus.Counter
	missCounter prometheus.Counter
}

// NewResultCache wraps a Redis client. ttl should match the store's cache
// window so both layers expire together.
func NewResultCache(client *pkgredis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{
		client: client,
		ttl:    ttl,
		logger: logger.WithComponent("result-cache"),
	}
}

// SetCounters attaches Prometheus hit/miss counters. Either may be nil.
func (c *ResultCache) SetCounters(hits, misses prometheus.Counter) {
	c.hitCounter = hits
	c.missCounter = misses
}

// RankThrough returns the cached unique id for the request's content hash,
// or ranks through the store and caches the returned id.
func (c *ResultCache) RankThrough(ctx context.Context, st store.Store, req store.RankRequest) (string, error) {
	key := rankKeyPrefix + req.ContentHash
	if uniqueID, err := c.client.Get(ctx, key); err == nil {
		c.hits.Add(1)
		if c.hitCounter != nil {
			c.hitCounter.Inc()
		}
		if err := c.client.Expire(ctx, key, c.ttl); err != nil {
			c.logger.Error("cache ttl refresh failed", "key", key, "error", err)
		}
		return uniqueID, nil
	} else if !pkgredis.IsNilError(err) {
		c.logger.Error("cache get failed, falling through to store", "key", key, "error", err)
	}

	c.misses.Add(1)
	if c.missCounter != nil {
		c.missCounter.Inc()
	}
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if uniqueID, err := c.client.Get(ctx, key); err == nil {
			return uniqueID, nil
		}
		uniqueID, err := st.Rank(ctx, req)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, uniqueID, c.ttl); err != nil {
			c.logger.Error("cache set failed", "key", key, "error", err)
		}
		return uniqueID, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached id for a content hash. The store's own SQL
// cache row is untouched; the next query through this hash ranks again.
func (c *ResultCache) Invalidate(ctx context.Context, contentHash string) error {
	return c.client.Del(ctx, rankKeyPrefix+contentHash)
}

// Ping reports whether the backing Redis is reachable.
func (c *ResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

// Stats returns the hit and miss counters.
func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
