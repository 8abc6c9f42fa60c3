package respcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/querykit/internal/db"
)

// DefaultKeyPrefix is used when no prefix is configured.
const DefaultKeyPrefix = "querykit:"

// Executor runs a serialized search body against an index and returns the raw response.
type Executor interface {
	Search(ctx context.Context, index string, body map[string]any) ([]byte, error)
}

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedExecutor caches raw search responses in a key-value store.
type CachedExecutor struct {
	inner      Executor
	store      store
	ttl        time.Duration
	prefix     string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// Option configures a CachedExecutor.
type Option func(*CachedExecutor)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(c *CachedExecutor) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"error"), passed explicitly.
func New(
	inner Executor,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
	opts ...Option,
) *CachedExecutor {
	c := &CachedExecutor{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		prefix:     DefaultKeyPrefix,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns a cached response or calls the inner executor.
// Store failures are logged and fall through; only inner executor errors are returned.
func (c *CachedExecutor) Search(ctx context.Context, index string, body map[string]any) ([]byte, error) {
	key, err := c.cacheKey(index, body)
	if err != nil {
		return nil, err
	}

	if data, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return data, nil
	}

	c.incCache("miss")

	data, err := c.inner.Search(ctx, index, body)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}

	c.putToCache(ctx, key, data)
	return data, nil
}

func (c *CachedExecutor) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey is the prefix followed by the hex sha256 of index, a zero byte and the
// canonical JSON body; encoding/json sorts map keys.
func (c *CachedExecutor) cacheKey(index string, body map[string]any) (string, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode search body: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(index))
	h.Write([]byte{0})
	h.Write(raw)
	return c.prefix + hex.EncodeToString(h.Sum(nil)), nil
}

func (c *CachedExecutor) getFromCache(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.incCache("error")
			c.logger.Warn("Failed to get cached response", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (c *CachedExecutor) putToCache(ctx context.Context, key string, data []byte) {
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.incCache("error")
		c.logger.Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
	}
}
