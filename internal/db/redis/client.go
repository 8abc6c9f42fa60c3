// Package redis backs the search response cache with Redis or Valkey through rueidis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/querykit/internal/config"
	"github.com/kailas-cloud/querykit/internal/db"
)

var _ db.Store = (*Store)(nil)

// ErrNotReady is returned by WaitForReady when the cache never answered a PING.
var ErrNotReady = errors.New("response cache not ready")

const (
	defaultReadyTimeout = 10 * time.Second
	readyPollInterval   = 100 * time.Millisecond
)

// Config describes the response cache server and how long entries live.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// TTL applies to writes that carry no expiry of their own.
	TTL time.Duration
	// ReadyTimeout bounds WaitForReady when the caller passes no timeout.
	ReadyTimeout time.Duration
}

// ConfigFromCache maps the cache section of the application config.
func ConfigFromCache(c config.CacheConfig) Config {
	return Config{
		Addrs:        c.Addrs,
		Password:     c.Password,
		TTL:          time.Duration(c.TTLSec) * time.Second,
		ReadyTimeout: time.Duration(c.ReadinessTimeout) * time.Second,
	}
}

// Store holds cached search responses.
type Store struct {
	client       rueidis.Client
	addrs        string
	ttl          time.Duration
	readyTimeout time.Duration
}

// NewStore connects to the response cache.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("response cache: addrs is required")
	}

	// Client-side caching stays off: entries already expire on their own TTL.
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect response cache %s: %w", strings.Join(cfg.Addrs, ","), err)
	}

	return newStore(client, cfg), nil
}

func newStore(client rueidis.Client, cfg Config) *Store {
	ready := cfg.ReadyTimeout
	if ready <= 0 {
		ready = defaultReadyTimeout
	}
	return &Store{
		client:       client,
		addrs:        strings.Join(cfg.Addrs, ","),
		ttl:          cfg.TTL,
		readyTimeout: ready,
	}
}

// Ping sends PING to the cache server.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("response cache %s: %w", s.addrs, err)}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the cache answers. A non-positive timeout uses the
// configured readiness timeout. The returned error wraps ErrNotReady, the context error
// and the last ping failure.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = s.readyTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	var last error
	for {
		select {
		case <-ctx.Done():
			if last == nil {
				last = errors.New("no ping completed")
			}
			return fmt.Errorf("%w after %s: %w (last ping: %v)", ErrNotReady, timeout, ctx.Err(), last)
		case <-ticker.C:
			if last = s.Ping(ctx); last == nil {
				return nil
			}
		}
	}
}

// expiry picks the TTL for a write: the caller's if positive, else the store default.
func (s *Store) expiry(ttl time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return s.ttl
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
