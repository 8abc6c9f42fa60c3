package respcache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/querykit/internal/db"
)

type mockExecutor struct {
	response []byte
	err      error
	calls    int
	lastBody map[string]any
}

func (m *mockExecutor) Search(_ context.Context, _ string, body map[string]any) ([]byte, error) {
	m.calls++
	m.lastBody = body
	return m.response, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedExecutor(t *testing.T, inner *mockExecutor) (*CachedExecutor, *mockKVStore, *prometheus.CounterVec) {
	t.Helper()
	ms := &mockKVStore{}
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_response_cache_total"}, []string{"result"})
	ce := New(inner, ms, time.Minute, counter, zap.NewNop())
	return ce, ms, counter
}
