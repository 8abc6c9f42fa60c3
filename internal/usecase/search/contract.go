package search

import (
	"context"

	"github.com/kailas-cloud/querykit/pkg/engine"
	"github.com/kailas-cloud/querykit/pkg/hydration"
)

// Executor runs a serialized search body against an index and returns the raw response.
type Executor interface {
	Search(ctx context.Context, index string, body map[string]any) ([]byte, error)
}

// Resolver maps search hits back to domain records. It reports how many hits were resolved
// and which hits had no record.
type Resolver interface {
	Resolve(ctx context.Context, hits []engine.Hit) (resolved int, missing []hydration.HitRef, err error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, hits []engine.Hit) (int, []hydration.HitRef, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, hits []engine.Hit) (int, []hydration.HitRef, error) {
	return f(ctx, hits)
}

// Embedder vectorizes query text for kNN search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
