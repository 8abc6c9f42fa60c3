package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/querykit/internal/metrics"
	"github.com/kailas-cloud/querykit/pkg/dsl"
	"github.com/kailas-cloud/querykit/pkg/engine"
	"github.com/kailas-cloud/querykit/pkg/hydration"
)

// softDeleteKey is the registry key of the injected soft-delete filter.
const softDeleteKey = "soft_delete"

// Errors returned by the search service.
var (
	ErrNilSource  = errors.New("search source is required")
	ErrNoEmbedder = errors.New("no embedder configured")
)

// Config holds search translation settings.
type Config struct {
	SoftDelete      bool
	SoftDeleteField string
	IndexPrefix     string
	Mode            hydration.Mode
}

// Result is one executed and hydrated search.
type Result struct {
	Response *engine.SearchResponse
	Resolved int
	Missing  []hydration.HitRef
	// Mismatch holds the hydration error when the mode tolerated it.
	Mismatch error
}

// Service executes search sources and checks hydration of their hits.
type Service struct {
	exec   Executor
	embed  Embedder
	cfg    Config
	logger *zap.Logger
}

// New creates a search service. embed may be nil when kNN from text is not used.
func New(exec Executor, embed Embedder, cfg Config, logger *zap.Logger) *Service {
	if cfg.Mode == "" {
		cfg.Mode = hydration.ModeStrict
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{exec: exec, embed: embed, cfg: cfg, logger: logger}
}

// Search serializes a copy of src, executes it against index and resolves the hits.
// The caller's source is never modified. A nil resolver skips hydration.
func (s *Service) Search(
	ctx context.Context, index string, src *dsl.SearchSource, resolver Resolver,
) (*Result, error) {
	return s.search(ctx, s.indexName(index), src, resolver)
}

// SearchJoin searches every index of a join in one request.
func (s *Service) SearchJoin(ctx context.Context, join *Join, src *dsl.SearchSource, resolver Resolver) (*Result, error) {
	indices := join.Indices()
	for i, idx := range indices {
		indices[i] = s.indexName(idx)
	}
	return s.search(ctx, strings.Join(indices, ","), src, resolver)
}

// search runs src against target, an already prefixed index expression.
func (s *Service) search(
	ctx context.Context, target string, src *dsl.SearchSource, resolver Resolver,
) (*Result, error) {
	if src == nil {
		return nil, ErrNilSource
	}

	body, err := s.Body(src)
	if err != nil {
		return nil, err
	}

	raw, err := s.exec.Search(ctx, target, body)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}
	resp, err := engine.ParseSearchResponse(raw)
	if err != nil {
		return nil, err
	}

	res := &Result{Response: resp}
	if resolver == nil {
		return res, nil
	}

	resolved, missing, err := resolver.Resolve(ctx, resp.Hits.Hits)
	if err != nil {
		return nil, fmt.Errorf("resolve hits: %w", err)
	}
	res.Resolved = resolved
	res.Missing = missing

	mismatch := hydration.Detect(hydration.Counts{
		Total:       len(resp.Hits.Hits),
		Resolved:    resolved,
		MissingHits: missing,
	})
	if err := s.applyMode(target, mismatch); err != nil {
		return nil, err
	}
	res.Mismatch = mismatch
	return res, nil
}

// Body returns the request body for src after soft-delete translation, without executing it.
func (s *Service) Body(src *dsl.SearchSource) (map[string]any, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	c := src.Clone()
	if s.cfg.SoftDelete && s.cfg.SoftDeleteField != "" {
		s.applySoftDelete(c)
	}
	body, err := c.Source()
	if err != nil {
		return nil, fmt.Errorf("serialize search: %w", err)
	}
	return body, nil
}

// KNNFromText embeds text and returns a knn query on field.
func (s *Service) KNNFromText(ctx context.Context, field, text string, k int) (*dsl.KNNQuery, error) {
	if s.embed == nil {
		return nil, ErrNoEmbedder
	}
	vec, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query text: %w", err)
	}
	return dsl.KNN(field, vec, k), nil
}

// applySoftDelete turns the trashed mode of the query into a filter on the soft-delete field.
// A non-bool query becomes the must clause of a new bool; an absent query gets an empty bool
// unless the request is kNN only. The kNN section is filtered too, since its hits are not
// constrained by the query. Filters are keyed, so a clause the caller already placed under
// that key wins.
func (s *Service) applySoftDelete(c *dsl.SearchSource) {
	q := c.QueryNode()
	knn := c.KNNNode()
	b, ok := q.(*dsl.BoolQuery)
	if !ok && (q != nil || knn == nil) {
		b = dsl.Bool()
		if q != nil {
			b.Must(q)
		}
		c.Query(b)
	}

	mode := dsl.TrashedExclude
	if b != nil {
		mode = b.Trashed()
	}
	var clause dsl.Node
	switch mode {
	case dsl.TrashedExclude:
		clause = dsl.Term(s.cfg.SoftDeleteField, 0)
	case dsl.TrashedOnly:
		clause = dsl.Term(s.cfg.SoftDeleteField, 1)
	default:
		return
	}

	if b != nil {
		b.Keyed(dsl.Filter, softDeleteKey, clause)
	}
	if knn != nil {
		f, ok := knn.FilterNode().(*dsl.BoolQuery)
		if !ok {
			f = dsl.Bool()
			if existing := knn.FilterNode(); existing != nil {
				f.Filter(existing)
			}
			knn.Filter(f)
		}
		f.Keyed(dsl.Filter, softDeleteKey, clause)
	}
}

func (s *Service) applyMode(target string, mismatch error) error {
	var mmErr *hydration.HydrationMismatchError
	if !errors.As(mismatch, &mmErr) {
		metrics.ObserveHydration(s.cfg.Mode.String(), 0, false)
		return nil
	}
	metrics.ObserveHydration(s.cfg.Mode.String(), mmErr.Missing, true)

	switch s.cfg.Mode {
	case hydration.ModeLog:
		s.logger.Warn("Search hits could not be resolved",
			zap.String("index", target),
			zap.Int("total", mmErr.Total),
			zap.Int("resolved", mmErr.Resolved),
			zap.Int("missing", mmErr.Missing),
			zap.Stringers("missing_hits", mmErr.MissingHits),
		)
		return nil
	case hydration.ModeIgnore:
		return nil
	default:
		return mismatch
	}
}

func (s *Service) indexName(index string) string {
	return s.cfg.IndexPrefix + index
}

// ModelForHit maps a hit of a joined search back to its model.
func (s *Service) ModelForHit(join *Join, hit engine.Hit) (Model, error) {
	return join.ModelFor(strings.TrimPrefix(hit.Index, s.cfg.IndexPrefix))
}
