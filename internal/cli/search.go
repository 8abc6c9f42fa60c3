package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/querykit/internal/config"
	"github.com/kailas-cloud/querykit/internal/metrics"
	"github.com/kailas-cloud/querykit/internal/repository/respcache"
	openaiEmb "github.com/kailas-cloud/querykit/internal/transport/openai"
	searchuc "github.com/kailas-cloud/querykit/internal/usecase/search"
	"github.com/kailas-cloud/querykit/pkg/dsl"
	"github.com/kailas-cloud/querykit/pkg/engine"
	"github.com/kailas-cloud/querykit/pkg/hydration"
)

type searchOptions struct {
	query      string
	filterFile string
	knnField   string
	text       string
	k          int
	from       int
	size       int
	trashed    string
	records    string
	mode       string
	printBody  bool
}

// SearchHit is one hit of the search command output.
type SearchHit struct {
	Model  string          `json:"model"`
	Index  string          `json:"index"`
	ID     string          `json:"id"`
	Score  *float64        `json:"score,omitempty"`
	Source json.RawMessage `json:"source,omitempty"`
}

// SearchOutput is the JSON output of the search command.
type SearchOutput struct {
	Total    int                `json:"total"`
	Hits     []SearchHit        `json:"hits"`
	Resolved int                `json:"resolved,omitempty"`
	Missing  []hydration.HitRef `json:"missing,omitempty"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search <index> [index...]",
		Short: "Run a bool query, optionally with kNN from text",
		Long: `Build a search body from flags and run it against one or more indices.

Several indices are searched as one join and every hit is reported with the
model it belongs to. With --records, hits are hydrated against a file of
known "index/id" (or bare id) lines and mismatches follow --mode.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, rootOpts, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "query_string clause")
	cmd.Flags().StringVar(&opts.filterFile, "filter-file", "", "JSON file with a raw filter clause")
	cmd.Flags().StringVar(&opts.knnField, "knn-field", "", "vector field for --text")
	cmd.Flags().StringVar(&opts.text, "text", "", "query text embedded into a knn clause")
	cmd.Flags().IntVar(&opts.k, "k", 10, "nearest neighbours for --text")
	cmd.Flags().IntVar(&opts.from, "from", 0, "hit offset")
	cmd.Flags().IntVar(&opts.size, "size", 10, "page size")
	cmd.Flags().StringVar(&opts.trashed, "trashed", "exclude", "soft-deleted records: exclude|with|only")
	cmd.Flags().StringVar(&opts.records, "records", "", "file of known records to hydrate hits against")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "hydration mode override: strict|log|ignore")
	cmd.Flags().BoolVar(&opts.printBody, "print-body", false, "print the translated request body without executing it")
	return cmd
}

func runSearch(cmd *cobra.Command, rootOpts *RootOptions, opts *searchOptions, indices []string) error {
	if opts.text != "" && opts.knnField == "" {
		return errors.New("--text requires --knn-field")
	}

	cfg, err := rootOpts.loadConfig()
	if err != nil {
		return err
	}
	logger, err := rootOpts.newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	modeName := cfg.Hydration.Mode
	if opts.mode != "" {
		modeName = opts.mode
	}
	mode, err := hydration.ParseMode(modeName)
	if err != nil {
		return err
	}

	exec, closeExec, err := buildExecutor(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeExec()

	var embedder searchuc.Embedder
	if opts.text != "" {
		embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Logger:     logger,
		})
	}

	svc := searchuc.New(exec, embedder, searchuc.Config{
		SoftDelete:      cfg.Search.SoftDelete,
		SoftDeleteField: cfg.Search.SoftDeleteField,
		IndexPrefix:     cfg.Search.IndexPrefix,
		Mode:            mode,
	}, logger)

	src, err := buildSource(cmd, svc, opts)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.printBody {
		body, err := svc.Body(src)
		if err != nil {
			return err
		}
		return printJSON(w, body)
	}

	var resolver searchuc.Resolver
	if opts.records != "" {
		data, err := readInput(cmd.InOrStdin(), opts.records)
		if err != nil {
			return err
		}
		resolver = recordSetResolver(parseIDs(data), cfg.Search.IndexPrefix)
	}

	join, err := newCLIJoin(indices)
	if err != nil {
		return err
	}
	res, err := svc.SearchJoin(cmd.Context(), join, src, resolver)
	if err != nil {
		return err
	}

	out := SearchOutput{Total: res.Response.Total(), Resolved: res.Resolved, Missing: res.Missing}
	for _, h := range res.Response.Hits.Hits {
		hit := SearchHit{Index: h.Index, ID: h.ID, Score: h.Score, Source: h.Source}
		if m, err := svc.ModelForHit(join, h); err == nil {
			hit.Model = m.Name
		}
		out.Hits = append(out.Hits, hit)
	}

	if rootOpts.Format == "json" {
		return printJSON(w, out)
	}
	return printSearchText(w, out, res.Mismatch)
}

// buildSource turns the flags into a search source.
func buildSource(cmd *cobra.Command, svc *searchuc.Service, opts *searchOptions) (*dsl.SearchSource, error) {
	q := dsl.Bool()
	if opts.query != "" {
		q.Must(dsl.QueryString(opts.query))
	}
	if opts.filterFile != "" {
		data, err := readInput(cmd.InOrStdin(), opts.filterFile)
		if err != nil {
			return nil, err
		}
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode filter: %w", err)
		}
		q.Filter(dsl.Raw(raw))
	}
	switch opts.trashed {
	case "exclude":
		q.WithoutTrashed()
	case "with":
		q.WithTrashed()
	case "only":
		q.OnlyTrashed()
	default:
		return nil, fmt.Errorf("invalid --trashed %q: must be exclude, with or only", opts.trashed)
	}

	src := dsl.NewSearchSource().Query(q).From(opts.from).Size(opts.size)
	if opts.text != "" {
		knn, err := svc.KNNFromText(cmd.Context(), opts.knnField, opts.text, opts.k)
		if err != nil {
			return nil, err
		}
		src.KNN(knn)
	}
	return src, nil
}

// buildExecutor returns the engine client, wrapped in the response cache when enabled.
func buildExecutor(ctx context.Context, cfg config.Config, logger *zap.Logger) (searchuc.Executor, func(), error) {
	client, err := newEngineClient(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Cache.Enabled {
		return client, func() {}, nil
	}

	store, err := openCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	cached := respcache.New(client, store, time.Duration(cfg.Cache.TTLSec)*time.Second,
		metrics.ResponseCacheTotal, logger, respcache.WithKeyPrefix(cfg.Cache.KeyPrefix))
	return cached, store.Close, nil
}

// newCLIJoin treats every index named on the command line as its own model.
func newCLIJoin(indices []string) (*searchuc.Join, error) {
	models := make([]searchuc.Model, len(indices))
	for i, idx := range indices {
		models[i] = searchuc.Model{Name: idx, Index: idx, Connection: "default", Searchable: true}
	}
	return searchuc.NewJoin(models...)
}

// recordSetResolver resolves hits against a fixed set of records. Entries are "index/id"
// with the unprefixed index, or a bare id matching any index.
func recordSetResolver(records []string, prefix string) searchuc.Resolver {
	known := make(map[string]struct{}, len(records))
	for _, r := range records {
		known[r] = struct{}{}
	}
	return searchuc.ResolverFunc(func(_ context.Context, hits []engine.Hit) (int, []hydration.HitRef, error) {
		var resolved int
		var missing []hydration.HitRef
		for _, h := range hits {
			ref := h.Ref()
			ref.Index = strings.TrimPrefix(ref.Index, prefix)
			_, byRef := known[ref.String()]
			_, byID := known[h.ID]
			if byRef || byID {
				resolved++
				continue
			}
			missing = append(missing, h.Ref())
		}
		return resolved, missing, nil
	})
}

func printSearchText(w io.Writer, out SearchOutput, mismatch error) error {
	if _, err := fmt.Fprintf(w, "total: %d, page: %d\n", out.Total, len(out.Hits)); err != nil {
		return err
	}
	for _, h := range out.Hits {
		score := "-"
		if h.Score != nil {
			score = fmt.Sprintf("%.4f", *h.Score)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", h.Model, h.Index, h.ID, score); err != nil {
			return err
		}
	}
	if mismatch != nil {
		if _, err := fmt.Fprintf(w, "warning: %v\n", mismatch); err != nil {
			return err
		}
	}
	return nil
}
