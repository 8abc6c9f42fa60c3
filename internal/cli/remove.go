package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/querykit/internal/usecase/removal"
	"github.com/kailas-cloud/querykit/pkg/bulk"
)

// docRef is a record identity given on the command line.
type docRef struct {
	index   string
	id      string
	routing string
}

func (d docRef) SearchIndex() string   { return d.index }
func (d docRef) SearchKey() string     { return d.id }
func (d docRef) SearchRouting() string { return d.routing }

// RemoveResult is the JSON output of the remove command.
type RemoveResult struct {
	Requested int            `json:"requested"`
	Chunks    int            `json:"chunks"`
	Failed    int            `json:"failed"`
	Items     []bulk.Failure `json:"items,omitempty"`
}

type removeOptions struct {
	routing   string
	idsFile   string
	batchSize int
	refresh   bool
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &removeOptions{}

	cmd := &cobra.Command{
		Use:   "remove <index> [id...]",
		Short: "Delete records from an index with chunked bulk requests",
		Long: `Delete records from the search index.

Ids come from the arguments and, with --ids-file, from a file with one id per
line ("-" reads stdin). Failed items of all chunks are reported together and
make the command exit non-zero.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, rootOpts, opts, args[0], args[1:])
		},
	}

	cmd.Flags().StringVar(&opts.routing, "routing", "", "routing value applied to every delete")
	cmd.Flags().StringVar(&opts.idsFile, "ids-file", "", "file with one id per line, - for stdin")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "deletes per bulk request (default: bulk.max_batch_size)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "refresh affected shards after each chunk (default: bulk.refresh)")
	return cmd
}

func runRemove(cmd *cobra.Command, rootOpts *RootOptions, opts *removeOptions, index string, ids []string) error {
	if opts.idsFile != "" {
		data, err := readInput(cmd.InOrStdin(), opts.idsFile)
		if err != nil {
			return err
		}
		ids = append(ids, parseIDs(data)...)
	}
	if len(ids) == 0 {
		return errors.New("no ids to remove")
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

	client, err := newEngineClient(cfg, logger)
	if err != nil {
		return err
	}

	batchSize := cfg.Bulk.MaxBatchSize
	if opts.batchSize > 0 {
		batchSize = opts.batchSize
	}
	refresh := cfg.Bulk.Refresh
	if cmd.Flags().Changed("refresh") {
		refresh = opts.refresh
	}
	svc := removal.New(client, logger).WithMaxBatchSize(batchSize).WithRefresh(refresh)

	items := make([]removal.Identity, len(ids))
	for i, id := range ids {
		items[i] = docRef{index: cfg.Search.IndexPrefix + index, id: id, routing: opts.routing}
	}

	report, err := svc.Remove(cmd.Context(), items)
	var opErr *bulk.BulkOperationError
	if err != nil && !errors.As(err, &opErr) {
		return err
	}

	res := RemoveResult{Requested: report.Requested, Chunks: report.Chunks, Failed: report.Failed}
	if opErr != nil {
		res.Items = opErr.Items
	}
	w := cmd.OutOrStdout()
	if rootOpts.Format == "json" {
		if err := printJSON(w, res); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "removed %d/%d in %d chunk(s)\n",
			report.Requested-report.Failed, report.Requested, report.Chunks); err != nil {
			return err
		}
		if opErr != nil {
			if _, err := fmt.Fprint(w, opErr.Summary()); err != nil {
				return err
			}
		}
	}

	if opErr != nil {
		return fmt.Errorf("%d item(s): %w", report.Failed, ErrFailedItems)
	}
	return nil
}

// parseIDs splits data into trimmed, non-empty lines.
func parseIDs(data []byte) []string {
	var ids []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
