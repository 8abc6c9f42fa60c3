package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/querykit/pkg/bulk"
)

// ErrFailedItems is returned when a reconciled bulk response carries failures, so the
// process exits non-zero.
var ErrFailedItems = errors.New("bulk response has failed items")

// ReconcileResult is the JSON output of the reconcile command.
type ReconcileResult struct {
	Failed int            `json:"failed"`
	ByType map[string]int `json:"by_type,omitempty"`
	Items  []bulk.Failure `json:"items,omitempty"`
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [bulk-response.json|-]",
		Short: "Reconcile a raw bulk response",
		Long: `Parse a bulk response and report every failed item.

Reads the file argument, or stdin when it is "-" or omitted. Exits non-zero
when any item failed.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := "-"
			if len(args) == 1 {
				src = args[0]
			}
			data, err := readInput(cmd.InOrStdin(), src)
			if err != nil {
				return err
			}
			return runReconcile(rootOpts, cmd.OutOrStdout(), data)
		},
	}
}

func runReconcile(opts *RootOptions, w io.Writer, data []byte) error {
	resp, err := bulk.ParseResponse(data)
	if err != nil {
		return err
	}

	var res ReconcileResult
	var opErr *bulk.BulkOperationError
	if err := bulk.Reconcile(resp); err != nil {
		if !errors.As(err, &opErr) {
			return err
		}
		res = ReconcileResult{Failed: len(opErr.Items), ByType: opErr.CountByType(), Items: opErr.Items}
	}

	if opts.Format == "json" {
		if err := printJSON(w, res); err != nil {
			return err
		}
	} else if err := printReconcileText(w, opErr); err != nil {
		return err
	}

	if opErr != nil {
		return fmt.Errorf("%d item(s): %w", len(opErr.Items), ErrFailedItems)
	}
	return nil
}

func printReconcileText(w io.Writer, opErr *bulk.BulkOperationError) error {
	if opErr == nil {
		_, err := fmt.Fprintln(w, "ok: no failed items")
		return err
	}
	if _, err := fmt.Fprintf(w, "%d item(s) failed\n%s", len(opErr.Items), opErr.Summary()); err != nil {
		return err
	}

	byType := opErr.CountByType()
	types := make([]string, 0, len(byType))
	for typ := range byType {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		if _, err := fmt.Fprintf(w, "  %s: %d\n", typ, byType[typ]); err != nil {
			return err
		}
	}
	return nil
}

// readInput reads a named file, or r when name is "-".
func readInput(r io.Reader, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(filepath.Clean(name))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
