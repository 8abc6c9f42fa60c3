package bulk

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrBulkOperation signals that one or more bulk items failed.
var ErrBulkOperation = errors.New("bulk operation failed")

// Failure is one failed bulk item.
type Failure struct {
	Op      string `json:"op"`
	Index   string `json:"index"`
	ID      string `json:"id"`
	Routing string `json:"routing,omitempty"`
	Status  int    `json:"status"`
	Type    string `json:"type"`
	Reason  string `json:"reason"`
}

// BulkOperationError carries every failed item of a bulk response, in response order.
type BulkOperationError struct {
	Items []Failure
}

func (e *BulkOperationError) Error() string {
	msg := fmt.Sprintf("%s: %d item(s) failed", ErrBulkOperation.Error(), len(e.Items))
	if len(e.Items) > 0 {
		first := e.Items[0]
		msg += fmt.Sprintf(" (first: %s %s/%s: %s: %s)", first.Op, first.Index, first.ID, first.Type, first.Reason)
	}
	return msg
}

func (e *BulkOperationError) Unwrap() error { return ErrBulkOperation }

// IDs returns the document ids of the failed items.
func (e *BulkOperationError) IDs() []string {
	ids := make([]string, len(e.Items))
	for i, f := range e.Items {
		ids[i] = f.ID
	}
	return ids
}

// CountByType groups failures by engine error type.
func (e *BulkOperationError) CountByType() map[string]int {
	out := make(map[string]int)
	for _, f := range e.Items {
		out[f.Type]++
	}
	return out
}

// Reconcile inspects a bulk response. A response without the errors flag is a success and
// its items are not scanned. Otherwise every item carrying an error is collected into a
// *BulkOperationError; items are never retried here.
func Reconcile(resp *Response) error {
	if resp == nil || !resp.Errors {
		return nil
	}

	var failed []Failure
	for _, item := range resp.Items {
		for _, op := range sortedOps(item) {
			res := item[op]
			if !res.Failed() {
				continue
			}
			failed = append(failed, Failure{
				Op:      op,
				Index:   res.Index,
				ID:      res.ID,
				Routing: res.Routing,
				Status:  res.Status,
				Type:    res.Error.Type,
				Reason:  res.Error.Reason,
			})
		}
	}
	return &BulkOperationError{Items: failed}
}

// Merge concatenates the failures of several chunks into one error, or returns nil if
// there are none.
func Merge(errs ...*BulkOperationError) *BulkOperationError {
	var items []Failure
	for _, e := range errs {
		if e != nil {
			items = append(items, e.Items...)
		}
	}
	if len(items) == 0 {
		return nil
	}
	return &BulkOperationError{Items: items}
}

// Summary renders one line per failure.
func (e *BulkOperationError) Summary() string {
	var b strings.Builder
	for _, f := range e.Items {
		fmt.Fprintf(&b, "%s\t%s\t%s\t%d\t%s: %s\n", f.Op, f.Index, f.ID, f.Status, f.Type, f.Reason)
	}
	return b.String()
}

// sortedOps keeps multi-action items deterministic; real items carry a single action.
func sortedOps(item map[string]ItemResult) []string {
	ops := make([]string, 0, len(item))
	for op := range item {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}
