// Package hydration detects search hits that could not be resolved to records.
package hydration

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHydrationMismatch signals that fewer records were resolved than the engine reported.
var ErrHydrationMismatch = errors.New("hydration mismatch")

// HitRef identifies one search hit.
type HitRef struct {
	Index string `json:"index"`
	ID    string `json:"id"`
}

func (h HitRef) String() string { return h.Index + "/" + h.ID }

// Counts is the outcome of resolving one page of hits.
type Counts struct {
	Total       int
	Resolved    int
	MissingHits []HitRef
}

// HydrationMismatchError reports the disagreement between engine hits and resolved records.
type HydrationMismatchError struct {
	Total       int
	Resolved    int
	Missing     int
	MissingHits []HitRef
}

func (e *HydrationMismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: engine reported %d hits but %d records were resolved (%d missing)",
		ErrHydrationMismatch.Error(), e.Total, e.Resolved, e.Missing)
	if len(e.MissingHits) > 0 {
		refs := make([]string, len(e.MissingHits))
		for i, h := range e.MissingHits {
			refs[i] = h.String()
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(refs, ", "))
	}
	b.WriteString("; avoid filtering records while post-processing results, or use the log or ignore hydration mode")
	return b.String()
}

func (e *HydrationMismatchError) Unwrap() error { return ErrHydrationMismatch }

// Detect compares the counts and returns a *HydrationMismatchError when they differ.
// Whether a mismatch is fatal is decided by the caller's Mode.
func Detect(c Counts) error {
	if c.Resolved == c.Total {
		return nil
	}
	return &HydrationMismatchError{
		Total:       c.Total,
		Resolved:    c.Resolved,
		Missing:     max(c.Total-c.Resolved, 0),
		MissingHits: c.MissingHits,
	}
}
