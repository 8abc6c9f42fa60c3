// Package bulk builds bulk delete requests and reconciles bulk responses.
package bulk

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OpDelete is the bulk action name for deletions.
const OpDelete = "delete"

// DeleteOp removes one document.
type DeleteOp struct {
	Index   string
	ID      string
	Routing string
}

type actionMeta struct {
	Index   string `json:"_index"`
	ID      string `json:"_id"`
	Routing string `json:"routing,omitempty"`
}

// Request is an ordered list of delete operations sent as one bulk call.
type Request struct {
	Ops     []DeleteOp
	Refresh bool
}

// NewRequest creates an empty request. With refresh set, the engine makes the
// deletions visible before responding.
func NewRequest(refresh bool) *Request {
	return &Request{Refresh: refresh}
}

// Delete appends a delete operation.
func (r *Request) Delete(index, id, routing string) *Request {
	r.Ops = append(r.Ops, DeleteOp{Index: index, ID: id, Routing: routing})
	return r
}

// Len returns the number of operations.
func (r *Request) Len() int { return len(r.Ops) }

// Params returns the query parameters of the bulk call.
func (r *Request) Params() map[string]string {
	if !r.Refresh {
		return nil
	}
	return map[string]string{"refresh": "true"}
}

// Body encodes the operations as newline-delimited JSON, one action line per delete,
// terminated by a newline.
func (r *Request) Body() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, op := range r.Ops {
		if op.Index == "" || op.ID == "" {
			return nil, fmt.Errorf("bulk op %d: index and id are required", i)
		}
		line := map[string]actionMeta{OpDelete: {Index: op.Index, ID: op.ID, Routing: op.Routing}}
		// Encoder.Encode appends the newline separator.
		if err := enc.Encode(line); err != nil {
			return nil, fmt.Errorf("encode bulk op %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
