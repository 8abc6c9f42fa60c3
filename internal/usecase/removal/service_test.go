package removal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kailas-cloud/querykit/pkg/bulk"
)

// --- Mocks ---

type record struct {
	index, key, routing string
}

func (r record) SearchIndex() string   { return r.index }
func (r record) SearchKey() string     { return r.key }
func (r record) SearchRouting() string { return r.routing }

type mockExecutor struct {
	responses [][]byte
	err       error
	requests  []*bulk.Request
}

func (m *mockExecutor) Bulk(_ context.Context, req *bulk.Request) ([]byte, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	i := len(m.requests) - 1
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return []byte(`{"took":1,"errors":false,"items":[]}`), nil
}

func records(n int) []Identity {
	out := make([]Identity, n)
	for i := range out {
		out[i] = record{index: "posts", key: fmt.Sprintf("%d", i+1)}
	}
	return out
}

const partialResponse = `{"took":5,"errors":true,"items":[
	{"delete":{"_index":"posts","_id":"1","status":200,"result":"deleted"}},
	{"delete":{"_index":"posts","_id":"2","status":429,"error":{"type":"es_rejected_execution_exception","reason":"queue full"}}}
]}`

// --- Tests ---

func TestRemove_Empty(t *testing.T) {
	exec := &mockExecutor{}
	svc := New(exec, nil)

	report, err := svc.Remove(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Chunks != 0 || len(exec.requests) != 0 {
		t.Errorf("expected no bulk calls, got %d", len(exec.requests))
	}
}

func TestRemove_AllSucceed(t *testing.T) {
	exec := &mockExecutor{}
	svc := New(exec, nil).WithRefresh(true)

	items := []Identity{record{index: "posts", key: "7", routing: "u1"}}
	report, err := svc.Remove(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Requested != 1 || report.Chunks != 1 || report.Failed != 0 {
		t.Errorf("unexpected report: %+v", report)
	}

	req := exec.requests[0]
	if req.Params()["refresh"] != "true" {
		t.Errorf("expected refresh param, got %v", req.Params())
	}
	op := req.Ops[0]
	if op.Index != "posts" || op.ID != "7" || op.Routing != "u1" {
		t.Errorf("unexpected op: %+v", op)
	}
}

func TestRemove_Chunking(t *testing.T) {
	exec := &mockExecutor{}
	svc := New(exec, nil).WithMaxBatchSize(2)

	report, err := svc.Remove(context.Background(), records(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Chunks != 3 {
		t.Fatalf("chunks = %d, want 3", report.Chunks)
	}
	sizes := []int{exec.requests[0].Len(), exec.requests[1].Len(), exec.requests[2].Len()}
	if sizes[0] != 2 || sizes[1] != 2 || sizes[2] != 1 {
		t.Errorf("chunk sizes = %v, want [2 2 1]", sizes)
	}
}

func TestRemove_PartialFailureMergedAcrossChunks(t *testing.T) {
	exec := &mockExecutor{responses: [][]byte{
		[]byte(partialResponse),
		[]byte(`{"took":1,"errors":true,"items":[{"delete":{"_index":"posts","_id":"3","status":404,"error":{"type":"document_missing_exception","reason":"gone"}}}]}`),
	}}
	svc := New(exec, nil).WithMaxBatchSize(2)

	report, err := svc.Remove(context.Background(), records(3))
	if !errors.Is(err, bulk.ErrBulkOperation) {
		t.Fatalf("expected ErrBulkOperation, got %v", err)
	}
	var opErr *bulk.BulkOperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected *BulkOperationError, got %T", err)
	}
	if ids := opErr.IDs(); len(ids) != 2 || ids[0] != "2" || ids[1] != "3" {
		t.Errorf("failed ids = %v, want [2 3]", ids)
	}
	if report.Failed != 2 || report.Chunks != 2 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestRemove_ErrorsFlagWithoutFailedItems(t *testing.T) {
	exec := &mockExecutor{responses: [][]byte{[]byte(`{"took":1,"errors":true,"items":[]}`)}}
	svc := New(exec, nil)

	_, err := svc.Remove(context.Background(), records(1))
	if !errors.Is(err, bulk.ErrBulkOperation) {
		t.Fatalf("expected ErrBulkOperation, got %v", err)
	}
}

func TestRemove_TransportErrorAborts(t *testing.T) {
	exec := &mockExecutor{err: errors.New("connection refused")}
	svc := New(exec, nil).WithMaxBatchSize(1)

	report, err := svc.Remove(context.Background(), records(3))
	if err == nil {
		t.Fatal("expected transport error")
	}
	if errors.Is(err, bulk.ErrBulkOperation) {
		t.Error("transport errors must not look like item failures")
	}
	if !strings.Contains(err.Error(), "chunk 1") {
		t.Errorf("error should name the chunk: %v", err)
	}
	if len(exec.requests) != 1 || report.Chunks != 1 {
		t.Errorf("expected abort after first chunk, got %d calls", len(exec.requests))
	}
}

func TestRemove_MalformedResponse(t *testing.T) {
	exec := &mockExecutor{responses: [][]byte{[]byte(`not json`)}}
	svc := New(exec, nil)

	if _, err := svc.Remove(context.Background(), records(1)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRemove_ErrorsFalseIgnoresMalformedItems(t *testing.T) {
	exec := &mockExecutor{responses: [][]byte{
		[]byte(`{"took":1,"errors":false,"items":[{"delete":"not-an-object"}]}`),
	}}
	svc := New(exec, nil)

	report, err := svc.Remove(context.Background(), records(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Failed != 0 || report.Chunks != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestWithMaxBatchSize_IgnoresNonPositive(t *testing.T) {
	svc := New(&mockExecutor{}, nil).WithMaxBatchSize(0)
	if svc.maxBatchSize != MaxBatchSize {
		t.Errorf("maxBatchSize = %d, want %d", svc.maxBatchSize, MaxBatchSize)
	}
}
