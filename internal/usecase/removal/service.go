package removal

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/querykit/internal/metrics"
	"github.com/kailas-cloud/querykit/pkg/bulk"
)

// MaxBatchSize is the default number of delete operations per bulk request.
const MaxBatchSize = 500

// Report summarizes one Remove call.
type Report struct {
	Requested int
	Chunks    int
	Failed    int
}

// Service removes records from the search index with bulk deletes.
type Service struct {
	exec         BulkExecutor
	refresh      bool
	maxBatchSize int
	logger       *zap.Logger
}

// New creates a removal service.
func New(exec BulkExecutor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{exec: exec, maxBatchSize: MaxBatchSize, logger: logger}
}

// WithMaxBatchSize configures the chunk size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// WithRefresh asks the engine to refresh affected shards after each chunk.
func (s *Service) WithRefresh(refresh bool) *Service {
	s.refresh = refresh
	return s
}

// Remove deletes every record in chunks of at most maxBatchSize operations.
// Item failures of all chunks are merged into one *bulk.BulkOperationError returned together
// with the report; a transport or decode error aborts the remaining chunks.
func (s *Service) Remove(ctx context.Context, items []Identity) (Report, error) {
	report := Report{Requested: len(items)}
	if len(items) == 0 {
		return report, nil
	}

	var failures []*bulk.BulkOperationError
	for start := 0; start < len(items); start += s.maxBatchSize {
		end := min(start+s.maxBatchSize, len(items))
		report.Chunks++

		opErr, err := s.removeChunk(ctx, items[start:end])
		if err != nil {
			return report, fmt.Errorf("chunk %d: %w", report.Chunks, err)
		}
		if opErr != nil {
			failures = append(failures, opErr)
		}
	}

	merged := bulk.Merge(failures...)
	if merged == nil {
		if len(failures) > 0 {
			// engine flagged errors without failed items
			return report, &bulk.BulkOperationError{}
		}
		return report, nil
	}

	report.Failed = len(merged.Items)
	s.logger.Warn("Bulk removal partially failed",
		zap.Int("requested", report.Requested),
		zap.Int("failed", report.Failed),
		zap.Strings("ids", merged.IDs()),
	)
	return report, merged
}

func (s *Service) removeChunk(ctx context.Context, chunk []Identity) (*bulk.BulkOperationError, error) {
	req := bulk.NewRequest(s.refresh)
	for _, item := range chunk {
		req.Delete(item.SearchIndex(), item.SearchKey(), item.SearchRouting())
	}

	raw, err := s.exec.Bulk(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute bulk: %w", err)
	}

	resp, err := bulk.ParseResponse(raw)
	if err != nil {
		return nil, err
	}

	err = bulk.Reconcile(resp)
	if err == nil {
		metrics.ObserveBulk(false, nil)
		s.logger.Debug("Bulk removal chunk succeeded", zap.Int("ops", req.Len()), zap.Int("took_ms", resp.Took))
		return nil, nil
	}

	var opErr *bulk.BulkOperationError
	if !errors.As(err, &opErr) {
		return nil, err
	}
	metrics.ObserveBulk(true, opErr.CountByType())
	return opErr, nil
}
