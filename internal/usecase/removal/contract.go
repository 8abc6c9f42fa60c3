package removal

import (
	"context"

	"github.com/kailas-cloud/querykit/pkg/bulk"
)

// Identity locates one indexed record.
type Identity interface {
	SearchIndex() string
	SearchKey() string
	SearchRouting() string
}

// BulkExecutor sends a bulk request to the engine and returns the raw response body.
type BulkExecutor interface {
	Bulk(ctx context.Context, req *bulk.Request) ([]byte, error)
}
