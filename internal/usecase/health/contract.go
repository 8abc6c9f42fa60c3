package health

import "context"

// Pinger checks one dependency: the response cache store or the search engine.
type Pinger interface {
	Ping(ctx context.Context) error
}
