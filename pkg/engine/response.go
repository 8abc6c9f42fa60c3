// Package engine models the raw responses returned by the search engine transport.
package engine

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/querykit/pkg/hydration"
)

// TotalHits is the hit count; Relation is "eq" or "gte" when counting was capped.
type TotalHits struct {
	Value    int    `json:"value"`
	Relation string `json:"relation"`
}

// Hit is a single document hit.
type Hit struct {
	Index   string          `json:"_index"`
	ID      string          `json:"_id"`
	Routing string          `json:"_routing,omitempty"`
	Score   *float64        `json:"_score"`
	Source  json.RawMessage `json:"_source,omitempty"`
	Sort    []any           `json:"sort,omitempty"`
}

// Ref identifies the hit for hydration reporting.
func (h Hit) Ref() hydration.HitRef {
	return hydration.HitRef{Index: h.Index, ID: h.ID}
}

// Hits is the hits section of a search response.
type Hits struct {
	Total    TotalHits `json:"total"`
	MaxScore *float64  `json:"max_score"`
	Hits     []Hit     `json:"hits"`
}

// SearchResponse is a raw search response.
type SearchResponse struct {
	Took         int                        `json:"took"`
	TimedOut     bool                       `json:"timed_out"`
	Hits         Hits                       `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations,omitempty"`
}

// Total returns the reported total hit count.
func (r *SearchResponse) Total() int { return r.Hits.Total.Value }

// ParseSearchResponse decodes a raw search response body.
func ParseSearchResponse(data []byte) (*SearchResponse, error) {
	var resp SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &resp, nil
}
