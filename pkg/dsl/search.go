package dsl

import "slices"

// SearchSource is the top-level search request body. Unlike the nodes it wraps, it has no
// kind key: Source returns the request object itself.
type SearchSource struct {
	query          Node
	postFilter     Node
	knn            *KNNQuery
	aggNames       []string
	aggs           map[string]Node
	sorts          []Node
	from           fromParam
	size           sizeParam
	minScore       minScoreParam
	trackTotalHits optional[any]
	includes       []string
	excludes       []string
	fetchSource    optional[bool]
}

// NewSearchSource creates an empty request body.
func NewSearchSource() *SearchSource {
	return &SearchSource{}
}

// Query sets the main query.
func (s *SearchSource) Query(n Node) *SearchSource {
	s.query = n
	return s
}

// QueryNode returns the main query, or nil.
func (s *SearchSource) QueryNode() Node { return s.query }

// PostFilter filters hits after aggregations are computed.
func (s *SearchSource) PostFilter(n Node) *SearchSource {
	s.postFilter = n
	return s
}

// KNN sets the top-level approximate kNN section.
func (s *SearchSource) KNN(q *KNNQuery) *SearchSource {
	s.knn = q
	return s
}

// KNNNode returns the kNN section, or nil.
func (s *SearchSource) KNNNode() *KNNQuery { return s.knn }

// Aggregation attaches a named top-level aggregation, replacing one with the same name.
func (s *SearchSource) Aggregation(name string, n Node) *SearchSource {
	if s.aggs == nil {
		s.aggs = make(map[string]Node)
	}
	if _, ok := s.aggs[name]; !ok {
		s.aggNames = append(s.aggNames, name)
	}
	s.aggs[name] = n
	return s
}

// Sort appends sort expressions.
func (s *SearchSource) Sort(sorts ...Node) *SearchSource {
	s.sorts = append(s.sorts, sorts...)
	return s
}

// From sets the hit offset.
func (s *SearchSource) From(n int) *SearchSource {
	s.from.assign(n)
	return s
}

// Size sets the number of hits.
func (s *SearchSource) Size(n int) *SearchSource {
	s.size.assign(n)
	return s
}

// MinScore drops hits scoring below v.
func (s *SearchSource) MinScore(v float64) *SearchSource {
	s.minScore.assign(v)
	return s
}

// TrackTotalHits sets exact hit counting (true/false) or a counting threshold (int).
func (s *SearchSource) TrackTotalHits(v any) *SearchSource {
	s.trackTotalHits.assign(v)
	return s
}

// FetchSource enables or disables the _source field of hits.
func (s *SearchSource) FetchSource(v bool) *SearchSource {
	s.fetchSource.assign(v)
	return s
}

// SourceIncludes limits _source to the given fields.
func (s *SearchSource) SourceIncludes(fields ...string) *SearchSource {
	s.includes = append(s.includes, fields...)
	return s
}

// SourceExcludes removes the given fields from _source.
func (s *SearchSource) SourceExcludes(fields ...string) *SearchSource {
	s.excludes = append(s.excludes, fields...)
	return s
}

// Source serializes the request body.
func (s *SearchSource) Source() (map[string]any, error) {
	out := make(map[string]any)
	if s.query != nil {
		query, err := sourceOf(s.query, "search", "query")
		if err != nil {
			return nil, err
		}
		out["query"] = query
	}
	if s.postFilter != nil {
		filter, err := sourceOf(s.postFilter, "search", "post_filter")
		if err != nil {
			return nil, err
		}
		out["post_filter"] = filter
	}
	if s.knn != nil {
		src, err := s.knn.Source()
		if err != nil {
			return nil, err
		}
		out["knn"] = src["knn"]
	}
	if len(s.aggNames) > 0 {
		aggs := make(map[string]any, len(s.aggNames))
		for _, name := range s.aggNames {
			src, err := sourceOf(s.aggs[name], "search", "aggs."+name)
			if err != nil {
				return nil, err
			}
			aggs[name] = src
		}
		out["aggs"] = aggs
	}
	if len(s.sorts) > 0 {
		sorts, err := sourceList(s.sorts, "search", "sort")
		if err != nil {
			return nil, err
		}
		out["sort"] = sorts
	}
	s.from.apply(out)
	s.size.apply(out)
	s.minScore.apply(out)
	s.trackTotalHits.put(out, "track_total_hits")
	switch {
	case len(s.includes) > 0 || len(s.excludes) > 0:
		src := make(map[string]any, 2)
		if len(s.includes) > 0 {
			src["includes"] = s.includes
		}
		if len(s.excludes) > 0 {
			src["excludes"] = s.excludes
		}
		out["_source"] = src
	case s.fetchSource.set:
		out["_source"] = s.fetchSource.value
	}
	return out, nil
}

// Clone deep-copies the query, post filter, knn section, aggregations and sorts.
func (s *SearchSource) Clone() *SearchSource {
	c := *s
	c.query = Clone(s.query)
	c.postFilter = Clone(s.postFilter)
	if s.knn != nil {
		c.knn = s.knn.Clone()
	}
	c.aggNames = slices.Clone(s.aggNames)
	if s.aggs != nil {
		c.aggs = make(map[string]Node, len(s.aggs))
		for name, n := range s.aggs {
			c.aggs[name] = Clone(n)
		}
	}
	c.sorts = cloneNodes(s.sorts)
	c.includes = cloneStrings(s.includes)
	c.excludes = cloneStrings(s.excludes)
	return &c
}
