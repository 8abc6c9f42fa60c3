package dsl

import "slices"

// PinnedQuery promotes the given document ids above the organic results.
type PinnedQuery struct {
	ids     []string
	organic Node
	boost   boostParam
	name    nameParam
}

// NewPinnedQuery creates a pinned query. At least one id is required up front.
func NewPinnedQuery(organic Node, ids ...string) (*PinnedQuery, error) {
	if len(ids) == 0 {
		return nil, &EmptyCompositionError{Kind: "pinned", Field: "ids"}
	}
	return &PinnedQuery{ids: ids, organic: organic}, nil
}

// Pin appends more promoted ids.
func (q *PinnedQuery) Pin(ids ...string) *PinnedQuery {
	q.ids = append(q.ids, ids...)
	return q
}

// Boost sets the relevance boost.
func (q *PinnedQuery) Boost(v float64) *PinnedQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *PinnedQuery) Name(name string) *PinnedQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *PinnedQuery) Source() (map[string]any, error) {
	organic, err := sourceOf(q.organic, "pinned", "organic")
	if err != nil {
		return nil, err
	}
	params := map[string]any{"ids": q.ids, "organic": organic}
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("pinned", params), nil
}

// Clone deep-copies the organic query.
func (q *PinnedQuery) Clone() *PinnedQuery {
	c := *q
	c.ids = cloneStrings(q.ids)
	c.organic = Clone(q.organic)
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *PinnedQuery) CloneNode() Node { return q.Clone() }

// ScriptScoreQuery rescores the documents of a query with a script.
type ScriptScoreQuery struct {
	query    Node
	script   scriptParam
	minScore minScoreParam
	boost    boostParam
	name     nameParam
}

// ScriptScore creates a script_score query.
func ScriptScore(query Node, script *Script) *ScriptScoreQuery {
	q := &ScriptScoreQuery{query: query}
	q.script.assign(script)
	return q
}

// MinScore drops documents scoring below v.
func (q *ScriptScoreQuery) MinScore(v float64) *ScriptScoreQuery {
	q.minScore.assign(v)
	return q
}

// Boost sets the relevance boost.
func (q *ScriptScoreQuery) Boost(v float64) *ScriptScoreQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *ScriptScoreQuery) Name(name string) *ScriptScoreQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *ScriptScoreQuery) Source() (map[string]any, error) {
	if q.script.script == nil {
		return nil, &InvalidCompositionError{Kind: "script_score", Reason: "script is required"}
	}
	query, err := sourceOf(q.query, "script_score", "query")
	if err != nil {
		return nil, err
	}
	params := map[string]any{"query": query}
	q.script.apply(params)
	q.minScore.apply(params)
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("script_score", params), nil
}

// Clone deep-copies the query and the script.
func (q *ScriptScoreQuery) Clone() *ScriptScoreQuery {
	c := *q
	c.query = Clone(q.query)
	c.script = q.script.clone()
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *ScriptScoreQuery) CloneNode() Node { return q.Clone() }

// KNNQuery runs an approximate nearest-neighbour search on a dense vector field.
type KNNQuery struct {
	field         string
	vector        []float32
	k             int
	numCandidates optional[int]
	similarity    optional[float64]
	filter        Node
	boost         boostParam
	name          nameParam
}

// KNN creates a knn query.
func KNN(field string, vector []float32, k int) *KNNQuery {
	return &KNNQuery{field: field, vector: vector, k: k}
}

// NumCandidates sets the number of candidates considered per shard.
func (q *KNNQuery) NumCandidates(n int) *KNNQuery {
	q.numCandidates.assign(n)
	return q
}

// Similarity sets the minimum similarity for a match.
func (q *KNNQuery) Similarity(v float64) *KNNQuery {
	q.similarity.assign(v)
	return q
}

// Filter restricts the candidate documents.
func (q *KNNQuery) Filter(n Node) *KNNQuery {
	q.filter = n
	return q
}

// FilterNode returns the candidate filter, or nil.
func (q *KNNQuery) FilterNode() Node { return q.filter }

// Boost sets the relevance boost.
func (q *KNNQuery) Boost(v float64) *KNNQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *KNNQuery) Name(name string) *KNNQuery {
	q.name.assign(name)
	return q
}

// Vector returns the query vector.
func (q *KNNQuery) Vector() []float32 { return q.vector }

// Source implements Node.
func (q *KNNQuery) Source() (map[string]any, error) {
	if len(q.vector) == 0 {
		return nil, &EmptyCompositionError{Kind: "knn", Field: "query_vector"}
	}
	if q.k <= 0 {
		return nil, &InvalidCompositionError{Kind: "knn", Reason: "k must be positive"}
	}
	params := map[string]any{
		"field":        q.field,
		"query_vector": q.vector,
		"k":            q.k,
	}
	q.numCandidates.put(params, "num_candidates")
	q.similarity.put(params, "similarity")
	if q.filter != nil {
		filter, err := sourceOf(q.filter, "knn", "filter")
		if err != nil {
			return nil, err
		}
		params["filter"] = filter
	}
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("knn", params), nil
}

// Clone deep-copies the filter and the vector.
func (q *KNNQuery) Clone() *KNNQuery {
	c := *q
	c.vector = slices.Clone(q.vector)
	c.filter = Clone(q.filter)
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *KNNQuery) CloneNode() Node { return q.Clone() }
