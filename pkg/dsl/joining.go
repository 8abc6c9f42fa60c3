package dsl

// NestedQuery runs a query against nested objects of a path.
type NestedQuery struct {
	path           string
	query          Node
	scoreMode      scoreModeParam
	ignoreUnmapped ignoreUnmappedParam
	innerHits      innerHitsParam
	boost          boostParam
	name           nameParam
}

// Nested creates a nested query.
func Nested(path string, query Node) *NestedQuery {
	return &NestedQuery{path: path, query: query}
}

// ScoreMode sets how child scores affect the root document (avg, max, min, none, sum).
func (q *NestedQuery) ScoreMode(m string) *NestedQuery {
	q.scoreMode.assign(m)
	return q
}

// IgnoreUnmapped skips indices where the path is not mapped.
func (q *NestedQuery) IgnoreUnmapped(v bool) *NestedQuery {
	q.ignoreUnmapped.assign(v)
	return q
}

// InnerHits returns the matching nested objects with each hit.
func (q *NestedQuery) InnerHits(h *InnerHits) *NestedQuery {
	q.innerHits.assign(h)
	return q
}

// Boost sets the relevance boost.
func (q *NestedQuery) Boost(v float64) *NestedQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *NestedQuery) Name(name string) *NestedQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *NestedQuery) Source() (map[string]any, error) {
	query, err := sourceOf(q.query, "nested", "query")
	if err != nil {
		return nil, err
	}
	params := map[string]any{"path": q.path, "query": query}
	q.scoreMode.apply(params)
	q.ignoreUnmapped.apply(params)
	q.innerHits.apply(params)
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("nested", params), nil
}

// Clone deep-copies the inner query and inner hits.
func (q *NestedQuery) Clone() *NestedQuery {
	c := *q
	c.query = Clone(q.query)
	c.innerHits = q.innerHits.clone()
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *NestedQuery) CloneNode() Node { return q.Clone() }

// HasChildQuery matches parents whose children match a query.
type HasChildQuery struct {
	childType      string
	query          Node
	scoreMode      scoreModeParam
	minChildren    optional[int]
	maxChildren    optional[int]
	ignoreUnmapped ignoreUnmappedParam
	innerHits      innerHitsParam
	boost          boostParam
	name           nameParam
}

// HasChild creates a has_child query.
func HasChild(childType string, query Node) *HasChildQuery {
	return &HasChildQuery{childType: childType, query: query}
}

// ScoreMode sets how child scores are aggregated.
func (q *HasChildQuery) ScoreMode(m string) *HasChildQuery {
	q.scoreMode.assign(m)
	return q
}

// MinChildren sets the minimum number of matching children.
func (q *HasChildQuery) MinChildren(n int) *HasChildQuery {
	q.minChildren.assign(n)
	return q
}

// MaxChildren sets the maximum number of matching children.
func (q *HasChildQuery) MaxChildren(n int) *HasChildQuery {
	q.maxChildren.assign(n)
	return q
}

// IgnoreUnmapped skips indices without the child type.
func (q *HasChildQuery) IgnoreUnmapped(v bool) *HasChildQuery {
	q.ignoreUnmapped.assign(v)
	return q
}

// InnerHits returns the matching children with each hit.
func (q *HasChildQuery) InnerHits(h *InnerHits) *HasChildQuery {
	q.innerHits.assign(h)
	return q
}

// Boost sets the relevance boost.
func (q *HasChildQuery) Boost(v float64) *HasChildQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *HasChildQuery) Name(name string) *HasChildQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *HasChildQuery) Source() (map[string]any, error) {
	query, err := sourceOf(q.query, "has_child", "query")
	if err != nil {
		return nil, err
	}
	params := map[string]any{"type": q.childType, "query": query}
	q.scoreMode.apply(params)
	q.minChildren.put(params, "min_children")
	q.maxChildren.put(params, "max_children")
	q.ignoreUnmapped.apply(params)
	q.innerHits.apply(params)
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("has_child", params), nil
}

// Clone deep-copies the child query and inner hits.
func (q *HasChildQuery) Clone() *HasChildQuery {
	c := *q
	c.query = Clone(q.query)
	c.innerHits = q.innerHits.clone()
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *HasChildQuery) CloneNode() Node { return q.Clone() }

// HasParentQuery matches children whose parent matches a query.
type HasParentQuery struct {
	parentType     string
	query          Node
	score          optional[bool]
	ignoreUnmapped ignoreUnmappedParam
	innerHits      innerHitsParam
	boost          boostParam
	name           nameParam
}

// HasParent creates a has_parent query.
func HasParent(parentType string, query Node) *HasParentQuery {
	return &HasParentQuery{parentType: parentType, query: query}
}

// Score propagates the parent score to the child.
func (q *HasParentQuery) Score(v bool) *HasParentQuery {
	q.score.assign(v)
	return q
}

// IgnoreUnmapped skips indices without the parent type.
func (q *HasParentQuery) IgnoreUnmapped(v bool) *HasParentQuery {
	q.ignoreUnmapped.assign(v)
	return q
}

// InnerHits returns the matching parent with each hit.
func (q *HasParentQuery) InnerHits(h *InnerHits) *HasParentQuery {
	q.innerHits.assign(h)
	return q
}

// Boost sets the relevance boost.
func (q *HasParentQuery) Boost(v float64) *HasParentQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *HasParentQuery) Name(name string) *HasParentQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *HasParentQuery) Source() (map[string]any, error) {
	query, err := sourceOf(q.query, "has_parent", "query")
	if err != nil {
		return nil, err
	}
	params := map[string]any{"parent_type": q.parentType, "query": query}
	q.score.put(params, "score")
	q.ignoreUnmapped.apply(params)
	q.innerHits.apply(params)
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("has_parent", params), nil
}

// Clone deep-copies the parent query and inner hits.
func (q *HasParentQuery) Clone() *HasParentQuery {
	c := *q
	c.query = Clone(q.query)
	c.innerHits = q.innerHits.clone()
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *HasParentQuery) CloneNode() Node { return q.Clone() }

// ParentIDQuery matches children of one parent document.
type ParentIDQuery struct {
	childType      string
	id             string
	ignoreUnmapped ignoreUnmappedParam
	boost          boostParam
	name           nameParam
}

// ParentID creates a parent_id query.
func ParentID(childType, id string) *ParentIDQuery {
	return &ParentIDQuery{childType: childType, id: id}
}

// IgnoreUnmapped skips indices without the child type.
func (q *ParentIDQuery) IgnoreUnmapped(v bool) *ParentIDQuery {
	q.ignoreUnmapped.assign(v)
	return q
}

// Boost sets the relevance boost.
func (q *ParentIDQuery) Boost(v float64) *ParentIDQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *ParentIDQuery) Name(name string) *ParentIDQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *ParentIDQuery) Source() (map[string]any, error) {
	params := map[string]any{"type": q.childType, "id": q.id}
	q.ignoreUnmapped.apply(params)
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("parent_id", params), nil
}

// Clone returns a copy of the query.
func (q *ParentIDQuery) Clone() *ParentIDQuery {
	c := *q
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *ParentIDQuery) CloneNode() Node { return q.Clone() }
