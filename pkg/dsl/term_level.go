package dsl

import (
	"fmt"
	"slices"
)

// MatchAllQuery matches every document. Without a boost it serializes to {"match_all":{}}.
type MatchAllQuery struct {
	boost boostParam
	name  nameParam
}

// MatchAll creates a match_all query.
func MatchAll() *MatchAllQuery { return &MatchAllQuery{} }

// Boost sets the constant score of every match.
func (q *MatchAllQuery) Boost(v float64) *MatchAllQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name reported in matched_queries.
func (q *MatchAllQuery) Name(name string) *MatchAllQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *MatchAllQuery) Source() (map[string]any, error) {
	params := make(map[string]any)
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("match_all", params), nil
}

// Clone returns a copy of the query.
func (q *MatchAllQuery) Clone() *MatchAllQuery {
	c := *q
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *MatchAllQuery) CloneNode() Node { return q.Clone() }

// MatchNoneQuery matches no documents.
type MatchNoneQuery struct {
	name nameParam
}

// MatchNone creates a match_none query.
func MatchNone() *MatchNoneQuery { return &MatchNoneQuery{} }

// Name sets the query name.
func (q *MatchNoneQuery) Name(name string) *MatchNoneQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *MatchNoneQuery) Source() (map[string]any, error) {
	params := make(map[string]any)
	q.name.apply(params)
	return wrap("match_none", params), nil
}

// Clone returns a copy of the query.
func (q *MatchNoneQuery) Clone() *MatchNoneQuery {
	c := *q
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *MatchNoneQuery) CloneNode() Node { return q.Clone() }

// TermQuery matches an exact value in a field.
type TermQuery struct {
	field           string
	value           any
	boost           boostParam
	caseInsensitive caseInsensitiveParam
	name            nameParam
}

// Term creates a term query.
func Term(field string, value any) *TermQuery {
	return &TermQuery{field: field, value: value}
}

// Boost sets the relevance boost.
func (q *TermQuery) Boost(v float64) *TermQuery {
	q.boost.assign(v)
	return q
}

// CaseInsensitive enables ASCII case-insensitive matching.
func (q *TermQuery) CaseInsensitive(v bool) *TermQuery {
	q.caseInsensitive.assign(v)
	return q
}

// Name sets the query name.
func (q *TermQuery) Name(name string) *TermQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *TermQuery) Source() (map[string]any, error) {
	params := map[string]any{"value": q.value}
	q.boost.apply(params)
	q.caseInsensitive.apply(params)
	q.name.apply(params)
	return wrap("term", map[string]any{q.field: params}), nil
}

// Clone returns a copy of the query.
func (q *TermQuery) Clone() *TermQuery {
	c := *q
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *TermQuery) CloneNode() Node { return q.Clone() }

// TermsQuery matches any of several exact values.
type TermsQuery struct {
	field  string
	values []any
	boost  boostParam
	name   nameParam
}

// NewTermsQuery creates a terms query. The value list is required up front.
func NewTermsQuery(field string, values ...any) (*TermsQuery, error) {
	if len(values) == 0 {
		return nil, &EmptyCompositionError{Kind: "terms", Field: field}
	}
	return &TermsQuery{field: field, values: slices.Clone(values)}, nil
}

// Boost sets the relevance boost.
func (q *TermsQuery) Boost(v float64) *TermsQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *TermsQuery) Name(name string) *TermsQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *TermsQuery) Source() (map[string]any, error) {
	params := map[string]any{q.field: slices.Clone(q.values)}
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("terms", params), nil
}

// Clone returns a copy of the query.
func (q *TermsQuery) Clone() *TermsQuery {
	c := *q
	c.values = slices.Clone(q.values)
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *TermsQuery) CloneNode() Node { return q.Clone() }

var rangeBounds = []string{"gt", "gte", "lt", "lte"}

// RangeQuery matches values within bounds. At least one bound must be set before
// serialization.
type RangeQuery struct {
	field    string
	gt       optional[any]
	gte      optional[any]
	lt       optional[any]
	lte      optional[any]
	format   formatParam
	timeZone timeZoneParam
	relation relationParam
	boost    boostParam
	name     nameParam
}

// Range creates a range query on a field.
func Range(field string) *RangeQuery {
	return &RangeQuery{field: field}
}

// Gt sets the exclusive lower bound.
func (q *RangeQuery) Gt(v any) *RangeQuery {
	q.gt.assign(v)
	return q
}

// Gte sets the inclusive lower bound.
func (q *RangeQuery) Gte(v any) *RangeQuery {
	q.gte.assign(v)
	return q
}

// Lt sets the exclusive upper bound.
func (q *RangeQuery) Lt(v any) *RangeQuery {
	q.lt.assign(v)
	return q
}

// Lte sets the inclusive upper bound.
func (q *RangeQuery) Lte(v any) *RangeQuery {
	q.lte.assign(v)
	return q
}

// Format sets the date format used to parse date bounds.
func (q *RangeQuery) Format(f string) *RangeQuery {
	q.format.assign(f)
	return q
}

// TimeZone sets the time zone applied to date bounds.
func (q *RangeQuery) TimeZone(tz string) *RangeQuery {
	q.timeZone.assign(tz)
	return q
}

// Relation sets how range fields match (INTERSECTS, CONTAINS, WITHIN).
func (q *RangeQuery) Relation(r string) *RangeQuery {
	q.relation.assign(r)
	return q
}

// Boost sets the relevance boost.
func (q *RangeQuery) Boost(v float64) *RangeQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *RangeQuery) Name(name string) *RangeQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *RangeQuery) Source() (map[string]any, error) {
	if !q.gt.set && !q.gte.set && !q.lt.set && !q.lte.set {
		return nil, &MissingBoundError{Kind: "range", Field: q.field, Bounds: rangeBounds}
	}
	params := make(map[string]any)
	q.gt.put(params, "gt")
	q.gte.put(params, "gte")
	q.lt.put(params, "lt")
	q.lte.put(params, "lte")
	q.format.apply(params)
	q.timeZone.apply(params)
	q.relation.apply(params)
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("range", map[string]any{q.field: params}), nil
}

// Clone returns a copy of the query.
func (q *RangeQuery) Clone() *RangeQuery {
	c := *q
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *RangeQuery) CloneNode() Node { return q.Clone() }

// ExistsQuery matches documents that have an indexed value for a field.
type ExistsQuery struct {
	field string
	boost boostParam
	name  nameParam
}

// Exists creates an exists query.
func Exists(field string) *ExistsQuery { return &ExistsQuery{field: field} }

// Boost sets the relevance boost.
func (q *ExistsQuery) Boost(v float64) *ExistsQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *ExistsQuery) Name(name string) *ExistsQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *ExistsQuery) Source() (map[string]any, error) {
	params := map[string]any{"field": q.field}
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("exists", params), nil
}

// Clone returns a copy of the query.
func (q *ExistsQuery) Clone() *ExistsQuery {
	c := *q
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *ExistsQuery) CloneNode() Node { return q.Clone() }

// patternQuery is the shared shape of prefix and wildcard queries.
type patternQuery struct {
	kind            string
	field           string
	value           string
	rewrite         rewriteParam
	caseInsensitive caseInsensitiveParam
	boost           boostParam
	name            nameParam
}

func (q *patternQuery) source() map[string]any {
	params := map[string]any{"value": q.value}
	q.rewrite.apply(params)
	q.caseInsensitive.apply(params)
	q.boost.apply(params)
	q.name.apply(params)
	return wrap(q.kind, map[string]any{q.field: params})
}

// PrefixQuery matches terms starting with a prefix.
type PrefixQuery struct {
	patternQuery
}

// Prefix creates a prefix query.
func Prefix(field, prefix string) *PrefixQuery {
	return &PrefixQuery{patternQuery{kind: "prefix", field: field, value: prefix}}
}

// Rewrite sets the multi-term rewrite method.
func (q *PrefixQuery) Rewrite(r string) *PrefixQuery {
	q.rewrite.assign(r)
	return q
}

// CaseInsensitive enables ASCII case-insensitive matching.
func (q *PrefixQuery) CaseInsensitive(v bool) *PrefixQuery {
	q.caseInsensitive.assign(v)
	return q
}

// Boost sets the relevance boost.
func (q *PrefixQuery) Boost(v float64) *PrefixQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *PrefixQuery) Name(name string) *PrefixQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *PrefixQuery) Source() (map[string]any, error) { return q.source(), nil }

// Clone returns a copy of the query.
func (q *PrefixQuery) Clone() *PrefixQuery {
	c := *q
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *PrefixQuery) CloneNode() Node { return q.Clone() }

// WildcardQuery matches terms against a pattern with * and ? wildcards.
type WildcardQuery struct {
	patternQuery
}

// Wildcard creates a wildcard query.
func Wildcard(field, pattern string) *WildcardQuery {
	return &WildcardQuery{patternQuery{kind: "wildcard", field: field, value: pattern}}
}

// Rewrite sets the multi-term rewrite method.
func (q *WildcardQuery) Rewrite(r string) *WildcardQuery {
	q.rewrite.assign(r)
	return q
}

// CaseInsensitive enables ASCII case-insensitive matching.
func (q *WildcardQuery) CaseInsensitive(v bool) *WildcardQuery {
	q.caseInsensitive.assign(v)
	return q
}

// Boost sets the relevance boost.
func (q *WildcardQuery) Boost(v float64) *WildcardQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *WildcardQuery) Name(name string) *WildcardQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *WildcardQuery) Source() (map[string]any, error) { return q.source(), nil }

// Clone returns a copy of the query.
func (q *WildcardQuery) Clone() *WildcardQuery {
	c := *q
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *WildcardQuery) CloneNode() Node { return q.Clone() }

// RegexpQuery matches terms against a regular expression.
type RegexpQuery struct {
	field                 string
	pattern               string
	flags                 optional[string]
	maxDeterminizedStates optional[int]
	rewrite               rewriteParam
	caseInsensitive       caseInsensitiveParam
	boost                 boostParam
	name                  nameParam
}

// Regexp creates a regexp query.
func Regexp(field, pattern string) *RegexpQuery {
	return &RegexpQuery{field: field, pattern: pattern}
}

// Flags enables optional regexp operators, e.g. "ALL" or "INTERSECTION|COMPLEMENT".
func (q *RegexpQuery) Flags(f string) *RegexpQuery {
	q.flags.assign(f)
	return q
}

// MaxDeterminizedStates limits automaton size.
func (q *RegexpQuery) MaxDeterminizedStates(n int) *RegexpQuery {
	q.maxDeterminizedStates.assign(n)
	return q
}

// Rewrite sets the multi-term rewrite method.
func (q *RegexpQuery) Rewrite(r string) *RegexpQuery {
	q.rewrite.assign(r)
	return q
}

// CaseInsensitive enables ASCII case-insensitive matching.
func (q *RegexpQuery) CaseInsensitive(v bool) *RegexpQuery {
	q.caseInsensitive.assign(v)
	return q
}

// Boost sets the relevance boost.
func (q *RegexpQuery) Boost(v float64) *RegexpQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *RegexpQuery) Name(name string) *RegexpQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *RegexpQuery) Source() (map[string]any, error) {
	params := map[string]any{"value": q.pattern}
	q.flags.put(params, "flags")
	q.maxDeterminizedStates.put(params, "max_determinized_states")
	q.rewrite.apply(params)
	q.caseInsensitive.apply(params)
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("regexp", map[string]any{q.field: params}), nil
}

// Clone returns a copy of the query.
func (q *RegexpQuery) Clone() *RegexpQuery {
	c := *q
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *RegexpQuery) CloneNode() Node { return q.Clone() }

// FuzzyQuery matches terms within an edit distance.
type FuzzyQuery struct {
	field          string
	value          any
	fuzziness      fuzzinessParam
	prefixLength   prefixLengthParam
	maxExpansions  maxExpansionsParam
	transpositions transpositionsParam
	rewrite        rewriteParam
	boost          boostParam
	name           nameParam
}

// Fuzzy creates a fuzzy query.
func Fuzzy(field string, value any) *FuzzyQuery {
	return &FuzzyQuery{field: field, value: value}
}

// Fuzziness sets the allowed edit distance ("AUTO", "1", "2").
func (q *FuzzyQuery) Fuzziness(f string) *FuzzyQuery {
	q.fuzziness.assign(f)
	return q
}

// PrefixLength sets the number of leading characters left unchanged.
func (q *FuzzyQuery) PrefixLength(n int) *FuzzyQuery {
	q.prefixLength.assign(n)
	return q
}

// MaxExpansions caps the number of generated variations.
func (q *FuzzyQuery) MaxExpansions(n int) *FuzzyQuery {
	q.maxExpansions.assign(n)
	return q
}

// Transpositions toggles swapped adjacent characters as one edit.
func (q *FuzzyQuery) Transpositions(v bool) *FuzzyQuery {
	q.transpositions.assign(v)
	return q
}

// Rewrite sets the multi-term rewrite method.
func (q *FuzzyQuery) Rewrite(r string) *FuzzyQuery {
	q.rewrite.assign(r)
	return q
}

// Boost sets the relevance boost.
func (q *FuzzyQuery) Boost(v float64) *FuzzyQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *FuzzyQuery) Name(name string) *FuzzyQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *FuzzyQuery) Source() (map[string]any, error) {
	params := map[string]any{"value": q.value}
	q.fuzziness.apply(params)
	q.prefixLength.apply(params)
	q.maxExpansions.apply(params)
	q.transpositions.apply(params)
	q.rewrite.apply(params)
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("fuzzy", map[string]any{q.field: params}), nil
}

// Clone returns a copy of the query.
func (q *FuzzyQuery) Clone() *FuzzyQuery {
	c := *q
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *FuzzyQuery) CloneNode() Node { return q.Clone() }

// IdsQuery matches documents by _id.
type IdsQuery struct {
	ids   []string
	boost boostParam
	name  nameParam
}

// Ids creates an ids query. More ids can be added later with Add.
func Ids(ids ...string) *IdsQuery {
	return &IdsQuery{ids: ids}
}

// Add appends ids.
func (q *IdsQuery) Add(ids ...string) *IdsQuery {
	q.ids = append(q.ids, ids...)
	return q
}

// Boost sets the relevance boost.
func (q *IdsQuery) Boost(v float64) *IdsQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *IdsQuery) Name(name string) *IdsQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *IdsQuery) Source() (map[string]any, error) {
	values := q.ids
	if values == nil {
		values = []string{}
	}
	params := map[string]any{"values": values}
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("ids", params), nil
}

// Clone returns a copy of the query.
func (q *IdsQuery) Clone() *IdsQuery {
	c := *q
	c.ids = cloneStrings(q.ids)
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *IdsQuery) CloneNode() Node { return q.Clone() }

// GeoDistanceQuery matches geo points within a distance of an origin.
type GeoDistanceQuery struct {
	field            string
	lat, lon         float64
	distance         string
	distanceType     optional[string]
	validationMethod optional[string]
	boost            boostParam
	name             nameParam
}

// GeoDistance creates a geo_distance query; distance uses engine units, e.g. "12km".
func GeoDistance(field string, lat, lon float64, distance string) *GeoDistanceQuery {
	return &GeoDistanceQuery{field: field, lat: lat, lon: lon, distance: distance}
}

// DistanceType sets arc or plane distance computation.
func (q *GeoDistanceQuery) DistanceType(t string) *GeoDistanceQuery {
	q.distanceType.assign(t)
	return q
}

// ValidationMethod sets STRICT, IGNORE_MALFORMED or COERCE.
func (q *GeoDistanceQuery) ValidationMethod(m string) *GeoDistanceQuery {
	q.validationMethod.assign(m)
	return q
}

// Boost sets the relevance boost.
func (q *GeoDistanceQuery) Boost(v float64) *GeoDistanceQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *GeoDistanceQuery) Name(name string) *GeoDistanceQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *GeoDistanceQuery) Source() (map[string]any, error) {
	if q.distance == "" {
		return nil, &InvalidCompositionError{Kind: "geo_distance", Reason: fmt.Sprintf("distance is required for %q", q.field)}
	}
	params := map[string]any{
		"distance": q.distance,
		q.field:    map[string]any{"lat": q.lat, "lon": q.lon},
	}
	q.distanceType.put(params, "distance_type")
	q.validationMethod.put(params, "validation_method")
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("geo_distance", params), nil
}

// Clone returns a copy of the query.
func (q *GeoDistanceQuery) Clone() *GeoDistanceQuery {
	c := *q
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *GeoDistanceQuery) CloneNode() Node { return q.Clone() }
