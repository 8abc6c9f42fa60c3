package dsl

import (
	"fmt"
	"maps"
	"slices"
)

// aggBase carries the named sub-aggregations and metadata every aggregation may have.
// Attaching a sub-aggregation under an existing name replaces it.
type aggBase struct {
	subNames []string
	subs     map[string]Node
	meta     map[string]any
}

func (a *aggBase) setSub(name string, n Node) {
	if a.subs == nil {
		a.subs = make(map[string]Node)
	}
	if _, ok := a.subs[name]; !ok {
		a.subNames = append(a.subNames, name)
	}
	a.subs[name] = n
}

func (a *aggBase) setMeta(key string, v any) {
	if a.meta == nil {
		a.meta = make(map[string]any)
	}
	a.meta[key] = v
}

// wrap builds {kind: params} and attaches "aggs" and "meta" when present.
func (a *aggBase) wrap(kind string, params map[string]any) (map[string]any, error) {
	out := map[string]any{kind: params}
	if len(a.subNames) > 0 {
		aggs := make(map[string]any, len(a.subNames))
		for _, name := range a.subNames {
			src, err := sourceOf(a.subs[name], kind, "aggs."+name)
			if err != nil {
				return nil, err
			}
			aggs[name] = src
		}
		out["aggs"] = aggs
	}
	if len(a.meta) > 0 {
		out["meta"] = a.meta
	}
	return out, nil
}

func (a aggBase) clone() aggBase {
	c := aggBase{
		subNames: slices.Clone(a.subNames),
		meta:     maps.Clone(a.meta),
	}
	if a.subs != nil {
		c.subs = make(map[string]Node, len(a.subs))
		for name, n := range a.subs {
			c.subs[name] = Clone(n)
		}
	}
	return c
}

// SubAggregationNames returns the attached sub-aggregation names in attachment order.
func (a *aggBase) SubAggregationNames() []string { return slices.Clone(a.subNames) }

type termsOrder struct {
	key string
	dir SortOrder
}

// TermsAggregation buckets documents by the distinct values of a field.
type TermsAggregation struct {
	aggBase
	field       string
	script      scriptParam
	size        sizeParam
	shardSize   optional[int]
	minDocCount minDocCountParam
	missing     missingParam
	include     optional[any]
	exclude     optional[any]
	order       []termsOrder
}

// TermsAgg creates a terms aggregation.
func TermsAgg(field string) *TermsAggregation {
	return &TermsAggregation{field: field}
}

// Script buckets by a script instead of a field.
func (a *TermsAggregation) Script(s *Script) *TermsAggregation {
	a.script.assign(s)
	return a
}

// Size sets the number of buckets returned.
func (a *TermsAggregation) Size(n int) *TermsAggregation {
	a.size.assign(n)
	return a
}

// ShardSize sets the number of buckets collected per shard.
func (a *TermsAggregation) ShardSize(n int) *TermsAggregation {
	a.shardSize.assign(n)
	return a
}

// MinDocCount drops buckets with fewer documents.
func (a *TermsAggregation) MinDocCount(n int) *TermsAggregation {
	a.minDocCount.assign(n)
	return a
}

// Missing buckets documents without the field under v.
func (a *TermsAggregation) Missing(v any) *TermsAggregation {
	a.missing.assign(v)
	return a
}

// Include filters bucket keys with a regexp string or an explicit list.
func (a *TermsAggregation) Include(v any) *TermsAggregation {
	a.include.assign(v)
	return a
}

// Exclude drops bucket keys with a regexp string or an explicit list.
func (a *TermsAggregation) Exclude(v any) *TermsAggregation {
	a.exclude.assign(v)
	return a
}

// Order appends a bucket ordering, e.g. ("_count", Desc) or ("_key", Asc).
func (a *TermsAggregation) Order(key string, dir SortOrder) *TermsAggregation {
	a.order = append(a.order, termsOrder{key: key, dir: dir})
	return a
}

// SubAggregation attaches a named child aggregation.
func (a *TermsAggregation) SubAggregation(name string, n Node) *TermsAggregation {
	a.setSub(name, n)
	return a
}

// Meta attaches opaque metadata returned with the response.
func (a *TermsAggregation) Meta(key string, v any) *TermsAggregation {
	a.setMeta(key, v)
	return a
}

// Source implements Node.
func (a *TermsAggregation) Source() (map[string]any, error) {
	params := make(map[string]any)
	if a.field != "" {
		params["field"] = a.field
	}
	a.script.apply(params)
	a.size.apply(params)
	a.shardSize.put(params, "shard_size")
	a.minDocCount.apply(params)
	a.missing.apply(params)
	a.include.put(params, "include")
	a.exclude.put(params, "exclude")
	if len(a.order) > 0 {
		order := make([]any, 0, len(a.order))
		for _, o := range a.order {
			order = append(order, map[string]any{o.key: string(o.dir)})
		}
		params["order"] = order
	}
	return a.wrap("terms", params)
}

// Clone deep-copies sub-aggregations.
func (a *TermsAggregation) Clone() *TermsAggregation {
	c := *a
	c.aggBase = a.aggBase.clone()
	c.script = a.script.clone()
	c.order = slices.Clone(a.order)
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (a *TermsAggregation) CloneNode() Node { return a.Clone() }

// HistogramAggregation buckets numeric values into fixed-width intervals.
type HistogramAggregation struct {
	aggBase
	field       string
	interval    float64
	offset      optional[float64]
	minDocCount minDocCountParam
	missing     missingParam
	keyed       keyedParam
	bounds      optional[map[string]any]
}

// HistogramAgg creates a histogram aggregation.
func HistogramAgg(field string, interval float64) *HistogramAggregation {
	return &HistogramAggregation{field: field, interval: interval}
}

// Offset shifts bucket boundaries.
func (a *HistogramAggregation) Offset(v float64) *HistogramAggregation {
	a.offset.assign(v)
	return a
}

// MinDocCount drops buckets with fewer documents.
func (a *HistogramAggregation) MinDocCount(n int) *HistogramAggregation {
	a.minDocCount.assign(n)
	return a
}

// Missing buckets documents without the field under v.
func (a *HistogramAggregation) Missing(v any) *HistogramAggregation {
	a.missing.assign(v)
	return a
}

// Keyed returns buckets as an object instead of a list.
func (a *HistogramAggregation) Keyed(v bool) *HistogramAggregation {
	a.keyed.assign(v)
	return a
}

// ExtendedBounds forces buckets between lo and hi.
func (a *HistogramAggregation) ExtendedBounds(lo, hi float64) *HistogramAggregation {
	a.bounds.assign(map[string]any{"min": lo, "max": hi})
	return a
}

// SubAggregation attaches a named child aggregation.
func (a *HistogramAggregation) SubAggregation(name string, n Node) *HistogramAggregation {
	a.setSub(name, n)
	return a
}

// Meta attaches opaque metadata returned with the response.
func (a *HistogramAggregation) Meta(key string, v any) *HistogramAggregation {
	a.setMeta(key, v)
	return a
}

// Source implements Node.
func (a *HistogramAggregation) Source() (map[string]any, error) {
	if a.interval <= 0 {
		return nil, &InvalidCompositionError{Kind: "histogram", Reason: "interval must be positive"}
	}
	params := map[string]any{"field": a.field, "interval": a.interval}
	a.offset.put(params, "offset")
	a.minDocCount.apply(params)
	a.missing.apply(params)
	a.keyed.apply(params)
	a.bounds.put(params, "extended_bounds")
	return a.wrap("histogram", params)
}

// Clone deep-copies sub-aggregations.
func (a *HistogramAggregation) Clone() *HistogramAggregation {
	c := *a
	c.aggBase = a.aggBase.clone()
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (a *HistogramAggregation) CloneNode() Node { return a.Clone() }

// DateHistogramAggregation buckets dates by calendar or fixed intervals. Exactly one
// interval kind must be set.
type DateHistogramAggregation struct {
	aggBase
	field            string
	calendarInterval optional[string]
	fixedInterval    optional[string]
	format           formatParam
	timeZone         timeZoneParam
	offset           optional[string]
	minDocCount      minDocCountParam
	missing          missingParam
	keyed            keyedParam
}

// DateHistogramAgg creates a date_histogram aggregation.
func DateHistogramAgg(field string) *DateHistogramAggregation {
	return &DateHistogramAggregation{field: field}
}

// CalendarInterval sets a calendar-aware interval such as "1M".
func (a *DateHistogramAggregation) CalendarInterval(v string) *DateHistogramAggregation {
	a.calendarInterval.assign(v)
	return a
}

// FixedInterval sets a fixed interval such as "30m".
func (a *DateHistogramAggregation) FixedInterval(v string) *DateHistogramAggregation {
	a.fixedInterval.assign(v)
	return a
}

// Format sets the key_as_string format.
func (a *DateHistogramAggregation) Format(f string) *DateHistogramAggregation {
	a.format.assign(f)
	return a
}

// TimeZone sets the bucketing time zone.
func (a *DateHistogramAggregation) TimeZone(tz string) *DateHistogramAggregation {
	a.timeZone.assign(tz)
	return a
}

// Offset shifts bucket boundaries, e.g. "+6h".
func (a *DateHistogramAggregation) Offset(v string) *DateHistogramAggregation {
	a.offset.assign(v)
	return a
}

// MinDocCount drops buckets with fewer documents.
func (a *DateHistogramAggregation) MinDocCount(n int) *DateHistogramAggregation {
	a.minDocCount.assign(n)
	return a
}

// Missing buckets documents without the field under v.
func (a *DateHistogramAggregation) Missing(v any) *DateHistogramAggregation {
	a.missing.assign(v)
	return a
}

// Keyed returns buckets as an object instead of a list.
func (a *DateHistogramAggregation) Keyed(v bool) *DateHistogramAggregation {
	a.keyed.assign(v)
	return a
}

// SubAggregation attaches a named child aggregation.
func (a *DateHistogramAggregation) SubAggregation(name string, n Node) *DateHistogramAggregation {
	a.setSub(name, n)
	return a
}

// Meta attaches opaque metadata returned with the response.
func (a *DateHistogramAggregation) Meta(key string, v any) *DateHistogramAggregation {
	a.setMeta(key, v)
	return a
}

// Source implements Node.
func (a *DateHistogramAggregation) Source() (map[string]any, error) {
	if a.calendarInterval.set == a.fixedInterval.set {
		return nil, &InvalidCompositionError{
			Kind:   "date_histogram",
			Reason: "exactly one of calendar_interval and fixed_interval must be set",
		}
	}
	params := map[string]any{"field": a.field}
	a.calendarInterval.put(params, "calendar_interval")
	a.fixedInterval.put(params, "fixed_interval")
	a.format.apply(params)
	a.timeZone.apply(params)
	a.offset.put(params, "offset")
	a.minDocCount.apply(params)
	a.missing.apply(params)
	a.keyed.apply(params)
	return a.wrap("date_histogram", params)
}

// Clone deep-copies sub-aggregations.
func (a *DateHistogramAggregation) Clone() *DateHistogramAggregation {
	c := *a
	c.aggBase = a.aggBase.clone()
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (a *DateHistogramAggregation) CloneNode() Node { return a.Clone() }

type rangeBucket struct {
	key  string
	from any
	to   any
}

var rangeBucketBounds = []string{"from", "to"}

// RangeAggregation buckets values into caller-defined ranges. It needs at least one range,
// and every range needs a from or a to.
type RangeAggregation struct {
	aggBase
	field   string
	date    bool
	ranges  []rangeBucket
	format  formatParam
	keyed   keyedParam
	missing missingParam
}

// RangeAgg creates a range aggregation.
func RangeAgg(field string) *RangeAggregation {
	return &RangeAggregation{field: field}
}

// DateRangeAgg creates a date_range aggregation; bounds may be date math expressions.
func DateRangeAgg(field string) *RangeAggregation {
	return &RangeAggregation{field: field, date: true}
}

// AddRange appends a bucket; nil leaves that side open.
func (a *RangeAggregation) AddRange(from, to any) *RangeAggregation {
	a.ranges = append(a.ranges, rangeBucket{from: from, to: to})
	return a
}

// AddKeyedRange appends a bucket with an explicit key.
func (a *RangeAggregation) AddKeyedRange(key string, from, to any) *RangeAggregation {
	a.ranges = append(a.ranges, rangeBucket{key: key, from: from, to: to})
	return a
}

// Format sets the format of date bounds and keys.
func (a *RangeAggregation) Format(f string) *RangeAggregation {
	a.format.assign(f)
	return a
}

// Keyed returns buckets as an object instead of a list.
func (a *RangeAggregation) Keyed(v bool) *RangeAggregation {
	a.keyed.assign(v)
	return a
}

// Missing treats documents without the field as having v.
func (a *RangeAggregation) Missing(v any) *RangeAggregation {
	a.missing.assign(v)
	return a
}

// SubAggregation attaches a named child aggregation.
func (a *RangeAggregation) SubAggregation(name string, n Node) *RangeAggregation {
	a.setSub(name, n)
	return a
}

// Meta attaches opaque metadata returned with the response.
func (a *RangeAggregation) Meta(key string, v any) *RangeAggregation {
	a.setMeta(key, v)
	return a
}

// Source implements Node.
func (a *RangeAggregation) Source() (map[string]any, error) {
	kind := "range"
	if a.date {
		kind = "date_range"
	}
	if len(a.ranges) == 0 {
		return nil, &EmptyCompositionError{Kind: kind, Field: "ranges"}
	}
	ranges := make([]any, 0, len(a.ranges))
	for _, r := range a.ranges {
		if r.from == nil && r.to == nil {
			return nil, &MissingBoundError{Kind: kind, Field: a.field, Bounds: rangeBucketBounds}
		}
		bucket := make(map[string]any, 3)
		if r.key != "" {
			bucket["key"] = r.key
		}
		if r.from != nil {
			bucket["from"] = r.from
		}
		if r.to != nil {
			bucket["to"] = r.to
		}
		ranges = append(ranges, bucket)
	}
	params := map[string]any{"field": a.field, "ranges": ranges}
	a.format.apply(params)
	a.keyed.apply(params)
	a.missing.apply(params)
	return a.wrap(kind, params)
}

// Clone deep-copies sub-aggregations and the range list.
func (a *RangeAggregation) Clone() *RangeAggregation {
	c := *a
	c.aggBase = a.aggBase.clone()
	c.ranges = slices.Clone(a.ranges)
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (a *RangeAggregation) CloneNode() Node { return a.Clone() }

// FilterAggregation narrows its sub-aggregations to documents matching a query.
type FilterAggregation struct {
	aggBase
	filter Node
}

// FilterAgg creates a filter aggregation.
func FilterAgg(filter Node) *FilterAggregation {
	return &FilterAggregation{filter: filter}
}

// SubAggregation attaches a named child aggregation.
func (a *FilterAggregation) SubAggregation(name string, n Node) *FilterAggregation {
	a.setSub(name, n)
	return a
}

// Meta attaches opaque metadata returned with the response.
func (a *FilterAggregation) Meta(key string, v any) *FilterAggregation {
	a.setMeta(key, v)
	return a
}

// Source implements Node. The filter query itself is the parameter map.
func (a *FilterAggregation) Source() (map[string]any, error) {
	filter, err := sourceOf(a.filter, "filter", "filter")
	if err != nil {
		return nil, err
	}
	return a.wrap("filter", filter)
}

// Clone deep-copies the filter and sub-aggregations.
func (a *FilterAggregation) Clone() *FilterAggregation {
	c := *a
	c.aggBase = a.aggBase.clone()
	c.filter = Clone(a.filter)
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (a *FilterAggregation) CloneNode() Node { return a.Clone() }

// FiltersAggregation creates one bucket per named filter. It needs at least one filter.
type FiltersAggregation struct {
	aggBase
	names          []string
	filters        map[string]Node
	otherBucket    optional[bool]
	otherBucketKey optional[string]
}

// FiltersAgg creates a filters aggregation.
func FiltersAgg() *FiltersAggregation {
	return &FiltersAggregation{}
}

// Filter adds or replaces the bucket named name.
func (a *FiltersAggregation) Filter(name string, n Node) *FiltersAggregation {
	if a.filters == nil {
		a.filters = make(map[string]Node)
	}
	if _, ok := a.filters[name]; !ok {
		a.names = append(a.names, name)
	}
	a.filters[name] = n
	return a
}

// OtherBucket adds a bucket for documents matching no filter.
func (a *FiltersAggregation) OtherBucket(v bool) *FiltersAggregation {
	a.otherBucket.assign(v)
	return a
}

// OtherBucketKey names the other bucket and enables it.
func (a *FiltersAggregation) OtherBucketKey(key string) *FiltersAggregation {
	a.otherBucketKey.assign(key)
	return a
}

// SubAggregation attaches a named child aggregation.
func (a *FiltersAggregation) SubAggregation(name string, n Node) *FiltersAggregation {
	a.setSub(name, n)
	return a
}

// Meta attaches opaque metadata returned with the response.
func (a *FiltersAggregation) Meta(key string, v any) *FiltersAggregation {
	a.setMeta(key, v)
	return a
}

// Source implements Node.
func (a *FiltersAggregation) Source() (map[string]any, error) {
	if len(a.names) == 0 {
		return nil, &EmptyCompositionError{Kind: "filters", Field: "filters"}
	}
	filters := make(map[string]any, len(a.names))
	for _, name := range a.names {
		src, err := sourceOf(a.filters[name], "filters", "filters."+name)
		if err != nil {
			return nil, err
		}
		filters[name] = src
	}
	params := map[string]any{"filters": filters}
	a.otherBucket.put(params, "other_bucket")
	a.otherBucketKey.put(params, "other_bucket_key")
	return a.wrap("filters", params)
}

// Clone deep-copies every filter and sub-aggregation.
func (a *FiltersAggregation) Clone() *FiltersAggregation {
	c := *a
	c.aggBase = a.aggBase.clone()
	c.names = slices.Clone(a.names)
	if a.filters != nil {
		c.filters = make(map[string]Node, len(a.filters))
		for name, n := range a.filters {
			c.filters[name] = Clone(n)
		}
	}
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (a *FiltersAggregation) CloneNode() Node { return a.Clone() }

type compositeSource struct {
	name string
	node Node
}

// CompositeAggregation pages through every bucket combination of its value sources.
// It needs at least one source.
type CompositeAggregation struct {
	aggBase
	sources []compositeSource
	size    sizeParam
	after   optional[map[string]any]
}

// CompositeAgg creates a composite aggregation.
func CompositeAgg() *CompositeAggregation {
	return &CompositeAggregation{}
}

// AddSource appends a named value source, typically a terms, histogram or date_histogram
// aggregation.
func (a *CompositeAggregation) AddSource(name string, n Node) *CompositeAggregation {
	a.sources = append(a.sources, compositeSource{name: name, node: n})
	return a
}

// Size sets the page size.
func (a *CompositeAggregation) Size(n int) *CompositeAggregation {
	a.size.assign(n)
	return a
}

// After resumes after the given after_key.
func (a *CompositeAggregation) After(key map[string]any) *CompositeAggregation {
	a.after.assign(key)
	return a
}

// SubAggregation attaches a named child aggregation.
func (a *CompositeAggregation) SubAggregation(name string, n Node) *CompositeAggregation {
	a.setSub(name, n)
	return a
}

// Meta attaches opaque metadata returned with the response.
func (a *CompositeAggregation) Meta(key string, v any) *CompositeAggregation {
	a.setMeta(key, v)
	return a
}

// Source implements Node.
func (a *CompositeAggregation) Source() (map[string]any, error) {
	if len(a.sources) == 0 {
		return nil, &EmptyCompositionError{Kind: "composite", Field: "sources"}
	}
	sources := make([]any, 0, len(a.sources))
	for i, s := range a.sources {
		src, err := sourceOf(s.node, "composite", fmt.Sprintf("sources[%d]", i))
		if err != nil {
			return nil, err
		}
		sources = append(sources, map[string]any{s.name: src})
	}
	params := map[string]any{"sources": sources}
	a.size.apply(params)
	a.after.put(params, "after")
	return a.wrap("composite", params)
}

// Clone deep-copies every source and sub-aggregation.
func (a *CompositeAggregation) Clone() *CompositeAggregation {
	c := *a
	c.aggBase = a.aggBase.clone()
	if a.sources != nil {
		c.sources = make([]compositeSource, len(a.sources))
		for i, s := range a.sources {
			c.sources[i] = compositeSource{name: s.name, node: Clone(s.node)}
		}
	}
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (a *CompositeAggregation) CloneNode() Node { return a.Clone() }

// GlobalAggregation escapes the search query scope. It has no parameters.
type GlobalAggregation struct {
	aggBase
}

// GlobalAgg creates a global aggregation.
func GlobalAgg() *GlobalAggregation {
	return &GlobalAggregation{}
}

// SubAggregation attaches a named child aggregation.
func (a *GlobalAggregation) SubAggregation(name string, n Node) *GlobalAggregation {
	a.setSub(name, n)
	return a
}

// Meta attaches opaque metadata returned with the response.
func (a *GlobalAggregation) Meta(key string, v any) *GlobalAggregation {
	a.setMeta(key, v)
	return a
}

// Source implements Node.
func (a *GlobalAggregation) Source() (map[string]any, error) {
	return a.wrap("global", map[string]any{})
}

// Clone deep-copies sub-aggregations.
func (a *GlobalAggregation) Clone() *GlobalAggregation {
	return &GlobalAggregation{aggBase: a.aggBase.clone()}
}

// CloneNode implements the clone discipline for Node values.
func (a *GlobalAggregation) CloneNode() Node { return a.Clone() }

// NestedAggregation aggregates nested objects under path.
type NestedAggregation struct {
	aggBase
	path    string
	reverse bool
}

// NestedAgg creates a nested aggregation.
func NestedAgg(path string) *NestedAggregation {
	return &NestedAggregation{path: path}
}

// ReverseNestedAgg creates a reverse_nested aggregation. An empty path joins back to the root.
func ReverseNestedAgg(path string) *NestedAggregation {
	return &NestedAggregation{path: path, reverse: true}
}

// SubAggregation attaches a named child aggregation.
func (a *NestedAggregation) SubAggregation(name string, n Node) *NestedAggregation {
	a.setSub(name, n)
	return a
}

// Meta attaches opaque metadata returned with the response.
func (a *NestedAggregation) Meta(key string, v any) *NestedAggregation {
	a.setMeta(key, v)
	return a
}

// Source implements Node.
func (a *NestedAggregation) Source() (map[string]any, error) {
	params := make(map[string]any, 1)
	if a.reverse {
		if a.path != "" {
			params["path"] = a.path
		}
		return a.wrap("reverse_nested", params)
	}
	if a.path == "" {
		return nil, &InvalidCompositionError{Kind: "nested", Reason: "path is required"}
	}
	params["path"] = a.path
	return a.wrap("nested", params)
}

// Clone deep-copies sub-aggregations.
func (a *NestedAggregation) Clone() *NestedAggregation {
	c := *a
	c.aggBase = a.aggBase.clone()
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (a *NestedAggregation) CloneNode() Node { return a.Clone() }

// MissingAggregation buckets documents without a value for field.
type MissingAggregation struct {
	aggBase
	field string
}

// MissingAgg creates a missing aggregation.
func MissingAgg(field string) *MissingAggregation {
	return &MissingAggregation{field: field}
}

// SubAggregation attaches a named child aggregation.
func (a *MissingAggregation) SubAggregation(name string, n Node) *MissingAggregation {
	a.setSub(name, n)
	return a
}

// Meta attaches opaque metadata returned with the response.
func (a *MissingAggregation) Meta(key string, v any) *MissingAggregation {
	a.setMeta(key, v)
	return a
}

// Source implements Node.
func (a *MissingAggregation) Source() (map[string]any, error) {
	return a.wrap("missing", map[string]any{"field": a.field})
}

// Clone deep-copies sub-aggregations.
func (a *MissingAggregation) Clone() *MissingAggregation {
	c := *a
	c.aggBase = a.aggBase.clone()
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (a *MissingAggregation) CloneNode() Node { return a.Clone() }
