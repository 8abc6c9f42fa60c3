package dsl

import "slices"

// MetricAggregation computes a single- or multi-value metric over a field or script:
// avg, sum, min, max, value_count, stats or extended_stats.
type MetricAggregation struct {
	aggBase
	kind    string
	field   string
	script  scriptParam
	missing missingParam
	format  formatParam
}

func newMetric(kind, field string) *MetricAggregation {
	return &MetricAggregation{kind: kind, field: field}
}

// AvgAgg creates an avg aggregation.
func AvgAgg(field string) *MetricAggregation { return newMetric("avg", field) }

// SumAgg creates a sum aggregation.
func SumAgg(field string) *MetricAggregation { return newMetric("sum", field) }

// MinAgg creates a min aggregation.
func MinAgg(field string) *MetricAggregation { return newMetric("min", field) }

// MaxAgg creates a max aggregation.
func MaxAgg(field string) *MetricAggregation { return newMetric("max", field) }

// ValueCountAgg creates a value_count aggregation.
func ValueCountAgg(field string) *MetricAggregation { return newMetric("value_count", field) }

// StatsAgg creates a stats aggregation.
func StatsAgg(field string) *MetricAggregation { return newMetric("stats", field) }

// ExtendedStatsAgg creates an extended_stats aggregation.
func ExtendedStatsAgg(field string) *MetricAggregation { return newMetric("extended_stats", field) }

// Script computes the metric from a script instead of, or on top of, the field.
func (a *MetricAggregation) Script(s *Script) *MetricAggregation {
	a.script.assign(s)
	return a
}

// Missing treats documents without the field as having v.
func (a *MetricAggregation) Missing(v any) *MetricAggregation {
	a.missing.assign(v)
	return a
}

// Format sets the value_as_string format.
func (a *MetricAggregation) Format(f string) *MetricAggregation {
	a.format.assign(f)
	return a
}

// SubAggregation attaches a named child aggregation.
func (a *MetricAggregation) SubAggregation(name string, n Node) *MetricAggregation {
	a.setSub(name, n)
	return a
}

// Meta attaches opaque metadata returned with the response.
func (a *MetricAggregation) Meta(key string, v any) *MetricAggregation {
	a.setMeta(key, v)
	return a
}

// Source implements Node.
func (a *MetricAggregation) Source() (map[string]any, error) {
	if a.field == "" && a.script.script == nil {
		return nil, &InvalidCompositionError{Kind: a.kind, Reason: "field or script is required"}
	}
	params := make(map[string]any)
	if a.field != "" {
		params["field"] = a.field
	}
	a.script.apply(params)
	a.missing.apply(params)
	a.format.apply(params)
	return a.wrap(a.kind, params)
}

// Clone deep-copies the script and sub-aggregations.
func (a *MetricAggregation) Clone() *MetricAggregation {
	c := *a
	c.aggBase = a.aggBase.clone()
	c.script = a.script.clone()
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (a *MetricAggregation) CloneNode() Node { return a.Clone() }

// CardinalityAggregation approximates the number of distinct values.
type CardinalityAggregation struct {
	aggBase
	field              string
	precisionThreshold optional[int]
	missing            missingParam
}

// CardinalityAgg creates a cardinality aggregation.
func CardinalityAgg(field string) *CardinalityAggregation {
	return &CardinalityAggregation{field: field}
}

// PrecisionThreshold sets the count below which results are close to exact.
func (a *CardinalityAggregation) PrecisionThreshold(n int) *CardinalityAggregation {
	a.precisionThreshold.assign(n)
	return a
}

// Missing treats documents without the field as having v.
func (a *CardinalityAggregation) Missing(v any) *CardinalityAggregation {
	a.missing.assign(v)
	return a
}

// SubAggregation attaches a named child aggregation.
func (a *CardinalityAggregation) SubAggregation(name string, n Node) *CardinalityAggregation {
	a.setSub(name, n)
	return a
}

// Meta attaches opaque metadata returned with the response.
func (a *CardinalityAggregation) Meta(key string, v any) *CardinalityAggregation {
	a.setMeta(key, v)
	return a
}

// Source implements Node.
func (a *CardinalityAggregation) Source() (map[string]any, error) {
	params := map[string]any{"field": a.field}
	a.precisionThreshold.put(params, "precision_threshold")
	a.missing.apply(params)
	return a.wrap("cardinality", params)
}

// Clone deep-copies sub-aggregations.
func (a *CardinalityAggregation) Clone() *CardinalityAggregation {
	c := *a
	c.aggBase = a.aggBase.clone()
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (a *CardinalityAggregation) CloneNode() Node { return a.Clone() }

// PercentilesAggregation computes percentiles of a numeric field.
type PercentilesAggregation struct {
	aggBase
	field    string
	percents []float64
	keyed    keyedParam
	missing  missingParam
}

// PercentilesAgg creates a percentiles aggregation.
func PercentilesAgg(field string) *PercentilesAggregation {
	return &PercentilesAggregation{field: field}
}

// Percents sets the requested percentiles; the engine default list applies otherwise.
func (a *PercentilesAggregation) Percents(p ...float64) *PercentilesAggregation {
	a.percents = append(a.percents, p...)
	return a
}

// Keyed returns values as an object instead of a list.
func (a *PercentilesAggregation) Keyed(v bool) *PercentilesAggregation {
	a.keyed.assign(v)
	return a
}

// Missing treats documents without the field as having v.
func (a *PercentilesAggregation) Missing(v any) *PercentilesAggregation {
	a.missing.assign(v)
	return a
}

// SubAggregation attaches a named child aggregation.
func (a *PercentilesAggregation) SubAggregation(name string, n Node) *PercentilesAggregation {
	a.setSub(name, n)
	return a
}

// Meta attaches opaque metadata returned with the response.
func (a *PercentilesAggregation) Meta(key string, v any) *PercentilesAggregation {
	a.setMeta(key, v)
	return a
}

// Source implements Node.
func (a *PercentilesAggregation) Source() (map[string]any, error) {
	params := map[string]any{"field": a.field}
	if len(a.percents) > 0 {
		params["percents"] = a.percents
	}
	a.keyed.apply(params)
	a.missing.apply(params)
	return a.wrap("percentiles", params)
}

// Clone deep-copies sub-aggregations.
func (a *PercentilesAggregation) Clone() *PercentilesAggregation {
	c := *a
	c.aggBase = a.aggBase.clone()
	c.percents = slices.Clone(a.percents)
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (a *PercentilesAggregation) CloneNode() Node { return a.Clone() }

// TopHitsAggregation returns the top matching documents of each bucket.
type TopHitsAggregation struct {
	aggBase
	size     sizeParam
	from     fromParam
	sorts    []Node
	includes []string
}

// TopHitsAgg creates a top_hits aggregation.
func TopHitsAgg() *TopHitsAggregation {
	return &TopHitsAggregation{}
}

// Size sets the number of hits per bucket.
func (a *TopHitsAggregation) Size(n int) *TopHitsAggregation {
	a.size.assign(n)
	return a
}

// From sets the hit offset.
func (a *TopHitsAggregation) From(n int) *TopHitsAggregation {
	a.from.assign(n)
	return a
}

// Sort appends sort expressions.
func (a *TopHitsAggregation) Sort(sorts ...Node) *TopHitsAggregation {
	a.sorts = append(a.sorts, sorts...)
	return a
}

// FetchSource limits _source to the given fields.
func (a *TopHitsAggregation) FetchSource(includes ...string) *TopHitsAggregation {
	a.includes = append(a.includes, includes...)
	return a
}

// Meta attaches opaque metadata returned with the response.
func (a *TopHitsAggregation) Meta(key string, v any) *TopHitsAggregation {
	a.setMeta(key, v)
	return a
}

// Source implements Node.
func (a *TopHitsAggregation) Source() (map[string]any, error) {
	params := make(map[string]any)
	a.size.apply(params)
	a.from.apply(params)
	if len(a.sorts) > 0 {
		sorts, err := sourceList(a.sorts, "top_hits", "sort")
		if err != nil {
			return nil, err
		}
		params["sort"] = sorts
	}
	if len(a.includes) > 0 {
		params["_source"] = map[string]any{"includes": a.includes}
	}
	return a.wrap("top_hits", params)
}

// Clone deep-copies the sorts.
func (a *TopHitsAggregation) Clone() *TopHitsAggregation {
	c := *a
	c.aggBase = a.aggBase.clone()
	c.sorts = cloneNodes(a.sorts)
	c.includes = cloneStrings(a.includes)
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (a *TopHitsAggregation) CloneNode() Node { return a.Clone() }
