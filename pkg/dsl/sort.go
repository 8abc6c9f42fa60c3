package dsl

// SortOrder is the direction of a sort or bucket ordering.
type SortOrder string

// Sort directions.
const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// FieldSortNode sorts hits by a document field.
type FieldSortNode struct {
	field        string
	order        optional[SortOrder]
	mode         optional[string]
	missing      missingParam
	unmappedType optional[string]
	format       formatParam
	nestedPath   string
	nestedFilter Node
}

// FieldSort creates a field sort. Unconfigured it serializes to {field: {}}.
func FieldSort(field string) *FieldSortNode {
	return &FieldSortNode{field: field}
}

// Order sets the direction.
func (s *FieldSortNode) Order(o SortOrder) *FieldSortNode {
	s.order.assign(o)
	return s
}

// Asc sorts ascending.
func (s *FieldSortNode) Asc() *FieldSortNode { return s.Order(Asc) }

// Desc sorts descending.
func (s *FieldSortNode) Desc() *FieldSortNode { return s.Order(Desc) }

// Mode picks the value of multi-valued fields (min, max, sum, avg, median).
func (s *FieldSortNode) Mode(m string) *FieldSortNode {
	s.mode.assign(m)
	return s
}

// Missing places documents without the field: "_first", "_last" or a custom value.
func (s *FieldSortNode) Missing(v any) *FieldSortNode {
	s.missing.assign(v)
	return s
}

// UnmappedType sorts indices without the field as if it had this type.
func (s *FieldSortNode) UnmappedType(t string) *FieldSortNode {
	s.unmappedType.assign(t)
	return s
}

// Format sets the date format of sort values.
func (s *FieldSortNode) Format(f string) *FieldSortNode {
	s.format.assign(f)
	return s
}

// Nested sorts by a field inside nested objects, optionally filtered.
func (s *FieldSortNode) Nested(path string, filter Node) *FieldSortNode {
	s.nestedPath = path
	s.nestedFilter = filter
	return s
}

// Source implements Node.
func (s *FieldSortNode) Source() (map[string]any, error) {
	params := make(map[string]any)
	s.order.put(params, "order")
	s.mode.put(params, "mode")
	s.missing.apply(params)
	s.unmappedType.put(params, "unmapped_type")
	s.format.apply(params)
	if s.nestedPath != "" {
		nested := map[string]any{"path": s.nestedPath}
		if s.nestedFilter != nil {
			filter, err := sourceOf(s.nestedFilter, "sort", "nested.filter")
			if err != nil {
				return nil, err
			}
			nested["filter"] = filter
		}
		params["nested"] = nested
	}
	return wrap(s.field, params), nil
}

// Clone deep-copies the nested filter.
func (s *FieldSortNode) Clone() *FieldSortNode {
	c := *s
	c.nestedFilter = Clone(s.nestedFilter)
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (s *FieldSortNode) CloneNode() Node { return s.Clone() }

// ScoreSortNode sorts hits by relevance.
type ScoreSortNode struct {
	order optional[SortOrder]
}

// ScoreSort creates a _score sort.
func ScoreSort() *ScoreSortNode { return &ScoreSortNode{} }

// Order sets the direction.
func (s *ScoreSortNode) Order(o SortOrder) *ScoreSortNode {
	s.order.assign(o)
	return s
}

// Source implements Node.
func (s *ScoreSortNode) Source() (map[string]any, error) {
	params := make(map[string]any)
	s.order.put(params, "order")
	return wrap("_score", params), nil
}

// Clone returns a copy of the sort.
func (s *ScoreSortNode) Clone() *ScoreSortNode {
	c := *s
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (s *ScoreSortNode) CloneNode() Node { return s.Clone() }

// ScriptSortNode sorts hits by a script value.
type ScriptSortNode struct {
	script scriptParam
	typ    string
	order  optional[SortOrder]
	mode   optional[string]
}

// ScriptSort creates a _script sort; typ is "number" or "string".
func ScriptSort(script *Script, typ string) *ScriptSortNode {
	s := &ScriptSortNode{typ: typ}
	s.script.assign(script)
	return s
}

// Order sets the direction.
func (s *ScriptSortNode) Order(o SortOrder) *ScriptSortNode {
	s.order.assign(o)
	return s
}

// Mode picks the value of multi-valued results.
func (s *ScriptSortNode) Mode(m string) *ScriptSortNode {
	s.mode.assign(m)
	return s
}

// Source implements Node.
func (s *ScriptSortNode) Source() (map[string]any, error) {
	if s.script.script == nil {
		return nil, &InvalidCompositionError{Kind: "_script", Reason: "script is required"}
	}
	params := map[string]any{"type": s.typ}
	s.script.apply(params)
	s.order.put(params, "order")
	s.mode.put(params, "mode")
	return wrap("_script", params), nil
}

// Clone deep-copies the script.
func (s *ScriptSortNode) Clone() *ScriptSortNode {
	c := *s
	c.script = s.script.clone()
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (s *ScriptSortNode) CloneNode() Node { return s.Clone() }

// GeoDistanceSortNode sorts hits by distance from a point.
type GeoDistanceSortNode struct {
	field          string
	lat, lon       float64
	order          optional[SortOrder]
	unit           optional[string]
	mode           optional[string]
	distanceType   optional[string]
	ignoreUnmapped ignoreUnmappedParam
}

// GeoDistanceSort creates a _geo_distance sort.
func GeoDistanceSort(field string, lat, lon float64) *GeoDistanceSortNode {
	return &GeoDistanceSortNode{field: field, lat: lat, lon: lon}
}

// Order sets the direction.
func (s *GeoDistanceSortNode) Order(o SortOrder) *GeoDistanceSortNode {
	s.order.assign(o)
	return s
}

// Unit sets the distance unit of sort values, e.g. "km".
func (s *GeoDistanceSortNode) Unit(u string) *GeoDistanceSortNode {
	s.unit.assign(u)
	return s
}

// Mode picks the distance of multi-valued points.
func (s *GeoDistanceSortNode) Mode(m string) *GeoDistanceSortNode {
	s.mode.assign(m)
	return s
}

// DistanceType sets arc or plane distance.
func (s *GeoDistanceSortNode) DistanceType(t string) *GeoDistanceSortNode {
	s.distanceType.assign(t)
	return s
}

// IgnoreUnmapped treats an unmapped field as missing.
func (s *GeoDistanceSortNode) IgnoreUnmapped(v bool) *GeoDistanceSortNode {
	s.ignoreUnmapped.assign(v)
	return s
}

// Source implements Node.
func (s *GeoDistanceSortNode) Source() (map[string]any, error) {
	params := map[string]any{
		s.field: map[string]any{"lat": s.lat, "lon": s.lon},
	}
	s.order.put(params, "order")
	s.unit.put(params, "unit")
	s.mode.put(params, "mode")
	s.distanceType.put(params, "distance_type")
	s.ignoreUnmapped.apply(params)
	return wrap("_geo_distance", params), nil
}

// Clone returns a copy of the sort.
func (s *GeoDistanceSortNode) Clone() *GeoDistanceSortNode {
	c := *s
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (s *GeoDistanceSortNode) CloneNode() Node { return s.Clone() }
