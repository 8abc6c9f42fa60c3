package dsl

import "fmt"

// BoostingQuery demotes documents matching a negative query.
type BoostingQuery struct {
	positive      Node
	negative      Node
	negativeBoost float64
	boost         boostParam
	name          nameParam
}

// Boosting creates a boosting query.
func Boosting(positive, negative Node, negativeBoost float64) *BoostingQuery {
	return &BoostingQuery{positive: positive, negative: negative, negativeBoost: negativeBoost}
}

// Boost sets the relevance boost.
func (q *BoostingQuery) Boost(v float64) *BoostingQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *BoostingQuery) Name(name string) *BoostingQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *BoostingQuery) Source() (map[string]any, error) {
	positive, err := sourceOf(q.positive, "boosting", "positive")
	if err != nil {
		return nil, err
	}
	negative, err := sourceOf(q.negative, "boosting", "negative")
	if err != nil {
		return nil, err
	}
	params := map[string]any{
		"positive":       positive,
		"negative":       negative,
		"negative_boost": q.negativeBoost,
	}
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("boosting", params), nil
}

// Clone deep-copies the positive and negative queries.
func (q *BoostingQuery) Clone() *BoostingQuery {
	c := *q
	c.positive = Clone(q.positive)
	c.negative = Clone(q.negative)
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *BoostingQuery) CloneNode() Node { return q.Clone() }

// ConstantScoreQuery wraps a filter and gives every match the same score.
type ConstantScoreQuery struct {
	filter Node
	boost  boostParam
	name   nameParam
}

// ConstantScore creates a constant_score query.
func ConstantScore(filter Node) *ConstantScoreQuery {
	return &ConstantScoreQuery{filter: filter}
}

// Boost sets the constant score.
func (q *ConstantScoreQuery) Boost(v float64) *ConstantScoreQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *ConstantScoreQuery) Name(name string) *ConstantScoreQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *ConstantScoreQuery) Source() (map[string]any, error) {
	filter, err := sourceOf(q.filter, "constant_score", "filter")
	if err != nil {
		return nil, err
	}
	params := map[string]any{"filter": filter}
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("constant_score", params), nil
}

// Clone deep-copies the filter.
func (q *ConstantScoreQuery) Clone() *ConstantScoreQuery {
	c := *q
	c.filter = Clone(q.filter)
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *ConstantScoreQuery) CloneNode() Node { return q.Clone() }

// DisMaxQuery scores by the best matching sub-query. It needs at least one sub-query.
type DisMaxQuery struct {
	queries    []Node
	tieBreaker tieBreakerParam
	boost      boostParam
	name       nameParam
}

// DisMax creates a dis_max query.
func DisMax(queries ...Node) *DisMaxQuery {
	return &DisMaxQuery{queries: queries}
}

// Query appends sub-queries.
func (q *DisMaxQuery) Query(queries ...Node) *DisMaxQuery {
	q.queries = append(q.queries, queries...)
	return q
}

// TieBreaker sets the weight of non-best matches.
func (q *DisMaxQuery) TieBreaker(v float64) *DisMaxQuery {
	q.tieBreaker.assign(v)
	return q
}

// Boost sets the relevance boost.
func (q *DisMaxQuery) Boost(v float64) *DisMaxQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *DisMaxQuery) Name(name string) *DisMaxQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *DisMaxQuery) Source() (map[string]any, error) {
	if len(q.queries) == 0 {
		return nil, &EmptyCompositionError{Kind: "dis_max", Field: "queries"}
	}
	queries, err := sourceList(q.queries, "dis_max", "queries")
	if err != nil {
		return nil, err
	}
	params := map[string]any{"queries": queries}
	q.tieBreaker.apply(params)
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("dis_max", params), nil
}

// Clone deep-copies every sub-query.
func (q *DisMaxQuery) Clone() *DisMaxQuery {
	c := *q
	c.queries = cloneNodes(q.queries)
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *DisMaxQuery) CloneNode() Node { return q.Clone() }

// ScoreFunction is one entry of a function_score query's functions list.
type ScoreFunction interface {
	FunctionSource() (map[string]any, error)
	CloneFunction() ScoreFunction
}

// functionBase holds the filter and weight every score function may carry.
type functionBase struct {
	filter Node
	weight optional[float64]
}

func (f *functionBase) source(kind string, params map[string]any) (map[string]any, error) {
	out := make(map[string]any, 3)
	if f.filter != nil {
		filter, err := sourceOf(f.filter, "function_score", "filter")
		if err != nil {
			return nil, err
		}
		out["filter"] = filter
	}
	f.weight.put(out, "weight")
	if kind != "" {
		out[kind] = params
	}
	return out, nil
}

func (f functionBase) clone() functionBase {
	return functionBase{filter: Clone(f.filter), weight: f.weight}
}

// WeightFunction multiplies the score by a constant.
type WeightFunction struct {
	functionBase
}

// Weight creates a weight-only score function.
func Weight(w float64) *WeightFunction {
	f := &WeightFunction{}
	f.weight.assign(w)
	return f
}

// Filter restricts the function to matching documents.
func (f *WeightFunction) Filter(n Node) *WeightFunction {
	f.filter = n
	return f
}

// FunctionSource implements ScoreFunction.
func (f *WeightFunction) FunctionSource() (map[string]any, error) { return f.source("", nil) }

// CloneFunction implements ScoreFunction.
func (f *WeightFunction) CloneFunction() ScoreFunction {
	return &WeightFunction{functionBase: f.clone()}
}

// FieldValueFactorFunction scores by a numeric document field.
type FieldValueFactorFunction struct {
	functionBase
	field    string
	factor   optional[float64]
	modifier optional[string]
	missing  missingParam
}

// FieldValueFactor creates a field_value_factor function.
func FieldValueFactor(field string) *FieldValueFactorFunction {
	return &FieldValueFactorFunction{field: field}
}

// Factor sets the multiplier applied to the field value.
func (f *FieldValueFactorFunction) Factor(v float64) *FieldValueFactorFunction {
	f.factor.assign(v)
	return f
}

// Modifier sets the function applied to the value (log1p, sqrt, ...).
func (f *FieldValueFactorFunction) Modifier(m string) *FieldValueFactorFunction {
	f.modifier.assign(m)
	return f
}

// Missing sets the value used for documents without the field.
func (f *FieldValueFactorFunction) Missing(v any) *FieldValueFactorFunction {
	f.missing.assign(v)
	return f
}

// Weight sets the function weight.
func (f *FieldValueFactorFunction) Weight(w float64) *FieldValueFactorFunction {
	f.weight.assign(w)
	return f
}

// Filter restricts the function to matching documents.
func (f *FieldValueFactorFunction) Filter(n Node) *FieldValueFactorFunction {
	f.filter = n
	return f
}

// FunctionSource implements ScoreFunction.
func (f *FieldValueFactorFunction) FunctionSource() (map[string]any, error) {
	params := map[string]any{"field": f.field}
	f.factor.put(params, "factor")
	f.modifier.put(params, "modifier")
	f.missing.apply(params)
	return f.source("field_value_factor", params)
}

// CloneFunction implements ScoreFunction.
func (f *FieldValueFactorFunction) CloneFunction() ScoreFunction {
	c := *f
	c.functionBase = f.clone()
	return &c
}

// RandomScoreFunction produces reproducible random scores.
type RandomScoreFunction struct {
	functionBase
	seed  optional[any]
	field optional[string]
}

// RandomScore creates a random_score function.
func RandomScore() *RandomScoreFunction { return &RandomScoreFunction{} }

// Seed sets the seed; a field must be given alongside it.
func (f *RandomScoreFunction) Seed(seed any, field string) *RandomScoreFunction {
	f.seed.assign(seed)
	f.field.assign(field)
	return f
}

// Weight sets the function weight.
func (f *RandomScoreFunction) Weight(w float64) *RandomScoreFunction {
	f.weight.assign(w)
	return f
}

// Filter restricts the function to matching documents.
func (f *RandomScoreFunction) Filter(n Node) *RandomScoreFunction {
	f.filter = n
	return f
}

// FunctionSource implements ScoreFunction.
func (f *RandomScoreFunction) FunctionSource() (map[string]any, error) {
	params := make(map[string]any)
	f.seed.put(params, "seed")
	f.field.put(params, "field")
	return f.source("random_score", params)
}

// CloneFunction implements ScoreFunction.
func (f *RandomScoreFunction) CloneFunction() ScoreFunction {
	c := *f
	c.functionBase = f.clone()
	return &c
}

// ScriptScoreFunction computes the score with a script.
type ScriptScoreFunction struct {
	functionBase
	script *Script
}

// ScriptScoreFn creates a script_score function for function_score.
func ScriptScoreFn(script *Script) *ScriptScoreFunction {
	return &ScriptScoreFunction{script: script}
}

// Weight sets the function weight.
func (f *ScriptScoreFunction) Weight(w float64) *ScriptScoreFunction {
	f.weight.assign(w)
	return f
}

// Filter restricts the function to matching documents.
func (f *ScriptScoreFunction) Filter(n Node) *ScriptScoreFunction {
	f.filter = n
	return f
}

// FunctionSource implements ScoreFunction.
func (f *ScriptScoreFunction) FunctionSource() (map[string]any, error) {
	if f.script == nil {
		return nil, &InvalidCompositionError{Kind: "script_score", Reason: "script is required"}
	}
	return f.source("script_score", map[string]any{"script": f.script.Source()})
}

// CloneFunction implements ScoreFunction.
func (f *ScriptScoreFunction) CloneFunction() ScoreFunction {
	return &ScriptScoreFunction{functionBase: f.clone(), script: f.script.Clone()}
}

// DecayFunction scores by distance from an origin (gauss, linear or exp).
type DecayFunction struct {
	functionBase
	kind   string
	field  string
	origin any
	scale  any
	offset optional[any]
	decay  optional[float64]
}

// GaussDecay creates a gauss decay function.
func GaussDecay(field string, origin, scale any) *DecayFunction {
	return &DecayFunction{kind: "gauss", field: field, origin: origin, scale: scale}
}

// LinearDecay creates a linear decay function.
func LinearDecay(field string, origin, scale any) *DecayFunction {
	return &DecayFunction{kind: "linear", field: field, origin: origin, scale: scale}
}

// ExpDecay creates an exp decay function.
func ExpDecay(field string, origin, scale any) *DecayFunction {
	return &DecayFunction{kind: "exp", field: field, origin: origin, scale: scale}
}

// Offset sets the distance before decay starts.
func (f *DecayFunction) Offset(v any) *DecayFunction {
	f.offset.assign(v)
	return f
}

// Decay sets the score at scale distance.
func (f *DecayFunction) Decay(v float64) *DecayFunction {
	f.decay.assign(v)
	return f
}

// Weight sets the function weight.
func (f *DecayFunction) Weight(w float64) *DecayFunction {
	f.weight.assign(w)
	return f
}

// Filter restricts the function to matching documents.
func (f *DecayFunction) Filter(n Node) *DecayFunction {
	f.filter = n
	return f
}

// FunctionSource implements ScoreFunction.
func (f *DecayFunction) FunctionSource() (map[string]any, error) {
	params := map[string]any{"scale": f.scale}
	if f.origin != nil {
		params["origin"] = f.origin
	}
	f.offset.put(params, "offset")
	f.decay.put(params, "decay")
	return f.source(f.kind, map[string]any{f.field: params})
}

// CloneFunction implements ScoreFunction.
func (f *DecayFunction) CloneFunction() ScoreFunction {
	c := *f
	c.functionBase = f.clone()
	return &c
}

// FunctionScoreQuery modifies the score of a query with score functions.
type FunctionScoreQuery struct {
	query     Node
	functions []ScoreFunction
	scoreMode scoreModeParam
	boostMode optional[string]
	maxBoost  optional[float64]
	minScore  minScoreParam
	boost     boostParam
	name      nameParam
}

// FunctionScore creates a function_score query. query may be nil (match_all on the engine).
func FunctionScore(query Node) *FunctionScoreQuery {
	return &FunctionScoreQuery{query: query}
}

// Add appends score functions.
func (q *FunctionScoreQuery) Add(fns ...ScoreFunction) *FunctionScoreQuery {
	q.functions = append(q.functions, fns...)
	return q
}

// ScoreMode sets how function scores are combined.
func (q *FunctionScoreQuery) ScoreMode(m string) *FunctionScoreQuery {
	q.scoreMode.assign(m)
	return q
}

// BoostMode sets how the function score combines with the query score.
func (q *FunctionScoreQuery) BoostMode(m string) *FunctionScoreQuery {
	q.boostMode.assign(m)
	return q
}

// MaxBoost caps the function score.
func (q *FunctionScoreQuery) MaxBoost(v float64) *FunctionScoreQuery {
	q.maxBoost.assign(v)
	return q
}

// MinScore drops documents below the score.
func (q *FunctionScoreQuery) MinScore(v float64) *FunctionScoreQuery {
	q.minScore.assign(v)
	return q
}

// Boost sets the relevance boost.
func (q *FunctionScoreQuery) Boost(v float64) *FunctionScoreQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *FunctionScoreQuery) Name(name string) *FunctionScoreQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *FunctionScoreQuery) Source() (map[string]any, error) {
	params := make(map[string]any)
	if q.query != nil {
		query, err := sourceOf(q.query, "function_score", "query")
		if err != nil {
			return nil, err
		}
		params["query"] = query
	}
	if len(q.functions) > 0 {
		fns := make([]any, 0, len(q.functions))
		for i, fn := range q.functions {
			if fn == nil {
				return nil, &InvalidCompositionError{Kind: "function_score", Reason: fmt.Sprintf("function %d is nil", i)}
			}
			src, err := fn.FunctionSource()
			if err != nil {
				return nil, fmt.Errorf("function_score.functions[%d]: %w", i, err)
			}
			fns = append(fns, src)
		}
		params["functions"] = fns
	}
	q.scoreMode.apply(params)
	q.boostMode.put(params, "boost_mode")
	q.maxBoost.put(params, "max_boost")
	q.minScore.apply(params)
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("function_score", params), nil
}

// Clone deep-copies the query and every function, including function filters.
func (q *FunctionScoreQuery) Clone() *FunctionScoreQuery {
	c := *q
	c.query = Clone(q.query)
	if q.functions != nil {
		c.functions = make([]ScoreFunction, len(q.functions))
		for i, fn := range q.functions {
			if fn != nil {
				c.functions[i] = fn.CloneFunction()
			}
		}
	}
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *FunctionScoreQuery) CloneNode() Node { return q.Clone() }
