package dsl

// optional holds a single value that is written to a parameter map only once set.
type optional[T any] struct {
	value T
	set   bool
}

func (o *optional[T]) assign(v T) {
	o.value = v
	o.set = true
}

func (o optional[T]) put(m map[string]any, key string) {
	if o.set {
		m[key] = o.value
	}
}

// Each mixin below owns exactly one wire key. Nodes embed the ones their DSL form supports.

type boostParam struct{ optional[float64] }

func (p boostParam) apply(m map[string]any) { p.put(m, "boost") }

type nameParam struct{ optional[string] }

func (p nameParam) apply(m map[string]any) { p.put(m, "_name") }

type analyzerParam struct{ optional[string] }

func (p analyzerParam) apply(m map[string]any) { p.put(m, "analyzer") }

type fuzzinessParam struct{ optional[string] }

func (p fuzzinessParam) apply(m map[string]any) { p.put(m, "fuzziness") }

type operatorParam struct{ optional[string] }

func (p operatorParam) apply(m map[string]any) { p.put(m, "operator") }

type defaultOperatorParam struct{ optional[string] }

func (p defaultOperatorParam) apply(m map[string]any) { p.put(m, "default_operator") }

type minimumShouldMatchParam struct{ optional[string] }

func (p minimumShouldMatchParam) apply(m map[string]any) { p.put(m, "minimum_should_match") }

type rewriteParam struct{ optional[string] }

func (p rewriteParam) apply(m map[string]any) { p.put(m, "rewrite") }

type caseInsensitiveParam struct{ optional[bool] }

func (p caseInsensitiveParam) apply(m map[string]any) { p.put(m, "case_insensitive") }

type formatParam struct{ optional[string] }

func (p formatParam) apply(m map[string]any) { p.put(m, "format") }

type timeZoneParam struct{ optional[string] }

func (p timeZoneParam) apply(m map[string]any) { p.put(m, "time_zone") }

type relationParam struct{ optional[string] }

func (p relationParam) apply(m map[string]any) { p.put(m, "relation") }

type scoreModeParam struct{ optional[string] }

func (p scoreModeParam) apply(m map[string]any) { p.put(m, "score_mode") }

type ignoreUnmappedParam struct{ optional[bool] }

func (p ignoreUnmappedParam) apply(m map[string]any) { p.put(m, "ignore_unmapped") }

type prefixLengthParam struct{ optional[int] }

func (p prefixLengthParam) apply(m map[string]any) { p.put(m, "prefix_length") }

type maxExpansionsParam struct{ optional[int] }

func (p maxExpansionsParam) apply(m map[string]any) { p.put(m, "max_expansions") }

type transpositionsParam struct{ optional[bool] }

func (p transpositionsParam) apply(m map[string]any) { p.put(m, "transpositions") }

type lenientParam struct{ optional[bool] }

func (p lenientParam) apply(m map[string]any) { p.put(m, "lenient") }

type zeroTermsQueryParam struct{ optional[string] }

func (p zeroTermsQueryParam) apply(m map[string]any) { p.put(m, "zero_terms_query") }

type slopParam struct{ optional[int] }

func (p slopParam) apply(m map[string]any) { p.put(m, "slop") }

type tieBreakerParam struct{ optional[float64] }

func (p tieBreakerParam) apply(m map[string]any) { p.put(m, "tie_breaker") }

type minScoreParam struct{ optional[float64] }

func (p minScoreParam) apply(m map[string]any) { p.put(m, "min_score") }

type missingParam struct{ optional[any] }

func (p missingParam) apply(m map[string]any) { p.put(m, "missing") }

type minDocCountParam struct{ optional[int] }

func (p minDocCountParam) apply(m map[string]any) { p.put(m, "min_doc_count") }

type keyedParam struct{ optional[bool] }

func (p keyedParam) apply(m map[string]any) { p.put(m, "keyed") }

type sizeParam struct{ optional[int] }

func (p sizeParam) apply(m map[string]any) { p.put(m, "size") }

type fromParam struct{ optional[int] }

func (p fromParam) apply(m map[string]any) { p.put(m, "from") }

// scriptParam serializes an attached Script under "script".
type scriptParam struct {
	script *Script
}

func (p *scriptParam) assign(s *Script) { p.script = s }

func (p scriptParam) apply(m map[string]any) {
	if p.script != nil {
		m["script"] = p.script.Source()
	}
}

func (p scriptParam) clone() scriptParam {
	return scriptParam{script: p.script.Clone()}
}

// innerHitsParam serializes attached InnerHits under "inner_hits".
type innerHitsParam struct {
	hits *InnerHits
}

func (p *innerHitsParam) assign(h *InnerHits) { p.hits = h }

func (p innerHitsParam) apply(m map[string]any) {
	if p.hits != nil {
		m["inner_hits"] = p.hits.Source()
	}
}

func (p innerHitsParam) clone() innerHitsParam {
	return innerHitsParam{hits: p.hits.Clone()}
}
