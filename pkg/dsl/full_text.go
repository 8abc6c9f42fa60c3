package dsl

// MatchQuery runs an analyzed full-text match on one field.
type MatchQuery struct {
	field              string
	query              any
	analyzer           analyzerParam
	operator           operatorParam
	fuzziness          fuzzinessParam
	minimumShouldMatch minimumShouldMatchParam
	lenient            lenientParam
	zeroTermsQuery     zeroTermsQueryParam
	prefixLength       prefixLengthParam
	maxExpansions      maxExpansionsParam
	boost              boostParam
	name               nameParam
}

// Match creates a match query.
func Match(field string, query any) *MatchQuery {
	return &MatchQuery{field: field, query: query}
}

// Analyzer overrides the search analyzer.
func (q *MatchQuery) Analyzer(a string) *MatchQuery {
	q.analyzer.assign(a)
	return q
}

// Operator sets how analyzed terms are combined ("and" / "or").
func (q *MatchQuery) Operator(op string) *MatchQuery {
	q.operator.assign(op)
	return q
}

// Fuzziness sets the allowed edit distance.
func (q *MatchQuery) Fuzziness(f string) *MatchQuery {
	q.fuzziness.assign(f)
	return q
}

// MinimumShouldMatch sets the minimum number of matching terms, e.g. "75%".
func (q *MatchQuery) MinimumShouldMatch(m string) *MatchQuery {
	q.minimumShouldMatch.assign(m)
	return q
}

// Lenient ignores format-based failures.
func (q *MatchQuery) Lenient(v bool) *MatchQuery {
	q.lenient.assign(v)
	return q
}

// ZeroTermsQuery sets the behaviour when the analyzer removes every token ("none" / "all").
func (q *MatchQuery) ZeroTermsQuery(v string) *MatchQuery {
	q.zeroTermsQuery.assign(v)
	return q
}

// PrefixLength sets the fuzzy prefix length.
func (q *MatchQuery) PrefixLength(n int) *MatchQuery {
	q.prefixLength.assign(n)
	return q
}

// MaxExpansions caps fuzzy expansions.
func (q *MatchQuery) MaxExpansions(n int) *MatchQuery {
	q.maxExpansions.assign(n)
	return q
}

// Boost sets the relevance boost.
func (q *MatchQuery) Boost(v float64) *MatchQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *MatchQuery) Name(name string) *MatchQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *MatchQuery) Source() (map[string]any, error) {
	params := map[string]any{"query": q.query}
	q.analyzer.apply(params)
	q.operator.apply(params)
	q.fuzziness.apply(params)
	q.minimumShouldMatch.apply(params)
	q.lenient.apply(params)
	q.zeroTermsQuery.apply(params)
	q.prefixLength.apply(params)
	q.maxExpansions.apply(params)
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("match", map[string]any{q.field: params}), nil
}

// Clone returns a copy of the query.
func (q *MatchQuery) Clone() *MatchQuery {
	c := *q
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *MatchQuery) CloneNode() Node { return q.Clone() }

// MatchPhraseQuery matches terms in order, optionally allowing slop.
type MatchPhraseQuery struct {
	field          string
	query          string
	prefix         bool
	analyzer       analyzerParam
	slop           slopParam
	zeroTermsQuery zeroTermsQueryParam
	maxExpansions  maxExpansionsParam
	boost          boostParam
	name           nameParam
}

// MatchPhrase creates a match_phrase query.
func MatchPhrase(field, phrase string) *MatchPhraseQuery {
	return &MatchPhraseQuery{field: field, query: phrase}
}

// MatchPhrasePrefix creates a match_phrase_prefix query; the last term is a prefix.
func MatchPhrasePrefix(field, phrase string) *MatchPhraseQuery {
	return &MatchPhraseQuery{field: field, query: phrase, prefix: true}
}

// Analyzer overrides the search analyzer.
func (q *MatchPhraseQuery) Analyzer(a string) *MatchPhraseQuery {
	q.analyzer.assign(a)
	return q
}

// Slop sets the allowed distance between phrase terms.
func (q *MatchPhraseQuery) Slop(n int) *MatchPhraseQuery {
	q.slop.assign(n)
	return q
}

// ZeroTermsQuery sets the behaviour when the analyzer removes every token.
func (q *MatchPhraseQuery) ZeroTermsQuery(v string) *MatchPhraseQuery {
	q.zeroTermsQuery.assign(v)
	return q
}

// MaxExpansions caps the prefix expansions; only serialized for match_phrase_prefix.
func (q *MatchPhraseQuery) MaxExpansions(n int) *MatchPhraseQuery {
	q.maxExpansions.assign(n)
	return q
}

// Boost sets the relevance boost.
func (q *MatchPhraseQuery) Boost(v float64) *MatchPhraseQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *MatchPhraseQuery) Name(name string) *MatchPhraseQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *MatchPhraseQuery) Source() (map[string]any, error) {
	params := map[string]any{"query": q.query}
	q.analyzer.apply(params)
	q.slop.apply(params)
	q.zeroTermsQuery.apply(params)
	q.boost.apply(params)
	q.name.apply(params)
	kind := "match_phrase"
	if q.prefix {
		kind = "match_phrase_prefix"
		q.maxExpansions.apply(params)
	}
	return wrap(kind, map[string]any{q.field: params}), nil
}

// Clone returns a copy of the query.
func (q *MatchPhraseQuery) Clone() *MatchPhraseQuery {
	c := *q
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *MatchPhraseQuery) CloneNode() Node { return q.Clone() }

// MultiMatchQuery runs a match query across several fields.
type MultiMatchQuery struct {
	query              any
	fields             []string
	typ                optional[string]
	analyzer           analyzerParam
	operator           operatorParam
	fuzziness          fuzzinessParam
	tieBreaker         tieBreakerParam
	minimumShouldMatch minimumShouldMatchParam
	boost              boostParam
	name               nameParam
}

// MultiMatch creates a multi_match query. With no fields the index default fields apply.
func MultiMatch(query any, fields ...string) *MultiMatchQuery {
	return &MultiMatchQuery{query: query, fields: fields}
}

// Field adds a field, optionally with a ^boost suffix.
func (q *MultiMatchQuery) Field(fields ...string) *MultiMatchQuery {
	q.fields = append(q.fields, fields...)
	return q
}

// Type sets the execution type (best_fields, most_fields, cross_fields, phrase, phrase_prefix, bool_prefix).
func (q *MultiMatchQuery) Type(t string) *MultiMatchQuery {
	q.typ.assign(t)
	return q
}

// Analyzer overrides the search analyzer.
func (q *MultiMatchQuery) Analyzer(a string) *MultiMatchQuery {
	q.analyzer.assign(a)
	return q
}

// Operator sets how analyzed terms are combined.
func (q *MultiMatchQuery) Operator(op string) *MultiMatchQuery {
	q.operator.assign(op)
	return q
}

// Fuzziness sets the allowed edit distance.
func (q *MultiMatchQuery) Fuzziness(f string) *MultiMatchQuery {
	q.fuzziness.assign(f)
	return q
}

// TieBreaker sets the weight of non-best fields.
func (q *MultiMatchQuery) TieBreaker(v float64) *MultiMatchQuery {
	q.tieBreaker.assign(v)
	return q
}

// MinimumShouldMatch sets the minimum number of matching terms.
func (q *MultiMatchQuery) MinimumShouldMatch(m string) *MultiMatchQuery {
	q.minimumShouldMatch.assign(m)
	return q
}

// Boost sets the relevance boost.
func (q *MultiMatchQuery) Boost(v float64) *MultiMatchQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *MultiMatchQuery) Name(name string) *MultiMatchQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *MultiMatchQuery) Source() (map[string]any, error) {
	params := map[string]any{"query": q.query}
	if len(q.fields) > 0 {
		params["fields"] = q.fields
	}
	q.typ.put(params, "type")
	q.analyzer.apply(params)
	q.operator.apply(params)
	q.fuzziness.apply(params)
	q.tieBreaker.apply(params)
	q.minimumShouldMatch.apply(params)
	q.boost.apply(params)
	q.name.apply(params)
	return wrap("multi_match", params), nil
}

// Clone returns a copy of the query.
func (q *MultiMatchQuery) Clone() *MultiMatchQuery {
	c := *q
	c.fields = cloneStrings(q.fields)
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *MultiMatchQuery) CloneNode() Node { return q.Clone() }

// QueryStringQuery parses a Lucene-syntax query string.
type QueryStringQuery struct {
	query           string
	simple          bool
	defaultField    optional[string]
	fields          []string
	flags           optional[string]
	defaultOperator defaultOperatorParam
	analyzer        analyzerParam
	lenient         lenientParam
	boost           boostParam
	name            nameParam
}

// QueryString creates a query_string query.
func QueryString(query string) *QueryStringQuery {
	return &QueryStringQuery{query: query}
}

// SimpleQueryString creates a simple_query_string query, which never fails on bad syntax.
func SimpleQueryString(query string) *QueryStringQuery {
	return &QueryStringQuery{query: query, simple: true}
}

// DefaultField sets the field searched when none is given in the query string.
// simple_query_string has no default_field; it is ignored there.
func (q *QueryStringQuery) DefaultField(f string) *QueryStringQuery {
	q.defaultField.assign(f)
	return q
}

// Fields sets the searched fields.
func (q *QueryStringQuery) Fields(fields ...string) *QueryStringQuery {
	q.fields = append(q.fields, fields...)
	return q
}

// Flags enables simple_query_string operators; ignored for query_string.
func (q *QueryStringQuery) Flags(f string) *QueryStringQuery {
	q.flags.assign(f)
	return q
}

// DefaultOperator sets the operator between terms ("AND" / "OR").
func (q *QueryStringQuery) DefaultOperator(op string) *QueryStringQuery {
	q.defaultOperator.assign(op)
	return q
}

// Analyzer overrides the search analyzer.
func (q *QueryStringQuery) Analyzer(a string) *QueryStringQuery {
	q.analyzer.assign(a)
	return q
}

// Lenient ignores format-based failures.
func (q *QueryStringQuery) Lenient(v bool) *QueryStringQuery {
	q.lenient.assign(v)
	return q
}

// Boost sets the relevance boost.
func (q *QueryStringQuery) Boost(v float64) *QueryStringQuery {
	q.boost.assign(v)
	return q
}

// Name sets the query name.
func (q *QueryStringQuery) Name(name string) *QueryStringQuery {
	q.name.assign(name)
	return q
}

// Source implements Node.
func (q *QueryStringQuery) Source() (map[string]any, error) {
	params := map[string]any{"query": q.query}
	if len(q.fields) > 0 {
		params["fields"] = q.fields
	}
	kind := "query_string"
	if q.simple {
		kind = "simple_query_string"
		q.flags.put(params, "flags")
	} else {
		q.defaultField.put(params, "default_field")
	}
	q.defaultOperator.apply(params)
	q.analyzer.apply(params)
	q.lenient.apply(params)
	q.boost.apply(params)
	q.name.apply(params)
	return wrap(kind, params), nil
}

// Clone returns a copy of the query.
func (q *QueryStringQuery) Clone() *QueryStringQuery {
	c := *q
	c.fields = cloneStrings(q.fields)
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (q *QueryStringQuery) CloneNode() Node { return q.Clone() }
