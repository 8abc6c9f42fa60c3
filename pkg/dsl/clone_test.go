package dsl

import (
	"reflect"
	"testing"
)

func TestClone_OwnedChildrenAreIndependent(t *testing.T) {
	tests := []struct {
		name   string
		build  func() Node
		mutate func(clone Node)
	}{
		{
			"bool",
			func() Node { return Bool().Must(Bool().Filter(Range("age").Gte(18))) },
			func(c Node) {
				inner := c.(*BoolQuery).Clauses(Must)[0].(*BoolQuery)
				inner.Clauses(Filter)[0].(*RangeQuery).Lt(65)
				inner.Should(Term("x", 1))
			},
		},
		{
			"boosting",
			func() Node { return Boosting(Term("a", 1), Term("b", 2), 0.5) },
			func(c Node) {
				q := c.(*BoostingQuery)
				q.positive.(*TermQuery).Boost(9)
				q.negative.(*TermQuery).Name("neg")
			},
		},
		{
			"constant_score",
			func() Node { return ConstantScore(Bool().Filter(Term("a", 1))) },
			func(c Node) { c.(*ConstantScoreQuery).filter.(*BoolQuery).Must(Term("b", 2)) },
		},
		{
			"function_score",
			func() Node {
				return FunctionScore(Match("t", "x")).Add(Weight(2).Filter(Term("f", true)))
			},
			func(c Node) {
				q := c.(*FunctionScoreQuery)
				q.query.(*MatchQuery).Operator("and")
				q.functions[0].(*WeightFunction).filter.(*TermQuery).Boost(3)
			},
		},
		{
			"dis_max",
			func() Node { return DisMax(Match("t", "x")) },
			func(c Node) { c.(*DisMaxQuery).queries[0].(*MatchQuery).Fuzziness("AUTO") },
		},
		{
			"nested",
			func() Node { return Nested("c", Term("c.a", 1)).InnerHits(NewInnerHits()) },
			func(c Node) {
				q := c.(*NestedQuery)
				q.query.(*TermQuery).Boost(2)
				q.innerHits.hits.Size(5)
			},
		},
		{
			"has_child",
			func() Node { return HasChild("answer", Term("a", 1)) },
			func(c Node) { c.(*HasChildQuery).query.(*TermQuery).Boost(2) },
		},
		{
			"has_parent",
			func() Node { return HasParent("question", Term("a", 1)) },
			func(c Node) { c.(*HasParentQuery).query.(*TermQuery).Boost(2) },
		},
		{
			"pinned",
			func() Node {
				q, _ := NewPinnedQuery(Term("a", 1), "1")
				return q
			},
			func(c Node) {
				q := c.(*PinnedQuery)
				q.organic.(*TermQuery).Boost(2)
				q.ids[0] = "changed"
			},
		},
		{
			"script_score",
			func() Node { return ScriptScore(Term("a", 1), NewScript("1").Param("p", 1)) },
			func(c Node) {
				q := c.(*ScriptScoreQuery)
				q.query.(*TermQuery).Boost(2)
				q.script.script.Param("p", 2)
			},
		},
		{
			"knn filter",
			func() Node { return KNN("v", []float32{1, 2}, 3).Filter(Term("lang", "en")) },
			func(c Node) {
				q := c.(*KNNQuery)
				q.filter.(*TermQuery).Boost(2)
				q.vector[0] = 9
			},
		},
		{
			"terms agg children",
			func() Node { return TermsAgg("a").SubAggregation("s", FilterAgg(Term("x", 1))) },
			func(c Node) {
				a := c.(*TermsAggregation)
				a.subs["s"].(*FilterAggregation).filter.(*TermQuery).Boost(2)
				a.SubAggregation("t", AvgAgg("p"))
				a.Meta("k", "v")
			},
		},
		{
			"filters agg",
			func() Node { return FiltersAgg().Filter("a", Term("x", 1)) },
			func(c Node) { c.(*FiltersAggregation).filters["a"].(*TermQuery).Boost(2) },
		},
		{
			"field sort nested filter",
			func() Node { return FieldSort("p").Nested("offers", Term("offers.color", "blue")) },
			func(c Node) { c.(*FieldSortNode).nestedFilter.(*TermQuery).Boost(2) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := tt.build()
			before, err := orig.Source()
			if err != nil {
				t.Fatal(err)
			}

			tt.mutate(Clone(orig))

			after, err := orig.Source()
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(before, after) {
				t.Errorf("mutating the clone changed the original\nbefore: %v\n after: %v", before, after)
			}
		})
	}
}

func TestClone_OriginalMutationInvisibleInClone(t *testing.T) {
	inner := Term("status", "active")
	orig := Bool()
	orig.Keyed(Must, "status", inner)

	c := orig.Clone()
	before, err := c.Source()
	if err != nil {
		t.Fatal(err)
	}

	inner.Boost(5)
	orig.Filter(Exists("email"))

	after, err := c.Source()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Error("mutating the original changed the clone")
	}
}

func TestClone_KeysSurvive(t *testing.T) {
	orig := Bool().WithTrashed()
	orig.Keyed(Filter, "tenant", Term("tenant", "a"))

	c := orig.Clone()
	if !c.Has(Filter, "tenant") {
		t.Fatal("keys must be preserved by Clone")
	}
	if c.Trashed() != TrashedWith {
		t.Error("trashed mode must be preserved by Clone")
	}
	c.Remove(Filter, "tenant")
	if !orig.Has(Filter, "tenant") {
		t.Error("removing from the clone must not affect the original")
	}
}

func TestClone_RawChildIsShared(t *testing.T) {
	raw := Raw{"match_all": map[string]any{}}
	orig := DisMax(raw)
	c := orig.Clone()
	c.queries[0].(Raw)["extra"] = 1

	if _, ok := raw["extra"]; !ok {
		t.Error("raw children alias between clones")
	}
}
