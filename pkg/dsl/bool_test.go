package dsl

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestBool_EmptyIsMatchAll(t *testing.T) {
	assertSource(t, Bool(), `{"match_all":{}}`)
	assertSource(t, Bool().Boost(3), `{"match_all":{"boost":3}}`)
}

func TestBool_EndToEnd(t *testing.T) {
	q := Bool()
	if err := q.Add(Must, NodeClause(Term("status", "active")), WithKey("status")); err != nil {
		t.Fatal(err)
	}
	q.Filter(Range("age").Gte(18))

	assertSource(t, q,
		`{"bool":{"must":[{"term":{"status":{"value":"active"}}}],"filter":[{"range":{"age":{"gte":18}}}]}}`)
}

func TestBool_AddRemoveKeyedReturnsToSentinel(t *testing.T) {
	q := Bool()
	q.Keyed(Should, "title", Match("title", "go"))
	if q.IsEmpty() {
		t.Fatal("expected one clause")
	}
	if !q.Remove(Should, "title") {
		t.Fatal("Remove reported nothing removed")
	}
	if q.Remove(Should, "title") {
		t.Error("second Remove must report false")
	}
	assertSource(t, q, `{"match_all":{}}`)
}

func TestBool_DuplicateKeyIgnoredByDefault(t *testing.T) {
	q := Bool()
	if err := q.Add(Must, NodeClause(Term("status", "active")), WithKey("status")); err != nil {
		t.Fatal(err)
	}
	if err := q.Add(Must, NodeClause(Term("status", "archived")), WithKey("status")); err != nil {
		t.Fatalf("default mode must not fail: %v", err)
	}
	if q.Len(Must) != 1 {
		t.Fatalf("must len = %d, want 1", q.Len(Must))
	}
	assertSource(t, q, `{"bool":{"must":[{"term":{"status":{"value":"active"}}}]}}`)
}

func TestBool_DuplicateKeyStrict(t *testing.T) {
	q := Bool()
	if err := q.Add(Filter, NodeClause(Term("tenant", "a")), WithKey("tenant")); err != nil {
		t.Fatal(err)
	}
	err := q.Add(Filter, NodeClause(Term("tenant", "b")), WithKey("tenant"), Strict())

	var dup *DuplicateKeyedClauseError
	if !errors.As(err, &dup) {
		t.Fatalf("err = %v, want *DuplicateKeyedClauseError", err)
	}
	if dup.Section != Filter || dup.Key != "tenant" {
		t.Errorf("error = %+v", dup)
	}
	if !errors.Is(err, ErrDuplicateKeyedClause) {
		t.Error("must unwrap to ErrDuplicateKeyedClause")
	}
	if !strings.Contains(err.Error(), `"tenant"`) || !strings.Contains(err.Error(), "bool.filter") {
		t.Errorf("message = %q", err)
	}
}

func TestBool_SameKeyDifferentSections(t *testing.T) {
	q := Bool()
	q.Keyed(Must, "k", Term("a", 1))
	q.Keyed(MustNot, "k", Term("b", 2))
	if !q.Has(Must, "k") || !q.Has(MustNot, "k") {
		t.Fatal("keys are scoped per section")
	}
	if q.Has(Should, "k") {
		t.Error("unexpected key in should")
	}
}

func TestBool_SectionOrderAndInsertionOrder(t *testing.T) {
	q := Bool().
		Filter(Term("f", 1)).
		Should(Term("s", 1), Term("s", 2)).
		MustNot(Term("n", 1)).
		Must(Term("m", 1)).
		MinimumShouldMatch("1")

	assertSource(t, q, `{"bool":{
		"must":[{"term":{"m":{"value":1}}}],
		"must_not":[{"term":{"n":{"value":1}}}],
		"should":[{"term":{"s":{"value":1}}},{"term":{"s":{"value":2}}}],
		"filter":[{"term":{"f":{"value":1}}}],
		"minimum_should_match":"1"}}`)

	clauses := q.Clauses(Should)
	if len(clauses) != 2 {
		t.Fatalf("should = %d clauses", len(clauses))
	}
}

func TestBool_WireBytesDeterministic(t *testing.T) {
	build := func() Node {
		return Bool().
			Filter(Term("f", 1), Term("f", 2)).
			Must(Term("m", 1)).
			Keyed(Should, "k", Term("s", 1))
	}

	first, err := json.Marshal(mustSource(t, build()))
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		again, err := json.Marshal(mustSource(t, build()))
		if err != nil {
			t.Fatal(err)
		}
		if string(again) != string(first) {
			t.Fatalf("serialization differs:\n%s\n%s", first, again)
		}
	}

	// Object keys are sorted; clause lists keep insertion order.
	want := `{"bool":{"filter":[{"term":{"f":{"value":1}}},{"term":{"f":{"value":2}}}],` +
		`"must":[{"term":{"m":{"value":1}}}],"should":[{"term":{"s":{"value":1}}}]}}`
	if string(first) != want {
		t.Errorf("wire = %s\nwant %s", first, want)
	}
}

func mustSource(t *testing.T, n Node) map[string]any {
	t.Helper()
	src, err := n.Source()
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	return src
}

func TestBool_RawAndDeferredClauses(t *testing.T) {
	q := Bool()
	if err := q.Add(Filter, RawClause(map[string]any{"exists": map[string]any{"field": "email"}})); err != nil {
		t.Fatal(err)
	}

	calls := 0
	err := q.Add(Must, DeferredClause(func(b *BoolQuery) Node {
		calls++
		if b != q {
			t.Error("deferred builder must receive the registry")
		}
		return Term("status", "active")
	}), WithKey("status"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := q.Source(); err != nil {
		t.Fatal(err)
	}
	if _, err := q.Source(); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("deferred builder called %d times, want 1", calls)
	}

	n, ok := q.Get(Must, "status")
	if !ok {
		t.Fatal("keyed deferred clause not found")
	}
	assertSource(t, n, `{"term":{"status":{"value":"active"}}}`)
}

func TestBool_NilClauseRejected(t *testing.T) {
	tests := []struct {
		name   string
		clause Clause
	}{
		{"nil node", NodeClause(nil)},
		{"nil raw", RawClause(nil)},
		{"nil builder", DeferredClause(nil)},
		{"builder returning nil", DeferredClause(func(*BoolQuery) Node { return nil })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Bool()
			err := q.Add(Must, tt.clause)
			if !errors.Is(err, ErrInvalidComposition) {
				t.Fatalf("err = %v, want ErrInvalidComposition", err)
			}
			if !q.IsEmpty() {
				t.Error("rejected clause must not be stored")
			}
		})
	}
}

func TestBool_UnknownSection(t *testing.T) {
	err := Bool().Add(Section(9), NodeClause(MatchAll()))
	if !errors.Is(err, ErrInvalidComposition) {
		t.Fatalf("err = %v", err)
	}
}

func TestBool_TrashedModeNotInjected(t *testing.T) {
	q := Bool().OnlyTrashed()
	if q.Trashed() != TrashedOnly {
		t.Fatalf("trashed = %v", q.Trashed())
	}
	assertSource(t, q, `{"match_all":{}}`)

	q.WithTrashed().Must(Term("a", 1))
	if q.Trashed() != TrashedWith {
		t.Fatalf("trashed = %v", q.Trashed())
	}
	assertSource(t, q, `{"bool":{"must":[{"term":{"a":{"value":1}}}]}}`)

	if q.WithoutTrashed().Trashed() != TrashedExclude {
		t.Error("WithoutTrashed must restore the default")
	}
}

func TestBool_NestedBool(t *testing.T) {
	inner := Bool().Should(Term("color", "red"), Term("color", "blue"))
	q := Bool().Filter(inner).Name("outer")
	assertSource(t, q, `{"bool":{"filter":[{"bool":{"should":[
		{"term":{"color":{"value":"red"}}},
		{"term":{"color":{"value":"blue"}}}]}}],"_name":"outer"}}`)
}
