// Package dsl builds search-engine query, aggregation and sort expressions as typed trees
// and serializes them into the engine's JSON DSL.
//
// Every node implements Node. Source is pure: calling it twice on an unchanged tree yields
// equal maps, and validation errors (empty composites, missing range bounds) surface there
// rather than in setters. Raw is accepted anywhere a typed node is and is inserted verbatim.
//
// Trees are not safe for concurrent mutation. Clone a tree before handing it to another
// goroutine or reusing it for an independent request; clones deep-copy owned child nodes and
// share Raw payloads.
//
//	q := dsl.Bool()
//	q.Keyed(dsl.Must, "status", dsl.Term("status", "active"))
//	q.Filter(dsl.Range("age").Gte(18))
//	body, err := dsl.NewSearchSource().Query(q).Size(20).Source()
package dsl
