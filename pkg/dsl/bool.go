package dsl

import "fmt"

// Section is one of the four bool query clause lists.
type Section int

// Bool sections in serialization order.
const (
	Must Section = iota
	MustNot
	Should
	Filter
)

var sectionKeys = [...]string{"must", "must_not", "should", "filter"}

// String returns the wire key of the section.
func (s Section) String() string {
	if !s.valid() {
		return fmt.Sprintf("section(%d)", int(s))
	}
	return sectionKeys[s]
}

func (s Section) valid() bool { return s >= Must && s <= Filter }

// TrashedMode is the soft-delete visibility carried by a bool query. The query never turns it
// into a clause itself; the executing layer translates it into a filter.
type TrashedMode int

// Soft-delete visibility modes.
const (
	TrashedExclude TrashedMode = iota
	TrashedWith
	TrashedOnly
)

// String returns the mode name.
func (m TrashedMode) String() string {
	switch m {
	case TrashedWith:
		return "with"
	case TrashedOnly:
		return "only"
	default:
		return "exclude"
	}
}

type clauseKind int

const (
	clauseNode clauseKind = iota
	clauseRaw
	clauseDeferred
)

// Clause is a value attachable to a bool section: a typed node, a raw payload, or a deferred
// builder. It is resolved once, when it is attached.
type Clause struct {
	kind  clauseKind
	node  Node
	build func(*BoolQuery) Node
}

// NodeClause wraps a typed node.
func NodeClause(n Node) Clause { return Clause{kind: clauseNode, node: n} }

// RawClause wraps a hand-written payload.
func RawClause(m map[string]any) Clause { return Clause{kind: clauseRaw, node: Raw(m)} }

// DeferredClause wraps a builder called with the receiving bool query at attachment time.
func DeferredClause(fn func(*BoolQuery) Node) Clause { return Clause{kind: clauseDeferred, build: fn} }

func (c Clause) resolve(b *BoolQuery) Node {
	switch c.kind {
	case clauseDeferred:
		if c.build == nil {
			return nil
		}
		return c.build(b)
	case clauseRaw:
		if r, ok := c.node.(Raw); ok && r == nil {
			return nil
		}
		return c.node
	default:
		return c.node
	}
}

type addOptions struct {
	key    string
	strict bool
}

// AddOption configures BoolQuery.Add.
type AddOption func(*addOptions)

// WithKey stores the clause under a stable key for later lookup and removal.
func WithKey(key string) AddOption {
	return func(o *addOptions) { o.key = key }
}

// Strict makes a keyed collision an error instead of a silent no-op.
func Strict() AddOption {
	return func(o *addOptions) { o.strict = true }
}

type clauseEntry struct {
	key  string
	node Node
}

// BoolQuery is the clause registry behind bool queries: four ordered sections whose entries
// are either positional or addressed by key.
type BoolQuery struct {
	sections           [4][]clauseEntry
	trashed            TrashedMode
	minimumShouldMatch minimumShouldMatchParam
	boost              boostParam
	name               nameParam
}

// Bool creates an empty bool query. Empty, it serializes to match_all.
func Bool() *BoolQuery { return &BoolQuery{} }

// Add resolves c and attaches it to section. A keyed clause whose key is taken is ignored
// unless Strict is given, in which case a *DuplicateKeyedClauseError is returned.
func (b *BoolQuery) Add(section Section, c Clause, opts ...AddOption) error {
	if !section.valid() {
		return &InvalidCompositionError{Kind: "bool", Reason: "unknown section " + section.String()}
	}
	var o addOptions
	for _, opt := range opts {
		opt(&o)
	}

	node := c.resolve(b)
	if node == nil {
		return &InvalidCompositionError{Kind: "bool", Reason: "nil clause for " + section.String()}
	}

	if o.key != "" && b.indexOf(section, o.key) >= 0 {
		if !o.strict {
			return nil
		}
		return &DuplicateKeyedClauseError{Section: section, Key: o.key}
	}

	b.sections[section] = append(b.sections[section], clauseEntry{key: o.key, node: node})
	return nil
}

func (b *BoolQuery) appendNodes(section Section, nodes []Node) *BoolQuery {
	for _, n := range nodes {
		b.sections[section] = append(b.sections[section], clauseEntry{node: n})
	}
	return b
}

// Must appends positional clauses that must match and contribute to the score.
func (b *BoolQuery) Must(nodes ...Node) *BoolQuery { return b.appendNodes(Must, nodes) }

// MustNot appends positional clauses that must not match.
func (b *BoolQuery) MustNot(nodes ...Node) *BoolQuery { return b.appendNodes(MustNot, nodes) }

// Should appends positional optional clauses.
func (b *BoolQuery) Should(nodes ...Node) *BoolQuery { return b.appendNodes(Should, nodes) }

// Filter appends positional non-scoring clauses.
func (b *BoolQuery) Filter(nodes ...Node) *BoolQuery { return b.appendNodes(Filter, nodes) }

// Keyed attaches n under key, keeping the existing clause if the key is already taken.
func (b *BoolQuery) Keyed(section Section, key string, n Node) *BoolQuery {
	if !section.valid() || b.indexOf(section, key) >= 0 {
		return b
	}
	b.sections[section] = append(b.sections[section], clauseEntry{key: key, node: n})
	return b
}

// Get returns the clause stored under key.
func (b *BoolQuery) Get(section Section, key string) (Node, bool) {
	i := b.indexOf(section, key)
	if i < 0 {
		return nil, false
	}
	return b.sections[section][i].node, true
}

// Has reports whether key is occupied in section.
func (b *BoolQuery) Has(section Section, key string) bool {
	return b.indexOf(section, key) >= 0
}

// Remove deletes the clause stored under key. It reports whether anything was removed.
func (b *BoolQuery) Remove(section Section, key string) bool {
	i := b.indexOf(section, key)
	if i < 0 {
		return false
	}
	entries := b.sections[section]
	b.sections[section] = append(entries[:i:i], entries[i+1:]...)
	return true
}

// Clauses returns the nodes of a section in insertion order.
func (b *BoolQuery) Clauses(section Section) []Node {
	if !section.valid() {
		return nil
	}
	out := make([]Node, len(b.sections[section]))
	for i, e := range b.sections[section] {
		out[i] = e.node
	}
	return out
}

// Len returns the number of clauses in a section.
func (b *BoolQuery) Len(section Section) int {
	if !section.valid() {
		return 0
	}
	return len(b.sections[section])
}

// IsEmpty reports whether all four sections are empty.
func (b *BoolQuery) IsEmpty() bool {
	for _, entries := range b.sections {
		if len(entries) > 0 {
			return false
		}
	}
	return true
}

func (b *BoolQuery) indexOf(section Section, key string) int {
	if key == "" || !section.valid() {
		return -1
	}
	for i, e := range b.sections[section] {
		if e.key == key {
			return i
		}
	}
	return -1
}

// WithTrashed includes soft-deleted documents.
func (b *BoolQuery) WithTrashed() *BoolQuery {
	b.trashed = TrashedWith
	return b
}

// OnlyTrashed restricts results to soft-deleted documents.
func (b *BoolQuery) OnlyTrashed() *BoolQuery {
	b.trashed = TrashedOnly
	return b
}

// WithoutTrashed restores the default visibility.
func (b *BoolQuery) WithoutTrashed() *BoolQuery {
	b.trashed = TrashedExclude
	return b
}

// Trashed returns the soft-delete visibility mode.
func (b *BoolQuery) Trashed() TrashedMode { return b.trashed }

// MinimumShouldMatch sets how many should clauses must match.
func (b *BoolQuery) MinimumShouldMatch(m string) *BoolQuery {
	b.minimumShouldMatch.assign(m)
	return b
}

// Boost sets the relevance boost.
func (b *BoolQuery) Boost(v float64) *BoolQuery {
	b.boost.assign(v)
	return b
}

// Name sets the query name.
func (b *BoolQuery) Name(name string) *BoolQuery {
	b.name.assign(name)
	return b
}

// Source implements Node. Sections are emitted in must, must_not, should, filter order with
// empty ones omitted; with no clauses at all the query becomes match_all.
func (b *BoolQuery) Source() (map[string]any, error) {
	if b.IsEmpty() {
		params := make(map[string]any)
		b.boost.apply(params)
		b.name.apply(params)
		return wrap("match_all", params), nil
	}

	params := make(map[string]any, 4)
	for s := Must; s <= Filter; s++ {
		entries := b.sections[s]
		if len(entries) == 0 {
			continue
		}
		list := make([]any, 0, len(entries))
		for _, e := range entries {
			src, err := sourceOf(e.node, "bool", s.String())
			if err != nil {
				return nil, err
			}
			list = append(list, src)
		}
		params[s.String()] = list
	}
	b.minimumShouldMatch.apply(params)
	b.boost.apply(params)
	b.name.apply(params)
	return wrap("bool", params), nil
}

// Clone deep-copies every clause node; raw clauses are shared.
func (b *BoolQuery) Clone() *BoolQuery {
	c := *b
	for s := range b.sections {
		if b.sections[s] == nil {
			continue
		}
		entries := make([]clauseEntry, len(b.sections[s]))
		for i, e := range b.sections[s] {
			entries[i] = clauseEntry{key: e.key, node: Clone(e.node)}
		}
		c.sections[s] = entries
	}
	return &c
}

// CloneNode implements the clone discipline for Node values.
func (b *BoolQuery) CloneNode() Node { return b.Clone() }
