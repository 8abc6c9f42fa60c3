package dsl

import (
	"fmt"
	"slices"
)

// Node is a query, aggregation, or sort expression that serializes into the engine DSL.
// Source must be a pure function of the node's current fields.
type Node interface {
	Source() (map[string]any, error)
}

// Raw is a pre-serialized payload accepted anywhere a typed node is expected.
// It is inserted verbatim and treated as immutable: clones alias it.
type Raw map[string]any

// Source returns the payload as-is.
func (r Raw) Source() (map[string]any, error) { return r, nil }

// cloner is implemented by every node that owns mutable state.
type cloner interface {
	CloneNode() Node
}

// Clone returns an independent copy of n. Owned child nodes are deep-copied;
// Raw payloads and scalar fields are shared.
func Clone(n Node) Node {
	if n == nil {
		return nil
	}
	if c, ok := n.(cloner); ok {
		return c.CloneNode()
	}
	return n
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = Clone(n)
	}
	return out
}

// sourceOf serializes a required child slot.
func sourceOf(n Node, kind, slot string) (map[string]any, error) {
	if n == nil {
		return nil, &InvalidCompositionError{Kind: kind, Reason: fmt.Sprintf("%s is required", slot)}
	}
	if r, ok := n.(Raw); ok && r == nil {
		return nil, &InvalidCompositionError{Kind: kind, Reason: fmt.Sprintf("%s is an empty raw payload", slot)}
	}
	src, err := n.Source()
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", kind, slot, err)
	}
	return src, nil
}

func sourceList(nodes []Node, kind, slot string) ([]any, error) {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		src, err := sourceOf(n, kind, slot)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

// wrap builds the single-key {kind: params} envelope every node serializes to.
func wrap(kind string, params map[string]any) map[string]any {
	return map[string]any{kind: params}
}

func cloneStrings(s []string) []string { return slices.Clone(s) }
