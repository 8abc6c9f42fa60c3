package dsl

import "maps"

// Script is an inline or stored script used by script_score, function_score and script sorts.
type Script struct {
	source string
	id     string
	lang   string
	params map[string]any
}

// NewScript creates an inline script.
func NewScript(source string) *Script {
	return &Script{source: source}
}

// NewStoredScript references a stored script by id.
func NewStoredScript(id string) *Script {
	return &Script{id: id}
}

// Lang sets the script language (painless by default on the engine side).
func (s *Script) Lang(lang string) *Script {
	s.lang = lang
	return s
}

// Param sets a single script parameter.
func (s *Script) Param(name string, value any) *Script {
	if s.params == nil {
		s.params = make(map[string]any)
	}
	s.params[name] = value
	return s
}

// Params replaces all script parameters.
func (s *Script) Params(params map[string]any) *Script {
	s.params = params
	return s
}

// Source serializes the script object.
func (s *Script) Source() map[string]any {
	out := make(map[string]any, 3)
	if s.id != "" {
		out["id"] = s.id
	} else {
		out["source"] = s.source
	}
	if s.lang != "" {
		out["lang"] = s.lang
	}
	if len(s.params) > 0 {
		out["params"] = s.params
	}
	return out
}

// Clone copies the script; parameter values are shared.
func (s *Script) Clone() *Script {
	if s == nil {
		return nil
	}
	c := *s
	c.params = maps.Clone(s.params)
	return &c
}

// InnerHits configures the inner_hits section of nested and join queries.
type InnerHits struct {
	name     string
	size     sizeParam
	from     fromParam
	includes []string
}

// NewInnerHits creates an inner_hits section; unconfigured it serializes to {}.
func NewInnerHits() *InnerHits {
	return &InnerHits{}
}

// Name sets the inner hits name in the response.
func (h *InnerHits) Name(name string) *InnerHits {
	h.name = name
	return h
}

// Size sets the number of inner hits returned per parent.
func (h *InnerHits) Size(n int) *InnerHits {
	h.size.assign(n)
	return h
}

// From sets the inner hits offset.
func (h *InnerHits) From(n int) *InnerHits {
	h.from.assign(n)
	return h
}

// FetchSource limits the inner hit _source to the given fields.
func (h *InnerHits) FetchSource(includes ...string) *InnerHits {
	h.includes = append(h.includes, includes...)
	return h
}

// Source serializes the section.
func (h *InnerHits) Source() map[string]any {
	out := make(map[string]any)
	if h.name != "" {
		out["name"] = h.name
	}
	h.size.apply(out)
	h.from.apply(out)
	if len(h.includes) > 0 {
		out["_source"] = map[string]any{"includes": h.includes}
	}
	return out
}

// Clone copies the section.
func (h *InnerHits) Clone() *InnerHits {
	if h == nil {
		return nil
	}
	c := *h
	c.includes = cloneStrings(h.includes)
	return &c
}
