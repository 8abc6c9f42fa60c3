package search

import (
	"errors"
	"fmt"
	"slices"
)

// Errors returned when validating a multi-model join.
var (
	ErrEmptyJoin              = errors.New("join requires at least one model")
	ErrModelNotSearchable     = errors.New("model is not searchable")
	ErrAmbiguousIndex         = errors.New("models share a search index")
	ErrIncompatibleConnection = errors.New("models use different engine connections")
	ErrModelNotJoined         = errors.New("index is not part of the join")
)

// Model describes a searchable record type.
type Model struct {
	Name       string
	Index      string
	Connection string
	Searchable bool
}

// Join searches several models at once. Each index maps back to exactly one model so hits
// can be resolved by their _index.
type Join struct {
	models  []Model
	byIndex map[string]Model
}

// NewJoin validates the models and builds a join.
func NewJoin(models ...Model) (*Join, error) {
	if len(models) == 0 {
		return nil, ErrEmptyJoin
	}

	j := &Join{byIndex: make(map[string]Model, len(models))}
	conn := models[0].Connection
	for _, m := range models {
		if !m.Searchable {
			return nil, fmt.Errorf("%s: %w", m.Name, ErrModelNotSearchable)
		}
		if m.Connection != conn {
			return nil, fmt.Errorf("%s uses %q, %s uses %q: %w",
				models[0].Name, conn, m.Name, m.Connection, ErrIncompatibleConnection)
		}
		if prev, ok := j.byIndex[m.Index]; ok {
			return nil, fmt.Errorf("%s and %s both use index %q: %w", prev.Name, m.Name, m.Index, ErrAmbiguousIndex)
		}
		j.byIndex[m.Index] = m
		j.models = append(j.models, m)
	}
	return j, nil
}

// Models returns the joined models in declaration order.
func (j *Join) Models() []Model { return slices.Clone(j.models) }

// Indices returns the joined indices in declaration order.
func (j *Join) Indices() []string {
	out := make([]string, len(j.models))
	for i, m := range j.models {
		out[i] = m.Index
	}
	return out
}

// ModelFor returns the model owning index.
func (j *Join) ModelFor(index string) (Model, error) {
	m, ok := j.byIndex[index]
	if !ok {
		return Model{}, fmt.Errorf("%q: %w", index, ErrModelNotJoined)
	}
	return m, nil
}
