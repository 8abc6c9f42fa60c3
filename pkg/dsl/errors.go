package dsl

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for expression tree validation.
var (
	// ErrInvalidComposition signals a node whose children or bounds cannot be serialized.
	ErrInvalidComposition = errors.New("invalid composition")
	// ErrDuplicateKeyedClause signals a keyed bool clause collision in strict mode.
	ErrDuplicateKeyedClause = errors.New("duplicate keyed clause")
)

// InvalidCompositionError describes a structural problem found while serializing a node.
type InvalidCompositionError struct {
	Kind   string
	Reason string
}

func (e *InvalidCompositionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidComposition.Error(), e.Kind, e.Reason)
}

func (e *InvalidCompositionError) Unwrap() error { return ErrInvalidComposition }

// EmptyCompositionError is returned when a composite node that needs children has none.
type EmptyCompositionError struct {
	Kind  string
	Field string
}

func (e *EmptyCompositionError) Error() string {
	return fmt.Sprintf("%s: %s requires at least one entry in %q", ErrInvalidComposition.Error(), e.Kind, e.Field)
}

func (e *EmptyCompositionError) Unwrap() error { return ErrInvalidComposition }

// MissingBoundError is returned when a bounded node has none of its bound fields set.
type MissingBoundError struct {
	Kind   string
	Field  string
	Bounds []string
}

func (e *MissingBoundError) Error() string {
	return fmt.Sprintf("%s: %s on %q requires at least one of %s",
		ErrInvalidComposition.Error(), e.Kind, e.Field, strings.Join(e.Bounds, ", "))
}

func (e *MissingBoundError) Unwrap() error { return ErrInvalidComposition }

// DuplicateKeyedClauseError names the bool section and key that already hold a clause.
type DuplicateKeyedClauseError struct {
	Section Section
	Key     string
}

func (e *DuplicateKeyedClauseError) Error() string {
	return fmt.Sprintf("%s: key %q already exists in bool.%s", ErrDuplicateKeyedClause.Error(), e.Key, e.Section)
}

func (e *DuplicateKeyedClauseError) Unwrap() error { return ErrDuplicateKeyedClause }
