package hydration

import (
	"fmt"
	"strings"
)

// Mode is the caller's policy for a detected mismatch.
type Mode string

// Mismatch policies.
const (
	// ModeStrict returns the mismatch to the caller.
	ModeStrict Mode = "strict"
	// ModeLog records the mismatch and continues with the resolved records.
	ModeLog Mode = "log"
	// ModeIgnore continues silently.
	ModeIgnore Mode = "ignore"
)

// ParseMode parses a mode name; empty selects ModeStrict.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeStrict, nil
	case ModeStrict, ModeLog, ModeIgnore:
		return m, nil
	default:
		return "", fmt.Errorf("unknown hydration mode %q", s)
	}
}

func (m Mode) String() string { return string(m) }
