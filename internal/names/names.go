// Package names validates the human-readable names of teams, races and
// stages.
package names

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/stageresults/internal/results"
)

// MaxLength is the longest name accepted.
const MaxLength = 30

// Validate rejects names that are empty, longer than MaxLength or contain
// whitespace.
func Validate(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty name: %w", results.ErrInvalidName)
	case len(name) > MaxLength:
		return fmt.Errorf("name %q longer than %d characters: %w", name, MaxLength, results.ErrInvalidName)
	case strings.ContainsFunc(name, isSpace):
		return fmt.Errorf("name %q contains whitespace: %w", name, results.ErrInvalidName)
	}
	return nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
