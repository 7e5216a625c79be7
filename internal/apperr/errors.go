// Package apperr defines error values shared across the engine and its
// caller-facing surfaces.
package apperr

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// InvalidQueryError is a user-input error produced by the search query
// compiler. The reason is surfaced verbatim to the caller.
type InvalidQueryError struct {
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return "invalid search query: " + e.Reason
}

// AmbiguousIDError reports that an id prefix matched more than one note.
// It carries the prefix and match count so the caller can ask for a longer
// prefix.
type AmbiguousIDError struct {
	Prefix string
	Count  int
}

func (e *AmbiguousIDError) Error() string {
	return fmt.Sprintf("id prefix %q is ambiguous: %d notes match", e.Prefix, e.Count)
}
