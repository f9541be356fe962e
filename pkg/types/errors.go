package types

import (
	"fmt"
	"strings"
)

// DuplicateStatementError is returned when two handlers claim the same
// leading keyword sequence or statement name, or when one leading sequence
// would shadow another. It is a programming error and aborts startup.
type DuplicateStatementError struct {
	Leading   string        // Leading keyword phrase being registered
	Statement StatementName // Statement being registered
	Owner     StatementName // Statement that already owns the phrase
	Shadowed  bool          // True when the phrases overlap by prefix rather than match
}

// Error implements the error interface
func (e *DuplicateStatementError) Error() string {
	if e.Shadowed {
		return fmt.Sprintf("leading keyword %q of %s overlaps with %s", e.Leading, e.Statement, e.Owner)
	}
	return fmt.Sprintf("leading keyword %q of %s already owned by %s", e.Leading, e.Statement, e.Owner)
}

// EmptyDecisionListError is returned when a handler registers a decision list
// with no steps, or a step without alternatives.
type EmptyDecisionListError struct {
	Statement StatementName
	Step      int // -1 when the whole list is empty
}

// Error implements the error interface
func (e *EmptyDecisionListError) Error() string {
	if e.Step < 0 {
		return fmt.Sprintf("%s: decision list has no steps", e.Statement)
	}
	return fmt.Sprintf("%s: decision list step %d has no alternatives", e.Statement, e.Step)
}

// SuggestionSourceError wraps a failure of an external suggestion source
// (schema lookup, cluster timeout). The engine reports it next to the
// suggestions it could still gather.
type SuggestionSourceError struct {
	Statement StatementName
	Step      int
	Provider  string
	Err       error
}

// Error implements the error interface
func (e *SuggestionSourceError) Error() string {
	return fmt.Sprintf("%s step %d: %s: %v", e.Statement, e.Step, e.Provider, e.Err)
}

// Unwrap returns the underlying source error
func (e *SuggestionSourceError) Unwrap() error {
	return e.Err
}

// Errors is a collection of errors gathered during one request
type Errors []error

// Error implements the error interface for the collection
func (e Errors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d errors:\n", len(e)))
	for i, err := range e {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// HasErrors returns true if there are any errors
func (e Errors) HasErrors() bool {
	return len(e) > 0
}

// First returns the first error or nil if empty
func (e Errors) First() error {
	if len(e) == 0 {
		return nil
	}
	return e[0]
}

// Strings renders each error message, for JSON payloads
func (e Errors) Strings() []string {
	if len(e) == 0 {
		return nil
	}
	out := make([]string, len(e))
	for i, err := range e {
		out[i] = err.Error()
	}
	return out
}
