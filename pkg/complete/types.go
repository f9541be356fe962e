// Package complete provides statement-aware CQL auto-completion.
//
// Each supported statement registers a decision list: an ordered sequence of
// steps, each step an ordered set of alternative providers. The engine
// classifies the input by its leading keywords, walks the matching decision
// list over the completed tokens and asks the providers of the step under the
// cursor for suggestions.
package complete

import (
	"github.com/tentacle-scylla/cqlcomplete/pkg/tokenize"
	"github.com/tentacle-scylla/cqlcomplete/pkg/types"
)

// CompletionKind identifies the type of completion item.
type CompletionKind string

const (
	KindKeyword  CompletionKind = "keyword"
	KindKeyspace CompletionKind = "keyspace"
	KindTable    CompletionKind = "table"
	KindView     CompletionKind = "view" // Materialized view
	KindIndex    CompletionKind = "index"
	KindType     CompletionKind = "type" // User-defined type
	KindOption   CompletionKind = "option"
	KindOperator CompletionKind = "operator"
	KindValue    CompletionKind = "value"
	KindSnippet  CompletionKind = "snippet"
)

// CompletionItem represents a single completion suggestion.
type CompletionItem struct {
	// Label is the display text shown in the completion list, and the text
	// matched against the typed prefix
	Label string `json:"label"`

	// Kind identifies the type of completion (keyword, table, option, etc.)
	Kind CompletionKind `json:"kind"`

	// Detail provides additional info (e.g., base table of a view)
	Detail string `json:"detail,omitempty"`

	// InsertText is the text to insert (may differ from Label for snippets)
	InsertText string `json:"insertText,omitempty"`

	// Documentation provides extended documentation
	Documentation string `json:"documentation,omitempty"`

	// Groups contains IDs of groups this item belongs to (e.g., "ks:shop").
	Groups []string `json:"groups,omitempty"`
}

// GetInsertText returns the text to insert, defaulting to Label.
func (c *CompletionItem) GetInsertText() string {
	if c.InsertText != "" {
		return c.InsertText
	}
	return c.Label
}

// Outcome describes how far the engine got with the input.
type Outcome string

const (
	// OutcomeUndetermined: the leading keywords are incomplete (nothing typed,
	// or "CREATE" alone). Suggestions are the statement phrases that fit.
	OutcomeUndetermined Outcome = "undetermined"
	// OutcomeUnknown: the leading keywords match no registered statement.
	OutcomeUnknown Outcome = "unknown"
	// OutcomeSuggesting: the walk reached a step and produced its suggestions.
	OutcomeSuggesting Outcome = "suggesting"
	// OutcomeAccepted: every step is satisfied and nothing more is typed.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeOverSpecified: more tokens than the decision list has steps.
	OutcomeOverSpecified Outcome = "over_specified"
	// OutcomeInvalid: a token matched no alternative of its step.
	OutcomeInvalid Outcome = "invalid"
)

// CompletionRequest is the tokenized engine input: completed tokens plus the
// partial word under the cursor (possibly empty).
type CompletionRequest struct {
	Tokens          []tokenize.Token
	Partial         string
	DefaultKeyspace string
}

// Result is the outcome of one completion request.
type Result struct {
	// Statement is the recognized statement, StatementUnknown if none
	Statement types.StatementName `json:"statement"`

	Outcome Outcome `json:"outcome"`

	// Step is the decision list position reached, -1 before classification
	// resolved a statement
	Step int `json:"step"`

	// Items are the suggestions, in provider registration order
	Items []CompletionItem `json:"items"`

	// Groups defines every group referenced by Items
	Groups []CompletionGroup `json:"groups,omitempty"`

	// Replace is the partial text the chosen item replaces
	Replace string `json:"replace"`

	// ReplaceStart is the offset of Replace in the input text (CompleteText only)
	ReplaceStart int `json:"replaceStart"`

	// Hint names the statement keyword an unrecognized first word likely
	// misspells.
	Hint string `json:"hint,omitempty"`

	// Errors holds suggestion source failures. Items still carries what the
	// other providers produced.
	Errors types.Errors `json:"-"`
}

// Labels returns the label of every item, in order.
func (r *Result) Labels() []string {
	out := make([]string, len(r.Items))
	for i, it := range r.Items {
		out[i] = it.Label
	}
	return out
}
