// Package hover describes the CQL token under the cursor: statement and
// keyword help, WITH option documentation and schema objects.
package hover

import (
	"github.com/tentacle-scylla/cqlcomplete/pkg/schema"
)

// HoverKind identifies the type of hover target.
type HoverKind string

const (
	HoverStatement HoverKind = "statement"
	HoverKeyword   HoverKind = "keyword"
	HoverOption    HoverKind = "option"
	HoverValue     HoverKind = "value"
	HoverKeyspace  HoverKind = "keyspace"
	HoverTable     HoverKind = "table"
	HoverView      HoverKind = "view"
	HoverIndex     HoverKind = "index"
	HoverType      HoverKind = "type"
)

// Range represents a text range in the query.
type Range struct {
	// Start is the starting offset (inclusive)
	Start int `json:"start"`
	// End is the ending offset (exclusive)
	End int `json:"end"`
}

// HoverInfo contains information about a token at a position.
type HoverInfo struct {
	// Content is the hover text (supports markdown)
	Content string `json:"content"`

	// Range is the text range this hover applies to
	Range *Range `json:"range,omitempty"`

	// Kind identifies the type of token
	Kind HoverKind `json:"kind"`

	// Name is the statement phrase, keyword or object name
	Name string `json:"name"`
}

// HoverContext provides context for hover resolution.
type HoverContext struct {
	// Query is the full CQL query text
	Query string

	// Position is the cursor offset in the query
	Position int

	// Schema is the optional schema for object hovers
	Schema *schema.Schema

	// DefaultKeyspace resolves unqualified object names
	DefaultKeyspace string
}
