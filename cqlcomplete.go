// Package cqlcomplete provides statement-aware CQL completion for Cassandra
// and ScyllaDB.
//
// This is a convenience package that re-exports the main types and functions
// from the sub-packages. For more control, import the sub-packages directly:
//
//   - github.com/tentacle-scylla/cqlcomplete/pkg/complete - Completion engine and registry
//   - github.com/tentacle-scylla/cqlcomplete/pkg/tokenize - CQL lexer
//   - github.com/tentacle-scylla/cqlcomplete/pkg/schema   - Schema model and name sources
//   - github.com/tentacle-scylla/cqlcomplete/pkg/cluster  - Schema from a live cluster
//   - github.com/tentacle-scylla/cqlcomplete/pkg/types    - Keywords, statement names, errors
package cqlcomplete

import (
	"context"

	"github.com/tentacle-scylla/cqlcomplete/pkg/complete"
	"github.com/tentacle-scylla/cqlcomplete/pkg/schema"
	"github.com/tentacle-scylla/cqlcomplete/pkg/types"
)

// Re-export types
type (
	// Engine completes statements against a registry
	Engine = complete.Engine

	// Result is the outcome of one completion request
	Result = complete.Result

	// CompletionItem represents a single completion suggestion
	CompletionItem = complete.CompletionItem

	// CompletionKind identifies the type of completion item
	CompletionKind = complete.CompletionKind

	// Outcome describes how far the engine got with the input
	Outcome = complete.Outcome

	// Option configures an Engine
	Option = complete.Option

	// Source supplies keyspace and object names
	Source = schema.Source

	// Schema represents a CQL schema (keyspaces, tables, columns, etc.)
	Schema = schema.Schema

	// StatementName identifies a completable statement
	StatementName = types.StatementName
)

// Re-export options
var (
	WithMaxItems = complete.WithMaxItems
	WithLogger   = complete.WithLogger
)

// New builds an engine over the default statement registry.
func New(src Source, opts ...Option) (*Engine, error) {
	reg, err := complete.DefaultRegistry(src)
	if err != nil {
		return nil, err
	}
	return complete.NewEngine(reg, opts...), nil
}

// Complete is a one-shot helper: it builds an engine over s and completes
// text at cursor.
func Complete(ctx context.Context, s *Schema, text string, cursor int, defaultKeyspace string) (Result, error) {
	engine, err := New(schema.NewStaticSource(s))
	if err != nil {
		return Result{}, err
	}
	return engine.CompleteText(ctx, text, cursor, defaultKeyspace), nil
}
