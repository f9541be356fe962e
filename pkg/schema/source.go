package schema

import (
	"context"
	"errors"
)

// ErrKeyspaceNotFound is returned by sources asked about an unknown keyspace.
var ErrKeyspaceNotFound = errors.New("keyspace not found")

// Source supplies identifier names for completion. Implementations may block
// on I/O and own their timeout policy; returned names must be sorted.
type Source interface {
	Keyspaces(ctx context.Context) ([]string, error)
	Tables(ctx context.Context, keyspace string) ([]string, error)
	Indexes(ctx context.Context, keyspace string) ([]string, error)
	Types(ctx context.Context, keyspace string) ([]string, error)
	Views(ctx context.Context, keyspace string) ([]string, error)
}

// StaticSource serves names from an in-memory schema.
type StaticSource struct {
	schema *Schema
}

// NewStaticSource wraps s. A nil schema yields no names.
func NewStaticSource(s *Schema) *StaticSource {
	return &StaticSource{schema: s}
}

// Schema returns the wrapped schema.
func (src *StaticSource) Schema() *Schema {
	return src.schema
}

// Keyspaces implements Source.
func (src *StaticSource) Keyspaces(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return src.schema.KeyspaceNames(), nil
}

// Tables implements Source.
func (src *StaticSource) Tables(ctx context.Context, keyspace string) ([]string, error) {
	ks, err := src.keyspace(ctx, keyspace)
	if err != nil {
		return nil, err
	}
	return ks.TableNames(), nil
}

// Indexes implements Source.
func (src *StaticSource) Indexes(ctx context.Context, keyspace string) ([]string, error) {
	ks, err := src.keyspace(ctx, keyspace)
	if err != nil {
		return nil, err
	}
	return ks.IndexNames(), nil
}

// Types implements Source.
func (src *StaticSource) Types(ctx context.Context, keyspace string) ([]string, error) {
	ks, err := src.keyspace(ctx, keyspace)
	if err != nil {
		return nil, err
	}
	return ks.TypeNames(), nil
}

// Views implements Source.
func (src *StaticSource) Views(ctx context.Context, keyspace string) ([]string, error) {
	ks, err := src.keyspace(ctx, keyspace)
	if err != nil {
		return nil, err
	}
	return ks.ViewNames(), nil
}

func (src *StaticSource) keyspace(ctx context.Context, name string) (*Keyspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ks := src.schema.GetKeyspace(name)
	if ks == nil {
		return nil, ErrKeyspaceNotFound
	}
	return ks, nil
}
