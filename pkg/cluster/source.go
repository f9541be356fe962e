package cluster

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	gocql "github.com/apache/cassandra-gocql-driver/v2"
	"golang.org/x/sync/singleflight"

	"github.com/tentacle-scylla/cqlcomplete/pkg/schema"
)

// DefaultTimeout bounds a lookup when none is configured.
const DefaultTimeout = 2 * time.Second

// Source implements schema.Source against system_schema. Concurrent
// identical lookups share one query, and every call gives up after the
// timeout or when its context ends, whichever comes first.
type Source struct {
	q       querier
	timeout time.Duration
	group   singleflight.Group
}

var _ schema.Source = (*Source)(nil)

// NewSource creates a source reading through session.
func NewSource(session *gocql.Session, timeout time.Duration) *Source {
	return newSource(sessionQuerier{session: session}, timeout)
}

func newSource(q querier, timeout time.Duration) *Source {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Source{q: q, timeout: timeout}
}

// Keyspaces implements schema.Source.
func (s *Source) Keyspaces(ctx context.Context) ([]string, error) {
	return s.names(ctx, "keyspaces", "SELECT keyspace_name FROM system_schema.keyspaces")
}

// Tables implements schema.Source.
func (s *Source) Tables(ctx context.Context, keyspace string) ([]string, error) {
	return s.names(ctx, "tables/"+keyspace,
		"SELECT table_name FROM system_schema.tables WHERE keyspace_name = ?", keyspace)
}

// Indexes implements schema.Source.
func (s *Source) Indexes(ctx context.Context, keyspace string) ([]string, error) {
	return s.names(ctx, "indexes/"+keyspace,
		"SELECT index_name FROM system_schema.indexes WHERE keyspace_name = ?", keyspace)
}

// Types implements schema.Source.
func (s *Source) Types(ctx context.Context, keyspace string) ([]string, error) {
	return s.names(ctx, "types/"+keyspace,
		"SELECT type_name FROM system_schema.types WHERE keyspace_name = ?", keyspace)
}

// Views implements schema.Source.
func (s *Source) Views(ctx context.Context, keyspace string) ([]string, error) {
	return s.names(ctx, "views/"+keyspace,
		"SELECT view_name FROM system_schema.views WHERE keyspace_name = ?", keyspace)
}

func (s *Source) names(ctx context.Context, key, stmt string, args ...interface{}) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ch := s.group.DoChan(key, func() (interface{}, error) {
		iter := s.q.query(stmt, args...)
		var (
			out  []string
			name string
		)
		for iter.Scan(&name) {
			out = append(out, name)
		}
		if err := iter.Close(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		sort.Strings(out)
		return out, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("reading %s: %w", key, ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		// the slice is shared between every caller of the flight
		return slices.Clone(r.Val.([]string)), nil
	}
}
