package cluster

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"

	gocql "github.com/apache/cassandra-gocql-driver/v2"

	"github.com/tentacle-scylla/cqlcomplete/pkg/schema"
)

// IsSystemKeyspace reports whether name is one of the server's own keyspaces.
func IsSystemKeyspace(name string) bool {
	return name == "system" || strings.HasPrefix(name, "system_")
}

// LoadSchema reads the whole schema in a fixed number of queries, one per
// system_schema table. System keyspaces are skipped unless includeSystem is set.
func LoadSchema(ctx context.Context, session *gocql.Session, includeSystem bool) (*schema.Schema, error) {
	return loadSchema(ctx, sessionQuerier{session: session}, includeSystem)
}

type columnRow struct {
	name, typ, kind string
	position        int
}

func loadSchema(ctx context.Context, q querier, includeSystem bool) (*schema.Schema, error) {
	s := schema.NewSchema()

	var (
		ksName, name string
		replication  map[string]string
		durable      bool
	)
	err := scanAll(ctx, q, "keyspaces",
		"SELECT keyspace_name, replication, durable_writes FROM system_schema.keyspaces",
		[]interface{}{&ksName, &replication, &durable},
		func() {
			if !includeSystem && IsSystemKeyspace(ksName) {
				return
			}
			// the driver reuses the map between rows
			s.AddKeyspace(ksName).WithReplication(maps.Clone(replication)).WithDurableWrites(durable)
		})
	if err != nil {
		return nil, err
	}

	var comment string
	err = scanAll(ctx, q, "tables",
		"SELECT keyspace_name, table_name, comment FROM system_schema.tables",
		[]interface{}{&ksName, &name, &comment},
		func() {
			if ks := s.GetKeyspace(ksName); ks != nil {
				ks.AddTable(name).Comment = comment
			}
		})
	if err != nil {
		return nil, err
	}

	columns := make(map[*schema.Table][]columnRow)
	var table string
	var col columnRow
	err = scanAll(ctx, q, "columns",
		"SELECT keyspace_name, table_name, column_name, type, kind, position FROM system_schema.columns",
		[]interface{}{&ksName, &table, &col.name, &col.typ, &col.kind, &col.position},
		func() {
			if t := s.GetKeyspace(ksName).GetTable(table); t != nil {
				columns[t] = append(columns[t], col)
			}
		})
	if err != nil {
		return nil, err
	}
	for t, cols := range columns {
		applyColumns(t, cols)
	}

	var options map[string]string
	err = scanAll(ctx, q, "indexes",
		"SELECT keyspace_name, table_name, index_name, options FROM system_schema.indexes",
		[]interface{}{&ksName, &table, &name, &options},
		func() {
			if t := s.GetKeyspace(ksName).GetTable(table); t != nil {
				t.AddIndex(name, options["target"])
			}
		})
	if err != nil {
		return nil, err
	}

	var fieldNames, fieldTypes []string
	err = scanAll(ctx, q, "types",
		"SELECT keyspace_name, type_name, field_names, field_types FROM system_schema.types",
		[]interface{}{&ksName, &name, &fieldNames, &fieldTypes},
		func() {
			ks := s.GetKeyspace(ksName)
			if ks == nil {
				return
			}
			udt := ks.AddType(name)
			for i, f := range fieldNames {
				if i < len(fieldTypes) {
					udt.AddField(f, fieldTypes[i])
				}
			}
		})
	if err != nil {
		return nil, err
	}

	err = scanAll(ctx, q, "views",
		"SELECT keyspace_name, view_name, base_table_name FROM system_schema.views",
		[]interface{}{&ksName, &name, &table},
		func() {
			if ks := s.GetKeyspace(ksName); ks != nil {
				ks.AddView(name, table)
			}
		})
	if err != nil {
		return nil, err
	}

	return s, nil
}

// applyColumns adds columns in partition key, clustering, static, regular
// order, each kind sorted by position.
func applyColumns(t *schema.Table, cols []columnRow) {
	kindOrder := map[string]int{"partition_key": 0, "clustering": 1, "static": 2, "regular": 3}
	sort.SliceStable(cols, func(i, j int) bool {
		if kindOrder[cols[i].kind] != kindOrder[cols[j].kind] {
			return kindOrder[cols[i].kind] < kindOrder[cols[j].kind]
		}
		if cols[i].position != cols[j].position {
			return cols[i].position < cols[j].position
		}
		return cols[i].name < cols[j].name
	})

	var pk, ck []string
	for _, c := range cols {
		switch c.kind {
		case "static":
			t.AddStaticColumn(c.name, c.typ)
		default:
			t.AddColumn(c.name, c.typ)
		}
		switch c.kind {
		case "partition_key":
			pk = append(pk, c.name)
		case "clustering":
			ck = append(ck, c.name)
		}
	}
	if len(pk) > 0 {
		t.SetPartitionKey(pk...)
	}
	if len(ck) > 0 {
		t.SetClusteringKey(ck...)
	}
}

// scanAll runs stmt and calls row after every scanned row. It stops early,
// closing the iterator, once ctx is done.
func scanAll(ctx context.Context, q querier, what, stmt string, dest []interface{}, row func()) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", what, err)
	}
	iter := q.query(stmt)
	for iter.Scan(dest...) {
		row()
		if ctx.Err() != nil {
			break
		}
	}
	if err := iter.Close(); err != nil {
		return fmt.Errorf("reading %s: %w", what, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", what, err)
	}
	return nil
}
