package cluster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIter hands out canned rows. Values are assigned by type, which is
// all the schema queries need.
type fakeIter struct {
	rows [][]interface{}
	err  error
}

func (it *fakeIter) Scan(dest ...interface{}) bool {
	if len(it.rows) == 0 {
		return false
	}
	row := it.rows[0]
	it.rows = it.rows[1:]
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *int:
			*p = row[i].(int)
		case *bool:
			*p = row[i].(bool)
		case *map[string]string:
			*p = row[i].(map[string]string)
		case *[]string:
			*p = row[i].([]string)
		default:
			panic(fmt.Sprintf("unsupported scan target %T", d))
		}
	}
	return true
}

func (it *fakeIter) Close() error { return it.err }

// fakeQuerier answers by the table named in the FROM clause.
type fakeQuerier struct {
	mu      sync.Mutex
	tables  map[string][][]interface{}
	errs    map[string]error
	calls   atomic.Int32
	release chan struct{}
}

func (f *fakeQuerier) query(stmt string, args ...interface{}) rowIter {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	table := stmt[strings.Index(stmt, "system_schema.")+len("system_schema."):]
	if i := strings.IndexByte(table, ' '); i >= 0 {
		table = table[:i]
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var rows [][]interface{}
	for _, r := range f.tables[table] {
		// rows of keyed lookups carry the keyspace first
		if len(args) == 1 {
			if r[0] != args[0] {
				continue
			}
			r = r[1:]
		}
		rows = append(rows, r)
	}
	return &fakeIter{rows: rows, err: f.errs[table]}
}

func clusterRows() *fakeQuerier {
	return &fakeQuerier{tables: map[string][][]interface{}{
		"keyspaces": {
			{"shop", map[string]string{"class": "SimpleStrategy", "replication_factor": "3"}, true},
			{"system", map[string]string{"class": "LocalStrategy"}, true},
			{"audit", map[string]string{"class": "NetworkTopologyStrategy", "dc1": "2"}, false},
		},
		"tables": {
			{"shop", "orders", "all orders"},
			{"system", "peers", ""},
			{"audit", "events", ""},
		},
		"columns": {
			{"shop", "orders", "total", "decimal", "regular", -1},
			{"shop", "orders", "placed", "timestamp", "clustering", 0},
			{"shop", "orders", "id", "uuid", "partition_key", 0},
			{"shop", "orders", "shard", "int", "partition_key", 1},
			{"shop", "orders", "region", "text", "static", -1},
			{"shop", "gone", "x", "int", "regular", -1},
		},
		"indexes": {
			{"shop", "orders", "orders_by_total", map[string]string{"target": "total"}},
		},
		"types": {
			{"shop", "address", []string{"street", "zip"}, []string{"text", "int"}},
		},
		"views": {
			{"shop", "orders_by_placed", "orders"},
		},
	}}
}

func TestLoadSchema(t *testing.T) {
	s, err := loadSchema(context.Background(), clusterRows(), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"audit", "shop"}, s.KeyspaceNames())

	shop := s.GetKeyspace("shop")
	assert.Equal(t, "3", shop.Replication["replication_factor"])
	assert.True(t, shop.DurableWrites)
	assert.False(t, s.GetKeyspace("audit").DurableWrites)

	orders := shop.GetTable("orders")
	require.NotNil(t, orders)
	assert.Equal(t, "all orders", orders.Comment)
	assert.Equal(t, []string{"id", "shard", "placed", "region", "total"}, orders.ColumnOrder)
	assert.Equal(t, []string{"id", "shard"}, orders.PartitionKey)
	assert.Equal(t, []string{"placed"}, orders.ClusteringKey)
	assert.True(t, orders.GetColumn("region").IsStatic)
	assert.Equal(t, "total", orders.Indexes["orders_by_total"].TargetColumn)

	assert.Equal(t, []string{"street", "zip"}, shop.Types["address"].FieldOrder)
	assert.Equal(t, "orders", shop.Views["orders_by_placed"].BaseTable)
}

func TestLoadSchemaIncludeSystem(t *testing.T) {
	s, err := loadSchema(context.Background(), clusterRows(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"audit", "shop", "system"}, s.KeyspaceNames())
	assert.NotNil(t, s.GetKeyspace("system").GetTable("peers"))
}

func TestLoadSchemaQueryError(t *testing.T) {
	q := clusterRows()
	q.errs = map[string]error{"indexes": errors.New("unavailable")}

	_, err := loadSchema(context.Background(), q, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading indexes")
}

func TestLoadSchemaCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q := clusterRows()

	_, err := loadSchema(ctx, q, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, q.calls.Load())
}

func TestIsSystemKeyspace(t *testing.T) {
	assert.True(t, IsSystemKeyspace("system"))
	assert.True(t, IsSystemKeyspace("system_distributed_everywhere"))
	assert.False(t, IsSystemKeyspace("systems"))
	assert.False(t, IsSystemKeyspace("shop"))
}

func TestSourceNames(t *testing.T) {
	src := newSource(&fakeQuerier{tables: map[string][][]interface{}{
		"keyspaces": {{"shop"}, {"audit"}},
		"tables":    {{"shop", "orders"}, {"shop", "customers"}, {"audit", "events"}},
		"views":     {{"shop", "orders_by_total"}},
	}}, time.Second)
	ctx := context.Background()

	ks, err := src.Keyspaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"audit", "shop"}, ks)

	tables, err := src.Tables(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, tables)

	views, err := src.Views(ctx, "audit")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestSourceError(t *testing.T) {
	src := newSource(&fakeQuerier{errs: map[string]error{"indexes": errors.New("timeout")}}, time.Second)
	_, err := src.Indexes(context.Background(), "shop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "indexes/shop")
}

func TestSourceTimeout(t *testing.T) {
	q := &fakeQuerier{release: make(chan struct{})}
	defer close(q.release)
	src := newSource(q, 20*time.Millisecond)

	_, err := src.Keyspaces(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSourceSharesConcurrentLookups(t *testing.T) {
	q := &fakeQuerier{
		tables:  map[string][][]interface{}{"types": {{"shop", "address"}}},
		release: make(chan struct{}),
	}
	src := newSource(q, time.Second)

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan []string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			names, err := src.Types(context.Background(), "shop")
			assert.NoError(t, err)
			results <- names
		}()
	}

	// let every caller join the flight before the query returns
	require.Eventually(t, func() bool { return q.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(q.release)
	wg.Wait()
	close(results)

	for names := range results {
		assert.Equal(t, []string{"address"}, names)
	}
	assert.Equal(t, int32(1), q.calls.Load())
}
