package schema

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func testSchema() *Schema {
	s := NewSchema()
	shop := s.AddKeyspace("shop").WithReplication(map[string]string{
		"class":              "SimpleStrategy",
		"replication_factor": "3",
	})
	shop.AddTable("orders").
		AddColumn("id", "uuid").
		AddColumn("customer", "text").
		AddColumn("total", "decimal").
		SetPartitionKey("id")
	shop.Tables["orders"].AddIndex("orders_by_customer", "customer")
	shop.AddTable("customers").
		AddColumn("id", "uuid").
		AddStaticColumn("region", "text").
		SetPartitionKey("id")
	shop.AddType("address").AddField("street", "text").AddField("city", "text")
	shop.AddView("orders_by_total", "orders")

	s.AddKeyspace("audit").AddTable("events").AddColumn("at", "timestamp")
	return s
}

func TestNewSchema(t *testing.T) {
	s := NewSchema()
	if s == nil {
		t.Fatal("NewSchema returned nil")
	}
	if s.Keyspaces == nil {
		t.Error("Keyspaces map should be initialized")
	}
}

func TestAddKeyspace(t *testing.T) {
	s := NewSchema()
	ks := s.AddKeyspace("test_ks")

	if ks.Name != "test_ks" {
		t.Errorf("Name = %q, want %q", ks.Name, "test_ks")
	}
	if !ks.DurableWrites {
		t.Error("DurableWrites should default to true")
	}

	// Adding same keyspace should return existing
	if ks2 := s.AddKeyspace("test_ks"); ks2 != ks {
		t.Error("Adding same keyspace should return existing one")
	}
}

func TestTableColumns(t *testing.T) {
	s := testSchema()
	tbl := s.GetKeyspace("shop").GetTable("orders")
	if tbl == nil {
		t.Fatal("orders table not found")
	}

	var names []string
	for _, c := range tbl.AllColumns() {
		names = append(names, c.Name)
	}
	if want := []string{"id", "customer", "total"}; !reflect.DeepEqual(names, want) {
		t.Errorf("AllColumns() = %v, want %v", names, want)
	}
	if !tbl.GetColumn("id").IsPartitionKey {
		t.Error("id should be a partition key")
	}

	// Re-adding a column replaces it without duplicating the order entry
	tbl.AddColumn("total", "double")
	if len(tbl.ColumnOrder) != 3 || tbl.GetColumn("total").Type != "double" {
		t.Errorf("re-added column: order=%v type=%q", tbl.ColumnOrder, tbl.GetColumn("total").Type)
	}

	if !s.GetKeyspace("shop").GetTable("customers").GetColumn("region").IsStatic {
		t.Error("region should be static")
	}
}

func TestSortedNames(t *testing.T) {
	s := testSchema()
	shop := s.GetKeyspace("shop")

	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{"keyspaces", s.KeyspaceNames(), []string{"audit", "shop"}},
		{"tables", shop.TableNames(), []string{"customers", "orders"}},
		{"indexes", shop.IndexNames(), []string{"orders_by_customer"}},
		{"types", shop.TypeNames(), []string{"address"}},
		{"views", shop.ViewNames(), []string{"orders_by_total"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestNilSafety(t *testing.T) {
	var s *Schema
	if s.GetKeyspace("x") != nil {
		t.Error("nil schema lookup should return nil")
	}
	if s.KeyspaceNames() != nil {
		t.Error("nil schema should have no keyspaces")
	}

	var ks *Keyspace
	if ks.GetTable("x") != nil || ks.TableNames() != nil || ks.IndexNames() != nil {
		t.Error("nil keyspace should be empty")
	}

	var tbl *Table
	if tbl.GetColumn("x") != nil || tbl.AllColumns() != nil {
		t.Error("nil table should be empty")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	s := testSchema()
	path := filepath.Join(t.TempDir(), "schema.json")

	if err := s.SaveToJSON(path); err != nil {
		t.Fatalf("SaveToJSON failed: %v", err)
	}

	s2, err := LoadFromJSON(path)
	if err != nil {
		t.Fatalf("LoadFromJSON failed: %v", err)
	}

	ks2 := s2.GetKeyspace("shop")
	if ks2 == nil {
		t.Fatal("Keyspace not found after round-trip")
	}
	if ks2.Replication["class"] != "SimpleStrategy" {
		t.Errorf("replication class = %q, want SimpleStrategy", ks2.Replication["class"])
	}
	if !ks2.GetTable("orders").GetColumn("id").IsPartitionKey {
		t.Error("id should be partition key after round-trip")
	}
	if got := ks2.ViewNames(); !reflect.DeepEqual(got, []string{"orders_by_total"}) {
		t.Errorf("ViewNames() after round-trip = %v", got)
	}
}

func TestParseJSONInvalid(t *testing.T) {
	if _, err := ParseJSON([]byte("{not json")); err == nil {
		t.Error("ParseJSON should fail on malformed input")
	}
	if _, err := LoadFromJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadFromJSON should fail on a missing file")
	}
}

func TestStaticSource(t *testing.T) {
	ctx := context.Background()
	src := NewStaticSource(testSchema())

	ks, err := src.Keyspaces(ctx)
	if err != nil || !reflect.DeepEqual(ks, []string{"audit", "shop"}) {
		t.Errorf("Keyspaces() = %v, %v", ks, err)
	}

	tables, err := src.Tables(ctx, "shop")
	if err != nil || !reflect.DeepEqual(tables, []string{"customers", "orders"}) {
		t.Errorf("Tables(shop) = %v, %v", tables, err)
	}

	if _, err := src.Tables(ctx, "nope"); !errors.Is(err, ErrKeyspaceNotFound) {
		t.Errorf("Tables(nope) error = %v, want ErrKeyspaceNotFound", err)
	}

	idx, _ := src.Indexes(ctx, "shop")
	types, _ := src.Types(ctx, "shop")
	views, _ := src.Views(ctx, "shop")
	if len(idx) != 1 || len(types) != 1 || len(views) != 1 {
		t.Errorf("Indexes=%v Types=%v Views=%v", idx, types, views)
	}
}

func TestStaticSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewStaticSource(testSchema())
	if _, err := src.Tables(ctx, "shop"); !errors.Is(err, context.Canceled) {
		t.Errorf("Tables() on cancelled context error = %v", err)
	}
}

func TestStaticSourceNilSchema(t *testing.T) {
	src := NewStaticSource(nil)
	names, err := src.Keyspaces(context.Background())
	if err != nil || names != nil {
		t.Errorf("Keyspaces() = %v, %v; want nil, nil", names, err)
	}
}
