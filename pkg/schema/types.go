// Package schema provides types for representing CQL schemas.
// A schema can be built by hand, loaded from a JSON snapshot or read from a
// live cluster, and serves the identifier suggestions of the completion engine.
package schema

import "sort"

// Schema represents a complete CQL schema with all keyspaces.
type Schema struct {
	Keyspaces map[string]*Keyspace `json:"keyspaces"`
}

// Keyspace represents a CQL keyspace with the objects completion can name.
type Keyspace struct {
	Name          string                       `json:"name"`
	Replication   map[string]string            `json:"replication,omitempty"` // "class" plus strategy options
	DurableWrites bool                         `json:"durableWrites"`
	Tables        map[string]*Table            `json:"tables,omitempty"`
	Types         map[string]*UserType         `json:"types,omitempty"`
	Views         map[string]*MaterializedView `json:"views,omitempty"`
}

// Table represents a CQL table with its columns, keys and indexes.
type Table struct {
	Name          string             `json:"name"`
	Keyspace      string             `json:"keyspace"`
	Columns       map[string]*Column `json:"columns,omitempty"`
	ColumnOrder   []string           `json:"columnOrder,omitempty"` // Preserves column definition order
	PartitionKey  []string           `json:"partitionKey,omitempty"`
	ClusteringKey []string           `json:"clusteringKey,omitempty"`
	Indexes       map[string]*Index  `json:"indexes,omitempty"`
	Comment       string             `json:"comment,omitempty"`
}

// Column represents a column in a table.
type Column struct {
	Name            string `json:"name"`
	Type            string `json:"type"` // CQL type string (e.g., "text", "map<text, int>")
	IsStatic        bool   `json:"static,omitempty"`
	IsPartitionKey  bool   `json:"partitionKey,omitempty"`
	IsClusteringKey bool   `json:"clusteringKey,omitempty"`
}

// Index represents a secondary index on a table.
type Index struct {
	Name         string `json:"name"`
	Table        string `json:"table"`
	TargetColumn string `json:"target,omitempty"`
}

// MaterializedView represents a materialized view.
type MaterializedView struct {
	Name      string `json:"name"`
	Keyspace  string `json:"keyspace"`
	BaseTable string `json:"baseTable"`
}

// UserType represents a user-defined type (UDT).
type UserType struct {
	Name       string            `json:"name"`
	Keyspace   string            `json:"keyspace"`
	Fields     map[string]string `json:"fields,omitempty"` // Field name -> CQL type
	FieldOrder []string          `json:"fieldOrder,omitempty"`
}

// Lookup methods

// GetKeyspace returns a keyspace by name, or nil if not found.
func (s *Schema) GetKeyspace(name string) *Keyspace {
	if s == nil || s.Keyspaces == nil {
		return nil
	}
	return s.Keyspaces[name]
}

// GetTable returns a table by name, or nil if not found.
func (ks *Keyspace) GetTable(name string) *Table {
	if ks == nil || ks.Tables == nil {
		return nil
	}
	return ks.Tables[name]
}

// GetColumn returns a column by name, or nil if not found.
func (t *Table) GetColumn(name string) *Column {
	if t == nil || t.Columns == nil {
		return nil
	}
	return t.Columns[name]
}

// AllColumns returns all columns in definition order.
func (t *Table) AllColumns() []*Column {
	if t == nil {
		return nil
	}
	cols := make([]*Column, 0, len(t.ColumnOrder))
	for _, name := range t.ColumnOrder {
		if col := t.GetColumn(name); col != nil {
			cols = append(cols, col)
		}
	}
	return cols
}

// Name listings. All of them are sorted: completion output must not depend
// on map iteration order.

// KeyspaceNames returns all keyspace names in the schema.
func (s *Schema) KeyspaceNames() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.Keyspaces)
}

// TableNames returns all table names in the keyspace.
func (ks *Keyspace) TableNames() []string {
	if ks == nil {
		return nil
	}
	return sortedKeys(ks.Tables)
}

// TypeNames returns all user-defined type names in the keyspace.
func (ks *Keyspace) TypeNames() []string {
	if ks == nil {
		return nil
	}
	return sortedKeys(ks.Types)
}

// ViewNames returns all materialized view names in the keyspace.
func (ks *Keyspace) ViewNames() []string {
	if ks == nil {
		return nil
	}
	return sortedKeys(ks.Views)
}

// IndexNames returns the names of all indexes on all tables of the keyspace.
func (ks *Keyspace) IndexNames() []string {
	if ks == nil {
		return nil
	}
	var names []string
	for _, tbl := range ks.Tables {
		for name := range tbl.Indexes {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
