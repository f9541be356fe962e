package schema

// NewSchema creates a new empty schema.
func NewSchema() *Schema {
	return &Schema{
		Keyspaces: make(map[string]*Keyspace),
	}
}

// AddKeyspace adds a new keyspace to the schema and returns it.
// If a keyspace with the same name already exists, it returns the existing one.
func (s *Schema) AddKeyspace(name string) *Keyspace {
	if s.Keyspaces == nil {
		s.Keyspaces = make(map[string]*Keyspace)
	}
	if ks, exists := s.Keyspaces[name]; exists {
		return ks
	}
	ks := &Keyspace{
		Name:          name,
		Replication:   make(map[string]string),
		Tables:        make(map[string]*Table),
		Types:         make(map[string]*UserType),
		Views:         make(map[string]*MaterializedView),
		DurableWrites: true,
	}
	s.Keyspaces[name] = ks
	return ks
}

// WithReplication sets the replication map for the keyspace.
func (ks *Keyspace) WithReplication(replication map[string]string) *Keyspace {
	ks.Replication = replication
	return ks
}

// WithDurableWrites sets durable_writes for the keyspace.
func (ks *Keyspace) WithDurableWrites(durable bool) *Keyspace {
	ks.DurableWrites = durable
	return ks
}

// AddTable adds a new table to the keyspace and returns it.
// If a table with the same name already exists, it returns the existing one.
func (ks *Keyspace) AddTable(name string) *Table {
	if ks.Tables == nil {
		ks.Tables = make(map[string]*Table)
	}
	if t, exists := ks.Tables[name]; exists {
		return t
	}
	t := &Table{
		Name:     name,
		Keyspace: ks.Name,
		Columns:  make(map[string]*Column),
		Indexes:  make(map[string]*Index),
	}
	ks.Tables[name] = t
	return t
}

// AddColumn adds a column to the table and returns the table for chaining.
func (t *Table) AddColumn(name, cqlType string) *Table {
	if t.Columns == nil {
		t.Columns = make(map[string]*Column)
	}
	if _, exists := t.Columns[name]; !exists {
		t.ColumnOrder = append(t.ColumnOrder, name)
	}
	t.Columns[name] = &Column{Name: name, Type: cqlType}
	return t
}

// AddStaticColumn adds a static column to the table.
func (t *Table) AddStaticColumn(name, cqlType string) *Table {
	t.AddColumn(name, cqlType)
	t.Columns[name].IsStatic = true
	return t
}

// SetPartitionKey sets the partition key columns.
// Columns must already exist in the table.
func (t *Table) SetPartitionKey(columns ...string) *Table {
	t.PartitionKey = columns
	for _, name := range columns {
		if col := t.GetColumn(name); col != nil {
			col.IsPartitionKey = true
		}
	}
	return t
}

// SetClusteringKey sets the clustering key columns.
// Columns must already exist in the table.
func (t *Table) SetClusteringKey(columns ...string) *Table {
	t.ClusteringKey = columns
	for _, name := range columns {
		if col := t.GetColumn(name); col != nil {
			col.IsClusteringKey = true
		}
	}
	return t
}

// AddIndex adds a secondary index to the table.
func (t *Table) AddIndex(name, targetColumn string) *Index {
	if t.Indexes == nil {
		t.Indexes = make(map[string]*Index)
	}
	idx := &Index{Name: name, Table: t.Name, TargetColumn: targetColumn}
	t.Indexes[name] = idx
	return idx
}

// AddType adds a user-defined type to the keyspace.
func (ks *Keyspace) AddType(name string) *UserType {
	if ks.Types == nil {
		ks.Types = make(map[string]*UserType)
	}
	udt := &UserType{
		Name:     name,
		Keyspace: ks.Name,
		Fields:   make(map[string]string),
	}
	ks.Types[name] = udt
	return udt
}

// AddField adds a field to the user-defined type.
func (udt *UserType) AddField(name, cqlType string) *UserType {
	if udt.Fields == nil {
		udt.Fields = make(map[string]string)
	}
	udt.Fields[name] = cqlType
	udt.FieldOrder = append(udt.FieldOrder, name)
	return udt
}

// AddView adds a materialized view over baseTable to the keyspace.
func (ks *Keyspace) AddView(name, baseTable string) *MaterializedView {
	if ks.Views == nil {
		ks.Views = make(map[string]*MaterializedView)
	}
	mv := &MaterializedView{Name: name, Keyspace: ks.Name, BaseTable: baseTable}
	ks.Views[name] = mv
	return mv
}
