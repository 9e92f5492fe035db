package plume

import "strings"

// A Column gives the name and data type of a Cassandra column. The value of Type should be a CQL
// data type (e.g. bigint, varchar, blob).
type Column struct {
	Name string
	Type string
}

// A CF describes how rows of a table are stored in Cassandra.
type CF struct {
	Name       string   // The name of the column family.
	Columns    []Column // The definition of the column family's columns.
	PrimaryKey []string // The partition key followed by clustering columns.

	// ClusterOrder optionally gives CLUSTERING ORDER BY terms, e.g. "ActivityID DESC".
	ClusterOrder []string

	schema *Schema
}

// Cluster returns the cluster the column family's schema is bound to, if any.
func (cf *CF) Cluster() Cluster {
	if cf.schema == nil {
		return nil
	}
	return cf.schema.Cluster
}

// IsBound returns true if the column family can issue queries.
func (cf *CF) IsBound() bool {
	return cf.Cluster() != nil
}

// Key sets the primary key and rearranges columns so key columns come first and in order.
func (cf *CF) Key(keys ...string) *CF {
	cf.PrimaryKey = keys

	rearranged := make([]Column, len(cf.Columns))
	keymap := make(map[string]bool)
	for i, k := range keys {
		for _, col := range cf.Columns {
			if k == col.Name {
				keymap[k] = true
				rearranged[i] = col
				break
			}
		}
	}
	i := len(keys)
	for _, col := range cf.Columns {
		if _, ok := keymap[col.Name]; !ok {
			rearranged[i] = col
			i++
		}
	}
	copy(cf.Columns, rearranged)
	return cf
}

// ColumnNames returns the names of the column family's columns, in declaration order.
func (cf *CF) ColumnNames() []string {
	names := make([]string, len(cf.Columns))
	for i, col := range cf.Columns {
		names[i] = col.Name
	}
	return names
}

// CreateStatement returns the CQL statement that would create this table.
func (cf *CF) CreateStatement() CQL {
	var b CQLBuilder
	b.Append("CREATE TABLE " + cf.Name + " (")
	for _, col := range cf.Columns {
		b.Append(col.Name + " " + col.Type + ", ")
	}
	b.Append("PRIMARY KEY (" + strings.Join(cf.PrimaryKey, ", ") + "))")
	if len(cf.ClusterOrder) > 0 {
		b.Append(" WITH CLUSTERING ORDER BY (" + strings.Join(cf.ClusterOrder, ", ") + ")")
	}
	cql := b.CQL()
	cql.Cluster(cf.Cluster())
	return cql
}

type Keyspace map[string]*CF

// Schema is a registry of column families by table name, defining a keyspace. Given a table
// identifier it hands back the column family bound to that table; column families are declared
// explicitly rather than synthesized at runtime.
type Schema struct {
	Cluster Cluster
	CFs     Keyspace
}

// NewSchema returns an empty, unbound schema.
func NewSchema() *Schema {
	return &Schema{CFs: make(Keyspace)}
}

// AddCF adds a column family definition to the schema.
func (s *Schema) AddCF(cf *CF) *CF {
	cf.Name = strings.ToLower(cf.Name)
	s.CFs[cf.Name] = cf
	cf.schema = s
	return cf
}

// CF returns the column family registered under the given table name, or nil.
func (s *Schema) CF(name string) *CF {
	return s.CFs[strings.ToLower(name)]
}

// SetCluster connects a schema (and all of its column families) to a Cluster.
func (s *Schema) SetCluster(cluster Cluster) {
	s.Cluster = cluster
}

// IsBound returns true if the schema is bound to a Cluster.
func (s *Schema) IsBound() bool {
	return s.Cluster != nil
}

// CreateAll issues the CREATE TABLE statement for every registered column family. Suitable for
// tests and bootstrap; it makes no attempt to diff against tables that already exist.
func (s *Schema) CreateAll() error {
	if !s.IsBound() {
		return ErrNoCluster
	}
	for _, cf := range s.CFs {
		if err := cf.CreateStatement().Query().Exec(); err != nil {
			return WrapError("create "+cf.Name, err)
		}
	}
	return nil
}
