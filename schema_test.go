package plume

import "testing"

func TestSchemaRegistry(t *testing.T) {
	schema := NewSchema()
	cf := schema.AddCF(&CF{
		Name: "Timeline",
		Columns: []Column{
			{Name: "FeedID", Type: "varchar"},
			{Name: "ActivityID", Type: "bigint"},
		},
		PrimaryKey: []string{"FeedID", "ActivityID"},
	})

	if cf.Name != "timeline" {
		t.Errorf("expected lowercased table name, got %q", cf.Name)
	}
	if schema.CF("timeline") != cf {
		t.Error("registry lookup by name failed")
	}
	if schema.CF("TIMELINE") != cf {
		t.Error("registry lookup should be case insensitive")
	}
	if schema.CF("missing") != nil {
		t.Error("unregistered name should yield nil")
	}

	if cf.IsBound() {
		t.Error("column family should not be bound before SetCluster")
	}
	schema.SetCluster(FakeCassandra())
	if !cf.IsBound() {
		t.Error("column family should be bound after SetCluster")
	}
}

func TestKeyRearrangesColumns(t *testing.T) {
	cf := &CF{
		Columns: []Column{
			{Name: "Payload", Type: "blob"},
			{Name: "FeedID", Type: "varchar"},
			{Name: "ActivityID", Type: "bigint"},
		},
	}
	cf.Key("FeedID", "ActivityID")

	expected := []string{"FeedID", "ActivityID", "Payload"}
	for i, name := range cf.ColumnNames() {
		if name != expected[i] {
			t.Fatalf("expected column order %v, got %v", expected, cf.ColumnNames())
		}
	}
}

func TestCreateStatement(t *testing.T) {
	schema := NewSchema()
	cf := schema.AddCF(&CF{
		Name: "timeline",
		Columns: []Column{
			{Name: "FeedID", Type: "varchar"},
			{Name: "ActivityID", Type: "bigint"},
			{Name: "Payload", Type: "blob"},
		},
		PrimaryKey:   []string{"FeedID", "ActivityID"},
		ClusterOrder: []string{"ActivityID DESC"},
	})

	expected := "CREATE TABLE timeline (FeedID varchar, ActivityID bigint, Payload blob," +
		" PRIMARY KEY (FeedID, ActivityID)) WITH CLUSTERING ORDER BY (ActivityID DESC)"
	if received := cf.CreateStatement().String(); received != expected {
		t.Errorf("\nexpected: %s\nreceived: %s", expected, received)
	}
}

func TestCreateAll(t *testing.T) {
	schema := NewSchema()
	schema.AddCF(&CF{
		Name:       "timeline",
		Columns:    []Column{{Name: "FeedID", Type: "varchar"}, {Name: "ActivityID", Type: "bigint"}},
		PrimaryKey: []string{"FeedID", "ActivityID"},
	})

	if err := schema.CreateAll(); err != ErrNoCluster {
		t.Fatalf("expected ErrNoCluster, got %v", err)
	}

	schema.SetCluster(FakeCassandra())
	if err := schema.CreateAll(); err != nil {
		t.Fatal(err)
	}

	cql := InsertInto(schema.CF("timeline")).
		Keys("FeedID", "ActivityID").
		Values("user:1", int64(1)).CQL()
	if err := cql.Query().Exec(); err != nil {
		t.Fatal(err)
	}
}
