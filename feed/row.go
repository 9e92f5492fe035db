package feed

import "encoding/json"

import "github.com/logan/plume"

// An ActivityRow is one stored activity: a feed partition key, a unique-per-feed activity id,
// and an opaque serialized payload.
type ActivityRow struct {
	FeedID     string
	ActivityID int64
	Payload    []byte
}

// An Entry is the (activity id, payload) pair returned by reads.
type Entry struct {
	ActivityID int64
	Payload    []byte
}

// Decode unmarshals a JSON payload into v. Payloads written through another Serializer should
// be decoded with that serializer's Load instead.
func (e Entry) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// A Model is a row accessor bound to one activity table. It builds the statements Storage and
// Batch issue for rows of that table.
type Model struct {
	cf *plume.CF
}

// RegisterTable returns the Model for the activity table with the given name, registering the
// column family in the schema if it is not already present. This is the factory that replaces
// per-table model types: one schema registry entry per column family name.
func RegisterTable(schema *plume.Schema, name string) *Model {
	if cf := schema.CF(name); cf != nil {
		return &Model{cf}
	}
	cf := &plume.CF{
		Name: name,
		Columns: []plume.Column{
			{Name: "FeedID", Type: "varchar"},
			{Name: "ActivityID", Type: "bigint"},
			{Name: "Payload", Type: "blob"},
		},
		PrimaryKey:   []string{"FeedID", "ActivityID"},
		ClusterOrder: []string{"ActivityID DESC"},
	}
	return &Model{schema.AddCF(cf)}
}

// CF returns the underlying column family.
func (m *Model) CF() *plume.CF {
	return m.cf
}

// Table returns the name of the bound table.
func (m *Model) Table() string {
	return m.cf.Name
}

func (m *Model) insertCQL(row *ActivityRow) plume.CQL {
	return plume.InsertInto(m.cf).
		Keys("FeedID", "ActivityID", "Payload").
		Values(row.FeedID, row.ActivityID, row.Payload).
		CQL()
}

func (m *Model) deleteCQL(key string, id int64) plume.CQL {
	return plume.DeleteFrom(m.cf).
		Where("FeedID = ?", key).
		Where("ActivityID = ?", id).
		CQL()
}

func (m *Model) deleteFeedCQL(key string) plume.CQL {
	return plume.DeleteFrom(m.cf).Where("FeedID = ?", key).CQL()
}

func (m *Model) selectFeed(key string) *plume.SelectBuilder {
	return plume.Select("FeedID", "ActivityID", "Payload").From(m.cf).Where("FeedID = ?", key)
}
