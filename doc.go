/*
Package plume provides the storage plumbing for feed timelines kept in Cassandra.

A feed timeline is a partition of activity rows, clustered by activity id and read newest first.
This package supplies the pieces the feed layer is built from: a Cluster interface abstracting
the wide-column store, declarative CQL builders, an explicit schema registry, snowflake id
generation, and an in-memory fake cluster for tests. The feed semantics themselves live in the
feed subpackage.

Clusters

A Cluster issues CQL against a keyspace. The gocql-backed implementation is obtained with
DialCassandra:

        config := plume.CassandraConfig{Keyspace: "app", Node: []string{"localhost:9042"}}
        cluster, err := plume.DialCassandra(config)

The same configuration can be resolved from the environment:

        config, err := plume.ConfigFromEnv()

For tests, FakeCassandra returns an in-memory imitation that understands the statement shapes
produced by this package's builders.

Schemas

A Schema is a registry of column families by table name. Column families are declared
explicitly, with no reflection or runtime type synthesis:

        schema := plume.NewSchema()
        schema.AddCF(&plume.CF{
            Name:       "timeline",
            Columns:    []plume.Column{{Name: "FeedID", Type: "varchar"}, ...},
            PrimaryKey: []string{"FeedID", "ActivityID"},
        })
        schema.SetCluster(cluster)

Schema.CreateAll issues the CREATE TABLE statements for every registered column family, which
is enough for tests and examples; production keyspace management is expected to happen
elsewhere.

Working with CQL

A Query on a Cluster takes CQL values rather than a string plus parameters, because statements
are built declaratively:

        cql := plume.Select("FeedID", "ActivityID").From(cf).
            Where("FeedID = ?", key).
            OrderBy("ActivityID DESC").
            Limit(10).CQL()
        qiter := cql.Query()

Multiple statements passed to a single Query call are dispatched as one logged batch. The
Batch method selects between logged (atomic) and unlogged batches explicitly.
*/
package plume
