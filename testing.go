package plume

import "flag"
import "strings"
import "testing"

var (
	flagCluster  = flag.String("cluster", "", "cassandra nodes given as comma-separated host:port pairs")
	flagKeyspace = flag.String("keyspace", "plume_test", "name of throwaway keyspace for testing")
)

func connect(config CassandraConfig) (Cluster, error) {
	if config.Node[0] == "" {
		return FakeCassandra(), nil
	}
	return DialCassandra(config)
}

type testConn struct {
	Cluster
}

// NewTestConn connects to Cassandra and establishes an empty keyspace to operate in. Unless a
// -cluster flag names real nodes, an in-memory fake is used.
func NewTestConn(t *testing.T) Cluster {
	config := CassandraConfig{
		Node:        strings.Split(*flagCluster, ","),
		Keyspace:    "system",
		Consistency: "one",
	}
	if *flagCluster != "" {
		if err := initKeyspace(config); err != nil {
			t.Fatal(err)
		}
	}

	config.Keyspace = *flagKeyspace
	c, err := connect(config)
	if err != nil {
		t.Fatal(err)
	}

	return &testConn{c}
}

func initKeyspace(config CassandraConfig) error {
	c, err := connect(config)
	if err != nil {
		return err
	}
	defer c.Close()

	var b CQLBuilder
	cql := b.Append("DROP KEYSPACE IF EXISTS ").Append(*flagKeyspace).CQL()
	cql.Cluster(c)
	if err := cql.Query().Exec(); err != nil {
		return err
	}

	b.Clear()
	b.Append("CREATE KEYSPACE ").Append(*flagKeyspace)
	b.Append(" WITH REPLICATION = {'class': 'SimpleStrategy', 'replication_factor': 1}")
	cql = b.CQL()
	cql.Cluster(c)
	return cql.Query().Exec()
}

func (tc *testConn) Close() {
	defer tc.Cluster.Close()
	if *flagCluster == "" {
		return
	}
	var b CQLBuilder
	cql := b.Append("DROP KEYSPACE ").Append(*flagKeyspace).CQL()
	cql.Cluster(tc)
	cql.Query().Exec()
}
