package plume

import "strings"

import "github.com/caarlos0/env/v11"
import "github.com/gocql/gocql"

// CassandraConfig specifies a Cassandra cluster and keyspace to connect to.
type CassandraConfig struct {
	// Required. The keyspace to use throughout the connection.
	Keyspace string `env:"CASSANDRA_KEYSPACE"`

	// Required. The list of nodes in the cluster, given as <host>:<port> strings.
	Node []string `env:"CASSANDRA_NODES" envSeparator:","`

	// Optional. The default consistency level for the connection. Valid values are one of:
	//
	//   one, two, three, any, all, quorum, localquorum, eachquorum, serial, or localserial.
	//
	// If no value or an invalid value is given, then "quorum" will be used. Matching is case
	// insensitive.
	Consistency string `env:"CASSANDRA_CONSISTENCY"`
}

// ConfigFromEnv resolves a CassandraConfig from CASSANDRA_* environment variables.
func ConfigFromEnv() (CassandraConfig, error) {
	var config CassandraConfig
	err := env.Parse(&config)
	return config, err
}

// cassandraConn is an open connection to a Cassandra cluster associated with a particular keyspace.
type cassandraConn struct {
	*gocql.Session                 // The underlying gocql Session, for querying the cluster.
	Config         CassandraConfig // The settings used to establish the session.
}

// DialCassandra connects to a Cassandra cluster as specified by the given config.
func DialCassandra(config CassandraConfig) (Cluster, error) {
	var session *gocql.Session
	var err error
	if session, err = makeCluster(config).CreateSession(); err != nil {
		return nil, err
	}
	return &cassandraConn{Config: config, Session: session}, nil
}

func makeCluster(config CassandraConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(config.Node...)
	cluster.Keyspace = config.Keyspace
	cluster.Consistency = parseConsistency(config.Consistency)
	return cluster
}

func parseConsistency(value string) (consistency gocql.Consistency) {
	switch strings.ToLower(value) {
	default:
	case "quorum":
		consistency = gocql.Quorum
	case "any":
		consistency = gocql.Any
	case "one":
		consistency = gocql.One
	case "two":
		consistency = gocql.Two
	case "three":
		consistency = gocql.Three
	case "all":
		consistency = gocql.All
	case "localquorum":
		consistency = gocql.LocalQuorum
	case "eachquorum":
		consistency = gocql.EachQuorum
	case "serial":
		consistency = gocql.Consistency(gocql.Serial)
	case "localserial":
		consistency = gocql.Consistency(gocql.LocalSerial)
	}
	return
}

func (conn *cassandraConn) GetKeyspace() string {
	return conn.Config.Keyspace
}

func (conn *cassandraConn) Query(stmts ...CQL) Query {
	if len(stmts) == 0 {
		return nil
	}
	if len(stmts) > 1 {
		return conn.Batch(LoggedBatch, stmts...)
	}
	stmt := stmts[0]
	return (*cassQuery)(conn.Session.Query(string(stmt.PreparedCQL), stmt.params...).Iter())
}

func (conn *cassandraConn) Batch(kind BatchKind, stmts ...CQL) Query {
	gkind := gocql.LoggedBatch
	if kind == UnloggedBatch {
		gkind = gocql.UnloggedBatch
	}
	batch := conn.Session.NewBatch(gkind)
	for _, stmt := range stmts {
		batch.Query(string(stmt.PreparedCQL), stmt.params...)
	}
	return &cassBatchQuery{conn.Session.ExecuteBatch(batch)}
}

type cassBatchQuery struct{ error }

func (iter *cassBatchQuery) Close() error                  { return iter.error }
func (iter *cassBatchQuery) Exec() error                   { return iter.Close() }
func (iter *cassBatchQuery) Scan(dest ...interface{}) bool { return false }

type cassQuery gocql.Iter

func (iter *cassQuery) Close() error {
	return (*gocql.Iter)(iter).Close()
}

func (iter *cassQuery) Exec() error {
	return iter.Close()
}

func (iter *cassQuery) Scan(dest ...interface{}) bool {
	return (*gocql.Iter)(iter).Scan(dest...)
}
