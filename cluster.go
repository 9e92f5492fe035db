package plume

// BatchKind selects how a multi-statement batch is applied by the store.
type BatchKind int

const (
	// LoggedBatch applies all statements atomically.
	LoggedBatch BatchKind = iota
	// UnloggedBatch applies statements without an atomicity guarantee.
	UnloggedBatch
)

// A Cluster issues CQL statements against a single keyspace.
type Cluster interface {
	GetKeyspace() string

	// Query executes the given statements. A single statement runs on its own; multiple
	// statements are submitted as one logged batch.
	Query(...CQL) Query

	// Batch executes the given statements as one batch of the given kind.
	Batch(BatchKind, ...CQL) Query

	Close()
}

// A Query provides access to the results and errors of an issued statement.
type Query interface {
	// Exec runs the statement, discarding any result rows.
	Exec() error

	// Scan copies the next result row into the given destinations. It returns false when no
	// rows remain or an error occurred; Close reports the error.
	Scan(...interface{}) bool

	Close() error
}
