package feed

import "sort"

import "go.uber.org/zap"

import "github.com/logan/plume"

// A Batch accumulates pending mutations and flushes them as store-efficient bulk operations.
// Deletes and other native statements are dispatched as one logged batch; inserts are grouped
// by destination table and flushed in chunks of at most Size rows per bulk write.
//
// A Batch is a transient, single-writer object: create one per logical unit of work, queue
// mutations, call Execute once. It is not safe for concurrent use.
type Batch struct {
	// Size is the maximum number of rows per flushed insert chunk.
	Size int

	// Atomic makes each insert chunk all-or-nothing at the store level (a logged batch).
	// Atomicity never spans chunks: if Execute fails partway, chunks already flushed stay
	// committed.
	Atomic bool

	cluster plume.Cluster
	logger  *zap.Logger
	stmts   []plume.CQL
	inserts map[string][]*ActivityRow
	tables  map[string]*Model
}

func newBatch(cluster plume.Cluster, size int, atomic bool, logger *zap.Logger) *Batch {
	if size <= 0 {
		size = defaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batch{
		Size:    size,
		Atomic:  atomic,
		cluster: cluster,
		logger:  logger,
		stmts:   make([]plume.CQL, 0),
		inserts: make(map[string][]*ActivityRow),
		tables:  make(map[string]*Model),
	}
}

// QueueInsert appends a row to the pending inserts for the model's table. No I/O happens until
// Execute.
func (b *Batch) QueueInsert(m *Model, row *ActivityRow) {
	table := m.Table()
	b.inserts[table] = append(b.inserts[table], row)
	b.tables[table] = m
}

// QueueDelete attaches a delete (or any other single-row statement) to the batch's native
// statement list, flushed ahead of the insert groups.
func (b *Batch) QueueDelete(cql plume.CQL) {
	b.stmts = append(b.stmts, cql)
}

// Pending returns the number of queued statements and insert rows.
func (b *Batch) Pending() int {
	n := len(b.stmts)
	for _, rows := range b.inserts {
		n += len(rows)
	}
	return n
}

// Execute flushes everything queued so far: native statements first, then each table's insert
// group in chunks. On success the buffers are cleared. On error the flush stops where it
// failed; chunks already submitted remain committed, and the unflushed remainder stays queued,
// so a retried Execute re-applies only what is left (inserts are idempotent upserts).
func (b *Batch) Execute() error {
	if len(b.stmts) > 0 {
		if err := b.cluster.Batch(plume.LoggedBatch, b.stmts...).Exec(); err != nil {
			return err
		}
		b.stmts = b.stmts[:0]
	}

	kind := plume.UnloggedBatch
	if b.Atomic {
		kind = plume.LoggedBatch
	}

	tables := make([]string, 0, len(b.inserts))
	for table := range b.inserts {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		model := b.tables[table]
		rows := b.inserts[table]
		for start := 0; start < len(rows); start += b.Size {
			end := start + b.Size
			if end > len(rows) {
				end = len(rows)
			}
			chunk := rows[start:end]
			cqls := make([]plume.CQL, len(chunk))
			for i, row := range chunk {
				cqls[i] = model.insertCQL(row)
			}
			if err := b.cluster.Batch(kind, cqls...).Exec(); err != nil {
				b.inserts[table] = rows[start:]
				return err
			}
			chunkRows.Observe(float64(len(chunk)))
			b.logger.Debug("flushed insert chunk",
				zap.String("table", table), zap.Int("rows", len(chunk)), zap.Bool("atomic", b.Atomic))
		}
		delete(b.inserts, table)
		delete(b.tables, table)
	}
	return nil
}
