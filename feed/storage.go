package feed

import "errors"

import "go.uber.org/zap"

import "github.com/logan/plume"

const defaultBatchSize = 100

// maxSliceLimit caps unbounded slices; a pure range store needs some limit on every scan.
const maxSliceLimit = 1000000

// Unbounded may be passed as the stop argument of Slice to read to the end of the feed.
const Unbounded = -1

// A Filter is an equality constraint on a row column, applied to Slice queries.
type Filter struct {
	Column string
	Value  interface{}
}

// Config describes a Storage. Table is required; it names the column family holding the feed's
// activity rows and is resolved against the schema registry at construction.
type Config struct {
	Table         string
	BatchSize     int         // Rows per insert chunk; defaults to 100.
	AtomicInserts bool        // Default atomicity for batches created by NewBatch.
	Logger        *zap.Logger // Defaults to a nop logger.
	Serializer    Serializer  // Used by AddObjects; defaults to JSONSerializer.
}

// Storage implements feed timeline semantics over one activity table. Every operation is a
// synchronous, stateless request against the store; Storage itself holds no mutable state and
// is safe for concurrent use. Batches it creates are not.
type Storage struct {
	model      *Model
	batchSize  int
	atomic     bool
	logger     *zap.Logger
	serializer Serializer
}

// NewStorage resolves the configured table in the schema registry and returns a Storage bound
// to it.
func NewStorage(schema *plume.Schema, config Config) (*Storage, error) {
	if config.Table == "" {
		return nil, errors.New("feed: table name required")
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaultBatchSize
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Serializer == nil {
		config.Serializer = JSONSerializer{}
	}
	return &Storage{
		model:      RegisterTable(schema, config.Table),
		batchSize:  config.BatchSize,
		atomic:     config.AtomicInserts,
		logger:     config.Logger,
		serializer: config.Serializer,
	}, nil
}

// Model returns the row accessor for the storage's table.
func (s *Storage) Model() *Model {
	return s.model
}

// NewBatch returns a fresh Batch bound to the storage's chunk size and atomicity default.
func (s *Storage) NewBatch() *Batch {
	return newBatch(s.model.CF().Cluster(), s.batchSize, s.atomic, s.logger)
}

func (s *Storage) bound() error {
	if !s.model.CF().IsBound() {
		return plume.ErrTableNotBound
	}
	return nil
}

// Contains returns true if the feed holds a row for the given activity id. Absence is not an
// error.
func (s *Storage) Contains(key string, id int64) (bool, error) {
	if err := s.bound(); err != nil {
		return false, err
	}
	opsTotal.WithLabelValues("contains").Inc()
	qiter := plume.Select("COUNT(*)").From(s.model.CF()).
		Where("FeedID = ?", key).
		Where("ActivityID = ?", id).
		Query()
	var count int
	if !qiter.Scan(&count) {
		return false, qiter.Close()
	}
	return count > 0, nil
}

// IndexOf returns the zero-based rank of the activity id within the feed, in descending id
// order. The rank of an id is the number of ids in the feed strictly greater than it. Returns
// ErrNotFound if the id is absent.
func (s *Storage) IndexOf(key string, id int64) (int, error) {
	ok, err := s.Contains(key, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNotFound
	}
	opsTotal.WithLabelValues("index_of").Inc()
	qiter := plume.Select("COUNT(*)").From(s.model.CF()).
		Where("FeedID = ?", key).
		Where("ActivityID > ?", id).
		Query()
	var count int
	if !qiter.Scan(&count) {
		return 0, qiter.Close()
	}
	return count, nil
}

// NthItem returns the entry at the given descending rank. This costs O(index) against a store
// with no random-offset access: index+1 rows are scanned and the last is kept. Returns
// ErrOutOfRange if the feed has no row at that rank.
func (s *Storage) NthItem(key string, index int) (*ActivityRow, error) {
	if err := s.bound(); err != nil {
		return nil, err
	}
	if index < 0 {
		return nil, ErrOutOfRange
	}
	opsTotal.WithLabelValues("nth_item").Inc()
	qiter := s.model.selectFeed(key).
		OrderBy("ActivityID DESC").
		Limit(index + 1).
		Query()
	row := &ActivityRow{}
	scanned := 0
	for qiter.Scan(&row.FeedID, &row.ActivityID, &row.Payload) {
		scanned++
	}
	if err := qiter.Close(); err != nil {
		return nil, err
	}
	if scanned < index+1 {
		return nil, ErrOutOfRange
	}
	return row, nil
}

// Slice returns the entries at ranks [start, stop), newest first. Pass Unbounded as stop to
// read to the end of the feed (capped at maxSliceLimit rows). Filters add equality terms on
// row columns. A feed shorter than start yields an empty slice, not an error.
//
// When start > 0, the boundary entry is resolved with NthItem first and the scan is bounded
// above by its activity id; deep offsets therefore pay an O(start) lookup per call.
func (s *Storage) Slice(key string, start, stop int, filters ...Filter) ([]Entry, error) {
	if err := s.bound(); err != nil {
		return nil, err
	}
	opsTotal.WithLabelValues("slice").Inc()
	if start < 0 {
		start = 0
	}

	limit := maxSliceLimit
	if stop >= 0 {
		limit = stop - start
		if limit <= 0 {
			return []Entry{}, nil
		}
	}

	sel := s.model.selectFeed(key)
	for _, f := range filters {
		sel.Where(f.Column+" = ?", f.Value)
	}
	if len(filters) > 0 {
		sel.AllowFiltering()
	}

	if start > 0 {
		boundary, err := s.NthItem(key, start)
		if errors.Is(err, ErrOutOfRange) {
			return []Entry{}, nil
		}
		if err != nil {
			return nil, err
		}
		sel.Where("ActivityID <= ?", boundary.ActivityID)
	}

	qiter := sel.OrderBy("ActivityID DESC").Limit(limit).Query()
	entries := make([]Entry, 0)
	var feedID string
	var id int64
	var payload []byte
	for qiter.Scan(&feedID, &id, &payload) {
		entries = append(entries, Entry{ActivityID: id, Payload: payload})
		payload = nil
	}
	if err := qiter.Close(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Add stores the given entries (activity id to payload) in the feed. Re-adding an existing id
// overwrites its payload. If batch is nil the writes are flushed immediately; otherwise they
// are queued on the caller's batch and flushed by the caller's Execute.
func (s *Storage) Add(key string, entries map[int64][]byte, batch *Batch) error {
	if err := s.bound(); err != nil {
		return err
	}
	opsTotal.WithLabelValues("add").Inc()
	b := batch
	if b == nil {
		b = s.NewBatch()
	}
	for id, payload := range entries {
		b.QueueInsert(s.model, &ActivityRow{FeedID: key, ActivityID: id, Payload: payload})
	}
	if batch == nil {
		return b.Execute()
	}
	return nil
}

// AddObjects serializes the given activity values with the configured serializer and adds them.
func (s *Storage) AddObjects(key string, objects map[int64]interface{}, batch *Batch) error {
	entries := make(map[int64][]byte, len(objects))
	for id, obj := range objects {
		payload, err := s.serializer.Dump(obj)
		if err != nil {
			return err
		}
		entries[id] = payload
	}
	return s.Add(key, entries, batch)
}

// Remove deletes the given activity ids from the feed. Missing ids are ignored by the store.
// Same batch-or-flush rule as Add.
func (s *Storage) Remove(key string, ids []int64, batch *Batch) error {
	if err := s.bound(); err != nil {
		return err
	}
	opsTotal.WithLabelValues("remove").Inc()
	b := batch
	if b == nil {
		b = s.NewBatch()
	}
	for _, id := range ids {
		b.QueueDelete(s.model.deleteCQL(key, id))
	}
	if batch == nil {
		return b.Execute()
	}
	return nil
}

// Count returns the number of rows in the feed.
func (s *Storage) Count(key string) (int, error) {
	if err := s.bound(); err != nil {
		return 0, err
	}
	opsTotal.WithLabelValues("count").Inc()
	qiter := plume.Select("COUNT(*)").From(s.model.CF()).Where("FeedID = ?", key).Query()
	var count int
	if !qiter.Scan(&count) {
		return 0, qiter.Close()
	}
	return count, nil
}

// Delete removes the entire feed with one partition delete.
func (s *Storage) Delete(key string) error {
	if err := s.bound(); err != nil {
		return err
	}
	opsTotal.WithLabelValues("delete").Inc()
	return s.model.deleteFeedCQL(key).Query().Exec()
}

// Trim shrinks the feed to at most length newest entries by deleting everything older than the
// oldest survivor. A feed already at or below length is left untouched, including the empty
// feed. Same batch-or-flush rule as Add.
func (s *Storage) Trim(key string, length int, batch *Batch) error {
	if err := s.bound(); err != nil {
		return err
	}
	opsTotal.WithLabelValues("trim").Inc()

	b := batch
	if b == nil {
		b = s.NewBatch()
	}

	if length <= 0 {
		b.QueueDelete(s.model.deleteFeedCQL(key))
		if batch == nil {
			return b.Execute()
		}
		return nil
	}

	survivors, err := s.Slice(key, 0, length)
	if err != nil {
		return err
	}
	// fewer rows than the cap means there is nothing older to evict; this also covers the
	// empty feed
	if len(survivors) < length {
		return nil
	}

	boundary := survivors[len(survivors)-1].ActivityID
	qiter := plume.Select("ActivityID").From(s.model.CF()).
		Where("FeedID = ?", key).
		Where("ActivityID < ?", boundary).
		Query()
	evicted := 0
	var id int64
	for qiter.Scan(&id) {
		b.QueueDelete(s.model.deleteCQL(key, id))
		evicted++
	}
	if err := qiter.Close(); err != nil {
		return err
	}
	if evicted == 0 {
		return nil
	}
	s.logger.Debug("trimming feed",
		zap.String("feed", key), zap.Int("keep", length), zap.Int("evicted", evicted))
	if batch == nil {
		return b.Execute()
	}
	return nil
}
