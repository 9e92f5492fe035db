package feed

import "bytes"
import "errors"
import "fmt"
import "testing"

import "github.com/logan/plume"

func newTestStorage(t *testing.T) *Storage {
	cluster := plume.NewTestConn(t)
	t.Cleanup(cluster.Close)

	schema := plume.NewSchema()
	schema.SetCluster(cluster)

	storage, err := NewStorage(schema, Config{Table: "timeline"})
	if err != nil {
		t.Fatal(err)
	}
	if err = schema.CreateAll(); err != nil {
		t.Fatal(err)
	}
	return storage
}

// seedFeed adds activity ids 5,4,3,2,1 with payloads p5..p1.
func seedFeed(t *testing.T, storage *Storage, key string) {
	entries := make(map[int64][]byte)
	for i := int64(1); i <= 5; i++ {
		entries[i] = []byte(fmt.Sprintf("p%d", i))
	}
	if err := storage.Add(key, entries, nil); err != nil {
		t.Fatal(err)
	}
}

func entryIDs(entries []Entry) []int64 {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.ActivityID
	}
	return ids
}

func expectIDs(t *testing.T, entries []Entry, expected ...int64) {
	t.Helper()
	received := entryIDs(entries)
	if len(received) != len(expected) {
		t.Fatalf("expected ids %v, received %v", expected, received)
	}
	for i := range expected {
		if received[i] != expected[i] {
			t.Fatalf("expected ids %v, received %v", expected, received)
		}
	}
}

func TestAddAndSlice(t *testing.T) {
	storage := newTestStorage(t)
	seedFeed(t, storage, "user:1")

	entries, err := storage.Slice("user:1", 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	expectIDs(t, entries, 5, 4, 3)
	for i, expected := range []string{"p5", "p4", "p3"} {
		if string(entries[i].Payload) != expected {
			t.Errorf("entry %d: expected payload %q, got %q", i, expected, entries[i].Payload)
		}
	}

	entries, err = storage.Slice("user:1", 0, Unbounded)
	if err != nil {
		t.Fatal(err)
	}
	expectIDs(t, entries, 5, 4, 3, 2, 1)

	entries, err = storage.Slice("user:empty", 0, Unbounded)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty slice for unknown feed, got %v", entryIDs(entries))
	}
}

func TestSliceOffsets(t *testing.T) {
	storage := newTestStorage(t)
	seedFeed(t, storage, "user:1")

	entries, err := storage.Slice("user:1", 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	expectIDs(t, entries, 3, 2)

	entries, err = storage.Slice("user:1", 3, Unbounded)
	if err != nil {
		t.Fatal(err)
	}
	expectIDs(t, entries, 2, 1)

	// start beyond the feed yields an empty page, not an error
	entries, err = storage.Slice("user:1", 10, 12)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty slice, got %v", entryIDs(entries))
	}

	// an empty window is empty
	entries, err = storage.Slice("user:1", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty slice, got %v", entryIDs(entries))
	}
}

func TestSliceFilters(t *testing.T) {
	storage := newTestStorage(t)
	seedFeed(t, storage, "user:1")

	entries, err := storage.Slice("user:1", 0, Unbounded,
		Filter{Column: "Payload", Value: []byte("p3")})
	if err != nil {
		t.Fatal(err)
	}
	expectIDs(t, entries, 3)
}

func TestContains(t *testing.T) {
	storage := newTestStorage(t)
	seedFeed(t, storage, "user:1")

	ok, err := storage.Contains("user:1", 3)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected feed to contain id 3")
	}

	ok, err = storage.Contains("user:1", 42)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected feed not to contain id 42")
	}

	ok, err = storage.Contains("user:empty", 1)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected empty feed to contain nothing")
	}
}

func TestIndexOf(t *testing.T) {
	storage := newTestStorage(t)
	seedFeed(t, storage, "user:1")

	// rank 0 for the maximum id, increasing as ids decrease
	for id, expected := range map[int64]int{5: 0, 4: 1, 3: 2, 2: 3, 1: 4} {
		rank, err := storage.IndexOf("user:1", id)
		if err != nil {
			t.Fatal(err)
		}
		if rank != expected {
			t.Errorf("IndexOf(%d): expected %d, got %d", id, expected, rank)
		}
	}

	if _, err := storage.IndexOf("user:1", 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNthItem(t *testing.T) {
	storage := newTestStorage(t)
	seedFeed(t, storage, "user:1")

	row, err := storage.NthItem("user:1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if row.ActivityID != 5 || string(row.Payload) != "p5" {
		t.Errorf("expected newest row (5, p5), got (%d, %q)", row.ActivityID, row.Payload)
	}

	row, err = storage.NthItem("user:1", 4)
	if err != nil {
		t.Fatal(err)
	}
	if row.ActivityID != 1 {
		t.Errorf("expected oldest row id 1, got %d", row.ActivityID)
	}

	if _, err = storage.NthItem("user:1", 5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if _, err = storage.NthItem("user:1", -1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange for negative index, got %v", err)
	}
	if _, err = storage.NthItem("user:empty", 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange on empty feed, got %v", err)
	}
}

func TestUpsertKeepsCount(t *testing.T) {
	storage := newTestStorage(t)
	seedFeed(t, storage, "user:1")

	if err := storage.Add("user:1", map[int64][]byte{3: []byte("rewritten")}, nil); err != nil {
		t.Fatal(err)
	}

	count, err := storage.Count("user:1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Errorf("re-adding an id must not change count: got %d", count)
	}

	entries, err := storage.Slice("user:1", 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !bytes.Equal(entries[0].Payload, []byte("rewritten")) {
		t.Errorf("expected overwritten payload, got %+v", entries)
	}
}

func TestRemove(t *testing.T) {
	storage := newTestStorage(t)
	seedFeed(t, storage, "user:1")

	if err := storage.Remove("user:1", []int64{4}, nil); err != nil {
		t.Fatal(err)
	}

	ok, err := storage.Contains("user:1", 4)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("removed id should be gone")
	}
	count, err := storage.Count("user:1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Errorf("expected count 4 after remove, got %d", count)
	}

	// removing an absent id is not an error and changes nothing
	if err = storage.Remove("user:1", []int64{42}, nil); err != nil {
		t.Fatal(err)
	}
	if count, err = storage.Count("user:1"); err != nil || count != 4 {
		t.Errorf("expected count 4, got %d (err %v)", count, err)
	}
}

func TestCountAndDelete(t *testing.T) {
	storage := newTestStorage(t)
	seedFeed(t, storage, "user:1")
	seedFeed(t, storage, "user:2")

	count, err := storage.Count("user:1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Errorf("expected count 5, got %d", count)
	}

	if err = storage.Delete("user:1"); err != nil {
		t.Fatal(err)
	}
	if count, err = storage.Count("user:1"); err != nil || count != 0 {
		t.Errorf("expected count 0 after delete, got %d (err %v)", count, err)
	}
	// the other feed is untouched
	if count, err = storage.Count("user:2"); err != nil || count != 5 {
		t.Errorf("expected count 5 on untouched feed, got %d (err %v)", count, err)
	}
}

func TestTrim(t *testing.T) {
	storage := newTestStorage(t)
	seedFeed(t, storage, "user:1")

	if err := storage.Trim("user:1", 3, nil); err != nil {
		t.Fatal(err)
	}
	count, err := storage.Count("user:1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("expected count 3 after trim, got %d", count)
	}
	entries, err := storage.Slice("user:1", 0, Unbounded)
	if err != nil {
		t.Fatal(err)
	}
	expectIDs(t, entries, 5, 4, 3)

	// trimming to the same length again is a no-op
	if err = storage.Trim("user:1", 3, nil); err != nil {
		t.Fatal(err)
	}
	if count, err = storage.Count("user:1"); err != nil || count != 3 {
		t.Errorf("expected count 3 after no-op trim, got %d (err %v)", count, err)
	}

	// trimming above the feed length is a no-op
	if err = storage.Trim("user:1", 10, nil); err != nil {
		t.Fatal(err)
	}
	if count, err = storage.Count("user:1"); err != nil || count != 3 {
		t.Errorf("expected count 3, got %d (err %v)", count, err)
	}
}

func TestTrimEmptyFeed(t *testing.T) {
	storage := newTestStorage(t)

	if err := storage.Trim("user:2", 10, nil); err != nil {
		t.Fatal(err)
	}
	count, err := storage.Count("user:2")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected empty feed to stay empty, got %d", count)
	}
}

func TestTrimToZero(t *testing.T) {
	storage := newTestStorage(t)
	seedFeed(t, storage, "user:1")

	if err := storage.Trim("user:1", 0, nil); err != nil {
		t.Fatal(err)
	}
	count, err := storage.Count("user:1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected count 0 after trim to zero, got %d", count)
	}
}

func TestExternalBatchSpansOperations(t *testing.T) {
	storage := newTestStorage(t)
	seedFeed(t, storage, "user:1")

	batch := storage.NewBatch()
	if err := storage.Add("user:1", map[int64][]byte{6: []byte("p6")}, batch); err != nil {
		t.Fatal(err)
	}
	if err := storage.Remove("user:1", []int64{1}, batch); err != nil {
		t.Fatal(err)
	}

	// nothing is visible until the caller executes the batch
	count, err := storage.Count("user:1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Errorf("queued mutations must not be visible before Execute: count %d", count)
	}

	if err = batch.Execute(); err != nil {
		t.Fatal(err)
	}
	entries, err := storage.Slice("user:1", 0, Unbounded)
	if err != nil {
		t.Fatal(err)
	}
	expectIDs(t, entries, 6, 5, 4, 3, 2)
}

func TestAddObjects(t *testing.T) {
	storage := newTestStorage(t)

	type activity struct {
		Verb   string
		Object string
	}
	objects := map[int64]interface{}{
		1: &activity{Verb: "post", Object: "hello"},
		2: &activity{Verb: "like", Object: "hello"},
	}
	if err := storage.AddObjects("user:1", objects, nil); err != nil {
		t.Fatal(err)
	}

	entries, err := storage.Slice("user:1", 0, Unbounded)
	if err != nil {
		t.Fatal(err)
	}
	expectIDs(t, entries, 2, 1)

	var decoded activity
	if err = entries[0].Decode(&decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Verb != "like" || decoded.Object != "hello" {
		t.Errorf("unexpected decoded activity: %+v", decoded)
	}
}

func TestUnboundStorage(t *testing.T) {
	schema := plume.NewSchema()
	storage, err := NewStorage(schema, Config{Table: "timeline"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err = storage.Count("user:1"); !errors.Is(err, plume.ErrTableNotBound) {
		t.Errorf("expected ErrTableNotBound, got %v", err)
	}
}
