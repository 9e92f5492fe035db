/*
Package feed implements timeline storage for activity feeds on top of plume.

A feed is a named, ordered collection of activity entries. Each entry is a row keyed by
(FeedID, ActivityID) with ActivityID clustering the partition, and every read returns entries
sorted by ActivityID descending (newest first). Storage provides the feed-level operations:
membership, rank lookup, slicing, mutation, counting, and bounded trimming. Mutations are
routed through a Batch, which coalesces inserts per table and flushes them as chunked bulk
writes.

        schema := plume.NewSchema()
        schema.SetCluster(cluster)
        storage, err := feed.NewStorage(schema, feed.Config{Table: "timeline"})

        err = storage.Add("user:1", map[int64][]byte{id: payload}, nil)
        entries, err := storage.Slice("user:1", 0, 25)

Performance contract

Cassandra offers ordered range scans but no random-offset access, so rank-based lookups are
O(index): NthItem(key, n) reads n+1 rows and keeps the last, and Slice with a non-zero start
resolves its boundary the same way before issuing a bounded range query. Callers paginating
deep into long feeds pay for the boundary lookup on every page; avoid large offsets on hot
paths and prefer id-bounded pagination where possible.

Batching

A Batch is a transient, single-use accumulator. It is not safe for concurrent queuing, and a
failed Execute must be treated as possibly partially applied: chunks flushed before the error
stay committed. Inserts are idempotent upserts, so re-executing a failed batch converges.
*/
package feed
