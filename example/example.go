package main

import "fmt"
import "os"

import "github.com/joho/godotenv"
import "go.uber.org/zap"

import "github.com/logan/plume"
import "github.com/logan/plume/feed"

// Demonstrates feed storage against a real cluster when CASSANDRA_NODES is set (optionally via
// a .env file), or against the in-memory fake otherwise.
func main() {
	fail := func(err error) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fail(err)
	}
	defer logger.Sync()

	config, err := plume.ConfigFromEnv()
	if err != nil {
		fail(err)
	}

	var cluster plume.Cluster
	if len(config.Node) > 0 {
		if cluster, err = plume.DialCassandra(config); err != nil {
			fail(err)
		}
	} else {
		cluster = plume.FakeCassandra()
	}
	defer cluster.Close()

	schema := plume.NewSchema()
	schema.SetCluster(cluster)

	storage, err := feed.NewStorage(schema, feed.Config{Table: "timeline", Logger: logger})
	if err != nil {
		fail(err)
	}
	if err = schema.CreateAll(); err != nil {
		fail(err)
	}

	idgen, err := plume.NewIDGenerator()
	if err != nil {
		fail(err)
	}

	type post struct {
		Author string
		Title  string
	}
	posts := map[int64]interface{}{}
	for _, title := range []string{"first post", "second post", "third post"} {
		id, err := idgen.NewID()
		if err != nil {
			fail(err)
		}
		posts[id] = &post{Author: "logan", Title: title}
	}
	if err = storage.AddObjects("user:logan", posts, nil); err != nil {
		fail(err)
	}

	entries, err := storage.Slice("user:logan", 0, 10)
	if err != nil {
		fail(err)
	}
	fmt.Printf("feed user:logan (%d entries, newest first):\n", len(entries))
	for _, entry := range entries {
		var p post
		if err = entry.Decode(&p); err != nil {
			fail(err)
		}
		fmt.Printf("  %d: %q by %s\n", entry.ActivityID, p.Title, p.Author)
	}

	if err = storage.Trim("user:logan", 2, nil); err != nil {
		fail(err)
	}
	count, err := storage.Count("user:logan")
	if err != nil {
		fail(err)
	}
	fmt.Printf("after trim to 2: %d entries\n", count)
}
