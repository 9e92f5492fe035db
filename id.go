package plume

import "time"

import "github.com/sdming/gosnow"

// Epoch is the base time for generated activity ids.
var Epoch = time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC)

func init() {
	gosnow.Since = Epoch.UnixNano() / 1000000
}

// An IDGenerator produces totally ordered, unique activity ids. Implementations must be safe
// for concurrent use.
type IDGenerator interface {
	NewID() (int64, error)
}

type snowflakeGenerator struct {
	snowflake *gosnow.SnowFlake
}

// NewIDGenerator returns an IDGenerator backed by snowflake ids, which are unique across
// processes and increase with time.
func NewIDGenerator() (IDGenerator, error) {
	snowflake, err := gosnow.Default()
	if err != nil {
		return nil, err
	}
	return &snowflakeGenerator{snowflake}, nil
}

func (s *snowflakeGenerator) NewID() (int64, error) {
	uid, err := s.snowflake.Next()
	if err != nil {
		return 0, err
	}
	return int64(uid), nil
}

// CountingIDGenerator produces sequential ids starting just above its initial value. It exists
// for tests that need predictable ids.
type CountingIDGenerator int64

func (g *CountingIDGenerator) NewID() (int64, error) {
	*g++
	return int64(*g), nil
}

// Set initializes the counter so the next id will be n+1.
func (g *CountingIDGenerator) Set(n int64) *CountingIDGenerator {
	*g = CountingIDGenerator(n)
	return g
}
