package feed

import "errors"

var (
	// ErrNotFound is returned by IndexOf when the activity id is absent from the feed.
	ErrNotFound = errors.New("activity not found in feed")

	// ErrOutOfRange is returned by NthItem when the index is at or beyond the feed's length.
	ErrOutOfRange = errors.New("feed index out of range")
)
