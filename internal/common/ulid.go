package common

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// NewULID returns a 26-char, lexically time-ordered id.
func NewULID() string {
	return ulid.Make().String()
}

// NewULIDAt stamps the id with t instead of the wall clock.
func NewULIDAt(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String()
}
