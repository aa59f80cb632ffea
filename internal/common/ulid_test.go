package common

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULIDAt_Ordered(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	a := NewULIDAt(t0)
	b := NewULIDAt(t0.Add(time.Millisecond))
	assert.Len(t, a, 26)
	assert.Len(t, b, 26)
	assert.Less(t, a, b)

	parsed, err := ulid.Parse(a)
	require.NoError(t, err)
	assert.True(t, ulid.Time(parsed.Time()).Equal(t0), "timestamp %v", ulid.Time(parsed.Time()))
}

func TestNewULID_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewULID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
