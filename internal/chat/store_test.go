package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Mihla-Tembe/disruptorr/internal/store"
	"github.com/Mihla-Tembe/disruptorr/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStores(t *testing.T, opts ...Option) (*Stores, *memstore.Store, *fakeClock) {
	t.Helper()
	kv := memstore.New()
	clock := &fakeClock{now: t0}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewStores(kv, nil, opts...), kv, clock
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

func (failingKV) Set(context.Context, string, string) error {
	return errors.New("disk on fire")
}

func TestThreadStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	stores, _, _ := newTestStores(t)
	ts := stores.Threads("disruptor")

	th := NewThread("", t0)
	threads, _, err := Append([]Thread{th}, th.ID, NewMessage{Role: RoleUser, Content: "hello"}, t0.Add(time.Second))
	require.NoError(t, err)
	threads = Prepend(threads, NewThread("Second", t0.Add(time.Minute)))

	require.NoError(t, ts.Save(ctx, threads))
	assert.Equal(t, threads, ts.Load(ctx))
}

func TestThreadStore_LoadRecoversFromCorruption(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{"not json", "{}", `"text"`, "42", "null", ""} {
		stores, kv, _ := newTestStores(t)
		require.NoError(t, kv.Set(ctx, store.ThreadsKey("disruptor"), raw))

		got := stores.Threads("disruptor").Load(ctx)
		assert.NotNil(t, got, "raw=%q", raw)
		assert.Empty(t, got, "raw=%q", raw)
	}

	stores := NewStores(failingKV{}, nil)
	assert.Empty(t, stores.Threads("disruptor").Load(ctx))
}

func TestThreadStore_SaveNilWritesEmptyArray(t *testing.T) {
	ctx := context.Background()
	stores, kv, _ := newTestStores(t)
	require.NoError(t, stores.Threads("d").Save(ctx, nil))

	raw, found, err := kv.Get(ctx, store.ThreadsKey("d"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", raw)
}

func TestThreadStore_SaveError(t *testing.T) {
	stores := NewStores(failingKV{}, nil)
	_, err := stores.Threads("d").Create(context.Background(), "")
	assert.Error(t, err)
}

func TestThreadStore_EnsureOnEmptyStore(t *testing.T) {
	ctx := context.Background()
	stores, _, _ := newTestStores(t)
	ts := stores.Threads("disruptor")

	th, err := ts.Ensure(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, th.Messages)

	loaded := ts.Load(ctx)
	require.Len(t, loaded, 1)
	assert.Equal(t, th.ID, loaded[0].ID)

	again, err := ts.Ensure(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, th.ID, again.ID)
	assert.Len(t, ts.Load(ctx), 1)
}

func TestThreadStore_EnsureSelection(t *testing.T) {
	ctx := context.Background()
	stores, _, clock := newTestStores(t)
	ts := stores.Threads("disruptor")

	older, err := ts.Create(ctx, "older")
	require.NoError(t, err)
	clock.Advance(time.Minute)
	newer, err := ts.Create(ctx, "newer")
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, _, err = ts.Append(ctx, older.ID, NewMessage{Role: RoleUser, Content: "bump"})
	require.NoError(t, err)

	got, err := ts.Ensure(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	got, err = ts.Ensure(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID, "falls back to most recently updated")

	got, err = ts.Ensure(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)
}

func TestThreadStore_HydrateSeedsOnce(t *testing.T) {
	ctx := context.Background()
	stores, _, _ := newTestStores(t)
	ts := stores.Threads("disruptor")

	seeded, err := ts.Hydrate(ctx)
	require.NoError(t, err)
	require.Len(t, seeded, 2)
	assert.Equal(t, "Ancient Civilisations Overview", seeded[0].Title)
	assert.Equal(t, "Media spend by channel", seeded[1].Title)
	assert.Equal(t, seeded, ts.Load(ctx), "seed must be persisted")

	_, err = ts.Create(ctx, "mine")
	require.NoError(t, err)
	again, err := ts.Hydrate(ctx)
	require.NoError(t, err)
	assert.Len(t, again, 3)
}

func TestThreadStore_CreatePrepends(t *testing.T) {
	ctx := context.Background()
	stores, _, _ := newTestStores(t)
	ts := stores.Threads("disruptor")

	a, err := ts.Create(ctx, "")
	require.NoError(t, err)
	b, err := ts.Create(ctx, "Named")
	require.NoError(t, err)

	assert.Equal(t, DefaultTitle, a.Title)
	loaded := ts.Load(ctx)
	require.Len(t, loaded, 2)
	assert.Equal(t, b.ID, loaded[0].ID)
	assert.Equal(t, a.ID, loaded[1].ID)
}

func TestThreadStore_RemoveAndRestore(t *testing.T) {
	ctx := context.Background()
	stores, _, _ := newTestStores(t)
	ts := stores.Threads("disruptor")

	other, err := ts.Create(ctx, "other")
	require.NoError(t, err)
	th, err := ts.Create(ctx, "")
	require.NoError(t, err)
	_, th, err = ts.Append(ctx, th.ID, NewMessage{Role: RoleUser, Content: "Ancient Civilisations Overview"})
	require.NoError(t, err)

	removed, err := ts.Remove(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, th, removed)
	assert.Len(t, ts.Load(ctx), 1)

	restored, err := ts.Restore(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, th, restored)

	loaded := ts.Load(ctx)
	require.Len(t, loaded, 2)
	assert.Equal(t, th.ID, loaded[0].ID)
	assert.Equal(t, th.Messages, loaded[0].Messages)
	assert.Equal(t, other.ID, loaded[1].ID)

	_, err = ts.Restore(ctx, th.ID)
	assert.ErrorIs(t, err, ErrUndoExpired, "undo is single use")

	_, err = ts.Remove(ctx, "missing")
	assert.ErrorIs(t, err, ErrThreadNotFound)
}

func TestThreadStore_UndoWindowExpires(t *testing.T) {
	ctx := context.Background()
	stores, _, _ := newTestStores(t, WithUndoWindow(20*time.Millisecond))
	ts := stores.Threads("disruptor")

	th, err := ts.Create(ctx, "")
	require.NoError(t, err)
	_, err = ts.Remove(ctx, th.ID)
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)
	_, err = ts.Restore(ctx, th.ID)
	assert.ErrorIs(t, err, ErrUndoExpired)
	assert.Empty(t, ts.Load(ctx))
}

func TestThreadStore_NamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	stores, _, _ := newTestStores(t)

	a, err := stores.Threads("disruptor.alice").Create(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, stores.Threads("disruptor.bob").Load(ctx))

	_, err = stores.Threads("disruptor.bob").Restore(ctx, a.ID)
	assert.ErrorIs(t, err, ErrUndoExpired)
}

func TestThreadStore_ConcurrentAppendsAreNotLost(t *testing.T) {
	ctx := context.Background()
	stores, _, _ := newTestStores(t)
	ts := stores.Threads("disruptor")
	th, err := ts.Create(ctx, "")
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _, err := ts.Append(ctx, th.ID, NewMessage{Role: RoleUser, Content: "msg"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := ts.Get(ctx, th.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, n)
}

func TestThreadStore_UpdateAndMeta(t *testing.T) {
	ctx := context.Background()
	stores, _, clock := newTestStores(t)
	ts := stores.Threads("disruptor")
	th, err := ts.Create(ctx, "")
	require.NoError(t, err)
	msg, _, err := ts.Append(ctx, th.ID, NewMessage{Role: RoleAssistant, Content: "answer"})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	down := VoteDown
	m, err := ts.UpdateMessageMeta(ctx, th.ID, msg.ID, MetaPatch{Liked: &down})
	require.NoError(t, err)
	assert.Equal(t, VoteDown, m.Meta.Liked)

	got, err := ts.Get(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(time.Hour), got.UpdatedAt)

	renamed, err := ts.Rename(ctx, th.ID, "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.Title)

	next, err := ts.Update(ctx, func(threads []Thread, now time.Time) ([]Thread, error) {
		return Prepend(threads, NewThread("via update", now)), nil
	})
	require.NoError(t, err)
	assert.Len(t, next, 2)
	assert.Len(t, ts.Load(ctx), 2)

	_, err = ts.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrThreadNotFound)
}
