package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Mihla-Tembe/disruptorr/internal/store"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const DefaultUndoWindow = 5 * time.Second

// Stores hands out per-namespace thread and helper stores over one KV.
// Load-modify-save cycles on the same key are serialized within the process;
// across processes the last save wins.
type Stores struct {
	kv     store.KV
	log    *zap.Logger
	now    func() time.Time
	window time.Duration
	undo   *cache.Cache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*Stores)

// WithClock replaces the wall clock; tests use it to pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Stores) { s.now = now }
}

// WithUndoWindow sets how long a removed thread can be restored.
func WithUndoWindow(d time.Duration) Option {
	return func(s *Stores) {
		if d > 0 {
			s.window = d
		}
	}
}

func NewStores(kv store.KV, log *zap.Logger, opts ...Option) *Stores {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Stores{
		kv:     kv,
		log:    log,
		now:    func() time.Time { return time.Now() },
		window: DefaultUndoWindow,
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.undo = cache.New(s.window, time.Minute)
	return s
}

// timestamps are persisted in UTC at millisecond precision.
func (s *Stores) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Stores) lock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	return m
}

func (s *Stores) UndoWindow() time.Duration { return s.window }

func (s *Stores) Threads(namespace string) *ThreadStore {
	return &ThreadStore{s: s, ns: namespace, key: store.ThreadsKey(namespace)}
}

// readList decodes a JSON array stored under key into out. Anything other
// than a well-formed array leaves out empty.
func readList[T any](ctx context.Context, s *Stores, key string) []T {
	out := []T{}
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		s.log.Warn("storage read failed, using empty collection", zap.String("key", key), zap.Error(err))
		return out
	}
	if !found || raw == "" {
		return out
	}
	var parsed []T
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		s.log.Warn("stored value is not a list, using empty collection", zap.String("key", key), zap.Error(err))
		return out
	}
	if parsed == nil {
		return out
	}
	return parsed
}

func writeList[T any](ctx context.Context, s *Stores, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// ThreadStore is the thread collection of one namespace.
type ThreadStore struct {
	s   *Stores
	ns  string
	key string
}

func (ts *ThreadStore) Namespace() string { return ts.ns }

// Load returns the persisted threads. It never fails: missing, unparsable or
// wrong-shape data reads as an empty collection.
func (ts *ThreadStore) Load(ctx context.Context) []Thread {
	threads := readList[Thread](ctx, ts.s, ts.key)
	for i := range threads {
		if threads[i].Messages == nil {
			threads[i].Messages = []Message{}
		}
	}
	return threads
}

// Save replaces the persisted collection.
func (ts *ThreadStore) Save(ctx context.Context, threads []Thread) error {
	return writeList(ctx, ts.s, ts.key, threads)
}

func (ts *ThreadStore) mutate(ctx context.Context, fn func(threads []Thread, now time.Time) ([]Thread, bool, error)) ([]Thread, error) {
	m := ts.s.lock(ts.key)
	m.Lock()
	defer m.Unlock()

	current := ts.Load(ctx)
	next, changed, err := fn(current, ts.s.clock())
	if err != nil {
		return current, err
	}
	if !changed {
		return current, nil
	}
	if err := ts.Save(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}

// Update runs fn over the current collection and saves its result.
func (ts *ThreadStore) Update(ctx context.Context, fn func(threads []Thread, now time.Time) ([]Thread, error)) ([]Thread, error) {
	return ts.mutate(ctx, func(threads []Thread, now time.Time) ([]Thread, bool, error) {
		next, err := fn(threads, now)
		return next, err == nil, err
	})
}

// Hydrate loads the collection, seeding it with the sample threads the first
// time storage is found empty.
func (ts *ThreadStore) Hydrate(ctx context.Context) ([]Thread, error) {
	return ts.mutate(ctx, func(threads []Thread, now time.Time) ([]Thread, bool, error) {
		if len(threads) > 0 {
			return threads, false, nil
		}
		ts.s.log.Info("seeding sample threads", zap.String("namespace", ts.ns))
		return SampleThreads(now), true, nil
	})
}

// Create prepends a new empty thread.
func (ts *ThreadStore) Create(ctx context.Context, title string) (Thread, error) {
	var created Thread
	_, err := ts.mutate(ctx, func(threads []Thread, now time.Time) ([]Thread, bool, error) {
		created = NewThread(title, now)
		return Prepend(threads, created), true, nil
	})
	return created, err
}

func (ts *ThreadStore) Get(ctx context.Context, id string) (Thread, error) {
	t, ok := Find(ts.Load(ctx), id)
	if !ok {
		return Thread{}, ErrThreadNotFound
	}
	return t, nil
}

// Ensure returns a usable thread. An empty store gets one new thread; a
// known id returns that thread; anything else falls back to the most
// recently updated thread.
func (ts *ThreadStore) Ensure(ctx context.Context, id string) (Thread, error) {
	var out Thread
	_, err := ts.mutate(ctx, func(threads []Thread, now time.Time) ([]Thread, bool, error) {
		if len(threads) == 0 {
			out = NewThread("", now)
			return []Thread{out}, true, nil
		}
		if id != "" {
			if t, ok := Find(threads, id); ok {
				out = t
				return threads, false, nil
			}
		}
		out, _ = MostRecent(threads)
		return threads, false, nil
	})
	return out, err
}

func (ts *ThreadStore) Append(ctx context.Context, threadID string, in NewMessage) (Message, Thread, error) {
	var (
		msg    Message
		thread Thread
	)
	_, err := ts.mutate(ctx, func(threads []Thread, now time.Time) ([]Thread, bool, error) {
		next, m, err := Append(threads, threadID, in, now)
		if err != nil {
			return threads, false, err
		}
		msg = m
		thread, _ = Find(next, threadID)
		return next, true, nil
	})
	return msg, thread, err
}

func (ts *ThreadStore) UpdateMessageMeta(ctx context.Context, threadID, messageID string, patch MetaPatch) (Message, error) {
	var msg Message
	_, err := ts.mutate(ctx, func(threads []Thread, now time.Time) ([]Thread, bool, error) {
		next, m, err := UpdateMessageMeta(threads, threadID, messageID, patch, now)
		if err != nil {
			return threads, false, err
		}
		msg = m
		return next, true, nil
	})
	return msg, err
}

func (ts *ThreadStore) Rename(ctx context.Context, threadID, title string) (Thread, error) {
	var renamed Thread
	_, err := ts.mutate(ctx, func(threads []Thread, now time.Time) ([]Thread, bool, error) {
		next, t, err := Rename(threads, threadID, title, now)
		if err != nil {
			return threads, false, err
		}
		renamed = t
		return next, true, nil
	})
	return renamed, err
}
