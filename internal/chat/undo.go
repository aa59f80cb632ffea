package chat

import (
	"context"
	"time"

	"go.uber.org/zap"
)

func (ts *ThreadStore) undoKey(id string) string {
	return ts.ns + "\x00" + id
}

// Remove deletes a thread and keeps it restorable for the undo window.
func (ts *ThreadStore) Remove(ctx context.Context, threadID string) (Thread, error) {
	var removed Thread
	_, err := ts.mutate(ctx, func(threads []Thread, now time.Time) ([]Thread, bool, error) {
		next, t, err := Remove(threads, threadID)
		if err != nil {
			return threads, false, err
		}
		removed = t
		return next, true, nil
	})
	if err != nil {
		return Thread{}, err
	}
	ts.s.undo.SetDefault(ts.undoKey(threadID), removed)
	return removed, nil
}

// Restore puts a removed thread back at the front of the collection, with its
// id and messages intact.
func (ts *ThreadStore) Restore(ctx context.Context, threadID string) (Thread, error) {
	key := ts.undoKey(threadID)
	v, ok := ts.s.undo.Get(key)
	if !ok {
		return Thread{}, ErrUndoExpired
	}
	parked, ok := v.(Thread)
	if !ok {
		ts.s.undo.Delete(key)
		return Thread{}, ErrUndoExpired
	}

	var restored Thread
	_, err := ts.mutate(ctx, func(threads []Thread, now time.Time) ([]Thread, bool, error) {
		if t, exists := Find(threads, threadID); exists {
			restored = t
			return threads, false, nil
		}
		restored = parked
		return Prepend(threads, parked), true, nil
	})
	if err != nil {
		return Thread{}, err
	}
	ts.s.undo.Delete(key)
	ts.s.log.Debug("thread restored", zap.String("namespace", ts.ns), zap.String("thread_id", threadID))
	return restored, nil
}
