package chat

import (
	"slices"
	"strings"
	"time"

	"github.com/Mihla-Tembe/disruptorr/internal/common"
)

// The functions in this file never mutate their input collection. On an
// unknown id they return the input unchanged together with a typed error.

// NewThread returns an empty thread stamped with now.
func NewThread(title string, now time.Time) Thread {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	return Thread{
		ID:        common.NewULIDAt(now),
		Title:     title,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Prepend puts t at the front, where new and restored threads go.
func Prepend(threads []Thread, t Thread) []Thread {
	out := make([]Thread, 0, len(threads)+1)
	out = append(out, t)
	return append(out, threads...)
}

func indexOf(threads []Thread, id string) int {
	return slices.IndexFunc(threads, func(t Thread) bool { return t.ID == id })
}

// Find returns the thread with id.
func Find(threads []Thread, id string) (Thread, bool) {
	i := indexOf(threads, id)
	if i < 0 {
		return Thread{}, false
	}
	return threads[i], true
}

// MostRecent returns the thread with the latest updatedAt.
func MostRecent(threads []Thread) (Thread, bool) {
	if len(threads) == 0 {
		return Thread{}, false
	}
	best := threads[0]
	for _, t := range threads[1:] {
		if t.UpdatedAt.After(best.UpdatedAt) {
			best = t
		}
	}
	return best, true
}

func replaceAt(threads []Thread, i int, t Thread) []Thread {
	out := slices.Clone(threads)
	out[i] = t
	return out
}

// Append adds a message to the thread with threadID. The first message of a
// thread also sets its title.
func Append(threads []Thread, threadID string, in NewMessage, now time.Time) ([]Thread, Message, error) {
	if err := in.Validate(); err != nil {
		return threads, Message{}, err
	}
	i := indexOf(threads, threadID)
	if i < 0 {
		return threads, Message{}, ErrThreadNotFound
	}

	msg := Message{
		ID:        common.NewULIDAt(now),
		Role:      in.Role,
		Content:   in.Content,
		CreatedAt: now,
	}
	if in.Meta != nil {
		msg.Meta = *in.Meta
	}

	t := threads[i]
	if len(t.Messages) == 0 {
		t.Title = TitleFromContent(in.Content)
	}
	msgs := make([]Message, 0, len(t.Messages)+1)
	msgs = append(msgs, t.Messages...)
	t.Messages = append(msgs, msg)
	t.UpdatedAt = msg.CreatedAt

	return replaceAt(threads, i, t), msg, nil
}

// UpdateMessageMeta shallow-merges patch into a message's meta and bumps the
// thread's updatedAt.
func UpdateMessageMeta(threads []Thread, threadID, messageID string, patch MetaPatch, now time.Time) ([]Thread, Message, error) {
	if err := patch.Validate(); err != nil {
		return threads, Message{}, err
	}
	i := indexOf(threads, threadID)
	if i < 0 {
		return threads, Message{}, ErrThreadNotFound
	}
	t := threads[i]
	j := slices.IndexFunc(t.Messages, func(m Message) bool { return m.ID == messageID })
	if j < 0 {
		return threads, Message{}, ErrMessageNotFound
	}

	msgs := slices.Clone(t.Messages)
	m := msgs[j]
	if patch.Liked != nil {
		m.Meta.Liked = *patch.Liked
	}
	msgs[j] = m
	t.Messages = msgs
	t.UpdatedAt = laterOf(t.UpdatedAt, now)

	return replaceAt(threads, i, t), m, nil
}

// Rename sets a user-chosen title. Blank titles are rejected.
func Rename(threads []Thread, threadID, title string, now time.Time) ([]Thread, Thread, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return threads, Thread{}, ErrEmptyTitle
	}
	i := indexOf(threads, threadID)
	if i < 0 {
		return threads, Thread{}, ErrThreadNotFound
	}
	t := threads[i]
	t.Title = title
	t.UpdatedAt = laterOf(t.UpdatedAt, now)
	return replaceAt(threads, i, t), t, nil
}

// Remove drops the thread with threadID and returns it.
func Remove(threads []Thread, threadID string) ([]Thread, Thread, error) {
	i := indexOf(threads, threadID)
	if i < 0 {
		return threads, Thread{}, ErrThreadNotFound
	}
	removed := threads[i]
	return slices.Delete(slices.Clone(threads), i, i+1), removed, nil
}

// updatedAt must not fall behind the newest message even if the clock steps back.
func laterOf(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
