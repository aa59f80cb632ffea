package chat

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestNewThread_Defaults(t *testing.T) {
	th := NewThread("  ", t0)
	assert.Equal(t, DefaultTitle, th.Title)
	assert.NotEmpty(t, th.ID)
	assert.Empty(t, th.Messages)
	assert.NotNil(t, th.Messages)
	assert.Equal(t, t0, th.CreatedAt)
	assert.Equal(t, t0, th.UpdatedAt)

	assert.Equal(t, "Budget", NewThread("Budget", t0).Title)
	assert.NotEqual(t, NewThread("", t0).ID, NewThread("", t0).ID)
}

func TestAppend_FirstMessageSetsTitle(t *testing.T) {
	th := NewThread("", t0)
	threads := []Thread{th}
	long := "  Give me   a quick overview of ancient civilisations please  "

	next, msg, err := Append(threads, th.ID, NewMessage{Role: RoleUser, Content: long}, t0.Add(time.Minute))
	require.NoError(t, err)

	got := next[0]
	assert.Equal(t, Truncate(long, 42), got.Title)
	assert.Equal(t, 42, len([]rune(got.Title)))
	assert.True(t, strings.HasSuffix(got.Title, "…"))
	assert.Equal(t, msg.CreatedAt, got.UpdatedAt)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, msg, got.Messages[0])
	assert.Equal(t, long, msg.Content)

	next2, _, err := Append(next, th.ID, NewMessage{Role: RoleAssistant, Content: "Sure"}, t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, got.Title, next2[0].Title, "second message must not retitle")
	assert.Len(t, next2[0].Messages, 2)
}

func TestAppend_DoesNotMutateInput(t *testing.T) {
	th := NewThread("", t0)
	threads := []Thread{th}

	next, _, err := Append(threads, th.ID, NewMessage{Role: RoleUser, Content: "hi"}, t0.Add(time.Second))
	require.NoError(t, err)
	assert.Empty(t, threads[0].Messages)
	assert.Equal(t, DefaultTitle, threads[0].Title)
	assert.Len(t, next[0].Messages, 1)
}

func TestAppend_UnknownThread(t *testing.T) {
	threads := []Thread{NewThread("", t0)}
	next, _, err := Append(threads, "missing", NewMessage{Role: RoleUser, Content: "hi"}, t0)
	assert.True(t, errors.Is(err, ErrThreadNotFound))
	assert.Equal(t, threads, next)
}

func TestAppend_Validation(t *testing.T) {
	th := NewThread("", t0)
	threads := []Thread{th}

	_, _, err := Append(threads, th.ID, NewMessage{Role: "system", Content: "x"}, t0)
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, _, err = Append(threads, th.ID, NewMessage{Role: RoleUser, Content: "   "}, t0)
	assert.ErrorIs(t, err, ErrInvalidMessage)

	bad := Vote("sideways")
	_, _, err = Append(threads, th.ID, NewMessage{Role: RoleUser, Content: "x", Meta: &MessageMeta{Liked: bad}}, t0)
	assert.ErrorIs(t, err, ErrInvalidMeta)
}

func TestTitleFromContent(t *testing.T) {
	assert.Equal(t, DefaultTitle, TitleFromContent(" \n\t "))
	assert.Equal(t, "a b c", TitleFromContent("a \n b\t\tc"))
	exact := strings.Repeat("x", 42)
	assert.Equal(t, exact, TitleFromContent(exact))
	assert.Equal(t, strings.Repeat("x", 41)+"…", TitleFromContent(exact+"y"))
}

func TestUpdateMessageMeta(t *testing.T) {
	th := NewThread("", t0)
	threads, msg, err := Append([]Thread{th}, th.ID, NewMessage{Role: RoleAssistant, Content: "answer"}, t0.Add(time.Minute))
	require.NoError(t, err)

	up := VoteUp
	later := t0.Add(time.Hour)
	next, m, err := UpdateMessageMeta(threads, th.ID, msg.ID, MetaPatch{Liked: &up}, later)
	require.NoError(t, err)
	assert.Equal(t, VoteUp, m.Meta.Liked)
	assert.Equal(t, VoteUp, next[0].Messages[0].Meta.Liked)
	assert.Equal(t, later, next[0].UpdatedAt)
	assert.Equal(t, VoteUnset, threads[0].Messages[0].Meta.Liked, "input mutated")

	// empty patch keeps the current vote
	next2, m2, err := UpdateMessageMeta(next, th.ID, msg.ID, MetaPatch{}, later)
	require.NoError(t, err)
	assert.Equal(t, VoteUp, m2.Meta.Liked)

	unset := VoteUnset
	_, m3, err := UpdateMessageMeta(next2, th.ID, msg.ID, MetaPatch{Liked: &unset}, later)
	require.NoError(t, err)
	assert.Equal(t, VoteUnset, m3.Meta.Liked)

	same, _, err := UpdateMessageMeta(threads, th.ID, "nope", MetaPatch{Liked: &up}, later)
	assert.ErrorIs(t, err, ErrMessageNotFound)
	assert.Equal(t, threads, same)

	_, _, err = UpdateMessageMeta(threads, "nope", msg.ID, MetaPatch{Liked: &up}, later)
	assert.ErrorIs(t, err, ErrThreadNotFound)
}

func TestMetaPatch_NullClearsVote(t *testing.T) {
	th := NewThread("", t0)
	threads, msg, err := Append([]Thread{th}, th.ID, NewMessage{Role: RoleAssistant, Content: "answer", Meta: &MessageMeta{Liked: VoteUp}}, t0)
	require.NoError(t, err)

	var keep MetaPatch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &keep))
	assert.Nil(t, keep.Liked)
	_, m, err := UpdateMessageMeta(threads, th.ID, msg.ID, keep, t0)
	require.NoError(t, err)
	assert.Equal(t, VoteUp, m.Meta.Liked)

	var cleared MetaPatch
	require.NoError(t, json.Unmarshal([]byte(`{"liked":null}`), &cleared))
	require.NotNil(t, cleared.Liked)
	_, m, err = UpdateMessageMeta(threads, th.ID, msg.ID, cleared, t0)
	require.NoError(t, err)
	assert.Equal(t, VoteUnset, m.Meta.Liked)

	var down MetaPatch
	require.NoError(t, json.Unmarshal([]byte(`{"liked":"down"}`), &down))
	_, m, err = UpdateMessageMeta(threads, th.ID, msg.ID, down, t0)
	require.NoError(t, err)
	assert.Equal(t, VoteDown, m.Meta.Liked)

	var bad MetaPatch
	assert.Error(t, json.Unmarshal([]byte(`{"liked":1}`), &bad))
}

func TestRenameAndRemove(t *testing.T) {
	a := NewThread("A", t0)
	b := NewThread("B", t0)
	threads := []Thread{a, b}

	next, renamed, err := Rename(threads, b.ID, "  Q2 spend ", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "Q2 spend", renamed.Title)
	assert.Equal(t, "Q2 spend", next[1].Title)
	assert.Equal(t, t0.Add(time.Minute), next[1].UpdatedAt)

	_, _, err = Rename(threads, b.ID, "   ", t0)
	assert.ErrorIs(t, err, ErrEmptyTitle)

	left, removed, err := Remove(next, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, removed.ID)
	require.Len(t, left, 1)
	assert.Equal(t, b.ID, left[0].ID)
	assert.Len(t, next, 2, "input mutated")

	_, _, err = Remove(next, "nope")
	assert.ErrorIs(t, err, ErrThreadNotFound)
}

func TestMostRecent(t *testing.T) {
	_, ok := MostRecent(nil)
	assert.False(t, ok)

	a := NewThread("A", t0)
	b := NewThread("B", t0.Add(time.Hour))
	c := NewThread("C", t0.Add(-time.Hour))
	got, ok := MostRecent([]Thread{a, b, c})
	assert.True(t, ok)
	assert.Equal(t, b.ID, got.ID)
}
