package chat

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Vote is the like/dislike annotation on a message. The zero value is unset.
type Vote string

const (
	VoteUnset Vote = ""
	VoteUp    Vote = "up"
	VoteDown  Vote = "down"
)

func (v Vote) Valid() bool {
	return v == VoteUnset || v == VoteUp || v == VoteDown
}

// MessageMeta holds UI-only annotations.
type MessageMeta struct {
	Liked Vote `json:"liked,omitempty"`
}

type Message struct {
	ID        string      `json:"id"`
	Role      Role        `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
	Meta      MessageMeta `json:"meta"`
}

type Thread struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Last returns the newest message, if any.
func (t Thread) Last() (Message, bool) {
	if len(t.Messages) == 0 {
		return Message{}, false
	}
	return t.Messages[len(t.Messages)-1], true
}

// NewMessage is the caller-supplied part of a message; id and createdAt are assigned on append.
type NewMessage struct {
	Role    Role         `json:"role" validate:"required,oneof=user assistant"`
	Content string       `json:"content" validate:"notblank"`
	Meta    *MessageMeta `json:"meta,omitempty"`
}

// MetaPatch is shallow-merged into a message's meta. A nil field leaves the
// current value; a pointer to VoteUnset clears it.
type MetaPatch struct {
	Liked *Vote `json:"liked"`
}

// UnmarshalJSON keeps an absent key apart from an explicit null: {"liked":null}
// clears the vote, {} leaves it alone.
func (p *MetaPatch) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	*p = MetaPatch{}
	raw, ok := fields["liked"]
	if !ok {
		return nil
	}
	var liked *Vote
	if err := json.Unmarshal(raw, &liked); err != nil {
		return err
	}
	if liked == nil {
		unset := VoteUnset
		liked = &unset
	}
	p.Liked = liked
	return nil
}
