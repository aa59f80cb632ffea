package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mihla-Tembe/disruptorr/internal/common"
	"github.com/Mihla-Tembe/disruptorr/internal/store"
)

// HelperMessage is one entry of the help widget's flat conversation.
type HelperMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// HelperStore persists the help widget conversation of one namespace.
type HelperStore struct {
	s   *Stores
	key string
}

func (s *Stores) Helper(namespace string) *HelperStore {
	return &HelperStore{s: s, key: store.HelperKey(namespace)}
}

func (hs *HelperStore) Load(ctx context.Context) []HelperMessage {
	return readList[HelperMessage](ctx, hs.s, hs.key)
}

func (hs *HelperStore) Append(ctx context.Context, role Role, content string) (HelperMessage, error) {
	if role != RoleUser && role != RoleAssistant {
		return HelperMessage{}, fmt.Errorf("%w: role=%q", ErrInvalidMessage, role)
	}
	if strings.TrimSpace(content) == "" {
		return HelperMessage{}, fmt.Errorf("%w: empty content", ErrInvalidMessage)
	}

	m := hs.s.lock(hs.key)
	m.Lock()
	defer m.Unlock()

	now := hs.s.clock()
	msg := HelperMessage{
		ID:        common.NewULIDAt(now),
		Role:      role,
		Content:   content,
		CreatedAt: now,
	}
	msgs := append(hs.Load(ctx), msg)
	if err := writeList(ctx, hs.s, hs.key, msgs); err != nil {
		return HelperMessage{}, err
	}
	return msg, nil
}

func (hs *HelperStore) Clear(ctx context.Context) error {
	m := hs.s.lock(hs.key)
	m.Lock()
	defer m.Unlock()
	return writeList(ctx, hs.s, hs.key, []HelperMessage{})
}
