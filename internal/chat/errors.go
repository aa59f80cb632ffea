package chat

import "errors"

var (
	ErrThreadNotFound  = errors.New("chat: thread not found")
	ErrMessageNotFound = errors.New("chat: message not found")
	ErrInvalidMessage  = errors.New("chat: invalid message")
	ErrInvalidMeta     = errors.New("chat: invalid meta")
	ErrEmptyTitle      = errors.New("chat: empty title")
	ErrUndoExpired     = errors.New("chat: undo window expired")
)
