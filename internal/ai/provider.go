package ai

import "context"

// Message is one chat turn sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider turns a conversation into the assistant's next reply.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// lastUserContent returns the most recent user turn; single-query backends
// only look at that.
func lastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}
