package chat

import "strings"

const (
	DefaultTitle = "New Chat"
	titleLimit   = 42
	ellipsis     = "…"
)

// Truncate collapses runs of whitespace and cuts s to n visible characters,
// the last one being an ellipsis when anything was dropped.
func Truncate(s string, n int) string {
	x := strings.Join(strings.Fields(s), " ")
	r := []rune(x)
	if n <= 0 || len(r) <= n {
		return x
	}
	return string(r[:n-1]) + ellipsis
}

// TitleFromContent derives a thread title from its first message.
func TitleFromContent(content string) string {
	if t := Truncate(content, titleLimit); t != "" {
		return t
	}
	return DefaultTitle
}
