package ai

import (
	"context"
	"strings"
)

const (
	helpNavigation = "Use the left sidebar to explore Media Ecosystem, Benchmarks, Investment, and Consumer insights. The Account group contains your Profile."
	helpChat       = "For full conversation threads, click ‘Ask Anything’ in the main menu to open the full chat."
	helpProfile    = "Update your name, email, avatar, and password under Account → Profile. The image is saved locally."
	helpAuth       = "Sign in or out via the user menu (top-right). Sessions last 7 days in this demo."
)

// HelperProvider answers help widget questions from a fixed set of hints,
// routed by keyword.
type HelperProvider struct{}

func NewHelperProvider() *HelperProvider { return &HelperProvider{} }

func (HelperProvider) Chat(_ context.Context, messages []Message) (string, error) {
	return HelperReply(lastUserContent(messages)), nil
}

func HelperReply(input string) string {
	lower := strings.ToLower(input)
	switch {
	case strings.Contains(lower, "profile"):
		return helpProfile
	case containsAny(lower, "sign", "auth", "login"):
		return helpAuth
	case containsAny(lower, "chat", "ask"):
		return helpChat
	case containsAny(lower, "nav", "menu", "where"):
		return helpNavigation
	default:
		return "Here to help with Disruptor. " + helpNavigation + " " + helpChat
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
