// Package store defines the key-value boundary the chat stores persist
// through, plus the key naming shared by every backend.
package store

import (
	"context"
	"strings"
)

const (
	threadsSuffix = "chat.threads.v1"
	helperSuffix  = "helper.chat.v1"
)

// KV is a string-valued storage area. Get reports found=false for a missing
// key; it is not an error.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// ThreadsKey returns e.g. "disruptor.chat.threads.v1".
func ThreadsKey(namespace string) string {
	return join(namespace, threadsSuffix)
}

// HelperKey returns e.g. "disruptor.helper.chat.v1".
func HelperKey(namespace string) string {
	return join(namespace, helperSuffix)
}

func join(namespace, suffix string) string {
	ns := strings.Trim(strings.TrimSpace(namespace), ".")
	if ns == "" {
		return suffix
	}
	return ns + "." + suffix
}
