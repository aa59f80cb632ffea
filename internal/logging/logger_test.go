package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "disruptor.log")
	logger, err := New(Options{Level: "debug", File: path, Service: "test"})
	require.NoError(t, err)
	logger.Debug("thread created", zap.String("thread_id", "t1"))
	_ = logger.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(b)
	for _, want := range []string{`"msg":"thread created"`, `"thread_id":"t1"`, `"service":"test"`} {
		assert.Contains(t, line, want)
	}
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}
