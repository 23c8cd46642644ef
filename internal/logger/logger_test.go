package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, *parseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, *parseLevel("error"))
	assert.Nil(t, parseLevel("verbose"))
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hub.log")
	l := New(Options{Level: "info", File: path})

	l.With(String("component", "test")).Info("hello", Int("n", 1), Error(errors.New("boom")))
	_ = l.Sync() // stdout 是管道时 fsync 会报 EINVAL，只关心文件已刷盘

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"component":"test"`)
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Warnf("ignored %d", 1)
		l.Info("ignored")
	})
}
