package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	require.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	require.Equal(t, zapcore.ErrorLevel, ParseLevel("ERROR"))
	require.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
	require.Equal(t, zapcore.InfoLevel, ParseLevel(""))
}

func TestNew_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "machinewatch.log")

	l, err := New(Config{Level: "info", JSON: true, File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	l.Debug("filtered out")
	l.Info("pool started")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `"msg":"pool started"`), string(data))
	require.False(t, strings.Contains(string(data), "filtered out"))
}
