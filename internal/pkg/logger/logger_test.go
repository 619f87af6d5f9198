package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		logLevel string
	}{
		{"開発環境", "development", ""},
		{"本番環境", "production", ""},
		{"LOG_LEVEL指定", "development", "debug"},
		{"無効なLOG_LEVELは無視される", "production", "invalid_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.logLevel != "" {
				os.Setenv("LOG_LEVEL", tt.logLevel)
				defer os.Unsetenv("LOG_LEVEL")
			}

			l := NewLogger(tt.env)
			require.NotNil(t, l)
			l.Info("test message", zap.String("env", tt.env))
		})
	}
}

func TestNewLoggerWithFile(t *testing.T) {
	t.Run("ファイルにJSONで出力される", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "booking.log")

		l := NewLoggerWithFile("production", path)
		require.NotNil(t, l)
		l.Info("seat held", zap.String("seat_id", "seat-1"))
		_ = l.Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"seat held"`)
		assert.Contains(t, string(data), `"seat_id":"seat-1"`)
	})

	t.Run("パスが空ならファイル出力しない", func(t *testing.T) {
		l := NewLoggerWithFile("development", "")
		require.NotNil(t, l)
	})
}

func TestSetAndGet(t *testing.T) {
	original := Get()
	defer Set(original)

	nop := zap.NewNop()
	Set(nop)

	assert.Equal(t, nop, Get())
	assert.NotPanics(t, func() {
		Info("info", zap.Int("count", 1))
		Warn("warn")
		Error("error", zap.String("error_code", "E001"))
		Debug("debug")
		_ = Sync()
	})
	require.NotNil(t, With(zap.String("key", "value")))
}
