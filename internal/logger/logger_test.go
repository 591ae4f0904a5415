package logger

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   Level
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"Warn", zapcore.WarnLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatConsole, ParseFormat("console"))
	assert.Equal(t, FormatConsole, ParseFormat("pretty"))
}

func TestNewWriterJSON(t *testing.T) {
	var buf bytes.Buffer

	log := NewWriter(&buf, WarnLevel, FormatJSON).Named("cache")
	log.Info("dropped")
	log.Warn("write failed", zap.String("path", "/tmp/x"))
	require.NoError(t, log.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "cache", entry["component"])
	assert.Equal(t, "write failed", entry["msg"])
	assert.Equal(t, "/tmp/x", entry["path"])
}

func TestNewWriterConsole(t *testing.T) {
	var buf bytes.Buffer

	log := NewWriter(&buf, DebugLevel, FormatConsole)
	log.Debug("hello", zap.String("class", "model.User"))
	require.NoError(t, log.Sync())

	assert.Contains(t, buf.String(), " | DEBUG | ")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), `"class": "model.User"`)
}
