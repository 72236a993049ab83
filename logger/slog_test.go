package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"", InfoLevel},
		{"INFO", InfoLevel},
		{"warning", WarnLevel},
		{" error ", ErrorLevel},
		{"fatal", FatalLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("verbose")
	require.Error(t, err)
}

func TestSlogLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogWriter(&buf, InfoLevel, FormatJSON, false)

	l.Debug("hidden")
	assert.Zero(t, buf.Len(), "debug record must be filtered at info level")

	l.With("session", "abc").Info("sign: connected", "frames", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "sign: connected", rec["msg"])
	assert.Equal(t, "abc", rec["session"])
	assert.InDelta(t, 3, rec["frames"], 0)
	assert.Contains(t, rec, "ts")
}

func TestSlogLogger_SetLevelSharedWithChildren(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogWriter(&buf, ErrorLevel, FormatJSON, false)
	child := l.With("k", "v")

	assert.Equal(t, ErrorLevel, child.Level())

	l.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, child.Level())

	child.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestSlogLogger_ConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogWriter(&buf, InfoLevel, FormatConsole, false)

	l.Warn("transport: slow reply", "ms", 120)
	assert.Contains(t, buf.String(), "transport: slow reply")
}
