package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-alphasign/logger"
	"github.com/arloliu/go-alphasign/sign"
	"github.com/arloliu/go-alphasign/transport"
)

const fullConfig = `
sign:
  address: Z01
  preamble: 10
  reply_timeout: 2s
  clear_delay: 0s
  run_sequence:
    mode: T
    locked: true
  disabled_commands: [beep, SOFT_RESET]
transport:
  kind: tcp
  address: 127.0.0.1:10001
  dial_timeout: 500ms
  write_timeout: 1s
log:
  level: debug
  format: json
`

func TestParse_Full(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "Z01", cfg.Sign.Address)
	require.NotNil(t, cfg.Sign.Preamble)
	assert.Equal(t, 10, *cfg.Sign.Preamble)
	assert.Equal(t, 2*time.Second, cfg.Sign.ReplyTimeout)
	require.NotNil(t, cfg.Sign.ClearDelay)
	assert.Equal(t, time.Duration(0), *cfg.Sign.ClearDelay)
	assert.Equal(t, RunSequenceConfig{Mode: "T", Locked: true}, cfg.Sign.RunSequence)
	assert.Equal(t, []string{"beep", "SOFT_RESET"}, cfg.Sign.DisabledCommands)
	assert.Equal(t, KindTCP, cfg.Transport.Kind)
	assert.Equal(t, 500*time.Millisecond, cfg.Transport.DialTimeout)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, KindDebug, cfg.Transport.Kind)

	opts, err := cfg.SignOptions(nil)
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "sign:\n  colour: red\n"},
		{"bad address", "sign:\n  address: Z\n"},
		{"bad run mode", "sign:\n  run_sequence:\n    mode: X\n"},
		{"bad command", "sign:\n  disabled_commands: [launch]\n"},
		{"bad kind", "transport:\n  kind: usb\n"},
		{"tcp without address", "transport:\n  kind: tcp\n"},
		{"serial without port", "transport:\n  kind: serial\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"bad format", "log:\n  format: xml\n"},
		{"bad duration", "sign:\n  reply_timeout: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfig_BuildSession(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	var logs bytes.Buffer
	l, err := cfg.NewLogger(&logs)
	require.NoError(t, err)
	assert.Equal(t, logger.DebugLevel, l.Level())

	tr, closer, err := cfg.NewTransport(l)
	require.NoError(t, err)
	defer closer.Close()
	tcp, ok := tr.(*transport.TCP)
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1:10001", tcp.Addr())

	opts, err := cfg.SignOptions(l)
	require.NoError(t, err)
	s, err := sign.New(tr, opts...)
	require.NoError(t, err)
	assert.Equal(t, "Z01", s.Address().String())
}

func TestConfig_DebugTransportWithCapture(t *testing.T) {
	dir := t.TempDir()
	capPath := filepath.Join(dir, "traffic.cbor")
	cfgPath := filepath.Join(dir, "sign.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("transport:\n  kind: debug\n  capture: "+capPath+"\n"), 0o600))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	tr, closer, err := cfg.NewTransport(nil)
	require.NoError(t, err)

	opts, err := cfg.SignOptions(nil)
	require.NoError(t, err)
	s, err := sign.New(tr, append(opts, sign.WithClearDelay(0))...)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Connect(ctx))
	require.NoError(t, s.SoftReset(ctx))
	require.NoError(t, s.Disconnect())
	require.NoError(t, closer.Close())

	f, err := os.Open(capPath)
	require.NoError(t, err)
	defer f.Close()

	records, err := transport.ReadCapture(f)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, transport.DirSend, records[0].Direction)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
