// Package config loads sign, transport and logging settings from YAML.
//
//	sign:
//	  address: Z01
//	  reply_timeout: 3s
//	  clear_delay: 1s
//	  run_sequence: {mode: S, locked: false}
//	  disabled_commands: [BEEP]
//	transport:
//	  kind: tcp
//	  address: 192.168.1.50:10001
//	  capture: /var/log/sign.cbor
//	log:
//	  level: info
//	  format: json
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/go-alphasign/command"
	"github.com/arloliu/go-alphasign/logger"
	"github.com/arloliu/go-alphasign/packet"
	"github.com/arloliu/go-alphasign/sign"
	"github.com/arloliu/go-alphasign/transport"
)

// Transport kinds.
const (
	KindTCP    = "tcp"
	KindSerial = "serial"
	KindDebug  = "debug"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the root of a configuration file.
type Config struct {
	Sign      SignConfig      `yaml:"sign"`
	Transport TransportConfig `yaml:"transport"`
	Log       LogConfig       `yaml:"log"`
}

// SignConfig holds session settings. Zero values select the sign package defaults.
type SignConfig struct {
	Address          string            `yaml:"address"`
	Preamble         *int              `yaml:"preamble"`
	ReplyTimeout     time.Duration     `yaml:"reply_timeout"`
	ClearDelay       *time.Duration    `yaml:"clear_delay"`
	RunSequence      RunSequenceConfig `yaml:"run_sequence"`
	DisabledCommands []string          `yaml:"disabled_commands"`
}

// RunSequenceConfig selects the run sequence mode.
type RunSequenceConfig struct {
	Mode   string `yaml:"mode"`
	Locked bool   `yaml:"locked"`
}

// TransportConfig selects and configures the link.
type TransportConfig struct {
	Kind         string        `yaml:"kind"`
	Address      string        `yaml:"address"`
	Port         string        `yaml:"port"`
	BaudRate     int           `yaml:"baud_rate"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// Capture is a file that receives a CBOR record of all traffic.
	Capture string `yaml:"capture"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes and validates YAML. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if cfg.Transport.Kind == "" {
		cfg.Transport.Kind = KindDebug
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that cannot be checked while decoding.
func (c *Config) Validate() error {
	if c.Sign.Address != "" {
		if _, err := packet.ParseAddress([]byte(c.Sign.Address)); err != nil {
			return fmt.Errorf("%w: sign.address: %w", ErrInvalidConfig, err)
		}
	}
	if m := c.Sign.RunSequence.Mode; m != "" && (len(m) != 1 || !command.RunMode(m[0]).Valid()) {
		return fmt.Errorf("%w: sign.run_sequence.mode %q", ErrInvalidConfig, m)
	}
	for _, name := range c.Sign.DisabledCommands {
		if _, err := command.ParseOp(name); err != nil {
			return fmt.Errorf("%w: sign.disabled_commands: %w", ErrInvalidConfig, err)
		}
	}

	switch c.Transport.Kind {
	case KindTCP:
		if c.Transport.Address == "" {
			return fmt.Errorf("%w: transport.address is required for tcp", ErrInvalidConfig)
		}
	case KindSerial:
		if c.Transport.Port == "" {
			return fmt.Errorf("%w: transport.port is required for serial", ErrInvalidConfig)
		}
	case KindDebug:
	default:
		return fmt.Errorf("%w: transport.kind %q", ErrInvalidConfig, c.Transport.Kind)
	}

	if c.Log.Level != "" {
		if _, err := logger.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
		}
	}
	if _, err := parseFormat(c.Log.Format); err != nil {
		return err
	}

	return nil
}

// NewLogger builds the configured logger writing to w.
func (c *Config) NewLogger(w io.Writer) (logger.Logger, error) {
	level := logger.InfoLevel
	if c.Log.Level != "" {
		l, err := logger.ParseLevel(c.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
		}
		level = l
	}
	format, err := parseFormat(c.Log.Format)
	if err != nil {
		return nil, err
	}

	return logger.NewSlogWriter(w, level, format, c.Log.AddSource), nil
}

// SignOptions converts the sign section into sign options.
func (c *Config) SignOptions(l logger.Logger) ([]sign.Option, error) {
	var opts []sign.Option

	if c.Sign.Address != "" {
		addr, err := packet.ParseAddress([]byte(c.Sign.Address))
		if err != nil {
			return nil, fmt.Errorf("%w: sign.address: %w", ErrInvalidConfig, err)
		}
		opts = append(opts, sign.WithAddress(addr))
	}
	if c.Sign.Preamble != nil {
		opts = append(opts, sign.WithPreamble(*c.Sign.Preamble))
	}
	if c.Sign.ReplyTimeout != 0 {
		opts = append(opts, sign.WithReplyTimeout(c.Sign.ReplyTimeout))
	}
	if c.Sign.ClearDelay != nil {
		opts = append(opts, sign.WithClearDelay(*c.Sign.ClearDelay))
	}
	if rs := c.Sign.RunSequence; rs.Mode != "" || rs.Locked {
		mode := command.RunByTimes
		if rs.Mode != "" {
			mode = command.RunMode(rs.Mode[0])
		}
		opts = append(opts, sign.WithRunSequenceMode(mode, rs.Locked))
	}
	if len(c.Sign.DisabledCommands) > 0 {
		ops := make([]command.Op, 0, len(c.Sign.DisabledCommands))
		for _, name := range c.Sign.DisabledCommands {
			op, err := command.ParseOp(name)
			if err != nil {
				return nil, fmt.Errorf("%w: sign.disabled_commands: %w", ErrInvalidConfig, err)
			}
			ops = append(ops, op)
		}
		opts = append(opts, sign.WithDisabledCommands(ops...))
	}
	if l != nil {
		opts = append(opts, sign.WithLogger(l))
	}

	return opts, nil
}

// NewTransport builds the configured transport. The returned closer
// releases the capture file, if any, and must be called after the
// transport is disconnected.
func (c *Config) NewTransport(l logger.Logger) (transport.Transport, io.Closer, error) {
	var opts []transport.Option
	if l != nil {
		opts = append(opts, transport.WithLogger(l))
	}
	if c.Transport.DialTimeout != 0 {
		opts = append(opts, transport.WithDialTimeout(c.Transport.DialTimeout))
	}
	if c.Transport.WriteTimeout != 0 {
		opts = append(opts, transport.WithWriteTimeout(c.Transport.WriteTimeout))
	}
	if c.Transport.BaudRate != 0 {
		opts = append(opts, transport.WithBaudRate(c.Transport.BaudRate))
	}

	closer := io.Closer(nopCloser{})
	if c.Transport.Capture != "" {
		f, err := os.OpenFile(c.Transport.Capture, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("config: open capture: %w", err)
		}
		closer = f
		opts = append(opts, transport.WithCapture(transport.NewCaptureWriter(f)))
	}

	var (
		t   transport.Transport
		err error
	)
	switch c.Transport.Kind {
	case KindTCP:
		t, err = transport.NewTCP(c.Transport.Address, opts...)
	case KindSerial:
		t, err = transport.NewSerial(c.Transport.Port, opts...)
	case KindDebug, "":
		t, err = transport.NewDebug(opts...)
	default:
		err = fmt.Errorf("%w: transport.kind %q", ErrInvalidConfig, c.Transport.Kind)
	}
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}

	return t, closer, nil
}

func parseFormat(s string) (logger.Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return logger.FormatAuto, nil
	case "json":
		return logger.FormatJSON, nil
	case "console":
		return logger.FormatConsole, nil
	default:
		return logger.FormatAuto, fmt.Errorf("%w: log.format %q", ErrInvalidConfig, s)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
