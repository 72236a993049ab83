package sign

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-alphasign/command"
	"github.com/arloliu/go-alphasign/logger"
	"github.com/arloliu/go-alphasign/packet"
)

// Defaults.
const (
	DefaultReplyTimeout = 3 * time.Second
	// DefaultClearDelay is how long the sign needs after clearing memory
	// before it accepts the next command.
	DefaultClearDelay = 1 * time.Second

	MaxReplyTimeout = 60 * time.Second
	MaxClearDelay   = 10 * time.Second
)

type config struct {
	address      packet.Address
	preamble     int
	replyTimeout time.Duration
	clearDelay   time.Duration
	runMode      command.RunMode
	runLocked    bool
	disabled     map[command.Op]struct{}
	logger       logger.Logger
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		address:      packet.Broadcast,
		preamble:     packet.DefaultPreamble,
		replyTimeout: DefaultReplyTimeout,
		clearDelay:   DefaultClearDelay,
		runMode:      command.RunByTimes,
		disabled:     map[command.Op]struct{}{},
		logger:       logger.GetLogger(),
	}
	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Option is a functional option for configuring a Sign.
type Option interface {
	apply(*config) error
}

type optFunc func(*config) error

func (f optFunc) apply(cfg *config) error { return f(cfg) }

// WithAddress sets the target address. Default: packet.Broadcast.
func WithAddress(addr packet.Address) Option {
	return optFunc(func(cfg *config) error {
		if err := addr.Validate(); err != nil {
			return err
		}
		cfg.address = addr

		return nil
	})
}

// WithPreamble sets the number of NUL bytes sent before each frame.
func WithPreamble(n int) Option {
	return optFunc(func(cfg *config) error {
		if n < 0 || n > packet.MaxPreamble {
			return fmt.Errorf("sign: preamble %d out of range [0, %d]", n, packet.MaxPreamble)
		}
		cfg.preamble = n

		return nil
	})
}

// WithReplyTimeout sets how long a query waits for the complete reply.
func WithReplyTimeout(d time.Duration) Option {
	return optFunc(func(cfg *config) error {
		if d <= 0 || d > MaxReplyTimeout {
			return fmt.Errorf("sign: reply timeout %v out of range (0, %v]", d, MaxReplyTimeout)
		}
		cfg.replyTimeout = d

		return nil
	})
}

// WithClearDelay sets the pause after ClearMemory. Zero disables it.
func WithClearDelay(d time.Duration) Option {
	return optFunc(func(cfg *config) error {
		if d < 0 || d > MaxClearDelay {
			return fmt.Errorf("sign: clear delay %v out of range [0, %v]", d, MaxClearDelay)
		}
		cfg.clearDelay = d

		return nil
	})
}

// WithRunSequenceMode sets how SetRunSequence treats run times, and whether
// the sequence is locked against IR keyboard changes.
// Default: command.RunByTimes, unlocked.
func WithRunSequenceMode(mode command.RunMode, locked bool) Option {
	return optFunc(func(cfg *config) error {
		if !mode.Valid() {
			return fmt.Errorf("sign: invalid run sequence mode %q", byte(mode))
		}
		cfg.runMode = mode
		cfg.runLocked = locked

		return nil
	})
}

// WithDisabledCommands rejects the given operations with
// ErrUnsupportedCommand, for sign models that do not implement them.
func WithDisabledCommands(ops ...command.Op) Option {
	return optFunc(func(cfg *config) error {
		for _, op := range ops {
			if !op.Valid() {
				return fmt.Errorf("sign: unknown operation %v", op)
			}
			cfg.disabled[op] = struct{}{}
		}

		return nil
	})
}

// WithLogger sets the logger for the session.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *config) error {
		if l == nil {
			return errors.New("sign: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
