package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/arloliu/go-alphasign/logger"
)

var (
	// ErrTransport is the category of every transport error.
	ErrTransport = errors.New("transport: error")
	// ErrTimeout indicates that no data arrived, or a write did not finish,
	// within the allowed time.
	ErrTimeout = fmt.Errorf("%w: timeout", ErrTransport)
	// ErrDisconnected indicates an operation on a closed link.
	ErrDisconnected = fmt.Errorf("%w: disconnected", ErrTransport)
	// ErrIOFailure wraps any other failure of the underlying link.
	ErrIOFailure = fmt.Errorf("%w: I/O failure", ErrTransport)
)

// Transport is a byte-stream link to one or more signs.
//
// Implementations are safe for concurrent use, but callers must not
// interleave frames: one Send carries one whole frame.
type Transport interface {
	// Connect opens the link. Connecting an open link is a no-op.
	Connect(ctx context.Context) error
	// Send writes b completely.
	Send(b []byte) error
	// Receive returns the bytes that arrive within timeout. It returns
	// ErrTimeout when nothing arrives.
	Receive(timeout time.Duration) ([]byte, error)
	// Disconnect closes the link. Disconnecting a closed link is a no-op.
	Disconnect() error
}

// Defaults.
const (
	DefaultDialTimeout    = 3 * time.Second
	DefaultWriteTimeout   = 3 * time.Second
	DefaultKeepAlive      = 30 * time.Second
	DefaultReadBufferSize = 1024
	DefaultBaudRate       = 4800
	DefaultPollInterval   = 100 * time.Millisecond
)

type options struct {
	dialTimeout    time.Duration
	writeTimeout   time.Duration
	keepAlive      time.Duration
	readBufferSize int
	baudRate       int
	pollInterval   time.Duration
	logger         logger.Logger
	capture        *CaptureWriter
}

func newOptions(opts []Option) (*options, error) {
	o := &options{
		dialTimeout:    DefaultDialTimeout,
		writeTimeout:   DefaultWriteTimeout,
		keepAlive:      DefaultKeepAlive,
		readBufferSize: DefaultReadBufferSize,
		baudRate:       DefaultBaudRate,
		pollInterval:   DefaultPollInterval,
		logger:         logger.GetLogger(),
	}
	for _, opt := range opts {
		if err := opt.apply(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// record tees b into the capture stream, if any.
func (o *options) record(dir Direction, b []byte) {
	if o.capture == nil {
		return
	}
	if err := o.capture.Write(dir, b); err != nil {
		o.logger.Warn("transport: capture failed", "direction", dir.String(), "error", err)
	}
}

// Option configures a transport. Options that do not apply to a transport
// are ignored by it.
type Option interface {
	apply(*options) error
}

type optFunc func(*options) error

func (f optFunc) apply(o *options) error { return f(o) }

// WithDialTimeout sets the TCP dial timeout.
func WithDialTimeout(d time.Duration) Option {
	return optFunc(func(o *options) error {
		if d <= 0 {
			return errors.New("transport: dial timeout must be positive")
		}
		o.dialTimeout = d

		return nil
	})
}

// WithWriteTimeout sets the deadline for writing one frame over TCP.
func WithWriteTimeout(d time.Duration) Option {
	return optFunc(func(o *options) error {
		if d <= 0 {
			return errors.New("transport: write timeout must be positive")
		}
		o.writeTimeout = d

		return nil
	})
}

// WithKeepAlive sets the TCP keep-alive period. Zero disables keep-alives.
func WithKeepAlive(d time.Duration) Option {
	return optFunc(func(o *options) error {
		if d < 0 {
			return errors.New("transport: keep-alive must not be negative")
		}
		o.keepAlive = d
		if d == 0 {
			o.keepAlive = -1
		}

		return nil
	})
}

// WithReadBufferSize sets the largest chunk returned by one Receive.
func WithReadBufferSize(n int) Option {
	return optFunc(func(o *options) error {
		if n < 1 {
			return errors.New("transport: read buffer size must be >= 1")
		}
		o.readBufferSize = n

		return nil
	})
}

// WithBaudRate sets the serial line speed.
func WithBaudRate(baud int) Option {
	return optFunc(func(o *options) error {
		if baud <= 0 {
			return fmt.Errorf("transport: invalid baud rate %d", baud)
		}
		o.baudRate = baud

		return nil
	})
}

// WithPollInterval sets how long a single serial read waits for data.
func WithPollInterval(d time.Duration) Option {
	return optFunc(func(o *options) error {
		if d < 10*time.Millisecond {
			return fmt.Errorf("transport: poll interval %v below 10ms", d)
		}
		o.pollInterval = d

		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(o *options) error {
		if l == nil {
			return errors.New("transport: logger must not be nil")
		}
		o.logger = l

		return nil
	})
}

// WithCapture tees every sent and received chunk into w.
func WithCapture(w *CaptureWriter) Option {
	return optFunc(func(o *options) error {
		o.capture = w
		return nil
	})
}

// classify maps an error from the underlying link onto the transport errors.
func classify(op string, err error) error {
	var ne net.Error

	switch {
	case errors.Is(err, os.ErrDeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		return fmt.Errorf("%w: %s: %w", ErrTimeout, op, err)
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed), errors.Is(err, io.ErrClosedPipe), errors.Is(err, os.ErrClosed):
		return fmt.Errorf("%w: %s: %w", ErrDisconnected, op, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrIOFailure, op, err)
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
