package transport

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// Serial is a transport over a local serial port, 7 data bits, even
// parity and 2 stop bits.
type Serial struct {
	name string
	opts *options
	open func(*serial.Config) (io.ReadWriteCloser, error)

	mu   sync.Mutex
	port io.ReadWriteCloser
}

var _ Transport = (*Serial)(nil)

// NewSerial returns a Serial transport for the port device name, such as
// "/dev/ttyUSB0" or "COM3".
func NewSerial(name string, opts ...Option) (*Serial, error) {
	if name == "" {
		return nil, errors.New("transport: serial port name must not be empty")
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	return &Serial{name: name, opts: o, open: openSerial}, nil
}

func openSerial(c *serial.Config) (io.ReadWriteCloser, error) {
	p, err := serial.OpenPort(c)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Config returns the port settings used by Connect.
func (s *Serial) Config() *serial.Config {
	return &serial.Config{
		Name:        s.name,
		Baud:        s.opts.baudRate,
		ReadTimeout: s.opts.pollInterval,
		Size:        7,
		Parity:      serial.ParityEven,
		StopBits:    serial.Stop2,
	}
}

func (s *Serial) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port != nil {
		return nil
	}

	port, err := s.open(s.Config())
	if err != nil {
		return classify("open "+s.name, err)
	}
	s.port = port
	s.opts.logger.Debug("transport: serial port open", "port", s.name, "baud", s.opts.baudRate)

	return nil
}

func (s *Serial) Send(b []byte) error {
	port := s.current()
	if port == nil {
		return ErrDisconnected
	}

	for written := 0; written < len(b); {
		n, err := port.Write(b[written:])
		written += n
		if err != nil {
			return classify("send", err)
		}
	}
	s.opts.record(DirSend, b)

	return nil
}

// Receive polls the port until data arrives or timeout elapses. An idle
// read returns either no bytes or io.EOF, depending on the platform.
func (s *Serial) Receive(timeout time.Duration) ([]byte, error) {
	port := s.current()
	if port == nil {
		return nil, ErrDisconnected
	}

	deadline := time.Now().Add(timeout)
	buf := make([]byte, s.opts.readBufferSize)
	for {
		n, err := port.Read(buf)
		if n > 0 {
			s.opts.record(DirReceive, buf[:n])
			return buf[:n], nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, classify("receive", err)
		}
		if !time.Now().Before(deadline) {
			return nil, ErrTimeout
		}
		if s.current() != port {
			return nil, ErrDisconnected
		}
	}
}

func (s *Serial) Disconnect() error {
	s.mu.Lock()
	port := s.port
	s.port = nil
	s.mu.Unlock()

	if port == nil {
		return nil
	}
	s.opts.logger.Debug("transport: serial port closed", "port", s.name)
	if err := port.Close(); err != nil {
		return classify("close", err)
	}

	return nil
}

func (s *Serial) current() io.ReadWriteCloser {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.port
}
