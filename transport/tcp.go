package transport

import (
	"context"
	"net"
	"sync"
	"time"
)

// TCP is a transport to a serial-to-network bridge.
type TCP struct {
	addr string
	opts *options

	mu   sync.Mutex
	conn net.Conn
}

var _ Transport = (*TCP)(nil)

// NewTCP returns a TCP transport for addr ("host:port").
func NewTCP(addr string, opts ...Option) (*TCP, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return nil, classify("parse address", err)
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	return &TCP{addr: addr, opts: o}, nil
}

// Addr returns the bridge address.
func (t *TCP) Addr() string { return t.addr }

func (t *TCP) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		return nil
	}

	dialer := &net.Dialer{KeepAlive: t.opts.keepAlive}
	dialCtx, cancel := context.WithTimeout(ctx, t.opts.dialTimeout)
	defer cancel()

	conn, err := dialer.DialContext(dialCtx, "tcp", t.addr)
	if err != nil {
		t.opts.logger.Debug("transport: dial failed", "address", t.addr, "error", err)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return classify("dial", err)
	}

	t.conn = conn
	t.opts.logger.Debug("transport: connected",
		"localAddr", conn.LocalAddr(),
		"remoteAddr", conn.RemoteAddr())

	return nil
}

func (t *TCP) Send(b []byte) error {
	conn := t.current()
	if conn == nil {
		return ErrDisconnected
	}

	if err := conn.SetWriteDeadline(time.Now().Add(t.opts.writeTimeout)); err != nil {
		return t.fail(conn, "send", err)
	}
	for written := 0; written < len(b); {
		n, err := conn.Write(b[written:])
		written += n
		if err != nil {
			return t.fail(conn, "send", err)
		}
	}
	t.opts.record(DirSend, b)

	return nil
}

func (t *TCP) Receive(timeout time.Duration) ([]byte, error) {
	conn := t.current()
	if conn == nil {
		return nil, ErrDisconnected
	}

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, t.fail(conn, "receive", err)
	}

	buf := make([]byte, t.opts.readBufferSize)
	n, err := conn.Read(buf)
	if n > 0 {
		t.opts.record(DirReceive, buf[:n])
		return buf[:n], nil
	}
	if err == nil {
		return nil, ErrTimeout
	}

	return nil, t.fail(conn, "receive", err)
}

func (t *TCP) Disconnect() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	t.opts.logger.Debug("transport: disconnected", "address", t.addr)
	if err := conn.Close(); err != nil {
		return classify("close", err)
	}

	return nil
}

func (t *TCP) current() net.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.conn
}

// fail classifies err and drops the connection when the peer has gone away.
func (t *TCP) fail(conn net.Conn, op string, err error) error {
	cerr := classify(op, err)
	if !isTimeout(cerr) {
		t.mu.Lock()
		if t.conn == conn {
			t.conn = nil
		}
		t.mu.Unlock()
		_ = conn.Close()
		t.opts.logger.Warn("transport: connection dropped", "address", t.addr, "op", op, "error", err)
	}

	return cerr
}
