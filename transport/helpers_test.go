package transport

import (
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTestListener starts a loopback listener whose accepted connections
// are delivered on the returned channel.
func newTestListener(t *testing.T) (string, <-chan net.Conn) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	conns := make(chan net.Conn, 1)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			conns <- c
		}
	}()

	t.Cleanup(func() { _ = ln.Close() })

	return ln.Addr().String(), conns
}

func acceptConn(t *testing.T, conns <-chan net.Conn) net.Conn {
	t.Helper()

	select {
	case c := <-conns:
		t.Cleanup(func() { _ = c.Close() })
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no connection accepted")
		return nil
	}
}

// fakePort is an in-memory serial port. Reads block for up to delay and
// return io.EOF when idle, like a port opened with a read timeout.
type fakePort struct {
	mu      sync.Mutex
	written []byte
	pending [][]byte
	closed  bool
	delay   time.Duration
}

func (p *fakePort) Read(b []byte) (int, error) {
	time.Sleep(p.delay)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, io.ErrClosedPipe
	}
	if len(p.pending) == 0 {
		return 0, io.EOF
	}
	n := copy(b, p.pending[0])
	p.pending = p.pending[1:]

	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, io.ErrClosedPipe
	}
	p.written = append(p.written, b...)

	return len(b), nil
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true

	return nil
}

func (p *fakePort) push(b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending = append(p.pending, b)
}
