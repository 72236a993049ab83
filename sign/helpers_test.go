package sign

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-alphasign/object"
	"github.com/arloliu/go-alphasign/packet"
	"github.com/arloliu/go-alphasign/transport"
)

// newTestSign returns a connected session over a Debug transport with no
// clear delay.
func newTestSign(t *testing.T, opts ...Option) (*Sign, *transport.Debug) {
	t.Helper()

	d, err := transport.NewDebug()
	require.NoError(t, err)

	s, err := New(d, append([]Option{WithClearDelay(0)}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, s.Connect(context.Background()))
	t.Cleanup(func() { _ = s.Disconnect() })

	return s, d
}

// newCounterLayout returns TEXT "A" calling STRING "1".
func newCounterLayout(t *testing.T, stringSize int) (*object.Text, *object.String) {
	t.Helper()

	txt, err := object.NewText('A', []object.Span{object.Literal("Count: "), object.Call('1')}, object.WithSize(14))
	require.NoError(t, err)
	str, err := object.NewString('1', stringSize, "")
	require.NoError(t, err)

	return txt, str
}

// sentFrames decodes every frame recorded by d.
func sentFrames(t *testing.T, d *transport.Debug) []*packet.Frame {
	t.Helper()

	sent := d.Sent()
	frames := make([]*packet.Frame, len(sent))
	for i, raw := range sent {
		f, err := packet.Unframe(raw)
		require.NoError(t, err, "frame %d: %q", i, raw)
		frames[i] = f
	}

	return frames
}

// exclusiveTransport fails the test when two sends overlap.
type exclusiveTransport struct {
	t        *testing.T
	inflight atomic.Int32
	hold     time.Duration

	mu     sync.Mutex
	frames [][]byte
}

func (e *exclusiveTransport) Connect(context.Context) error { return nil }

func (e *exclusiveTransport) Send(b []byte) error {
	if n := e.inflight.Add(1); n != 1 {
		e.t.Errorf("%d sends in flight", n)
	}
	time.Sleep(e.hold)

	e.mu.Lock()
	e.frames = append(e.frames, append([]byte(nil), b...))
	e.mu.Unlock()

	e.inflight.Add(-1)

	return nil
}

func (e *exclusiveTransport) Receive(time.Duration) ([]byte, error) {
	return nil, transport.ErrTimeout
}

func (e *exclusiveTransport) Disconnect() error { return nil }

// blockingTransport holds every Send until release is closed.
type blockingTransport struct {
	started chan struct{}
	release chan struct{}
	sent    atomic.Int32
}

func newBlockingTransport() *blockingTransport {
	return &blockingTransport{started: make(chan struct{}, 8), release: make(chan struct{})}
}

func (b *blockingTransport) Connect(context.Context) error { return nil }

func (b *blockingTransport) Send([]byte) error {
	b.started <- struct{}{}
	<-b.release
	b.sent.Add(1)

	return nil
}

func (b *blockingTransport) Receive(time.Duration) ([]byte, error) {
	return nil, transport.ErrTimeout
}

func (b *blockingTransport) Disconnect() error { return nil }
