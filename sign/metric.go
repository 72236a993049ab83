package sign

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-alphasign/command"
)

// Metrics contains atomic counters for a sign session.
// Counters can be used as the value of a prometheus CounterFunc.
type Metrics struct {
	// FrameSendCount indicates the number of frames sent.
	FrameSendCount atomic.Uint64
	// ByteSendCount indicates the number of bytes sent, preamble included.
	ByteSendCount atomic.Uint64
	// SendErrCount indicates the number of failed sends.
	SendErrCount atomic.Uint64
	// ReplyRecvCount indicates the number of replies decoded.
	ReplyRecvCount atomic.Uint64
	// ReplyErrCount indicates the number of replies that timed out or failed to decode.
	ReplyErrCount atomic.Uint64

	ops *xsync.MapOf[command.Op, *xsync.Counter]
}

func newMetrics() *Metrics {
	return &Metrics{ops: xsync.NewMapOf[command.Op, *xsync.Counter]()}
}

// OpCount returns the number of frames sent for op.
func (m *Metrics) OpCount(op command.Op) int64 {
	c, ok := m.ops.Load(op)
	if !ok {
		return 0
	}

	return c.Value()
}

// OpCounts returns the number of frames sent per operation.
func (m *Metrics) OpCounts() map[command.Op]int64 {
	out := make(map[command.Op]int64, m.ops.Size())
	m.ops.Range(func(op command.Op, c *xsync.Counter) bool {
		out[op] = c.Value()
		return true
	})

	return out
}

func (m *Metrics) incSent(op command.Op, n int) {
	m.FrameSendCount.Add(1)
	m.ByteSendCount.Add(uint64(n)) //nolint:gosec // frame length is never negative

	c, _ := m.ops.LoadOrCompute(op, xsync.NewCounter)
	c.Inc()
}

func (m *Metrics) incSendErr() {
	m.SendErrCount.Add(1)
}

func (m *Metrics) incReplyRecv() {
	m.ReplyRecvCount.Add(1)
}

func (m *Metrics) incReplyErr() {
	m.ReplyErrCount.Add(1)
}
