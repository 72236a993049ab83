package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arloliu/go-alphasign/internal/pool"
)

// Responder returns the replies a Debug transport queues after sending
// frame. It may return nil.
type Responder func(frame []byte) [][]byte

// Debug is an in-memory transport. It logs and records every frame it is
// given and plays back queued replies on Receive.
type Debug struct {
	opts *options

	mu        sync.Mutex
	connected bool
	done      chan struct{}
	sent      [][]byte
	replies   [][]byte
	respond   Responder
	notify    chan struct{}
	sendErr   error
}

var _ Transport = (*Debug)(nil)

// NewDebug returns a disconnected Debug transport.
func NewDebug(opts ...Option) (*Debug, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	return &Debug{opts: o, notify: make(chan struct{}, 1)}, nil
}

// Respond installs a responder consulted after every Send.
func (d *Debug) Respond(r Responder) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.respond = r
}

// Queue adds replies to be returned by Receive, one per call, in order.
func (d *Debug) Queue(replies ...[]byte) {
	d.mu.Lock()
	for _, r := range replies {
		d.replies = append(d.replies, append([]byte(nil), r...))
	}
	d.mu.Unlock()

	d.wake()
}

// FailSends makes every Send return err until called again with nil.
func (d *Debug) FailSends(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sendErr = err
}

// Sent returns a copy of every frame sent so far.
func (d *Debug) Sent() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([][]byte, len(d.sent))
	for i, f := range d.sent {
		out[i] = append([]byte(nil), f...)
	}

	return out
}

// Reset forgets recorded frames and pending replies.
func (d *Debug) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sent = nil
	d.replies = nil
}

// Connected reports whether the transport is open.
func (d *Debug) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.connected
}

func (d *Debug) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		d.connected = true
		d.done = make(chan struct{})
		d.opts.logger.Debug("transport: debug connected")
	}

	return nil
}

func (d *Debug) Send(b []byte) error {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return ErrDisconnected
	}
	if d.sendErr != nil {
		err := d.sendErr
		d.mu.Unlock()

		return fmt.Errorf("%w: send: %w", ErrIOFailure, err)
	}

	frame := append([]byte(nil), b...)
	d.sent = append(d.sent, frame)
	respond := d.respond
	d.mu.Unlock()

	d.opts.logger.Debug("transport: send", "len", len(frame), "frame", fmt.Sprintf("%q", frame))
	d.opts.record(DirSend, frame)

	if respond != nil {
		if replies := respond(frame); len(replies) > 0 {
			d.Queue(replies...)
		}
	}

	return nil
}

func (d *Debug) Receive(timeout time.Duration) ([]byte, error) {
	timer := pool.GetTimer(timeout)
	defer pool.PutTimer(timer)

	for {
		d.mu.Lock()
		if !d.connected {
			d.mu.Unlock()
			return nil, ErrDisconnected
		}
		done := d.done
		if len(d.replies) > 0 {
			reply := d.replies[0]
			d.replies = d.replies[1:]
			d.mu.Unlock()

			d.opts.logger.Debug("transport: receive", "len", len(reply), "frame", fmt.Sprintf("%q", reply))
			d.opts.record(DirReceive, reply)

			return reply, nil
		}
		d.mu.Unlock()

		select {
		case <-d.notify:
		case <-done:
			return nil, ErrDisconnected
		case <-timer.C:
			return nil, ErrTimeout
		}
	}
}

func (d *Debug) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		d.connected = false
		close(d.done)
		d.opts.logger.Debug("transport: debug disconnected")
	}

	return nil
}

func (d *Debug) wake() {
	select {
	case d.notify <- struct{}{}:
	default:
	}
}
