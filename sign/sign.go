package sign

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/go-alphasign/command"
	"github.com/arloliu/go-alphasign/internal/pool"
	"github.com/arloliu/go-alphasign/logger"
	"github.com/arloliu/go-alphasign/memory"
	"github.com/arloliu/go-alphasign/object"
	"github.com/arloliu/go-alphasign/packet"
	"github.com/arloliu/go-alphasign/transport"
)

// Sign is a session with one sign address over a Transport.
// It is safe for concurrent use.
type Sign struct {
	t       transport.Transport
	cfg     *config
	framer  *packet.Framer
	table   *memory.Table
	id      uuid.UUID
	logger  logger.Logger
	metrics *Metrics

	// slot holds one token while a command is on the wire.
	slot  chan struct{}
	state atomic.Uint32

	// mu guards receiving and closing, which let Disconnect interrupt a
	// reply wait without cutting a frame short.
	mu        sync.Mutex
	receiving bool
	closing   int
}

// New creates a disconnected session over t.
func New(t transport.Transport, opts ...Option) (*Sign, error) {
	if t == nil {
		return nil, errors.New("sign: transport must not be nil")
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	framer, err := packet.NewFramer(packet.WithPreamble(cfg.preamble))
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	s := &Sign{
		t:       t,
		cfg:     cfg,
		framer:  framer,
		table:   memory.NewTable(),
		id:      id,
		logger:  cfg.logger.With("session", id.String(), "address", cfg.address.String()),
		metrics: newMetrics(),
		slot:    make(chan struct{}, 1),
	}

	return s, nil
}

// ID returns the session identifier used in log entries.
func (s *Sign) ID() uuid.UUID { return s.id }

// Address returns the target address.
func (s *Sign) Address() packet.Address { return s.cfg.address }

// State returns the current session state.
func (s *Sign) State() State { return State(s.state.Load()) }

// Metrics returns the session counters.
func (s *Sign) Metrics() *Metrics { return s.metrics }

// Memory returns the allocated files, in allocation order.
func (s *Sign) Memory() []memory.Entry { return s.table.Entries() }

// Connect opens the transport. Connecting a connected session keeps its
// memory configuration.
func (s *Sign) Connect(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	if err := s.t.Connect(ctx); err != nil {
		s.logger.Warn("sign: connect failed", "error", err)
		return err
	}
	if s.State().IsConnected() {
		return nil
	}

	s.table.Reset()
	s.setState(StateConnected)

	return nil
}

// Disconnect closes the transport from any state and forgets the memory
// configuration. A frame being sent is completed first; a query waiting
// for its reply is interrupted.
func (s *Sign) Disconnect() error {
	s.mu.Lock()
	s.closing++
	interrupt := s.receiving
	s.mu.Unlock()

	if interrupt {
		_ = s.t.Disconnect()
	}

	_ = s.acquire(context.Background())
	defer s.release()

	err := s.t.Disconnect()

	s.mu.Lock()
	s.closing--
	s.mu.Unlock()

	s.table.Reset()
	s.setState(StateDisconnected)

	return err
}

// Allocate replaces the sign's memory configuration with objs. The local
// table changes only after the command has been sent.
func (s *Sign) Allocate(ctx context.Context, objs ...object.Object) error {
	return s.do(ctx, command.OpAllocateMemory, StateConnected, func() error {
		layout, err := s.table.Plan(objs...)
		if err != nil {
			return err
		}
		cmd, err := layout.Command()
		if err != nil {
			return err
		}
		if err := s.send(cmd); err != nil {
			return err
		}
		if err := s.table.Commit(layout); err != nil {
			return err
		}
		s.setState(StateAllocated)
		s.logger.Info("sign: memory allocated", "files", len(objs))

		return nil
	})
}

// Write sends the current content of obj. The object must be allocated
// with its kind and its content must fit.
func (s *Sign) Write(ctx context.Context, obj object.Object) error {
	if object.IsNil(obj) {
		return fmt.Errorf("%w: nil object", memory.ErrAllocation)
	}

	var build func([]byte) command.Command
	op := command.OpWriteText
	switch obj.Kind() {
	case object.KindText:
		build = command.WriteText
	case object.KindString:
		op, build = command.OpWriteString, command.WriteString
	case object.KindDots:
		op, build = command.OpWriteDots, command.WriteDots
	case object.KindLargeDots:
		op, build = command.OpWriteLargeDots, command.WriteLargeDots
	case object.KindRGBDots:
		op, build = command.OpWriteRGBDots, command.WriteRGBDots
	default:
		return fmt.Errorf("%w: %s", memory.ErrWrongKind, obj.Kind())
	}

	return s.do(ctx, op, StateAllocated, func() error {
		if err := s.table.ValidateObject(obj); err != nil {
			return err
		}

		return s.send(build(obj.Serialize()))
	})
}

// SetRunSequence sets the TEXT files the sign cycles through, in order.
func (s *Sign) SetRunSequence(ctx context.Context, objs ...object.Object) error {
	labels := make([]object.Label, 0, len(objs))
	for _, obj := range objs {
		if object.IsNil(obj) {
			return fmt.Errorf("%w: nil object", memory.ErrAllocation)
		}
		labels = append(labels, obj.Label())
	}

	return s.do(ctx, command.OpSetRunSequence, StateAllocated, func() error {
		if err := s.table.ValidateRunSequence(labels); err != nil {
			return err
		}
		raw := make([]byte, len(labels))
		for i, l := range labels {
			raw[i] = byte(l)
		}
		cmd, err := command.RunSequence(s.cfg.runMode, s.cfg.runLocked, raw)
		if err != nil {
			return err
		}

		return s.send(cmd)
	})
}

// ClearMemory erases every file on the sign and empties the local table,
// then waits for the sign to settle before releasing the link.
func (s *Sign) ClearMemory(ctx context.Context) error {
	return s.do(ctx, command.OpClearMemory, StateConnected, func() error {
		if err := s.send(command.ClearMemory()); err != nil {
			return err
		}
		s.table.Clear()
		s.setState(StateConnected)
		s.logger.Info("sign: memory cleared")

		if s.cfg.clearDelay > 0 {
			timer := pool.GetTimer(s.cfg.clearDelay)
			<-timer.C
			pool.PutTimer(timer)
		}

		return nil
	})
}

// SetTime sets the sign's time of day.
func (s *Sign) SetTime(ctx context.Context, t time.Time) error {
	return s.sendSimple(ctx, command.SetTime(t))
}

// SetDate sets the sign's calendar date.
func (s *Sign) SetDate(ctx context.Context, t time.Time) error {
	return s.sendSimple(ctx, command.SetDate(t))
}

// SetDayOfWeek sets the sign's day of the week.
func (s *Sign) SetDayOfWeek(ctx context.Context, d time.Weekday) error {
	cmd, err := command.SetDayOfWeek(d)
	if err != nil {
		return err
	}

	return s.sendSimple(ctx, cmd)
}

// SetTimeFormat selects 12 or 24 hour display.
func (s *Sign) SetTimeFormat(ctx context.Context, f command.TimeFormat) error {
	cmd, err := command.SetTimeFormat(f)
	if err != nil {
		return err
	}

	return s.sendSimple(ctx, cmd)
}

// Beep sounds the speaker. Arguments are clamped to the protocol limits.
func (s *Sign) Beep(ctx context.Context, frequency int, duration time.Duration, repeat int) error {
	return s.sendSimple(ctx, command.Beep(frequency, duration, repeat))
}

// SoftReset restarts the sign without erasing memory.
func (s *Sign) SoftReset(ctx context.Context) error {
	return s.sendSimple(ctx, command.SoftReset())
}

// ReadTime asks the sign for its time of day and waits for the reply.
//
// Queries need a single addressed sign; a broadcast address yields
// ErrUnsupportedCommand. A reply that does not arrive in time yields an
// error wrapping transport.ErrTimeout, and a corrupt reply one wrapping
// packet.ErrFraming. Neither is retried.
func (s *Sign) ReadTime(ctx context.Context) (command.TimeOfDay, error) {
	if s.cfg.address.IsBroadcast() {
		return command.TimeOfDay{}, fmt.Errorf("%w: %v needs a single sign, address is %s",
			ErrUnsupportedCommand, command.OpReadTime, s.cfg.address)
	}

	var tod command.TimeOfDay
	err := s.do(ctx, command.OpReadTime, StateConnected, func() error {
		if err := s.send(command.ReadTime()); err != nil {
			return err
		}
		frame, err := s.receive()
		if err != nil {
			s.metrics.incReplyErr()
			return err
		}
		tod, err = command.DecodeTime(frame)
		if err != nil {
			s.metrics.incReplyErr()
			return err
		}
		s.metrics.incReplyRecv()

		return nil
	})

	return tod, err
}

func (s *Sign) sendSimple(ctx context.Context, cmd command.Command) error {
	return s.do(ctx, cmd.Op, StateConnected, func() error {
		return s.send(cmd)
	})
}

// do runs fn holding the slot once op is enabled and the session is at
// least in state need.
func (s *Sign) do(ctx context.Context, op command.Op, need State, fn func() error) error {
	if _, disabled := s.cfg.disabled[op]; disabled {
		return fmt.Errorf("%w: %v is disabled", ErrUnsupportedCommand, op)
	}
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	st := s.State()
	switch {
	case !st.IsConnected():
		return fmt.Errorf("%w: %v", transport.ErrDisconnected, op)
	case need == StateAllocated && !st.IsAllocated():
		return fmt.Errorf("%w: %v", ErrNotAllocated, op)
	}

	return fn()
}

// acquire takes the slot. The context is honored only until the slot is
// taken; transmission is never interrupted by it.
func (s *Sign) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case s.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sign) release() {
	<-s.slot
}

func (s *Sign) setState(st State) {
	prev := State(s.state.Swap(uint32(st)))
	if prev != st {
		s.logger.Debug("sign: state change", "from", prev.String(), "to", st.String())
	}
}

func (s *Sign) send(cmd command.Command) error {
	frame := cmd.Frame(s.framer, s.cfg.address)
	if err := s.t.Send(frame); err != nil {
		s.metrics.incSendErr()
		s.logger.Warn("sign: send failed", "op", cmd.Op.String(), "error", err)
		s.checkLink(err)

		return err
	}
	s.metrics.incSent(cmd.Op, len(frame))
	s.logger.Debug("sign: sent", "op", cmd.Op.String(), "len", len(frame))

	return nil
}

// checkLink moves the session to StateDisconnected when err shows the link
// is gone, so the next Connect opens it again. The caller holds the slot.
func (s *Sign) checkLink(err error) {
	if !errors.Is(err, transport.ErrDisconnected) && !errors.Is(err, transport.ErrIOFailure) {
		return
	}
	if s.State() == StateDisconnected {
		return
	}

	_ = s.t.Disconnect()
	s.table.Reset()
	s.setState(StateDisconnected)
	s.logger.Warn("sign: link lost", "error", err)
}

// beginReceive marks the slot holder as waiting for a reply. It fails when
// a Disconnect is pending.
func (s *Sign) beginReceive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing > 0 {
		return false
	}
	s.receiving = true

	return true
}

func (s *Sign) endReceive() {
	s.mu.Lock()
	s.receiving = false
	s.mu.Unlock()
}

// receive collects bytes until they form a complete frame or the reply
// timeout elapses.
func (s *Sign) receive() (*packet.Frame, error) {
	if !s.beginReceive() {
		return nil, fmt.Errorf("%w: session is closing", transport.ErrDisconnected)
	}
	defer s.endReceive()

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	deadline := time.Now().Add(s.cfg.replyTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: no complete reply after %v (%d bytes)",
				transport.ErrTimeout, s.cfg.replyTimeout, buf.Len())
		}

		chunk, err := s.t.Receive(remaining)
		if err != nil {
			if errors.Is(err, transport.ErrTimeout) {
				return nil, fmt.Errorf("%w: no complete reply after %v (%d bytes)",
					transport.ErrTimeout, s.cfg.replyTimeout, buf.Len())
			}
			s.checkLink(err)

			return nil, err
		}
		buf.Write(chunk)

		if packet.Complete(buf.Bytes()) || !frameStart(buf.Bytes()) {
			break
		}
	}

	frame, err := packet.Unframe(buf.Bytes())
	if err != nil {
		s.logger.Warn("sign: bad reply", "error", err, "len", buf.Len())
		return nil, err
	}
	s.logger.Debug("sign: reply", "address", frame.Address.String(), "code", string(rune(frame.Code)))

	return frame, nil
}

// frameStart reports whether b, after any NUL preamble, may still begin a
// frame.
func frameStart(b []byte) bool {
	for _, c := range b {
		if c != packet.NUL {
			return c == packet.SOH
		}
	}

	return true
}
