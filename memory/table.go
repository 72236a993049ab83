package memory

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/arloliu/go-alphasign/command"
	"github.com/arloliu/go-alphasign/object"
)

// Entry is one allocated file.
type Entry struct {
	Label object.Label
	Kind  object.Kind
	// Size is the content capacity in bytes.
	Size   int
	Locked bool
	// Rows, Cols and ColorStatus describe pictures.
	Rows        int
	Cols        int
	ColorStatus uint16
}

func (e Entry) allocEntry() command.AllocEntry {
	ae := command.AllocEntry{
		Label:  byte(e.Label),
		Type:   e.Kind.FileType(),
		Locked: e.Locked,
	}
	switch e.Kind {
	case object.KindText:
		ae.Size = uint16(e.Size) //nolint:gosec // bounded by object.MaxTextSize
		ae.Qualifier = command.TextAlwaysRun
	case object.KindString:
		ae.Size = uint16(e.Size) //nolint:gosec // bounded by object.MaxStringSize
		ae.Qualifier = command.StringQualifier
	case object.KindDots, object.KindLargeDots, object.KindRGBDots:
		ae.Size = command.DotsSize(e.Rows, e.Cols)
		ae.Qualifier = e.ColorStatus
	}

	return ae
}

// locker and picture are optional object capabilities used for allocation.
type locker interface {
	Locked() bool
}

type picture interface {
	Dimensions() (rows, cols int)
	ColorStatus() uint16
}

type snapshot struct {
	entries []Entry
	index   map[object.Label]int
	// kinds remembers the file type of every label allocated in the session.
	kinds map[object.Label]object.Kind
}

func (s *snapshot) lookup(label object.Label) (Entry, bool) {
	i, ok := s.index[label]
	if !ok {
		return Entry{}, false
	}

	return s.entries[i], true
}

// Layout is a validated memory configuration that has not been published.
type Layout struct {
	base *snapshot
	next *snapshot
}

// Entries returns the planned files in allocation order.
func (l *Layout) Entries() []Entry {
	return append([]Entry(nil), l.next.entries...)
}

// Command encodes the layout as an ALLOCATE command.
func (l *Layout) Command() (command.Command, error) {
	entries := make([]command.AllocEntry, len(l.next.entries))
	for i, e := range l.next.entries {
		entries[i] = e.allocEntry()
	}

	return command.Allocate(entries)
}

// Table mirrors the memory configuration of one sign. It is safe for
// concurrent use.
type Table struct {
	mu  sync.Mutex
	cur atomic.Pointer[snapshot]
}

// NewTable returns an empty table.
func NewTable() *Table {
	t := &Table{}
	t.cur.Store(emptySnapshot(nil))

	return t
}

func emptySnapshot(kinds map[object.Label]object.Kind) *snapshot {
	if kinds == nil {
		kinds = map[object.Label]object.Kind{}
	}

	return &snapshot{index: map[object.Label]int{}, kinds: kinds}
}

// Plan validates objs as a complete memory layout without changing the table.
func (t *Table) Plan(objs ...object.Object) (*Layout, error) {
	base := t.cur.Load()
	if len(objs) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrAllocation)
	}

	next := &snapshot{
		entries: make([]Entry, 0, len(objs)),
		index:   make(map[object.Label]int, len(objs)),
		kinds:   make(map[object.Label]object.Kind, len(base.kinds)+len(objs)),
	}
	for l, k := range base.kinds {
		next.kinds[l] = k
	}

	for _, obj := range objs {
		if object.IsNil(obj) {
			return nil, fmt.Errorf("%w: nil object", ErrAllocation)
		}
		e, err := entryOf(obj)
		if err != nil {
			return nil, err
		}
		if _, dup := next.index[e.Label]; dup {
			return nil, fmt.Errorf("%w: %q listed twice", ErrDuplicateLabel, byte(e.Label))
		}
		if _, ok := base.index[e.Label]; ok {
			return nil, fmt.Errorf("%w: %q is allocated, clear memory first", ErrDuplicateLabel, byte(e.Label))
		}
		if k, ok := next.kinds[e.Label]; ok && k != e.Kind {
			return nil, fmt.Errorf("%w: %q was allocated as %s, not %s", ErrWrongKind, byte(e.Label), k, e.Kind)
		}

		next.index[e.Label] = len(next.entries)
		next.entries = append(next.entries, e)
		next.kinds[e.Label] = e.Kind
	}

	return &Layout{base: base, next: next}, nil
}

// Commit publishes a planned layout. It fails with ErrStaleLayout when the
// table changed after the layout was planned.
func (t *Table) Commit(l *Layout) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.cur.CompareAndSwap(l.base, l.next) {
		return ErrStaleLayout
	}

	return nil
}

// Allocate plans and commits objs, returning the ALLOCATE command.
func (t *Table) Allocate(objs ...object.Object) (command.Command, error) {
	l, err := t.Plan(objs...)
	if err != nil {
		return command.Command{}, err
	}
	cmd, err := l.Command()
	if err != nil {
		return command.Command{}, fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	if err := t.Commit(l); err != nil {
		return command.Command{}, err
	}

	return cmd, nil
}

// ValidateWrite checks that size content bytes fit the file allocated at label.
func (t *Table) ValidateWrite(label object.Label, size int) error {
	e, ok := t.cur.Load().lookup(label)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLabel, byte(label))
	}

	return checkFit(e, size)
}

// ValidateObject checks that obj can be written: its label is allocated
// with the same kind and its current content fits.
func (t *Table) ValidateObject(obj object.Object) error {
	if object.IsNil(obj) {
		return fmt.Errorf("%w: nil object", ErrAllocation)
	}
	e, ok := t.cur.Load().lookup(obj.Label())
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLabel, byte(obj.Label()))
	}
	if e.Kind != obj.Kind() {
		return fmt.Errorf("%w: %q is allocated as %s, not %s", ErrWrongKind, byte(e.Label), e.Kind, obj.Kind())
	}
	if e.Kind.IsPicture() {
		p, ok := obj.(picture)
		if !ok {
			return fmt.Errorf("%w: %q has no dimensions", ErrSizeMismatch, byte(e.Label))
		}
		if rows, cols := p.Dimensions(); rows != e.Rows || cols != e.Cols {
			return fmt.Errorf("%w: %q is %dx%d, allocated %dx%d",
				ErrSizeMismatch, byte(e.Label), rows, cols, e.Rows, e.Cols)
		}
	}

	return checkFit(e, len(obj.Serialize())-e.Kind.HeaderLen())
}

// ValidateRunSequence checks that every label is an allocated TEXT file.
// Labels may repeat.
func (t *Table) ValidateRunSequence(labels []object.Label) error {
	if len(labels) == 0 {
		return fmt.Errorf("%w: empty run sequence", ErrAllocation)
	}
	s := t.cur.Load()
	for _, l := range labels {
		e, ok := s.lookup(l)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownLabel, byte(l))
		}
		if e.Kind != object.KindText {
			return fmt.Errorf("%w: %q is %s, run sequences take TEXT", ErrWrongKind, byte(l), e.Kind)
		}
	}

	return nil
}

// Clear empties the table. File types stay reserved for their labels.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cur.Store(emptySnapshot(t.cur.Load().kinds))
}

// Reset empties the table and forgets the file type of every label.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cur.Store(emptySnapshot(nil))
}

// Lookup returns the entry allocated at label.
func (t *Table) Lookup(label object.Label) (Entry, bool) {
	return t.cur.Load().lookup(label)
}

// Entries returns the allocated files in allocation order.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.cur.Load().entries...)
}

// Allocated reports whether any file is allocated.
func (t *Table) Allocated() bool {
	return len(t.cur.Load().entries) > 0
}

func entryOf(obj object.Object) (Entry, error) {
	label := obj.Label()
	if !label.Valid() {
		return Entry{}, fmt.Errorf("%w: invalid label %q", ErrAllocation, byte(label))
	}

	e := Entry{Label: label, Kind: obj.Kind(), Size: obj.RequiredSize()}
	if lk, ok := obj.(locker); ok {
		e.Locked = lk.Locked()
	}

	switch e.Kind {
	case object.KindText:
		if e.Size < 1 || e.Size > object.MaxTextSize {
			return Entry{}, fmt.Errorf("%w: text %q size %d", ErrSizeMismatch, byte(label), e.Size)
		}
	case object.KindString:
		if e.Size < 1 || e.Size > object.MaxStringSize {
			return Entry{}, fmt.Errorf("%w: string %q size %d", ErrSizeMismatch, byte(label), e.Size)
		}
	case object.KindDots, object.KindLargeDots, object.KindRGBDots:
		p, ok := obj.(picture)
		if !ok {
			return Entry{}, fmt.Errorf("%w: %s %q has no dimensions", ErrSizeMismatch, e.Kind, byte(label))
		}
		e.Rows, e.Cols = p.Dimensions()
		e.ColorStatus = p.ColorStatus()
		maxRows, maxCols := e.Kind.MaxDimensions()
		if e.Rows < 1 || e.Rows > maxRows || e.Cols < 1 || e.Cols > maxCols {
			return Entry{}, fmt.Errorf("%w: %s %q is %dx%d", ErrSizeMismatch, e.Kind, byte(label), e.Rows, e.Cols)
		}
		e.Size = e.Kind.PictureSize(e.Rows, e.Cols)
	default:
		return Entry{}, fmt.Errorf("%w: %q has %s", ErrWrongKind, byte(label), e.Kind)
	}

	return e, nil
}

func checkFit(e Entry, size int) error {
	if size < 0 || size > e.Size {
		return fmt.Errorf("%w: %d bytes for %q, allocated %d", ErrSizeMismatch, size, byte(e.Label), e.Size)
	}

	return nil
}
