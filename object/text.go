package object

import (
	"fmt"

	"github.com/arloliu/go-alphasign/command"
)

// MaxTextSize is the largest TEXT file capacity the allocation format can hold.
const MaxTextSize = 0xFFFF

// Text is a TEXT file: a message shown by the sign's run sequence.
type Text struct {
	label    Label
	size     int
	locked   bool
	position command.Position
	mode     command.Mode
	special  command.Special
	spans    []Span
	rendered []byte
}

// TextOption configures a Text.
type TextOption func(*Text)

// WithSize sets the capacity explicitly. Without it, the capacity is the
// size of the content given at construction.
func WithSize(n int) TextOption {
	return func(t *Text) { t.size = n }
}

// WithPosition sets the initial display position. Default: middle line.
func WithPosition(p command.Position) TextOption {
	return func(t *Text) { t.position = p }
}

// WithMode sets the initial display mode. Default: rotate.
func WithMode(m command.Mode) TextOption {
	return func(t *Text) { t.mode = m }
}

// WithSpecialMode sets the initial mode to command.ModeSpecial with effect s.
func WithSpecialMode(s command.Special) TextOption {
	return func(t *Text) {
		t.mode = command.ModeSpecial
		t.special = s
	}
}

// WithLocked allocates the file locked against IR keyboard edits.
func WithLocked() TextOption {
	return func(t *Text) { t.locked = true }
}

// NewText creates a TEXT file with the given content.
//
//	t, err := object.NewText('A', []object.Span{
//		object.SetColor(command.ColorGreen),
//		object.Literal("Count: "),
//		object.Call('1'),
//	})
func NewText(label Label, spans []Span, opts ...TextOption) (*Text, error) {
	if err := checkLabel(label); err != nil {
		return nil, err
	}

	t := &Text{
		label:    label,
		size:     -1,
		position: command.PositionMiddle,
		mode:     command.ModeRotate,
	}
	for _, opt := range opts {
		opt(t)
	}

	if !t.position.Valid() {
		return nil, fmt.Errorf("%w: position %q", ErrInvalidContent, byte(t.position))
	}
	if err := checkMode(t.mode, t.special); err != nil {
		return nil, err
	}

	rendered, err := t.render(spans)
	if err != nil {
		return nil, err
	}
	if t.size < 0 {
		t.size = len(rendered)
	}
	if t.size < 1 || t.size > MaxTextSize {
		return nil, fmt.Errorf("%w: text size %d out of range [1, %d]", ErrInvalidSize, t.size, MaxTextSize)
	}
	if len(rendered) > t.size {
		return nil, fmt.Errorf("%w: %d bytes exceed text size %d", ErrTooLong, len(rendered), t.size)
	}

	t.spans = append([]Span(nil), spans...)
	t.rendered = rendered

	return t, nil
}

func (t *Text) Label() Label { return t.label }

func (t *Text) Kind() Kind { return KindText }

// RequiredSize returns the fixed capacity.
func (t *Text) RequiredSize() int { return t.size }

// Locked reports whether the file is allocated locked.
func (t *Text) Locked() bool { return t.locked }

// Spans returns a copy of the current content.
func (t *Text) Spans() []Span {
	return append([]Span(nil), t.spans...)
}

// ContentSize returns the size of the rendered content, mode fields included.
func (t *Text) ContentSize() int { return len(t.rendered) }

// SetContent replaces the content. Invalid spans leave the content unchanged.
// Content larger than the capacity is accepted here and rejected on write.
func (t *Text) SetContent(spans ...Span) error {
	rendered, err := t.render(spans)
	if err != nil {
		return err
	}
	t.spans = append([]Span(nil), spans...)
	t.rendered = rendered

	return nil
}

// Append adds spans to the end of the current content.
func (t *Text) Append(spans ...Span) error {
	next := make([]Span, 0, len(t.spans)+len(spans))
	next = append(next, t.spans...)
	next = append(next, spans...)

	return t.SetContent(next...)
}

// Serialize returns the label, the initial mode field and the content.
func (t *Text) Serialize() []byte {
	out := make([]byte, 0, 1+len(t.rendered))
	out = append(out, byte(t.label))

	return append(out, t.rendered...)
}

func (t *Text) render(spans []Span) ([]byte, error) {
	r := renderer{position: t.position, mode: t.mode, special: t.special}
	r.modeField()
	for i, s := range spans {
		if s == nil {
			return nil, fmt.Errorf("%w: nil span at index %d", ErrInvalidContent, i)
		}
		if err := s.render(&r); err != nil {
			return nil, err
		}
	}

	return r.buf, nil
}
