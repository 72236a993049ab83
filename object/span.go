package object

import (
	"fmt"

	"github.com/arloliu/go-alphasign/command"
)

// Span is one piece of TEXT content: literal text or a directive.
//
// The set of spans is closed; use the types declared in this package.
type Span interface {
	render(r *renderer) error
}

// Literal is printable 7-bit ASCII text. Control bytes and bytes above
// 0x7E are rejected.
type Literal string

// SetColor changes the color of the text that follows.
type SetColor command.Color

// SetMode starts a new display mode at the current position. Special is
// used only with command.ModeSpecial.
type SetMode struct {
	Mode    command.Mode
	Special command.Special
}

// SetPosition moves the text that follows to a new position, keeping the
// current mode.
type SetPosition command.Position

// SetSpeed changes the display speed.
type SetSpeed command.Speed

// Call displays the current content of a STRING file.
type Call Label

// CallDots displays a SMALL DOTS picture.
type CallDots Label

// CallPicture displays a LARGE or RGB DOTS picture.
type CallPicture Label

// CallTime displays the sign's current time.
type CallTime struct{}

// NewLine starts a new line.
type NewLine struct{}

// NewPage starts a new page.
type NewPage struct{}

// renderer writes spans while tracking the position and mode in effect,
// since every mode field carries both.
type renderer struct {
	buf      []byte
	position command.Position
	mode     command.Mode
	special  command.Special
}

func (r *renderer) modeField() {
	r.buf = command.AppendMode(r.buf, r.position, r.mode, r.special)
}

func (s Literal) render(r *renderer) error {
	if err := checkPrintable(string(s)); err != nil {
		return err
	}
	r.buf = append(r.buf, s...)

	return nil
}

func (c SetColor) render(r *renderer) error {
	if !command.Color(c).Valid() {
		return fmt.Errorf("%w: color %q", ErrInvalidContent, byte(c))
	}
	r.buf = command.AppendColor(r.buf, command.Color(c))

	return nil
}

func (m SetMode) render(r *renderer) error {
	if err := checkMode(m.Mode, m.Special); err != nil {
		return err
	}
	r.mode, r.special = m.Mode, m.Special
	r.modeField()

	return nil
}

func (p SetPosition) render(r *renderer) error {
	if !command.Position(p).Valid() {
		return fmt.Errorf("%w: position %q", ErrInvalidContent, byte(p))
	}
	r.position = command.Position(p)
	r.modeField()

	return nil
}

func (s SetSpeed) render(r *renderer) error {
	if !command.Speed(s).Valid() {
		return fmt.Errorf("%w: speed 0x%02X", ErrInvalidContent, byte(s))
	}
	r.buf = command.AppendSpeed(r.buf, command.Speed(s))

	return nil
}

func (c Call) render(r *renderer) error {
	if err := checkLabel(Label(c)); err != nil {
		return err
	}
	r.buf = command.AppendCallString(r.buf, byte(c))

	return nil
}

func (c CallDots) render(r *renderer) error {
	if err := checkLabel(Label(c)); err != nil {
		return err
	}
	r.buf = command.AppendCallDots(r.buf, byte(c))

	return nil
}

func (c CallPicture) render(r *renderer) error {
	if err := checkLabel(Label(c)); err != nil {
		return err
	}
	r.buf = command.AppendCallPicture(r.buf, byte(c))

	return nil
}

func (CallTime) render(r *renderer) error {
	r.buf = command.AppendCallTime(r.buf)
	return nil
}

func (NewLine) render(r *renderer) error {
	r.buf = append(r.buf, command.NewLine)
	return nil
}

func (NewPage) render(r *renderer) error {
	r.buf = append(r.buf, command.NewPage)
	return nil
}

func checkMode(m command.Mode, s command.Special) error {
	if !m.Valid() {
		return fmt.Errorf("%w: mode %q", ErrInvalidContent, byte(m))
	}
	if m == command.ModeSpecial && !s.Valid() {
		return fmt.Errorf("%w: special mode %q", ErrInvalidContent, byte(s))
	}

	return nil
}
