package object

import "fmt"

// String limits.
const (
	MaxStringSize     = 125
	DefaultStringSize = 32
)

// String is a STRING file: a fixed-capacity value that TEXT files display
// through a Call span. The sign keeps showing the text while the string is
// rewritten, which makes strings the right home for runtime values.
//
// Data shorter than the capacity is written as-is, without padding.
type String struct {
	label    Label
	size     int
	data     string
	unlocked bool
}

// NewString creates a STRING file with capacity size (1..MaxStringSize).
// A size of zero selects DefaultStringSize.
func NewString(label Label, size int, data string) (*String, error) {
	if err := checkLabel(label); err != nil {
		return nil, err
	}
	if size == 0 {
		size = DefaultStringSize
	}
	if size < 1 || size > MaxStringSize {
		return nil, fmt.Errorf("%w: string size %d out of range [1, %d]", ErrInvalidSize, size, MaxStringSize)
	}
	if len(data) > size {
		return nil, fmt.Errorf("%w: %d bytes exceed string size %d", ErrTooLong, len(data), size)
	}
	if err := checkPrintable(data); err != nil {
		return nil, err
	}

	return &String{label: label, size: size, data: data}, nil
}

// Unlock marks the file as unlocked in the memory configuration. Strings
// are locked by default so the IR keyboard cannot edit them.
func (s *String) Unlock() *String {
	s.unlocked = true
	return s
}

func (s *String) Label() Label { return s.label }

func (s *String) Kind() Kind { return KindString }

// RequiredSize returns the declared capacity.
func (s *String) RequiredSize() int { return s.size }

// Locked reports whether the file is allocated locked.
func (s *String) Locked() bool { return !s.unlocked }

// Data returns the current value.
func (s *String) Data() string { return s.data }

// SetData replaces the value. Data longer than the capacity or holding
// bytes outside printable ASCII is rejected and the previous value is kept.
func (s *String) SetData(data string) error {
	if len(data) > s.size {
		return fmt.Errorf("%w: %d bytes exceed string size %d", ErrTooLong, len(data), s.size)
	}
	if err := checkPrintable(data); err != nil {
		return err
	}
	s.data = data

	return nil
}

// Serialize returns the label followed by the data.
func (s *String) Serialize() []byte {
	out := make([]byte, 0, 1+len(s.data))
	out = append(out, byte(s.label))

	return append(out, s.data...)
}
