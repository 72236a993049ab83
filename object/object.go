package object

import (
	"errors"
	"fmt"

	"github.com/arloliu/go-alphasign/command"
)

var (
	// ErrInvalidObject is the category of every construction error in this package.
	ErrInvalidObject = errors.New("object: invalid object")
	// ErrInvalidLabel indicates a label that cannot address a file.
	ErrInvalidLabel = fmt.Errorf("%w: invalid label", ErrInvalidObject)
	// ErrInvalidSize indicates a capacity outside the kind's limits.
	ErrInvalidSize = fmt.Errorf("%w: invalid size", ErrInvalidObject)
	// ErrTooLong indicates content larger than the object's capacity.
	ErrTooLong = fmt.Errorf("%w: content too long", ErrInvalidObject)
	// ErrInvalidContent indicates content that cannot be encoded.
	ErrInvalidContent = fmt.Errorf("%w: invalid content", ErrInvalidObject)
)

// Label addresses a file in sign memory.
type Label byte

// Valid reports whether l can address a file.
func (l Label) Valid() bool {
	return command.ValidLabel(byte(l))
}

func (l Label) String() string {
	return string(rune(l))
}

// checkPrintable rejects bytes outside printable 7-bit ASCII. Control
// bytes would be read as directives or frame markers, and serial lines run
// with 7 data bits.
func checkPrintable(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7E {
			return fmt.Errorf("%w: byte 0x%02X at offset %d is not printable ASCII", ErrInvalidContent, s[i], i)
		}
	}

	return nil
}

func checkLabel(l Label) error {
	if !l.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, byte(l))
	}

	return nil
}

// Kind is the type of a memory file.
type Kind int

const (
	KindText Kind = iota + 1
	KindString
	KindDots
	KindLargeDots
	KindRGBDots
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "TEXT"
	case KindString:
		return "STRING"
	case KindDots:
		return "DOTS"
	case KindLargeDots:
		return "LARGE_DOTS"
	case KindRGBDots:
		return "RGB_DOTS"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// FileType returns the memory configuration type code of the kind.
func (k Kind) FileType() command.FileType {
	switch k {
	case KindString:
		return command.FileString
	case KindDots, KindLargeDots, KindRGBDots:
		return command.FileDots
	default:
		return command.FileText
	}
}

// IsPicture reports whether the kind is a DOTS picture.
func (k Kind) IsPicture() bool {
	return k == KindDots || k == KindLargeDots || k == KindRGBDots
}

// MaxDimensions returns the largest picture of the kind, or zeros for
// non-picture kinds.
func (k Kind) MaxDimensions() (rows, cols int) {
	switch k {
	case KindDots:
		return MaxDotsRows, MaxDotsCols
	case KindLargeDots, KindRGBDots:
		return MaxLargeDotsRows, MaxLargeDotsCols
	default:
		return 0, 0
	}
}

// PictureSize returns the content bytes of a rows x cols picture of the
// kind: every row ends with a terminator, and RGB pixels take six hex
// digits each.
func (k Kind) PictureSize(rows, cols int) int {
	if k == KindRGBDots {
		return rows * (rgbPixelLen*cols + 1)
	}

	return rows * (cols + 1)
}

// HeaderLen returns the number of payload bytes that precede file content:
// the label, plus the dimensions for pictures.
func (k Kind) HeaderLen() int {
	switch k {
	case KindDots:
		return 1 + 2*smallDimLen
	case KindLargeDots, KindRGBDots:
		return 1 + 2*largeDimLen
	default:
		return 1
	}
}

// Object is a file that can be allocated on and written to a sign.
type Object interface {
	// Label returns the file label.
	Label() Label
	// Kind returns the file type.
	Kind() Kind
	// RequiredSize returns the storage to allocate, in bytes.
	RequiredSize() int
	// Serialize returns the write payload: the label followed by the
	// current content.
	Serialize() []byte
}

var (
	_ Object = (*Text)(nil)
	_ Object = (*String)(nil)
	_ Object = (*Dots)(nil)
	_ Object = (*RGBDots)(nil)
)

// IsNil reports whether obj is nil or a nil pointer of one of the object
// types in this package.
func IsNil(obj Object) bool {
	switch o := obj.(type) {
	case nil:
		return true
	case *Text:
		return o == nil
	case *String:
		return o == nil
	case *Dots:
		return o == nil
	case *RGBDots:
		return o == nil
	default:
		return false
	}
}
