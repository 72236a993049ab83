package packet

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/arloliu/go-alphasign/internal/pool"
)

// Protocol control bytes.
const (
	NUL byte = 0x00
	SOH byte = 0x01 // start of header
	STX byte = 0x02 // start of text
	ETX byte = 0x03 // end of text
	EOT byte = 0x04 // end of transmission
)

const (
	// DefaultPreamble is the number of NUL bytes sent before each frame.
	DefaultPreamble = 5
	// MaxPreamble bounds the configurable preamble length.
	MaxPreamble = 64

	// checksumLen is the number of ASCII hex digits in the checksum.
	checksumLen = 4
	// trailerLen is ETX + checksum + EOT.
	trailerLen = 1 + checksumLen + 1
	// minBodyLen is STX + command code + trailer.
	minBodyLen = 2 + trailerLen
)

var (
	// ErrFraming is the category of every error returned by Unframe.
	ErrFraming = errors.New("packet: framing error")
	// ErrMalformedFrame indicates missing or misordered frame markers.
	ErrMalformedFrame = fmt.Errorf("%w: malformed frame", ErrFraming)
	// ErrBadChecksum indicates the checksum does not match the frame content.
	ErrBadChecksum = fmt.Errorf("%w: bad checksum", ErrFraming)
	// ErrInvalidAddress indicates an address that cannot be put on the wire.
	ErrInvalidAddress = errors.New("packet: invalid address")
)

// Code is a protocol command code, the first byte after STX.
type Code byte

// Frame is a decoded protocol frame.
type Frame struct {
	Address Address
	Code    Code
	Payload []byte
}

// Checksum returns the 16-bit arithmetic sum of b.
func Checksum(b []byte) uint16 {
	var sum uint32
	for _, v := range b {
		sum += uint32(v)
	}

	return uint16(sum & 0xFFFF) //nolint:gosec // 16-bit wrap is the protocol's modulus
}

// Framer builds frames with a fixed preamble length.
//
// The zero value sends no preamble; use NewFramer for the default.
type Framer struct {
	preamble int
}

// FramerOption configures a Framer.
type FramerOption func(*Framer) error

// WithPreamble sets the number of NUL bytes sent before each frame.
func WithPreamble(n int) FramerOption {
	return func(f *Framer) error {
		if n < 0 || n > MaxPreamble {
			return fmt.Errorf("packet: preamble %d out of range [0, %d]", n, MaxPreamble)
		}
		f.preamble = n

		return nil
	}
}

// NewFramer creates a Framer using DefaultPreamble unless overridden.
func NewFramer(opts ...FramerOption) (*Framer, error) {
	f := &Framer{preamble: DefaultPreamble}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Preamble returns the configured preamble length.
func (f *Framer) Preamble() int { return f.preamble }

// Frame wraps payload in a complete frame addressed to addr.
func (f *Framer) Frame(code Code, payload []byte, addr Address) []byte {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	for range f.preamble {
		buf.WriteByte(NUL)
	}
	buf.WriteByte(SOH)
	buf.Write(addr.appendTo(make([]byte, 0, addressLen)))

	textStart := buf.Len()
	buf.WriteByte(STX)
	buf.WriteByte(byte(code))
	buf.Write(payload)
	buf.WriteByte(ETX)

	sum := Checksum(buf.Bytes()[textStart:])
	buf.Write(AppendHex(make([]byte, 0, checksumLen), uint64(sum), checksumLen))
	buf.WriteByte(EOT)

	return bytes.Clone(buf.Bytes())
}

var defaultFramer = &Framer{preamble: DefaultPreamble}

// Encode frames payload with the default preamble.
func Encode(code Code, payload []byte, addr Address) []byte {
	return defaultFramer.Frame(code, payload, addr)
}

// Unframe validates a received frame and returns its address, command code
// and payload. Leading NUL bytes are skipped.
//
// It returns an error wrapping ErrMalformedFrame when markers are missing or
// out of order, and ErrBadChecksum when the checksum does not match.
func Unframe(b []byte) (*Frame, error) {
	i := skipPreamble(b)
	if i >= len(b) || b[i] != SOH {
		return nil, fmt.Errorf("%w: missing SOH", ErrMalformedFrame)
	}
	i++

	stx := bytes.IndexByte(b[i:], STX)
	if stx < 0 {
		return nil, fmt.Errorf("%w: missing STX", ErrMalformedFrame)
	}

	addr, err := ParseAddress(b[i : i+stx])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}

	body := b[i+stx:]
	n := len(body)
	if n < minBodyLen {
		return nil, fmt.Errorf("%w: truncated frame (%d bytes after STX)", ErrMalformedFrame, n)
	}
	if body[n-1] != EOT {
		return nil, fmt.Errorf("%w: missing EOT", ErrMalformedFrame)
	}
	if body[n-trailerLen] != ETX {
		return nil, fmt.Errorf("%w: missing ETX", ErrMalformedFrame)
	}

	wire, err := strconv.ParseUint(string(body[n-trailerLen+1:n-1]), 16, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: checksum %q is not hex", ErrMalformedFrame, body[n-trailerLen+1:n-1])
	}

	text := body[:n-trailerLen+1] // STX .. ETX inclusive
	if calc := Checksum(text); uint16(wire) != calc {
		return nil, fmt.Errorf("%w: wire=%04X, computed=%04X", ErrBadChecksum, wire, calc)
	}

	return &Frame{
		Address: addr,
		Code:    Code(text[1]),
		Payload: bytes.Clone(text[2 : len(text)-1]),
	}, nil
}

// Complete reports whether b holds a full frame: SOH, an address ending in
// STX, and a well-formed trailer at the very end. It does not verify the
// checksum; callers use it to decide whether to keep reading.
func Complete(b []byte) bool {
	i := skipPreamble(b)
	if i >= len(b) || b[i] != SOH {
		return false
	}

	stx := bytes.IndexByte(b[i:], STX)
	if stx < 0 {
		return false
	}

	body := b[i+stx:]
	n := len(body)
	if n < minBodyLen || body[n-1] != EOT || body[n-trailerLen] != ETX {
		return false
	}
	for _, c := range body[n-trailerLen+1 : n-1] {
		if !isHexDigit(c) {
			return false
		}
	}

	return true
}

func skipPreamble(b []byte) int {
	i := 0
	for i < len(b) && b[i] == NUL {
		i++
	}

	return i
}

const hexDigits = "0123456789ABCDEF"

// AppendHex appends the low width hex digits of v, uppercase.
func AppendHex(dst []byte, v uint64, width int) []byte {
	for shift := (width - 1) * 4; shift >= 0; shift -= 4 {
		dst = append(dst, hexDigits[(v>>uint(shift))&0xF]) //nolint:gosec // shift is non-negative
	}

	return dst
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}
