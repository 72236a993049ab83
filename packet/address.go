package packet

import (
	"fmt"
	"strconv"
)

// Sign type codes.
const (
	// TypeAll addresses every sign type.
	TypeAll byte = 'Z'
	// TypeWildcard matches any sign type.
	TypeWildcard byte = '?'
	// TypeResponse is the type code signs use in replies.
	TypeResponse byte = '0'
)

// addressLen is the wire length of an address: type code + two hex digits.
const addressLen = 3

// Address identifies the target sign(s) of a frame.
type Address struct {
	// Type is the sign type code.
	Type byte
	// ID is the sign address. Zero broadcasts to every sign of Type.
	ID uint8
}

// Broadcast reaches every sign on the line.
var Broadcast = Address{Type: TypeAll, ID: 0}

// NewAddress creates an address after validating the type code.
func NewAddress(typeCode byte, id uint8) (Address, error) {
	addr := Address{Type: typeCode, ID: id}
	if err := addr.Validate(); err != nil {
		return Address{}, err
	}

	return addr, nil
}

// Validate reports whether the type code is a printable, non-control byte.
func (a Address) Validate() error {
	if a.Type < 0x20 || a.Type > 0x7E {
		return fmt.Errorf("%w: type code 0x%02X is not printable", ErrInvalidAddress, a.Type)
	}

	return nil
}

// IsBroadcast reports whether the address reaches more than one sign.
// TypeAll with a nonzero ID still selects the single sign at that ID.
func (a Address) IsBroadcast() bool {
	return a.ID == 0 || a.Type == TypeWildcard
}

// String renders the address as it appears on the wire, e.g. "Z00".
func (a Address) String() string {
	return string(a.appendTo(make([]byte, 0, addressLen)))
}

func (a Address) appendTo(dst []byte) []byte {
	dst = append(dst, a.Type)
	return AppendHex(dst, uint64(a.ID), 2)
}

// ParseAddress parses the wire form of an address ("Z00", "001", ...).
func ParseAddress(b []byte) (Address, error) {
	if len(b) != addressLen {
		return Address{}, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidAddress, addressLen, len(b))
	}

	id, err := strconv.ParseUint(string(b[1:]), 16, 8)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, b)
	}

	return NewAddress(b[0], uint8(id))
}
