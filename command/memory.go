package command

import (
	"fmt"

	"github.com/arloliu/go-alphasign/packet"
)

// FileType is the type of a memory file in a memory configuration.
type FileType byte

const (
	FileText   FileType = 'A'
	FileString FileType = 'B'
	FileDots   FileType = 'D'
)

// Allocation qualifiers, the last four hex digits of an allocation entry.
const (
	// TextAlwaysRun sets a TEXT file's start and stop times to "always".
	TextAlwaysRun uint16 = 0xFFFF
	// StringQualifier is unused for STRING files.
	StringQualifier uint16 = 0x0000
	// DotsMonochrome, DotsTriColor, DotsOctoColor and DotsRGB are DOTS
	// color status values.
	DotsMonochrome uint16 = 0x1000
	DotsTriColor   uint16 = 0x2000
	DotsOctoColor  uint16 = 0x4000
	DotsRGB        uint16 = 0x8000
)

// allocEntryLen is label + type + lock + 4 size digits + 4 qualifier digits.
const allocEntryLen = 11

// AllocEntry is one file in a memory configuration.
type AllocEntry struct {
	Label  byte
	Type   FileType
	Locked bool
	// Size is the byte capacity for TEXT and STRING files, and rows<<8|cols
	// for DOTS files.
	Size      uint16
	Qualifier uint16
}

// DotsSize packs picture dimensions into an allocation size field.
func DotsSize(rows, cols int) uint16 {
	return uint16(rows&0xFF)<<8 | uint16(cols&0xFF) //nolint:gosec // masked to 8 bits
}

// Allocate encodes a complete memory configuration. The sign replaces its
// whole memory layout with entries, so every file must be listed each time.
func Allocate(entries []AllocEntry) (Command, error) {
	args := make([]byte, 0, len(entries)*allocEntryLen)
	for _, e := range entries {
		if !ValidLabel(e.Label) {
			return Command{}, fmt.Errorf("%w: label %q", ErrInvalidArgument, e.Label)
		}
		switch e.Type {
		case FileText, FileString, FileDots:
		default:
			return Command{}, fmt.Errorf("%w: file type %q", ErrInvalidArgument, byte(e.Type))
		}

		lock := byte('U')
		if e.Locked {
			lock = 'L'
		}

		args = append(args, e.Label, byte(e.Type), lock)
		args = packet.AppendHex(args, uint64(e.Size), 4)
		args = packet.AppendHex(args, uint64(e.Qualifier), 4)
	}

	return special(OpAllocateMemory, specialMemory, args...), nil
}

// ValidLabel reports whether b can address a file. Labels are single bytes
// in 0x20..0x75; '0' is reserved for the priority TEXT file and '?' is the
// wildcard.
func ValidLabel(b byte) bool {
	return b >= 0x20 && b <= 0x75 && b != '0' && b != '?'
}
