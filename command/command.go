package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arloliu/go-alphasign/packet"
)

// Command codes.
const (
	CodeWriteText      packet.Code = 'A'
	CodeReadText       packet.Code = 'B'
	CodeWriteSpecial   packet.Code = 'E'
	CodeReadSpecial    packet.Code = 'F'
	CodeWriteString    packet.Code = 'G'
	CodeReadString     packet.Code = 'H'
	CodeWriteSmallDots packet.Code = 'I'
	CodeReadSmallDots  packet.Code = 'J'
	CodeWriteRGBDots   packet.Code = 'K'
	CodeReadRGBDots    packet.Code = 'L'
	CodeWriteLargeDots packet.Code = 'M'
	CodeReadLargeDots  packet.Code = 'N'
)

// Special function labels.
const (
	specialTimeOfDay   byte = ' '
	specialSpeaker     byte = '('
	specialMemory      byte = '$'
	specialRunSequence byte = '.'
	specialSoftReset   byte = ','
	specialDate        byte = ';'
	specialDayOfWeek   byte = '&'
	specialTimeFormat  byte = '\''

	// speakerTone selects the programmable tone of the speaker function.
	speakerTone byte = '2'
)

// ErrInvalidArgument indicates a parameter that cannot be encoded.
var ErrInvalidArgument = errors.New("command: invalid argument")

// Op identifies a protocol operation.
type Op int

const (
	OpWriteText Op = iota + 1
	OpWriteString
	OpWriteDots
	OpAllocateMemory
	OpClearMemory
	OpSetRunSequence
	OpSetTime
	OpSetDate
	OpSetDayOfWeek
	OpSetTimeFormat
	OpReadTime
	OpBeep
	OpSoftReset
	OpWriteLargeDots
	OpWriteRGBDots

	opLast = OpWriteRGBDots
)

var opNames = map[Op]string{
	OpWriteText:      "WRITE_TEXT",
	OpWriteString:    "WRITE_STRING",
	OpWriteDots:      "WRITE_DOTS",
	OpAllocateMemory: "ALLOCATE_MEMORY",
	OpClearMemory:    "CLEAR_MEMORY",
	OpSetRunSequence: "SET_RUN_SEQUENCE",
	OpSetTime:        "SET_TIME",
	OpSetDate:        "SET_DATE",
	OpSetDayOfWeek:   "SET_DAY_OF_WEEK",
	OpSetTimeFormat:  "SET_TIME_FORMAT",
	OpReadTime:       "READ_TIME",
	OpBeep:           "BEEP",
	OpSoftReset:      "SOFT_RESET",
	OpWriteLargeDots: "WRITE_LARGE_DOTS",
	OpWriteRGBDots:   "WRITE_RGB_DOTS",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}

	return fmt.Sprintf("Op(%d)", int(op))
}

// Valid reports whether op is a defined operation.
func (op Op) Valid() bool {
	return op >= OpWriteText && op <= opLast
}

// ParseOp returns the operation named s, as printed by Op.String. Case is
// ignored.
func ParseOp(s string) (Op, error) {
	for op, name := range opNames {
		if strings.EqualFold(name, s) {
			return op, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown operation %q", ErrInvalidArgument, s)
}

// ExpectsReply reports whether the sign answers the operation with a frame.
func (op Op) ExpectsReply() bool {
	return op == OpReadTime
}

// Ops returns every defined operation in declaration order.
func Ops() []Op {
	ops := make([]Op, 0, len(opNames))
	for op := OpWriteText; op <= opLast; op++ {
		ops = append(ops, op)
	}

	return ops
}

// Command is an encoded operation: the command code and the payload that
// follows it inside a frame.
type Command struct {
	Op      Op
	Code    packet.Code
	Payload []byte
}

// Frame wraps the command for addr using f.
func (c Command) Frame(f *packet.Framer, addr packet.Address) []byte {
	return f.Frame(c.Code, c.Payload, addr)
}

func special(op Op, label byte, args ...byte) Command {
	payload := make([]byte, 0, 1+len(args))
	payload = append(payload, label)
	payload = append(payload, args...)

	return Command{Op: op, Code: CodeWriteSpecial, Payload: payload}
}

// WriteText writes a TEXT file; payload is the label followed by content.
func WriteText(payload []byte) Command {
	return Command{Op: OpWriteText, Code: CodeWriteText, Payload: payload}
}

// WriteString writes a STRING file; payload is the label followed by data.
func WriteString(payload []byte) Command {
	return Command{Op: OpWriteString, Code: CodeWriteString, Payload: payload}
}

// WriteDots writes a SMALL DOTS PICTURE; payload is the label, dimensions and rows.
func WriteDots(payload []byte) Command {
	return Command{Op: OpWriteDots, Code: CodeWriteSmallDots, Payload: payload}
}

// WriteLargeDots writes a LARGE DOTS PICTURE; payload is the label,
// dimensions and rows.
func WriteLargeDots(payload []byte) Command {
	return Command{Op: OpWriteLargeDots, Code: CodeWriteLargeDots, Payload: payload}
}

// WriteRGBDots writes an RGB DOTS PICTURE; payload is the label,
// dimensions and rows of RRGGBB pixels.
func WriteRGBDots(payload []byte) Command {
	return Command{Op: OpWriteRGBDots, Code: CodeWriteRGBDots, Payload: payload}
}

// ClearMemory sends an empty memory configuration, which erases every file.
func ClearMemory() Command {
	return special(OpClearMemory, specialMemory)
}

// SoftReset restarts the sign without clearing memory.
func SoftReset() Command {
	return special(OpSoftReset, specialSoftReset)
}

// RunMode controls how the sign treats the run times of TEXT files in a
// run sequence.
type RunMode byte

const (
	// RunByTimes displays files according to their run times.
	RunByTimes RunMode = 'T'
	// RunAlways ignores run times.
	RunAlways RunMode = 'S'
	// RunThenDelete deletes each file after it has been displayed.
	RunThenDelete RunMode = 'D'
)

// Valid reports whether m is a known run mode.
func (m RunMode) Valid() bool {
	return m == RunByTimes || m == RunAlways || m == RunThenDelete
}

// RunSequence sets the display order of TEXT files. locked prevents changes
// from the sign's IR keyboard. Labels may repeat.
func RunSequence(mode RunMode, locked bool, labels []byte) (Command, error) {
	if !mode.Valid() {
		return Command{}, fmt.Errorf("%w: run mode %q", ErrInvalidArgument, byte(mode))
	}
	if len(labels) == 0 {
		return Command{}, fmt.Errorf("%w: empty run sequence", ErrInvalidArgument)
	}
	for _, l := range labels {
		if !ValidLabel(l) {
			return Command{}, fmt.Errorf("%w: label %q", ErrInvalidArgument, l)
		}
	}

	lock := byte('U')
	if locked {
		lock = 'L'
	}

	args := make([]byte, 0, 2+len(labels))
	args = append(args, byte(mode), lock)
	args = append(args, labels...)

	return special(OpSetRunSequence, specialRunSequence, args...), nil
}

// SetTime sets the sign's time of day from t (24 hour HHMM).
func SetTime(t time.Time) Command {
	return special(OpSetTime, specialTimeOfDay, []byte(t.Format("1504"))...)
}

// SetDate sets the sign's calendar date from t (MMDDYY).
func SetDate(t time.Time) Command {
	return special(OpSetDate, specialDate, []byte(t.Format("010206"))...)
}

// SetDayOfWeek sets the sign's day of week; Sunday is '1'.
func SetDayOfWeek(d time.Weekday) (Command, error) {
	if d < time.Sunday || d > time.Saturday {
		return Command{}, fmt.Errorf("%w: weekday %d", ErrInvalidArgument, d)
	}

	return special(OpSetDayOfWeek, specialDayOfWeek, byte('1'+d)), nil
}

// TimeFormat selects how the sign displays the time of day.
type TimeFormat byte

const (
	// TimeFormatStandard displays AM/PM time.
	TimeFormatStandard TimeFormat = 'S'
	// TimeFormatMilitary displays 24 hour time.
	TimeFormatMilitary TimeFormat = 'M'
)

// SetTimeFormat selects AM/PM or 24 hour display.
func SetTimeFormat(f TimeFormat) (Command, error) {
	if f != TimeFormatStandard && f != TimeFormatMilitary {
		return Command{}, fmt.Errorf("%w: time format %q", ErrInvalidArgument, byte(f))
	}

	return special(OpSetTimeFormat, specialTimeFormat, byte(f)), nil
}

// Beep limits.
const (
	MaxBeepFrequency = 254
	MinBeepDuration  = 100 * time.Millisecond
	MaxBeepDuration  = 1500 * time.Millisecond
	MaxBeepRepeat    = 15
)

// Beep sounds the speaker. frequency is the sign's tone index (not Hz),
// duration is rounded down to tenths of a second. Out of range values are
// clamped.
func Beep(frequency int, duration time.Duration, repeat int) Command {
	frequency = clamp(frequency, 0, MaxBeepFrequency)
	tenths := clamp(int(duration/MinBeepDuration), 1, int(MaxBeepDuration/MinBeepDuration))
	repeat = clamp(repeat, 0, MaxBeepRepeat)

	args := []byte{speakerTone}
	args = packet.AppendHex(args, uint64(frequency), 2) //nolint:gosec // clamped above
	args = packet.AppendHex(args, uint64(tenths), 1)    //nolint:gosec // clamped above
	args = packet.AppendHex(args, uint64(repeat), 1)    //nolint:gosec // clamped above

	return special(OpBeep, specialSpeaker, args...)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
