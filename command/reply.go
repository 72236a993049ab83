package command

import (
	"fmt"

	"github.com/arloliu/go-alphasign/packet"
)

// TimeOfDay is the time reported by the sign's clock.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ReadTime requests the sign's time of day.
func ReadTime() Command {
	return Command{Op: OpReadTime, Code: CodeReadSpecial, Payload: []byte{specialTimeOfDay}}
}

// DecodeTime parses the reply to ReadTime: 'E', ' ', then HHMM.
func DecodeTime(f *packet.Frame) (TimeOfDay, error) {
	if f.Code != CodeWriteSpecial {
		return TimeOfDay{}, fmt.Errorf("%w: reply command code %q, want %q", packet.ErrMalformedFrame, byte(f.Code), byte(CodeWriteSpecial))
	}

	p := f.Payload
	if len(p) != 5 || p[0] != specialTimeOfDay {
		return TimeOfDay{}, fmt.Errorf("%w: time reply payload %q", packet.ErrMalformedFrame, p)
	}

	hour, ok1 := decimal2(p[1:3])
	minute, ok2 := decimal2(p[3:5])
	if !ok1 || !ok2 || hour > 23 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: time reply %q out of range", packet.ErrMalformedFrame, p[1:])
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

func decimal2(b []byte) (int, bool) {
	if b[0] < '0' || b[0] > '9' || b[1] < '0' || b[1] > '9' {
		return 0, false
	}

	return int(b[0]-'0')*10 + int(b[1]-'0'), true
}
