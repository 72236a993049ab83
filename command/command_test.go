package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-alphasign/packet"
)

func TestOp_String(t *testing.T) {
	assert.Equal(t, "WRITE_TEXT", OpWriteText.String())
	assert.Equal(t, "READ_TIME", OpReadTime.String())
	assert.Equal(t, "Op(99)", Op(99).String())
}

func TestParseOp(t *testing.T) {
	op, err := ParseOp("beep")
	require.NoError(t, err)
	assert.Equal(t, OpBeep, op)

	op, err = ParseOp("READ_TIME")
	require.NoError(t, err)
	assert.Equal(t, OpReadTime, op)

	_, err = ParseOp("launch")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOp_ExpectsReply(t *testing.T) {
	for _, op := range Ops() {
		assert.Equal(t, op == OpReadTime, op.ExpectsReply(), op.String())
	}
	assert.Len(t, Ops(), 15)
}

func TestOp_Valid(t *testing.T) {
	for _, op := range Ops() {
		assert.True(t, op.Valid(), op.String())
	}
	assert.False(t, Op(0).Valid())
	assert.False(t, Op(99).Valid())
	assert.Equal(t, "WRITE_RGB_DOTS", OpWriteRGBDots.String())

	op, err := ParseOp("write_large_dots")
	require.NoError(t, err)
	assert.Equal(t, OpWriteLargeDots, op)
}

func TestSpecialFunctions(t *testing.T) {
	when := time.Date(2026, time.March, 7, 13, 42, 0, 0, time.UTC)

	dow, err := SetDayOfWeek(time.Saturday)
	require.NoError(t, err)
	format, err := SetTimeFormat(TimeFormatMilitary)
	require.NoError(t, err)

	tests := []struct {
		name    string
		cmd     Command
		op      Op
		code    packet.Code
		payload string
	}{
		{"clear memory", ClearMemory(), OpClearMemory, CodeWriteSpecial, "$"},
		{"soft reset", SoftReset(), OpSoftReset, CodeWriteSpecial, ","},
		{"set time", SetTime(when), OpSetTime, CodeWriteSpecial, " 1342"},
		{"set date", SetDate(when), OpSetDate, CodeWriteSpecial, ";030726"},
		{"day of week", dow, OpSetDayOfWeek, CodeWriteSpecial, "&7"},
		{"time format", format, OpSetTimeFormat, CodeWriteSpecial, "'M"},
		{"read time", ReadTime(), OpReadTime, CodeReadSpecial, " "},
		{"write text", WriteText([]byte("A\x1b a")), OpWriteText, CodeWriteText, "A\x1b a"},
		{"write string", WriteString([]byte("142")), OpWriteString, CodeWriteString, "142"},
		{"write dots", WriteDots([]byte("D0102")), OpWriteDots, CodeWriteSmallDots, "D0102"},
		{"write large dots", WriteLargeDots([]byte("L00010002")), OpWriteLargeDots, CodeWriteLargeDots, "L00010002"},
		{"write rgb dots", WriteRGBDots([]byte("R00010001")), OpWriteRGBDots, CodeWriteRGBDots, "R00010001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.op, tt.cmd.Op)
			assert.Equal(t, tt.code, tt.cmd.Code)
			assert.Equal(t, tt.payload, string(tt.cmd.Payload))
		})
	}
}

func TestSetDayOfWeek_Sunday(t *testing.T) {
	cmd, err := SetDayOfWeek(time.Sunday)
	require.NoError(t, err)
	assert.Equal(t, "&1", string(cmd.Payload))

	_, err = SetDayOfWeek(time.Weekday(7))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSetTimeFormat_Invalid(t *testing.T) {
	_, err := SetTimeFormat('X')
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBeep(t *testing.T) {
	tests := []struct {
		name      string
		frequency int
		duration  time.Duration
		repeat    int
		payload   string
	}{
		{"typical", 0x20, 500 * time.Millisecond, 2, "(22052"},
		{"defaults", 0, 100 * time.Millisecond, 0, "(20010"},
		{"clamped high", 999, 5 * time.Second, 99, "(2FEFF"},
		{"clamped low", -5, 0, -1, "(20010"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := Beep(tt.frequency, tt.duration, tt.repeat)
			assert.Equal(t, OpBeep, cmd.Op)
			assert.Equal(t, tt.payload, string(cmd.Payload))
		})
	}
}

func TestRunSequence(t *testing.T) {
	cmd, err := RunSequence(RunByTimes, false, []byte("ABA"))
	require.NoError(t, err)
	assert.Equal(t, OpSetRunSequence, cmd.Op)
	assert.Equal(t, ".TUABA", string(cmd.Payload))

	cmd, err = RunSequence(RunAlways, true, []byte("Z"))
	require.NoError(t, err)
	assert.Equal(t, ".SLZ", string(cmd.Payload))

	_, err = RunSequence('X', false, []byte("A"))
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = RunSequence(RunByTimes, false, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = RunSequence(RunByTimes, false, []byte("0"))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAllocate(t *testing.T) {
	cmd, err := Allocate([]AllocEntry{
		{Label: 'A', Type: FileText, Size: 14, Qualifier: TextAlwaysRun},
		{Label: '1', Type: FileString, Locked: true, Size: 5, Qualifier: StringQualifier},
		{Label: 'D', Type: FileDots, Size: DotsSize(7, 80), Qualifier: DotsTriColor},
	})
	require.NoError(t, err)

	assert.Equal(t, OpAllocateMemory, cmd.Op)
	assert.Equal(t, CodeWriteSpecial, cmd.Code)
	assert.Equal(t, "$AAU000EFFFF1BL00050000DDU07502000", string(cmd.Payload))
}

func TestAllocate_Invalid(t *testing.T) {
	_, err := Allocate([]AllocEntry{{Label: '?', Type: FileText, Size: 1}})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Allocate([]AllocEntry{{Label: 'A', Type: 'Q', Size: 1}})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestValidLabel(t *testing.T) {
	assert.True(t, ValidLabel('A'))
	assert.True(t, ValidLabel('1'))
	assert.True(t, ValidLabel(' '))
	assert.True(t, ValidLabel('u'))
	assert.False(t, ValidLabel('0'))
	assert.False(t, ValidLabel('?'))
	assert.False(t, ValidLabel('v'))
	assert.False(t, ValidLabel(0x1B))
}

func TestDecodeTime(t *testing.T) {
	tod, err := DecodeTime(&packet.Frame{Code: CodeWriteSpecial, Payload: []byte(" 0907")})
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 9, Minute: 7}, tod)
	assert.Equal(t, "09:07", tod.String())

	bad := []*packet.Frame{
		{Code: CodeWriteText, Payload: []byte(" 0907")},
		{Code: CodeWriteSpecial, Payload: []byte("$0907")},
		{Code: CodeWriteSpecial, Payload: []byte(" 090")},
		{Code: CodeWriteSpecial, Payload: []byte(" 2460")},
		{Code: CodeWriteSpecial, Payload: []byte(" ab12")},
	}
	for _, f := range bad {
		_, err := DecodeTime(f)
		require.ErrorIs(t, err, packet.ErrMalformedFrame, "%q", f.Payload)
	}
}

func TestCommand_Frame(t *testing.T) {
	f, err := packet.NewFramer()
	require.NoError(t, err)

	wire := SoftReset().Frame(f, packet.Broadcast)
	frame, err := packet.Unframe(wire)
	require.NoError(t, err)
	assert.Equal(t, CodeWriteSpecial, frame.Code)
	assert.Equal(t, []byte(","), frame.Payload)
}
