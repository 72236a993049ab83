package command

// In-band control bytes embedded in TEXT content.
const (
	ESC           byte = 0x1B
	colorPrefix   byte = 0x1C
	callString    byte = 0x10
	callSmallDots byte = 0x14
	callTime      byte = 0x13
	callPicture   byte = 'p'
	// pictureLarge selects LARGE and RGB pictures in a picture call.
	pictureLarge  byte = '2'
	NewLine       byte = 0x0D
	NewPage       byte = 0x0C
)

// Color is a text color code.
type Color byte

const (
	ColorRed       Color = '1'
	ColorGreen     Color = '2'
	ColorAmber     Color = '3'
	ColorDimRed    Color = '4'
	ColorDimGreen  Color = '5'
	ColorBrown     Color = '6'
	ColorOrange    Color = '7'
	ColorYellow    Color = '8'
	ColorRainbow1  Color = '9'
	ColorRainbow2  Color = 'A'
	ColorMix       Color = 'B'
	ColorAutoColor Color = 'C'
)

// Valid reports whether c is a known color code.
func (c Color) Valid() bool {
	return (c >= ColorRed && c <= ColorRainbow1) || (c >= ColorRainbow2 && c <= ColorAutoColor)
}

// Position is the display position of a TEXT file. It combines vertical
// placement (middle, top, bottom, fill) and horizontal justification
// (left, right).
type Position byte

const (
	PositionMiddle Position = ' '
	PositionTop    Position = '"'
	PositionBottom Position = '&'
	PositionFill   Position = '0'
	PositionLeft   Position = '1'
	PositionRight  Position = '2'
)

// Valid reports whether p is a known position code.
func (p Position) Valid() bool {
	switch p {
	case PositionMiddle, PositionTop, PositionBottom, PositionFill, PositionLeft, PositionRight:
		return true
	}

	return false
}

// Mode is a display mode (transition effect).
type Mode byte

const (
	ModeRotate           Mode = 'a'
	ModeHold             Mode = 'b'
	ModeFlash            Mode = 'c'
	ModeRollUp           Mode = 'e'
	ModeRollDown         Mode = 'f'
	ModeRollLeft         Mode = 'g'
	ModeRollRight        Mode = 'h'
	ModeWipeUp           Mode = 'i'
	ModeWipeDown         Mode = 'j'
	ModeWipeLeft         Mode = 'k'
	ModeWipeRight        Mode = 'l'
	ModeScroll           Mode = 'm'
	ModeSpecial          Mode = 'n'
	ModeAuto             Mode = 'o'
	ModeRollIn           Mode = 'p'
	ModeRollOut          Mode = 'q'
	ModeWipeIn           Mode = 'r'
	ModeWipeOut          Mode = 's'
	ModeCompressedRotate Mode = 't'
	ModeExplode          Mode = 'u'
	ModeClock            Mode = 'v'
)

// Valid reports whether m is a known mode code.
func (m Mode) Valid() bool {
	return m >= ModeRotate && m <= ModeClock && m != 'd'
}

// Special selects the effect used with ModeSpecial.
type Special byte

const (
	SpecialTwinkle     Special = '0'
	SpecialSparkle     Special = '1'
	SpecialSnow        Special = '2'
	SpecialInterlock   Special = '3'
	SpecialSwitch      Special = '4'
	SpecialSlide       Special = '5'
	SpecialSpray       Special = '6'
	SpecialStarburst   Special = '7'
	SpecialWelcome     Special = '8'
	SpecialSlotMachine Special = '9'
	SpecialNewsFlash   Special = 'A'
	SpecialTrumpet     Special = 'B'
	SpecialCycleColors Special = 'C'
	SpecialThankYou    Special = 'S'
	SpecialNoSmoking   Special = 'U'
	SpecialDontDrive   Special = 'V'
	SpecialRunAnimal   Special = 'W'
	SpecialFish        Special = 'X'
	SpecialFireworks   Special = 'Y'
	SpecialTurboCar    Special = 'Z'
	SpecialBalloon     Special = '['
	SpecialCherryBomb  Special = '\\'
)

// Valid reports whether s is a known special effect code.
func (s Special) Valid() bool {
	return (s >= SpecialTwinkle && s <= SpecialCycleColors && (s <= '9' || s >= 'A')) ||
		s == SpecialThankYou || (s >= SpecialNoSmoking && s <= SpecialCherryBomb)
}

// Speed is a display speed code.
type Speed byte

const (
	Speed1      Speed = 0x15 // slowest
	Speed2      Speed = 0x16
	Speed3      Speed = 0x17
	Speed4      Speed = 0x18
	Speed5      Speed = 0x19 // fastest
	SpeedNoHold Speed = 0x09
)

// Valid reports whether s is a known speed code.
func (s Speed) Valid() bool {
	return (s >= Speed1 && s <= Speed5) || s == SpeedNoHold
}

// AppendColor appends a color change.
func AppendColor(dst []byte, c Color) []byte {
	return append(dst, colorPrefix, byte(c))
}

// AppendMode appends a mode field. special is written only for ModeSpecial.
func AppendMode(dst []byte, p Position, m Mode, s Special) []byte {
	dst = append(dst, ESC, byte(p), byte(m))
	if m == ModeSpecial {
		dst = append(dst, byte(s))
	}

	return dst
}

// AppendSpeed appends a speed change.
func AppendSpeed(dst []byte, s Speed) []byte {
	return append(dst, byte(s))
}

// AppendCallString appends a reference to a STRING file. The sign
// substitutes the file's current content when it displays the text.
func AppendCallString(dst []byte, label byte) []byte {
	return append(dst, callString, label)
}

// AppendCallDots appends a reference to a SMALL DOTS PICTURE file.
func AppendCallDots(dst []byte, label byte) []byte {
	return append(dst, callSmallDots, label)
}

// AppendCallPicture appends a reference to a LARGE or RGB DOTS PICTURE file.
func AppendCallPicture(dst []byte, label byte) []byte {
	return append(dst, ESC, callPicture, pictureLarge, label)
}

// AppendCallTime appends a reference to the sign's current time.
func AppendCallTime(dst []byte) []byte {
	return append(dst, callTime)
}
