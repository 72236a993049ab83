package object

import (
	"fmt"

	"github.com/arloliu/go-alphasign/command"
	"github.com/arloliu/go-alphasign/packet"
)

// Picture limits. LARGE and RGB pictures are bounded by the memory
// configuration entry, which holds two hex digits per dimension.
const (
	MaxDotsRows      = 31
	MaxDotsCols      = 255
	MaxLargeDotsRows = 255
	MaxLargeDotsCols = 255

	smallDimLen   = 2 // hex digits per dimension in a SMALL DOTS write
	largeDimLen   = 4 // hex digits per dimension in a LARGE or RGB write
	rowTerminator = 0x0D
)

// Pixel is a SMALL or LARGE DOTS picture pixel color code.
type Pixel byte

const (
	PixelOff      Pixel = '0'
	PixelRed      Pixel = '1'
	PixelGreen    Pixel = '2'
	PixelAmber    Pixel = '3'
	PixelDimRed   Pixel = '4'
	PixelDimGreen Pixel = '5'
	PixelBrown    Pixel = '6'
	PixelOrange   Pixel = '7'
	PixelYellow   Pixel = '8'
)

// Dots is a SMALL or LARGE DOTS PICTURE file with fixed dimensions. Every
// pixel starts off.
type Dots struct {
	kind   Kind
	label  Label
	rows   int
	cols   int
	status uint16
	locked bool
	pixels []byte
}

// DotsOption configures a Dots picture.
type DotsOption func(*Dots)

// WithColorStatus selects the picture palette: command.DotsMonochrome,
// command.DotsTriColor (default) or command.DotsOctoColor.
func WithColorStatus(status uint16) DotsOption {
	return func(d *Dots) { d.status = status }
}

// NewDots creates a rows x cols SMALL DOTS picture.
func NewDots(label Label, rows, cols int, opts ...DotsOption) (*Dots, error) {
	return newDots(KindDots, label, rows, cols, opts)
}

// NewLargeDots creates a rows x cols LARGE DOTS picture. LARGE pictures are
// called with CallPicture and use the same palette as SMALL ones.
func NewLargeDots(label Label, rows, cols int, opts ...DotsOption) (*Dots, error) {
	return newDots(KindLargeDots, label, rows, cols, opts)
}

func newDots(kind Kind, label Label, rows, cols int, opts []DotsOption) (*Dots, error) {
	if err := checkLabel(label); err != nil {
		return nil, err
	}
	if err := checkDimensions(kind, rows, cols); err != nil {
		return nil, err
	}

	d := &Dots{kind: kind, label: label, rows: rows, cols: cols, status: command.DotsTriColor}
	for _, opt := range opts {
		opt(d)
	}

	switch d.status {
	case command.DotsMonochrome, command.DotsTriColor, command.DotsOctoColor:
	default:
		return nil, fmt.Errorf("%w: color status 0x%04X", ErrInvalidContent, d.status)
	}

	d.pixels = make([]byte, rows*cols)
	for i := range d.pixels {
		d.pixels[i] = byte(PixelOff)
	}

	return d, nil
}

func (d *Dots) Label() Label { return d.label }

func (d *Dots) Kind() Kind { return d.kind }

// RequiredSize returns rows * (cols + 1): every row ends with a terminator.
func (d *Dots) RequiredSize() int { return d.kind.PictureSize(d.rows, d.cols) }

// Lock marks the picture as locked in the memory configuration. Pictures
// are unlocked by default.
func (d *Dots) Lock() *Dots {
	d.locked = true
	return d
}

// Locked reports whether the file is allocated locked.
func (d *Dots) Locked() bool { return d.locked }

// Dimensions returns the picture height and width.
func (d *Dots) Dimensions() (rows, cols int) { return d.rows, d.cols }

// ColorStatus returns the picture palette.
func (d *Dots) ColorStatus() uint16 { return d.status }

// Pixel returns the color at row, col.
func (d *Dots) Pixel(row, col int) (Pixel, error) {
	if err := d.checkPoint(row, col); err != nil {
		return 0, err
	}

	return Pixel(d.pixels[row*d.cols+col]), nil
}

// SetPixel colors one pixel.
func (d *Dots) SetPixel(row, col int, p Pixel) error {
	if err := d.checkPoint(row, col); err != nil {
		return err
	}
	if err := d.checkPixel(p); err != nil {
		return err
	}
	d.pixels[row*d.cols+col] = byte(p)

	return nil
}

// SetRow replaces a whole row. codes holds one pixel code per column.
func (d *Dots) SetRow(row int, codes string) error {
	if row < 0 || row >= d.rows {
		return fmt.Errorf("%w: row %d out of range [0, %d)", ErrInvalidContent, row, d.rows)
	}
	if len(codes) != d.cols {
		return fmt.Errorf("%w: row has %d pixels, want %d", ErrInvalidContent, len(codes), d.cols)
	}
	for i := 0; i < len(codes); i++ {
		if err := d.checkPixel(Pixel(codes[i])); err != nil {
			return err
		}
	}
	copy(d.pixels[row*d.cols:], codes)

	return nil
}

// Fill colors every pixel.
func (d *Dots) Fill(p Pixel) error {
	if err := d.checkPixel(p); err != nil {
		return err
	}
	for i := range d.pixels {
		d.pixels[i] = byte(p)
	}

	return nil
}

// Serialize returns the label, the dimensions as hex (two digits each for
// SMALL pictures, four for LARGE) and every row followed by a carriage
// return.
func (d *Dots) Serialize() []byte {
	out := make([]byte, 0, d.kind.HeaderLen()+d.RequiredSize())
	out = appendHeader(out, d.kind, d.label, d.rows, d.cols)
	for r := 0; r < d.rows; r++ {
		out = append(out, d.pixels[r*d.cols:(r+1)*d.cols]...)
		out = append(out, rowTerminator)
	}

	return out
}

func (d *Dots) checkPoint(row, col int) error {
	return checkPoint(row, col, d.rows, d.cols)
}

func checkPoint(row, col, rows, cols int) error {
	if row < 0 || row >= rows || col < 0 || col >= cols {
		return fmt.Errorf("%w: pixel (%d, %d) outside %dx%d", ErrInvalidContent, row, col, rows, cols)
	}

	return nil
}

func checkDimensions(kind Kind, rows, cols int) error {
	maxRows, maxCols := kind.MaxDimensions()
	if rows < 1 || rows > maxRows || cols < 1 || cols > maxCols {
		return fmt.Errorf("%w: %s %dx%d out of range [1..%d]x[1..%d]",
			ErrInvalidSize, kind, rows, cols, maxRows, maxCols)
	}

	return nil
}

// appendHeader appends the label and dimensions that start a picture write.
func appendHeader(dst []byte, kind Kind, label Label, rows, cols int) []byte {
	width := smallDimLen
	if kind != KindDots {
		width = largeDimLen
	}
	dst = append(dst, byte(label))
	dst = packet.AppendHex(dst, uint64(rows), width) //nolint:gosec // bounded by checkDimensions
	dst = packet.AppendHex(dst, uint64(cols), width) //nolint:gosec // bounded by checkDimensions

	return dst
}

func (d *Dots) checkPixel(p Pixel) error {
	maxPixel := PixelAmber
	switch d.status {
	case command.DotsMonochrome:
		maxPixel = PixelRed
	case command.DotsOctoColor:
		maxPixel = PixelYellow
	}
	if p < PixelOff || p > maxPixel {
		return fmt.Errorf("%w: pixel %q for color status 0x%04X", ErrInvalidContent, byte(p), d.status)
	}

	return nil
}
