package object

import (
	"fmt"

	"github.com/arloliu/go-alphasign/command"
	"github.com/arloliu/go-alphasign/packet"
)

// rgbPixelLen is the number of hex digits per RGB pixel.
const rgbPixelLen = 6

// RGB is a 24-bit pixel color.
type RGB struct {
	R, G, B uint8
}

func (c RGB) String() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

func (c RGB) appendTo(dst []byte) []byte {
	return packet.AppendHex(dst, uint64(c.R)<<16|uint64(c.G)<<8|uint64(c.B), rgbPixelLen)
}

// RGBDots is an RGB DOTS PICTURE file: each pixel is sent as RRGGBB hex.
// Pixels start black. Pictures are called with CallPicture.
type RGBDots struct {
	label  Label
	rows   int
	cols   int
	locked bool
	pixels []RGB
}

// NewRGBDots creates a rows x cols RGB picture.
func NewRGBDots(label Label, rows, cols int) (*RGBDots, error) {
	if err := checkLabel(label); err != nil {
		return nil, err
	}
	if err := checkDimensions(KindRGBDots, rows, cols); err != nil {
		return nil, err
	}

	return &RGBDots{label: label, rows: rows, cols: cols, pixels: make([]RGB, rows*cols)}, nil
}

func (d *RGBDots) Label() Label { return d.label }

func (d *RGBDots) Kind() Kind { return KindRGBDots }

// RequiredSize returns rows * (6*cols + 1).
func (d *RGBDots) RequiredSize() int { return KindRGBDots.PictureSize(d.rows, d.cols) }

// Lock marks the picture as locked in the memory configuration.
func (d *RGBDots) Lock() *RGBDots {
	d.locked = true
	return d
}

// Locked reports whether the file is allocated locked.
func (d *RGBDots) Locked() bool { return d.locked }

// Dimensions returns the picture height and width.
func (d *RGBDots) Dimensions() (rows, cols int) { return d.rows, d.cols }

// ColorStatus returns command.DotsRGB.
func (d *RGBDots) ColorStatus() uint16 { return command.DotsRGB }

// Pixel returns the color at row, col.
func (d *RGBDots) Pixel(row, col int) (RGB, error) {
	if err := checkPoint(row, col, d.rows, d.cols); err != nil {
		return RGB{}, err
	}

	return d.pixels[row*d.cols+col], nil
}

// SetPixel colors one pixel.
func (d *RGBDots) SetPixel(row, col int, c RGB) error {
	if err := checkPoint(row, col, d.rows, d.cols); err != nil {
		return err
	}
	d.pixels[row*d.cols+col] = c

	return nil
}

// Fill colors every pixel.
func (d *RGBDots) Fill(c RGB) {
	for i := range d.pixels {
		d.pixels[i] = c
	}
}

// Serialize returns the label, the dimensions as four hex digits each, and
// every row of RRGGBB pixels followed by a carriage return.
func (d *RGBDots) Serialize() []byte {
	out := make([]byte, 0, KindRGBDots.HeaderLen()+d.RequiredSize())
	out = appendHeader(out, KindRGBDots, d.label, d.rows, d.cols)
	for r := 0; r < d.rows; r++ {
		for _, c := range d.pixels[r*d.cols : (r+1)*d.cols] {
			out = c.appendTo(out)
		}
		out = append(out, rowTerminator)
	}

	return out
}
