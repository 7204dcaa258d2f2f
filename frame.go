package famicore

import "image/color"

const (
	FrameWidth  = 256
	FrameHeight = 240
)

// Frame is one completed picture, stored as master palette indices. The
// presentation layer resolves indices to colors; the core never draws.
type Frame struct {
	Pixels [FrameHeight][FrameWidth]uint8
}

// At returns the palette index of the pixel at (x, y).
func (f *Frame) At(x, y int) uint8 {
	return f.Pixels[y][x]
}

// ColorAt resolves the pixel at (x, y) through the master palette.
func (f *Frame) ColorAt(x, y int) color.RGBA {
	return Palette[f.Pixels[y][x]&0x3F]
}
