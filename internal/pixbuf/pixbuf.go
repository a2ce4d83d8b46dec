// Package pixbuf holds the flat RGBA pixel plane shared by the analysis
// packages and the checks every entry point runs before touching it.
package pixbuf

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// ErrInvalidDimensions reports a width, height or buffer length that does not
// describe a valid pixel plane or mask.
var ErrInvalidDimensions = errors.New("invalid dimensions")

// Buffer is a row-major RGBA pixel plane with a stride of Width*4.
type Buffer struct {
	Pix    []byte
	Width  int
	Height int
}

// New allocates a zeroed (fully transparent) buffer.
func New(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Buffer{Pix: make([]byte, width*height*4), Width: width, Height: height}, nil
}

// Validate checks that pix holds exactly width*height RGBA pixels.
func Validate(pix []byte, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if want := width * height * 4; len(pix) != want {
		return fmt.Errorf("%w: buffer holds %d bytes, %dx%d needs %d", ErrInvalidDimensions, len(pix), width, height, want)
	}
	return nil
}

// ValidateMask checks that values holds exactly width*height scores.
func ValidateMask(values []float32, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if want := width * height; len(values) != want {
		return fmt.Errorf("%w: mask holds %d values, %dx%d needs %d", ErrInvalidDimensions, len(values), width, height, want)
	}
	return nil
}

// Validate checks the buffer's own invariants.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidDimensions)
	}
	return Validate(b.Pix, b.Width, b.Height)
}

// FromImage copies img into a new buffer whose origin is (0,0). Returns nil
// for a nil or empty image.
func FromImage(img image.Image) *Buffer {
	if img == nil {
		return nil
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil
	}
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return &Buffer{Pix: rgba.Pix, Width: bounds.Dx(), Height: bounds.Dy()}
}

// RGBA wraps the buffer as an *image.RGBA sharing the same memory.
func (b *Buffer) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// ClearTransparent zeroes the RGB channels of every pixel whose alpha is 0 so
// stale colour left behind by an eraser is not mistaken for content.
func ClearTransparent(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		if pix[i+3] == 0 {
			pix[i] = 0
			pix[i+1] = 0
			pix[i+2] = 0
		}
	}
}
