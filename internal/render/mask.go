package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/example/seamcut/internal/mask"
	"github.com/example/seamcut/internal/pixbuf"
)

// MaskOptions configures ApplyMask.
type MaskOptions struct {
	// Feather softens the cut edge with a box blur of this radius.
	Feather int
}

// Alpha converts a score mask to an 8-bit coverage image: foreground
// (score > 0) is 255, everything else 0.
func Alpha(values []float32, width, height int) (*image.Gray, error) {
	if err := pixbuf.ValidateMask(values, width, height); err != nil {
		return nil, err
	}
	out := image.NewGray(image.Rect(0, 0, width, height))
	for i, v := range values {
		if v > 0 {
			out.Pix[i] = 255
		}
	}
	return out, nil
}

// ApplyMask cuts img out along a score mask of the same size. The mask's
// coverage multiplies into the existing alpha and fully transparent pixels
// have their colour cleared. img is not modified.
func ApplyMask(img *image.RGBA, values []float32, opts MaskOptions) (*image.RGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", pixbuf.ErrInvalidDimensions)
	}
	b := img.Bounds()
	alpha, err := Alpha(values, b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	if opts.Feather > 0 {
		alpha = boxBlur(alpha, opts.Feather)
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	for i, a := range alpha.Pix {
		o := i * 4
		if a == 255 {
			continue
		}
		// Pix is premultiplied, so every channel scales together.
		for c := 0; c < 4; c++ {
			out.Pix[o+c] = uint8((int(out.Pix[o+c])*int(a) + 127) / 255)
		}
	}
	pixbuf.ClearTransparent(out.Pix)
	return out, nil
}

// MaskImage renders a score mask as grayscale: background is black and
// foreground scores map to 1..255, saturating at a score of 1.
func MaskImage(values []float32, width, height int) (*image.Gray, error) {
	if err := pixbuf.ValidateMask(values, width, height); err != nil {
		return nil, err
	}
	out := image.NewGray(image.Rect(0, 0, width, height))
	for i, v := range values {
		if v > 0 {
			out.Pix[i] = uint8(max(1, min(255, math.Round(float64(v)*255))))
		}
	}
	return out, nil
}

// MaskFromImage reads a grayscale mask: a level g > 0 scores g/255 and black
// is mask.Background.
func MaskFromImage(img image.Image) ([]float32, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	values := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			if g.Y > 0 {
				values[y*w+x] = float32(g.Y) / 255
			} else {
				values[y*w+x] = mask.Background
			}
		}
	}
	return values, w, h
}
