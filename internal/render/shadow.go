package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures the drop shadow placed under a cut-out.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// ShadowResult captures the output of ApplyShadow.
type ShadowResult struct {
	// Image is the expanded canvas holding the cut-out and its shadow.
	Image *image.RGBA
	// Offset is where the cut-out's top-left corner landed on that canvas.
	Offset image.Point
}

// DefaultShadowOptions returns a soft shadow suited to erased or masked
// cut-outs.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  16,
		Offset:  image.Pt(8, 8),
		Opacity: 0.5,
	}
}

// ApplyShadow composites img over a blurred copy of its own alpha channel so
// erased backgrounds read as a sticker. The result has a zero origin.
func ApplyShadow(img *image.RGBA, opts ShadowOptions) ShadowResult {
	if img == nil {
		return ShadowResult{}
	}
	if img.Bounds().Empty() || opts.Opacity <= 0 {
		return ShadowResult{Image: img}
	}
	opacity := min(opts.Opacity, 1)
	radius := max(opts.Radius, 0)

	src := img.Bounds()
	padded := src.Inset(-radius)
	shadow := padded.Add(opts.Offset)
	canvas := src.Union(shadow)

	alpha := image.NewGray(image.Rect(0, 0, padded.Dx(), padded.Dy()))
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			if a := img.RGBAAt(x, y).A; a != 0 {
				alpha.SetGray(x-padded.Min.X, y-padded.Min.Y, color.Gray{Y: a})
			}
		}
	}
	blurred := boxBlur(alpha, radius)

	dst := image.NewRGBA(canvas.Sub(canvas.Min))
	tint := image.NewUniform(color.RGBA{A: uint8(opacity*255 + 0.5)})
	draw.DrawMask(dst, blurred.Bounds().Add(shadow.Min.Sub(canvas.Min)), tint, image.Point{}, blurred, image.Point{}, draw.Over)
	draw.Draw(dst, src.Sub(canvas.Min), img, src.Min, draw.Over)
	return ShadowResult{Image: dst, Offset: src.Min.Sub(canvas.Min)}
}

// boxBlur runs a separable box filter of the given radius over src using
// running prefix sums, clamping the window at the image edges.
func boxBlur(src *image.Gray, radius int) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(b)
	if radius <= 0 {
		copy(out.Pix, src.Pix)
		return out
	}
	w, h := b.Dx(), b.Dy()
	tmp := image.NewGray(b)
	blur1D(w, h, radius, func(y, x int) int { return int(src.Pix[y*src.Stride+x]) }, func(y, x int, v uint8) { tmp.Pix[y*tmp.Stride+x] = v })
	blur1D(h, w, radius, func(x, y int) int { return int(tmp.Pix[y*tmp.Stride+x]) }, func(x, y int, v uint8) { out.Pix[y*out.Stride+x] = v })
	return out
}

// blur1D averages every line of length n, for each of lines lines, over a
// window of +-radius.
func blur1D(n, lines, radius int, get func(line, i int) int, set func(line, i int, v uint8)) {
	prefix := make([]int, n+1)
	for line := 0; line < lines; line++ {
		for i := 0; i < n; i++ {
			prefix[i+1] = prefix[i] + get(line, i)
		}
		for i := 0; i < n; i++ {
			lo := max(0, i-radius)
			hi := min(n-1, i+radius)
			set(line, i, uint8((prefix[hi+1]-prefix[lo])/(hi-lo+1)))
		}
	}
}
