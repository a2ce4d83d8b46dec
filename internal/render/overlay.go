package render

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/seamcut/internal/seam"
)

// Style controls how split overlays are drawn.
type Style struct {
	Line            color.RGBA
	Label           color.RGBA
	LabelBackground color.RGBA
	LineWidth       int
}

// DefaultStyle returns a magenta cut line with white-on-black tile labels.
func DefaultStyle() Style {
	return Style{
		Line:            color.RGBA{255, 0, 200, 255},
		Label:           color.RGBA{255, 255, 255, 255},
		LabelBackground: color.RGBA{0, 0, 0, 200},
		LineWidth:       2,
	}
}

// Overlay returns a copy of img with every cut line drawn and each resulting
// tile labelled with its index.
func Overlay(img *image.RGBA, splits seam.Splits, style Style) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)

	lw := max(style.LineWidth, 1)
	line := image.NewUniform(style.Line)
	for _, y := range splits.Rows {
		r := image.Rect(b.Min.X, b.Min.Y+y-lw/2, b.Max.X, b.Min.Y+y-lw/2+lw).Intersect(b)
		draw.Draw(out, r, line, image.Point{}, draw.Over)
	}
	for _, x := range splits.Cols {
		r := image.Rect(b.Min.X+x-lw/2, b.Min.Y, b.Min.X+x-lw/2+lw, b.Max.Y).Intersect(b)
		draw.Draw(out, r, line, image.Point{}, draw.Over)
	}

	face := basicfont.Face7x13
	n := 0
	for _, row := range Grid(b, splits) {
		for _, cell := range row {
			drawLabel(out, cell, strconv.Itoa(n), face, style)
			n++
		}
	}
	return out
}

func drawLabel(dst *image.RGBA, cell image.Rectangle, text string, face *basicfont.Face, style Style) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(style.Label), Face: face}
	width := d.MeasureString(text).Ceil()
	box := image.Rect(cell.Min.X+4, cell.Min.Y+4, cell.Min.X+4+width+6, cell.Min.Y+4+face.Height+4).Intersect(cell)
	if box.Empty() {
		return
	}
	draw.Draw(dst, box, image.NewUniform(style.LabelBackground), image.Point{}, draw.Over)
	d.Dot = fixed.P(box.Min.X+3, box.Min.Y+2+face.Ascent)
	d.DrawString(text)
}
