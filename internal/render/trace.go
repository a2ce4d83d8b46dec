package render

import (
	"io"

	"github.com/gotranspile/gotrace"
)

// TraceMask vectorises the foreground of a score mask and writes it to w as
// an SVG document the same size as the mask.
func TraceMask(values []float32, width, height int, w io.Writer) error {
	// gotrace fills dark pixels, so foreground goes in as black.
	img, err := Alpha(values, width, height)
	if err != nil {
		return err
	}
	for i, a := range img.Pix {
		img.Pix[i] = 255 - a
	}
	bm := gotrace.BitmapFromGray(img, nil)
	paths, err := gotrace.Trace(bm, nil)
	if err != nil {
		return err
	}
	return gotrace.Render("svg", nil, w, paths, width, height)
}
