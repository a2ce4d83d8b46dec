// Package render turns analysis results back into pixels: cut tiles, split
// overlays, masked cut-outs and traced mask outlines.
package render

import (
	"image"
	"image/draw"

	"github.com/example/seamcut/internal/seam"
)

// Tile is one sub-image cut from a composite.
type Tile struct {
	// Index is the row-major position of the tile in the grid.
	Index int
	Row   int
	Col   int
	// Rect is the tile's area in the composite's coordinates.
	Rect  image.Rectangle
	Image *image.RGBA
}

// Grid returns the cell rectangles the splits divide bounds into, row-major.
// Split positions are relative to bounds.Min; out-of-range or unsorted
// positions are skipped.
func Grid(bounds image.Rectangle, splits seam.Splits) [][]image.Rectangle {
	ys := cuts(bounds.Min.Y, bounds.Dy(), splits.Rows)
	xs := cuts(bounds.Min.X, bounds.Dx(), splits.Cols)
	grid := make([][]image.Rectangle, 0, len(ys)-1)
	for r := 0; r+1 < len(ys); r++ {
		row := make([]image.Rectangle, 0, len(xs)-1)
		for c := 0; c+1 < len(xs); c++ {
			row = append(row, image.Rect(xs[c], ys[r], xs[c+1], ys[r+1]))
		}
		grid = append(grid, row)
	}
	return grid
}

func cuts(origin, length int, splits []int) []int {
	out := []int{origin}
	last := 0
	for _, s := range splits {
		if s <= last || s >= length {
			continue
		}
		out = append(out, origin+s)
		last = s
	}
	return append(out, origin+length)
}

// Tiles slices img along the splits. Each tile owns a copy of its pixels with
// a zero origin.
func Tiles(img *image.RGBA, splits seam.Splits) []Tile {
	if img == nil || img.Bounds().Empty() {
		return nil
	}
	var tiles []Tile
	for r, row := range Grid(img.Bounds(), splits) {
		for c, rect := range row {
			dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
			draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
			tiles = append(tiles, Tile{Index: len(tiles), Row: r, Col: c, Rect: rect, Image: dst})
		}
	}
	return tiles
}
