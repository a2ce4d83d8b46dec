package mask

import (
	"image"

	"github.com/example/seamcut/internal/pixbuf"
)

// Background is written to every pixel outside the kept component. Scores
// above zero are foreground; a fixed negative value keeps "background"
// distinct from a genuine zero score in the segmentation output.
const Background float32 = -10

// Component describes one 4-connected foreground region.
type Component struct {
	// ID is 1-based in raster discovery order.
	ID     int
	Pixels int
	Bounds image.Rectangle
}

// label assigns a component id to every foreground pixel (score > 0) with a
// breadth-first flood from each unlabelled seed in raster order. Background
// pixels keep label 0.
func label(values []float32, width, height int) ([]int32, []Component) {
	labels := make([]int32, width*height)
	var comps []Component
	queue := make([]int, 0, 64)
	for start := range values {
		if !(values[start] > 0) || labels[start] != 0 {
			continue
		}
		id := int32(len(comps) + 1)
		sx, sy := start%width, start/width
		c := Component{ID: int(id), Bounds: image.Rect(sx, sy, sx+1, sy+1)}
		labels[start] = id
		queue = append(queue[:0], start)
		for head := 0; head < len(queue); head++ {
			i := queue[head]
			x, y := i%width, i/width
			c.Pixels++
			c.Bounds = c.Bounds.Union(image.Rect(x, y, x+1, y+1))
			visit := func(n int) {
				if labels[n] == 0 && values[n] > 0 {
					labels[n] = id
					queue = append(queue, n)
				}
			}
			if x > 0 {
				visit(i - 1)
			}
			if x < width-1 {
				visit(i + 1)
			}
			if y > 0 {
				visit(i - width)
			}
			if y < height-1 {
				visit(i + width)
			}
		}
		comps = append(comps, c)
	}
	return labels, comps
}

// Components lists the 4-connected foreground regions of a mask in discovery
// order.
func Components(values []float32, width, height int) ([]Component, error) {
	if err := pixbuf.ValidateMask(values, width, height); err != nil {
		return nil, err
	}
	_, comps := label(values, width, height)
	return comps, nil
}

// LargestComponent returns a new mask in which only the largest 4-connected
// foreground region keeps its scores; every other pixel is Background. When
// sizes tie, the region discovered first in raster order wins. The input is
// not modified.
func LargestComponent(values []float32, width, height int) ([]float32, error) {
	if err := pixbuf.ValidateMask(values, width, height); err != nil {
		return nil, err
	}
	labels, comps := label(values, width, height)
	var best int32
	bestSize := 0
	for _, c := range comps {
		if c.Pixels > bestSize {
			best = int32(c.ID)
			bestSize = c.Pixels
		}
	}
	out := make([]float32, len(values))
	for i := range out {
		if best != 0 && labels[i] == best {
			out[i] = values[i]
		} else {
			out[i] = Background
		}
	}
	return out, nil
}
