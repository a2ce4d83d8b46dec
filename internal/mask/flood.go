// Package mask refines selections: a flood-fill eraser over RGBA pixels and
// a largest-component filter over per-pixel foreground scores.
package mask

import (
	"fmt"

	"github.com/example/seamcut/internal/pixbuf"
)

// FloodFill erases (sets alpha to 0) the 4-connected region around (x, y)
// whose RGB channels each lie within tolerance of the seed pixel. RGB values
// are left in place. It returns the number of pixels erased; a seed that is
// already transparent erases nothing.
func FloodFill(pix []byte, width, height, x, y, tolerance int) (int, error) {
	if err := pixbuf.Validate(pix, width, height); err != nil {
		return 0, err
	}
	if x < 0 || y < 0 || x >= width || y >= height {
		return 0, fmt.Errorf("%w: seed (%d,%d) outside %dx%d", pixbuf.ErrInvalidDimensions, x, y, width, height)
	}
	tolerance = max(0, min(255, tolerance))

	seed := y*width + x
	so := seed * 4
	if pix[so+3] == 0 {
		return 0, nil
	}
	sr, sg, sb := int(pix[so]), int(pix[so+1]), int(pix[so+2])

	// A pixel is only tested before it is visited, and only visited pixels
	// are modified, so every test reads original values.
	matches := func(i int) bool {
		o := i * 4
		if pix[o+3] == 0 {
			return false
		}
		return within(int(pix[o]), sr, tolerance) &&
			within(int(pix[o+1]), sg, tolerance) &&
			within(int(pix[o+2]), sb, tolerance)
	}

	visited := make([]bool, width*height)
	stack := []int{seed}
	visited[seed] = true
	erased := 0
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		pix[i*4+3] = 0
		erased++

		px, py := i%width, i/width
		push := func(n int) {
			if !visited[n] && matches(n) {
				visited[n] = true
				stack = append(stack, n)
			}
		}
		if px > 0 {
			push(i - 1)
		}
		if px < width-1 {
			push(i + 1)
		}
		if py > 0 {
			push(i - width)
		}
		if py < height-1 {
			push(i + width)
		}
	}
	return erased, nil
}

func within(v, ref, tolerance int) bool {
	d := v - ref
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
