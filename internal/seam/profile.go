package seam

import (
	"fmt"

	"github.com/example/seamcut/internal/pixbuf"
)

// Axis selects which lines a profile is computed over.
type Axis int

const (
	// Rows profiles horizontal lines; one value per y, limit = height.
	Rows Axis = iota
	// Columns profiles vertical lines; one value per x, limit = width.
	Columns
)

func (a Axis) String() string {
	switch a {
	case Rows:
		return "rows"
	case Columns:
		return "columns"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Profile is one score per line along an axis.
type Profile []float64

const (
	varianceStride = 4
	gradientStride = 2
)

// lineGeometry returns the number of lines along axis, the number of pixels
// across each line, the byte step between lines and the byte step between
// neighbouring pixels of the same line.
func lineGeometry(width, height int, axis Axis) (limit, cross, lineStep, crossStep int) {
	if axis == Rows {
		return height, width, width * 4, 4
	}
	return width, height, 4, width * 4
}

func checkAxis(axis Axis) error {
	if axis != Rows && axis != Columns {
		return fmt.Errorf("unknown axis %v", axis)
	}
	return nil
}

// VarianceProfile reports, for each line along axis, the variance of the
// grayscale value (unweighted mean of R, G and B) sampled every fourth pixel
// across the line. Uniform lines score close to zero.
func VarianceProfile(pix []byte, width, height int, axis Axis) (Profile, error) {
	if err := pixbuf.Validate(pix, width, height); err != nil {
		return nil, err
	}
	if err := checkAxis(axis); err != nil {
		return nil, err
	}
	limit, cross, lineStep, crossStep := lineGeometry(width, height, axis)
	out := make(Profile, limit)
	for i := 0; i < limit; i++ {
		base := i * lineStep
		var sum, sumSq float64
		n := 0
		for j := 0; j < cross; j += varianceStride {
			off := base + j*crossStep
			g := (float64(pix[off]) + float64(pix[off+1]) + float64(pix[off+2])) / 3
			sum += g
			sumSq += g * g
			n++
		}
		mean := sum / float64(n)
		v := sumSq/float64(n) - mean*mean
		if v < 0 {
			v = 0
		}
		out[i] = v
	}
	return out, nil
}

// RGB is a mean colour, one value per channel.
type RGB [3]float64

// ColorProfile reports the mean colour of each line along axis, sampled at
// the same pixels as VarianceProfile.
func ColorProfile(pix []byte, width, height int, axis Axis) ([]RGB, error) {
	if err := pixbuf.Validate(pix, width, height); err != nil {
		return nil, err
	}
	if err := checkAxis(axis); err != nil {
		return nil, err
	}
	limit, cross, lineStep, crossStep := lineGeometry(width, height, axis)
	out := make([]RGB, limit)
	for i := 0; i < limit; i++ {
		base := i * lineStep
		var sum RGB
		n := 0
		for j := 0; j < cross; j += varianceStride {
			off := base + j*crossStep
			sum[0] += float64(pix[off])
			sum[1] += float64(pix[off+1])
			sum[2] += float64(pix[off+2])
			n++
		}
		for c := range sum {
			sum[c] /= float64(n)
		}
		out[i] = sum
	}
	return out, nil
}

// GradientProfile reports, for each line i > 0 along axis, the mean summed
// absolute RGB difference against line i-1, sampling every second pixel
// across the line. Index 0 has no predecessor and is left at zero.
func GradientProfile(pix []byte, width, height int, axis Axis) (Profile, error) {
	if err := pixbuf.Validate(pix, width, height); err != nil {
		return nil, err
	}
	if err := checkAxis(axis); err != nil {
		return nil, err
	}
	limit, cross, lineStep, crossStep := lineGeometry(width, height, axis)
	out := make(Profile, limit)
	for i := 1; i < limit; i++ {
		cur := i * lineStep
		prev := cur - lineStep
		var sum float64
		n := 0
		for j := 0; j < cross; j += gradientStride {
			a := cur + j*crossStep
			b := prev + j*crossStep
			sum += absDiff(pix[a], pix[b]) + absDiff(pix[a+1], pix[b+1]) + absDiff(pix[a+2], pix[b+2])
			n++
		}
		out[i] = sum / float64(n)
	}
	return out, nil
}

func absDiff(a, b byte) float64 {
	if a > b {
		return float64(a - b)
	}
	return float64(b - a)
}
