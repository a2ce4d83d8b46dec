// Package seam finds the lines along which a composite image (stitched
// screenshots, panoramas, grids) splits into sub-images.
package seam

import (
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/example/seamcut/internal/pixbuf"
)

// Strategy selects which detection channels run.
type Strategy int

const (
	// GapAndEdge merges uniform-gap midpoints with gradient edges.
	GapAndEdge Strategy = iota
	// EdgeOnly uses the gradient channel alone.
	EdgeOnly
)

func (s Strategy) String() string {
	switch s {
	case GapAndEdge:
		return "gap"
	case EdgeOnly:
		return "edge"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy accepts the names printed by Strategy.String plus a few
// aliases.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gap", "gap+edge", "gapandedge", "combined":
		return GapAndEdge, nil
	case "edge", "edgeonly", "gradient":
		return EdgeOnly, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q", name)
	}
}

// Options configures Detect. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	Strategy Strategy
	Gap      GapOptions
	// K, PeakRadius and Smooth tune the edge channel.
	K          float64
	PeakRadius int
	Smooth     int
	// Margin is the share of the axis at each end in which candidates are
	// discarded.
	Margin float64
	// Tolerance is the distance within which an edge duplicates a gap.
	Tolerance int
}

// DefaultOptions returns the tuning used by the editor.
func DefaultOptions() Options {
	return Options{
		Strategy: GapAndEdge,
		Gap: GapOptions{
			Threshold:      30,
			MinWidth:       5,
			ColorTolerance: 12,
			MaxFraction:    0.15,
			BreakGradient:  24,
		},
		K:          3,
		PeakRadius: 8,
		Smooth:     5,
		Margin:     0.02,
		Tolerance:  20,
	}
}

// Validate reports options that would make detection meaningless.
func (o Options) Validate() error {
	if o.K < 2.5 || o.K > 3.5 {
		return fmt.Errorf("k must be between 2.5 and 3.5, got %v", o.K)
	}
	if o.PeakRadius <= 0 {
		return fmt.Errorf("peak radius must be positive, got %d", o.PeakRadius)
	}
	if o.Smooth < 0 {
		return fmt.Errorf("smoothing window cannot be negative, got %d", o.Smooth)
	}
	if o.Margin < 0 || o.Margin >= 0.5 {
		return fmt.Errorf("margin must be in [0, 0.5), got %v", o.Margin)
	}
	if o.Gap.MinWidth <= 0 {
		return fmt.Errorf("minimum gap width must be positive, got %d", o.Gap.MinWidth)
	}
	switch o.Strategy {
	case GapAndEdge, EdgeOnly:
	default:
		return fmt.Errorf("unknown strategy %v", o.Strategy)
	}
	return nil
}

// Splits holds the cut coordinates found on each axis. Rows are y positions
// of horizontal cuts, Cols are x positions of vertical cuts; both strictly
// increasing.
type Splits struct {
	Rows []int `json:"rows"`
	Cols []int `json:"cols"`
}

// Empty reports whether no cut was found on either axis.
func (s Splits) Empty() bool {
	return len(s.Rows) == 0 && len(s.Cols) == 0
}

// Detect finds where a composite image should be cut into sub-images.
func Detect(pix []byte, width, height int, opts Options) (Splits, error) {
	if err := pixbuf.Validate(pix, width, height); err != nil {
		return Splits{}, err
	}
	if err := opts.Validate(); err != nil {
		return Splits{}, err
	}
	rows, err := detectAxis(pix, width, height, Rows, opts)
	if err != nil {
		return Splits{}, err
	}
	cols, err := detectAxis(pix, width, height, Columns, opts)
	if err != nil {
		return Splits{}, err
	}
	return Splits{Rows: rows, Cols: cols}, nil
}

// DetectImage runs Detect over a decoded image.
func DetectImage(img image.Image, opts Options) (Splits, error) {
	buf := pixbuf.FromImage(img)
	if buf == nil {
		return Splits{}, fmt.Errorf("%w: empty image", pixbuf.ErrInvalidDimensions)
	}
	return Detect(buf.Pix, buf.Width, buf.Height, opts)
}

// AxisCandidates records both channels for one axis before merging.
type AxisCandidates struct {
	Gaps  []int
	Edges []int
}

// Candidates exposes the per-channel candidates Detect merges, after margin
// filtering. Useful when tuning options against a specific composite.
func Candidates(pix []byte, width, height int, axis Axis, opts Options) (AxisCandidates, error) {
	if err := pixbuf.Validate(pix, width, height); err != nil {
		return AxisCandidates{}, err
	}
	if err := opts.Validate(); err != nil {
		return AxisCandidates{}, err
	}
	return axisCandidates(pix, width, height, axis, opts)
}

func axisCandidates(pix []byte, width, height int, axis Axis, opts Options) (AxisCandidates, error) {
	limit := height
	if axis == Columns {
		limit = width
	}
	gradient, err := GradientProfile(pix, width, height, axis)
	if err != nil {
		return AxisCandidates{}, err
	}
	var res AxisCandidates
	if opts.Strategy == GapAndEdge {
		variance, err := VarianceProfile(pix, width, height, axis)
		if err != nil {
			return AxisCandidates{}, err
		}
		colors, err := ColorProfile(pix, width, height, axis)
		if err != nil {
			return AxisCandidates{}, err
		}
		res.Gaps = withinMargin(GapRegions(variance, gradient, colors, opts.Gap), limit, opts.Margin)
	}
	edges := SelectPeaks(Smooth(gradient, opts.Smooth), PeakOptions{
		K:           opts.K,
		Radius:      opts.PeakRadius,
		MinDistance: MinDistance(limit),
		Raw:         gradient,
	})
	res.Edges = withinMargin(edges, limit, opts.Margin)
	return res, nil
}

func detectAxis(pix []byte, width, height int, axis Axis, opts Options) ([]int, error) {
	c, err := axisCandidates(pix, width, height, axis, opts)
	if err != nil {
		return nil, err
	}
	return merge(c.Gaps, c.Edges, opts.Tolerance), nil
}

// withinMargin drops positions inside the border band at either end.
func withinMargin(positions []int, limit int, margin float64) []int {
	edge := float64(limit) * margin
	var out []int
	for _, p := range positions {
		if float64(p) <= edge || float64(p) >= float64(limit)-edge {
			continue
		}
		out = append(out, p)
	}
	return out
}

// merge accepts every gap, then each edge that is not within tolerance of an
// accepted gap. The result is sorted and free of duplicates.
func merge(gaps, edges []int, tolerance int) []int {
	out := make([]int, 0, len(gaps)+len(edges))
	out = append(out, gaps...)
	for _, e := range edges {
		near := false
		for _, g := range gaps {
			if abs(e-g) <= tolerance {
				near = true
				break
			}
		}
		if !near {
			out = append(out, e)
		}
	}
	sort.Ints(out)
	uniq := out[:0]
	for i, v := range out {
		if i > 0 && v == uniq[len(uniq)-1] {
			continue
		}
		uniq = append(uniq, v)
	}
	if len(uniq) == 0 {
		return nil
	}
	return uniq
}
