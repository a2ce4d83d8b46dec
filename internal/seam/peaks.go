package seam

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Smooth returns a centred moving average of p with the given radius. Lines
// closer than window to either end are copied through unsmoothed.
func Smooth(p Profile, window int) Profile {
	out := make(Profile, len(p))
	copy(out, p)
	if window <= 0 || len(p) < 2*window+1 {
		return out
	}
	span := float64(2*window + 1)
	var sum float64
	for i := 0; i <= 2*window; i++ {
		sum += p[i]
	}
	for i := window; i < len(p)-window; i++ {
		out[i] = sum / span
		if next := i + window + 1; next < len(p) {
			sum += p[next] - p[i-window]
		}
	}
	return out
}

// PeakOptions tunes SelectPeaks.
type PeakOptions struct {
	// K scales the standard deviation added to the mean to form the
	// significance threshold.
	K float64
	// Radius is the half-width of the local-maximum window.
	Radius int
	// MinDistance is the smallest spacing allowed between accepted peaks.
	MinDistance int
	// Raw, when set, is the unsmoothed profile. Candidates with equal scores
	// are ordered by their raw value so the flat top a box filter leaves
	// around a single sharp edge resolves to the edge itself.
	Raw Profile
}

// MinDistance scales peak spacing with the axis length.
func MinDistance(limit int) int {
	return max(30, limit/10)
}

// Threshold returns mean + k*stddev over the strictly positive values of p.
// ok is false when p has no positive values.
func Threshold(p Profile, k float64) (threshold float64, ok bool) {
	positive := make([]float64, 0, len(p))
	for _, v := range p {
		if v > 0 {
			positive = append(positive, v)
		}
	}
	if len(positive) == 0 {
		return 0, false
	}
	mean, std := stat.MeanStdDev(positive, nil)
	if len(positive) == 1 || math.IsNaN(std) {
		std = 0
	}
	return mean + k*std, true
}

// SelectPeaks returns the positions of significant local maxima of p,
// strongest first under non-maximum suppression, sorted by position. Index 0
// never qualifies.
func SelectPeaks(p Profile, opts PeakOptions) []int {
	if len(p) < 2 {
		return nil
	}
	threshold, ok := Threshold(p[1:], opts.K)
	if !ok {
		return nil
	}
	// Absorb rounding in the mean so a flat set of equal peaks still meets
	// its own threshold.
	threshold -= 1e-9 * math.Max(1, math.Abs(threshold))
	var candidates []int
	for i := 1; i < len(p); i++ {
		if p[i] <= 0 || p[i] < threshold {
			continue
		}
		if isLocalMax(p, i, opts.Radius) {
			candidates = append(candidates, i)
		}
	}
	return suppress(p, opts.Raw, candidates, opts.MinDistance)
}

func isLocalMax(p Profile, i, radius int) bool {
	lo := max(0, i-radius)
	hi := min(len(p)-1, i+radius)
	for j := lo; j <= hi; j++ {
		if p[j] > p[i] {
			return false
		}
	}
	return true
}

// suppress keeps the strongest candidate of every cluster closer than
// minDistance. candidates must be in ascending position order.
func suppress(p, raw Profile, candidates []int, minDistance int) []int {
	if len(candidates) == 0 {
		return nil
	}
	order := make([]int, len(candidates))
	copy(order, candidates)
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if p[ia] != p[ib] {
			return p[ia] > p[ib]
		}
		if len(raw) == len(p) {
			return raw[ia] > raw[ib]
		}
		return false
	})

	dropped := make(map[int]bool, len(order))
	var accepted []int
	for _, idx := range order {
		if dropped[idx] {
			continue
		}
		accepted = append(accepted, idx)
		for _, other := range candidates {
			if other != idx && abs(other-idx) < minDistance {
				dropped[other] = true
			}
		}
	}
	sort.Ints(accepted)
	return accepted
}

// GapOptions tunes GapRegions.
type GapOptions struct {
	// Threshold is the variance below which a line counts as uniform.
	Threshold float64
	// MinWidth is the shortest run reported as a gap.
	MinWidth int
	// ColorTolerance is the per-channel distance within which two runs are
	// taken to share a colour.
	ColorTolerance float64
	// MaxFraction rejects runs longer than this share of the axis. It only
	// applies when the runs' colours cannot tell gutters from solid panels.
	MaxFraction float64
	// BreakGradient splits a uniform run where the gradient between adjacent
	// lines exceeds it, so two touching flat bands of different colour are
	// not mistaken for one gap.
	BreakGradient float64
}

// run is a stretch of uniform lines [start, end) and its mean colour.
type run struct {
	start, end int
	color      RGB
}

// GapRegions returns the midpoints of interior runs of uniform lines that act
// as gutters. A run touching either end of the axis is the image border and
// is ignored. gradient may be nil, in which case runs are never broken on
// colour change.
//
// On a composite of solid panels every panel is a uniform run too. When
// colors holds one mean colour per line, the gutters are the runs sharing
// the colour most interior runs have; a lone interior run is always a
// gutter. Without a shared colour, runs longer than MaxFraction of the axis
// are dropped as panels.
func GapRegions(variance, gradient Profile, colors []RGB, opts GapOptions) []int {
	limit := len(variance)
	colored := len(colors) == limit
	var runs []run
	add := func(start, end int) {
		if start == 0 || end == limit || end-start < opts.MinWidth {
			return
		}
		r := run{start: start, end: end}
		if colored {
			r.color = meanColor(colors[start:end])
		}
		runs = append(runs, r)
	}
	start := -1
	for i := 0; i < limit; i++ {
		uniform := variance[i] < opts.Threshold
		breaks := gradient != nil && i < len(gradient) && gradient[i] > opts.BreakGradient
		if start >= 0 && (!uniform || breaks) {
			add(start, i)
			start = -1
		}
		if uniform && start < 0 {
			start = i
		}
	}
	if start >= 0 {
		add(start, limit)
	}

	var mids []int
	for _, r := range gutters(runs, limit, colored, opts) {
		mids = append(mids, r.start+(r.end-r.start)/2)
	}
	return mids
}

func gutters(runs []run, limit int, colored bool, opts GapOptions) []run {
	if len(runs) <= 1 {
		return runs
	}
	if colored {
		if group := dominantColor(runs, opts.ColorTolerance); len(group) > 1 {
			return group
		}
	}
	if opts.MaxFraction <= 0 {
		return runs
	}
	maxWidth := max(opts.MinWidth, int(float64(limit)*opts.MaxFraction))
	var out []run
	for _, r := range runs {
		if r.end-r.start <= maxWidth {
			out = append(out, r)
		}
	}
	return out
}

// dominantColor groups runs by colour and returns the largest group in
// position order. Ties go to the group whose first run comes first.
func dominantColor(runs []run, tolerance float64) []run {
	var groups [][]run
	for _, r := range runs {
		placed := false
		for i, g := range groups {
			if sameColor(g[0].color, r.color, tolerance) {
				groups[i] = append(g, r)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []run{r})
		}
	}
	best := groups[0]
	for _, g := range groups[1:] {
		if len(g) > len(best) {
			best = g
		}
	}
	return best
}

func sameColor(a, b RGB, tolerance float64) bool {
	for c := range a {
		if math.Abs(a[c]-b[c]) > tolerance {
			return false
		}
	}
	return true
}

func meanColor(lines []RGB) RGB {
	var sum RGB
	for _, l := range lines {
		for c := range sum {
			sum[c] += l[c]
		}
	}
	for c := range sum {
		sum[c] /= float64(len(lines))
	}
	return sum
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
