package config

import (
	"fmt"
	"image/color"
	"strings"
)

// Notify holds notification settings.
type Notify struct {
	Split bool
	Save  bool
	Copy  bool
}

// Seam overrides the split detector's tuning. Zero values mean "use the
// built-in default".
type Seam struct {
	GapThreshold   float64
	MinGapWidth    int
	ColorTolerance float64
	MaxGapFraction float64
	BreakGradient  float64
	K              float64
	PeakRadius     int
	Smooth         int
	Margin         float64
	Tolerance      int
}

// Fill configures the eraser.
type Fill struct {
	Tolerance int
	ClearRGB  bool
}

// Mask configures cut-outs.
type Mask struct {
	Feather int
}

// Style sets the overlay colours. A zero colour keeps the default.
type Style struct {
	Line            color.RGBA
	Label           color.RGBA
	LabelBackground color.RGBA
}

// Config holds the application configuration.
type Config struct {
	OutDir   string
	Strategy string
	Seam     Seam
	Fill     Fill
	Mask     Mask
	Notify   Notify
	Style    Style
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Fill: Fill{Tolerance: 20},
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.OutDir != "" {
		fmt.Fprintf(&sb, "out_dir = %s\n", c.OutDir)
	}
	if c.Strategy != "" {
		fmt.Fprintf(&sb, "strategy = %s\n", c.Strategy)
	}
	sb.WriteString("\n")

	var seam strings.Builder
	writeNonZero(&seam, "gap_threshold", c.Seam.GapThreshold)
	writeNonZero(&seam, "min_gap_width", c.Seam.MinGapWidth)
	writeNonZero(&seam, "color_tolerance", c.Seam.ColorTolerance)
	writeNonZero(&seam, "max_gap_fraction", c.Seam.MaxGapFraction)
	writeNonZero(&seam, "break_gradient", c.Seam.BreakGradient)
	writeNonZero(&seam, "k", c.Seam.K)
	writeNonZero(&seam, "peak_radius", c.Seam.PeakRadius)
	writeNonZero(&seam, "smooth", c.Seam.Smooth)
	writeNonZero(&seam, "margin", c.Seam.Margin)
	writeNonZero(&seam, "tolerance", c.Seam.Tolerance)
	if seam.Len() > 0 {
		sb.WriteString("[seam]\n")
		sb.WriteString(seam.String())
		sb.WriteString("\n")
	}

	sb.WriteString("[fill]\n")
	fmt.Fprintf(&sb, "tolerance = %d\n", c.Fill.Tolerance)
	fmt.Fprintf(&sb, "clear_rgb = %v\n", c.Fill.ClearRGB)
	sb.WriteString("\n")

	sb.WriteString("[mask]\n")
	fmt.Fprintf(&sb, "feather = %d\n", c.Mask.Feather)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "split = %v\n", c.Notify.Split)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	var style strings.Builder
	for _, f := range []struct {
		key string
		c   color.RGBA
	}{
		{"line", c.Style.Line},
		{"label", c.Style.Label},
		{"label_background", c.Style.LabelBackground},
	} {
		if f.c != (color.RGBA{}) {
			fmt.Fprintf(&style, "%s = %s\n", f.key, toHex(f.c))
		}
	}
	if style.Len() > 0 {
		sb.WriteString("[style]\n")
		sb.WriteString(style.String())
	}

	return sb.String()
}

func writeNonZero[T int | float64](sb *strings.Builder, key string, v T) {
	if v != 0 {
		fmt.Fprintf(sb, "%s = %v\n", key, v)
	}
}

func toHex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
