package main

import (
	"flag"
	"image"

	"github.com/example/seamcut/internal/render"
)

// shadowFlags registers the drop shadow options shared by erase and mask.
type shadowFlags struct {
	enabled bool
	radius  int
	offset  string
	opacity float64
}

func (s *shadowFlags) register(fs *flag.FlagSet) {
	defaults := render.DefaultShadowOptions()
	fs.BoolVar(&s.enabled, "shadow", false, "place a drop shadow under the result")
	fs.IntVar(&s.radius, "shadow-radius", defaults.Radius, "drop shadow blur radius in pixels")
	fs.StringVar(&s.offset, "shadow-offset", formatPoint(defaults.Offset), "drop shadow offset as dx,dy")
	fs.Float64Var(&s.opacity, "shadow-opacity", defaults.Opacity, "drop shadow opacity between 0 and 1")
}

func (s *shadowFlags) options() (render.ShadowOptions, error) {
	pt, err := parsePoint(s.offset)
	if err != nil {
		return render.ShadowOptions{}, err
	}
	return render.ShadowOptions{Radius: s.radius, Offset: pt, Opacity: s.opacity}, nil
}

// apply returns img with a shadow when enabled.
func (s *shadowFlags) apply(img *image.RGBA) (*image.RGBA, error) {
	if !s.enabled {
		return img, nil
	}
	opts, err := s.options()
	if err != nil {
		return nil, err
	}
	return render.ApplyShadow(img, opts).Image, nil
}
