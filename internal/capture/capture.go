// Package capture grabs the desktop so a tiled screen can be split into its
// panes.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// ErrUnsupported reports a platform without any screenshot backend.
var ErrUnsupported = errors.New("screen capture is not supported on this platform")

// CaptureOptions configures Screen.
type CaptureOptions struct {
	// Interactive lets the portal show its own picker.
	Interactive   bool
	IncludeCursor bool
	// Region, when non-empty, crops the result to these global coordinates.
	Region image.Rectangle
}

type screenshotFunc func(CaptureOptions) (*image.RGBA, error)

var screenshotProvider screenshotFunc

// SetScreenshotProviderForTests replaces the platform backends and returns a
// function that restores them.
func SetScreenshotProviderForTests(fn func(CaptureOptions) (*image.RGBA, error)) func() {
	prev := screenshotProvider
	screenshotProvider = fn
	return func() { screenshotProvider = prev }
}

// Screen captures the desktop, trying the xdg-desktop-portal first and a
// direct X11 root window grab second.
func Screen(opts CaptureOptions) (*image.RGBA, error) {
	grab := screenshot
	if screenshotProvider != nil {
		grab = screenshotProvider
	}
	img, err := grab(opts)
	if err != nil {
		return nil, err
	}
	if opts.Region.Empty() {
		return img, nil
	}
	return cropToRect(img, opts.Region)
}

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}
