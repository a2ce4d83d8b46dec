//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"fmt"
	"image"
	"os"
	"strings"
)

func screenshot(opts CaptureOptions) (*image.RGBA, error) {
	img, portalErr := portalScreenshot(opts)
	if portalErr == nil {
		return img, nil
	}
	if runningOnWayland() {
		return nil, portalErr
	}
	img, err := rootScreenshot()
	if err != nil {
		return nil, fmt.Errorf("%v; x11 fallback: %w", portalErr, err)
	}
	return img, nil
}

// runningOnWayland reports sessions where an X11 root grab would only see
// XWayland clients.
func runningOnWayland() bool {
	if strings.EqualFold(os.Getenv("XDG_SESSION_TYPE"), "wayland") {
		return true
	}
	return os.Getenv("WAYLAND_DISPLAY") != ""
}
