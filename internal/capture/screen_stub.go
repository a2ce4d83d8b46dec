//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import "image"

func screenshot(CaptureOptions) (*image.RGBA, error) {
	return nil, ErrUnsupported
}
