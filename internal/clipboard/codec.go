// Package clipboard moves images between seamcut and the desktop clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"image"
	"image/png"

	"github.com/example/seamcut/internal/imageio"
)

// ErrEmpty reports a clipboard that holds no image.
var ErrEmpty = errors.New("clipboard does not contain image data")

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	img, _, err := imageio.Decode(bytes.NewReader(data))
	return img, err
}
