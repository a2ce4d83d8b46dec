// Package imageio reads and writes the images and score masks the commands
// operate on.
package imageio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/example/seamcut/internal/pixbuf"
	"github.com/example/seamcut/internal/render"
)

// RawMaskExt marks a headerless little-endian float32 score mask.
const RawMaskExt = ".f32"

var ErrNeedSize = errors.New("raw mask needs an explicit size")

// Decode reads any registered image format and normalises it to RGBA with a
// zero origin.
func Decode(r io.Reader) (*image.RGBA, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	buf := pixbuf.FromImage(img)
	if buf == nil {
		return nil, format, fmt.Errorf("%w: empty image", pixbuf.ErrInvalidDimensions)
	}
	return buf.RGBA(), format, nil
}

// Load opens and decodes the image at path.
func Load(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	img, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Save writes img as PNG, creating parent directories as needed.
func Save(path string, img image.Image) error {
	return create(path, func(w io.Writer) error { return png.Encode(w, img) })
}

func create(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("close %s: %v", path, cerr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

// ParseSize parses "WxH".
func ParseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q: want WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d", pixbuf.ErrInvalidDimensions, w, h)
	}
	return w, h, nil
}

// Mask is a score plane with its dimensions.
type Mask struct {
	Values []float32
	Width  int
	Height int
}

// LoadMask reads a score mask. Raw .f32 files need width and height; any
// other file is decoded as a grayscale mask.
func LoadMask(path string, width, height int) (*Mask, error) {
	if strings.EqualFold(filepath.Ext(path), RawMaskExt) {
		if width <= 0 || height <= 0 {
			return nil, fmt.Errorf("%s: %w", path, ErrNeedSize)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		values, err := DecodeRawMask(data, width, height)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &Mask{Values: values, Width: width, Height: height}, nil
	}
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	values, w, h := render.MaskFromImage(img)
	return &Mask{Values: values, Width: w, Height: h}, nil
}

// DecodeRawMask interprets data as width*height little-endian float32s.
func DecodeRawMask(data []byte, width, height int) ([]float32, error) {
	if width <= 0 || height <= 0 || len(data) != width*height*4 {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d float32 mask", pixbuf.ErrInvalidDimensions, len(data), width, height)
	}
	values := make([]float32, width*height)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return values, nil
}

// EncodeRawMask is the inverse of DecodeRawMask.
func EncodeRawMask(values []float32) []byte {
	var buf bytes.Buffer
	buf.Grow(len(values) * 4)
	_ = binary.Write(&buf, binary.LittleEndian, values)
	return buf.Bytes()
}

// SaveMask writes m to path, as raw float32 for .f32 and as a grayscale PNG
// otherwise.
func SaveMask(path string, m *Mask) error {
	if err := pixbuf.ValidateMask(m.Values, m.Width, m.Height); err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), RawMaskExt) {
		data := EncodeRawMask(m.Values)
		return create(path, func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		})
	}
	img, err := render.MaskImage(m.Values, m.Width, m.Height)
	if err != nil {
		return err
	}
	return Save(path, img)
}
