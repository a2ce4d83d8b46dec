package mask

import (
	"errors"
	"image"
	"testing"

	"github.com/example/seamcut/internal/pixbuf"
)

func solid(width, height int, r, g, b byte) []byte {
	pix := make([]byte, width*height*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = r, g, b, 255
	}
	return pix
}

func alphaAt(pix []byte, width, x, y int) byte {
	return pix[(y*width+x)*4+3]
}

func TestFloodFillSingleColourErasesEverything(t *testing.T) {
	const w, h = 13, 9
	for _, seed := range []image.Point{{0, 0}, {6, 4}, {12, 8}} {
		pix := solid(w, h, 40, 80, 120)
		n, err := FloodFill(pix, w, h, seed.X, seed.Y, 0)
		if err != nil {
			t.Fatalf("seed %v: %v", seed, err)
		}
		if n != w*h {
			t.Fatalf("seed %v: erased %d, want %d", seed, n, w*h)
		}
		for i := 0; i < len(pix); i += 4 {
			if pix[i+3] != 0 {
				t.Fatalf("seed %v: pixel %d still opaque", seed, i/4)
			}
			if pix[i] != 40 || pix[i+1] != 80 || pix[i+2] != 120 {
				t.Fatalf("seed %v: RGB changed at pixel %d", seed, i/4)
			}
		}
	}
}

func TestFloodFillIsIdempotent(t *testing.T) {
	const w, h = 10, 10
	pix := solid(w, h, 200, 200, 200)
	for y := 0; y < h; y++ {
		o := (y*w + 5) * 4
		pix[o], pix[o+1], pix[o+2] = 0, 0, 0
	}
	first, err := FloodFill(pix, w, h, 1, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if first != 50 {
		t.Fatalf("erased %d, want 50", first)
	}
	snapshot := append([]byte(nil), pix...)
	second, err := FloodFill(pix, w, h, 1, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if second != 0 {
		t.Fatalf("second fill erased %d pixels", second)
	}
	for i := range pix {
		if pix[i] != snapshot[i] {
			t.Fatalf("second fill changed byte %d", i)
		}
	}
}

func TestFloodFillStopsAtBarrierAndTolerance(t *testing.T) {
	const w, h = 6, 1
	pix := []byte{
		100, 100, 100, 255,
		105, 95, 100, 255, // within 5
		110, 100, 100, 255, // R off by 10 from seed
		100, 100, 100, 255,
		100, 100, 100, 0, // transparent gap
		100, 100, 100, 255,
	}
	n, err := FloodFill(pix, w, h, 0, 0, 5)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("erased %d, want 2", n)
	}
	want := []byte{0, 0, 255, 255, 0, 255}
	for x := 0; x < w; x++ {
		if got := alphaAt(pix, w, x, 0); got != want[x] {
			t.Fatalf("alpha at %d = %d, want %d", x, got, want[x])
		}
	}
}

func TestFloodFillComparesAgainstSeedNotNeighbour(t *testing.T) {
	// A gentle ramp: each step is within tolerance of its neighbour but the
	// far end drifts past the seed's tolerance.
	const w = 8
	pix := make([]byte, w*4)
	for x := 0; x < w; x++ {
		v := byte(100 + 4*x)
		pix[x*4], pix[x*4+1], pix[x*4+2], pix[x*4+3] = v, v, v, 255
	}
	n, err := FloodFill(pix, w, 1, 0, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("erased %d, want 3 (values 100,104,108)", n)
	}
}

func TestFloodFillDiagonalNotConnected(t *testing.T) {
	const w, h = 3, 3
	pix := solid(w, h, 0, 0, 0)
	for _, p := range []image.Point{{0, 0}, {1, 1}, {2, 2}} {
		o := (p.Y*w + p.X) * 4
		pix[o], pix[o+1], pix[o+2] = 255, 255, 255
	}
	n, err := FloodFill(pix, w, h, 1, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("erased %d, want 1", n)
	}
}

func TestFloodFillTransparentSeed(t *testing.T) {
	pix := solid(2, 2, 1, 2, 3)
	pix[3] = 0
	n, err := FloodFill(pix, 2, 2, 0, 0, 255)
	if err != nil || n != 0 {
		t.Fatalf("got %d, %v; want no-op", n, err)
	}
	if alphaAt(pix, 2, 1, 0) != 255 {
		t.Fatal("transparent seed erased a neighbour")
	}
}

func TestFloodFillRejectsBadArguments(t *testing.T) {
	pix := solid(2, 2, 0, 0, 0)
	if _, err := FloodFill(pix, 3, 2, 0, 0, 0); !errors.Is(err, pixbuf.ErrInvalidDimensions) {
		t.Fatalf("expected ErrInvalidDimensions, got %v", err)
	}
	if _, err := FloodFill(pix, 2, 2, 2, 0, 0); !errors.Is(err, pixbuf.ErrInvalidDimensions) {
		t.Fatalf("expected ErrInvalidDimensions for seed, got %v", err)
	}
}

func TestFloodFillLargeImageDoesNotRecurse(t *testing.T) {
	const w, h = 1000, 1000
	pix := solid(w, h, 9, 9, 9)
	n, err := FloodFill(pix, w, h, 500, 500, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != w*h {
		t.Fatalf("erased %d, want %d", n, w*h)
	}
}

func blob(values []float32, width int, r image.Rectangle, v float32) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			values[y*width+x] = v
		}
	}
}

func TestLargestComponentKeepsBiggerBlob(t *testing.T) {
	const w, h = 30, 20
	values := make([]float32, w*h)
	for i := range values {
		values[i] = -3
	}
	small := image.Rect(1, 1, 9, 6)    // 40 pixels
	large := image.Rect(15, 5, 25, 15) // 100 pixels
	blob(values, w, small, 0.5)
	blob(values, w, large, 0.9)
	values[(large.Min.Y+2)*w+large.Min.X+3] = 2.5

	out, err := LargestComponent(values, w, h)
	if err != nil {
		t.Fatal(err)
	}
	positive := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			in := image.Pt(x, y).In(large)
			switch {
			case in && out[i] != values[i]:
				t.Fatalf("(%d,%d) = %v, want original %v", x, y, out[i], values[i])
			case !in && out[i] != Background:
				t.Fatalf("(%d,%d) = %v, want background", x, y, out[i])
			}
			if out[i] > 0 {
				positive++
			}
		}
	}
	if positive != 100 {
		t.Fatalf("%d positive pixels, want 100", positive)
	}
	if values[small.Min.Y*w+small.Min.X] != 0.5 {
		t.Fatal("input mask was modified")
	}
}

func TestLargestComponentNoForeground(t *testing.T) {
	values := []float32{0, -1, 0, -5}
	out, err := LargestComponent(values, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out {
		if v != Background {
			t.Fatalf("out[%d] = %v, want background", i, v)
		}
	}
}

func TestLargestComponentTieGoesToFirstFound(t *testing.T) {
	const w, h = 7, 1
	values := []float32{1, 1, 0, 2, 2, 0, 0}
	out, err := LargestComponent(values, w, h)
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{1, 1, Background, Background, Background, Background, Background}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out = %v, want %v", out, want)
		}
	}
}

func TestLargestComponentUsesFourConnectivity(t *testing.T) {
	// Two diagonal pixels are separate components; the 2-pixel bar wins.
	values := []float32{
		1, 0, 0,
		0, 1, 0,
		0, 0, 0,
		1, 1, 0,
	}
	out, err := LargestComponent(values, 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != Background || out[4] != Background {
		t.Fatalf("diagonal pixels should be dropped: %v", out)
	}
	if out[9] != 1 || out[10] != 1 {
		t.Fatalf("bar should be kept: %v", out)
	}
}

func TestComponentsStats(t *testing.T) {
	const w, h = 10, 10
	values := make([]float32, w*h)
	blob(values, w, image.Rect(0, 0, 3, 2), 1)
	blob(values, w, image.Rect(5, 5, 10, 10), 1)
	comps, err := Components(values, w, h)
	if err != nil {
		t.Fatal(err)
	}
	if len(comps) != 2 {
		t.Fatalf("got %d components, want 2", len(comps))
	}
	if comps[0].ID != 1 || comps[0].Pixels != 6 || !comps[0].Bounds.Eq(image.Rect(0, 0, 3, 2)) {
		t.Fatalf("first component = %+v", comps[0])
	}
	if comps[1].Pixels != 25 || !comps[1].Bounds.Eq(image.Rect(5, 5, 10, 10)) {
		t.Fatalf("second component = %+v", comps[1])
	}
}

func TestLargestComponentRejectsBadShape(t *testing.T) {
	if _, err := LargestComponent(make([]float32, 5), 2, 2); !errors.Is(err, pixbuf.ErrInvalidDimensions) {
		t.Fatalf("expected ErrInvalidDimensions, got %v", err)
	}
}
