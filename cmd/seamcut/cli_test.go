package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/seamcut/internal/capture"
	"github.com/example/seamcut/internal/config"
	"github.com/example/seamcut/internal/imageio"
	"github.com/example/seamcut/internal/seam"
)

func testRoot() (*root, *bytes.Buffer) {
	var out bytes.Buffer
	return &root{program: "seamcut", config: config.New(), stdout: &out}, &out
}

// threePanels is a 330x100 composite of red, green and blue panels separated
// by 10px white gutters.
func threePanels() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 330, 100))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for i, c := range []color.RGBA{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}} {
		x := i * 110
		draw.Draw(img, image.Rect(x, 0, x+100, 100), image.NewUniform(c), image.Point{}, draw.Src)
	}
	return img
}

func TestSplitWritesTilesAndJSON(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "grid.png")
	if err := imageio.Save(src, threePanels()); err != nil {
		t.Fatal(err)
	}
	r, out := testRoot()
	tiles := filepath.Join(dir, "tiles")
	cmd, err := parseSplitCmd([]string{"-out-dir", tiles, "-json", "-overlay", src}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	var results []splitResult
	if err := json.Unmarshal(out.Bytes(), &results); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}
	res := results[0]
	if len(res.Rows) != 0 || len(res.Cols) != 2 || res.Cols[0] != 105 || res.Cols[1] != 215 {
		t.Fatalf("splits = %+v", res.Splits)
	}
	if len(res.Tiles) != 3 {
		t.Fatalf("tiles = %v", res.Tiles)
	}
	for i, want := range []int{105, 110, 115} {
		if res.Tiles[i] != filepath.Join(tiles, fmt.Sprintf("grid_%02d.png", i)) {
			t.Fatalf("tile %d path %s", i, res.Tiles[i])
		}
		img, err := imageio.Load(res.Tiles[i])
		if err != nil {
			t.Fatal(err)
		}
		if img.Bounds().Dx() != want || img.Bounds().Dy() != 100 {
			t.Fatalf("tile %d is %v, want %dx100", i, img.Bounds(), want)
		}
	}
	if _, err := os.Stat(filepath.Join(tiles, "grid_overlay.png")); err != nil {
		t.Fatalf("overlay missing: %v", err)
	}
}

func TestSplitSameBaseNameKeepsBothOutputs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a", "grid.png")
	b := filepath.Join(dir, "b", "grid.png")
	for _, path := range []string{a, b} {
		if err := imageio.Save(path, threePanels()); err != nil {
			t.Fatal(err)
		}
	}
	r, out := testRoot()
	tiles := filepath.Join(dir, "tiles")
	cmd, err := parseSplitCmd([]string{"-out-dir", tiles, "-json", "-overlay", a, b}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	var results []splitResult
	if err := json.Unmarshal(out.Bytes(), &results); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	for i, stem := range []string{"grid-1", "grid-2"} {
		res := results[i]
		if len(res.Tiles) != 3 {
			t.Fatalf("source %d tiles = %v", i, res.Tiles)
		}
		for j, path := range res.Tiles {
			if want := filepath.Join(tiles, fmt.Sprintf("%s_%02d.png", stem, j)); path != want {
				t.Fatalf("source %d tile %d = %s, want %s", i, j, path, want)
			}
		}
		if want := filepath.Join(tiles, stem+"_overlay.png"); res.Overlay != want {
			t.Fatalf("source %d overlay = %s, want %s", i, res.Overlay, want)
		}
	}
	entries, err := os.ReadDir(tiles)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 8 {
		t.Fatalf("%d files written, want 8 (6 tiles, 2 overlays)", len(entries))
	}
}

func TestAssignStems(t *testing.T) {
	sources := []splitSource{{name: "x/shot.png"}, {name: "clipboard"}, {name: "y/shot.jpg"}, {name: "other.png"}}
	assignStems(sources)
	want := []string{"shot-1", "clipboard", "shot-2", "other"}
	for i, src := range sources {
		if src.stem != want[i] {
			t.Fatalf("stem %d = %q, want %q", i, src.stem, want[i])
		}
	}
}

func TestSplitTextOutputAndNoTiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	for _, p := range []string{a, b} {
		if err := imageio.Save(p, threePanels()); err != nil {
			t.Fatal(err)
		}
	}
	r, out := testRoot()
	cmd, err := parseSplitCmd([]string{"-no-tiles", "-jobs", "2", "-out-dir", dir, a, b}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("output = %q", out.String())
	}
	want := a + ": 330x100 rows=[] cols=[105,215] tiles=0"
	if lines[0] != want {
		t.Fatalf("line = %q, want %q", lines[0], want)
	}
	if !strings.HasPrefix(lines[1], b+":") {
		t.Fatalf("results out of order: %q", lines[1])
	}
	if _, err := os.Stat(filepath.Join(dir, "a_00.png")); !os.IsNotExist(err) {
		t.Fatalf("-no-tiles still wrote tiles: %v", err)
	}
}

func TestSplitRequiresSource(t *testing.T) {
	r, _ := testRoot()
	_, err := parseSplitCmd(nil, r)
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(uerr.Error(), "no image given") || !strings.Contains(uerr.Error(), "seamcut split") {
		t.Fatalf("unexpected help: %s", uerr.Error())
	}
}

func TestSplitRegionNeedsCapture(t *testing.T) {
	r, _ := testRoot()
	if _, err := parseSplitCmd([]string{"-region", "0,0,10,10", "x.png"}, r); err == nil {
		t.Fatal("expected error")
	}
}

func TestSplitRejectsBadStrategy(t *testing.T) {
	r, _ := testRoot()
	if _, err := parseSplitCmd([]string{"-strategy", "magic", "x.png"}, r); err == nil || !strings.Contains(err.Error(), "magic") {
		t.Fatalf("expected strategy error, got %v", err)
	}
}

func TestSplitCaptureError(t *testing.T) {
	original := captureScreenFn
	sentinel := errors.New("portal offline")
	captureScreenFn = func(capture.CaptureOptions) (*image.RGBA, error) { return nil, sentinel }
	t.Cleanup(func() { captureScreenFn = original })

	r, _ := testRoot()
	cmd, err := parseSplitCmd([]string{"-capture", "-no-tiles"}, r)
	if err != nil {
		t.Fatal(err)
	}
	err = cmd.Run()
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if want := "failed to capture screen"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to contain %q, got %v", want, err)
	}
}

func TestSplitCapturePassesRegion(t *testing.T) {
	restore := capture.SetScreenshotProviderForTests(func(capture.CaptureOptions) (*image.RGBA, error) {
		big := image.NewRGBA(image.Rect(0, 0, 400, 200))
		draw.Draw(big, image.Rect(20, 50, 350, 150), threePanels(), image.Point{}, draw.Src)
		return big, nil
	})
	t.Cleanup(restore)

	r, out := testRoot()
	cmd, err := parseSplitCmd([]string{"-capture", "-region", "20,50,350,150", "-no-tiles"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != "screen: 330x100 rows=[] cols=[105,215] tiles=0" {
		t.Fatalf("output = %q", got)
	}
}

func TestSplitClipboardRoundTrip(t *testing.T) {
	origRead, origWrite := readClipboardFn, writeClipboardFn
	t.Cleanup(func() { readClipboardFn, writeClipboardFn = origRead, origWrite })
	readClipboardFn = func() (*image.RGBA, error) { return threePanels(), nil }
	var copied image.Image
	writeClipboardFn = func(img image.Image) error {
		copied = img
		return nil
	}

	r, _ := testRoot()
	cmd, err := parseSplitCmd([]string{"-from-clipboard", "-to-clipboard", "-no-tiles"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	rgba, ok := copied.(*image.RGBA)
	if !ok {
		t.Fatalf("copied %T", copied)
	}
	if got := rgba.RGBAAt(105, 90); got != r.style().Line {
		t.Fatalf("cut line pixel = %+v", got)
	}
}

func TestSplitToClipboardNeedsSingleImage(t *testing.T) {
	r, _ := testRoot()
	if _, err := parseSplitCmd([]string{"-to-clipboard", "a.png", "b.png"}, r); err == nil {
		t.Fatal("expected error")
	}
}

func TestEraseWritesTransparentBackground(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "shot.png")
	if err := imageio.Save(src, threePanels()); err != nil {
		t.Fatal(err)
	}
	r, _ := testRoot()
	cmd, err := parseEraseCmd([]string{"-file", src, "-at", "105,50", "-clear-rgb"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	out, err := imageio.Load(filepath.Join(dir, "shot_erased.png"))
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []image.Point{{105, 50}, {100, 0}, {109, 99}} {
		if got := out.RGBAAt(p.X, p.Y); got != (color.RGBA{}) {
			t.Fatalf("%v = %+v, want cleared", p, got)
		}
	}
	// The panels run edge to edge, so the second gutter is not connected.
	if got := out.RGBAAt(215, 50); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("second gutter = %+v", got)
	}
	if got := out.RGBAAt(50, 50); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("panel pixel = %+v", got)
	}
}

func TestEraseSeedOutsideImage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "shot.png")
	if err := imageio.Save(src, threePanels()); err != nil {
		t.Fatal(err)
	}
	r, _ := testRoot()
	cmd, err := parseEraseCmd([]string{"-file", src, "-at", "500,5"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err == nil || !strings.Contains(err.Error(), "erase at 500,5") {
		t.Fatalf("expected seed error, got %v", err)
	}
}

func TestEraseArgumentErrors(t *testing.T) {
	r, _ := testRoot()
	cases := map[string][]string{
		"no seed":        {"-file", "a.png"},
		"no source":      {"-at", "1,1"},
		"both sources":   {"-file", "a.png", "-from-clipboard", "-at", "1,1"},
		"clipboard only": {"-from-clipboard", "-at", "1,1"},
		"bad shadow":     {"-file", "a.png", "-at", "1,1", "-shadow-offset", "x"},
	}
	for name, args := range cases {
		if _, err := parseEraseCmd(args, r); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestMaskKeepsLargestRegion(t *testing.T) {
	dir := t.TempDir()
	const w, h = 8, 4
	values := make([]float32, w*h)
	for i := range values {
		values[i] = -1
	}
	values[0] = 0.5 // lone pixel
	for y := 1; y < 4; y++ {
		for x := 4; x < 8; x++ {
			values[y*w+x] = 0.9
		}
	}
	src := filepath.Join(dir, "scores.f32")
	if err := imageio.SaveMask(src, &imageio.Mask{Values: values, Width: w, Height: h}); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "kept.f32")
	r, out := testRoot()
	cmd, err := parseMaskCmd([]string{"-file", src, "-size", "8x4", "-output", dst, "-stats"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "2 regions") {
		t.Fatalf("stats = %q", out.String())
	}
	kept, err := imageio.LoadMask(dst, w, h)
	if err != nil {
		t.Fatal(err)
	}
	if kept.Values[0] >= 0 {
		t.Fatalf("lone pixel kept: %v", kept.Values[0])
	}
	if kept.Values[1*w+4] != 0.9 {
		t.Fatalf("largest region lost: %v", kept.Values[1*w+4])
	}
}

func TestMaskCutoutAndSVG(t *testing.T) {
	dir := t.TempDir()
	maskImg := image.NewGray(image.Rect(0, 0, 330, 100))
	draw.Draw(maskImg, image.Rect(110, 0, 210, 100), image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)
	maskPath := filepath.Join(dir, "m.png")
	if err := imageio.Save(maskPath, maskImg); err != nil {
		t.Fatal(err)
	}
	photo := filepath.Join(dir, "photo.png")
	if err := imageio.Save(photo, threePanels()); err != nil {
		t.Fatal(err)
	}
	svg := filepath.Join(dir, "m.svg")
	r, _ := testRoot()
	cmd, err := parseMaskCmd([]string{"-file", maskPath, "-image", photo, "-svg", svg}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	cut, err := imageio.Load(filepath.Join(dir, "photo_cutout.png"))
	if err != nil {
		t.Fatal(err)
	}
	if got := cut.RGBAAt(150, 50); got != (color.RGBA{0, 255, 0, 255}) {
		t.Fatalf("kept pixel = %+v", got)
	}
	if got := cut.RGBAAt(50, 50); got.A != 0 {
		t.Fatalf("dropped pixel = %+v", got)
	}
	data, err := os.ReadFile(svg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Fatalf("svg output = %q", data)
	}
}

func TestMaskNeedsWork(t *testing.T) {
	r, _ := testRoot()
	if _, err := parseMaskCmd([]string{"-file", "m.png"}, r); err == nil {
		t.Fatal("expected error when no output is requested")
	}
	if _, err := parseMaskCmd([]string{"-file", "m.f32", "-size", "0x2", "-stats"}, r); err == nil {
		t.Fatal("expected size error")
	}
}

func TestConfigPrint(t *testing.T) {
	r, out := testRoot()
	r.config.OutDir = "/tmp/tiles"
	r.config.Notify.Split = true
	cmd, err := parseConfigCmd([]string{"print"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Parse(strings.NewReader(out.String()))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OutDir != "/tmp/tiles" || !cfg.Notify.Split {
		t.Fatalf("printed config did not round trip: %q", out.String())
	}
}

func TestConfigUnknownSubcommand(t *testing.T) {
	r, _ := testRoot()
	cmd, err := parseConfigCmd([]string{"frobnicate"}, r)
	if err != nil {
		t.Fatal(err)
	}
	var uerr *UsageError
	if err := cmd.Run(); !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	r, out := testRoot()
	if err := (&versionCmd{root: r}).Run(); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != "seamcut version "+version {
		t.Fatalf("version output %q", got)
	}
}

func TestRootHelpListsCommandsAndFlags(t *testing.T) {
	r, _ := testRoot()
	r.fs = flag.NewFlagSet("seamcut", flag.ContinueOnError)
	r.fs.BoolVar(&r.splitAlerts, "notify-split", false, "show a desktop notification after splitting an image")
	help := (&UsageError{of: r}).Error()
	for _, want := range []string{"Usage: seamcut", "split", "erase", "mask", "-notify-split"} {
		if !strings.Contains(help, want) {
			t.Fatalf("help missing %q:\n%s", want, help)
		}
	}
}

func TestSeamOptionsPrecedence(t *testing.T) {
	r, _ := testRoot()
	r.config.Strategy = "edge"
	r.config.Seam.K = 3.2

	t.Setenv("SEAMCUT_STRATEGY", "")
	opts, err := r.seamOptions("")
	if err != nil {
		t.Fatal(err)
	}
	if opts.Strategy != seam.EdgeOnly || opts.K != 3.2 {
		t.Fatalf("config not applied: %+v", opts)
	}

	t.Setenv("SEAMCUT_STRATEGY", "gap")
	if opts, _ = r.seamOptions(""); opts.Strategy != seam.GapAndEdge {
		t.Fatalf("env should override config, got %v", opts.Strategy)
	}
	if opts, _ = r.seamOptions("edge"); opts.Strategy != seam.EdgeOnly {
		t.Fatalf("flag should override env, got %v", opts.Strategy)
	}

	r.config.Seam.K = 9
	if _, err := r.seamOptions(""); err == nil {
		t.Fatal("expected validation error for k=9")
	}
}
