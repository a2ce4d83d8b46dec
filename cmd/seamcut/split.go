package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/example/seamcut/internal/capture"
	"github.com/example/seamcut/internal/clipboard"
	"github.com/example/seamcut/internal/imageio"
	"github.com/example/seamcut/internal/render"
	"github.com/example/seamcut/internal/seam"
)

var (
	captureScreenFn  = capture.Screen
	readClipboardFn  = clipboard.ReadImage
	writeClipboardFn = clipboard.WriteImage
)

type splitCmd struct {
	*root
	fs            *flag.FlagSet
	files         stringList
	fromClipboard bool
	capture       bool
	region        string
	regionRect    image.Rectangle
	strategy      string
	outDir        string
	noTiles       bool
	overlay       bool
	jsonOut       bool
	toClipboard   bool
	jobs          int
	opts          seam.Options
}

func (s *splitCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

// splitResult is one line of text output or one element of the JSON array.
type splitResult struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	seam.Splits
	Tiles   []string `json:"tiles,omitempty"`
	Overlay string   `json:"overlay,omitempty"`
}

type splitSource struct {
	name string
	// stem prefixes the tile and overlay file names.
	stem string
	load func() (*image.RGBA, error)
}

func parseSplitCmd(args []string, r *root) (*splitCmd, error) {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	s := &splitCmd{root: r.subcommand("split"), fs: fs}
	fs.Usage = usageFunc(s)
	outDir := "."
	if r.config != nil && r.config.OutDir != "" {
		outDir = r.config.OutDir
	}
	fs.Var(&s.files, "file", "image to split (repeatable)")
	fs.BoolVar(&s.fromClipboard, "from-clipboard", false, "split the image on the clipboard")
	fs.BoolVar(&s.capture, "capture", false, "split a screenshot of the desktop")
	fs.StringVar(&s.region, "region", "", "crop the screenshot to x0,y0,x1,y1 before splitting")
	fs.StringVar(&s.strategy, "strategy", "", "detection strategy: gap or edge")
	fs.StringVar(&s.outDir, "out-dir", outDir, "directory for tiles and overlays")
	fs.BoolVar(&s.noTiles, "no-tiles", false, "only report split positions")
	fs.BoolVar(&s.overlay, "overlay", false, "also write NAME_overlay.png with the cut lines drawn")
	fs.BoolVar(&s.jsonOut, "json", false, "print results as JSON")
	fs.BoolVar(&s.toClipboard, "to-clipboard", false, "copy the overlay to the clipboard")
	fs.IntVar(&s.jobs, "jobs", runtime.NumCPU(), "images processed in parallel")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	s.files = append(s.files, fs.Args()...)

	if len(s.files) == 0 && !s.fromClipboard && !s.capture {
		return nil, usageErrorf(s, "no image given")
	}
	if s.region != "" {
		if !s.capture {
			return nil, usageErrorf(s, "-region only applies to -capture")
		}
		rect, err := parseRect(s.region)
		if err != nil {
			return nil, err
		}
		s.regionRect = rect
	}
	if s.toClipboard && len(s.sources()) != 1 {
		return nil, usageErrorf(s, "-to-clipboard needs exactly one image")
	}
	if s.jobs < 1 {
		s.jobs = 1
	}
	opts, err := s.root.seamOptions(s.strategy)
	if err != nil {
		return nil, err
	}
	s.opts = opts
	return s, nil
}

func (s *splitCmd) sources() []splitSource {
	var out []splitSource
	for _, f := range s.files {
		path := f
		out = append(out, splitSource{name: path, load: func() (*image.RGBA, error) { return imageio.Load(path) }})
	}
	if s.fromClipboard {
		out = append(out, splitSource{name: "clipboard", load: func() (*image.RGBA, error) {
			img, err := readClipboardFn()
			if err != nil {
				return nil, fmt.Errorf("failed to read clipboard: %w", err)
			}
			return img, nil
		}})
	}
	if s.capture {
		out = append(out, splitSource{name: "screen", load: func() (*image.RGBA, error) {
			img, err := captureScreenFn(capture.CaptureOptions{Region: s.regionRect})
			if err != nil {
				return nil, fmt.Errorf("failed to capture screen: %w", err)
			}
			return img, nil
		}})
	}
	assignStems(out)
	return out
}

// assignStems names each source's outputs after its base name. Sources that
// share a base name get a 1-based suffix so they never overwrite each other.
func assignStems(sources []splitSource) {
	count := make(map[string]int, len(sources))
	for _, src := range sources {
		count[baseName(src.name)]++
	}
	seen := make(map[string]int, len(sources))
	for i := range sources {
		base := baseName(sources[i].name)
		if count[base] == 1 {
			sources[i].stem = base
			continue
		}
		seen[base]++
		sources[i].stem = fmt.Sprintf("%s-%d", base, seen[base])
	}
}

func (s *splitCmd) Run() error {
	sources := s.sources()
	results := make([]splitResult, len(sources))
	var g errgroup.Group
	g.SetLimit(max(s.jobs, 1))
	for i, src := range sources {
		g.Go(func() error {
			res, err := s.process(src)
			if err != nil {
				return fmt.Errorf("split %s: %w", src.name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := s.out()
	if s.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, res := range results {
		fmt.Fprintf(w, "%s: %dx%d rows=%s cols=%s tiles=%d\n", res.Source, res.Width, res.Height, formatInts(res.Rows), formatInts(res.Cols), len(res.Tiles))
	}
	return nil
}

func (s *splitCmd) process(src splitSource) (splitResult, error) {
	img, err := src.load()
	if err != nil {
		return splitResult{}, err
	}
	splits, err := seam.DetectImage(img, s.opts)
	if err != nil {
		return splitResult{}, err
	}
	if splits.Rows == nil {
		splits.Rows = []int{}
	}
	if splits.Cols == nil {
		splits.Cols = []int{}
	}
	b := img.Bounds()
	res := splitResult{Source: src.name, Width: b.Dx(), Height: b.Dy(), Splits: splits}
	base := src.stem

	if !s.noTiles {
		for _, tile := range render.Tiles(img, splits) {
			path := filepath.Join(s.outDir, fmt.Sprintf("%s_%02d.png", base, tile.Index))
			if err := imageio.Save(path, tile.Image); err != nil {
				return splitResult{}, err
			}
			res.Tiles = append(res.Tiles, path)
		}
		if len(res.Tiles) > 0 {
			fmt.Fprintf(os.Stderr, "saved %d tiles of %s to %s\n", len(res.Tiles), src.name, s.outDir)
		}
	}

	var preview *image.RGBA
	if s.overlay || s.toClipboard {
		preview = render.Overlay(img, splits, s.style())
	}
	if s.overlay {
		path := filepath.Join(s.outDir, base+"_overlay.png")
		if err := imageio.Save(path, preview); err != nil {
			return splitResult{}, err
		}
		res.Overlay = path
		fmt.Fprintf(os.Stderr, "saved %s\n", path)
		s.notifySave(path)
	}
	if s.toClipboard {
		if err := writeClipboardFn(preview); err != nil {
			return splitResult{}, fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintf(os.Stderr, "copied %s overlay to clipboard\n", src.name)
		s.notifyCopy(src.name + " overlay")
	}
	s.notifySplit(fmt.Sprintf("%s into %d tiles", src.name, (len(splits.Rows)+1)*(len(splits.Cols)+1)), preview)
	return res, nil
}

func baseName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func formatInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
