package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/example/seamcut/internal/imageio"
	"github.com/example/seamcut/internal/mask"
	"github.com/example/seamcut/internal/pixbuf"
)

type eraseCmd struct {
	*root
	fs            *flag.FlagSet
	file          string
	fromClipboard bool
	seeds         pointList
	tolerance     int
	clearRGB      bool
	output        string
	toClipboard   bool
	shadow        shadowFlags
}

func (e *eraseCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEraseCmd(args []string, r *root) (*eraseCmd, error) {
	fs := flag.NewFlagSet("erase", flag.ExitOnError)
	e := &eraseCmd{root: r.subcommand("erase"), fs: fs}
	fs.Usage = usageFunc(e)
	tolerance, clearRGB := 20, false
	if r.config != nil {
		tolerance, clearRGB = r.config.Fill.Tolerance, r.config.Fill.ClearRGB
	}
	fs.StringVar(&e.file, "file", "", "image to edit")
	fs.BoolVar(&e.fromClipboard, "from-clipboard", false, "edit the image on the clipboard")
	fs.Var(&e.seeds, "at", "seed pixel X,Y (repeatable)")
	fs.IntVar(&e.tolerance, "tolerance", tolerance, "per-channel colour distance from the seed, 0-255")
	fs.BoolVar(&e.clearRGB, "clear-rgb", clearRGB, "zero the colour of erased pixels")
	fs.StringVar(&e.output, "output", "", "output PNG (default NAME_erased.png)")
	fs.BoolVar(&e.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	e.shadow.register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if e.file == "" && fs.NArg() > 0 {
		e.file = fs.Arg(0)
	}
	if (e.file == "") == !e.fromClipboard {
		return nil, usageErrorf(e, "give exactly one of -file or -from-clipboard")
	}
	if len(e.seeds) == 0 {
		return nil, usageErrorf(e, "at least one -at X,Y is required")
	}
	if _, err := e.shadow.options(); err != nil {
		return nil, err
	}
	if e.output == "" {
		if e.file == "" && !e.toClipboard {
			return nil, fmt.Errorf("output file is required when reading from the clipboard")
		}
		if e.file != "" {
			e.output = filepath.Join(filepath.Dir(e.file), baseName(e.file)+"_erased.png")
		}
	}
	return e, nil
}

func (e *eraseCmd) load() (*image.RGBA, error) {
	if e.fromClipboard {
		img, err := readClipboardFn()
		if err != nil {
			return nil, fmt.Errorf("failed to read clipboard: %w", err)
		}
		return img, nil
	}
	return imageio.Load(e.file)
}

func (e *eraseCmd) Run() error {
	img, err := e.load()
	if err != nil {
		return err
	}
	buf := pixbuf.FromImage(img)
	if buf == nil {
		return fmt.Errorf("%w: empty image", pixbuf.ErrInvalidDimensions)
	}
	total := 0
	for _, p := range e.seeds {
		n, err := mask.FloodFill(buf.Pix, buf.Width, buf.Height, p.X, p.Y, e.tolerance)
		if err != nil {
			return fmt.Errorf("erase at %s: %w", formatPoint(p), err)
		}
		total += n
	}
	if e.clearRGB {
		pixbuf.ClearTransparent(buf.Pix)
	}
	out, err := e.shadow.apply(buf.RGBA())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "erased %d pixels\n", total)

	if e.output != "" {
		if err := imageio.Save(e.output, out); err != nil {
			return err
		}
		saved := e.output
		if abs, err := filepath.Abs(e.output); err == nil {
			saved = abs
		}
		fmt.Fprintf(os.Stderr, "saved %s\n", saved)
		e.notifySave(saved)
	}
	if e.toClipboard {
		if err := writeClipboardFn(out); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintln(os.Stderr, "copied result to clipboard")
		e.notifyCopy("erased image")
	}
	return nil
}
