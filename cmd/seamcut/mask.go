package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/seamcut/internal/imageio"
	"github.com/example/seamcut/internal/mask"
	"github.com/example/seamcut/internal/render"
)

type maskCmd struct {
	*root
	fs      *flag.FlagSet
	file    string
	size    string
	width   int
	height  int
	output  string
	image   string
	cutout  string
	feather int
	svg     string
	stats   bool
	shadow  shadowFlags
}

func (m *maskCmd) FlagSet() *flag.FlagSet {
	return m.fs
}

func parseMaskCmd(args []string, r *root) (*maskCmd, error) {
	fs := flag.NewFlagSet("mask", flag.ExitOnError)
	m := &maskCmd{root: r.subcommand("mask"), fs: fs}
	fs.Usage = usageFunc(m)
	feather := 0
	if r.config != nil {
		feather = r.config.Mask.Feather
	}
	fs.StringVar(&m.file, "file", "", "score mask: grayscale image or raw float32 (.f32)")
	fs.StringVar(&m.size, "size", "", "mask dimensions WxH, required for .f32")
	fs.StringVar(&m.output, "output", "", "write the filtered mask here (.f32 or image)")
	fs.StringVar(&m.image, "image", "", "image to cut out with the filtered mask")
	fs.StringVar(&m.cutout, "cutout", "", "output PNG for the cut-out (default NAME_cutout.png)")
	fs.IntVar(&m.feather, "feather", feather, "soften the cut-out edge by this many pixels")
	fs.StringVar(&m.svg, "svg", "", "trace the kept region to this SVG file")
	fs.BoolVar(&m.stats, "stats", false, "list every connected region")
	m.shadow.register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if m.file == "" && fs.NArg() > 0 {
		m.file = fs.Arg(0)
	}
	if m.file == "" {
		return nil, usageErrorf(m, "-file is required")
	}
	if m.size != "" {
		w, h, err := imageio.ParseSize(m.size)
		if err != nil {
			return nil, err
		}
		m.width, m.height = w, h
	}
	if _, err := m.shadow.options(); err != nil {
		return nil, err
	}
	if m.image != "" && m.cutout == "" {
		m.cutout = filepath.Join(filepath.Dir(m.image), baseName(m.image)+"_cutout.png")
	}
	if m.cutout != "" && m.image == "" {
		return nil, usageErrorf(m, "-cutout needs -image")
	}
	if m.output == "" && m.image == "" && m.svg == "" && !m.stats {
		return nil, usageErrorf(m, "nothing to do: give -output, -image, -svg or -stats")
	}
	return m, nil
}

func (m *maskCmd) Run() error {
	src, err := imageio.LoadMask(m.file, m.width, m.height)
	if err != nil {
		return err
	}
	if m.stats {
		comps, err := mask.Components(src.Values, src.Width, src.Height)
		if err != nil {
			return err
		}
		w := m.out()
		fmt.Fprintf(w, "%s: %dx%d, %d regions\n", m.file, src.Width, src.Height, len(comps))
		for _, c := range comps {
			fmt.Fprintf(w, "  #%d %d px at %v\n", c.ID, c.Pixels, c.Bounds)
		}
	}
	kept, err := mask.LargestComponent(src.Values, src.Width, src.Height)
	if err != nil {
		return err
	}
	filtered := &imageio.Mask{Values: kept, Width: src.Width, Height: src.Height}

	if m.output != "" {
		if err := imageio.SaveMask(m.output, filtered); err != nil {
			return err
		}
		m.reportSaved(m.output)
	}
	if m.svg != "" {
		f, err := os.Create(m.svg)
		if err != nil {
			return fmt.Errorf("create output %q: %w", m.svg, err)
		}
		if err := render.TraceMask(kept, src.Width, src.Height, f); err != nil {
			_ = f.Close()
			return fmt.Errorf("trace %s: %w", m.file, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		m.reportSaved(m.svg)
	}
	if m.image != "" {
		img, err := imageio.Load(m.image)
		if err != nil {
			return err
		}
		cut, err := render.ApplyMask(img, kept, render.MaskOptions{Feather: m.feather})
		if err != nil {
			return fmt.Errorf("apply %s to %s: %w", m.file, m.image, err)
		}
		out, err := m.shadow.apply(cut)
		if err != nil {
			return err
		}
		if err := imageio.Save(m.cutout, out); err != nil {
			return err
		}
		m.reportSaved(m.cutout)
	}
	return nil
}

func (m *maskCmd) reportSaved(path string) {
	saved := path
	if abs, err := filepath.Abs(path); err == nil {
		saved = abs
	}
	fmt.Fprintf(os.Stderr, "saved %s\n", saved)
	m.notifySave(saved)
}
