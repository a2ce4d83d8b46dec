package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/example/seamcut/internal/config"
	"github.com/example/seamcut/internal/notify"
	"github.com/example/seamcut/internal/render"
	"github.com/example/seamcut/internal/seam"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs          *flag.FlagSet
	program     string
	notifier    *notify.Notifier
	config      *config.Config
	stdout      io.Writer
	splitAlerts bool
	saveAlerts  bool
	copyAlerts  bool
	strategy    string
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) *root {
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &root{
		program:     program,
		notifier:    r.notifier,
		config:      r.config,
		stdout:      r.stdout,
		splitAlerts: r.splitAlerts,
		saveAlerts:  r.saveAlerts,
		copyAlerts:  r.copyAlerts,
		strategy:    r.strategy,
	}
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("seamcut", flag.ExitOnError),
		program:  "seamcut",
		notifier: notify.New(prefs),
		config:   cfg,
		stdout:   os.Stdout,
	}
	r.fs.BoolVar(&r.splitAlerts, "notify-split", cfg.Notify.Split, "show a desktop notification after splitting an image")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving an image")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")

	// Precedence: CLI > Env > Config > Default. The flag stays empty so the
	// fallback happens in seamOptions.
	r.fs.StringVar(&r.strategy, "strategy", "", "split detection strategy: gap (gap+edge) or edge")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventSplit, r.splitAlerts)
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "split":
		cmd, err = parseSplitCmd(subArgs, r)
	case "erase":
		cmd, err = parseEraseCmd(subArgs, r)
	case "mask":
		cmd, err = parseMaskCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{root: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// seamOptions layers the configuration file and the strategy over the
// detector defaults. An explicit flag value wins over SEAMCUT_STRATEGY,
// which wins over the config file.
func (r *root) seamOptions(flagStrategy string) (seam.Options, error) {
	opts := seam.DefaultOptions()
	var cfg config.Seam
	cfgStrategy := ""
	if r.config != nil {
		cfg = r.config.Seam
		cfgStrategy = r.config.Strategy
	}
	if cfg.GapThreshold != 0 {
		opts.Gap.Threshold = cfg.GapThreshold
	}
	if cfg.MinGapWidth != 0 {
		opts.Gap.MinWidth = cfg.MinGapWidth
	}
	if cfg.ColorTolerance != 0 {
		opts.Gap.ColorTolerance = cfg.ColorTolerance
	}
	if cfg.MaxGapFraction != 0 {
		opts.Gap.MaxFraction = cfg.MaxGapFraction
	}
	if cfg.BreakGradient != 0 {
		opts.Gap.BreakGradient = cfg.BreakGradient
	}
	if cfg.K != 0 {
		opts.K = cfg.K
	}
	if cfg.PeakRadius != 0 {
		opts.PeakRadius = cfg.PeakRadius
	}
	if cfg.Smooth != 0 {
		opts.Smooth = cfg.Smooth
	}
	if cfg.Margin != 0 {
		opts.Margin = cfg.Margin
	}
	if cfg.Tolerance != 0 {
		opts.Tolerance = cfg.Tolerance
	}

	name := firstNonEmpty(flagStrategy, r.strategy, os.Getenv("SEAMCUT_STRATEGY"), cfgStrategy)
	strategy, err := seam.ParseStrategy(name)
	if err != nil {
		return seam.Options{}, err
	}
	opts.Strategy = strategy
	return opts, opts.Validate()
}

// style applies the configured overlay colours over the defaults.
func (r *root) style() render.Style {
	s := render.DefaultStyle()
	if r.config == nil {
		return s
	}
	var zero color.RGBA
	if c := r.config.Style.Line; c != zero {
		s.Line = c
	}
	if c := r.config.Style.Label; c != zero {
		s.Label = c
	}
	if c := r.config.Style.LabelBackground; c != zero {
		s.LabelBackground = c
	}
	return s
}

func (r *root) out() io.Writer {
	if r == nil || r.stdout == nil {
		return os.Stdout
	}
	return r.stdout
}

func (r *root) notifySplit(detail string, img image.Image) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Split(detail, img)
}

func (r *root) notifySave(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Save(path)
}

func (r *root) notifyCopy(detail string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Copy(detail)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
