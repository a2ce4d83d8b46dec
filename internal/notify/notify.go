// Package notify raises desktop notifications when seamcut finishes splitting,
// saving or copying an image.
package notify

import (
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/seamcut/internal/imageio"
	"github.com/example/seamcut/internal/platform"
)

// send is swapped out by tests.
var send = platform.Notify

// Event identifies a notification trigger.
type Event string

const (
	// EventSplit fires once an image has been cut into tiles.
	EventSplit Event = "split"
	// EventSave fires when an output file is written.
	EventSave Event = "save"
	// EventCopy fires when an image is placed on the clipboard.
	EventCopy Event = "copy"
)

// events lists every event with its default body and the environment
// variable that overrides it.
var events = []struct {
	event    Event
	template string
	env      string
}{
	{EventSplit, "Split %s", "SEAMCUT_NOTIFY_SPLIT_TEXT"},
	{EventSave, "Saved %s", "SEAMCUT_NOTIFY_SAVE_TEXT"},
	{EventCopy, "Copied %s to clipboard", "SEAMCUT_NOTIFY_COPY_TEXT"},
}

// EventPreference holds the template for an event's body. Its first %s is
// replaced by the event detail.
type EventPreference struct {
	Template string
}

// Preferences is the notification title plus one template per event.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the built-in title and templates.
func DefaultPreferences() Preferences {
	prefs := Preferences{Title: "seamcut", Events: make(map[Event]EventPreference, len(events))}
	for _, e := range events {
		prefs.Events[e.event] = EventPreference{Template: e.template}
	}
	return prefs
}

// LoadPreferences applies SEAMCUT_NOTIFY_* overrides to the defaults.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := env("SEAMCUT_NOTIFY_TITLE"); v != "" {
		prefs.Title = v
	}
	for _, e := range events {
		if v := env(e.env); v != "" {
			prefs.Events[e.event] = EventPreference{Template: v}
		}
	}
	return prefs
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// Notifier sends notifications for the events that have been enabled. A nil
// Notifier is silent.
type Notifier struct {
	title     string
	templates map[Event]string
	enabled   map[Event]bool
}

// New returns a Notifier with every event disabled.
func New(prefs Preferences) *Notifier {
	n := &Notifier{
		title:     prefs.Title,
		templates: make(map[Event]string, len(prefs.Events)),
		enabled:   make(map[Event]bool),
	}
	for ev, p := range prefs.Events {
		n.templates[ev] = strings.TrimSpace(p.Template)
	}
	return n
}

// Enable switches notifications for event on or off.
func (n *Notifier) Enable(event Event, on bool) {
	if n == nil {
		return
	}
	n.enabled[event] = on
}

// Split reports a finished split. img, usually the overlay, becomes the
// notification icon when non-nil.
func (n *Notifier) Split(detail string, img image.Image) {
	if !n.on(EventSplit) {
		return
	}
	var opts platform.Options
	if img != nil {
		dir, err := os.MkdirTemp("", "seamcut-preview-")
		if err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer func() {
				if err := os.RemoveAll(dir); err != nil {
					log.Printf("remove preview: %v", err)
				}
			}()
			icon := filepath.Join(dir, "preview.png")
			if err := imageio.Save(icon, img); err != nil {
				log.Printf("notification preview: %v", err)
			} else {
				opts.IconPath = icon
			}
		}
	}
	n.dispatch(EventSplit, detail, opts)
}

// Save reports a written file; the file itself is used as the icon.
func (n *Notifier) Save(path string) {
	if !n.on(EventSave) {
		return
	}
	var opts platform.Options
	detail := strings.TrimSpace(path)
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, err := os.Stat(abs); err == nil {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventSave, detail, opts)
}

// Copy reports a clipboard write.
func (n *Notifier) Copy(detail string) {
	if !n.on(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	n.dispatch(EventCopy, detail, platform.Options{})
}

func (n *Notifier) on(event Event) bool {
	return n != nil && n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	tmpl := n.templates[event]
	if tmpl == "" {
		return
	}
	body := strings.TrimSpace(render(tmpl, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := send(n.title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

// render places detail at the first %s of tmpl, or after it when tmpl has
// none.
func render(tmpl, detail string) string {
	if before, after, ok := strings.Cut(tmpl, "%s"); ok {
		return before + detail + after
	}
	if detail == "" {
		return tmpl
	}
	return tmpl + " " + detail
}
