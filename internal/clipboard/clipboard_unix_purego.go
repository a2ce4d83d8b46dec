//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// readTimeout bounds how long ReadImage waits for the selection owner.
var readTimeout = 3 * time.Second

var errReadTimeout = errors.New("clipboard owner did not answer")

var selection *owner

func open() error {
	o, err := dialOwner()
	if err != nil {
		return err
	}
	selection = o
	return nil
}

// WriteImage takes the CLIPBOARD selection and serves img as image/png until
// another client claims it.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	data, err := encode(img)
	if err != nil {
		return err
	}
	return selection.claim(data)
}

// ReadImage converts the CLIPBOARD selection to image/png and decodes it.
func ReadImage() (*image.RGBA, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	data, err := selection.fetch()
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// atoms are the interned names used by the selection exchange.
type atoms struct {
	clipboard, targets, png, property xproto.Atom
}

// owner holds a hidden window that can own the CLIPBOARD selection. It talks
// ICCCM directly over xgb, so it works without cgo.
type owner struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  atoms

	mu   sync.RWMutex
	data []byte
}

func dialOwner() (*owner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	window, err := hiddenWindow(conn, xproto.EventMaskPropertyChange|xproto.EventMaskStructureNotify)
	if err != nil {
		conn.Close()
		return nil, err
	}
	a, err := intern(conn, "CLIPBOARD", "TARGETS", "image/png", "SEAMCUT_CLIPBOARD")
	if err != nil {
		xproto.DestroyWindow(conn, window)
		conn.Close()
		return nil, err
	}
	o := &owner{
		conn:   conn,
		window: window,
		atoms:  atoms{clipboard: a[0], targets: a[1], png: a[2], property: a[3]},
	}
	go o.serve()
	return o, nil
}

func hiddenWindow(conn *xgb.Conn, mask uint32) (xproto.Window, error) {
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{mask}).Check()
	if err != nil {
		return 0, fmt.Errorf("create selection window: %w", err)
	}
	return window, nil
}

func intern(conn *xgb.Conn, names ...string) ([]xproto.Atom, error) {
	out := make([]xproto.Atom, len(names))
	for i, name := range names {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return nil, fmt.Errorf("intern %s: %w", name, err)
		}
		out[i] = reply.Atom
	}
	return out, nil
}

func (o *owner) claim(data []byte) error {
	o.mu.Lock()
	o.data = append([]byte(nil), data...)
	o.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(o.conn, o.window, o.atoms.clipboard, xproto.TimeCurrentTime).Check()
}

func (o *owner) held() []byte {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.data
}

func (o *owner) serve() {
	for {
		ev, err := o.conn.WaitForEvent()
		if err != nil {
			continue
		}
		if ev == nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.reply(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.data = nil
			o.mu.Unlock()
		}
	}
}

// reply answers TARGETS and image/png requests; anything else is refused
// with a None property.
func (o *owner) reply(req xproto.SelectionRequestEvent) {
	prop := req.Property
	if prop == xproto.AtomNone {
		prop = req.Target
	}
	data := o.held()
	switch {
	case req.Target == o.atoms.targets:
		offered := []xproto.Atom{o.atoms.targets}
		if len(data) > 0 {
			offered = append(offered, o.atoms.png)
		}
		buf := make([]byte, 4*len(offered))
		for i, a := range offered {
			xgb.Put32(buf[4*i:], uint32(a))
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, req.Requestor, prop, xproto.AtomAtom, 32, uint32(len(offered)), buf)
	case req.Target == o.atoms.png && len(data) > 0:
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, req.Requestor, prop, o.atoms.png, 8, uint32(len(data)), data)
	default:
		prop = xproto.AtomNone
	}
	ev := xproto.SelectionNotifyEvent{
		Time:      req.Time,
		Requestor: req.Requestor,
		Selection: req.Selection,
		Target:    req.Target,
		Property:  prop,
	}
	xproto.SendEvent(o.conn, false, req.Requestor, 0, string(ev.Bytes()))
}

// fetch returns our own data when we hold the selection, otherwise it asks
// the current owner on a fresh connection.
func (o *owner) fetch() ([]byte, error) {
	if data := o.held(); len(data) > 0 {
		return append([]byte(nil), data...), nil
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	defer conn.Close()
	window, err := hiddenWindow(conn, xproto.EventMaskPropertyChange)
	if err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, window)

	err = xproto.ConvertSelectionChecked(conn, window, o.atoms.clipboard, o.atoms.png, o.atoms.property, xproto.TimeCurrentTime).Check()
	if err != nil {
		return nil, fmt.Errorf("request clipboard: %w", err)
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := awaitProperty(conn, window)
		done <- result{data, err}
	}()
	select {
	case r := <-done:
		return r.data, r.err
	case <-time.After(readTimeout):
		return nil, errReadTimeout
	}
}

func awaitProperty(conn *xgb.Conn, window xproto.Window) ([]byte, error) {
	for {
		ev, err := conn.WaitForEvent()
		if err != nil {
			return nil, err
		}
		if ev == nil {
			return nil, errors.New("X connection closed")
		}
		n, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if n.Property == xproto.AtomNone {
			return nil, ErrEmpty
		}
		reply, perr := xproto.GetProperty(conn, true, window, n.Property, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
		if perr != nil {
			return nil, perr
		}
		return reply.Value, nil
	}
}
