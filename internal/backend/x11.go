package backend

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/lx7/monotile/internal/core"
	"github.com/lx7/monotile/internal/render"
	"github.com/lx7/monotile/internal/shell"
	"github.com/lx7/monotile/internal/xcursor"
)

type X11Options struct {
	Display    string // empty means $DISPLAY
	Background render.Color
	Hotkeys    []Hotkey
	// PointerMods is the modifier that claims pointer gestures on windows.
	PointerMods Mods
}

// NewX11 connects to the X server and takes over window management on the
// default screen. Failing to claim substructure redirection means another
// window manager owns the screen.
func NewX11(opts X11Options) (*Backend, error) {
	conn, err := connect(opts.Display)
	if err != nil {
		return nil, err
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)
	area := shell.Rect{W: int(screen.WidthInPixels), H: int(screen.HeightInPixels)}

	x := &X11{
		conn:     conn,
		root:     screen.Root,
		area:     area,
		bg:       pixel(opts.Background),
		hotkeys:  opts.Hotkeys,
		ptrMods:  opts.PointerMods,
		msgC:     make(chan any, 256),
		renderC:  make(chan struct{}, 1),
		// X coordinates are 1:1 with the layout; the tracker runs unscaled.
		tracker:  render.NewTracker(area, 1, 4),
		trackerA: area,
		surfaces: map[xproto.Window]*X11Surface{},
		layers:   map[xproto.Window]*X11Layer{},
		applied:  map[xproto.Window]appliedState{},
		cursors:  map[Cursor]xproto.Cursor{},
	}

	if err := x.claim(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := x.setup(setup); err != nil {
		conn.Close()
		return nil, err
	}
	x.scan()

	go x.pump()

	return &Backend{kind: KindX11, d: x}, nil
}

func connect(display string) (*xgb.Conn, error) {
	if display != "" {
		return xgb.NewConnDisplay(display)
	}
	return xgb.NewConn()
}

type X11 struct {
	conn    *xgb.Conn
	root    xproto.Window
	bg      uint32
	hotkeys []Hotkey
	ptrMods Mods
	msgC    chan any
	renderC chan struct{}

	// Pump goroutine state.
	surfaces map[xproto.Window]*X11Surface
	layers   map[xproto.Window]*X11Layer
	keymap   keymap
	atoms    atoms
	cursors  map[Cursor]xproto.Cursor

	// Loop goroutine state.
	tracker   *render.Tracker
	trackerA  shell.Rect
	applied   map[xproto.Window]appliedState
	lastOrder []xproto.Window

	mu      sync.Mutex
	area    shell.Rect
	painted bool
	dead    []xproto.Window
}

type atoms struct {
	protocols    xproto.Atom
	deleteWindow xproto.Atom
	wmState      xproto.Atom
	windowType   xproto.Atom
	typeDock     xproto.Atom
	strutPartial xproto.Atom
	strut        xproto.Atom
}

// claim asks for the substructure redirect that makes this client the window
// manager. Exactly one client per screen can hold it.
func (x *X11) claim() error {
	err := xproto.ChangeWindowAttributesChecked(x.conn, x.root,
		xproto.CwEventMask,
		[]uint32{
			xproto.EventMaskSubstructureRedirect |
				xproto.EventMaskSubstructureNotify |
				xproto.EventMaskStructureNotify |
				xproto.EventMaskPropertyChange |
				xproto.EventMaskExposure,
		}).Check()
	if err != nil {
		return fmt.Errorf("another window manager is running: %w", err)
	}
	return nil
}

func (x *X11) setup(setup *xproto.SetupInfo) error {
	for _, c := range []struct {
		kind  Cursor
		glyph uint16
	}{
		{CursorDefault, xcursor.LeftPtr},
		{CursorMove, xcursor.Fleur},
		{CursorResize, xcursor.Sizing},
	} {
		cursor, err := xcursor.CreateCursor(x.conn, c.glyph)
		if err != nil {
			return err
		}
		x.cursors[c.kind] = cursor
	}

	err := xproto.ChangeWindowAttributesChecked(x.conn, x.root,
		xproto.CwBackPixel|xproto.CwCursor,
		[]uint32{x.bg, uint32(x.cursors[CursorDefault])}).Check()
	if err != nil {
		return err
	}

	if err := x.keymap.load(x.conn, setup); err != nil {
		return err
	}
	x.grabKeys()
	x.grabButtons()

	for _, a := range []struct {
		name string
		dst  *xproto.Atom
	}{
		{"WM_PROTOCOLS", &x.atoms.protocols},
		{"WM_DELETE_WINDOW", &x.atoms.deleteWindow},
		{"WM_STATE", &x.atoms.wmState},
		{"_NET_WM_WINDOW_TYPE", &x.atoms.windowType},
		{"_NET_WM_WINDOW_TYPE_DOCK", &x.atoms.typeDock},
		{"_NET_WM_STRUT_PARTIAL", &x.atoms.strutPartial},
		{"_NET_WM_STRUT", &x.atoms.strut},
	} {
		reply, err := xproto.InternAtom(x.conn, false, uint16(len(a.name)), a.name).Reply()
		if err != nil {
			return err
		}
		*a.dst = reply.Atom
	}

	xproto.ClearArea(x.conn, false, x.root, 0, 0, 0, 0)
	return nil
}

// lockVariants covers NumLock and CapsLock so neither shadows a grab.
var lockVariants = []uint16{0, xproto.ModMaskLock, xproto.ModMask2, xproto.ModMaskLock | xproto.ModMask2}

func (x *X11) grabKeys() {
	xproto.UngrabKey(x.conn, 0, x.root, xproto.ModMaskAny)
	for _, hk := range x.hotkeys {
		mask := modMask(hk.Mods)
		for _, code := range x.keymap.keycodes(hk.Keysym) {
			for _, lock := range lockVariants {
				xproto.GrabKey(x.conn, true, x.root, mask|lock, code,
					xproto.GrabModeAsync, xproto.GrabModeAsync)
			}
		}
	}
}

func (x *X11) grabButtons() {
	mask := modMask(x.ptrMods)
	events := uint16(xproto.EventMaskButtonPress |
		xproto.EventMaskButtonRelease |
		xproto.EventMaskPointerMotion)
	for button := byte(1); button <= 3; button++ {
		for _, lock := range lockVariants {
			xproto.GrabButton(x.conn, true, x.root, events,
				xproto.GrabModeAsync, xproto.GrabModeAsync,
				0, 0, button, mask|lock)
		}
	}
}

// scan adopts clients that were mapped before the manager started.
func (x *X11) scan() {
	tree, err := xproto.QueryTree(x.conn, x.root).Reply()
	if err != nil {
		slog.Error("Failed to query existing clients", "error", err)
		return
	}
	for _, wid := range tree.Children {
		attr, err := xproto.GetWindowAttributes(x.conn, wid).Reply()
		if err != nil || attr.OverrideRedirect || attr.MapState != xproto.MapStateViewable {
			continue
		}
		x.adopt(wid, true)
	}
}

func (x *X11) Events() <-chan any { return x.msgC }

func (x *X11) Area() shell.Rect {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.area
}

func (x *X11) ScheduleRender() {
	core.FlagChannel(x.renderC)
}

// SetCursor swaps the pointer image on the running drag grab. The grab ends
// with the button release and brings the default cursor back by itself.
func (x *X11) SetCursor(c Cursor) {
	if c == CursorDefault {
		return
	}
	cursor, ok := x.cursors[c]
	if !ok {
		return
	}
	xproto.ChangeActivePointerGrab(x.conn, cursor, xproto.TimeCurrentTime,
		uint16(xproto.EventMaskButtonPress|
			xproto.EventMaskButtonRelease|
			xproto.EventMaskPointerMotion))
}

func (x *X11) Close() error {
	x.conn.Close()
	return nil
}

func (x *X11) age() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.painted {
		return 1
	}
	return 0
}

// pump merges translated X events and coalesced render requests into the
// message stream. It owns the surface registry; nothing else touches it.
func (x *X11) pump() {
	defer close(x.msgC)

	xevC := make(chan xgb.Event)
	go x.readEvents(xevC)

	for {
		select {
		case <-x.renderC:
			x.msgC <- RenderRequested{Age: x.age()}
		case ev, ok := <-xevC:
			if !ok {
				return
			}
			for _, msg := range x.translate(ev) {
				x.msgC <- msg
			}
		}
	}
}

func (x *X11) readEvents(out chan<- xgb.Event) {
	defer close(out)

	for {
		ev, err := x.conn.WaitForEvent()
		if ev == nil && err == nil {
			slog.Debug("exit: no event or error")
			return
		}
		if err != nil {
			// Protocol errors from unchecked requests land here; a window
			// dying mid-request is normal traffic for a window manager.
			slog.Debug("x11 error", "error", err)
			continue
		}
		out <- ev
	}
}

func (x *X11) translate(ev xgb.Event) []any {
	switch ev := ev.(type) {
	case xproto.MapRequestEvent:
		return x.mapRequest(ev.Window)
	case xproto.ConfigureRequestEvent:
		return x.configureRequest(ev)
	case xproto.MapNotifyEvent:
		if s, ok := x.surfaces[ev.Window]; ok && !s.mapped {
			s.mapped = true
			x.refreshGeometry(s)
			return []any{SurfaceCommitted{ID: s.id, HasBuffer: true}}
		}
	case xproto.UnmapNotifyEvent:
		return x.gone(ev.Window)
	case xproto.DestroyNotifyEvent:
		return x.gone(ev.Window)
	case xproto.PropertyNotifyEvent:
		return x.propertyChanged(ev)
	case xproto.ConfigureNotifyEvent:
		if ev.Window == x.root {
			area := shell.Rect{W: int(ev.Width), H: int(ev.Height)}
			x.mu.Lock()
			x.area = area
			x.mu.Unlock()
			return []any{OutputResized{Area: area}}
		}
		if s, ok := x.surfaces[ev.Window]; ok {
			if s.adoptSize(shell.Size{W: int(ev.Width), H: int(ev.Height)}) && s.mapped {
				return []any{SurfaceCommitted{ID: s.id, HasBuffer: true}}
			}
		}
		if l, ok := x.layers[ev.Window]; ok {
			geo := shell.Rect{X: int(ev.X), Y: int(ev.Y), W: int(ev.Width), H: int(ev.Height)}
			if l.adoptGeo(geo) {
				return []any{LayerRemoved{ID: l.id}, LayerAdded{Surface: l}}
			}
		}
	case xproto.KeyPressEvent:
		return []any{KeyPressed{
			Mods:   modsFromState(ev.State),
			Keysym: x.keymap.keysym(ev.Detail),
		}}
	case xproto.ButtonPressEvent:
		pos := shell.Point{X: int(ev.RootX), Y: int(ev.RootY)}
		if ev.Event != x.root {
			// Click-to-focus grab on a client; let the client see the press.
			xproto.AllowEvents(x.conn, xproto.AllowReplayPointer, ev.Time)
		}
		return []any{ButtonPressed{
			Mods:   modsFromState(ev.State),
			Button: Button(ev.Detail),
			Pos:    pos,
		}}
	case xproto.ButtonReleaseEvent:
		return []any{ButtonReleased{
			Button: Button(ev.Detail),
			Pos:    shell.Point{X: int(ev.RootX), Y: int(ev.RootY)},
		}}
	case xproto.MotionNotifyEvent:
		return []any{PointerMoved{Pos: shell.Point{X: int(ev.RootX), Y: int(ev.RootY)}}}
	case xproto.EnterNotifyEvent:
		if ev.Mode == xproto.NotifyModeNormal && ev.Detail != xproto.NotifyDetailInferior {
			return []any{PointerMoved{Pos: shell.Point{X: int(ev.RootX), Y: int(ev.RootY)}}}
		}
	case xproto.ExposeEvent:
		if ev.Count == 0 {
			// The server dropped root content; age 0 forces a full plan.
			return []any{RenderRequested{Age: 0}}
		}
	case xproto.MappingNotifyEvent:
		if ev.Request == xproto.MappingKeyboard {
			if err := x.keymap.load(x.conn, xproto.Setup(x.conn)); err != nil {
				slog.Error("Failed to reload keyboard mapping", "error", err)
				return nil
			}
			x.grabKeys()
		}
	}
	return nil
}

func (x *X11) mapRequest(wid xproto.Window) []any {
	if _, ok := x.surfaces[wid]; ok {
		xproto.MapWindow(x.conn, wid)
		return nil
	}
	if _, ok := x.layers[wid]; ok {
		xproto.MapWindow(x.conn, wid)
		return nil
	}

	attr, err := xproto.GetWindowAttributes(x.conn, wid).Reply()
	if err != nil {
		return nil
	}
	if attr.OverrideRedirect {
		xproto.MapWindow(x.conn, wid)
		return nil
	}
	return x.adopt(wid, false)
}

// adopt starts managing wid. Docks become layer surfaces; everything else
// becomes a client surface going through the two-commit mapping flow.
func (x *X11) adopt(wid xproto.Window, alreadyMapped bool) []any {
	if x.isDock(wid) {
		layer := x.newLayer(wid)
		x.layers[wid] = layer
		xproto.ChangeWindowAttributes(x.conn, wid, xproto.CwEventMask,
			[]uint32{xproto.EventMaskStructureNotify | xproto.EventMaskPropertyChange})
		xproto.MapWindow(x.conn, wid)
		return []any{LayerAdded{Surface: layer}}
	}

	s := newX11Surface(x, wid)
	x.surfaces[wid] = s
	x.setWMState(wid, 1) // NormalState

	xproto.ChangeWindowAttributes(x.conn, wid, xproto.CwEventMask,
		[]uint32{
			xproto.EventMaskEnterWindow |
				xproto.EventMaskStructureNotify |
				xproto.EventMaskPropertyChange,
		})
	// Click-to-focus: sync grab on any button, replayed to the client after
	// we see it.
	xproto.GrabButton(x.conn, false, wid, uint16(xproto.EventMaskButtonPress),
		xproto.GrabModeSync, xproto.GrabModeAsync, 0, 0, 0, xproto.ModMaskAny)

	msgs := []any{SurfaceCreated{Surface: s}, SurfaceCommitted{ID: s.id, HasBuffer: false}}
	if alreadyMapped {
		s.mapped = true
		x.refreshGeometry(s)
		msgs = append(msgs, SurfaceCommitted{ID: s.id, HasBuffer: true})
	} else {
		xproto.MapWindow(x.conn, wid)
	}
	return msgs
}

// configureRequest grants geometry to unmanaged windows verbatim. Managed
// clients get a synthetic notify restating what the layout gave them.
func (x *X11) configureRequest(ev xproto.ConfigureRequestEvent) []any {
	s, managed := x.surfaces[ev.Window]
	if !managed {
		var values []uint32
		for _, f := range []struct {
			bit uint16
			val uint32
		}{
			{xproto.ConfigWindowX, uint32(ev.X)},
			{xproto.ConfigWindowY, uint32(ev.Y)},
			{xproto.ConfigWindowWidth, uint32(ev.Width)},
			{xproto.ConfigWindowHeight, uint32(ev.Height)},
			{xproto.ConfigWindowBorderWidth, uint32(ev.BorderWidth)},
			{xproto.ConfigWindowSibling, uint32(ev.Sibling)},
			{xproto.ConfigWindowStackMode, uint32(ev.StackMode)},
		} {
			if ev.ValueMask&f.bit != 0 {
				values = append(values, f.val)
			}
		}
		xproto.ConfigureWindow(x.conn, ev.Window, ev.ValueMask, values)
		return nil
	}

	geo := s.lastGeo()
	notify := xproto.ConfigureNotifyEvent{
		Event:  ev.Window,
		Window: ev.Window,
		X:      int16(geo.X),
		Y:      int16(geo.Y),
		Width:  uint16(geo.W),
		Height: uint16(geo.H),
	}
	xproto.SendEvent(x.conn, false, ev.Window,
		xproto.EventMaskStructureNotify, string(notify.Bytes()))
	return nil
}

func (x *X11) gone(wid xproto.Window) []any {
	if s, ok := x.surfaces[wid]; ok {
		delete(x.surfaces, wid)
		x.mu.Lock()
		x.dead = append(x.dead, wid)
		x.mu.Unlock()
		return []any{SurfaceDestroyed{ID: s.id}}
	}
	if l, ok := x.layers[wid]; ok {
		delete(x.layers, wid)
		x.mu.Lock()
		x.dead = append(x.dead, wid)
		x.mu.Unlock()
		return []any{LayerRemoved{ID: l.id}}
	}
	return nil
}

func (x *X11) propertyChanged(ev xproto.PropertyNotifyEvent) []any {
	s, ok := x.surfaces[ev.Window]
	if !ok {
		if l, ok := x.layers[ev.Window]; ok && (ev.Atom == x.atoms.strutPartial || ev.Atom == x.atoms.strut) {
			l.setZone(x.readStruts(ev.Window))
			return []any{LayerRemoved{ID: l.id}, LayerAdded{Surface: l}}
		}
		return nil
	}
	switch ev.Atom {
	case xproto.AtomWmHints:
		return []any{SurfaceUrgent{ID: s.id, Urgent: x.readUrgency(ev.Window)}}
	case xproto.AtomWmNormalHints:
		min, max := x.readSizeHints(ev.Window)
		s.setSizeHints(min, max)
	case xproto.AtomWmTransientFor:
		if parent := x.readTransient(ev.Window); parent != "" && s.setParent(parent) {
			return []any{SurfaceParentChanged{ID: s.id}}
		}
	}
	return nil
}

func (x *X11) refreshGeometry(s *X11Surface) {
	geo, err := xproto.GetGeometry(x.conn, xproto.Drawable(s.wid)).Reply()
	if err != nil {
		return
	}
	s.adoptSize(shell.Size{W: int(geo.Width), H: int(geo.Height)})
}

func modsFromState(state uint16) Mods {
	return Mods{
		Shift: state&xproto.ModMaskShift != 0,
		Ctrl:  state&xproto.ModMaskControl != 0,
		Alt:   state&xproto.ModMask1 != 0,
		Logo:  state&xproto.ModMask4 != 0,
	}
}

func modMask(m Mods) uint16 {
	var mask uint16
	if m.Shift {
		mask |= xproto.ModMaskShift
	}
	if m.Ctrl {
		mask |= xproto.ModMaskControl
	}
	if m.Alt {
		mask |= xproto.ModMask1
	}
	if m.Logo {
		mask |= xproto.ModMask4
	}
	return mask
}

func pixel(c render.Color) uint32 {
	channel := func(v float32) uint32 {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return uint32(v*255 + 0.5)
	}
	return channel(c[0])<<16 | channel(c[1])<<8 | channel(c[2])
}

// keymap translates between keycodes and level-0 keysyms.
type keymap struct {
	min  xproto.Keycode
	per  int
	syms []xproto.Keysym
}

func (k *keymap) load(conn *xgb.Conn, setup *xproto.SetupInfo) error {
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)
	reply, err := xproto.GetKeyboardMapping(conn, setup.MinKeycode, count).Reply()
	if err != nil {
		return err
	}
	k.min = setup.MinKeycode
	k.per = int(reply.KeysymsPerKeycode)
	k.syms = reply.Keysyms
	return nil
}

func (k *keymap) keysym(code xproto.Keycode) uint32 {
	i := int(code-k.min) * k.per
	if i < 0 || i >= len(k.syms) {
		return 0
	}
	return uint32(k.syms[i])
}

func (k *keymap) keycodes(keysym uint32) []xproto.Keycode {
	var out []xproto.Keycode
	for i := 0; i*k.per < len(k.syms); i++ {
		if uint32(k.syms[i*k.per]) == keysym {
			out = append(out, k.min+xproto.Keycode(i))
		}
	}
	return out
}
