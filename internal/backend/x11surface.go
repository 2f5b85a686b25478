package backend

import (
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/lx7/monotile/internal/render"
	"github.com/lx7/monotile/internal/shell"
)

const xUrgencyHint = 1 << 8

// X11Surface wraps one managed client window. The id outlives X window id
// reuse. Fields behind mu are written by the event pump and read from the
// loop; mapped belongs to the pump alone.
type X11Surface struct {
	x      *X11
	wid    xproto.Window
	id     string
	mapped bool

	mu     sync.Mutex
	size   shell.Size
	min    shell.Size
	max    shell.Size
	parent string
	commit render.Commit
	geo    shell.Rect
}

func newX11Surface(x *X11, wid xproto.Window) *X11Surface {
	s := &X11Surface{x: x, wid: wid, id: uuid.NewString()}
	s.min, s.max = x.readSizeHints(wid)
	s.parent = x.readTransient(wid)
	if geo, err := xproto.GetGeometry(x.conn, xproto.Drawable(wid)).Reply(); err == nil {
		s.size = shell.Size{W: int(geo.Width), H: int(geo.Height)}
	}
	return s
}

func (s *X11Surface) ID() string { return s.id }

func (s *X11Surface) Size() shell.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

func (s *X11Surface) MinSize() shell.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.min
}

func (s *X11Surface) MaxSize() shell.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.max
}

func (s *X11Surface) Parent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parent
}

// RequestResize asks the client for a size. A zero size means "keep what you
// chose"; X clients sized their window at creation, so there is nothing to
// send. The confirming ConfigureNotify feeds the size back in.
func (s *X11Surface) RequestResize(size shell.Size) {
	if size.W <= 0 || size.H <= 0 {
		return
	}
	xproto.ConfigureWindow(s.x.conn, s.wid,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(size.W), uint32(size.H)})
}

func (s *X11Surface) SetActivated(activated bool) {
	if activated {
		xproto.SetInputFocus(s.x.conn, xproto.InputFocusPointerRoot, s.wid, xproto.TimeCurrentTime)
	}
}

func (s *X11Surface) SetResizing(resizing bool) {
	// X11 has no interactive-resize state to advertise.
}

func (s *X11Surface) RequestClose() {
	if s.x.supportsDelete(s.wid) {
		ev := xproto.ClientMessageEvent{
			Format: 32,
			Window: s.wid,
			Type:   s.x.atoms.protocols,
			Data: xproto.ClientMessageDataUnionData32New([]uint32{
				uint32(s.x.atoms.deleteWindow), uint32(xproto.TimeCurrentTime), 0, 0, 0,
			}),
		}
		xproto.SendEvent(s.x.conn, false, s.wid, 0, string(ev.Bytes()))
		return
	}
	xproto.KillClient(s.x.conn, uint32(s.wid))
}

func (s *X11Surface) Bounds() shell.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return shell.Rect{W: s.size.W, H: s.size.H}
}

func (s *X11Surface) Commit() render.Commit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit
}

func (s *X11Surface) DamageSince(c render.Commit) []shell.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == s.commit {
		return nil
	}
	return []shell.Rect{{W: s.size.W, H: s.size.H}}
}

func (s *X11Surface) Opaque() []shell.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return []shell.Rect{{W: s.size.W, H: s.size.H}}
}

func (s *X11Surface) Popups() []render.Popup { return nil }

func (s *X11Surface) adoptSize(size shell.Size) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if size == s.size || size.W <= 0 || size.H <= 0 {
		return false
	}
	s.size = size
	s.commit++
	return true
}

func (s *X11Surface) setSizeHints(min, max shell.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.min, s.max = min, max
}

func (s *X11Surface) setParent(parent string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.parent == parent {
		return false
	}
	s.parent = parent
	return true
}

func (s *X11Surface) lastGeo() shell.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.geo
}

func (s *X11Surface) setGeo(geo shell.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geo = geo
}

// X11Layer is a dock window carrying struts. It joins the monitor as a
// top-layer surface; geometry stays whatever the dock asked for.
type X11Layer struct {
	x   *X11
	wid xproto.Window
	id  string

	mu     sync.Mutex
	geo    shell.Rect
	zone   shell.Insets
	commit render.Commit
}

func (x *X11) newLayer(wid xproto.Window) *X11Layer {
	l := &X11Layer{x: x, wid: wid, id: uuid.NewString()}
	if geo, err := xproto.GetGeometry(x.conn, xproto.Drawable(wid)).Reply(); err == nil {
		l.geo = shell.Rect{X: int(geo.X), Y: int(geo.Y), W: int(geo.Width), H: int(geo.Height)}
	}
	l.zone = x.readStruts(wid)
	return l
}

func (l *X11Layer) ID() string { return l.id }

func (l *X11Layer) Layer() shell.Layer { return shell.LayerTop }

func (l *X11Layer) Geometry() shell.Rect {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.geo
}

func (l *X11Layer) ExclusiveZone() shell.Insets {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zone
}

func (l *X11Layer) ExclusiveKeyboard() bool { return false }

func (l *X11Layer) Bounds() shell.Rect {
	l.mu.Lock()
	defer l.mu.Unlock()
	return shell.Rect{W: l.geo.W, H: l.geo.H}
}

func (l *X11Layer) Commit() render.Commit {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commit
}

func (l *X11Layer) DamageSince(c render.Commit) []shell.Rect {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c == l.commit {
		return nil
	}
	return []shell.Rect{{W: l.geo.W, H: l.geo.H}}
}

func (l *X11Layer) Opaque() []shell.Rect { return nil }

func (l *X11Layer) Popups() []render.Popup { return nil }

func (l *X11Layer) adoptGeo(geo shell.Rect) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if geo == l.geo {
		return false
	}
	l.geo = geo
	l.commit++
	return true
}

func (l *X11Layer) setZone(zone shell.Insets) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zone = zone
}

// Property readers.

func (x *X11) property(wid xproto.Window, prop, typ xproto.Atom, words uint32) []byte {
	reply, err := xproto.GetProperty(x.conn, false, wid, prop, typ, 0, words).Reply()
	if err != nil || reply == nil {
		return nil
	}
	return reply.Value
}

func (x *X11) isDock(wid xproto.Window) bool {
	v := x.property(wid, x.atoms.windowType, xproto.AtomAtom, 8)
	for i := 0; i+4 <= len(v); i += 4 {
		if xproto.Atom(xgb.Get32(v[i:])) == x.atoms.typeDock {
			return true
		}
	}
	return false
}

func (x *X11) readStruts(wid xproto.Window) shell.Insets {
	v := x.property(wid, x.atoms.strutPartial, xproto.AtomCardinal, 12)
	if len(v) < 16 {
		v = x.property(wid, x.atoms.strut, xproto.AtomCardinal, 4)
	}
	if len(v) < 16 {
		return shell.Insets{}
	}
	return shell.Insets{
		Left:   int(xgb.Get32(v[0:])),
		Right:  int(xgb.Get32(v[4:])),
		Top:    int(xgb.Get32(v[8:])),
		Bottom: int(xgb.Get32(v[12:])),
	}
}

func (x *X11) readUrgency(wid xproto.Window) bool {
	v := x.property(wid, xproto.AtomWmHints, xproto.AtomWmHints, 9)
	if len(v) < 4 {
		return false
	}
	return xgb.Get32(v)&xUrgencyHint != 0
}

// readSizeHints pulls the WM_NORMAL_HINTS min and max sizes. Field order in
// the property: flags, 4 legacy fields, then min w/h at words 5-6 and max
// w/h at words 7-8.
func (x *X11) readSizeHints(wid xproto.Window) (min, max shell.Size) {
	const (
		pMinSize = 1 << 4
		pMaxSize = 1 << 5
	)
	v := x.property(wid, xproto.AtomWmNormalHints, xproto.AtomWmSizeHints, 18)
	if len(v) < 4 {
		return
	}
	flags := xgb.Get32(v)
	if flags&pMinSize != 0 && len(v) >= 28 {
		min = shell.Size{W: int(xgb.Get32(v[20:])), H: int(xgb.Get32(v[24:]))}
	}
	if flags&pMaxSize != 0 && len(v) >= 36 {
		max = shell.Size{W: int(xgb.Get32(v[28:])), H: int(xgb.Get32(v[32:]))}
	}
	return
}

func (x *X11) readTransient(wid xproto.Window) string {
	v := x.property(wid, xproto.AtomWmTransientFor, xproto.AtomWindow, 1)
	if len(v) < 4 {
		return ""
	}
	if parent, ok := x.surfaces[xproto.Window(xgb.Get32(v))]; ok {
		return parent.id
	}
	return ""
}

func (x *X11) supportsDelete(wid xproto.Window) bool {
	v := x.property(wid, x.atoms.protocols, xproto.AtomAtom, 32)
	for i := 0; i+4 <= len(v); i += 4 {
		if xproto.Atom(xgb.Get32(v[i:])) == x.atoms.deleteWindow {
			return true
		}
	}
	return false
}

func (x *X11) setWMState(wid xproto.Window, state uint32) {
	data := make([]byte, 8)
	xgb.Put32(data, state)
	xproto.ChangeProperty(x.conn, xproto.PropModeReplace, wid,
		x.atoms.wmState, x.atoms.wmState, 32, 2, data)
}

// Frame application.

type appliedState struct {
	geo    shell.Rect
	bw     int
	color  uint32
	parked bool
}

type borderSpec struct {
	minX  int
	color uint32
	ok    bool
}

// ApplyFrame projects the element list onto X: configure and restack client
// windows, set native borders from the border pieces, park hidden clients
// offscreen and clear damaged root regions. Solids, shadows and radii beyond
// that have no X rendition.
func (x *X11) ApplyFrame(els []render.Element, age int) error {
	if a := x.Area(); a != x.trackerA {
		x.tracker.Resize(a)
		x.trackerA = a
	}
	x.reapDead()

	plan := x.tracker.Plan(els, age)

	borders := map[string]borderSpec{}
	for _, el := range els {
		solid, ok := el.(*render.Solid)
		if !ok {
			continue
		}
		id := solid.ID()
		cut := strings.Index(id, "@border")
		if cut < 0 {
			continue
		}
		sid := id[:cut]
		spec := borders[sid]
		g := solid.Geometry()
		if !spec.ok || g.X < spec.minX {
			spec.minX = g.X
		}
		spec.color = pixel(solid.Color())
		spec.ok = true
		borders[sid] = spec
	}

	var order []xproto.Window
	seen := map[xproto.Window]bool{}
	for _, el := range els {
		var src render.Content
		var geo shell.Rect
		switch e := el.(type) {
		case *render.Surface:
			src, geo = e.Source(), e.Geometry()
		case *render.Clipped:
			src, geo = e.Source(), e.Geometry()
		default:
			continue
		}

		switch s := src.(type) {
		case *X11Surface:
			bw := 0
			var color uint32
			if spec, ok := borders[s.id]; ok && spec.ok {
				bw = geo.X - spec.minX
				color = spec.color
			}
			x.place(s, geo, bw, color)
			order = append(order, s.wid)
			seen[s.wid] = true
		case *X11Layer:
			x.placeLayer(s, geo)
			order = append(order, s.wid)
			seen[s.wid] = true
		}
	}

	x.restack(order)

	for wid, st := range x.applied {
		if !seen[wid] && !st.parked {
			x.park(wid, st)
		}
	}

	for _, r := range plan {
		xproto.ClearArea(x.conn, false, x.root,
			int16(r.X), int16(r.Y), uint16(r.W), uint16(r.H))
	}

	x.mu.Lock()
	x.painted = true
	x.mu.Unlock()
	return nil
}

func (x *X11) place(s *X11Surface, geo shell.Rect, bw int, color uint32) {
	next := appliedState{geo: geo, bw: bw, color: color}
	st, ok := x.applied[s.wid]
	if ok && st == next {
		return
	}
	if !ok || st.color != color {
		xproto.ChangeWindowAttributes(x.conn, s.wid, xproto.CwBorderPixel, []uint32{color})
	}
	// X positions the outer corner, border included.
	xproto.ConfigureWindow(x.conn, s.wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|
			xproto.ConfigWindowBorderWidth,
		[]uint32{u32i(geo.X - bw), u32i(geo.Y - bw), uint32(geo.W), uint32(geo.H), uint32(bw)})
	x.applied[s.wid] = next
	s.setGeo(geo)
}

func (x *X11) placeLayer(l *X11Layer, geo shell.Rect) {
	next := appliedState{geo: geo}
	if st, ok := x.applied[l.wid]; ok && st == next {
		return
	}
	xproto.ConfigureWindow(x.conn, l.wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{u32i(geo.X), u32i(geo.Y), uint32(geo.W), uint32(geo.H)})
	x.applied[l.wid] = next
}

func (x *X11) restack(order []xproto.Window) {
	if len(order) == 0 || slices.Equal(order, x.lastOrder) {
		return
	}
	xproto.ConfigureWindow(x.conn, order[0],
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeBelow})
	for i := 1; i < len(order); i++ {
		xproto.ConfigureWindow(x.conn, order[i],
			xproto.ConfigWindowSibling|xproto.ConfigWindowStackMode,
			[]uint32{uint32(order[i-1]), xproto.StackModeAbove})
	}
	x.lastOrder = order
}

// park moves a hidden client offscreen instead of unmapping it, so no
// synthetic UnmapNotify bookkeeping is needed.
func (x *X11) park(wid xproto.Window, st appliedState) {
	off := -(x.Area().W + st.geo.W + 2*st.bw)
	xproto.ConfigureWindow(x.conn, wid, xproto.ConfigWindowX, []uint32{u32i(off)})
	st.parked = true
	x.applied[wid] = st
}

func (x *X11) reapDead() {
	x.mu.Lock()
	dead := x.dead
	x.dead = nil
	x.mu.Unlock()
	for _, wid := range dead {
		delete(x.applied, wid)
	}
}

func u32i(v int) uint32 {
	return uint32(int32(v))
}
