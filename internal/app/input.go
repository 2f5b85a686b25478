package app

import (
	"context"

	"github.com/lx7/monotile/internal/backend"
	"github.com/lx7/monotile/internal/shell"
	"github.com/lx7/monotile/internal/wm"
)

type grabKind int

const (
	grabMove grabKind = iota
	grabResize
)

// grab is an active pointer drag on a floating window.
type grab struct {
	kind   grabKind
	id     shell.WindowID
	button backend.Button
	start  shell.Point
	geo    shell.Rect
}

func (m *Model) keyPressed(ev backend.KeyPressed) (wm.Model, wm.Render) {
	// An exclusive layer surface owns the keyboard outright.
	if m.mon.ExclusiveLayerSurface() != nil {
		return m, nil
	}
	for _, b := range m.bindings {
		if b.Mods != ev.Mods || b.Keysym != ev.Keysym {
			continue
		}
		if m.dispatch(b.Action) {
			return m, wm.Quit
		}
		return m, m.changed()
	}
	return m, nil
}

func (m *Model) buttonPressed(ev backend.ButtonPressed) (wm.Model, wm.Render) {
	m.cursor = ev.Pos
	if ev.Mods == m.ptrMods {
		switch ev.Button {
		case backend.ButtonLeft:
			return m, m.startGrab(grabMove, ev)
		case backend.ButtonRight:
			return m, m.startGrab(grabResize, ev)
		case backend.ButtonMiddle:
			return m, m.toggleFloatingUnder(ev.Pos)
		}
	}

	// Unbound press: raise and focus whatever is under the pointer.
	id, ok := m.mon.WindowUnder(ev.Pos)
	if !ok {
		return m, nil
	}
	m.mon.Raise(id)
	m.focus(id)
	return m, m.changed()
}

// startGrab begins a drag on the floating window under the pointer. Tiled
// windows ignore pointer gestures.
func (m *Model) startGrab(kind grabKind, ev backend.ButtonPressed) wm.Render {
	id, ok := m.mon.WindowUnder(ev.Pos)
	if !ok {
		return nil
	}
	w, ok := m.mon.Get(id)
	if !ok || !w.Floating {
		return nil
	}
	m.grab = &grab{kind: kind, id: id, button: ev.Button, start: ev.Pos, geo: w.FloatGeo}
	cursor := backend.CursorMove
	if kind == grabResize {
		w.Surface.SetResizing(true)
		cursor = backend.CursorResize
	}
	return func(ctx context.Context, b *backend.Backend) error {
		b.SetCursor(cursor)
		return nil
	}
}

func (m *Model) toggleFloatingUnder(p shell.Point) wm.Render {
	id, ok := m.mon.WindowUnder(p)
	if !ok {
		return nil
	}
	m.mon.ToggleFloating(id)
	m.refocus()
	return m.changed()
}

func (m *Model) buttonReleased(ev backend.ButtonReleased) (wm.Model, wm.Render) {
	m.cursor = ev.Pos
	g := m.grab
	if g == nil || ev.Button != g.button {
		return m, nil
	}
	m.grab = nil
	if w, ok := m.mon.Get(g.id); ok && g.kind == grabResize {
		w.Surface.SetResizing(false)
		w.Surface.RequestResize(w.FloatGeo.Size())
	}
	return m, m.changed()
}

func (m *Model) pointerMoved(ev backend.PointerMoved) (wm.Model, wm.Render) {
	m.cursor = ev.Pos
	if m.grab != nil {
		return m, m.dragTo(ev.Pos)
	}
	if !m.cfg.FocusFollowsCursor {
		return m, nil
	}
	id, ok := m.mon.WindowUnder(ev.Pos)
	if !ok || id == m.mon.ActiveID() {
		return m, nil
	}
	m.focus(id)
	return m, m.changed()
}

func (m *Model) dragTo(p shell.Point) wm.Render {
	g := m.grab
	w, ok := m.mon.Get(g.id)
	if !ok {
		m.grab = nil
		return nil
	}
	dx, dy := p.X-g.start.X, p.Y-g.start.Y
	switch g.kind {
	case grabMove:
		w.FloatGeo.X = g.geo.X + dx
		w.FloatGeo.Y = g.geo.Y + dy
	case grabResize:
		size := clampSize(shell.Size{W: g.geo.W + dx, H: g.geo.H + dy},
			w.Surface.MinSize(), w.Surface.MaxSize())
		w.FloatGeo.W, w.FloatGeo.H = size.W, size.H
		w.Surface.RequestResize(size)
	}
	return m.changed()
}

// clampSize bounds s to the client's limits. A zero max axis means
// unconstrained; the floor is one pixel either way.
func clampSize(s, lo, hi shell.Size) shell.Size {
	s.W = max(s.W, max(lo.W, 1))
	s.H = max(s.H, max(lo.H, 1))
	if hi.W > 0 {
		s.W = min(s.W, hi.W)
	}
	if hi.H > 0 {
		s.H = min(s.H, hi.H)
	}
	return s
}
