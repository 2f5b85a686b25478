package shell

import "slices"

// Monitor owns one output's windows, tags and layer surfaces. All methods
// run on the event loop goroutine; none of them lock.
//
// Mutators that can change what is visible recompute the active tag's layout
// before returning, so callers observe consistent geometry. Operations given
// a stale id or an out-of-range tag do nothing; those are benign races with
// windows going away.
type Monitor struct {
	area     Rect
	metrics  Metrics
	registry Registry
	tags     []*Tag
	active   int
	prev     int
	layers   []LayerSurface
}

func NewMonitor(area Rect, metrics Metrics, tagCount int, layout TilingLayout) *Monitor {
	tags := make([]*Tag, max(tagCount, 1))
	for i := range tags {
		tags[i] = &Tag{Layout: layout}
	}
	return &Monitor{
		area:    area,
		metrics: metrics,
		tags:    tags,
	}
}

func (m *Monitor) Area() Rect {
	return m.area
}

// UsableArea is the output minus the exclusive zones reserved by layer
// surfaces. Tiling and float placement both happen inside it.
func (m *Monitor) UsableArea() Rect {
	var in Insets
	for _, ls := range m.layers {
		z := ls.ExclusiveZone()
		in.Top += z.Top
		in.Bottom += z.Bottom
		in.Left += z.Left
		in.Right += z.Right
	}
	return m.area.Shrink(in)
}

// Resize follows an output mode change.
func (m *Monitor) Resize(area Rect) {
	m.area = area
	m.RecomputeLayout()
}

func (m *Monitor) Metrics() Metrics {
	return m.metrics
}

func (m *Monitor) TagCount() int {
	return len(m.tags)
}

func (m *Monitor) ActiveTagIndex() int {
	return m.active
}

func (m *Monitor) PrevTagIndex() int {
	return m.prev
}

func (m *Monitor) ActiveTag() *Tag {
	return m.tags[m.active]
}

func (m *Monitor) Tag(i int) (*Tag, bool) {
	if i < 0 || i >= len(m.tags) {
		return nil, false
	}
	return m.tags[i], true
}

func (m *Monitor) Get(id WindowID) (*Window, bool) {
	return m.registry.Get(id)
}

// FindBySurface resolves a surface identifier back to its window.
func (m *Monitor) FindBySurface(surfaceID string) (WindowID, bool) {
	var (
		found WindowID
		ok    bool
	)
	m.registry.Each(func(id WindowID, w *Window) {
		if !ok && w.Surface.ID() == surfaceID {
			found, ok = id, true
		}
	})
	return found, ok
}

// Map inserts a new window on the active tag. The initial floating rect uses
// the client's committed size per axis when it has one, else three quarters
// of the usable area, centered either way.
func (m *Monitor) Map(s Surface, floating bool) WindowID {
	area := m.UsableArea()
	size := s.Size()
	fw, fh := size.W, size.H
	if fw <= 0 {
		fw = area.W * 3 / 4
	}
	if fh <= 0 {
		fh = area.H * 3 / 4
	}

	w := &Window{
		Surface:  s,
		Floating: floating,
		FloatGeo: Rect{
			X: area.X + (area.W-fw)/2,
			Y: area.Y + (area.H-fh)/2,
			W: fw,
			H: fh,
		},
	}
	id := m.registry.Insert(w)
	m.ActiveTag().Add(id, floating)
	m.RecomputeLayout()
	return id
}

// Unmap removes the window from every tag and the registry.
func (m *Monitor) Unmap(id WindowID) {
	for _, t := range m.tags {
		t.Remove(id)
	}
	m.registry.Remove(id)
	m.RecomputeLayout()
}

// RecomputeLayout assigns tiled geometry on the active tag in stack order and
// issues one resize request per tiled window. Calling it again without an
// intervening mutation assigns the same geometry and issues the same
// requests.
func (m *Monitor) RecomputeLayout() {
	t := m.ActiveTag()
	rects := t.Layout.Rects(len(t.Tiled), m.UsableArea(), m.metrics)
	for i, id := range t.Tiled {
		w, ok := m.registry.Get(id)
		if !ok {
			continue
		}
		w.TiledGeo = rects[i]
		w.Surface.RequestResize(rects[i].Size())
	}
}

// SetFocus gives id keyboard focus and returns its surface for the backend
// to route input to. Every other window loses its focused flag; only the one
// that actually held it is sent a deactivate. A zero or stale id just clears
// focus and returns nil.
func (m *Monitor) SetFocus(id WindowID) Surface {
	m.registry.Each(func(_ WindowID, w *Window) {
		if w.Focused {
			w.Focused = false
			w.Surface.SetActivated(false)
		}
	})

	w, ok := m.registry.Get(id)
	if !ok {
		return nil
	}
	w.Focused = true
	w.Urgent = false
	w.Surface.SetActivated(true)
	m.ActiveTag().Promote(id)
	return w.Surface
}

// SetUrgent marks a window as requesting attention.
func (m *Monitor) SetUrgent(id WindowID, urgent bool) {
	if w, ok := m.registry.Get(id); ok && !w.Focused {
		w.Urgent = urgent
	}
}

// ActiveID is the focus-history head of the active tag.
func (m *Monitor) ActiveID() WindowID {
	t := m.ActiveTag()
	if len(t.FocusStack) == 0 {
		return WindowID{}
	}
	return t.FocusStack[0]
}

func (m *Monitor) ActiveWindow() (*Window, bool) {
	return m.registry.Get(m.ActiveID())
}

// SetActiveTag switches the visible tag, remembering the previous one.
func (m *Monitor) SetActiveTag(tag int) {
	if tag < 0 || tag >= len(m.tags) {
		return
	}
	m.prev = m.active
	m.active = tag
	m.RecomputeLayout()
}

// TogglePrevTag swaps the active and previously active tags.
func (m *Monitor) TogglePrevTag() {
	m.active, m.prev = m.prev, m.active
	m.RecomputeLayout()
}

// MoveActiveToTag moves the focused window to tag, dropping every other
// membership.
func (m *Monitor) MoveActiveToTag(tag int) {
	if tag < 0 || tag >= len(m.tags) {
		return
	}
	id := m.ActiveID()
	w, ok := m.registry.Get(id)
	if !ok {
		return
	}
	for _, t := range m.tags {
		t.Remove(id)
	}
	m.tags[tag].Add(id, w.Floating)
	m.RecomputeLayout()
}

// ToggleActiveTag adds or removes the focused window's membership on tag. A
// window always belongs to at least one tag, so removing the last membership
// is refused.
func (m *Monitor) ToggleActiveTag(tag int) {
	if tag < 0 || tag >= len(m.tags) {
		return
	}
	id := m.ActiveID()
	w, ok := m.registry.Get(id)
	if !ok {
		return
	}
	target := m.tags[tag]
	if !target.Contains(id) {
		target.Add(id, w.Floating)
	} else {
		n := 0
		for _, t := range m.tags {
			if t.Contains(id) {
				n++
			}
		}
		if n > 1 {
			target.Remove(id)
		}
	}
	m.RecomputeLayout()
}

// SetFloating switches a window between tiled and floating. On the way out
// of tiling the client is asked back to its floating size. Membership moves
// lists on every tag that holds the window.
func (m *Monitor) SetFloating(id WindowID, floating bool) {
	w, ok := m.registry.Get(id)
	if !ok || w.Floating == floating {
		return
	}
	w.Floating = floating
	if floating {
		w.Surface.RequestResize(w.FloatGeo.Size())
	}
	for _, t := range m.tags {
		if t.Contains(id) {
			t.Add(id, floating)
		}
	}
	m.RecomputeLayout()
}

func (m *Monitor) ToggleFloating(id WindowID) {
	if w, ok := m.registry.Get(id); ok {
		m.SetFloating(id, !w.Floating)
	}
}

func (m *Monitor) ToggleActiveFloating() {
	m.ToggleFloating(m.ActiveID())
}

// KillActive asks the focused window to close. The window disappears later,
// when the backend reports it gone.
func (m *Monitor) KillActive() {
	if w, ok := m.ActiveWindow(); ok {
		w.Surface.RequestClose()
	}
}

func (m *Monitor) MoveActiveInStack(delta int) {
	if m.ActiveTag().MoveInStack(m.ActiveID(), delta) {
		m.RecomputeLayout()
	}
}

func (m *Monitor) ZoomActive() {
	if m.ActiveTag().Zoom(m.ActiveID()) {
		m.RecomputeLayout()
	}
}

func (m *Monitor) FocusCycle(delta int) (WindowID, bool) {
	return m.ActiveTag().FocusCycle(delta)
}

func (m *Monitor) AdjustMasterFactor(delta float64) {
	m.ActiveTag().AdjustMasterFactor(delta)
	m.RecomputeLayout()
}

func (m *Monitor) AdjustMasterCount(delta int) {
	m.ActiveTag().AdjustMasterCount(delta)
	m.RecomputeLayout()
}

// Raise lifts a floating window to the top of the active tag's z-order.
func (m *Monitor) Raise(id WindowID) {
	m.ActiveTag().Raise(id)
}

// VisibleWindows is the active tag's paint order, bottom to top.
func (m *Monitor) VisibleWindows() []WindowID {
	return m.ActiveTag().WindowIDs()
}

// WindowUnder finds the topmost window whose visible rect contains p.
func (m *Monitor) WindowUnder(p Point) (WindowID, bool) {
	ids := m.VisibleWindows()
	for i := len(ids) - 1; i >= 0; i-- {
		if w, ok := m.registry.Get(ids[i]); ok && w.VisibleGeo().Contains(p) {
			return ids[i], true
		}
	}
	return WindowID{}, false
}

func (m *Monitor) AddLayerSurface(ls LayerSurface) {
	m.layers = append(m.layers, ls)
	m.RecomputeLayout()
}

func (m *Monitor) RemoveLayerSurface(id string) {
	m.layers = slices.DeleteFunc(m.layers, func(ls LayerSurface) bool {
		return ls.ID() == id
	})
	m.RecomputeLayout()
}

// LayersOn returns the surfaces of one shelf in stacking order, bottom to
// top within the shelf.
func (m *Monitor) LayersOn(layer Layer) []LayerSurface {
	var out []LayerSurface
	for _, ls := range m.layers {
		if ls.Layer() == layer {
			out = append(out, ls)
		}
	}
	return out
}

// ExclusiveLayerSurface is the topmost overlay or top layer surface that
// demands exclusive keyboard input, if any. While one is present it owns the
// keyboard regardless of window focus.
func (m *Monitor) ExclusiveLayerSurface() LayerSurface {
	for _, layer := range []Layer{LayerOverlay, LayerTop} {
		ls := m.LayersOn(layer)
		for i := len(ls) - 1; i >= 0; i-- {
			if ls[i].ExclusiveKeyboard() {
				return ls[i]
			}
		}
	}
	return nil
}

// HitKind classifies what SurfaceUnder found.
type HitKind int

const (
	HitNone HitKind = iota
	HitWindow
	HitLayer
)

type Hit struct {
	Kind   HitKind
	Window WindowID
	Layer  LayerSurface
}

// SurfaceUnder resolves the pointer target at p: overlay and top layers
// first, then windows, then bottom and background layers.
func (m *Monitor) SurfaceUnder(p Point) Hit {
	for _, layer := range []Layer{LayerOverlay, LayerTop} {
		if ls := m.layerUnder(layer, p); ls != nil {
			return Hit{Kind: HitLayer, Layer: ls}
		}
	}
	if id, ok := m.WindowUnder(p); ok {
		return Hit{Kind: HitWindow, Window: id}
	}
	for _, layer := range []Layer{LayerBottom, LayerBackground} {
		if ls := m.layerUnder(layer, p); ls != nil {
			return Hit{Kind: HitLayer, Layer: ls}
		}
	}
	return Hit{}
}

func (m *Monitor) layerUnder(layer Layer, p Point) LayerSurface {
	ls := m.LayersOn(layer)
	for i := len(ls) - 1; i >= 0; i-- {
		if ls[i].Geometry().Contains(p) {
			return ls[i]
		}
	}
	return nil
}
