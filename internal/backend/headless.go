package backend

import (
	"github.com/lx7/monotile/internal/render"
	"github.com/lx7/monotile/internal/shell"
)

const headlessQueue = 64

type HeadlessOptions struct {
	Area  shell.Rect // zero means 1000x800
	Scale float64    // zero means 1
}

// NewHeadless builds a display-less backend for tests. The returned Headless
// handle injects events and inspects applied frames. It expects a single
// driving goroutine and takes no locks.
func NewHeadless(opts HeadlessOptions) (*Backend, *Headless) {
	if opts.Area.Empty() {
		opts.Area = shell.Rect{W: 1000, H: 800}
	}
	if opts.Scale == 0 {
		opts.Scale = 1
	}
	h := &Headless{
		area:    opts.Area,
		age:     1,
		msgC:    make(chan any, headlessQueue),
		tracker: render.NewTracker(opts.Area, opts.Scale, 0),
	}
	return &Backend{kind: KindHeadless, d: h}, h
}

type Headless struct {
	area    shell.Rect
	age     int
	msgC    chan any
	tracker *render.Tracker
	pending bool
	frames  []Frame
	cursors []Cursor
	closed  bool
}

// Frame is one applied frame: the composed elements and the planned damage.
type Frame struct {
	Elements []render.Element
	Damage   []shell.Rect
}

func (h *Headless) Events() <-chan any { return h.msgC }

func (h *Headless) Area() shell.Rect { return h.area }

func (h *Headless) ScheduleRender() {
	if h.pending || h.closed {
		return
	}
	h.pending = true
	h.msgC <- RenderRequested{Age: h.age}
}

func (h *Headless) ApplyFrame(els []render.Element, age int) error {
	h.pending = false
	h.frames = append(h.frames, Frame{
		Elements: els,
		Damage:   h.tracker.Plan(els, age),
	})
	return nil
}

func (h *Headless) SetCursor(c Cursor) {
	h.cursors = append(h.cursors, c)
}

func (h *Headless) Close() error {
	if !h.closed {
		h.closed = true
		close(h.msgC)
	}
	return nil
}

// Push queues a message for the loop. The queue holds 64 messages; tests
// that do not drain must stay under that.
func (h *Headless) Push(msg any) {
	h.msgC <- msg
}

// SetAge controls the age reported by the next scheduled render.
func (h *Headless) SetAge(age int) {
	h.age = age
}

// Resize changes the output and queues the resize message.
func (h *Headless) Resize(area shell.Rect) {
	h.area = area
	h.tracker.Resize(area)
	h.Push(OutputResized{Area: area})
}

func (h *Headless) Frames() []Frame { return h.frames }

func (h *Headless) LastFrame() (Frame, bool) {
	if len(h.frames) == 0 {
		return Frame{}, false
	}
	return h.frames[len(h.frames)-1], true
}

func (h *Headless) ResetFrames() {
	h.frames = nil
}

// Cursors returns every cursor change in order.
func (h *Headless) Cursors() []Cursor { return h.cursors }

// HeadlessSurface is an obedient client: resize requests are adopted as the
// committed size immediately. It implements both the shell surface handle
// and the render content contract.
type HeadlessSurface struct {
	id     string
	size   shell.Size
	min    shell.Size
	max    shell.Size
	parent string
	commit render.Commit
	popups []render.Popup

	resizes   []shell.Size
	activated []bool
	resizing  []bool
	closed    int
}

func NewHeadlessSurface(id string) *HeadlessSurface {
	return &HeadlessSurface{id: id}
}

func (s *HeadlessSurface) ID() string { return s.id }

func (s *HeadlessSurface) Size() shell.Size { return s.size }

func (s *HeadlessSurface) MinSize() shell.Size { return s.min }

func (s *HeadlessSurface) MaxSize() shell.Size { return s.max }

func (s *HeadlessSurface) Parent() string { return s.parent }

func (s *HeadlessSurface) RequestResize(size shell.Size) {
	s.resizes = append(s.resizes, size)
	if size.W > 0 && size.H > 0 {
		s.size = size
	}
}

func (s *HeadlessSurface) SetActivated(on bool) {
	s.activated = append(s.activated, on)
}

func (s *HeadlessSurface) SetResizing(on bool) {
	s.resizing = append(s.resizing, on)
}

func (s *HeadlessSurface) RequestClose() {
	s.closed++
}

func (s *HeadlessSurface) Bounds() shell.Rect {
	return shell.Rect{W: s.size.W, H: s.size.H}
}

func (s *HeadlessSurface) Commit() render.Commit { return s.commit }

func (s *HeadlessSurface) DamageSince(c render.Commit) []shell.Rect {
	if c == s.commit {
		return nil
	}
	return []shell.Rect{s.Bounds()}
}

func (s *HeadlessSurface) Opaque() []shell.Rect {
	return []shell.Rect{s.Bounds()}
}

func (s *HeadlessSurface) Popups() []render.Popup { return s.popups }

// Test controls.

func (s *HeadlessSurface) SetSize(size shell.Size) { s.size = size }

func (s *HeadlessSurface) SetMinSize(m shell.Size) { s.min = m }

func (s *HeadlessSurface) SetMaxSize(m shell.Size) { s.max = m }

func (s *HeadlessSurface) SetParent(id string) { s.parent = id }

func (s *HeadlessSurface) SetPopups(p []render.Popup) { s.popups = p }

// Bump marks a new commit on the surface.
func (s *HeadlessSurface) Bump() { s.commit++ }

func (s *HeadlessSurface) Resizes() []shell.Size { return s.resizes }

func (s *HeadlessSurface) Activated() []bool { return s.activated }

func (s *HeadlessSurface) Resizing() []bool { return s.resizing }

func (s *HeadlessSurface) CloseRequests() int { return s.closed }

// HeadlessLayer is a test layer surface (a bar, an OSD).
type HeadlessLayer struct {
	id     string
	layer  shell.Layer
	geo    shell.Rect
	zone   shell.Insets
	kbd    bool
	commit render.Commit
}

func NewHeadlessLayer(id string, layer shell.Layer, geo shell.Rect) *HeadlessLayer {
	return &HeadlessLayer{id: id, layer: layer, geo: geo}
}

func (l *HeadlessLayer) ID() string { return l.id }

func (l *HeadlessLayer) Layer() shell.Layer { return l.layer }

func (l *HeadlessLayer) Geometry() shell.Rect { return l.geo }

func (l *HeadlessLayer) ExclusiveZone() shell.Insets { return l.zone }

func (l *HeadlessLayer) ExclusiveKeyboard() bool { return l.kbd }

func (l *HeadlessLayer) Bounds() shell.Rect {
	return shell.Rect{W: l.geo.W, H: l.geo.H}
}

func (l *HeadlessLayer) Commit() render.Commit { return l.commit }

func (l *HeadlessLayer) DamageSince(c render.Commit) []shell.Rect {
	if c == l.commit {
		return nil
	}
	return []shell.Rect{l.Bounds()}
}

func (l *HeadlessLayer) Opaque() []shell.Rect { return nil }

func (l *HeadlessLayer) Popups() []render.Popup { return nil }

func (l *HeadlessLayer) SetExclusiveZone(zone shell.Insets) { l.zone = zone }

func (l *HeadlessLayer) SetExclusiveKeyboard(on bool) { l.kbd = on }
