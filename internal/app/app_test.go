package app

import (
	"context"
	"slices"
	"testing"

	"github.com/lx7/monotile/internal/backend"
	"github.com/lx7/monotile/internal/bus"
	"github.com/lx7/monotile/internal/config"
	"github.com/lx7/monotile/internal/render"
	"github.com/lx7/monotile/internal/shell"
)

func testConfig() config.Config {
	return config.Config{
		FocusFollowsCursor: true,
		BorderWidth:        2,
		Scale:              1,
		TagCount:           9,
		MasterFactor:       0.54,
		MasterCount:        1,
		ResizeStep:         0.01,
		Terminal:           "xterm",
		Modifier:           "logo",
		Colors: config.Colors{
			Background: "#444444ff",
			Root:       "#000000ff",
			Border:     "#444444ff",
			Focus:      "#458588ff",
			Urgent:     "#ff0000ff",
		},
		FloatingRadius: 12,
		Shadow:         config.Shadow{Color: "#00000073", Softness: 25, Spread: 5, OffsetY: 5},
	}
}

func newModel(t *testing.T) (*Model, *backend.Backend, *backend.Headless) {
	t.Helper()
	cfg := testConfig()
	style, err := cfg.Style()
	if err != nil {
		t.Fatal(err)
	}
	b, h := backend.NewHeadless(backend.HeadlessOptions{})
	return New(Options{Config: cfg, Style: style, Area: b.Area()}), b, h
}

// mapSurface drives a surface through the two-commit flow.
func mapSurface(t *testing.T, m *Model, s *backend.HeadlessSurface) shell.WindowID {
	t.Helper()
	m.Update(backend.SurfaceCreated{Surface: s})
	m.Update(backend.SurfaceCommitted{ID: s.ID()})
	m.Update(backend.SurfaceCommitted{ID: s.ID(), HasBuffer: true})
	id, ok := m.mon.FindBySurface(s.ID())
	if !ok {
		t.Fatalf("surface %s did not map", s.ID())
	}
	return id
}

func TestPendingFlowMapsOnBufferCommit(t *testing.T) {
	m, _, _ := newModel(t)
	s := backend.NewHeadlessSurface("a")

	m.Update(backend.SurfaceCreated{Surface: s})
	if _, ok := m.mon.FindBySurface("a"); ok {
		t.Fatal("surface mapped before any commit")
	}

	_, render := m.Update(backend.SurfaceCommitted{ID: "a"})
	if render != nil {
		t.Error("expected no render before the buffer commit")
	}
	if got := s.Resizes(); len(got) != 1 || got[0] != (shell.Size{}) {
		t.Fatalf("expected one empty configure, got %v", got)
	}

	// A second bufferless commit must not resend the initial configure.
	m.Update(backend.SurfaceCommitted{ID: "a"})
	if got := s.Resizes(); len(got) != 1 {
		t.Fatalf("initial configure sent twice: %v", got)
	}

	s.SetSize(shell.Size{W: 640, H: 480})
	_, render = m.Update(backend.SurfaceCommitted{ID: "a", HasBuffer: true})
	if render == nil {
		t.Fatal("expected a render after mapping")
	}
	id, ok := m.mon.FindBySurface("a")
	if !ok {
		t.Fatal("surface not mapped after buffer commit")
	}
	w, _ := m.mon.Get(id)
	if w.Floating {
		t.Error("plain toplevel should tile")
	}
	if !w.Focused {
		t.Error("mapped window should take focus")
	}
	if act := s.Activated(); len(act) == 0 || !act[len(act)-1] {
		t.Error("expected the surface to be activated")
	}
}

func TestPendingFloatHeuristics(t *testing.T) {
	m, _, _ := newModel(t)

	parent := backend.NewHeadlessSurface("parent")
	mapSurface(t, m, parent)

	child := backend.NewHeadlessSurface("child")
	child.SetParent("parent")
	id := mapSurface(t, m, child)
	if w, _ := m.mon.Get(id); !w.Floating {
		t.Error("child window should float")
	}

	fixed := backend.NewHeadlessSurface("fixed")
	fixed.SetMinSize(shell.Size{W: 300, H: 200})
	fixed.SetMaxSize(shell.Size{W: 300, H: 200})
	id = mapSurface(t, m, fixed)
	if w, _ := m.mon.Get(id); !w.Floating {
		t.Error("fixed-size window should float")
	}

	free := backend.NewHeadlessSurface("free")
	free.SetMinSize(shell.Size{W: 100, H: 100})
	free.SetMaxSize(shell.Size{W: 1000, H: 1000})
	id = mapSurface(t, m, free)
	if w, _ := m.mon.Get(id); w.Floating {
		t.Error("resizable window should tile")
	}
}

func TestPendingOrphanChildPanics(t *testing.T) {
	m, _, _ := newModel(t)
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an orphan child commit")
		}
	}()

	s := backend.NewHeadlessSurface("child")
	s.SetParent("ghost")
	m.Update(backend.SurfaceCreated{Surface: s})
	m.Update(backend.SurfaceCommitted{ID: "child"})
	m.Update(backend.SurfaceCommitted{ID: "child", HasBuffer: true})
}

func TestDestroyRefocuses(t *testing.T) {
	m, _, _ := newModel(t)
	a := backend.NewHeadlessSurface("a")
	b := backend.NewHeadlessSurface("b")
	idA := mapSurface(t, m, a)
	mapSurface(t, m, b)

	m.Update(backend.SurfaceDestroyed{ID: "b"})
	if _, ok := m.mon.FindBySurface("b"); ok {
		t.Fatal("destroyed surface still mapped")
	}
	if w, _ := m.mon.Get(idA); !w.Focused {
		t.Error("focus should fall back to the remaining window")
	}
}

func TestDestroyPendingSurface(t *testing.T) {
	m, _, _ := newModel(t)
	s := backend.NewHeadlessSurface("a")
	m.Update(backend.SurfaceCreated{Surface: s})
	m.Update(backend.SurfaceDestroyed{ID: "a"})

	if len(m.pending) != 0 {
		t.Fatalf("expected empty pending list, got %d", len(m.pending))
	}
}

func TestKeyBindingCyclesFocus(t *testing.T) {
	m, _, _ := newModel(t)
	a := backend.NewHeadlessSurface("a")
	b := backend.NewHeadlessSurface("b")
	idA := mapSurface(t, m, a)
	mapSurface(t, m, b)

	_, render := m.Update(backend.KeyPressed{Mods: backend.Mods{Logo: true}, Keysym: xkLeft})
	if render == nil {
		t.Fatal("bound key should produce a render")
	}
	if w, _ := m.mon.Get(idA); !w.Focused {
		t.Error("focus should cycle to the first tiled window")
	}
}

func TestKeyBindingQuit(t *testing.T) {
	m, b, _ := newModel(t)

	_, render := m.Update(backend.KeyPressed{
		Mods:   backend.Mods{Ctrl: true, Alt: true},
		Keysym: xkTerminateServer,
	})
	if render == nil {
		t.Fatal("quit binding should return a render")
	}
	if err := render(context.Background(), b); err == nil {
		t.Error("quit render should stop the loop")
	}
}

func TestUnboundKeyIgnored(t *testing.T) {
	m, _, _ := newModel(t)
	if _, render := m.Update(backend.KeyPressed{Keysym: xkZ}); render != nil {
		t.Error("unbound key should be ignored")
	}
}

func TestExclusiveLayerBypassesBindings(t *testing.T) {
	m, _, _ := newModel(t)
	a := backend.NewHeadlessSurface("a")
	idA := mapSurface(t, m, a)

	lock := backend.NewHeadlessLayer("lock", shell.LayerOverlay, shell.Rect{W: 1000, H: 800})
	lock.SetExclusiveKeyboard(true)
	m.Update(backend.LayerAdded{Surface: lock})

	if w, _ := m.mon.Get(idA); w.Focused {
		t.Error("window focus should clear while the layer holds the keyboard")
	}
	if _, render := m.Update(backend.KeyPressed{Mods: backend.Mods{Logo: true}, Keysym: xkLeft}); render != nil {
		t.Error("bindings should be bypassed under an exclusive layer")
	}

	m.Update(backend.LayerRemoved{ID: "lock"})
	if w, _ := m.mon.Get(idA); !w.Focused {
		t.Error("window focus should return when the layer goes away")
	}
}

func TestMoveGrab(t *testing.T) {
	m, b, h := newModel(t)
	s := backend.NewHeadlessSurface("float")
	s.SetMinSize(shell.Size{W: 300, H: 200})
	s.SetMaxSize(shell.Size{W: 300, H: 200})
	s.SetSize(shell.Size{W: 300, H: 200})
	id := mapSurface(t, m, s)

	// Centered at 300x200 inside 1000x800.
	w, _ := m.mon.Get(id)
	if (w.FloatGeo != shell.Rect{X: 350, Y: 300, W: 300, H: 200}) {
		t.Fatalf("unexpected initial float geometry %v", w.FloatGeo)
	}

	_, render := m.Update(backend.ButtonPressed{
		Mods:   backend.Mods{Logo: true},
		Button: backend.ButtonLeft,
		Pos:    shell.Point{X: 360, Y: 310},
	})
	if m.grab == nil {
		t.Fatal("expected a move grab")
	}
	if render == nil {
		t.Fatal("grab start should set the drag cursor")
	}
	if err := render(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	if got := h.Cursors(); len(got) != 1 || got[0] != backend.CursorMove {
		t.Errorf("expected the move cursor, got %v", got)
	}

	m.Update(backend.PointerMoved{Pos: shell.Point{X: 400, Y: 350}})
	if (w.FloatGeo != shell.Rect{X: 390, Y: 340, W: 300, H: 200}) {
		t.Errorf("unexpected dragged geometry %v", w.FloatGeo)
	}

	m.Update(backend.ButtonReleased{Button: backend.ButtonLeft, Pos: shell.Point{X: 400, Y: 350}})
	if m.grab != nil {
		t.Error("release should end the grab")
	}
}

func TestResizeGrabClamps(t *testing.T) {
	m, _, _ := newModel(t)
	s := backend.NewHeadlessSurface("float")
	// Fixed width: floats, and the width cannot grow past 300.
	s.SetMinSize(shell.Size{W: 300, H: 100})
	s.SetMaxSize(shell.Size{W: 300, H: 0})
	id := mapSurface(t, m, s)

	w, _ := m.mon.Get(id)
	if (w.FloatGeo != shell.Rect{X: 125, Y: 100, W: 750, H: 600}) {
		t.Fatalf("unexpected initial float geometry %v", w.FloatGeo)
	}

	m.Update(backend.ButtonPressed{
		Mods:   backend.Mods{Logo: true},
		Button: backend.ButtonRight,
		Pos:    shell.Point{X: 130, Y: 110},
	})
	if m.grab == nil || m.grab.kind != grabResize {
		t.Fatal("expected a resize grab")
	}

	m.Update(backend.PointerMoved{Pos: shell.Point{X: 230, Y: 60}})
	if (w.FloatGeo.Size() != shell.Size{W: 300, H: 550}) {
		t.Errorf("unexpected clamped size %v", w.FloatGeo.Size())
	}

	m.Update(backend.ButtonReleased{Button: backend.ButtonRight, Pos: shell.Point{X: 230, Y: 60}})
	states := s.Resizing()
	if len(states) != 2 || !states[0] || states[1] {
		t.Errorf("expected resizing true then false, got %v", states)
	}
	last := s.Resizes()[len(s.Resizes())-1]
	if (last != shell.Size{W: 300, H: 550}) {
		t.Errorf("expected a final resize to the clamped size, got %v", last)
	}
}

func TestTiledWindowIgnoresGrab(t *testing.T) {
	m, _, _ := newModel(t)
	s := backend.NewHeadlessSurface("a")
	mapSurface(t, m, s)

	m.Update(backend.ButtonPressed{
		Mods:   backend.Mods{Logo: true},
		Button: backend.ButtonLeft,
		Pos:    shell.Point{X: 100, Y: 100},
	})
	if m.grab != nil {
		t.Error("tiled windows should not start grabs")
	}
}

func TestMiddleClickTogglesFloating(t *testing.T) {
	m, _, _ := newModel(t)
	s := backend.NewHeadlessSurface("a")
	id := mapSurface(t, m, s)

	m.Update(backend.ButtonPressed{
		Mods:   backend.Mods{Logo: true},
		Button: backend.ButtonMiddle,
		Pos:    shell.Point{X: 100, Y: 100},
	})
	if w, _ := m.mon.Get(id); !w.Floating {
		t.Error("middle click should float the window")
	}
}

func TestFocusFollowsCursor(t *testing.T) {
	m, _, _ := newModel(t)
	a := backend.NewHeadlessSurface("a")
	b := backend.NewHeadlessSurface("b")
	idA := mapSurface(t, m, a)
	mapSurface(t, m, b)

	// The master column holds the first window; pointing into it moves
	// focus there.
	m.Update(backend.PointerMoved{Pos: shell.Point{X: 10, Y: 10}})
	if w, _ := m.mon.Get(idA); !w.Focused {
		t.Error("pointer motion should focus the window under it")
	}
}

func TestCommandView(t *testing.T) {
	m, _, _ := newModel(t)

	_, render := m.Update(bus.Command{Name: "view", Arg: 3})
	if render == nil {
		t.Fatal("expected a render from a valid command")
	}
	if got := m.mon.ActiveTagIndex(); got != 2 {
		t.Errorf("expected active tag 2, got %d", got)
	}
}

func TestCommandUnknownIgnored(t *testing.T) {
	m, _, _ := newModel(t)
	if _, render := m.Update(bus.Command{Name: "bogus"}); render != nil {
		t.Error("unknown commands should be ignored")
	}
}

func TestCommandKill(t *testing.T) {
	m, _, _ := newModel(t)
	s := backend.NewHeadlessSurface("a")
	mapSurface(t, m, s)

	if _, render := m.Update(bus.Command{Name: "kill"}); render == nil {
		t.Fatal("expected a render")
	}
	if got := s.CloseRequests(); got != 1 {
		t.Errorf("expected one close request, got %d", got)
	}
}

func TestCommandQuit(t *testing.T) {
	m, b, _ := newModel(t)
	_, render := m.Update(bus.Command{Name: "quit"})
	if render == nil {
		t.Fatal("expected a render")
	}
	if err := render(context.Background(), b); err == nil {
		t.Error("quit command should stop the loop")
	}
}

func TestSnapshot(t *testing.T) {
	m, _, _ := newModel(t)
	a := backend.NewHeadlessSurface("a")
	fl := backend.NewHeadlessSurface("fl")
	fl.SetMinSize(shell.Size{W: 300, H: 200})
	fl.SetMaxSize(shell.Size{W: 300, H: 200})
	mapSurface(t, m, a)
	mapSurface(t, m, fl)

	st := m.snapshot()
	if st.Width != 1000 || st.Height != 800 {
		t.Errorf("unexpected output size %dx%d", st.Width, st.Height)
	}
	if st.ActiveTag != 1 {
		t.Errorf("expected active tag 1, got %d", st.ActiveTag)
	}
	if len(st.Tags) != 9 {
		t.Fatalf("expected 9 tags, got %d", len(st.Tags))
	}
	tag := st.Tags[0]
	if len(tag.Tiled) != 1 || tag.Tiled[0] != "a" {
		t.Errorf("unexpected tiled list %v", tag.Tiled)
	}
	if len(tag.Floating) != 1 || tag.Floating[0] != "fl" {
		t.Errorf("unexpected floating list %v", tag.Floating)
	}
	if st.Focused != "fl" {
		t.Errorf("expected focus on fl, got %q", st.Focused)
	}
	if len(st.Windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(st.Windows))
	}
	for _, w := range st.Windows {
		if len(w.Tags) != 1 || w.Tags[0] != 1 {
			t.Errorf("window %s should be on tag 1, got %v", w.Surface, w.Tags)
		}
	}
}

func TestFrameAppliesToBackend(t *testing.T) {
	m, b, h := newModel(t)
	s := backend.NewHeadlessSurface("a")
	s.SetSize(shell.Size{W: 640, H: 480})
	mapSurface(t, m, s)

	_, render := m.Update(backend.RenderRequested{Age: 0})
	if render == nil {
		t.Fatal("expected a frame render")
	}
	if err := render(context.Background(), b); err != nil {
		t.Fatal(err)
	}

	frame, ok := h.LastFrame()
	if !ok {
		t.Fatal("expected an applied frame")
	}
	if len(frame.Elements) == 0 {
		t.Error("expected elements in the frame")
	}
	if len(frame.Damage) == 0 {
		t.Error("age zero should damage the whole output")
	}
}

func TestOutputResize(t *testing.T) {
	m, _, _ := newModel(t)
	s := backend.NewHeadlessSurface("a")
	id := mapSurface(t, m, s)

	m.Update(backend.OutputResized{Area: shell.Rect{W: 1920, H: 1080}})

	// A lone tiled window follows the output bleed-to-edge.
	w, _ := m.mon.Get(id)
	if (w.TiledGeo != shell.Rect{X: 0, Y: 0, W: 1920, H: 1080}) {
		t.Errorf("unexpected tiled geometry after resize %v", w.TiledGeo)
	}
}

func TestLayerExclusiveZoneReservesArea(t *testing.T) {
	m, _, _ := newModel(t)
	s := backend.NewHeadlessSurface("a")
	id := mapSurface(t, m, s)

	bar := backend.NewHeadlessLayer("bar", shell.LayerTop, shell.Rect{W: 1000, H: 20})
	bar.SetExclusiveZone(shell.Insets{Top: 20})
	m.Update(backend.LayerAdded{Surface: bar})

	w, _ := m.mon.Get(id)
	if (w.TiledGeo != shell.Rect{X: 0, Y: 20, W: 1000, H: 780}) {
		t.Errorf("expected tiling below the bar, got %v", w.TiledGeo)
	}

	m.Update(backend.LayerRemoved{ID: "bar"})
	if (w.TiledGeo != shell.Rect{W: 1000, H: 800}) {
		t.Errorf("expected the full output back, got %v", w.TiledGeo)
	}
}

func TestFrameDamageAfterContentCommit(t *testing.T) {
	m, b, h := newModel(t)
	fl := backend.NewHeadlessSurface("fl")
	fl.SetMinSize(shell.Size{W: 300, H: 200})
	fl.SetMaxSize(shell.Size{W: 300, H: 200})
	fl.SetSize(shell.Size{W: 300, H: 200})
	mapSurface(t, m, fl)

	_, render := m.Update(backend.RenderRequested{Age: 0})
	if err := render(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	h.ResetFrames()

	// New client content: the next incremental frame repaints the window
	// rect and nothing else.
	fl.Bump()
	if _, render := m.Update(backend.SurfaceCommitted{ID: "fl", HasBuffer: true}); render == nil {
		t.Fatal("a commit on a mapped surface should schedule a render")
	}
	_, render = m.Update(backend.RenderRequested{Age: 1})
	if err := render(context.Background(), b); err != nil {
		t.Fatal(err)
	}

	frames := h.Frames()
	if len(frames) != 1 {
		t.Fatalf("expected one applied frame, got %d", len(frames))
	}
	want := []shell.Rect{{X: 350, Y: 300, W: 300, H: 200}}
	if !slices.Equal(frames[0].Damage, want) {
		t.Errorf("expected damage %v, got %v", want, frames[0].Damage)
	}
}

func TestPopupComposesTopmost(t *testing.T) {
	m, b, h := newModel(t)
	s := backend.NewHeadlessSurface("a")
	pop := backend.NewHeadlessSurface("a-menu")
	pop.SetSize(shell.Size{W: 200, H: 150})
	s.SetPopups([]render.Popup{{ID: "a-menu", Content: pop, Offset: shell.Point{X: 40, Y: 30}}})
	mapSurface(t, m, s)

	_, render := m.Update(backend.RenderRequested{Age: 0})
	if err := render(context.Background(), b); err != nil {
		t.Fatal(err)
	}

	frame, ok := h.LastFrame()
	if !ok {
		t.Fatal("expected an applied frame")
	}
	last := frame.Elements[len(frame.Elements)-1]
	if last.ID() != "a-menu" {
		t.Fatalf("expected the popup on top, got %s", last.ID())
	}
	if (last.Geometry() != shell.Rect{X: 40, Y: 30, W: 200, H: 150}) {
		t.Errorf("unexpected popup geometry %v", last.Geometry())
	}
}
