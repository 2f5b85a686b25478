// Package app is the concrete window manager model: it owns the monitor,
// translates backend events and bus commands into shell operations and turns
// the result into frames. It runs entirely on the wm loop goroutine.
package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/k0kubun/pp"

	"github.com/lx7/monotile/internal/backend"
	"github.com/lx7/monotile/internal/bus"
	"github.com/lx7/monotile/internal/config"
	"github.com/lx7/monotile/internal/render"
	"github.com/lx7/monotile/internal/shell"
	"github.com/lx7/monotile/internal/wm"
)

type Options struct {
	Config config.Config
	Style  render.Style
	Area   shell.Rect
}

// Model implements wm.Model over a single monitor.
type Model struct {
	mon      *shell.Monitor
	cfg      config.Config
	style    render.Style
	bindings []Binding
	ptrMods  backend.Mods

	pending []pendingSurface
	grab    *grab
	cursor  shell.Point
}

func New(opts Options) *Model {
	return &Model{
		mon:      shell.NewMonitor(opts.Area, opts.Config.Metrics(), opts.Config.TagCount, opts.Config.Layout()),
		cfg:      opts.Config,
		style:    opts.Style,
		bindings: Bindings(opts.Config),
		ptrMods:  PrimaryMods(opts.Config.Modifier),
	}
}

func (m *Model) Init() (wm.Model, wm.Render) {
	return m, m.changed()
}

func (m *Model) Update(msg wm.Msg) (wm.Model, wm.Render) {
	switch msg := msg.(type) {
	case backend.SurfaceCreated:
		m.surfaceCreated(msg.Surface)
		return m, nil
	case backend.SurfaceCommitted:
		return m, m.surfaceCommitted(msg)
	case backend.SurfaceDestroyed:
		return m, m.surfaceDestroyed(msg.ID)
	case backend.SurfaceUrgent:
		if id, ok := m.mon.FindBySurface(msg.ID); ok {
			m.mon.SetUrgent(id, msg.Urgent)
			return m, m.changed()
		}
		return m, nil
	case backend.SurfaceParentChanged:
		if id, ok := m.mon.FindBySurface(msg.ID); ok {
			m.mon.SetFloating(id, true)
			return m, m.changed()
		}
		return m, nil
	case backend.LayerAdded:
		m.mon.AddLayerSurface(msg.Surface)
		m.refocus()
		return m, m.changed()
	case backend.LayerRemoved:
		m.mon.RemoveLayerSurface(msg.ID)
		m.refocus()
		return m, m.changed()
	case backend.OutputResized:
		m.mon.Resize(msg.Area)
		return m, m.changed()
	case backend.RenderRequested:
		return m, m.frame(msg.Age)
	case backend.KeyPressed:
		return m.keyPressed(msg)
	case backend.ButtonPressed:
		return m.buttonPressed(msg)
	case backend.ButtonReleased:
		return m.buttonReleased(msg)
	case backend.PointerMoved:
		return m.pointerMoved(msg)
	case backend.ImportFailed:
		slog.Error("Failed to import buffer", "surface", msg.ID, "error", msg.Err)
		return m, nil
	case bus.Command:
		return m.command(msg)
	case bus.ConfigFileChanged:
		slog.Info("config file changed, restart to apply", "path", msg.Path)
		return m, nil
	default:
		slog.Debug("unknown event", "event", msg)
		return m, nil
	}
}

// schedule asks the backend for a frame without touching the snapshot.
func (m *Model) schedule() wm.Render {
	return func(ctx context.Context, b *backend.Backend) error {
		b.ScheduleRender()
		return nil
	}
}

// changed publishes a fresh state snapshot and schedules a frame. Every
// mutation of the monitor goes through here.
func (m *Model) changed() wm.Render {
	bus.Publish(bus.StateChanged{State: m.snapshot()})
	return m.schedule()
}

func (m *Model) frame(age int) wm.Render {
	return func(ctx context.Context, b *backend.Backend) error {
		return b.ApplyFrame(render.Compose(m.mon, m.style), age)
	}
}

func (m *Model) snapshot() bus.State {
	area := m.mon.Area()
	st := bus.State{
		Width:     area.W,
		Height:    area.H,
		ActiveTag: m.mon.ActiveTagIndex() + 1,
		PrevTag:   m.mon.PrevTagIndex() + 1,
	}

	for i := 0; i < m.mon.TagCount(); i++ {
		t, _ := m.mon.Tag(i)
		st.Tags = append(st.Tags, bus.StateTag{
			Index:        i + 1,
			MasterCount:  t.Layout.MasterCount,
			MasterFactor: t.Layout.MasterFactor,
			Tiled:        m.surfaceIDs(t.Tiled),
			Floating:     m.surfaceIDs(t.Floating),
		})
	}

	seen := map[shell.WindowID]bool{}
	for i := 0; i < m.mon.TagCount(); i++ {
		t, _ := m.mon.Tag(i)
		for _, id := range t.WindowIDs() {
			if seen[id] {
				continue
			}
			seen[id] = true
			w, ok := m.mon.Get(id)
			if !ok {
				continue
			}
			geo := w.VisibleGeo()
			sw := bus.StateWindow{
				Surface:  w.Surface.ID(),
				Geometry: bus.StateRect{X: geo.X, Y: geo.Y, W: geo.W, H: geo.H},
				Floating: w.Floating,
				Focused:  w.Focused,
				Urgent:   w.Urgent,
			}
			for ti := 0; ti < m.mon.TagCount(); ti++ {
				if tt, _ := m.mon.Tag(ti); tt.Contains(id) {
					sw.Tags = append(sw.Tags, ti+1)
				}
			}
			if w.Focused {
				st.Focused = w.Surface.ID()
			}
			st.Windows = append(st.Windows, sw)
		}
	}
	return st
}

func (m *Model) surfaceIDs(ids []shell.WindowID) []string {
	var out []string
	for _, id := range ids {
		if w, ok := m.mon.Get(id); ok {
			out = append(out, w.Surface.ID())
		}
	}
	return out
}

// dump pretty-prints the current snapshot to stderr.
func (m *Model) dump() {
	pp.Fprintln(os.Stderr, m.snapshot())
}
