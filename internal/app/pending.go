package app

import (
	"fmt"
	"slices"

	"github.com/lx7/monotile/internal/backend"
	"github.com/lx7/monotile/internal/shell"
	"github.com/lx7/monotile/internal/wm"
)

// pendingSurface is a created surface waiting for its first buffer.
type pendingSurface struct {
	surface    shell.Surface
	configured bool
}

func (m *Model) surfaceCreated(s shell.Surface) {
	m.pending = append(m.pending, pendingSurface{surface: s})
}

// surfaceCommitted advances the two-commit mapping flow: the first commit
// without a buffer draws out the client's preferred size with an empty
// configure, the first one with a buffer maps the window. Commits on mapped
// surfaces only need a repaint.
func (m *Model) surfaceCommitted(ev backend.SurfaceCommitted) wm.Render {
	for i := range m.pending {
		p := &m.pending[i]
		if p.surface.ID() != ev.ID {
			continue
		}
		if !ev.HasBuffer {
			if !p.configured {
				p.surface.RequestResize(shell.Size{})
				p.configured = true
			}
			return nil
		}
		// A child commit whose parent is nowhere means the protocol layer
		// broke its contract; rendering from inconsistent state is worse
		// than stopping.
		if parent := p.surface.Parent(); parent != "" && !m.knownSurface(parent) {
			panic(fmt.Sprintf("app: surface %s committed with unknown parent %s", ev.ID, parent))
		}
		s := p.surface
		m.pending = slices.Delete(m.pending, i, i+1)
		m.focus(m.mon.Map(s, shouldFloat(s)))
		return m.changed()
	}

	if _, ok := m.mon.FindBySurface(ev.ID); ok {
		return m.schedule()
	}
	return nil
}

func (m *Model) surfaceDestroyed(sid string) wm.Render {
	for i := range m.pending {
		if m.pending[i].surface.ID() == sid {
			m.pending = slices.Delete(m.pending, i, i+1)
			return nil
		}
	}
	id, ok := m.mon.FindBySurface(sid)
	if !ok {
		return nil
	}
	if m.grab != nil && m.grab.id == id {
		m.grab = nil
	}
	m.mon.Unmap(id)
	m.refocus()
	return m.changed()
}

func (m *Model) knownSurface(sid string) bool {
	if _, ok := m.mon.FindBySurface(sid); ok {
		return true
	}
	for _, p := range m.pending {
		if p.surface.ID() == sid {
			return true
		}
	}
	return false
}

// shouldFloat decides a window's initial mode: children of another surface
// and fixed-size windows float, everything else tiles.
func shouldFloat(s shell.Surface) bool {
	if s.Parent() != "" {
		return true
	}
	min, max := s.MinSize(), s.MaxSize()
	return min.W > 0 && min.H > 0 && (min.W == max.W || min.H == max.H)
}
