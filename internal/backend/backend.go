// Package backend connects the window manager loop to a display system. A
// backend realizes surfaces, translates input into messages and applies
// composed frames. X11 talks to a real server; the headless backend drives
// the same contracts from tests.
package backend

import (
	"github.com/lx7/monotile/internal/render"
	"github.com/lx7/monotile/internal/shell"
)

type Kind int

const (
	KindUnset Kind = iota
	KindX11
	KindHeadless
)

func (k Kind) String() string {
	switch k {
	case KindX11:
		return "x11"
	case KindHeadless:
		return "headless"
	default:
		return "unset"
	}
}

type driver interface {
	Events() <-chan any
	Area() shell.Rect
	ScheduleRender()
	ApplyFrame(els []render.Element, age int) error
	SetCursor(c Cursor)
	Close() error
}

// Cursor is the pointer image shown during a drag. The display restores the
// default on its own when the drag ends.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorMove
	CursorResize
)

// Backend is the closed set of display drivers. The zero value is unset and
// panics on use; that is a wiring bug, not a runtime condition.
type Backend struct {
	kind Kind
	d    driver
}

func (b *Backend) ensure() driver {
	if b == nil || b.kind == KindUnset || b.d == nil {
		panic("backend: not initialized")
	}
	return b.d
}

func (b *Backend) Kind() Kind { return b.kind }

// Events is the message stream consumed by the loop. The channel closes when
// the display connection dies.
func (b *Backend) Events() <-chan any { return b.ensure().Events() }

// Area is the output size in logical coordinates.
func (b *Backend) Area() shell.Rect { return b.ensure().Area() }

// ScheduleRender asks for a RenderRequested message. Requests coalesce;
// scheduling twice before the loop drains yields one frame.
func (b *Backend) ScheduleRender() { b.ensure().ScheduleRender() }

// ApplyFrame presents one composed frame. age is the buffer age from the
// matching RenderRequested message.
func (b *Backend) ApplyFrame(els []render.Element, age int) error {
	return b.ensure().ApplyFrame(els, age)
}

// SetCursor changes the pointer image for the duration of a drag.
func (b *Backend) SetCursor(c Cursor) { b.ensure().SetCursor(c) }

func (b *Backend) Close() error { return b.ensure().Close() }

type Mods struct {
	Shift bool
	Ctrl  bool
	Alt   bool
	Logo  bool
}

type Button uint8

const (
	ButtonLeft   Button = 1
	ButtonMiddle Button = 2
	ButtonRight  Button = 3
)

// Hotkey is a key grab registered with the display server. Keysym is the
// level-0 X keysym for the key.
type Hotkey struct {
	Mods   Mods
	Keysym uint32
}

// Messages produced by backends.
type (
	SurfaceCreated struct {
		Surface shell.Surface
	}

	// SurfaceCommitted reports new client state on a surface. HasBuffer is
	// false while the client has not drawn yet.
	SurfaceCommitted struct {
		ID        string
		HasBuffer bool
	}

	SurfaceDestroyed struct {
		ID string
	}

	SurfaceUrgent struct {
		ID     string
		Urgent bool
	}

	// SurfaceParentChanged reports a parent set after mapping; the window
	// turns floating.
	SurfaceParentChanged struct {
		ID string
	}

	LayerAdded struct {
		Surface shell.LayerSurface
	}

	LayerRemoved struct {
		ID string
	}

	OutputResized struct {
		Area shell.Rect
	}

	RenderRequested struct {
		Age int
	}

	KeyPressed struct {
		Mods   Mods
		Keysym uint32
	}

	ButtonPressed struct {
		Mods   Mods
		Button Button
		Pos    shell.Point
	}

	ButtonReleased struct {
		Button Button
		Pos    shell.Point
	}

	PointerMoved struct {
		Pos shell.Point
	}

	// ImportFailed reports a buffer that could not be brought into the
	// renderer. The frame skips the surface; nothing retries.
	ImportFailed struct {
		ID  string
		Err error
	}
)
