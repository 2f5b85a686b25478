package shell

// Surface is the shell's handle onto one client window in the backend. The
// shell issues effects through it and reads size constraints; everything else
// about the underlying protocol object stays on the backend side.
type Surface interface {
	// ID is a stable unique identifier, safe against reuse of backend
	// window ids.
	ID() string
	// Size is the client's current committed size. Zero on an axis means
	// the client has not expressed one.
	Size() Size
	MinSize() Size
	// MaxSize returns zero on an axis to mean unconstrained.
	MaxSize() Size
	// Parent is the ID of the parent surface, or "" for a root toplevel.
	Parent() string

	RequestResize(s Size)
	SetActivated(activated bool)
	SetResizing(resizing bool)
	RequestClose()
}

// Layer is the stacking shelf of a layer surface, bottom to top.
type Layer int

const (
	LayerBackground Layer = iota
	LayerBottom
	LayerTop
	LayerOverlay
)

func (l Layer) String() string {
	switch l {
	case LayerBackground:
		return "background"
	case LayerBottom:
		return "bottom"
	case LayerTop:
		return "top"
	case LayerOverlay:
		return "overlay"
	default:
		return "unknown"
	}
}

// LayerSurface is a shell component surface (bar, launcher, lock screen)
// stacked outside the window z-order.
type LayerSurface interface {
	ID() string
	Layer() Layer
	// Geometry is the surface's output-local rect.
	Geometry() Rect
	// ExclusiveZone reports edge space reserved away from the tiling area.
	ExclusiveZone() Insets
	// ExclusiveKeyboard reports whether the surface demands all keyboard
	// input while present.
	ExclusiveKeyboard() bool
}

// Window is one mapped client window. Tiled and floating geometry are kept
// independently so toggling float mode restores the previous rect.
type Window struct {
	Surface  Surface
	TiledGeo Rect
	FloatGeo Rect
	Floating bool
	Focused  bool
	// Urgent mirrors the client's attention request; focusing the window
	// clears it.
	Urgent bool
}

// VisibleGeo is the rect the window currently occupies.
func (w *Window) VisibleGeo() Rect {
	if w.Floating {
		return w.FloatGeo
	}
	return w.TiledGeo
}
