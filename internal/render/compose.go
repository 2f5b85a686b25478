package render

import (
	"fmt"

	"github.com/lx7/monotile/internal/shell"
)

// Compose builds the frame's element list, bottom to top: background and
// bottom layer shells, window groups in paint order, top and overlay layer
// shells, then every layer-shell popup above it all. Window popups ride
// inside their window's group instead.
func Compose(m *shell.Monitor, style Style) []Element {
	var (
		elems  []Element
		popups []Element
	)

	appendLayer := func(layer shell.Layer) {
		for _, ls := range m.LayersOn(layer) {
			src, ok := ls.(Content)
			if !ok {
				continue
			}
			loc := ls.Geometry().Loc()
			elems = append(elems, NewSurface(ls.ID(), src, loc))
			for _, p := range src.Popups() {
				at := shell.Point{X: loc.X + p.Offset.X, Y: loc.Y + p.Offset.Y}
				popups = append(popups, NewSurface(p.ID, p.Content, at))
			}
		}
	}

	appendLayer(shell.LayerBackground)
	appendLayer(shell.LayerBottom)

	visible := m.VisibleWindows()
	tiledVisible := 0
	for _, id := range visible {
		if w, ok := m.Get(id); ok && !w.Floating {
			tiledVisible++
		}
	}
	for _, id := range visible {
		if w, ok := m.Get(id); ok {
			elems = append(elems, composeWindow(w, tiledVisible, style)...)
		}
	}

	appendLayer(shell.LayerTop)
	appendLayer(shell.LayerOverlay)

	return append(elems, popups...)
}

func composeWindow(w *shell.Window, tiledVisible int, style Style) []Element {
	geo := w.VisibleGeo()
	sid := w.Surface.ID()

	color := style.Border
	if w.Focused {
		color = style.Focus
	} else if w.Urgent {
		color = style.Urgent
	}
	radius := style.TiledRadius
	bw := style.BorderWidth
	if w.Floating {
		radius = style.FloatRadius
		if !w.Focused {
			bw = 0
		}
	}

	// A lone tiled window is drawn bare: no border, no clipping, the
	// surface flush with the output edge.
	singleNoBorder := !style.SingleBorder && tiledVisible == 1 && !w.Floating

	var elems []Element
	if w.Floating {
		elems = append(elems, NewShadow(sid+"@shadow", geo, style.BorderWidth, style))
	}
	elems = append(elems, NewSolid(sid+"@fill", geo, style.Root, radius))
	if bw > 0 && !singleNoBorder {
		for i, piece := range BorderPieces(geo, radius, bw) {
			elems = append(elems, NewSolid(fmt.Sprintf("%s@border%d", sid, i), piece, color, 0))
		}
	}

	src, ok := w.Surface.(Content)
	if !ok {
		return elems
	}
	inner := shell.Rect{W: geo.W, H: geo.H}
	willClip := radius > 0 || !inner.ContainsRect(src.Bounds())
	if singleNoBorder || !willClip {
		elems = append(elems, NewSurface(sid, src, geo.Loc()))
	} else {
		elems = append(elems, NewClipped(sid, src, geo, radius))
	}
	for _, p := range src.Popups() {
		at := shell.Point{X: geo.X + p.Offset.X, Y: geo.Y + p.Offset.Y}
		elems = append(elems, NewSurface(p.ID, p.Content, at))
	}
	return elems
}
