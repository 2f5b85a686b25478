// Package shell holds the window management core: tags, the window registry,
// the tiling layout engine and the monitor that ties them together. It is
// pure policy; backends realize its decisions.
package shell

// Metrics are the global spacing parameters applied between windows and the
// output edge.
type Metrics struct {
	Gap          int
	BorderWidth  int
	SingleBorder bool
}

// TilingLayout is the per-tag master/stack arrangement: MasterCount windows
// share a left column sized by MasterFactor, the rest stack on the right.
type TilingLayout struct {
	MasterCount  int
	MasterFactor float64
}

// Rects computes the tiled geometry for count windows inside area. The result
// has exactly count entries, pairwise non-overlapping and contained in area,
// in master-column-first order. It depends only on its arguments.
func (l TilingLayout) Rects(count int, area Rect, m Metrics) []Rect {
	if count <= 0 {
		return nil
	}

	mc := min(l.MasterCount, count)
	sc := count - mc

	edge := m.Gap + m.BorderWidth
	inner := m.Gap + 2*m.BorderWidth

	// A lone tiled window bleeds to the output edge unless borders are kept
	// on single windows.
	usable := area
	if m.SingleBorder || count > 1 {
		usable = area.Inset(edge)
	}

	if sc == 0 {
		return splitRows(count, usable, inner)
	}

	// The inner gap straddles the column boundary, half on each side.
	half := inner / 2
	mw := int(float64(usable.W) * l.MasterFactor)
	master := Rect{X: usable.X, Y: usable.Y, W: mw - half, H: usable.H}
	stack := Rect{
		X: usable.X + mw + inner - half,
		Y: usable.Y,
		W: usable.W - mw - inner + half,
		H: usable.H,
	}

	rects := splitRows(mc, master, inner)
	return append(rects, splitRows(sc, stack, inner)...)
}

// splitRows stacks n full-width rows inside area separated by gap. The row
// height divides truncating; remainder pixels are dropped, not given to the
// last row.
func splitRows(n int, area Rect, gap int) []Rect {
	rects := make([]Rect, 0, n)
	h := (area.H - gap*(n-1)) / n
	for i := 0; i < n; i++ {
		rects = append(rects, Rect{
			X: area.X,
			Y: area.Y + i*(h+gap),
			W: area.W,
			H: h,
		})
	}
	return rects
}
