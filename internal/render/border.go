package render

import (
	"math"

	"github.com/lx7/monotile/internal/shell"
)

// BorderPieces decomposes a window border into up to eight rects around geo:
// four corner squares big enough to hold the outer rounding, then the
// top/right/bottom/left strips between them. Degenerate pieces are dropped,
// so small windows yield fewer than eight.
func BorderPieces(geo shell.Rect, radius float64, bw int) []shell.Rect {
	outerR := radius + float64(bw)
	c := int(math.Ceil(outerR))

	ox := geo.X - bw
	oy := geo.Y - bw
	ow := geo.W + 2*bw
	oh := geo.H + 2*bw

	pieces := []shell.Rect{
		// Corners.
		{X: ox, Y: oy, W: c, H: c},
		{X: geo.X + geo.W + bw - c, Y: oy, W: c, H: c},
		{X: geo.X + geo.W + bw - c, Y: geo.Y + geo.H + bw - c, W: c, H: c},
		{X: ox, Y: geo.Y + geo.H + bw - c, W: c, H: c},
		// Edges.
		{X: ox + c, Y: oy, W: ow - 2*c, H: bw},
		{X: geo.X + geo.W, Y: oy + c, W: bw, H: oh - 2*c},
		{X: ox + c, Y: geo.Y + geo.H, W: ow - 2*c, H: bw},
		{X: ox, Y: oy + c, W: bw, H: oh - 2*c},
	}

	out := pieces[:0]
	for _, p := range pieces {
		if !p.Empty() {
			out = append(out, p)
		}
	}
	return out
}
