package shell

import "math"

type (
	Point struct {
		X, Y int
	}

	Size struct {
		W, H int
	}

	Rect struct {
		X, Y, W, H int
	}
)

func (r Rect) Loc() Point {
	return Point{X: r.X, Y: r.Y}
}

func (r Rect) Size() Size {
	return Size{W: r.W, H: r.H}
}

func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.X+o.W <= r.X+r.W && o.Y+o.H <= r.Y+r.H
}

func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Intersect reports the shared area of two rects. ok is false when they do
// not overlap.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.W, o.X+o.W)
	y2 := min(r.Y+r.H, o.Y+o.H)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}, false
	}
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}, true
}

// Inset shrinks the rect by d on all four sides. Negative d grows it.
func (r Rect) Inset(d int) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
}

// Inflate grows the rect by dx horizontally and dy vertically on each side.
func (r Rect) Inflate(dx, dy int) Rect {
	return Rect{X: r.X - dx, Y: r.Y - dy, W: r.W + 2*dx, H: r.H + 2*dy}
}

func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Scale maps a logical rect to physical pixels, rounding each coordinate.
func (r Rect) Scale(f float64) Rect {
	if f == 1 {
		return r
	}
	return Rect{
		X: int(math.Round(float64(r.X) * f)),
		Y: int(math.Round(float64(r.Y) * f)),
		W: int(math.Round(float64(r.W) * f)),
		H: int(math.Round(float64(r.H) * f)),
	}
}

type Insets struct {
	Top, Bottom, Left, Right int
}

// Shrink applies the insets to an area, clamping to an empty rect at the
// area's center axis rather than going negative.
func (r Rect) Shrink(in Insets) Rect {
	out := Rect{
		X: r.X + in.Left,
		Y: r.Y + in.Top,
		W: r.W - in.Left - in.Right,
		H: r.H - in.Top - in.Bottom,
	}
	out.W = max(out.W, 0)
	out.H = max(out.H, 0)
	return out
}
