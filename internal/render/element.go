// Package render assembles the per-frame element list: client surfaces plus
// the decoration drawn around them, in paint order, with enough bookkeeping
// for a backend to redraw only what changed.
package render

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/lx7/monotile/internal/shell"
)

// Commit orders content states so damage can be taken relative to what a
// backend last drew. Zero is "never seen".
type Commit uint64

// Content is the render-facing side of a backend surface. Backends implement
// it next to shell.Surface; coordinates are surface-local with (0,0) at the
// window geometry origin.
type Content interface {
	// Bounds is the painted bounding box. It can extend outside the window
	// geometry when the client draws beyond it.
	Bounds() shell.Rect
	Commit() Commit
	// DamageSince lists rects changed since c. Unknown or too-old commits
	// report the full bounds.
	DamageSince(c Commit) []shell.Rect
	// Opaque lists rects the client promises are fully opaque.
	Opaque() []shell.Rect
	Popups() []Popup
}

// Popup is a child surface stacked above its parent, offset from the parent's
// geometry origin.
type Popup struct {
	ID      string
	Content Content
	Offset  shell.Point
}

// Element is one drawable in the frame. The element list is ordered bottom to
// top; ids are stable across frames for unchanged roles so the damage tracker
// can diff lists.
type Element interface {
	ID() string
	// Geometry is the output-local logical rect the element draws into.
	Geometry() shell.Rect
	Commit() Commit
	// DamageSince lists output-local logical rects changed since c.
	DamageSince(c Commit) []shell.Rect
	// Opaque lists output-local logical rects nothing beneath shines
	// through.
	Opaque() []shell.Rect
}

// Surface is a client surface drawn as-is at a location, overhang included.
type Surface struct {
	id  string
	src Content
	loc shell.Point
}

func NewSurface(id string, src Content, loc shell.Point) *Surface {
	return &Surface{id: id, src: src, loc: loc}
}

func (e *Surface) ID() string { return e.id }

// Source is the content behind the element.
func (e *Surface) Source() Content { return e.src }

func (e *Surface) Commit() Commit { return e.src.Commit() }

func (e *Surface) Geometry() shell.Rect {
	return e.src.Bounds().Translate(e.loc.X, e.loc.Y)
}

func (e *Surface) DamageSince(c Commit) []shell.Rect {
	return translateAll(e.src.DamageSince(c), e.loc)
}

func (e *Surface) Opaque() []shell.Rect {
	return translateAll(e.src.Opaque(), e.loc)
}

// Clipped is a client surface confined to the window geometry, with rounded
// corners cut out of its opaque region.
type Clipped struct {
	id     string
	src    Content
	loc    shell.Point
	clip   shell.Rect
	radius float64
}

func NewClipped(id string, src Content, clip shell.Rect, radius float64) *Clipped {
	return &Clipped{
		id:     fmt.Sprintf("%s@clip:%g", id, radius),
		src:    src,
		loc:    clip.Loc(),
		clip:   clip,
		radius: radius,
	}
}

func (e *Clipped) ID() string { return e.id }

// Source is the content behind the element.
func (e *Clipped) Source() Content { return e.src }

func (e *Clipped) Commit() Commit { return e.src.Commit() }

func (e *Clipped) Geometry() shell.Rect { return e.clip }

func (e *Clipped) DamageSince(c Commit) []shell.Rect {
	var out []shell.Rect
	for _, d := range translateAll(e.src.DamageSince(c), e.loc) {
		if r, ok := d.Intersect(e.clip); ok {
			out = append(out, r)
		}
	}
	return out
}

// Opaque clips the client's opaque rects and removes a square per corner;
// the rounding makes corners translucent no matter what the client says.
func (e *Clipped) Opaque() []shell.Rect {
	var clipped []shell.Rect
	for _, o := range translateAll(e.src.Opaque(), e.loc) {
		if r, ok := o.Intersect(e.clip); ok {
			clipped = append(clipped, r)
		}
	}
	r := int(math.Ceil(e.radius))
	if r <= 0 {
		return clipped
	}
	for _, corner := range []shell.Rect{
		{X: e.clip.X, Y: e.clip.Y, W: r, H: r},
		{X: e.clip.X + e.clip.W - r, Y: e.clip.Y, W: r, H: r},
		{X: e.clip.X, Y: e.clip.Y + e.clip.H - r, W: r, H: r},
		{X: e.clip.X + e.clip.W - r, Y: e.clip.Y + e.clip.H - r, W: r, H: r},
	} {
		clipped = subtract(clipped, corner)
	}
	return clipped
}

// Solid is a filled rect, optionally rounded. Border pieces and window
// background fills are solids.
type Solid struct {
	id     string
	geo    shell.Rect
	color  Color
	radius float64
}

func NewSolid(id string, geo shell.Rect, color Color, radius float64) *Solid {
	return &Solid{id: id, geo: geo, color: color, radius: radius}
}

func (e *Solid) ID() string { return e.id }

func (e *Solid) Geometry() shell.Rect { return e.geo }

func (e *Solid) Color() Color { return e.color }

func (e *Solid) Radius() float64 { return e.radius }

// Commit hashes the visual parameters, so a recolored solid damages itself
// even when its geometry stays put.
func (e *Solid) Commit() Commit {
	h := fnv.New64a()
	fmt.Fprintf(h, "%v:%g", e.color, e.radius)
	return Commit(h.Sum64())
}

func (e *Solid) DamageSince(c Commit) []shell.Rect {
	if c == e.Commit() {
		return nil
	}
	return []shell.Rect{e.geo}
}

func (e *Solid) Opaque() []shell.Rect {
	if e.color[3] < 1 {
		return nil
	}
	r := int(math.Ceil(e.radius))
	if r <= 0 {
		return []shell.Rect{e.geo}
	}
	out := []shell.Rect{e.geo}
	for _, corner := range []shell.Rect{
		{X: e.geo.X, Y: e.geo.Y, W: r, H: r},
		{X: e.geo.X + e.geo.W - r, Y: e.geo.Y, W: r, H: r},
		{X: e.geo.X, Y: e.geo.Y + e.geo.H - r, W: r, H: r},
		{X: e.geo.X + e.geo.W - r, Y: e.geo.Y + e.geo.H - r, W: r, H: r},
	} {
		out = subtract(out, corner)
	}
	return out
}

// Shadow is the soft drop shadow under a floating window. Its footprint is
// the window rect padded far enough that the blur never clips against its
// own bounds.
type Shadow struct {
	id     string
	window shell.Rect
	geo    shell.Rect
	color  Color
	sigma  float64
	offset shell.Point
	spread int
}

func NewShadow(id string, window shell.Rect, borderWidth int, s Style) *Shadow {
	sigma := float64(s.ShadowSoftness) / 2
	blur := int(math.Ceil(sigma * 3))
	padX := borderWidth + blur + s.ShadowSpread + abs(s.ShadowOffset.X)
	padY := borderWidth + blur + s.ShadowSpread + abs(s.ShadowOffset.Y)
	return &Shadow{
		id:     id,
		window: window,
		geo:    window.Inflate(padX, padY),
		color:  s.ShadowColor,
		sigma:  sigma,
		offset: s.ShadowOffset,
		spread: s.ShadowSpread,
	}
}

func (e *Shadow) ID() string { return e.id }

func (e *Shadow) Geometry() shell.Rect { return e.geo }

func (e *Shadow) Sigma() float64 { return e.sigma }

func (e *Shadow) Commit() Commit {
	h := fnv.New64a()
	fmt.Fprintf(h, "%v:%g:%v:%d", e.color, e.sigma, e.offset, e.spread)
	return Commit(h.Sum64())
}

func (e *Shadow) DamageSince(c Commit) []shell.Rect {
	if c == e.Commit() {
		return nil
	}
	return []shell.Rect{e.geo}
}

// Opaque is nil: shadows are translucent everywhere.
func (e *Shadow) Opaque() []shell.Rect { return nil }

func translateAll(rects []shell.Rect, by shell.Point) []shell.Rect {
	if len(rects) == 0 {
		return nil
	}
	out := make([]shell.Rect, len(rects))
	for i, r := range rects {
		out[i] = r.Translate(by.X, by.Y)
	}
	return out
}

// subtract removes cut from every rect, splitting around it as needed.
func subtract(rects []shell.Rect, cut shell.Rect) []shell.Rect {
	var out []shell.Rect
	for _, r := range rects {
		hit, ok := r.Intersect(cut)
		if !ok {
			out = append(out, r)
			continue
		}
		top := shell.Rect{X: r.X, Y: r.Y, W: r.W, H: hit.Y - r.Y}
		bottom := shell.Rect{X: r.X, Y: hit.Y + hit.H, W: r.W, H: r.Y + r.H - hit.Y - hit.H}
		left := shell.Rect{X: r.X, Y: hit.Y, W: hit.X - r.X, H: hit.H}
		right := shell.Rect{X: hit.X + hit.W, Y: hit.Y, W: r.X + r.W - hit.X - hit.W, H: hit.H}
		for _, part := range []shell.Rect{top, bottom, left, right} {
			if !part.Empty() {
				out = append(out, part)
			}
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
