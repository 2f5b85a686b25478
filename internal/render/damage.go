package render

import "github.com/lx7/monotile/internal/shell"

type elementState struct {
	geo    shell.Rect
	commit Commit
	pos    int
}

// Tracker remembers what each buffer in a swapchain has seen and turns an
// element list plus a buffer age into the physical rects that must be
// redrawn. Occlusion is not considered; the plan is a plain union of
// per-frame damage.
type Tracker struct {
	output  shell.Rect
	scale   float64
	last    map[string]elementState
	ring    [][]shell.Rect // physical damage per frame, newest first
	history int
	dirty   bool
}

func NewTracker(output shell.Rect, scale float64, history int) *Tracker {
	if history < 1 {
		history = 4
	}
	return &Tracker{
		output:  output,
		scale:   scale,
		last:    map[string]elementState{},
		history: history,
		dirty:   true,
	}
}

// Resize follows an output mode change and forgets all damage history. The
// next plan is a full repaint no matter what age the caller presents.
func (t *Tracker) Resize(output shell.Rect) {
	t.output = output
	t.last = map[string]elementState{}
	t.ring = nil
	t.dirty = true
}

// Plan diffs the element list against the previous frame and returns what a
// buffer of the given age must redraw. Age 0, or older than the kept
// history, forces a full repaint. An empty result means the frame can be
// skipped entirely.
func (t *Tracker) Plan(elements []Element, age int) []shell.Rect {
	var damage []shell.Rect
	next := make(map[string]elementState, len(elements))
	for i, e := range elements {
		id := e.ID()
		st := elementState{geo: e.Geometry(), commit: e.Commit(), pos: i}
		next[id] = st
		prev, ok := t.last[id]
		switch {
		case !ok:
			damage = append(damage, st.geo)
		case prev.geo != st.geo:
			damage = append(damage, prev.geo, st.geo)
		case prev.pos != st.pos:
			// Restacking changes what overlapping elements show even when
			// nothing else about them moved.
			damage = append(damage, st.geo)
		case prev.commit != st.commit:
			damage = append(damage, e.DamageSince(prev.commit)...)
		}
	}
	for id, prev := range t.last {
		if _, ok := next[id]; !ok {
			damage = append(damage, prev.geo)
		}
	}
	t.last = next

	outPhys := t.output.Scale(t.scale)
	var phys []shell.Rect
	for _, d := range damage {
		if r, ok := d.Scale(t.scale).Intersect(outPhys); ok {
			phys = append(phys, r)
		}
	}
	phys = dedupeRects(phys)

	t.ring = append([][]shell.Rect{phys}, t.ring...)
	if len(t.ring) > t.history {
		t.ring = t.ring[:t.history]
	}

	if t.dirty || age <= 0 || age > len(t.ring) {
		t.dirty = false
		return []shell.Rect{outPhys}
	}
	var out []shell.Rect
	for i := 0; i < age; i++ {
		out = append(out, t.ring[i]...)
	}
	return dedupeRects(out)
}

// dedupeRects drops rects wholly contained in another, keeping the first of
// exact duplicates.
func dedupeRects(rects []shell.Rect) []shell.Rect {
	var out []shell.Rect
	for i, r := range rects {
		drop := false
		for j, o := range rects {
			if i == j || !o.ContainsRect(r) {
				continue
			}
			if r != o || j < i {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, r)
		}
	}
	return out
}
