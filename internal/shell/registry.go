package shell

// WindowID is a generation-checked handle into a monitor's window arena. The
// zero value refers to no window. IDs of removed windows stay dead even when
// their slot is reused.
type WindowID struct {
	idx int
	gen uint32
}

// Valid reports whether the id ever referred to a window. It says nothing
// about the window still being mapped; use Registry.Get for that.
func (id WindowID) Valid() bool {
	return id.gen != 0
}

type slot struct {
	win *Window
	gen uint32
}

// Registry owns the window records of one monitor. Tags hold WindowIDs only;
// the registry is the single place a *Window lives.
type Registry struct {
	slots []slot
	free  []int
	count int
}

func (r *Registry) Insert(w *Window) WindowID {
	var idx int
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.slots = append(r.slots, slot{})
		idx = len(r.slots) - 1
	}
	s := &r.slots[idx]
	s.gen++
	s.win = w
	r.count++
	return WindowID{idx: idx, gen: s.gen}
}

func (r *Registry) Get(id WindowID) (*Window, bool) {
	if id.gen == 0 || id.idx < 0 || id.idx >= len(r.slots) {
		return nil, false
	}
	s := r.slots[id.idx]
	if s.win == nil || s.gen != id.gen {
		return nil, false
	}
	return s.win, true
}

func (r *Registry) Remove(id WindowID) bool {
	if _, ok := r.Get(id); !ok {
		return false
	}
	r.slots[id.idx].win = nil
	r.free = append(r.free, id.idx)
	r.count--
	return true
}

func (r *Registry) Len() int {
	return r.count
}

// Each visits every live window in slot order.
func (r *Registry) Each(fn func(id WindowID, w *Window)) {
	for i := range r.slots {
		if s := r.slots[i]; s.win != nil {
			fn(WindowID{idx: i, gen: s.gen}, s.win)
		}
	}
}
