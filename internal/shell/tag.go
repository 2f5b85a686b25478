package shell

import "slices"

// Tag is one workspace: tiled and floating membership lists in bottom-to-top
// z-order plus a focus history, most recent first. A window may be a member
// of several tags at once.
type Tag struct {
	Tiled      []WindowID
	Floating   []WindowID
	FocusStack []WindowID
	Layout     TilingLayout
}

// Add moves id into the tag's tiled or floating list and to the front of the
// focus history. Adding an existing member relocates it, so Add doubles as
// the tiled<->floating transfer.
func (t *Tag) Add(id WindowID, floating bool) {
	t.Remove(id)
	if floating {
		t.Floating = append(t.Floating, id)
	} else {
		t.Tiled = append(t.Tiled, id)
	}
	t.FocusStack = slices.Insert(t.FocusStack, 0, id)
}

// Remove drops id from all three lists. Removing a non-member is fine.
func (t *Tag) Remove(id WindowID) {
	t.Tiled = deleteID(t.Tiled, id)
	t.Floating = deleteID(t.Floating, id)
	t.FocusStack = deleteID(t.FocusStack, id)
}

func (t *Tag) Contains(id WindowID) bool {
	return slices.Contains(t.Tiled, id) || slices.Contains(t.Floating, id)
}

// WindowIDs returns the paint order, bottom to top: tiled first, then
// floating.
func (t *Tag) WindowIDs() []WindowID {
	ids := make([]WindowID, 0, len(t.Tiled)+len(t.Floating))
	ids = append(ids, t.Tiled...)
	return append(ids, t.Floating...)
}

// Raise moves a floating id to the top of its z-order. Tiled windows keep
// their stack position.
func (t *Tag) Raise(id WindowID) {
	pos := slices.Index(t.Floating, id)
	if pos < 0 {
		return
	}
	t.Floating = append(slices.Delete(t.Floating, pos, pos+1), id)
}

// Promote moves id to the front of the focus history if it is present.
func (t *Tag) Promote(id WindowID) {
	pos := slices.Index(t.FocusStack, id)
	if pos <= 0 {
		return
	}
	t.FocusStack = slices.Insert(slices.Delete(t.FocusStack, pos, pos+1), 0, id)
}

// MoveInStack swaps id with the tiled entry delta positions away, wrapping
// around the ends.
func (t *Tag) MoveInStack(id WindowID, delta int) bool {
	pos := slices.Index(t.Tiled, id)
	if pos < 0 {
		return false
	}
	to := wrap(pos+delta, len(t.Tiled))
	t.Tiled[pos], t.Tiled[to] = t.Tiled[to], t.Tiled[pos]
	return true
}

// Zoom swaps id into the first master slot. Already-first ids stay put.
func (t *Tag) Zoom(id WindowID) bool {
	pos := slices.Index(t.Tiled, id)
	if pos <= 0 {
		return false
	}
	t.Tiled[0], t.Tiled[pos] = t.Tiled[pos], t.Tiled[0]
	return true
}

// FocusCycle resolves the tiled window delta positions from the focus head.
// Cycling is defined over tiled windows only: when the head is floating or
// nothing is tiled there is no answer.
func (t *Tag) FocusCycle(delta int) (WindowID, bool) {
	if len(t.FocusStack) == 0 || len(t.Tiled) == 0 {
		return WindowID{}, false
	}
	pos := slices.Index(t.Tiled, t.FocusStack[0])
	if pos < 0 {
		return WindowID{}, false
	}
	return t.Tiled[wrap(pos+delta, len(t.Tiled))], true
}

func (t *Tag) AdjustMasterFactor(delta float64) {
	t.Layout.MasterFactor = min(max(t.Layout.MasterFactor+delta, 0.1), 0.9)
}

func (t *Tag) AdjustMasterCount(delta int) {
	t.Layout.MasterCount = max(t.Layout.MasterCount+delta, 1)
}

func deleteID(s []WindowID, id WindowID) []WindowID {
	if pos := slices.Index(s, id); pos >= 0 {
		return slices.Delete(s, pos, pos+1)
	}
	return s
}

// wrap is the Euclidean remainder, so negative offsets wrap to the end.
func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
