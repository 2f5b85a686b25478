package shell_test

import (
	"slices"
	"testing"

	"github.com/lx7/monotile/internal/shell"
)

// mintIDs makes n distinct live window ids.
func mintIDs(n int) []shell.WindowID {
	var r shell.Registry
	ids := make([]shell.WindowID, n)
	for i := range ids {
		ids[i] = r.Insert(&shell.Window{})
	}
	return ids
}

func TestTagAdd(t *testing.T) {
	ids := mintIDs(3)
	var tag shell.Tag

	tag.Add(ids[0], false)
	tag.Add(ids[1], false)
	tag.Add(ids[2], true)

	if !slices.Equal(tag.Tiled, ids[:2]) {
		t.Fatalf("tiled: expected %v, got %v", ids[:2], tag.Tiled)
	}
	if !slices.Equal(tag.Floating, ids[2:]) {
		t.Fatalf("floating: expected %v, got %v", ids[2:], tag.Floating)
	}
	// Most recent add sits at the focus front.
	want := []shell.WindowID{ids[2], ids[1], ids[0]}
	if !slices.Equal(tag.FocusStack, want) {
		t.Fatalf("focus stack: expected %v, got %v", want, tag.FocusStack)
	}
}

func TestTagAddMovesExistingMember(t *testing.T) {
	ids := mintIDs(2)
	var tag shell.Tag

	tag.Add(ids[0], false)
	tag.Add(ids[1], false)
	tag.Add(ids[0], true)

	if !slices.Equal(tag.Tiled, ids[1:2]) {
		t.Fatalf("tiled: expected %v, got %v", ids[1:2], tag.Tiled)
	}
	if !slices.Equal(tag.Floating, ids[:1]) {
		t.Fatalf("floating: expected %v, got %v", ids[:1], tag.Floating)
	}
	if len(tag.FocusStack) != 2 || tag.FocusStack[0] != ids[0] {
		t.Fatalf("expected %v promoted without duplication, got %v", ids[0], tag.FocusStack)
	}
}

func TestTagRemove(t *testing.T) {
	ids := mintIDs(2)
	var tag shell.Tag

	tag.Add(ids[0], false)
	tag.Add(ids[1], true)
	tag.Remove(ids[0])
	tag.Remove(ids[0]) // non-member is fine

	if len(tag.Tiled) != 0 {
		t.Fatalf("expected empty tiled list, got %v", tag.Tiled)
	}
	if tag.Contains(ids[0]) {
		t.Fatal("removed id still a member")
	}
	if !slices.Equal(tag.FocusStack, ids[1:2]) {
		t.Fatalf("focus stack: expected %v, got %v", ids[1:2], tag.FocusStack)
	}
}

func TestTagRaise(t *testing.T) {
	ids := mintIDs(4)
	var tag shell.Tag

	tag.Add(ids[0], false)
	tag.Add(ids[1], true)
	tag.Add(ids[2], true)
	tag.Add(ids[3], true)

	tag.Raise(ids[1])

	want := []shell.WindowID{ids[2], ids[3], ids[1]}
	if !slices.Equal(tag.Floating, want) {
		t.Fatalf("expected %v, got %v", want, tag.Floating)
	}

	// Raising a tiled window leaves the z-order alone.
	tag.Raise(ids[0])
	if !slices.Equal(tag.Floating, want) {
		t.Fatalf("raise of tiled id changed floating order: %v", tag.Floating)
	}
}

func TestTagMoveInStack(t *testing.T) {
	ids := mintIDs(3)
	var tag shell.Tag
	for _, id := range ids {
		tag.Add(id, false)
	}

	if !tag.MoveInStack(ids[0], 1) {
		t.Fatal("expected move to succeed")
	}
	want := []shell.WindowID{ids[1], ids[0], ids[2]}
	if !slices.Equal(tag.Tiled, want) {
		t.Fatalf("expected %v, got %v", want, tag.Tiled)
	}

	// Negative delta wraps to the far end.
	if !tag.MoveInStack(ids[1], -1) {
		t.Fatal("expected wrapping move to succeed")
	}
	want = []shell.WindowID{ids[2], ids[0], ids[1]}
	if !slices.Equal(tag.Tiled, want) {
		t.Fatalf("expected %v, got %v", want, tag.Tiled)
	}
}

func TestTagZoom(t *testing.T) {
	ids := mintIDs(3)
	var tag shell.Tag
	for _, id := range ids {
		tag.Add(id, false)
	}

	if !tag.Zoom(ids[2]) {
		t.Fatal("expected zoom to succeed")
	}
	want := []shell.WindowID{ids[2], ids[1], ids[0]}
	if !slices.Equal(tag.Tiled, want) {
		t.Fatalf("expected %v, got %v", want, tag.Tiled)
	}

	// Zooming the master is a no-op.
	if tag.Zoom(ids[2]) {
		t.Fatal("zoom of the first tiled window must report false")
	}
}

func TestTagFocusCycle(t *testing.T) {
	ids := mintIDs(3)
	var tag shell.Tag
	tag.Add(ids[0], false)
	tag.Add(ids[1], false)

	// Focus head is ids[1] (last added).
	next, ok := tag.FocusCycle(1)
	if !ok || next != ids[0] {
		t.Fatalf("expected %v, got %v %v", ids[0], next, ok)
	}
	prev, ok := tag.FocusCycle(-1)
	if !ok || prev != ids[0] {
		t.Fatalf("expected wrap to %v, got %v %v", ids[0], prev, ok)
	}

	// A floating focus head has no tiled position to cycle from.
	tag.Add(ids[2], true)
	if _, ok := tag.FocusCycle(1); ok {
		t.Fatal("expected no cycle target while a floating window holds focus")
	}
}

func TestTagFocusCycleEmpty(t *testing.T) {
	var tag shell.Tag
	if _, ok := tag.FocusCycle(1); ok {
		t.Fatal("expected no cycle target on an empty tag")
	}
}

func TestTagAdjustLayout(t *testing.T) {
	tag := shell.Tag{Layout: shell.TilingLayout{MasterCount: 1, MasterFactor: 0.54}}

	for i := 0; i < 100; i++ {
		tag.AdjustMasterFactor(0.05)
	}
	if tag.Layout.MasterFactor != 0.9 {
		t.Errorf("expected factor clamped to 0.9, got %v", tag.Layout.MasterFactor)
	}
	for i := 0; i < 100; i++ {
		tag.AdjustMasterFactor(-0.05)
	}
	if tag.Layout.MasterFactor != 0.1 {
		t.Errorf("expected factor clamped to 0.1, got %v", tag.Layout.MasterFactor)
	}

	tag.AdjustMasterCount(-5)
	if tag.Layout.MasterCount != 1 {
		t.Errorf("expected master count floored at 1, got %d", tag.Layout.MasterCount)
	}
	tag.AdjustMasterCount(2)
	if tag.Layout.MasterCount != 3 {
		t.Errorf("expected master count 3, got %d", tag.Layout.MasterCount)
	}
}
