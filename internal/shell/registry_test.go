package shell_test

import (
	"testing"

	"github.com/lx7/monotile/internal/shell"
)

func TestRegistryInsertGet(t *testing.T) {
	var r shell.Registry

	w := &shell.Window{}
	id := r.Insert(w)
	if !id.Valid() {
		t.Fatal("expected a valid id")
	}

	got, ok := r.Get(id)
	if !ok || got != w {
		t.Fatalf("expected the inserted window back, got %v %v", got, ok)
	}
	if r.Len() != 1 {
		t.Fatalf("expected len 1, got %d", r.Len())
	}
}

func TestRegistryZeroID(t *testing.T) {
	var r shell.Registry
	r.Insert(&shell.Window{})

	if _, ok := r.Get(shell.WindowID{}); ok {
		t.Fatal("zero id must never resolve")
	}
	if r.Remove(shell.WindowID{}) {
		t.Fatal("zero id must not remove anything")
	}
}

func TestRegistryStaleID(t *testing.T) {
	var r shell.Registry

	id := r.Insert(&shell.Window{})
	if !r.Remove(id) {
		t.Fatal("expected remove to succeed")
	}
	if _, ok := r.Get(id); ok {
		t.Fatal("removed id must not resolve")
	}
	if r.Remove(id) {
		t.Fatal("double remove must fail")
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
}

func TestRegistrySlotReuse(t *testing.T) {
	var r shell.Registry

	old := r.Insert(&shell.Window{})
	r.Remove(old)

	fresh := r.Insert(&shell.Window{Floating: true})
	if old == fresh {
		t.Fatal("reused slot must mint a different id")
	}
	if _, ok := r.Get(old); ok {
		t.Fatal("stale id resolved a reused slot")
	}
	if w, ok := r.Get(fresh); !ok || !w.Floating {
		t.Fatal("fresh id must resolve its own window")
	}
}

func TestRegistryEach(t *testing.T) {
	var r shell.Registry

	a := r.Insert(&shell.Window{})
	b := r.Insert(&shell.Window{})
	c := r.Insert(&shell.Window{})
	r.Remove(b)

	seen := map[shell.WindowID]bool{}
	r.Each(func(id shell.WindowID, _ *shell.Window) {
		seen[id] = true
	})
	if len(seen) != 2 || !seen[a] || !seen[c] {
		t.Fatalf("expected to visit exactly the live windows, saw %v", seen)
	}
}
