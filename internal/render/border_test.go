package render_test

import (
	"slices"
	"testing"

	"github.com/lx7/monotile/internal/render"
	"github.com/lx7/monotile/internal/shell"
)

func TestBorderPiecesSquareCorners(t *testing.T) {
	geo := shell.Rect{X: 100, Y: 100, W: 400, H: 300}

	// radius 0, border 2: corner squares are border-sized.
	got := render.BorderPieces(geo, 0, 2)
	want := []shell.Rect{
		{X: 98, Y: 98, W: 2, H: 2},
		{X: 500, Y: 98, W: 2, H: 2},
		{X: 500, Y: 400, W: 2, H: 2},
		{X: 98, Y: 400, W: 2, H: 2},
		{X: 100, Y: 98, W: 400, H: 2},
		{X: 500, Y: 100, W: 2, H: 300},
		{X: 100, Y: 400, W: 400, H: 2},
		{X: 98, Y: 100, W: 2, H: 300},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestBorderPiecesRounded(t *testing.T) {
	geo := shell.Rect{X: 100, Y: 100, W: 400, H: 300}

	// radius 12, border 2: corners grow to ceil(14) to hold the outer arc
	// and the edge strips shrink to fit between them.
	got := render.BorderPieces(geo, 12, 2)
	want := []shell.Rect{
		{X: 98, Y: 98, W: 14, H: 14},
		{X: 488, Y: 98, W: 14, H: 14},
		{X: 488, Y: 388, W: 14, H: 14},
		{X: 98, Y: 388, W: 14, H: 14},
		{X: 112, Y: 98, W: 376, H: 2},
		{X: 500, Y: 112, W: 2, H: 276},
		{X: 112, Y: 400, W: 376, H: 2},
		{X: 98, Y: 112, W: 2, H: 276},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestBorderPiecesDegenerate(t *testing.T) {
	// A window smaller than its corner squares keeps the corners but has no
	// room for edge strips.
	got := render.BorderPieces(shell.Rect{X: 0, Y: 0, W: 10, H: 10}, 12, 2)
	if len(got) != 4 {
		t.Fatalf("expected the 4 corners only, got %d pieces: %v", len(got), got)
	}
	for _, p := range got {
		if p.W != 14 || p.H != 14 {
			t.Errorf("unexpected corner piece %v", p)
		}
	}
}

func TestBorderPiecesSurroundWindow(t *testing.T) {
	geo := shell.Rect{X: 50, Y: 60, W: 200, H: 150}
	outer := geo.Inflate(3, 3)

	// Square corners stay entirely within the border band.
	for i, p := range render.BorderPieces(geo, 0, 3) {
		if !outer.ContainsRect(p) {
			t.Errorf("piece %d outside the border band: %v", i, p)
		}
		if p.Overlaps(geo) {
			t.Errorf("piece %d overlaps the window: %v", i, p)
		}
	}

	// Rounded corners still fit the band; they may reach into the window
	// rect where the arc cuts it away.
	for i, p := range render.BorderPieces(geo, 8, 3) {
		if !outer.ContainsRect(p) {
			t.Errorf("rounded piece %d outside the border band: %v", i, p)
		}
	}
}
