package grid

import (
	"math"
	"testing"
)

func floatsClose(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func TestSetGeometryAllCellsInvalid(t *testing.T) {
	g := NewCircularGrid(Extent{X: 0.3, Y: 0.3}, 0.1, Point{}, []Layer{"elevation", "variance"}, nil)
	if g.Rows() != 3 || g.Cols() != 3 {
		t.Fatalf("expected 3x3 grid, got %dx%d", g.Rows(), g.Cols())
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			v := *g.At("elevation", Index{R: r, C: c})
			if !math.IsNaN(v) {
				t.Fatalf("expected NaN at (%d,%d), got %v", r, c, v)
			}
		}
	}
}

func TestIndexOutsideFootprint(t *testing.T) {
	g := NewCircularGrid(Extent{X: 0.3, Y: 0.3}, 0.1, Point{}, []Layer{"elevation"}, nil)
	if _, ok := g.Index(Point{X: 10, Y: 10}); ok {
		t.Fatal("expected point outside footprint to miss")
	}
	idx, ok := g.Index(Point{X: 0, Y: 0})
	if !ok {
		t.Fatal("expected center point to hit")
	}
	if idx != (Index{R: 1, C: 1}) {
		t.Fatalf("expected center cell (1,1), got %v", idx)
	}
}

func TestPositionRoundTrip(t *testing.T) {
	g := NewCircularGrid(Extent{X: 0.5, Y: 0.5}, 0.1, Point{}, []Layer{"elevation"}, nil)
	idx, ok := g.Index(Point{X: 0, Y: 0})
	if !ok {
		t.Fatal("expected center to hit")
	}
	pos := g.Position(idx)
	if !floatsClose(pos.X, 0, 0.1) || !floatsClose(pos.Y, 0, 0.1) {
		t.Fatalf("expected position near origin, got %v", pos)
	}
}

func TestMovePreservesDataAndClearsSweptStrip(t *testing.T) {
	g := NewCircularGrid(Extent{X: 0.5, Y: 0.5}, 0.1, Point{}, []Layer{"elevation", "variance"}, nil)
	center, ok := g.Index(Point{X: 0, Y: 0})
	if !ok {
		t.Fatal("expected center to hit")
	}
	*g.At("elevation", center) = 1.23
	*g.At("variance", center) = 0.01

	g.Move(Point{X: 0.2, Y: 0}, []Layer{"elevation", "variance"}, nil)

	shifted := Index{R: center.R, C: center.C - 2}
	v := *g.At("elevation", shifted)
	if !floatsClose(v, 1.23, 1e-9) {
		t.Fatalf("expected preserved elevation 1.23 at shifted index, got %v", v)
	}

	pos := g.Position(shifted)
	if !floatsClose(pos.X, 0, 1e-9) {
		t.Fatalf("expected world position to still read back as 0, got %v", pos.X)
	}

	newCol := Index{R: center.R, C: g.Cols() - 1}
	nv := *g.At("elevation", newCol)
	if !math.IsNaN(nv) {
		t.Fatalf("expected newly swept-in column to be NaN, got %v", nv)
	}
}

func TestMoveClearsTheScrolledOutSideNotTheRetainedSide(t *testing.T) {
	g := NewCircularGrid(Extent{X: 0.5, Y: 0.5}, 0.1, Point{}, []Layer{"elevation", "variance"}, nil)

	retained := Index{R: 2, C: 4} // world x ~= 0.2, stays in footprint after the move
	overwritten := Index{R: 2, C: 1} // world x ~= -0.1, its buffer slot becomes the newly-entered column
	*g.At("elevation", retained) = 9.9
	*g.At("elevation", overwritten) = -5.5

	g.Move(Point{X: 0.2, Y: 0}, []Layer{"elevation", "variance"}, nil)

	gotRetained := *g.At("elevation", Index{R: 2, C: 2})
	if !floatsClose(gotRetained, 9.9, 1e-9) {
		t.Fatalf("expected the cell that stayed in-footprint to keep its value 9.9, got %v", gotRetained)
	}

	gotNew := *g.At("elevation", Index{R: 2, C: 4})
	if !math.IsNaN(gotNew) {
		t.Fatalf("expected the newly swept-in column to be NaN, got stale value %v", gotNew)
	}
}

func TestClampIdempotent(t *testing.T) {
	layer := []float64{-1, 0.5, 100, math.NaN()}
	ClampLayer(layer, 0, 10)
	first := append([]float64(nil), layer...)
	ClampLayer(layer, 0, 10)
	for i := range layer {
		if math.IsNaN(first[i]) {
			if !math.IsNaN(layer[i]) {
				t.Fatalf("expected NaN to remain NaN at %d", i)
			}
			continue
		}
		if first[i] != layer[i] {
			t.Fatalf("clamp not idempotent at %d: %v vs %v", i, first[i], layer[i])
		}
	}
	if layer[0] != 0 {
		t.Fatalf("expected floor to 0, got %v", layer[0])
	}
	if !math.IsInf(layer[2], 1) {
		t.Fatalf("expected +Inf for value above hi, got %v", layer[2])
	}
}

func TestSubmapWraps(t *testing.T) {
	g := NewCircularGrid(Extent{X: 0.3, Y: 0.3}, 0.1, Point{}, []Layer{"elevation"}, nil)
	idxs := g.Submap(Index{R: 2, C: 2}, Size{Rows: 2, Cols: 2})
	want := map[Index]bool{
		{R: 2, C: 2}: true, {R: 2, C: 0}: true,
		{R: 0, C: 2}: true, {R: 0, C: 0}: true,
	}
	if len(idxs) != 4 {
		t.Fatalf("expected 4 indices, got %d", len(idxs))
	}
	for _, idx := range idxs {
		if !want[idx] {
			t.Fatalf("unexpected index %v in wrapped submap", idx)
		}
	}
}
