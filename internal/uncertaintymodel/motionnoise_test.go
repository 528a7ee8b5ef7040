package uncertaintymodel

import (
	"math"
	"testing"
)

func floatsClose(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func TestEstimateScalesWithSqrtDt(t *testing.T) {
	m := NewModel(0.01, 0.02)
	got := m.Estimate(4.0)
	want := 0.01 * 2.0
	if !floatsClose(got, want, 1e-12) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMotionNoiseDeltasFillsEveryCell(t *testing.T) {
	m := NewModel(0.01, 0.02)
	d := MotionNoiseDeltas(3, 4, m, 1.0)

	if len(d.DVariance) != 3 || len(d.DVariance[0]) != 4 {
		t.Fatalf("unexpected shape: %dx%d", len(d.DVariance), len(d.DVariance[0]))
	}
	for r := range d.DVariance {
		for c := range d.DVariance[r] {
			if d.DVariance[r][c] <= 0 {
				t.Fatalf("cell (%d,%d) has non-positive variance growth", r, c)
			}
			if d.DHVarX[r][c] != d.DHVarY[r][c] {
				t.Fatalf("cell (%d,%d): expected isotropic horizontal growth", r, c)
			}
		}
	}
}
