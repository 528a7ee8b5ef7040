package fuser

import (
	"fmt"
	"math"
	"sort"

	"github.com/kestrel-robotics/terrainmap/internal/grid"
)

const coverageEpsilon = 1e-9

// circlesIntersectAtPoint checks whether there exists a point p common to
// every circle in centers/radii, returning it if so. Adapted directly from
// the geometric multi-circle intersection search the neighbor-window
// fusion weight used to use before the closed-form Gaussian weighting
// replaced it; kept as the engine for DiagnoseCoverage below.
func circlesIntersectAtPoint(centers []grid.Point, radii []float64) (bool, grid.Point) {
	n := len(centers)
	if n == 0 {
		return false, grid.Point{}
	}
	if n == 1 {
		return true, centers[0]
	}

	var candidates []grid.Point
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			count, p1, p2 := intersectTwoCircles(centers[i], radii[i], centers[j], radii[j])
			if count >= 1 && isInsideAll(p1, centers, radii) {
				candidates = append(candidates, p1)
			}
			if count == 2 && isInsideAll(p2, centers, radii) {
				candidates = append(candidates, p2)
			}
		}
	}

	if len(candidates) > 0 {
		unique := dedupePoints(candidates)
		if len(unique) == 1 {
			return true, unique[0]
		}
		if len(unique) > 1 {
			centroid := centroidOf(unique)
			if isInsideAll(centroid, centers, radii) {
				return true, centroid
			}
			return true, unique[0]
		}
	}

	type contained struct {
		center grid.Point
		radius float64
	}
	var containedCircles []contained
	for i := 0; i < n; i++ {
		if isInsideAll(centers[i], centers, radii) {
			containedCircles = append(containedCircles, contained{centers[i], radii[i]})
		}
	}
	if len(containedCircles) > 0 {
		sort.Slice(containedCircles, func(i, j int) bool { return containedCircles[i].radius < containedCircles[j].radius })
		return true, containedCircles[0].center
	}

	overall := centroidOf(centers)
	if isInsideAll(overall, centers, radii) {
		return true, overall
	}
	return false, grid.Point{}
}

// DiagnoseCoverage reports the minimal expansion factor alpha >= 1 such
// that every cell's 2-sigma horizontal-uncertainty circle, expanded by
// alpha, shares a common point. A small alpha means the neighborhood is
// densely, consistently covered; a large one flags an emerging island of
// coverage where the per-cell fusion windows barely overlap.
func DiagnoseCoverage(cells []grid.Point, radii []float64) (alpha float64, at grid.Point, ok bool) {
	if len(cells) == 0 {
		return 0, grid.Point{}, false
	}
	if hit, p := circlesIntersectAtPoint(cells, radii); hit {
		return 1.0, p, true
	}
	alphaMin, alphaMax := 1.0, 10.0
	var fused grid.Point
	found := false
	for alphaMax-alphaMin > 1e-4 {
		mid := 0.5 * (alphaMin + alphaMax)
		expanded := make([]float64, len(radii))
		for i := range radii {
			expanded[i] = mid * radii[i]
		}
		if hit, p := circlesIntersectAtPoint(cells, expanded); hit {
			alphaMax, fused, found = mid, p, true
		} else {
			alphaMin = mid
		}
	}
	return alphaMax, fused, found
}

func intersectTwoCircles(c1 grid.Point, r1 float64, c2 grid.Point, r2 float64) (int, grid.Point, grid.Point) {
	d := distance(c1, c2)
	if d > r1+r2+coverageEpsilon || d < math.Abs(r1-r2)-coverageEpsilon || (d < coverageEpsilon && math.Abs(r1-r2) > coverageEpsilon) {
		return 0, grid.Point{}, grid.Point{}
	}

	a := (r1*r1 - r2*r2 + d*d) / (2 * d)
	h := math.Sqrt(math.Max(0, r1*r1-a*a))
	x2 := c1.X + a*(c2.X-c1.X)/d
	y2 := c1.Y + a*(c2.Y-c1.Y)/d

	p1 := grid.Point{X: x2 + h*(c2.Y-c1.Y)/d, Y: y2 - h*(c2.X-c1.X)/d}
	p2 := grid.Point{X: x2 - h*(c2.Y-c1.Y)/d, Y: y2 + h*(c2.X-c1.X)/d}

	if d > r1+r2-coverageEpsilon || d < math.Abs(r1-r2)+coverageEpsilon || h < coverageEpsilon {
		return 1, p1, grid.Point{}
	}
	return 2, p1, p2
}

func isInsideAll(p grid.Point, centers []grid.Point, radii []float64) bool {
	for i, c := range centers {
		if distance(p, c) > radii[i]+coverageEpsilon {
			return false
		}
	}
	return true
}

func distance(a, b grid.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func dedupePoints(points []grid.Point) []grid.Point {
	seen := make(map[string]bool, len(points))
	var out []grid.Point
	for _, p := range points {
		key := fmt.Sprintf("%.9f,%.9f", p.X, p.Y)
		if !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}
	return out
}

func centroidOf(points []grid.Point) grid.Point {
	var c grid.Point
	for _, p := range points {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(points))
	return grid.Point{X: c.X / n, Y: c.Y / n}
}
