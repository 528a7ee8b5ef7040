// Package fuser computes the spatially-fused map from a RawMap snapshot:
// for every requested cell, a Gaussian-weighted average over a neighborhood
// sized by each cell's own horizontal variance.
package fuser

import (
	"log"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kestrel-robotics/terrainmap/internal/fusedmap"
	"github.com/kestrel-robotics/terrainmap/internal/grid"
	"github.com/kestrel-robotics/terrainmap/internal/rawmap"
)

// ErrEmptyArea-equivalent: an empty requested area is success-without-work,
// signaled by returning early rather than by an error value (spec's
// EmptyArea is not itself an error condition).

// FuseArea recomputes fused cells within the rectangle [topLeft, topLeft+size)
// of raw's logical grid, from a snapshot of the raw map. raw must already be
// a snapshot (deep copy) taken under the raw lock by the caller: FuseArea
// itself takes no locks.
//
// Whenever the snapshot's timestamp differs from fused's, fused is cleared
// first (invariant: FusedMap.timestamp <= RawMap.timestamp), so fusion
// always begins from a clean image whenever the raw map has advanced.
func FuseArea(raw *rawmap.RawMap, fused *fusedmap.FusedMap, topLeft grid.Index, size grid.Size) {
	if size.Rows <= 0 || size.Cols <= 0 {
		return // EmptyArea: success, no work
	}

	if fused.IsStale(raw.Timestamp) {
		fused.ClearAll()
		fused.Timestamp = time.Time{}
	}

	for _, c := range raw.Grid.Submap(topLeft, size) {
		fuseCell(raw, fused, c)
	}

	fused.Timestamp = raw.Timestamp
}

func fuseCell(raw *rawmap.RawMap, fused *fusedmap.FusedMap, c grid.Index) {
	if fused.IsValid(c) {
		return // already fused at this raw timestamp
	}
	if !raw.IsValid(c) {
		return // hole
	}

	hVarX := *raw.Grid.At(rawmap.LayerHVarX, c)
	hVarY := *raw.Grid.At(rawmap.LayerHVarY, c)
	centerPos := raw.Grid.Position(c)
	resolution := raw.Grid.Resolution()

	topLeft, size := raw.Grid.WindowAround(c, 4*math.Sqrt(hVarX), 4*math.Sqrt(hVarY))

	var weights, means, variances []float64
	for _, n := range raw.Grid.Submap(topLeft, size) {
		if !raw.IsValid(n) {
			continue
		}
		w := neighborWeight(raw, n, centerPos, resolution)
		if w <= 0 {
			continue
		}
		weights = append(weights, w)
		means = append(means, *raw.Grid.At(rawmap.LayerElevation, n))
		variances = append(variances, *raw.Grid.At(rawmap.LayerVariance, n))
	}

	sumW := floats.Sum(weights)
	if sumW <= 0 {
		copyRawToFused(raw, fused, c)
		return
	}

	var sumWMu, sumWMuSqPlusVar float64
	for i, w := range weights {
		sumWMu += w * means[i]
		sumWMuSqPlusVar += w * (variances[i] + means[i]*means[i])
	}
	muBar := sumWMu / sumW
	// Law of total variance over a weighted mixture: E[Var] + Var[E].
	sigmaBar2 := sumWMuSqPlusVar/sumW - muBar*muBar

	if math.IsNaN(muBar) || math.IsInf(muBar, 0) || math.IsNaN(sigmaBar2) || math.IsInf(sigmaBar2, 0) {
		log.Printf("fuser: degenerate fusion at cell %+v (mu=%v, sigma2=%v), leaving fused cell invalid", c, muBar, sigmaBar2)
		return
	}

	*fused.Grid.At(fusedmap.LayerElevation, c) = muBar
	*fused.Grid.At(fusedmap.LayerVariance, c) = sigmaBar2
	*fused.Grid.AtColor(fusedmap.LayerColor, c) = *raw.Grid.AtColor(rawmap.LayerColor, c)
}

// neighborWeight computes w_n = P_x * P_y, where P_a is the probability
// mass the neighbor's own horizontal-variance Gaussian places within one
// cell width of the center cell along axis a. The standard deviation used
// is always the neighbor's, not the center's: it encodes how likely the
// neighbor's true footprint is to overlap the center cell.
func neighborWeight(raw *rawmap.RawMap, n grid.Index, centerPos grid.Point, resolution float64) float64 {
	nPos := raw.Grid.Position(n)
	sx := math.Sqrt(*raw.Grid.At(rawmap.LayerHVarX, n))
	sy := math.Sqrt(*raw.Grid.At(rawmap.LayerHVarY, n))

	px := axisProbabilityMass(math.Abs(nPos.X-centerPos.X), resolution, sx)
	py := axisProbabilityMass(math.Abs(nPos.Y-centerPos.Y), resolution, sy)
	return px * py
}

func axisProbabilityMass(d, resolution, sigma float64) float64 {
	normal := distuv.Normal{Mu: 0, Sigma: sigma}
	return normal.CDF(d+resolution/2) - normal.CDF(d-resolution/2)
}

func copyRawToFused(raw *rawmap.RawMap, fused *fusedmap.FusedMap, c grid.Index) {
	*fused.Grid.At(fusedmap.LayerElevation, c) = *raw.Grid.At(rawmap.LayerElevation, c)
	*fused.Grid.At(fusedmap.LayerVariance, c) = *raw.Grid.At(rawmap.LayerVariance, c)
	*fused.Grid.AtColor(fusedmap.LayerColor, c) = *raw.Grid.AtColor(rawmap.LayerColor, c)
}
