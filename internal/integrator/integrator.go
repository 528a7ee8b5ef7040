// Package integrator folds point clouds with per-point variance into a
// RawMap: a per-cell Kalman update on the inlier path, a variance penalty
// with horizontal-variance reset on the outlier path.
package integrator

import (
	"math"

	"github.com/kestrel-robotics/terrainmap/internal/grid"
	"github.com/kestrel-robotics/terrainmap/internal/model"
	"github.com/kestrel-robotics/terrainmap/internal/params"
	"github.com/kestrel-robotics/terrainmap/internal/rawmap"
)

// Integrate folds every point in cloud into raw, in input order. Points
// falling outside the grid's current footprint are silently skipped
// (spec's OutOfMap, not an error). After all points are applied, the three
// variance layers are clamped and raw.Timestamp is stamped from the cloud.
func Integrate(raw *rawmap.RawMap, cloud model.PointCloud, p params.Parameters) {
	for i, pt := range cloud.Points {
		sigma2 := float64(cloud.Variances[i])
		idx, ok := raw.Grid.Index(grid.Point{X: float64(pt.X), Y: float64(pt.Y)})
		if !ok {
			continue // OutOfMap: silently skipped, not an error
		}
		integrateOne(raw, idx, float64(pt.Z), sigma2, pt.RGB, p)
	}

	grid.ClampLayer(raw.Grid.RawLayer(rawmap.LayerVariance), p.MinVariance, p.MaxVariance)
	grid.ClampLayer(raw.Grid.RawLayer(rawmap.LayerHVarX), p.MinHorizontalVariance, p.MaxHorizontalVariance)
	grid.ClampLayer(raw.Grid.RawLayer(rawmap.LayerHVarY), p.MinHorizontalVariance, p.MaxHorizontalVariance)

	raw.Timestamp = cloud.Timestamp
}

func integrateOne(raw *rawmap.RawMap, idx grid.Index, z, sigma2 float64, rgb uint32, p params.Parameters) {
	elevation := raw.Grid.At(rawmap.LayerElevation, idx)
	variance := raw.Grid.At(rawmap.LayerVariance, idx)
	hVarX := raw.Grid.At(rawmap.LayerHVarX, idx)
	hVarY := raw.Grid.At(rawmap.LayerHVarY, idx)
	color := raw.Grid.AtColor(rawmap.LayerColor, idx)

	if !raw.IsValid(idx) {
		*elevation = z
		*variance = sigma2
		*hVarX = p.MinHorizontalVariance
		*hVarY = p.MinHorizontalVariance
		*color = rgb
		return
	}

	d := math.Sqrt((z - *elevation) * (z - *elevation) / *variance)
	if d < p.MahalanobisThreshold {
		// Kalman update.
		newElevation := (*variance**z + sigma2**elevation) / (*variance + sigma2)
		newVariance := (sigma2 * *variance) / (sigma2 + *variance)
		*elevation = newElevation
		*variance = newVariance
		*color = rgb // color fusion is a TODO; overwrite for now
		return
	}

	// Outlier / occlusion / dynamic obstacle: penalize, don't move the
	// elevation estimate.
	*variance += p.MultiHeightNoise
	if !p.SuppressOutlierHVarReset {
		*hVarX = p.MinHorizontalVariance
		*hVarY = p.MinHorizontalVariance
	}
}
