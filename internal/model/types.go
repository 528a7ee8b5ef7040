// Package model holds the small value types shared across the ingest,
// calibration, integration and engine packages, so none of them need to
// import one another just to pass a point around.
package model

import "time"

// CloudPoint is one measured 3D point with packed color, as received from
// the (out-of-scope) perception/transport layer.
type CloudPoint struct {
	X, Y, Z float32
	RGB     uint32
}

// PointCloud is a timestamped batch of points with a per-point variance.
// len(Variances) must equal len(Points); each variance must be positive and
// finite.
type PointCloud struct {
	Points    []CloudPoint
	Variances []float32
	Timestamp time.Time
}

// PropagationDelta carries the three additive variance-layer updates the
// motion model contributes between integration cycles. Each matrix is
// row-major in logical (row, col) order, sized exactly to the grid.
type PropagationDelta struct {
	DVariance [][]float32
	DHVarX    [][]float32
	DHVarY    [][]float32
	Timestamp time.Time
}
