// Package rawmap implements the per-cell Kalman-style raw elevation
// estimate: elevation, vertical variance, horizontal variance in both axes,
// and color, stamped with the timestamp of the last update that touched it.
package rawmap

import (
	"math"
	"time"

	"github.com/kestrel-robotics/terrainmap/internal/grid"
)

const (
	LayerElevation grid.Layer = "elevation"
	LayerVariance  grid.Layer = "variance"
	LayerHVarX     grid.Layer = "h_var_x"
	LayerHVarY     grid.Layer = "h_var_y"
	LayerColor     grid.Layer = "color"
)

// floatLayers lists the float-valued layers carried by a RawMap.
var floatLayers = []grid.Layer{LayerElevation, LayerVariance, LayerHVarX, LayerHVarY}

// colorLayers lists the color-valued layers carried by a RawMap.
var colorLayers = []grid.Layer{LayerColor}

// clearLayers is the clear-layer set reset by clear_all and swept-in cells:
// elevation and variance only. Horizontal variance and color are retained.
var clearLayers = []grid.Layer{LayerElevation, LayerVariance}

// RawMap is a CircularGrid carrying the raw per-cell estimator state.
type RawMap struct {
	Grid      *grid.CircularGrid
	Timestamp time.Time
}

// New allocates a RawMap of the given footprint, resolution and center. All
// cells start invalid.
func New(extent grid.Extent, resolution float64, center grid.Point) *RawMap {
	return &RawMap{
		Grid: grid.NewCircularGrid(extent, resolution, center, floatLayers, colorLayers),
	}
}

// SetGeometry reallocates the map for a new footprint/resolution/center.
func (m *RawMap) SetGeometry(extent grid.Extent, resolution float64, center grid.Point) {
	m.Grid.SetGeometry(extent, resolution, center, floatLayers, colorLayers)
	m.Timestamp = time.Time{}
}

// IsValid reports whether a cell has a finite elevation and variance. Per
// the data model, a cell validated as having finite elevation always has
// finite variance and vice-versa, so either test alone is sufficient, but
// both are checked to guard against a broken invariant upstream.
func (m *RawMap) IsValid(idx grid.Index) bool {
	e := *m.Grid.At(LayerElevation, idx)
	v := *m.Grid.At(LayerVariance, idx)
	return !math.IsNaN(e) && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ClearAll resets elevation and variance to NaN. Horizontal variance and
// color are untouched.
func (m *RawMap) ClearAll() {
	m.Grid.ClearAll(clearLayers, nil)
}

// Move translates the map, preserving cells whose world position still
// falls within the new footprint and NaN-clearing the rest. Horizontal
// variance and color are not cleared by a move.
func (m *RawMap) Move(newCenter grid.Point) {
	m.Grid.Move(newCenter, clearLayers, nil)
}

// Clone returns a deep value-copy snapshot of the map, safe to read and
// mutate independently of the original.
func (m *RawMap) Clone() *RawMap {
	return &RawMap{Grid: m.Grid.Clone(), Timestamp: m.Timestamp}
}
