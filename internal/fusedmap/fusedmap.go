// Package fusedmap implements the spatially-fused elevation view: one
// CircularGrid of elevation, variance and color, stamped with the raw
// timestamp it was last fused against.
package fusedmap

import (
	"math"
	"time"

	"github.com/kestrel-robotics/terrainmap/internal/grid"
)

const (
	LayerElevation grid.Layer = "elevation"
	LayerVariance  grid.Layer = "variance"
	LayerColor     grid.Layer = "color"
)

var floatLayers = []grid.Layer{LayerElevation, LayerVariance}
var colorLayers = []grid.Layer{LayerColor}

// FusedMap is a CircularGrid carrying the fused estimate plus a staleness
// marker (Timestamp) against the raw map it was computed from.
type FusedMap struct {
	Grid      *grid.CircularGrid
	Timestamp time.Time
}

// New allocates a FusedMap sharing geometry with a RawMap.
func New(extent grid.Extent, resolution float64, center grid.Point) *FusedMap {
	return &FusedMap{
		Grid: grid.NewCircularGrid(extent, resolution, center, floatLayers, colorLayers),
	}
}

// SetGeometry reallocates the map for a new footprint/resolution/center.
func (m *FusedMap) SetGeometry(extent grid.Extent, resolution float64, center grid.Point) {
	m.Grid.SetGeometry(extent, resolution, center, floatLayers, colorLayers)
	m.Timestamp = time.Time{}
}

// IsValid reports whether a fused cell carries a finite elevation and
// variance.
func (m *FusedMap) IsValid(idx grid.Index) bool {
	e := *m.Grid.At(LayerElevation, idx)
	v := *m.Grid.At(LayerVariance, idx)
	return !math.IsNaN(e) && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ClearAll resets elevation and variance to NaN, and color to 0.
func (m *FusedMap) ClearAll() {
	m.Grid.ClearAll(floatLayers, colorLayers)
}

// Move translates the map, clearing elevation, variance and color for the
// swept-in strip. Fused maps, unlike the raw map, clear color on move: the
// fused color is a derived quantity that is never meaningful to carry over
// to a cell whose elevation/variance were just invalidated.
func (m *FusedMap) Move(newCenter grid.Point) {
	m.Grid.Move(newCenter, floatLayers, colorLayers)
}

// IsStale reports whether the fused map's timestamp differs from the raw
// map's, per the invariant FusedMap.timestamp <= RawMap.timestamp.
func (m *FusedMap) IsStale(rawTimestamp time.Time) bool {
	return !m.Timestamp.Equal(rawTimestamp)
}
