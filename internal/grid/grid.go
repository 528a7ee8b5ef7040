// Package grid implements the rolling-origin 2D dense layer storage shared
// by the raw and fused elevation maps.
package grid

import (
	"math"
)

// Layer names a dense value plane carried by a CircularGrid.
type Layer string

// Index is a logical (row, column) address into a grid, independent of the
// grid's rolling start offset.
type Index struct {
	R, C int
}

// Point is a 2D world-frame position, meters.
type Point struct {
	X, Y float64
}

// Size is a grid shape in cells.
type Size struct {
	Rows, Cols int
}

// Extent is a physical footprint, meters.
type Extent struct {
	X, Y float64
}

// CircularGrid is a fixed-size dense 2D array of named layers addressed
// through a rolling start index, so rigid translation only touches the
// strip that newly enters the footprint instead of the whole buffer.
//
// CircularGrid has no internal locking: callers (the map engine) own the
// locking discipline across the raw/fused pair.
type CircularGrid struct {
	rows, cols int
	resolution float64
	center     Point
	startRow   int
	startCol   int

	floats map[Layer][]float64
	colors map[Layer][]uint32
}

// NewCircularGrid allocates a grid of the given physical extent and
// resolution, with the requested float and color layers. All cells start
// invalid (float layers NaN, color layers 0).
func NewCircularGrid(extent Extent, resolution float64, center Point, floatLayers, colorLayers []Layer) *CircularGrid {
	g := &CircularGrid{}
	g.SetGeometry(extent, resolution, center, floatLayers, colorLayers)
	return g
}

// SetGeometry (re)allocates the grid's storage for a new footprint,
// resolution and center. start_index resets to (0,0) and every cell
// becomes invalid.
func (g *CircularGrid) SetGeometry(extent Extent, resolution float64, center Point, floatLayers, colorLayers []Layer) {
	g.rows = int(math.Ceil(extent.Y / resolution))
	g.cols = int(math.Ceil(extent.X / resolution))
	if g.rows < 1 {
		g.rows = 1
	}
	if g.cols < 1 {
		g.cols = 1
	}
	g.resolution = resolution
	g.center = center
	g.startRow, g.startCol = 0, 0

	n := g.rows * g.cols
	g.floats = make(map[Layer][]float64, len(floatLayers))
	for _, l := range floatLayers {
		s := make([]float64, n)
		for i := range s {
			s[i] = math.NaN()
		}
		g.floats[l] = s
	}
	g.colors = make(map[Layer][]uint32, len(colorLayers))
	for _, l := range colorLayers {
		g.colors[l] = make([]uint32, n)
	}
}

// Rows returns the number of grid rows.
func (g *CircularGrid) Rows() int { return g.rows }

// Cols returns the number of grid columns.
func (g *CircularGrid) Cols() int { return g.cols }

// Resolution returns the cell size in meters.
func (g *CircularGrid) Resolution() float64 { return g.resolution }

// Center returns the world-frame center of the grid footprint.
func (g *CircularGrid) Center() Point { return g.center }

// StartIndex returns the rolling buffer offset of logical (0,0).
func (g *CircularGrid) StartIndex() Index { return Index{R: g.startRow, C: g.startCol} }

// FloatLayerNames returns the names of the grid's float layers.
func (g *CircularGrid) FloatLayerNames() []Layer {
	names := make([]Layer, 0, len(g.floats))
	for l := range g.floats {
		names = append(names, l)
	}
	return names
}

// ColorLayerNames returns the names of the grid's color layers.
func (g *CircularGrid) ColorLayerNames() []Layer {
	names := make([]Layer, 0, len(g.colors))
	for l := range g.colors {
		names = append(names, l)
	}
	return names
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// bufIndex translates a logical index to the flat storage offset.
func (g *CircularGrid) bufIndex(idx Index) int {
	br := mod(idx.R+g.startRow, g.rows)
	bc := mod(idx.C+g.startCol, g.cols)
	return br*g.cols + bc
}

// At returns a pointer into the named float layer's storage for the given
// logical index, so the caller can read or mutate the cell in place.
func (g *CircularGrid) At(layer Layer, idx Index) *float64 {
	return &g.floats[layer][g.bufIndex(idx)]
}

// AtColor returns a pointer into the named color layer's storage for the
// given logical index.
func (g *CircularGrid) AtColor(layer Layer, idx Index) *uint32 {
	return &g.colors[layer][g.bufIndex(idx)]
}

// RawLayer returns the backing storage slice for a float layer, in buffer
// (not logical) order. Intended for whole-layer, order-independent
// elementwise operations such as clamping; callers that care about logical
// order must go through At/Index instead.
func (g *CircularGrid) RawLayer(layer Layer) []float64 {
	return g.floats[layer]
}

// origin returns the world-space corner of logical (0,0).
func (g *CircularGrid) origin() Point {
	return Point{
		X: g.center.X - float64(g.cols)*g.resolution/2,
		Y: g.center.Y - float64(g.rows)*g.resolution/2,
	}
}

// Index returns the logical index containing the given world position, or
// false if the position falls outside the current footprint.
func (g *CircularGrid) Index(world Point) (Index, bool) {
	o := g.origin()
	c := int(math.Floor((world.X - o.X) / g.resolution))
	r := int(math.Floor((world.Y - o.Y) / g.resolution))
	if r < 0 || r >= g.rows || c < 0 || c >= g.cols {
		return Index{}, false
	}
	return Index{R: r, C: c}, true
}

// Position returns the world-space center of a logical cell.
func (g *CircularGrid) Position(idx Index) Point {
	o := g.origin()
	return Point{
		X: o.X + (float64(idx.C)+0.5)*g.resolution,
		Y: o.Y + (float64(idx.R)+0.5)*g.resolution,
	}
}

// ClearAll NaN-fills the given float layers and zeroes the given color
// layers across the whole grid.
func (g *CircularGrid) ClearAll(floatLayers, colorLayers []Layer) {
	for _, l := range floatLayers {
		s := g.floats[l]
		for i := range s {
			s[i] = math.NaN()
		}
	}
	for _, l := range colorLayers {
		s := g.colors[l]
		for i := range s {
			s[i] = 0
		}
	}
}

// Move computes the integer cell shift towards newCenter (rounded to the
// nearest whole cell so the remaining residual is under half a cell),
// advances start_index by that shift, and NaN-clears (zero for color) the
// strip of cells that the shift sweeps into the footprint on the given
// clear-layer set. The sub-cell residual is dropped, not carried forward:
// center_position only moves by whole cells, so it can drift up to half a
// cell from the point actually requested.
func (g *CircularGrid) Move(newCenter Point, clearFloatLayers, clearColorLayers []Layer) {
	dxCells := (newCenter.X - g.center.X) / g.resolution
	dyCells := (newCenter.Y - g.center.Y) / g.resolution
	dc := int(math.Round(dxCells))
	dr := int(math.Round(dyCells))
	if dc == 0 && dr == 0 {
		return
	}

	g.center.X += float64(dc) * g.resolution
	g.center.Y += float64(dr) * g.resolution

	if dc != 0 {
		g.clearCols(dc, clearFloatLayers, clearColorLayers)
	}
	if dr != 0 {
		g.clearRows(dr, clearFloatLayers, clearColorLayers)
	}

	g.startCol = mod(g.startCol+dc, g.cols)
	g.startRow = mod(g.startRow+dr, g.rows)
}

// clearCols invalidates the dc columns newly entering the footprint (before
// start_index itself is advanced) on the clear-layer set.
//
// This clears in the *old* logical frame, the frame At/bufIndex still use
// until start_index is advanced by the caller. A positive dc means
// start_index (and so the whole footprint) moves right, so the buffer
// slots that are about to become the new rightmost columns are the ones
// currently holding the old *leftmost* columns — those are the slots that
// get overwritten by the scroll and so must be cleared. Symmetrically, a
// negative dc reuses the old rightmost columns' slots.
func (g *CircularGrid) clearCols(dc int, floatLayers, colorLayers []Layer) {
	n := dc
	negative := dc < 0
	if negative {
		n = -dc
	}
	if n > g.cols {
		n = g.cols
	}
	for k := 0; k < n; k++ {
		var c int
		if negative {
			c = g.cols - 1 - k // old rightmost columns are being overwritten
		} else {
			c = k // old leftmost columns are being overwritten
		}
		for r := 0; r < g.rows; r++ {
			idx := Index{R: r, C: c}
			for _, l := range floatLayers {
				*g.At(l, idx) = math.NaN()
			}
			for _, l := range colorLayers {
				*g.AtColor(l, idx) = 0
			}
		}
	}
}

// clearRows is clearCols' row-axis counterpart; see its comment for why the
// overwritten slots are the old far edge opposite the direction of travel.
func (g *CircularGrid) clearRows(dr int, floatLayers, colorLayers []Layer) {
	n := dr
	negative := dr < 0
	if negative {
		n = -dr
	}
	if n > g.rows {
		n = g.rows
	}
	for k := 0; k < n; k++ {
		var r int
		if negative {
			r = g.rows - 1 - k // old bottommost rows are being overwritten
		} else {
			r = k // old topmost rows are being overwritten
		}
		for c := 0; c < g.cols; c++ {
			idx := Index{R: r, C: c}
			for _, l := range floatLayers {
				*g.At(l, idx) = math.NaN()
			}
			for _, l := range colorLayers {
				*g.AtColor(l, idx) = 0
			}
		}
	}
}

// Submap returns every logical index in the rectangle starting at topLeft
// with the given size, wrapped modulo the grid shape. size is clamped to
// the grid's own shape so an oversized request cannot visit a cell twice.
func (g *CircularGrid) Submap(topLeft Index, size Size) []Index {
	rows := size.Rows
	if rows > g.rows {
		rows = g.rows
	}
	cols := size.Cols
	if cols > g.cols {
		cols = g.cols
	}
	if rows <= 0 || cols <= 0 {
		return nil
	}
	out := make([]Index, 0, rows*cols)
	for dr := 0; dr < rows; dr++ {
		for dc := 0; dc < cols; dc++ {
			out = append(out, Index{
				R: mod(topLeft.R+dr, g.rows),
				C: mod(topLeft.C+dc, g.cols),
			})
		}
	}
	return out
}

// WindowAround returns the submap top-left and size of the logical
// rectangle covering a world-space rectangle of the given side lengths
// centered on the given logical cell.
func (g *CircularGrid) WindowAround(center Index, lengthX, lengthY float64) (Index, Size) {
	halfCols := int(math.Ceil(lengthX / g.resolution / 2))
	halfRows := int(math.Ceil(lengthY / g.resolution / 2))
	if halfCols < 0 {
		halfCols = 0
	}
	if halfRows < 0 {
		halfRows = 0
	}
	topLeft := Index{R: center.R - halfRows, C: center.C - halfCols}
	size := Size{Rows: 2*halfRows + 1, Cols: 2*halfCols + 1}
	return topLeft, size
}

// Clone returns a deep value copy of the grid: independent storage, no
// shared mutable slices with the original.
func (g *CircularGrid) Clone() *CircularGrid {
	out := &CircularGrid{
		rows:       g.rows,
		cols:       g.cols,
		resolution: g.resolution,
		center:     g.center,
		startRow:   g.startRow,
		startCol:   g.startCol,
		floats:     make(map[Layer][]float64, len(g.floats)),
		colors:     make(map[Layer][]uint32, len(g.colors)),
	}
	for l, s := range g.floats {
		cp := make([]float64, len(s))
		copy(cp, s)
		out.floats[l] = cp
	}
	for l, s := range g.colors {
		cp := make([]uint32, len(s))
		copy(cp, s)
		out.colors[l] = cp
	}
	return out
}
