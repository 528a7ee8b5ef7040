// Package propagator applies externally-computed variance deltas (e.g. from
// a motion-uncertainty model) to a RawMap.
package propagator

import (
	"errors"
	"fmt"

	"github.com/kestrel-robotics/terrainmap/internal/grid"
	"github.com/kestrel-robotics/terrainmap/internal/model"
	"github.com/kestrel-robotics/terrainmap/internal/params"
	"github.com/kestrel-robotics/terrainmap/internal/rawmap"
)

// ErrSizeMismatch is returned when a propagation delta's shape does not
// match the grid's shape. The operation is a no-op in that case.
var ErrSizeMismatch = errors.New("propagator: delta shape does not match grid shape")

// Propagate adds delta.DVariance, delta.DHVarX and delta.DHVarY
// element-wise (logical indexing) to the corresponding raw layers, clamps
// the result, and stamps raw.Timestamp from delta. Returns ErrSizeMismatch
// without mutating anything if any matrix's shape differs from the grid's.
func Propagate(raw *rawmap.RawMap, delta model.PropagationDelta, p params.Parameters) error {
	rows, cols := raw.Grid.Rows(), raw.Grid.Cols()
	if err := checkShape(delta.DVariance, rows, cols); err != nil {
		return err
	}
	if err := checkShape(delta.DHVarX, rows, cols); err != nil {
		return err
	}
	if err := checkShape(delta.DHVarY, rows, cols); err != nil {
		return err
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			idx := grid.Index{R: r, C: c}
			*raw.Grid.At(rawmap.LayerVariance, idx) += float64(delta.DVariance[r][c])
			*raw.Grid.At(rawmap.LayerHVarX, idx) += float64(delta.DHVarX[r][c])
			*raw.Grid.At(rawmap.LayerHVarY, idx) += float64(delta.DHVarY[r][c])
		}
	}

	grid.ClampLayer(raw.Grid.RawLayer(rawmap.LayerVariance), p.MinVariance, p.MaxVariance)
	grid.ClampLayer(raw.Grid.RawLayer(rawmap.LayerHVarX), p.MinHorizontalVariance, p.MaxHorizontalVariance)
	grid.ClampLayer(raw.Grid.RawLayer(rawmap.LayerHVarY), p.MinHorizontalVariance, p.MaxHorizontalVariance)

	raw.Timestamp = delta.Timestamp
	return nil
}

func checkShape(m [][]float32, rows, cols int) error {
	if len(m) != rows {
		return fmt.Errorf("%w: expected %d rows, got %d", ErrSizeMismatch, rows, len(m))
	}
	for r, row := range m {
		if len(row) != cols {
			return fmt.Errorf("%w: row %d: expected %d cols, got %d", ErrSizeMismatch, r, cols, len(row))
		}
	}
	return nil
}
