package propagator

import (
	"testing"
	"time"

	"github.com/kestrel-robotics/terrainmap/internal/grid"
	"github.com/kestrel-robotics/terrainmap/internal/model"
	"github.com/kestrel-robotics/terrainmap/internal/params"
	"github.com/kestrel-robotics/terrainmap/internal/rawmap"
	"github.com/stretchr/testify/require"
)

func zeros(rows, cols int) [][]float32 {
	m := make([][]float32, rows)
	for r := range m {
		m[r] = make([]float32, cols)
	}
	return m
}

func TestPropagateAddsAndClamps(t *testing.T) {
	m := rawmap.New(grid.Extent{X: 0.3, Y: 0.3}, 0.1, grid.Point{})
	p := params.New(params.WithVarianceBounds(0.001, 10), params.WithHorizontalVarianceBounds(1e-4, 1))

	center, ok := m.Grid.Index(grid.Point{X: 0, Y: 0})
	require.True(t, ok)
	*m.Grid.At(rawmap.LayerVariance, center) = 1.0
	*m.Grid.At(rawmap.LayerHVarX, center) = 0.5
	*m.Grid.At(rawmap.LayerHVarY, center) = 0.5

	dv := zeros(3, 3)
	dhx := zeros(3, 3)
	dhy := zeros(3, 3)
	dv[center.R][center.C] = 0.25
	dhx[center.R][center.C] = 0.1
	dhy[center.R][center.C] = 0.1

	ts := time.Unix(42, 0)
	err := Propagate(m, model.PropagationDelta{DVariance: dv, DHVarX: dhx, DHVarY: dhy, Timestamp: ts}, p)
	require.NoError(t, err)

	require.InDelta(t, 1.25, *m.Grid.At(rawmap.LayerVariance, center), 1e-9)
	// The delta is float32, so the sum carries float32(0.1)'s rounding.
	require.InDelta(t, 0.5+float64(float32(0.1)), *m.Grid.At(rawmap.LayerHVarX, center), 1e-9)
	require.True(t, m.Timestamp.Equal(ts))
}

func TestPropagateSizeMismatchIsNoOp(t *testing.T) {
	m := rawmap.New(grid.Extent{X: 0.3, Y: 0.3}, 0.1, grid.Point{})
	p := params.New()

	center, _ := m.Grid.Index(grid.Point{X: 0, Y: 0})
	*m.Grid.At(rawmap.LayerVariance, center) = 1.0
	before := m.Timestamp

	err := Propagate(m, model.PropagationDelta{
		DVariance: zeros(2, 2),
		DHVarX:    zeros(3, 3),
		DHVarY:    zeros(3, 3),
		Timestamp: time.Unix(1, 0),
	}, p)

	require.ErrorIs(t, err, ErrSizeMismatch)
	require.InDelta(t, 1.0, *m.Grid.At(rawmap.LayerVariance, center), 1e-9)
	require.True(t, m.Timestamp.Equal(before))
}
