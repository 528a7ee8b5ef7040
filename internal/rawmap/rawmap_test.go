package rawmap

import (
	"math"
	"testing"

	"github.com/kestrel-robotics/terrainmap/internal/grid"
	"github.com/stretchr/testify/require"
)

func TestNewAllCellsInvalid(t *testing.T) {
	m := New(grid.Extent{X: 0.3, Y: 0.3}, 0.1, grid.Point{})
	center, ok := m.Grid.Index(grid.Point{X: 0, Y: 0})
	require.True(t, ok)
	require.False(t, m.IsValid(center))
}

func TestIsValidRequiresFiniteElevationAndVariance(t *testing.T) {
	m := New(grid.Extent{X: 0.3, Y: 0.3}, 0.1, grid.Point{})
	center, _ := m.Grid.Index(grid.Point{X: 0, Y: 0})

	*m.Grid.At(LayerElevation, center) = 0.5
	require.False(t, m.IsValid(center), "variance still NaN")

	*m.Grid.At(LayerVariance, center) = 0.01
	require.True(t, m.IsValid(center))

	*m.Grid.At(LayerVariance, center) = math.Inf(1)
	require.False(t, m.IsValid(center), "+Inf variance is clamped-out, counts as invalid")
}

func TestClearAllResetsElevationAndVarianceOnly(t *testing.T) {
	m := New(grid.Extent{X: 0.3, Y: 0.3}, 0.1, grid.Point{})
	center, _ := m.Grid.Index(grid.Point{X: 0, Y: 0})
	*m.Grid.At(LayerElevation, center) = 1
	*m.Grid.At(LayerVariance, center) = 0.01
	*m.Grid.At(LayerHVarX, center) = 1e-4
	*m.Grid.At(LayerHVarY, center) = 1e-4
	*m.Grid.AtColor(LayerColor, center) = 0xABCDEF

	m.ClearAll()

	require.True(t, math.IsNaN(*m.Grid.At(LayerElevation, center)))
	require.True(t, math.IsNaN(*m.Grid.At(LayerVariance, center)))
	require.Equal(t, 1e-4, *m.Grid.At(LayerHVarX, center))
	require.Equal(t, uint32(0xABCDEF), *m.Grid.AtColor(LayerColor, center))
}

func TestCloneIsIndependent(t *testing.T) {
	m := New(grid.Extent{X: 0.3, Y: 0.3}, 0.1, grid.Point{})
	center, _ := m.Grid.Index(grid.Point{X: 0, Y: 0})
	*m.Grid.At(LayerElevation, center) = 1
	*m.Grid.At(LayerVariance, center) = 0.01

	clone := m.Clone()
	*m.Grid.At(LayerElevation, center) = 99

	require.Equal(t, 1.0, *clone.Grid.At(LayerElevation, center))
}
