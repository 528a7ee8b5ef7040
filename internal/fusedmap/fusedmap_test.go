package fusedmap

import (
	"testing"
	"time"

	"github.com/kestrel-robotics/terrainmap/internal/grid"
	"github.com/stretchr/testify/require"
)

func TestIsStaleComparesTimestamp(t *testing.T) {
	m := New(grid.Extent{X: 0.3, Y: 0.3}, 0.1, grid.Point{})
	raw := time.Unix(100, 0)
	require.True(t, m.IsStale(raw), "zero-value fused timestamp should be stale")

	m.Timestamp = raw
	require.False(t, m.IsStale(raw))

	require.True(t, m.IsStale(raw.Add(time.Second)))
}

func TestMoveClearsColor(t *testing.T) {
	m := New(grid.Extent{X: 0.5, Y: 0.5}, 0.1, grid.Point{})
	center, ok := m.Grid.Index(grid.Point{X: 0, Y: 0})
	require.True(t, ok)
	*m.Grid.AtColor(LayerColor, center) = 0xFF0000
	// Logical column 1 scrolls out on a +2 column move; its buffer slot
	// becomes the new rightmost column.
	*m.Grid.AtColor(LayerColor, grid.Index{R: center.R, C: 1}) = 0x00FF00

	m.Move(grid.Point{X: 0.2, Y: 0})

	newCol, ok := m.Grid.Index(grid.Point{X: 0.2, Y: 0})
	require.True(t, ok)
	require.Equal(t, uint32(0), *m.Grid.AtColor(LayerColor, grid.Index{R: newCol.R, C: m.Grid.Cols() - 1}))
}
