package pose

import (
	"testing"

	"github.com/kestrel-robotics/terrainmap/internal/grid"
	"github.com/stretchr/testify/require"
)

func TestIdentityTransformIsNoOp(t *testing.T) {
	p := Identity()
	out := PositionInParentFrame(p, grid.Point{X: 1, Y: 2}, 3)
	require.InDelta(t, 1.0, out.X, 1e-9)
	require.InDelta(t, 2.0, out.Y, 1e-9)
	require.InDelta(t, 3.0, out.Z, 1e-9)
}

func TestTranslationOnlyShiftsPoint(t *testing.T) {
	p := Identity()
	p.Translation = Point3{X: 1, Y: 1, Z: 1}
	out := PositionInParentFrame(p, grid.Point{X: 0, Y: 0}, 0)
	require.InDelta(t, 1.0, out.X, 1e-9)
	require.InDelta(t, 1.0, out.Y, 1e-9)
	require.InDelta(t, 1.0, out.Z, 1e-9)
}
