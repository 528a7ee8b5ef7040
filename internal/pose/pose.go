// Package pose provides the rigid transform used by the optional
// position-in-parent-frame helper (spec §6's pose accessor).
package pose

import (
	"gonum.org/v1/gonum/num/quat"

	"github.com/kestrel-robotics/terrainmap/internal/grid"
)

// Point3 is a 3D point, meters.
type Point3 struct {
	X, Y, Z float64
}

// Pose is a 3D rigid transform: translation plus a unit quaternion
// orientation, from the grid frame to the parent frame.
type Pose struct {
	Translation Point3
	Orientation quat.Number // must be unit-norm
}

// Identity returns the identity pose.
func Identity() Pose {
	return Pose{Orientation: quat.Number{Real: 1}}
}

// TransformPoint rotates p by the pose's orientation and translates by the
// pose's translation, mapping a point from the grid frame into the parent
// frame.
func (p Pose) TransformPoint(pt Point3) Point3 {
	v := quat.Number{Imag: pt.X, Jmag: pt.Y, Kmag: pt.Z}
	rotated := quat.Mul(quat.Mul(p.Orientation, v), quat.Conj(p.Orientation))
	return Point3{
		X: rotated.Imag + p.Translation.X,
		Y: rotated.Jmag + p.Translation.Y,
		Z: rotated.Kmag + p.Translation.Z,
	}
}

// CellPoint3 returns a grid cell's 3D point in grid frame: its logical
// world (x, y) position and its raw elevation as z.
func CellPoint3(worldXY grid.Point, elevation float64) Point3 {
	return Point3{X: worldXY.X, Y: worldXY.Y, Z: elevation}
}

// PositionInParentFrame transforms a cell's 3D point from the grid frame
// into the parent frame described by pose.
func PositionInParentFrame(pose Pose, worldXY grid.Point, elevation float64) Point3 {
	return pose.TransformPoint(CellPoint3(worldXY, elevation))
}
