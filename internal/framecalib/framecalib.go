// Package framecalib estimates the rigid transform between a sensor's
// reported frame and the map's parent frame from a set of paired landmark
// observations. Adapted from the teacher's Procrustes alignment (used there
// to align two IMU position traces), repointed at one-time extrinsic frame
// calibration: given the same landmarks surveyed in both frames, recover
// the rotation, translation, and scale that maps one onto the other.
package framecalib

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/kestrel-robotics/terrainmap/internal/grid"
)

// Alignment is the rigid (plus uniform scale) transform that maps a point
// in the sensor frame onto the map's parent frame.
type Alignment struct {
	Rotation    [2][2]float64
	Translation grid.Point
	Scale       float64
}

// Apply maps a point from the sensor frame into the parent frame.
func (a Alignment) Apply(p grid.Point) grid.Point {
	rx := a.Rotation[0][0]*p.X + a.Rotation[0][1]*p.Y
	ry := a.Rotation[1][0]*p.X + a.Rotation[1][1]*p.Y
	return grid.Point{X: a.Scale*rx + a.Translation.X, Y: a.Scale*ry + a.Translation.Y}
}

// Fit recovers the Alignment mapping sensorLandmarks onto parentLandmarks,
// matched pairwise by index. Both slices must be the same non-zero length.
func Fit(sensorLandmarks, parentLandmarks []grid.Point) (Alignment, error) {
	n := len(sensorLandmarks)
	if n == 0 || n != len(parentLandmarks) {
		return Alignment{}, fmt.Errorf("framecalib: need matching non-empty landmark sets, got %d and %d", n, len(parentLandmarks))
	}

	centroidSensor := centroid(sensorLandmarks)
	centroidParent := centroid(parentLandmarks)
	centeredSensor := centerPoints(sensorLandmarks, centroidSensor)
	centeredParent := centerPoints(parentLandmarks, centroidParent)

	H := covarianceMatrix(centeredSensor, centeredParent)

	var svd mat.SVD
	if ok := svd.Factorize(H, mat.SVDThin); !ok {
		return Alignment{}, fmt.Errorf("framecalib: SVD factorization failed")
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	S := svd.Values(nil)

	var R mat.Dense
	R.Mul(&V, U.T())
	if mat.Det(&R) < 0 {
		reflection := mat.NewDense(2, 2, []float64{1, 0, 0, -1})
		var Vcorrected mat.Dense
		Vcorrected.Mul(&V, reflection)
		R.Mul(&Vcorrected, U.T())
		S[len(S)-1] = -S[len(S)-1]
	}

	var sumS float64
	for _, v := range S {
		sumS += v
	}
	var varSensor float64
	for _, p := range centeredSensor {
		varSensor += p.X*p.X + p.Y*p.Y
	}
	scale := 1.0
	if varSensor != 0 {
		scale = sumS / varSensor
	}

	return Alignment{
		Rotation:    [2][2]float64{{R.At(0, 0), R.At(0, 1)}, {R.At(1, 0), R.At(1, 1)}},
		Translation: residualTranslation(centroidSensor, centroidParent, R, scale),
		Scale:       scale,
	}, nil
}

func residualTranslation(centroidSensor, centroidParent grid.Point, R mat.Dense, scale float64) grid.Point {
	rx := R.At(0, 0)*centroidSensor.X + R.At(0, 1)*centroidSensor.Y
	ry := R.At(1, 0)*centroidSensor.X + R.At(1, 1)*centroidSensor.Y
	return grid.Point{X: centroidParent.X - scale*rx, Y: centroidParent.Y - scale*ry}
}

func centroid(points []grid.Point) grid.Point {
	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(points))
	return grid.Point{X: sumX / n, Y: sumY / n}
}

func centerPoints(points []grid.Point, c grid.Point) []grid.Point {
	out := make([]grid.Point, len(points))
	for i, p := range points {
		out[i] = grid.Point{X: p.X - c.X, Y: p.Y - c.Y}
	}
	return out
}

func covarianceMatrix(sensor, parent []grid.Point) *mat.Dense {
	n := len(sensor)
	sensorData := make([]float64, 2*n)
	parentData := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		sensorData[i] = sensor[i].X
		sensorData[i+n] = sensor[i].Y
		parentData[i] = parent[i].X
		parentData[i+n] = parent[i].Y
	}
	X := mat.NewDense(2, n, sensorData)
	Y := mat.NewDense(2, n, parentData)
	var H mat.Dense
	H.Mul(X, Y.T())
	return &H
}
