// Package calib applies per-sensor extrinsic bias/scale correction to
// incoming cloud points before they reach the integrator, the same
// offset-and-scale model the teacher applied per-IMU, repointed at a
// point-cloud sensor's mounting offset.
package calib

import (
	"math"

	"github.com/kestrel-robotics/terrainmap/internal/model"
)

// SensorCalibration holds the bias and scale correction for one point-cloud
// source (e.g. one LIDAR or depth camera feeding the map).
type SensorCalibration struct {
	OffsetX, OffsetY, OffsetZ float64
	ScaleX, ScaleY, ScaleZ    float64
}

// NewSensorCalibration returns an identity calibration (no offset, unit
// scale).
func NewSensorCalibration() SensorCalibration {
	return SensorCalibration{ScaleX: 1, ScaleY: 1, ScaleZ: 1}
}

// Fit sets the calibration's offsets from the average of a set of raw
// readings taken against a known-flat reference surface at refZ. Scale is
// left at 1: without an independent ground truth span for X/Y/Z, estimating
// a reliable scale factor from a single reference plane would overfit.
func (c *SensorCalibration) Fit(rawReadings [][3]float64, refZ float64) {
	if len(rawReadings) == 0 {
		return
	}
	var sumX, sumY, sumZ float64
	for _, r := range rawReadings {
		sumX += r[0]
		sumY += r[1]
		sumZ += r[2]
	}
	n := float64(len(rawReadings))
	c.OffsetX = sumX / n
	c.OffsetY = sumY / n
	c.OffsetZ = sumZ/n - refZ
	c.ScaleX, c.ScaleY, c.ScaleZ = 1, 1, 1
}

// Apply corrects one raw measurement.
func (c SensorCalibration) Apply(x, y, z float64) (float64, float64, float64) {
	return (x - c.OffsetX) * c.ScaleX, (y - c.OffsetY) * c.ScaleY, (z - c.OffsetZ) * c.ScaleZ
}

// ApplyToCloud returns a copy of cloud with every point corrected by c.
// Variances and timestamp are untouched.
func ApplyToCloud(c SensorCalibration, cloud model.PointCloud) model.PointCloud {
	out := model.PointCloud{
		Points:    make([]model.CloudPoint, len(cloud.Points)),
		Variances: cloud.Variances,
		Timestamp: cloud.Timestamp,
	}
	for i, pt := range cloud.Points {
		x, y, z := c.Apply(float64(pt.X), float64(pt.Y), float64(pt.Z))
		out.Points[i] = model.CloudPoint{X: float32(x), Y: float32(y), Z: float32(z), RGB: pt.RGB}
	}
	return out
}

// Error computes the Euclidean distance between an expected and a measured
// 3D point, used to report calibration quality.
func Error(expectedX, expectedY, expectedZ, measuredX, measuredY, measuredZ float64) float64 {
	dx := expectedX - measuredX
	dy := expectedY - measuredY
	dz := expectedZ - measuredZ
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
