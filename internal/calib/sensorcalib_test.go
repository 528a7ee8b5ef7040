package calib

import (
	"math"
	"testing"

	"github.com/kestrel-robotics/terrainmap/internal/model"
)

func floatsClose(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func TestFitSetsOffsetFromMean(t *testing.T) {
	var c SensorCalibration
	c.Fit([][3]float64{{1, 2, 10}, {1.2, 2.2, 10.2}, {0.8, 1.8, 9.8}}, 10.0)
	if !floatsClose(c.OffsetX, 1.0, 1e-9) || !floatsClose(c.OffsetY, 2.0, 1e-9) {
		t.Fatalf("expected offsets near (1,2), got (%v,%v)", c.OffsetX, c.OffsetY)
	}
	if !floatsClose(c.OffsetZ, 0, 1e-9) {
		t.Fatalf("expected z offset near 0 since readings average to refZ, got %v", c.OffsetZ)
	}
}

func TestApplyToCloudCorrectsEveryPoint(t *testing.T) {
	c := NewSensorCalibration()
	c.OffsetX = 1
	cloud := model.PointCloud{
		Points:    []model.CloudPoint{{X: 2, Y: 0, Z: 0}},
		Variances: []float32{0.01},
	}
	out := ApplyToCloud(c, cloud)
	if !floatsClose(float64(out.Points[0].X), 1.0, 1e-6) {
		t.Fatalf("expected corrected x=1, got %v", out.Points[0].X)
	}
}

func TestErrorIsEuclideanDistance(t *testing.T) {
	e := Error(0, 0, 0, 3, 4, 0)
	if !floatsClose(e, 5.0, 1e-9) {
		t.Fatalf("expected 3-4-5 triangle distance 5, got %v", e)
	}
}
