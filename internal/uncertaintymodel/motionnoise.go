// Package uncertaintymodel derives the per-cell variance growth injected by
// robot motion between fusion cycles. Adapted from the teacher's
// Uncertainty type, which estimated an IMU sample's uncertainty from a
// noise level and an integration time; here the same noiseLevel*sqrt(dt)
// model is applied per grid cell to build the dense delta matrices the
// propagator consumes.
package uncertaintymodel

import "math"

// Model holds the motion-noise parameters for one robot/sensor pairing.
type Model struct {
	// NoiseLevel is the variance growth of the underlying motion estimate
	// (odometry, IMU dead-reckoning, ...) over one second; growth over dt
	// seconds is NoiseLevel*sqrt(dt).
	NoiseLevel float64
	// HorizontalNoiseLevel is the corresponding one-second growth for the
	// horizontal (map-plane) variance terms.
	HorizontalNoiseLevel float64
}

// NewModel builds a Model from the two noise levels.
func NewModel(noiseLevel, horizontalNoiseLevel float64) Model {
	return Model{NoiseLevel: noiseLevel, HorizontalNoiseLevel: horizontalNoiseLevel}
}

// Estimate returns the elevation-variance growth over an integration
// window of dt seconds.
func (m Model) Estimate(dt float64) float64 {
	return m.NoiseLevel * math.Sqrt(dt)
}

// EstimateHorizontal returns the horizontal-variance growth over dt
// seconds.
func (m Model) EstimateHorizontal(dt float64) float64 {
	return m.HorizontalNoiseLevel * math.Sqrt(dt)
}

// Deltas is the dense per-cell variance growth to add to the raw map's
// variance, h_var_x, and h_var_y layers for one propagation step.
type Deltas struct {
	DVariance [][]float32
	DHVarX    [][]float32
	DHVarY    [][]float32
}

// MotionNoiseDeltas builds uniform variance-growth matrices of the given
// grid shape for a propagation step of dt seconds. Every cell grows by the
// same amount: this model has no notion of direction-dependent motion
// uncertainty, matching the teacher's scalar per-sample estimate.
func MotionNoiseDeltas(rows, cols int, m Model, dt float64) Deltas {
	dv := m.Estimate(dt)
	dh := m.EstimateHorizontal(dt)

	out := Deltas{
		DVariance: make([][]float32, rows),
		DHVarX:    make([][]float32, rows),
		DHVarY:    make([][]float32, rows),
	}
	for r := 0; r < rows; r++ {
		out.DVariance[r] = make([]float32, cols)
		out.DHVarX[r] = make([]float32, cols)
		out.DHVarY[r] = make([]float32, cols)
		for c := 0; c < cols; c++ {
			out.DVariance[r][c] = float32(dv)
			out.DHVarX[r][c] = float32(dh)
			out.DHVarY[r][c] = float32(dh)
		}
	}
	return out
}
