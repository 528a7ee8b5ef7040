// Package params holds the engine's startup-only parameters. It follows the
// plain-struct-plus-constructor style the rest of the codebase uses for
// small, code-configured state (no env/flag loading library is pulled in
// for this).
package params

// Parameters are set once at startup and read by the integrator and
// propagator.
type Parameters struct {
	MinVariance float64
	MaxVariance float64

	MinHorizontalVariance float64
	MaxHorizontalVariance float64

	MahalanobisThreshold float64
	MultiHeightNoise      float64

	// SuppressOutlierHVarReset, when true, skips the spec's idiosyncratic
	// reset of h_var_x/h_var_y to the minimum on the outlier branch of
	// integration (an outlier arguably should raise horizontal
	// uncertainty, not reset it). Default false preserves the documented
	// behavior.
	SuppressOutlierHVarReset bool

	FrameID string
}

// Option mutates a Parameters during construction.
type Option func(*Parameters)

// New returns Parameters with the given options applied over defaults.
// MinVariance defaults strictly positive, per the contract that callers
// must keep it positive to avoid a zero-variance Kalman update.
func New(opts ...Option) Parameters {
	p := Parameters{
		MinVariance:           1e-4,
		MaxVariance:           10,
		MinHorizontalVariance: 1e-4,
		MaxHorizontalVariance: 1,
		MahalanobisThreshold:  2.0,
		MultiHeightNoise:      0.0015,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func WithVarianceBounds(min, max float64) Option {
	return func(p *Parameters) { p.MinVariance, p.MaxVariance = min, max }
}

func WithHorizontalVarianceBounds(min, max float64) Option {
	return func(p *Parameters) { p.MinHorizontalVariance, p.MaxHorizontalVariance = min, max }
}

func WithMahalanobisThreshold(t float64) Option {
	return func(p *Parameters) { p.MahalanobisThreshold = t }
}

func WithMultiHeightNoise(n float64) Option {
	return func(p *Parameters) { p.MultiHeightNoise = n }
}

func WithFrameID(id string) Option {
	return func(p *Parameters) { p.FrameID = id }
}

func WithSuppressOutlierHVarReset(suppress bool) Option {
	return func(p *Parameters) { p.SuppressOutlierHVarReset = suppress }
}
