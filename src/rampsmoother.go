package sal

// RampSmoother implements a sample-accurate linear ramp toward a target
// value, used by PropagationLine for attenuation and latency smoothing
// The contract is exact: given a target T installed with a ramp of
// R samples, after R calls to GetNextValue the current value equals T
// exactly, no matter the floating-point path taken to get there.
type RampSmoother struct {
	current  float64
	target   float64
	step     float64
	remaining int
}

// NewRampSmoother constructs a smoother already at rest at value.
func NewRampSmoother(value float64) *RampSmoother {
	return &RampSmoother{current: value, target: value}
}

// SetTarget installs a new target value to be reached after the given
// number of samples. samples <= 0 snaps immediately.
func (r *RampSmoother) SetTarget(value float64, samples int) {
	r.target = value
	if samples <= 0 {
		r.current = value
		r.remaining = 0
		r.step = 0
		return
	}
	r.step = (value - r.current) / float64(samples)
	r.remaining = samples
}

// GetNextValue advances the ramp by one sample and returns the new current
// value.
func (r *RampSmoother) GetNextValue() float64 {
	return r.GetNextValues(1)
}

// GetNextValues advances the ramp by n samples and returns the resulting
// current value, snapping to target exactly when n reaches or exceeds the
// remaining ramp length.
func (r *RampSmoother) GetNextValues(n int) float64 {
	if r.remaining <= 0 {
		return r.current
	}
	if n >= r.remaining {
		r.current = r.target
		r.remaining = 0
		r.step = 0
		return r.current
	}
	r.current += r.step * float64(n)
	r.remaining -= n
	return r.current
}

// Current returns the ramp's current value without advancing it.
func (r *RampSmoother) Current() float64 { return r.current }

// Target returns the ramp's target value.
func (r *RampSmoother) Target() float64 { return r.target }

// IsUpdating reports whether the ramp has not yet reached its target.
func (r *RampSmoother) IsUpdating() bool { return r.remaining > 0 }

// Reset snaps the smoother at rest at value.
func (r *RampSmoother) Reset(value float64) {
	r.current = value
	r.target = value
	r.remaining = 0
	r.step = 0
}
