package sal

import "math"

// PropagationLineConfig collects PropagationLine's construction
// parameters.
type PropagationLineConfig struct {
	Distance           float64
	SamplingFrequency  float64
	SoundSpeed         float64 // default SpeedOfSound
	MaxDistance        float64 // default 100
	Interpolation      InterpolationType
	AirFiltersActive   bool
	AllowGain          bool
	ReferenceDistance  float64 // default OneSampleDistance(SamplingFrequency)
}

// PropagationLine models a one-way acoustic path of variable length: a
// delay line plus a 1/r attenuation law, both smoothed by a RampSmoother so
// that distance changes never click, and an optional frequency-dependent
// air-absorption filter.
type PropagationLine[T Sample] struct {
	samplingFrequency float64
	soundSpeed        float64
	delay             *DelayFilter[T]
	referenceDistance float64
	allowGain         bool
	interpolation     InterpolationType

	currentAttenuation float64
	currentLatency     float64

	attenuationSmoother *RampSmoother
	latencySmoother     *RampSmoother

	airFiltersActive bool
	airFilter        *FIRFilter[T]

	logger Logger
}

// NewPropagationLine constructs a PropagationLine per cfg. Negative
// distance or sampling frequency is a programming error.
func NewPropagationLine[T Sample](cfg PropagationLineConfig, logger Logger) *PropagationLine[T] {
	if cfg.Distance < 0 || cfg.SamplingFrequency <= 0 {
		panic(&ProgrammingError{Msg: "PropagationLine: negative distance or non-positive sampling frequency"})
	}
	if cfg.SoundSpeed == 0 {
		cfg.SoundSpeed = SpeedOfSound
	}
	if cfg.MaxDistance == 0 {
		cfg.MaxDistance = 100
	}
	if cfg.ReferenceDistance == 0 {
		cfg.ReferenceDistance = OneSampleDistance(cfg.SamplingFrequency)
	}
	if logger == nil {
		logger = NopLogger{}
	}

	maxLatency := int(math.Ceil(cfg.MaxDistance/cfg.SoundSpeed*cfg.SamplingFrequency)) + 1
	latency := cfg.Distance / cfg.SoundSpeed * cfg.SamplingFrequency

	p := &PropagationLine[T]{
		samplingFrequency: cfg.SamplingFrequency,
		soundSpeed:        cfg.SoundSpeed,
		delay:             NewDelayFilter[T](int(math.Round(latency)), maxLatency),
		referenceDistance: cfg.ReferenceDistance,
		allowGain:         cfg.AllowGain,
		interpolation:     cfg.Interpolation,
		airFiltersActive:  cfg.AirFiltersActive,
		logger:            logger,
	}

	attenuation := p.sanitiseAttenuation(p.computeAttenuation(cfg.Distance))
	p.currentAttenuation = attenuation
	p.currentLatency = latency
	p.attenuationSmoother = NewRampSmoother(attenuation)
	p.latencySmoother = NewRampSmoother(latency)

	coeffs := NearestAirFilter(cfg.Distance)
	p.airFilter = NewFIRFilter[T](toSampleSlice[T](coeffs[:]))

	return p
}

func toSampleSlice[T Sample](in []float64) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = T(v)
	}
	return out
}

func (p *PropagationLine[T]) computeAttenuation(distance float64) float64 {
	if distance == 0 {
		return 1
	}
	return p.referenceDistance / distance
}

func (p *PropagationLine[T]) sanitiseAttenuation(a float64) float64 {
	if !p.allowGain && math.Abs(a) > 1 {
		p.logger.Warnf("PropagationLine: attenuation %.6g exceeds unity with allow_gain=false, clipping", a)
		if a > 0 {
			return 1
		}
		return -1
	}
	return a
}

// Attenuation returns the current (smoothed) attenuation.
func (p *PropagationLine[T]) Attenuation() T {
	return T(p.currentAttenuation)
}

// CurrentLatency returns the current (smoothed) latency in samples.
func (p *PropagationLine[T]) CurrentLatency() float64 {
	return p.currentLatency
}

// SetAttenuation overrides the 1/r law, ramping to the new value over
// ramp_time seconds (0 meaning instantaneous).
func (p *PropagationLine[T]) SetAttenuation(attenuation float64, rampTime float64) {
	attenuation = p.sanitiseAttenuation(attenuation)
	samples := int(math.Round(rampTime * p.samplingFrequency))
	p.attenuationSmoother.SetTarget(attenuation, samples)
}

// SetDistance retargets both the latency and (1/r-derived) attenuation
// ramps over ramp_time seconds; it does not snap. If air filters are
// active, the air filter's coefficients are retargeted over the same ramp.
func (p *PropagationLine[T]) SetDistance(distance float64, rampTime float64) {
	if distance < 0 {
		panic(&ProgrammingError{Msg: "PropagationLine.SetDistance: negative distance"})
	}
	samples := int(math.Round(rampTime * p.samplingFrequency))
	latency := distance / p.soundSpeed * p.samplingFrequency
	p.latencySmoother.SetTarget(latency, samples)
	attenuation := p.sanitiseAttenuation(p.computeAttenuation(distance))
	p.attenuationSmoother.SetTarget(attenuation, samples)
	if p.airFiltersActive {
		coeffs := NearestAirFilter(distance)
		p.airFilter.SetCoefficients(toSampleSlice[T](coeffs[:]), samples)
	}
}

// SetAirFiltersActive toggles whether Write() passes samples through the
// air-absorption filter first.
func (p *PropagationLine[T]) SetAirFiltersActive(active bool) {
	p.airFiltersActive = active
}

// Write stores one sample into the delay line, first passing it through
// the air filter if active.
func (p *PropagationLine[T]) Write(sample T) {
	if p.airFiltersActive {
		sample = p.airFilter.FilterSample(sample)
	}
	p.delay.Write(sample)
}

// WriteBlock bulk-writes samples, air-filtering first if active.
func (p *PropagationLine[T]) WriteBlock(samples []T) {
	if !p.airFiltersActive {
		p.delay.WriteBlock(samples)
		return
	}
	filtered := make([]T, len(samples))
	p.airFilter.Filter(samples, filtered)
	p.delay.WriteBlock(filtered)
}

// Read returns current_attenuation * (fractional or rounded) delay read,
// per the configured interpolation policy.
func (p *PropagationLine[T]) Read() T {
	var delayed T
	if p.interpolation == Linear {
		delayed = p.delay.FractionalReadAt(p.currentLatency)
	} else {
		delayed = p.delay.ReadAt(int(math.Round(p.currentLatency)))
	}
	return T(p.currentAttenuation) * delayed
}

// ReadBlock reads numSamples samples into dst. If no smoothing is in
// progress and interpolation is Rounding, it uses the bulk delay read plus
// a scalar multiply fast path; otherwise it iterates per-sample,
// advancing temporary copies of the smoothers so Tick() remains the single
// place that commits ramp progress.
func (p *PropagationLine[T]) ReadBlock(dst []T) {
	n := len(dst)
	if p.interpolation == Rounding && !p.attenuationSmoother.IsUpdating() && !p.latencySmoother.IsUpdating() {
		p.delay.ReadBlock(dst)
		attenuation := T(p.currentAttenuation)
		for i := range dst {
			dst[i] *= attenuation
		}
		return
	}

	attenuationCopy := *p.attenuationSmoother
	latencyCopy := *p.latencySmoother
	for i := 0; i < n; i++ {
		latency := latencyCopy.Current()
		attenuation := attenuationCopy.Current()
		var delayed T
		if p.interpolation == Linear {
			delayed = p.delay.FractionalReadAt(latency - float64(i))
		} else {
			delayed = p.delay.ReadAt(int(math.Round(latency)) - i)
		}
		dst[i] = T(attenuation) * delayed
		latencyCopy.GetNextValue()
		attenuationCopy.GetNextValue()
	}
}

// Tick advances the smoothers by n samples (committing ramp progress),
// then the delay line by n, with the delay's integer latency tracking
// round(current_latency).
func (p *PropagationLine[T]) Tick(n int) {
	p.currentAttenuation = p.attenuationSmoother.GetNextValues(n)
	p.currentLatency = p.latencySmoother.GetNextValues(n)
	p.delay.SetLatency(int(math.Round(p.currentLatency)))
	p.delay.Tick(n)
}

// Reset zeros the delay line's storage and the air filter's history.
func (p *PropagationLine[T]) Reset() {
	p.delay.Reset()
	p.airFilter.Reset()
}
