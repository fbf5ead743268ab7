package sal

// SpeedOfSound is the default propagation speed in meters/second, used
// wherever a distance is converted to a latency in samples.
const SpeedOfSound = 343.0

// InterpolationType selects how PropagationLine reads a fractional delay.
type InterpolationType int

const (
	// Rounding reads the nearest integer tap.
	Rounding InterpolationType = iota
	// Linear convexly combines the two adjacent integer taps.
	Linear
)

// OneSampleDistance returns the distance corresponding to one sample of
// latency at the given sampling frequency; it is the conventional default
// reference distance (the 0 dB point of the 1/r attenuation law).
func OneSampleDistance(samplingFrequency float64) float64 {
	return SpeedOfSound / samplingFrequency
}
