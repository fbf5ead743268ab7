package sal

import "math"

// AmbisonicsConvention selects the channel-weighting convention used when
// encoding into B-format: sqrt2 weights non-zero orders by √2 and leaves
// (0,0) unweighted; N3D weights degree d by √(2d+1) in horizontal mode and
// adds that factor to the spherical-harmonic normalisation in full-3D
// mode. Whether the polar angle is used is chosen by the full-3D
// constructor, not by the convention.
type AmbisonicsConvention int

const (
	ConventionSqrt2 AmbisonicsConvention = iota
	ConventionN3D
)

// AmbisonicDirectivity encodes incoming plane waves into B-format channels
// following channel_id(d,o) = d^2 + (d+o). Horizontal is the degenerate
// case with only (d, +-1) channels populated, matching the original
// library's AddPlaneWaveRelative; Full3D, the supplemented mode, populates
// every (d,o) pair up to the configured order using associated Legendre
// polynomials of the polar angle.
type AmbisonicDirectivity[T Sample] struct {
	order      int
	convention AmbisonicsConvention
	full3D     bool
}

// NewAmbisonicDirectivity constructs a horizontal encoder of the given
// order, matching AmbisonicsMic::AddPlaneWaveRelative for theta-only
// encoding.
func NewAmbisonicDirectivity[T Sample](order int, convention AmbisonicsConvention) *AmbisonicDirectivity[T] {
	if order < 0 {
		panic(&ProgrammingError{Msg: "AmbisonicDirectivity: order must be non-negative"})
	}
	return &AmbisonicDirectivity[T]{order: order, convention: convention}
}

// NewFull3DAmbisonicDirectivity constructs a full spherical-harmonic
// encoder that also accounts for the polar angle instead of only the
// horizontal azimuth.
func NewFull3DAmbisonicDirectivity[T Sample](order int, convention AmbisonicsConvention) *AmbisonicDirectivity[T] {
	a := NewAmbisonicDirectivity[T](order, convention)
	a.full3D = true
	return a
}

func (a *AmbisonicDirectivity[T]) Order() int { return a.order }

func (a *AmbisonicDirectivity[T]) NumChannels() int { return BFormatNumChannels(a.order) }

func (a *AmbisonicDirectivity[T]) ResetState()     {}
func (a *AmbisonicDirectivity[T]) Coincident() bool { return true }
func (a *AmbisonicDirectivity[T]) Clone() Directivity[T] {
	return &AmbisonicDirectivity[T]{order: a.order, convention: a.convention, full3D: a.full3D}
}

// ReceiveAdd encodes input into every B-format channel the receiving
// buffer exposes, weighted by the spherical-harmonic gain of direction.
func (a *AmbisonicDirectivity[T]) ReceiveAdd(input []T, direction Point, output BufferMut[T]) {
	azimuth := float64(direction.Azimuth())
	var gains []float64
	if a.full3D {
		gains = a.encodeFull3D(azimuth, float64(direction.Polar()))
	} else {
		gains = a.encodeHorizontal(azimuth)
	}
	for channel, g := range gains {
		if g == 0 {
			continue
		}
		output.MultiplyAddSamples(channel, 0, input, T(g))
	}
}

func (a *AmbisonicDirectivity[T]) horizontalWeight(degree int) float64 {
	if a.convention == ConventionN3D {
		return math.Sqrt(float64(2*degree + 1))
	}
	if degree == 0 {
		return 1
	}
	return math.Sqrt(2)
}

// encodeHorizontal writes input*weight*cos/sin(degree*azimuth) into the
// (degree, +-1) channel pair and input into (0,0), with weight from
// horizontalWeight (√2 under sqrt2, √(2d+1) under N3D).
func (a *AmbisonicDirectivity[T]) encodeHorizontal(azimuth float64) []float64 {
	gains := make([]float64, BFormatNumChannels(a.order))
	gains[BFormatChannelID(0, 0)] = 1
	for d := 1; d <= a.order; d++ {
		w := a.horizontalWeight(d)
		gains[BFormatChannelID(d, 1)] = w * math.Cos(float64(d)*azimuth)
		gains[BFormatChannelID(d, -1)] = w * math.Sin(float64(d)*azimuth)
	}
	return gains
}

// encodeFull3D additionally weights every (d,o) channel using normalised
// associated Legendre polynomials of cos(polar), the natural
// generalisation of the horizontal-only formula to a full 3D soundfield.
func (a *AmbisonicDirectivity[T]) encodeFull3D(azimuth, polar float64) []float64 {
	gains := make([]float64, BFormatNumChannels(a.order))
	cosPolar := math.Cos(polar)
	gains[BFormatChannelID(0, 0)] = 1
	for d := 1; d <= a.order; d++ {
		for o := -d; o <= d; o++ {
			m := o
			if m < 0 {
				m = -m
			}
			leg := associatedLegendre(d, m, cosPolar)
			norm := sphericalHarmonicNormalisation(d, m, a.convention)
			var trig float64
			if o >= 0 {
				trig = math.Cos(float64(m) * azimuth)
			} else {
				trig = math.Sin(float64(m) * azimuth)
			}
			gains[BFormatChannelID(d, o)] = norm * leg * trig
		}
	}
	return gains
}

func sphericalHarmonicNormalisation(degree, order int, convention AmbisonicsConvention) float64 {
	delta := 1.0
	if order == 0 {
		delta = 2.0
	}
	n := factorial(degree - order)
	d := factorial(degree + order)
	base := math.Sqrt(delta * n / d)
	if convention == ConventionN3D {
		base *= math.Sqrt(float64(2*degree + 1))
	}
	return base
}

func factorial(n int) float64 {
	result := 1.0
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return result
}

// associatedLegendre evaluates P_degree^order(x) via the standard
// recurrence relations (unnormalised, Condon-Shortley phase included).
func associatedLegendre(degree, order int, x float64) float64 {
	pmm := 1.0
	if order > 0 {
		somx2 := math.Sqrt((1 - x) * (1 + x))
		fact := 1.0
		for i := 1; i <= order; i++ {
			pmm *= -fact * somx2
			fact += 2
		}
	}
	if degree == order {
		return pmm
	}
	pmmp1 := x * float64(2*order+1) * pmm
	if degree == order+1 {
		return pmmp1
	}
	pll := 0.0
	for ll := order + 2; ll <= degree; ll++ {
		pll = (x*float64(2*ll-1)*pmmp1 - float64(ll+order-1)*pmm) / float64(ll-order)
		pmm = pmmp1
		pmmp1 = pll
	}
	return pll
}
