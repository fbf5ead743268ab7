package sal

// DigitalFilter is the contract every filtering operation in the core
// consumes: PropagationLine's air filter, CuboidRoom's per-wall filters,
// Ism's RIR convolution, and FirBinauralDirectivity's ear filters. The
// core never specifies how a filter computes its output; callers only
// need an object that filters a buffer and can clone its state. FIRFilter
// and IIRFilter below are the concrete implementations this library ships.
type DigitalFilter[T Sample] interface {
	// Filter runs src through the filter and writes len(src) outputs to
	// dst (which may not alias src).
	Filter(src, dst []T)
	// FilterSample processes a single sample, advancing internal state.
	FilterSample(x T) T
	// SetCoefficients replaces the filter's coefficients. If rampSamples
	// is 0 the change is instantaneous; otherwise it is linearly
	// cross-faded in over that many subsequent FilterSample calls.
	SetCoefficients(coeffs []T, rampSamples int)
	// Coefficients returns the filter's current (target) taps.
	Coefficients() []T
	// Reset zeros the filter's internal history.
	Reset()
	// Clone returns an independent copy with its own history, used to give
	// each per-wave directivity instance its own filter state.
	Clone() DigitalFilter[T]
}

// FIRFilter is a direct-form FIR filter whose coefficients can be swapped
// with a sample-accurate linear cross-fade, matching FirBinauralDirectivity's
// `set_coefficients(new_coeffs, update_length_samples)` contract.
type FIRFilter[T Sample] struct {
	history    []T // circular, length len(target)
	head       int
	current    []T
	target     []T
	rampStep   []T
	rampLeft   int
}

// NewFIRFilter constructs a filter with the given initial taps (coefficient
// 0 multiplies the most recent input).
func NewFIRFilter[T Sample](coeffs []T) *FIRFilter[T] {
	f := &FIRFilter[T]{}
	f.SetCoefficients(coeffs, 0)
	return f
}

func (f *FIRFilter[T]) Coefficients() []T {
	out := make([]T, len(f.target))
	copy(out, f.target)
	return out
}

// SetCoefficients installs new taps. A length change forces an
// instantaneous switch (there is no principled way to cross-fade between
// filters of different order) and resets history; otherwise the taps ramp
// linearly from their current value to target over rampSamples calls to
// FilterSample (0 meaning immediate).
func (f *FIRFilter[T]) SetCoefficients(coeffs []T, rampSamples int) {
	newTarget := make([]T, len(coeffs))
	copy(newTarget, coeffs)

	if len(f.target) != len(newTarget) {
		f.history = make([]T, len(newTarget))
		f.head = 0
		f.current = append([]T(nil), newTarget...)
		f.target = newTarget
		f.rampStep = nil
		f.rampLeft = 0
		return
	}

	f.target = newTarget
	if rampSamples <= 0 {
		f.current = append([]T(nil), newTarget...)
		f.rampStep = nil
		f.rampLeft = 0
		return
	}

	f.rampStep = make([]T, len(newTarget))
	for i := range newTarget {
		f.rampStep[i] = (newTarget[i] - f.current[i]) / T(rampSamples)
	}
	f.rampLeft = rampSamples
}

func (f *FIRFilter[T]) advanceRamp() {
	if f.rampLeft <= 0 {
		return
	}
	for i := range f.current {
		f.current[i] += f.rampStep[i]
	}
	f.rampLeft--
	if f.rampLeft == 0 {
		copy(f.current, f.target)
	}
}

func (f *FIRFilter[T]) FilterSample(x T) T {
	n := len(f.current)
	if n == 0 {
		return 0
	}
	f.head = (f.head - 1 + n) % n
	f.history[f.head] = x

	var out T
	for i := 0; i < n; i++ {
		out += f.current[i] * f.history[(f.head+i)%n]
	}
	f.advanceRamp()
	return out
}

func (f *FIRFilter[T]) Filter(src, dst []T) {
	for i, x := range src {
		dst[i] = f.FilterSample(x)
	}
}

func (f *FIRFilter[T]) Reset() {
	clear(f.history)
	f.head = 0
}

func (f *FIRFilter[T]) Clone() DigitalFilter[T] {
	clone := &FIRFilter[T]{
		history: append([]T(nil), f.history...),
		head:    f.head,
		current: append([]T(nil), f.current...),
		target:  append([]T(nil), f.target...),
	}
	if f.rampStep != nil {
		clone.rampStep = append([]T(nil), f.rampStep...)
		clone.rampLeft = f.rampLeft
	}
	return clone
}

// IIRFilter is a direct-form-II transposed biquad-style filter, kept
// alongside FIRFilter as a cross-check implementation. Wall filters in
// CuboidRoom are commonly a single feedforward tap (pure FIR), but
// nothing in the contract forbids a feedback filter, so this exists
// for callers that want one.
type IIRFilter[T Sample] struct {
	b, a  []T // a[0] is assumed to be 1
	state []T
}

// NewIIRFilter constructs a filter from numerator (b) and denominator (a)
// coefficients; a[0] must be 1 (it is not re-normalised).
func NewIIRFilter[T Sample](b, a []T) *IIRFilter[T] {
	n := len(b)
	if len(a) > n {
		n = len(a)
	}
	return &IIRFilter[T]{
		b:     append([]T(nil), b...),
		a:     append([]T(nil), a...),
		state: make([]T, n),
	}
}

func (f *IIRFilter[T]) Coefficients() []T {
	out := make([]T, len(f.b))
	copy(out, f.b)
	return out
}

// SetCoefficients replaces the numerator (b) taps immediately. The ramp
// length is ignored (no cross-fade) and the denominator is left unchanged.
func (f *IIRFilter[T]) SetCoefficients(coeffs []T, _ int) {
	f.b = append([]T(nil), coeffs...)
}

func (f *IIRFilter[T]) FilterSample(x T) T {
	n := len(f.state)
	var out T
	if len(f.b) > 0 {
		out = f.b[0]*x + f.state[0]
	}
	for i := 0; i < n-1; i++ {
		var bTerm, aTerm T
		if i+1 < len(f.b) {
			bTerm = f.b[i+1] * x
		}
		if i+1 < len(f.a) {
			aTerm = f.a[i+1] * out
		}
		f.state[i] = f.state[i+1] + bTerm - aTerm
	}
	if n > 0 {
		var bTerm, aTerm T
		if n < len(f.b) {
			bTerm = f.b[n] * x
		}
		if n < len(f.a) {
			aTerm = f.a[n] * out
		}
		f.state[n-1] = bTerm - aTerm
	}
	return out
}

func (f *IIRFilter[T]) Filter(src, dst []T) {
	for i, x := range src {
		dst[i] = f.FilterSample(x)
	}
}

func (f *IIRFilter[T]) Reset() {
	clear(f.state)
}

func (f *IIRFilter[T]) Clone() DigitalFilter[T] {
	return &IIRFilter[T]{
		b:     append([]T(nil), f.b...),
		a:     append([]T(nil), f.a...),
		state: append([]T(nil), f.state...),
	}
}
