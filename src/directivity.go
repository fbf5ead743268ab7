package sal

// Directivity is the polymorphic "receive one incoming plane wave"
// contract every directional pattern implements. Go expresses the
// equivalent of a virtual hierarchy + type-erasing pointer as a plain
// interface: each variant below dispatches directly, with no sum-type
// tag needed.
type Directivity[T Sample] interface {
	// ReceiveAdd filters input as a function of the direction it arrived
	// from (already expressed in the receiver's local reference frame)
	// and accumulates (never overwrites) into output.
	ReceiveAdd(input []T, direction Point, output BufferMut[T])
	// ResetState clears any per-wave history (FIR taps, previous
	// direction) back to its initial condition.
	ResetState()
	// Coincident reports whether this directivity pattern behaves
	// identically regardless of receiver position (true for memoryless,
	// direction-only patterns; false for binaural patterns whose capsules
	// are physically offset from the nominal receiver position). The
	// receiver's coincident-source warning is only meaningful when this
	// is true.
	Coincident() bool
	// Clone returns an independent copy with its own state, used to give
	// each of a Receiver's max_num_incoming_waves slots its own instance.
	Clone() Directivity[T]
}

// OmniDirectivity is a frequency-flat scalar pattern.
type OmniDirectivity[T Sample] struct {
	Gain T
}

// NewOmniDirectivity constructs an omnidirectional pattern with the given
// gain. A zero-value OmniDirectivity has gain 0.
func NewOmniDirectivity[T Sample](gain T) *OmniDirectivity[T] {
	return &OmniDirectivity[T]{Gain: gain}
}

func (o *OmniDirectivity[T]) ReceiveAdd(input []T, _ Point, output BufferMut[T]) {
	output.MultiplyAddSamples(ChannelMono, 0, input, o.Gain)
}

func (o *OmniDirectivity[T]) ResetState()     {}
func (o *OmniDirectivity[T]) Coincident() bool { return true }
func (o *OmniDirectivity[T]) Clone() Directivity[T] {
	return &OmniDirectivity[T]{Gain: o.Gain}
}

// TrigDirectivity is an axisymmetric polynomial in cos(angle-to-x-axis):
// gain = sum_i coeffs[i] * cos^i(angle).
type TrigDirectivity[T Sample] struct {
	Coeffs []T
}

func NewTrigDirectivity[T Sample](coeffs []T) *TrigDirectivity[T] {
	return &TrigDirectivity[T]{Coeffs: append([]T(nil), coeffs...)}
}

func (t *TrigDirectivity[T]) gain(direction Point) T {
	alpha := AngleBetween(direction, NewPoint(1, 0, 0))
	cosAlpha := cosAngle(alpha)
	var gain T
	if len(t.Coeffs) > 0 {
		gain = t.Coeffs[0]
	}
	power := T(1)
	for i := 1; i < len(t.Coeffs); i++ {
		power *= T(cosAlpha)
		gain += t.Coeffs[i] * power
	}
	return gain
}

func (t *TrigDirectivity[T]) ReceiveAdd(input []T, direction Point, output BufferMut[T]) {
	output.MultiplyAddSamples(ChannelMono, 0, input, t.gain(direction))
}

func (t *TrigDirectivity[T]) ResetState()     {}
func (t *TrigDirectivity[T]) Coincident() bool { return true }
func (t *TrigDirectivity[T]) Clone() Directivity[T] {
	return &TrigDirectivity[T]{Coeffs: append([]T(nil), t.Coeffs...)}
}

// TanDirectivity is a constant-power panning law over a base sector:
// 1/sqrt(1 + sin^2(alpha)/sin^2(base_angle-alpha)) for alpha < base_angle,
// 0 otherwise.
type TanDirectivity[T Sample] struct {
	BaseAngle Angle
}

func NewTanDirectivity[T Sample](baseAngle Angle) *TanDirectivity[T] {
	return &TanDirectivity[T]{BaseAngle: baseAngle}
}

func (t *TanDirectivity[T]) gain(direction Point) T {
	alpha := AngleBetween(direction, NewPoint(1, 0, 0))
	if alpha >= t.BaseAngle {
		return 0
	}
	sinAlpha := sinAngle(alpha)
	sinRemain := sinAngle(t.BaseAngle - alpha)
	if sinRemain == 0 {
		return 0
	}
	ratio := (sinAlpha * sinAlpha) / (sinRemain * sinRemain)
	return T(1 / sqrtFloat(1+ratio))
}

func (t *TanDirectivity[T]) ReceiveAdd(input []T, direction Point, output BufferMut[T]) {
	output.MultiplyAddSamples(ChannelMono, 0, input, t.gain(direction))
}

func (t *TanDirectivity[T]) ResetState()     {}
func (t *TanDirectivity[T]) Coincident() bool { return true }
func (t *TanDirectivity[T]) Clone() Directivity[T] {
	return &TanDirectivity[T]{BaseAngle: t.BaseAngle}
}
