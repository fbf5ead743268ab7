package sal

// Receiver is a directional microphone: a position, an orientation
// quaternion, a handedness, and one independent Directivity instance per
// incoming wave id so that long-tailed directional responses (HRIR
// convolutions) preserve per-source state.
type Receiver[T Sample] struct {
	position    Point
	orientation Quaternion
	handedness  Handedness
	instances   []Directivity[T]
	bypass      bool
	logger      Logger
}

// NewReceiver clones prototype maxNumIncomingWaves times, each clone
// getting independent filter state.
func NewReceiver[T Sample](prototype Directivity[T], position Point, orientation Quaternion, maxNumIncomingWaves int, logger Logger) *Receiver[T] {
	if maxNumIncomingWaves <= 0 {
		panic(&ProgrammingError{Msg: "Receiver: max_num_incoming_waves must be positive"})
	}
	if logger == nil {
		logger = NopLogger{}
	}
	instances := make([]Directivity[T], maxNumIncomingWaves)
	for i := range instances {
		instances[i] = prototype.Clone()
	}
	return &Receiver[T]{
		position:    position,
		orientation: orientation,
		handedness:  RightHanded,
		instances:   instances,
		logger:      logger,
	}
}

func (r *Receiver[T]) Position() Point { return r.position }

func (r *Receiver[T]) SetPosition(p Point) { r.position = p }

func (r *Receiver[T]) Orientation() Quaternion { return r.orientation }

func (r *Receiver[T]) SetOrientation(q Quaternion) { r.orientation = q }

func (r *Receiver[T]) SetHandedness(h Handedness) { r.handedness = h }

func (r *Receiver[T]) Handedness() Handedness { return r.handedness }

// SetBypass toggles pass-through mode: when set, ReceiveAdd copies input
// into every output channel unfiltered.
func (r *Receiver[T]) SetBypass(bypass bool) { r.bypass = bypass }

// MaxNumIncomingWaves returns the number of independent directivity
// instances (and therefore the exclusive upper bound on wave_id).
func (r *Receiver[T]) MaxNumIncomingWaves() int { return len(r.instances) }

// ReceiveAdd rotates worldPoint into the receiver's local frame and
// delegates to the directivity instance bound to waveID, which must be
// less than MaxNumIncomingWaves(). In bypass mode input is copied
// unfiltered into every output channel instead.
func (r *Receiver[T]) ReceiveAdd(input []T, worldPoint Point, waveID int, output BufferMut[T]) {
	if waveID < 0 || waveID >= len(r.instances) {
		panic(&ProgrammingError{Msg: "Receiver.ReceiveAdd: wave_id out of range"})
	}

	if r.bypass {
		for c := 0; c < output.NumChannels(); c++ {
			output.AddSamples(c, 0, input)
		}
		return
	}

	instance := r.instances[waveID]
	if instance.Coincident() && IsEqual(worldPoint, r.position, verySmall) {
		r.logger.Warnf("Receiver: source at (%g, %g, %g) is coincident with receiver; direction undefined",
			worldPoint.X(), worldPoint.Y(), worldPoint.Z())
	}
	relative := Sub(worldPoint, r.position)
	local := r.orientation.Inverse().Rotate(relative, r.handedness)
	instance.ReceiveAdd(input, local, output)
}

// ResetState resets every directivity instance.
func (r *Receiver[T]) ResetState() {
	for _, inst := range r.instances {
		inst.ResetState()
	}
}

const verySmall = 1e-10
