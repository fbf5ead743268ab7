package sal

// Source is a positioned point emitter. It carries no audio-rate state of
// its own; PropagationLine and Ism do the acoustic work between a Source
// and a Receiver.
type Source struct {
	position    Point
	orientation Quaternion
	directional bool
}

// NewSource constructs an omnidirectional source at position.
func NewSource(position Point) *Source {
	return &Source{position: position, orientation: IdentityQuaternion()}
}

// NewDirectionalSource constructs a source with an explicit facing
// orientation, for future directional-emission extensions; the core
// itself only consumes Position().
func NewDirectionalSource(position Point, orientation Quaternion) *Source {
	return &Source{position: position, orientation: orientation, directional: true}
}

func (s *Source) Position() Point { return s.position }

func (s *Source) SetPosition(p Point) { s.position = p }

func (s *Source) Orientation() Quaternion { return s.orientation }

func (s *Source) SetOrientation(q Quaternion) {
	s.orientation = q
	s.directional = true
}

func (s *Source) IsDirectional() bool { return s.directional }
