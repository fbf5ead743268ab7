package sal

import "math"

// WallID is the canonical wall ordering every wall-filter vector and
// boundary-point result follows.
type WallID int

const (
	WallX1 WallID = iota
	WallX2
	WallY1
	WallY2
	WallZ1
	WallZ2
	numWalls = 6
)

// MovingTriplet throttles a target (x,y,z) triplet to a maximum speed,
// CuboidRoom's moving walls:
// UpdateShape advances the current dimensions toward the target by at
// most max_speed * elapsed_time per call, exposing HasReachedTarget so a
// caller can detect when the motion settles.
type MovingTriplet struct {
	target, current Point
	maxSpeed         float64
	reachedTarget    bool
}

// NewMovingTriplet starts stationary at initial with no speed limit.
func NewMovingTriplet(initial Point) *MovingTriplet {
	return &MovingTriplet{
		target:        initial,
		current:       initial,
		maxSpeed:      math.Inf(1),
		reachedTarget: true,
	}
}

// SetMaxSpeed bounds how fast UpdateShape may move current toward target.
func (m *MovingTriplet) SetMaxSpeed(maxSpeed float64) { m.maxSpeed = maxSpeed }

// SetValue snaps both current and target to triplet immediately.
func (m *MovingTriplet) SetValue(triplet Point) {
	m.target = triplet
	m.current = triplet
	m.reachedTarget = true
}

// SetTargetDimensions retargets without moving current immediately;
// subsequent Update calls throttle the approach to max_speed.
func (m *MovingTriplet) SetTargetDimensions(target Point) {
	m.target = target
	m.reachedTarget = false
}

func (m *MovingTriplet) Target() Point { return m.target }
func (m *MovingTriplet) Value() Point  { return m.current }

// HasReachedTarget reports whether current has converged to target.
func (m *MovingTriplet) HasReachedTarget() bool { return m.reachedTarget }

// UpdateShape advances current toward target by at most
// max_speed*elapsed, snapping exactly when that would overshoot.
func (m *MovingTriplet) UpdateShape(elapsed float64) {
	if math.IsInf(m.maxSpeed, 1) {
		m.current = m.target
		m.reachedTarget = true
		return
	}
	speed := Distance(m.target, m.current) / elapsed
	if speed <= m.maxSpeed {
		m.current = m.target
		m.reachedTarget = true
		return
	}
	m.current = PointOnLine(m.current, m.target, m.maxSpeed*elapsed)
}

// CuboidRoom is a rectangular room with one wall filter per face, used
// both directly (reflection geometry) and as the Ism's lattice source
// Walls may be animated via SetTargetDimensions/UpdateShape.
type CuboidRoom[T Sample] struct {
	dimensions     *MovingTriplet
	originPosition Point
	wallFilters    [numWalls]DigitalFilter[T]
}

// NewCuboidRoom constructs a room of the given extent with one clone of
// filterPrototype per wall (exactly 6 wall filters).
func NewCuboidRoom[T Sample](x, y, z float64, filterPrototype DigitalFilter[T]) *CuboidRoom[T] {
	r := &CuboidRoom[T]{
		dimensions: NewMovingTriplet(NewPoint(x, y, z)),
	}
	for i := range r.wallFilters {
		r.wallFilters[i] = filterPrototype.Clone()
	}
	return r
}

// NewCuboidRoomWithFilters constructs a room with independent filters
// per wall, supplied in canonical [X1,X2,Y1,Y2,Z1,Z2] order.
func NewCuboidRoomWithFilters[T Sample](x, y, z float64, filters [numWalls]DigitalFilter[T]) *CuboidRoom[T] {
	return &CuboidRoom[T]{
		dimensions:  NewMovingTriplet(NewPoint(x, y, z)),
		wallFilters: filters,
	}
}

func (r *CuboidRoom[T]) Dimensions() Point { return r.dimensions.Value() }

// SetOriginPosition relocates the room's minimum corner (default origin).
func (r *CuboidRoom[T]) SetOriginPosition(origin Point) { r.originPosition = origin }

func (r *CuboidRoom[T]) OriginPosition() Point { return r.originPosition }

func (r *CuboidRoom[T]) WallFilters() [numWalls]DigitalFilter[T] { return r.wallFilters }

func (r *CuboidRoom[T]) SetWallFilter(id WallID, filter DigitalFilter[T]) {
	r.wallFilters[id] = filter
}

// SetTargetDimensions, UpdateShape, HasReachedTarget and SetMaxSpeed
// delegate to the internal MovingTriplet.
func (r *CuboidRoom[T]) SetTargetDimensions(x, y, z float64) {
	r.dimensions.SetTargetDimensions(NewPoint(x, y, z))
}
func (r *CuboidRoom[T]) UpdateShape(elapsed float64)  { r.dimensions.UpdateShape(elapsed) }
func (r *CuboidRoom[T]) HasReachedTarget() bool       { return r.dimensions.HasReachedTarget() }
func (r *CuboidRoom[T]) SetMaxSpeed(maxSpeed float64) { r.dimensions.SetMaxSpeed(maxSpeed) }

// MaxDistance returns the room diagonal, an upper bound on any in-room
// propagation path.
func (r *CuboidRoom[T]) MaxDistance() float64 {
	d := r.Dimensions()
	return d.Norm()
}

// IsPointInRoom reports whether point lies strictly inside the room,
// more than wallDistance from every wall.
func (r *CuboidRoom[T]) IsPointInRoom(point Point, wallDistance float64) bool {
	d := r.Dimensions()
	o := r.originPosition
	return point.X() > o.X()+wallDistance && point.Y() > o.Y()+wallDistance && point.Z() > o.Z()+wallDistance &&
		point.X() < o.X()+d.X()-wallDistance && point.Y() < o.Y()+d.Y()-wallDistance && point.Z() < o.Z()+d.Z()-wallDistance
}

// ImageSourcePosition enumerates the infinite mirror-image lattice:
// I = ((1-2*p)*s + 2*m*L) componentwise, relative to the room's origin.
func (r *CuboidRoom[T]) ImageSourcePosition(source Point, mx, my, mz, px, py, pz int) Point {
	d := r.Dimensions()
	o := r.originPosition
	s := Sub(source, o)
	r2lX := 2 * d.X() * float64(mx)
	r2lY := 2 * d.Y() * float64(my)
	r2lZ := 2 * d.Z() * float64(mz)
	return Sum(o, NewPoint(
		(1-2*float64(px))*s.X()+r2lX,
		(1-2*float64(py))*s.Y()+r2lY,
		(1-2*float64(pz))*s.Z()+r2lZ,
	))
}

// wallPlane returns a point on wallID's plane (originPosition included)
// and the plane's unit normal, which points along the positive axis for
// both walls of a pair.
func (r *CuboidRoom[T]) wallPlane(wallID WallID) (planePoint, normal Point) {
	d := r.Dimensions()
	o := r.originPosition
	switch wallID {
	case WallX1:
		return o, NewPoint(1, 0, 0)
	case WallX2:
		return Sum(o, NewPoint(d.X(), 0, 0)), NewPoint(1, 0, 0)
	case WallY1:
		return o, NewPoint(0, 1, 0)
	case WallY2:
		return Sum(o, NewPoint(0, d.Y(), 0)), NewPoint(0, 1, 0)
	case WallZ1:
		return o, NewPoint(0, 0, 1)
	case WallZ2:
		return Sum(o, NewPoint(0, 0, d.Z())), NewPoint(0, 0, 1)
	default:
		panic(&ProgrammingError{Msg: "CuboidRoom: invalid wall id"})
	}
}

// intersectionPoint intersects the line from observer through imagePos
// with wallID's plane.
func (r *CuboidRoom[T]) intersectionPoint(wallID WallID, observer, imagePos Point) Point {
	planePoint, normal := r.wallPlane(wallID)
	direction := Sub(imagePos, observer)
	denom := Dot(direction, normal)
	if denom == 0 {
		return observer
	}
	t := Dot(Sub(planePoint, observer), normal) / denom
	return Sum(observer, Scale(direction, t))
}

// wallImageParity returns the (mx,my,mz,px,py,pz) image-source
// parameters whose image reflects source across wallID exactly once.
func wallImageParity(wallID WallID) (mx, my, mz, px, py, pz int) {
	switch wallID {
	case WallX1:
		return 0, 0, 0, 1, 0, 0
	case WallX2:
		return 1, 0, 0, 1, 0, 0
	case WallY1:
		return 0, 0, 0, 0, 1, 0
	case WallY2:
		return 0, 1, 0, 0, 1, 0
	case WallZ1:
		return 0, 0, 0, 0, 0, 1
	case WallZ2:
		return 0, 0, 1, 0, 0, 1
	default:
		panic(&ProgrammingError{Msg: "CuboidRoom: invalid wall id"})
	}
}

// ReflectionPoint intersects the line from observer to the first-order
// image of source across wallID with that wall's plane.
func (r *CuboidRoom[T]) ReflectionPoint(wallID WallID, source, observer Point) Point {
	mx, my, mz, px, py, pz := wallImageParity(wallID)
	image := r.ImageSourcePosition(source, mx, my, mz, px, py, pz)
	return r.intersectionPoint(wallID, observer, image)
}

// GetBoundaryPoints returns the six first-order reflection points, one
// per wall in canonical order.
func (r *CuboidRoom[T]) GetBoundaryPoints(source, observer Point) [numWalls]Point {
	var points [numWalls]Point
	for w := WallID(0); w < numWalls; w++ {
		points[w] = r.ReflectionPoint(w, source, observer)
	}
	return points
}

// GetBoundaryFilters returns the six wall filter prototypes in
// canonical order (the geometry arguments are accepted for interface
// symmetry with GetBoundaryPoints and future second-order extensions).
func (r *CuboidRoom[T]) GetBoundaryFilters(_, _ Point) [numWalls]DigitalFilter[T] {
	return r.wallFilters
}

// SabineRt60 estimates reverberation time from each wall filter's DC
// gain, treated as a single-tap broadband absorption coefficient
// advisory helper, only valid for single-tap wall filters.
func (r *CuboidRoom[T]) SabineRt60() float64 {
	d := r.Dimensions()
	volume := d.X() * d.Y() * d.Z()
	areas := [numWalls]float64{
		d.Y() * d.Z(), d.Y() * d.Z(),
		d.X() * d.Z(), d.X() * d.Z(),
		d.X() * d.Y(), d.X() * d.Y(),
	}
	var weighted float64
	for i, filter := range r.wallFilters {
		beta := float64(firstTap(filter))
		alpha := 1 - beta*beta
		weighted += areas[i] * alpha
	}
	return 0.161 * volume / weighted
}

// firstTap extracts a digital filter's leading coefficient, the
// broadband gain SabineRt60 and the Ism both require of wall filters.
func firstTap[T Sample](filter DigitalFilter[T]) T {
	coeffs := filter.Coefficients()
	if len(coeffs) == 0 {
		return 0
	}
	return coeffs[0]
}
