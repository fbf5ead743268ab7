package sal

import (
	"math"
	"math/rand"
)

// IsmInterpolation selects how a fractional-sample image delay is
// written into the RIR.
type IsmInterpolation int

const (
	IsmNoInterpolation IsmInterpolation = iota
	IsmPetersonInterpolation
)

const defaultPetersonWindow = 0.004 // 4 ms

// Ism builds a room impulse response from the image-source lattice of a
// CuboidRoom and convolves input through it, delegating the spatialised
// result to a Receiver.
type Ism[T Sample] struct {
	room              *CuboidRoom[T]
	samplingFrequency float64
	rirLength         int
	interpolation     IsmInterpolation
	randomDistance    float64
	petersonWindow    float64
	rng               *rand.Rand

	rir          []T
	imagesDelay  []float64
	imagesPos    []Point
	filter       *FIRFilter[T]
	scratch      []T
	modified     bool
}

// NewIsm constructs an Ism bound to room. The RIR is not computed here;
// it is built by the first Run or CalculateRir call.
func NewIsm[T Sample](room *CuboidRoom[T], rirLength int, samplingFrequency float64, interpolation IsmInterpolation) *Ism[T] {
	ism := &Ism[T]{
		room:              room,
		samplingFrequency: samplingFrequency,
		rirLength:         rirLength,
		interpolation:     interpolation,
		petersonWindow:    defaultPetersonWindow,
		rng:               rand.New(rand.NewSource(1)),
		filter:            NewFIRFilter[T](make([]T, rirLength)),
	}
	return ism
}

func (ism *Ism[T]) SetPetersonWindow(duration float64) { ism.petersonWindow = duration }
func (ism *Ism[T]) SetRandomDistance(distance float64) { ism.randomDistance = distance }

// RIR returns the most recently calculated impulse response.
func (ism *Ism[T]) RIR() []T { return ism.rir }

// ImagesDelay returns the per-image propagation delay (seconds) from
// the most recent CalculateRir.
func (ism *Ism[T]) ImagesDelay() []float64 { return ism.imagesDelay }

// ImagesPosition returns the per-image world position from the most
// recent CalculateRir, parallel to ImagesDelay.
func (ism *Ism[T]) ImagesPosition() []Point { return ism.imagesPos }

// Update marks the RIR stale; the next Run recomputes it. Call after
// changing the room, source, or receiver geometry.
func (ism *Ism[T]) Update() { ism.modified = true }

// Run convolves inputSignal with the room's current RIR (recalculating
// it first if Update was called since the last Run) and delegates the
// filtered signal to receiver, spatialised as if arriving from source's
// direct (unreflected) position.
func (ism *Ism[T]) Run(inputSignal []T, source *Source, receiver *Receiver[T], waveID int, output BufferMut[T]) {
	if ism.modified || ism.rir == nil {
		ism.CalculateRir(source.Position(), receiver.Position())
		ism.modified = false
	}
	if cap(ism.scratch) < len(inputSignal) {
		ism.scratch = make([]T, len(inputSignal))
	}
	scratch := ism.scratch[:len(inputSignal)]
	ism.filter.Filter(inputSignal, scratch)
	receiver.ReceiveAdd(scratch, source.Position(), waveID, output)
}

// CalculateRir enumerates the image-source lattice up to the reflection
// order implied by rirLength and writes each image's contribution into
// the RIR buffer, reusing it (and the images slices) across calls instead
// of reallocating to the worst-case image count every time.
func (ism *Ism[T]) CalculateRir(source, receiver Point) {
	betas := ism.wallBetas()
	dims := ism.room.Dimensions()

	if cap(ism.rir) < ism.rirLength {
		ism.rir = make([]T, ism.rirLength)
	} else {
		ism.rir = ism.rir[:ism.rirLength]
		clear(ism.rir)
	}
	rir := ism.rir
	delays := ism.imagesDelay[:0]
	positions := ism.imagesPos[:0]

	rirSeconds := float64(ism.rirLength) / ism.samplingFrequency
	nx := int(math.Floor(rirSeconds/(2*dims.X()))) + 1
	ny := int(math.Floor(rirSeconds/(2*dims.Y()))) + 1
	nz := int(math.Floor(rirSeconds/(2*dims.Z()))) + 1

	for mx := -nx; mx <= nx; mx++ {
		for my := -ny; my <= ny; my++ {
			for mz := -nz; mz <= nz; mz++ {
				for px := 0; px <= 1; px++ {
					for py := 0; py <= 1; py++ {
						for pz := 0; pz <= 1; pz++ {
							image := ism.room.ImageSourcePosition(source, mx, my, mz, px, py, pz)
							delay := Distance(image, receiver) / SpeedOfSound
							if ism.randomDistance > 0 {
								delay += (ism.rng.Float64()*2 - 1) * ism.randomDistance / SpeedOfSound
							}
							n := int(math.Round(delay * ism.samplingFrequency))
							if n < 0 || n >= ism.rirLength {
								continue
							}
							gain := imageGain(betas, mx, my, mz, px, py, pz)
							amplitude := gain / (delay * ism.samplingFrequency)

							ism.writeSample(rir, delay, amplitude)
							delays = append(delays, delay)
							positions = append(positions, image)
						}
					}
				}
			}
		}
	}

	ism.imagesDelay = delays
	ism.imagesPos = positions
	ism.filter.SetCoefficients(rir, 0)
}

// wallBetas extracts each wall filter's broadband (first-tap) gain, in
// canonical order, for use as the image-method reflection coefficients.
func (ism *Ism[T]) wallBetas() [numWalls]float64 {
	var betas [numWalls]float64
	for i, f := range ism.room.WallFilters() {
		betas[i] = float64(firstTap(f))
	}
	return betas
}

// imageGain computes g = Prod_j beta_j^exponent_j, the classic
// image-method attenuation: for each axis, the low wall's exponent is
// |m-p| and the high wall's is |m|.
func imageGain(betas [numWalls]float64, mx, my, mz, px, py, pz int) float64 {
	g := math.Pow(betas[WallX1], math.Abs(float64(mx-px)))
	g *= math.Pow(betas[WallX2], math.Abs(float64(mx)))
	g *= math.Pow(betas[WallY1], math.Abs(float64(my-py)))
	g *= math.Pow(betas[WallY2], math.Abs(float64(my)))
	g *= math.Pow(betas[WallZ1], math.Abs(float64(mz-pz)))
	g *= math.Pow(betas[WallZ2], math.Abs(float64(mz)))
	return g
}

// writeSample deposits one image's (delay, amplitude) contribution into
// rir, following either the nearest-sample or Peterson-interpolated
// policy.
func (ism *Ism[T]) writeSample(rir []T, delay, amplitude float64) {
	fs := ism.samplingFrequency
	if ism.interpolation == IsmNoInterpolation {
		n := int(math.Round(delay * fs))
		if n >= 0 && n < len(rir) {
			rir[n] += T(amplitude)
		}
		return
	}

	tw := ism.petersonWindow
	fc := 0.9 * fs / 2
	lo := int(math.Ceil(fs * (delay - tw/2)))
	hi := int(math.Floor(fs * (delay + tw/2)))
	if lo < 0 {
		lo = 0
	}
	if hi > len(rir)-1 {
		hi = len(rir) - 1
	}
	for n := lo; n <= hi; n++ {
		t := float64(n)/fs - delay
		window := 0.5 * (1 + math.Cos(2*math.Pi*t/tw))
		rir[n] += T(amplitude * window * sincValue(2*math.Pi*fc*t))
	}
}

func sincValue(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(x) / x
}
