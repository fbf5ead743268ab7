package sal

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/mjibson/go-dsp/fft"
)

// Ear identifies which binaural output channel a filtered signal belongs
// to; it doubles as the Buffer channel index.
type Ear int

const (
	EarLeft Ear = iota
	EarRight
)

func (e Ear) Opposite() Ear {
	if e == EarLeft {
		return EarRight
	}
	return EarLeft
}

func (e Ear) channel() int {
	if e == EarLeft {
		return ChannelLeft
	}
	return ChannelRight
}

// BRIRProvider supplies a binaural impulse response for one ear given a
// direction already expressed in the receiver's local frame. Database
// lookups (Kemar, CIPIC) and the analytic rigid-sphere model both satisfy
// this contract, letting FirBinauralDirectivity stay agnostic of where
// the coefficients come from.
type BRIRProvider[T Sample] interface {
	BRIR(ear Ear, relativePoint Point) []T
}

// FirBinauralDirectivity maintains a previous direction and one FIR per
// ear, recomputing and cross-fading coefficients only when the incoming
// direction actually changes.
type FirBinauralDirectivity[T Sample] struct {
	provider      BRIRProvider[T]
	left, right   *FIRFilter[T]
	updateLength  int
	previousPoint Point
	hasPrevious   bool
	scratch       []T
}

// NewFirBinauralDirectivity constructs a two-ear FIR directivity sourcing
// impulse responses from provider; coefficient updates cross-fade over
// updateLength samples (0 = instantaneous switch).
func NewFirBinauralDirectivity[T Sample](provider BRIRProvider[T], updateLength int) *FirBinauralDirectivity[T] {
	return &FirBinauralDirectivity[T]{
		provider:     provider,
		left:         NewFIRFilter[T](nil),
		right:        NewFIRFilter[T](nil),
		updateLength: updateLength,
	}
}

func (f *FirBinauralDirectivity[T]) ensureScratch(n int) []T {
	if cap(f.scratch) < n {
		f.scratch = make([]T, n)
	}
	return f.scratch[:n]
}

func (f *FirBinauralDirectivity[T]) ReceiveAdd(input []T, direction Point, output BufferMut[T]) {
	if !f.hasPrevious || !IsEqual(direction, f.previousPoint, verySmall) {
		f.left.SetCoefficients(f.provider.BRIR(EarLeft, direction), f.updateLength)
		f.right.SetCoefficients(f.provider.BRIR(EarRight, direction), f.updateLength)
		f.previousPoint = direction
		f.hasPrevious = true
	}
	scratch := f.ensureScratch(len(input))
	f.left.Filter(input, scratch)
	output.AddSamples(ChannelLeft, 0, scratch)
	f.right.Filter(input, scratch)
	output.AddSamples(ChannelRight, 0, scratch)
}

func (f *FirBinauralDirectivity[T]) ResetState() {
	f.left.Reset()
	f.right.Reset()
	f.hasPrevious = false
}

func (f *FirBinauralDirectivity[T]) Coincident() bool { return false }

func (f *FirBinauralDirectivity[T]) Clone() Directivity[T] {
	return NewFirBinauralDirectivity[T](f.provider, f.updateLength)
}

// ---------------------------------------------------------------------
// Kemar database
// ---------------------------------------------------------------------

var kemarElevations = [...]int{-40, -30, -20, -10, 0, 10, 20, 30, 40, 50, 60, 70, 80, 90}
var kemarAzimuthCounts = [...]int{56, 60, 72, 72, 72, 72, 72, 60, 56, 45, 36, 24, 12, 1}

// KemarDatabase is the lazily-loaded, read-only MIT Kemar HRIR table
// table. Only azimuths in [0,180] are stored on disk; the
// complementary half is produced by ear-swap symmetry in BRIR.
type KemarDatabase struct {
	samplingFrequency float64
	// hrir[elevationIndex][storedAzimuthIndex][ear] = impulse response.
	hrir [][][2][]float64
}

var (
	kemarCacheMu sync.Mutex
	kemarCache   = map[string]*KemarDatabase{}
)

// LoadKemarDatabase loads (or returns the cached copy of) the Kemar HRIR
// set rooted at dir, resampling to samplingFrequency if it differs from
// the native 44100 Hz recording rate. Concurrent callers requesting the
// same (dir, samplingFrequency) share one load.
func LoadKemarDatabase(dir string, samplingFrequency float64) (*KemarDatabase, error) {
	key := fmt.Sprintf("%s|%d", dir, int(samplingFrequency))

	kemarCacheMu.Lock()
	defer kemarCacheMu.Unlock()
	if db, ok := kemarCache[key]; ok {
		return db, nil
	}

	db := &KemarDatabase{samplingFrequency: samplingFrequency, hrir: make([][][2][]float64, len(kemarElevations))}
	for ei, elev := range kemarElevations {
		count := kemarAzimuthCounts[ei]
		stored := count/2 + 1
		increment := 360.0 / float64(count)
		row := make([][2][]float64, stored)
		for ai := 0; ai < stored; ai++ {
			az := int(math.Round(float64(ai) * increment))
			name := filepath.Join(dir, fmt.Sprintf("elev%d", elev), fmt.Sprintf("H%de%03da.dat", elev, az))
			left, right, err := readKemarFile(name)
			if err != nil {
				return nil, &FatalError{Op: "LoadKemarDatabase", Err: err}
			}
			if samplingFrequency != 44100 {
				left = resampleHalfBand(left, samplingFrequency)
				right = resampleHalfBand(right, samplingFrequency)
			}
			row[ai] = [2][]float64{left, right}
		}
		db.hrir[ei] = row
	}

	kemarCache[key] = db
	return db, nil
}

func readKemarFile(path string) (left, right []float64, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if len(data)%4 != 0 {
		return nil, nil, fmt.Errorf("%s: odd frame count in interleaved stereo PCM", path)
	}
	n := len(data) / 4
	left = make([]float64, n)
	right = make([]float64, n)
	for i := 0; i < n; i++ {
		l := int16(binary.BigEndian.Uint16(data[i*4:]))
		r := int16(binary.BigEndian.Uint16(data[i*4+2:]))
		left[i] = float64(l) / 30000.0
		right[i] = float64(r) / 30000.0
	}
	return left, right, nil
}

// elevationIndex rounds elevation (degrees, 0 at ear-level) to the
// nearest Kemar table row, per (elevation+40)/10.
func kemarElevationIndex(elevationDeg float64) int {
	idx := int(math.Round((elevationDeg + 40) / 10))
	if idx < 0 {
		idx = 0
	}
	if idx > len(kemarElevations)-1 {
		idx = len(kemarElevations) - 1
	}
	return idx
}

// BRIR implements BRIRProvider by folding azimuth into [0,180] with an
// ear swap, then rounding to the nearest stored azimuth index.
func (db *KemarDatabase) BRIR(ear Ear, relativePoint Point) []float64 {
	azDeg := float64(relativePoint.Azimuth()) * 180 / math.Pi
	elevDeg := 90 - float64(relativePoint.Polar())*180/math.Pi

	if azDeg < 0 {
		azDeg = -azDeg
		ear = ear.Opposite()
	}

	ei := kemarElevationIndex(elevDeg)
	count := kemarAzimuthCounts[ei]
	stored := count/2 + 1
	increment := 360.0 / float64(count)
	ai := int(math.Round(azDeg / increment))
	if ai >= stored {
		ai = stored - 1
	}
	return db.hrir[ei][ai][ear]
}

// ApplyCorrectionFilter runs filter once over every stored impulse
// response in place (both ears, every elevation/azimuth), e.g. to bake
// in a headphone-inversion or playback-equalisation correction across
// an entire loaded table.
func (db *KemarDatabase) ApplyCorrectionFilter(filter DigitalFilter[float64]) {
	for _, row := range db.hrir {
		for _, entry := range row {
			for ear := range entry {
				out := make([]float64, len(entry[ear]))
				filter.Clone().Filter(entry[ear], out)
				copy(entry[ear], out)
			}
		}
	}
}

// KemarProvider adapts a KemarDatabase to BRIRProvider[T] for any sample
// type, converting the float64 table on each lookup.
type KemarProvider[T Sample] struct {
	DB *KemarDatabase
}

func (p KemarProvider[T]) BRIR(ear Ear, relativePoint Point) []T {
	return toSampleSlice[T](p.DB.BRIR(ear, relativePoint))
}

// ---------------------------------------------------------------------
// CIPIC database
// ---------------------------------------------------------------------

var cipicAzimuths = [...]float64{
	-80, -65, -55, -45, -40, -35, -30, -25, -20, -15, -10, -5, 0,
	5, 10, 15, 20, 25, 30, 35, 40, 45, 55, 65, 80,
}

const cipicNumElevations = 50
const cipicElevationStep = 5.625
const cipicElevationStart = -45.0

// CIPICDatabase is the lazily-loaded CIPIC HRIR table: 25 azimuths x 50
// elevations x 2 ears, text-format only.
type CIPICDatabase struct {
	// hrir[azimuthIndex][elevationIndex][ear] = impulse response.
	hrir [][][2][]float64
}

var (
	cipicCacheMu sync.Mutex
	cipicCache   = map[string]*CIPICDatabase{}
)

// LoadCIPICDatabase loads (or returns the cached copy of) the text-format
// CIPIC HRIR set rooted at dir. The WAV variant (200-channel transposed
// storage) is not implemented: no WAV decoding library is exercised
// elsewhere in this module's dependency surface, so it is left
// unsupported rather than hand-rolled (see DESIGN.md).
func LoadCIPICDatabase(dir string) (*CIPICDatabase, error) {
	cipicCacheMu.Lock()
	defer cipicCacheMu.Unlock()
	if db, ok := cipicCache[dir]; ok {
		return db, nil
	}

	db := &CIPICDatabase{hrir: make([][][2][]float64, len(cipicAzimuths))}
	for ai, az := range cipicAzimuths {
		left, err := readCIPICTextFile(cipicFileName(dir, az, EarLeft))
		if err != nil {
			return nil, &FatalError{Op: "LoadCIPICDatabase", Err: err}
		}
		right, err := readCIPICTextFile(cipicFileName(dir, az, EarRight))
		if err != nil {
			return nil, &FatalError{Op: "LoadCIPICDatabase", Err: err}
		}
		if len(left) != cipicNumElevations || len(right) != cipicNumElevations {
			return nil, fatalf("LoadCIPICDatabase", "%s: expected %d elevation rows, got %d/%d", dir, cipicNumElevations, len(left), len(right))
		}
		row := make([][2][]float64, cipicNumElevations)
		for ei := range row {
			row[ei] = [2][]float64{left[ei], right[ei]}
		}
		db.hrir[ai] = row
	}
	cipicCache[dir] = db
	return db, nil
}

func cipicFileName(dir string, az float64, ear Ear) string {
	side := "left"
	if ear == EarRight {
		side = "right"
	}
	if az < 0 {
		return filepath.Join(dir, fmt.Sprintf("neg%gaz%s.txt", -az, side))
	}
	return filepath.Join(dir, fmt.Sprintf("%gaz%s.txt", az, side))
}

// readCIPICTextFile parses a whitespace-separated matrix of 50 rows
// (elevations), returning one impulse response slice per row.
func readCIPICTextFile(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows [][]float64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		row := make([]float64, len(fields))
		for i, tok := range fields {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func cipicElevationIndex(elevationDeg float64) int {
	idx := int(math.Round((elevationDeg - cipicElevationStart) / cipicElevationStep))
	if idx < 0 {
		idx = 0
	}
	if idx > cipicNumElevations-1 {
		idx = cipicNumElevations - 1
	}
	return idx
}

func cipicAzimuthIndex(azDeg float64) int {
	best, bestDiff := 0, math.Inf(1)
	for i, a := range cipicAzimuths {
		d := math.Abs(a - azDeg)
		if d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return best
}

func (db *CIPICDatabase) BRIR(ear Ear, relativePoint Point) []float64 {
	azDeg := float64(relativePoint.Azimuth()) * 180 / math.Pi
	elevDeg := 90 - float64(relativePoint.Polar())*180/math.Pi
	ai := cipicAzimuthIndex(azDeg)
	ei := cipicElevationIndex(elevDeg)
	return db.hrir[ai][ei][ear]
}

// ApplyCorrectionFilter runs filter once over every stored impulse
// response in place, mirroring KemarDatabase.ApplyCorrectionFilter.
func (db *CIPICDatabase) ApplyCorrectionFilter(filter DigitalFilter[float64]) {
	for _, row := range db.hrir {
		for _, entry := range row {
			for ear := range entry {
				out := make([]float64, len(entry[ear]))
				filter.Clone().Filter(entry[ear], out)
				copy(entry[ear], out)
			}
		}
	}
}

type CIPICProvider[T Sample] struct {
	DB *CIPICDatabase
}

func (p CIPICProvider[T]) BRIR(ear Ear, relativePoint Point) []T {
	return toSampleSlice[T](p.DB.BRIR(ear, relativePoint))
}

// resampleHalfBand decimates a 44100 Hz impulse response to
// samplingFrequency (assumed 22050) through a 10th-order Butterworth
// anti-alias filter (passband edges 0.001..0.45 of Nyquist), matching
// the reference implementation's downsampling path.
func resampleHalfBand(x []float64, samplingFrequency float64) []float64 {
	if samplingFrequency == 44100 {
		return x
	}
	filtered := butterworthLowpass(x, 10, 0.45)
	ratio := 44100.0 / samplingFrequency
	n := int(float64(len(filtered)) / ratio)
	out := make([]float64, n)
	for i := range out {
		src := int(float64(i) * ratio)
		if src >= len(filtered) {
			src = len(filtered) - 1
		}
		out[i] = filtered[src]
	}
	return out
}

// butterworthLowpass applies a cascaded-biquad digital Butterworth
// low-pass of the given order and normalised cutoff (fraction of
// Nyquist) via the bilinear transform of the analog prototype's poles.
func butterworthLowpass(x []float64, order int, cutoff float64) []float64 {
	sections := butterworthSections(order, cutoff)
	out := append([]float64(nil), x...)
	for _, s := range sections {
		iir := NewIIRFilter[float64](s.b[:], s.a[:])
		filtered := make([]float64, len(out))
		iir.Filter(out, filtered)
		out = filtered
	}
	return out
}

type biquadSection struct {
	b [3]float64
	a [3]float64
}

// butterworthSections computes order/2 (plus a first-order leftover for
// odd order) digital biquads approximating a Butterworth low-pass via
// the bilinear transform, warping cutoff for exact match at the target
// frequency.
func butterworthSections(order int, cutoff float64) []biquadSection {
	warped := math.Tan(math.Pi * cutoff / 2)
	var sections []biquadSection
	pairs := order / 2
	for k := 0; k < pairs; k++ {
		theta := math.Pi * (2*float64(k) + 1) / (2 * float64(order))
		// Analog pole on the unit circle scaled by warped cutoff.
		re := -warped * math.Sin(theta)
		im := warped * math.Cos(theta)
		sections = append(sections, biquadFromAnalogPole(complex(re, im), warped))
	}
	if order%2 == 1 {
		// First-order section warped / (s + warped), bilinear-transformed.
		d := 1 + warped
		sections = append(sections, biquadSection{
			b: [3]float64{warped / d, warped / d, 0},
			a: [3]float64{1, (warped - 1) / d, 0},
		})
	}
	return sections
}

// biquadFromAnalogPole bilinear-transforms one conjugate analog pole
// pair of a Butterworth prototype into a digital second-order section
// with unity DC gain.
func biquadFromAnalogPole(pole complex128, warped float64) biquadSection {
	// Second-order analog section: 1 / (s^2 - 2*Re(pole)*s + |pole|^2)
	// normalised so the magnitude comes from the pole pair; the pole
	// already carries the warped cutoff, bilinear transform s = (z-1)/(z+1).
	a0r := real(pole)
	magSq := real(pole)*real(pole) + imag(pole)*imag(pole)
	// Continuous-time denominator coefficients: s^2 - 2*a0r*s + magSq
	a0 := 1 - 2*a0r + magSq
	a1 := 2*magSq - 2
	a2 := 1 + 2*a0r + magSq
	b := [3]float64{1, 2, 1}
	for i := range b {
		b[i] /= a0
	}
	aNorm := [3]float64{1, a1 / a0, a2 / a0}
	dcGain := (b[0] + b[1] + b[2]) / (aNorm[0] + aNorm[1] + aNorm[2])
	for i := range b {
		b[i] /= dcGain
	}
	return biquadSection{b: b, a: aNorm}
}

// ---------------------------------------------------------------------
// Spherical-head analytic model (Duda's rigid sphere)
// ---------------------------------------------------------------------

// SphericalHeadBinaural computes binaural impulse responses on demand
// from Duda's rigid-sphere diffraction model rather than a measured
// database.
type SphericalHeadBinaural struct {
	Radius            float64
	EarsAngle         Angle
	IRLength          int
	SamplingFrequency float64
	SoundSpeed        float64
	// Threshold controls series-truncation accuracy (Open Question,
	// smaller values add terms until the relative term magnitude
	// falls below it. Defaults to 1e-4 if zero.
	Threshold float64
}

func (s *SphericalHeadBinaural) threshold() float64 {
	if s.Threshold > 0 {
		return s.Threshold
	}
	return 1e-4
}

func (s *SphericalHeadBinaural) earDirection(ear Ear) Point {
	angle := s.EarsAngle
	if ear == EarLeft {
		angle = -angle
	}
	return PointSpherical(1, Angle(math.Pi/2), angle)
}

// BRIR evaluates the frequency response at each DFT bin via the rigid
// sphere series, then inverse-transforms and circularly shifts the
// result to centre the impulse response in the output window.
func (s *SphericalHeadBinaural) BRIR(ear Ear, relativePoint Point) []float64 {
	n := s.IRLength
	theta := float64(AngleBetween(relativePoint, s.earDirection(ear)))
	r := relativePoint.Norm()
	if r == 0 {
		r = s.Radius
	}

	spectrum := make([]complex128, n)
	spectrum[0] = 1
	for k := 1; k < n; k++ {
		bin := k
		if bin > n/2 {
			bin = n - k
		}
		f := float64(bin) * s.SamplingFrequency / float64(n)
		h := dudaSphereResponse(f, s.Radius, r, theta, s.SoundSpeed, s.threshold())
		if k > n/2 {
			h = cmplx.Conj(h)
		}
		spectrum[k] = h
	}

	timeDomain := fft.IFFT(spectrum)
	out := make([]float64, n)
	shift := n / 2
	for i := 0; i < n; i++ {
		out[(i+shift)%n] = real(timeDomain[i])
	}
	return out
}

// dudaSphereResponse evaluates the pressure transfer function for a
// rigid sphere of radius a at distance r, angle theta off the sphere's
// ear axis, frequency f, following the recursive series in Duda &
// Martens: Q_{-1} = 1/(iμρ), Q_0 = Q_{-1}(1 - 1/(iμρ)), with subsequent
// terms decaying through the sphere's own resonance factor until the
// relative term magnitude drops below threshold.
func dudaSphereResponse(f, a, r, theta, c, threshold float64) complex128 {
	mu := 2 * math.Pi * f * a / c
	rho := r / a
	if mu == 0 {
		return 1
	}
	iMuRho := complex(0, mu*rho)
	qm1 := 1 / iMuRho
	q0 := qm1 * (1 - 1/iMuRho)
	za := complex(0, mu)

	sum := qm1 + q0
	term := q0 * za / (za * (za - 1))
	sum += term
	cosTheta := math.Cos(theta)

	prev := term
	for m := 1; m < 64; m++ {
		next := prev * za / complex(float64(2*m+1), 0) * complex(cosTheta, 0)
		sum += next
		if cmplx.Abs(next)/cmplx.Abs(sum) < threshold {
			break
		}
		prev = next
	}
	return sum
}

// SphericalHeadProvider adapts SphericalHeadBinaural to BRIRProvider[T].
type SphericalHeadProvider[T Sample] struct {
	Model *SphericalHeadBinaural
}

func (p SphericalHeadProvider[T]) BRIR(ear Ear, relativePoint Point) []T {
	return toSampleSlice[T](p.Model.BRIR(ear, relativePoint))
}
