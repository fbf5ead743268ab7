package sal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Three-sample delay scenario: Fs=40000, distance=3*c/Fs, so the
// smoothed latency lands on an exact integer and no interpolation error
// enters the result.
func TestPropagationLineConstantDistanceThreeSampleDelay(t *testing.T) {
	const fs = 40000.0
	distance := 3 * OneSampleDistance(fs)
	p := NewPropagationLine[float64](PropagationLineConfig{
		Distance:          distance,
		SamplingFrequency: fs,
	}, NopLogger{})

	p.Write(1)
	assert.Equal(t, 0.0, p.Read())
	p.Tick(1)

	p.Write(2)
	assert.Equal(t, 0.0, p.Read())
	p.Tick(1)

	p.Write(3)
	assert.Equal(t, 0.0, p.Read())
	p.Tick(1)

	p.Write(-1)
	assert.InDelta(t, 1.0/3.0, p.Read(), 1e-6)
}

func TestPropagationLineZeroDistanceIsUnityAttenuation(t *testing.T) {
	p := NewPropagationLine[float64](PropagationLineConfig{
		Distance:          0,
		SamplingFrequency: 44100,
	}, NopLogger{})
	assert.Equal(t, 1.0, float64(p.Attenuation()))
}

func TestPropagationLineAllowGainFalseClipsToUnity(t *testing.T) {
	p := NewPropagationLine[float64](PropagationLineConfig{
		Distance:          0.01,
		SamplingFrequency: 44100,
		ReferenceDistance: 1.0,
	}, NopLogger{})
	assert.InDelta(t, 1.0, float64(p.Attenuation()), 1e-9)
}

func TestPropagationLineAllowGainTruePermitsBoost(t *testing.T) {
	p := NewPropagationLine[float64](PropagationLineConfig{
		Distance:          0.01,
		SamplingFrequency: 44100,
		ReferenceDistance: 1.0,
		AllowGain:         true,
	}, NopLogger{})
	assert.InDelta(t, 100.0, float64(p.Attenuation()), 1e-6)
}

func TestPropagationLineSetDistanceZeroRampSnapsAttenuation(t *testing.T) {
	p := NewPropagationLine[float64](PropagationLineConfig{
		Distance:          1,
		SamplingFrequency: 44100,
		ReferenceDistance: 1,
	}, NopLogger{})
	require.InDelta(t, 1.0, float64(p.Attenuation()), 1e-9)

	p.SetDistance(2, 0)
	p.Tick(1)
	assert.InDelta(t, 0.5, float64(p.Attenuation()), 1e-9)
}

// Air-absorption scenario, verified self-consistently: the air filter's
// impulse response (scaled by the 1/r attenuation) is exactly what arrives
// after the propagation delay, using the same NearestAirFilter table the
// implementation itself consults.
func TestPropagationLineAirFiltersActiveAppliesAbsorptionImpulseResponse(t *testing.T) {
	const fs = 44100.0
	const distance = 1.0
	p := NewPropagationLine[float64](PropagationLineConfig{
		Distance:          distance,
		SamplingFrequency: fs,
		AirFiltersActive:  true,
	}, NopLogger{})

	latency := int(math.Round(distance / SpeedOfSound * fs))
	attenuation := OneSampleDistance(fs) / distance
	coeffs := NearestAirFilter(distance)

	impulse := append([]float64{1}, make([]float64, latency+len(coeffs))...)
	var outputs []float64
	for _, x := range impulse {
		p.Write(x)
		outputs = append(outputs, p.Read())
		p.Tick(1)
	}

	for i, c := range coeffs {
		assert.InDeltaf(t, attenuation*c, outputs[latency+i], 1e-9, "tap %d", i)
	}
}

// ReadBlock's per-sample (slow) path must advance through the ring the same
// way n successive Read()+Tick(1) calls would: each dst[i] should come from
// a tap one sample further from the one before it, not a fixed offset
// repeated n times. Distances are chosen as exact sample counts (5 then 8,
// ramped over 4 samples) and enough history is written that the taps
// involved land on distinct, non-zero values, so a stuck read position
// would show up as a mismatch rather than coincidentally matching.
func TestPropagationLineReadBlockMatchesPerSampleReferenceDuringRamp(t *testing.T) {
	const fs = 40000.0

	build := func() *PropagationLine[float64] {
		p := NewPropagationLine[float64](PropagationLineConfig{
			Distance:          5 * OneSampleDistance(fs),
			SamplingFrequency: fs,
			Interpolation:     Linear,
			ReferenceDistance: 1,
		}, NopLogger{})
		for i := 1; i <= 20; i++ {
			p.Write(float64(i))
			p.Tick(1)
		}
		p.SetDistance(8*OneSampleDistance(fs), 4.0/fs) // ramps latency 5->8, over 4 samples
		return p
	}

	const n = 6
	block := build()
	got := make([]float64, n)
	block.ReadBlock(got)

	reference := build()
	want := make([]float64, n)
	for i := range want {
		want[i] = reference.Read()
		reference.Tick(1)
	}

	for i := range want {
		assert.InDeltaf(t, want[i], got[i], 1e-9, "sample %d", i)
	}
}
