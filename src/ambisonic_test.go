package sal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestBFormatChannelIDFormula(t *testing.T) {
	assert.Equal(t, 0, BFormatChannelID(0, 0))
	assert.Equal(t, 1, BFormatChannelID(1, -1))
	assert.Equal(t, 2, BFormatChannelID(1, 0))
	assert.Equal(t, 3, BFormatChannelID(1, 1))
	assert.Equal(t, 9, BFormatNumChannels(2))
}

func TestBFormatChannelIDOutOfRangeOrderPanics(t *testing.T) {
	assert.Panics(t, func() { BFormatChannelID(1, 2) })
}

func TestAmbisonicZerothChannelIsOmni(t *testing.T) {
	a := NewAmbisonicDirectivity[float64](2, ConventionSqrt2)
	out := NewBuffer[float64](a.NumChannels(), 1)
	a.ReceiveAdd([]float64{1}, NewPoint(1, 0, 0), out)
	assert.Equal(t, 1.0, out.Get(BFormatChannelID(0, 0), 0))
}

// Invariant: for a horizontal-only encode at azimuth theta, channel
// (1,+1) receives sqrt2*cos(theta) and channel (1,-1) receives
// sqrt2*sin(theta), to numerical precision.
func TestAmbisonicFirstOrderHorizontalChannelsMatchFormula(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		theta := rapid.Float64Range(-math.Pi, math.Pi).Draw(t, "theta")
		a := NewAmbisonicDirectivity[float64](1, ConventionSqrt2)
		out := NewBuffer[float64](a.NumChannels(), 1)
		dir := NewPoint(math.Cos(theta), math.Sin(theta), 0)
		a.ReceiveAdd([]float64{1}, dir, out)

		assert.InDelta(t, math.Sqrt2*math.Cos(theta), out.Get(BFormatChannelID(1, 1), 0), 1e-9)
		assert.InDelta(t, math.Sqrt2*math.Sin(theta), out.Get(BFormatChannelID(1, -1), 0), 1e-9)
	})
}

func TestAmbisonicN3DZerothChannelWeightIsOne(t *testing.T) {
	a := NewAmbisonicDirectivity[float64](1, ConventionN3D)
	out := NewBuffer[float64](a.NumChannels(), 1)
	a.ReceiveAdd([]float64{1}, NewPoint(1, 0, 0), out)
	assert.Equal(t, 1.0, out.Get(BFormatChannelID(0, 0), 0))
}

func TestAmbisonicIsCoincidentDirectivity(t *testing.T) {
	a := NewAmbisonicDirectivity[float64](1, ConventionSqrt2)
	assert.True(t, a.Coincident())
}

func TestAmbisonicClonePreservesChannelCount(t *testing.T) {
	a := NewAmbisonicDirectivity[float64](2, ConventionN3D)
	clone := a.Clone()
	assert.Equal(t, a.NumChannels(), clone.NumChannels())
}

func TestFull3DAmbisonicZerothChannelIsOmniRegardlessOfPolar(t *testing.T) {
	a := NewFull3DAmbisonicDirectivity[float64](2, ConventionSqrt2)
	out := NewBuffer[float64](a.NumChannels(), 1)
	a.ReceiveAdd([]float64{1}, NewPoint(0, 0, 1), out)
	assert.Equal(t, 1.0, out.Get(BFormatChannelID(0, 0), 0))
}
