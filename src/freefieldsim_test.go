package sal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Free-field propagation scenario: two sources, two receivers, checked
// against hand-computed literal taps/amplitudes.
func TestFreeFieldSimTwoSourceTwoReceiverSuperposition(t *testing.T) {
	const fs = 44100.0
	unit := OneSampleDistance(fs)

	sources := []*Source{
		NewSource(NewPoint(-unit, 0, 0)),
		NewSource(NewPoint(3*unit, 0, 0)),
	}
	receivers := []*Receiver[float64]{
		NewReceiver[float64](NewOmniDirectivity[float64](1), NewPoint(0, 0, 0), IdentityQuaternion(), len(sources), NopLogger{}),
		NewReceiver[float64](NewOmniDirectivity[float64](1), NewPoint(unit, 0, 0), IdentityQuaternion(), len(sources), NopLogger{}),
	}

	sim := NewFreeFieldSim[float64](sources, receivers, fs, SpeedOfSound, NopLogger{})

	inputs := [][]float64{
		{0.5, 0, 0, 0},
		{0.5, 0, 0, 0},
	}
	out0 := NewBuffer[float64](1, 4)
	out1 := NewBuffer[float64](1, 4)
	sim.Run(inputs, 4, []BufferMut[float64]{out0, out1})

	assert.InDelta(t, 0.0, out0.Get(0, 0), 1e-9)
	assert.InDelta(t, 0.5, out0.Get(0, 1), 1e-9)
	assert.InDelta(t, 0.0, out0.Get(0, 2), 1e-9)
	assert.InDelta(t, 0.5/3.0, out0.Get(0, 3), 1e-9)

	assert.InDelta(t, 0.0, out1.Get(0, 0), 1e-9)
	assert.InDelta(t, 0.0, out1.Get(0, 1), 1e-9)
	assert.InDelta(t, 0.5, out1.Get(0, 2), 1e-9)
	assert.InDelta(t, 0.0, out1.Get(0, 3), 1e-9)
}

// A sound speed other than the default must actually drive each pair's
// line latency, not just be stored and ignored.
func TestFreeFieldSimUsesProvidedSoundSpeedForLatency(t *testing.T) {
	const fs = 44100.0
	const customSpeed = 1500.0 // e.g. underwater propagation
	sources := []*Source{NewSource(NewPoint(0, 0, 0))}
	receivers := []*Receiver[float64]{
		NewReceiver[float64](NewOmniDirectivity[float64](1), NewPoint(3, 0, 0), IdentityQuaternion(), 1, NopLogger{}),
	}
	sim := NewFreeFieldSim[float64](sources, receivers, fs, customSpeed, NopLogger{})
	line := sim.Line(0, 0)

	expectedLatency := 3.0 / customSpeed * fs
	assert.InDelta(t, expectedLatency, line.CurrentLatency(), 1e-6)
}

func TestFreeFieldSimLineAccessorReturnsPairLine(t *testing.T) {
	sources := []*Source{NewSource(NewPoint(0, 0, 0))}
	receivers := []*Receiver[float64]{
		NewReceiver[float64](NewOmniDirectivity[float64](1), NewPoint(1, 0, 0), IdentityQuaternion(), 1, NopLogger{}),
	}
	sim := NewFreeFieldSim[float64](sources, receivers, 44100, SpeedOfSound, NopLogger{})
	line := sim.Line(0, 0)
	assert.InDelta(t, 1.0, line.CurrentLatency()*SpeedOfSound/44100, 1e-6)
}
