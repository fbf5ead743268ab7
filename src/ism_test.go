package sal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// A large room puts every reflected image far outside the RIR window, so
// only the direct path survives — a scenario tractable to verify by hand
// against the exact formulas CalculateRir itself uses.
func TestIsmDirectPathOnlyInLargeRoom(t *testing.T) {
	room := NewCuboidRoom[float64](100, 100, 100, NewFIRFilter[float64]([]float64{0.9}))
	const fs = 44100.0
	const rirLength = 256
	ism := NewIsm[float64](room, rirLength, fs, IsmNoInterpolation)

	source := NewPoint(50, 50, 50)
	receiver := NewPoint(50, 50, 51)
	ism.CalculateRir(source, receiver)

	distance := Distance(source, receiver)
	delay := distance / SpeedOfSound
	wantIndex := int(delay*fs + 0.5)
	wantAmplitude := 1.0 / (delay * fs)

	rir := ism.RIR()
	assert.Len(t, rir, rirLength)
	for i, v := range rir {
		if i == wantIndex {
			assert.InDelta(t, wantAmplitude, v, 1e-9)
		} else {
			assert.Zerof(t, v, "unexpected energy at tap %d", i)
		}
	}
	assert.Len(t, ism.ImagesDelay(), 1)
	assert.Len(t, ism.ImagesPosition(), 1)
}

func TestIsmUpdateForcesRecalculationOnNextRun(t *testing.T) {
	room := NewCuboidRoom[float64](100, 100, 100, NewFIRFilter[float64]([]float64{0.9}))
	ism := NewIsm[float64](room, 256, 44100, IsmNoInterpolation)
	source := NewSource(NewPoint(50, 50, 50))
	receiver := NewReceiver[float64](NewOmniDirectivity[float64](1), NewPoint(50, 50, 51), IdentityQuaternion(), 1, NopLogger{})
	out := NewBuffer[float64](1, 4)

	ism.Run([]float64{1, 0, 0, 0}, source, receiver, 0, out)
	firstRir := append([]float64(nil), ism.RIR()...)

	source.SetPosition(NewPoint(50, 50, 60))
	ism.Update()
	ism.Run([]float64{1, 0, 0, 0}, source, receiver, 0, out)
	secondRir := ism.RIR()

	assert.NotEqual(t, firstRir, secondRir)
}

// The RIR buffer is reused rather than reallocated across calls: shrinking
// rirLength's worth of non-zero taps must not leave stale energy behind.
func TestIsmCalculateRirClearsStaleTapsOnReuse(t *testing.T) {
	room := NewCuboidRoom[float64](100, 100, 100, NewFIRFilter[float64]([]float64{0.9}))
	ism := NewIsm[float64](room, 256, 44100, IsmNoInterpolation)

	ism.CalculateRir(NewPoint(50, 50, 50), NewPoint(50, 50, 51))
	firstIndex := -1
	for i, v := range ism.RIR() {
		if v != 0 {
			firstIndex = i
		}
	}
	assert.NotEqual(t, -1, firstIndex)

	ism.CalculateRir(NewPoint(50, 50, 50), NewPoint(50, 50, 51.5))
	assert.Zerof(t, ism.RIR()[firstIndex], "tap %d should have been cleared by the second call", firstIndex)
}
