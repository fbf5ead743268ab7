package sal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyLogger struct {
	warnings []string
}

func (s *spyLogger) Warnf(format string, args ...any) {
	s.warnings = append(s.warnings, format)
}
func (s *spyLogger) Errorf(format string, args ...any) {}

func TestReceiverWaveIDOutOfRangePanics(t *testing.T) {
	r := NewReceiver[float64](NewOmniDirectivity[float64](1), NewPoint(0, 0, 0), IdentityQuaternion(), 2, NopLogger{})
	out := NewBuffer[float64](1, 4)
	assert.Panics(t, func() { r.ReceiveAdd([]float64{1}, NewPoint(1, 0, 0), 2, out) })
	assert.Panics(t, func() { r.ReceiveAdd([]float64{1}, NewPoint(1, 0, 0), -1, out) })
}

func TestReceiverMaxNumIncomingWavesMustBePositive(t *testing.T) {
	assert.Panics(t, func() {
		NewReceiver[float64](NewOmniDirectivity[float64](1), NewPoint(0, 0, 0), IdentityQuaternion(), 0, NopLogger{})
	})
}

func TestReceiverBypassCopiesInputUnfiltered(t *testing.T) {
	r := NewReceiver[float64](NewOmniDirectivity[float64](0.1), NewPoint(0, 0, 0), IdentityQuaternion(), 1, NopLogger{})
	r.SetBypass(true)
	out := NewBuffer[float64](2, 3)
	r.ReceiveAdd([]float64{1, 2, 3}, NewPoint(10, 0, 0), 0, out)
	assert.Equal(t, []float64{1, 2, 3}, out.ChannelReference(0))
	assert.Equal(t, []float64{1, 2, 3}, out.ChannelReference(1))
}

func TestReceiverWarnsOnCoincidentSourceForCoincidentDirectivity(t *testing.T) {
	logger := &spyLogger{}
	r := NewReceiver[float64](NewOmniDirectivity[float64](1), NewPoint(5, 5, 5), IdentityQuaternion(), 1, logger)
	out := NewBuffer[float64](1, 1)
	r.ReceiveAdd([]float64{1}, NewPoint(5, 5, 5), 0, out)
	assert.Len(t, logger.warnings, 1)
}

func TestReceiverDoesNotWarnWhenNotCoincident(t *testing.T) {
	logger := &spyLogger{}
	r := NewReceiver[float64](NewOmniDirectivity[float64](1), NewPoint(5, 5, 5), IdentityQuaternion(), 1, logger)
	out := NewBuffer[float64](1, 1)
	r.ReceiveAdd([]float64{1}, NewPoint(6, 5, 5), 0, out)
	assert.Empty(t, logger.warnings)
}

func TestReceiverResetStateWithStatelessInstancesDoesNotPanic(t *testing.T) {
	r := NewReceiver[float64](NewTrigDirectivity[float64]([]float64{1, 0.5}), NewPoint(0, 0, 0), IdentityQuaternion(), 2, NopLogger{})
	require.Equal(t, 2, r.MaxNumIncomingWaves())
	r.ResetState() // must not panic
}

func TestReceiverNewCreatesOneInstancePerWave(t *testing.T) {
	r := NewReceiver[float64](NewOmniDirectivity[float64](1), NewPoint(0, 0, 0), IdentityQuaternion(), 3, NopLogger{})
	assert.Equal(t, 3, r.MaxNumIncomingWaves())
}
