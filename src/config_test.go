package sal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScene = `
sampling_frequency: 44100
sound_speed: 343
room:
  dimensions: {x: 4, y: 3, z: 2.5}
  wall_gains: [0.9, 0.9, 0.9, 0.9, 0.8, 0.8]
  rir_length: 512
sources:
  - name: voice
    position: {x: 1, y: 1, z: 1.5}
receivers:
  - name: mic
    position: {x: 2, y: 1.5, z: 1.5}
    orientation_deg: {x: 0, y: 0, z: 90}
    max_incoming_waves: 4
    directivity:
      kind: ambisonic
      order: 1
      convention: n3d
`

func writeSceneFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScene), 0o644))
	return path
}

func TestLoadSceneConfigRoundTrip(t *testing.T) {
	path := writeSceneFile(t)
	cfg, err := LoadSceneConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 44100.0, cfg.SamplingFrequency)
	assert.Equal(t, 343.0, cfg.SoundSpeed)
	require.NotNil(t, cfg.Room)
	assert.Equal(t, 4.0, cfg.Room.Dimensions.X)
	assert.Equal(t, 512, cfg.Room.RirLength)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "voice", cfg.Sources[0].Name)
	require.Len(t, cfg.Receivers, 1)
	assert.Equal(t, "mic", cfg.Receivers[0].Name)
	assert.Equal(t, "ambisonic", cfg.Receivers[0].Directivity.Kind)
}

func TestLoadSceneConfigMissingFileIsFatalError(t *testing.T) {
	_, err := LoadSceneConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	var fatal *FatalError
	assert.ErrorAs(t, err, &fatal)
}

func TestBuildDirectivityOmni(t *testing.T) {
	d, err := BuildDirectivity[float64](DirectivityConfig{Kind: "omni", Gain: 0.7})
	require.NoError(t, err)
	out := NewBuffer[float64](1, 1)
	d.ReceiveAdd([]float64{1}, NewPoint(1, 0, 0), out)
	assert.InDelta(t, 0.7, out.Get(0, 0), 1e-9)
}

func TestBuildDirectivityTrig(t *testing.T) {
	d, err := BuildDirectivity[float64](DirectivityConfig{Kind: "trig", Coeffs: []float64{0.5, 0.5}})
	require.NoError(t, err)
	out := NewBuffer[float64](1, 1)
	d.ReceiveAdd([]float64{1}, NewPoint(1, 0, 0), out) // on-axis: cos(alpha)=1
	assert.InDelta(t, 1.0, out.Get(0, 0), 1e-9)
}

func TestBuildDirectivityTan(t *testing.T) {
	d, err := BuildDirectivity[float64](DirectivityConfig{Kind: "tan", BaseAngleDeg: 90})
	require.NoError(t, err)
	out := NewBuffer[float64](1, 1)
	d.ReceiveAdd([]float64{1}, NewPoint(1, 0, 0), out) // on-axis: full gain
	assert.InDelta(t, 1.0, out.Get(0, 0), 1e-9)
}

func TestBuildDirectivityAmbisonicFull3D(t *testing.T) {
	d, err := BuildDirectivity[float64](DirectivityConfig{Kind: "ambisonic", Order: 2, Convention: "n3d", Full3D: true})
	require.NoError(t, err)
	ambi, ok := d.(*AmbisonicDirectivity[float64])
	require.True(t, ok)
	assert.Equal(t, BFormatNumChannels(2), ambi.NumChannels())
}

func TestBuildDirectivityUnknownKindErrors(t *testing.T) {
	_, err := BuildDirectivity[float64](DirectivityConfig{Kind: "nonsense"})
	assert.Error(t, err)
}

func TestBuildReceiverAppliesYawOrientation(t *testing.T) {
	proto := NewOmniDirectivity[float64](1)
	cfg := ReceiverConfig{
		Position:         PointConfig{X: 0, Y: 0, Z: 0},
		OrientationDeg:   PointConfig{X: 0, Y: 0, Z: 90},
		MaxIncomingWaves: 2,
		Directivity:      DirectivityConfig{Kind: "omni", Gain: 1},
	}
	r := BuildReceiver[float64](cfg, proto, NopLogger{})
	assert.Equal(t, 2, r.MaxNumIncomingWaves())

	// A point on the receiver's local +x axis, after a 90-degree yaw, sits
	// on the world +y axis.
	rotated := r.Orientation().Rotate(NewPoint(1, 0, 0), RightHanded)
	assert.InDelta(t, 0.0, rotated.X(), 1e-9)
	assert.InDelta(t, 1.0, rotated.Y(), 1e-9)
}

func TestBuildReceiverDefaultsMaxIncomingWavesToOne(t *testing.T) {
	proto := NewOmniDirectivity[float64](1)
	r := BuildReceiver[float64](ReceiverConfig{}, proto, NopLogger{})
	assert.Equal(t, 1, r.MaxNumIncomingWaves())
}
