package sal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SceneConfig is the on-disk YAML description of a simulation: sampling
// rate plus an optional room and the sources and receivers a caller wants
// wired together, read from a YAML scene descriptor.
type SceneConfig struct {
	SamplingFrequency float64                `yaml:"sampling_frequency"`
	SoundSpeed        float64                `yaml:"sound_speed"`
	Room              *RoomConfig            `yaml:"room,omitempty"`
	Sources           []SourceConfig         `yaml:"sources"`
	Receivers         []ReceiverConfig       `yaml:"receivers"`
}

// RoomConfig describes a CuboidRoom: its extent and one broadband
// reflection coefficient per wall, canonical [X1,X2,Y1,Y2,Z1,Z2] order.
type RoomConfig struct {
	Dimensions  PointConfig `yaml:"dimensions"`
	WallGains   [6]float64  `yaml:"wall_gains"`
	RirLength   int         `yaml:"rir_length"`
}

// SourceConfig describes one sound source's placement.
type SourceConfig struct {
	Name     string      `yaml:"name"`
	Position PointConfig `yaml:"position"`
}

// ReceiverConfig describes one receiver's placement, orientation and
// directivity pattern. Only the memoryless patterns (omni/trig/tan/
// ambisonic) are expressible in plain YAML; FIR/database/spherical-head
// directivities require runtime-loaded data and must be attached in code
// after loading the scene.
type ReceiverConfig struct {
	Name        string      `yaml:"name"`
	Position    PointConfig `yaml:"position"`
	OrientationDeg PointConfig `yaml:"orientation_deg"`
	MaxIncomingWaves int      `yaml:"max_incoming_waves"`
	Directivity DirectivityConfig `yaml:"directivity"`
}

// DirectivityConfig selects one of the memoryless directivity variants
// by name ("omni", "trig", "tan", "ambisonic") plus its parameters.
type DirectivityConfig struct {
	Kind       string    `yaml:"kind"`
	Gain       float64   `yaml:"gain,omitempty"`
	Coeffs     []float64 `yaml:"coeffs,omitempty"`
	BaseAngleDeg float64 `yaml:"base_angle_deg,omitempty"`
	Order      int       `yaml:"order,omitempty"`
	Convention string    `yaml:"convention,omitempty"` // "sqrt2" or "n3d"
	Full3D     bool      `yaml:"full3d,omitempty"`
}

// PointConfig is the YAML-friendly (x,y,z) triple.
type PointConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (p PointConfig) Point() Point { return NewPoint(p.X, p.Y, p.Z) }

// LoadSceneConfig reads and parses a YAML scene descriptor from path. A
// missing or unreadable file, or malformed YAML, is a fatal load-time
// failure.
func LoadSceneConfig(path string) (*SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FatalError{Op: "LoadSceneConfig", Err: err}
	}
	var cfg SceneConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &FatalError{Op: "LoadSceneConfig", Err: fmt.Errorf("parsing %s: %w", path, err)}
	}
	return &cfg, nil
}

// BuildDirectivity constructs the directivity instance named by cfg.Kind.
// "fir", "database", and "sphericalhead" are intentionally absent: those
// variants carry runtime state (loaded HRIR tables, FFT-derived impulse
// responses) that has no plain-YAML representation and must be built in
// code, then swapped in as the Receiver's prototype.
func BuildDirectivity[T Sample](cfg DirectivityConfig) (Directivity[T], error) {
	switch cfg.Kind {
	case "omni":
		return NewOmniDirectivity[T](T(cfg.Gain)), nil
	case "trig":
		coeffs := make([]T, len(cfg.Coeffs))
		for i, c := range cfg.Coeffs {
			coeffs[i] = T(c)
		}
		return NewTrigDirectivity[T](coeffs), nil
	case "tan":
		return NewTanDirectivity[T](Angle(cfg.BaseAngleDeg * degToRad)), nil
	case "ambisonic":
		convention := ConventionSqrt2
		if cfg.Convention == "n3d" {
			convention = ConventionN3D
		}
		if cfg.Full3D {
			return NewFull3DAmbisonicDirectivity[T](cfg.Order, convention), nil
		}
		return NewAmbisonicDirectivity[T](cfg.Order, convention), nil
	default:
		return nil, fmt.Errorf("sal: unknown directivity kind %q", cfg.Kind)
	}
}

const degToRad = 3.14159265358979323846 / 180

// BuildReceiver constructs a Receiver from cfg, using prototype as the
// per-wave directivity instance (typically the result of
// BuildDirectivity, or a runtime-loaded binaural directivity for kinds
// BuildDirectivity can't express).
func BuildReceiver[T Sample](cfg ReceiverConfig, prototype Directivity[T], logger Logger) *Receiver[T] {
	maxWaves := cfg.MaxIncomingWaves
	if maxWaves <= 0 {
		maxWaves = 1
	}
	orientation := AxisAngleQuaternion(NewPoint(0, 0, 1), 0)
	if cfg.OrientationDeg != (PointConfig{}) {
		yaw := AxisAngleQuaternion(NewPoint(0, 0, 1), Angle(cfg.OrientationDeg.Z*degToRad))
		pitch := AxisAngleQuaternion(NewPoint(0, 1, 0), Angle(cfg.OrientationDeg.Y*degToRad))
		roll := AxisAngleQuaternion(NewPoint(1, 0, 0), Angle(cfg.OrientationDeg.X*degToRad))
		orientation = yaw.Mul(pitch).Mul(roll)
	}
	return NewReceiver[T](prototype, cfg.Position.Point(), orientation, maxWaves, logger)
}
