// Package device describes head-mounted displays and position sensors and discovers them
// through a pluggable transport.
package device

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Eye selects which eye a configuration is for.
type Eye string

const (
	EyeLeft  Eye = "left"
	EyeRight Eye = "right"
	EyeMono  Eye = "mono"
)

// Valid reports whether e is one of the known eye selectors.
func (e Eye) Valid() bool {
	return e == EyeLeft || e == EyeRight || e == EyeMono
}

// FieldOfView holds the four half-angles of an eye's view, in degrees.
type FieldOfView struct {
	Up    float64 `yaml:"up"`
	Down  float64 `yaml:"down"`
	Left  float64 `yaml:"left"`
	Right float64 `yaml:"right"`
}

// SymmetricFieldOfView builds a centred field of view from a vertical angle (degrees) and
// an aspect ratio (width / height).
func SymmetricFieldOfView(fovY, aspect float64) FieldOfView {
	halfY := fovY / 2
	halfX := mgl64.RadToDeg(math.Atan(math.Tan(mgl64.DegToRad(halfY)) * aspect))
	return FieldOfView{Up: halfY, Down: halfY, Left: halfX, Right: halfX}
}

// Rect is a pixel rectangle on the device's display.
type Rect struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// EyeParameters is what a device reports for one eye.
type EyeParameters struct {
	// EyeTranslation is the eye's offset from the head centre in metres. Only X is used.
	EyeTranslation         mgl64.Vec3
	RecommendedFieldOfView FieldOfView
	RenderRect             Rect
}

// Sample is a raw orientation quaternion as reported by a sensor.
type Sample struct {
	X, Y, Z, W float64
}

// State is a sensor reading. A nil Orientation means the sensor had no data.
type State struct {
	Orientation *Sample
}

// Sensor reports the current head state.
type Sensor interface {
	State() State
}

// SensorFunc adapts a function to the Sensor interface.
type SensorFunc func() State

// State calls f.
func (f SensorFunc) State() State {
	return f()
}

// Device is one of HMD, PositionSensor or Other.
type Device interface {
	HardwareUnitID() string
	DeviceName() string
	isDevice()
}

// HMD is a head-mounted display.
type HMD struct {
	ID    string
	Name  string
	Left  EyeParameters
	Right EyeParameters
}

func (h *HMD) HardwareUnitID() string { return h.ID }
func (h *HMD) DeviceName() string     { return h.Name }
func (*HMD) isDevice()                {}

// EyeParameters returns the parameters for eye. Mono has none.
func (h *HMD) EyeParameters(eye Eye) (EyeParameters, error) {
	switch eye {
	case EyeLeft:
		return h.Left, nil
	case EyeRight:
		return h.Right, nil
	default:
		return EyeParameters{}, fmt.Errorf("no eye parameters for %q", eye)
	}
}

// PositionSensor is an orientation sensor, usually part of an HMD.
type PositionSensor struct {
	ID     string
	Name   string
	Sensor Sensor
}

func (s *PositionSensor) HardwareUnitID() string { return s.ID }
func (s *PositionSensor) DeviceName() string     { return s.Name }
func (*PositionSensor) isDevice()                {}

// Other is any device the rig does not use.
type Other struct {
	ID   string
	Name string
}

func (o *Other) HardwareUnitID() string { return o.ID }
func (o *Other) DeviceName() string     { return o.Name }
func (*Other) isDevice()                {}
