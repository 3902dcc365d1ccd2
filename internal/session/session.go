// Package session holds the interactive viewer state and applies input to the camera.
package session

import (
	"time"

	"github.com/Faultbox/globevr/internal/engine/camera"
)

// Key is a key name as reported by the input layer, such as "W" or "Left Shift".
type Key string

// Command is what a key press asks the host to do.
type Command int

const (
	CommandNone Command = iota
	CommandForward
	CommandBackward
	CommandStrafeRight
	CommandStrafeLeft
	CommandBoost
	CommandLevel
	CommandRecenter
	CommandFullscreen
	CommandQuit
	CommandScreenshot
	CommandPrintPose
)

var commandNames = map[Command]string{
	CommandNone:        "none",
	CommandForward:     "forward",
	CommandBackward:    "backward",
	CommandStrafeRight: "strafe_right",
	CommandStrafeLeft:  "strafe_left",
	CommandBoost:       "boost",
	CommandLevel:       "level",
	CommandRecenter:    "recenter",
	CommandFullscreen:  "fullscreen",
	CommandQuit:        "quit",
	CommandScreenshot:  "screenshot",
	CommandPrintPose:   "print_pose",
}

func (c Command) String() string {
	if n, ok := commandNames[c]; ok {
		return n
	}
	return "unknown"
}

// Bindings maps keys to commands.
type Bindings map[Key]Command

// DefaultBindings returns WASD movement with shift boost and the viewer's function keys.
func DefaultBindings() Bindings {
	return Bindings{
		"W":           CommandForward,
		"S":           CommandBackward,
		"D":           CommandStrafeRight,
		"A":           CommandStrafeLeft,
		"Left Shift":  CommandBoost,
		"Right Shift": CommandBoost,
		"L":           CommandLevel,
		"R":           CommandRecenter,
		"Return":      CommandFullscreen,
		"Escape":      CommandQuit,
		"F12":         CommandScreenshot,
		"I":           CommandPrintPose,
	}
}

// Movement configures velocities in scene units per second.
type Movement struct {
	ForwardSpeed    float64
	StrafeSpeed     float64
	BoostMultiplier float64
}

// DefaultMovement returns the viewer defaults.
func DefaultMovement() Movement {
	return Movement{ForwardSpeed: 250, StrafeSpeed: 150, BoostMultiplier: 2}
}

// State is the per-session input state. It is owned by the frame goroutine.
type State struct {
	movement Movement
	bindings Bindings

	forward    float64
	strafe     float64
	multiplier float64

	FPS FPS
}

// New creates a session. Nil bindings mean DefaultBindings.
func New(m Movement, b Bindings) *State {
	if b == nil {
		b = DefaultBindings()
	}
	if m.BoostMultiplier <= 0 {
		m.BoostMultiplier = 1
	}
	return &State{movement: m, bindings: b, multiplier: 1}
}

// KeyDown updates movement for key and returns the command it is bound to.
// Unbound keys return CommandNone; the host may treat them as bookmark keys.
func (s *State) KeyDown(k Key) Command {
	cmd := s.bindings[k]
	switch cmd {
	case CommandForward:
		s.forward = s.movement.ForwardSpeed
	case CommandBackward:
		s.forward = -s.movement.ForwardSpeed
	case CommandStrafeRight:
		s.strafe = s.movement.StrafeSpeed
	case CommandStrafeLeft:
		s.strafe = -s.movement.StrafeSpeed
	case CommandBoost:
		s.multiplier = s.movement.BoostMultiplier
	}
	return cmd
}

// KeyUp stops the movement bound to key.
func (s *State) KeyUp(k Key) {
	switch s.bindings[k] {
	case CommandForward, CommandBackward:
		s.forward = 0
	case CommandStrafeRight, CommandStrafeLeft:
		s.strafe = 0
	case CommandBoost:
		s.multiplier = 1
	}
}

// Velocity returns the current forward and strafe velocity including boost.
func (s *State) Velocity() (forward, strafe float64) {
	return s.forward * s.multiplier, s.strafe * s.multiplier
}

// Moving reports whether any movement key is held.
func (s *State) Moving() bool {
	return s.forward != 0 || s.strafe != 0
}

// Move advances p by the current velocity over dt.
func (s *State) Move(p *camera.Pose, dt time.Duration) {
	if !s.Moving() {
		return
	}
	forward, strafe := s.Velocity()
	p.Move(dt.Seconds(), forward, strafe)
}

// Stop clears all held movement, e.g. when the window loses focus.
func (s *State) Stop() {
	s.forward, s.strafe, s.multiplier = 0, 0, 1
}

// movingAverageFactor weights each new frame in the FPS average.
const movingAverageFactor = 0.05

// FPS is an exponential moving average of the frame rate.
type FPS struct {
	prev    time.Time
	current float64
	average float64
}

// Update records a frame at now and returns the smoothed frame rate.
func (f *FPS) Update(now time.Time) float64 {
	if !f.prev.IsZero() {
		if dt := now.Sub(f.prev).Seconds(); dt > 0 {
			f.current = 1 / dt
			f.average = f.average*(1-movingAverageFactor) + f.current*movingAverageFactor
		}
	}
	f.prev = now
	return f.average
}

// Average returns the smoothed frame rate.
func (f *FPS) Average() float64 {
	return f.average
}
