package camera

import (
	"github.com/go-gl/mathgl/mgl64"
)

// FreeLook turns a pose from mouse drag deltas.
type FreeLook struct {
	// Radians per pixel of drag.
	DragSensitivity float64
}

// NewFreeLook creates a free-look controller with default sensitivity.
func NewFreeLook() *FreeLook {
	return &FreeLook{DragSensitivity: 0.003}
}

// HandleDrag yaws around the camera's up vector and pitches around its right vector.
func (l *FreeLook) HandleDrag(p *Pose, deltaX, deltaY float64) {
	if deltaX == 0 && deltaY == 0 {
		return
	}

	yaw := mgl64.QuatRotate(-deltaX*l.DragSensitivity, p.Up)
	p.Direction = yaw.Rotate(p.Direction)
	p.Right = yaw.Rotate(p.Right)

	pitch := mgl64.QuatRotate(-deltaY*l.DragSensitivity, p.Right)
	p.Direction = pitch.Rotate(p.Direction)
	p.Up = pitch.Rotate(p.Up)

	p.Orthonormalize()
}

// Move advances the position along direction and right by velocity * dt.
func (p *Pose) Move(dt, forwardVelocity, strafeVelocity float64) {
	p.Position = p.Position.
		Add(p.Direction.Mul(dt * forwardVelocity)).
		Add(p.Right.Mul(dt * strafeVelocity))
}
